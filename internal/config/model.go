package config

import "github.com/hashicorp/hcl/v2"

// Model is the unified, format-agnostic representation of a run.
type Model struct {
	Global  *Global
	Modules []*ModuleInstance
}

// Global holds the run-wide settings.
type Global struct {
	// RunID names the run. When empty a random identifier is generated.
	RunID string
	// Lattice is the global grid geometry, one extent per dimension.
	Lattice []int
	// ResultsDir enables writing results when non-empty.
	ResultsDir   string
	CachedPolicy string
	// External lists objects supplied before the run starts.
	External []string
	// Results lists the final outputs explicitly. Nil selects the outputs of
	// modules nobody depends on.
	Results    []string
	Trajectory Trajectory
	Genetic    Genetic
}

// Trajectory is the range for t := Start; t < End; t += Step.
type Trajectory struct {
	Start int
	End   int
	Step  int
}

// Genetic holds scheduler tuning. Nil fields keep the scheduler defaults.
type Genetic struct {
	PopulationSize         *int
	MaxGenerations         *int
	MaxStagnantGenerations *int
	MutationRate           *float64
	Seed                   *uint64
	Workers                *int
}

// ModuleInstance is one configured module: a registry type, a unique name and
// the raw parameter body its factory decodes.
type ModuleInstance struct {
	Type      string
	Name      string
	Body      hcl.Body
	DeclRange hcl.Range
}

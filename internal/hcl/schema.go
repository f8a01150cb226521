package hcl

import "github.com/hashicorp/hcl/v2"

// rootSchema lists the top-level blocks accepted in any file.
var rootSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "global"},
		{Type: "module", LabelNames: []string{"type", "name"}},
	},
}

// globalBlock is the HCL shape of the `global` block.
type globalBlock struct {
	RunID        string           `hcl:"run_id,optional"`
	Lattice      []int            `hcl:"lattice"`
	ResultsDir   string           `hcl:"results_dir,optional"`
	CachedPolicy string           `hcl:"cached_policy,optional"`
	External     []string         `hcl:"external,optional"`
	Results      []string         `hcl:"results,optional"`
	Trajectory   *trajectoryBlock `hcl:"trajectory,block"`
	Genetic      *geneticBlock    `hcl:"genetic,block"`
}

type trajectoryBlock struct {
	Start int  `hcl:"start"`
	End   int  `hcl:"end"`
	Step  *int `hcl:"step,optional"`
}

type geneticBlock struct {
	PopulationSize         *int     `hcl:"population_size,optional"`
	MaxGenerations         *int     `hcl:"max_generations,optional"`
	MaxStagnantGenerations *int     `hcl:"max_stagnant_generations,optional"`
	MutationRate           *float64 `hcl:"mutation_rate,optional"`
	Seed                   *uint64  `hcl:"seed,optional"`
	Workers                *int     `hcl:"workers,optional"`
}

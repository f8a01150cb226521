package hcl

import "github.com/specialistvlad/fieldgridgo/internal/config"

// translateGlobal converts the HCL-specific global schema into the agnostic model.
func translateGlobal(g *globalBlock) *config.Global {
	out := &config.Global{
		RunID:        g.RunID,
		Lattice:      g.Lattice,
		ResultsDir:   g.ResultsDir,
		CachedPolicy: g.CachedPolicy,
		External:     g.External,
		Results:      g.Results,
	}
	if g.Trajectory != nil {
		out.Trajectory = config.Trajectory{
			Start: g.Trajectory.Start,
			End:   g.Trajectory.End,
			Step:  1,
		}
		if g.Trajectory.Step != nil {
			out.Trajectory.Step = *g.Trajectory.Step
		}
	}
	if g.Genetic != nil {
		out.Genetic = config.Genetic{
			PopulationSize:         g.Genetic.PopulationSize,
			MaxGenerations:         g.Genetic.MaxGenerations,
			MaxStagnantGenerations: g.Genetic.MaxStagnantGenerations,
			MutationRate:           g.Genetic.MutationRate,
			Seed:                   g.Genetic.Seed,
			Workers:                g.Genetic.Workers,
		}
	}
	return out
}

package scheduler

import (
	"context"

	"github.com/specialistvlad/fieldgridgo/internal/profiler"
)

// Scheduler produces the module order used for every trajectory of a run.
type Scheduler interface {
	// Schedule returns a valid topological order of the graph. It returns
	// early with ctx's error if ctx is cancelled.
	Schedule(ctx context.Context) (*Result, error)
}

// Result is a chosen schedule together with its simulated profile.
type Result struct {
	// Schedule holds graph node indices in execution order.
	Schedule []int
	Profile  profiler.Profile
	// Generations is the number of generations evolved after the initial
	// population. A graph with a single valid order reports zero.
	Generations int
	// History holds the best peak seen so far after each generation,
	// starting with the initial population. It never increases.
	History []int64
}

// Package executor defines the interface of the execution driver and the
// types it reports with.
//
// The driver runs the chosen module order once per trajectory. Each
// trajectory goes through three phases:
//   - **Setup:** every module declares its outputs and temporaries
//   - **Execute:** every module runs, its declared objects allocated right
//     before and its temporaries released right after
//   - **Teardown:** results are written out and every non-cached object is
//     released and forgotten
//
// A SetupError during the first trajectory stops the run; later ones only
// skip their trajectory. An ExecuteError aborts the rest of its trajectory
// and the driver moves on to the next. Object store errors always stop the
// run.
package executor

import (
	"context"
	"fmt"
)

// Executor runs the trajectory loop.
type Executor interface {
	// Execute runs every trajectory and returns a report even when it fails.
	// Only fatal failures are returned as errors; per-trajectory failures are
	// recorded in the report.
	Execute(ctx context.Context) (*Report, error)
}

// ResultSink receives the final results of each completed trajectory.
type ResultSink interface {
	Write(ctx context.Context, trajectory int, object string, value any) error
}

// Range is the trajectory range: for t := Start; t < End; t += Step.
type Range struct {
	Start int `yaml:"start"`
	End   int `yaml:"end"`
	Step  int `yaml:"step"`
}

// Validate rejects ranges that would never terminate or run backwards.
func (r Range) Validate() error {
	if r.Step <= 0 {
		return fmt.Errorf("trajectory step must be positive, got %d", r.Step)
	}
	if r.End < r.Start {
		return fmt.Errorf("trajectory end %d is before start %d", r.End, r.Start)
	}
	return nil
}

// Indices lists the trajectories of a valid range.
func (r Range) Indices() []int {
	if r.Validate() != nil {
		return nil
	}
	var out []int
	for t := r.Start; t < r.End; t += r.Step {
		out = append(out, t)
	}
	return out
}

package scheduler

import (
	"context"
	"slices"

	"github.com/specialistvlad/fieldgridgo/internal/profiler"
)

// Fixed replays a schedule given by module names, typically loaded from a
// schedule file. The names are validated against the graph.
type Fixed struct {
	prof  *profiler.Profiler
	names []string
}

// NewFixed builds a scheduler that always returns names.
func NewFixed(p *profiler.Profiler, names []string) *Fixed {
	return &Fixed{prof: p, names: slices.Clone(names)}
}

func (f *Fixed) Schedule(ctx context.Context) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	order, err := f.prof.Graph().ScheduleFromNames(f.names)
	if err != nil {
		return nil, err
	}
	prof := f.prof.Profile(order)
	return &Result{Schedule: order, Profile: prof, History: []int64{prof.Peak}}, nil
}

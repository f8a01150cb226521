// Package session defines the core interfaces for creating and managing an
// execution session. It abstracts away the details of how the graph,
// scheduler, object store and executor of a run are wired together.
package session

import (
	"context"

	"github.com/specialistvlad/fieldgridgo/internal/executor"
	"github.com/specialistvlad/fieldgridgo/internal/graph"
	"github.com/specialistvlad/fieldgridgo/internal/module"
	"github.com/specialistvlad/fieldgridgo/internal/profiler"
	"github.com/specialistvlad/fieldgridgo/internal/scheduler"
)

// Spec is everything a session needs to wire one run.
type Spec struct {
	Modules []module.Module
	// External names objects supplied before the first trajectory.
	External []string
	// Results overrides the default set of final outputs when non-nil.
	Results      []string
	Trajectories executor.Range
	Policy       profiler.Policy
	Scheduler    scheduler.Config
	// Replay, when non-empty, is used as the schedule instead of searching.
	Replay []string
	// Sink receives final results; nil disables result files.
	Sink executor.ResultSink
}

// SessionFactory creates an execution Session. Different implementations can
// support various backends.
type SessionFactory interface {
	NewSession(ctx context.Context, spec Spec) (Session, error)
}

// Session represents a single run and manages its lifecycle.
type Session interface {
	Graph() *graph.Graph
	Profiler() *profiler.Profiler
	// Schedule chooses the module order. It is run once per session.
	Schedule(ctx context.Context) (*scheduler.Result, error)
	// GetExecutor returns an executor running the given schedule.
	GetExecutor(plan *scheduler.Result) (executor.Executor, error)
	// Progress reports the trajectory being executed, if any.
	Progress() (trajectory int, running bool)
	// Close releases any resources held by the session. It accepts a context
	// to allow for graceful cleanup operations.
	Close(ctx context.Context) error
}

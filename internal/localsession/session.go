// Package localsession provides a concrete implementation of the session.Session
// and session.SessionFactory interfaces for local, in-process execution.
package localsession

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/specialistvlad/fieldgridgo/internal/ctxlog"
	"github.com/specialistvlad/fieldgridgo/internal/executor"
	"github.com/specialistvlad/fieldgridgo/internal/graph"
	"github.com/specialistvlad/fieldgridgo/internal/inmemorystore"
	"github.com/specialistvlad/fieldgridgo/internal/localexecutor"
	"github.com/specialistvlad/fieldgridgo/internal/objectstore"
	"github.com/specialistvlad/fieldgridgo/internal/profiler"
	"github.com/specialistvlad/fieldgridgo/internal/scheduler"
	"github.com/specialistvlad/fieldgridgo/internal/session"
)

// SessionFactory implements session.SessionFactory for local runs.
type SessionFactory struct{}

var _ session.SessionFactory = (*SessionFactory)(nil)

// NewSession builds the graph, the profiler, the scheduler and the object
// store of a run. Structural and configuration errors surface here.
func (f *SessionFactory) NewSession(ctx context.Context, spec session.Spec) (session.Session, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("localsession.SessionFactory.NewSession called", "modules", len(spec.Modules))

	if err := spec.Trajectories.Validate(); err != nil {
		return nil, err
	}

	// --- This is where the dependency injection wiring happens ---
	g, err := graph.Build(ctx, spec.Modules, graph.Options{External: spec.External, Results: spec.Results})
	if err != nil {
		return nil, err
	}
	prof := profiler.New(ctx, g, spec.Policy)

	var sched scheduler.Scheduler
	if len(spec.Replay) > 0 {
		sched = scheduler.NewFixed(prof, spec.Replay)
	} else {
		genetic, err := scheduler.NewGenetic(prof, spec.Scheduler)
		if err != nil {
			return nil, err
		}
		sched = genetic
	}

	store := inmemorystore.New()
	for _, name := range spec.External {
		if err := store.Declare(ctx, objectstore.Spec{Name: name, Type: "external", Class: objectstore.Cached, Owner: "external"}); err != nil {
			return nil, err
		}
		if _, err := store.Allocate(ctx, name); err != nil {
			return nil, err
		}
	}
	// --- End of dependency injection ---

	return &Session{
		graph:     g,
		prof:      prof,
		scheduler: sched,
		store:     store,
		trajs:     spec.Trajectories,
		sink:      spec.Sink,
	}, nil
}

// Session implements session.Session for local runs.
type Session struct {
	graph     *graph.Graph
	prof      *profiler.Profiler
	scheduler scheduler.Scheduler
	store     objectstore.Store
	trajs     executor.Range
	sink      executor.ResultSink

	mu   sync.Mutex
	exec *localexecutor.Executor
}

func (s *Session) Graph() *graph.Graph          { return s.graph }
func (s *Session) Profiler() *profiler.Profiler { return s.prof }

// Schedule runs the configured scheduler.
func (s *Session) Schedule(ctx context.Context) (*scheduler.Result, error) {
	res, err := s.scheduler.Schedule(ctx)
	if err != nil {
		return nil, fmt.Errorf("scheduling failed: %w", err)
	}
	return res, nil
}

// GetExecutor wires a local executor over the session's store.
func (s *Session) GetExecutor(plan *scheduler.Result) (executor.Executor, error) {
	if plan == nil {
		return nil, errors.New("no schedule to execute")
	}
	exec := localexecutor.New(s.store, s.prof, plan.Schedule, s.trajs, s.sink)
	s.mu.Lock()
	s.exec = exec
	s.mu.Unlock()
	return exec, nil
}

// Progress reports the trajectory of the most recent executor.
func (s *Session) Progress() (int, bool) {
	s.mu.Lock()
	exec := s.exec
	s.mu.Unlock()
	if exec == nil {
		return 0, false
	}
	return exec.Current()
}

// Stats exposes the store counters.
func (s *Session) Stats(ctx context.Context) objectstore.Stats {
	return s.store.Stats(ctx)
}

// Close drops every object, cached ones included.
func (s *Session) Close(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("localsession.Session.Close called", "peak", s.store.Stats(ctx).Peak)
	return s.store.Close(ctx)
}

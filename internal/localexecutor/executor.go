// Package localexecutor provides a concrete, in-process implementation of the
// executor.Executor interface. Modules run sequentially in schedule order;
// trajectories run one after another because cached objects are shared
// across them.
package localexecutor

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/specialistvlad/fieldgridgo/internal/ctxlog"
	"github.com/specialistvlad/fieldgridgo/internal/executor"
	"github.com/specialistvlad/fieldgridgo/internal/graph"
	"github.com/specialistvlad/fieldgridgo/internal/objectstore"
	"github.com/specialistvlad/fieldgridgo/internal/profiler"
)

// Executor implements the executor.Executor interface for local execution.
type Executor struct {
	store    objectstore.Store
	g        *graph.Graph
	prof     *profiler.Profiler
	schedule []int
	trajs    executor.Range
	sink     executor.ResultSink

	current atomic.Int64
	running atomic.Bool
}

// New creates a new local executor running schedule over trajs. sink may be nil.
func New(
	store objectstore.Store,
	prof *profiler.Profiler,
	schedule []int,
	trajs executor.Range,
	sink executor.ResultSink,
) *Executor {
	return &Executor{
		store:    store,
		g:        prof.Graph(),
		prof:     prof,
		schedule: schedule,
		trajs:    trajs,
		sink:     sink,
	}
}

var _ executor.Executor = (*Executor)(nil)

// Current returns the trajectory being run, and false when the loop is idle.
func (e *Executor) Current() (int, bool) {
	return int(e.current.Load()), e.running.Load()
}

// Execute runs the trajectory loop.
func (e *Executor) Execute(ctx context.Context) (*executor.Report, error) {
	logger := ctxlog.FromContext(ctx)
	if err := e.trajs.Validate(); err != nil {
		return nil, err
	}
	if err := e.g.Validate(e.schedule); err != nil {
		return nil, err
	}

	releases := e.prof.ReleasePlan(e.schedule)
	report := &executor.Report{}
	e.running.Store(true)
	defer e.running.Store(false)

	for k, t := range e.trajs.Indices() {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		e.current.Store(int64(t))
		tctx, tlog := ctxlog.With(ctx, "trajectory", t)
		tlog.Info("🚀 Starting trajectory.")

		tr, err := e.runTrajectory(tctx, t, k == 0, releases)
		report.Trajectories = append(report.Trajectories, tr)
		if err != nil {
			tlog.Error("Trajectory loop stopped.", "error", err)
			return report, err
		}
		switch tr.Status {
		case executor.StatusCompleted:
			tlog.Info("✅ Trajectory finished.", "modules", tr.Executed, "peak", tr.Peak)
		default:
			tlog.Warn("Trajectory did not complete.", "status", tr.Status, "module", tr.Module, "error", tr.Err)
		}
	}

	logger.Debug("Trajectory loop done.", "trajectories", len(report.Trajectories), "failed", len(report.Failed()))
	return report, nil
}

// runTrajectory runs one trajectory. The store is always reset before it
// returns. A non-nil error is fatal for the loop.
func (e *Executor) runTrajectory(ctx context.Context, t int, first bool, releases [][]string) (tr executor.TrajectoryReport, err error) {
	tr = executor.TrajectoryReport{Trajectory: t, Status: executor.StatusCompleted}
	defer func() {
		if rerr := e.store.Reset(ctx); rerr != nil && err == nil {
			err = rerr
		}
	}()

	if serr := e.setup(ctx, t); serr != nil {
		tr.Status = executor.StatusSkipped
		tr.Err = serr
		tr.Error = serr.Error()
		var se *executor.SetupError
		if errors.As(serr, &se) {
			tr.Module = se.Module
		}
		if first || objectstore.IsStoreError(serr) {
			return tr, serr
		}
		return tr, nil
	}

	for k, i := range e.schedule {
		n := e.g.Node(i)
		mctx, mlog := ctxlog.With(ctx, "module", n.Name)

		peak, xerr := e.executeModule(mctx, n, releases[k])
		if peak > tr.Peak {
			tr.Peak = peak
		}
		if xerr == nil {
			tr.Executed++
			continue
		}
		if objectstore.IsStoreError(xerr) {
			return tr, xerr
		}
		ee := &executor.ExecuteError{Module: n.Name, Trajectory: t, Err: xerr}
		mlog.Error("Module execution failed, aborting trajectory.", "error", xerr)
		tr.Status = executor.StatusFailed
		tr.Module = n.Name
		tr.Err = ee
		tr.Error = ee.Error()
		return tr, nil
	}

	if e.sink != nil {
		if werr := e.writeResults(ctx, t); werr != nil {
			tr.Status = executor.StatusFailed
			tr.Err = werr
			tr.Error = werr.Error()
		}
	}
	return tr, nil
}

// setup declares every module's objects in schedule order and checks them
// against the static estimates.
func (e *Executor) setup(ctx context.Context, t int) error {
	for _, i := range e.schedule {
		n := e.g.Node(i)
		mctx, _ := ctxlog.With(ctx, "module", n.Name)
		env := objectstore.NewEnv(e.store, n.Name)

		if err := n.Module.Setup(mctx, env); err != nil {
			if objectstore.IsStoreError(err) {
				return err
			}
			return &executor.SetupError{Module: n.Name, Trajectory: t, Err: err}
		}
		for _, out := range n.Outputs {
			if _, ok := e.store.Lookup(ctx, out); !ok {
				return &executor.SetupError{Module: n.Name, Trajectory: t, Err: fmt.Errorf("output %q was not declared", out)}
			}
		}
		e.checkEstimates(mctx, n)
	}
	return nil
}

// checkEstimates logs declared sizes that differ from what the schedule was
// profiled with. The schedule is kept either way.
func (e *Executor) checkEstimates(ctx context.Context, n *graph.Node) {
	logger := ctxlog.FromContext(ctx)
	declared := make(map[string]int64)
	for _, spec := range e.store.Owned(ctx, n.Name) {
		declared[spec.Name] = spec.Size
	}
	for _, est := range n.Module.Estimates() {
		name := est.Name
		if est.Class == objectstore.Temporary {
			name = objectstore.TempName(n.Name, est.Name)
		}
		size, ok := declared[name]
		if !ok {
			logger.Warn("Estimated object was not declared.", "object", name)
			continue
		}
		if size != est.Size {
			logger.Warn("Declared size differs from estimate.", "object", name, "declared", size, "estimated", est.Size)
		}
	}
}

// executeModule allocates a module's objects, runs it, releases its
// temporaries whatever the outcome, then applies the release plan. It
// returns the resident total reached while the module ran.
func (e *Executor) executeModule(ctx context.Context, n *graph.Node, release []string) (int64, error) {
	logger := ctxlog.FromContext(ctx)
	owned := e.store.Owned(ctx, n.Name)
	for _, spec := range owned {
		if _, err := e.store.Allocate(ctx, spec.Name); err != nil {
			return 0, err
		}
	}
	peak := e.store.Stats(ctx).Resident

	logger.Debug("Executing module.")
	runErr := n.Module.Execute(ctx, objectstore.NewEnv(e.store, n.Name))

	for _, spec := range owned {
		if spec.Class != objectstore.Temporary {
			continue
		}
		if err := e.store.Release(ctx, spec.Name); err != nil {
			return peak, err
		}
	}
	if runErr != nil {
		return peak, runErr
	}

	for _, name := range release {
		if err := e.store.Release(ctx, name); err != nil {
			return peak, err
		}
	}
	return peak, nil
}

func (e *Executor) writeResults(ctx context.Context, t int) error {
	logger := ctxlog.FromContext(ctx)
	for _, name := range e.g.Results() {
		obj, err := e.store.Get(ctx, name)
		if err != nil {
			logger.Debug("Result is not resident, not writing it.", "object", name)
			continue
		}
		if err := e.sink.Write(ctx, t, name, obj.Value); err != nil {
			return fmt.Errorf("writing result %q: %w", name, err)
		}
	}
	return nil
}

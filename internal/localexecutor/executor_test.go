package localexecutor

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/specialistvlad/fieldgridgo/internal/executor"
	"github.com/specialistvlad/fieldgridgo/internal/graph"
	"github.com/specialistvlad/fieldgridgo/internal/inmemorystore"
	"github.com/specialistvlad/fieldgridgo/internal/module"
	"github.com/specialistvlad/fieldgridgo/internal/objectstore"
	"github.com/specialistvlad/fieldgridgo/internal/profiler"
	"github.com/specialistvlad/fieldgridgo/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store *inmemorystore.Store
	prof  *profiler.Profiler
	calls *testutil.Calls
}

func newFixture(t *testing.T, mods ...module.Module) *fixture {
	t.Helper()
	calls := &testutil.Calls{}
	for _, m := range mods {
		if f, ok := m.(*testutil.FakeModule); ok {
			f.Calls = calls
		}
	}
	ctx := context.Background()
	g, err := graph.Build(ctx, mods, graph.Options{})
	require.NoError(t, err)
	return &fixture{
		store: inmemorystore.New(),
		prof:  profiler.New(ctx, g, profiler.PolicyFloor),
		calls: calls,
	}
}

func (f *fixture) executor(trajs executor.Range, sink executor.ResultSink) *Executor {
	return New(f.store, f.prof, f.prof.Graph().TopologicalOrder(), trajs, sink)
}

type memorySink struct {
	mu      sync.Mutex
	written map[int][]string
}

func (s *memorySink) Write(_ context.Context, trajectory int, object string, _ any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.written == nil {
		s.written = make(map[int][]string)
	}
	s.written[trajectory] = append(s.written[trajectory], object)
	return nil
}

func chain(n int) []module.Module {
	names := []string{"A", "B", "C", "D", "E"}[:n]
	mods := make([]module.Module, n)
	for i, name := range names {
		var in []string
		if i > 0 {
			in = []string{names[i-1] + "_out"}
		}
		mods[i] = testutil.NewFake(name, in, 1, name+"_out")
	}
	return mods
}

func TestExecute_ChainAcrossTrajectories(t *testing.T) {
	// --- Arrange ---
	f := newFixture(t, chain(3)...)
	sink := &memorySink{}
	exec := f.executor(executor.Range{Start: 0, End: 3, Step: 1}, sink)

	// --- Act ---
	report, err := exec.Execute(context.Background())

	// --- Assert ---
	require.NoError(t, err)
	require.Len(t, report.Trajectories, 3)
	for _, tr := range report.Trajectories {
		assert.Equal(t, executor.StatusCompleted, tr.Status)
		assert.Equal(t, 3, tr.Executed)
		assert.Equal(t, int64(2), tr.Peak, "executed peak matches the profile")
	}
	assert.Equal(t, []string{"C_out"}, sink.written[1])
	assert.Equal(t, 3, f.calls.Count("execute:B"))

	st := f.store.Stats(context.Background())
	assert.Equal(t, int64(0), st.Resident)
	assert.Equal(t, int64(2), st.Peak)
	assert.Equal(t, st.Allocations, st.Releases)

	_, running := exec.Current()
	assert.False(t, running)
}

func TestExecute_SetupRunsBeforeAnyExecute(t *testing.T) {
	f := newFixture(t, chain(2)...)

	_, err := f.executor(executor.Range{Start: 0, End: 1, Step: 1}, nil).Execute(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"setup:A", "setup:B", "execute:A", "execute:B"}, f.calls.List())
}

func TestExecute_CachedObjectSurvivesTrajectories(t *testing.T) {
	wall := testutil.NewFake("wall", nil, 2, "w")
	wall.Cached = []testutil.Object{{Name: "w_t", Size: 10}}
	f := newFixture(t, wall, testutil.NewFake("use", []string{"w", "w_t"}, 1, "out"))
	ctx := context.Background()

	_, err := f.executor(executor.Range{Start: 0, End: 1, Step: 1}, nil).Execute(ctx)
	require.NoError(t, err)
	first := f.store.Stats(ctx)
	firstObj, err := f.store.Get(ctx, "w_t")
	require.NoError(t, err)

	_, err = f.executor(executor.Range{Start: 1, End: 2, Step: 1}, nil).Execute(ctx)
	require.NoError(t, err)
	second := f.store.Stats(ctx)

	assert.True(t, f.store.IsCached(ctx, "w_t"))
	size, err := f.store.SizeOf(ctx, "w_t")
	require.NoError(t, err)
	assert.Equal(t, int64(10), size)
	secondObj, err := f.store.Get(ctx, "w_t")
	require.NoError(t, err)
	assert.Same(t, firstObj.Value, secondObj.Value, "cached payload is not rebuilt")
	// Trajectory 1 allocates w, w_t and out; trajectory 2 only w and out.
	assert.Equal(t, 3, first.Allocations)
	assert.Equal(t, 2, second.Allocations-first.Allocations)
	assert.Equal(t, int64(10), second.Resident)
}

func TestExecute_ExecuteErrorAbortsTrajectoryOnly(t *testing.T) {
	// --- Arrange ---
	mods := chain(5)
	third := mods[2].(*testutil.FakeModule)
	third.Temps = []testutil.Object{{Name: "work", Size: 7}}
	third.ExecuteErr = func(call int) error {
		if call == 1 {
			return errors.New("solver did not converge")
		}
		return nil
	}
	f := newFixture(t, mods...)
	ctx, logs := testutil.LogContext()

	// --- Act ---
	report, err := f.executor(executor.Range{Start: 0, End: 2, Step: 1}, nil).Execute(ctx)

	// --- Assert ---
	require.NoError(t, err)
	require.Len(t, report.Trajectories, 2)

	failed := report.Trajectories[0]
	assert.Equal(t, executor.StatusFailed, failed.Status)
	assert.Equal(t, "C", failed.Module)
	assert.Equal(t, 2, failed.Executed)
	var ee *executor.ExecuteError
	require.ErrorAs(t, failed.Err, &ee)
	assert.Equal(t, 0, ee.Trajectory)

	assert.Equal(t, executor.StatusCompleted, report.Trajectories[1].Status)
	assert.Equal(t, 1, f.calls.Count("execute:D"), "D only runs in the second trajectory")
	assert.Equal(t, 1, f.calls.Count("execute:E"))
	assert.Equal(t, 2, f.calls.Count("execute:C"))

	st := f.store.Stats(ctx)
	assert.Equal(t, int64(0), st.Resident, "temporaries and outputs of the failed trajectory are released")
	assert.Equal(t, st.Allocations, st.Releases)
	assert.Contains(t, logs.String(), "solver did not converge")
}

func mockModule(name string, outputs ...string) *testutil.MockModule {
	m := &testutil.MockModule{}
	m.On("Name").Return(name).Maybe()
	m.On("Type").Return("mock").Maybe()
	m.On("Inputs").Return([]string(nil)).Maybe()
	m.On("Outputs").Return(outputs).Maybe()
	est := make([]module.Estimate, 0, len(outputs))
	for _, out := range outputs {
		est = append(est, module.Estimate{Name: out, Size: 1, Class: objectstore.Owned})
	}
	m.On("Estimates").Return(est).Maybe()
	return m
}

func declare(name string) func(mock.Arguments) {
	return func(args mock.Arguments) {
		ctx := args.Get(0).(context.Context)
		env := args.Get(1).(*objectstore.Env)
		_ = env.Create(ctx, name, "mock", 1, 1, nil)
	}
}

func TestExecute_SetupErrorInFirstTrajectoryIsFatal(t *testing.T) {
	m := mockModule("prop", "q")
	m.On("Setup", mock.Anything, mock.Anything).Return(errors.New("Ls mismatch")).Once()
	f := newFixture(t, m)

	report, err := f.executor(executor.Range{Start: 0, End: 3, Step: 1}, nil).Execute(context.Background())

	var se *executor.SetupError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "prop", se.Module)
	require.Len(t, report.Trajectories, 1)
	assert.Equal(t, executor.StatusSkipped, report.Trajectories[0].Status)
	m.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

func TestExecute_SetupErrorLaterSkipsTrajectory(t *testing.T) {
	m := mockModule("prop", "q")
	m.On("Setup", mock.Anything, mock.Anything).Run(declare("q")).Return(nil).Once()
	m.On("Setup", mock.Anything, mock.Anything).Return(errors.New("Ls mismatch")).Once()
	m.On("Setup", mock.Anything, mock.Anything).Run(declare("q")).Return(nil).Once()
	m.On("Execute", mock.Anything, mock.Anything).Return(nil).Twice()
	f := newFixture(t, m)

	report, err := f.executor(executor.Range{Start: 0, End: 3, Step: 1}, nil).Execute(context.Background())

	require.NoError(t, err)
	require.Len(t, report.Trajectories, 3)
	assert.Equal(t, executor.StatusCompleted, report.Trajectories[0].Status)
	assert.Equal(t, executor.StatusSkipped, report.Trajectories[1].Status)
	assert.Equal(t, executor.StatusCompleted, report.Trajectories[2].Status)
	m.AssertExpectations(t)
}

func TestExecute_UndeclaredOutputIsSetupError(t *testing.T) {
	m := mockModule("prop", "q")
	m.On("Setup", mock.Anything, mock.Anything).Return(nil)
	f := newFixture(t, m)

	_, err := f.executor(executor.Range{Start: 0, End: 1, Step: 1}, nil).Execute(context.Background())

	var se *executor.SetupError
	require.ErrorAs(t, err, &se)
	assert.Contains(t, err.Error(), `output "q" was not declared`)
}

func TestExecute_StoreErrorIsFatal(t *testing.T) {
	m := mockModule("prop", "q")
	m.On("Setup", mock.Anything, mock.Anything).Run(declare("q")).Return(nil)
	m.On("Execute", mock.Anything, mock.Anything).
		Return(objectstore.NewError("get", "ghost", objectstore.ErrObjectNotFound))
	f := newFixture(t, m)

	report, err := f.executor(executor.Range{Start: 0, End: 3, Step: 1}, nil).Execute(context.Background())

	require.ErrorIs(t, err, objectstore.ErrObjectNotFound)
	assert.Len(t, report.Trajectories, 1)
}

func TestExecute_WarnsOnSizeDiscrepancy(t *testing.T) {
	a := testutil.NewFake("A", nil, 4, "a")
	a.SetupSize = map[string]int64{"a": 6}
	f := newFixture(t, a)
	ctx, logs := testutil.LogContext()

	report, err := f.executor(executor.Range{Start: 0, End: 1, Step: 1}, nil).Execute(ctx)

	require.NoError(t, err)
	assert.Equal(t, executor.StatusCompleted, report.Trajectories[0].Status)
	assert.Contains(t, logs.String(), "Declared size differs from estimate.")
	assert.Equal(t, int64(6), report.Trajectories[0].Peak)
}

func TestExecute_RejectsInvalidInputs(t *testing.T) {
	f := newFixture(t, chain(2)...)

	_, err := New(f.store, f.prof, []int{1, 0}, executor.Range{Start: 0, End: 1, Step: 1}, nil).Execute(context.Background())
	require.ErrorIs(t, err, graph.ErrInvalidSchedule)

	_, err = f.executor(executor.Range{Start: 0, End: 1, Step: 0}, nil).Execute(context.Background())
	require.Error(t, err)
}

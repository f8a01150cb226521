package graph

import (
	"context"
	"testing"

	"github.com/specialistvlad/fieldgridgo/internal/module"
	"github.com/specialistvlad/fieldgridgo/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fake(name string, inputs []string, outputs ...string) module.Module {
	return testutil.NewFake(name, inputs, 1, outputs...)
}

func build(t *testing.T, opts Options, mods ...module.Module) *Graph {
	t.Helper()
	g, err := Build(context.Background(), mods, opts)
	require.NoError(t, err)
	return g
}

func TestBuild_Chain(t *testing.T) {
	// --- Arrange ---
	mods := []module.Module{
		fake("C", []string{"b"}, "c"),
		fake("A", nil, "a"),
		fake("B", []string{"a"}, "b"),
	}

	// --- Act ---
	g := build(t, Options{}, mods...)

	// --- Assert ---
	a, _ := g.NodeByName("A")
	b, _ := g.NodeByName("B")
	c, _ := g.NodeByName("C")
	assert.Equal(t, []int{a.Index}, b.Deps)
	assert.Equal(t, []int{c.Index}, b.Dependents)
	assert.Equal(t, []string{"A", "B", "C"}, g.Names(g.TopologicalOrder()))
	assert.True(t, g.HasUniqueOrder())
	assert.Equal(t, []string{"c"}, g.Results())
	assert.True(t, g.DependsOn(c.Index, b.Index))
	assert.False(t, g.DependsOn(c.Index, a.Index))
}

func TestBuild_Errors(t *testing.T) {
	testCases := []struct {
		name   string
		mods   []module.Module
		opts   Options
		kind   error
		module string
		object string
	}{
		{
			name:   "unresolved input",
			mods:   []module.Module{fake("A", []string{"ghost"}, "a")},
			kind:   ErrUnresolvedInput,
			module: "A",
			object: "ghost",
		},
		{
			name: "duplicate output",
			mods: []module.Module{
				fake("A", nil, "x"),
				fake("B", nil, "x"),
			},
			kind:   ErrDuplicateOutput,
			module: "B",
			object: "x",
		},
		{
			name: "duplicate module",
			mods: []module.Module{
				fake("A", nil, "x"),
				fake("A", nil, "y"),
			},
			kind:   ErrDuplicateModule,
			module: "A",
		},
		{
			name:   "external produced by a module",
			mods:   []module.Module{fake("A", nil, "gauge")},
			opts:   Options{External: []string{"gauge"}},
			kind:   ErrExternalOutput,
			module: "A",
			object: "gauge",
		},
		{
			name:   "unknown result",
			mods:   []module.Module{fake("A", nil, "a")},
			opts:   Options{Results: []string{"typo"}},
			kind:   ErrUnknownResult,
			object: "typo",
		},
		{
			name:   "self loop",
			mods:   []module.Module{fake("A", []string{"a"}, "a")},
			kind:   ErrCycleDetected,
			module: "A",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Build(context.Background(), tc.mods, tc.opts)

			require.ErrorIs(t, err, tc.kind)
			var ge *GraphError
			require.ErrorAs(t, err, &ge)
			assert.Equal(t, tc.module, ge.Module)
			assert.Equal(t, tc.object, ge.Object)
			assert.True(t, IsGraphError(err))
		})
	}
}

func TestBuild_CycleReportsPath(t *testing.T) {
	mods := []module.Module{
		fake("root", nil, "r"),
		fake("A", []string{"r", "c"}, "a"),
		fake("B", []string{"a"}, "b"),
		fake("C", []string{"b"}, "c"),
	}

	_, err := Build(context.Background(), mods, Options{})

	require.ErrorIs(t, err, ErrCycleDetected)
	var ge *GraphError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, []string{"A", "B", "C", "A"}, ge.Path)
	assert.Contains(t, err.Error(), "A -> B -> C -> A")
}

func TestBuild_ExternalInputs(t *testing.T) {
	g := build(t, Options{External: []string{"gauge"}},
		fake("A", []string{"gauge"}, "a"),
	)

	assert.True(t, g.IsExternal("gauge"))
	_, produced := g.Producer("gauge")
	assert.False(t, produced)
	assert.Empty(t, g.Node(0).Deps)
}

func TestBuild_ExplicitResults(t *testing.T) {
	g := build(t, Options{Results: []string{"a"}},
		fake("A", nil, "a"),
		fake("B", []string{"a"}, "b"),
	)

	assert.True(t, g.IsResult("a"))
	assert.False(t, g.IsResult("b"))
}

func TestBuild_RepeatedInputIsOneEdge(t *testing.T) {
	g := build(t, Options{},
		fake("A", nil, "a", "a5"),
		fake("B", []string{"a", "a5", "a"}, "b"),
	)

	assert.Equal(t, []int{0}, g.Node(1).Deps)
	assert.Equal(t, []int{1}, g.Consumers("a"))
}

func TestTopologicalOrder_RespectsEveryEdge(t *testing.T) {
	g := build(t, Options{},
		fake("sink", []string{"p1", "p2"}, "out"),
		fake("p2", []string{"src", "solver"}, "p2"),
		fake("solver", []string{"action"}, "solver"),
		fake("p1", []string{"src", "solver"}, "p1"),
		fake("action", []string{"gauge"}, "action"),
		fake("src", nil, "src"),
		fake("gauge", nil, "gauge"),
	)

	order := g.TopologicalOrder()

	require.NoError(t, g.Validate(order))
	assert.False(t, g.HasUniqueOrder())
}

func TestValidate(t *testing.T) {
	g := build(t, Options{},
		fake("A", nil, "a"),
		fake("B", []string{"a"}, "b"),
		fake("C", nil, "c"),
	)

	testCases := []struct {
		name     string
		schedule []int
		wantErr  bool
	}{
		{"valid", []int{2, 0, 1}, false},
		{"valid alt", []int{0, 1, 2}, false},
		{"precedence violated", []int{1, 0, 2}, true},
		{"too short", []int{0, 1}, true},
		{"repeated", []int{0, 0, 1}, true},
		{"out of range", []int{0, 1, 3}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := g.Validate(tc.schedule)
			if tc.wantErr {
				require.ErrorIs(t, err, ErrInvalidSchedule)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestScheduleFromNames(t *testing.T) {
	g := build(t, Options{},
		fake("A", nil, "a"),
		fake("B", []string{"a"}, "b"),
	)

	s, err := g.ScheduleFromNames([]string{"A", "B"})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, s)

	_, err = g.ScheduleFromNames([]string{"A", "Z"})
	require.ErrorIs(t, err, ErrInvalidSchedule)

	_, err = g.ScheduleFromNames([]string{"B", "A"})
	require.ErrorIs(t, err, ErrInvalidSchedule)
}

package solver

import (
	"math/cmplx"
	"testing"

	"github.com/specialistvlad/fieldgridgo/modules/action"
	"github.com/specialistvlad/fieldgridgo/modules/lattice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unitGauge(g lattice.Geometry) *lattice.Field {
	u := lattice.NewField(g, lattice.GaugeComponents, 1)
	for site := 0; site < g.Volume(); site++ {
		for mu := 0; mu < lattice.Dimensions; mu++ {
			for a := 0; a < lattice.Colours; a++ {
				u.Data[u.Index(0, site, (mu*lattice.Colours+a)*lattice.Colours+a)] = 1
			}
		}
	}
	return u
}

func TestCG_Solve(t *testing.T) {
	// --- Arrange ---
	g, err := lattice.NewGeometry([]int{2, 2, 2, 4})
	require.NoError(t, err)
	cg := &CG{
		Action:       &action.Action{Gauge: unitGauge(g), Mass: 0.5, Ls: 2},
		Residual:     1e-12,
		MaxIteration: 500,
	}
	src := lattice.NewField(g, lattice.Colours, 2)
	src.Data[src.Index(0, 3, 1)] = 1
	src.Data[src.Index(1, 7, 2)] = 2i
	sol := lattice.NewField(g, lattice.Colours, 2)

	// --- Act ---
	iterations, err := cg.Solve(sol, src)

	// --- Assert ---
	require.NoError(t, err)
	assert.Positive(t, iterations)
	check := make([]complex128, g.Volume()*lattice.Colours)
	for s := 0; s < 2; s++ {
		cg.apply(check, sol.Slice(s), g)
		for i, want := range src.Slice(s) {
			assert.InDelta(t, 0, cmplx.Abs(check[i]-want), 1e-9, "slice %d index %d", s, i)
		}
	}
}

func TestCG_NotConverged(t *testing.T) {
	g, _ := lattice.NewGeometry([]int{2, 2, 2, 4})
	cg := &CG{Action: &action.Action{Gauge: unitGauge(g), Mass: 0.1}, Residual: 1e-14, MaxIteration: 1}
	src := lattice.NewField(g, lattice.Colours, 1)
	src.Data[0] = 1

	_, err := cg.Solve(lattice.NewField(g, lattice.Colours, 1), src)

	require.ErrorIs(t, err, ErrNotConverged)
}

func TestCG_ZeroSource(t *testing.T) {
	g, _ := lattice.NewGeometry([]int{2, 2, 2, 2})
	cg := &CG{Action: &action.Action{Gauge: unitGauge(g), Mass: 0.1}, Residual: 1e-8, MaxIteration: 1}

	n, err := cg.Solve(lattice.NewField(g, lattice.Colours, 1), lattice.NewField(g, lattice.Colours, 1))

	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCG_ShapeErrors(t *testing.T) {
	g, _ := lattice.NewGeometry([]int{2, 2, 2, 2})
	cg := &CG{Action: &action.Action{Gauge: unitGauge(g), Mass: 0.1}, Residual: 1e-8, MaxIteration: 10}

	_, err := cg.Solve(lattice.NewField(g, lattice.Colours, 2), lattice.NewField(g, lattice.Colours, 1))
	require.ErrorContains(t, err, "extent")

	_, err = cg.Solve(lattice.NewField(g, 1, 1), lattice.NewField(g, 1, 1))
	require.ErrorContains(t, err, "components")

	_, err = (&CG{}).Solve(lattice.NewField(g, lattice.Colours, 1), lattice.NewField(g, lattice.Colours, 1))
	require.ErrorContains(t, err, "no action")
}

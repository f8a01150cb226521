package contraction_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/fieldgridgo/internal/report"
	"github.com/specialistvlad/fieldgridgo/modules/action"
	"github.com/specialistvlad/fieldgridgo/modules/contraction"
	"github.com/specialistvlad/fieldgridgo/modules/fermion"
	"github.com/specialistvlad/fieldgridgo/modules/gauge"
	"github.com/specialistvlad/fieldgridgo/modules/moduletest"
	"github.com/specialistvlad/fieldgridgo/modules/sink"
	"github.com/specialistvlad/fieldgridgo/modules/solver"
	"github.com/specialistvlad/fieldgridgo/modules/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestMeson_PionChain(t *testing.T) {
	// --- Arrange ---
	dir := t.TempDir()

	// --- Act ---
	rep, _, err := moduletest.Run(t, 2, report.NewSink(dir),
		moduletest.MustBuild(t, gauge.NewUnit, "gauge", ``),
		moduletest.MustBuild(t, action.NewStaggered, "stag", `gauge = "gauge"`),
		moduletest.MustBuild(t, solver.NewCGModule, "cg", "action = \"stag\"\nresidual = 1e-10"),
		moduletest.MustBuild(t, source.NewPoint, "pt", `position = "0 0 0 0"`),
		moduletest.MustBuild(t, fermion.NewProp, "q", "source = \"pt\"\nsolver = \"cg\""),
		moduletest.MustBuild(t, sink.NewPoint, "sink", `mom = "0 0 0"`),
		moduletest.MustBuild(t, contraction.NewMeson, "meson", "q1 = \"q\"\nq2 = \"q\"\nsink = \"sink\"\noutput = \"pion\""),
	)

	// --- Assert ---
	require.NoError(t, err)
	require.Len(t, rep.Trajectories, 2)
	assert.Empty(t, rep.Failed())

	raw, err := os.ReadFile(filepath.Join(dir, "pion.1.yaml"))
	require.NoError(t, err)
	var saved struct {
		Correlator []contraction.Point `yaml:"correlator"`
	}
	require.NoError(t, yaml.Unmarshal(raw, &saved))
	require.Len(t, saved.Correlator, moduletest.Lattice[3])
	for _, p := range saved.Correlator {
		assert.Greater(t, p.Re, 0.0, "timeslice %d", p.T)
		assert.InDelta(t, 0, p.Im, 1e-9, "timeslice %d", p.T)
	}
	// The propagator decays away from the source timeslice.
	assert.Greater(t, saved.Correlator[0].Re, saved.Correlator[2].Re)
	assert.InDelta(t, saved.Correlator[1].Re, saved.Correlator[3].Re, 1e-9)
}

func TestNewMeson_Validation(t *testing.T) {
	_, err := moduletest.Build(t, contraction.NewMeson, "meson", `q1 = "a"
q2 = ""
sink = "s"`)
	require.Error(t, err)

	m := moduletest.MustBuild(t, contraction.NewMeson, "meson", "q1 = \"a\"\nq2 = \"b\"\nsink = \"s\"")
	assert.Equal(t, []string{"a", "b", "s"}, m.Inputs())
	assert.Equal(t, []string{"meson"}, m.Outputs())
}

func TestCorrelator_ResultStem(t *testing.T) {
	c := &contraction.Correlator{Stem: "pion", Corr: []complex128{1 + 2i}}

	assert.Equal(t, "pion", c.ResultStem())
	assert.Equal(t, map[string]any{"correlator": []contraction.Point{{T: 0, Re: 1, Im: 2}}}, c.ResultData())
}

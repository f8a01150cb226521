// Package moduletest builds and runs built-in modules in tests.
package moduletest

import (
	"context"
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/fieldgridgo/internal/config"
	"github.com/specialistvlad/fieldgridgo/internal/executor"
	confhcl "github.com/specialistvlad/fieldgridgo/internal/hcl"
	"github.com/specialistvlad/fieldgridgo/internal/localsession"
	"github.com/specialistvlad/fieldgridgo/internal/module"
	"github.com/specialistvlad/fieldgridgo/internal/profiler"
	"github.com/specialistvlad/fieldgridgo/internal/registry"
	"github.com/specialistvlad/fieldgridgo/internal/scheduler"
	"github.com/specialistvlad/fieldgridgo/internal/session"
	"github.com/stretchr/testify/require"
)

// Lattice is the geometry used by module tests.
var Lattice = []int{2, 2, 2, 4}

// Build decodes body as the parameters of one instance and calls the factory.
func Build(t testing.TB, f registry.Factory, name, body string) (module.Module, error) {
	t.Helper()
	return f(context.Background(), NewRequest(t, name, body))
}

// MustBuild is Build failing the test on error.
func MustBuild(t testing.TB, f registry.Factory, name, body string) module.Module {
	t.Helper()
	m, err := Build(t, f, name, body)
	require.NoError(t, err)
	return m
}

// NewRequest parses body and wires it to a converter over a test global.
func NewRequest(t testing.TB, name, body string) registry.Request {
	t.Helper()
	file, diags := hclsyntax.ParseConfig([]byte(body), name+".hcl", hcl.InitialPos)
	require.False(t, diags.HasErrors(), diags.Error())

	global := &config.Global{
		RunID:      "test",
		Lattice:    Lattice,
		Trajectory: config.Trajectory{Start: 0, End: 1, Step: 1},
	}
	conv, err := confhcl.NewConverter(global)
	require.NoError(t, err)

	return registry.Request{
		Name:   name,
		Global: global,
		Decode: func(target any) error {
			return conv.DecodeBody(context.Background(), file.Body, target)
		},
	}
}

// Run wires the modules into a session, lets the scheduler pick an order and
// executes trajectories [0, n).
func Run(t testing.TB, n int, sink executor.ResultSink, mods ...module.Module) (*executor.Report, session.Session, error) {
	t.Helper()
	ctx := context.Background()
	cfg := scheduler.DefaultConfig()
	cfg.Seed = 1
	cfg.MaxGenerations = 10

	sess, err := (&localsession.SessionFactory{}).NewSession(ctx, session.Spec{
		Modules:      mods,
		Trajectories: executor.Range{Start: 0, End: n, Step: 1},
		Policy:       profiler.PolicyFloor,
		Scheduler:    cfg,
		Sink:         sink,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sess.Close(ctx) })

	plan, err := sess.Schedule(ctx)
	require.NoError(t, err)
	exec, err := sess.GetExecutor(plan)
	require.NoError(t, err)
	report, err := exec.Execute(ctx)
	return report, sess, err
}

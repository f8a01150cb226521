// Package solver provides linear solver modules.
package solver

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/fieldgridgo/internal/module"
	"github.com/specialistvlad/fieldgridgo/internal/objectstore"
	"github.com/specialistvlad/fieldgridgo/internal/registry"
	"github.com/specialistvlad/fieldgridgo/modules/action"
	"github.com/specialistvlad/fieldgridgo/modules/lattice"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the solver.cg factory.
func (m *Module) Register(r *registry.Registry) {
	r.Register("solver.cg", NewCGModule)
}

// Params are the parameters of solver.cg.
type Params struct {
	Action       string   `hcl:"action"`
	Residual     *float64 `hcl:"residual,optional"`
	MaxIteration *int     `hcl:"max_iteration,optional"`
}

// CGModule builds a conjugate gradient solver over an action. The solver
// object inherits the extent of the action.
type CGModule struct {
	module.Base
	action       string
	residual     float64
	maxIteration int
}

// NewCGModule builds a solver.cg instance.
func NewCGModule(ctx context.Context, req registry.Request) (module.Module, error) {
	var p Params
	if err := req.Decode(&p); err != nil {
		return nil, err
	}
	if p.Action == "" {
		return nil, errors.New("action must not be empty")
	}
	m := &CGModule{
		Base:         module.NewBase(req.Name, "solver.cg"),
		action:       p.Action,
		residual:     1e-8,
		maxIteration: 10000,
	}
	if p.Residual != nil {
		if *p.Residual <= 0 {
			return nil, fmt.Errorf("residual must be positive, got %g", *p.Residual)
		}
		m.residual = *p.Residual
	}
	if p.MaxIteration != nil {
		if *p.MaxIteration < 1 {
			return nil, fmt.Errorf("max_iteration must be at least 1, got %d", *p.MaxIteration)
		}
		m.maxIteration = *p.MaxIteration
	}
	return m, nil
}

func (m *CGModule) Inputs() []string  { return []string{m.action} }
func (m *CGModule) Outputs() []string { return []string{m.Name()} }

func (m *CGModule) Estimates() []module.Estimate {
	return []module.Estimate{{Name: m.Name(), Size: lattice.HandleBytes, Class: objectstore.Owned}}
}

func (m *CGModule) Setup(ctx context.Context, env *objectstore.Env) error {
	ls, err := env.Extent(ctx, m.action)
	if err != nil {
		return err
	}
	return env.Create(ctx, m.Name(), "solver", lattice.HandleBytes, ls, func() any { return &CG{} })
}

func (m *CGModule) Execute(ctx context.Context, env *objectstore.Env) error {
	a, err := objectstore.As[*action.Action](ctx, env, m.action)
	if err != nil {
		return err
	}
	cg, err := objectstore.As[*CG](ctx, env, m.Name())
	if err != nil {
		return err
	}
	cg.Action, cg.Residual, cg.MaxIteration = a, m.residual, m.maxIteration
	return nil
}

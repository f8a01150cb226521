// Package fermion provides quark propagator modules.
package fermion

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/fieldgridgo/internal/ctxlog"
	"github.com/specialistvlad/fieldgridgo/internal/module"
	"github.com/specialistvlad/fieldgridgo/internal/objectstore"
	"github.com/specialistvlad/fieldgridgo/internal/registry"
	"github.com/specialistvlad/fieldgridgo/modules/lattice"
	"github.com/specialistvlad/fieldgridgo/modules/solver"
)

// ErrLsMismatch is returned when a 5-d source does not match the solver.
var ErrLsMismatch = errors.New("Ls mismatch")

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the fermion.prop factory.
func (m *Module) Register(r *registry.Registry) {
	r.Register("fermion.prop", NewProp)
}

// Params are the parameters of fermion.prop. Ls must match the extent of the
// solver's action; it decides whether <name>_5d exists.
type Params struct {
	Source string `hcl:"source"`
	Solver string `hcl:"solver"`
	Ls     *int   `hcl:"ls,optional"`
}

// Prop solves for a propagator. It produces the 4-d propagator <name> and,
// when Ls > 1, the full solution <name>_5d.
type Prop struct {
	module.Base
	geom   lattice.Geometry
	source string
	solver string
	ls     int
}

// NewProp builds a fermion.prop instance.
func NewProp(ctx context.Context, req registry.Request) (module.Module, error) {
	var p Params
	if err := req.Decode(&p); err != nil {
		return nil, err
	}
	if p.Source == "" || p.Solver == "" {
		return nil, errors.New("source and solver must not be empty")
	}
	geom, err := lattice.NewGeometry(req.Global.Lattice)
	if err != nil {
		return nil, err
	}
	m := &Prop{Base: module.NewBase(req.Name, "fermion.prop"), geom: geom, source: p.Source, solver: p.Solver, ls: 1}
	if p.Ls != nil {
		if *p.Ls < 1 {
			return nil, fmt.Errorf("ls must be at least 1, got %d", *p.Ls)
		}
		m.ls = *p.Ls
	}
	return m, nil
}

// Name5D is the name of the 5-d output.
func (m *Prop) Name5D() string { return m.Name() + "_5d" }

func (m *Prop) Inputs() []string { return []string{m.source, m.solver} }

func (m *Prop) Outputs() []string {
	if m.ls > 1 {
		return []string{m.Name(), m.Name5D()}
	}
	return []string{m.Name()}
}

func (m *Prop) Estimates() []module.Estimate {
	var est []module.Estimate
	for _, o := range m.objects(m.ls) {
		est = append(est, module.Estimate{Name: o.name, Size: lattice.Size(m.geom, lattice.Colours, o.extent), Class: o.class})
	}
	return est
}

type object struct {
	name   string
	class  objectstore.Lifetime
	extent int
}

func (m *Prop) objects(ls int) []object {
	objs := []object{{m.Name(), objectstore.Owned, 1}}
	if ls > 1 {
		objs = append(objs, object{m.Name5D(), objectstore.Owned, ls})
	}
	return append(objs,
		object{"tmp", objectstore.Temporary, 1},
		object{"src", objectstore.Temporary, ls},
		object{"sol", objectstore.Temporary, ls},
	)
}

func (m *Prop) Setup(ctx context.Context, env *objectstore.Env) error {
	ls, err := env.Extent(ctx, m.solver)
	if err != nil {
		return err
	}
	srcLs, err := env.Extent(ctx, m.source)
	if err != nil {
		return err
	}
	if ls != m.ls {
		return fmt.Errorf("%w: module declares ls = %d, solver %q has Ls = %d", ErrLsMismatch, m.ls, m.solver, ls)
	}
	if srcLs > 1 && srcLs != ls {
		return fmt.Errorf("%w: source %q has Ls = %d, solver %q has Ls = %d", ErrLsMismatch, m.source, srcLs, m.solver, ls)
	}

	for _, o := range m.objects(ls) {
		size := lattice.Size(m.geom, lattice.Colours, o.extent)
		alloc := lattice.Alloc(m.geom, lattice.Colours, o.extent)
		if o.class == objectstore.Temporary {
			err = env.Tmp(ctx, o.name, "fermion", size, o.extent, alloc)
		} else {
			err = env.Create(ctx, o.name, "fermion", size, o.extent, alloc)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (m *Prop) Execute(ctx context.Context, env *objectstore.Env) error {
	logger := ctxlog.FromContext(ctx)

	cg, err := objectstore.As[*solver.CG](ctx, env, m.solver)
	if err != nil {
		return err
	}
	source, err := objectstore.As[*lattice.Field](ctx, env, m.source)
	if err != nil {
		return err
	}
	src, err := m.tmp(ctx, env, "src")
	if err != nil {
		return err
	}
	sol, err := m.tmp(ctx, env, "sol")
	if err != nil {
		return err
	}
	tmp, err := m.tmp(ctx, env, "tmp")
	if err != nil {
		return err
	}

	src.Zero()
	if source.Extent == src.Extent {
		copy(src.Data, source.Data)
	} else {
		copy(src.Slice(0), source.Slice(0))
	}

	logger.Debug("Solving for propagator.", "source", m.source, "solver", m.solver, "ls", src.Extent)
	iterations, err := cg.Solve(sol, src)
	if err != nil {
		return err
	}
	logger.Debug("Solver converged.", "iterations", iterations)

	if sol.Extent > 1 {
		out5, err := objectstore.As[*lattice.Field](ctx, env, m.Name5D())
		if err != nil {
			return err
		}
		copy(out5.Data, sol.Data)
	}

	// 4-d propagator: sum of the two boundary slices of the fifth dimension.
	copy(tmp.Data, sol.Slice(0))
	if last := sol.Extent - 1; last > 0 {
		for i, v := range sol.Slice(last) {
			tmp.Data[i] += v
		}
	}
	out4, err := objectstore.As[*lattice.Field](ctx, env, m.Name())
	if err != nil {
		return err
	}
	copy(out4.Data, tmp.Data)
	return nil
}

func (m *Prop) tmp(ctx context.Context, env *objectstore.Env, name string) (*lattice.Field, error) {
	v, err := env.GetTmp(ctx, name)
	if err != nil {
		return nil, err
	}
	f, ok := v.(*lattice.Field)
	if !ok {
		return nil, fmt.Errorf("temporary %q holds %T", name, v)
	}
	return f, nil
}

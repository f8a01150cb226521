// Package action provides fermion action modules.
package action

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/fieldgridgo/internal/module"
	"github.com/specialistvlad/fieldgridgo/internal/objectstore"
	"github.com/specialistvlad/fieldgridgo/internal/registry"
	"github.com/specialistvlad/fieldgridgo/modules/lattice"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the action.staggered factory.
func (m *Module) Register(r *registry.Registry) {
	r.Register("action.staggered", NewStaggered)
}

// Action is the payload of an action object.
type Action struct {
	Gauge *lattice.Field
	Mass  float64
	// Ls is the extent of the fifth dimension the action acts on.
	Ls int
}

// Params are the parameters of action.staggered.
type Params struct {
	Gauge string   `hcl:"gauge"`
	Mass  *float64 `hcl:"mass,optional"`
	Ls    *int     `hcl:"ls,optional"`
}

// Staggered builds an action handle over a gauge field.
type Staggered struct {
	module.Base
	params Params
	mass   float64
	ls     int
}

// NewStaggered builds an action.staggered instance.
func NewStaggered(ctx context.Context, req registry.Request) (module.Module, error) {
	var p Params
	if err := req.Decode(&p); err != nil {
		return nil, err
	}
	if p.Gauge == "" {
		return nil, errors.New("gauge must not be empty")
	}
	s := &Staggered{Base: module.NewBase(req.Name, "action.staggered"), params: p, mass: 0.1, ls: 1}
	if p.Mass != nil {
		if *p.Mass <= 0 {
			return nil, fmt.Errorf("mass must be positive, got %g", *p.Mass)
		}
		s.mass = *p.Mass
	}
	if p.Ls != nil {
		if *p.Ls < 1 {
			return nil, fmt.Errorf("ls must be at least 1, got %d", *p.Ls)
		}
		s.ls = *p.Ls
	}
	return s, nil
}

func (s *Staggered) Inputs() []string  { return []string{s.params.Gauge} }
func (s *Staggered) Outputs() []string { return []string{s.Name()} }

func (s *Staggered) Estimates() []module.Estimate {
	return []module.Estimate{{Name: s.Name(), Size: lattice.HandleBytes, Class: objectstore.Owned}}
}

func (s *Staggered) Setup(ctx context.Context, env *objectstore.Env) error {
	return env.Create(ctx, s.Name(), "action", lattice.HandleBytes, s.ls, func() any { return &Action{} })
}

func (s *Staggered) Execute(ctx context.Context, env *objectstore.Env) error {
	gauge, err := objectstore.As[*lattice.Field](ctx, env, s.params.Gauge)
	if err != nil {
		return err
	}
	a, err := objectstore.As[*Action](ctx, env, s.Name())
	if err != nil {
		return err
	}
	a.Gauge, a.Mass, a.Ls = gauge, s.mass, s.ls
	return nil
}

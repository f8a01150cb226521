// Package gauge provides gauge field modules.
package gauge

import (
	"context"

	"github.com/specialistvlad/fieldgridgo/internal/module"
	"github.com/specialistvlad/fieldgridgo/internal/objectstore"
	"github.com/specialistvlad/fieldgridgo/internal/registry"
	"github.com/specialistvlad/fieldgridgo/modules/lattice"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the gauge.unit factory.
func (m *Module) Register(r *registry.Registry) {
	r.Register("gauge.unit", NewUnit)
}

// Unit produces a gauge field with every link set to the identity.
type Unit struct {
	module.Base
	geom lattice.Geometry
}

// NewUnit builds a gauge.unit instance. It takes no parameters.
func NewUnit(ctx context.Context, req registry.Request) (module.Module, error) {
	var params struct{}
	if err := req.Decode(&params); err != nil {
		return nil, err
	}
	geom, err := lattice.NewGeometry(req.Global.Lattice)
	if err != nil {
		return nil, err
	}
	return &Unit{Base: module.NewBase(req.Name, "gauge.unit"), geom: geom}, nil
}

func (u *Unit) Inputs() []string  { return nil }
func (u *Unit) Outputs() []string { return []string{u.Name()} }

func (u *Unit) Estimates() []module.Estimate {
	return []module.Estimate{{
		Name:  u.Name(),
		Size:  lattice.Size(u.geom, lattice.GaugeComponents, 1),
		Class: objectstore.Owned,
	}}
}

func (u *Unit) Setup(ctx context.Context, env *objectstore.Env) error {
	return env.Create(ctx, u.Name(), "gauge", lattice.Size(u.geom, lattice.GaugeComponents, 1), 1,
		lattice.Alloc(u.geom, lattice.GaugeComponents, 1))
}

func (u *Unit) Execute(ctx context.Context, env *objectstore.Env) error {
	f, err := objectstore.As[*lattice.Field](ctx, env, u.Name())
	if err != nil {
		return err
	}
	f.Zero()
	for site := 0; site < u.geom.Volume(); site++ {
		for mu := 0; mu < lattice.Dimensions; mu++ {
			for a := 0; a < lattice.Colours; a++ {
				f.Data[f.Index(0, site, (mu*lattice.Colours+a)*lattice.Colours+a)] = 1
			}
		}
	}
	return nil
}

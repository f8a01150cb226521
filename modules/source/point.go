package source

import (
	"context"
	"fmt"

	"github.com/specialistvlad/fieldgridgo/internal/module"
	"github.com/specialistvlad/fieldgridgo/internal/objectstore"
	"github.com/specialistvlad/fieldgridgo/internal/registry"
	"github.com/specialistvlad/fieldgridgo/modules/lattice"
)

// PointParams are the parameters of source.point.
type PointParams struct {
	Position string `hcl:"position"`
}

// Point is a unit source on every colour of a single site.
type Point struct {
	module.Base
	geom lattice.Geometry
	site int
}

// NewPoint builds a source.point instance.
func NewPoint(ctx context.Context, req registry.Request) (module.Module, error) {
	var p PointParams
	if err := req.Decode(&p); err != nil {
		return nil, err
	}
	geom, err := lattice.NewGeometry(req.Global.Lattice)
	if err != nil {
		return nil, err
	}
	pos, err := lattice.ParseCoords(p.Position)
	if err != nil {
		return nil, err
	}
	if len(pos) != len(geom.Dims) {
		return nil, fmt.Errorf("position %q has %d coordinates, lattice has %d dimensions", p.Position, len(pos), len(geom.Dims))
	}
	return &Point{Base: module.NewBase(req.Name, "source.point"), geom: geom, site: geom.Site(pos)}, nil
}

func (p *Point) Inputs() []string  { return nil }
func (p *Point) Outputs() []string { return []string{p.Name()} }

func (p *Point) Estimates() []module.Estimate {
	return []module.Estimate{{Name: p.Name(), Size: lattice.Size(p.geom, lattice.Colours, 1), Class: objectstore.Owned}}
}

func (p *Point) Setup(ctx context.Context, env *objectstore.Env) error {
	return env.Create(ctx, p.Name(), "fermion", lattice.Size(p.geom, lattice.Colours, 1), 1,
		lattice.Alloc(p.geom, lattice.Colours, 1))
}

func (p *Point) Execute(ctx context.Context, env *objectstore.Env) error {
	f, err := objectstore.As[*lattice.Field](ctx, env, p.Name())
	if err != nil {
		return err
	}
	f.Zero()
	for c := 0; c < lattice.Colours; c++ {
		f.Data[f.Index(0, p.site, c)] = 1
	}
	return nil
}

package source

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/specialistvlad/fieldgridgo/internal/ctxlog"
	"github.com/specialistvlad/fieldgridgo/internal/module"
	"github.com/specialistvlad/fieldgridgo/internal/objectstore"
	"github.com/specialistvlad/fieldgridgo/internal/registry"
	"github.com/specialistvlad/fieldgridgo/modules/lattice"
)

// WallParams are the parameters of source.random_wall.
type WallParams struct {
	Tw   int     `hcl:"tw"`
	Seed *uint64 `hcl:"seed,optional"`
}

// Coordinate is the cached time coordinate of every site.
type Coordinate struct {
	Field  *lattice.Field
	Filled bool
}

// RandomWall is a Z2 noise source on the timeslice tw. The time coordinate
// field it needs is cached across trajectories as <name>_t, which is not
// part of the graph.
type RandomWall struct {
	module.Base
	geom lattice.Geometry
	tw   int
	rng  *rand.Rand
}

// NewRandomWall builds a source.random_wall instance.
func NewRandomWall(ctx context.Context, req registry.Request) (module.Module, error) {
	var p WallParams
	if err := req.Decode(&p); err != nil {
		return nil, err
	}
	geom, err := lattice.NewGeometry(req.Global.Lattice)
	if err != nil {
		return nil, err
	}
	if p.Tw < 0 || p.Tw >= geom.Nt() {
		return nil, fmt.Errorf("tw %d is outside the temporal extent %d", p.Tw, geom.Nt())
	}
	seed := rand.Uint64()
	if p.Seed != nil {
		seed = *p.Seed
	}
	return &RandomWall{
		Base: module.NewBase(req.Name, "source.random_wall"),
		geom: geom,
		tw:   p.Tw,
		rng:  rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}, nil
}

// CoordinateName is the name of the cached time coordinate field.
func (w *RandomWall) CoordinateName() string { return w.Name() + "_t" }

func (w *RandomWall) Inputs() []string  { return nil }
func (w *RandomWall) Outputs() []string { return []string{w.Name()} }

func (w *RandomWall) Estimates() []module.Estimate {
	return []module.Estimate{
		{Name: w.Name(), Size: lattice.Size(w.geom, lattice.Colours, 1), Class: objectstore.Owned},
		{Name: w.CoordinateName(), Size: lattice.Size(w.geom, 1, 1), Class: objectstore.Cached},
		{Name: "eta", Size: lattice.Size(w.geom, 1, 1), Class: objectstore.Temporary},
	}
}

func (w *RandomWall) Setup(ctx context.Context, env *objectstore.Env) error {
	if err := env.Create(ctx, w.Name(), "fermion", lattice.Size(w.geom, lattice.Colours, 1), 1,
		lattice.Alloc(w.geom, lattice.Colours, 1)); err != nil {
		return err
	}
	if err := env.Cache(ctx, w.CoordinateName(), "coordinate", lattice.Size(w.geom, 1, 1), 1, func() any {
		return &Coordinate{Field: lattice.NewField(w.geom, 1, 1)}
	}); err != nil {
		return err
	}
	return env.Tmp(ctx, "eta", "noise", lattice.Size(w.geom, 1, 1), 1, lattice.Alloc(w.geom, 1, 1))
}

func (w *RandomWall) Execute(ctx context.Context, env *objectstore.Env) error {
	coord, err := objectstore.As[*Coordinate](ctx, env, w.CoordinateName())
	if err != nil {
		return err
	}
	if !coord.Filled {
		ctxlog.FromContext(ctx).Debug("Filling time coordinate.", "object", w.CoordinateName())
		for site := 0; site < w.geom.Volume(); site++ {
			t := w.geom.Coords(site)[len(w.geom.Dims)-1]
			coord.Field.Data[site] = complex(float64(t), 0)
		}
		coord.Filled = true
	}

	v, err := env.GetTmp(ctx, "eta")
	if err != nil {
		return err
	}
	eta := v.(*lattice.Field)
	for i := range eta.Data {
		eta.Data[i] = 1
		if w.rng.IntN(2) == 0 {
			eta.Data[i] = -1
		}
	}

	src, err := objectstore.As[*lattice.Field](ctx, env, w.Name())
	if err != nil {
		return err
	}
	src.Zero()
	for site := 0; site < w.geom.Volume(); site++ {
		if int(real(coord.Field.Data[site])) != w.tw {
			continue
		}
		for c := 0; c < lattice.Colours; c++ {
			src.Data[src.Index(0, site, c)] = eta.Data[site]
		}
	}
	return nil
}

// Package sink provides momentum projection sinks for contractions.
package sink

import (
	"context"
	"fmt"

	"github.com/specialistvlad/fieldgridgo/internal/module"
	"github.com/specialistvlad/fieldgridgo/internal/objectstore"
	"github.com/specialistvlad/fieldgridgo/internal/registry"
	"github.com/specialistvlad/fieldgridgo/modules/lattice"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the sink.point factory.
func (m *Module) Register(r *registry.Registry) {
	r.Register("sink.point", NewPoint)
}

// Sink is the payload of a sink object: the spatial momentum the contraction
// projects onto, in units of 2*pi/L.
type Sink struct {
	Mom []int
}

// Params are the parameters of sink.point.
type Params struct {
	Mom string `hcl:"mom,optional"`
}

// Point is a point sink with a fixed momentum.
type Point struct {
	module.Base
	mom []int
}

// NewPoint builds a sink.point instance.
func NewPoint(ctx context.Context, req registry.Request) (module.Module, error) {
	var p Params
	if err := req.Decode(&p); err != nil {
		return nil, err
	}
	mom, err := lattice.ParseCoords(p.Mom)
	if err != nil {
		return nil, err
	}
	if spatial := len(req.Global.Lattice) - 1; len(mom) > spatial {
		return nil, fmt.Errorf("mom %q has %d components, lattice has %d spatial dimensions", p.Mom, len(mom), spatial)
	}
	return &Point{Base: module.NewBase(req.Name, "sink.point"), mom: mom}, nil
}

func (p *Point) Inputs() []string  { return nil }
func (p *Point) Outputs() []string { return []string{p.Name()} }

func (p *Point) Estimates() []module.Estimate {
	return []module.Estimate{{Name: p.Name(), Size: lattice.HandleBytes, Class: objectstore.Owned}}
}

func (p *Point) Setup(ctx context.Context, env *objectstore.Env) error {
	return env.Create(ctx, p.Name(), "sink", lattice.HandleBytes, 1, func() any { return &Sink{} })
}

func (p *Point) Execute(ctx context.Context, env *objectstore.Env) error {
	s, err := objectstore.As[*Sink](ctx, env, p.Name())
	if err != nil {
		return err
	}
	s.Mom = append(s.Mom[:0], p.mom...)
	return nil
}

// Package contraction provides correlator contraction modules.
package contraction

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/specialistvlad/fieldgridgo/internal/module"
	"github.com/specialistvlad/fieldgridgo/internal/objectstore"
	"github.com/specialistvlad/fieldgridgo/internal/registry"
	"github.com/specialistvlad/fieldgridgo/internal/report"
	"github.com/specialistvlad/fieldgridgo/modules/lattice"
	"github.com/specialistvlad/fieldgridgo/modules/sink"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the contraction.meson factory.
func (m *Module) Register(r *registry.Registry) {
	r.Register("contraction.meson", NewMeson)
}

// Params are the parameters of contraction.meson.
type Params struct {
	Q1     string `hcl:"q1"`
	Q2     string `hcl:"q2"`
	Sink   string `hcl:"sink"`
	Output string `hcl:"output,optional"`
}

// Correlator is the payload of a meson contraction: one value per timeslice.
type Correlator struct {
	Stem string
	Corr []complex128
}

var _ report.Result = (*Correlator)(nil)

// Point is one timeslice of a saved correlator.
type Point struct {
	T  int     `yaml:"t"`
	Re float64 `yaml:"re"`
	Im float64 `yaml:"im"`
}

func (c *Correlator) ResultStem() string { return c.Stem }

func (c *Correlator) ResultData() any {
	out := make([]Point, len(c.Corr))
	for t, v := range c.Corr {
		out[t] = Point{T: t, Re: real(v), Im: imag(v)}
	}
	return map[string]any{"correlator": out}
}

// Meson contracts two propagators into a two-point function projected on the
// sink momentum.
type Meson struct {
	module.Base
	geom   lattice.Geometry
	params Params
}

// NewMeson builds a contraction.meson instance.
func NewMeson(ctx context.Context, req registry.Request) (module.Module, error) {
	var p Params
	if err := req.Decode(&p); err != nil {
		return nil, err
	}
	if p.Q1 == "" || p.Q2 == "" || p.Sink == "" {
		return nil, errors.New("q1, q2 and sink must not be empty")
	}
	if p.Output == "" {
		p.Output = req.Name
	}
	geom, err := lattice.NewGeometry(req.Global.Lattice)
	if err != nil {
		return nil, err
	}
	return &Meson{Base: module.NewBase(req.Name, "contraction.meson"), geom: geom, params: p}, nil
}

func (m *Meson) Inputs() []string  { return []string{m.params.Q1, m.params.Q2, m.params.Sink} }
func (m *Meson) Outputs() []string { return []string{m.Name()} }

func (m *Meson) size() int64 {
	return int64(m.geom.Nt()) * lattice.ComplexBytes
}

func (m *Meson) Estimates() []module.Estimate {
	return []module.Estimate{{Name: m.Name(), Size: m.size(), Class: objectstore.Owned}}
}

func (m *Meson) Setup(ctx context.Context, env *objectstore.Env) error {
	return env.Create(ctx, m.Name(), "correlator", m.size(), 1, func() any {
		return &Correlator{Stem: m.params.Output, Corr: make([]complex128, m.geom.Nt())}
	})
}

func (m *Meson) Execute(ctx context.Context, env *objectstore.Env) error {
	q1, err := objectstore.As[*lattice.Field](ctx, env, m.params.Q1)
	if err != nil {
		return err
	}
	q2, err := objectstore.As[*lattice.Field](ctx, env, m.params.Q2)
	if err != nil {
		return err
	}
	snk, err := objectstore.As[*sink.Sink](ctx, env, m.params.Sink)
	if err != nil {
		return err
	}
	out, err := objectstore.As[*Correlator](ctx, env, m.Name())
	if err != nil {
		return err
	}

	if q1.Components != lattice.Colours || q2.Components != lattice.Colours {
		return fmt.Errorf("propagators need %d components per site, got %d and %d", lattice.Colours, q1.Components, q2.Components)
	}
	clear(out.Corr)
	a, b := q1.Slice(0), q2.Slice(0)
	nt := len(m.geom.Dims) - 1
	for site := 0; site < m.geom.Volume(); site++ {
		x := m.geom.Coords(site)
		phase := 0.0
		for k, p := range snk.Mom {
			phase += 2 * math.Pi * float64(p*x[k]) / float64(m.geom.Dims[k])
		}
		var s complex128
		for c := 0; c < lattice.Colours; c++ {
			s += cmplx.Conj(b[site*lattice.Colours+c]) * a[site*lattice.Colours+c]
		}
		out.Corr[x[nt]] += s * cmplx.Exp(complex(0, phase))
	}
	return nil
}

package solver

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/specialistvlad/fieldgridgo/modules/action"
	"github.com/specialistvlad/fieldgridgo/modules/lattice"
)

// ErrNotConverged is returned when the iteration budget runs out before the
// target residual is reached.
var ErrNotConverged = errors.New("solver did not converge")

// CG is the payload of a solver object: a conjugate gradient solver for the
// positive definite operator m^2 + 2d - D, where D is the gauge covariant
// hopping term. Slices of the fifth dimension are solved independently.
type CG struct {
	Action       *action.Action
	Residual     float64
	MaxIteration int
}

// Solve writes the solution for src into sol and returns the total number of
// iterations.
func (c *CG) Solve(sol, src *lattice.Field) (int, error) {
	if c.Action == nil || c.Action.Gauge == nil {
		return 0, errors.New("solver has no action")
	}
	if src.Components != lattice.Colours || sol.Components != lattice.Colours {
		return 0, fmt.Errorf("solver needs %d components per site, got %d and %d",
			lattice.Colours, src.Components, sol.Components)
	}
	if sol.Extent != src.Extent {
		return 0, fmt.Errorf("solution extent %d differs from source extent %d", sol.Extent, src.Extent)
	}
	total := 0
	for s := 0; s < src.Extent; s++ {
		n, err := c.solve(sol.Slice(s), src.Slice(s), src.Geometry)
		total += n
		if err != nil {
			return total, fmt.Errorf("slice %d: %w", s, err)
		}
	}
	return total, nil
}

func (c *CG) solve(x, b []complex128, g lattice.Geometry) (int, error) {
	clear(x)
	bb := real(dot(b, b))
	if bb == 0 {
		return 0, nil
	}
	r := append([]complex128(nil), b...)
	p := append([]complex128(nil), b...)
	ap := make([]complex128, len(b))
	rr := bb
	for k := 1; k <= c.MaxIteration; k++ {
		c.apply(ap, p, g)
		alpha := complex(rr/real(dot(p, ap)), 0)
		for i := range x {
			x[i] += alpha * p[i]
			r[i] -= alpha * ap[i]
		}
		next := real(dot(r, r))
		if math.Sqrt(next/bb) < c.Residual {
			return k, nil
		}
		beta := complex(next/rr, 0)
		for i := range p {
			p[i] = r[i] + beta*p[i]
		}
		rr = next
	}
	return c.MaxIteration, fmt.Errorf("%w: residual %.3g after %d iterations",
		ErrNotConverged, math.Sqrt(rr/bb), c.MaxIteration)
}

func (c *CG) apply(dst, src []complex128, g lattice.Geometry) {
	u := c.Action.Gauge
	nd := min(len(g.Dims), lattice.Dimensions)
	diag := complex(c.Action.Mass*c.Action.Mass+2*float64(nd), 0)
	link := func(site, mu, a, b int) complex128 {
		return u.Data[u.Index(0, site, (mu*lattice.Colours+a)*lattice.Colours+b)]
	}

	for site := 0; site < g.Volume(); site++ {
		x := g.Coords(site)
		for a := 0; a < lattice.Colours; a++ {
			dst[site*lattice.Colours+a] = diag * src[site*lattice.Colours+a]
		}
		for mu := 0; mu < nd; mu++ {
			x[mu]++
			fwd := g.Site(x)
			x[mu] -= 2
			bwd := g.Site(x)
			x[mu]++
			for a := 0; a < lattice.Colours; a++ {
				var hop complex128
				for b := 0; b < lattice.Colours; b++ {
					hop += link(site, mu, a, b) * src[fwd*lattice.Colours+b]
					hop += cmplx.Conj(link(bwd, mu, b, a)) * src[bwd*lattice.Colours+b]
				}
				dst[site*lattice.Colours+a] -= hop
			}
		}
	}
}

func dot(a, b []complex128) complex128 {
	var s complex128
	for i := range a {
		s += cmplx.Conj(a[i]) * b[i]
	}
	return s
}

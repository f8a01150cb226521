// Package lattice holds the field representation shared by the built-in
// modules: a geometry, and fields of complex numbers laid out site-major with
// an optional fifth dimension.
package lattice

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ComplexBytes is the storage size of one field component.
const ComplexBytes = 16

// HandleBytes is the nominal size of a non-field object such as an action or
// a solver.
const HandleBytes = 64

// Component counts per site.
const (
	Colours         = 3
	Dimensions      = 4
	GaugeComponents = Dimensions * Colours * Colours
)

// Geometry is the extent of the lattice in every dimension. The last
// dimension is time.
type Geometry struct {
	Dims []int
}

// NewGeometry validates a lattice description.
func NewGeometry(dims []int) (Geometry, error) {
	if len(dims) == 0 {
		return Geometry{}, errors.New("lattice geometry is empty")
	}
	for i, d := range dims {
		if d <= 0 {
			return Geometry{}, fmt.Errorf("lattice dimension %d must be positive, got %d", i, d)
		}
	}
	return Geometry{Dims: append([]int(nil), dims...)}, nil
}

// Volume is the number of sites.
func (g Geometry) Volume() int {
	v := 1
	for _, d := range g.Dims {
		v *= d
	}
	return v
}

// Nt is the temporal extent.
func (g Geometry) Nt() int {
	return g.Dims[len(g.Dims)-1]
}

// Coords returns the coordinates of a site. The first dimension runs fastest.
func (g Geometry) Coords(site int) []int {
	c := make([]int, len(g.Dims))
	for i, d := range g.Dims {
		c[i] = site % d
		site /= d
	}
	return c
}

// Site returns the index of a coordinate, wrapping each component into range.
func (g Geometry) Site(coords []int) int {
	site, stride := 0, 1
	for i, d := range g.Dims {
		x := 0
		if i < len(coords) {
			x = ((coords[i] % d) + d) % d
		}
		site += x * stride
		stride *= d
	}
	return site
}

// ParseCoords parses a space separated integer list such as "0 0 0 0".
func ParseCoords(s string) ([]int, error) {
	fields := strings.Fields(s)
	out := make([]int, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("invalid coordinate %q: %w", f, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// Size is the byte size of a field with comps components per site and the
// given extent.
func Size(g Geometry, comps, extent int) int64 {
	if extent < 1 {
		extent = 1
	}
	return int64(g.Volume()) * int64(comps) * int64(extent) * ComplexBytes
}

// Field is a lattice field. Data is indexed by Index.
type Field struct {
	Geometry   Geometry
	Components int
	Extent     int
	Data       []complex128
}

// NewField allocates a zero field.
func NewField(g Geometry, comps, extent int) *Field {
	if extent < 1 {
		extent = 1
	}
	return &Field{
		Geometry:   g,
		Components: comps,
		Extent:     extent,
		Data:       make([]complex128, g.Volume()*comps*extent),
	}
}

// Alloc returns a constructor suitable for objectstore declarations.
func Alloc(g Geometry, comps, extent int) func() any {
	return func() any { return NewField(g, comps, extent) }
}

// Index locates component c of site in slice s of the fifth dimension.
func (f *Field) Index(s, site, c int) int {
	return (s*f.Geometry.Volume()+site)*f.Components + c
}

// Slice returns the 4-d slice s of the field.
func (f *Field) Slice(s int) []complex128 {
	n := f.Geometry.Volume() * f.Components
	return f.Data[s*n : (s+1)*n]
}

// Bytes is the storage size of the field.
func (f *Field) Bytes() int64 {
	return int64(len(f.Data)) * ComplexBytes
}

// Zero clears the field.
func (f *Field) Zero() {
	clear(f.Data)
}

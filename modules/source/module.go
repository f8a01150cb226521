// Package source provides fermion source modules.
package source

import (
	"github.com/specialistvlad/fieldgridgo/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the source.point and source.random_wall factories.
func (m *Module) Register(r *registry.Registry) {
	r.Register("source.point", NewPoint)
	r.Register("source.random_wall", NewRandomWall)
}

// Package module defines the contract every configured module instance
// implements. The graph builder, the memory profiler and the execution
// driver only ever see a module through this interface; the numerical work a
// module does is opaque to them.
package module

import (
	"context"

	"github.com/specialistvlad/fieldgridgo/internal/objectstore"
)

// Module is one configured unit of work.
type Module interface {
	// Name is the unique instance name.
	Name() string
	// Type is the registry tag the instance was built from.
	Type() string
	// Inputs returns the names of the objects the module reads, in order.
	Inputs() []string
	// Outputs returns the names of the objects the module produces, in order.
	Outputs() []string
	// Estimates reports the byte size of every output and temporary the module
	// will declare during setup. Estimates must not depend on run-time state.
	Estimates() []Estimate
	// Setup declares outputs and temporaries in the store. It runs once per
	// trajectory, before any module executes.
	Setup(ctx context.Context, env *objectstore.Env) error
	// Execute runs the module's computation. Inputs and owned objects are
	// resident when it is called.
	Execute(ctx context.Context, env *objectstore.Env) error
}

// Estimate is the static size metadata of one object a module declares.
// Temporaries use their logical name, not the owner-scoped store key.
type Estimate struct {
	Name  string
	Size  int64
	Class objectstore.Lifetime
}

// Base carries the identity part of a module. Implementations embed it.
type Base struct {
	name string
	typ  string
}

// NewBase builds the identity of a module instance.
func NewBase(name, typ string) Base {
	return Base{name: name, typ: typ}
}

func (b Base) Name() string { return b.name }
func (b Base) Type() string { return b.typ }

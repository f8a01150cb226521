// Package objectstore defines the interface of the environment that owns every
// field object of a run.
//
// # Why Object Store Exists
//
// Modules never hold field objects directly. They reference objects by name and
// the store decides when the bytes behind a name become resident and when they
// are given back. This isolates the lifetime rules (temporary, owned output,
// cached) from the numerical code and makes the memory schedule enforceable:
//   - **Setup** declares objects: type, byte size, extent and lifetime class
//   - **Execute** allocates the declared objects of one module right before it
//     runs and reads its inputs through Get
//   - **Release** gives bytes back after the last scheduled consumer
//
// # Lifecycle
//
//  1. **Declared** during a module's setup (state Absent)
//  2. **Allocated** right before the producing module executes (state Resident)
//  3. **Released** after the last consumer, or at trajectory teardown (state Absent)
//  4. **Forgotten** by Reset at the end of the trajectory, unless cached
//
// Cached objects skip steps 3 and 4: they stay resident for the whole
// trajectory loop and are only dropped by Close.
//
// # Errors
//
// Every failure returned by a Store is a *StoreError. Such errors point at a
// scheduling or lifetime-tracking bug and are never recoverable.
package objectstore

import "context"

// Store is the interface for the arena of named field objects.
//
// # Thread-Safety Requirements
//
// Implementations MUST be safe for concurrent use. The execution driver is
// sequential, but monitoring (health checks, reports) reads Stats while a
// trajectory runs.
type Store interface {
	// Declare registers an object's metadata without allocating it.
	//
	// Declaring a cached object that already exists is a no-op. Declaring any
	// other name twice before Reset returns ErrAlreadyExists.
	Declare(ctx context.Context, spec Spec) error

	// Allocate makes a declared object resident by calling its constructor.
	//
	// Allocating a resident cached object is a no-op that returns the existing
	// object. Allocating any other resident object returns ErrAlreadyExists.
	Allocate(ctx context.Context, name string) (*Object, error)

	// Get returns a resident object, or ErrObjectNotFound if the name is
	// unknown or not resident.
	Get(ctx context.Context, name string) (*Object, error)

	// Lookup returns the declared metadata of an object regardless of its
	// residency state.
	Lookup(ctx context.Context, name string) (Spec, bool)

	// Release gives back the bytes of a resident object.
	//
	// Unknown names return ErrObjectNotFound, already released objects return
	// ErrDoubleRelease and cached objects return ErrCachedRelease.
	Release(ctx context.Context, name string) error

	// IsCached reports whether name is declared with the Cached lifetime.
	IsCached(ctx context.Context, name string) bool

	// SizeOf returns the declared byte size of an object.
	SizeOf(ctx context.Context, name string) (int64, error)

	// Owned returns the declarations made by one module, in declaration order.
	Owned(ctx context.Context, owner string) []Spec

	// Reset ends a trajectory: every resident non-cached object is released
	// and every non-cached declaration is forgotten.
	Reset(ctx context.Context) error

	// Close ends the run and drops every object, cached ones included.
	Close(ctx context.Context) error

	// Stats returns a snapshot of the allocation counters.
	Stats(ctx context.Context) Stats
}

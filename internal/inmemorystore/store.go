// Package inmemorystore provides an ephemeral, thread-safe, in-memory
// implementation of the objectstore.Store interface.
//
// # Purpose
//
// This package implements the object arena for local execution sessions.
// Every object is keyed by name. Residency and byte counters are tracked
// from the sizes modules declare, so Stats reflects what the memory profiler
// predicted rather than what the Go runtime happens to hold.
//
// # Concurrency Model
//
// Unlike the per-key maps of a status store, lifetime transitions must update
// the object and the global counters together. A single RWMutex guards both:
//   - **Writes:** Declare, Allocate, Release, Reset and Close take the write lock
//   - **Reads:** Get, Lookup, IsCached, SizeOf, Owned and Stats take the read lock
package inmemorystore

import (
	"context"
	"sync"

	"github.com/specialistvlad/fieldgridgo/internal/ctxlog"
	"github.com/specialistvlad/fieldgridgo/internal/objectstore"
)

// Store is an in-memory implementation of objectstore.Store.
type Store struct {
	mu      sync.RWMutex
	objects map[string]*objectstore.Object
	order   []string // declaration order, for Owned
	stats   objectstore.Stats
}

// New creates a new, empty in-memory object store.
func New() *Store {
	return &Store{objects: make(map[string]*objectstore.Object)}
}

var _ objectstore.Store = (*Store)(nil)

// Declare registers an object's metadata.
func (s *Store) Declare(ctx context.Context, spec objectstore.Spec) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.objects[spec.Name]; ok {
		if existing.Class == objectstore.Cached && spec.Class == objectstore.Cached {
			return nil
		}
		return objectstore.NewError("declare", spec.Name, objectstore.ErrAlreadyExists)
	}
	s.objects[spec.Name] = &objectstore.Object{Spec: spec, State: objectstore.Absent}
	s.order = append(s.order, spec.Name)
	ctxlog.FromContext(ctx).Debug("Declared object.",
		"name", spec.Name, "type", spec.Type, "size", spec.Size, "class", spec.Class.String(), "owner", spec.Owner)
	return nil
}

// Allocate makes a declared object resident.
func (s *Store) Allocate(ctx context.Context, name string) (*objectstore.Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	obj, ok := s.objects[name]
	if !ok {
		return nil, objectstore.NewError("allocate", name, objectstore.ErrObjectNotFound)
	}
	if obj.State == objectstore.Resident {
		if obj.Class == objectstore.Cached {
			return obj, nil
		}
		return nil, objectstore.NewError("allocate", name, objectstore.ErrAlreadyExists)
	}

	if obj.New != nil {
		obj.Value = obj.New()
	}
	obj.State = objectstore.Resident
	s.stats.Resident += obj.Size
	if obj.Class == objectstore.Cached {
		s.stats.Cached += obj.Size
	}
	if s.stats.Resident > s.stats.Peak {
		s.stats.Peak = s.stats.Resident
	}
	s.stats.Allocations++
	ctxlog.FromContext(ctx).Debug("Allocated object.", "name", name, "size", obj.Size, "resident", s.stats.Resident)
	return obj, nil
}

// Get returns a resident object.
func (s *Store) Get(ctx context.Context, name string) (*objectstore.Object, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.objects[name]
	if !ok || obj.State != objectstore.Resident {
		return nil, objectstore.NewError("get", name, objectstore.ErrObjectNotFound)
	}
	return obj, nil
}

// Lookup returns the declared metadata of an object.
func (s *Store) Lookup(ctx context.Context, name string) (objectstore.Spec, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.objects[name]
	if !ok {
		return objectstore.Spec{}, false
	}
	return obj.Spec, true
}

// Release gives back the bytes of a resident, non-cached object.
func (s *Store) Release(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	obj, ok := s.objects[name]
	if !ok {
		return objectstore.NewError("release", name, objectstore.ErrObjectNotFound)
	}
	if obj.Class == objectstore.Cached {
		return objectstore.NewError("release", name, objectstore.ErrCachedRelease)
	}
	if obj.State != objectstore.Resident {
		return objectstore.NewError("release", name, objectstore.ErrDoubleRelease)
	}
	s.release(obj)
	ctxlog.FromContext(ctx).Debug("Released object.", "name", name, "resident", s.stats.Resident)
	return nil
}

// release must be called with the write lock held.
func (s *Store) release(obj *objectstore.Object) {
	obj.State = objectstore.Absent
	obj.Value = nil
	s.stats.Resident -= obj.Size
	if obj.Class == objectstore.Cached {
		s.stats.Cached -= obj.Size
	}
	s.stats.Releases++
}

// IsCached reports whether name is declared as cached.
func (s *Store) IsCached(ctx context.Context, name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.objects[name]
	return ok && obj.Class == objectstore.Cached
}

// SizeOf returns the declared byte size of an object.
func (s *Store) SizeOf(ctx context.Context, name string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.objects[name]
	if !ok {
		return 0, objectstore.NewError("size", name, objectstore.ErrObjectNotFound)
	}
	return obj.Size, nil
}

// Owned returns the declarations of one module in declaration order.
func (s *Store) Owned(ctx context.Context, owner string) []objectstore.Spec {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var specs []objectstore.Spec
	for _, name := range s.order {
		if obj := s.objects[name]; obj.Owner == owner {
			specs = append(specs, obj.Spec)
		}
	}
	return specs
}

// Reset releases and forgets every non-cached object.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.order[:0]
	dropped := 0
	for _, name := range s.order {
		obj := s.objects[name]
		if obj.Class == objectstore.Cached {
			kept = append(kept, name)
			continue
		}
		if obj.State == objectstore.Resident {
			s.release(obj)
		}
		delete(s.objects, name)
		dropped++
	}
	s.order = kept
	ctxlog.FromContext(ctx).Debug("Reset object store.", "dropped", dropped, "kept", len(kept), "resident", s.stats.Resident)
	return nil
}

// Close drops every object, cached ones included.
func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, name := range s.order {
		if obj := s.objects[name]; obj.State == objectstore.Resident {
			s.release(obj)
		}
	}
	s.objects = make(map[string]*objectstore.Object)
	s.order = nil
	ctxlog.FromContext(ctx).Debug("Closed object store.", "peak", s.stats.Peak)
	return nil
}

// Stats returns a snapshot of the counters.
func (s *Store) Stats(ctx context.Context) objectstore.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

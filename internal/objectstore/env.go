package objectstore

import (
	"context"
	"fmt"
)

// Env is the view of a Store handed to one module. Declarations made
// through it are owned by that module.
type Env struct {
	store Store
	owner string
}

// NewEnv binds a store to a module name.
func NewEnv(store Store, owner string) *Env {
	return &Env{store: store, owner: owner}
}

// Owner returns the module the environment is bound to.
func (e *Env) Owner() string {
	return e.owner
}

// Create declares one of the module's outputs.
func (e *Env) Create(ctx context.Context, name, typ string, size int64, extent int, newFn func() any) error {
	return e.store.Declare(ctx, Spec{
		Name: name, Type: typ, Size: size, Extent: extent,
		Class: Owned, Owner: e.owner, New: newFn,
	})
}

// Tmp declares a temporary scoped to the module's execution.
func (e *Env) Tmp(ctx context.Context, name, typ string, size int64, extent int, newFn func() any) error {
	return e.store.Declare(ctx, Spec{
		Name: TempName(e.owner, name), Type: typ, Size: size, Extent: extent,
		Class: Temporary, Owner: e.owner, New: newFn,
	})
}

// Cache declares an object that survives the whole trajectory loop.
// Declaring it again on a later trajectory is a no-op.
func (e *Env) Cache(ctx context.Context, name, typ string, size int64, extent int, newFn func() any) error {
	return e.store.Declare(ctx, Spec{
		Name: name, Type: typ, Size: size, Extent: extent,
		Class: Cached, Owner: e.owner, New: newFn,
	})
}

// Get returns the payload of a resident object.
func (e *Env) Get(ctx context.Context, name string) (any, error) {
	obj, err := e.store.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	return obj.Value, nil
}

// GetTmp returns the payload of one of the module's temporaries.
func (e *Env) GetTmp(ctx context.Context, name string) (any, error) {
	return e.Get(ctx, TempName(e.owner, name))
}

// Extent returns the declared extent of any object, resident or not.
func (e *Env) Extent(ctx context.Context, name string) (int, error) {
	spec, ok := e.store.Lookup(ctx, name)
	if !ok {
		return 0, NewError("extent", name, ErrObjectNotFound)
	}
	return ExtentOf(spec), nil
}

// Type returns the declared type tag of an object.
func (e *Env) Type(ctx context.Context, name string) (string, error) {
	spec, ok := e.store.Lookup(ctx, name)
	if !ok {
		return "", NewError("type", name, ErrObjectNotFound)
	}
	return spec.Type, nil
}

// IsCached reports whether name is a cached object.
func (e *Env) IsCached(ctx context.Context, name string) bool {
	return e.store.IsCached(ctx, name)
}

// SizeOf returns the declared byte size of an object.
func (e *Env) SizeOf(ctx context.Context, name string) (int64, error) {
	return e.store.SizeOf(ctx, name)
}

// As fetches a resident payload and asserts its Go type.
func As[T any](ctx context.Context, e *Env, name string) (T, error) {
	var zero T
	v, err := e.Get(ctx, name)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("object %q holds %T, not %T", name, v, zero)
	}
	return t, nil
}

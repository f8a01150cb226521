package objectstore

import (
	"errors"
	"fmt"
)

var (
	ErrObjectNotFound = errors.New("object not found")
	ErrDoubleRelease  = errors.New("object already released")
	ErrAlreadyExists  = errors.New("object already exists")
	ErrCachedRelease  = errors.New("cached object cannot be released before teardown")
)

// StoreError reports a lifetime-tracking failure on a named object.
type StoreError struct {
	Op   string
	Name string
	Kind error
}

func (e *StoreError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("object store: %s %q: %s", e.Op, e.Name, e.Kind)
}

func (e *StoreError) Unwrap() error { return e.Kind }

// NewError builds a StoreError.
func NewError(op, name string, kind error) error {
	return &StoreError{Op: op, Name: name, Kind: kind}
}

// IsStoreError reports whether err carries a StoreError anywhere in its chain.
func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}

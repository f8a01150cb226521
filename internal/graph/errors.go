package graph

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnresolvedInput = errors.New("unresolved input")
	ErrCycleDetected   = errors.New("cycle detected")
	ErrDuplicateOutput = errors.New("object produced by more than one module")
	ErrDuplicateModule = errors.New("duplicate module name")
	ErrExternalOutput  = errors.New("external object produced by a module")
	ErrUnknownResult   = errors.New("result not produced by any module")
	ErrInvalidSchedule = errors.New("invalid schedule")
)

// GraphError is a structural failure of the module graph. It is always fatal.
type GraphError struct {
	Kind   error
	Module string
	Object string
	// Path holds the module names of a detected cycle, first name repeated last.
	Path []string
	Msg  string
}

func (e *GraphError) Error() string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("graph: ")
	b.WriteString(e.Kind.Error())
	if len(e.Path) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(e.Path, " -> "))
	} else if e.Module != "" {
		fmt.Fprintf(&b, ": module %q", e.Module)
	}
	if e.Object != "" {
		fmt.Fprintf(&b, " object %q", e.Object)
	}
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	return b.String()
}

func (e *GraphError) Unwrap() error { return e.Kind }

func cycleError(path []string) error {
	return &GraphError{Kind: ErrCycleDetected, Module: path[0], Path: path}
}

func scheduleError(module, msg string) error {
	return &GraphError{Kind: ErrInvalidSchedule, Module: module, Msg: msg}
}

// IsGraphError reports whether err carries a GraphError.
func IsGraphError(err error) bool {
	var ge *GraphError
	return errors.As(err, &ge)
}

package executor

import (
	"errors"
	"fmt"
)

// SetupError is a module precondition failure found while declaring objects.
type SetupError struct {
	Module     string
	Trajectory int
	Err        error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("setup of module %q failed in trajectory %d: %v", e.Module, e.Trajectory, e.Err)
}

func (e *SetupError) Unwrap() error { return e.Err }

// ExecuteError is a failure of a module's computation.
type ExecuteError struct {
	Module     string
	Trajectory int
	Err        error
}

func (e *ExecuteError) Error() string {
	return fmt.Sprintf("module %q failed in trajectory %d: %v", e.Module, e.Trajectory, e.Err)
}

func (e *ExecuteError) Unwrap() error { return e.Err }

// ErrTrajectoriesFailed is returned by the application when the loop
// finished but some trajectories did not complete.
var ErrTrajectoriesFailed = errors.New("some trajectories failed")

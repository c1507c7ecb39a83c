// Package errors provides centralized error definitions and error handling
// utilities for the Foreman codebase. It defines the coordination error
// taxonomy, an error type carrying operation context, and classification
// helpers.
//
// # Error Taxonomy
//
//   - ErrLockTimeout: an exclusive file lock was not acquired within its
//     bound. Recoverable by retrying later; never silently skipped.
//   - ErrTaskNotFound: a task id is absent from the work registry.
//   - ErrNotOwned: release attempted by an agent that is not the recorded
//     claimant, or on a task not in the Claimed state.
//   - ErrNotInReview: approve attempted on a task not in the Review state.
//
// Filesystem failures are wrapped with operation context rather than given
// their own sentinel; callers match them with errors.As against *os.PathError
// when they care.
//
// # Usage
//
// Creating errors:
//
//	err := errors.NewCoordError("release", taskID, errors.ErrNotOwned)
//
// Checking errors:
//
//	if errors.Is(err, errors.ErrNotOwned) { ... }
//	if errors.IsRetryable(err) { ... }
package errors

import (
	"errors"
	"fmt"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Coordination sentinel errors.
var (
	// ErrLockTimeout indicates an exclusive file lock was not acquired
	// within the configured timeout.
	ErrLockTimeout = New("lock acquisition timed out")

	// ErrTaskNotFound indicates the task id is absent from the registry.
	ErrTaskNotFound = New("task not found")

	// ErrNotOwned indicates the caller is not the recorded claimant of the
	// task, or the task is not in a state the operation accepts.
	ErrNotOwned = New("task not claimed by this agent")

	// ErrNotInReview indicates an approval was attempted on a task that is
	// not in the review state.
	ErrNotInReview = New("task is not in review")

	// ErrNotInitialized indicates the coordination root does not exist.
	ErrNotInitialized = New("coordination root not initialized")
)

// CoordError is a coordination failure carrying the operation and task it
// occurred in. It wraps an underlying sentinel or I/O error.
type CoordError struct {
	// Op is the coordination operation, e.g. "claim", "release", "reap".
	Op string
	// TaskID is the task involved, if any.
	TaskID string
	// Err is the underlying error.
	Err error
}

// NewCoordError creates a CoordError for the given operation.
func NewCoordError(op, taskID string, err error) *CoordError {
	return &CoordError{Op: op, TaskID: taskID, Err: err}
}

// Error returns the error message.
func (e *CoordError) Error() string {
	if e.TaskID != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.TaskID, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *CoordError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error is transient and the operation may
// succeed if attempted again later. Lock timeouts are retryable; logical
// ownership and state mismatches are not, since retrying cannot change them.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrLockTimeout)
}

// IsNoSuchTask returns true if the error indicates a missing task id.
func IsNoSuchTask(err error) bool {
	return errors.Is(err, ErrTaskNotFound)
}

package task

import "gitlab.com/tozd/go/errors"

var (
	// ErrDuplicateKey is returned when a spinner key is already active.
	ErrDuplicateKey = errors.Base("spinner key already active")
	// ErrStopped completes a spinner session that was stopped without a result.
	ErrStopped = errors.Base("spinner stopped")
	// ErrSpinnerFailed completes a spinner session that ended with Fail.
	ErrSpinnerFailed = errors.Base("spinner failed")
	// ErrTaskPanicked wraps a panic recovered from a task body.
	ErrTaskPanicked = errors.Base("task panicked")
)

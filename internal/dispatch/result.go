package dispatch

import (
	"fmt"
	"time"
)

// Result represents the outcome of one callback execution.
type Result struct {
	// Error is the error returned by the callback, if any.
	Error error

	// Panicked is true if the callback panicked.
	Panicked bool

	// PanicValue is the value passed to panic(), if Panicked is true.
	PanicValue any

	// PanicStack is the stack trace at the point of panic.
	PanicStack []byte

	// Duration is how long the callback took to execute.
	Duration time.Duration

	// Skipped is true if the callback was not executed (context cancelled).
	Skipped bool
}

// IsSuccess returns true if the callback ran and completed without error or panic.
func (r Result) IsSuccess() bool {
	return !r.Skipped && !r.Panicked && r.Error == nil
}

// IsError returns true if the callback returned an error (not panic).
func (r Result) IsError() bool {
	return r.Error != nil && !r.Panicked && !r.Skipped
}

// IsPanic returns true if the callback panicked.
func (r Result) IsPanic() bool {
	return r.Panicked
}

// Err folds the result into a single error, or nil on success.
func (r Result) Err() error {
	switch {
	case r.Panicked:
		return &PanicError{Value: r.PanicValue, Stack: string(r.PanicStack)}
	default:
		return r.Error
	}
}

// PanicError wraps a recovered panic value as an error.
type PanicError struct {
	Value any
	Stack string
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("callback panicked: %v", e.Value)
}

// Is allows errors.Is to match PanicError with ErrPanic.
func (e *PanicError) Is(target error) bool {
	return target == ErrPanic
}

package state

import "errors"

// Sentinel errors for the state store.
var (
	// ErrInvalidPath is returned for empty paths or paths with empty segments.
	ErrInvalidPath = errors.New("invalid state path")

	// ErrNilObserver is returned when a nil observer is subscribed.
	ErrNilObserver = errors.New("observer cannot be nil")

	// ErrNilDerive is returned when Computed is given a nil derive function.
	ErrNilDerive = errors.New("derive function cannot be nil")

	// ErrComputedCycle is returned when a computed registration would make a
	// path depend on itself.
	ErrComputedCycle = errors.New("computed value dependency cycle")
)

// ObserverError describes a subscriber or computed function that panicked.
type ObserverError struct {
	Path Path
	Err  error
}

// Error implements the error interface.
func (e *ObserverError) Error() string {
	return "observer for " + e.Path.String() + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ObserverError) Unwrap() error {
	return e.Err
}

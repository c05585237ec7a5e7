// Package app provides the portfolio controller.
//
// The controller owns the event bus and state store, restores persisted
// preferences into the store on start, keeps them persisted as they change,
// and exposes the user-facing actions (navigation, menu, theme, preferences)
// and environment signals as ordinary state writes plus bus events.
package app

import (
	"errors"
	"fmt"
)

// Application errors.
var (
	// ErrAlreadyRunning indicates Start was called twice.
	ErrAlreadyRunning = errors.New("application already running")

	// ErrNotRunning indicates an action was attempted before Start.
	ErrNotRunning = errors.New("application not running")

	// ErrUnknownSection indicates navigation to a section the site lacks.
	ErrUnknownSection = errors.New("unknown section")

	// ErrInvalidTheme indicates a theme outside light, dark and system.
	ErrInvalidTheme = errors.New("invalid theme")

	// ErrInvalidSignal indicates an unrecognized or mistyped system signal.
	ErrInvalidSignal = errors.New("invalid system signal")
)

// InitError reports a component that failed to initialize.
type InitError struct {
	Component string
	Err       error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("init %s: %v", e.Component, e.Err)
}

// Unwrap returns the underlying error.
func (e *InitError) Unwrap() error {
	return e.Err
}

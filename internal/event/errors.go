package event

import (
	"errors"
	"fmt"
)

// Sentinel errors for the event bus.
var (
	// ErrNilHandler is returned when a nil handler is registered.
	ErrNilHandler = errors.New("handler cannot be nil")

	// ErrInvalidEventName is returned when an event name is empty.
	ErrInvalidEventName = errors.New("invalid event name")
)

// ListenerError wraps a fault raised by a listener during Emit.
type ListenerError struct {
	// Event is the event name being delivered.
	Event string

	// ListenerID identifies the failing listener.
	ListenerID string

	// Err is the error returned, or a dispatch.PanicError for panics.
	Err error
}

// Error implements the error interface.
func (e *ListenerError) Error() string {
	return fmt.Sprintf("listener %s for event %q: %v", e.ListenerID, e.Event, e.Err)
}

// Unwrap returns the underlying error.
func (e *ListenerError) Unwrap() error {
	return e.Err
}

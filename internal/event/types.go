package event

import (
	"context"
	"time"
)

// Priority determines listener execution order.
// Higher values execute first.
type Priority int

const (
	// PriorityLow is for logging and metrics listeners that run last.
	PriorityLow Priority = -100

	// PriorityNormal is the default.
	PriorityNormal Priority = 0

	// PriorityHigh is for listeners that must observe an event before
	// ordinary components react to it.
	PriorityHigh Priority = 100
)

// Envelope is the payload delivered to listeners.
type Envelope struct {
	// ID uniquely identifies this emission.
	ID string

	// Type is the event name.
	Type string

	// Data is the emitter-supplied payload; may be nil.
	Data any

	// Timestamp is when Emit was called.
	Timestamp time.Time

	// Source identifies the emitter, e.g. a namespace prefix.
	Source string
}

// Handler processes delivered events.
type Handler interface {
	Handle(ctx context.Context, env Envelope) error
}

// HandlerFunc is a function adapter for Handler.
type HandlerFunc func(ctx context.Context, env Envelope) error

// Handle implements the Handler interface.
func (f HandlerFunc) Handle(ctx context.Context, env Envelope) error {
	return f(ctx, env)
}

// isNilHandler reports whether h cannot be invoked.
func isNilHandler(h Handler) bool {
	if h == nil {
		return true
	}
	if f, ok := h.(HandlerFunc); ok && f == nil {
		return true
	}
	return false
}

// EmitResult summarizes one Emit call.
type EmitResult struct {
	// Delivered counts listeners that completed without fault.
	Delivered int

	// Failed counts listeners that returned an error or panicked.
	Failed int

	// Skipped counts listeners not run because ctx ended mid-emission.
	Skipped int

	// Err joins every ListenerError raised, or is nil.
	Err error
}

// Stats contains event bus statistics.
type Stats struct {
	// EventsEmitted is the total number of Emit calls.
	EventsEmitted uint64

	// ListenersExecuted is the total number of listener invocations.
	ListenersExecuted uint64

	// ListenerErrors counts listeners that returned errors.
	ListenerErrors uint64

	// ListenerPanics counts listeners that panicked.
	ListenerPanics uint64

	// ActiveListeners is the current number of registrations, both kinds.
	ActiveListeners int
}

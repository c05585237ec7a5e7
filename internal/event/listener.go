package event

import "sync/atomic"

// Listener is a registration on the bus.
// Its Unsubscribe method is the unsubscribe thunk returned to callers.
type Listener struct {
	id       string
	name     string
	priority Priority
	once     bool
	handler  Handler
	bus      *Bus

	cancelled atomic.Bool
}

// ID returns the unique listener identifier.
func (l *Listener) ID() string {
	return l.id
}

// Name returns the event name the listener is registered for.
func (l *Listener) Name() string {
	return l.name
}

// Priority returns the listener priority.
func (l *Listener) Priority() Priority {
	return l.priority
}

// IsOnce reports whether the listener is dropped after one delivery.
func (l *Listener) IsOnce() bool {
	return l.once
}

// IsActive reports whether the listener can still receive events.
func (l *Listener) IsActive() bool {
	return !l.cancelled.Load()
}

// Unsubscribe removes the listener from its bus.
// Calling it more than once is harmless.
func (l *Listener) Unsubscribe() {
	if l.bus != nil {
		l.bus.Off(l.name, l)
	}
}

// ListenerOption configures a listener registration.
type ListenerOption func(*listenerConfig)

type listenerConfig struct {
	priority Priority
}

// WithPriority sets the listener priority. Higher runs first.
func WithPriority(p Priority) ListenerOption {
	return func(c *listenerConfig) {
		c.priority = p
	}
}

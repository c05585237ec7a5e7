package event

import (
	"context"
	"strings"
)

// Namespace is a prefixed view of a Bus.
// Every name passed to it is rewritten to "{prefix}:{name}" and envelopes it
// emits carry Source = prefix.
type Namespace struct {
	bus    *Bus
	prefix string
}

// Prefix returns the namespace prefix.
func (n *Namespace) Prefix() string {
	return n.prefix
}

// Name returns the fully qualified event name.
func (n *Namespace) Name(event string) string {
	return n.prefix + ":" + event
}

// On registers a persistent listener for the prefixed name.
func (n *Namespace) On(event string, h Handler, opts ...ListenerOption) (*Listener, error) {
	return n.bus.On(n.Name(event), h, opts...)
}

// Once registers a one-shot listener for the prefixed name.
func (n *Namespace) Once(event string, h Handler, opts ...ListenerOption) (*Listener, error) {
	return n.bus.Once(n.Name(event), h, opts...)
}

// Off removes a registration for the prefixed name.
func (n *Namespace) Off(event string, l *Listener) bool {
	return n.bus.Off(n.Name(event), l)
}

// Emit emits the prefixed name with Source set to the prefix.
func (n *Namespace) Emit(ctx context.Context, event string, data any, opts ...EmitOption) EmitResult {
	opts = append(opts, WithSource(n.prefix))
	return n.bus.Emit(ctx, n.Name(event), data, opts...)
}

// RemoveAllListeners clears the listed names, or every name under the
// prefix when called without names.
func (n *Namespace) RemoveAllListeners(events ...string) {
	if len(events) > 0 {
		names := make([]string, len(events))
		for i, e := range events {
			names[i] = n.Name(e)
		}
		n.bus.RemoveAllListeners(names...)
		return
	}

	var names []string
	for _, name := range n.bus.Names() {
		if strings.HasPrefix(name, n.prefix+":") {
			names = append(names, name)
		}
	}
	if len(names) > 0 {
		n.bus.RemoveAllListeners(names...)
	}
}

package event

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/dshills/portfolio/internal/dispatch"
)

// Bus is a synchronous publish/subscribe dispatcher.
// The zero value is not usable; create one with New.
type Bus struct {
	listeners *registry
	once      *registry
	executor  *dispatch.Executor
	config    busConfig

	eventsEmitted     atomic.Uint64
	listenersExecuted atomic.Uint64
	listenerErrors    atomic.Uint64
	listenerPanics    atomic.Uint64
}

// New creates an event bus with the given options.
func New(opts ...Option) *Bus {
	config := defaultBusConfig()
	for _, opt := range opts {
		opt(&config)
	}

	return &Bus{
		listeners: newRegistry(),
		once:      newRegistry(),
		executor:  dispatch.NewExecutor(),
		config:    config,
	}
}

// On registers a persistent listener for name.
func (b *Bus) On(name string, h Handler, opts ...ListenerOption) (*Listener, error) {
	return b.register(b.listeners, name, h, false, opts)
}

// Once registers a listener that is removed after its first delivery.
func (b *Bus) Once(name string, h Handler, opts ...ListenerOption) (*Listener, error) {
	return b.register(b.once, name, h, true, opts)
}

func (b *Bus) register(r *registry, name string, h Handler, once bool, opts []ListenerOption) (*Listener, error) {
	if isNilHandler(h) {
		return nil, ErrNilHandler
	}
	if name == "" {
		return nil, ErrInvalidEventName
	}

	var cfg listenerConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	l := &Listener{
		id:       uuid.NewString(),
		name:     name,
		priority: cfg.priority,
		once:     once,
		handler:  h,
		bus:      b,
	}
	r.add(l)

	b.config.logger.Debug("listener registered", "event", name, "listener", l.id, "priority", int(l.priority), "once", once)
	return l, nil
}

// Off removes the given registration for name.
// The persistent registry is searched first, then the once registry.
// It reports whether a registration was removed.
func (b *Bus) Off(name string, l *Listener) bool {
	if l == nil {
		return false
	}
	if b.listeners.remove(name, l) || b.once.remove(name, l) {
		l.cancelled.Store(true)
		return true
	}
	return false
}

// Emit delivers an envelope for name to every registered listener.
// Persistent listeners run first by descending priority, then the once
// listeners for name, whose bucket is cleared unconditionally.
// Listener faults are isolated, logged and reported in the result.
// A context that is already done leaves both registries untouched and is
// returned as the result error. Once listeners skipped because the context
// ended mid-emission stay registered.
func (b *Bus) Emit(ctx context.Context, name string, data any, opts ...EmitOption) EmitResult {
	if name == "" {
		return EmitResult{Err: ErrInvalidEventName}
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return EmitResult{Err: err}
	}

	var cfg emitConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	env := Envelope{
		ID:        uuid.NewString(),
		Type:      name,
		Data:      data,
		Timestamp: b.config.now(),
		Source:    cfg.source,
	}

	b.eventsEmitted.Add(1)
	b.config.metrics.IncEmitted(name)

	var res EmitResult
	var faults []error

	faults = b.deliver(ctx, env, b.listeners.snapshot(name), &res, faults)
	faults = b.deliver(ctx, env, b.once.take(name), &res, faults)

	if res.Skipped > 0 {
		faults = append(faults, ctx.Err())
	}
	res.Err = errors.Join(faults...)
	return res
}

func (b *Bus) deliver(ctx context.Context, env Envelope, listeners []*Listener, res *EmitResult, faults []error) []error {
	for _, l := range listeners {
		if !l.IsActive() {
			continue
		}
		if l.once {
			l.cancelled.Store(true)
		}

		result := b.executor.Execute(ctx, env.Type, func(ctx context.Context) error {
			return l.handler.Handle(ctx, env)
		})
		if result.Skipped {
			res.Skipped++
			if l.once {
				l.cancelled.Store(false)
				b.once.add(l)
			}
			continue
		}
		b.listenersExecuted.Add(1)

		if result.IsSuccess() {
			res.Delivered++
			continue
		}

		res.Failed++
		b.config.metrics.IncListenerFault(env.Type)
		if result.Panicked {
			b.listenerPanics.Add(1)
			b.config.logger.Error("event listener panicked",
				"event", env.Type,
				"listener", l.id,
				"panic", result.PanicValue,
			)
			b.config.logger.Debug("listener panic stack", "event", env.Type, "stack", string(result.PanicStack))
		} else {
			b.listenerErrors.Add(1)
			b.config.logger.Error("event listener failed",
				"event", env.Type,
				"listener", l.id,
				"error", result.Error,
			)
		}
		faults = append(faults, &ListenerError{Event: env.Type, ListenerID: l.id, Err: result.Err()})
	}
	return faults
}

// RemoveAllListeners clears the listed event names from both registries,
// or every listener when called without names.
func (b *Bus) RemoveAllListeners(names ...string) {
	removed := b.listeners.clear(names...)
	removed = append(removed, b.once.clear(names...)...)
	for _, l := range removed {
		l.cancelled.Store(true)
	}
}

// ListenerCount returns the number of registrations for name across both
// registries. An empty name counts every registration.
func (b *Bus) ListenerCount(name string) int {
	return b.listeners.count(name) + b.once.count(name)
}

// Names returns every event name with at least one registration.
func (b *Bus) Names() []string {
	seen := make(map[string]bool)
	var names []string
	for _, n := range append(b.listeners.names(), b.once.names()...) {
		if !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	return names
}

// Namespace returns a view that prefixes event names with "{prefix}:".
func (b *Bus) Namespace(prefix string) *Namespace {
	return &Namespace{bus: b, prefix: prefix}
}

// Stats returns current bus statistics.
func (b *Bus) Stats() Stats {
	return Stats{
		EventsEmitted:     b.eventsEmitted.Load(),
		ListenersExecuted: b.listenersExecuted.Load(),
		ListenerErrors:    b.listenerErrors.Load(),
		ListenerPanics:    b.listenerPanics.Load(),
		ActiveListeners:   b.ListenerCount(""),
	}
}

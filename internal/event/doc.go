// Package event provides the event bus the portfolio components talk through.
//
// The bus is a synchronous publish/subscribe dispatcher. Emitters and
// listeners only share an event name; neither knows about the other.
//
// # Event Names
//
// Names are free-form strings. Components conventionally use a
// "component:action" form, which is what Namespace produces:
//
//	nav := bus.Namespace("navigation")
//	nav.Emit(ctx, "change", payload) // emits "navigation:change", Source "navigation"
//
// # Listeners
//
// On registers a persistent listener, Once a listener that is dropped after
// its first delivery. The two kinds live in separate registries so one Emit
// can serve both without interference:
//
//	l, err := bus.On("theme:change", event.HandlerFunc(func(ctx context.Context, env event.Envelope) error {
//	    return applyTheme(env.Data.(string))
//	}), event.WithPriority(event.PriorityHigh))
//	defer l.Unsubscribe()
//
// # Delivery Order
//
// Emit delivers to persistent listeners by descending priority, ties in
// registration order, and then to once listeners in the same order. The once
// bucket for the name is cleared on every Emit, whether or not it had
// listeners.
//
// # Fault Isolation
//
// A listener that returns an error or panics is logged and counted; the
// remaining listeners for the same emission still run. Delivery is
// at-most-once per listener per emission and never retried.
//
// # Re-entrancy
//
// Listeners may call On, Off or Emit on the same bus. Dispatch iterates a
// snapshot taken before the first listener runs, and nested emissions
// complete before the outer one continues.
package event

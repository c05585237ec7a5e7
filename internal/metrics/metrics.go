// Package metrics records bus and store activity.
//
// The core packages talk to the Collector interface; Nop is the default and
// Prometheus exports the counters through a private registry.
package metrics

// Collector receives activity counters from the event bus and state store.
type Collector interface {
	// IncEmitted counts one emission of the named event.
	IncEmitted(event string)
	// IncListenerFault counts a listener error or panic for the named event.
	IncListenerFault(event string)
	// IncStateWrite counts one Set/SetMany call touching n paths.
	IncStateWrite(paths int)
	// IncNotification counts one subscriber notification for path.
	IncNotification(path string)
	// IncSubscriberFault counts a subscriber panic for path.
	IncSubscriberFault(path string)
}

// Nop discards everything.
type Nop struct{}

func (Nop) IncEmitted(string)         {}
func (Nop) IncListenerFault(string)   {}
func (Nop) IncStateWrite(int)         {}
func (Nop) IncNotification(string)    {}
func (Nop) IncSubscriberFault(string) {}

// OrNop returns c, or Nop when c is nil.
func OrNop(c Collector) Collector {
	if c == nil {
		return Nop{}
	}
	return c
}

package state

import "sync/atomic"

// Observer is called with the value at path after a change.
// value is nil when the path does not exist.
type Observer func(value any, path Path)

// Subscription is an observer registered on an exact path.
// Its Unsubscribe method is the unsubscribe thunk.
type Subscription struct {
	id       uint64
	path     Path
	observer Observer
	once     bool
	store    *Store

	cancelled atomic.Bool
}

// ID returns the subscription identifier.
func (s *Subscription) ID() uint64 {
	return s.id
}

// Path returns the subscribed path.
func (s *Subscription) Path() Path {
	return s.path
}

// IsActive reports whether the subscription still receives notifications.
func (s *Subscription) IsActive() bool {
	return !s.cancelled.Load()
}

// Unsubscribe removes the subscription. Calling it twice is harmless.
func (s *Subscription) Unsubscribe() {
	if s.store != nil {
		s.store.Unsubscribe(s.path, s)
	}
}

package event

import "sync"

// registry holds listener buckets keyed by event name.
// Each bucket is kept sorted by descending priority; equal priorities keep
// registration order. It is safe for concurrent access.
type registry struct {
	mu      sync.RWMutex
	buckets map[string][]*Listener
}

func newRegistry() *registry {
	return &registry{buckets: make(map[string][]*Listener)}
}

// add inserts l after every listener with priority >= l.priority.
func (r *registry) add(l *Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()

	bucket := r.buckets[l.name]
	pos := len(bucket)
	for i, existing := range bucket {
		if existing.priority < l.priority {
			pos = i
			break
		}
	}

	bucket = append(bucket, nil)
	copy(bucket[pos+1:], bucket[pos:])
	bucket[pos] = l
	r.buckets[l.name] = bucket
}

// remove drops l from the bucket for name. Empty buckets are deleted.
func (r *registry) remove(name string, l *Listener) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	bucket := r.buckets[name]
	for i, existing := range bucket {
		if existing == l {
			bucket = append(bucket[:i:i], bucket[i+1:]...)
			if len(bucket) == 0 {
				delete(r.buckets, name)
			} else {
				r.buckets[name] = bucket
			}
			return true
		}
	}
	return false
}

// snapshot returns a copy of the bucket for name.
func (r *registry) snapshot(name string) []*Listener {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bucket := r.buckets[name]
	if len(bucket) == 0 {
		return nil
	}
	result := make([]*Listener, len(bucket))
	copy(result, bucket)
	return result
}

// take detaches and returns the bucket for name.
func (r *registry) take(name string) []*Listener {
	r.mu.Lock()
	defer r.mu.Unlock()

	bucket := r.buckets[name]
	delete(r.buckets, name)
	return bucket
}

// clear removes the named buckets, or every bucket when names is empty.
// The removed listeners are returned so the caller can cancel them.
func (r *registry) clear(names ...string) []*Listener {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed []*Listener
	if len(names) == 0 {
		for _, bucket := range r.buckets {
			removed = append(removed, bucket...)
		}
		r.buckets = make(map[string][]*Listener)
		return removed
	}

	for _, name := range names {
		removed = append(removed, r.buckets[name]...)
		delete(r.buckets, name)
	}
	return removed
}

// count returns the number of listeners for name, or all listeners when
// name is empty.
func (r *registry) count(name string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if name != "" {
		return len(r.buckets[name])
	}
	total := 0
	for _, bucket := range r.buckets {
		total += len(bucket)
	}
	return total
}

// names returns every event name with at least one listener.
func (r *registry) names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]string, 0, len(r.buckets))
	for name := range r.buckets {
		result = append(result, name)
	}
	return result
}

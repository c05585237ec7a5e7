package state

import (
	"context"
	"sort"
	"sync"

	"github.com/dshills/portfolio/internal/dispatch"
)

// Update is one path/value pair of a bulk write.
type Update struct {
	Path  Path
	Value any
}

// Store is the reactive state container.
// It is safe for concurrent use; observers run outside the store lock.
type Store struct {
	mu       sync.RWMutex
	tree     map[string]any
	defaults map[string]any
	subs     map[Path][]*Subscription
	nextID   uint64

	history  *History
	executor *dispatch.Executor
	config   storeConfig

	batchMu    sync.Mutex
	batchDepth int
	batchPaths []Path
	batchSeen  map[Path]bool

	graphMu sync.Mutex
	graph   map[Path]map[Path]int
}

// New creates a store whose initial tree and reset target are defaults.
// defaults is deep-copied.
func New(defaults map[string]any, opts ...Option) *Store {
	config := defaultStoreConfig()
	for _, opt := range opts {
		opt(&config)
	}

	if defaults == nil {
		defaults = map[string]any{}
	}

	return &Store{
		tree:     cloneMap(defaults),
		defaults: cloneMap(defaults),
		subs:     make(map[Path][]*Subscription),
		history:  NewHistory(config.historySize),
		executor: dispatch.NewExecutor(),
		config:   config,
		graph:    make(map[Path]map[Path]int),
	}
}

// Get returns a copy of the value at path.
// A missing segment yields (nil, false). The empty path returns the whole
// tree, like Snapshot.
func (s *Store) Get(path Path) (any, bool) {
	if path == "" {
		return s.Snapshot(), true
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := getByPath(s.tree, path.Segments())
	if !ok {
		return nil, false
	}
	return cloneValue(v), true
}

// GetAs returns the value at path if it exists and has type T.
func GetAs[T any](s *Store, path Path) (T, bool) {
	var zero T
	v, ok := s.Get(path)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}

// Snapshot returns a copy of the whole tree.
func (s *Store) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneMap(s.tree)
}

// Defaults returns a copy of the default tree.
func (s *Store) Defaults() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneMap(s.defaults)
}

// SetDefaults replaces the tree Reset restores. The current tree and
// subscribers are not touched. defaults is deep-copied.
func (s *Store) SetDefaults(defaults map[string]any) {
	if defaults == nil {
		defaults = map[string]any{}
	}
	s.mu.Lock()
	s.defaults = cloneMap(defaults)
	s.mu.Unlock()
}

// Set writes value at path and notifies its subscribers.
func (s *Store) Set(path Path, value any, opts ...SetOption) error {
	return s.SetMany([]Update{{Path: path, Value: value}}, opts...)
}

// SetMany applies every update before notifying anyone, then notifies each
// distinct path once in first-write order. One history entry is recorded for
// the whole call.
func (s *Store) SetMany(updates []Update, opts ...SetOption) error {
	var cfg setConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	for _, u := range updates {
		if !u.Path.Valid() {
			return ErrInvalidPath
		}
	}
	if len(updates) == 0 {
		return nil
	}

	s.mu.Lock()
	before := cloneMap(s.tree)
	for _, u := range updates {
		setByPath(s.tree, u.Path.Segments(), cloneValue(u.Value))
	}
	after := cloneMap(s.tree)
	s.mu.Unlock()

	s.record(before, after)
	s.config.metrics.IncStateWrite(len(updates))

	if cfg.silent {
		return nil
	}
	s.notify(distinctPaths(updates))
	return nil
}

// Subscribe registers observer on the exact path.
// Unless Immediate(false) is given, observer is called with the current
// value before Subscribe returns.
func (s *Store) Subscribe(path Path, observer Observer, opts ...SubscribeOption) (*Subscription, error) {
	if observer == nil {
		return nil, ErrNilObserver
	}
	if !path.Valid() {
		return nil, ErrInvalidPath
	}

	cfg := subscribeConfig{immediate: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	s.mu.Lock()
	s.nextID++
	sub := &Subscription{
		id:       s.nextID,
		path:     path,
		observer: observer,
		once:     cfg.once,
		store:    s,
	}
	s.subs[path] = append(s.subs[path], sub)
	s.mu.Unlock()

	if cfg.immediate {
		value, _ := s.Get(path)
		s.call(sub, value)
	}
	return sub, nil
}

// Unsubscribe removes sub from path. The path bucket is deleted when it
// becomes empty. It reports whether sub was registered.
func (s *Store) Unsubscribe(path Path, sub *Subscription) bool {
	if sub == nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	bucket := s.subs[path]
	for i, existing := range bucket {
		if existing == sub {
			bucket = append(bucket[:i:i], bucket[i+1:]...)
			if len(bucket) == 0 {
				delete(s.subs, path)
			} else {
				s.subs[path] = bucket
			}
			sub.cancelled.Store(true)
			return true
		}
	}
	return false
}

// SubscriberCount returns the number of subscriptions on path.
func (s *Store) SubscriberCount(path Path) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs[path])
}

// SubscribedPaths returns every path with at least one subscription, sorted.
func (s *Store) SubscribedPaths() []Path {
	s.mu.RLock()
	paths := make([]Path, 0, len(s.subs))
	for p := range s.subs {
		paths = append(paths, p)
	}
	s.mu.RUnlock()

	sort.Slice(paths, func(i, j int) bool { return paths[i] < paths[j] })
	return paths
}

// Reset restores default values.
// With paths, only those exact paths are restored (a path without a default
// is removed) and notified. Without paths the whole tree is replaced and every
// subscribed path is notified.
func (s *Store) Reset(paths ...Path) error {
	for _, p := range paths {
		if !p.Valid() {
			return ErrInvalidPath
		}
	}

	s.mu.Lock()
	before := cloneMap(s.tree)
	if len(paths) == 0 {
		s.tree = cloneMap(s.defaults)
	} else {
		for _, p := range paths {
			segs := p.Segments()
			if v, ok := getByPath(s.defaults, segs); ok {
				setByPath(s.tree, segs, cloneValue(v))
			} else {
				deleteByPath(s.tree, segs)
			}
		}
	}
	after := cloneMap(s.tree)
	s.mu.Unlock()

	s.record(before, after)
	s.config.logger.Debug("state reset", "paths", len(paths))

	if len(paths) == 0 {
		s.notify(s.SubscribedPaths())
		return nil
	}

	updates := make([]Update, len(paths))
	for i, p := range paths {
		updates[i] = Update{Path: p}
	}
	s.notify(distinctPaths(updates))
	return nil
}

// History returns the recorded writes, oldest first.
func (s *Store) History() []HistoryEntry {
	return s.history.Entries()
}

// ClearHistory drops every history entry.
func (s *Store) ClearHistory() {
	s.history.Clear()
}

func (s *Store) record(before, after map[string]any) {
	s.history.Push(HistoryEntry{
		Timestamp: s.config.now(),
		Before:    before,
		After:     after,
	})
}

// notify delivers change notifications for paths, or records them when a
// batch is open.
func (s *Store) notify(paths []Path) {
	s.batchMu.Lock()
	if s.batchDepth > 0 {
		for _, p := range paths {
			if !s.batchSeen[p] {
				s.batchSeen[p] = true
				s.batchPaths = append(s.batchPaths, p)
			}
		}
		s.batchMu.Unlock()
		return
	}
	s.batchMu.Unlock()

	for _, p := range paths {
		s.notifyPath(p)
	}
}

// notifyPath calls every subscriber of p with the value read back from the
// tree. Subscribers are taken from a snapshot of the bucket.
func (s *Store) notifyPath(p Path) {
	s.mu.RLock()
	bucket := s.subs[p]
	subs := make([]*Subscription, len(bucket))
	copy(subs, bucket)
	s.mu.RUnlock()

	if len(subs) == 0 {
		return
	}

	value, _ := s.Get(p)
	for _, sub := range subs {
		if !sub.IsActive() {
			continue
		}
		if sub.once {
			s.Unsubscribe(p, sub)
		}
		s.call(sub, cloneValue(value))
	}
}

func (s *Store) call(sub *Subscription, value any) {
	result := s.executor.Execute(context.Background(), sub.path.String(), func(context.Context) error {
		sub.observer(value, sub.path)
		return nil
	})
	s.config.metrics.IncNotification(sub.path.String())

	if result.Panicked {
		s.config.metrics.IncSubscriberFault(sub.path.String())
		s.config.logger.Error("state subscriber panicked",
			"path", sub.path.String(),
			"subscription", sub.id,
			"error", &ObserverError{Path: sub.path, Err: result.Err()},
		)
	}
}

// distinctPaths returns update paths without duplicates, in first-seen order.
func distinctPaths(updates []Update) []Path {
	seen := make(map[Path]bool, len(updates))
	paths := make([]Path, 0, len(updates))
	for _, u := range updates {
		if !seen[u.Path] {
			seen[u.Path] = true
			paths = append(paths, u.Path)
		}
	}
	return paths
}

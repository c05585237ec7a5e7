package state

import (
	"context"
	"sync"
)

// DeriveFunc computes a value from the current dependency values, passed in
// dependency order. Missing dependencies are passed as nil.
type DeriveFunc func(values ...any) any

// Computed is a registered derived value.
type Computed struct {
	store  *Store
	derive DeriveFunc
	deps   []Path
	target Path

	mu       sync.Mutex
	subs     []*Subscription
	disposed bool
}

// Target returns the path the derived value is written to.
func (c *Computed) Target() Path {
	return c.target
}

// Deps returns the dependency paths.
func (c *Computed) Deps() []Path {
	out := make([]Path, len(c.deps))
	copy(out, c.deps)
	return out
}

// Computed registers a derived value at target.
// derive runs once immediately and again after every change to a dependency;
// its result is written to target silently so dependency subscribers are not
// re-triggered. Registrations that would make target depend on itself,
// directly or through other computed values, fail with ErrComputedCycle.
func (s *Store) Computed(derive DeriveFunc, deps []Path, target Path) (*Computed, error) {
	if derive == nil {
		return nil, ErrNilDerive
	}
	if !target.Valid() {
		return nil, ErrInvalidPath
	}
	for _, d := range deps {
		if !d.Valid() {
			return nil, ErrInvalidPath
		}
	}

	if err := s.addEdges(deps, target); err != nil {
		return nil, err
	}

	c := &Computed{
		store:  s,
		derive: derive,
		deps:   append([]Path(nil), deps...),
		target: target,
	}

	for _, dep := range c.deps {
		sub, err := s.Subscribe(dep, func(any, Path) {
			c.recompute()
		}, Immediate(false))
		if err != nil {
			c.Dispose()
			return nil, err
		}
		c.mu.Lock()
		c.subs = append(c.subs, sub)
		c.mu.Unlock()
	}

	c.recompute()
	return c, nil
}

// Recompute re-evaluates the derived value on demand.
func (c *Computed) Recompute() {
	c.recompute()
}

func (c *Computed) recompute() {
	c.mu.Lock()
	disposed := c.disposed
	c.mu.Unlock()
	if disposed {
		return
	}

	values := make([]any, len(c.deps))
	for i, dep := range c.deps {
		values[i], _ = c.store.Get(dep)
	}

	var result any
	res := c.store.executor.Execute(context.Background(), c.target.String(), func(context.Context) error {
		result = c.derive(values...)
		return nil
	})
	if res.Panicked {
		c.store.config.metrics.IncSubscriberFault(c.target.String())
		c.store.config.logger.Error("computed value panicked",
			"target", c.target.String(),
			"error", &ObserverError{Path: c.target, Err: res.Err()},
		)
		return
	}

	_ = c.store.Set(c.target, result, Silent())
}

// Dispose removes the dependency subscriptions. The last computed value
// stays in the tree.
func (c *Computed) Dispose() {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	c.disposed = true
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()

	for _, sub := range subs {
		sub.Unsubscribe()
	}
	c.store.removeEdges(c.deps, c.target)
}

// addEdges records dep -> target edges after checking that target cannot
// already reach any dep.
func (s *Store) addEdges(deps []Path, target Path) error {
	s.graphMu.Lock()
	defer s.graphMu.Unlock()

	for _, d := range deps {
		if d == target || s.reachable(target, d) {
			return ErrComputedCycle
		}
	}
	for _, d := range deps {
		if s.graph[d] == nil {
			s.graph[d] = make(map[Path]int)
		}
		s.graph[d][target]++
	}
	return nil
}

func (s *Store) removeEdges(deps []Path, target Path) {
	s.graphMu.Lock()
	defer s.graphMu.Unlock()

	for _, d := range deps {
		edges := s.graph[d]
		if edges == nil {
			continue
		}
		edges[target]--
		if edges[target] <= 0 {
			delete(edges, target)
		}
		if len(edges) == 0 {
			delete(s.graph, d)
		}
	}
}

// reachable reports whether to can be reached from from. Caller holds graphMu.
func (s *Store) reachable(from, to Path) bool {
	visited := make(map[Path]bool)
	stack := []Path{from}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == to {
			return true
		}
		if visited[n] {
			continue
		}
		visited[n] = true
		for next := range s.graph[n] {
			stack = append(stack, next)
		}
	}
	return false
}

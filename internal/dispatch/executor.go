package dispatch

import (
	"context"
	"runtime/debug"
	"sync/atomic"
	"time"
)

// Func is a single unit of callback work.
type Func func(ctx context.Context) error

// PanicHandler is called when a callback panics.
// It receives the dispatch target (event name or state path), the panic
// value and the stack trace.
type PanicHandler func(target string, panicValue any, stack []byte)

// Executor runs callbacks with panic recovery and timing.
type Executor struct {
	panicHandler PanicHandler

	executed atomic.Uint64
	failed   atomic.Uint64
	panicked atomic.Uint64
	skipped  atomic.Uint64
	totalNs  atomic.Int64
}

// Option configures an Executor.
type Option func(*Executor)

// WithPanicHandler sets the panic handler for the executor.
func WithPanicHandler(h PanicHandler) Option {
	return func(e *Executor) {
		e.panicHandler = h
	}
}

// NewExecutor creates a new executor with the given options.
func NewExecutor(opts ...Option) *Executor {
	e := &Executor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs fn and returns the result.
// Panics are recovered; the panic handler is itself protected so a faulty
// handler cannot crash the caller.
func (e *Executor) Execute(ctx context.Context, target string, fn Func) (result Result) {
	if ctx == nil {
		ctx = context.Background()
	}

	select {
	case <-ctx.Done():
		e.skipped.Add(1)
		return Result{Error: ctx.Err(), Skipped: true}
	default:
	}

	start := time.Now()
	e.executed.Add(1)

	defer func() {
		result.Duration = time.Since(start)
		e.totalNs.Add(result.Duration.Nanoseconds())

		if r := recover(); r != nil {
			stack := debug.Stack()
			result.Panicked = true
			result.PanicValue = r
			result.PanicStack = stack
			e.panicked.Add(1)

			if e.panicHandler != nil {
				func() {
					defer func() {
						_ = recover()
					}()
					e.panicHandler(target, r, stack)
				}()
			}
		}
	}()

	if err := fn(ctx); err != nil {
		result.Error = err
		e.failed.Add(1)
	}
	return result
}

// Stats contains executor statistics.
type Stats struct {
	Executed      uint64
	Failed        uint64
	Panicked      uint64
	Skipped       uint64
	TotalDuration time.Duration
}

// Stats returns a snapshot of the executor counters.
func (e *Executor) Stats() Stats {
	return Stats{
		Executed:      e.executed.Load(),
		Failed:        e.failed.Load(),
		Panicked:      e.panicked.Load(),
		Skipped:       e.skipped.Load(),
		TotalDuration: time.Duration(e.totalNs.Load()),
	}
}

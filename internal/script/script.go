package script

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync/atomic"
	"time"

	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"

	"github.com/dshills/portfolio/internal/logging"
	"github.com/dshills/portfolio/internal/state"
)

// DefaultTimeout bounds a single evaluation.
const DefaultTimeout = 100 * time.Millisecond

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Program is a compiled chunk. It is safe for concurrent use.
type Program struct {
	name    string
	proto   *lua.FunctionProto
	params  []string
	timeout time.Duration
	logger  logging.Logger

	evals    atomic.Uint64
	failures atomic.Uint64
}

// Option configures a Program.
type Option func(*Program)

// WithName sets the chunk name used in Lua error messages.
func WithName(name string) Option {
	return func(p *Program) {
		if name != "" {
			p.name = name
		}
	}
}

// WithTimeout sets the evaluation time limit.
func WithTimeout(d time.Duration) Option {
	return func(p *Program) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithLogger sets the logger used by Derive to report evaluation errors.
func WithLogger(l logging.Logger) Option {
	return func(p *Program) {
		if l != nil {
			p.logger = l
		}
	}
}

// Compile parses source. params are the global names bound to the values
// passed to Eval, in order.
func Compile(source string, params []string, opts ...Option) (*Program, error) {
	if strings.TrimSpace(source) == "" {
		return nil, ErrEmptySource
	}

	seen := make(map[string]bool, len(params))
	for _, p := range params {
		if !identifier.MatchString(p) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidParam, p)
		}
		if seen[p] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateParam, p)
		}
		seen[p] = true
	}

	prog := &Program{
		name:    "computed",
		params:  append([]string(nil), params...),
		timeout: DefaultTimeout,
		logger:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(prog)
	}

	chunk, err := parse.Parse(strings.NewReader(source), prog.name)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", prog.name, err)
	}
	proto, err := lua.Compile(chunk, prog.name)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", prog.name, err)
	}
	prog.proto = proto
	return prog, nil
}

// CompileFor compiles source with one parameter per dependency path, named
// after the last path segment.
func CompileFor(source string, deps []state.Path, opts ...Option) (*Program, error) {
	params := make([]string, len(deps))
	for i, d := range deps {
		params[i] = d.Base()
	}
	return Compile(source, params, opts...)
}

// Params returns the parameter names.
func (p *Program) Params() []string {
	return append([]string(nil), p.params...)
}

// Eval runs the chunk with values bound to the parameters and returns the
// first returned value.
func (p *Program) Eval(values ...any) (any, error) {
	if len(values) != len(p.params) {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrArity, len(values), len(p.params))
	}
	p.evals.Add(1)

	L := newSandbox()
	defer L.Close()

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	L.SetContext(ctx)

	for i, name := range p.params {
		L.SetGlobal(name, toLuaValue(L, values[i]))
	}

	L.Push(L.NewFunctionFromProto(p.proto))
	if err := L.PCall(0, 1, nil); err != nil {
		p.failures.Add(1)
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%s: %w", p.name, ErrTimeout)
		}
		return nil, fmt.Errorf("%s: %w", p.name, err)
	}

	ret := L.Get(-1)
	L.Pop(1)
	return toGoValue(ret), nil
}

// Derive adapts the program to a computed state function. Evaluation errors
// are logged and produce nil.
func (p *Program) Derive() state.DeriveFunc {
	return func(values ...any) any {
		v, err := p.Eval(values...)
		if err != nil {
			p.logger.Error("computed script failed", "script", p.name, "error", err)
			return nil
		}
		return v
	}
}

// Stats reports evaluation counters.
func (p *Program) Stats() (evals, failures uint64) {
	return p.evals.Load(), p.failures.Load()
}

// newSandbox creates an interpreter with only the safe standard libraries.
func newSandbox() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})

	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require"} {
		L.SetGlobal(name, lua.LNil)
	}
	return L
}

package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/tidwall/gjson"

	"github.com/dshills/portfolio/internal/app"
	"github.com/dshills/portfolio/internal/config"
	"github.com/dshills/portfolio/internal/event"
	"github.com/dshills/portfolio/internal/state"
)

// errQuit ends the console loop.
var errQuit = errors.New("quit")

// consoleEvents are echoed to the console output as they are emitted.
var consoleEvents = []string{
	app.EventNavigation,
	app.EventMenuToggle,
	app.EventThemeChange,
	app.EventPreferenceChange,
	app.EventSystemChange,
	app.EventConfigReloaded,
}

type command struct {
	usage string
	help  string
	run   func(ctx context.Context, c *Console, args []string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"goto":     {"goto <section>", "navigate to a section", cmdGoto},
		"menu":     {"menu", "toggle the navigation menu", cmdMenu},
		"theme":    {"theme <light|dark|system>", "set the theme", cmdTheme},
		"pref":     {"pref <field> <value>", "set a preference", cmdPref},
		"signal":   {"signal <colorScheme|reducedMotion> <value>", "apply a system signal", cmdSignal},
		"get":      {"get [path]", "print a state value or the whole tree", cmdGet},
		"set":      {"set <path> <value>", "write a state value", cmdSet},
		"reset":    {"reset [path...]", "restore default values", cmdReset},
		"history":  {"history", "list recorded state changes", cmdHistory},
		"emit":     {"emit <event> [json]", "emit an event on the bus", cmdEmit},
		"sections": {"sections", "list site sections", cmdSections},
		"stats":    {"stats", "print bus and store counters", cmdStats},
		"help":     {"help", "list commands", cmdHelp},
		"quit":     {"quit", "leave the console", cmdQuit},
	}
}

// syncWriter serializes writes from the command loop and event listeners,
// which may run on other goroutines such as the config watcher.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// Console is a line-oriented command interpreter over an application.
type Console struct {
	app       *app.Application
	out       io.Writer
	prompt    bool
	listeners []*event.Listener
}

// ConsoleOption configures a Console.
type ConsoleOption func(*Console)

// WithPrompt enables the input prompt.
func WithPrompt(enabled bool) ConsoleOption {
	return func(c *Console) {
		c.prompt = enabled
	}
}

// NewConsole creates a console writing to out.
func NewConsole(a *app.Application, out io.Writer, opts ...ConsoleOption) *Console {
	c := &Console{app: a, out: &syncWriter{w: out}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Watch echoes application events to the console output until Close.
func (c *Console) Watch() error {
	for _, name := range consoleEvents {
		l, err := c.app.Bus().On(name, event.HandlerFunc(c.echo), event.WithPriority(event.PriorityLow))
		if err != nil {
			return err
		}
		c.listeners = append(c.listeners, l)
	}
	return nil
}

// Close removes the console's event listeners.
func (c *Console) Close() {
	for _, l := range c.listeners {
		l.Unsubscribe()
	}
	c.listeners = nil
}

func (c *Console) echo(_ context.Context, env event.Envelope) error {
	if env.Data == nil {
		fmt.Fprintf(c.out, "event %s\n", env.Type)
		return nil
	}
	fmt.Fprintf(c.out, "event %s %+v\n", env.Type, env.Data)
	return nil
}

// Run reads commands from in until EOF, quit or ctx is done.
func (c *Console) Run(ctx context.Context, in io.Reader) error {
	lines := make(chan string, 1)
	errc := make(chan error, 1)
	next := make(chan struct{}, 1)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for range next {
			if !scanner.Scan() {
				errc <- scanner.Err()
				return
			}
			lines <- scanner.Text()
		}
	}()
	defer close(next)

	for {
		if c.prompt {
			fmt.Fprint(c.out, "portfolio> ")
		}
		next <- struct{}{}

		var line string
		select {
		case <-ctx.Done():
			return nil
		case l, ok := <-lines:
			if !ok {
				return <-errc
			}
			line = l
		}

		quit, err := c.Exec(ctx, line)
		if err != nil {
			fmt.Fprintf(c.out, "error: %v\n", err)
		}
		if quit {
			return nil
		}
	}
}

// Exec runs one command line and reports whether the console should stop.
func (c *Console) Exec(ctx context.Context, line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return false, nil
	}

	name := fields[0]
	if name == "exit" {
		name = "quit"
	}
	cmd, ok := commands[name]
	if !ok {
		return false, fmt.Errorf("unknown command %q (try help)", fields[0])
	}

	err := cmd.run(ctx, c, fields[1:])
	if errors.Is(err, errQuit) {
		return true, nil
	}
	return false, err
}

func needArgs(args []string, n int, usage string) error {
	if len(args) < n {
		return fmt.Errorf("usage: %s", usage)
	}
	return nil
}

func cmdGoto(ctx context.Context, c *Console, args []string) error {
	if err := needArgs(args, 1, commands["goto"].usage); err != nil {
		return err
	}
	return c.app.Navigate(ctx, args[0])
}

func cmdMenu(ctx context.Context, c *Console, _ []string) error {
	open, err := c.app.ToggleMenu(ctx)
	if err != nil {
		return err
	}
	if open {
		fmt.Fprintln(c.out, "menu open")
	} else {
		fmt.Fprintln(c.out, "menu closed")
	}
	return nil
}

func cmdTheme(ctx context.Context, c *Console, args []string) error {
	if err := needArgs(args, 1, commands["theme"].usage); err != nil {
		return err
	}
	return c.app.SetTheme(ctx, args[0])
}

func cmdPref(ctx context.Context, c *Console, args []string) error {
	if err := needArgs(args, 2, commands["pref"].usage); err != nil {
		return err
	}
	return c.app.SetPreference(ctx, args[0], parseValue(strings.Join(args[1:], " ")))
}

func cmdSignal(ctx context.Context, c *Console, args []string) error {
	if err := needArgs(args, 2, commands["signal"].usage); err != nil {
		return err
	}
	return c.app.ApplySystemSignal(ctx, app.Signal{
		Kind:  app.SignalKind(args[0]),
		Value: parseValue(args[1]),
	})
}

func cmdGet(_ context.Context, c *Console, args []string) error {
	if len(args) == 0 {
		return render(c.out, "json", c.app.Store().Snapshot())
	}
	v, ok := c.app.Store().Get(state.Path(args[0]))
	if !ok {
		return fmt.Errorf("no value at %q", args[0])
	}
	out, err := json.Marshal(v)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s\n", out)
	return nil
}

func cmdSet(_ context.Context, c *Console, args []string) error {
	if err := needArgs(args, 2, commands["set"].usage); err != nil {
		return err
	}
	return c.app.Store().Set(state.Path(args[0]), parseValue(strings.Join(args[1:], " ")))
}

func cmdReset(_ context.Context, c *Console, args []string) error {
	paths := make([]state.Path, len(args))
	for i, a := range args {
		paths[i] = state.Path(a)
	}
	return c.app.Store().Reset(paths...)
}

func cmdHistory(_ context.Context, c *Console, _ []string) error {
	entries := c.app.Store().History()
	if len(entries) == 0 {
		fmt.Fprintln(c.out, "no history")
		return nil
	}
	for i, e := range entries {
		changed := changedPaths(e.Before, e.After)
		desc := "(no change)"
		if len(changed) > 0 {
			desc = strings.Join(changed, ", ")
		}
		fmt.Fprintf(c.out, "%d. %s\n", i+1, desc)
	}
	return nil
}

func cmdEmit(ctx context.Context, c *Console, args []string) error {
	if err := needArgs(args, 1, commands["emit"].usage); err != nil {
		return err
	}
	var data any
	if len(args) > 1 {
		data = parseValue(strings.Join(args[1:], " "))
	}
	res := c.app.Bus().Emit(ctx, args[0], data, event.WithSource("console"))
	fmt.Fprintf(c.out, "delivered %d, failed %d\n", res.Delivered, res.Failed)
	return res.Err
}

func cmdSections(_ context.Context, c *Console, _ []string) error {
	current, _ := state.GetAs[string](c.app.Store(), app.PathCurrentSection)
	writeSections(c.out, c.app.Sections(), current)
	return nil
}

func cmdStats(_ context.Context, c *Console, _ []string) error {
	s := c.app.Stats()
	fmt.Fprintf(c.out, "events emitted:     %d\n", s.Bus.EventsEmitted)
	fmt.Fprintf(c.out, "listeners executed: %d\n", s.Bus.ListenersExecuted)
	fmt.Fprintf(c.out, "listener errors:    %d\n", s.Bus.ListenerErrors)
	fmt.Fprintf(c.out, "listener panics:    %d\n", s.Bus.ListenerPanics)
	fmt.Fprintf(c.out, "active listeners:   %d\n", s.Bus.ActiveListeners)
	fmt.Fprintf(c.out, "subscriptions:      %d\n", s.Subscriptions)
	fmt.Fprintf(c.out, "history entries:    %d\n", s.HistoryLen)
	return nil
}

func cmdHelp(_ context.Context, c *Console, _ []string) error {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(c.out, "  %-44s %s\n", commands[name].usage, commands[name].help)
	}
	return nil
}

func cmdQuit(context.Context, *Console, []string) error {
	return errQuit
}

// parseValue interprets console input as a bool, number, JSON document or
// bare string.
func parseValue(s string) any {
	s = strings.TrimSpace(s)
	switch s {
	case "true":
		return true
	case "false":
		return false
	case "null":
		return nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if (strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[") || strings.HasPrefix(s, `"`)) && gjson.Valid(s) {
		var v any
		if err := json.UnmarshalFromString(s, &v); err == nil {
			return normalizeNumbers(v)
		}
	}
	return s
}

// normalizeNumbers turns integral float64 values into int.
func normalizeNumbers(v any) any {
	switch t := v.(type) {
	case float64:
		if math.Abs(t) < 1<<53 && t == math.Trunc(t) {
			return int(t)
		}
		return t
	case map[string]any:
		for k, val := range t {
			t[k] = normalizeNumbers(val)
		}
		return t
	case []any:
		for i := range t {
			t[i] = normalizeNumbers(t[i])
		}
		return t
	default:
		return v
	}
}

// changedPaths lists the leaf paths that differ between two trees.
func changedPaths(before, after map[string]any) []string {
	values := make(map[string][2]any)
	seen := make(map[string][2]bool)
	for _, l := range config.Flatten(before) {
		v := values[l.Path]
		v[0] = l.Value
		values[l.Path] = v
		s := seen[l.Path]
		s[0] = true
		seen[l.Path] = s
	}
	for _, l := range config.Flatten(after) {
		v := values[l.Path]
		v[1] = l.Value
		values[l.Path] = v
		s := seen[l.Path]
		s[1] = true
		seen[l.Path] = s
	}

	var changed []string
	for p, v := range values {
		if seen[p][0] != seen[p][1] || !reflect.DeepEqual(v[0], v[1]) {
			changed = append(changed, p)
		}
	}
	sort.Strings(changed)
	return changed
}

package app

import (
	"context"
	"errors"

	"github.com/dshills/portfolio/internal/config"
	"github.com/dshills/portfolio/internal/prefs"
	"github.com/dshills/portfolio/internal/script"
	"github.com/dshills/portfolio/internal/state"
)

// Start restores persisted preferences, registers computed values and
// persistence subscriptions, and emits EventReady.
// Storage read failures are logged and defaults are kept.
func (app *Application) Start(ctx context.Context) error {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	theme, err := app.prefs.LoadTheme(ctx)
	if err != nil {
		app.logger.Warn("using default theme", "error", err)
	}
	p, err := app.prefs.Load(ctx)
	if err != nil {
		app.logger.Warn("using default preferences", "error", err)
	}

	if err := app.store.SetMany([]state.Update{
		{Path: PathTheme, Value: theme},
		{Path: PathPreferences, Value: p.Map()},
	}, state.Silent()); err != nil {
		app.running.Store(false)
		return &InitError{Component: "state", Err: err}
	}

	if err := app.registerComputed(); err != nil {
		app.disposeComputed()
		app.running.Store(false)
		return err
	}
	if err := app.subscribePersistence(); err != nil {
		app.unsubscribeAll()
		app.disposeComputed()
		app.running.Store(false)
		return &InitError{Component: "persistence", Err: err}
	}

	section, _ := state.GetAs[string](app.store, PathCurrentSection)
	app.logger.Info("application started", "section", section, "theme", theme)
	app.bus.Emit(ctx, EventReady, Ready{Section: section, Theme: theme})
	return nil
}

// Shutdown emits EventShutdown, stops the config watcher, releases store
// registrations, clears every bus listener and closes storage.
func (app *Application) Shutdown(ctx context.Context) error {
	if !app.running.CompareAndSwap(true, false) {
		return ErrNotRunning
	}

	app.bus.Emit(ctx, EventShutdown, nil)

	var errs []error
	app.mu.Lock()
	w := app.watcher
	app.watcher = nil
	app.mu.Unlock()
	if w != nil {
		if err := w.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	app.unsubscribeAll()
	app.disposeComputed()
	app.bus.RemoveAllListeners()

	if err := app.storage.Close(); err != nil {
		errs = append(errs, err)
	}

	app.logger.Info("application stopped")
	return errors.Join(errs...)
}

// effectiveTheme resolves the "system" theme to the system colour scheme.
func effectiveTheme(values ...any) any {
	theme, _ := values[0].(string)
	if theme != prefs.ThemeSystem {
		return theme
	}
	if scheme, ok := values[1].(string); ok && scheme != "" {
		return scheme
	}
	return prefs.ThemeLight
}

func (app *Application) registerComputed() error {
	c, err := app.store.Computed(effectiveTheme, []state.Path{PathTheme, PathColorScheme}, PathEffectiveTheme)
	if err != nil {
		return &InitError{Component: "computed " + PathEffectiveTheme.String(), Err: err}
	}
	app.computed = append(app.computed, c)

	for _, cc := range app.Config().Computed {
		c, err := app.registerScript(cc)
		if err != nil {
			return &InitError{Component: "computed " + cc.Target, Err: err}
		}
		app.computed = append(app.computed, c)
	}
	return nil
}

func (app *Application) registerScript(cc config.ComputedConfig) (*state.Computed, error) {
	deps := make([]state.Path, len(cc.Deps))
	for i, d := range cc.Deps {
		deps[i] = state.Path(d)
	}

	prog, err := script.CompileFor(cc.Script, deps,
		script.WithName(cc.Target),
		script.WithLogger(app.logger),
	)
	if err != nil {
		return nil, err
	}
	return app.store.Computed(prog.Derive(), deps, state.Path(cc.Target))
}

func (app *Application) disposeComputed() {
	for _, c := range app.computed {
		c.Dispose()
	}
	app.computed = nil
}

func (app *Application) unsubscribeAll() {
	for _, s := range app.subs {
		s.Unsubscribe()
	}
	app.subs = nil
}

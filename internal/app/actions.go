package app

import (
	"context"
	"fmt"

	"github.com/dshills/portfolio/internal/prefs"
	"github.com/dshills/portfolio/internal/state"
)

// Navigate makes section current and closes the menu in one write, then
// emits EventNavigation.
func (app *Application) Navigate(ctx context.Context, section string) error {
	if !app.Running() {
		return ErrNotRunning
	}
	if !app.HasSection(section) {
		return fmt.Errorf("%w: %q", ErrUnknownSection, section)
	}

	from, _ := state.GetAs[string](app.store, PathCurrentSection)
	if err := app.store.SetMany([]state.Update{
		{Path: PathCurrentSection, Value: section},
		{Path: PathMenuOpen, Value: false},
	}); err != nil {
		return err
	}

	app.logger.Debug("navigated", "from", from, "to", section)
	app.bus.Emit(ctx, EventNavigation, NavigationChange{From: from, To: section})
	return nil
}

// ToggleMenu flips the menu state, emits EventMenuToggle and returns the new
// state.
func (app *Application) ToggleMenu(ctx context.Context) (bool, error) {
	if !app.Running() {
		return false, ErrNotRunning
	}

	open, _ := state.GetAs[bool](app.store, PathMenuOpen)
	open = !open
	if err := app.store.Set(PathMenuOpen, open); err != nil {
		return false, err
	}

	app.bus.Emit(ctx, EventMenuToggle, MenuToggle{Open: open})
	return open, nil
}

// SetTheme stores theme, which persists it, and emits EventThemeChange with
// the resolved theme.
func (app *Application) SetTheme(ctx context.Context, theme string) error {
	if !app.Running() {
		return ErrNotRunning
	}
	if !prefs.ValidTheme(theme) {
		return fmt.Errorf("%w: %q", ErrInvalidTheme, theme)
	}

	if err := app.store.Set(PathTheme, theme); err != nil {
		return err
	}

	effective, _ := state.GetAs[string](app.store, PathEffectiveTheme)
	app.bus.Emit(ctx, EventThemeChange, ThemeChange{Theme: theme, Effective: effective})
	return nil
}

// SetPreference stores one preference field, which persists it, and emits
// EventPreferenceChange.
func (app *Application) SetPreference(ctx context.Context, key string, value any) error {
	if !app.Running() {
		return ErrNotRunning
	}
	if err := prefs.CheckField(key, value); err != nil {
		return err
	}

	if err := app.store.Set(PathPreferences.Child(key), value); err != nil {
		return err
	}

	app.bus.Emit(ctx, EventPreferenceChange, PreferenceChange{Key: key, Value: value})
	return nil
}

// SignalKind names an environment signal.
type SignalKind string

// Signal kinds.
const (
	SignalColorScheme   SignalKind = "colorScheme"
	SignalReducedMotion SignalKind = "reducedMotion"
)

// Signal is a change reported by the environment, such as the operating
// system switching to a dark colour scheme.
type Signal struct {
	Kind  SignalKind
	Value any
}

// Validate checks the signal kind and value type.
func (s Signal) Validate() error {
	switch s.Kind {
	case SignalColorScheme:
		if v, ok := s.Value.(string); !ok || (v != prefs.ThemeLight && v != prefs.ThemeDark) {
			return fmt.Errorf("%w: colorScheme must be light or dark", ErrInvalidSignal)
		}
	case SignalReducedMotion:
		if _, ok := s.Value.(bool); !ok {
			return fmt.Errorf("%w: reducedMotion must be a bool", ErrInvalidSignal)
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidSignal, s.Kind)
	}
	return nil
}

// ApplySystemSignal writes the signal under system.* and emits
// EventSystemChange.
func (app *Application) ApplySystemSignal(ctx context.Context, sig Signal) error {
	if !app.Running() {
		return ErrNotRunning
	}
	if err := sig.Validate(); err != nil {
		return err
	}

	if err := app.store.Set(PathSystem.Child(string(sig.Kind)), sig.Value); err != nil {
		return err
	}

	app.bus.Emit(ctx, EventSystemChange, sig)
	return nil
}

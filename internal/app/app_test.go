package app

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/portfolio/internal/config"
	"github.com/dshills/portfolio/internal/event"
	"github.com/dshills/portfolio/internal/prefs"
	"github.com/dshills/portfolio/internal/state"
	"github.com/dshills/portfolio/internal/storage"
)

type recorder struct {
	mu     sync.Mutex
	events []event.Envelope
}

func (r *recorder) Handle(_ context.Context, env event.Envelope) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, env)
	return nil
}

func (r *recorder) all() []event.Envelope {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]event.Envelope(nil), r.events...)
}

func newTestApp(t *testing.T, mem storage.Storage) *Application {
	t.Helper()
	if mem == nil {
		mem = storage.NewMemory()
	}
	a, err := New(config.Default(), Deps{Storage: mem})
	require.NoError(t, err)
	return a
}

func startTestApp(t *testing.T, mem storage.Storage) *Application {
	t.Helper()
	a := newTestApp(t, mem)
	require.NoError(t, a.Start(context.Background()))
	t.Cleanup(func() {
		if a.Running() {
			_ = a.Shutdown(context.Background())
		}
	})
	return a
}

func TestStart_DefaultState(t *testing.T) {
	a := newTestApp(t, nil)
	ready := &recorder{}
	_, err := a.Bus().On(EventReady, ready)
	require.NoError(t, err)

	require.NoError(t, a.Start(context.Background()))
	defer a.Shutdown(context.Background())

	store := a.Store()
	section, _ := store.Get(PathCurrentSection)
	assert.Equal(t, "hero", section)
	theme, _ := store.Get(PathTheme)
	assert.Equal(t, "system", theme)
	effective, _ := store.Get(PathEffectiveTheme)
	assert.Equal(t, "light", effective)
	status, _ := store.Get("contact.status")
	assert.Equal(t, "idle", status)

	events := ready.all()
	require.Len(t, events, 1)
	assert.Equal(t, Ready{Section: "hero", Theme: "system"}, events[0].Data)
}

func TestStart_Twice(t *testing.T) {
	a := startTestApp(t, nil)
	assert.ErrorIs(t, a.Start(context.Background()), ErrAlreadyRunning)
}

func TestStart_RestoresPersisted(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	require.NoError(t, mem.SetItem(ctx, prefs.ThemeKey, "dark"))
	require.NoError(t, mem.SetItem(ctx, prefs.PreferencesKey, `{"reducedMotion":true,"fontSize":"large"}`))

	a := startTestApp(t, mem)

	theme, _ := a.Store().Get(PathTheme)
	assert.Equal(t, "dark", theme)
	effective, _ := a.Store().Get(PathEffectiveTheme)
	assert.Equal(t, "dark", effective)
	motion, _ := a.Store().Get("preferences.reducedMotion")
	assert.Equal(t, true, motion)
	size, _ := a.Store().Get("preferences.fontSize")
	assert.Equal(t, "large", size)
}

func TestNavigate(t *testing.T) {
	ctx := context.Background()
	a := startTestApp(t, nil)

	nav := &recorder{}
	_, err := a.Bus().On(EventNavigation, nav)
	require.NoError(t, err)

	var observed []any
	_, err = a.Store().Subscribe(PathCurrentSection, func(value any, path state.Path) {
		menu, _ := a.Store().Get(PathMenuOpen)
		observed = append(observed, value, path, menu)
	}, state.Immediate(false))
	require.NoError(t, err)

	_, err = a.ToggleMenu(ctx)
	require.NoError(t, err)
	require.NoError(t, a.Navigate(ctx, "about"))

	assert.Equal(t, []any{"about", state.Path("currentSection"), false}, observed)

	events := nav.all()
	require.Len(t, events, 1)
	assert.Equal(t, NavigationChange{From: "hero", To: "about"}, events[0].Data)
}

func TestNavigate_UnknownSection(t *testing.T) {
	a := startTestApp(t, nil)

	err := a.Navigate(context.Background(), "footer")
	assert.ErrorIs(t, err, ErrUnknownSection)

	section, _ := a.Store().Get(PathCurrentSection)
	assert.Equal(t, "hero", section)
}

func TestActions_NotRunning(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t, nil)

	assert.ErrorIs(t, a.Navigate(ctx, "about"), ErrNotRunning)
	_, err := a.ToggleMenu(ctx)
	assert.ErrorIs(t, err, ErrNotRunning)
	assert.ErrorIs(t, a.SetTheme(ctx, "dark"), ErrNotRunning)
	assert.ErrorIs(t, a.Shutdown(ctx), ErrNotRunning)
}

func TestToggleMenu(t *testing.T) {
	ctx := context.Background()
	a := startTestApp(t, nil)

	toggles := &recorder{}
	_, err := a.Bus().On(EventMenuToggle, toggles)
	require.NoError(t, err)

	open, err := a.ToggleMenu(ctx)
	require.NoError(t, err)
	assert.True(t, open)

	open, err = a.ToggleMenu(ctx)
	require.NoError(t, err)
	assert.False(t, open)

	events := toggles.all()
	require.Len(t, events, 2)
	assert.Equal(t, MenuToggle{Open: true}, events[0].Data)
}

func TestSetTheme_PersistsAndResolves(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	a := startTestApp(t, mem)

	changes := &recorder{}
	_, err := a.Bus().On(EventThemeChange, changes)
	require.NoError(t, err)

	require.NoError(t, a.SetTheme(ctx, "dark"))

	stored, ok, err := mem.GetItem(ctx, prefs.ThemeKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "dark", stored)

	events := changes.all()
	require.Len(t, events, 1)
	assert.Equal(t, ThemeChange{Theme: "dark", Effective: "dark"}, events[0].Data)

	assert.ErrorIs(t, a.SetTheme(ctx, "sepia"), ErrInvalidTheme)
}

func TestSystemSignal_DrivesEffectiveTheme(t *testing.T) {
	ctx := context.Background()
	a := startTestApp(t, nil)

	changes := &recorder{}
	_, err := a.Bus().On(EventSystemChange, changes)
	require.NoError(t, err)

	require.NoError(t, a.ApplySystemSignal(ctx, Signal{Kind: SignalColorScheme, Value: "dark"}))
	effective, _ := a.Store().Get(PathEffectiveTheme)
	assert.Equal(t, "dark", effective)

	require.NoError(t, a.ApplySystemSignal(ctx, Signal{Kind: SignalReducedMotion, Value: true}))
	motion, _ := a.Store().Get(PathSystemMotion)
	assert.Equal(t, true, motion)

	require.Len(t, changes.all(), 2)

	require.NoError(t, a.SetTheme(ctx, "light"))
	effective, _ = a.Store().Get(PathEffectiveTheme)
	assert.Equal(t, "light", effective)
}

func TestSystemSignal_Invalid(t *testing.T) {
	ctx := context.Background()
	a := startTestApp(t, nil)

	tests := []Signal{
		{Kind: SignalColorScheme, Value: "sepia"},
		{Kind: SignalColorScheme, Value: true},
		{Kind: SignalReducedMotion, Value: "yes"},
		{Kind: "battery", Value: 1},
	}
	for _, sig := range tests {
		assert.ErrorIs(t, a.ApplySystemSignal(ctx, sig), ErrInvalidSignal, sig.Kind)
	}
}

func TestSetPreference_Persists(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	a := startTestApp(t, mem)

	changes := &recorder{}
	_, err := a.Bus().On(EventPreferenceChange, changes)
	require.NoError(t, err)

	require.NoError(t, a.SetPreference(ctx, "fontSize", "large"))
	require.NoError(t, a.SetPreference(ctx, "highContrast", true))

	p, err := a.Prefs().Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, prefs.Preferences{HighContrast: true, FontSize: "large"}, p)

	events := changes.all()
	require.Len(t, events, 2)
	assert.Equal(t, PreferenceChange{Key: "fontSize", Value: "large"}, events[0].Data)

	assert.ErrorIs(t, a.SetPreference(ctx, "fontSize", "huge"), prefs.ErrInvalidValue)
	assert.ErrorIs(t, a.SetPreference(ctx, "colour", "red"), prefs.ErrUnknownField)
}

func TestPreferencesSubtreeWriteKeepsUnknownKeys(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	require.NoError(t, mem.SetItem(ctx, prefs.PreferencesKey, `{"fontSize":"large","legacy":"x"}`))
	a := startTestApp(t, mem)

	require.NoError(t, a.Store().Set(PathPreferences, map[string]any{
		"reducedMotion": true,
		"highContrast":  false,
		"fontSize":      "small",
	}))
	raw, _, err := mem.GetItem(ctx, prefs.PreferencesKey)
	require.NoError(t, err)
	assert.JSONEq(t, `{"fontSize":"small","legacy":"x","reducedMotion":true,"highContrast":false}`, raw)

	require.NoError(t, a.Store().Reset(PathPreferences))
	raw, _, err = mem.GetItem(ctx, prefs.PreferencesKey)
	require.NoError(t, err)
	assert.JSONEq(t, `{"fontSize":"medium","legacy":"x","reducedMotion":false,"highContrast":false}`, raw)
}

func TestScriptedComputed(t *testing.T) {
	cfg := config.Default()
	cfg.Computed = []config.ComputedConfig{{
		Target: "ui.compactHeader",
		Deps:   []string{"scrollY"},
		Script: "return scrollY > 100",
	}}
	a, err := New(cfg, Deps{Storage: storage.NewMemory()})
	require.NoError(t, err)
	require.NoError(t, a.Start(context.Background()))
	defer a.Shutdown(context.Background())

	compact, _ := a.Store().Get("ui.compactHeader")
	assert.Equal(t, false, compact)

	require.NoError(t, a.Store().Set(PathScrollY, 480))
	compact, _ = a.Store().Get("ui.compactHeader")
	assert.Equal(t, true, compact)
}

func TestScriptedComputed_CompileError(t *testing.T) {
	cfg := config.Default()
	cfg.Computed = []config.ComputedConfig{{Target: "x", Deps: []string{"scrollY"}, Script: "return ("}}
	a, err := New(cfg, Deps{Storage: storage.NewMemory()})
	require.NoError(t, err)

	err = a.Start(context.Background())
	var ie *InitError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "computed x", ie.Component)
	assert.False(t, a.Running())
}

func TestApplyConfig(t *testing.T) {
	ctx := context.Background()
	a := startTestApp(t, nil)

	reloads := &recorder{}
	_, err := a.Bus().On(EventConfigReloaded, reloads)
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Site.Sections = append(cfg.Site.Sections, "talks")
	cfg.State = map[string]any{
		"projects": map[string]any{"filter": "go"},
	}
	require.NoError(t, a.ApplyConfig(ctx, "portfolio.toml", cfg))

	filter, _ := a.Store().Get("projects.filter")
	assert.Equal(t, "go", filter)
	assert.Contains(t, a.Sections(), "talks")
	require.NoError(t, a.Navigate(ctx, "talks"))

	events := reloads.all()
	require.Len(t, events, 1)
	assert.Equal(t, ConfigReloaded{Path: "portfolio.toml", Applied: 1}, events[0].Data)
}

func TestApplyConfig_ResetRestoresReloadedState(t *testing.T) {
	ctx := context.Background()
	a := startTestApp(t, nil)

	cfg := config.Default()
	cfg.State = map[string]any{
		"projects": map[string]any{"filter": "go"},
	}
	require.NoError(t, a.ApplyConfig(ctx, "portfolio.toml", cfg))
	require.NoError(t, a.Store().Set("projects.filter", "rust"))

	require.NoError(t, a.Store().Reset("projects.filter"))
	filter, _ := a.Store().Get("projects.filter")
	assert.Equal(t, "go", filter)
}

func TestApplyConfig_DoesNotMutateActiveConfig(t *testing.T) {
	ctx := context.Background()
	a := startTestApp(t, nil)
	before := a.Config()

	cfg := config.Default()
	cfg.Site.Sections = []string{"hero", "talks"}
	require.NoError(t, a.ApplyConfig(ctx, "portfolio.toml", cfg))

	assert.NotContains(t, before.Site.Sections, "talks")
	assert.True(t, a.HasSection("talks"))
	assert.False(t, a.HasSection("about"))

	cfg.Site.Sections[1] = "changed"
	assert.True(t, a.HasSection("talks"))
}

func TestApplyConfig_ConcurrentWithNavigate(t *testing.T) {
	ctx := context.Background()
	a := startTestApp(t, nil)

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
			}
			assert.NoError(t, a.ApplyConfig(ctx, "portfolio.toml", config.Default()))
		}
	}()

	for i := 0; i < 200; i++ {
		require.NoError(t, a.Navigate(ctx, "about"))
		assert.NotEmpty(t, a.Sections())
	}
	close(done)
	wg.Wait()
}

func TestWatchConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portfolio.toml")
	require.NoError(t, os.WriteFile(path, []byte(""), 0o644))

	a := startTestApp(t, nil)
	reloaded := make(chan struct{}, 4)
	_, err := a.Bus().On(EventConfigReloaded, event.HandlerFunc(func(context.Context, event.Envelope) error {
		reloaded <- struct{}{}
		return nil
	}))
	require.NoError(t, err)

	require.NoError(t, a.WatchConfig(path, config.WithDebounce(10*time.Millisecond), config.WithLookup(func(string) (string, bool) {
		return "", false
	})))

	require.NoError(t, os.WriteFile(path, []byte("[state.contact]\nstatus = \"sending\"\n"), 0o644))

	select {
	case <-reloaded:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for config reload")
	}
	status, _ := a.Store().Get("contact.status")
	assert.Equal(t, "sending", status)
}

func TestShutdown(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	a := newTestApp(t, mem)
	require.NoError(t, a.Start(ctx))

	shutdown := &recorder{}
	_, err := a.Bus().On(EventShutdown, shutdown)
	require.NoError(t, err)

	require.NoError(t, a.Shutdown(ctx))

	assert.Len(t, shutdown.all(), 1)
	assert.False(t, a.Running())
	assert.Empty(t, a.Bus().Names())
	assert.Zero(t, a.Stats().Subscriptions)

	_, _, err = mem.GetItem(ctx, prefs.ThemeKey)
	assert.ErrorIs(t, err, storage.ErrClosed)
}

func TestOpenStorage(t *testing.T) {
	ctx := context.Background()

	st, err := OpenStorage(ctx, config.StorageConfig{Ephemeral: true})
	require.NoError(t, err)
	assert.IsType(t, &storage.Memory{}, st)
	require.NoError(t, st.Close())

	st, err = OpenStorage(ctx, config.StorageConfig{Path: filepath.Join(t.TempDir(), "p.db")})
	require.NoError(t, err)
	assert.IsType(t, &storage.SQLite{}, st)
	require.NoError(t, st.Close())
}

func TestEffectiveTheme(t *testing.T) {
	tests := []struct {
		theme, scheme any
		want          string
	}{
		{"dark", "light", "dark"},
		{"light", "dark", "light"},
		{"system", "dark", "dark"},
		{"system", nil, "light"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, effectiveTheme(tt.theme, tt.scheme))
	}
}

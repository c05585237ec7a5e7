package app

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/dshills/portfolio/internal/config"
	"github.com/dshills/portfolio/internal/event"
	"github.com/dshills/portfolio/internal/logging"
	"github.com/dshills/portfolio/internal/metrics"
	"github.com/dshills/portfolio/internal/prefs"
	"github.com/dshills/portfolio/internal/state"
	"github.com/dshills/portfolio/internal/storage"
)

// State paths written by the controller.
const (
	PathCurrentSection = state.Path("currentSection")
	PathTheme          = state.Path("theme")
	PathEffectiveTheme = state.Path("effectiveTheme")
	PathMenuOpen       = state.Path("isMenuOpen")
	PathLoading        = state.Path("isLoading")
	PathScrollY        = state.Path("scrollY")
	PathPreferences    = state.Path("preferences")
	PathSystem         = state.Path("system")
	PathColorScheme    = state.Path("system.colorScheme")
	PathSystemMotion   = state.Path("system.reducedMotion")
)

// Deps are the collaborators injected into the controller.
// Zero fields are filled with defaults: a discard logger, no metrics and
// storage opened from the configuration.
type Deps struct {
	Logger  logging.Logger
	Metrics metrics.Collector
	Storage storage.Storage
}

// Application coordinates the bus, the store and preference persistence.
type Application struct {
	mu sync.RWMutex

	cfg     *config.Config
	logger  logging.Logger
	metrics metrics.Collector

	bus     *event.Bus
	store   *state.Store
	storage storage.Storage
	prefs   *prefs.Store

	computed []*state.Computed
	subs     []*state.Subscription
	watcher  *config.Watcher

	running atomic.Bool
}

// New builds the controller for cfg. Nothing is loaded until Start.
func New(cfg *config.Config, deps Deps) (*Application, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	app := &Application{
		cfg:     cfg,
		logger:  logging.OrDiscard(deps.Logger),
		metrics: metrics.OrNop(deps.Metrics),
		storage: deps.Storage,
	}

	if app.storage == nil {
		st, err := OpenStorage(context.Background(), cfg.Storage)
		if err != nil {
			return nil, &InitError{Component: "storage", Err: err}
		}
		app.storage = st
	}

	app.bus = event.New(
		event.WithLogger(app.logger),
		event.WithMetrics(app.metrics),
	)
	app.store = state.New(cfg.DefaultState(),
		state.WithLogger(app.logger),
		state.WithMetrics(app.metrics),
		state.WithHistorySize(cfg.Store.HistorySize),
	)
	app.prefs = prefs.New(app.storage,
		prefs.WithLogger(app.logger),
		prefs.WithDefaultTheme(cfg.Site.DefaultTheme),
	)

	return app, nil
}

// OpenStorage opens the storage backend described by cfg.
func OpenStorage(ctx context.Context, cfg config.StorageConfig) (storage.Storage, error) {
	if cfg.Ephemeral {
		return storage.NewMemory(), nil
	}
	return storage.OpenSQLite(ctx, cfg.Path)
}

// Bus returns the event bus.
func (app *Application) Bus() *event.Bus {
	return app.bus
}

// Store returns the state store.
func (app *Application) Store() *state.Store {
	return app.store
}

// Prefs returns the preference store.
func (app *Application) Prefs() *prefs.Store {
	return app.prefs
}

// Config returns the active configuration. The value is shared and must not
// be modified; ApplyConfig installs a new one instead of mutating it.
func (app *Application) Config() *config.Config {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return app.cfg
}

// Running reports whether Start has completed and Shutdown has not.
func (app *Application) Running() bool {
	return app.running.Load()
}

// Sections returns the configured section names.
func (app *Application) Sections() []string {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return append([]string(nil), app.cfg.Site.Sections...)
}

// HasSection reports whether name is a configured section.
func (app *Application) HasSection(name string) bool {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return app.cfg.Site.HasSection(name)
}

// Stats summarizes the controller's runtime counters.
type Stats struct {
	Bus           event.Stats
	Subscriptions int
	HistoryLen    int
}

// Stats returns the current counters.
func (app *Application) Stats() Stats {
	subs := 0
	for _, p := range app.store.SubscribedPaths() {
		subs += app.store.SubscriberCount(p)
	}
	return Stats{
		Bus:           app.bus.Stats(),
		Subscriptions: subs,
		HistoryLen:    len(app.store.History()),
	}
}

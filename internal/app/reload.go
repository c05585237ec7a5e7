package app

import (
	"context"

	"github.com/dshills/portfolio/internal/config"
	"github.com/dshills/portfolio/internal/state"
)

// ApplyConfig adopts a reloaded configuration: site settings are replaced,
// the store defaults are rebuilt so Reset restores the reloaded values, and
// the [state] table is written to the store in one bulk write.
// EventConfigReloaded is emitted afterwards.
func (app *Application) ApplyConfig(ctx context.Context, path string, cfg *config.Config) error {
	leaves := config.Flatten(cfg.State)
	updates := make([]state.Update, len(leaves))
	for i, l := range leaves {
		updates[i] = state.Update{Path: state.Path(l.Path), Value: l.Value}
	}

	app.mu.Lock()
	next := *app.cfg
	next.Site = cfg.Site
	next.Site.Sections = append([]string(nil), cfg.Site.Sections...)
	next.State = cfg.State
	app.cfg = &next
	app.mu.Unlock()

	app.store.SetDefaults(next.DefaultState())

	if err := app.store.SetMany(updates); err != nil {
		return err
	}

	app.logger.Info("config applied", "path", path, "paths", len(updates))
	app.bus.Emit(ctx, EventConfigReloaded, ConfigReloaded{Path: path, Applied: len(updates)})
	return nil
}

// WatchConfig reloads the configuration file at path whenever it changes.
// Reload errors are logged and the current configuration is kept.
func (app *Application) WatchConfig(path string, opts ...config.WatcherOption) error {
	opts = append([]config.WatcherOption{config.WithWatchLogger(app.logger)}, opts...)
	w, err := config.Watch(path, func(cfg *config.Config, err error) {
		if err != nil {
			return
		}
		if err := app.ApplyConfig(context.Background(), path, cfg); err != nil {
			app.logger.Error("config apply failed", "path", path, "error", err)
		}
	}, opts...)
	if err != nil {
		return err
	}

	app.mu.Lock()
	old := app.watcher
	app.watcher = w
	app.mu.Unlock()
	if old != nil {
		_ = old.Close()
	}
	return nil
}

package app

import (
	"context"

	"github.com/dshills/portfolio/internal/prefs"
	"github.com/dshills/portfolio/internal/state"
)

// subscribePersistence keeps the theme and preferences in storage in step
// with the store. Storage errors are logged.
func (app *Application) subscribePersistence() error {
	sub, err := app.store.Subscribe(PathTheme, func(value any, _ state.Path) {
		theme, _ := value.(string)
		if err := app.prefs.SaveTheme(context.Background(), theme); err != nil {
			app.logger.Error("persist theme failed", "theme", value, "error", err)
		}
	}, state.Immediate(false))
	if err != nil {
		return err
	}
	app.subs = append(app.subs, sub)

	sub, err = app.store.Subscribe(PathPreferences, func(value any, _ state.Path) {
		m, _ := value.(map[string]any)
		if err := app.prefs.Merge(context.Background(), prefs.FromMap(m)); err != nil {
			app.logger.Error("persist preferences failed", "error", err)
		}
	}, state.Immediate(false))
	if err != nil {
		return err
	}
	app.subs = append(app.subs, sub)

	for _, field := range prefs.Fields() {
		path := PathPreferences.Child(field)
		sub, err := app.store.Subscribe(path, func(value any, _ state.Path) {
			if err := app.prefs.SetField(context.Background(), field, value); err != nil {
				app.logger.Error("persist preference failed", "field", field, "error", err)
			}
		}, state.Immediate(false))
		if err != nil {
			return err
		}
		app.subs = append(app.subs, sub)
	}
	return nil
}

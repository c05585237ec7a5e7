// Package config loads portfolio configuration.
//
// Configuration is read from a TOML or YAML file (chosen by extension) over
// built-in defaults, then environment overrides are applied:
//
//	PORTFOLIO_LOG_LEVEL      log.level
//	PORTFOLIO_LOG_FORMAT     log.format
//	PORTFOLIO_STORAGE_PATH   storage.path
//	PORTFOLIO_HISTORY_SIZE   store.historySize
//	PORTFOLIO_DEFAULT_THEME  site.defaultTheme
//
// A missing file is not an error. Watcher reloads the file when it changes.
package config

package config

import (
	"fmt"
	"strconv"
)

// LookupFunc looks up an environment variable.
type LookupFunc func(key string) (string, bool)

// Environment variables that override file configuration.
const (
	EnvLogLevel     = "PORTFOLIO_LOG_LEVEL"
	EnvLogFormat    = "PORTFOLIO_LOG_FORMAT"
	EnvStoragePath  = "PORTFOLIO_STORAGE_PATH"
	EnvHistorySize  = "PORTFOLIO_HISTORY_SIZE"
	EnvDefaultTheme = "PORTFOLIO_DEFAULT_THEME"
)

// ApplyEnv overrides cfg fields from the environment.
// Empty values are treated as set.
func ApplyEnv(cfg *Config, lookup LookupFunc) error {
	if lookup == nil {
		return nil
	}

	if v, ok := lookup(EnvLogLevel); ok {
		cfg.Log.Level = v
	}
	if v, ok := lookup(EnvLogFormat); ok {
		cfg.Log.Format = v
	}
	if v, ok := lookup(EnvStoragePath); ok {
		cfg.Storage.Path = v
	}
	if v, ok := lookup(EnvDefaultTheme); ok {
		cfg.Site.DefaultTheme = v
	}
	if v, ok := lookup(EnvHistorySize); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvHistorySize, err)
		}
		cfg.Store.HistorySize = n
	}
	return nil
}

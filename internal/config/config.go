package config

import (
	"errors"
	"fmt"
	"slices"
)

// Config is the complete portfolio configuration.
type Config struct {
	Log      LogConfig        `toml:"log" yaml:"log"`
	Store    StoreConfig      `toml:"store" yaml:"store"`
	Storage  StorageConfig    `toml:"storage" yaml:"storage"`
	Site     SiteConfig       `toml:"site" yaml:"site"`
	Metrics  MetricsConfig    `toml:"metrics" yaml:"metrics"`
	State    map[string]any   `toml:"state" yaml:"state"`
	Computed []ComputedConfig `toml:"computed" yaml:"computed"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
}

// StoreConfig configures the state store.
type StoreConfig struct {
	HistorySize int `toml:"historySize" yaml:"historySize"`
}

// StorageConfig configures preference persistence.
type StorageConfig struct {
	// Path is the SQLite database file.
	Path string `toml:"path" yaml:"path"`

	// Ephemeral keeps preferences in memory only.
	Ephemeral bool `toml:"ephemeral" yaml:"ephemeral"`
}

// SiteConfig describes the site being driven.
type SiteConfig struct {
	Title          string   `toml:"title" yaml:"title"`
	Sections       []string `toml:"sections" yaml:"sections"`
	DefaultSection string   `toml:"defaultSection" yaml:"defaultSection"`
	DefaultTheme   string   `toml:"defaultTheme" yaml:"defaultTheme"`
}

// HasSection reports whether name is a configured section.
func (s SiteConfig) HasSection(name string) bool {
	return slices.Contains(s.Sections, name)
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `toml:"enabled" yaml:"enabled"`
	Addr    string `toml:"addr" yaml:"addr"`
}

// ComputedConfig declares a derived state value evaluated by a Lua chunk.
type ComputedConfig struct {
	Target string   `toml:"target" yaml:"target"`
	Deps   []string `toml:"deps" yaml:"deps"`
	Script string   `toml:"script" yaml:"script"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Store: StoreConfig{
			HistorySize: 50,
		},
		Storage: StorageConfig{
			Path: "portfolio.db",
		},
		Site: SiteConfig{
			Title:          "Portfolio",
			Sections:       []string{"hero", "about", "skills", "experience", "projects", "blog", "contact"},
			DefaultSection: "hero",
			DefaultTheme:   "system",
		},
		Metrics: MetricsConfig{
			Addr: ":9090",
		},
	}
}

// Validation errors.
var (
	ErrInvalidHistorySize = errors.New("store.historySize must be positive")
	ErrInvalidTheme       = errors.New("site.defaultTheme must be light, dark or system")
	ErrNoSections         = errors.New("site.sections must not be empty")
	ErrUnknownSection     = errors.New("site.defaultSection is not a configured section")
	ErrInvalidLogFormat   = errors.New("log.format must be text or json")
	ErrInvalidComputed    = errors.New("invalid computed value")
)

// Validate checks the configuration for values the application cannot use.
// Every problem found is reported.
func (c *Config) Validate() error {
	var errs []error

	if c.Store.HistorySize <= 0 {
		errs = append(errs, ErrInvalidHistorySize)
	}
	switch c.Site.DefaultTheme {
	case "light", "dark", "system":
	default:
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidTheme, c.Site.DefaultTheme))
	}
	if len(c.Site.Sections) == 0 {
		errs = append(errs, ErrNoSections)
	} else if !c.Site.HasSection(c.Site.DefaultSection) {
		errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownSection, c.Site.DefaultSection))
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.Log.Format))
	}
	for i, cc := range c.Computed {
		if cc.Target == "" || cc.Script == "" {
			errs = append(errs, fmt.Errorf("%w: computed[%d] needs target and script", ErrInvalidComputed, i))
		}
	}

	return errors.Join(errs...)
}

// DefaultState returns the initial state tree: the built-in shape, the site
// defaults and then the [state] table merged over it.
func (c *Config) DefaultState() map[string]any {
	tree := map[string]any{
		"currentSection": c.Site.DefaultSection,
		"theme":          c.Site.DefaultTheme,
		"isMenuOpen":     false,
		"isLoading":      false,
		"scrollY":        0,
		"system": map[string]any{
			"colorScheme":   "light",
			"reducedMotion": false,
		},
		"preferences": map[string]any{
			"reducedMotion": false,
			"highContrast":  false,
			"fontSize":      "medium",
		},
		"projects": map[string]any{
			"filter": "all",
		},
		"contact": map[string]any{
			"status": "idle",
		},
	}
	mergeInto(tree, c.State)
	return tree
}

// mergeInto deep-merges src into dst. Maps merge key by key; other values
// replace.
func mergeInto(dst, src map[string]any) {
	for k, v := range src {
		srcMap, ok := v.(map[string]any)
		if !ok {
			dst[k] = v
			continue
		}
		dstMap, ok := dst[k].(map[string]any)
		if !ok {
			dstMap = make(map[string]any, len(srcMap))
			dst[k] = dstMap
		}
		mergeInto(dstMap, srcMap)
	}
}

// Flatten returns the leaves of m as dotted paths, sorted.
func Flatten(m map[string]any) []Leaf {
	var leaves []Leaf
	flatten("", m, &leaves)
	slices.SortFunc(leaves, func(a, b Leaf) int {
		switch {
		case a.Path < b.Path:
			return -1
		case a.Path > b.Path:
			return 1
		}
		return 0
	})
	return leaves
}

// Leaf is one dotted path and value of a flattened tree.
type Leaf struct {
	Path  string
	Value any
}

func flatten(prefix string, m map[string]any, out *[]Leaf) {
	for k, v := range m {
		p := k
		if prefix != "" {
			p = prefix + "." + k
		}
		if sub, ok := v.(map[string]any); ok && len(sub) > 0 {
			flatten(p, sub, out)
			continue
		}
		*out = append(*out, Leaf{Path: p, Value: v})
	}
}

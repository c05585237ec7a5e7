package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func noEnv(string) (string, bool) { return "", false }

func envMap(m map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestDefault_Valid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := LoadWithEnv(filepath.Join(t.TempDir(), "absent.toml"), noEnv)
	if err != nil {
		t.Fatalf("LoadWithEnv() error: %v", err)
	}
	if cfg.Site.DefaultSection != "hero" {
		t.Errorf("DefaultSection = %q, want hero", cfg.Site.DefaultSection)
	}
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := LoadWithEnv("", noEnv)
	if err != nil {
		t.Fatalf("LoadWithEnv() error: %v", err)
	}
	if cfg.Store.HistorySize != 50 {
		t.Errorf("HistorySize = %d, want 50", cfg.Store.HistorySize)
	}
}

func TestLoad_TOML(t *testing.T) {
	path := writeFile(t, "portfolio.toml", `
[log]
level = "debug"

[store]
historySize = 10

[site]
sections = ["hero", "work", "contact"]
defaultSection = "work"

[state]
scrollY = 5

[state.projects]
filter = "go"

[[computed]]
target = "ui.compact"
deps = ["scrollY"]
script = "return scrollY > 100"
`)

	cfg, err := LoadWithEnv(path, noEnv)
	if err != nil {
		t.Fatalf("LoadWithEnv() error: %v", err)
	}

	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
	if cfg.Log.Format != "text" {
		t.Errorf("Log.Format = %q, want default text", cfg.Log.Format)
	}
	if cfg.Store.HistorySize != 10 {
		t.Errorf("HistorySize = %d, want 10", cfg.Store.HistorySize)
	}
	if !cfg.Site.HasSection("work") || cfg.Site.HasSection("about") {
		t.Errorf("Sections = %v", cfg.Site.Sections)
	}
	if cfg.Site.DefaultTheme != "system" {
		t.Errorf("DefaultTheme = %q, want default system", cfg.Site.DefaultTheme)
	}
	if len(cfg.Computed) != 1 || cfg.Computed[0].Target != "ui.compact" {
		t.Errorf("Computed = %+v", cfg.Computed)
	}

	tree := cfg.DefaultState()
	if tree["scrollY"] != 5 {
		t.Errorf("scrollY = %#v, want int 5", tree["scrollY"])
	}
	if tree["currentSection"] != "work" {
		t.Errorf("currentSection = %v, want work", tree["currentSection"])
	}
	projects := tree["projects"].(map[string]any)
	if projects["filter"] != "go" {
		t.Errorf("projects.filter = %v, want go", projects["filter"])
	}
	contact := tree["contact"].(map[string]any)
	if contact["status"] != "idle" {
		t.Errorf("contact.status = %v, want idle", contact["status"])
	}
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "portfolio.yaml", `
log:
  format: json
site:
  defaultTheme: dark
state:
  preferences:
    fontSize: large
`)

	cfg, err := LoadWithEnv(path, noEnv)
	if err != nil {
		t.Fatalf("LoadWithEnv() error: %v", err)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q", cfg.Log.Format)
	}
	if cfg.Site.DefaultTheme != "dark" {
		t.Errorf("DefaultTheme = %q", cfg.Site.DefaultTheme)
	}

	prefs := cfg.DefaultState()["preferences"].(map[string]any)
	if prefs["fontSize"] != "large" {
		t.Errorf("fontSize = %v, want large", prefs["fontSize"])
	}
	if prefs["reducedMotion"] != false {
		t.Errorf("reducedMotion = %v, want default false", prefs["reducedMotion"])
	}
}

func TestLoad_ParseError(t *testing.T) {
	path := writeFile(t, "bad.toml", "[log\nlevel = 1\n")

	_, err := LoadWithEnv(path, noEnv)
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if pe.Path != path {
		t.Errorf("ParseError.Path = %q", pe.Path)
	}
	if pe.Line == 0 {
		t.Error("ParseError.Line should be set for TOML errors")
	}
}

func TestLoad_UnsupportedFormat(t *testing.T) {
	path := writeFile(t, "portfolio.ini", "level=debug")

	_, err := LoadWithEnv(path, noEnv)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeFile(t, "portfolio.toml", `
[log]
level = "debug"
`)
	env := envMap(map[string]string{
		EnvLogLevel:     "warn",
		EnvLogFormat:    "json",
		EnvStoragePath:  "/tmp/prefs.db",
		EnvHistorySize:  "7",
		EnvDefaultTheme: "dark",
	})

	cfg, err := LoadWithEnv(path, env)
	if err != nil {
		t.Fatalf("LoadWithEnv() error: %v", err)
	}

	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want warn", cfg.Log.Level)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q, want json", cfg.Log.Format)
	}
	if cfg.Storage.Path != "/tmp/prefs.db" {
		t.Errorf("Storage.Path = %q", cfg.Storage.Path)
	}
	if cfg.Store.HistorySize != 7 {
		t.Errorf("HistorySize = %d, want 7", cfg.Store.HistorySize)
	}
	if cfg.Site.DefaultTheme != "dark" {
		t.Errorf("DefaultTheme = %q, want dark", cfg.Site.DefaultTheme)
	}
}

func TestLoad_EnvBadHistorySize(t *testing.T) {
	_, err := LoadWithEnv("", envMap(map[string]string{EnvHistorySize: "many"}))
	if err == nil {
		t.Fatal("expected error for non-numeric history size")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{"history size", func(c *Config) { c.Store.HistorySize = 0 }, ErrInvalidHistorySize},
		{"theme", func(c *Config) { c.Site.DefaultTheme = "sepia" }, ErrInvalidTheme},
		{"no sections", func(c *Config) { c.Site.Sections = nil }, ErrNoSections},
		{"default section", func(c *Config) { c.Site.DefaultSection = "footer" }, ErrUnknownSection},
		{"log format", func(c *Config) { c.Log.Format = "xml" }, ErrInvalidLogFormat},
		{"computed", func(c *Config) { c.Computed = []ComputedConfig{{Target: "x"}} }, ErrInvalidComputed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestValidate_ReportsAll(t *testing.T) {
	cfg := Default()
	cfg.Store.HistorySize = -1
	cfg.Site.DefaultTheme = "sepia"

	err := cfg.Validate()
	if !errors.Is(err, ErrInvalidHistorySize) || !errors.Is(err, ErrInvalidTheme) {
		t.Errorf("Validate() = %v, want both errors", err)
	}
}

func TestFlatten(t *testing.T) {
	leaves := Flatten(map[string]any{
		"theme": "dark",
		"preferences": map[string]any{
			"fontSize": "large",
		},
		"empty": map[string]any{},
	})

	want := []Leaf{
		{Path: "empty", Value: map[string]any{}},
		{Path: "preferences.fontSize", Value: "large"},
		{Path: "theme", Value: "dark"},
	}
	if len(leaves) != len(want) {
		t.Fatalf("Flatten() = %v", leaves)
	}
	for i := range want {
		if leaves[i].Path != want[i].Path {
			t.Errorf("leaves[%d].Path = %q, want %q", i, leaves[i].Path, want[i].Path)
		}
	}
}

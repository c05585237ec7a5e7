package config

import (
	"os"
	"testing"
	"time"
)

func TestWatcher_Reload(t *testing.T) {
	path := writeFile(t, "portfolio.toml", "[log]\nlevel = \"info\"\n")

	reloads := make(chan *Config, 4)
	w, err := Watch(path, func(cfg *Config, err error) {
		if err != nil {
			t.Errorf("reload error: %v", err)
			return
		}
		reloads <- cfg
	}, WithDebounce(10*time.Millisecond), WithLookup(noEnv))
	if err != nil {
		t.Fatalf("Watch() error: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte("[log]\nlevel = \"debug\"\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case cfg := <-reloads:
		if cfg.Log.Level != "debug" {
			t.Errorf("reloaded Log.Level = %q, want debug", cfg.Log.Level)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}

func TestWatcher_ReloadError(t *testing.T) {
	path := writeFile(t, "portfolio.toml", "")

	errs := make(chan error, 4)
	w, err := Watch(path, func(cfg *Config, err error) {
		if err != nil {
			errs <- err
		}
	}, WithDebounce(10*time.Millisecond), WithLookup(noEnv))
	if err != nil {
		t.Fatalf("Watch() error: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte("[store]\nhistorySize = 0\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case err := <-errs:
		if err == nil {
			t.Error("expected reload error")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload error")
	}
}

func TestWatcher_CloseIdempotent(t *testing.T) {
	path := writeFile(t, "portfolio.toml", "")

	w, err := Watch(path, func(*Config, error) {})
	if err != nil {
		t.Fatalf("Watch() error: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close() error: %v", err)
	}
}

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadWritesDefaultsWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	loader := NewFileLoader(path)

	cfg, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Preferences.DefaultModel == "" {
		t.Fatal("default config should set a default model")
	}
	if !cfg.Security.Enabled {
		t.Fatal("security should default to enabled")
	}
	if cfg.Context.HistoryWindow == 0 {
		t.Fatal("history window should default to a positive value")
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config file should be written: %v", err)
	}
}

func TestLoadHydratesPartialConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	partial := []byte("models:\n  - name: local\n    endpoint: http://localhost:11434\n")
	if err := os.WriteFile(path, partial, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewFileLoader(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Preferences.DefaultModel != "local" {
		t.Fatalf("default model should hydrate from first model, got %q", cfg.Preferences.DefaultModel)
	}
	if cfg.Preferences.TimeoutSeconds != 30 {
		t.Fatalf("timeout should hydrate to 30, got %d", cfg.Preferences.TimeoutSeconds)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("models: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileLoader(path).Load(context.Background()); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

func TestLoadCustomPatterns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patterns.yaml")
	content := []byte("patterns:\n  - 'terraform\\s+destroy'\n  - 'deploy\\s+--prod'\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatal(err)
	}

	patterns, err := LoadCustomPatterns(path)
	if err != nil {
		t.Fatalf("LoadCustomPatterns error: %v", err)
	}
	if len(patterns) != 2 {
		t.Fatalf("got %d patterns, want 2", len(patterns))
	}
}

func TestLoadCustomPatternsMissingFile(t *testing.T) {
	patterns, err := LoadCustomPatterns(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if patterns != nil {
		t.Fatalf("missing file should yield no patterns, got %v", patterns)
	}
}

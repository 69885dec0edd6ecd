package store

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfig_SaveLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LANES_CONFIG_DIR", dir)

	cfg := &GlobalConfig{Server: "http://127.0.0.1:8080", Actor: "act-a", TUI: &TUIConfig{Theme: "Dark"}}
	if err := SaveConfig(cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "config.json")); err != nil {
		t.Fatalf("expected config file: %v", err)
	}
	got, err := LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Server != cfg.Server || got.Actor != "act-a" {
		t.Fatalf("unexpected config: %+v", got)
	}
	if got.ThemeOrDefault() != "dark" {
		t.Fatalf("expected dark theme, got %q", got.ThemeOrDefault())
	}
}

func TestLoadConfig_Missing_ReturnsEmpty(t *testing.T) {
	t.Setenv("LANES_CONFIG_DIR", t.TempDir())
	got, err := LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Server != "" || got.ThemeOrDefault() != "auto" {
		t.Fatalf("unexpected config: %+v", got)
	}
}

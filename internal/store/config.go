package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// GlobalConfig is the user config file. Flags and LANES_* env vars win over it.
type GlobalConfig struct {
	// Server is the base URL of a lanes server used by the board client.
	Server string `json:"server,omitempty"`
	// Actor is the default acting user id.
	Actor string `json:"actor,omitempty"`
	// DB overrides the local database path.
	DB string `json:"db,omitempty"`

	// TUI holds optional user preferences for the board client.
	TUI *TUIConfig `json:"tui,omitempty"`
}

type TUIConfig struct {
	// Theme is "auto", "dark" or "light".
	Theme string `json:"theme,omitempty"`
}

func ConfigDir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.lanes).
	if v := strings.TrimSpace(os.Getenv("LANES_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".lanes"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LoadConfig returns an empty config when the file does not exist.
func LoadConfig() (*GlobalConfig, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &GlobalConfig{}, nil
		}
		return nil, err
	}
	var cfg GlobalConfig
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func SaveConfig(cfg *GlobalConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	// Unique temp name + rename so a CLI and a running server never see a torn file.
	return atomicWriteFile(dir, "config.json.*.tmp", path, b, 0o600)
}

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}

// ThemeOrDefault returns the configured TUI theme or "auto".
func (c *GlobalConfig) ThemeOrDefault() string {
	if c == nil || c.TUI == nil || strings.TrimSpace(c.TUI.Theme) == "" {
		return "auto"
	}
	return strings.ToLower(strings.TrimSpace(c.TUI.Theme))
}

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"lanes-cli/internal/store"
)

var configKeys = []string{"server", "actor", "db", "tui.theme"}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change ~/.lanes/config.json",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeOut(cmd, app, map[string]any{"data": app.cfg})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:       "set <key> <value>",
		Short:     "Set one config key (server, actor, db, tui.theme)",
		Args:      cobra.ExactArgs(2),
		ValidArgs: configKeys,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := store.LoadConfig()
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := setConfigKey(cfg, args[0], args[1]); err != nil {
				return writeErr(cmd, err)
			}
			if err := store.SaveConfig(cfg); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": cfg})
		},
	})

	return cmd
}

func setConfigKey(cfg *store.GlobalConfig, key, value string) error {
	value = strings.TrimSpace(value)
	switch key {
	case "server":
		cfg.Server = value
	case "actor":
		cfg.Actor = value
	case "db":
		cfg.DB = value
	case "tui.theme":
		switch strings.ToLower(value) {
		case "", "auto", "dark", "light":
		default:
			return fmt.Errorf("config: tui.theme must be auto, dark or light, got %q", value)
		}
		if cfg.TUI == nil {
			cfg.TUI = &store.TUIConfig{}
		}
		cfg.TUI.Theme = value
	default:
		return fmt.Errorf("config: unknown key %q (want one of %s)", key, strings.Join(configKeys, ", "))
	}
	return nil
}

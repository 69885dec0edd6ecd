package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"lanes-cli/internal/format"
	"lanes-cli/internal/store"
)

type App struct {
	DB         string
	Server     string
	ActorID    string
	PrettyJSON bool
	Format     string
	LogLevel   string

	cfg *store.GlobalConfig
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "lanes",
		Short:        "Ordered boards, columns and tasks with drag-and-drop moves",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Run the server
  lanes serve --addr 127.0.0.1:7878

  # Open a board (shortcut for: lanes board <board-id>)
  lanes --server http://127.0.0.1:7878 <board-id>

  # Scriptable commands
  lanes boards list --format table
  lanes tasks move <task-id> --board <board-id> --column <column-id> --before <task-id>
`),
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := store.LoadConfig()
		if err != nil {
			return writeErr(cmd, fmt.Errorf("load config: %w", err))
		}
		app.cfg = cfg
		// Flags and env vars win; the config file only fills the gaps.
		if strings.TrimSpace(app.DB) == "" {
			app.DB = cfg.DB
		}
		if strings.TrimSpace(app.Server) == "" {
			app.Server = cfg.Server
		}
		if strings.TrimSpace(app.ActorID) == "" {
			app.ActorID = cfg.Actor
		}
		if _, err := log.ParseLevel(app.LogLevel); err != nil {
			return writeErr(cmd, err)
		}
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.DB, "db", envOr("LANES_DB", ""), "Path to the local SQLite database (default: ~/.lanes/lanes.sqlite)")
	cmd.PersistentFlags().StringVar(&app.Server, "server", envOr("LANES_SERVER", ""), "Base URL of a lanes server; when set, commands go through its API instead of the local database")
	cmd.PersistentFlags().StringVar(&app.ActorID, "actor", envOr("LANES_ACTOR", ""), "Actor id (overrides actor in config.json)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("LANES_FORMAT", "json"), "Output format (json|table)")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", envOr("LANES_LOG_LEVEL", "info"), "Log level (debug|info|warn|error)")

	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newBoardsCmd(app))
	cmd.AddCommand(newColumnsCmd(app))
	cmd.AddCommand(newTasksCmd(app))
	cmd.AddCommand(newInboxCmd(app))
	cmd.AddCommand(newRebalanceCmd(app))
	cmd.AddCommand(newEventsCmd(app))
	cmd.AddCommand(newDoctorCmd(app))
	cmd.AddCommand(newBoardCmd(app))
	cmd.AddCommand(newConfigCmd(app))

	return cmd
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}

// newLogger builds the structured logger shared by the server and the board client.
func (app *App) newLogger(w io.Writer) *log.Logger {
	logger := log.New()
	logger.SetOutput(w)
	logger.SetFormatter(&log.JSONFormatter{})
	if lvl, err := log.ParseLevel(app.LogLevel); err == nil {
		logger.SetLevel(lvl)
	}
	return logger
}

func (app *App) dbPath() (string, error) {
	if p := strings.TrimSpace(app.DB); p != "" {
		return p, nil
	}
	return store.DefaultPath()
}

func (app *App) theme() string {
	return app.cfg.ThemeOrDefault()
}

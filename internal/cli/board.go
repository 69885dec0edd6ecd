package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"lanes-cli/internal/client"
	"lanes-cli/internal/store"
	"lanes-cli/internal/tui"
)

const tuiLogFile = "lanes-tui.log"

func newBoardCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "board <board-id>",
		Short: "Open a board in the terminal and move cards and columns by drag-and-drop",
		Long: strings.TrimSpace(`
Open an interactive board against a lanes server (--server or LANES_SERVER).

Drag cards and column headers with the mouse, or use the keyboard:
space picks up the focused card or column, arrows move it, enter drops and
esc cancels. Moves show immediately and are confirmed with the server; a
refused move reloads the board.
`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			server := strings.TrimSpace(app.Server)
			if server == "" {
				return writeErr(cmd, errors.New("board: no server; pass --server, set LANES_SERVER or run `lanes config set server <url>`"))
			}
			if strings.TrimSpace(app.ActorID) == "" {
				return writeErr(cmd, errNoActor)
			}

			logFile, err := openTUILog()
			if err != nil {
				return writeErr(cmd, err)
			}
			defer func() { _ = logFile.Close() }()

			return tui.Run(cmd.Context(), tui.Options{
				BoardID: args[0],
				Remote:  client.New(server, app.ActorID),
				Logger:  app.newLogger(logFile),
				Theme:   app.theme(),
			})
		},
	}
}

// openTUILog appends to a log file in the config dir; the terminal belongs to the UI.
func openTUILog() (*os.File, error) {
	dir, err := store.ConfigDir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(filepath.Join(dir, tuiLogFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
}

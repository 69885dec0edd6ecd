package cli

import (
	"context"

	"github.com/spf13/cobra"

	"lanes-cli/internal/model"
)

func newBoardsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "boards",
		Short: "Create, list and manage boards",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List live boards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWith(cmd, app, func(ctx context.Context, b backend) (any, error) {
				boards, err := b.Boards(ctx)
				return boardRows(boards), err
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "create <name>",
		Short: "Create a board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWith(cmd, app, func(ctx context.Context, b backend) (any, error) {
				return b.CreateBoard(ctx, args[0])
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show <board-id>",
		Short: "Show a board with its columns and tasks in order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWith(cmd, app, func(ctx context.Context, b backend) (any, error) {
				snap, err := b.Board(ctx, args[0])
				return snapshotView(snap), err
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rename <board-id> <name>",
		Short: "Rename a board",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWith(cmd, app, func(ctx context.Context, b backend) (any, error) {
				return b.RenameBoard(ctx, args[0], args[1])
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <board-id>",
		Short: "Delete a board (soft; positions are kept)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWith(cmd, app, func(ctx context.Context, b backend) (any, error) {
				if err := b.DeleteBoard(ctx, args[0]); err != nil {
					return nil, err
				}
				return model.MessageResponse{Message: "Board deleted"}, nil
			})
		},
	})

	return cmd
}

// snapshotView renders a board as one row per task, grouped by column.
type snapshotView model.BoardSnapshot

func (v snapshotView) Table() ([]string, [][]string) {
	var rows [][]string
	for _, c := range v.Columns {
		if len(c.Tasks) == 0 {
			rows = append(rows, []string{c.Name, formatPosition(c.Position), "", "", ""})
			continue
		}
		for _, t := range c.Tasks {
			rows = append(rows, []string{c.Name, formatPosition(c.Position), t.ID, t.Title, formatPosition(t.Position)})
		}
	}
	return []string{"COLUMN", "COL POS", "TASK", "TITLE", "POSITION"}, rows
}

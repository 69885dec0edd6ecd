package cli

import (
	"context"

	"github.com/spf13/cobra"

	"lanes-cli/internal/model"
)

func newColumnsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "columns",
		Short: "Create, reorder and manage the columns of a board",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list <board-id>",
		Short: "List a board's columns in order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWith(cmd, app, func(ctx context.Context, b backend) (any, error) {
				snap, err := b.Board(ctx, args[0])
				return columnRows(snap.Columns), err
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "create <board-id> <name>",
		Short: "Append a column to a board",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWith(cmd, app, func(ctx context.Context, b backend) (any, error) {
				return b.CreateColumn(ctx, args[0], args[1])
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rename <column-id> <name>",
		Short: "Rename a column",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWith(cmd, app, func(ctx context.Context, b backend) (any, error) {
				return b.RenameColumn(ctx, args[0], args[1])
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <column-id>",
		Short: "Delete a column (soft; siblings keep their positions)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWith(cmd, app, func(ctx context.Context, b backend) (any, error) {
				return b.DeleteColumn(ctx, args[0])
			})
		},
	})

	cmd.AddCommand(newColumnMoveCmd(app))
	return cmd
}

func newColumnMoveCmd(app *App) *cobra.Command {
	var req model.SwitchColumnRequest

	cmd := &cobra.Command{
		Use:   "move <column-id>",
		Short: "Move a column between two neighbours",
		Long: `Move a column so that --before is the column immediately to its left and
--after the one immediately to its right. Give one of them to move next to an
end column; give neither only when the board has no other columns.`,
		Example: `lanes columns move <done-id> --board <board-id> --after <todo-id>`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWith(cmd, app, func(ctx context.Context, b backend) (any, error) {
				return b.SwitchColumn(ctx, args[0], req)
			})
		},
	}

	cmd.Flags().StringVar(&req.BoardID, "board", "", "Board the column belongs to")
	cmd.Flags().StringVar(&req.BeforeColumnID, "before", "", "Column that will sit immediately before (left of) the moved column")
	cmd.Flags().StringVar(&req.AfterColumnID, "after", "", "Column that will sit immediately after (right of) the moved column")
	_ = cmd.MarkFlagRequired("board")
	return cmd
}

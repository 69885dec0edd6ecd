package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"lanes-cli/internal/model"
)

func newTasksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Create, move and manage tasks",
	}

	cmd.AddCommand(newTaskListCmd(app))
	cmd.AddCommand(newTaskCreateCmd(app))
	cmd.AddCommand(newTaskUpdateCmd(app))

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete a task (soft; siblings keep their positions)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWith(cmd, app, func(ctx context.Context, b backend) (any, error) {
				return b.DeleteTask(ctx, args[0])
			})
		},
	})

	cmd.AddCommand(newTaskMoveCmd(app))
	return cmd
}

func newTaskListCmd(app *App) *cobra.Command {
	var columnID string

	cmd := &cobra.Command{
		Use:   "list <board-id>",
		Short: "List a board's tasks in column order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWith(cmd, app, func(ctx context.Context, b backend) (any, error) {
				snap, err := b.Board(ctx, args[0])
				if err != nil {
					return nil, err
				}
				out := taskRows{}
				found := columnID == ""
				for _, c := range snap.Columns {
					if columnID != "" && c.ID != columnID {
						continue
					}
					found = true
					out = append(out, c.Tasks...)
				}
				if !found {
					return nil, fmt.Errorf("column %s is not on board %s", columnID, args[0])
				}
				return out, nil
			})
		},
	}

	cmd.Flags().StringVar(&columnID, "column", "", "Only list this column")
	return cmd
}

func newTaskCreateCmd(app *App) *cobra.Command {
	var req model.CreateTaskRequest

	cmd := &cobra.Command{
		Use:   "create <title>",
		Short: "Append a task to a column, or add it to the top of your inbox",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Title = args[0]
			return runWith(cmd, app, func(ctx context.Context, b backend) (any, error) {
				return b.CreateTask(ctx, req)
			})
		},
	}

	cmd.Flags().StringVar(&req.ColumnID, "column", "", "Column to append to (default: your inbox)")
	cmd.Flags().StringVar(&req.BoardID, "board", "", "Board of --column")
	cmd.Flags().StringVar(&req.Description, "description", "", "Task description (markdown)")
	return cmd
}

func newTaskUpdateCmd(app *App) *cobra.Command {
	var req model.UpdateTaskRequest

	cmd := &cobra.Command{
		Use:   "update <task-id> <title>",
		Short: "Change a task's title and description",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Title = args[1]
			return runWith(cmd, app, func(ctx context.Context, b backend) (any, error) {
				return b.UpdateTask(ctx, args[0], req)
			})
		},
	}

	cmd.Flags().StringVar(&req.Description, "description", "", "Task description (markdown)")
	return cmd
}

func newTaskMoveCmd(app *App) *cobra.Command {
	var req model.SwitchTaskRequest

	cmd := &cobra.Command{
		Use:   "move <task-id>",
		Short: "Move a task between two neighbours, possibly into another column",
		Long: `Move a task so that --before is the task immediately above it and --after
the one immediately below it, in --column (or your inbox when --column is
omitted). Give neither only when the destination is empty.`,
		Example: `lanes tasks move <task-id> --board <board-id> --column <done-id> --before <last-done-task-id>`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWith(cmd, app, func(ctx context.Context, b backend) (any, error) {
				return b.SwitchTask(ctx, args[0], req)
			})
		},
	}

	cmd.Flags().StringVar(&req.ColumnID, "column", "", "Destination column (default: your inbox)")
	cmd.Flags().StringVar(&req.BoardID, "board", "", "Board of --column")
	cmd.Flags().StringVar(&req.BeforeTaskID, "before", "", "Task that will sit immediately before (above) the moved task")
	cmd.Flags().StringVar(&req.AfterTaskID, "after", "", "Task that will sit immediately after (below) the moved task")
	return cmd
}

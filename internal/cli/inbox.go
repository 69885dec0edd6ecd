package cli

import (
	"context"

	"github.com/spf13/cobra"
)

func newInboxCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "inbox",
		Short: "List your holding-area tasks, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWith(cmd, app, func(ctx context.Context, b backend) (any, error) {
				tasks, err := b.Inbox(ctx)
				return taskRows(tasks), err
			})
		},
	}
}

package cli

import (
	"context"

	"github.com/spf13/cobra"
)

func newEventsCmd(app *App) *cobra.Command {
	var entityID string
	var limit int

	cmd := &cobra.Command{
		Use:   "events",
		Short: "List the event log, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWith(cmd, app, func(ctx context.Context, b backend) (any, error) {
				evs, err := b.Events(ctx, entityID, limit)
				return eventRows(evs), err
			})
		},
	}

	cmd.Flags().StringVar(&entityID, "entity", "", "Only events about this board, column or task id")
	cmd.Flags().IntVar(&limit, "limit", 200, "Max events to return (0 = all)")
	return cmd
}

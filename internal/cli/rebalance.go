package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"lanes-cli/internal/model"
)

func newRebalanceCmd(app *App) *cobra.Command {
	var boardID, columnID string
	var inbox bool

	cmd := &cobra.Command{
		Use:   "rebalance",
		Short: "Respace the positions of one container evenly",
		Long: `Rewrite the positions of a board's columns (--board), a column's tasks
(--column) or your inbox (--inbox) to evenly spaced values, keeping the
current order. Moves rebalance automatically when neighbours get too close;
this command is for repairs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := rebalanceTarget(boardID, columnID, inbox)
			if err != nil {
				return writeErr(cmd, err)
			}
			return runWith(cmd, app, func(ctx context.Context, b backend) (any, error) {
				n, err := b.Rebalance(ctx, ref)
				if err != nil {
					return nil, err
				}
				return model.RebalanceResponse{Message: "Positions rebalanced", Updated: n}, nil
			})
		},
	}

	cmd.Flags().StringVar(&boardID, "board", "", "Rebalance the columns of this board")
	cmd.Flags().StringVar(&columnID, "column", "", "Rebalance the tasks of this column")
	cmd.Flags().BoolVar(&inbox, "inbox", false, "Rebalance your inbox")
	return cmd
}

func rebalanceTarget(boardID, columnID string, inbox bool) (model.ContainerRef, error) {
	var refs []model.ContainerRef
	if boardID != "" {
		refs = append(refs, model.BoardContainer(boardID))
	}
	if columnID != "" {
		refs = append(refs, model.ColumnContainer(columnID))
	}
	if inbox {
		refs = append(refs, model.InboxContainer(""))
	}
	if len(refs) != 1 {
		return model.ContainerRef{}, errors.New("rebalance: pass exactly one of --board, --column or --inbox")
	}
	return refs[0], nil
}

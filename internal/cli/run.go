package cli

import (
	"context"

	"github.com/spf13/cobra"
)

// runWith opens the backend, runs fn and writes its result under "data".
func runWith(cmd *cobra.Command, app *App, fn func(ctx context.Context, b backend) (any, error)) error {
	ctx := cmd.Context()
	b, closer, err := openBackend(ctx, app)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer func() { _ = closer.Close() }()

	out, err := fn(ctx, b)
	if err != nil {
		return writeErr(cmd, err)
	}
	return writeOut(cmd, app, map[string]any{"data": out})
}

package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"lanes-cli/internal/store"
)

var errDoctorIssuesFound = errors.New("doctor: position errors found")

func newDoctorCmd(app *App) *cobra.Command {
	var fix bool
	var fail bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check every container of the local database for duplicate or unordered positions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if fix && app.ActorID == "" {
				return writeErr(cmd, errNoActor)
			}
			svc, st, err := openLocal(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer func() { _ = st.Close() }()

			var report store.DoctorReport
			if fix {
				report, err = svc.Doctor(cmd.Context(), app.ActorID, true)
			} else {
				report, err = svc.Store().Doctor(cmd.Context(), "", false)
			}
			if err != nil {
				return writeErr(cmd, err)
			}

			meta := map[string]any{
				"issues":    len(report.Issues),
				"hasErrors": report.HasErrors(),
			}
			var hints []string
			if report.HasErrors() && !fix {
				hints = append(hints, "lanes doctor --fix")
			}

			if err := writeOut(cmd, app, map[string]any{
				"data":   report,
				"meta":   meta,
				"_hints": hints,
			}); err != nil {
				return err
			}

			if fail && report.HasErrors() {
				return errDoctorIssuesFound
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&fix, "fix", false, "Rebalance containers that have errors")
	cmd.Flags().BoolVar(&fail, "fail", false, "Exit with non-zero status if unfixed errors remain")
	return cmd
}

package cli

import (
	"time"

	"github.com/spf13/cobra"

	"taskdeck/internal/format"
	"taskdeck/internal/view"
)

func newStatsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Completion, overdue and per-category counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), app, false)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			a := view.Analyze(s.ctrl.Store().Tasks(), s.ctrl.Categories(), time.Now())
			return writeOut(cmd, app, format.Analytics(a))
		},
	}
}

package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"taskdeck/internal/format"
	"taskdeck/internal/model"
)

func newSubtasksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "subtasks",
		Aliases: []string{"subtask"},
		Short:   "Subtask commands",
	}

	cmd.AddCommand(newSubtaskCmd(app, "add <task-id> <title>", "Append a subtask", 2,
		func(s *session, cmd *cobra.Command, args []string) *model.Task {
			return s.ctrl.AddSubtask(cmd.Context(), args[0], args[1])
		}))
	cmd.AddCommand(newSubtaskCmd(app, "rename <task-id> <subtask-id> <title>", "Retitle a subtask", 3,
		func(s *session, cmd *cobra.Command, args []string) *model.Task {
			return s.ctrl.UpdateSubtask(cmd.Context(), args[0], args[1], args[2])
		}))
	cmd.AddCommand(newSubtaskCmd(app, "toggle <task-id> <subtask-id>", "Flip a subtask's completion", 2,
		func(s *session, cmd *cobra.Command, args []string) *model.Task {
			return s.ctrl.ToggleSubtask(cmd.Context(), args[0], args[1])
		}))
	cmd.AddCommand(newSubtaskCmd(app, "delete <task-id> <subtask-id>", "Remove a subtask", 2,
		func(s *session, cmd *cobra.Command, args []string) *model.Task {
			return s.ctrl.DeleteSubtask(cmd.Context(), args[0], args[1])
		}))

	return cmd
}

func newSubtaskCmd(app *App, use, short string, nargs int, run func(*session, *cobra.Command, []string) *model.Task) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(nargs),
		RunE: func(cmd *cobra.Command, args []string) error {
			for i := range args[:2] {
				args[i] = strings.TrimSpace(args[i])
			}
			s, err := openSession(cmd.Context(), app, false)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			t := run(s, cmd, args)
			if t == nil {
				return writeErr(cmd, s.notes.err("Failed to update subtasks"))
			}
			return writeOut(cmd, app, format.Task(*t))
		},
	}
}

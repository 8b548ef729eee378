package cli

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"taskdeck/internal/format"
	"taskdeck/internal/model"
	"taskdeck/internal/reminder"
)

func newRemindersCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "reminders",
		Aliases: []string{"reminder"},
		Short:   "Reminder commands (delivered by `taskdeck remind`)",
	}
	cmd.AddCommand(newRemindersAddCmd(app))
	cmd.AddCommand(newRemindersListCmd(app))
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <reminder-id>",
		Short: "Delete a reminder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBackend(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer b.Close()

			id := strings.TrimSpace(args[0])
			ok, err := b.DeleteReminder(cmd.Context(), id)
			if err != nil {
				return writeErr(cmd, err)
			}
			if !ok {
				return writeErr(cmd, errors.New("reminder not found: "+id))
			}
			return writeOut(cmd, app, map[string]any{"id": id, "deleted": true})
		},
	})
	return cmd
}

func newRemindersAddCmd(app *App) *cobra.Command {
	var before, at string

	cmd := &cobra.Command{
		Use:   "add <task-id>",
		Short: "Remind before a task's due date (or at an explicit time)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), app, false)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			t, err := s.task(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			typ := model.ReminderType(strings.TrimSpace(before))

			var when time.Time
			if strings.TrimSpace(at) != "" {
				when, err = time.Parse(time.RFC3339, strings.TrimSpace(at))
				if err != nil {
					return writeErr(cmd, errors.New("invalid --at (expected RFC 3339, e.g. 2030-01-02T09:00:00Z)"))
				}
			} else {
				when, err = reminder.TimeFor(t.DueDate, typ)
				if err != nil {
					return writeErr(cmd, err)
				}
			}

			r, err := s.backend.CreateReminder(cmd.Context(), model.ReminderInput{
				TaskID:       t.ID,
				ReminderTime: when,
				ReminderType: typ,
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, r)
		},
	}
	cmd.Flags().StringVar(&before, "before", string(model.Reminder10Min), "Offset before the due date: 10min|1h|1d")
	cmd.Flags().StringVar(&at, "at", "", "Explicit reminder time (RFC 3339); --before still names the type")
	return cmd
}

func newRemindersListCmd(app *App) *cobra.Command {
	var taskID string
	var pending bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List reminders",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBackend(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer b.Close()

			rems, err := b.ListReminders(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			out := make([]model.Reminder, 0, len(rems))
			for _, r := range rems {
				if taskID != "" && r.TaskID != taskID {
					continue
				}
				if pending && r.SentAt != nil {
					continue
				}
				out = append(out, r)
			}
			return writeOut(cmd, app, format.Reminders(out))
		},
	}
	cmd.Flags().StringVar(&taskID, "task", "", "Only reminders of this task")
	cmd.Flags().BoolVar(&pending, "pending", false, "Only reminders not yet sent")
	return cmd
}

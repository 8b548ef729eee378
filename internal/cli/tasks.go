package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"taskdeck/internal/format"
	"taskdeck/internal/model"
	"taskdeck/internal/statusutil"
	"taskdeck/internal/view"
)

func newTasksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"task"},
		Short:   "Task commands",
	}

	cmd.AddCommand(newTasksListCmd(app))
	cmd.AddCommand(newTasksShowCmd(app))
	cmd.AddCommand(newTasksCreateCmd(app))
	cmd.AddCommand(newTasksUpdateCmd(app))
	cmd.AddCommand(newTasksDeleteCmd(app))
	cmd.AddCommand(newTasksBulkUpdateCmd(app))
	cmd.AddCommand(newTasksBulkDeleteCmd(app))
	cmd.AddCommand(newTasksBulkCompleteCmd(app))

	return cmd
}

func newTasksListCmd(app *App) *cobra.Command {
	var query, status, category string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks (filtered by category, then status, then search)",
		RunE: func(cmd *cobra.Command, args []string) error {
			st := view.NewState()
			st.SetQuery(query)
			st.SetCategory(category)
			if !st.SetStatus(status) {
				return writeErr(cmd, errors.New("invalid --status (expected all, todo, in_progress or done)"))
			}

			s, err := openSession(cmd.Context(), app, false)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			res := st.Project(s.ctrl.Store().Tasks())
			return writeOutMeta(cmd, app, format.Tasks(res.Filtered), res.Stats)
		},
	}
	cmd.Flags().StringVar(&query, "query", "", "Case-insensitive search in title and description")
	cmd.Flags().StringVar(&status, "status", statusutil.FilterAll, "Status tab: all|todo|in_progress|done")
	cmd.Flags().StringVar(&category, "category", "", "Category id (empty = all)")
	return cmd
}

func newTasksShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <task-id>",
		Short: "Show a task",
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
			return writeOut(cmd, app, format.Task(t))
		},
	}
}

// taskFlags are the editable task fields shared by create, update and bulk-update.
type taskFlags struct {
	title, description, priority, status, category, due string
	done, undone                                         bool
}

func (f *taskFlags) register(cmd *cobra.Command, withText bool) {
	if withText {
		cmd.Flags().StringVar(&f.title, "title", "", "Title (1-200 chars)")
		cmd.Flags().StringVar(&f.description, "description", "", "Description (markdown)")
		cmd.Flags().StringVar(&f.due, "due", "", "Due date (YYYY-MM-DD, empty clears)")
	}
	cmd.Flags().StringVar(&f.priority, "priority", "", "Priority: low|normal|high")
	cmd.Flags().StringVar(&f.status, "status", "", "Status: todo|in_progress|done")
	cmd.Flags().StringVar(&f.category, "category", "", "Category id")
	cmd.Flags().BoolVar(&f.done, "done", false, "Mark completed")
	cmd.Flags().BoolVar(&f.undone, "undone", false, "Mark not completed")
}

// patch builds a TaskPatch from the flags the user actually set.
func (f *taskFlags) patch(cmd *cobra.Command) (model.TaskPatch, error) {
	var p model.TaskPatch
	changed := cmd.Flags().Changed
	if changed("title") {
		v := f.title
		p.Title = &v
	}
	if changed("description") {
		v := f.description
		p.Description = &v
	}
	if changed("due") {
		v := strings.TrimSpace(f.due)
		p.DueDate = &v
	}
	if changed("priority") {
		pr, err := statusutil.NormalizePriority(f.priority)
		if err != nil {
			return p, err
		}
		p.Priority = &pr
	}
	if changed("status") {
		st, err := statusutil.NormalizeStatus(f.status)
		if err != nil {
			return p, err
		}
		p.Status = &st
	}
	if changed("category") {
		v := strings.TrimSpace(f.category)
		p.CategoryID = &v
	}
	if f.done && f.undone {
		return p, errors.New("--done and --undone are mutually exclusive")
	}
	if f.done || f.undone {
		v := f.done
		p.IsCompleted = &v
	}
	if p.IsEmpty() {
		return p, errors.New("nothing to change; pass at least one field flag")
	}
	return p, nil
}

func newTasksCreateCmd(app *App) *cobra.Command {
	var f taskFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			in := model.TaskInput{
				Title:       f.title,
				Description: f.description,
				CategoryID:  strings.TrimSpace(f.category),
				DueDate:     strings.TrimSpace(f.due),
				IsCompleted: f.done,
			}
			if strings.TrimSpace(f.priority) != "" {
				pr, err := statusutil.NormalizePriority(f.priority)
				if err != nil {
					return writeErr(cmd, err)
				}
				in.Priority = pr
			}
			if strings.TrimSpace(f.status) != "" {
				st, err := statusutil.NormalizeStatus(f.status)
				if err != nil {
					return writeErr(cmd, err)
				}
				in.Status = st
			}

			s, err := openSession(cmd.Context(), app, false)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			t := s.ctrl.CreateTask(cmd.Context(), in)
			if t == nil {
				return writeErr(cmd, s.notes.err("Failed to create task"))
			}
			return writeOut(cmd, app, format.Task(*t))
		},
	}
	f.register(cmd, true)
	return cmd
}

func newTasksUpdateCmd(app *App) *cobra.Command {
	var f taskFlags

	cmd := &cobra.Command{
		Use:   "update <task-id>",
		Short: "Update fields of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := f.patch(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}

			s, err := openSession(cmd.Context(), app, false)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			t := s.ctrl.UpdateTask(cmd.Context(), strings.TrimSpace(args[0]), p)
			if t == nil {
				return writeErr(cmd, s.notes.err("Failed to update task"))
			}
			return writeOut(cmd, app, format.Task(*t))
		},
	}
	f.register(cmd, true)
	return cmd
}

func newTasksDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), app, false)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			id := strings.TrimSpace(args[0])
			if !s.ctrl.DeleteTask(cmd.Context(), id) {
				return writeErr(cmd, s.notes.err("Failed to delete task"))
			}
			return writeOut(cmd, app, map[string]any{"id": id, "deleted": true})
		},
	}
}

func newTasksBulkUpdateCmd(app *App) *cobra.Command {
	var f taskFlags

	cmd := &cobra.Command{
		Use:   "bulk-update <task-id>...",
		Short: "Apply the same change to several tasks (all or nothing)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := f.patch(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			ids := cleanIDs(args)
			updates := make([]model.TaskUpdate, 0, len(ids))
			for _, id := range ids {
				updates = append(updates, model.TaskUpdate{ID: id, Changes: p})
			}

			s, err := openSession(cmd.Context(), app, false)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			if err := s.ctrl.BulkUpdate(cmd.Context(), updates); err != nil {
				return writeErr(cmd, bulkErr(err))
			}
			return writeOutMeta(cmd, app, format.Tasks(pick(s, ids)), map[string]any{"message": s.notes.last()})
		},
	}
	f.register(cmd, false)
	return cmd
}

func newTasksBulkDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "bulk-delete <task-id>...",
		Short: "Delete several tasks (all or nothing)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), app, false)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			ids := cleanIDs(args)
			if err := s.ctrl.BulkDelete(cmd.Context(), ids); err != nil {
				return writeErr(cmd, bulkErr(err))
			}
			return writeOutMeta(cmd, app, map[string]any{"deleted": ids}, map[string]any{"message": s.notes.last()})
		},
	}
}

func newTasksBulkCompleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "bulk-complete <task-id>...",
		Short: "Mark several tasks done and completed",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), app, false)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			ids := cleanIDs(args)
			if err := s.ctrl.BulkComplete(cmd.Context(), ids); err != nil {
				return writeErr(cmd, bulkErr(err))
			}
			return writeOutMeta(cmd, app, format.Tasks(pick(s, ids)), map[string]any{"message": s.notes.last()})
		},
	}
}

func cleanIDs(args []string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}

// pick returns the current records for ids, in the given order, skipping unknown ids.
func pick(s *session, ids []string) []model.Task {
	out := make([]model.Task, 0, len(ids))
	for _, id := range ids {
		if t, ok := s.ctrl.Store().Get(id); ok {
			out = append(out, t)
		}
	}
	return out
}

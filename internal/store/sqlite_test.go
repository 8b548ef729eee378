package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"taskdeck/internal/model"
	"taskdeck/internal/remote"
)

func openTestStore(t *testing.T, dir string) *Store {
	t.Helper()
	s, err := Open(context.Background(), dir, Options{Logger: zerolog.Nop()})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_TaskLifecycle(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, t.TempDir())

	a, err := s.CreateTask(ctx, model.TaskInput{Title: "Buy milk", CategoryID: "shopping"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	b, err := s.CreateTask(ctx, model.TaskInput{Title: "Call dentist", Priority: model.PriorityHigh})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if a.Priority != model.PriorityNormal || a.Status != model.StatusTodo {
		t.Fatalf("defaults: %+v", a)
	}

	title := "Buy oat milk"
	got, err := s.UpdateTask(ctx, a.ID, model.TaskPatch{Title: &title})
	if err != nil || got == nil {
		t.Fatalf("update: %v %+v", err, got)
	}
	if got.Title != title || !got.CreatedAt.Equal(a.CreatedAt) {
		t.Fatalf("updated: %+v", got)
	}

	tasks, err := s.GetTasks(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(tasks) != 2 || tasks[0].ID != a.ID || tasks[1].ID != b.ID {
		t.Fatalf("order: %+v", tasks)
	}

	ok, err := s.DeleteTask(ctx, a.ID)
	if err != nil || !ok {
		t.Fatalf("delete: ok=%v err=%v", ok, err)
	}
	ok, err = s.DeleteTask(ctx, a.ID)
	if err != nil || ok {
		t.Fatalf("second delete: ok=%v err=%v", ok, err)
	}
}

func TestStore_MissingTaskIsNil(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, t.TempDir())

	title := "x"
	got, err := s.UpdateTask(ctx, "task-nope", model.TaskPatch{Title: &title})
	if err != nil || got != nil {
		t.Fatalf("update missing: %+v %v", got, err)
	}
	if got, err := s.ToggleSubtask(ctx, "task-nope", "sub-1"); err != nil || got != nil {
		t.Fatalf("toggle missing: %+v %v", got, err)
	}
}

func TestStore_ValidationErrors(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, t.TempDir())

	_, err := s.CreateTask(ctx, model.TaskInput{Title: ""})
	var ve remote.ValidationError
	if !errors.As(err, &ve) || ve.Message != "Task title is required" {
		t.Fatalf("expected validation error, got %v", err)
	}
	_, err = s.CreateCategory(ctx, model.CategoryInput{Name: "Bad", Color: "blue", Icon: "x"})
	if !remote.IsValidation(err) {
		t.Fatalf("expected validation error for color, got %v", err)
	}
}

func TestStore_BulkUpdateSkipsUnknownIDs(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, t.TempDir())

	a, _ := s.CreateTask(ctx, model.TaskInput{Title: "A"})
	done := model.StatusDone
	out, err := s.BulkUpdateTasks(ctx, []model.TaskUpdate{
		{ID: a.ID, Changes: model.TaskPatch{Status: &done}},
		{ID: "task-ghost", Changes: model.TaskPatch{Status: &done}},
	})
	if err != nil {
		t.Fatalf("bulk: %v", err)
	}
	if len(out) != 1 || out[0].Status != model.StatusDone {
		t.Fatalf("bulk result: %+v", out)
	}

	bad := model.Status("later")
	if _, err := s.BulkUpdateTasks(ctx, []model.TaskUpdate{{ID: a.ID, Changes: model.TaskPatch{Status: &bad}}}); !remote.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestStore_Subtasks(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, t.TempDir())

	task, _ := s.CreateTask(ctx, model.TaskInput{Title: "Pack"})
	got, err := s.AddSubtask(ctx, task.ID, "Passport")
	if err != nil || got == nil || len(got.Subtasks) != 1 {
		t.Fatalf("add: %+v %v", got, err)
	}
	subID := got.Subtasks[0].ID

	if got, err = s.ToggleSubtask(ctx, task.ID, subID); err != nil || !got.Subtasks[0].IsCompleted {
		t.Fatalf("toggle: %+v %v", got, err)
	}
	if got, err = s.UpdateSubtask(ctx, task.ID, subID, "Passport + visa"); err != nil || got.Subtasks[0].Title != "Passport + visa" {
		t.Fatalf("rename: %+v %v", got, err)
	}
	if _, err = s.DeleteSubtask(ctx, task.ID, "sub-ghost"); !remote.IsNotFound(err) {
		t.Fatalf("delete unknown subtask: %v", err)
	}
	if got, err = s.DeleteSubtask(ctx, task.ID, subID); err != nil || len(got.Subtasks) != 0 {
		t.Fatalf("delete: %+v %v", got, err)
	}
}

func TestStore_CategoriesSeededOnce(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := openTestStore(t, dir)

	cats, err := s.GetCategories(ctx)
	if err != nil || len(cats) != 4 || cats[0].ID != "inbox" {
		t.Fatalf("seeded: %+v %v", cats, err)
	}
	if ok, err := s.DeleteCategory(ctx, "work"); err != nil || !ok {
		t.Fatalf("delete: %v %v", ok, err)
	}
	_ = s.Close()

	reopened := openTestStore(t, dir)
	cats, _ = reopened.GetCategories(ctx)
	if len(cats) != 3 {
		t.Fatalf("defaults re-seeded after delete: %+v", cats)
	}

	name := "Home"
	got, err := reopened.UpdateCategory(ctx, "personal", model.CategoryPatch{Name: &name})
	if err != nil || got == nil || got.Name != "Home" {
		t.Fatalf("update: %+v %v", got, err)
	}
	if got, err := reopened.UpdateCategory(ctx, "nope", model.CategoryPatch{Name: &name}); err != nil || got != nil {
		t.Fatalf("update missing: %+v %v", got, err)
	}
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := openTestStore(t, dir)
	created, _ := s.CreateTask(ctx, model.TaskInput{Title: "Durable", DueDate: "2024-07-01"})
	_ = s.Close()

	reopened := openTestStore(t, dir)
	tasks, err := reopened.GetTasks(ctx)
	if err != nil || len(tasks) != 1 || tasks[0].ID != created.ID || tasks[0].DueDate != "2024-07-01" {
		t.Fatalf("reopen: %+v %v", tasks, err)
	}
}

func TestStore_Reminders(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, t.TempDir())
	task, _ := s.CreateTask(ctx, model.TaskInput{Title: "Dentist"})

	at := time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)
	late, err := s.CreateReminder(ctx, model.ReminderInput{TaskID: task.ID, ReminderTime: at.Add(time.Hour), ReminderType: model.Reminder1Hour})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	early, err := s.CreateReminder(ctx, model.ReminderInput{TaskID: task.ID, ReminderTime: at, ReminderType: model.Reminder10Min})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.CreateReminder(ctx, model.ReminderInput{TaskID: "task-ghost", ReminderTime: at, ReminderType: model.Reminder1Day}); !remote.IsNotFound(err) {
		t.Fatalf("reminder for missing task: %v", err)
	}

	list, err := s.ListReminders(ctx)
	if err != nil || len(list) != 2 || list[0].ID != early.ID || list[1].ID != late.ID {
		t.Fatalf("list: %+v %v", list, err)
	}

	if err := s.MarkReminderSent(ctx, early.ID, at); err != nil {
		t.Fatalf("mark: %v", err)
	}
	list, _ = s.ListReminders(ctx)
	if list[0].SentAt == nil || !list[0].SentAt.Equal(at) {
		t.Fatalf("sentAt: %+v", list[0])
	}
	if err := s.MarkReminderSent(ctx, "rem-ghost", at); !remote.IsNotFound(err) {
		t.Fatalf("mark missing: %v", err)
	}
	if ok, err := s.DeleteReminder(ctx, late.ID); err != nil || !ok {
		t.Fatalf("delete: %v %v", ok, err)
	}
}

func TestDiscoverDir(t *testing.T) {
	root := t.TempDir()
	s := &Store{Dir: root + "/" + dirName}
	if err := s.Ensure(); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	nested := root + "/a/b"
	if err := (&Store{Dir: nested}).Ensure(); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	got, ok := DiscoverDir(nested)
	if !ok || got != s.Dir {
		t.Fatalf("DiscoverDir: got %q ok=%v want %q", got, ok, s.Dir)
	}
}

// Package remotetest provides a scriptable in-memory remote.Backend for tests.
package remotetest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"taskdeck/internal/model"
	"taskdeck/internal/remote"
	"taskdeck/internal/validate"
)

// Fake is an in-memory task service. Hooks let a test reject, delay or replace
// individual calls; a nil hook means "behave like a real service".
type Fake struct {
	mu         sync.Mutex
	tasks      []model.Task
	categories []model.Category
	reminders  []model.Reminder
	seq        int
	calls      map[string]int

	Now func() time.Time

	// Before runs at the start of every call (op is the method name, id the
	// primary id or ""). A non-nil error rejects the call. It may block.
	Before func(op, id string) error

	UpdateFunc     func(id string, patch model.TaskPatch) (*model.Task, error)
	BulkUpdateFunc func(updates []model.TaskUpdate) ([]model.Task, error)
	GetTasksFunc   func() ([]model.Task, error)
}

var _ remote.Backend = (*Fake)(nil)

func New(tasks ...model.Task) *Fake {
	f := &Fake{calls: map[string]int{}}
	for _, t := range tasks {
		f.tasks = append(f.tasks, t.Clone())
	}
	return f
}

// RejectWith returns a Before hook that fails op (for any id, or only for the given ids).
func RejectWith(op string, err error, ids ...string) func(string, string) error {
	return func(gotOp, id string) error {
		if gotOp != op {
			return nil
		}
		if len(ids) == 0 {
			return err
		}
		for _, want := range ids {
			if want == id {
				return err
			}
		}
		return nil
	}
}

func (f *Fake) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

// Tasks returns the service-side records.
func (f *Fake) Tasks() []model.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Task, 0, len(f.tasks))
	for _, t := range f.tasks {
		out = append(out, t.Clone())
	}
	return out
}

func (f *Fake) SetCategories(cats ...model.Category) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.categories = append([]model.Category(nil), cats...)
}

func (f *Fake) Close() error { return nil }

func (f *Fake) enter(op, id string) error {
	f.mu.Lock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[op]++
	before := f.Before
	f.mu.Unlock()
	if before != nil {
		return before(op, id)
	}
	return nil
}

func (f *Fake) now() time.Time {
	if f.Now != nil {
		return f.Now()
	}
	return time.Now().UTC()
}

func (f *Fake) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq)
}

func (f *Fake) indexOf(id string) int {
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (f *Fake) GetTasks(ctx context.Context) ([]model.Task, error) {
	if err := f.enter("GetTasks", ""); err != nil {
		return nil, err
	}
	if f.GetTasksFunc != nil {
		return f.GetTasksFunc()
	}
	return f.Tasks(), nil
}

func (f *Fake) CreateTask(ctx context.Context, in model.TaskInput) (model.Task, error) {
	if err := f.enter("CreateTask", ""); err != nil {
		return model.Task{}, err
	}
	if err := validate.TaskInput(in); err != nil {
		return model.Task{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	t := in.NewTask(f.nextID("task"), f.now())
	f.tasks = append(f.tasks, t)
	return t.Clone(), nil
}

func (f *Fake) UpdateTask(ctx context.Context, id string, patch model.TaskPatch) (*model.Task, error) {
	if err := f.enter("UpdateTask", id); err != nil {
		return nil, err
	}
	if f.UpdateFunc != nil {
		return f.UpdateFunc(id, patch)
	}
	if err := validate.TaskPatch(patch); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.indexOf(id)
	if i < 0 {
		return nil, nil
	}
	updated := patch.Apply(f.tasks[i])
	updated.UpdatedAt = f.now()
	f.tasks[i] = updated
	out := updated.Clone()
	return &out, nil
}

func (f *Fake) DeleteTask(ctx context.Context, id string) (bool, error) {
	if err := f.enter("DeleteTask", id); err != nil {
		return false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.indexOf(id)
	if i < 0 {
		return false, nil
	}
	f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
	return true, nil
}

func (f *Fake) BulkUpdateTasks(ctx context.Context, updates []model.TaskUpdate) ([]model.Task, error) {
	if err := f.enter("BulkUpdateTasks", ""); err != nil {
		return nil, err
	}
	if f.BulkUpdateFunc != nil {
		return f.BulkUpdateFunc(updates)
	}
	for _, u := range updates {
		if err := validate.TaskPatch(u.Changes); err != nil {
			return nil, err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Task
	for _, u := range updates {
		i := f.indexOf(u.ID)
		if i < 0 {
			continue
		}
		updated := u.Changes.Apply(f.tasks[i])
		updated.UpdatedAt = f.now()
		f.tasks[i] = updated
		out = append(out, updated.Clone())
	}
	return out, nil
}

func (f *Fake) editTask(op, taskID string, edit func(t model.Task) (model.Task, error)) (*model.Task, error) {
	if err := f.enter(op, taskID); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.indexOf(taskID)
	if i < 0 {
		return nil, nil
	}
	updated, err := edit(f.tasks[i])
	if err != nil {
		return nil, err
	}
	updated.UpdatedAt = f.now()
	f.tasks[i] = updated
	out := updated.Clone()
	return &out, nil
}

func (f *Fake) AddSubtask(ctx context.Context, taskID, title string) (*model.Task, error) {
	if err := validate.SubtaskTitle(title); err != nil {
		return nil, err
	}
	return f.editTask("AddSubtask", taskID, func(t model.Task) (model.Task, error) {
		return t.WithSubtask(model.Subtask{ID: f.nextID("sub"), Title: title}), nil
	})
}

func (f *Fake) UpdateSubtask(ctx context.Context, taskID, subtaskID, title string) (*model.Task, error) {
	if err := validate.SubtaskTitle(title); err != nil {
		return nil, err
	}
	return f.editTask("UpdateSubtask", taskID, func(t model.Task) (model.Task, error) {
		out, ok := t.WithSubtaskTitle(subtaskID, title)
		if !ok {
			return t, remote.NotFound("subtask", subtaskID)
		}
		return out, nil
	})
}

func (f *Fake) ToggleSubtask(ctx context.Context, taskID, subtaskID string) (*model.Task, error) {
	return f.editTask("ToggleSubtask", taskID, func(t model.Task) (model.Task, error) {
		out, ok := t.WithSubtaskToggled(subtaskID)
		if !ok {
			return t, remote.NotFound("subtask", subtaskID)
		}
		return out, nil
	})
}

func (f *Fake) DeleteSubtask(ctx context.Context, taskID, subtaskID string) (*model.Task, error) {
	return f.editTask("DeleteSubtask", taskID, func(t model.Task) (model.Task, error) {
		out, ok := t.WithoutSubtask(subtaskID)
		if !ok {
			return t, remote.NotFound("subtask", subtaskID)
		}
		return out, nil
	})
}

func (f *Fake) GetCategories(ctx context.Context) ([]model.Category, error) {
	if err := f.enter("GetCategories", ""); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Category(nil), f.categories...), nil
}

func (f *Fake) CreateCategory(ctx context.Context, in model.CategoryInput) (model.Category, error) {
	if err := f.enter("CreateCategory", ""); err != nil {
		return model.Category{}, err
	}
	if err := validate.CategoryInput(in); err != nil {
		return model.Category{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	c := model.Category{ID: f.nextID("cat"), Name: in.Name, Color: in.Color, Icon: in.Icon, CreatedAt: f.now()}
	f.categories = append(f.categories, c)
	return c, nil
}

func (f *Fake) UpdateCategory(ctx context.Context, id string, patch model.CategoryPatch) (*model.Category, error) {
	if err := f.enter("UpdateCategory", id); err != nil {
		return nil, err
	}
	if err := validate.CategoryPatch(patch); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.categories {
		if f.categories[i].ID == id {
			f.categories[i] = patch.Apply(f.categories[i])
			c := f.categories[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (f *Fake) DeleteCategory(ctx context.Context, id string) (bool, error) {
	if err := f.enter("DeleteCategory", id); err != nil {
		return false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.categories {
		if f.categories[i].ID == id {
			f.categories = append(f.categories[:i], f.categories[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *Fake) CreateReminder(ctx context.Context, in model.ReminderInput) (model.Reminder, error) {
	if err := f.enter("CreateReminder", in.TaskID); err != nil {
		return model.Reminder{}, err
	}
	if err := validate.ReminderInput(in); err != nil {
		return model.Reminder{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	r := model.Reminder{ID: f.nextID("rem"), TaskID: in.TaskID, ReminderTime: in.ReminderTime, ReminderType: in.ReminderType, CreatedAt: f.now()}
	f.reminders = append(f.reminders, r)
	return r, nil
}

func (f *Fake) ListReminders(ctx context.Context) ([]model.Reminder, error) {
	if err := f.enter("ListReminders", ""); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]model.Reminder(nil), f.reminders...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ReminderTime.Before(out[j].ReminderTime) })
	return out, nil
}

func (f *Fake) DeleteReminder(ctx context.Context, id string) (bool, error) {
	if err := f.enter("DeleteReminder", id); err != nil {
		return false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.reminders {
		if f.reminders[i].ID == id {
			f.reminders = append(f.reminders[:i], f.reminders[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *Fake) MarkReminderSent(ctx context.Context, id string, sentAt time.Time) error {
	if err := f.enter("MarkReminderSent", id); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.reminders {
		if f.reminders[i].ID == id {
			at := sentAt
			f.reminders[i].SentAt = &at
			return nil
		}
	}
	return remote.NotFound("reminder", id)
}

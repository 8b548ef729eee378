package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"taskdeck/internal/model"
	"taskdeck/internal/remote"
	"taskdeck/internal/validate"
)

const seededKey = "categories_seeded"

// Repository implements remote.Backend on top of gorm.
type Repository struct {
	db  *gorm.DB
	log zerolog.Logger
	now func() time.Time
}

var _ remote.Backend = (*Repository)(nil)

func New(ctx context.Context, db *gorm.DB, log zerolog.Logger) (*Repository, error) {
	r := &Repository{db: db, log: log, now: func() time.Time { return time.Now().UTC() }}
	if err := r.seedCategories(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

// Open is NewDB followed by New.
func Open(ctx context.Context, dsn string, log zerolog.Logger) (*Repository, error) {
	db, err := NewDB(dsn, log)
	if err != nil {
		return nil, err
	}
	return New(ctx, db, log)
}

func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func dbErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if remote.IsValidation(err) || remote.IsNotFound(err) {
		return err
	}
	return remote.TransientError{Op: op, Err: fmt.Errorf("%s: %w", op, err)}
}

func (r *Repository) seedCategories(ctx context.Context) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m metaRow
		err := tx.Where("k = ?", seededKey).First(&m).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		for _, c := range model.DefaultCategories(r.now()) {
			row := categoryRow{ID: c.ID, Name: c.Name, Color: c.Color, Icon: c.Icon, CreatedAt: c.CreatedAt}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return tx.Create(&metaRow{K: seededKey, V: "1"}).Error
	})
	return dbErr("seed categories", err)
}

func (r *Repository) GetTasks(ctx context.Context) ([]model.Task, error) {
	var rows []taskRow
	if err := r.db.WithContext(ctx).Order("seq").Find(&rows).Error; err != nil {
		return nil, dbErr("get tasks", err)
	}
	out := make([]model.Task, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.task())
	}
	return out, nil
}

func (r *Repository) CreateTask(ctx context.Context, in model.TaskInput) (model.Task, error) {
	if err := validate.TaskInput(in); err != nil {
		return model.Task{}, err
	}
	t := in.NewTask("task-"+shortID(), r.now())
	for i := range t.Subtasks {
		if t.Subtasks[i].ID == "" {
			t.Subtasks[i].ID = "sub-" + shortID()
		}
	}
	row := rowFromTask(t)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return model.Task{}, dbErr("create task", err)
	}
	return t, nil
}

func (r *Repository) UpdateTask(ctx context.Context, id string, patch model.TaskPatch) (*model.Task, error) {
	if err := validate.TaskPatch(patch); err != nil {
		return nil, err
	}
	return r.editTask(ctx, "update task", id, func(t model.Task) (model.Task, error) {
		return patch.Apply(t), nil
	})
}

func (r *Repository) DeleteTask(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&taskRow{})
	if res.Error != nil {
		return false, dbErr("delete task", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *Repository) BulkUpdateTasks(ctx context.Context, updates []model.TaskUpdate) ([]model.Task, error) {
	for _, u := range updates {
		if err := validate.TaskPatch(u.Changes); err != nil {
			return nil, err
		}
	}
	var out []model.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		out = nil
		now := r.now()
		for _, u := range updates {
			var row taskRow
			err := tx.Where("id = ?", u.ID).First(&row).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			t := u.Changes.Apply(row.task())
			t.UpdatedAt = now
			next := rowFromTask(t)
			next.Seq = row.Seq
			if err := tx.Save(&next).Error; err != nil {
				return err
			}
			out = append(out, t)
		}
		return nil
	})
	if err != nil {
		return nil, dbErr("bulk update", err)
	}
	if out == nil {
		out = []model.Task{}
	}
	return out, nil
}

func (r *Repository) AddSubtask(ctx context.Context, taskID, title string) (*model.Task, error) {
	if err := validate.SubtaskTitle(title); err != nil {
		return nil, err
	}
	return r.editTask(ctx, "add subtask", taskID, func(t model.Task) (model.Task, error) {
		return t.WithSubtask(model.Subtask{ID: "sub-" + shortID(), Title: title}), nil
	})
}

func (r *Repository) UpdateSubtask(ctx context.Context, taskID, subtaskID, title string) (*model.Task, error) {
	if err := validate.SubtaskTitle(title); err != nil {
		return nil, err
	}
	return r.editTask(ctx, "update subtask", taskID, func(t model.Task) (model.Task, error) {
		out, ok := t.WithSubtaskTitle(subtaskID, title)
		if !ok {
			return t, remote.NotFound("subtask", subtaskID)
		}
		return out, nil
	})
}

func (r *Repository) ToggleSubtask(ctx context.Context, taskID, subtaskID string) (*model.Task, error) {
	return r.editTask(ctx, "toggle subtask", taskID, func(t model.Task) (model.Task, error) {
		out, ok := t.WithSubtaskToggled(subtaskID)
		if !ok {
			return t, remote.NotFound("subtask", subtaskID)
		}
		return out, nil
	})
}

func (r *Repository) DeleteSubtask(ctx context.Context, taskID, subtaskID string) (*model.Task, error) {
	return r.editTask(ctx, "delete subtask", taskID, func(t model.Task) (model.Task, error) {
		out, ok := t.WithoutSubtask(subtaskID)
		if !ok {
			return t, remote.NotFound("subtask", subtaskID)
		}
		return out, nil
	})
}

func (r *Repository) editTask(ctx context.Context, op, id string, edit func(model.Task) (model.Task, error)) (*model.Task, error) {
	var out *model.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row taskRow
		err := tx.Where("id = ?", id).First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		t, err := edit(row.task())
		if err != nil {
			return err
		}
		t.UpdatedAt = r.now()
		next := rowFromTask(t)
		next.Seq = row.Seq
		if err := tx.Save(&next).Error; err != nil {
			return err
		}
		out = &t
		return nil
	})
	if err != nil {
		return nil, dbErr(op, err)
	}
	r.log.Debug().Str("op", op).Str("id", id).Bool("found", out != nil).Msg("gorm edit task")
	return out, nil
}

func (r *Repository) GetCategories(ctx context.Context) ([]model.Category, error) {
	var rows []categoryRow
	if err := r.db.WithContext(ctx).Order("seq").Find(&rows).Error; err != nil {
		return nil, dbErr("get categories", err)
	}
	out := make([]model.Category, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.category())
	}
	return out, nil
}

func (r *Repository) CreateCategory(ctx context.Context, in model.CategoryInput) (model.Category, error) {
	if err := validate.CategoryInput(in); err != nil {
		return model.Category{}, err
	}
	row := categoryRow{ID: "cat-" + shortID(), Name: in.Name, Color: in.Color, Icon: in.Icon, CreatedAt: r.now()}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return model.Category{}, dbErr("create category", err)
	}
	return row.category(), nil
}

func (r *Repository) UpdateCategory(ctx context.Context, id string, patch model.CategoryPatch) (*model.Category, error) {
	if err := validate.CategoryPatch(patch); err != nil {
		return nil, err
	}
	var row categoryRow
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, dbErr("update category", err)
	}
	c := patch.Apply(row.category())
	row.Name, row.Color, row.Icon = c.Name, c.Color, c.Icon
	if err := r.db.WithContext(ctx).Save(&row).Error; err != nil {
		return nil, dbErr("update category", err)
	}
	return &c, nil
}

func (r *Repository) DeleteCategory(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&categoryRow{})
	if res.Error != nil {
		return false, dbErr("delete category", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *Repository) CreateReminder(ctx context.Context, in model.ReminderInput) (model.Reminder, error) {
	if err := validate.ReminderInput(in); err != nil {
		return model.Reminder{}, err
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&taskRow{}).Where("id = ?", in.TaskID).Count(&count).Error; err != nil {
		return model.Reminder{}, dbErr("create reminder", err)
	}
	if count == 0 {
		return model.Reminder{}, remote.NotFound("task", in.TaskID)
	}
	row := reminderRow{
		ID:           "rem-" + uuid.NewString(),
		TaskID:       in.TaskID,
		ReminderTime: in.ReminderTime.UTC(),
		ReminderType: string(in.ReminderType),
		CreatedAt:    r.now(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return model.Reminder{}, dbErr("create reminder", err)
	}
	return row.reminder(), nil
}

func (r *Repository) ListReminders(ctx context.Context) ([]model.Reminder, error) {
	var rows []reminderRow
	if err := r.db.WithContext(ctx).Order("reminder_time, id").Find(&rows).Error; err != nil {
		return nil, dbErr("list reminders", err)
	}
	out := make([]model.Reminder, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.reminder())
	}
	return out, nil
}

func (r *Repository) DeleteReminder(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&reminderRow{})
	if res.Error != nil {
		return false, dbErr("delete reminder", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *Repository) MarkReminderSent(ctx context.Context, id string, sentAt time.Time) error {
	at := sentAt.UTC()
	res := r.db.WithContext(ctx).Model(&reminderRow{}).Where("id = ?", id).Update("sent_at", &at)
	if res.Error != nil {
		return dbErr("mark reminder sent", res.Error)
	}
	if res.RowsAffected == 0 {
		return remote.NotFound("reminder", id)
	}
	return nil
}

// shortID is the first 8 hex chars of a random UUID, matching the length of
// ids the sqlite backend hands out.
func shortID() string {
	return uuid.NewString()[:8]
}

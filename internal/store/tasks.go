package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"taskdeck/internal/model"
	"taskdeck/internal/remote"
	"taskdeck/internal/validate"
)

func (s *Store) GetTasks(ctx context.Context) ([]model.Task, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT json FROM tasks ORDER BY seq`)
	if err != nil {
		return nil, storageErr("get tasks", err)
	}
	defer rows.Close()
	out := []model.Task{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, storageErr("scan task", err)
		}
		var t model.Task
		if err := json.Unmarshal([]byte(raw), &t); err != nil {
			return nil, storageErr("decode task", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("get tasks", err)
	}
	s.log.Debug().Int("count", len(out)).Msg("sqlite get tasks")
	return out, nil
}

func (s *Store) CreateTask(ctx context.Context, in model.TaskInput) (model.Task, error) {
	if err := validate.TaskInput(in); err != nil {
		return model.Task{}, err
	}
	id, err := newRandomID("task")
	if err != nil {
		return model.Task{}, err
	}
	t := in.NewTask(id, s.stamp())
	for i := range t.Subtasks {
		if t.Subtasks[i].ID == "" {
			if t.Subtasks[i].ID, err = newRandomID("sub"); err != nil {
				return model.Task{}, err
			}
		}
	}
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		return insertTask(ctx, tx, t)
	})
	if err != nil {
		return model.Task{}, err
	}
	s.log.Debug().Str("id", t.ID).Msg("sqlite create task")
	return t, nil
}

func (s *Store) UpdateTask(ctx context.Context, id string, patch model.TaskPatch) (*model.Task, error) {
	if err := validate.TaskPatch(patch); err != nil {
		return nil, err
	}
	return s.editTask(ctx, "update task", id, func(t model.Task) (model.Task, error) {
		return patch.Apply(t), nil
	})
}

func (s *Store) DeleteTask(ctx context.Context, id string) (bool, error) {
	var n int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
		if err != nil {
			return storageErr("delete task", err)
		}
		n, _ = res.RowsAffected()
		return nil
	})
	if err != nil {
		return false, err
	}
	s.log.Debug().Str("id", id).Bool("found", n > 0).Msg("sqlite delete task")
	return n > 0, nil
}

// BulkUpdateTasks validates every patch first, then applies all of them in one
// transaction. Unknown ids are skipped.
func (s *Store) BulkUpdateTasks(ctx context.Context, updates []model.TaskUpdate) ([]model.Task, error) {
	for _, u := range updates {
		if err := validate.TaskPatch(u.Changes); err != nil {
			return nil, err
		}
	}
	out := []model.Task{}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		out = out[:0]
		now := s.stamp()
		for _, u := range updates {
			t, ok, err := loadTask(ctx, tx, u.ID)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			t = u.Changes.Apply(t)
			t.UpdatedAt = now
			if err := saveTask(ctx, tx, t); err != nil {
				return err
			}
			out = append(out, t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Debug().Int("requested", len(updates)).Int("updated", len(out)).Msg("sqlite bulk update")
	return cloneTasks(out), nil
}

func (s *Store) AddSubtask(ctx context.Context, taskID, title string) (*model.Task, error) {
	if err := validate.SubtaskTitle(title); err != nil {
		return nil, err
	}
	subID, err := newRandomID("sub")
	if err != nil {
		return nil, err
	}
	return s.editTask(ctx, "add subtask", taskID, func(t model.Task) (model.Task, error) {
		return t.WithSubtask(model.Subtask{ID: subID, Title: title}), nil
	})
}

func (s *Store) UpdateSubtask(ctx context.Context, taskID, subtaskID, title string) (*model.Task, error) {
	if err := validate.SubtaskTitle(title); err != nil {
		return nil, err
	}
	return s.editTask(ctx, "update subtask", taskID, func(t model.Task) (model.Task, error) {
		out, ok := t.WithSubtaskTitle(subtaskID, title)
		if !ok {
			return t, remote.NotFound("subtask", subtaskID)
		}
		return out, nil
	})
}

func (s *Store) ToggleSubtask(ctx context.Context, taskID, subtaskID string) (*model.Task, error) {
	return s.editTask(ctx, "toggle subtask", taskID, func(t model.Task) (model.Task, error) {
		out, ok := t.WithSubtaskToggled(subtaskID)
		if !ok {
			return t, remote.NotFound("subtask", subtaskID)
		}
		return out, nil
	})
}

func (s *Store) DeleteSubtask(ctx context.Context, taskID, subtaskID string) (*model.Task, error) {
	return s.editTask(ctx, "delete subtask", taskID, func(t model.Task) (model.Task, error) {
		out, ok := t.WithoutSubtask(subtaskID)
		if !ok {
			return t, remote.NotFound("subtask", subtaskID)
		}
		return out, nil
	})
}

// editTask loads one task, applies edit and saves it with a fresh updatedAt.
// A missing task yields (nil, nil).
func (s *Store) editTask(ctx context.Context, op, id string, edit func(model.Task) (model.Task, error)) (*model.Task, error) {
	var out *model.Task
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		t, ok, err := loadTask(ctx, tx, id)
		if err != nil || !ok {
			return err
		}
		t, err = edit(t)
		if err != nil {
			return err
		}
		t.UpdatedAt = s.stamp()
		if err := saveTask(ctx, tx, t); err != nil {
			return err
		}
		out = &t
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Debug().Str("op", op).Str("id", id).Bool("found", out != nil).Msg("sqlite edit task")
	return out, nil
}

func loadTask(ctx context.Context, tx *sql.Tx, id string) (model.Task, bool, error) {
	var raw string
	err := tx.QueryRowContext(ctx, `SELECT json FROM tasks WHERE id = ?`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Task{}, false, nil
	}
	if err != nil {
		return model.Task{}, false, storageErr("load task", err)
	}
	var t model.Task
	if err := json.Unmarshal([]byte(raw), &t); err != nil {
		return model.Task{}, false, storageErr("decode task", err)
	}
	return t, true, nil
}

func insertTask(ctx context.Context, tx *sql.Tx, t model.Task) error {
	raw, err := json.Marshal(t)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO tasks(
		id, title, status, priority, category_id, is_completed, due_date, json, updated_at_unixms
	) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Title, string(t.Status), string(t.Priority), t.CategoryID, boolToInt(t.IsCompleted), t.DueDate,
		string(raw), t.UpdatedAt.UnixMilli(),
	)
	return storageErr("insert task", err)
}

func saveTask(ctx context.Context, tx *sql.Tx, t model.Task) error {
	raw, err := json.Marshal(t)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `UPDATE tasks SET
		title = ?, status = ?, priority = ?, category_id = ?, is_completed = ?, due_date = ?, json = ?, updated_at_unixms = ?
	WHERE id = ?`,
		t.Title, string(t.Status), string(t.Priority), t.CategoryID, boolToInt(t.IsCompleted), t.DueDate,
		string(raw), t.UpdatedAt.UnixMilli(), t.ID,
	)
	return storageErr("save task", err)
}

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"taskdeck/internal/model"
	"taskdeck/internal/remote"
	"taskdeck/internal/validate"
)

func (s *Store) CreateReminder(ctx context.Context, in model.ReminderInput) (model.Reminder, error) {
	if err := validate.ReminderInput(in); err != nil {
		return model.Reminder{}, err
	}
	r := model.Reminder{
		ID:           newReminderID(),
		TaskID:       in.TaskID,
		ReminderTime: in.ReminderTime.UTC(),
		ReminderType: in.ReminderType,
		CreatedAt:    s.stamp(),
	}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, ok, err := loadTask(ctx, tx, in.TaskID); err != nil {
			return err
		} else if !ok {
			return remote.NotFound("task", in.TaskID)
		}
		raw, err := json.Marshal(r)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO reminders(id, task_id, reminder_time_unixms, json) VALUES(?, ?, ?, ?)`,
			r.ID, r.TaskID, r.ReminderTime.UnixMilli(), string(raw))
		return storageErr("insert reminder", err)
	})
	if err != nil {
		return model.Reminder{}, err
	}
	return r, nil
}

// ListReminders returns every reminder, earliest first.
func (s *Store) ListReminders(ctx context.Context) ([]model.Reminder, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT json FROM reminders ORDER BY reminder_time_unixms, id`)
	if err != nil {
		return nil, storageErr("list reminders", err)
	}
	defer rows.Close()
	out := []model.Reminder{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, storageErr("scan reminder", err)
		}
		var r model.Reminder
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			return nil, storageErr("decode reminder", err)
		}
		out = append(out, r)
	}
	return out, storageErr("list reminders", rows.Err())
}

func (s *Store) DeleteReminder(ctx context.Context, id string) (bool, error) {
	var n int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM reminders WHERE id = ?`, id)
		if err != nil {
			return storageErr("delete reminder", err)
		}
		n, _ = res.RowsAffected()
		return nil
	})
	return n > 0, err
}

func (s *Store) MarkReminderSent(ctx context.Context, id string, sentAt time.Time) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var raw string
		if err := tx.QueryRowContext(ctx, `SELECT json FROM reminders WHERE id = ?`, id).Scan(&raw); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return remote.NotFound("reminder", id)
			}
			return storageErr("load reminder", err)
		}
		var r model.Reminder
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			return storageErr("decode reminder", err)
		}
		at := sentAt.UTC()
		r.SentAt = &at
		b, err := json.Marshal(r)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `UPDATE reminders SET sent_at_unixms = ?, json = ? WHERE id = ?`, at.UnixMilli(), string(b), id)
		return storageErr("mark reminder sent", err)
	})
}

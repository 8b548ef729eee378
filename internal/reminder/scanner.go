package reminder

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"taskdeck/internal/model"
	"taskdeck/internal/remote"
)

// Source is what the scanner needs from a backend.
type Source interface {
	GetTasks(ctx context.Context) ([]model.Task, error)
	remote.ReminderService
}

type Scanner struct {
	src    Source
	notify Notifier
	log    zerolog.Logger
	now    func() time.Time
}

func NewScanner(src Source, notify Notifier, log zerolog.Logger, now func() time.Time) *Scanner {
	if now == nil {
		now = time.Now
	}
	return &Scanner{src: src, notify: notify, log: log, now: now}
}

// Scan delivers every unsent reminder whose time has passed and marks it sent.
// Reminders of deleted tasks are skipped and left in place. A failed delivery
// leaves the reminder unsent so the next scan retries it.
func (s *Scanner) Scan(ctx context.Context) (int, error) {
	rems, err := s.src.ListReminders(ctx)
	if err != nil {
		return 0, fmt.Errorf("list reminders: %w", err)
	}
	now := s.now()
	var due []model.Reminder
	for _, r := range rems {
		if r.SentAt == nil && !r.ReminderTime.After(now) {
			due = append(due, r)
		}
	}
	if len(due) == 0 {
		return 0, nil
	}

	tasks, err := s.src.GetTasks(ctx)
	if err != nil {
		return 0, fmt.Errorf("get tasks: %w", err)
	}
	byID := make(map[string]model.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}

	sent := 0
	for _, r := range due {
		t, ok := byID[r.TaskID]
		if !ok {
			s.log.Debug().Str("reminder", r.ID).Str("task", r.TaskID).Msg("skipping reminder of missing task")
			continue
		}
		if err := s.notify.Notify(ctx, Due{Reminder: r, Task: t}); err != nil {
			s.log.Warn().Err(err).Str("reminder", r.ID).Msg("reminder delivery failed")
			continue
		}
		if err := s.src.MarkReminderSent(ctx, r.ID, now); err != nil {
			return sent, fmt.Errorf("mark reminder %s sent: %w", r.ID, err)
		}
		sent++
	}
	return sent, nil
}

// TimeFor returns when a reminder of type typ fires for a task due on dueDate
// (YYYY-MM-DD, taken as midnight UTC).
func TimeFor(dueDate string, typ model.ReminderType) (time.Time, error) {
	dueDate = strings.TrimSpace(dueDate)
	if dueDate == "" {
		return time.Time{}, remote.Invalid("dueDate", "Task must have a due date to set reminders")
	}
	due, err := time.Parse("2006-01-02", dueDate)
	if err != nil {
		return time.Time{}, remote.Invalid("dueDate", "Invalid due date (expected YYYY-MM-DD)")
	}
	off, ok := typ.Offset()
	if !ok {
		return time.Time{}, remote.Invalid("reminderType", "Invalid reminder type")
	}
	return due.Add(-off), nil
}

// Package validate holds the field rules every task service backend enforces.
package validate

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"taskdeck/internal/model"
	"taskdeck/internal/remote"
	"taskdeck/internal/statusutil"
)

const (
	MaxTitleLen        = 200
	MaxDescriptionLen  = 2000
	MaxCategoryNameLen = 50
	MaxSubtaskTitleLen = 200
)

var colorRe = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

func TaskInput(in model.TaskInput) error {
	if err := title(in.Title); err != nil {
		return err
	}
	if err := description(in.Description); err != nil {
		return err
	}
	// Empty priority/status fall back to normal/todo in model.TaskInput.NewTask.
	if in.Priority != "" && !statusutil.ValidPriority(in.Priority) {
		return remote.Invalid("priority", "Invalid priority")
	}
	if in.Status != "" && !statusutil.ValidStatus(in.Status) {
		return remote.Invalid("status", "Invalid status")
	}
	if err := dueDate(in.DueDate); err != nil {
		return err
	}
	for _, st := range in.Subtasks {
		if strings.TrimSpace(st.Title) == "" {
			return remote.Invalid("subtasks", "Subtask title is required")
		}
	}
	if err := recurring(in.Recurring); err != nil {
		return err
	}
	return counters(in.PomodoroEstimate, in.PomodoroCompleted, in.EstimatedMinutes)
}

// TaskPatch applies the create rules to the fields present in p.
func TaskPatch(p model.TaskPatch) error {
	if p.Title != nil {
		if err := title(*p.Title); err != nil {
			return err
		}
	}
	if p.Description != nil {
		if err := description(*p.Description); err != nil {
			return err
		}
	}
	if p.Priority != nil && !statusutil.ValidPriority(*p.Priority) {
		return remote.Invalid("priority", "Invalid priority")
	}
	if p.Status != nil && !statusutil.ValidStatus(*p.Status) {
		return remote.Invalid("status", "Invalid status")
	}
	if p.DueDate != nil {
		if err := dueDate(*p.DueDate); err != nil {
			return err
		}
	}
	if p.Subtasks != nil {
		for _, st := range *p.Subtasks {
			if strings.TrimSpace(st.Title) == "" {
				return remote.Invalid("subtasks", "Subtask title is required")
			}
		}
	}
	if err := recurring(p.Recurring); err != nil {
		return err
	}
	return counters(p.PomodoroEstimate, p.PomodoroCompleted, p.EstimatedMinutes)
}

func TaskID(id string) error {
	if strings.TrimSpace(id) == "" {
		return remote.Invalid("id", "Task ID is required")
	}
	return nil
}

func SubtaskTitle(s string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(s))
	switch {
	case n == 0:
		return remote.Invalid("title", "Subtask title is required")
	case utf8.RuneCountInString(s) > MaxSubtaskTitleLen:
		return remote.Invalid("title", "Subtask title is too long")
	}
	return nil
}

func CategoryInput(in model.CategoryInput) error {
	if err := categoryName(in.Name); err != nil {
		return err
	}
	if !colorRe.MatchString(in.Color) {
		return remote.Invalid("color", "Invalid color format")
	}
	if strings.TrimSpace(in.Icon) == "" {
		return remote.Invalid("icon", "Icon is required")
	}
	return nil
}

func CategoryPatch(p model.CategoryPatch) error {
	if p.Name != nil {
		if err := categoryName(*p.Name); err != nil {
			return err
		}
	}
	if p.Color != nil && !colorRe.MatchString(*p.Color) {
		return remote.Invalid("color", "Invalid color format")
	}
	if p.Icon != nil && strings.TrimSpace(*p.Icon) == "" {
		return remote.Invalid("icon", "Icon is required")
	}
	return nil
}

func ReminderInput(in model.ReminderInput) error {
	if err := TaskID(in.TaskID); err != nil {
		return err
	}
	if in.ReminderTime.IsZero() {
		return remote.Invalid("reminderTime", "Reminder time is required")
	}
	if _, ok := in.ReminderType.Offset(); !ok {
		return remote.Invalid("reminderType", "Invalid reminder type")
	}
	return nil
}

func title(s string) error {
	if strings.TrimSpace(s) == "" {
		return remote.Invalid("title", "Task title is required")
	}
	if utf8.RuneCountInString(s) > MaxTitleLen {
		return remote.Invalid("title", "Task title is too long")
	}
	return nil
}

func description(s string) error {
	if utf8.RuneCountInString(s) > MaxDescriptionLen {
		return remote.Invalid("description", "Description is too long")
	}
	return nil
}

func categoryName(s string) error {
	if strings.TrimSpace(s) == "" {
		return remote.Invalid("name", "Category name is required")
	}
	if utf8.RuneCountInString(s) > MaxCategoryNameLen {
		return remote.Invalid("name", "Category name is too long")
	}
	return nil
}

func dueDate(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return remote.Invalid("dueDate", "Invalid due date (expected YYYY-MM-DD)")
	}
	return nil
}

func recurring(r *model.Recurring) error {
	if r == nil {
		return nil
	}
	switch r.Type {
	case model.RecurringDaily, model.RecurringWeekly, model.RecurringCustom:
	default:
		return remote.Invalid("recurring", "Invalid recurring type")
	}
	if r.Interval != nil && *r.Interval < 0 {
		return remote.Invalid("recurring", "Recurring interval must not be negative")
	}
	return dueDate(r.EndDate)
}

func counters(vals ...*int) error {
	for _, v := range vals {
		if v != nil && *v < 0 {
			return remote.Invalid("pomodoro", "Counters must not be negative")
		}
	}
	return nil
}

package repository

import (
	"time"

	"taskdeck/internal/model"
)

type metaRow struct {
	K string `gorm:"primaryKey"`
	V string
}

func (metaRow) TableName() string { return "meta" }

// taskRow keeps insertion order in Seq; ID is the public id.
type taskRow struct {
	Seq               uint   `gorm:"primaryKey;autoIncrement"`
	ID                string `gorm:"uniqueIndex;not null"`
	Title             string `gorm:"not null"`
	Description       string
	Priority          string `gorm:"not null"`
	Status            string `gorm:"index;not null"`
	CategoryID        string `gorm:"index"`
	IsCompleted       bool   `gorm:"default:false"`
	DueDate           string
	Subtasks          []model.Subtask  `gorm:"serializer:json"`
	Recurring         *model.Recurring `gorm:"serializer:json"`
	Attachments       []string         `gorm:"serializer:json"`
	PomodoroEstimate  *int
	PomodoroCompleted *int
	EstimatedMinutes  *int
	CreatedAt         time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime:false"`
}

func (taskRow) TableName() string { return "tasks" }

func rowFromTask(t model.Task) taskRow {
	t = t.Clone()
	return taskRow{
		ID:                t.ID,
		Title:             t.Title,
		Description:       t.Description,
		Priority:          string(t.Priority),
		Status:            string(t.Status),
		CategoryID:        t.CategoryID,
		IsCompleted:       t.IsCompleted,
		DueDate:           t.DueDate,
		Subtasks:          t.Subtasks,
		Recurring:         t.Recurring,
		Attachments:       t.Attachments,
		PomodoroEstimate:  t.PomodoroEstimate,
		PomodoroCompleted: t.PomodoroCompleted,
		EstimatedMinutes:  t.EstimatedMinutes,
		CreatedAt:         t.CreatedAt.UTC(),
		UpdatedAt:         t.UpdatedAt.UTC(),
	}
}

func (r taskRow) task() model.Task {
	t := model.Task{
		ID:                r.ID,
		Title:             r.Title,
		Description:       r.Description,
		Priority:          model.Priority(r.Priority),
		Status:            model.Status(r.Status),
		CategoryID:        r.CategoryID,
		IsCompleted:       r.IsCompleted,
		DueDate:           r.DueDate,
		Subtasks:          r.Subtasks,
		Recurring:         r.Recurring,
		Attachments:       r.Attachments,
		PomodoroEstimate:  r.PomodoroEstimate,
		PomodoroCompleted: r.PomodoroCompleted,
		EstimatedMinutes:  r.EstimatedMinutes,
		CreatedAt:         r.CreatedAt.UTC(),
		UpdatedAt:         r.UpdatedAt.UTC(),
	}
	return t.Clone()
}

type categoryRow struct {
	Seq       uint   `gorm:"primaryKey;autoIncrement"`
	ID        string `gorm:"uniqueIndex;not null"`
	Name      string `gorm:"not null"`
	Color     string
	Icon      string
	CreatedAt time.Time `gorm:"autoCreateTime:false"`
}

func (categoryRow) TableName() string { return "categories" }

func (r categoryRow) category() model.Category {
	return model.Category{ID: r.ID, Name: r.Name, Color: r.Color, Icon: r.Icon, CreatedAt: r.CreatedAt.UTC()}
}

type reminderRow struct {
	ID           string    `gorm:"primaryKey"`
	TaskID       string    `gorm:"index;not null"`
	ReminderTime time.Time `gorm:"index"`
	ReminderType string
	CreatedAt    time.Time `gorm:"autoCreateTime:false"`
	SentAt       *time.Time
}

func (reminderRow) TableName() string { return "reminders" }

func (r reminderRow) reminder() model.Reminder {
	out := model.Reminder{
		ID:           r.ID,
		TaskID:       r.TaskID,
		ReminderTime: r.ReminderTime.UTC(),
		ReminderType: model.ReminderType(r.ReminderType),
		CreatedAt:    r.CreatedAt.UTC(),
	}
	if r.SentAt != nil {
		at := r.SentAt.UTC()
		out.SentAt = &at
	}
	return out
}

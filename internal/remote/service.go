// Package remote defines the contract of the task service the client talks to.
//
// Implementations live elsewhere (internal/store, internal/repository, HTTPClient);
// the mutation controller depends only on Service.
package remote

import (
	"context"
	"time"

	"taskdeck/internal/model"
)

type Service interface {
	TaskService
	CategoryService
}

type TaskService interface {
	GetTasks(ctx context.Context) ([]model.Task, error)
	CreateTask(ctx context.Context, in model.TaskInput) (model.Task, error)

	// UpdateTask returns (nil, nil) when the task does not exist.
	UpdateTask(ctx context.Context, id string, patch model.TaskPatch) (*model.Task, error)

	// DeleteTask returns false when the task does not exist.
	DeleteTask(ctx context.Context, id string) (bool, error)

	// BulkUpdateTasks applies every update it can and returns the updated records.
	// Unknown ids are skipped.
	BulkUpdateTasks(ctx context.Context, updates []model.TaskUpdate) ([]model.Task, error)

	AddSubtask(ctx context.Context, taskID, title string) (*model.Task, error)
	UpdateSubtask(ctx context.Context, taskID, subtaskID, title string) (*model.Task, error)
	ToggleSubtask(ctx context.Context, taskID, subtaskID string) (*model.Task, error)
	DeleteSubtask(ctx context.Context, taskID, subtaskID string) (*model.Task, error)
}

type CategoryService interface {
	GetCategories(ctx context.Context) ([]model.Category, error)
	CreateCategory(ctx context.Context, in model.CategoryInput) (model.Category, error)
	UpdateCategory(ctx context.Context, id string, patch model.CategoryPatch) (*model.Category, error)
	DeleteCategory(ctx context.Context, id string) (bool, error)
}

// ReminderService is optional; backends that store reminders implement it.
type ReminderService interface {
	CreateReminder(ctx context.Context, in model.ReminderInput) (model.Reminder, error)
	ListReminders(ctx context.Context) ([]model.Reminder, error)
	DeleteReminder(ctx context.Context, id string) (bool, error)
	MarkReminderSent(ctx context.Context, id string, sentAt time.Time) error
}

// Backend is what every concrete backend in this repo provides.
type Backend interface {
	Service
	ReminderService
	Close() error
}

package remote

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"taskdeck/internal/model"
)

// ErrSimulated is the cause of every failure injected by Flaky.
var ErrSimulated = errors.New("simulated network error")

// Flaky wraps a backend with artificial latency and random rejections so the
// optimistic paths can be exercised against a local store.
type Flaky struct {
	Backend

	Latency     time.Duration
	FailureRate float64 // 0..1

	mu  sync.Mutex
	rng *rand.Rand
}

func NewFlaky(b Backend, latency time.Duration, failureRate float64, seed int64) *Flaky {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Flaky{
		Backend:     b,
		Latency:     latency,
		FailureRate: failureRate,
		rng:         rand.New(rand.NewSource(seed)),
	}
}

func (f *Flaky) gate(ctx context.Context, op string) error {
	if f.Latency > 0 {
		timer := time.NewTimer(f.Latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return TransientError{Op: op, Err: ctx.Err()}
		case <-timer.C:
		}
	}
	if f.FailureRate <= 0 {
		return nil
	}
	f.mu.Lock()
	roll := f.rng.Float64()
	f.mu.Unlock()
	if roll < f.FailureRate {
		return TransientError{Op: op, Err: ErrSimulated}
	}
	return nil
}

func (f *Flaky) GetTasks(ctx context.Context) ([]model.Task, error) {
	if err := f.gate(ctx, "get tasks"); err != nil {
		return nil, err
	}
	return f.Backend.GetTasks(ctx)
}

func (f *Flaky) CreateTask(ctx context.Context, in model.TaskInput) (model.Task, error) {
	if err := f.gate(ctx, "create task"); err != nil {
		return model.Task{}, err
	}
	return f.Backend.CreateTask(ctx, in)
}

func (f *Flaky) UpdateTask(ctx context.Context, id string, patch model.TaskPatch) (*model.Task, error) {
	if err := f.gate(ctx, "update task"); err != nil {
		return nil, err
	}
	return f.Backend.UpdateTask(ctx, id, patch)
}

func (f *Flaky) DeleteTask(ctx context.Context, id string) (bool, error) {
	if err := f.gate(ctx, "delete task"); err != nil {
		return false, err
	}
	return f.Backend.DeleteTask(ctx, id)
}

func (f *Flaky) BulkUpdateTasks(ctx context.Context, updates []model.TaskUpdate) ([]model.Task, error) {
	if err := f.gate(ctx, "bulk update tasks"); err != nil {
		return nil, err
	}
	return f.Backend.BulkUpdateTasks(ctx, updates)
}

func (f *Flaky) AddSubtask(ctx context.Context, taskID, title string) (*model.Task, error) {
	if err := f.gate(ctx, "add subtask"); err != nil {
		return nil, err
	}
	return f.Backend.AddSubtask(ctx, taskID, title)
}

func (f *Flaky) UpdateSubtask(ctx context.Context, taskID, subtaskID, title string) (*model.Task, error) {
	if err := f.gate(ctx, "update subtask"); err != nil {
		return nil, err
	}
	return f.Backend.UpdateSubtask(ctx, taskID, subtaskID, title)
}

func (f *Flaky) ToggleSubtask(ctx context.Context, taskID, subtaskID string) (*model.Task, error) {
	if err := f.gate(ctx, "toggle subtask"); err != nil {
		return nil, err
	}
	return f.Backend.ToggleSubtask(ctx, taskID, subtaskID)
}

func (f *Flaky) DeleteSubtask(ctx context.Context, taskID, subtaskID string) (*model.Task, error) {
	if err := f.gate(ctx, "delete subtask"); err != nil {
		return nil, err
	}
	return f.Backend.DeleteSubtask(ctx, taskID, subtaskID)
}

func (f *Flaky) GetCategories(ctx context.Context) ([]model.Category, error) {
	if err := f.gate(ctx, "get categories"); err != nil {
		return nil, err
	}
	return f.Backend.GetCategories(ctx)
}

func (f *Flaky) CreateCategory(ctx context.Context, in model.CategoryInput) (model.Category, error) {
	if err := f.gate(ctx, "create category"); err != nil {
		return model.Category{}, err
	}
	return f.Backend.CreateCategory(ctx, in)
}

func (f *Flaky) UpdateCategory(ctx context.Context, id string, patch model.CategoryPatch) (*model.Category, error) {
	if err := f.gate(ctx, "update category"); err != nil {
		return nil, err
	}
	return f.Backend.UpdateCategory(ctx, id, patch)
}

func (f *Flaky) DeleteCategory(ctx context.Context, id string) (bool, error) {
	if err := f.gate(ctx, "delete category"); err != nil {
		return false, err
	}
	return f.Backend.DeleteCategory(ctx, id)
}

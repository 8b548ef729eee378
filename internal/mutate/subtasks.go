package mutate

import (
	"context"

	"github.com/google/uuid"

	"taskdeck/internal/model"
	"taskdeck/internal/remote"
)

// PendingPrefix marks a subtask id assigned locally before the service answers.
const PendingPrefix = "pending-"

func (c *Controller) AddSubtask(ctx context.Context, taskID, title string) *model.Task {
	local := func(t model.Task) (model.Task, bool) {
		return t.WithSubtask(model.Subtask{ID: PendingPrefix + uuid.NewString(), Title: title}), true
	}
	return c.editSubtasks(ctx, taskID, local, func(ctx context.Context) (*model.Task, error) {
		return c.svc.AddSubtask(ctx, taskID, title)
	}, "Failed to add subtask")
}

func (c *Controller) UpdateSubtask(ctx context.Context, taskID, subtaskID, title string) *model.Task {
	local := func(t model.Task) (model.Task, bool) { return t.WithSubtaskTitle(subtaskID, title) }
	return c.editSubtasks(ctx, taskID, local, func(ctx context.Context) (*model.Task, error) {
		return c.svc.UpdateSubtask(ctx, taskID, subtaskID, title)
	}, "Failed to update subtask")
}

func (c *Controller) ToggleSubtask(ctx context.Context, taskID, subtaskID string) *model.Task {
	local := func(t model.Task) (model.Task, bool) { return t.WithSubtaskToggled(subtaskID) }
	return c.editSubtasks(ctx, taskID, local, func(ctx context.Context) (*model.Task, error) {
		return c.svc.ToggleSubtask(ctx, taskID, subtaskID)
	}, "Failed to update subtask")
}

func (c *Controller) DeleteSubtask(ctx context.Context, taskID, subtaskID string) *model.Task {
	local := func(t model.Task) (model.Task, bool) { return t.WithoutSubtask(subtaskID) }
	return c.editSubtasks(ctx, taskID, local, func(ctx context.Context) (*model.Task, error) {
		return c.svc.DeleteSubtask(ctx, taskID, subtaskID)
	}, "Failed to delete subtask")
}

// editSubtasks is the single-task update path for subtask edits: the local
// edit is skipped when the task or subtask is unknown, the call is issued
// regardless, and the task is reconciled to the returned record.
func (c *Controller) editSubtasks(
	ctx context.Context,
	taskID string,
	local func(model.Task) (model.Task, bool),
	call func(context.Context) (*model.Task, error),
	fallback string,
) *model.Task {
	o := c.begin(KindSubtask, taskID)
	defer c.end(o)

	c.applyMu.Lock()
	snap := c.store.SnapshotTask(taskID)
	if cur, ok := c.store.Get(taskID); ok {
		if next, changed := local(cur); changed {
			c.store.Put(next)
		}
	}
	c.applyMu.Unlock()
	c.setPhase(o, PhaseApplying)

	updated, err := call(detach(ctx))
	if err == nil && updated == nil {
		err = remote.NotFound("task", taskID)
	}
	if err != nil {
		c.rollbackTask(o, snap, err, fallback)
		return nil
	}

	c.setPhase(o, PhaseReconciling)
	c.applyMu.Lock()
	c.store.Put(*updated)
	c.applyMu.Unlock()
	return updated
}

package mutate

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"taskdeck/internal/model"
	"taskdeck/internal/remote"
)

// BulkDelete removes ids locally and issues one remote delete per id
// concurrently. It waits for every call; if any is rejected the whole list is
// restored and a *BulkError is returned.
func (c *Controller) BulkDelete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	o := c.begin(KindBulkDelete, ids...)
	defer c.end(o)

	c.applyMu.Lock()
	snap := c.store.Snapshot()
	c.store.RemoveMany(ids)
	c.applyMu.Unlock()
	c.setPhase(o, PhaseApplying)

	rctx := detach(ctx)
	errs := make([]error, len(ids))
	var g errgroup.Group
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			ok, err := c.svc.DeleteTask(rctx, id)
			if err == nil && !ok {
				err = remote.NotFound("task", id)
			}
			errs[i] = err
			return err
		})
	}
	if err := g.Wait(); err != nil {
		berr := &BulkError{Op: "bulk delete", Total: len(ids)}
		for i, e := range errs {
			if e != nil {
				berr.Failures = append(berr.Failures, Failure{ID: ids[i], Err: e})
			}
		}
		c.rollbackAll(o, snap, err)
		c.notify.Error(berr.Message())
		return berr
	}

	c.setPhase(o, PhaseReconciling)
	c.sel.Remove(ids...)
	c.notify.Success(plural("Deleted", len(ids)))
	return nil
}

// BulkUpdate applies every patch locally, sends the batch to the service and,
// on success, discards the optimistic values by refetching the full list. A
// rejected batch or a failed refetch restores the list and returns a *BulkError.
// When updates names the same id twice the later patch wins locally.
func (c *Controller) BulkUpdate(ctx context.Context, updates []model.TaskUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	ids := make([]string, 0, len(updates))
	patches := make(map[string]model.TaskPatch, len(updates))
	for _, u := range updates {
		ids = append(ids, u.ID)
		patches[u.ID] = u.Changes
	}
	o := c.begin(KindBulkUpdate, ids...)
	defer c.end(o)

	c.applyMu.Lock()
	snap := c.store.Snapshot()
	c.store.ApplyPatches(patches)
	c.applyMu.Unlock()
	c.setPhase(o, PhaseApplying)

	rctx := detach(ctx)
	fresh, err := c.refetchAfter(rctx, updates)
	if err != nil {
		berr := &BulkError{Op: "bulk update", Total: len(ids)}
		for _, id := range ids {
			berr.Failures = append(berr.Failures, Failure{ID: id, Err: err})
		}
		c.rollbackAll(o, snap, err)
		c.notify.Error(berr.Message())
		return berr
	}

	c.setPhase(o, PhaseReconciling)
	c.applyMu.Lock()
	c.store.ReplaceAll(fresh)
	c.applyMu.Unlock()
	c.sel.Retain(c.store.IDs())
	c.notify.Success(plural("Updated", len(updates)))
	return nil
}

func (c *Controller) refetchAfter(ctx context.Context, updates []model.TaskUpdate) ([]model.Task, error) {
	if _, err := c.svc.BulkUpdateTasks(ctx, updates); err != nil {
		return nil, err
	}
	fresh, err := c.svc.GetTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("refetch after bulk update: %w", err)
	}
	return fresh, nil
}

// BulkComplete marks every id done and completed in one bulk update.
func (c *Controller) BulkComplete(ctx context.Context, ids []string) error {
	done := true
	status := model.StatusDone
	updates := make([]model.TaskUpdate, 0, len(ids))
	for _, id := range ids {
		updates = append(updates, model.TaskUpdate{
			ID:      id,
			Changes: model.TaskPatch{IsCompleted: &done, Status: &status},
		})
	}
	return c.BulkUpdate(ctx, updates)
}

// BulkDeleteSelected deletes whatever is currently selected.
func (c *Controller) BulkDeleteSelected(ctx context.Context) error {
	return c.BulkDelete(ctx, c.sel.IDs())
}

func (c *Controller) BulkCompleteSelected(ctx context.Context) error {
	return c.BulkComplete(ctx, c.sel.IDs())
}

func plural(verb string, n int) string {
	if n == 1 {
		return verb + " 1 task"
	}
	return fmt.Sprintf("%s %d tasks", verb, n)
}

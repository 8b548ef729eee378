// Package mutate applies task mutations optimistically to the canonical store
// and reconciles or rolls them back once the remote service answers.
//
// Every operation follows the same path: capture a snapshot and apply the change
// locally under the apply lock, call the service with the lock released, then
// take the lock again to either reconcile to the service's answer or restore the
// snapshot. Several operations may be in flight at once. Two operations on the
// same id are not serialized against each other.
package mutate

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"taskdeck/internal/canonical"
	"taskdeck/internal/model"
	"taskdeck/internal/remote"
	"taskdeck/internal/selection"
)

type Options struct {
	Selection *selection.Set
	Notifier  Notifier
	Logger    zerolog.Logger
	Now       func() time.Time
}

type Controller struct {
	store  *canonical.Store
	svc    remote.Service
	sel    *selection.Set
	notify Notifier
	log    zerolog.Logger
	now    func() time.Time

	// applyMu makes snapshot+apply and reconcile/rollback atomic with respect
	// to other mutations. It is never held across a service call.
	applyMu sync.Mutex

	mu         sync.Mutex
	ops        map[string]*Operation
	gen        uint64 // bumped by every begin
	categories []model.Category
}

func New(store *canonical.Store, svc remote.Service, opts Options) *Controller {
	c := &Controller{
		store:  store,
		svc:    svc,
		sel:    opts.Selection,
		notify: opts.Notifier,
		log:    opts.Logger,
		now:    opts.Now,
		ops:    map[string]*Operation{},
	}
	if c.sel == nil {
		c.sel = selection.New()
	}
	if c.notify == nil {
		c.notify = nopNotifier{}
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

func (c *Controller) Store() *canonical.Store    { return c.store }
func (c *Controller) Selection() *selection.Set { return c.sel }

// detach keeps the caller's values but drops its cancellation: once a remote
// call is issued it runs to completion.
func detach(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return context.WithoutCancel(ctx)
}

// Load fetches tasks and categories together and replaces local state.
func (c *Controller) Load(ctx context.Context) error {
	tasks, cats, err := c.fetch(ctx)
	if err != nil {
		return err
	}
	c.applyMu.Lock()
	c.replace(tasks, cats)
	c.applyMu.Unlock()
	c.sel.Retain(c.store.IDs())
	return nil
}

// Resync reloads from the service unless a mutation is in flight, in which
// case it does nothing and reports false. A fetch that overlaps the start of
// a mutation is discarded: it predates that mutation's outcome.
func (c *Controller) Resync(ctx context.Context) (bool, error) {
	if c.Busy() {
		c.log.Debug().Msg("resync skipped: mutation in flight")
		return false, nil
	}
	gen := c.generation()
	tasks, cats, err := c.fetch(ctx)
	if err != nil {
		return false, err
	}

	c.applyMu.Lock()
	if c.generation() != gen || c.Busy() {
		c.applyMu.Unlock()
		c.log.Debug().Msg("resync discarded: mutation started during fetch")
		return false, nil
	}
	c.replace(tasks, cats)
	c.applyMu.Unlock()
	c.sel.Retain(c.store.IDs())
	return true, nil
}

func (c *Controller) fetch(ctx context.Context) ([]model.Task, []model.Category, error) {
	var (
		tasks []model.Task
		cats  []model.Category
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tasks, err = c.svc.GetTasks(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		cats, err = c.svc.GetCategories(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		c.log.Warn().Err(err).Msg("load failed")
		c.notify.Error(remote.Message(err, "Failed to load tasks"))
		return nil, nil, err
	}
	return tasks, cats, nil
}

// replace must be called with applyMu held.
func (c *Controller) replace(tasks []model.Task, cats []model.Category) {
	c.store.ReplaceAll(tasks)
	c.setCategories(cats)
	c.log.Debug().Int("tasks", len(tasks)).Int("categories", len(cats)).Msg("loaded")
}

// CreateTask is not optimistic: the service assigns the id, so the task is
// appended only once the service returns it.
func (c *Controller) CreateTask(ctx context.Context, in model.TaskInput) *model.Task {
	o := c.begin(KindCreate)
	defer c.end(o)

	c.setPhase(o, PhaseApplying)
	created, err := c.svc.CreateTask(detach(ctx), in)
	if err != nil {
		c.log.Warn().Err(err).Str("op", o.ID).Msg("create rejected")
		c.notify.Error(remote.Message(err, "Failed to create task"))
		return nil
	}

	c.setPhase(o, PhaseReconciling)
	c.applyMu.Lock()
	c.store.Put(created)
	c.applyMu.Unlock()
	c.notify.Success("Task created")
	return &created
}

// UpdateTask applies patch locally, then reconciles the task to whatever the
// service returns. On rejection the task is restored and the service's message
// is notified; the error itself is not returned.
func (c *Controller) UpdateTask(ctx context.Context, id string, patch model.TaskPatch) *model.Task {
	o := c.begin(KindUpdate, id)
	defer c.end(o)

	c.applyMu.Lock()
	snap := c.store.SnapshotTask(id)
	c.store.ApplyPatch(id, patch)
	c.applyMu.Unlock()
	c.setPhase(o, PhaseApplying)

	updated, err := c.svc.UpdateTask(detach(ctx), id, patch)
	if err == nil && updated == nil {
		err = remote.NotFound("task", id)
	}
	if err != nil {
		c.rollbackTask(o, snap, err, "Failed to update task")
		return nil
	}

	c.setPhase(o, PhaseReconciling)
	c.applyMu.Lock()
	c.store.Put(*updated)
	c.applyMu.Unlock()
	c.notify.Success("Task updated")
	return updated
}

// DeleteTask removes id locally and asks the service to delete it. On
// rejection the whole list as it was before the call is restored.
func (c *Controller) DeleteTask(ctx context.Context, id string) bool {
	o := c.begin(KindDelete, id)
	defer c.end(o)

	c.applyMu.Lock()
	snap := c.store.Snapshot()
	c.store.Remove(id)
	c.applyMu.Unlock()
	c.setPhase(o, PhaseApplying)

	ok, err := c.svc.DeleteTask(detach(ctx), id)
	if err == nil && !ok {
		err = remote.NotFound("task", id)
	}
	if err != nil {
		c.rollbackAll(o, snap, err)
		c.notify.Error(remote.Message(err, "Failed to delete task"))
		return false
	}

	c.setPhase(o, PhaseReconciling)
	c.sel.Remove(id)
	c.notify.Success("Task deleted")
	return true
}

// rollbackTask restores one task and notifies the service's message.
func (c *Controller) rollbackTask(o *Operation, snap canonical.TaskSnapshot, err error, fallback string) {
	c.setPhase(o, PhaseRollingBack)
	c.log.Warn().Err(err).Str("op", o.ID).Str("kind", string(o.Kind)).Str("id", snap.ID).Str("error_kind", remote.Kind(err)).Msg("mutation rejected")
	c.applyMu.Lock()
	c.store.RestoreTask(snap)
	c.applyMu.Unlock()
	c.notify.Error(remote.Message(err, fallback))
}

func (c *Controller) rollbackAll(o *Operation, snap canonical.Snapshot, err error) {
	c.setPhase(o, PhaseRollingBack)
	c.log.Warn().Err(err).Str("op", o.ID).Str("kind", string(o.Kind)).Strs("ids", o.IDs).Str("error_kind", remote.Kind(err)).Msg("mutation rejected")
	c.applyMu.Lock()
	c.store.Restore(snap)
	c.applyMu.Unlock()
}

package mutate

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"taskdeck/internal/canonical"
	"taskdeck/internal/model"
	"taskdeck/internal/remote"
	"taskdeck/internal/remote/remotetest"
	"taskdeck/internal/selection"
	"taskdeck/internal/view"
)

var testNow = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

type recorder struct {
	mu   sync.Mutex
	ok   []string
	errs []string
}

func (r *recorder) Success(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ok = append(r.ok, msg)
}

func (r *recorder) Error(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, msg)
}

func (r *recorder) errors() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.errs...)
}

func (r *recorder) successes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.ok...)
}

// blocker parks every call to op until the test releases it by call index.
type blocker struct {
	op      string
	mu      sync.Mutex
	gates   []chan error
	entered chan int
}

func newBlocker(op string) *blocker {
	return &blocker{op: op, entered: make(chan int, 16)}
}

func (b *blocker) hook(op, id string) error {
	if op != b.op {
		return nil
	}
	g := make(chan error, 1)
	b.mu.Lock()
	b.gates = append(b.gates, g)
	n := len(b.gates) - 1
	b.mu.Unlock()
	b.entered <- n
	return <-g
}

func (b *blocker) release(n int, err error) {
	b.mu.Lock()
	g := b.gates[n]
	b.mu.Unlock()
	g <- err
}

func (b *blocker) wait(t *testing.T) int {
	t.Helper()
	select {
	case n := <-b.entered:
		return n
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for %s", b.op)
		return -1
	}
}

func seedTasks() []model.Task {
	return []model.Task{
		{ID: "1", Title: "Buy milk", Priority: model.PriorityNormal, Status: model.StatusTodo, CreatedAt: testNow, UpdatedAt: testNow},
		{ID: "2", Title: "Call dentist", Priority: model.PriorityHigh, Status: model.StatusInProgress, CreatedAt: testNow, UpdatedAt: testNow},
		{ID: "3", Title: "Write report", Priority: model.PriorityLow, Status: model.StatusDone, CreatedAt: testNow, UpdatedAt: testNow},
	}
}

func newHarness(t *testing.T) (*Controller, *remotetest.Fake, *recorder) {
	t.Helper()
	fake := remotetest.New(seedTasks()...)
	fake.Now = func() time.Time { return testNow.Add(time.Hour) }
	rec := &recorder{}
	c := New(canonical.New(seedTasks()), fake, Options{
		Selection: selection.New(),
		Notifier:  rec,
		Logger:    zerolog.Nop(),
		Now:       func() time.Time { return testNow },
	})
	return c, fake, rec
}

func strPtr(s string) *string { return &s }

func TestUpdateTask_RollbackRestoresExactRecord(t *testing.T) {
	t.Parallel()

	c, fake, rec := newHarness(t)
	fake.Before = remotetest.RejectWith("UpdateTask", remote.Invalid("title", "Task title is too long"))
	before, _ := c.Store().Get("2")

	got := c.UpdateTask(context.Background(), "2", model.TaskPatch{Title: strPtr("changed")})
	if got != nil {
		t.Fatalf("expected nil result on rejection, got %+v", got)
	}
	after, _ := c.Store().Get("2")
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("rollback mismatch:\n before: %+v\n  after: %+v", before, after)
	}
	if errs := rec.errors(); !reflect.DeepEqual(errs, []string{"Task title is too long"}) {
		t.Fatalf("notifications: got %v", errs)
	}
	if c.IsUpdating() {
		t.Fatalf("IsUpdating still true after rejection")
	}
}

func TestUpdateTask_ReconcilesToServiceRecord(t *testing.T) {
	t.Parallel()

	c, fake, rec := newHarness(t)
	server := model.Task{
		ID: "1", Title: "Buy oat milk", Priority: model.PriorityHigh, Status: model.StatusTodo,
		CreatedAt: testNow, UpdatedAt: testNow.Add(time.Minute),
	}
	fake.UpdateFunc = func(id string, patch model.TaskPatch) (*model.Task, error) {
		out := server
		return &out, nil
	}

	got := c.UpdateTask(context.Background(), "1", model.TaskPatch{Title: strPtr("  buy oat milk ")})
	if got == nil {
		t.Fatalf("expected reconciled task")
	}
	stored, _ := c.Store().Get("1")
	if !reflect.DeepEqual(stored, server) {
		t.Fatalf("store should hold the service record:\n got: %+v\nwant: %+v", stored, server)
	}
	if ok := rec.successes(); len(ok) != 1 {
		t.Fatalf("successes: %v", ok)
	}
}

func TestUpdateTask_OptimisticValueVisibleWhileInFlight(t *testing.T) {
	t.Parallel()

	c, fake, _ := newHarness(t)
	b := newBlocker("UpdateTask")
	fake.Before = b.hook

	done := make(chan *model.Task)
	go func() {
		done <- c.UpdateTask(context.Background(), "1", model.TaskPatch{Title: strPtr("optimistic")})
	}()
	b.wait(t)

	if got, _ := c.Store().Get("1"); got.Title != "optimistic" {
		t.Fatalf("optimistic title not applied: %q", got.Title)
	}
	if !c.IsUpdating() {
		t.Fatalf("IsUpdating should be true while the call is in flight")
	}
	ops := c.Operations()
	if len(ops) != 1 || ops[0].Phase != PhaseApplying || ops[0].Kind != KindUpdate {
		t.Fatalf("operations: %+v", ops)
	}

	b.release(0, nil)
	if got := <-done; got == nil || got.Title != "optimistic" {
		t.Fatalf("result: %+v", got)
	}
	if c.IsUpdating() || len(c.Operations()) != 0 {
		t.Fatalf("operation not cleared")
	}
}

func TestUpdateTask_UnknownIDIsAnOrdinaryFailure(t *testing.T) {
	t.Parallel()

	c, fake, rec := newHarness(t)
	before := c.Store().Tasks()

	if got := c.UpdateTask(context.Background(), "missing", model.TaskPatch{Title: strPtr("x")}); got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
	if n := fake.Calls("UpdateTask"); n != 1 {
		t.Fatalf("remote should still be called once, got %d", n)
	}
	if !reflect.DeepEqual(c.Store().Tasks(), before) {
		t.Fatalf("store changed")
	}
	if errs := rec.errors(); len(errs) != 1 || !strings.Contains(errs[0], "not found") {
		t.Fatalf("notifications: %v", errs)
	}
}

func TestUpdateTask_SameIDRaceIsNotSerialized(t *testing.T) {
	t.Parallel()

	c, fake, _ := newHarness(t)
	b := newBlocker("UpdateTask")
	fake.Before = b.hook

	first := make(chan *model.Task)
	go func() { first <- c.UpdateTask(context.Background(), "1", model.TaskPatch{Title: strPtr("one")}) }()
	if n := b.wait(t); n != 0 {
		t.Fatalf("first call index %d", n)
	}

	second := make(chan *model.Task)
	go func() { second <- c.UpdateTask(context.Background(), "1", model.TaskPatch{Title: strPtr("two")}) }()
	b.wait(t)

	// The second call snapshotted the first call's optimistic state, so its
	// rollback restores "one", not the original title.
	b.release(1, errors.New("boom"))
	if got := <-second; got != nil {
		t.Fatalf("second call should fail")
	}
	if got, _ := c.Store().Get("1"); got.Title != "one" {
		t.Fatalf("after second rollback: got %q want %q", got.Title, "one")
	}

	b.release(0, nil)
	<-first
	if got, _ := c.Store().Get("1"); got.Title != "one" {
		t.Fatalf("after first reconcile: got %q", got.Title)
	}
}

func TestDeleteTask_PrunesSelection(t *testing.T) {
	t.Parallel()

	c, _, rec := newHarness(t)
	c.Selection().SelectAll([]string{"1", "2"})

	if !c.DeleteTask(context.Background(), "1") {
		t.Fatalf("DeleteTask failed: %v", rec.errors())
	}
	if c.Selection().IsSelected("1") {
		t.Fatalf("deleted id still selected")
	}
	if !c.Selection().IsSelected("2") {
		t.Fatalf("unrelated selection dropped")
	}
	if c.Store().Has("1") {
		t.Fatalf("task still in store")
	}
	if ok := rec.successes(); !reflect.DeepEqual(ok, []string{"Task deleted"}) {
		t.Fatalf("successes: %v", ok)
	}
}

func TestDeleteTask_FailureRestoresWholeList(t *testing.T) {
	t.Parallel()

	c, fake, rec := newHarness(t)
	fake.Before = remotetest.RejectWith("DeleteTask", remote.TransientError{Op: "delete", Err: errors.New("network down")})
	c.Selection().Toggle("2")

	if c.DeleteTask(context.Background(), "2") {
		t.Fatalf("expected failure")
	}
	if got := c.Store().Tasks(); !reflect.DeepEqual(got, seedTasks()) {
		t.Fatalf("store not restored: %+v", got)
	}
	if !c.Selection().IsSelected("2") {
		t.Fatalf("selection should survive a failed delete")
	}
	if errs := rec.errors(); !reflect.DeepEqual(errs, []string{"network down"}) {
		t.Fatalf("errors: %v", errs)
	}
}

func TestDeleteTask_BusyFlagIsPerID(t *testing.T) {
	t.Parallel()

	c, fake, _ := newHarness(t)
	b := newBlocker("DeleteTask")
	fake.Before = b.hook

	done := make(chan bool)
	go func() { done <- c.DeleteTask(context.Background(), "1") }()
	b.wait(t)

	if !c.IsDeleting("1") || c.IsDeleting("2") {
		t.Fatalf("IsDeleting: 1=%v 2=%v", c.IsDeleting("1"), c.IsDeleting("2"))
	}
	b.release(0, nil)
	<-done
	if c.IsDeleting("1") {
		t.Fatalf("IsDeleting not cleared")
	}
}

func TestBulkDelete_AnyRejectionRollsBackEverything(t *testing.T) {
	t.Parallel()

	c, fake, rec := newHarness(t)
	fake.Before = remotetest.RejectWith("DeleteTask", errors.New("Delete failed"), "2")
	ids := []string{"1", "2", "3"}
	c.Selection().SelectAll(ids)

	err := c.BulkDelete(context.Background(), ids)
	var berr *BulkError
	if !errors.As(err, &berr) {
		t.Fatalf("expected *BulkError, got %v", err)
	}
	if got := berr.FailedIDs(); !reflect.DeepEqual(got, []string{"2"}) {
		t.Fatalf("FailedIDs: got %v", got)
	}
	if n := fake.Calls("DeleteTask"); n != 3 {
		t.Fatalf("every delete should be issued, got %d", n)
	}
	if got := c.Store().Tasks(); !reflect.DeepEqual(got, seedTasks()) {
		t.Fatalf("store not fully restored: %v", view.IDs(got))
	}
	if c.Selection().Count() != 3 {
		t.Fatalf("selection should be kept on failure: %v", c.Selection().IDs())
	}
	if errs := rec.errors(); !reflect.DeepEqual(errs, []string{"Delete failed"}) {
		t.Fatalf("errors: %v", errs)
	}
	if c.IsBulkOperation() {
		t.Fatalf("IsBulkOperation not cleared")
	}
}

func TestBulkDelete_SuccessClearsSelectedIDs(t *testing.T) {
	t.Parallel()

	c, fake, rec := newHarness(t)
	c.Selection().SelectAll([]string{"1", "3"})

	if err := c.BulkDeleteSelected(context.Background()); err != nil {
		t.Fatalf("BulkDelete: %v", err)
	}
	if got := c.Store().IDs(); !reflect.DeepEqual(got, []string{"2"}) {
		t.Fatalf("store ids: %v", got)
	}
	if c.Selection().Count() != 0 {
		t.Fatalf("selection not cleared: %v", c.Selection().IDs())
	}
	if got := len(fake.Tasks()); got != 1 {
		t.Fatalf("service tasks: %d", got)
	}
	if ok := rec.successes(); !reflect.DeepEqual(ok, []string{"Deleted 2 tasks"}) {
		t.Fatalf("successes: %v", ok)
	}
}

func TestBulkDelete_BusyWhileInFlight(t *testing.T) {
	t.Parallel()

	c, fake, _ := newHarness(t)
	b := newBlocker("DeleteTask")
	fake.Before = b.hook

	done := make(chan error)
	go func() { done <- c.BulkDelete(context.Background(), []string{"1", "2"}) }()
	b.wait(t)
	b.wait(t)

	if !c.IsBulkOperation() {
		t.Fatalf("IsBulkOperation should be true")
	}
	if got := c.Store().IDs(); !reflect.DeepEqual(got, []string{"3"}) {
		t.Fatalf("optimistic removal: %v", got)
	}
	b.release(0, nil)
	b.release(1, nil)
	if err := <-done; err != nil {
		t.Fatalf("BulkDelete: %v", err)
	}
	if c.IsBulkOperation() {
		t.Fatalf("IsBulkOperation not cleared")
	}
}

func TestBulkUpdate_ReplacesStoreWithRefetch(t *testing.T) {
	t.Parallel()

	initial := []model.Task{
		{ID: "1", Title: "one", Status: model.StatusTodo},
		{ID: "2", Title: "two", Status: model.StatusDone},
	}
	refetched := []model.Task{
		{ID: "1", Title: "one", Status: model.StatusDone},
		{ID: "2", Title: "two", Status: model.StatusDone},
	}
	fake := remotetest.New(initial...)
	fake.BulkUpdateFunc = func(updates []model.TaskUpdate) ([]model.Task, error) { return nil, nil }
	fake.GetTasksFunc = func() ([]model.Task, error) { return refetched, nil }
	c := New(canonical.New(initial), fake, Options{Logger: zerolog.Nop()})

	done := model.StatusDone
	err := c.BulkUpdate(context.Background(), []model.TaskUpdate{{ID: "1", Changes: model.TaskPatch{Status: &done}}})
	if err != nil {
		t.Fatalf("BulkUpdate: %v", err)
	}
	if got := c.Store().Tasks(); !reflect.DeepEqual(got, refetched) {
		t.Fatalf("store:\n got: %+v\nwant: %+v", got, refetched)
	}
	if got := view.Project(c.Store().Tasks(), view.Filter{Status: "all"}).Stats.Done; got != 2 {
		t.Fatalf("Stats.Done: got %d want 2", got)
	}
	if fake.Calls("GetTasks") != 1 {
		t.Fatalf("expected one refetch")
	}
}

func TestBulkUpdate_FailureRestoresSnapshot(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		setup func(f *remotetest.Fake)
	}{
		{
			name: "bulk call rejected",
			setup: func(f *remotetest.Fake) {
				f.Before = remotetest.RejectWith("BulkUpdateTasks", errors.New("Bulk update failed"))
			},
		},
		{
			name: "refetch rejected",
			setup: func(f *remotetest.Fake) {
				f.Before = remotetest.RejectWith("GetTasks", errors.New("refetch failed"))
			},
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			c, fake, rec := newHarness(t)
			tc.setup(fake)

			err := c.BulkComplete(context.Background(), []string{"1", "2"})
			var berr *BulkError
			if !errors.As(err, &berr) {
				t.Fatalf("expected *BulkError, got %v", err)
			}
			if got := berr.FailedIDs(); !reflect.DeepEqual(got, []string{"1", "2"}) {
				t.Fatalf("FailedIDs: %v", got)
			}
			if got := c.Store().Tasks(); !reflect.DeepEqual(got, seedTasks()) {
				t.Fatalf("store not restored: %+v", got)
			}
			if len(rec.errors()) != 1 {
				t.Fatalf("errors: %v", rec.errors())
			}
		})
	}
}

func TestBulkComplete_MarksDoneAndCompleted(t *testing.T) {
	t.Parallel()

	c, _, rec := newHarness(t)
	if err := c.BulkComplete(context.Background(), []string{"1", "2"}); err != nil {
		t.Fatalf("BulkComplete: %v", err)
	}
	for _, id := range []string{"1", "2"} {
		got, _ := c.Store().Get(id)
		if got.Status != model.StatusDone || !got.IsCompleted {
			t.Fatalf("%s: status=%s completed=%v", id, got.Status, got.IsCompleted)
		}
	}
	if ok := rec.successes(); !reflect.DeepEqual(ok, []string{"Updated 2 tasks"}) {
		t.Fatalf("successes: %v", ok)
	}
}

func TestCreateTask(t *testing.T) {
	t.Parallel()

	c, _, rec := newHarness(t)
	got := c.CreateTask(context.Background(), model.TaskInput{Title: "New thing"})
	if got == nil {
		t.Fatalf("CreateTask failed: %v", rec.errors())
	}
	if !c.Store().Has(got.ID) || c.Store().Len() != 4 {
		t.Fatalf("created task not appended: %v", c.Store().IDs())
	}
	if got.Priority != model.PriorityNormal || got.Status != model.StatusTodo {
		t.Fatalf("defaults: %+v", got)
	}

	if bad := c.CreateTask(context.Background(), model.TaskInput{Title: "  "}); bad != nil {
		t.Fatalf("expected validation failure")
	}
	if errs := rec.errors(); !reflect.DeepEqual(errs, []string{"Task title is required"}) {
		t.Fatalf("errors: %v", errs)
	}
	if c.Store().Len() != 4 {
		t.Fatalf("failed create changed the store")
	}
}

func TestSubtasks_OptimisticAndReconciled(t *testing.T) {
	t.Parallel()

	c, fake, _ := newHarness(t)
	b := newBlocker("AddSubtask")
	fake.Before = b.hook

	done := make(chan *model.Task)
	go func() { done <- c.AddSubtask(context.Background(), "1", "Check expiry date") }()
	b.wait(t)

	local, _ := c.Store().Get("1")
	if len(local.Subtasks) != 1 || !strings.HasPrefix(local.Subtasks[0].ID, PendingPrefix) {
		t.Fatalf("provisional subtask: %+v", local.Subtasks)
	}
	b.release(0, nil)
	got := <-done
	if got == nil || len(got.Subtasks) != 1 || strings.HasPrefix(got.Subtasks[0].ID, PendingPrefix) {
		t.Fatalf("reconciled subtask: %+v", got)
	}
	stored, _ := c.Store().Get("1")
	if !reflect.DeepEqual(stored, *got) {
		t.Fatalf("store not reconciled")
	}

	fake.Before = nil
	subID := got.Subtasks[0].ID
	if res := c.ToggleSubtask(context.Background(), "1", subID); res == nil || !res.Subtasks[0].IsCompleted {
		t.Fatalf("toggle: %+v", res)
	}
	if res := c.UpdateSubtask(context.Background(), "1", subID, "Check date"); res == nil || res.Subtasks[0].Title != "Check date" {
		t.Fatalf("rename: %+v", res)
	}
	if res := c.DeleteSubtask(context.Background(), "1", subID); res == nil || len(res.Subtasks) != 0 {
		t.Fatalf("delete: %+v", res)
	}
}

func TestSubtasks_RejectionRestoresTask(t *testing.T) {
	t.Parallel()

	c, fake, rec := newHarness(t)
	before, _ := c.Store().Get("2")

	if res := c.ToggleSubtask(context.Background(), "2", "nope"); res != nil {
		t.Fatalf("expected failure")
	}
	after, _ := c.Store().Get("2")
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("task changed after rejected toggle")
	}
	if errs := rec.errors(); len(errs) != 1 || errs[0] != "subtask not found: nope" {
		t.Fatalf("errors: %v", errs)
	}

	fake.Before = remotetest.RejectWith("AddSubtask", errors.New("offline"))
	if res := c.AddSubtask(context.Background(), "2", "x"); res != nil {
		t.Fatalf("expected failure")
	}
	after, _ = c.Store().Get("2")
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("provisional subtask left behind: %+v", after.Subtasks)
	}
}

func TestLoadAndCategories(t *testing.T) {
	t.Parallel()

	fake := remotetest.New(seedTasks()...)
	fake.SetCategories(model.DefaultCategories(testNow)...)
	sel := selection.New("1", "ghost")
	c := New(canonical.New(nil), fake, Options{Selection: sel, Logger: zerolog.Nop()})

	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Store().Len() != 3 || len(c.Categories()) != 4 {
		t.Fatalf("loaded %d tasks, %d categories", c.Store().Len(), len(c.Categories()))
	}
	if sel.IsSelected("ghost") || !sel.IsSelected("1") {
		t.Fatalf("selection not pruned on load: %v", sel.IDs())
	}

	cat := c.CreateCategory(context.Background(), model.CategoryInput{Name: "Errands", Color: "#123456", Icon: "car"})
	if cat == nil || len(c.Categories()) != 5 {
		t.Fatalf("CreateCategory: %+v", cat)
	}
	if c.CreateCategory(context.Background(), model.CategoryInput{Name: "Bad", Color: "red", Icon: "x"}) != nil {
		t.Fatalf("invalid color accepted")
	}
	if got := c.UpdateCategory(context.Background(), cat.ID, model.CategoryPatch{Name: strPtr("Chores")}); got == nil || got.Name != "Chores" {
		t.Fatalf("UpdateCategory: %+v", got)
	}
	if found, _ := c.Category(cat.ID); found.Name != "Chores" {
		t.Fatalf("category list not updated: %+v", found)
	}
	if !c.DeleteCategory(context.Background(), cat.ID) || len(c.Categories()) != 4 {
		t.Fatalf("DeleteCategory failed")
	}
	if c.DeleteCategory(context.Background(), cat.ID) {
		t.Fatalf("second delete should report not found")
	}
}

func TestResync_SkipsWhileBusy(t *testing.T) {
	t.Parallel()

	c, fake, _ := newHarness(t)
	b := newBlocker("UpdateTask")
	fake.Before = b.hook

	done := make(chan *model.Task)
	go func() { done <- c.UpdateTask(context.Background(), "1", model.TaskPatch{Title: strPtr("x")}) }()
	b.wait(t)

	ran, err := c.Resync(context.Background())
	if err != nil || ran {
		t.Fatalf("Resync while busy: ran=%v err=%v", ran, err)
	}
	b.release(0, nil)
	<-done

	ran, err = c.Resync(context.Background())
	if err != nil || !ran {
		t.Fatalf("Resync when idle: ran=%v err=%v", ran, err)
	}
}

// staleFetch parks GetTasks until released and then answers with the list as
// it was when the fetch started.
type staleFetch struct {
	entered chan struct{}
	gate    chan struct{}
}

func newStaleFetch(fake *remotetest.Fake) *staleFetch {
	f := &staleFetch{entered: make(chan struct{}), gate: make(chan struct{})}
	stale := fake.Tasks()
	fake.GetTasksFunc = func() ([]model.Task, error) {
		close(f.entered)
		<-f.gate
		return stale, nil
	}
	return f
}

type resyncResult struct {
	ran bool
	err error
}

func (f *staleFetch) start(t *testing.T, c *Controller) <-chan resyncResult {
	t.Helper()
	out := make(chan resyncResult, 1)
	go func() {
		ran, err := c.Resync(context.Background())
		out <- resyncResult{ran, err}
	}()
	select {
	case <-f.entered:
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for GetTasks")
	}
	return out
}

func TestResync_DiscardsFetchThatOverlapsConfirmedDelete(t *testing.T) {
	t.Parallel()

	c, fake, _ := newHarness(t)
	fetch := newStaleFetch(fake)
	res := fetch.start(t, c)

	if !c.DeleteTask(context.Background(), "1") {
		t.Fatalf("DeleteTask failed")
	}
	close(fetch.gate)

	if r := <-res; r.err != nil || r.ran {
		t.Fatalf("Resync overlapping a delete: ran=%v err=%v", r.ran, r.err)
	}
	if c.Store().Has("1") {
		t.Fatalf("deleted task came back from a stale fetch")
	}
	if c.Store().Len() != 2 || len(fake.Tasks()) != 2 {
		t.Fatalf("store=%d service=%d; want 2 each", c.Store().Len(), len(fake.Tasks()))
	}
}

func TestResync_KeepsOptimisticUpdateStartedDuringFetch(t *testing.T) {
	t.Parallel()

	c, fake, _ := newHarness(t)
	fetch := newStaleFetch(fake)
	b := newBlocker("UpdateTask")
	fake.Before = b.hook
	res := fetch.start(t, c)

	done := make(chan *model.Task)
	go func() { done <- c.UpdateTask(context.Background(), "1", model.TaskPatch{Title: strPtr("Buy oat milk")}) }()
	b.wait(t)
	close(fetch.gate)

	if r := <-res; r.err != nil || r.ran {
		t.Fatalf("Resync overlapping an update: ran=%v err=%v", r.ran, r.err)
	}
	if got, _ := c.Store().Get("1"); got.Title != "Buy oat milk" {
		t.Fatalf("optimistic title replaced by stale fetch: %q", got.Title)
	}

	b.release(0, nil)
	if got := <-done; got == nil || got.Title != "Buy oat milk" {
		t.Fatalf("UpdateTask = %+v", got)
	}
	if got, _ := c.Store().Get("1"); got.Title != "Buy oat milk" {
		t.Fatalf("title after reconcile = %q", got.Title)
	}
}

func TestDetachedFromCallerCancellation(t *testing.T) {
	t.Parallel()

	c, _, rec := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if got := c.UpdateTask(ctx, "1", model.TaskPatch{Title: strPtr("still runs")}); got == nil {
		t.Fatalf("cancelled caller context aborted the remote call: %v", rec.errors())
	}
}

package canonical

import (
	"reflect"
	"testing"

	"taskdeck/internal/model"
)

func strPtr(s string) *string { return &s }

func sampleTasks() []model.Task {
	return []model.Task{
		{ID: "1", Title: "Buy milk", Status: model.StatusTodo},
		{ID: "2", Title: "Call dentist", Status: model.StatusDone},
		{ID: "3", Title: "Write report", Status: model.StatusInProgress},
	}
}

func TestStore_MissingIDsAreNoOps(t *testing.T) {
	t.Parallel()

	s := New(sampleTasks())
	before := s.Tasks()

	s.ApplyPatch("nope", model.TaskPatch{Title: strPtr("x")})
	s.Remove("nope")
	s.RemoveMany([]string{"nope", "also-nope"})
	s.ApplyPatches(map[string]model.TaskPatch{"nope": {Title: strPtr("x")}})

	if got := s.Tasks(); !reflect.DeepEqual(got, before) {
		t.Fatalf("missing ids changed the store:\n got: %+v\nwant: %+v", got, before)
	}
}

func TestStore_ApplyPatchesAndRemoveMany(t *testing.T) {
	t.Parallel()

	s := New(sampleTasks())
	s.ApplyPatches(map[string]model.TaskPatch{
		"1": {Title: strPtr("Buy oat milk")},
		"3": {Title: strPtr("Ship report")},
	})
	if got, _ := s.Get("1"); got.Title != "Buy oat milk" {
		t.Fatalf("patch 1: got %q", got.Title)
	}
	if got, _ := s.Get("3"); got.Title != "Ship report" {
		t.Fatalf("patch 3: got %q", got.Title)
	}

	s.RemoveMany([]string{"1", "3"})
	if got := s.IDs(); !reflect.DeepEqual(got, []string{"2"}) {
		t.Fatalf("RemoveMany: got %v", got)
	}
}

func TestStore_TasksReturnsCopies(t *testing.T) {
	t.Parallel()

	s := New([]model.Task{{ID: "1", Title: "A", Subtasks: []model.Subtask{{ID: "s", Title: "S"}}}})
	got := s.Tasks()
	got[0].Title = "mutated"
	got[0].Subtasks[0].Title = "mutated"

	again, _ := s.Get("1")
	if again.Title != "A" || again.Subtasks[0].Title != "S" {
		t.Fatalf("store shares memory with callers: %+v", again)
	}
}

func TestStore_SnapshotRestore(t *testing.T) {
	t.Parallel()

	s := New(sampleTasks())
	snap := s.Snapshot()
	s.RemoveMany([]string{"1", "2"})
	s.ApplyPatch("3", model.TaskPatch{Title: strPtr("changed")})

	s.Restore(snap)
	if got := s.Tasks(); !reflect.DeepEqual(got, sampleTasks()) {
		t.Fatalf("Restore:\n got: %+v\nwant: %+v", got, sampleTasks())
	}
}

func TestStore_RestoreTask_ReinsertsAtOldPosition(t *testing.T) {
	t.Parallel()

	s := New(sampleTasks())
	snap := s.SnapshotTask("2")
	s.Remove("2")
	s.RestoreTask(snap)

	if got := s.IDs(); !reflect.DeepEqual(got, []string{"1", "2", "3"}) {
		t.Fatalf("RestoreTask order: got %v", got)
	}

	missing := s.SnapshotTask("9")
	s.Put(model.Task{ID: "9", Title: "arrived later"})
	s.RestoreTask(missing)
	if !s.Has("9") {
		t.Fatalf("restoring an absent snapshot must not remove records")
	}
}

func TestStore_PutAppendsOrReplaces(t *testing.T) {
	t.Parallel()

	s := New(sampleTasks())
	s.Put(model.Task{ID: "2", Title: "replaced"})
	s.Put(model.Task{ID: "4", Title: "new"})

	if got := s.IDs(); !reflect.DeepEqual(got, []string{"1", "2", "3", "4"}) {
		t.Fatalf("Put order: got %v", got)
	}
	if got, _ := s.Get("2"); got.Title != "replaced" {
		t.Fatalf("Put replace: got %q", got.Title)
	}
}

func TestStore_SubscribeNotifiesOnChange(t *testing.T) {
	t.Parallel()

	s := New(sampleTasks())
	n := 0
	unsub := s.Subscribe(func() { n++ })

	s.ApplyPatch("1", model.TaskPatch{Title: strPtr("x")})
	s.Remove("nope") // no change, no notification
	s.Remove("2")
	if n != 2 {
		t.Fatalf("notifications: got %d want 2", n)
	}

	unsub()
	s.Remove("3")
	if n != 2 {
		t.Fatalf("notified after unsubscribe: %d", n)
	}
}

package remote_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"taskdeck/internal/model"
	"taskdeck/internal/remote"
	"taskdeck/internal/remote/remotetest"
)

var fixedTime = time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)

func TestFlaky_AlwaysFails(t *testing.T) {
	t.Parallel()

	fake := remotetest.New(model.Task{ID: "1", Title: "a"})
	f := remote.NewFlaky(fake, 0, 1, 42)

	_, err := f.GetTasks(context.Background())
	if !errors.Is(err, remote.ErrSimulated) {
		t.Fatalf("expected simulated error, got %v", err)
	}
	if remote.Kind(err) != "transient" {
		t.Fatalf("expected transient kind, got %q", remote.Kind(err))
	}
	if n := fake.Calls("GetTasks"); n != 0 {
		t.Fatalf("rejected call must not reach the backend, got %d calls", n)
	}
}

func TestFlaky_NeverFails(t *testing.T) {
	t.Parallel()

	fake := remotetest.New(model.Task{ID: "1", Title: "a"})
	f := remote.NewFlaky(fake, 0, 0, 42)

	for i := 0; i < 20; i++ {
		if _, err := f.GetTasks(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if n := fake.Calls("GetTasks"); n != 20 {
		t.Fatalf("expected 20 calls, got %d", n)
	}
}

func TestFlaky_LatencyHonoursCancel(t *testing.T) {
	t.Parallel()

	f := remote.NewFlaky(remotetest.New(), time.Hour, 0, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.DeleteTask(ctx, "1")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

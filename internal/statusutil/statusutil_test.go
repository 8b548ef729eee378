package statusutil

import (
	"testing"

	"taskdeck/internal/model"
)

func TestNormalizeStatus(t *testing.T) {
	cases := []struct {
		in      string
		want    model.Status
		wantErr bool
	}{
		{"todo", model.StatusTodo, false},
		{"TODO", model.StatusTodo, false},
		{"doing", model.StatusInProgress, false},
		{" in-progress ", model.StatusInProgress, false},
		{"in_progress", model.StatusInProgress, false},
		{"DONE", model.StatusDone, false},
		{"backlog", "", true},
		{"", "", true},
		{"   ", "", true},
	}
	for _, tc := range cases {
		got, err := NormalizeStatus(tc.in)
		if tc.wantErr && err == nil {
			t.Fatalf("NormalizeStatus(%q): expected error", tc.in)
		}
		if !tc.wantErr && err != nil {
			t.Fatalf("NormalizeStatus(%q): unexpected error: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("NormalizeStatus(%q): expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestNormalizePriority(t *testing.T) {
	if got, err := NormalizePriority("HIGH"); err != nil || got != model.PriorityHigh {
		t.Fatalf("NormalizePriority(HIGH): got %q err=%v", got, err)
	}
	if _, err := NormalizePriority("urgent"); err == nil {
		t.Fatalf("expected error for unknown priority")
	}
}

func TestNormalizeFilter(t *testing.T) {
	cases := map[string]string{
		"":      FilterAll,
		"ALL":   FilterAll,
		"doing": "in_progress",
		"done":  "done",
	}
	for in, want := range cases {
		got, err := NormalizeFilter(in)
		if err != nil {
			t.Fatalf("NormalizeFilter(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("NormalizeFilter(%q): expected %q, got %q", in, want, got)
		}
	}
	if _, err := NormalizeFilter("nope"); err == nil {
		t.Fatalf("expected error for unknown filter")
	}
}

func TestNext_Cycles(t *testing.T) {
	s := model.StatusTodo
	for _, want := range []model.Status{model.StatusInProgress, model.StatusDone, model.StatusTodo} {
		s = Next(s)
		if s != want {
			t.Fatalf("Next: expected %q, got %q", want, s)
		}
	}
	if !IsEndState(model.StatusDone) || IsEndState(model.StatusTodo) {
		t.Fatalf("IsEndState: only done is an end state")
	}
}

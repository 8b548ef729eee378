package format

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"taskdeck/internal/model"
)

func TestWrite_JSONAndUnknown(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := Write(&buf, map[string]int{"a": 1}, "", false); err != nil {
		t.Fatalf("Write json: %v", err)
	}
	if got := buf.String(); got != "{\"a\":1}\n" {
		t.Fatalf("unexpected json %q", got)
	}
	if err := Write(&buf, 1, "yaml", false); err == nil {
		t.Fatalf("expected unknown format error")
	}
}

func TestWriteEDN_KeywordsAndInstants(t *testing.T) {
	t.Parallel()

	task := model.Task{
		ID:         "task-1",
		Title:      "Buy milk",
		Priority:   model.PriorityHigh,
		Status:     model.StatusTodo,
		CategoryID: "shopping",
		CreatedAt:  time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC),
		UpdatedAt:  time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	var buf bytes.Buffer
	if err := WriteEDN(&buf, task, false); err != nil {
		t.Fatalf("WriteEDN: %v", err)
	}
	got := buf.String()
	for _, want := range []string{
		`:category-id "shopping"`,
		`:created-at #inst "2030-01-02T03:04:05Z"`,
		`:is-completed false`,
		`:title "Buy milk"`,
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %s in %s", want, got)
		}
	}
}

func TestWriteEDN_Pretty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := WriteEDN(&buf, map[string]any{"ids": []string{"1", "2"}, "count": 2}, true); err != nil {
		t.Fatalf("WriteEDN: %v", err)
	}
	want := "{\n  :count 2\n  :ids [\n    \"1\"\n    \"2\"\n  ]\n}\n"
	if buf.String() != want {
		t.Fatalf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestKeyword(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"id":               "id",
		"categoryId":       "category-id",
		"pomodoroEstimate": "pomodoro-estimate",
		"in_progress":      "in-progress",
	}
	for in, want := range cases {
		if got := keyword(in); got != want {
			t.Fatalf("keyword(%q): got %q want %q", in, got, want)
		}
	}
}

func TestWriteText(t *testing.T) {
	t.Parallel()

	tasks := Tasks{
		{ID: "1", Title: "Buy milk", Status: model.StatusTodo, Priority: model.PriorityNormal,
			Subtasks: []model.Subtask{{ID: "s1", Title: "go", IsCompleted: true}, {ID: "s2", Title: "pay"}}},
	}
	var buf bytes.Buffer
	if err := Write(&buf, tasks, Text, false); err != nil {
		t.Fatalf("Write text: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "TITLE") || !strings.Contains(out, "Buy milk [1/2]") {
		t.Fatalf("unexpected table:\n%s", out)
	}

	buf.Reset()
	if err := Write(&buf, Tasks{}, Text, false); err != nil {
		t.Fatalf("Write text: %v", err)
	}
	if buf.String() != "No tasks.\n" {
		t.Fatalf("unexpected empty rendering %q", buf.String())
	}

	buf.Reset()
	if err := Write(&buf, map[string]bool{"ok": true}, Text, false); err != nil {
		t.Fatalf("Write text fallback: %v", err)
	}
	if buf.String() != "{\n  \"ok\": true\n}\n" {
		t.Fatalf("expected pretty json fallback, got %q", buf.String())
	}
}

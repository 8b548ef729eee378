// Package view derives what the task list shows from the canonical tasks and
// the current filter inputs. Everything here is a pure function of its arguments.
package view

import (
	"strings"

	"taskdeck/internal/model"
	"taskdeck/internal/statusutil"
)

// Filter is the complete set of inputs to a projection.
type Filter struct {
	Query string
	// Status is statusutil.FilterAll ("all"), "" (same as all) or an exact status.
	Status string
	// CategoryID restricts to one category; empty means every category.
	CategoryID string
}

type Groups struct {
	Todo       []model.Task
	InProgress []model.Task
	Done       []model.Task
}

// Get returns the bucket for st (nil for an unknown status).
func (g Groups) Get(st model.Status) []model.Task {
	switch st {
	case model.StatusTodo:
		return g.Todo
	case model.StatusInProgress:
		return g.InProgress
	case model.StatusDone:
		return g.Done
	default:
		return nil
	}
}

// Stats are the per-tab counts. All always equals len(Result.Filtered).
type Stats struct {
	All        int `json:"all"`
	Todo       int `json:"todo"`
	InProgress int `json:"in_progress"`
	Done       int `json:"done"`
}

// Count returns the count shown on the tab for filter value f.
func (s Stats) Count(f string) int {
	switch model.Status(f) {
	case model.StatusTodo:
		return s.Todo
	case model.StatusInProgress:
		return s.InProgress
	case model.StatusDone:
		return s.Done
	default:
		return s.All
	}
}

type Result struct {
	Filtered []model.Task
	Groups   Groups
	Stats    Stats
}

// Project filters tasks and buckets the survivors by status. Input order is
// preserved in Filtered and in every group. tasks is never modified.
func Project(tasks []model.Task, f Filter) Result {
	q := strings.ToLower(strings.TrimSpace(f.Query))
	status := strings.TrimSpace(f.Status)

	res := Result{Filtered: []model.Task{}}
	for _, t := range tasks {
		if f.CategoryID != "" && t.CategoryID != f.CategoryID {
			continue
		}
		if status != "" && status != statusutil.FilterAll && string(t.Status) != status {
			continue
		}
		if q != "" && !Matches(t, q) {
			continue
		}
		res.Filtered = append(res.Filtered, t)
		switch t.Status {
		case model.StatusTodo:
			res.Groups.Todo = append(res.Groups.Todo, t)
		case model.StatusInProgress:
			res.Groups.InProgress = append(res.Groups.InProgress, t)
		case model.StatusDone:
			res.Groups.Done = append(res.Groups.Done, t)
		}
	}
	res.Stats = Stats{
		All:        len(res.Filtered),
		Todo:       len(res.Groups.Todo),
		InProgress: len(res.Groups.InProgress),
		Done:       len(res.Groups.Done),
	}
	return res
}

// Matches reports whether the lower-cased, trimmed query q is a substring of
// the task's title or description. No other field is searched.
func Matches(t model.Task, q string) bool {
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(t.Title), q) ||
		strings.Contains(strings.ToLower(t.Description), q)
}

// IDs returns the ids of tasks in order.
func IDs(tasks []model.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

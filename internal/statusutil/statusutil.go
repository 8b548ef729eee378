package statusutil

import (
	"fmt"
	"strings"

	"taskdeck/internal/model"
)

// FilterAll is the status filter value that matches every task.
const FilterAll = "all"

func NormalizeStatus(s string) (model.Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "todo", "to-do", "to_do":
		return model.StatusTodo, nil
	case "in_progress", "in-progress", "inprogress", "doing", "progress":
		return model.StatusInProgress, nil
	case "done", "complete", "completed":
		return model.StatusDone, nil
	case "":
		return "", fmt.Errorf("invalid status: empty")
	default:
		return "", fmt.Errorf("invalid status: %s", strings.TrimSpace(s))
	}
}

func NormalizePriority(s string) (model.Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low", "l":
		return model.PriorityLow, nil
	case "normal", "n", "medium":
		return model.PriorityNormal, nil
	case "high", "h":
		return model.PriorityHigh, nil
	case "":
		return "", fmt.Errorf("invalid priority: empty")
	default:
		return "", fmt.Errorf("invalid priority: %s", strings.TrimSpace(s))
	}
}

// NormalizeFilter accepts "all" (or empty) plus anything NormalizeStatus accepts.
func NormalizeFilter(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, FilterAll) {
		return FilterAll, nil
	}
	st, err := NormalizeStatus(s)
	if err != nil {
		return "", err
	}
	return string(st), nil
}

func ValidStatus(s model.Status) bool {
	for _, st := range model.Statuses {
		if st == s {
			return true
		}
	}
	return false
}

func ValidPriority(p model.Priority) bool {
	switch p {
	case model.PriorityLow, model.PriorityNormal, model.PriorityHigh:
		return true
	}
	return false
}

func IsEndState(s model.Status) bool {
	return s == model.StatusDone
}

func Label(status string) string {
	switch status {
	case FilterAll:
		return "All"
	case string(model.StatusTodo):
		return "To Do"
	case string(model.StatusInProgress):
		return "In Progress"
	case string(model.StatusDone):
		return "Done"
	default:
		return status
	}
}

// Next cycles todo -> in_progress -> done -> todo.
func Next(s model.Status) model.Status {
	switch s {
	case model.StatusTodo:
		return model.StatusInProgress
	case model.StatusInProgress:
		return model.StatusDone
	default:
		return model.StatusTodo
	}
}

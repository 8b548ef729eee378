package view

import (
	"math"
	"time"

	"taskdeck/internal/model"
)

type CategoryCount struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Count int    `json:"count"`
}

type PriorityCounts struct {
	Low    int `json:"low"`
	Normal int `json:"normal"`
	High   int `json:"high"`
}

type Analytics struct {
	Total          int             `json:"total"`
	Completed      int             `json:"completed"`
	Pending        int             `json:"pending"`
	Overdue        int             `json:"overdue"`
	CompletionRate int             `json:"completionRate"`
	ByCategory     []CategoryCount `json:"byCategory"`
	ByPriority     PriorityCounts  `json:"byPriority"`
}

// Analyze summarizes tasks. Completion is read from IsCompleted, not Status.
// A task is overdue when it is not completed and its due date is before the
// calendar date of now. Categories with no tasks are omitted.
func Analyze(tasks []model.Task, cats []model.Category, now time.Time) Analytics {
	a := Analytics{Total: len(tasks), ByCategory: []CategoryCount{}}
	today := now.Format("2006-01-02")
	perCat := map[string]int{}
	for _, t := range tasks {
		if t.IsCompleted {
			a.Completed++
		} else if t.DueDate != "" && isBefore(t.DueDate, today) {
			a.Overdue++
		}
		if t.CategoryID != "" {
			perCat[t.CategoryID]++
		}
		switch t.Priority {
		case model.PriorityLow:
			a.ByPriority.Low++
		case model.PriorityNormal:
			a.ByPriority.Normal++
		case model.PriorityHigh:
			a.ByPriority.High++
		}
	}
	a.Pending = a.Total - a.Completed
	if a.Total > 0 {
		a.CompletionRate = int(math.Round(float64(a.Completed) / float64(a.Total) * 100))
	}
	for _, c := range cats {
		if n := perCat[c.ID]; n > 0 {
			a.ByCategory = append(a.ByCategory, CategoryCount{ID: c.ID, Name: c.Name, Color: c.Color, Count: n})
		}
	}
	return a
}

// isBefore compares YYYY-MM-DD dates. Unparseable due dates are never overdue.
func isBefore(due, today string) bool {
	if _, err := time.Parse("2006-01-02", due); err != nil {
		return false
	}
	return due < today
}

package format

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"taskdeck/internal/model"
	"taskdeck/internal/view"
)

// Tasks renders a task list as a table.
type Tasks []model.Task

func (ts Tasks) Text() string {
	if len(ts) == 0 {
		return "No tasks."
	}
	t := newTable("ID", "STATUS", "PRI", "DUE", "DONE", "TITLE")
	for _, task := range ts {
		done := ""
		if task.IsCompleted {
			done = "x"
		}
		title := task.Title
		if n := len(task.Subtasks); n > 0 {
			title = fmt.Sprintf("%s [%d/%d]", title, completedSubtasks(task), n)
		}
		t.Row(task.ID, string(task.Status), string(task.Priority), task.DueDate, done, title)
	}
	return t.String()
}

// Task renders one task with its subtasks.
type Task model.Task

func (t Task) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n", t.ID, t.Title)
	fmt.Fprintf(&b, "status: %s  priority: %s  completed: %t\n", t.Status, t.Priority, t.IsCompleted)
	if t.CategoryID != "" {
		fmt.Fprintf(&b, "category: %s\n", t.CategoryID)
	}
	if t.DueDate != "" {
		fmt.Fprintf(&b, "due: %s\n", t.DueDate)
	}
	if t.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", t.Description)
	}
	if len(t.Subtasks) > 0 {
		b.WriteString("\n")
		for _, st := range t.Subtasks {
			mark := " "
			if st.IsCompleted {
				mark = "x"
			}
			fmt.Fprintf(&b, "[%s] %s  (%s)\n", mark, st.Title, st.ID)
		}
	}
	return b.String()
}

type Categories []model.Category

func (cs Categories) Text() string {
	if len(cs) == 0 {
		return "No categories."
	}
	t := newTable("ID", "NAME", "COLOR", "ICON")
	for _, c := range cs {
		t.Row(c.ID, c.Name, c.Color, c.Icon)
	}
	return t.String()
}

type Reminders []model.Reminder

func (rs Reminders) Text() string {
	if len(rs) == 0 {
		return "No reminders."
	}
	t := newTable("ID", "TASK", "TYPE", "AT", "SENT")
	for _, r := range rs {
		sent := ""
		if r.SentAt != nil {
			sent = r.SentAt.Format("2006-01-02 15:04")
		}
		t.Row(r.ID, r.TaskID, string(r.ReminderType), r.ReminderTime.Format("2006-01-02 15:04"), sent)
	}
	return t.String()
}

// Analytics renders the stats summary.
type Analytics view.Analytics

func (a Analytics) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "total %d  completed %d  pending %d  overdue %d  (%d%% done)\n",
		a.Total, a.Completed, a.Pending, a.Overdue, a.CompletionRate)
	fmt.Fprintf(&b, "priority: high %d  normal %d  low %d\n",
		a.ByPriority.High, a.ByPriority.Normal, a.ByPriority.Low)
	if len(a.ByCategory) > 0 {
		t := newTable("CATEGORY", "TASKS")
		for _, c := range a.ByCategory {
			t.Row(c.Name, strconv.Itoa(c.Count))
		}
		b.WriteString(t.String())
	}
	return b.String()
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderColumn(false).
		BorderLeft(false).
		BorderRight(false).
		BorderTop(false).
		BorderBottom(false).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			return lipgloss.NewStyle().PaddingRight(2)
		})
}

func completedSubtasks(t model.Task) int {
	n := 0
	for _, st := range t.Subtasks {
		if st.IsCompleted {
			n++
		}
	}
	return n
}

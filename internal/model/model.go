package model

import "time"

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// Statuses lists the task statuses in display order.
var Statuses = []Status{StatusTodo, StatusInProgress, StatusDone}

type RecurringType string

const (
	RecurringDaily  RecurringType = "daily"
	RecurringWeekly RecurringType = "weekly"
	RecurringCustom RecurringType = "custom"
)

type Subtask struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	IsCompleted bool   `json:"isCompleted"`
}

type Recurring struct {
	Type     RecurringType `json:"type"`
	Interval *int          `json:"interval,omitempty"`
	EndDate  string        `json:"endDate,omitempty"` // YYYY-MM-DD
}

type Task struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Priority    Priority `json:"priority"`
	Status      Status   `json:"status"`
	CategoryID  string   `json:"categoryId,omitempty"`

	// IsCompleted is tracked separately from Status; nothing keeps them in sync.
	IsCompleted bool `json:"isCompleted"`

	// DueDate is a calendar date (YYYY-MM-DD) without zone information.
	DueDate string `json:"dueDate,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Subtasks    []Subtask  `json:"subtasks,omitempty"`
	Recurring   *Recurring `json:"recurring,omitempty"`
	Attachments []string   `json:"attachments,omitempty"`

	PomodoroEstimate  *int `json:"pomodoroEstimate,omitempty"`
	PomodoroCompleted *int `json:"pomodoroCompleted,omitempty"`
	EstimatedMinutes  *int `json:"estimatedMinutes,omitempty"`
}

// Clone returns a deep copy; snapshots must never share slices with live records.
func (t Task) Clone() Task {
	out := t
	if t.Subtasks != nil {
		out.Subtasks = append([]Subtask(nil), t.Subtasks...)
	}
	if t.Attachments != nil {
		out.Attachments = append([]string(nil), t.Attachments...)
	}
	if t.Recurring != nil {
		r := *t.Recurring
		if r.Interval != nil {
			r.Interval = intPtr(*r.Interval)
		}
		out.Recurring = &r
	}
	out.PomodoroEstimate = cloneInt(t.PomodoroEstimate)
	out.PomodoroCompleted = cloneInt(t.PomodoroCompleted)
	out.EstimatedMinutes = cloneInt(t.EstimatedMinutes)
	return out
}

// FindSubtask returns the index of the subtask with the given id, or -1.
func (t Task) FindSubtask(id string) int {
	for i := range t.Subtasks {
		if t.Subtasks[i].ID == id {
			return i
		}
	}
	return -1
}

// TaskInput is what a caller supplies to create a task; the service assigns id and timestamps.
type TaskInput struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Priority    Priority   `json:"priority"`
	Status      Status     `json:"status"`
	CategoryID  string     `json:"categoryId,omitempty"`
	IsCompleted bool       `json:"isCompleted"`
	DueDate     string     `json:"dueDate,omitempty"`
	Subtasks    []Subtask  `json:"subtasks,omitempty"`
	Recurring   *Recurring `json:"recurring,omitempty"`
	Attachments []string   `json:"attachments,omitempty"`

	PomodoroEstimate  *int `json:"pomodoroEstimate,omitempty"`
	PomodoroCompleted *int `json:"pomodoroCompleted,omitempty"`
	EstimatedMinutes  *int `json:"estimatedMinutes,omitempty"`
}

// NewTask builds the record a service stores for input.
func (in TaskInput) NewTask(id string, now time.Time) Task {
	if in.Priority == "" {
		in.Priority = PriorityNormal
	}
	if in.Status == "" {
		in.Status = StatusTodo
	}
	t := Task{
		ID:                id,
		Title:             in.Title,
		Description:       in.Description,
		Priority:          in.Priority,
		Status:            in.Status,
		CategoryID:        in.CategoryID,
		IsCompleted:       in.IsCompleted,
		DueDate:           in.DueDate,
		CreatedAt:         now,
		UpdatedAt:         now,
		Subtasks:          in.Subtasks,
		Recurring:         in.Recurring,
		Attachments:       in.Attachments,
		PomodoroEstimate:  in.PomodoroEstimate,
		PomodoroCompleted: in.PomodoroCompleted,
		EstimatedMinutes:  in.EstimatedMinutes,
	}
	return t.Clone()
}

// TaskPatch is a partial update. Nil fields are left untouched.
type TaskPatch struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Priority    *Priority  `json:"priority,omitempty"`
	Status      *Status    `json:"status,omitempty"`
	CategoryID  *string    `json:"categoryId,omitempty"`
	IsCompleted *bool      `json:"isCompleted,omitempty"`
	DueDate     *string    `json:"dueDate,omitempty"`
	Subtasks    *[]Subtask `json:"subtasks,omitempty"`
	Recurring   *Recurring `json:"recurring,omitempty"`
	Attachments *[]string  `json:"attachments,omitempty"`

	PomodoroEstimate  *int `json:"pomodoroEstimate,omitempty"`
	PomodoroCompleted *int `json:"pomodoroCompleted,omitempty"`
	EstimatedMinutes  *int `json:"estimatedMinutes,omitempty"`
}

func (p TaskPatch) IsEmpty() bool {
	return p == TaskPatch{}
}

// Apply returns a copy of t with the patch fields written over it.
// Apply never touches ID, CreatedAt or UpdatedAt.
func (p TaskPatch) Apply(t Task) Task {
	out := t.Clone()
	if p.Title != nil {
		out.Title = *p.Title
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.Priority != nil {
		out.Priority = *p.Priority
	}
	if p.Status != nil {
		out.Status = *p.Status
	}
	if p.CategoryID != nil {
		out.CategoryID = *p.CategoryID
	}
	if p.IsCompleted != nil {
		out.IsCompleted = *p.IsCompleted
	}
	if p.DueDate != nil {
		out.DueDate = *p.DueDate
	}
	if p.Subtasks != nil {
		out.Subtasks = append([]Subtask{}, (*p.Subtasks)...)
	}
	if p.Recurring != nil {
		r := *p.Recurring
		out.Recurring = &r
	}
	if p.Attachments != nil {
		out.Attachments = append([]string{}, (*p.Attachments)...)
	}
	if p.PomodoroEstimate != nil {
		out.PomodoroEstimate = intPtr(*p.PomodoroEstimate)
	}
	if p.PomodoroCompleted != nil {
		out.PomodoroCompleted = intPtr(*p.PomodoroCompleted)
	}
	if p.EstimatedMinutes != nil {
		out.EstimatedMinutes = intPtr(*p.EstimatedMinutes)
	}
	return out
}

type TaskUpdate struct {
	ID      string    `json:"id"`
	Changes TaskPatch `json:"changes"`
}

type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	Icon      string    `json:"icon"`
	CreatedAt time.Time `json:"createdAt"`
}

type CategoryInput struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

type CategoryPatch struct {
	Name  *string `json:"name,omitempty"`
	Color *string `json:"color,omitempty"`
	Icon  *string `json:"icon,omitempty"`
}

func (p CategoryPatch) Apply(c Category) Category {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Color != nil {
		c.Color = *p.Color
	}
	if p.Icon != nil {
		c.Icon = *p.Icon
	}
	return c
}

// DefaultCategories are seeded into an empty backend.
func DefaultCategories(now time.Time) []Category {
	return []Category{
		{ID: "inbox", Name: "Inbox", Color: "#0891b2", Icon: "inbox", CreatedAt: now},
		{ID: "work", Name: "Work", Color: "#f97316", Icon: "briefcase", CreatedAt: now},
		{ID: "personal", Name: "Personal", Color: "#06b6d4", Icon: "user", CreatedAt: now},
		{ID: "shopping", Name: "Shopping", Color: "#84cc16", Icon: "shopping-bag", CreatedAt: now},
	}
}

type ReminderType string

const (
	Reminder10Min ReminderType = "10min"
	Reminder1Hour ReminderType = "1h"
	Reminder1Day  ReminderType = "1d"
)

// Offset is how long before the due moment a reminder of this type fires.
func (t ReminderType) Offset() (time.Duration, bool) {
	switch t {
	case Reminder10Min:
		return 10 * time.Minute, true
	case Reminder1Hour:
		return time.Hour, true
	case Reminder1Day:
		return 24 * time.Hour, true
	default:
		return 0, false
	}
}

type Reminder struct {
	ID           string       `json:"id"`
	TaskID       string       `json:"taskId"`
	ReminderTime time.Time    `json:"reminderTime"`
	ReminderType ReminderType `json:"reminderType"`
	CreatedAt    time.Time    `json:"createdAt"`
	SentAt       *time.Time   `json:"sentAt,omitempty"`
}

type ReminderInput struct {
	TaskID       string       `json:"taskId"`
	ReminderTime time.Time    `json:"reminderTime"`
	ReminderType ReminderType `json:"reminderType"`
}

func intPtr(v int) *int { return &v }

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	return intPtr(*p)
}

package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"taskdeck/internal/model"
)

// HTTPClient talks to a `taskdeck serve` instance.
type HTTPClient struct {
	BaseURL string
	HTTP    *http.Client
}

var _ Backend = (*HTTPClient)(nil)

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) Close() error {
	c.HTTP.CloseIdleConnections()
	return nil
}

// errorBody mirrors the JSON error shape written by internal/web.
type errorBody struct {
	Error  string `json:"error"`
	Kind   string `json:"kind"`
	Field  string `json:"field"`
	Entity string `json:"entity"`
	ID     string `json:"id"`
}

func (c *HTTPClient) do(ctx context.Context, op, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rd)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return TransientError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(op, resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return TransientError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func decodeError(op string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var eb errorBody
	_ = json.Unmarshal(raw, &eb)
	msg := strings.TrimSpace(eb.Error)
	if msg == "" {
		msg = strings.TrimSpace(string(raw))
	}
	if msg == "" {
		msg = resp.Status
	}
	switch {
	case resp.StatusCode == http.StatusBadRequest || eb.Kind == "validation":
		return ValidationError{Field: eb.Field, Message: msg}
	case resp.StatusCode == http.StatusNotFound:
		return NotFoundError{Kind: eb.Entity, ID: eb.ID}
	default:
		return TransientError{Op: op, Err: errors.New(msg)}
	}
}

// missing reports whether err is a not-found for the given entity, which the
// Service contract turns into a nil/false result rather than an error.
func missing(err error, entity string) bool {
	var nf NotFoundError
	return errors.As(err, &nf) && (nf.Kind == entity || nf.Kind == "")
}

func seg(id string) string { return url.PathEscape(id) }

func (c *HTTPClient) GetTasks(ctx context.Context) ([]model.Task, error) {
	var out []model.Task
	if err := c.do(ctx, "get tasks", http.MethodGet, "/api/v1/tasks", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) CreateTask(ctx context.Context, in model.TaskInput) (model.Task, error) {
	var out model.Task
	err := c.do(ctx, "create task", http.MethodPost, "/api/v1/tasks", in, &out)
	return out, err
}

func (c *HTTPClient) UpdateTask(ctx context.Context, id string, patch model.TaskPatch) (*model.Task, error) {
	var out model.Task
	if err := c.do(ctx, "update task", http.MethodPatch, "/api/v1/tasks/"+seg(id), patch, &out); err != nil {
		if missing(err, "task") {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) DeleteTask(ctx context.Context, id string) (bool, error) {
	if err := c.do(ctx, "delete task", http.MethodDelete, "/api/v1/tasks/"+seg(id), nil, nil); err != nil {
		if missing(err, "task") {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (c *HTTPClient) BulkUpdateTasks(ctx context.Context, updates []model.TaskUpdate) ([]model.Task, error) {
	var out []model.Task
	body := struct {
		Updates []model.TaskUpdate `json:"updates"`
	}{Updates: updates}
	if err := c.do(ctx, "bulk update tasks", http.MethodPost, "/api/v1/tasks/bulk-update", body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type titleBody struct {
	Title string `json:"title"`
}

func (c *HTTPClient) subtaskCall(ctx context.Context, op, method, path string, body any) (*model.Task, error) {
	var out model.Task
	if err := c.do(ctx, op, method, path, body, &out); err != nil {
		if missing(err, "task") {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) AddSubtask(ctx context.Context, taskID, title string) (*model.Task, error) {
	return c.subtaskCall(ctx, "add subtask", http.MethodPost, "/api/v1/tasks/"+seg(taskID)+"/subtasks", titleBody{Title: title})
}

func (c *HTTPClient) UpdateSubtask(ctx context.Context, taskID, subtaskID, title string) (*model.Task, error) {
	return c.subtaskCall(ctx, "update subtask", http.MethodPatch, "/api/v1/tasks/"+seg(taskID)+"/subtasks/"+seg(subtaskID), titleBody{Title: title})
}

func (c *HTTPClient) ToggleSubtask(ctx context.Context, taskID, subtaskID string) (*model.Task, error) {
	return c.subtaskCall(ctx, "toggle subtask", http.MethodPost, "/api/v1/tasks/"+seg(taskID)+"/subtasks/"+seg(subtaskID)+"/toggle", nil)
}

func (c *HTTPClient) DeleteSubtask(ctx context.Context, taskID, subtaskID string) (*model.Task, error) {
	return c.subtaskCall(ctx, "delete subtask", http.MethodDelete, "/api/v1/tasks/"+seg(taskID)+"/subtasks/"+seg(subtaskID), nil)
}

func (c *HTTPClient) GetCategories(ctx context.Context) ([]model.Category, error) {
	var out []model.Category
	if err := c.do(ctx, "get categories", http.MethodGet, "/api/v1/categories", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) CreateCategory(ctx context.Context, in model.CategoryInput) (model.Category, error) {
	var out model.Category
	err := c.do(ctx, "create category", http.MethodPost, "/api/v1/categories", in, &out)
	return out, err
}

func (c *HTTPClient) UpdateCategory(ctx context.Context, id string, patch model.CategoryPatch) (*model.Category, error) {
	var out model.Category
	if err := c.do(ctx, "update category", http.MethodPatch, "/api/v1/categories/"+seg(id), patch, &out); err != nil {
		if missing(err, "category") {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) DeleteCategory(ctx context.Context, id string) (bool, error) {
	if err := c.do(ctx, "delete category", http.MethodDelete, "/api/v1/categories/"+seg(id), nil, nil); err != nil {
		if missing(err, "category") {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (c *HTTPClient) CreateReminder(ctx context.Context, in model.ReminderInput) (model.Reminder, error) {
	var out model.Reminder
	err := c.do(ctx, "create reminder", http.MethodPost, "/api/v1/reminders", in, &out)
	return out, err
}

func (c *HTTPClient) ListReminders(ctx context.Context) ([]model.Reminder, error) {
	var out []model.Reminder
	if err := c.do(ctx, "list reminders", http.MethodGet, "/api/v1/reminders", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) DeleteReminder(ctx context.Context, id string) (bool, error) {
	if err := c.do(ctx, "delete reminder", http.MethodDelete, "/api/v1/reminders/"+seg(id), nil, nil); err != nil {
		if missing(err, "reminder") {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (c *HTTPClient) MarkReminderSent(ctx context.Context, id string, sentAt time.Time) error {
	body := struct {
		SentAt time.Time `json:"sentAt"`
	}{SentAt: sentAt}
	return c.do(ctx, "mark reminder sent", http.MethodPost, "/api/v1/reminders/"+seg(id)+"/sent", body, nil)
}

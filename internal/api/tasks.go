package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	apperrors "github.com/sadopc/taskr/internal/errors"
)

// ListTasks fetches one page of tasks. The server may answer with a bare
// array or with a {"last_page", "data"} envelope.
func (c *Client) ListTasks(ctx context.Context, page, size int) (TaskPage, error) {
	if page < 1 {
		page = 1
	}
	r, err := c.newRequest("list tasks", http.MethodGet, "/tasks", nil, true)
	if err != nil {
		return TaskPage{}, err
	}
	r.query = url.Values{}
	r.query.Set("page", strconv.Itoa(page))
	if size > 0 {
		r.query.Set("size", strconv.Itoa(size))
	}

	var raw json.RawMessage
	if err := c.do(ctx, r, &raw); err != nil {
		return TaskPage{}, err
	}
	return decodePage(raw, page, size)
}

// decodePage reads either response shape. A bare array is the whole
// collection and is paged locally.
func decodePage(raw json.RawMessage, page, size int) (TaskPage, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '[' {
		var tasks []Task
		if err := json.Unmarshal(raw, &tasks); err != nil {
			return TaskPage{}, apperrors.NewDecodeError("list tasks", err)
		}
		return slicePage(tasks, page, size), nil
	}

	var env pageEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return TaskPage{}, apperrors.NewDecodeError("list tasks", err)
	}
	last := env.LastPage
	if last < page {
		last = page
	}
	return TaskPage{Tasks: env.Data, Page: page, LastPage: last}, nil
}

func slicePage(all []Task, page, size int) TaskPage {
	if size <= 0 || len(all) <= size {
		return TaskPage{Tasks: all, Page: 1, LastPage: 1}
	}
	last := (len(all) + size - 1) / size
	if page > last {
		page = last
	}
	start := (page - 1) * size
	end := min(start+size, len(all))
	return TaskPage{Tasks: all[start:end], Page: page, LastPage: last}
}

// CreateTask creates a task that is not done.
func (c *Client) CreateTask(ctx context.Context, name string) (Task, error) {
	r, err := c.newRequest("create task", http.MethodPost, "/tasks", createTaskRequest{Name: name}, true)
	if err != nil {
		return Task{}, err
	}
	var out Task
	if err := c.do(ctx, r, &out); err != nil {
		return Task{}, err
	}
	return out, nil
}

// SetDone sets the done flag of task id.
func (c *Client) SetDone(ctx context.Context, id int64, done bool) (Task, error) {
	path := fmt.Sprintf("/tasks/%d", id)
	r, err := c.newRequest("update task", http.MethodPatch, path, setDoneRequest{Done: done}, true)
	if err != nil {
		return Task{}, err
	}
	var out Task
	if err := c.do(ctx, r, &out); err != nil {
		return Task{}, err
	}
	return out, nil
}

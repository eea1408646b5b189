package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jeryldev/sprintboard/internal/model"
)

type createTaskRequest struct {
	SprintID    int64        `json:"sprint_id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	AssignedTo  []int64      `json:"assigned_to"`
	Status      model.Status `json:"status"`
	Links       []string     `json:"links,omitempty"`
}

type updateTaskRequest struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	AssignedTo  []int64      `json:"assigned_to"`
	Status      model.Status `json:"status"`
	Links       *[]string    `json:"links,omitempty"`
}

func (c *Client) Tasks(ctx context.Context, sprintID int64) ([]*model.Task, error) {
	const path = "/tasks"
	q := url.Values{"sprint_id": {strconv.FormatInt(sprintID, 10)}}
	raw, err := c.do(ctx, http.MethodGet, path, q, nil)
	if err != nil {
		return nil, err
	}
	data, err := decodeEnvelope[itemsData[*model.Task]](http.MethodGet, path, raw)
	if err != nil {
		return nil, err
	}
	if data.Items == nil {
		return nil, malformed(http.MethodGet, path, "missing data.items")
	}
	tasks := make([]*model.Task, 0, len(*data.Items))
	for i, t := range *data.Items {
		if t == nil {
			return nil, malformed(http.MethodGet, path, "null task at index %d", i)
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// CreateTask always creates the task in the todo column.
func (c *Client) CreateTask(ctx context.Context, sprintID int64, d model.Draft) (*model.Task, error) {
	body := createTaskRequest{
		SprintID:    sprintID,
		Title:       d.Title,
		Description: d.Description,
		AssignedTo:  nonNilIDs(d.AssigneeIDs),
		Status:      model.StatusTodo,
		Links:       d.Links,
	}
	return c.sendTask(ctx, http.MethodPost, "/tasks", body)
}

// UpdateTask sends the full task payload. Links are only sent when d.Links
// is non-nil.
func (c *Client) UpdateTask(ctx context.Context, taskID int64, d model.Draft, status model.Status) (*model.Task, error) {
	body := updateTaskRequest{
		Title:       d.Title,
		Description: d.Description,
		AssignedTo:  nonNilIDs(d.AssigneeIDs),
		Status:      status,
	}
	if d.Links != nil {
		links := d.Links
		body.Links = &links
	}
	return c.sendTask(ctx, http.MethodPut, taskPath(taskID), body)
}

func (c *Client) DeleteTask(ctx context.Context, taskID int64) error {
	path := taskPath(taskID)
	raw, err := c.do(ctx, http.MethodDelete, path, nil, nil)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		return nil
	}
	_, err = decodeEnvelope[struct{}](http.MethodDelete, path, raw)
	if err != nil && isMissingData(err) {
		return nil
	}
	return err
}

func (c *Client) sendTask(ctx context.Context, method, path string, body any) (*model.Task, error) {
	raw, err := c.do(ctx, method, path, nil, body)
	if err != nil {
		return nil, err
	}
	data, err := decodeEnvelope[itemData[model.Task]](method, path, raw)
	if err != nil {
		return nil, err
	}
	if data.Item == nil {
		return nil, malformed(method, path, "missing data.item")
	}
	return data.Item, nil
}

func taskPath(id int64) string {
	return fmt.Sprintf("/tasks/%d", id)
}

func nonNilIDs(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}

// isMissingData reports whether err only complains about an absent data
// field, which a delete reply is allowed to omit.
func isMissingData(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && errors.Is(apiErr.Err, ErrMalformed) && apiErr.Message == "missing data"
}

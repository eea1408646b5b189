package board

import (
	"context"
	"errors"

	"github.com/jeryldev/sprintboard/internal/model"
)

var errNetwork = errors.New("network unreachable")

type updateCall struct {
	taskID int64
	draft  model.Draft
	status model.Status
}

// fakeExecutor records calls and answers from canned values.
type fakeExecutor struct {
	tasks    []*model.Task
	tasksErr error

	created   *model.Task
	createErr error
	creates   []model.Draft

	updated   *model.Task
	updateErr error
	updates   []updateCall

	deleteErr error
	deletes   []int64

	loads int
}

func (f *fakeExecutor) Tasks(_ context.Context, _ int64) ([]*model.Task, error) {
	f.loads++
	if f.tasksErr != nil {
		return nil, f.tasksErr
	}
	out := make([]*model.Task, len(f.tasks))
	for i, t := range f.tasks {
		out[i] = t.Clone()
	}
	return out, nil
}

func (f *fakeExecutor) CreateTask(_ context.Context, _ int64, d model.Draft) (*model.Task, error) {
	f.creates = append(f.creates, d)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.created, nil
}

func (f *fakeExecutor) UpdateTask(_ context.Context, taskID int64, d model.Draft, status model.Status) (*model.Task, error) {
	f.updates = append(f.updates, updateCall{taskID: taskID, draft: d, status: status})
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	if f.updated != nil {
		return f.updated, nil
	}
	return &model.Task{ID: taskID, Title: d.Title, Description: d.Description, Status: status}, nil
}

func (f *fakeExecutor) DeleteTask(_ context.Context, taskID int64) error {
	f.deletes = append(f.deletes, taskID)
	return f.deleteErr
}

func (f *fakeExecutor) calls() int {
	return len(f.creates) + len(f.updates) + len(f.deletes)
}

type noticeLog []Notice

func (n *noticeLog) Notify(notice Notice) {
	*n = append(*n, notice)
}

func (n noticeLog) last() Notice {
	if len(n) == 0 {
		return Notice{}
	}
	return n[len(n)-1]
}

func task(id int64, status model.Status) *model.Task {
	return &model.Task{
		ID:          id,
		Title:       "Task",
		Description: "desc",
		Status:      status,
		AssignedTo:  []model.UserRef{{ID: 3}},
	}
}

func ids(tasks []*model.Task) []int64 {
	out := make([]int64, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

package tui

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jeryldev/sprintboard/internal/model"

	tea "github.com/charmbracelet/bubbletea"
)

type fakeRemote struct {
	mu      sync.Mutex
	sprints []*model.Sprint
	members []*model.TeamMember
	tasks   map[int64][]*model.Task
	nextID  int64

	sprintsErr error
	membersErr error
	updateErr  error

	updates []model.Status
	creates []model.Draft
	deletes []int64
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		sprints: []*model.Sprint{{ID: 1, Title: "Sprint 1"}, {ID: 2, Title: "Sprint 2"}},
		members: []*model.TeamMember{
			{ID: 1, Name: "Ana", LastName: "Rojas"},
			{ID: 2, Name: "Luis", LastName: "Vega"},
		},
		tasks: map[int64][]*model.Task{
			1: {
				{ID: 10, Title: "Task 10", Status: model.StatusTodo, AssignedTo: []model.UserRef{{ID: 1}}},
				{ID: 11, Title: "Task 11", Status: model.StatusTodo, AssignedTo: []model.UserRef{{ID: 2}}},
				{ID: 12, Title: "Task 12", Status: model.StatusInProgress, AssignedTo: []model.UserRef{{ID: 1}}},
				{ID: 13, Title: "Task 13", Status: model.StatusDone, AssignedTo: []model.UserRef{{ID: 2}}, Reviewed: true},
			},
			2: {},
		},
		nextID: 100,
	}
}

func (f *fakeRemote) Tasks(_ context.Context, sprintID int64) ([]*model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Task
	for _, t := range f.tasks[sprintID] {
		out = append(out, t.Clone())
	}
	return out, nil
}

func (f *fakeRemote) CreateTask(_ context.Context, sprintID int64, d model.Draft) (*model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates = append(f.creates, d)
	t := &model.Task{ID: f.nextID, SprintID: sprintID, Title: d.Title, Description: d.Description, Status: model.StatusTodo}
	for _, id := range d.AssigneeIDs {
		t.AssignedTo = append(t.AssignedTo, model.UserRef{ID: id})
	}
	f.nextID++
	return t, nil
}

func (f *fakeRemote) UpdateTask(_ context.Context, taskID int64, d model.Draft, status model.Status) (*model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, status)
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return &model.Task{ID: taskID, Title: d.Title, Description: d.Description, Status: status}, nil
}

func (f *fakeRemote) DeleteTask(_ context.Context, taskID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, taskID)
	return nil
}

func (f *fakeRemote) Sprints(context.Context, int64) ([]*model.Sprint, error) {
	return f.sprints, f.sprintsErr
}

func (f *fakeRemote) TeamMembers(context.Context, int64) ([]*model.TeamMember, error) {
	return f.members, f.membersErr
}

type fakeStore struct {
	mu        sync.Mutex
	selection map[int64]int64
	snapshots map[int64][]*model.Task
}

func newFakeStore() *fakeStore {
	return &fakeStore{selection: map[int64]int64{}, snapshots: map[int64][]*model.Task{}}
}

func (s *fakeStore) SprintSelection(groupID int64) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.selection[groupID]
	return id, ok, nil
}

func (s *fakeStore) SaveSprintSelection(groupID, sprintID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection[groupID] = sprintID
	return nil
}

func (s *fakeStore) SaveSnapshot(sprintID int64, tasks []*model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[sprintID] = tasks
	return nil
}

var errUnavailable = errors.New("service unavailable")

// testApp returns an app showing sprint 1 of the fake remote.
func testApp(t *testing.T) (*App, *fakeRemote) {
	t.Helper()
	remote := newFakeRemote()
	app := NewApp(remote, Options{GroupID: 5})
	app.toastTTL = time.Millisecond
	app.width = 120
	app.height = 40
	t.Cleanup(app.cancel)

	resolve(t, app, app.bootstrap())
	if app.mode != modeBoard {
		t.Fatalf("mode after bootstrap = %d, want modeBoard (%d)", app.mode, modeBoard)
	}
	return app, remote
}

// resolve runs cmd and feeds the app-level results back into Update until
// nothing is left. Timer and spinner messages are dropped.
func resolve(t *testing.T, app *App, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			resolve(t, app, c)
		}
	case outcomeMsg, bootstrapMsg, errMsg:
		_, next := app.Update(msg)
		resolve(t, app, next)
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, app *App, keys ...string) {
	t.Helper()
	for _, k := range keys {
		_, cmd := app.Update(key(k))
		resolve(t, app, cmd)
	}
}

func columnIDs(app *App, status model.Status) []int64 {
	var ids []int64
	for _, t := range app.sync.Columns().Tasks(status) {
		ids = append(ids, t.ID)
	}
	return ids
}

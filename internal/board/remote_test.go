package board_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeryldev/sprintboard/internal/api"
	"github.com/jeryldev/sprintboard/internal/board"
	"github.com/jeryldev/sprintboard/internal/fakeapi"
	"github.com/jeryldev/sprintboard/internal/model"
)

func setup(t *testing.T) (*fakeapi.Server, *board.Synchronizer) {
	t.Helper()
	fake := fakeapi.NewDemo()
	srv := httptest.NewServer(fake.Handler())
	t.Cleanup(srv.Close)

	s := board.New(api.New(srv.URL))
	require.NoError(t, s.Load(context.Background(), 1))
	return fake, s
}

func TestRemoteMoveRoundTrip(t *testing.T) {
	fake, s := setup(t)

	todo := s.Columns().Tasks(model.StatusTodo)
	require.Len(t, todo, 1)
	id := todo[0].ID

	require.NoError(t, s.Move(context.Background(), id, model.StatusTodo, 0, model.StatusInProgress, 0))
	assert.Equal(t, model.StatusInProgress, fake.Task(id).Status)

	require.NoError(t, s.Load(context.Background(), 1))
	_, _, got := s.Columns().Find(id)
	require.NotNil(t, got)
	assert.Equal(t, model.StatusInProgress, got.Status)
}

func TestRemoteMoveFailureStaysPut(t *testing.T) {
	fake, s := setup(t)
	id := s.Columns().Tasks(model.StatusTodo)[0].ID
	fake.FailNext(http.MethodPut, "/tasks/:id")

	err := s.Move(context.Background(), id, model.StatusTodo, 0, model.StatusDone, 0)
	require.Error(t, err)

	status, _, _ := s.Columns().Find(id)
	assert.Equal(t, model.StatusDone, status)
	assert.Equal(t, model.StatusTodo, fake.Task(id).Status)
}

func TestRemoteCreateAndDelete(t *testing.T) {
	fake, s := setup(t)
	ctx := context.Background()

	created, err := s.Create(ctx, 1, model.Draft{Title: "Write tests", AssigneeIDs: []int64{2}})
	require.NoError(t, err)
	todo := s.Columns().Tasks(model.StatusTodo)
	assert.Equal(t, created.ID, todo[len(todo)-1].ID)

	require.NoError(t, s.Delete(ctx, created.ID))
	assert.Nil(t, fake.Task(created.ID))
	_, _, gone := s.Columns().Find(created.ID)
	assert.Nil(t, gone)
}

func TestRemoteMalformedLoad(t *testing.T) {
	fake, s := setup(t)
	fake.Inject(http.MethodGet, "/tasks", http.StatusOK, `{"success":true,"data":{}}`)

	err := s.Load(context.Background(), 1)

	var fe *board.FetchError
	require.ErrorAs(t, err, &fe)
	assert.ErrorIs(t, err, api.ErrMalformed)
	assert.Zero(t, s.Columns().Count())
}

func TestRemoteReviewedTaskIsLocked(t *testing.T) {
	fake, s := setup(t)
	before := fake.CountRequests(http.MethodDelete, "/tasks/:id")

	done := s.Columns().Tasks(model.StatusDone)
	var locked *model.Task
	for _, tk := range done {
		if tk.Locked() {
			locked = tk
		}
	}
	require.NotNil(t, locked)

	assert.ErrorIs(t, s.Delete(context.Background(), locked.ID), board.ErrTaskLocked)
	assert.Equal(t, before, fake.CountRequests(http.MethodDelete, "/tasks/:id"))
}

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeryldev/sprintboard/internal/fakeapi"
	"github.com/jeryldev/sprintboard/internal/model"
)

func newTestClient(t *testing.T, opts ...fakeapi.Option) (*Client, *fakeapi.Server) {
	t.Helper()
	fake := fakeapi.New(opts...)
	srv := httptest.NewServer(fake.Handler())
	t.Cleanup(srv.Close)
	return New(srv.URL, WithToken("secret")), fake
}

func TestTasksKeepsServerOrder(t *testing.T) {
	c, fake := newTestClient(t)
	sp := fake.AddSprint("Sprint 1")
	fake.AddTask(sp.ID, model.Task{Title: "first", Status: model.StatusTodo})
	fake.AddTask(sp.ID, model.Task{Title: "second", Status: model.StatusDone})

	tasks, err := c.Tasks(context.Background(), sp.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "first", tasks[0].Title)
	assert.Equal(t, model.StatusDone, tasks[1].Status)
}

func TestTasksRejectsMalformedEnvelopes(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing success", `{"data":{"items":[]}}`},
		{"missing data", `{"success":true}`},
		{"missing items", `{"success":true,"data":{}}`},
		{"not json", `<html>oops</html>`},
		{"null item", `{"success":true,"data":{"items":[null]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, fake := newTestClient(t)
			fake.Inject(http.MethodGet, "/tasks", http.StatusOK, tt.body)

			_, err := c.Tasks(context.Background(), 1)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformed), "error %v should wrap ErrMalformed", err)
		})
	}
}

func TestTasksUnsuccessfulEnvelope(t *testing.T) {
	c, fake := newTestClient(t)
	fake.Inject(http.MethodGet, "/tasks", http.StatusOK, `{"success":false,"message":"sprint closed"}`)

	_, err := c.Tasks(context.Background(), 1)
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "sprint closed", apiErr.Message)
	assert.False(t, errors.Is(err, ErrMalformed))
}

func TestHTTPErrorCarriesStatusAndMessage(t *testing.T) {
	c, fake := newTestClient(t)
	fake.FailNext(http.MethodDelete, "/tasks/:id")

	err := c.DeleteTask(context.Background(), 4)
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "injected failure", apiErr.Message)
	assert.Equal(t, "/tasks/4", apiErr.Path)
}

func TestCreateTaskSendsTodoAndReturnsServerRecord(t *testing.T) {
	c, fake := newTestClient(t)
	fake.SetTeam(&model.TeamMember{ID: 3, Name: "Ana", LastName: "Rojas"})
	sp := fake.AddSprint("Sprint 1")

	task, err := c.CreateTask(context.Background(), sp.ID, model.Draft{
		Title:       "Fix bug",
		Description: "...",
		AssigneeIDs: []int64{3},
		Links:       []string{"https://example.com"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), task.ID)
	assert.Equal(t, model.StatusTodo, task.Status)

	reqs := fake.Requests()
	last := reqs[len(reqs)-1]
	assert.Equal(t, "todo", last.Body["status"])
	assert.Equal(t, float64(sp.ID), last.Body["sprint_id"])
	assert.Equal(t, []any{float64(3)}, last.Body["assigned_to"])
}

func TestUpdateTaskOmitsLinksWhenNil(t *testing.T) {
	c, fake := newTestClient(t)
	sp := fake.AddSprint("Sprint 1")
	created := fake.AddTask(sp.ID, model.Task{
		Title:     "Doc",
		Resources: []model.Resource{{Type: model.ResourceLink, Name: "a", URL: "https://a"}},
	})

	updated, err := c.UpdateTask(context.Background(), created.ID,
		model.Draft{Title: "Doc", AssigneeIDs: []int64{1}}, model.StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, updated.Status)
	assert.Len(t, updated.Resources, 1, "links untouched when omitted")

	reqs := fake.Requests()
	_, sent := reqs[len(reqs)-1].Body["links"]
	assert.False(t, sent)

	updated, err = c.UpdateTask(context.Background(), created.ID,
		model.Draft{Title: "Doc", AssigneeIDs: []int64{1}, Links: []string{}}, model.StatusInProgress)
	require.NoError(t, err)
	assert.Empty(t, updated.Resources)
}

func TestDeleteTaskAcceptsBareSuccess(t *testing.T) {
	c, fake := newTestClient(t)
	sp := fake.AddSprint("Sprint 1")
	task := fake.AddTask(sp.ID, model.Task{Title: "Gone"})

	require.NoError(t, c.DeleteTask(context.Background(), task.ID))
	assert.Nil(t, fake.Task(task.ID))

	fake.Inject(http.MethodDelete, "/tasks/:id", http.StatusNoContent, "")
	assert.NoError(t, c.DeleteTask(context.Background(), 42))
}

func TestSprintsAcceptsArrayAndEnvelope(t *testing.T) {
	c, fake := newTestClient(t)
	fake.AddSprint("Sprint 1")
	fake.AddSprint("Sprint 2")

	sprints, err := c.Sprints(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, sprints, 2)
	assert.Equal(t, "Sprint 2", sprints[1].Title)

	fake.Inject(http.MethodGet, "/sprints", http.StatusOK, `{"success":true,"data":{"items":[{"id":9,"title":"Other"}]}}`)
	sprints, err = c.Sprints(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, sprints, 1)
	assert.Equal(t, int64(9), sprints[0].ID)
}

func TestTeamMembersRepresentativeFirst(t *testing.T) {
	c, fake := newTestClient(t)
	rep := &model.TeamMember{ID: 5, Name: "Rep"}
	fake.SetTeam(rep, &model.TeamMember{ID: 10, Name: "Ten"}, rep, &model.TeamMember{ID: 2, Name: "Two"})

	members, err := c.TeamMembers(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, members, 3)
	assert.Equal(t, int64(5), members[0].ID)
	assert.Equal(t, int64(2), members[1].ID, "members follow numeric key order")
	assert.Equal(t, int64(10), members[2].ID)
}

func TestTeamMembersArrayForm(t *testing.T) {
	c, fake := newTestClient(t)
	fake.Inject(http.MethodGet, "/groups/details", http.StatusOK,
		`{"success":true,"data":{"group":{"representative":null,"members":[{"id":1,"name":"A"},null]}}}`)

	members, err := c.TeamMembers(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "A", members[0].Name)
}

func TestMeSendsBearerToken(t *testing.T) {
	c, _ := newTestClient(t, fakeapi.WithToken("secret"))
	u, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Demo", u.Name)

	anon := New(c.BaseURL())
	_, err = anon.Me(context.Background())
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
}

func TestRequestHeaders(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Write([]byte(`{"success":true,"data":{"item":{"id":1}}}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL+"/", WithToken("tok")).Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", got.Get("Authorization"))
	assert.Equal(t, "application/json", got.Get("Accept"))
	assert.Len(t, got.Get("X-Request-ID"), 36)
}

func TestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c := New(srv.URL, WithTimeout(50*time.Millisecond))
	_, err := c.Tasks(context.Background(), 1)
	require.Error(t, err)
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Zero(t, apiErr.Status)
}

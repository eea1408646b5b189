package api

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeryldev/sprintboard/internal/fakeapi"
	"github.com/jeryldev/sprintboard/internal/model"
)

const announcementsRoute = "/management/:id/announcements"

func TestAnnouncementsPages(t *testing.T) {
	c, fake := newTestClient(t, fakeapi.WithManagement(3))
	for i := 0; i < fakeapi.AnnouncementPageSize+1; i++ {
		fake.AddAnnouncement(model.Announcement{Content: "<p>news</p>"})
	}

	page, err := c.Announcements(context.Background(), 3, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, page.CurrentPage)
	assert.Equal(t, 2, page.LastPage)
	assert.Len(t, page.Items, fakeapi.AnnouncementPageSize)

	page, err = c.Announcements(context.Background(), 3, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, page.CurrentPage)
	require.Len(t, page.Items, 1)
	assert.Equal(t, int64(1), page.Items[0].ID)
}

func TestAnnouncementsAcceptsKeyedObject(t *testing.T) {
	c, fake := newTestClient(t)
	fake.Inject(http.MethodGet, announcementsRoute, http.StatusOK,
		`{"data":{"10":{"id":10,"content":"b"},"2":{"id":2,"content":"a"},"3":null}}`)

	page, err := c.Announcements(context.Background(), 1, 4)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, int64(2), page.Items[0].ID)
	assert.Equal(t, int64(10), page.Items[1].ID)
	assert.Equal(t, 4, page.CurrentPage, "missing current_page falls back to the requested page")
	assert.Equal(t, 4, page.LastPage)
}

func TestAnnouncementsErrors(t *testing.T) {
	c, fake := newTestClient(t)

	fake.Inject(http.MethodGet, announcementsRoute, http.StatusOK, `{"current_page":1}`)
	_, err := c.Announcements(context.Background(), 1, 1)
	assert.True(t, errors.Is(err, ErrMalformed), "error %v should wrap ErrMalformed", err)

	fake.Inject(http.MethodGet, announcementsRoute, http.StatusOK, `{"success":false,"message":"not enrolled"}`)
	_, err = c.Announcements(context.Background(), 1, 1)
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "not enrolled", apiErr.Message)

	_, err = c.Announcements(context.Background(), 99, 1)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestEvaluationTemplates(t *testing.T) {
	c, fake := newTestClient(t)
	fake.AddTemplate(model.EvaluationTemplate{
		Type: "peer",
		Name: "Peer evaluation",
		Sections: []model.EvaluationSection{
			{Title: "Teamwork", Criteria: []model.EvaluationCriterion{{Name: "Communication"}, {Name: "Reliability"}}},
		},
	})

	templates, err := c.EvaluationTemplates(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, templates, 1)
	assert.Equal(t, "peer", templates[0].Type)
	assert.Equal(t, 2, templates[0].CriteriaCount())

	fake.Inject(http.MethodGet, "/evaluation-templates", http.StatusOK, `{"success":true,"data":{}}`)
	_, err = c.EvaluationTemplates(context.Background(), 1)
	assert.True(t, errors.Is(err, ErrMalformed))
}

func TestProposalStatusRequiresEnvelope(t *testing.T) {
	c, fake := newTestClient(t)
	fake.SetProposal(model.ProposalStatus{PartA: model.ProposalPart{Status: model.ProposalPending}})

	status, err := c.ProposalStatus(context.Background())
	require.NoError(t, err)
	assert.True(t, status.Pending())

	fake.Inject(http.MethodGet, "/proposal-submission", http.StatusOK, `{"data":{}}`)
	_, err = c.ProposalStatus(context.Background())
	assert.True(t, errors.Is(err, ErrMalformed))
}

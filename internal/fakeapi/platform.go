package fakeapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/jeryldev/sprintboard/internal/model"
)

// AnnouncementPageSize is the number of announcements per page.
const AnnouncementPageSize = 5

// AddAnnouncement stores a copy of a under a fresh id. Newer announcements
// are listed first.
func (s *Server) AddAnnouncement(a model.Announcement) *model.Announcement {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = int64(len(s.announcements) + 1)
	stored := &a
	s.announcements = append([]*model.Announcement{stored}, s.announcements...)
	cp := *stored
	return &cp
}

func (s *Server) AddTemplate(t model.EvaluationTemplate) *model.EvaluationTemplate {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = int64(len(s.templates) + 1)
	s.templates = append(s.templates, &t)
	cp := t
	return &cp
}

// SetProposal changes the state reported by /proposal-submission.
func (s *Server) SetProposal(p model.ProposalStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.proposal = p
}

func (s *Server) getAnnouncements(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, failure("invalid management id"))
	}
	page := 1
	if raw := c.QueryParam("page"); raw != "" {
		if page, err = strconv.Atoi(raw); err != nil || page < 1 {
			return c.JSON(http.StatusBadRequest, failure("invalid page"))
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if id != s.managementID {
		return c.JSON(http.StatusNotFound, failure("management not found"))
	}
	last := (len(s.announcements) + AnnouncementPageSize - 1) / AnnouncementPageSize
	if last < 1 {
		last = 1
	}
	items := make([]*model.Announcement, 0, AnnouncementPageSize)
	start := (page - 1) * AnnouncementPageSize
	for i := start; i < len(s.announcements) && i < start+AnnouncementPageSize; i++ {
		items = append(items, s.announcements[i])
	}
	return c.JSON(http.StatusOK, map[string]any{
		"data":         items,
		"current_page": page,
		"last_page":    last,
		"per_page":     AnnouncementPageSize,
		"total":        len(s.announcements),
	})
}

func (s *Server) getTemplates(c echo.Context) error {
	id, err := queryID(c, "management_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, failure(err.Error()))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	templates := make([]*model.EvaluationTemplate, 0, len(s.templates))
	if id == s.managementID {
		templates = append(templates, s.templates...)
	}
	return c.JSON(http.StatusOK, success(map[string]any{"templates": templates}))
}

func (s *Server) getProposal(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(http.StatusOK, success(s.proposal))
}

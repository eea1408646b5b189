package fakeapi

import "github.com/jeryldev/sprintboard/internal/model"

// NewDemo returns a server seeded with a small team, two sprints, a few
// announcements and evaluation templates.
func NewDemo(opts ...Option) *Server {
	s := New(opts...)
	s.SetTeam(
		&model.TeamMember{ID: 1, Name: "Demo", LastName: "Student", Email: "demo@example.com"},
		&model.TeamMember{ID: 2, Name: "Ana", LastName: "Rojas"},
		&model.TeamMember{ID: 3, Name: "Luis", LastName: "Vega"},
	)

	first := s.AddSprint("Sprint 1")
	s.AddSprint("Sprint 2")

	s.AddTask(first.ID, model.Task{
		Title:       "Set up repository",
		Description: "Create the project skeleton and CI pipeline.",
		Status:      model.StatusDone,
		AssignedTo:  []model.UserRef{{ID: 1, Name: "Demo", LastName: "Student"}},
		Reviewed:    true,
	})
	s.AddTask(first.ID, model.Task{
		Title:       "Draft requirements",
		Description: "Collect user stories for the first release.",
		Status:      model.StatusDone,
		AssignedTo:  []model.UserRef{{ID: 2, Name: "Ana", LastName: "Rojas"}},
	})
	s.AddTask(first.ID, model.Task{
		Title:       "Login screen",
		Description: "Email and verification code flow.",
		Status:      model.StatusInProgress,
		AssignedTo:  []model.UserRef{{ID: 1, Name: "Demo", LastName: "Student"}, {ID: 3, Name: "Luis", LastName: "Vega"}},
		Resources: []model.Resource{
			{Type: model.ResourceLink, Name: "mockups", URL: "https://example.com/mockups"},
		},
	})
	s.AddTask(first.ID, model.Task{
		Title:       "Database schema",
		Description: "Tables for groups, sprints and tasks.",
		Status:      model.StatusTodo,
		AssignedTo:  []model.UserRef{{ID: 3, Name: "Luis", LastName: "Vega"}},
	})

	s.AddAnnouncement(model.Announcement{
		Content:   "<p>Welcome to the course. Groups must be formed by <strong>Friday</strong>.</p>",
		IsGlobal:  true,
		CreatedAt: "2025-03-03T09:00:00Z",
		User:      &model.UserRef{ID: 9, Name: "Carla", LastName: "Mendez"},
	})
	s.AddAnnouncement(model.Announcement{
		Content:   "<p>Proposal template published.</p><p>Submit part A first &amp; part B after feedback.</p>",
		CreatedAt: "2025-03-10T09:00:00Z",
		User:      &model.UserRef{ID: 9, Name: "Carla", LastName: "Mendez"},
		Files:     []model.AnnouncementFile{{Name: "proposal.pdf", URL: "https://example.com/proposal.pdf", MimeType: "application/pdf"}},
	})
	s.AddAnnouncement(model.Announcement{
		Content:   "<p>Sprint reviews start next week.</p>",
		CreatedAt: "2025-03-17T09:00:00Z",
		User:      &model.UserRef{ID: 9, Name: "Carla", LastName: "Mendez"},
		Videos:    []model.Video{{VideoID: "dQw4w9WgXcQ", Title: "How sprint reviews work"}},
	})

	s.AddTemplate(model.EvaluationTemplate{
		Type: "self",
		Name: "Self evaluation",
		Sections: []model.EvaluationSection{
			{Title: "Contribution", Criteria: []model.EvaluationCriterion{
				{Name: "Commitment"},
				{Name: "Delivered tasks", Description: "Tasks finished within the sprint."},
			}},
		},
	})
	s.AddTemplate(model.EvaluationTemplate{
		Type: "peer",
		Name: "Peer evaluation",
		Sections: []model.EvaluationSection{
			{Title: "Teamwork", Criteria: []model.EvaluationCriterion{{Name: "Communication"}, {Name: "Reliability"}}},
			{Title: "Technical", Criteria: []model.EvaluationCriterion{{Name: "Code quality"}}},
		},
	})

	s.SetProposal(model.ProposalStatus{
		PartA: model.ProposalPart{Status: "approved"},
		PartB: model.ProposalPart{Status: model.ProposalPending},
	})
	return s
}

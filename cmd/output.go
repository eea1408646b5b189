package cmd

import (
	"time"

	"github.com/bytedance/sonic"

	"github.com/jeryldev/sprintboard/internal/model"
	"github.com/jeryldev/sprintboard/internal/session"
)

var jsonOutput bool

type sprintJSON struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
	Current   bool   `json:"current"`
}

type assigneeJSON struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type taskJSON struct {
	ID          int64          `json:"id"`
	Status      string         `json:"status"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Assignees   []assigneeJSON `json:"assignees"`
	Links       []string       `json:"links"`
	Reviewed    bool           `json:"reviewed"`
	Locked      bool           `json:"locked"`
}

type memberJSON struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

type userJSON struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         string `json:"role,omitempty"`
	TokenSubject string `json:"token_subject,omitempty"`
	TokenExpires string `json:"token_expires,omitempty"`
}

type boardJSON struct {
	Sprint    sprintJSON `json:"sprint"`
	FetchedAt string     `json:"fetched_at,omitempty"`
	Offline   bool       `json:"offline"`
	Tasks     []taskJSON `json:"tasks"`
}

type announcementJSON struct {
	ID        int64    `json:"id"`
	CreatedAt string   `json:"created_at"`
	Author    string   `json:"author"`
	Scope     string   `json:"scope"`
	Text      string   `json:"text"`
	Files     []string `json:"files"`
	Links     []string `json:"links"`
	Videos    []string `json:"videos"`
}

type announcementPageJSON struct {
	Page          int                `json:"page"`
	LastPage      int                `json:"last_page"`
	Announcements []announcementJSON `json:"announcements"`
}

type templateJSON struct {
	ID       int64  `json:"id"`
	Type     string `json:"type"`
	Name     string `json:"name"`
	Sections int    `json:"sections"`
	Criteria int    `json:"criteria"`
}

type proposalJSON struct {
	PartA   string `json:"part_a"`
	PartB   string `json:"part_b"`
	Pending bool   `json:"pending"`
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

func toSprintJSON(s *model.Sprint, current bool) sprintJSON {
	return sprintJSON{
		ID:        s.ID,
		Title:     s.Title,
		StartDate: s.StartDate,
		EndDate:   s.EndDate,
		Current:   current,
	}
}

func toTaskJSON(t *model.Task, members []*model.TeamMember) taskJSON {
	names := model.AssigneeNames(t.AssignedTo, members)
	assignees := make([]assigneeJSON, len(t.AssignedTo))
	for i, ref := range t.AssignedTo {
		assignees[i] = assigneeJSON{ID: ref.ID, Name: names[i]}
	}
	links := t.Links()
	if links == nil {
		links = []string{}
	}
	return taskJSON{
		ID:          t.ID,
		Status:      string(t.Status),
		Title:       t.Title,
		Description: t.Description,
		Assignees:   assignees,
		Links:       links,
		Reviewed:    t.Reviewed,
		Locked:      t.Locked(),
	}
}

func toMemberJSON(m *model.TeamMember) memberJSON {
	return memberJSON{
		ID:    m.ID,
		Name:  m.FullName(),
		Email: m.Email,
	}
}

func toUserJSON(u *model.User, tok *session.Token) userJSON {
	out := userJSON{
		ID:    u.ID,
		Name:  u.FullName(),
		Email: u.Email,
		Role:  u.Role,
	}
	if tok != nil {
		out.TokenSubject = tok.Subject
		if !tok.ExpiresAt.IsZero() {
			out.TokenExpires = formatTime(tok.ExpiresAt)
		}
	}
	return out
}

func toAnnouncementPageJSON(p *model.AnnouncementPage) announcementPageJSON {
	out := announcementPageJSON{
		Page:          p.CurrentPage,
		LastPage:      p.LastPage,
		Announcements: make([]announcementJSON, len(p.Items)),
	}
	for i, a := range p.Items {
		j := announcementJSON{
			ID:        a.ID,
			CreatedAt: a.CreatedAt,
			Author:    a.Author(),
			Scope:     a.Scope(),
			Text:      a.Text(),
			Files:     make([]string, 0, len(a.Files)),
			Links:     make([]string, 0, len(a.Links)),
			Videos:    make([]string, 0, len(a.Videos)),
		}
		for _, f := range a.Files {
			j.Files = append(j.Files, f.URL)
		}
		for _, l := range a.Links {
			j.Links = append(j.Links, l.URL)
		}
		for _, v := range a.Videos {
			j.Videos = append(j.Videos, v.URL())
		}
		out.Announcements[i] = j
	}
	return out
}

func toTemplateJSON(t *model.EvaluationTemplate) templateJSON {
	return templateJSON{
		ID:       t.ID,
		Type:     t.Type,
		Name:     t.Name,
		Sections: len(t.Sections),
		Criteria: t.CriteriaCount(),
	}
}

func printJSON(v any) error {
	enc := sonic.ConfigStd.NewEncoder(rootCmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncateStr(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

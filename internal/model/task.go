package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	TitleMaxLength       = 50
	DescriptionMaxLength = 200
)

var (
	ErrTitleRequired    = errors.New("task title cannot be empty")
	ErrAssigneeRequired = errors.New("task must be assigned to at least one team member")
)

type ResourceType string

const (
	ResourceFile ResourceType = "file"
	ResourceLink ResourceType = "link"
)

type Resource struct {
	Type ResourceType `json:"type"`
	Name string       `json:"name"`
	URL  string       `json:"url"`
}

type UserRef struct {
	ID       int64  `json:"id"`
	Name     string `json:"name,omitempty"`
	LastName string `json:"last_name,omitempty"`
}

type Task struct {
	ID          int64      `json:"id"`
	SprintID    int64      `json:"sprint_id,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      Status     `json:"status"`
	AssignedTo  []UserRef  `json:"assigned_to"`
	Resources   []Resource `json:"resources,omitempty"`
	Reviewed    bool       `json:"reviewed"`
}

// Locked reports whether the task is done and reviewed. Locked tasks cannot
// be moved, edited, or deleted.
func (t *Task) Locked() bool {
	return t.Status == StatusDone && t.Reviewed
}

func (t *Task) AssigneeIDs() []int64 {
	ids := make([]int64, 0, len(t.AssignedTo))
	for _, u := range t.AssignedTo {
		ids = append(ids, u.ID)
	}
	return ids
}

func (t *Task) Links() []string {
	var links []string
	for _, r := range t.Resources {
		if r.Type == ResourceLink && r.URL != "" {
			links = append(links, r.URL)
		}
	}
	return links
}

func (t *Task) Clone() *Task {
	c := *t
	c.AssignedTo = append([]UserRef(nil), t.AssignedTo...)
	c.Resources = append([]Resource(nil), t.Resources...)
	return &c
}

// Draft is the user-editable part of a task.
type Draft struct {
	Title       string
	Description string
	AssigneeIDs []int64
	Links       []string
}

func DraftFromTask(t *Task) Draft {
	return Draft{
		Title:       t.Title,
		Description: t.Description,
		AssigneeIDs: t.AssigneeIDs(),
		Links:       t.Links(),
	}
}

func (d Draft) Validate() error {
	if err := ValidateTaskTitle(d.Title); err != nil {
		return err
	}
	if err := ValidateTaskDescription(d.Description); err != nil {
		return err
	}
	if len(d.AssigneeIDs) == 0 {
		return ErrAssigneeRequired
	}
	return nil
}

func ValidateTaskTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return ErrTitleRequired
	}
	if utf8.RuneCountInString(title) > TitleMaxLength {
		return fmt.Errorf("task title cannot exceed %d characters", TitleMaxLength)
	}
	return nil
}

func ValidateTaskDescription(desc string) error {
	if utf8.RuneCountInString(desc) > DescriptionMaxLength {
		return fmt.Errorf("task description cannot exceed %d characters", DescriptionMaxLength)
	}
	return nil
}

func ParseIDList(s string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

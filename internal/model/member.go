package model

import "strings"

type TeamMember struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	LastName string `json:"last_name"`
	Email    string `json:"email,omitempty"`
}

func (m *TeamMember) FullName() string {
	return strings.TrimSpace(m.Name + " " + m.LastName)
}

// User is the signed-in account as reported by the session endpoint.
type User struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	LastName string `json:"last_name"`
	Email    string `json:"email"`
	Role     string `json:"role,omitempty"`
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.Name + " " + u.LastName)
}

const UnassignedName = "unassigned"

// AssigneeNames resolves each reference against the team roster. References
// with no matching member render as UnassignedName.
func AssigneeNames(refs []UserRef, members []*TeamMember) []string {
	names := make([]string, 0, len(refs))
	for _, ref := range refs {
		name := UnassignedName
		for _, m := range members {
			if m.ID == ref.ID {
				name = m.FullName()
				break
			}
		}
		names = append(names, name)
	}
	return names
}

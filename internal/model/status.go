package model

import (
	"fmt"
	"strings"
)

type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// Statuses lists the board columns in render order.
var Statuses = []Status{StatusTodo, StatusInProgress, StatusDone}

func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "todo", "to-do":
		return StatusTodo, nil
	case "in_progress", "in-progress", "progress", "doing":
		return StatusInProgress, nil
	case "done":
		return StatusDone, nil
	default:
		return "", fmt.Errorf("invalid status %q: must be todo, in_progress, or done", s)
	}
}

func (s Status) String() string {
	return string(s)
}

func (s Status) Valid() bool {
	return s.Index() >= 0
}

// Index returns the column position of s, or -1 for an unknown status.
func (s Status) Index() int {
	for i, st := range Statuses {
		if st == s {
			return i
		}
	}
	return -1
}

func (s Status) Title() string {
	switch s {
	case StatusTodo:
		return "Todo"
	case StatusInProgress:
		return "In Progress"
	case StatusDone:
		return "Done"
	default:
		return string(s)
	}
}

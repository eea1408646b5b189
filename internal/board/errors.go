package board

import (
	"errors"
	"fmt"
)

var (
	ErrTaskLocked     = errors.New("task has been reviewed and can no longer change")
	ErrTaskNotFound   = errors.New("task not found on board")
	ErrUnknownColumn  = errors.New("unknown column")
	ErrStaleReference = errors.New("task is no longer at that position")
	ErrNoSprint       = errors.New("no sprint selected")
)

// FetchError reports a failed or malformed task load. The board is empty
// after a FetchError.
type FetchError struct {
	SprintID int64
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("loading tasks for sprint %d: %v", e.SprintID, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// CommandError reports a failed create, edit, delete or move call. Local
// state is left as it was after the optimistic mutation.
type CommandError struct {
	Op     Op
	TaskID int64
	Err    error
}

func (e *CommandError) Error() string {
	if e.TaskID == 0 {
		return fmt.Sprintf("%s task: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s task %d: %v", e.Op, e.TaskID, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

package board

import (
	"fmt"

	"github.com/jeryldev/sprintboard/internal/model"
)

// Ref points at a task slot on the board.
type Ref struct {
	Column model.Status
	Index  int
}

// DragHandler is the boundary between a UI's drag gesture and the board.
// A nil destination in DragEnd cancels the drag.
type DragHandler interface {
	DragStart(ref Ref) (*model.Task, error)
	DragEnd(src Ref, dst *Ref) (Call, error)
}

var _ DragHandler = (*Synchronizer)(nil)

type dragState struct {
	taskID int64
	from   Ref
}

// DragStart picks up the task at ref. Reviewed tasks cannot be picked up.
func (s *Synchronizer) DragStart(ref Ref) (*model.Task, error) {
	if !ref.Column.Valid() {
		return nil, fmt.Errorf("%w %q", ErrUnknownColumn, ref.Column)
	}
	list := s.columns.Tasks(ref.Column)
	if ref.Index < 0 || ref.Index >= len(list) {
		return nil, ErrStaleReference
	}
	t := list[ref.Index]
	if t.Locked() {
		return nil, s.refuse(OpMove, ErrTaskLocked)
	}
	s.drag = &dragState{taskID: t.ID, from: ref}
	return t, nil
}

// Dragging returns the task picked up by DragStart, if any.
func (s *Synchronizer) Dragging() *model.Task {
	if s.drag == nil {
		return nil
	}
	_, _, t := s.columns.Find(s.drag.taskID)
	return t
}

// DragEnd drops the dragged task at dst and starts the move.
func (s *Synchronizer) DragEnd(src Ref, dst *Ref) (Call, error) {
	drag := s.drag
	s.drag = nil
	if dst == nil {
		return nil, nil
	}

	var taskID int64
	if drag != nil && drag.from == src {
		taskID = drag.taskID
	} else if list := s.columns.Tasks(src.Column); src.Index >= 0 && src.Index < len(list) {
		taskID = list[src.Index].ID
	}
	return s.StartMove(taskID, src.Column, src.Index, dst.Column, dst.Index)
}

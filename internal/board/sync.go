package board

import (
	"context"
	"errors"
	"fmt"
	"io"
	"unicode"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/jeryldev/sprintboard/internal/model"
)

// Executor performs the remote task calls the board depends on.
type Executor interface {
	Tasks(ctx context.Context, sprintID int64) ([]*model.Task, error)
	CreateTask(ctx context.Context, sprintID int64, d model.Draft) (*model.Task, error)
	UpdateTask(ctx context.Context, taskID int64, d model.Draft, status model.Status) (*model.Task, error)
	DeleteTask(ctx context.Context, taskID int64) error
}

type Op string

const (
	OpLoad   Op = "load"
	OpMove   Op = "move"
	OpCreate Op = "create"
	OpEdit   Op = "edit"
	OpDelete Op = "delete"
)

// Call is the remote half of a board operation. It touches no board state
// and may run off the event loop.
type Call func(ctx context.Context) Outcome

// Outcome carries a Call's result back to Complete.
type Outcome struct {
	Op         Op
	SprintID   int64
	TaskID     int64
	Task       *model.Task
	Tasks      []*model.Task
	Err        error
	generation uint64
	undo       *moveUndo
}

type moveUndo struct {
	task  *model.Task
	from  model.Status
	index int
}

// Synchronizer keeps the board columns consistent with user intent and the
// remote task store. It is not safe for concurrent use: every Start and
// Complete call must come from the same event loop.
type Synchronizer struct {
	exec     Executor
	notify   Notifier
	log      logrus.FieldLogger
	rollback bool

	columns    *Columns
	sprintID   int64
	generation uint64
	loading    bool
	drag       *dragState
}

type Option func(*Synchronizer)

func WithNotifier(n Notifier) Option {
	return func(s *Synchronizer) { s.notify = n }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Synchronizer) { s.log = l }
}

// WithRollback restores the pre-move arrangement when a move's remote call
// fails. Off by default: the board keeps the optimistic state until the next
// reload.
func WithRollback(enabled bool) Option {
	return func(s *Synchronizer) { s.rollback = enabled }
}

func New(exec Executor, opts ...Option) *Synchronizer {
	discard := logrus.New()
	discard.SetOutput(io.Discard)
	s := &Synchronizer{
		exec:    exec,
		notify:  discardNotifier{},
		log:     discard,
		columns: NewColumns(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Synchronizer) Columns() *Columns {
	return s.columns
}

func (s *Synchronizer) SprintID() int64 {
	return s.sprintID
}

// Loading reports whether a Load is in flight. Only Load gates rendering.
func (s *Synchronizer) Loading() bool {
	return s.loading
}

// StartLoad makes sprintID current and returns the fetch. Outcomes of older
// loads are ignored by Complete.
func (s *Synchronizer) StartLoad(sprintID int64) Call {
	s.generation++
	s.sprintID = sprintID
	s.loading = true
	s.drag = nil
	gen := s.generation
	exec := s.exec
	return func(ctx context.Context) Outcome {
		tasks, err := exec.Tasks(ctx, sprintID)
		return Outcome{Op: OpLoad, SprintID: sprintID, Tasks: tasks, Err: err, generation: gen}
	}
}

// StartMove applies the move locally and returns the remote update. A nil
// Call with a nil error means the move was a no-op.
func (s *Synchronizer) StartMove(taskID int64, src model.Status, srcIdx int, dst model.Status, dstIdx int) (Call, error) {
	if !src.Valid() {
		return nil, s.refuse(OpMove, fmt.Errorf("%w %q", ErrUnknownColumn, src))
	}
	if !dst.Valid() {
		return nil, s.refuse(OpMove, fmt.Errorf("%w %q", ErrUnknownColumn, dst))
	}
	if src == dst && srcIdx == dstIdx {
		return nil, nil
	}

	list := s.columns.Tasks(src)
	if srcIdx < 0 || srcIdx >= len(list) || list[srcIdx].ID != taskID {
		return nil, s.refuse(OpMove, ErrStaleReference)
	}
	orig := list[srcIdx]
	if orig.Locked() {
		return nil, s.refuse(OpMove, ErrTaskLocked)
	}

	var undo *moveUndo
	if s.rollback {
		undo = &moveUndo{task: orig, from: src, index: srcIdx}
	}
	moved := s.columns.move(src, srcIdx, dst, dstIdx)
	s.log.WithFields(logrus.Fields{
		"task_id": taskID,
		"from":    src,
		"to":      dst,
	}).Debug("task moved locally")

	draft := model.Draft{
		Title:       moved.Title,
		Description: moved.Description,
		AssigneeIDs: moved.AssigneeIDs(),
	}
	exec := s.exec
	sprintID := s.sprintID
	gen := s.generation
	return func(ctx context.Context) Outcome {
		t, err := exec.UpdateTask(ctx, taskID, draft, dst)
		return Outcome{Op: OpMove, SprintID: sprintID, TaskID: taskID, Task: t, Err: err, generation: gen, undo: undo}
	}, nil
}

// StartCreate validates the draft and returns the remote create. Nothing is
// added to the board until Complete sees the server's record.
func (s *Synchronizer) StartCreate(sprintID int64, d model.Draft) (Call, error) {
	if sprintID == 0 {
		return nil, s.refuse(OpCreate, ErrNoSprint)
	}
	if err := d.Validate(); err != nil {
		return nil, s.refuse(OpCreate, err)
	}
	exec := s.exec
	return func(ctx context.Context) Outcome {
		t, err := exec.CreateTask(ctx, sprintID, d)
		return Outcome{Op: OpCreate, SprintID: sprintID, Task: t, Err: err}
	}, nil
}

func (s *Synchronizer) StartEdit(taskID int64, d model.Draft) (Call, error) {
	status, _, t := s.columns.Find(taskID)
	if t == nil {
		return nil, s.refuse(OpEdit, ErrTaskNotFound)
	}
	if t.Locked() {
		return nil, s.refuse(OpEdit, ErrTaskLocked)
	}
	if err := d.Validate(); err != nil {
		return nil, s.refuse(OpEdit, err)
	}
	exec := s.exec
	sprintID := s.sprintID
	return func(ctx context.Context) Outcome {
		updated, err := exec.UpdateTask(ctx, taskID, d, status)
		return Outcome{Op: OpEdit, SprintID: sprintID, TaskID: taskID, Task: updated, Err: err}
	}, nil
}

func (s *Synchronizer) StartDelete(taskID int64) (Call, error) {
	_, _, t := s.columns.Find(taskID)
	if t == nil {
		return nil, s.refuse(OpDelete, ErrTaskNotFound)
	}
	if t.Locked() {
		return nil, s.refuse(OpDelete, ErrTaskLocked)
	}
	exec := s.exec
	sprintID := s.sprintID
	return func(ctx context.Context) Outcome {
		err := exec.DeleteTask(ctx, taskID)
		return Outcome{Op: OpDelete, SprintID: sprintID, TaskID: taskID, Err: err}
	}, nil
}

// Complete applies an Outcome on the event loop. Every failure is turned
// into a notice; the returned error is for callers that want to inspect it.
func (s *Synchronizer) Complete(o Outcome) error {
	log := s.log.WithFields(logrus.Fields{"op": o.Op, "sprint_id": o.SprintID})
	if o.TaskID != 0 {
		log = log.WithField("task_id", o.TaskID)
	}

	switch o.Op {
	case OpLoad:
		return s.completeLoad(o, log)
	case OpMove:
		if o.Err != nil {
			switch {
			case o.undo == nil:
			case o.generation != s.generation:
				log.Debug("board reloaded since the move; not rolling back")
			default:
				s.undoMove(o.TaskID, o.undo)
			}
			return s.fail(o, log, "Could not update the task. Please try again.")
		}
		log.Debug("move confirmed")
		return nil
	case OpCreate:
		if o.Err == nil && o.Task == nil {
			o.Err = errors.New("server returned no task")
		}
		if o.Err != nil {
			return s.fail(o, log, "Could not create the task. Please try again.")
		}
		if o.SprintID != s.sprintID {
			log.Info("sprint changed before create completed; not showing task")
			return nil
		}
		created := o.Task.Clone()
		created.Status = model.StatusTodo
		s.columns.Append(model.StatusTodo, created)
		log.WithField("task_id", created.ID).Info("task created")
		s.notify.Notify(Notice{Level: LevelSuccess, Title: "Task created", Message: "The new task was added to the board."})
		return nil
	case OpEdit:
		if o.Err == nil && o.Task == nil {
			o.Err = errors.New("server returned no task")
		}
		if o.Err != nil {
			return s.fail(o, log, "Could not update the task. Please try again.")
		}
		if o.SprintID == s.sprintID {
			updated := o.Task.Clone()
			updated.ID = o.TaskID
			s.columns.ReplaceTask(updated)
		}
		log.Info("task updated")
		s.notify.Notify(Notice{Level: LevelSuccess, Title: "Task updated", Message: "The task was updated."})
		return nil
	case OpDelete:
		if o.Err != nil {
			return s.fail(o, log, "Could not delete the task. Please try again.")
		}
		if o.SprintID == s.sprintID {
			s.columns.Remove(o.TaskID)
		}
		log.Info("task deleted")
		s.notify.Notify(Notice{Level: LevelSuccess, Title: "Task deleted", Message: "The task was removed."})
		return nil
	}
	return fmt.Errorf("unknown board operation %q", o.Op)
}

func (s *Synchronizer) completeLoad(o Outcome, log logrus.FieldLogger) error {
	if o.generation != s.generation {
		log.Debug("discarding stale load")
		return nil
	}
	s.loading = false
	if o.Err != nil {
		s.columns.Reset()
		err := &FetchError{SprintID: o.SprintID, Err: o.Err}
		log.WithError(o.Err).Error("loading tasks failed")
		s.notify.Notify(Notice{Level: LevelError, Title: "Error", Message: "Could not load the tasks. Please try again."})
		return err
	}
	for _, t := range s.columns.Replace(o.Tasks) {
		log.WithFields(logrus.Fields{"task_id": t.ID, "status": t.Status}).Warn("task has unknown status; not shown")
	}
	log.WithField("tasks", s.columns.Count()).Debug("tasks loaded")
	return nil
}

func (s *Synchronizer) undoMove(taskID int64, u *moveUndo) {
	s.columns.Remove(taskID)
	s.columns.Insert(u.from, u.index, u.task)
	s.log.WithField("task_id", taskID).Info("move rolled back")
}

func (s *Synchronizer) fail(o Outcome, log logrus.FieldLogger, msg string) error {
	err := &CommandError{Op: o.Op, TaskID: o.TaskID, Err: o.Err}
	log.WithError(o.Err).Error("remote call failed")
	s.notify.Notify(Notice{Level: LevelError, Title: "Error", Message: msg})
	return err
}

// refuse reports an operation rejected before any remote call.
func (s *Synchronizer) refuse(op Op, err error) error {
	s.log.WithField("op", op).WithError(err).Debug("operation refused")
	s.notify.Notify(Notice{Level: LevelError, Title: "Error", Message: refusalMessage(err)})
	return err
}

func refusalMessage(err error) string {
	switch {
	case errors.Is(err, model.ErrTitleRequired), errors.Is(err, model.ErrAssigneeRequired):
		return "Please fill in the title and assign at least one team member."
	case errors.Is(err, ErrTaskLocked):
		return "This task was reviewed and can no longer be changed."
	case errors.Is(err, ErrNoSprint):
		return "No sprint selected."
	case errors.Is(err, ErrTaskNotFound):
		return "The task is no longer on the board."
	case errors.Is(err, ErrStaleReference):
		return "The board changed. Please try again."
	case errors.Is(err, ErrUnknownColumn):
		return "That column does not exist."
	}
	msg := err.Error()
	if msg == "" {
		return "The operation could not be completed."
	}
	r, n := utf8.DecodeRuneInString(msg)
	return string(unicode.ToUpper(r)) + msg[n:] + "."
}

// Load fetches sprintID and replaces the board.
func (s *Synchronizer) Load(ctx context.Context, sprintID int64) error {
	return s.Complete(s.StartLoad(sprintID)(ctx))
}

func (s *Synchronizer) Move(ctx context.Context, taskID int64, src model.Status, srcIdx int, dst model.Status, dstIdx int) error {
	call, err := s.StartMove(taskID, src, srcIdx, dst, dstIdx)
	if err != nil || call == nil {
		return err
	}
	return s.Complete(call(ctx))
}

func (s *Synchronizer) Create(ctx context.Context, sprintID int64, d model.Draft) (*model.Task, error) {
	call, err := s.StartCreate(sprintID, d)
	if err != nil {
		return nil, err
	}
	o := call(ctx)
	if err := s.Complete(o); err != nil {
		return nil, err
	}
	return o.Task, nil
}

func (s *Synchronizer) Edit(ctx context.Context, taskID int64, d model.Draft) (*model.Task, error) {
	call, err := s.StartEdit(taskID, d)
	if err != nil {
		return nil, err
	}
	o := call(ctx)
	if err := s.Complete(o); err != nil {
		return nil, err
	}
	return o.Task, nil
}

func (s *Synchronizer) Delete(ctx context.Context, taskID int64) error {
	call, err := s.StartDelete(taskID)
	if err != nil {
		return err
	}
	return s.Complete(call(ctx))
}

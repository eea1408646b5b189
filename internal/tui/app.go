package tui

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/sirupsen/logrus"

	"github.com/jeryldev/sprintboard/internal/board"
	"github.com/jeryldev/sprintboard/internal/model"
	"github.com/jeryldev/sprintboard/internal/session"

	tea "github.com/charmbracelet/bubbletea"
)

const toastDuration = 4 * time.Second

type mode int

const (
	modeLoading mode = iota
	modePicker
	modeBoard
	modeTaskView
	modeTaskForm
)

// Remote is the part of the platform API the board UI talks to.
type Remote interface {
	board.Executor
	Sprints(ctx context.Context, groupID int64) ([]*model.Sprint, error)
	TeamMembers(ctx context.Context, groupID int64) ([]*model.TeamMember, error)
}

// Selections persists the chosen sprint and the last loaded tasks.
type Selections interface {
	SprintSelection(groupID int64) (int64, bool, error)
	SaveSprintSelection(groupID, sprintID int64) error
	SaveSnapshot(sprintID int64, tasks []*model.Task) error
}

type Options struct {
	GroupID int64
	// Store may be nil, in which case nothing is remembered between runs.
	Store    Selections
	Poller   *session.Poller
	Rollback bool
	Log      logrus.FieldLogger
}

type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	remote  Remote
	sync    *board.Synchronizer
	store   Selections
	poller  *session.Poller
	log     logrus.FieldLogger
	groupID int64
	mode    mode

	sprints []*model.Sprint
	members []*model.TeamMember
	user    *model.User

	picker   pickerModel
	board    boardModel
	taskView taskViewModel
	form     taskFormModel
	spinner  spinner.Model
	toast    *toast
	toastSeq int
	toastTTL time.Duration
	pending  []tea.Cmd
	err      error

	width  int
	height int
}

type toast struct {
	id     int
	notice board.Notice
}

type errMsg struct {
	err error
}

type outcomeMsg struct {
	outcome board.Outcome
}

type toastExpiredMsg struct {
	id int
}

func NewApp(remote Remote, opts Options) *App {
	log := opts.Log
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		ctx:      ctx,
		cancel:   cancel,
		remote:   remote,
		store:    opts.Store,
		poller:   opts.Poller,
		log:      log,
		groupID:  opts.GroupID,
		mode:     modeLoading,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		toastTTL: toastDuration,
	}
	a.sync = board.New(remote,
		board.WithNotifier(board.NotifierFunc(a.notify)),
		board.WithLogger(log),
		board.WithRollback(opts.Rollback),
	)
	return a
}

func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.bootstrap(), a.spinner.Tick}
	if a.poller != nil {
		cmds = append(cmds, a.pollUser())
	}
	return tea.Batch(cmds...)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m, cmd := a.update(msg)
	if len(a.pending) == 0 {
		return m, cmd
	}
	cmds := append(a.pending, cmd)
	a.pending = nil
	return m, tea.Batch(cmds...)
}

func (a *App) update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, a.quit()
		}

	case spinner.TickMsg:
		if !a.busy() {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case bootstrapMsg:
		return a, a.finishBootstrap(msg)

	case outcomeMsg:
		return a, a.completeOutcome(msg.outcome)

	case userPolledMsg:
		return a, a.handleUserPolled(msg)

	case pollTickMsg:
		return a, a.pollUser()

	case toastExpiredMsg:
		if a.toast != nil && a.toast.id == msg.id {
			a.toast = nil
		}
		return a, nil
	}

	switch a.mode {
	case modeLoading:
		return a.updateLoading(msg)
	case modePicker:
		return a.updatePicker(msg)
	case modeBoard:
		return a.updateBoard(msg)
	case modeTaskView:
		return a.updateTaskView(msg)
	case modeTaskForm:
		return a.updateTaskForm(msg)
	}

	return a, nil
}

func (a *App) View() string {
	switch a.mode {
	case modeLoading:
		return a.viewLoading()
	case modePicker:
		return a.viewPicker()
	case modeBoard:
		return a.viewBoard()
	case modeTaskView:
		return a.viewTask()
	case modeTaskForm:
		return a.viewTaskForm()
	}
	return ""
}

func (a *App) quit() tea.Cmd {
	a.cancel()
	return tea.Quit
}

func (a *App) busy() bool {
	return a.mode == modeLoading || a.sync.Loading()
}

// notify runs on the event loop from inside Synchronizer calls.
func (a *App) notify(n board.Notice) {
	a.toastSeq++
	id := a.toastSeq
	a.toast = &toast{id: id, notice: n}
	a.pending = append(a.pending, tea.Tick(a.toastTTL, func(time.Time) tea.Msg {
		return toastExpiredMsg{id: id}
	}))
}

// run executes a board call off the event loop.
func (a *App) run(call board.Call) tea.Cmd {
	if call == nil {
		return nil
	}
	ctx := a.ctx
	return func() tea.Msg {
		return outcomeMsg{call(ctx)}
	}
}

func (a *App) completeOutcome(o board.Outcome) tea.Cmd {
	err := a.sync.Complete(o)
	a.clampTaskSelection()

	if o.Op != board.OpLoad || err != nil || a.store == nil {
		return nil
	}
	if o.SprintID != a.sync.SprintID() || a.sync.Loading() {
		return nil
	}
	tasks := o.Tasks
	st := a.store
	log := a.log
	return func() tea.Msg {
		if err := st.SaveSnapshot(o.SprintID, tasks); err != nil {
			log.WithError(err).WithField("sprint_id", o.SprintID).Warn("saving task snapshot failed")
		}
		return nil
	}
}

// startLoad switches the board to sprintID and fetches its tasks.
func (a *App) startLoad(sprintID int64) tea.Cmd {
	a.board.moving = false
	return tea.Batch(a.run(a.sync.StartLoad(sprintID)), a.spinner.Tick)
}

func (a *App) currentSprint() *model.Sprint {
	return model.FindSprint(a.sprints, a.sync.SprintID())
}

func (a *App) dims() (int, int) {
	w, h := a.width, a.height
	if w == 0 {
		w = 80
	}
	if h == 0 {
		h = 24
	}
	return w, h
}

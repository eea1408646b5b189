package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"

	"github.com/jeryldev/sprintboard/internal/model"

	tea "github.com/charmbracelet/bubbletea"
)

type bootstrapMsg struct {
	sprints  []*model.Sprint
	members  []*model.TeamMember
	selected int64
}

type userPolledMsg struct {
	user    *model.User
	changed bool
	err     error
}

type pollTickMsg struct{}

// bootstrap fetches the group's sprints and roster together and picks the
// sprint to open.
func (a *App) bootstrap() tea.Cmd {
	remote, groupID, st, log, parent := a.remote, a.groupID, a.store, a.log, a.ctx
	return func() tea.Msg {
		var (
			sprints []*model.Sprint
			members []*model.TeamMember
		)
		g, ctx := errgroup.WithContext(parent)
		g.Go(func() error {
			var err error
			sprints, err = remote.Sprints(ctx, groupID)
			if err != nil {
				return fmt.Errorf("loading sprints: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			var err error
			members, err = remote.TeamMembers(ctx, groupID)
			if err != nil {
				// names fall back to "unassigned"
				log.WithError(err).Warn("loading team members failed")
			}
			return nil
		})
		if err := g.Wait(); err != nil {
			return errMsg{err}
		}

		msg := bootstrapMsg{sprints: sprints, members: members}
		if st != nil {
			id, ok, err := st.SprintSelection(groupID)
			if err != nil {
				log.WithError(err).Warn("reading saved sprint failed")
			}
			if ok && model.FindSprint(sprints, id) != nil {
				msg.selected = id
			}
		}
		if msg.selected == 0 && len(sprints) > 0 {
			msg.selected = sprints[0].ID
		}
		return msg
	}
}

func (a *App) finishBootstrap(msg bootstrapMsg) tea.Cmd {
	a.sprints = msg.sprints
	a.members = msg.members
	a.err = nil
	if msg.selected == 0 {
		a.openPicker()
		return nil
	}
	a.mode = modeBoard
	a.board = boardModel{}
	return a.startLoad(msg.selected)
}

func (a *App) updateLoading(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case errMsg:
		a.err = msg.err
	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			if a.err != nil {
				a.err = nil
				return a, tea.Batch(a.bootstrap(), a.spinner.Tick)
			}
		case "q":
			return a, a.quit()
		}
	}
	return a, nil
}

func (a *App) viewLoading() string {
	w, h := a.dims()
	titleBar := titleBarStyle.Width(w).Render(" sb ")
	statusBar := statusBarStyle.Width(w).Render(" q: quit")

	body := a.spinner.View() + " Loading sprints..."
	if a.err != nil {
		body = lipgloss.JoinVertical(lipgloss.Left,
			errorStyle.Render(fmt.Sprintf("Error: %s", a.err)),
			"",
			helpStyle.Render("r: retry   q: quit"),
		)
	}

	contentHeight := h - lipgloss.Height(titleBar) - lipgloss.Height(statusBar) - 1
	content := lipgloss.Place(w, contentHeight, lipgloss.Center, lipgloss.Center, body)
	return lipgloss.JoinVertical(lipgloss.Left, titleBar, content, statusBar)
}

func (a *App) pollUser() tea.Cmd {
	p, ctx := a.poller, a.ctx
	if p == nil {
		return nil
	}
	return func() tea.Msg {
		u, changed, err := p.Poll(ctx)
		return userPolledMsg{user: u, changed: changed, err: err}
	}
}

func (a *App) handleUserPolled(msg userPolledMsg) tea.Cmd {
	if msg.changed {
		a.user = msg.user
	}
	if a.poller == nil || a.ctx.Err() != nil {
		return nil
	}
	return tea.Tick(a.poller.Interval(), func(time.Time) tea.Msg {
		return pollTickMsg{}
	})
}

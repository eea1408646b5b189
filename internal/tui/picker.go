package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeryldev/sprintboard/internal/model"

	tea "github.com/charmbracelet/bubbletea"
)

type pickerModel struct {
	cursor      int
	filter      string
	filterInput string
	filtering   bool
}

func (a *App) openPicker() {
	a.mode = modePicker
	a.picker = pickerModel{}
	for i, s := range a.sprints {
		if s.ID == a.sync.SprintID() {
			a.picker.cursor = i
		}
	}
}

func (a *App) updatePicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case errMsg:
		a.err = msg.err

	case tea.KeyMsg:
		if a.picker.filtering {
			return a.updatePickerFiltering(msg)
		}

		visible := a.filteredSprints()

		switch msg.String() {
		case "j", "down":
			if a.picker.cursor < len(visible)-1 {
				a.picker.cursor++
			}
		case "k", "up":
			if a.picker.cursor > 0 {
				a.picker.cursor--
			}
		case "enter":
			if len(visible) > 0 && a.picker.cursor < len(visible) {
				return a, a.selectSprint(visible[a.picker.cursor])
			}
		case "/":
			a.picker.filtering = true
			a.picker.filterInput = ""
		case "esc":
			if a.picker.filter != "" {
				a.picker.filter = ""
				a.picker.cursor = 0
			} else if a.sync.SprintID() != 0 {
				a.mode = modeBoard
			}
		case "q":
			return a, a.quit()
		}
	}

	return a, nil
}

func (a *App) updatePickerFiltering(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.picker.filter = strings.TrimSpace(a.picker.filterInput)
		a.picker.filtering = false
		a.picker.cursor = 0
	case "esc":
		a.picker.filtering = false
		a.picker.filter = ""
		a.picker.cursor = 0
	case "backspace":
		if len(a.picker.filterInput) > 0 {
			a.picker.filterInput = a.picker.filterInput[:len(a.picker.filterInput)-1]
		}
	default:
		if len(msg.String()) == 1 {
			a.picker.filterInput += msg.String()
		}
	}
	return a, nil
}

func (a *App) filteredSprints() []*model.Sprint {
	if a.picker.filter == "" {
		return a.sprints
	}
	filter := strings.ToLower(a.picker.filter)
	var result []*model.Sprint
	for _, s := range a.sprints {
		if strings.Contains(strings.ToLower(s.Title), filter) {
			result = append(result, s)
		}
	}
	return result
}

// selectSprint opens sprint on the board and remembers the choice.
func (a *App) selectSprint(sprint *model.Sprint) tea.Cmd {
	a.mode = modeBoard
	a.board = boardModel{}
	cmds := []tea.Cmd{a.startLoad(sprint.ID)}

	if st := a.store; st != nil {
		groupID, log := a.groupID, a.log
		cmds = append(cmds, func() tea.Msg {
			if err := st.SaveSprintSelection(groupID, sprint.ID); err != nil {
				log.WithError(err).Warn("saving sprint selection failed")
			}
			return nil
		})
	}
	return tea.Batch(cmds...)
}

func (a *App) viewPicker() string {
	w, h := a.dims()

	titleBar := titleBarStyle.Width(w).Render(" sb: Select Sprint ")
	statusBar := statusBarStyle.Width(w).Render(" j/k: select   enter: open   /: search   esc: back   q: quit")

	filterBar := ""
	if a.picker.filtering {
		filterBar = filterBarStyle.Render(fmt.Sprintf(" / %s", a.picker.filterInput)) + "█"
	} else if a.picker.filter != "" {
		filterBar = filterBarStyle.Render(fmt.Sprintf(" filter: %s", a.picker.filter)) +
			helpStyle.Render("  (/ to change, esc clears)")
	}

	contentHeight := h - lipgloss.Height(titleBar) - lipgloss.Height(statusBar) - 1
	if filterBar != "" {
		contentHeight--
	}

	var rows []string
	if a.err != nil {
		rows = append(rows, errorStyle.Render(fmt.Sprintf("Error: %s", a.err)), "")
	}

	visible := a.filteredSprints()
	if len(visible) == 0 {
		if a.picker.filter != "" {
			rows = append(rows, helpStyle.Render("No sprints match filter."))
		} else {
			rows = append(rows, helpStyle.Render("This group has no sprints yet."))
		}
	}

	for i, s := range visible {
		cursor := "  "
		style := formValueStyle
		if i == a.picker.cursor {
			cursor = "▸ "
			style = formLabelActiveStyle
		}
		line := cursor + style.Render(s.Title)
		if s.ID == a.sync.SprintID() {
			line += helpStyle.Render("  (current)")
		}
		if s.StartDate != "" || s.EndDate != "" {
			line += helpStyle.Render(fmt.Sprintf("  %s – %s", s.StartDate, s.EndDate))
		}
		rows = append(rows, line)
	}

	dialog := dialogBoxStyle.Width(50).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	content := lipgloss.Place(w, contentHeight, lipgloss.Center, lipgloss.Center, dialog)

	sections := []string{titleBar, content}
	if filterBar != "" {
		sections = append(sections, filterBar)
	}
	sections = append(sections, statusBar)
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeryldev/sprintboard/internal/board"
	"github.com/jeryldev/sprintboard/internal/model"

	tea "github.com/charmbracelet/bubbletea"
)

type taskViewModel struct {
	task       *model.Task
	formWidth  int
	confirming bool
}

// viewedTask returns the board's latest copy of the viewed task, or nil once
// it is gone from the board.
func (a *App) viewedTask() *model.Task {
	if a.taskView.task == nil {
		return nil
	}
	_, _, t := a.sync.Columns().Find(a.taskView.task.ID)
	return t
}

func (a *App) updateTaskView(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return a, nil
	}

	t := a.viewedTask()
	if t == nil {
		a.mode = modeBoard
		a.clampTaskSelection()
		return a, nil
	}

	if a.taskView.confirming {
		a.taskView.confirming = false
		if s := key.String(); s == "y" || s == "Y" {
			a.mode = modeBoard
			return a, a.deleteTask(t)
		}
		return a, nil
	}

	switch key.String() {
	case "e":
		return a, a.editTask(t)
	case "D":
		a.taskView.confirming = true
	case "esc", "q":
		a.mode = modeBoard
	}
	return a, nil
}

func (a *App) editTask(t *model.Task) tea.Cmd {
	if t.Locked() {
		a.notify(board.Notice{Level: board.LevelError, Title: "Error", Message: "This task was reviewed and can no longer be changed."})
		return nil
	}
	a.mode = modeTaskForm
	a.form = newTaskForm(t, a.members, a.width)
	return a.form.Init()
}

func (a *App) viewTask() string {
	w, h := a.dims()

	t := a.viewedTask()
	if t == nil {
		t = a.taskView.task
	}
	fw := a.taskView.formWidth
	labelW := 14

	titleBar := titleBarStyle.Width(w).Render(" View Task ")
	statusText := " e: edit   D: delete   Esc: back"
	if t.Locked() {
		statusText = " Esc: back"
	}
	statusBar := statusBarStyle.Width(w).Render(statusText)

	fieldLabel := func(name string) string {
		return formLabelStyle.Width(labelW).Align(lipgloss.Right).Render(name)
	}
	row := func(label, value string) string {
		return lipgloss.JoinHorizontal(lipgloss.Top, fieldLabel(label), "  ", value)
	}

	rows := []string{
		row("Title", lipgloss.NewStyle().Bold(true).Render(t.Title)),
		row("Status", formValueStyle.Render(t.Status.Title())),
		row("Assigned to", assigneeStyle.Render(strings.Join(model.AssigneeNames(t.AssignedTo, a.members), ", "))),
	}
	if t.Locked() {
		rows = append(rows, row("", lockedStyle.Render("Reviewed, no further changes allowed")))
	}

	for i, r := range t.Resources {
		label := ""
		if i == 0 {
			label = "Resources"
		}
		text := r.Name
		if r.Type == model.ResourceLink {
			text = linkStyle.Render(r.URL)
			if r.Name != "" && r.Name != r.URL {
				text = r.Name + "  " + text
			}
		}
		rows = append(rows, row(label, text))
	}

	dialogH := h * 80 / 100

	if t.Description != "" {
		rows = append(rows, "")
		rendered := formValueStyle.Width(fw - labelW - 4).Render(t.Description)
		descLines := strings.Split(rendered, "\n")

		// border(2) + padding(2) + current rows + blank before desc
		maxDescLines := max(1, dialogH-(4+len(rows)+1))
		if len(descLines) > maxDescLines {
			descLines = append(descLines[:maxDescLines-1], helpStyle.Render("... (truncated)"))
		}
		rows = append(rows, row("Description", strings.Join(descLines, "\n")))
	}

	form := lipgloss.JoinVertical(lipgloss.Left, rows...)
	dialog := dialogBoxStyle.Width(fw).Height(dialogH).Render(form)

	contentHeight := h - lipgloss.Height(titleBar) - lipgloss.Height(statusBar) - 1

	var content string
	if a.taskView.confirming {
		content = renderCenteredConfirm(w, contentHeight, fmt.Sprintf("Delete %q?", truncate(t.Title, 30)))
	} else {
		content = lipgloss.Place(w, contentHeight, lipgloss.Center, lipgloss.Center, dialog)
	}

	sections := []string{titleBar, content}
	if toastBar := a.renderToast(w); toastBar != "" {
		sections = append(sections, toastBar)
	}
	sections = append(sections, statusBar)
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

type taskField int

const (
	fieldTitle taskField = iota
	fieldAssignees
	fieldLinks
	fieldDescription
	fieldCount
)

type taskFormModel struct {
	task    *model.Task
	members []*model.TeamMember
	field   taskField

	titleInput textinput.Model
	linksInput textinput.Model
	descInput  textarea.Model

	memberCursor int
	selected     map[int64]bool
	// unknown holds assignees of the task that are not on the roster, so an
	// edit does not drop them.
	unknown []int64

	formWidth int
	err       error
}

func newTaskForm(t *model.Task, members []*model.TeamMember, termWidth int) taskFormModel {
	formW := max(50, min(termWidth*80/100, 100))
	inputWidth := formW - 22

	ti := textinput.New()
	ti.Placeholder = "Task title"
	ti.Focus()
	ti.CharLimit = model.TitleMaxLength
	ti.Width = inputWidth

	li := textinput.New()
	li.Placeholder = "https://…, https://…"
	li.CharLimit = 500
	li.Width = inputWidth

	di := textarea.New()
	di.Placeholder = "Description..."
	di.CharLimit = model.DescriptionMaxLength
	di.SetWidth(inputWidth + 2)
	di.SetHeight(6)
	di.FocusedStyle.CursorLine = lipgloss.NewStyle()
	di.BlurredStyle.CursorLine = lipgloss.NewStyle()
	di.FocusedStyle.Base = lipgloss.NewStyle()
	di.BlurredStyle.Base = lipgloss.NewStyle()

	f := taskFormModel{
		task:       t,
		members:    members,
		field:      fieldTitle,
		titleInput: ti,
		linksInput: li,
		descInput:  di,
		selected:   make(map[int64]bool),
		formWidth:  formW,
	}

	if t != nil {
		f.titleInput.SetValue(t.Title)
		f.linksInput.SetValue(strings.Join(t.Links(), ", "))
		f.descInput.SetValue(t.Description)
		for _, id := range t.AssigneeIDs() {
			if f.onRoster(id) {
				f.selected[id] = true
			} else {
				f.unknown = append(f.unknown, id)
			}
		}
	}

	return f
}

func (f taskFormModel) Init() tea.Cmd {
	return textinput.Blink
}

func (f *taskFormModel) onRoster(id int64) bool {
	for _, m := range f.members {
		if m.ID == id {
			return true
		}
	}
	return false
}

// draft collects the form into a task draft. Assignees keep roster order.
func (f *taskFormModel) draft() model.Draft {
	var ids []int64
	for _, m := range f.members {
		if f.selected[m.ID] {
			ids = append(ids, m.ID)
		}
	}
	ids = append(ids, f.unknown...)

	d := model.Draft{
		Title:       strings.TrimSpace(f.titleInput.Value()),
		Description: strings.TrimSpace(f.descInput.Value()),
		AssigneeIDs: ids,
		Links:       model.SplitList(f.linksInput.Value()),
	}
	if f.task != nil && d.Links == nil {
		// an empty list clears the task's links
		d.Links = []string{}
	}
	return d
}

func (a *App) updateTaskForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "enter":
			if a.form.field != fieldDescription {
				return a, a.saveTask()
			}
		case "esc":
			a.mode = modeBoard
			return a, nil
		case "tab":
			a.form.blurAll()
			a.form.field = (a.form.field + 1) % fieldCount
			a.form.focusCurrent()
			return a, nil
		case "shift+tab":
			a.form.blurAll()
			a.form.field = (a.form.field - 1 + fieldCount) % fieldCount
			a.form.focusCurrent()
			return a, nil
		}

		if a.form.field == fieldAssignees {
			switch key.String() {
			case "j", "down":
				if a.form.memberCursor < len(a.form.members)-1 {
					a.form.memberCursor++
				}
			case "k", "up":
				if a.form.memberCursor > 0 {
					a.form.memberCursor--
				}
			case " ", "x":
				if a.form.memberCursor < len(a.form.members) {
					id := a.form.members[a.form.memberCursor].ID
					a.form.selected[id] = !a.form.selected[id]
				}
			}
			return a, nil
		}
	}

	var cmd tea.Cmd
	switch a.form.field {
	case fieldTitle:
		a.form.titleInput, cmd = a.form.titleInput.Update(msg)
	case fieldLinks:
		a.form.linksInput, cmd = a.form.linksInput.Update(msg)
	case fieldDescription:
		a.form.descInput, cmd = a.form.descInput.Update(msg)
	}

	return a, cmd
}

func (f *taskFormModel) blurAll() {
	f.titleInput.Blur()
	f.linksInput.Blur()
	f.descInput.Blur()
}

func (f *taskFormModel) focusCurrent() {
	switch f.field {
	case fieldTitle:
		f.titleInput.Focus()
	case fieldLinks:
		f.linksInput.Focus()
	case fieldDescription:
		f.descInput.Focus()
	}
}

// saveTask hands the form to the board. Validation failures keep the form
// open; a started call closes it and reports back through a notice.
func (a *App) saveTask() tea.Cmd {
	d := a.form.draft()

	var (
		call board.Call
		err  error
	)
	if a.form.task == nil {
		call, err = a.sync.StartCreate(a.sync.SprintID(), d)
	} else {
		call, err = a.sync.StartEdit(a.form.task.ID, d)
	}
	if err != nil {
		a.form.err = err
		return nil
	}

	a.mode = modeBoard
	return a.run(call)
}

func (a *App) viewTaskForm() string {
	w, h := a.dims()

	header := "New Task"
	if a.form.task != nil {
		header = "Edit Task"
	}

	titleBar := titleBarStyle.Width(w).Render(fmt.Sprintf(" %s ", header))
	statusBar := statusBarStyle.Width(w).Render(
		" Tab/Shift+Tab: fields   space: toggle assignee   Enter: save   Esc: cancel")

	fw := a.form.formWidth
	labelW := 14

	fieldLabel := func(name string, active bool) string {
		style := formLabelStyle.Width(labelW).Align(lipgloss.Right)
		if active {
			style = formLabelActiveStyle.Width(labelW).Align(lipgloss.Right)
		}
		return style.Render(name)
	}
	row := func(label string, active bool, value string) string {
		return lipgloss.JoinHorizontal(lipgloss.Top, fieldLabel(label, active), "  ", value)
	}

	rows := []string{row("Title", a.form.field == fieldTitle, a.form.titleInput.View())}

	var memberLines []string
	if len(a.form.members) == 0 {
		memberLines = append(memberLines, helpStyle.Render("team roster unavailable"))
	}
	for i, m := range a.form.members {
		box := "[ ]"
		if a.form.selected[m.ID] {
			box = "[x]"
		}
		line := fmt.Sprintf("%s %s", box, m.FullName())
		if a.form.field == fieldAssignees && i == a.form.memberCursor {
			line = formLabelActiveStyle.Render(line)
		}
		memberLines = append(memberLines, line)
	}
	if n := len(a.form.unknown); n > 0 {
		memberLines = append(memberLines, helpStyle.Render(fmt.Sprintf("+%d not on the roster", n)))
	}
	rows = append(rows, row("Assigned to", a.form.field == fieldAssignees, strings.Join(memberLines, "\n")))
	rows = append(rows, row("Links", a.form.field == fieldLinks, a.form.linksInput.View()))
	rows = append(rows, "")
	rows = append(rows, row("Description", a.form.field == fieldDescription, a.form.descInput.View()))

	if a.form.err != nil {
		rows = append(rows, "", row("", false, errorStyle.Render(fmt.Sprintf("! %s", a.form.err))))
	}

	form := lipgloss.JoinVertical(lipgloss.Left, rows...)
	dialog := dialogBoxStyle.Width(fw).Render(form)

	contentHeight := h - lipgloss.Height(titleBar) - lipgloss.Height(statusBar) - 1
	content := lipgloss.Place(w, contentHeight, lipgloss.Center, lipgloss.Center, dialog)

	return lipgloss.JoinVertical(lipgloss.Left, titleBar, content, statusBar)
}

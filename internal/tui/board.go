package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeryldev/sprintboard/internal/board"
	"github.com/jeryldev/sprintboard/internal/model"

	tea "github.com/charmbracelet/bubbletea"
)

const descriptionPreviewLength = 100

type boardModel struct {
	focusCol    int
	focusTask   int
	scrollCol   int
	filter      string
	filterInput string
	filtering   bool
	confirming  bool
	moving      bool
	moveFrom    board.Ref
	moveTask    *model.Task
	showHelp    bool
}

func (a *App) updateBoard(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return a, nil
	}

	if a.board.filtering {
		return a.updateBoardFiltering(key)
	}
	if a.board.confirming {
		return a.updateBoardConfirming(key)
	}
	if a.board.moving {
		return a.updateBoardMoving(key)
	}
	if a.board.showHelp {
		a.board.showHelp = false
		return a, nil
	}

	switch key.String() {
	case "j", "down":
		a.moveSelectionDown()
	case "k", "up":
		a.moveSelectionUp()
	case "h", "left":
		a.focusColumnLeft()
	case "l", "right":
		a.focusColumnRight()
	case "H":
		a.startMoveMode(-1, 0)
	case "L":
		a.startMoveMode(1, 0)
	case "J":
		a.startMoveMode(0, 1)
	case "K":
		a.startMoveMode(0, -1)
	case "n":
		return a, a.newTask()
	case "enter":
		a.viewSelectedTask()
	case "e":
		return a, a.editSelectedTask()
	case "D":
		if a.selectedTask() != nil {
			a.board.confirming = true
		}
	case "r":
		if id := a.sync.SprintID(); id != 0 && !a.sync.Loading() {
			return a, a.startLoad(id)
		}
	case "s":
		a.openPicker()
	case "esc":
		if a.board.filter != "" {
			a.board.filter = ""
			a.board.focusTask = 0
			a.clampTaskSelection()
		}
	case "/":
		a.board.filtering = true
		a.board.filterInput = ""
	case "?":
		a.board.showHelp = !a.board.showHelp
	case "q":
		return a, a.quit()
	}

	return a, nil
}

// startMoveMode picks up the selected task and shifts it one step. The
// filter is cleared so positions on screen match positions on the board.
func (a *App) startMoveMode(colDir, taskDir int) {
	t := a.selectedTask()
	if t == nil || a.sync.Loading() {
		return
	}

	targetCol := a.board.focusCol + colDir
	if targetCol < 0 || targetCol >= len(model.Statuses) {
		return
	}

	status, idx, _ := a.sync.Columns().Find(t.ID)
	if idx < 0 {
		return
	}
	from := board.Ref{Column: status, Index: idx}
	if _, err := a.sync.DragStart(from); err != nil {
		return
	}

	a.board.filter = ""
	a.board.focusTask = idx
	a.board.moving = true
	a.board.moveFrom = from
	a.board.moveTask = t

	if colDir != 0 {
		a.board.focusCol = targetCol
		if n := len(a.tasksForDisplay(a.board.focusCol)); a.board.focusTask > n-1 {
			a.board.focusTask = max(0, n-1)
		}
		a.adjustScroll()
	}

	if taskDir != 0 {
		target := a.board.focusTask + taskDir
		if target < 0 || target >= len(a.tasksForDisplay(a.board.focusCol)) {
			a.cancelMoving()
			return
		}
		a.board.focusTask = target
	}
}

func (a *App) updateBoardMoving(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "h", "H", "left":
		if a.board.focusCol > 0 {
			a.board.focusCol--
			a.clampMoveTarget()
		}
	case "l", "L", "right":
		if a.board.focusCol < len(model.Statuses)-1 {
			a.board.focusCol++
			a.clampMoveTarget()
		}
	case "j", "J", "down":
		if a.board.focusTask < len(a.tasksForDisplay(a.board.focusCol))-1 {
			a.board.focusTask++
		}
	case "k", "K", "up":
		if a.board.focusTask > 0 {
			a.board.focusTask--
		}
	case "enter":
		return a, a.commitMove()
	case "esc":
		a.cancelMoving()
	}
	return a, nil
}

func (a *App) clampMoveTarget() {
	n := len(a.tasksForDisplay(a.board.focusCol))
	if a.board.focusTask > n-1 {
		a.board.focusTask = max(0, n-1)
	}
	a.adjustScroll()
}

func (a *App) commitMove() tea.Cmd {
	dst := board.Ref{Column: model.Statuses[a.board.focusCol], Index: a.board.focusTask}
	from := a.board.moveFrom
	a.board.moving = false
	a.board.moveTask = nil

	call, err := a.sync.DragEnd(from, &dst)
	if err != nil {
		a.board.focusCol = from.Column.Index()
		a.board.focusTask = from.Index
		a.clampTaskSelection()
		return nil
	}
	return a.run(call)
}

func (a *App) cancelMoving() {
	from := a.board.moveFrom
	_, _ = a.sync.DragEnd(from, nil)
	a.board.focusCol = from.Column.Index()
	a.board.focusTask = from.Index
	a.board.moving = false
	a.board.moveTask = nil
	a.adjustScroll()
}

func (a *App) updateBoardFiltering(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.board.filter = strings.TrimSpace(a.board.filterInput)
		a.board.filtering = false
		a.board.focusTask = 0
		a.clampTaskSelection()
	case "esc":
		a.board.filtering = false
		a.board.filter = ""
	case "backspace":
		if len(a.board.filterInput) > 0 {
			a.board.filterInput = a.board.filterInput[:len(a.board.filterInput)-1]
		}
	default:
		if len(msg.String()) == 1 {
			a.board.filterInput += msg.String()
		}
	}
	return a, nil
}

func (a *App) updateBoardConfirming(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a.board.confirming = false
	switch msg.String() {
	case "y", "Y":
		return a, a.deleteTask(a.selectedTask())
	}
	return a, nil
}

func (a *App) deleteTask(t *model.Task) tea.Cmd {
	if t == nil {
		return nil
	}
	call, err := a.sync.StartDelete(t.ID)
	if err != nil {
		return nil
	}
	return a.run(call)
}

func (a *App) matchesFilter(t *model.Task) bool {
	if a.board.filter == "" {
		return true
	}
	filter := strings.ToLower(a.board.filter)
	if strings.Contains(strings.ToLower(t.Title), filter) ||
		strings.Contains(strings.ToLower(t.Description), filter) {
		return true
	}
	for _, name := range model.AssigneeNames(t.AssignedTo, a.members) {
		if strings.Contains(strings.ToLower(name), filter) {
			return true
		}
	}
	return false
}

func (a *App) filteredTasks(colIdx int) []*model.Task {
	tasks := a.sync.Columns().Tasks(model.Statuses[colIdx])
	if a.board.filter == "" {
		return tasks
	}
	var result []*model.Task
	for _, t := range tasks {
		if a.matchesFilter(t) {
			result = append(result, t)
		}
	}
	return result
}

func (a *App) totalFilteredTaskCount() int {
	count := 0
	for i := range model.Statuses {
		count += len(a.filteredTasks(i))
	}
	return count
}

// tasksForDisplay returns the column as rendered, with the task being moved
// shown at its prospective position.
func (a *App) tasksForDisplay(colIdx int) []*model.Task {
	tasks := a.filteredTasks(colIdx)
	if !a.board.moving || a.board.moveTask == nil {
		return tasks
	}

	origCol := a.board.moveFrom.Column.Index()
	if colIdx != origCol && colIdx != a.board.focusCol {
		return tasks
	}

	without := make([]*model.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.ID != a.board.moveTask.ID {
			without = append(without, t)
		}
	}
	if colIdx != a.board.focusCol {
		return without
	}

	idx := min(a.board.focusTask, len(without))
	result := make([]*model.Task, 0, len(without)+1)
	result = append(result, without[:idx]...)
	result = append(result, a.board.moveTask)
	result = append(result, without[idx:]...)
	return result
}

func (a *App) selectedTask() *model.Task {
	if a.board.moving && a.board.moveTask != nil {
		return a.board.moveTask
	}
	tasks := a.filteredTasks(a.board.focusCol)
	if a.board.focusTask >= len(tasks) || a.board.focusTask < 0 {
		return nil
	}
	return tasks[a.board.focusTask]
}

func (a *App) moveSelectionDown() {
	if a.board.focusTask < len(a.filteredTasks(a.board.focusCol))-1 {
		a.board.focusTask++
	}
}

func (a *App) moveSelectionUp() {
	if a.board.focusTask > 0 {
		a.board.focusTask--
	}
}

func (a *App) focusColumnLeft() {
	if a.board.focusCol > 0 {
		a.board.focusCol--
		a.clampTaskSelection()
		a.adjustScroll()
	}
}

func (a *App) focusColumnRight() {
	if a.board.focusCol < len(model.Statuses)-1 {
		a.board.focusCol++
		a.clampTaskSelection()
		a.adjustScroll()
	}
}

func (a *App) clampTaskSelection() {
	if a.board.moving {
		return
	}
	n := len(a.filteredTasks(a.board.focusCol))
	if a.board.focusTask >= n {
		a.board.focusTask = max(0, n-1)
	}
}

func (a *App) visibleColumnCount() int {
	w, _ := a.dims()
	return max(1, min(w/24, len(model.Statuses)))
}

func (a *App) adjustScroll() {
	visible := a.visibleColumnCount()
	maxScroll := len(model.Statuses) - visible
	a.board.scrollCol = max(0, min(a.board.scrollCol, maxScroll))

	if a.board.focusCol < a.board.scrollCol {
		a.board.scrollCol = a.board.focusCol
	}
	if a.board.focusCol >= a.board.scrollCol+visible {
		a.board.scrollCol = a.board.focusCol - visible + 1
	}
}

func (a *App) newTask() tea.Cmd {
	if a.sync.SprintID() == 0 || a.sync.Loading() {
		return nil
	}
	a.mode = modeTaskForm
	a.form = newTaskForm(nil, a.members, a.width)
	return a.form.Init()
}

func (a *App) viewSelectedTask() {
	t := a.selectedTask()
	if t == nil {
		return
	}
	a.taskView = taskViewModel{task: t, formWidth: a.taskFormWidth()}
	a.mode = modeTaskView
}

func (a *App) editSelectedTask() tea.Cmd {
	t := a.selectedTask()
	if t == nil {
		return nil
	}
	return a.editTask(t)
}

func (a *App) taskFormWidth() int {
	return max(50, min(a.width*80/100, 100))
}

func (a *App) viewBoard() string {
	if a.board.showHelp {
		return a.viewBoardHelp()
	}

	w, h := a.dims()

	sprintTitle := "no sprint"
	if s := a.currentSprint(); s != nil {
		sprintTitle = s.Title
	}
	cols := a.sync.Columns()
	total := cols.Count()
	done := cols.Len(model.StatusDone)

	titleText := fmt.Sprintf(" sb: %s ", sprintTitle)
	if total > 0 && !a.sync.Loading() {
		titleText = fmt.Sprintf(" sb: %s  %s %d/%d ", sprintTitle, progressBar(done, total, 10), done, total)
	}
	if a.user != nil {
		if name := a.user.FullName(); name != "" {
			titleText = padBetween(titleText, name+" ", w-2)
		}
	}
	titleBar := titleBarStyle.Width(w).Render(titleText)

	statusText := " hjkl: navigate   HJKL: move   n: new   enter: view   e: edit   D: delete   s: sprints   r: reload   ?: help   q: quit"
	if a.board.moving {
		statusText = fmt.Sprintf(" Moving %q: h/l column  j/k position  enter: drop  esc: cancel",
			truncate(a.board.moveTask.Title, 25))
	}
	statusBar := statusBarStyle.Width(w).Render(statusText)

	filterBar := ""
	if a.board.filtering {
		filterBar = filterBarStyle.Render(fmt.Sprintf(" / %s", a.board.filterInput)) + "█"
	} else if a.board.filter != "" {
		filterBar = filterBarStyle.Render(fmt.Sprintf(" filter: %s (%d tasks)", a.board.filter, a.totalFilteredTaskCount())) +
			helpStyle.Render("  (/ to change, esc clears)")
	}

	toastBar := a.renderToast(w)

	scrollBar := ""
	numCols := len(model.Statuses)
	visibleCols := a.visibleColumnCount()
	if visibleCols < numCols {
		var left, right string
		if a.board.scrollCol > 0 {
			left = fmt.Sprintf("< %d more", a.board.scrollCol)
		}
		if hidden := numCols - a.board.scrollCol - visibleCols; hidden > 0 {
			right = fmt.Sprintf("%d more >", hidden)
		}
		padding := max(1, w-len(left)-len(right))
		scrollBar = helpStyle.Render(left + strings.Repeat(" ", padding) + right)
	}

	contentHeight := h - lipgloss.Height(titleBar) - lipgloss.Height(statusBar) - 1
	for _, bar := range []string{scrollBar, filterBar, toastBar} {
		if bar != "" {
			contentHeight--
		}
	}

	var content string
	switch {
	case a.sync.Loading():
		content = lipgloss.Place(w, contentHeight, lipgloss.Center, lipgloss.Center,
			a.spinner.View()+" Loading tasks...")
	case a.board.confirming:
		content = a.renderDeleteConfirm(w, contentHeight)
	default:
		content = a.renderColumns(w, contentHeight)
	}

	sections := []string{titleBar}
	if scrollBar != "" {
		sections = append(sections, scrollBar)
	}
	sections = append(sections, content)
	if toastBar != "" {
		sections = append(sections, toastBar)
	}
	if filterBar != "" {
		sections = append(sections, filterBar)
	}
	sections = append(sections, statusBar)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (a *App) renderDeleteConfirm(totalWidth, contentHeight int) string {
	t := a.selectedTask()
	if t == nil {
		return renderCenteredConfirm(totalWidth, contentHeight, "No task selected")
	}
	return renderCenteredConfirm(totalWidth, contentHeight, fmt.Sprintf("Delete %q?", truncate(t.Title, 30)))
}

func (a *App) renderColumns(totalWidth, maxHeight int) string {
	startCol := a.board.scrollCol
	endCol := min(startCol+a.visibleColumnCount(), len(model.Statuses))
	displayCount := endCol - startCol
	colWidth := max((totalWidth-(displayCount-1))/displayCount, 16)

	divStr := lipgloss.NewStyle().
		Faint(true).
		Height(maxHeight).
		Render(strings.Repeat("│\n", max(0, maxHeight-1)) + "│")

	var parts []string
	for i := startCol; i < endCol; i++ {
		parts = append(parts, a.renderSingleColumn(i, colWidth, maxHeight))
		if i < endCol-1 {
			parts = append(parts, divStr)
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (a *App) renderSingleColumn(colIdx, width, maxHeight int) string {
	status := model.Statuses[colIdx]
	tasks := a.tasksForDisplay(colIdx)

	hStyle := columnHeaderStyle
	if colIdx == a.board.focusCol {
		hStyle = columnHeaderActiveStyle
	}
	header := hStyle.Width(width).Padding(0, 1).Render(fmt.Sprintf("%s (%d)", status.Title(), len(tasks)))

	separator := lipgloss.NewStyle().
		Faint(true).
		Width(width).
		Padding(0, 1).
		Render(strings.Repeat("─", max(0, width-2)))

	lines := []string{header, separator}

	if len(tasks) == 0 {
		lines = append(lines, emptyColumnStyle.Width(width).Padding(0, 1).Render("no tasks"))
	}

	innerWidth := max(width-4, 10)
	for taskIdx, t := range tasks {
		selected := colIdx == a.board.focusCol && taskIdx == a.board.focusTask

		style := taskNormalBorder.Width(width - 2)
		prefix := " "
		if selected {
			style = taskSelectedBorder.Width(width - 2)
			prefix = "▸"
		}

		content := prefix + truncate(t.Title, innerWidth-1)
		if preview := descriptionPreview(t.Description); preview != "" {
			content += "\n " + helpStyle.Render(truncate(preview, innerWidth-1))
		}
		names := strings.Join(model.AssigneeNames(t.AssignedTo, a.members), ", ")
		if names != "" {
			content += "\n " + assigneeStyle.Render(truncate(names, innerWidth-1))
		}
		var marks []string
		if n := len(t.Resources); n > 0 {
			marks = append(marks, linkStyle.Render(fmt.Sprintf("%d resource(s)", n)))
		}
		if t.Locked() {
			marks = append(marks, lockedStyle.Render("✓ reviewed"))
		}
		if len(marks) > 0 {
			content += "\n " + strings.Join(marks, "  ")
		}

		lines = append(lines, style.Render(content))
	}

	return lipgloss.NewStyle().
		Width(width).
		Height(maxHeight).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (a *App) renderToast(width int) string {
	if a.toast == nil {
		return ""
	}
	n := a.toast.notice
	text := n.Message
	if n.Title != "" {
		text = n.Title + ": " + n.Message
	}
	return toastStyle(n.Level).Width(width).Render(" " + truncate(text, width-2))
}

func (a *App) viewBoardHelp() string {
	w, h := a.dims()

	titleBar := titleBarStyle.Width(w).Render(" sb: help ")
	statusBar := statusBarStyle.Width(w).Render(" Press any key to close help")

	entries := []struct{ key, desc string }{
		{"h / l", "Focus previous/next column"},
		{"j / k", "Select task up/down"},
		{"H / L", "Move task across columns"},
		{"J / K", "Reorder task within column"},
		{"", "  (then h/l/j/k to position, Enter to drop)"},
		{"n", "New task"},
		{"Enter", "View task details"},
		{"e", "Edit task"},
		{"D", "Delete task"},
		{"/", "Filter by title, description or assignee"},
		{"r", "Reload tasks"},
		{"s", "Switch sprint"},
		{"?", "Toggle this help"},
		{"q", "Quit"},
	}

	var helpLines []string
	for _, e := range entries {
		helpLines = append(helpLines, fmt.Sprintf("  %s  %s",
			formLabelActiveStyle.Width(12).Render(e.key), e.desc))
	}

	dialog := dialogBoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, helpLines...))
	contentHeight := h - lipgloss.Height(titleBar) - lipgloss.Height(statusBar) - 1
	content := lipgloss.Place(w, contentHeight, lipgloss.Center, lipgloss.Center, dialog)

	return lipgloss.JoinVertical(lipgloss.Left, titleBar, content, statusBar)
}

func progressBar(done, total, width int) string {
	if total == 0 {
		return ""
	}
	filled := width * done / total
	return strings.Repeat("━", filled) + strings.Repeat("░", width-filled)
}

// padBetween right-aligns right after left within width runes.
func padBetween(left, right string, width int) string {
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return left
	}
	return left + strings.Repeat(" ", gap) + right
}

// descriptionPreview flattens whitespace and cuts the description for a
// card face.
func descriptionPreview(s string) string {
	return truncate(strings.Join(strings.Fields(s), " "), descriptionPreviewLength)
}

func truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}

package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeryldev/sprintboard/internal/board"
)

var (
	titleBarStyle = lipgloss.NewStyle().
			Bold(true).
			Reverse(true).
			Padding(0, 1)

	columnHeaderStyle = lipgloss.NewStyle().
				Bold(true)

	columnHeaderActiveStyle = lipgloss.NewStyle().
				Bold(true).
				Underline(true)

	taskNormalBorder = lipgloss.NewStyle().
				BorderStyle(lipgloss.NormalBorder()).
				Faint(true).
				Padding(0, 1)

	taskSelectedBorder = lipgloss.NewStyle().
				BorderStyle(lipgloss.NormalBorder()).
				Bold(true).
				Padding(0, 1)

	assigneeStyle = lipgloss.NewStyle().
			Faint(true).
			Italic(true)

	lockedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "2", Dark: "10"})

	linkStyle = lipgloss.NewStyle().
			Underline(true)

	helpStyle = lipgloss.NewStyle().
			Faint(true)

	statusBarStyle = lipgloss.NewStyle().
			Faint(true).
			Reverse(true).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Bold(true)

	dialogBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			Padding(1, 2)

	formLabelStyle = lipgloss.NewStyle().
			Faint(true)

	formLabelActiveStyle = lipgloss.NewStyle().
				Bold(true).
				Underline(true)

	formValueStyle = lipgloss.NewStyle()

	emptyColumnStyle = lipgloss.NewStyle().
				Faint(true).
				Italic(true)

	filterBarStyle = lipgloss.NewStyle().
			Bold(true)

	toastStyles = map[board.Level]lipgloss.Style{
		board.LevelInfo: lipgloss.NewStyle(),
		board.LevelSuccess: lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "2", Dark: "10"}),
		board.LevelError: lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "1", Dark: "9"}),
	}
)

func toastStyle(level board.Level) lipgloss.Style {
	if s, ok := toastStyles[level]; ok {
		return s
	}
	return lipgloss.NewStyle()
}

func renderCenteredConfirm(width, height int, prompt string) string {
	dialogContent := lipgloss.JoinVertical(lipgloss.Center,
		errorStyle.Render(prompt),
		"",
		helpStyle.Render("y: confirm   n: cancel"),
	)
	dialog := dialogBoxStyle.Render(dialogContent)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, dialog)
}

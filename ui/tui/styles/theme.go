package styles

import "github.com/charmbracelet/lipgloss"

var (
	Subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	Highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	Special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	Danger    = lipgloss.AdaptiveColor{Light: "#D7263D", Dark: "#FF5F6D"}

	TitleStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Bold(true).
			Foreground(lipgloss.Color("#FFF7DB")).
			Background(Highlight)

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AAA")).
			PaddingLeft(1)

	QueryStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Highlight)

	RecordStyle = lipgloss.NewStyle().
			PaddingLeft(2)

	ErrorStyle = lipgloss.NewStyle().
			PaddingLeft(2).
			Foreground(Danger)

	SummaryStyle = lipgloss.NewStyle().
			PaddingLeft(2).
			Italic(true).
			Foreground(Special)

	StatusStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFF"))

	FooterStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(Subtle).
			Foreground(lipgloss.Color("#777"))
)

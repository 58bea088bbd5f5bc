package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/allbin/go-uart/internal/tui/colors"
)

var (
	// Header styles
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colors.Mauve).
			Background(colors.Surface0).
			Padding(0, 1)

	// Line status styles
	StatusOpenStyle = lipgloss.NewStyle().
			Foreground(colors.Green).
			Bold(true)

	StatusClosedStyle = lipgloss.NewStyle().
				Foreground(colors.Red).
				Bold(true)

	StatusOpeningStyle = lipgloss.NewStyle().
				Foreground(colors.Yellow).
				Bold(true)

	// Content area styles
	ContentBorderStyle = lipgloss.NewStyle().
				BorderTop(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(colors.Surface1)

	// Pattern trigger highlight
	MatchStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colors.Base).
			Background(colors.Teal).
			Padding(0, 1)

	// Error styles
	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colors.Red).
			Align(lipgloss.Center)
)

type StatusType int

const (
	StatusOpen StatusType = iota
	StatusClosed
	StatusOpening
	StatusError
)

func GetStatusStyle(status StatusType) lipgloss.Style {
	switch status {
	case StatusOpen:
		return StatusOpenStyle
	case StatusOpening:
		return StatusOpeningStyle
	default:
		return StatusClosedStyle
	}
}

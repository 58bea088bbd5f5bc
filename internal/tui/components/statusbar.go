package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/allbin/go-uart"
	"github.com/allbin/go-uart/internal/tui/colors"
)

// LineInfo describes the line settings shown in the status bar.
type LineInfo struct {
	BaudRate int
	CharSize int
	StopBits int
	Parity   uart.Parity
	Matches  int
}

type StatusBar struct {
	device   string
	status   string
	err      error
	width    int
	lineInfo *LineInfo
}

func NewStatusBar(device string) *StatusBar {
	return &StatusBar{
		device: device,
		status: "Opening...",
	}
}

func (sb *StatusBar) SetWidth(width int) {
	sb.width = width
}

func (sb *StatusBar) SetLineInfo(info *LineInfo) {
	sb.lineInfo = info
}

func (sb *StatusBar) SetOpen() {
	sb.status = "open"
	sb.err = nil
}

func (sb *StatusBar) SetClosed(err error) {
	sb.status = "closed"
	sb.err = err
}

func parityToString(p uart.Parity) string {
	switch p {
	case uart.ParityEven:
		return "E"
	case uart.ParityOdd:
		return "O"
	default:
		return "N"
	}
}

// View renders the one-line status bar: device and line state on the left,
// line settings and match count on the right.
func (sb *StatusBar) View(buffered int, timestamp string) string {
	width := sb.width
	if width <= 0 {
		width = 80
	}

	deviceStyle := lipgloss.NewStyle().
		Foreground(colors.Mauve).
		Bold(true).
		Padding(0, 1)
	device := deviceStyle.Render(sb.device)

	var indicator string
	switch {
	case sb.err != nil:
		indicator = lipgloss.NewStyle().Foreground(colors.Red).Render("✗")
	case sb.status == "open":
		indicator = lipgloss.NewStyle().Foreground(colors.Green).Render("●")
	default:
		indicator = lipgloss.NewStyle().Foreground(colors.Yellow).Render("○")
	}

	var lineInfo string
	if sb.lineInfo != nil {
		lineInfo = fmt.Sprintf("⚡ %d baud %d%s%d",
			sb.lineInfo.BaudRate,
			sb.lineInfo.CharSize,
			parityToString(sb.lineInfo.Parity),
			sb.lineInfo.StopBits)
		if sb.lineInfo.Matches > 0 {
			lineInfo += fmt.Sprintf("  ⌖ %d patterns", sb.lineInfo.Matches)
		}
	} else {
		lineInfo = "⚡ uart"
	}
	lineDetails := lipgloss.NewStyle().
		Foreground(colors.Subtext0).
		Padding(0, 1).
		Render(lineInfo)

	buffdisp := lipgloss.NewStyle().
		Foreground(colors.Subtext1).
		Padding(0, 1).
		Render(fmt.Sprintf("rx:%d", buffered))

	timeDisp := lipgloss.NewStyle().
		Foreground(colors.Subtext1).
		Padding(0, 1).
		Render(timestamp)

	divider := lipgloss.NewStyle().
		Foreground(colors.Surface2).
		Padding(0, 1).
		Render("│")

	leftSide := lipgloss.JoinHorizontal(lipgloss.Left, device, indicator, divider)
	rightSide := lipgloss.JoinHorizontal(lipgloss.Left, lineDetails, divider, buffdisp, divider, timeDisp)

	spacerWidth := width - lipgloss.Width(leftSide) - lipgloss.Width(rightSide)
	if spacerWidth < 1 {
		spacerWidth = 1
	}
	spacer := lipgloss.NewStyle().Width(spacerWidth).Render("")

	barStyle := lipgloss.NewStyle().
		Foreground(colors.Text).
		Background(colors.Surface0).
		Width(width)

	return barStyle.Render(lipgloss.JoinHorizontal(lipgloss.Left, leftSide, spacer, rightSide))
}

package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/allbin/go-uart/internal/tui/colors"
	"github.com/allbin/go-uart/internal/tui/styles"
)

// DataReceivedMsg carries a chunk of line data into the TUI.
type DataReceivedMsg struct {
	Timestamp time.Time
	Data      []byte
	IsTX      bool
}

// MatchTriggeredMsg reports that a registered pattern completed in the
// receive stream.
type MatchTriggeredMsg struct {
	Timestamp time.Time
	Pattern   []byte
	Data      any
}

type DisplayMode struct {
	ShowHex   bool
	ShowASCII bool
}

type DataFormatter struct {
	mode DisplayMode
}

func NewDataFormatter(showHex, showASCII bool) *DataFormatter {
	return &DataFormatter{
		mode: DisplayMode{
			ShowHex:   showHex,
			ShowASCII: showASCII,
		},
	}
}

func (df *DataFormatter) GetDisplayMode() DisplayMode {
	return df.mode
}

func (df *DataFormatter) ToggleHex() {
	df.mode.ShowHex = !df.mode.ShowHex
}

func (df *DataFormatter) ToggleASCII() {
	df.mode.ShowASCII = !df.mode.ShowASCII
}

func (df *DataFormatter) FormatMessage(msg DataReceivedMsg) string {
	timestamp := msg.Timestamp.Format("15:04:05.000")

	var indicator string
	if msg.IsTX {
		indicator = lipgloss.NewStyle().
			Foreground(colors.Peach).
			Bold(true).
			Render("↗ TX")
	} else {
		indicator = lipgloss.NewStyle().
			Foreground(colors.Sky).
			Bold(true).
			Render("↙ RX")
	}

	var parts []string

	if df.mode.ShowHex {
		parts = append(parts, fmt.Sprintf("HEX: % X", msg.Data))
	}

	if df.mode.ShowASCII {
		parts = append(parts, fmt.Sprintf("ASCII: %s", printable(msg.Data)))
	}

	if !df.mode.ShowHex && !df.mode.ShowASCII {
		parts = append(parts, fmt.Sprintf("BYTES: %d", len(msg.Data)))
	}

	timestampStyled := lipgloss.NewStyle().
		Foreground(colors.Subtext0).
		Render(fmt.Sprintf("[%s]", timestamp))

	return fmt.Sprintf("%s %s: %s", timestampStyled, indicator, strings.Join(parts, "  "))
}

// FormatMatch renders a pattern trigger as its own highlighted line.
func (df *DataFormatter) FormatMatch(msg MatchTriggeredMsg) string {
	timestamp := msg.Timestamp.Format("15:04:05.000")

	timestampStyled := lipgloss.NewStyle().
		Foreground(colors.Subtext0).
		Render(fmt.Sprintf("[%s]", timestamp))

	label := styles.MatchStyle.Render("MATCH")

	detail := fmt.Sprintf("%q", msg.Pattern)
	if s, ok := msg.Data.(string); ok && s != "" {
		detail += " (" + s + ")"
	}

	return fmt.Sprintf("%s %s %s", timestampStyled, label, detail)
}

func (df *DataFormatter) FormatMessages(messages []DataReceivedMsg) []string {
	formatted := make([]string, len(messages))
	for i, msg := range messages {
		formatted[i] = df.FormatMessage(msg)
	}
	return formatted
}

// printable maps non-printable bytes to dots so control bytes never leak
// terminal escape sequences into the display.
func printable(data []byte) string {
	var b strings.Builder
	for _, c := range data {
		if c >= 32 && c <= 126 {
			b.WriteByte(c)
		} else {
			b.WriteByte('.')
		}
	}
	return b.String()
}

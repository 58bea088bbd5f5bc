package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// Terminal is a scrolling viewport over formatted line data.
type Terminal struct {
	viewport  viewport.Model
	formatter *DataFormatter
	lines     []string
}

func NewTerminal(width, height int) *Terminal {
	return &Terminal{
		viewport:  viewport.New(width, height),
		formatter: NewDataFormatter(true, true),
		lines:     make([]string, 0),
	}
}

func (t *Terminal) SetSize(width, height int) {
	t.viewport.Width = width
	t.viewport.Height = height
}

func (t *Terminal) Width() int {
	return t.viewport.Width
}

func (t *Terminal) AddMessage(msg DataReceivedMsg) {
	t.appendLine(t.formatter.FormatMessage(msg))
}

func (t *Terminal) AddMatch(msg MatchTriggeredMsg) {
	t.appendLine(t.formatter.FormatMatch(msg))
}

func (t *Terminal) appendLine(line string) {
	t.lines = append(t.lines, line)
	t.viewport.SetContent(strings.Join(t.lines, "\n"))
	t.viewport.GotoBottom()
}

// Refresh reformats all raw data, used after a display mode toggle. Match
// lines are dropped on refresh since only raw line data is retained.
func (t *Terminal) Refresh(rawData []DataReceivedMsg) {
	t.lines = t.formatter.FormatMessages(rawData)
	t.viewport.SetContent(strings.Join(t.lines, "\n"))
	t.viewport.GotoBottom()
}

func (t *Terminal) Clear() {
	t.lines = make([]string, 0)
	t.viewport.SetContent("")
}

func (t *Terminal) ToggleHex() {
	t.formatter.ToggleHex()
}

func (t *Terminal) ToggleASCII() {
	t.formatter.ToggleASCII()
}

func (t *Terminal) Update(msg tea.Msg) (viewport.Model, tea.Cmd) {
	// Only window resizes reach the viewport so it cannot swallow the
	// command key bindings.
	switch msg.(type) {
	case tea.WindowSizeMsg:
		return t.viewport.Update(msg)
	default:
		return t.viewport, nil
	}
}

func (t *Terminal) View() string {
	return t.viewport.View()
}

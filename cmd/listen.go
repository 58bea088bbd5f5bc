/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/allbin/go-uart"
	"github.com/allbin/go-uart/hostport"
	"github.com/allbin/go-uart/internal/tui/components"
	"github.com/allbin/go-uart/internal/tui/keys"
	"github.com/allbin/go-uart/internal/tui/models"
	"github.com/allbin/go-uart/internal/tui/styles"
)

// listenCmd represents the listen command
var listenCmd = &cobra.Command{
	Use:   "listen <port>",
	Short: "Listen for data on a serial port with real-time display",
	Long: `Listen for incoming data on a serial port with a real-time TUI display.

This command opens the specified serial port through the buffered transport
engine and displays incoming data as it arrives. Features include:
- Real-time data streaming with timestamps
- ASCII and hex display modes
- Pattern matching on the receive stream (--match)
- Line status and buffer level in the status bar

Example usage:
  uart listen /dev/ttyUSB0
  uart listen /dev/ttyUSB0 --baud 115200
  uart listen /dev/ttyUSB0 --match $'OK\r\n' --match ERROR`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		device := args[0]
		patterns, _ := cmd.Flags().GetStringArray("match")

		if err := runListenTUI(device, patterns); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(listenCmd)

	listenCmd.Flags().StringArray("match", nil, "Byte sequence to watch for in the receive stream (repeatable, max 8)")
}

// listenModel represents the Bubble Tea model for the listen command
type listenModel struct {
	*models.UARTModel
	terminal  *components.Terminal
	statusBar *components.StatusBar
	help      help.Model
	keys      keys.TerminalKeys
}

func runListenTUI(device string, patterns []string) error {
	model := models.NewUARTModel(device)
	m := listenModel{
		UARTModel: model,
		terminal:  components.NewTerminal(80, 20),
		statusBar: components.NewStatusBar(device),
		help:      help.New(),
		keys:      keys.NewTerminalKeys(),
	}

	p := tea.NewProgram(&m, tea.WithAltScreen())

	// Open the port in the background so the UI comes up immediately.
	go func() {
		port, err := hostport.Open(device)
		if err != nil {
			p.Send(models.LineStatusMsg{Open: false, Error: err})
			return
		}

		u, err := uart.New(port, uart.WithBaudRate(viper.GetInt("baud")))
		if err != nil {
			port.Close()
			p.Send(models.LineStatusMsg{Open: false, Error: err})
			return
		}

		for _, pattern := range patterns {
			seq := []byte(pattern)
			if err := u.RegisterMatch(seq, func(data any) {
				p.Send(components.MatchTriggeredMsg{
					Timestamp: time.Now(),
					Pattern:   seq,
					Data:      data,
				})
			}, pattern); err != nil {
				port.Close()
				p.Send(models.LineStatusMsg{Open: false, Error: err})
				return
			}
		}

		m.SetLine(u, port)

		cfg := u.Config()
		m.statusBar.SetLineInfo(&components.LineInfo{
			BaudRate: cfg.BaudRate,
			CharSize: cfg.CharSize,
			StopBits: cfg.StopBits,
			Parity:   cfg.Parity,
			Matches:  len(patterns),
		})
		p.Send(models.LineStatusMsg{Open: true})

		// Drain the receive ring and sweep triggered patterns.
		buf := make([]byte, 4096)
		ticker := time.NewTicker(10 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-m.Context().Done():
				return
			case <-ticker.C:
				u.SweepMatches()
				n, err := u.Read(buf)
				if err != nil || n == 0 {
					continue
				}
				data := make([]byte, n)
				copy(data, buf[:n])
				p.Send(components.DataReceivedMsg{
					Timestamp: time.Now(),
					Data:      data,
				})
			}
		}
	}()

	_, err := p.Run()
	m.Cleanup()
	return err
}

func (m *listenModel) Init() tea.Cmd {
	return nil
}

func (m *listenModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// One line for the status bar.
		m.terminal.SetSize(msg.Width, msg.Height-1)
		m.statusBar.SetWidth(msg.Width)
		m.SetReady(true)

	case models.LineStatusMsg:
		m.SetOpen(msg.Open)
		if msg.Error != nil {
			m.SetError(msg.Error)
			m.statusBar.SetClosed(msg.Error)
		} else {
			m.statusBar.SetOpen()
		}

	case components.DataReceivedMsg:
		if !m.IsReady() {
			m.terminal.SetSize(80, 20)
			m.SetReady(true)
		}
		m.AddRawData(msg)
		m.terminal.AddMessage(msg)

	case components.MatchTriggeredMsg:
		m.terminal.AddMatch(msg)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.Cleanup()
			return m, tea.Quit

		case key.Matches(msg, m.keys.Clear):
			m.ClearData()
			m.terminal.Clear()

		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll

		case key.Matches(msg, m.keys.ToggleHex):
			m.terminal.ToggleHex()
			m.terminal.Refresh(m.RawData())

		case key.Matches(msg, m.keys.ToggleASCII):
			m.terminal.ToggleASCII()
			m.terminal.Refresh(m.RawData())

		case key.Matches(msg, m.keys.FlushRx):
			if u := m.Engine(); u != nil {
				u.FlushRx()
			}
		}
	}

	var cmd tea.Cmd
	switch msg.(type) {
	case tea.WindowSizeMsg:
		_, cmd = m.terminal.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *listenModel) View() string {
	var content string
	if m.IsReady() {
		content = m.terminal.View()
	} else {
		content = "Initializing..."
	}

	buffered := 0
	if u := m.Engine(); u != nil {
		buffered = u.Buffered()
	}

	width := 80
	if m.IsReady() {
		width = m.terminal.Width()
	}
	m.statusBar.SetWidth(width)
	statusBar := m.statusBar.View(buffered, time.Now().Format("15:04:05"))

	contentWithBorder := styles.ContentBorderStyle.Render(content)

	if m.help.ShowAll {
		helpStyle := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 2).
			Margin(1, 0)
		return lipgloss.JoinVertical(
			lipgloss.Left,
			contentWithBorder,
			helpStyle.Render(m.help.View(m.keys)),
			statusBar,
		)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		contentWithBorder,
		statusBar,
	)
}

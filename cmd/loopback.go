/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/allbin/go-uart"
	"github.com/allbin/go-uart/simport"
)

// loopbackCmd represents the loopback command
var loopbackCmd = &cobra.Command{
	Use:   "loopback [data]",
	Short: "Run a loopback demonstration without hardware",
	Long: `Run the transport engine against a simulated serial port whose transmit
side is wired back into its receive side.

The given data (default "Hello, UART!") is queued on the transmit ring,
travels through the simulated wire, lands in the receive ring and is read
back out. With --match, a pattern is registered on the receive stream and
its trigger is reported.

This needs no hardware and is useful for sanity-checking the engine and
for demonstrating the pattern matcher.

Example usage:
  uart loopback
  uart loopback "AT\r\nOK\r\n" --match "OK"`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		data := "Hello, UART!"
		if len(args) == 1 {
			data = args[0]
		}
		pattern, _ := cmd.Flags().GetString("match")

		if err := runLoopback(data, pattern); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(loopbackCmd)

	loopbackCmd.Flags().StringP("match", "m", "", "Pattern to watch for in the looped-back data")
}

func runLoopback(data, pattern string) error {
	infoStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("99")).Bold(true)
	successStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("40")).Bold(true)

	port := simport.New(simport.WithLoopback())
	defer port.Close()

	u, err := uart.New(port)
	if err != nil {
		return err
	}

	matched := false
	if pattern != "" {
		if err := u.RegisterMatch([]byte(pattern), func(any) { matched = true }, pattern); err != nil {
			return err
		}
		fmt.Printf("%s Watching for %q\n", infoStyle.Render("⌖"), pattern)
	}

	fmt.Printf("%s Sending %d bytes through the loopback...\n", infoStyle.Render("📤"), len(data))
	u.Send([]byte(data))
	u.FlushTx()

	// The looped-back bytes arrive asynchronously.
	deadline := time.Now().Add(time.Second)
	for u.Buffered() < len(data) && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	got := make([]byte, u.Buffered())
	u.Recv(got)
	fmt.Printf("%s Received %d bytes: %q\n", successStyle.Render("✓"), len(got), got)

	if pattern != "" {
		u.SweepMatches()
		if matched {
			fmt.Printf("%s Pattern %q triggered\n", successStyle.Render("✓"), pattern)
		} else {
			fmt.Printf("Pattern %q did not trigger\n", pattern)
		}
	}

	return nil
}

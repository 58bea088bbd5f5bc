/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/allbin/go-uart"
	"github.com/allbin/go-uart/hostport"
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send [data] <port>",
	Short: "Send data to a serial port",
	Long: `Send data to a serial port through the buffered transport engine.

Data can be provided as:
- Command line argument: uart send "Hello World" /dev/ttyUSB0
- From stdin (pipe): echo "test data" | uart send /dev/ttyUSB0
- Interactive mode: uart send /dev/ttyUSB0 (prompts for input)

The engine queues the data in its transmit ring and the command waits until
the ring has fully drained onto the wire before exiting.

Example usage:
  uart send "Hello World" /dev/ttyUSB0
  uart send "AT+GMR" /dev/ttyUSB0 --newline
  echo "test" | uart send /dev/ttyUSB0
  uart send /dev/ttyUSB0  # Interactive mode`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var data string
		var device string

		// Either "send data port" or "send port" with stdin/interactive input.
		if len(args) == 1 {
			device = args[0]
			stat, err := os.Stdin.Stat()
			if err != nil || (stat.Mode()&os.ModeCharDevice) != 0 {
				data = promptForData()
			} else {
				stdinData, err := io.ReadAll(os.Stdin)
				if err != nil {
					fmt.Fprintf(os.Stderr, "Error reading from stdin: %v\n", err)
					os.Exit(1)
				}
				data = strings.TrimRight(string(stdinData), "\r\n")
			}
		} else {
			data = args[0]
			device = args[1]
		}

		addNewline, _ := cmd.Flags().GetBool("newline")
		hexMode, _ := cmd.Flags().GetBool("hex")

		if hexMode {
			decoded, err := parseHexString(data)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Invalid hex data: %v\n", err)
				os.Exit(1)
			}
			data = decoded
		}

		if err := sendData(device, data, addNewline && !hexMode); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().BoolP("newline", "n", false, "Terminate the data with a CRLF line ending")
	sendCmd.Flags().BoolP("hex", "x", false, "Interpret data as hexadecimal (e.g., '48656c6c6f' for 'Hello')")
}

func promptForData() string {
	promptStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("99"))

	fmt.Print(promptStyle.Render("Enter data to send: "))

	scanner := bufio.NewScanner(os.Stdin)
	if scanner.Scan() {
		return scanner.Text()
	}
	return ""
}

func parseHexString(hexStr string) (string, error) {
	hexStr = strings.ReplaceAll(hexStr, " ", "")
	hexStr = strings.ReplaceAll(hexStr, "0x", "")
	hexStr = strings.ReplaceAll(hexStr, "0X", "")

	if len(hexStr)%2 != 0 {
		return "", fmt.Errorf("hex string must have even length")
	}

	var result strings.Builder
	for i := 0; i < len(hexStr); i += 2 {
		var b byte
		if _, err := fmt.Sscanf(hexStr[i:i+2], "%x", &b); err != nil {
			return "", fmt.Errorf("invalid hex byte '%s': %v", hexStr[i:i+2], err)
		}
		result.WriteByte(b)
	}

	return result.String(), nil
}

func sendData(device, data string, addNewline bool) error {
	infoStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("99")).
		Bold(true)

	successStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("40")).
		Bold(true)

	fmt.Printf("%s Opening %s...\n", infoStyle.Render("⚡"), device)

	port, err := hostport.Open(device)
	if err != nil {
		return err
	}
	defer port.Close()

	u, err := uart.New(port, uart.WithBaudRate(viper.GetInt("baud")))
	if err != nil {
		return err
	}

	fmt.Printf("%s Connected successfully\n", successStyle.Render("✓"))
	fmt.Printf("%s Sending %d bytes...\n", infoStyle.Render("📤"), len(data))

	u.Send([]byte(data))
	if addNewline {
		u.Newline()
	}

	// Wait for the transmit ring to drain, then for the kernel to finish.
	u.FlushTx()
	if err := port.Drain(); err != nil {
		return err
	}

	fmt.Printf("%s Successfully sent %d bytes\n", successStyle.Render("✓"), len(data))

	preview := data
	if len(preview) > 50 {
		preview = preview[:50] + "..."
	}
	preview = strings.Map(func(r rune) rune {
		if r < 32 || r > 126 {
			return '·'
		}
		return r
	}, preview)
	fmt.Printf("%s Data: %s\n", infoStyle.Render("📋"), preview)

	return nil
}

/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/allbin/go-uart"
	"github.com/allbin/go-uart/hostport"
)

// captureCmd represents the capture command
var captureCmd = &cobra.Command{
	Use:   "capture <port> <output-file>",
	Short: "Capture serial data to a file",
	Long: `Capture incoming serial data to a file for later parsing.

Reads data from the specified serial port through the buffered transport
engine and writes it directly to the output file. Runs continuously until
interrupted (Ctrl+C).

The output file is opened in append mode, allowing you to resume captures
without overwriting existing data.

Example usage:
  uart capture /dev/ttyUSB0 data.log
  uart capture /dev/ttyUSB0 output.txt --baud 115200
  uart capture /dev/ttyUSB0 capture.log --console`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		device := args[0]
		outputPath := args[1]
		showConsole, _ := cmd.Flags().GetBool("console")

		if err := runCapture(device, outputPath, showConsole); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(captureCmd)

	captureCmd.Flags().BoolP("console", "c", false, "Echo captured data to stdout as well")
}

func runCapture(device, outputPath string, showConsole bool) error {
	out, err := os.OpenFile(outputPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open output file: %v", err)
	}
	defer out.Close()

	port, err := hostport.Open(device)
	if err != nil {
		return err
	}
	defer port.Close()

	u, err := uart.New(port, uart.WithBaudRate(viper.GetInt("baud")))
	if err != nil {
		return err
	}

	fmt.Printf("Capturing %s to %s (Ctrl+C to stop)\n", device, outputPath)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	buf := make([]byte, 4096)
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	var total int
	for {
		select {
		case <-sigCh:
			fmt.Printf("\nCaptured %d bytes\n", total)
			return nil
		case <-ticker.C:
			n, err := u.Read(buf)
			if err != nil || n == 0 {
				continue
			}
			if _, err := out.Write(buf[:n]); err != nil {
				return fmt.Errorf("failed to write capture: %v", err)
			}
			if showConsole {
				os.Stdout.Write(buf[:n])
			}
			total += n
		}
	}
}

/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/evertras/bubble-table/table"
	"github.com/spf13/cobra"

	"github.com/allbin/go-uart/hostport"
	"github.com/allbin/go-uart/internal/tui/colors"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available serial ports",
	Long: `List all available serial ports on the system.

This command scans for communication-capable serial devices including:
- USB serial adapters (ttyUSB*)
- USB CDC/ACM devices (ttyACM*)
- Standard serial ports (ttyS*)
- ARM/Raspberry Pi ports (ttyAMA*)
- And other platform-specific serial devices

Virtual terminals and pseudo-terminals are excluded from the listing.`,
	Run: func(cmd *cobra.Command, args []string) {
		ports, err := hostport.ListPorts()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing ports: %v\n", err)
			os.Exit(1)
		}

		filterType, _ := cmd.Flags().GetString("filter")
		tableFormat, _ := cmd.Flags().GetBool("table")

		filtered := filterPorts(ports, filterType)
		if len(filtered) == 0 {
			if filterType != "" {
				fmt.Printf("No serial ports found matching filter: %s\n", filterType)
			} else {
				fmt.Println("No serial ports found")
			}
			return
		}

		if tableFormat {
			renderTable(filtered)
		} else {
			for _, port := range filtered {
				fmt.Println(port.Path)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringP("filter", "f", "", "Filter by port type: usb, standard, arm, all")
	listCmd.Flags().BoolP("table", "t", false, "Display output in a styled table format")
}

// filterPorts filters the port list based on the specified filter type
func filterPorts(ports []hostport.PortInfo, filterType string) []hostport.PortInfo {
	if filterType == "" || filterType == "all" {
		return ports
	}

	var filtered []hostport.PortInfo
	for _, port := range ports {
		name := strings.ToLower(port.Name)
		switch strings.ToLower(filterType) {
		case "usb":
			if strings.HasPrefix(name, "ttyusb") || strings.HasPrefix(name, "ttyacm") {
				filtered = append(filtered, port)
			}
		case "standard":
			if strings.HasPrefix(name, "ttys") {
				filtered = append(filtered, port)
			}
		case "arm":
			if strings.HasPrefix(name, "ttyama") {
				filtered = append(filtered, port)
			}
		}
	}
	return filtered
}

// renderTable renders the port list as a styled table
func renderTable(ports []hostport.PortInfo) {
	rows := make([]table.Row, 0, len(ports))
	for _, port := range ports {
		rows = append(rows, table.NewRow(table.RowData{
			"port": port.Name,
			"path": port.Path,
			"desc": port.Description,
		}))
	}

	t := table.New([]table.Column{
		table.NewColumn("port", "Port", 14),
		table.NewColumn("path", "Path", 20),
		table.NewColumn("desc", "Description", 26),
	}).
		WithRows(rows).
		BorderRounded().
		WithBaseStyle(lipgloss.NewStyle().Foreground(colors.Text)).
		WithHeaderVisibility(true)

	fmt.Printf("Found %d serial port(s):\n\n", len(ports))
	fmt.Println(t.View())
}

//go:build linux

package hostport

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
)

// deviceClass ties a /dev name pattern to a human-readable description.
type deviceClass struct {
	pattern     *regexp.Regexp
	description string
}

var deviceClasses = []deviceClass{
	{regexp.MustCompile(`^ttyUSB\d+$`), "USB Serial Port"},
	{regexp.MustCompile(`^ttyACM\d+$`), "USB CDC/ACM Device"},
	{regexp.MustCompile(`^ttyAMA\d+$`), "ARM Serial Port"},
	{regexp.MustCompile(`^ttymxc\d+$`), "i.MX Serial Port"},
	{regexp.MustCompile(`^ttyO\d+$`), "OMAP Serial Port"},
	{regexp.MustCompile(`^ttySAC\d+$`), "Samsung Serial Port"},
	{regexp.MustCompile(`^ttyTHS\d+$`), "Tegra Serial Port"},
	{regexp.MustCompile(`^ttyS\d+$`), "Standard Serial Port"},
}

// PortInfo describes a serial device found on the system.
type PortInfo struct {
	Name        string
	Path        string
	Description string
}

// ListPorts returns the serial devices present under /dev, sorted by path.
// Virtual terminals and pseudo-terminals never match the device classes, so
// no explicit exclusion is needed.
func ListPorts() ([]PortInfo, error) {
	entries, err := os.ReadDir("/dev")
	if err != nil {
		return nil, err
	}

	var ports []PortInfo
	for _, entry := range entries {
		name := entry.Name()
		desc, ok := classify(name)
		if !ok {
			continue
		}
		path := filepath.Join("/dev", name)
		if !isCharacterDevice(path) {
			continue
		}
		ports = append(ports, PortInfo{
			Name:        name,
			Path:        path,
			Description: desc,
		})
	}

	sort.Slice(ports, func(i, j int) bool { return ports[i].Path < ports[j].Path })
	return ports, nil
}

// Info returns details about a single device path.
func Info(path string) (*PortInfo, error) {
	if !isCharacterDevice(path) {
		return nil, ErrDeviceNotFound
	}
	name := filepath.Base(path)
	desc, ok := classify(name)
	if !ok {
		desc = "Serial Port"
	}
	return &PortInfo{Name: name, Path: path, Description: desc}, nil
}

func classify(name string) (string, bool) {
	for _, c := range deviceClasses {
		if c.pattern.MatchString(name) {
			return c.description, true
		}
	}
	return "", false
}

func isCharacterDevice(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

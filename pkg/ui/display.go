package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/bkyle/usb-rw/pkg/disk"
	"github.com/bkyle/usb-rw/pkg/remount"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(lipgloss.Color("241"))

	rowStyle = lipgloss.NewStyle().
			PaddingRight(2)

	protocolStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	eligibleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82")).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("226"))
)

var columnWidths = []int{12, 24, 14, 10, 10, 10}

// Header returns the column titles matching Row.
func Header() string {
	return makeRow([]string{"Disk", "Device", "Protocol", "External", "Mounted", "Read-Only"}, headerStyle)
}

// Row renders one examined disk as a table row.
func Row(d disk.Descriptor, eligible bool) string {
	id := d.Identifier
	if eligible {
		id = eligibleStyle.Render(id)
	}
	protocol := d.Protocol
	if protocol == "" {
		protocol = "-"
	}
	return makeRow([]string{
		id,
		truncatePath(orDash(d.DevicePath), columnWidths[1]-2),
		protocolStyle.Render(protocol),
		yesNo(d.External),
		yesNo(d.Mounted),
		yesNo(d.ReadOnly),
	}, rowStyle)
}

// ResultLine renders the outcome of one remount attempt.
func ResultLine(r remount.Result) string {
	name := r.Disk.Identifier
	if name == "" {
		name = r.Disk.Target()
	}

	switch {
	case r.DryRun:
		return InfoStyle.Render(fmt.Sprintf("🔎 Would remount %s (%s) read-write", name, r.Disk.DevicePath))
	case !r.OK():
		return ErrorStyle.Render(fmt.Sprintf("❌ Failed to remount %s: %v", name, r.Err))
	case r.Verified && !r.Writable:
		return warnStyle.Render(fmt.Sprintf("⚠️  Remounted %s (%s) but it still reports read-only", name, r.Disk.DevicePath))
	default:
		return SuccessStyle.Render(fmt.Sprintf("✅ Remounted %s (%s) read-write", name, r.Disk.DevicePath))
	}
}

func makeRow(cols []string, style lipgloss.Style) string {
	styledCols := make([]string, len(cols))
	for i, col := range cols {
		if i < len(columnWidths) {
			styledCols[i] = style.Render(lipgloss.NewStyle().Width(columnWidths[i]).Render(col))
		} else {
			styledCols[i] = style.Render(col)
		}
	}
	return strings.Join(styledCols, " ")
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return mutedStyle.Render("no")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func truncatePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	if maxLen < 10 {
		return path[:maxLen]
	}
	return "..." + path[len(path)-(maxLen-3):]
}

package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/bkyle/usb-rw/pkg/remount"
)

var (
	summaryBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("86")).
			Padding(0, 2).
			MarginTop(1)

	summaryTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("214")).
				MarginBottom(1)

	summaryItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("255"))

	summaryValueStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("86")).
				Bold(true)
)

// Summary renders the counters of one pass in a bordered box.
func Summary(s remount.PassStats) string {
	content := summaryTitleStyle.Render(fmt.Sprintf("📊 Pass %d", s.Number)) + "\n"

	content += formatSummaryLine("Examined", fmt.Sprintf("%d", s.Examined))
	content += formatSummaryLine("Eligible", fmt.Sprintf("%d", s.Eligible))
	content += formatSummaryLine("Remounted", fmt.Sprintf("%d", s.Remounted))
	if s.Failed > 0 {
		content += formatSummaryLine("Failed", ErrorStyle.Render(fmt.Sprintf("%d", s.Failed)))
	}
	if s.Skipped > 0 {
		content += formatSummaryLine("Already done", fmt.Sprintf("%d", s.Skipped))
	}
	content += formatSummaryLine("Took", s.Duration().Round(time.Millisecond).String())

	return summaryBoxStyle.Render(content)
}

func formatSummaryLine(label, value string) string {
	return fmt.Sprintf("%s %s\n",
		summaryItemStyle.Render(fmt.Sprintf("%-14s", label+":")),
		summaryValueStyle.Render(value))
}

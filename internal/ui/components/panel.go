// Package components holds the small widgets screens are assembled from.
package components

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/opicdrill/internal/ui/theme"
)

const (
	minContent = 20
	maxContent = 72
)

// ContentWidth is the inner width shared by stacked panels, after a
// border and two columns of padding each side.
func ContentWidth(frameWidth int) int {
	return min(max(frameWidth-6, minContent), maxContent)
}

func Center(content string, width, height int) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

// Panel draws a rounded card whose outer width is cw.
func Panel(content string, cw int) string {
	return card.Width(cw - 2).Render(content)
}

func TitledPanel(title, content string, cw int) string {
	return Panel(panelTitle.Render(title)+"\n"+content, cw)
}

var (
	card       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(theme.Border).Padding(0, 2)
	panelTitle = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
)

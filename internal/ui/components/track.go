package components

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/opicdrill/internal/ui/theme"
)

// Track draws a session as a row of cells: answered items in the colour of
// their outcome, the current item highlighted, the rest dim. Sessions longer
// than the width are sampled so the row always fits.
type Track struct {
	// Outcomes holds one entry per answered item, true for a success.
	Outcomes []bool
	Total    int
}

const trackCell = "━"

func (t Track) View(width int) string {
	if t.Total <= 0 || width <= 0 {
		return ""
	}
	n := min(t.Total, width)

	var (
		ok      = lipgloss.NewStyle().Foreground(theme.Success)
		missed  = lipgloss.NewStyle().Foreground(theme.Error)
		current = lipgloss.NewStyle().Foreground(theme.Accent)
		ahead   = lipgloss.NewStyle().Foreground(theme.Border)
	)

	var b strings.Builder
	for c := range n {
		idx := c * t.Total / n
		style := ahead
		switch {
		case idx < len(t.Outcomes) && t.Outcomes[idx]:
			style = ok
		case idx < len(t.Outcomes):
			style = missed
		case idx == len(t.Outcomes):
			style = current
		}
		// Stretch cells to use the width when the session is short.
		cell := strings.Repeat(trackCell, max(1, width/n))
		b.WriteString(style.Render(cell))
	}
	return b.String()
}

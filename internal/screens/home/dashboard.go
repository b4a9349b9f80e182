package home

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/opicdrill/internal/library"
	"github.com/abhisek/opicdrill/internal/mastery"
	"github.com/abhisek/opicdrill/internal/screen"
	"github.com/abhisek/opicdrill/internal/ui/theme"
)

const titleCompact = "O · P · I · C   D · R · I · L · L"

// shelfStats summarizes one library shelf for the dashboard.
type shelfStats struct {
	Kind     library.Kind
	Total    int
	Due      int
	New      int
	Mastered int
}

// computeStats derives per-kind dashboard numbers from the library.
func computeStats(deps screen.Deps) []shelfStats {
	if deps.Library == nil {
		return nil
	}
	now := deps.Clock()
	out := make([]shelfStats, 0, len(library.Kinds))
	for _, k := range library.Kinds {
		items := deps.Library.Items(k)
		st := shelfStats{Kind: k, Total: len(items), Due: deps.Policy.CountDue(items, now)}
		for _, it := range items {
			switch mastery.StateOf(it) {
			case mastery.StateNew:
				st.New++
			case mastery.StateMastered:
				st.Mastered++
			}
		}
		out = append(out, st)
	}
	return out
}

// renderTitle returns the styled title line.
func renderTitle(cw int) string {
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Foreground(theme.Primary).
		Bold(true).
		Render(titleCompact)
}

// renderStatsPanel renders one line per shelf in a bordered box matching
// content width.
func renderStatsPanel(stats []shelfStats, cw int) string {
	labelStyle := lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Width(12)
	dueStyle := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(theme.TextDim)
	masteredStyle := lipgloss.NewStyle().Foreground(theme.Success)

	var lines []string
	for _, st := range stats {
		due := dimStyle.Render("none due")
		if st.Due > 0 {
			due = dueStyle.Render(fmt.Sprintf("%d due", st.Due))
		}
		lines = append(lines, fmt.Sprintf("%s %s  %s  %s  %s",
			labelStyle.Render(st.Kind.DisplayName()),
			dimStyle.Render(fmt.Sprintf("%4d total", st.Total)),
			due,
			dimStyle.Render(fmt.Sprintf("%d new", st.New)),
			masteredStyle.Render(fmt.Sprintf("%d mastered", st.Mastered)),
		))
	}
	if len(lines) == 0 {
		lines = append(lines, dimStyle.Render("Library not loaded"))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Secondary).
		Width(cw - 2). // account for border chars
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
}

// renderRefillStatus lists running refills and the last refill outcome.
func renderRefillStatus(deps screen.Deps, last string, cw int) string {
	var parts []string
	if deps.Queue != nil {
		for _, k := range library.Kinds {
			if deps.Queue.Refilling(k) {
				parts = append(parts, "Generating "+strings.ToLower(k.DisplayName())+"...")
			}
		}
	}
	if len(parts) == 0 && last == "" {
		return ""
	}
	if len(parts) == 0 {
		parts = append(parts, last)
	}
	return lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Italic(true).
		Width(cw).
		Align(lipgloss.Center).
		Render(strings.Join(parts, "  "))
}

// renderLLMBanner renders a warning when no LLM provider is configured.
func renderLLMBanner(cw int) string {
	return lipgloss.NewStyle().
		Foreground(theme.Accent).
		Width(cw).
		Align(lipgloss.Center).
		Render("⚠ Set an LLM API key to generate new content (see opicdrill --help)")
}

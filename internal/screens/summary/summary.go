// Package summary shows the result of one practice session.
package summary

import (
	"fmt"
	"image/color"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/opicdrill/internal/library"
	"github.com/abhisek/opicdrill/internal/router"
	"github.com/abhisek/opicdrill/internal/screen"
	"github.com/abhisek/opicdrill/internal/session"
	"github.com/abhisek/opicdrill/internal/ui/layout"
	"github.com/abhisek/opicdrill/internal/ui/theme"
)

const reviewLimit = 8

type SummaryScreen struct {
	summary session.Summary
	missed  []library.Item
	warning string
}

var (
	_ screen.Screen          = (*SummaryScreen)(nil)
	_ screen.KeyHintProvider = (*SummaryScreen)(nil)
)

// New builds the screen. missed are the items failed in the session and
// warning, when set, is a save error to show the learner.
func New(summary session.Summary, missed []library.Item, warning string) *SummaryScreen {
	return &SummaryScreen{summary: summary, missed: missed, warning: warning}
}

func (s *SummaryScreen) Init() tea.Cmd { return nil }

func (s *SummaryScreen) Title() string { return "Session Summary" }

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Continue"},
		{Key: "Esc", Description: "Home"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	if k := key.String(); k == "enter" || k == "esc" {
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	sum := s.summary
	heading := "Session complete!"
	if sum.Abandoned {
		heading = "Session saved"
	}

	blocks := []string{
		text(theme.Primary, true, heading),
		text(theme.TextDim, false, fmt.Sprintf("%s · %s", sum.Kind.DisplayName(), clock(sum))),
		lipgloss.JoinHorizontal(lipgloss.Top,
			tile("Answered", fmt.Sprintf("%d/%d", sum.Served, sum.Total), theme.Text),
			tile("Got it", fmt.Sprint(sum.Success), theme.Success),
			tile("Missed", fmt.Sprint(sum.Fail), theme.Error),
			tile("Accuracy", fmt.Sprintf("%.0f%%", sum.Accuracy*100), theme.Accent),
		),
	}
	if s.warning != "" {
		blocks = append(blocks, text(theme.Error, false, "Results may not have been saved: "+s.warning))
	}
	switch {
	case len(s.missed) > 0:
		blocks = append(blocks, s.review(min(width-8, 60)))
	case sum.Served > 0:
		blocks = append(blocks, text(theme.Success, true, "Nothing missed. Nice work!"))
	}

	return lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center, spaced(blocks)...))
}

// review lists the missed items under a rule, capped at reviewLimit.
func (s *SummaryScreen) review(width int) string {
	lines := []string{
		text(theme.TextDim, false, "Review these"),
		lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width, 1))),
	}
	for i, it := range s.missed {
		if i == reviewLimit {
			lines = append(lines, text(theme.TextDim, false, fmt.Sprintf("...and %d more", len(s.missed)-reviewLimit)))
			break
		}
		lines = append(lines, theme.Native.Render(truncate(it.Content.Prompt, width/2))+
			"  →  "+theme.Body.Render(truncate(reviewAnswer(it), width/2)))
	}
	return lipgloss.JoinVertical(lipgloss.Center, lines...)
}

// reviewAnswer is what the learner should have said. Scripts show which
// variant they kept rather than the whole script.
func reviewAnswer(it library.Item) string {
	if it.Kind == library.KindScript && it.Content.Explanation != "" {
		return it.Content.Explanation
	}
	return it.Content.Answer
}

func tile(label, value string, fg color.Color) string {
	return lipgloss.NewStyle().
		Width(14).
		Align(lipgloss.Center).
		Render(lipgloss.NewStyle().Foreground(fg).Bold(true).Render(value) + "\n" +
			lipgloss.NewStyle().Foreground(theme.TextDim).Render(label))
}

func text(fg color.Color, bold bool, s string) string {
	return lipgloss.NewStyle().Foreground(fg).Bold(bold).Render(s)
}

func clock(sum session.Summary) string {
	secs := int(sum.Duration.Seconds())
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

// spaced puts a blank line between blocks.
func spaced(blocks []string) []string {
	out := make([]string, 0, 2*len(blocks))
	for i, b := range blocks {
		if i > 0 {
			out = append(out, "")
		}
		out = append(out, b)
	}
	return out
}

// truncate cuts s to width terminal cells, counting Hangul as two.
func truncate(s string, width int) string {
	if width <= 1 || lipgloss.Width(s) <= width {
		return s
	}
	var b strings.Builder
	used := 0
	for _, r := range s {
		w := lipgloss.Width(string(r))
		if used+w > width-1 {
			break
		}
		b.WriteRune(r)
		used += w
	}
	return b.String() + "…"
}

package practice

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/opicdrill/internal/library"
	"github.com/abhisek/opicdrill/internal/mastery"
	"github.com/abhisek/opicdrill/internal/session"
	"github.com/abhisek/opicdrill/internal/ui/components"
	"github.com/abhisek/opicdrill/internal/ui/theme"
)

func (s *PracticeScreen) View(width, height int) string {
	switch {
	case s.errMsg != "":
		return renderError(width, s.errMsg)
	case s.loading:
		return renderNotice(width, s.spinner.View()+" Building your queue...")
	case s.preparing:
		return s.renderPreparing(width)
	case s.tracker == nil:
		return ""
	}
	return s.renderItem(width)
}

// renderPreparing is shown while the library has nothing to serve.
func (s *PracticeScreen) renderPreparing(width int) string {
	var lines []string
	switch {
	case s.refillErr != "":
		lines = append(lines,
			lipgloss.NewStyle().Foreground(theme.Error).Render("Could not generate new items: "+s.refillErr),
			"",
			"Press R to try again.")
	case s.deps.Queue.Refilling(s.kind):
		lines = append(lines, s.spinner.View()+" Preparing new "+strings.ToLower(s.kind.DisplayName())+"...")
	case s.kind == library.KindScript:
		lines = append(lines,
			"No scripts yet.",
			"",
			"Compose one from the home screen first.")
	default:
		lines = append(lines,
			"Nothing to practice right now.",
			"",
			"Press R to check again.")
	}
	return renderNotice(width, strings.Join(lines, "\n"))
}

// renderItem renders the current item in its reveal phase.
func (s *PracticeScreen) renderItem(width int) string {
	it, ok := s.tracker.Current()
	if !ok {
		return ""
	}
	pos, total := s.tracker.Position()
	phase := s.tracker.Phase()
	cw := components.ContentWidth(width)

	var b strings.Builder

	infoLeft := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render(fmt.Sprintf("  %s", mastery.StateOf(it).Label()))
	infoRight := lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("%d/%d  %s %d  %s %d",
			pos+1, total,
			lipgloss.NewStyle().Foreground(theme.Success).Render("✓"),
			it.Stats.SuccessCount,
			lipgloss.NewStyle().Foreground(theme.Error).Render("✗"),
			it.Stats.FailCount,
		))
	infoLine := infoLeft
	if pad := width - lipgloss.Width(infoLeft) - lipgloss.Width(infoRight) - 4; pad > 0 {
		infoLine += strings.Repeat(" ", pad) + infoRight
	}
	b.WriteString(infoLine)
	b.WriteString("\n")
	b.WriteString("  " + sessionTrack(s.tracker.Results(), total).View(width-4))
	b.WriteString("\n\n")

	promptStyle := theme.Native
	if it.Kind == library.KindScript {
		promptStyle = theme.Target
	}
	b.WriteString(center(width, promptStyle.Width(cw).Align(lipgloss.Center).Render(it.Content.Prompt)))
	b.WriteString("\n\n")

	if phase >= session.PhaseHint && len(it.Content.Steps) > 0 {
		b.WriteString(center(width, components.TitledPanel("Logic flow", renderSteps(it.Content.Steps), cw)))
		b.WriteString("\n")
	}

	if phase >= session.PhaseRevealed {
		b.WriteString(center(width, components.Panel(renderAnswer(it, cw-6), cw)))
		b.WriteString("\n")
	} else {
		b.WriteString(center(width, theme.Hint.Render("Say it out loud, then press Space to check.")))
		b.WriteString("\n")
	}

	return b.String()
}

func renderSteps(steps []string) string {
	parts := make([]string, len(steps))
	for i, st := range steps {
		parts[i] = theme.Step.Render(fmt.Sprintf("%d. %s", i+1, st))
	}
	return strings.Join(parts, "\n")
}

func renderAnswer(it library.Item, width int) string {
	var b strings.Builder
	b.WriteString(theme.Target.Width(width).Render(it.Content.Answer))

	if it.Content.Explanation != "" {
		b.WriteString("\n")
		b.WriteString(theme.Badge.Render(it.Content.Explanation))
	}
	for _, ex := range it.Content.Examples {
		b.WriteString("\n\n")
		b.WriteString(theme.Native.Width(width).Render(ex.Native))
		b.WriteString("\n")
		b.WriteString(theme.Body.Width(width).Render("→ " + ex.Target))
	}
	return b.String()
}

func center(width int, s string) string {
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, s)
}

func renderNotice(width int, msg string) string {
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render("\n\n\n" + msg)
}

func renderError(width int, errMsg string) string {
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Error).
		Render(fmt.Sprintf("\n\n\n  Error: %s\n\n  Press any key to go back.", errMsg))
}

func sessionTrack(results []library.Result, total int) components.Track {
	outcomes := make([]bool, len(results))
	for i, r := range results {
		outcomes[i] = r.Outcome == library.Success
	}
	return components.Track{Outcomes: outcomes, Total: total}
}

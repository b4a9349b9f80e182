package compose

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/opicdrill/internal/ui/components"
	"github.com/abhisek/opicdrill/internal/ui/theme"
)

func (s *ComposeScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	var sections []string

	if s.draft.Question != "" && s.step > stepQuestion {
		sections = append(sections, components.TitledPanel("Question", theme.Target.Render(s.draft.Question), cw))
	}

	switch {
	case s.errMsg != "":
		sections = append(sections, lipgloss.NewStyle().
			Foreground(theme.Error).
			Width(cw).
			Render(fmt.Sprintf("Error: %s\n\nPress R to retry.", s.errMsg)))
	case s.busy != "":
		sections = append(sections, theme.Hint.Render(s.spinner.View()+" "+s.busy+"..."))
	default:
		sections = append(sections, s.renderStep(cw))
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(strings.Join(sections, "\n\n"))
}

func (s *ComposeScreen) renderStep(cw int) string {
	switch s.step {
	case stepQuestion:
		return theme.Body.Render("Interview question") + "\n\n" + s.question.View()
	case stepSamples:
		return s.samples.View(cw)
	case stepNative:
		return theme.Body.Render("Your answer") + "\n\n" + s.native.View()
	case stepVariants:
		return s.choice.View(cw)
	case stepSaved:
		return lipgloss.NewStyle().Foreground(theme.Success).Bold(true).Render("Script saved!") +
			"\n\n" + theme.Hint.Render(fmt.Sprintf("%s version added to your scripts.", s.draft.Variant.Label))
	}
	return ""
}

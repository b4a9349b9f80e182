// Package layout draws the chrome shared by every screen: a header bar
// with the screen title and library status, and a footer of key hints.
package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/opicdrill/internal/ui/theme"
)

// Smallest terminal the frame is drawn in.
const (
	MinWidth  = 80
	MinHeight = 24
)

// KeyHint is one entry in the footer.
type KeyHint struct {
	Key         string
	Description string
}

// Frame describes the chrome around the active screen.
type Frame struct {
	Title  string
	Status string
	Hints  []KeyHint
}

var (
	bar = lipgloss.NewStyle().
		Background(theme.BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(0, 1)
	brand  = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	status = lipgloss.NewStyle().Foreground(theme.Accent)
	hotkey = lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	hint   = lipgloss.NewStyle().Foreground(theme.TextDim)
)

// Render lays out header, body and footer in width x height. body is given
// the size left between the bars. Terminals below the minimum get a resize
// notice instead.
func (f Frame) Render(body func(width, height int) string, width, height int) string {
	if width < MinWidth || height < MinHeight {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.Text).Align(lipgloss.Center).Render(fmt.Sprintf(
				"The terminal is %dx%d.\nopicdrill needs at least %dx%d.",
				width, height, MinWidth, MinHeight)))
	}

	header := f.header(width)
	footer := f.footer(width)
	bodyHeight := max(0, height-lipgloss.Height(header)-lipgloss.Height(footer))
	content := lipgloss.NewStyle().Width(width).Height(bodyHeight).MaxHeight(bodyHeight).
		Render(body(width, bodyHeight))

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (f Frame) header(width int) string {
	left := brand.Render("opicdrill")
	right := status.Render(f.Status)
	inner := width - bar.GetHorizontalFrameSize()

	// Centre the title on the bar, not on the space between the ends.
	side := max(lipgloss.Width(left), lipgloss.Width(right))
	mid := max(0, inner-2*side)
	title := lipgloss.NewStyle().Foreground(theme.Text).Width(mid).Align(lipgloss.Center).
		Render(truncateWidth(f.Title, mid))

	line := pad(left, side, lipgloss.Left) + title + pad(right, side, lipgloss.Right)
	return bar.Width(width).Render(line)
}

func (f Frame) footer(width int) string {
	parts := make([]string, len(f.Hints))
	for i, h := range f.Hints {
		parts[i] = hotkey.Render(h.Key) + " " + hint.Render(h.Description)
	}
	return bar.Width(width).Render(strings.Join(parts, "   "))
}

func pad(s string, width int, pos lipgloss.Position) string {
	return lipgloss.PlaceHorizontal(width, pos, s)
}

func truncateWidth(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+1 > width {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}

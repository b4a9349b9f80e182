// Package theme holds the palette and the few text styles shared across
// screens. Screens build their own one-off styles from the palette.
package theme

import "charm.land/lipgloss/v2"

var (
	Primary   = lipgloss.Color("#6366F1") // indigo
	Secondary = lipgloss.Color("#2DD4BF") // teal, used for Korean text
	Accent    = lipgloss.Color("#FBBF24") // amber
	Success   = lipgloss.Color("#4ADE80")
	Error     = lipgloss.Color("#FB7185")

	Text    = lipgloss.Color("#F1F5F9")
	TextDim = lipgloss.Color("#8B95A7")
	BgDark  = lipgloss.Color("#111827")
	BgCard  = lipgloss.Color("#1F2937")
	Border  = lipgloss.Color("#374151")
)

var (
	Body = lipgloss.NewStyle().Foreground(Text)
	Hint = lipgloss.NewStyle().Foreground(TextDim).Italic(true)

	// Native renders Korean prompts and drafts.
	Native = lipgloss.NewStyle().Foreground(Secondary)
	// Target renders the English the learner is aiming for.
	Target = lipgloss.NewStyle().Foreground(Text).Bold(true)

	Badge = lipgloss.NewStyle().Foreground(BgDark).Background(Accent).Padding(0, 1)
	Step  = lipgloss.NewStyle().Foreground(Accent)
)

package browse

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/opicdrill/internal/library"
	"github.com/abhisek/opicdrill/internal/mastery"
	"github.com/abhisek/opicdrill/internal/screen"
	"github.com/abhisek/opicdrill/internal/ui/layout"
	"github.com/abhisek/opicdrill/internal/ui/theme"
)

// ItemDetailScreen shows everything stored for a single item.
type ItemDetailScreen struct {
	item library.Item
}

var _ screen.Screen = (*ItemDetailScreen)(nil)
var _ screen.KeyHintProvider = (*ItemDetailScreen)(nil)

func newItemDetail(item library.Item) *ItemDetailScreen {
	return &ItemDetailScreen{item: item}
}

func (d *ItemDetailScreen) Init() tea.Cmd { return nil }
func (d *ItemDetailScreen) Title() string { return d.item.Kind.DisplayName() }

func (d *ItemDetailScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	return d, nil
}

func (d *ItemDetailScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Esc", Description: "Back"},
	}
}

func (d *ItemDetailScreen) View(width, height int) string {
	it := d.item
	contentWidth := width - 8
	if contentWidth > 70 {
		contentWidth = 70
	}
	section := func(title string) string {
		return lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render("  " + title)
	}
	body := lipgloss.NewStyle().Width(contentWidth).PaddingLeft(4)

	var b strings.Builder

	b.WriteString(lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true).
		Width(contentWidth).
		Render("  " + it.Content.Prompt))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("  %s  ·  %d✓ %d✗  ·  %s",
			mastery.StateOf(it).Label(),
			it.Stats.SuccessCount, it.Stats.FailCount,
			lastPracticed(it))))
	b.WriteString("\n\n")

	if it.Content.Native != "" {
		b.WriteString(section("Draft"))
		b.WriteString("\n")
		b.WriteString(body.Foreground(theme.Secondary).Render(it.Content.Native))
		b.WriteString("\n\n")
	}

	b.WriteString(section("Answer"))
	b.WriteString("\n")
	b.WriteString(body.Foreground(theme.Text).Render(it.Content.Answer))
	b.WriteString("\n\n")

	if len(it.Content.Steps) > 0 {
		b.WriteString(section("Logic flow"))
		b.WriteString("\n")
		b.WriteString(body.Foreground(theme.Accent).Render(strings.Join(it.Content.Steps, " → ")))
		b.WriteString("\n\n")
	}

	if len(it.Content.Examples) > 0 {
		b.WriteString(section("Examples"))
		b.WriteString("\n")
		for _, ex := range it.Content.Examples {
			b.WriteString(body.Foreground(theme.Secondary).Render(ex.Native))
			b.WriteString("\n")
			b.WriteString(body.Foreground(theme.Text).Render("→ " + ex.Target))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if it.Content.Explanation != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).
			Render("  " + it.Content.Explanation))
		b.WriteString("\n")
	}

	return b.String()
}

func lastPracticed(it library.Item) string {
	if it.Stats.LastPracticedAt == nil {
		return "never practiced"
	}
	return "last practiced " + it.Stats.LastPracticedAt.Local().Format("Jan 02 15:04")
}

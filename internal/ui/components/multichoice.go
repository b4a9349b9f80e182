package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/opicdrill/internal/ui/theme"
)

// Choice is one option. Detail is shown dimmed under the label.
type Choice struct {
	Label  string
	Detail string
}

// MultiChoice picks exactly one option, with the arrows and enter or by
// pressing its number. It ignores input once an option is picked.
type MultiChoice struct {
	Prompt  string
	Options []Choice

	cursor int
	picked int // -1 until chosen
}

func NewMultiChoice(prompt string, options []Choice) MultiChoice {
	return MultiChoice{Prompt: prompt, Options: options, picked: -1}
}

func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok || m.picked >= 0 || len(m.Options) == 0 {
		return m, nil
	}
	switch k := key.String(); k {
	case "up", "k":
		m.cursor = max(m.cursor-1, 0)
	case "down", "j":
		m.cursor = min(m.cursor+1, len(m.Options)-1)
	case "enter":
		m.picked = m.cursor
	default:
		if len(k) == 1 && k[0] >= '1' && k[0] <= '9' && int(k[0]-'1') < len(m.Options) {
			m.cursor = int(k[0] - '1')
			m.picked = m.cursor
		}
	}
	return m, nil
}

// Picked reports the index of the chosen option.
func (m MultiChoice) Picked() (int, bool) {
	return m.picked, m.picked >= 0
}

func (m MultiChoice) Chosen() (Choice, bool) {
	if i, ok := m.Picked(); ok {
		return m.Options[i], true
	}
	return Choice{}, false
}

func (m MultiChoice) View(width int) string {
	var b strings.Builder
	if m.Prompt != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Width(width).Render(m.Prompt) + "\n\n")
	}
	detail := lipgloss.NewStyle().Foreground(theme.TextDim).PaddingLeft(6).Width(width)
	for i, opt := range m.Options {
		mark := "  "
		if i == m.cursor {
			mark = "▸ "
		}
		b.WriteString(m.optionStyle(i).Width(width).Render(fmt.Sprintf("%s%d)  %s", mark, i+1, opt.Label)) + "\n")
		if opt.Detail != "" {
			b.WriteString(detail.Render(opt.Detail) + "\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m MultiChoice) optionStyle(i int) lipgloss.Style {
	s := lipgloss.NewStyle()
	switch {
	case m.picked == i:
		return s.Foreground(theme.Success).Bold(true)
	case m.picked >= 0:
		return s.Foreground(theme.TextDim)
	case m.cursor == i:
		return s.Foreground(theme.Primary).Bold(true)
	}
	return s.Foreground(theme.Text)
}

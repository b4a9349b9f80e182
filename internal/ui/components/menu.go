package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/opicdrill/internal/ui/theme"
)

// Entry is one line of a Menu. Off entries are shown dimmed and skipped by
// the cursor.
type Entry struct {
	Label string
	Run   func() tea.Cmd
	Off   bool
}

// Menu is a centered column of fixed-width buttons.
type Menu struct {
	Entries []Entry
	Cursor  int
}

const buttonWidth = 24

// NewMenu places the cursor on the first enabled entry.
func NewMenu(entries ...Entry) Menu {
	m := Menu{Entries: entries, Cursor: -1}
	m.step(1)
	if m.Cursor < 0 {
		m.Cursor = 0
	}
	return m
}

// Current returns the entry under the cursor.
func (m Menu) Current() (Entry, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.Entries) {
		return Entry{}, false
	}
	return m.Entries[m.Cursor], true
}

// Update moves the cursor and runs the current entry on enter.
func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "up", "k":
		m.step(-1)
	case "down", "j":
		m.step(1)
	case "enter":
		if e, ok := m.Current(); ok && !e.Off && e.Run != nil {
			return m, e.Run()
		}
	}
	return m, nil
}

// step moves to the next enabled entry in dir, staying put at either end.
func (m *Menu) step(dir int) {
	for i := m.Cursor + dir; i >= 0 && i < len(m.Entries); i += dir {
		if !m.Entries[i].Off {
			m.Cursor = i
			return
		}
	}
}

func (m Menu) View(width int) string {
	button := lipgloss.NewStyle().Width(buttonWidth)
	lines := make([]string, len(m.Entries))
	for i, e := range m.Entries {
		switch {
		case e.Off:
			lines[i] = button.Foreground(theme.TextDim).Render("   " + e.Label)
		case i == m.Cursor:
			lines[i] = button.Bold(true).Foreground(theme.BgDark).Background(theme.Primary).Render(" ▸ " + e.Label)
		default:
			lines[i] = button.Foreground(theme.Text).Render("   " + e.Label)
		}
	}
	return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Render(strings.Join(lines, "\n"))
}

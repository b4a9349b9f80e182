package components

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMenu_SkipsOffEntries(t *testing.T) {
	ran := ""
	run := func(name string) func() tea.Cmd {
		return func() tea.Cmd { ran = name; return nil }
	}
	m := NewMenu(
		Entry{Label: "hidden", Off: true},
		Entry{Label: "a", Run: run("a")},
		Entry{Label: "b", Off: true},
		Entry{Label: "c", Run: run("c")},
	)
	assert.Equal(t, 1, m.Cursor)

	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	assert.Equal(t, 3, m.Cursor)
	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	assert.Equal(t, 3, m.Cursor, "stays on the last entry")

	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.Equal(t, "c", ran)

	m, _ = m.Update(tea.KeyPressMsg{Code: 'k', Text: "k"})
	cur, ok := m.Current()
	require.True(t, ok)
	assert.Equal(t, "a", cur.Label)
	assert.Contains(t, m.View(60), "▸ a")
}

func TestMenu_AllOff(t *testing.T) {
	m := NewMenu(Entry{Label: "x", Off: true})
	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.Nil(t, cmd)
}

package components

import (
	"strings"

	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/opicdrill/internal/ui/theme"
)

// TextInput is a focused single-line field. limit caps both the visible
// width and the number of characters.
type TextInput struct {
	field textinput.Model
}

func NewTextInput(placeholder string, limit int) TextInput {
	f := textinput.New()
	f.Placeholder = placeholder
	if limit > 0 {
		f.CharLimit = limit
		f.SetWidth(limit)
	}
	f.Focus()
	return TextInput{field: f}
}

func (t TextInput) Init() tea.Cmd { return t.field.Focus() }

func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	var cmd tea.Cmd
	t.field, cmd = t.field.Update(msg)
	return t, cmd
}

func (t TextInput) View() string { return t.field.View() }

// Value is the text with surrounding whitespace removed.
func (t TextInput) Value() string { return strings.TrimSpace(t.field.Value()) }

func (t *TextInput) SetValue(s string) { t.field.SetValue(s) }

// TextArea is a bordered multi-line editor for native-language drafts.
type TextArea struct {
	area textarea.Model
}

func NewTextArea(placeholder string, width, height int) TextArea {
	a := textarea.New()
	a.Placeholder = placeholder
	a.ShowLineNumbers = false
	a.CharLimit = 0
	a.SetWidth(width)
	a.SetHeight(height)
	a.Focus()
	return TextArea{area: a}
}

func (t TextArea) Init() tea.Cmd { return t.area.Focus() }

func (t TextArea) Update(msg tea.Msg) (TextArea, tea.Cmd) {
	var cmd tea.Cmd
	t.area, cmd = t.area.Update(msg)
	return t, cmd
}

func (t TextArea) View() string {
	return lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(theme.Border).Render(t.area.View())
}

func (t TextArea) Value() string { return strings.TrimSpace(t.area.Value()) }

func (t *TextArea) SetValue(s string) { t.area.SetValue(s) }

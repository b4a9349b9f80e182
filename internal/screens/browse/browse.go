// Package browse lists the library shelf by shelf and lets the learner
// inspect items and delete scripts.
package browse

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/opicdrill/internal/library"
	"github.com/abhisek/opicdrill/internal/mastery"
	"github.com/abhisek/opicdrill/internal/router"
	"github.com/abhisek/opicdrill/internal/screen"
	"github.com/abhisek/opicdrill/internal/ui/layout"
	"github.com/abhisek/opicdrill/internal/ui/theme"
)

type rowKind int

const (
	rowHeader rowKind = iota
	rowItem
)

type row struct {
	kind  rowKind
	shelf library.Kind
	item  library.Item
}

// BrowseScreen displays every library item grouped by kind.
type BrowseScreen struct {
	deps          screen.Deps
	rows          []row
	cursor        int
	scrollOffset  int
	confirmDelete bool
	status        string
}

var _ screen.Screen = (*BrowseScreen)(nil)
var _ screen.KeyHintProvider = (*BrowseScreen)(nil)

// New creates a new BrowseScreen.
func New(deps screen.Deps) *BrowseScreen {
	s := &BrowseScreen{deps: deps}
	s.reload()
	return s
}

// reload rebuilds the rows from the library, keeping the cursor in range.
func (s *BrowseScreen) reload() {
	var rows []row
	for _, k := range library.Kinds {
		rows = append(rows, row{kind: rowHeader, shelf: k})
		for _, it := range s.deps.Library.Items(k) {
			rows = append(rows, row{kind: rowItem, shelf: k, item: it})
		}
	}
	s.rows = rows

	if s.cursor >= len(s.rows) {
		s.cursor = len(s.rows) - 1
	}
	if s.cursor < 0 || s.rows[s.cursor].kind != rowItem {
		if !s.moveCursor(1) {
			s.moveCursor(-1)
		}
	}
}

func (s *BrowseScreen) Init() tea.Cmd {
	return nil
}

func (s *BrowseScreen) Title() string {
	return "Library"
}

// KeyHints returns the key binding hints for the footer.
func (s *BrowseScreen) KeyHints() []layout.KeyHint {
	if s.confirmDelete {
		return []layout.KeyHint{
			{Key: "D", Description: "Confirm delete"},
			{Key: "any key", Description: "Cancel"},
		}
	}
	hints := []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Tab", Description: "Shelf"},
		{Key: "Enter", Description: "Details"},
	}
	if r, ok := s.current(); ok && r.shelf == library.KindScript {
		hints = append(hints, layout.KeyHint{Key: "D", Description: "Delete"})
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Back"})
}

func (s *BrowseScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	key := kmsg.String()

	if s.confirmDelete {
		s.confirmDelete = false
		if key == "d" || key == "D" {
			s.deleteCurrent()
		} else {
			s.status = ""
		}
		return s, nil
	}

	s.status = ""
	switch key {
	case "up", "k":
		s.moveCursor(-1)
	case "down", "j":
		s.moveCursor(1)
	case "tab":
		s.nextShelf()
	case "enter":
		if r, ok := s.current(); ok {
			detail := newItemDetail(r.item)
			return s, func() tea.Msg { return router.PushScreenMsg{Screen: detail} }
		}
	case "d", "D":
		if r, ok := s.current(); ok && r.shelf == library.KindScript {
			s.confirmDelete = true
			s.status = "Delete this script? Press D again to confirm."
		}
	}
	return s, nil
}

func (s *BrowseScreen) current() (row, bool) {
	if s.cursor < 0 || s.cursor >= len(s.rows) || s.rows[s.cursor].kind != rowItem {
		return row{}, false
	}
	return s.rows[s.cursor], true
}

func (s *BrowseScreen) deleteCurrent() {
	r, ok := s.current()
	if !ok {
		return
	}
	removed, err := s.deps.Library.Remove(context.Background(), r.shelf, r.item.Key)
	switch {
	case err != nil:
		s.deps.Log().Error("remove item", "kind", r.shelf, "key", r.item.Key, "err", err)
		s.status = "Could not delete: " + err.Error()
	case removed:
		s.status = "Deleted."
	}
	s.reload()
}

// moveCursor moves the cursor by delta, skipping headers. It reports
// whether the cursor landed on an item.
func (s *BrowseScreen) moveCursor(delta int) bool {
	next := s.cursor + delta
	for next >= 0 && next < len(s.rows) {
		if s.rows[next].kind == rowItem {
			s.cursor = next
			return true
		}
		next += delta
	}
	return false
}

// nextShelf jumps to the first item of the next non-empty shelf, wrapping
// around.
func (s *BrowseScreen) nextShelf() {
	if len(s.rows) == 0 {
		return
	}
	currentShelf := s.rows[max(s.cursor, 0)].shelf
	for i := 1; i <= len(s.rows); i++ {
		j := (s.cursor + i) % len(s.rows)
		if s.rows[j].kind == rowItem && s.rows[j].shelf != currentShelf {
			s.cursor = j
			return
		}
	}
}

// adjustScroll ensures the cursor is visible within the viewport.
func (s *BrowseScreen) adjustScroll(height int) {
	if height <= 0 || s.cursor < 0 {
		return
	}
	headerRow := s.cursor
	for headerRow > 0 && s.rows[headerRow-1].kind == rowHeader {
		headerRow--
	}
	if headerRow < s.scrollOffset {
		s.scrollOffset = headerRow
	}
	if s.cursor >= s.scrollOffset+height {
		s.scrollOffset = s.cursor - height + 1
	}
}

func (s *BrowseScreen) View(width, height int) string {
	listHeight := height
	if s.status != "" {
		listHeight -= 2
	}
	s.adjustScroll(listHeight)

	var lines []string
	for i, r := range s.rows {
		if i < s.scrollOffset {
			continue
		}
		if len(lines) >= listHeight {
			break
		}
		switch r.kind {
		case rowHeader:
			lines = append(lines, s.renderHeader(r.shelf, width))
		case rowItem:
			lines = append(lines, renderItemRow(r.item, i == s.cursor, width))
		}
	}

	if s.status != "" {
		lines = append(lines, "", lipgloss.NewStyle().Foreground(theme.Accent).Padding(0, 2).Render(s.status))
	}
	return strings.Join(lines, "\n")
}

func (s *BrowseScreen) renderHeader(kind library.Kind, width int) string {
	n := len(s.deps.Library.Items(kind))
	return lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Width(width).
		Padding(0, 0, 0, 2).
		Render(fmt.Sprintf("%s (%d)", strings.ToUpper(kind.DisplayName()), n))
}

// renderItemRow renders one item: prompt, answer and mastery state.
func renderItemRow(it library.Item, selected bool, width int) string {
	state := mastery.StateOf(it)

	labelWidth := 10
	nameWidth := width - 8 - labelWidth
	if nameWidth < 10 {
		nameWidth = 10
	}
	text := it.Content.Prompt
	if it.Content.Answer != "" {
		text += "  →  " + it.Content.Answer
	}
	text = truncate(strings.ReplaceAll(text, "\n", " "), nameWidth)

	var nameStyle, labelStyle lipgloss.Style
	switch {
	case selected:
		nameStyle = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
		labelStyle = lipgloss.NewStyle().Foreground(theme.Primary)
	case state == mastery.StateMastered:
		nameStyle = lipgloss.NewStyle().Foreground(theme.Text)
		labelStyle = lipgloss.NewStyle().Foreground(theme.Success)
	case state == mastery.StateNew:
		nameStyle = lipgloss.NewStyle().Foreground(theme.Text)
		labelStyle = lipgloss.NewStyle().Foreground(theme.TextDim)
	default:
		nameStyle = lipgloss.NewStyle().Foreground(theme.Text)
		labelStyle = lipgloss.NewStyle().Foreground(theme.Accent)
	}

	cursor := "  "
	if selected {
		cursor = "▸ "
	}
	pad := nameWidth - lipgloss.Width(text)
	if pad < 0 {
		pad = 0
	}
	return fmt.Sprintf("  %s%s%s  %s",
		cursor,
		nameStyle.Render(text),
		strings.Repeat(" ", pad),
		labelStyle.Render(fmt.Sprintf("%9s", state.Label())),
	)
}

// truncate shortens s to at most width display cells.
func truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+1 > width {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}

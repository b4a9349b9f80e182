// Package patterns shows sentence patterns that recur across the
// learner's saved scripts.
package patterns

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/opicdrill/internal/generate"
	"github.com/abhisek/opicdrill/internal/library"
	"github.com/abhisek/opicdrill/internal/llm"
	"github.com/abhisek/opicdrill/internal/screen"
	"github.com/abhisek/opicdrill/internal/ui/components"
	"github.com/abhisek/opicdrill/internal/ui/layout"
	"github.com/abhisek/opicdrill/internal/ui/theme"
)

type patternsLoadedMsg struct {
	Patterns []generate.CommonPattern
	Scripts  int
	Err      error
}

// PatternsScreen lists common patterns extracted from saved scripts.
type PatternsScreen struct {
	deps     screen.Deps
	patterns []generate.CommonPattern
	scripts  int
	selected int
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*PatternsScreen)(nil)
var _ screen.KeyHintProvider = (*PatternsScreen)(nil)

// New creates a PatternsScreen. deps.Generator must be set.
func New(deps screen.Deps) *PatternsScreen {
	return &PatternsScreen{deps: deps}
}

func (s *PatternsScreen) Init() tea.Cmd {
	return s.load()
}

func (s *PatternsScreen) load() tea.Cmd {
	gen := s.deps.Generator
	scripts := s.deps.Library.Items(library.KindScript)
	return func() tea.Msg {
		patterns, err := gen.CommonPatterns(context.Background(), scripts)
		return patternsLoadedMsg{Patterns: patterns, Scripts: len(scripts), Err: err}
	}
}

func (s *PatternsScreen) Title() string {
	return "Common Patterns"
}

func (s *PatternsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "R", Description: "Analyze again"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *PatternsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case patternsLoadedMsg:
		s.loaded = true
		s.scripts = msg.Scripts
		if msg.Err != nil {
			s.deps.Log().Warn("extract common patterns", "err", msg.Err)
			s.errMsg = llm.Friendly(msg.Err)
			return s, nil
		}
		s.errMsg = ""
		s.patterns = msg.Patterns
		s.selected = 0
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.patterns)-1 {
				s.selected++
			}
		case "r", "R":
			if s.loaded {
				s.loaded = false
				return s, s.load()
			}
		}
	}
	return s, nil
}

func (s *PatternsScreen) View(width, height int) string {
	dim := lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Foreground(theme.TextDim)
	switch {
	case !s.loaded:
		return dim.Render("\n\n  Analyzing your scripts...")
	case s.errMsg != "":
		return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s\n\nPress R to try again.", s.errMsg))
	case s.scripts < generate.MinPatternScripts:
		return dim.Italic(true).Render(fmt.Sprintf(
			"\n\n  Save at least %d scripts to find patterns you keep using.", generate.MinPatternScripts))
	case len(s.patterns) == 0:
		return dim.Italic(true).Render("\n\n  No recurring patterns found yet.")
	}

	cw := components.ContentWidth(width)
	var blocks []string
	for i, p := range s.patterns {
		title := lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(p.Pattern)
		if i == s.selected {
			title = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("▸ " + p.Pattern)
		}
		body := []string{title}
		if p.Explanation != "" {
			body = append(body, theme.Native.Render(p.Explanation))
		}
		if p.Example != "" {
			body = append(body, theme.Hint.Render("e.g. "+p.Example))
		}
		blocks = append(blocks, components.Panel(strings.Join(body, "\n"), cw))
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, strings.Join(blocks, "\n"))
}

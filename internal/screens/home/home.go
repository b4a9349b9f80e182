package home

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/opicdrill/internal/library"
	"github.com/abhisek/opicdrill/internal/router"
	"github.com/abhisek/opicdrill/internal/screen"
	"github.com/abhisek/opicdrill/internal/screens/browse"
	composescreen "github.com/abhisek/opicdrill/internal/screens/compose"
	"github.com/abhisek/opicdrill/internal/screens/history"
	"github.com/abhisek/opicdrill/internal/screens/patterns"
	"github.com/abhisek/opicdrill/internal/screens/practice"
	"github.com/abhisek/opicdrill/internal/ui/components"
)

// HomeScreen shows shelf counts and the main menu.
type HomeScreen struct {
	deps       screen.Deps
	menu       components.Menu
	lastRefill string
}

var _ screen.Screen = (*HomeScreen)(nil)

func New(deps screen.Deps) *HomeScreen {
	open := func(next func() screen.Screen) func() tea.Cmd {
		return func() tea.Cmd {
			return func() tea.Msg { return router.PushScreenMsg{Screen: next()} }
		}
	}
	drill := func(k library.Kind) func() tea.Cmd {
		return open(func() screen.Screen { return practice.New(deps, k) })
	}

	return &HomeScreen{
		deps: deps,
		menu: components.NewMenu(
			components.Entry{Label: "Practice Scripts", Run: drill(library.KindScript)},
			components.Entry{Label: "Vocabulary", Run: drill(library.KindVocab)},
			components.Entry{Label: "Patterns", Run: drill(library.KindPattern)},
			components.Entry{Label: "Compose Script", Run: open(func() screen.Screen { return composescreen.New(deps) }), Off: deps.Composer == nil},
			components.Entry{Label: "Common Patterns", Run: open(func() screen.Screen { return patterns.New(deps) }), Off: deps.Generator == nil},
			components.Entry{Label: "Library", Run: open(func() screen.Screen { return browse.New(deps) })},
			components.Entry{Label: "History", Run: open(func() screen.Screen { return history.New(deps.Events) }), Off: deps.Events == nil},
			components.Entry{Label: "Quit", Run: func() tea.Cmd { return tea.Quit }},
		),
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if msg, ok := msg.(screen.RefillDoneMsg); ok {
		h.lastRefill = describeRefill(msg)
		return h, nil
	}
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	cw := components.ContentWidth(width)

	sections := []string{
		renderTitle(cw),
		renderStatsPanel(computeStats(h.deps), cw),
	}
	if status := renderRefillStatus(h.deps, h.lastRefill, cw); status != "" {
		sections = append(sections, status)
	}
	sections = append(sections, h.menu.View(cw))
	if h.deps.Composer == nil {
		sections = append(sections, renderLLMBanner(cw))
	}

	return components.Center(strings.Join(sections, "\n\n"), width, height)
}

func (h *HomeScreen) Title() string {
	return "Home"
}

func describeRefill(msg screen.RefillDoneMsg) string {
	res := msg.Result
	name := strings.ToLower(res.Kind.DisplayName())
	if res.Err != nil {
		return fmt.Sprintf("Could not refill %s, will retry later", name)
	}
	return fmt.Sprintf("Added %d new %s", res.Added, name)
}

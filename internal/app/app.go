// Package app hosts the root Bubble Tea model.
package app

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/opicdrill/internal/library"
	"github.com/abhisek/opicdrill/internal/queue"
	"github.com/abhisek/opicdrill/internal/router"
	"github.com/abhisek/opicdrill/internal/screen"
	"github.com/abhisek/opicdrill/internal/screens/home"
	"github.com/abhisek/opicdrill/internal/screens/welcome"
	"github.com/abhisek/opicdrill/internal/ui/layout"
)

// AppModel is the root Bubble Tea model.
type AppModel struct {
	deps   screen.Deps
	router *router.Router
	width  int
	height int
}

// newAppModel creates a new AppModel starting at the welcome screen.
func newAppModel(deps screen.Deps) AppModel {
	start := welcome.New(func() screen.Screen { return home.New(deps) })
	return AppModel{
		deps:   deps,
		router: router.New(start),
	}
}

func (m AppModel) Init() tea.Cmd {
	if active := m.router.Active(); active != nil {
		return active.Init()
	}
	return nil
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	v.SetContent(m.render())
	return v
}

func (m AppModel) render() string {
	active := m.router.Active()
	frame := layout.Frame{Status: m.status(), Hints: m.footerHints(active)}
	if active != nil {
		frame.Title = active.Title()
	}
	return frame.Render(m.router.View, m.width, m.height)
}

// status is the header's right-hand text: running refills take priority
// over shelf counts.
func (m AppModel) status() string {
	if m.deps.Queue != nil {
		var running []string
		for _, k := range library.Kinds {
			if m.deps.Queue.Refilling(k) {
				running = append(running, strings.ToLower(k.DisplayName()))
			}
		}
		if len(running) > 0 {
			return "Refilling " + strings.Join(running, ", ") + "…"
		}
	}
	if m.deps.Library == nil {
		return ""
	}
	counts := m.deps.Library.Counts()
	parts := make([]string, 0, len(library.Kinds))
	for _, k := range library.Kinds {
		parts = append(parts, fmt.Sprintf("%d %s", counts[k], strings.ToLower(k.DisplayName())))
	}
	return strings.Join(parts, " · ")
}

func (m AppModel) footerHints(active screen.Screen) []layout.KeyHint {
	if p, ok := active.(screen.KeyHintProvider); ok {
		return append(p.KeyHints(), layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
	}
	if m.router.Depth() > 1 {
		return []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

// Run starts the Bubble Tea program and blocks until it exits. Open
// screens are closed on the way out so an interrupted practice session is
// still flushed, and in-flight refills are awaited.
func Run(deps screen.Deps) error {
	m := newAppModel(deps)
	p := tea.NewProgram(m)

	if deps.Queue != nil {
		deps.Queue.SetListener(func(res queue.RefillResult) {
			p.Send(screen.RefillDoneMsg{Result: res})
		})
	}

	_, err := p.Run()

	m.router.CloseAll()
	if deps.Queue != nil {
		deps.Queue.SetListener(nil)
		deps.Queue.Wait()
	}
	if err != nil {
		deps.Log().Error("program exited", "err", err)
		return fmt.Errorf("run program: %w", err)
	}
	return nil
}

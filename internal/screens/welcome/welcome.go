// Package welcome is the splash shown once at startup.
package welcome

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/opicdrill/internal/router"
	"github.com/abhisek/opicdrill/internal/screen"
	"github.com/abhisek/opicdrill/internal/ui/theme"
)

const frameRate = 100 * time.Millisecond

// Frame counts at which each part of the splash appears.
const (
	waveAt   = 5
	bannerAt = 12
	doneAt   = 20
)

const bubble = `  ╭──────────────────╮
  │  Tell me about   │
  │  your house...   │
  ╰─────┬────────────╯
        ╰─ ◉`

const banner = `
  ___  ____ ___ ____ ____  ____  ___ _     _
 / _ \|  _ \_ _/ ___|  _ \|  _ \|_ _| |   | |
| | | | |_) | | |   | | | | |_) || || |   | |
| |_| |  __/| | |___| |_| |  _ < | || |___| |___
 \___/|_|  |___\____|____/|_| \_\___|_____|_____|`

// bannerWidth is the widest line of banner; narrower terminals get the
// spaced-out name instead.
const bannerWidth = 52

const tagline = "Speak it before you need it."

var waves = [...]string{")", "))", ")))"}

type frameMsg struct{}

// WelcomeScreen animates for two seconds, or until a key is pressed, then
// replaces itself with the screen from next.
type WelcomeScreen struct {
	next   func() screen.Screen
	frames int
	done   bool
}

var _ screen.Screen = (*WelcomeScreen)(nil)

func New(next func() screen.Screen) *WelcomeScreen {
	return &WelcomeScreen{next: next}
}

// Title is empty so the frame draws no header text over the splash.
func (w *WelcomeScreen) Title() string { return "" }

func (w *WelcomeScreen) Init() tea.Cmd { return nextFrame() }

func nextFrame() tea.Cmd {
	return tea.Tick(frameRate, func(time.Time) tea.Msg { return frameMsg{} })
}

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg.(type) {
	case frameMsg:
		if w.done {
			return w, nil
		}
		w.frames++
		if w.frames >= doneAt {
			return w, w.leave()
		}
		return w, nextFrame()
	case tea.KeyPressMsg:
		return w, w.leave()
	}
	return w, nil
}

// leave builds the next screen once; later calls return nil.
func (w *WelcomeScreen) leave() tea.Cmd {
	if w.done {
		return nil
	}
	w.done = true
	s := w.next()
	return func() tea.Msg { return router.ReplaceScreenMsg{Screen: s} }
}

func (w *WelcomeScreen) View(width, height int) string {
	art := bubble
	if w.frames >= waveAt {
		art += " " + lipgloss.NewStyle().Foreground(theme.Accent).Render(waves[w.frames%len(waves)])
	}
	lines := []string{lipgloss.NewStyle().Foreground(theme.Secondary).Render(art)}

	if w.frames >= bannerAt {
		name := banner
		if width < bannerWidth {
			name = "O P I C D R I L L"
		}
		lines = append(lines,
			"",
			lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render(name),
			"",
			theme.Target.Render(tagline),
			"",
			theme.Hint.Render("press any key to continue"),
		)
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, strings.Join(lines, "\n"))
}

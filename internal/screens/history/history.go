// Package history lists past practice sessions and background refills
// from the event log.
package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/opicdrill/internal/library"
	"github.com/abhisek/opicdrill/internal/screen"
	"github.com/abhisek/opicdrill/internal/store"
	"github.com/abhisek/opicdrill/internal/ui/layout"
	"github.com/abhisek/opicdrill/internal/ui/theme"
)

const pageSize = 50

type historyLoadedMsg struct {
	Sessions []store.SessionEvent
	Refills  []store.RefillEvent
	Err      error
}

type tab int

const (
	tabSessions tab = iota
	tabRefills
)

func (t tab) String() string {
	if t == tabRefills {
		return "Refills"
	}
	return "Sessions"
}

type HistoryScreen struct {
	events   store.EventRepo
	sessions []store.SessionEvent
	refills  []store.RefillEvent

	tab      tab
	selected int
	expanded map[string]bool // by session ID
	loaded   bool
	errMsg   string
}

var (
	_ screen.Screen          = (*HistoryScreen)(nil)
	_ screen.KeyHintProvider = (*HistoryScreen)(nil)
)

func New(events store.EventRepo) *HistoryScreen {
	return &HistoryScreen{events: events, expanded: map[string]bool{}}
}

// Init loads both lists concurrently. Only a session query failure is
// reported; missing refills just leave that tab empty.
func (s *HistoryScreen) Init() tea.Cmd {
	repo := s.events
	return func() tea.Msg {
		var msg historyLoadedMsg
		g, ctx := errgroup.WithContext(context.Background())
		g.Go(func() (err error) {
			msg.Sessions, err = repo.QuerySessions(ctx, store.QueryOpts{Limit: pageSize})
			return err
		})
		g.Go(func() error {
			msg.Refills, _ = repo.QueryRefills(ctx, store.QueryOpts{Limit: pageSize})
			return nil
		})
		msg.Err = g.Wait()
		return msg
	}
}

func (s *HistoryScreen) Title() string { return "History" }

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{{Key: "↑↓", Description: "Navigate"}}
	if s.tab == tabSessions {
		hints = append(hints, layout.KeyHint{Key: "Enter", Description: "Details"})
	}
	return append(hints,
		layout.KeyHint{Key: "Tab", Description: "Sessions/Refills"},
		layout.KeyHint{Key: "Esc", Description: "Back"},
	)
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		s.loaded = true
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.sessions, s.refills = msg.Sessions, msg.Refills

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			s.selected = max(s.selected-1, 0)
		case "down", "j":
			s.selected = max(min(s.selected+1, s.rows()-1), 0)
		case "tab":
			s.tab = 1 - s.tab
			s.selected = 0
		case "enter":
			if s.tab == tabSessions && s.selected < len(s.sessions) {
				id := s.sessions[s.selected].SessionID
				s.expanded[id] = !s.expanded[id]
			}
		}
	}
	return s, nil
}

func (s *HistoryScreen) rows() int {
	if s.tab == tabRefills {
		return len(s.refills)
	}
	return len(s.sessions)
}

func (s *HistoryScreen) View(width, height int) string {
	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)
	switch {
	case s.errMsg != "":
		return "\n\n" + center.Foreground(theme.Error).Render("Error: "+s.errMsg)
	case !s.loaded:
		return "\n\n" + center.Foreground(theme.TextDim).Render("Loading history...")
	}

	var lines []string
	if s.tab == tabRefills {
		lines = s.refillLines()
	} else {
		lines = s.sessionLines()
	}
	if len(lines) == 0 {
		empty := "No sessions yet. Start practicing!"
		if s.tab == tabRefills {
			empty = "No refills yet."
		}
		lines = []string{theme.Hint.Render(empty)}
	}

	return "\n" + center.Render(s.tabs()) + "\n\n" +
		center.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (s *HistoryScreen) tabs() string {
	labels := make([]string, 2)
	for t := tabSessions; t <= tabRefills; t++ {
		style := lipgloss.NewStyle().Foreground(theme.TextDim)
		if t == s.tab {
			style = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Underline(true)
		}
		labels[t] = style.Render(t.String())
	}
	return strings.Join(labels, "    ")
}

// row styles one list line, marking the cursor.
func (s *HistoryScreen) row(i int, text string, failed bool) string {
	style := lipgloss.NewStyle().Foreground(theme.Text)
	if failed {
		style = style.Foreground(theme.Error)
	}
	cursor := "  "
	if i == s.selected {
		cursor = "> "
		style = style.Bold(true)
		if !failed {
			style = style.Foreground(theme.Primary)
		}
	}
	return style.Render(cursor + text)
}

func (s *HistoryScreen) sessionLines() []string {
	var out []string
	for i, ev := range s.sessions {
		text := fmt.Sprintf("%s  %-10s  %s  %d served  %.0f%% accuracy",
			ev.Timestamp.Local().Format("Jan 02, 2006"),
			library.Kind(ev.Kind).DisplayName(),
			minutes(ev.Duration),
			ev.Served,
			100*accuracy(ev.SuccessCount, ev.FailCount))
		if ev.Abandoned {
			text += "  (saved early)"
		}
		out = append(out, s.row(i, text, false))

		if s.expanded[ev.SessionID] {
			out = append(out, lipgloss.NewStyle().Foreground(theme.TextDim).Render(
				fmt.Sprintf("    %d✓  %d✗  started %s  ·  %s",
					ev.SuccessCount, ev.FailCount, ev.Timestamp.Local().Format("15:04"), ev.SessionID)))
		}
	}
	return out
}

func (s *HistoryScreen) refillLines() []string {
	out := make([]string, len(s.refills))
	for i, ev := range s.refills {
		outcome := fmt.Sprintf("+%d of %d", ev.Added, ev.Received)
		if !ev.Success {
			outcome = "failed: " + ev.ErrorMessage
		}
		out[i] = s.row(i, fmt.Sprintf("%s  %-10s  %6s  %s",
			ev.Timestamp.Local().Format("Jan 02 15:04"),
			library.Kind(ev.Kind).DisplayName(),
			latency(ev.LatencyMs),
			outcome), !ev.Success)
	}
	return out
}

func accuracy(success, fail int) float64 {
	if success+fail == 0 {
		return 0
	}
	return float64(success) / float64(success+fail)
}

func minutes(d time.Duration) string {
	secs := int(d.Round(time.Second).Seconds())
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

func latency(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	return fmt.Sprintf("%.1fs", float64(ms)/1000)
}

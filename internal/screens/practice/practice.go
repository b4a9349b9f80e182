// Package practice implements the drill screen: one item at a time, reveal,
// then self-assess.
package practice

import (
	"context"
	"errors"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/opicdrill/internal/library"
	"github.com/abhisek/opicdrill/internal/llm"
	"github.com/abhisek/opicdrill/internal/queue"
	"github.com/abhisek/opicdrill/internal/router"
	"github.com/abhisek/opicdrill/internal/screen"
	"github.com/abhisek/opicdrill/internal/screens/summary"
	"github.com/abhisek/opicdrill/internal/session"
	"github.com/abhisek/opicdrill/internal/ui/layout"
	"github.com/abhisek/opicdrill/internal/ui/theme"
)

// PracticeScreen drives a session.Tracker over a queue of one kind.
type PracticeScreen struct {
	deps    screen.Deps
	kind    library.Kind
	tracker *session.Tracker

	loading   bool
	preparing bool
	refillErr string
	errMsg    string
	flushErr  string

	spinner spinner.Model
}

var _ screen.Screen = (*PracticeScreen)(nil)
var _ screen.KeyHintProvider = (*PracticeScreen)(nil)
var _ screen.Closer = (*PracticeScreen)(nil)

// New creates a practice screen for kind.
func New(deps screen.Deps, kind library.Kind) *PracticeScreen {
	return &PracticeScreen{
		deps:    deps,
		kind:    kind,
		loading: true,
		spinner: spinner.New(
			spinner.WithSpinner(spinner.MiniDot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(theme.Accent)),
		),
	}
}

func (s *PracticeScreen) Init() tea.Cmd {
	return tea.Batch(s.resume(), s.spinner.Tick)
}

func (s *PracticeScreen) Title() string {
	return s.kind.DisplayName()
}

func (s *PracticeScreen) KeyHints() []layout.KeyHint {
	switch {
	case s.errMsg != "":
		return []layout.KeyHint{{Key: "any key", Description: "Back"}}
	case s.preparing:
		return []layout.KeyHint{
			{Key: "R", Description: "Retry"},
			{Key: "Esc", Description: "Back"},
		}
	case s.tracker == nil:
		return nil
	case s.tracker.Phase() == session.PhaseRevealed:
		return []layout.KeyHint{
			{Key: "Y", Description: "Got it"},
			{Key: "N", Description: "Missed"},
			{Key: "Esc", Description: "Save & exit"},
		}
	}
	return []layout.KeyHint{
		{Key: "Space", Description: "Reveal"},
		{Key: "Y/N", Description: "Got it / Missed"},
		{Key: "Esc", Description: "Save & exit"},
	}
}

func (s *PracticeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case queueLoadedMsg:
		return s.handleLoaded(msg)

	case screen.RefillDoneMsg:
		return s.handleRefill(msg.Result)

	case spinner.TickMsg:
		if !s.loading && !s.preparing {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

// resume rebuilds an interrupted queue or selects a fresh one.
func (s *PracticeScreen) resume() tea.Cmd {
	deps, kind := s.deps, s.kind
	return func() tea.Msg {
		q, err := deps.Queue.ResumeQueue(context.Background(), kind, deps.Clock())
		return queueLoadedMsg{Queue: q, Err: err}
	}
}

// next selects a fresh queue, starting a refill when the library is low.
func (s *PracticeScreen) next() tea.Cmd {
	deps, kind := s.deps, s.kind
	return func() tea.Msg {
		q, err := deps.Queue.Next(context.Background(), kind, deps.Clock())
		return queueLoadedMsg{Queue: q, Err: err}
	}
}

func (s *PracticeScreen) handleLoaded(msg queueLoadedMsg) (screen.Screen, tea.Cmd) {
	s.loading = false
	if errors.Is(msg.Err, queue.ErrEmptyQueue) {
		s.preparing = true
		// A refill can land between the empty selection and this message.
		if s.deps.Queue.Select(s.kind, s.deps.Clock()).Len() > 0 {
			return s, s.next()
		}
		return s, nil
	}
	if msg.Err != nil {
		s.errMsg = msg.Err.Error()
		return s, nil
	}

	tr, err := session.New(msg.Queue, s.deps.Library, session.Options{
		Recorder: s.deps.Events,
		Logger:   s.deps.Log(),
		Now:      s.deps.Now,
	})
	if err != nil {
		s.errMsg = err.Error()
		return s, nil
	}
	s.tracker = tr
	s.preparing = false
	s.refillErr = ""
	return s, nil
}

func (s *PracticeScreen) handleRefill(res queue.RefillResult) (screen.Screen, tea.Cmd) {
	if res.Kind != s.kind || !s.preparing {
		return s, nil
	}
	if res.Err != nil {
		s.refillErr = llm.Friendly(res.Err)
		return s, nil
	}
	if res.Added == 0 {
		return s, nil
	}
	return s, s.next()
}

func (s *PracticeScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.errMsg != "" {
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}

	if s.preparing {
		if key == "r" || key == "R" {
			s.refillErr = ""
			return s, s.next()
		}
		return s, nil
	}

	if s.tracker == nil || s.tracker.Done() {
		return s, nil
	}

	switch key {
	case "space", "enter":
		s.tracker.Reveal()
	case "y", "Y":
		return s.record(library.Success)
	case "n", "N":
		return s.record(library.Fail)
	}
	return s, nil
}

func (s *PracticeScreen) record(outcome library.Outcome) (screen.Screen, tea.Cmd) {
	ctx := context.Background()
	if err := s.tracker.Record(ctx, outcome); err != nil {
		s.deps.Log().Error("record outcome", "kind", s.kind, "err", err)
		s.flushErr = err.Error()
	}
	if !s.tracker.Done() {
		return s, nil
	}

	if err := s.deps.Queue.ClearQueue(ctx, s.kind); err != nil {
		s.deps.Log().Warn("clear saved queue", "kind", s.kind, "err", err)
	}
	sum := s.tracker.Summary()
	next := summary.New(sum, s.missedItems(sum.Missed), s.flushErr)
	return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
}

// Close ends an unfinished session early. Recorded outcomes are flushed
// and the unanswered part of the queue is saved for the next visit.
func (s *PracticeScreen) Close() {
	if s.tracker == nil || s.tracker.Done() {
		return
	}
	ctx := context.Background()
	remaining := s.tracker.Remaining()
	if err := s.tracker.Exit(ctx); err != nil {
		s.deps.Log().Error("flush partial session", "kind", s.kind, "err", err)
	}
	if err := s.deps.Queue.SaveQueue(ctx, remaining); err != nil {
		s.deps.Log().Warn("save queue", "kind", s.kind, "err", err)
	}
}

func (s *PracticeScreen) missedItems(keys []string) []library.Item {
	var items []library.Item
	for _, k := range keys {
		if it, ok := s.deps.Library.Get(s.kind, k); ok {
			items = append(items, it)
		}
	}
	return items
}

// Package compose is the script authoring screen: question, native draft,
// English variants, save.
package compose

import (
	"context"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/opicdrill/internal/compose"
	"github.com/abhisek/opicdrill/internal/generate"
	"github.com/abhisek/opicdrill/internal/llm"
	"github.com/abhisek/opicdrill/internal/router"
	"github.com/abhisek/opicdrill/internal/screen"
	"github.com/abhisek/opicdrill/internal/ui/components"
	"github.com/abhisek/opicdrill/internal/ui/layout"
	"github.com/abhisek/opicdrill/internal/ui/theme"
)

type step int

const (
	stepQuestion step = iota
	stepSamples
	stepNative
	stepVariants
	stepSaved
)

func (s step) String() string {
	return [...]string{"question", "samples", "native", "variants", "saved"}[s]
}

// ownAnswer is the extra sample option that starts from an empty draft.
const ownAnswer = "Write my own answer"

// ComposeScreen walks the learner through authoring one script.
type ComposeScreen struct {
	deps     screen.Deps
	composer *compose.Composer

	step     step
	busy     string // non-empty while a generation runs
	errMsg   string
	retry    func() tea.Cmd
	draft    compose.Draft
	variants []generate.Variant

	question components.TextInput
	samples  components.MultiChoice
	native   components.TextArea
	choice   components.MultiChoice
	spinner  spinner.Model
}

var _ screen.Screen = (*ComposeScreen)(nil)
var _ screen.KeyHintProvider = (*ComposeScreen)(nil)

// New creates a compose screen. deps.Composer must be set.
func New(deps screen.Deps) *ComposeScreen {
	return &ComposeScreen{
		deps:     deps,
		composer: deps.Composer,
		question: components.NewTextInput("Type an interview question...", 200),
		native:   components.NewTextArea("Write your answer in Korean...", 60, 8),
		spinner: spinner.New(
			spinner.WithSpinner(spinner.MiniDot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(theme.Accent)),
		),
	}
}

func (s *ComposeScreen) Init() tea.Cmd {
	return tea.Batch(s.question.Init(), s.fetchQuestion())
}

func (s *ComposeScreen) Title() string {
	return "Compose Script"
}

func (s *ComposeScreen) KeyHints() []layout.KeyHint {
	if s.errMsg != "" {
		return []layout.KeyHint{
			{Key: "R", Description: "Retry"},
			{Key: "Esc", Description: "Back"},
		}
	}
	if s.busy != "" {
		return []layout.KeyHint{{Key: "Esc", Description: "Cancel"}}
	}
	switch s.step {
	case stepQuestion:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Use question"},
			{Key: "Ctrl+R", Description: "New question"},
			{Key: "Esc", Description: "Back"},
		}
	case stepNative:
		return []layout.KeyHint{
			{Key: "Ctrl+S", Description: "Translate"},
			{Key: "Esc", Description: "Back"},
		}
	case stepSaved:
		return []layout.KeyHint{{Key: "Enter", Description: "Done"}}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Choose"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *ComposeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case questionMsg:
		s.busy = ""
		if msg.Err != nil {
			return s.fail(msg.Err, s.fetchQuestion)
		}
		s.question.SetValue(msg.Question)
		return s, nil

	case samplesMsg:
		s.busy = ""
		if msg.Err != nil {
			return s.fail(msg.Err, func() tea.Cmd { return s.fetchSamples(s.draft.Question) })
		}
		opts := make([]components.Choice, 0, len(msg.Samples)+1)
		for i, sample := range msg.Samples {
			opts = append(opts, components.Choice{Label: fmt.Sprintf("Sample %d", i+1), Detail: sample})
		}
		opts = append(opts, components.Choice{Label: ownAnswer})
		s.samples = components.NewMultiChoice("Pick a sample to start from:", opts)
		s.step = stepSamples
		return s, nil

	case variantsMsg:
		s.busy = ""
		if msg.Err != nil {
			return s.fail(msg.Err, func() tea.Cmd { return s.fetchVariants(s.draft.Native) })
		}
		s.variants = msg.Variants
		opts := make([]components.Choice, len(msg.Variants))
		for i, v := range msg.Variants {
			detail := v.Text
			if len(v.Steps) > 0 {
				detail += "\n" + strings.Join(v.Steps, " → ")
			}
			opts[i] = components.Choice{Label: v.Label, Detail: detail}
		}
		s.choice = components.NewMultiChoice("Choose the script to keep:", opts)
		s.step = stepVariants
		return s, nil

	case savedMsg:
		s.busy = ""
		if msg.Err != nil {
			return s.fail(msg.Err, s.save)
		}
		s.step = stepSaved
		return s, nil

	case spinner.TickMsg:
		if s.busy == "" {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	return s.forward(msg)
}

func (s *ComposeScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.errMsg != "" {
		if key == "r" || key == "R" {
			retry := s.retry
			s.errMsg, s.retry = "", nil
			if retry == nil {
				return s, nil
			}
			return s, retry()
		}
		return s, nil
	}
	if s.busy != "" {
		return s, nil
	}

	switch s.step {
	case stepQuestion:
		switch key {
		case "ctrl+r":
			return s, s.fetchQuestion()
		case "enter":
			q := s.question.Value()
			if q == "" {
				return s, nil
			}
			s.draft.Question = q
			return s, s.fetchSamples(q)
		}

	case stepSamples:
		var cmd tea.Cmd
		s.samples, cmd = s.samples.Update(msg)
		if c, ok := s.samples.Chosen(); ok {
			s.native.SetValue(c.Detail)
			s.step = stepNative
			return s, s.native.Init()
		}
		return s, cmd

	case stepNative:
		if key == "ctrl+s" {
			native := s.native.Value()
			if native == "" {
				return s, nil
			}
			s.draft.Native = native
			return s, s.fetchVariants(native)
		}

	case stepVariants:
		s.choice, _ = s.choice.Update(msg)
		if i, ok := s.choice.Picked(); ok {
			s.draft.Variant = s.variants[i]
			return s, s.save()
		}
		return s, nil

	case stepSaved:
		if key == "enter" {
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
		return s, nil
	}

	return s.forward(msg)
}

// forward hands input to the focused text component.
func (s *ComposeScreen) forward(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	switch s.step {
	case stepQuestion:
		s.question, cmd = s.question.Update(msg)
	case stepNative:
		s.native, cmd = s.native.Update(msg)
	}
	return s, cmd
}

func (s *ComposeScreen) fail(err error, retry func() tea.Cmd) (screen.Screen, tea.Cmd) {
	s.deps.Log().Warn("compose step failed", "step", s.step, "err", err)
	s.errMsg = llm.Friendly(err)
	s.retry = retry
	return s, nil
}

func (s *ComposeScreen) start(label string, fn func(ctx context.Context) tea.Msg) tea.Cmd {
	s.busy = label
	return tea.Batch(s.spinner.Tick, func() tea.Msg {
		return fn(context.Background())
	})
}

func (s *ComposeScreen) fetchQuestion() tea.Cmd {
	c := s.composer
	return s.start("Picking a question", func(ctx context.Context) tea.Msg {
		q, err := c.Question(ctx)
		return questionMsg{Question: q, Err: err}
	})
}

func (s *ComposeScreen) fetchSamples(question string) tea.Cmd {
	c := s.composer
	return s.start("Drafting sample answers", func(ctx context.Context) tea.Msg {
		samples, err := c.Samples(ctx, question)
		return samplesMsg{Samples: samples, Err: err}
	})
}

func (s *ComposeScreen) fetchVariants(native string) tea.Cmd {
	c := s.composer
	return s.start("Writing English scripts", func(ctx context.Context) tea.Msg {
		variants, err := c.Variants(ctx, native)
		return variantsMsg{Variants: variants, Err: err}
	})
}

func (s *ComposeScreen) save() tea.Cmd {
	c, d := s.composer, s.draft
	return s.start("Saving", func(ctx context.Context) tea.Msg {
		item, err := c.Save(ctx, d)
		return savedMsg{Item: item, Err: err}
	})
}

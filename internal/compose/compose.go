// Package compose implements the script authoring flow: pick or generate
// an interview question, draft an answer in the native language, render
// it as English variants, and save the chosen variant as a new script.
package compose

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/opicdrill/internal/generate"
	"github.com/abhisek/opicdrill/internal/library"
	"github.com/google/uuid"
)

// Draft errors.
var (
	ErrNoQuestion = errors.New("question is empty")
	ErrNoAnswer   = errors.New("native answer is empty")
	ErrNoScript   = errors.New("no script variant chosen")
)

// Generator is the subset of generate.Service the composer needs.
type Generator interface {
	Question(ctx context.Context) (string, error)
	NativeSamples(ctx context.Context, question string, scripts []library.Item) ([]string, error)
	Scripts(ctx context.Context, native string) ([]generate.Variant, error)
}

// Library is the subset of library.Store the composer needs.
type Library interface {
	Items(kind library.Kind) []library.Item
	Merge(ctx context.Context, kind library.Kind, incoming []library.Item) (int, error)
}

// Draft is a script being authored.
type Draft struct {
	Question string
	Native   string
	Variant  generate.Variant
}

// Validate reports the first missing part of the draft.
func (d Draft) Validate() error {
	switch {
	case strings.TrimSpace(d.Question) == "":
		return ErrNoQuestion
	case strings.TrimSpace(d.Native) == "":
		return ErrNoAnswer
	case strings.TrimSpace(d.Variant.Text) == "":
		return ErrNoScript
	}
	return nil
}

// Item converts the draft into a new script item with zeroed stats.
func (d Draft) Item(id string, now time.Time) library.Item {
	return library.New(library.KindScript, id, library.Content{
		Prompt:      strings.TrimSpace(d.Question),
		Native:      strings.TrimSpace(d.Native),
		Answer:      strings.TrimSpace(d.Variant.Text),
		Steps:       append([]string(nil), d.Variant.Steps...),
		Explanation: d.Variant.Label,
	}, now)
}

// Composer runs the generation steps of the authoring flow. It holds no
// draft state, so its methods can run on background goroutines while the
// caller owns the Draft.
type Composer struct {
	gen   Generator
	lib   Library
	now   func() time.Time
	newID func() string
}

// New creates a Composer.
func New(gen Generator, lib Library) *Composer {
	return &Composer{
		gen:   gen,
		lib:   lib,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Question generates an interview question.
func (c *Composer) Question(ctx context.Context) (string, error) {
	return c.gen.Question(ctx)
}

// Samples drafts native-language sample answers to question, biased by
// the scripts the learner has mastered.
func (c *Composer) Samples(ctx context.Context, question string) ([]string, error) {
	if strings.TrimSpace(question) == "" {
		return nil, ErrNoQuestion
	}
	return c.gen.NativeSamples(ctx, question, c.lib.Items(library.KindScript))
}

// Variants renders native as labelled English scripts.
func (c *Composer) Variants(ctx context.Context, native string) ([]generate.Variant, error) {
	if strings.TrimSpace(native) == "" {
		return nil, ErrNoAnswer
	}
	return c.gen.Scripts(ctx, native)
}

// Save validates d and stores it as a new script.
func (c *Composer) Save(ctx context.Context, d Draft) (library.Item, error) {
	if err := d.Validate(); err != nil {
		return library.Item{}, err
	}
	item := d.Item(c.newID(), c.now())
	if _, err := c.lib.Merge(ctx, library.KindScript, []library.Item{item}); err != nil {
		return library.Item{}, fmt.Errorf("save script: %w", err)
	}
	return item, nil
}

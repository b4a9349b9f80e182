// Package generate turns LLM responses into practice content: interview
// questions, vocabulary and sentence-pattern batches, native-language
// sample answers, labelled target scripts and common-pattern summaries.
package generate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/abhisek/opicdrill/internal/library"
	"github.com/abhisek/opicdrill/internal/llm"
	"github.com/abhisek/opicdrill/internal/mastery"
)

// Script variant labels.
const (
	LabelSimple   = "Simple"
	LabelNatural  = "Natural"
	LabelDetailed = "Detailed"
)

// MinPatternScripts is the number of scripts needed before common
// patterns are extracted.
const MinPatternScripts = 2

// Variant is one English rendition of a native-language answer.
type Variant struct {
	Label string
	Text  string
	Steps []string
}

// CommonPattern is a sentence pattern that recurs across scripts.
type CommonPattern struct {
	Pattern     string
	Explanation string
	Example     string
}

// KeySource exposes the keys already stored for a kind. library.Store
// implements it.
type KeySource interface {
	Keys(kind library.Kind) map[string]struct{}
}

// Option configures a Service.
type Option func(*Service)

// WithKeys lists existing library keys in batch prompts so the provider
// avoids repeating them.
func WithKeys(k KeySource) Option {
	return func(s *Service) { s.keys = k }
}

// WithClock overrides the clock used for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithSeed makes topic selection deterministic.
func WithSeed(seed uint64) Option {
	return func(s *Service) { s.rng = rand.New(rand.NewPCG(seed, seed)) }
}

// Request purposes, recorded with every provider call.
const (
	PurposeQuestion       = "question"
	PurposeVocab          = "vocab-batch"
	PurposeStructures     = "structure-batch"
	PurposeSamples        = "native-samples"
	PurposeScripts        = "target-scripts"
	PurposeCommonPatterns = "common-patterns"
)

// Service generates content through an llm.Provider. It implements
// queue.Source for the vocab and pattern kinds.
type Service struct {
	provider llm.Provider
	cfg      Config
	keys     KeySource
	now      func() time.Time

	rngMu sync.Mutex
	rng   *rand.Rand
}

// New creates a Service.
func New(provider llm.Provider, cfg Config, opts ...Option) *Service {
	s := &Service{
		provider: provider,
		cfg:      cfg,
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	if s.rng == nil {
		seed := uint64(time.Now().UnixNano())
		s.rng = rand.New(rand.NewPCG(seed, seed>>1))
	}
	return s
}

// Batch produces a fresh batch of items for kind. Scripts are authored
// through the composer, so KindScript returns ErrNotGenerated.
func (s *Service) Batch(ctx context.Context, kind library.Kind) ([]library.Item, error) {
	switch kind {
	case library.KindVocab:
		return s.Vocabulary(ctx)
	case library.KindPattern:
		return s.Structures(ctx)
	case library.KindScript:
		return nil, ErrNotGenerated
	}
	return nil, fmt.Errorf("unknown kind %q", kind)
}

type vocabOutput struct {
	Vocabs []struct {
		Word    string `json:"word"`
		Meaning string `json:"meaning"`
	} `json:"vocabs"`
}

// Vocabulary asks for a batch of vocabulary items. Keys are the English
// words; entries missing either side are dropped.
func (s *Service) Vocabulary(ctx context.Context) ([]library.Item, error) {
	const purpose = PurposeVocab

	var out vocabOutput
	msg := vocabMessage(s.cfg.VocabCount, s.existing(library.KindVocab))
	if err := s.call(ctx, purpose, VocabSchema, msg, &out); err != nil {
		return nil, err
	}

	now := s.now()
	items := make([]library.Item, 0, len(out.Vocabs))
	for _, v := range out.Vocabs {
		word := strings.TrimSpace(v.Word)
		meaning := strings.TrimSpace(v.Meaning)
		if word == "" || meaning == "" {
			continue
		}
		items = append(items, library.New(library.KindVocab, word, library.Content{
			Prompt: meaning,
			Answer: word,
		}, now))
	}
	if len(items) == 0 {
		return nil, genErr(purpose, errors.New("no usable items"))
	}
	return items, nil
}

type structureOutput struct {
	Structures []struct {
		Korean   string `json:"korean"`
		English  string `json:"english"`
		Examples []struct {
			Korean  string `json:"korean"`
			English string `json:"english"`
		} `json:"examples"`
	} `json:"structures"`
}

// Structures asks for a batch of sentence patterns. Keys are the English
// patterns.
func (s *Service) Structures(ctx context.Context) ([]library.Item, error) {
	const purpose = PurposeStructures

	var out structureOutput
	msg := structureMessage(s.cfg.PatternCount, s.existing(library.KindPattern))
	if err := s.call(ctx, purpose, StructureSchema, msg, &out); err != nil {
		return nil, err
	}

	now := s.now()
	items := make([]library.Item, 0, len(out.Structures))
	for _, st := range out.Structures {
		en := strings.TrimSpace(st.English)
		ko := strings.TrimSpace(st.Korean)
		if en == "" || ko == "" {
			continue
		}
		var examples []library.Example
		for _, ex := range st.Examples {
			if ex.English == "" {
				continue
			}
			examples = append(examples, library.Example{
				Native: strings.TrimSpace(ex.Korean),
				Target: strings.TrimSpace(ex.English),
			})
		}
		items = append(items, library.New(library.KindPattern, en, library.Content{
			Prompt:   ko,
			Answer:   en,
			Examples: examples,
		}, now))
	}
	if len(items) == 0 {
		return nil, genErr(purpose, errors.New("no usable items"))
	}
	return items, nil
}

// Question returns a realistic interview question for a randomly chosen
// topic. An empty answer from the provider yields FallbackQuestion.
func (s *Service) Question(ctx context.Context) (string, error) {
	s.rngMu.Lock()
	topic := Topics[s.rng.IntN(len(Topics))]
	s.rngMu.Unlock()

	var out struct {
		Question string `json:"question"`
	}
	if err := s.call(ctx, PurposeQuestion, QuestionSchema, questionMessage(topic), &out); err != nil {
		return "", err
	}
	if q := strings.TrimSpace(out.Question); q != "" {
		return q, nil
	}
	return FallbackQuestion, nil
}

// NativeSamples drafts sample answers to question in Korean. Mastered
// scripts among scripts are quoted so the samples lean on structures the
// learner already knows.
func (s *Service) NativeSamples(ctx context.Context, question string, scripts []library.Item) ([]string, error) {
	const purpose = PurposeSamples

	var mastered []string
	for _, it := range scripts {
		if len(mastered) >= s.cfg.MaxMastered {
			break
		}
		if mastery.IsMastered(it) && it.Content.Answer != "" {
			mastered = append(mastered, excerpt(it.Content.Answer, 50))
		}
	}

	var out struct {
		Samples []string `json:"samples"`
	}
	msg := samplesMessage(question, s.cfg.SampleCount, mastered)
	if err := s.call(ctx, purpose, SamplesSchema, msg, &out); err != nil {
		return nil, err
	}

	samples := make([]string, 0, len(out.Samples))
	for _, smp := range out.Samples {
		if smp = strings.TrimSpace(smp); smp != "" {
			samples = append(samples, smp)
		}
	}
	if len(samples) == 0 {
		return nil, genErr(purpose, errors.New("no samples"))
	}
	return samples, nil
}

// Scripts renders a native-language answer as labelled English variants,
// each with its logic flow.
func (s *Service) Scripts(ctx context.Context, native string) ([]Variant, error) {
	const purpose = PurposeScripts

	var out struct {
		Scripts []struct {
			Label     string   `json:"label"`
			Text      string   `json:"text"`
			LogicFlow []string `json:"logicFlow"`
		} `json:"scripts"`
	}
	if err := s.call(ctx, purpose, ScriptsSchema, scriptsMessage(native), &out); err != nil {
		return nil, err
	}

	variants := make([]Variant, 0, len(out.Scripts))
	for _, sc := range out.Scripts {
		text := strings.TrimSpace(sc.Text)
		if text == "" {
			continue
		}
		var steps []string
		for _, st := range sc.LogicFlow {
			if st = strings.TrimSpace(st); st != "" {
				steps = append(steps, st)
			}
		}
		variants = append(variants, Variant{Label: sc.Label, Text: text, Steps: steps})
	}
	if len(variants) == 0 {
		return nil, genErr(purpose, errors.New("no scripts"))
	}
	return variants, nil
}

// CommonPatterns extracts recurring sentence patterns from scripts. With
// fewer than MinPatternScripts scripts it returns nothing without calling
// the provider.
func (s *Service) CommonPatterns(ctx context.Context, scripts []library.Item) ([]CommonPattern, error) {
	var texts []string
	for _, it := range scripts {
		if it.Content.Answer != "" {
			texts = append(texts, it.Content.Answer)
		}
	}
	if len(texts) < MinPatternScripts {
		return nil, nil
	}

	var out struct {
		Patterns []struct {
			Pattern     string `json:"pattern"`
			Explanation string `json:"explanation"`
			Example     string `json:"example"`
		} `json:"patterns"`
	}
	if err := s.call(ctx, PurposeCommonPatterns, PatternsSchema, patternsMessage(texts, 3), &out); err != nil {
		return nil, err
	}

	patterns := make([]CommonPattern, 0, len(out.Patterns))
	for _, p := range out.Patterns {
		if strings.TrimSpace(p.Pattern) == "" {
			continue
		}
		patterns = append(patterns, CommonPattern{
			Pattern:     strings.TrimSpace(p.Pattern),
			Explanation: strings.TrimSpace(p.Explanation),
			Example:     strings.TrimSpace(p.Example),
		})
	}
	return patterns, nil
}

func (s *Service) existing(kind library.Kind) string {
	if s.keys == nil {
		return "None"
	}
	return buildDedup(s.keys.Keys(kind), s.cfg.MaxExisting)
}

func (s *Service) call(ctx context.Context, purpose string, schema *llm.Schema, msg string, out any) error {
	req := llm.Request{
		Purpose: purpose,
		System:  systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: msg},
		},
		Schema:      schema,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	}

	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		return genErr(purpose, err)
	}
	if err := json.Unmarshal(resp.Content, out); err != nil {
		return genErr(purpose, fmt.Errorf("parse response: %w", err))
	}
	return nil
}

package library

import (
	"fmt"
	"time"
)

// Kind identifies which shelf of the library an item lives on.
type Kind string

const (
	KindScript  Kind = "script"
	KindVocab   Kind = "vocab"
	KindPattern Kind = "pattern"
)

// Kinds lists every kind in display order.
var Kinds = []Kind{KindScript, KindVocab, KindPattern}

// ParseKind converts a user-supplied string to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "script", "scripts":
		return KindScript, nil
	case "vocab", "vocabulary", "words":
		return KindVocab, nil
	case "pattern", "patterns", "structures":
		return KindPattern, nil
	}
	return "", fmt.Errorf("unknown item kind %q", s)
}

// DisplayName returns the plural label used in the UI.
func (k Kind) DisplayName() string {
	switch k {
	case KindScript:
		return "Scripts"
	case KindVocab:
		return "Vocabulary"
	case KindPattern:
		return "Patterns"
	}
	return string(k)
}

// Example is a native/target sentence pair illustrating an item.
type Example struct {
	Native string `json:"native"`
	Target string `json:"target"`
}

// Content is the practice payload of an item. Which fields are populated
// depends on the kind:
//
//   - script:  Prompt = interview question, Native = Korean draft answer,
//     Answer = English script, Steps = logic flow keywords
//   - vocab:   Prompt = Korean meaning, Answer = English word or expression
//   - pattern: Prompt = Korean pattern, Answer = English pattern, Examples
type Content struct {
	Prompt      string    `json:"prompt"`
	Answer      string    `json:"answer"`
	Native      string    `json:"native,omitempty"`
	Steps       []string  `json:"steps,omitempty"`
	Examples    []Example `json:"examples,omitempty"`
	Explanation string    `json:"explanation,omitempty"`
}

// Stats is the per-item practice record. It is only ever changed by
// applying a session outcome for the item's key.
type Stats struct {
	SuccessCount    int        `json:"success_count"`
	FailCount       int        `json:"fail_count"`
	LastPracticedAt *time.Time `json:"last_practiced_at,omitempty"`

	// Known is set by the most recent outcome: true after a success,
	// false after a failure.
	Known bool `json:"known"`
}

// Practiced reports whether any outcome has ever been recorded.
func (s Stats) Practiced() bool {
	return s.LastPracticedAt != nil
}

// Attempts returns the total number of recorded outcomes.
func (s Stats) Attempts() int {
	return s.SuccessCount + s.FailCount
}

// Item is a unit of practice content: a script, a vocabulary pair or a
// sentence pattern.
type Item struct {
	Kind      Kind      `json:"kind"`
	Key       string    `json:"key"`
	Content   Content   `json:"content"`
	Stats     Stats     `json:"stats"`
	CreatedAt time.Time `json:"created_at"`
}

// New creates an item with zeroed stats.
func New(kind Kind, key string, content Content, now time.Time) Item {
	return Item{
		Kind:      kind,
		Key:       key,
		Content:   content,
		CreatedAt: now,
	}
}

// clone returns a deep copy so callers never share slices or pointers
// with the store.
func (it Item) clone() Item {
	out := it
	if it.Stats.LastPracticedAt != nil {
		t := *it.Stats.LastPracticedAt
		out.Stats.LastPracticedAt = &t
	}
	if it.Content.Steps != nil {
		out.Content.Steps = append([]string(nil), it.Content.Steps...)
	}
	if it.Content.Examples != nil {
		out.Content.Examples = append([]Example(nil), it.Content.Examples...)
	}
	return out
}

// Outcome is the binary result of practicing one item.
type Outcome string

const (
	Success Outcome = "success"
	Fail    Outcome = "fail"
)

// Result is one recorded outcome for one key. Results are produced by a
// session and applied to the store exactly once.
type Result struct {
	Key     string  `json:"key"`
	Outcome Outcome `json:"outcome"`
}

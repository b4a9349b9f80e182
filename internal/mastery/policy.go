// Package mastery decides when an item is due for practice, how an outcome
// changes its stats, and in which order review candidates are served.
package mastery

import (
	"time"

	"github.com/abhisek/opicdrill/internal/library"
)

// Default cooldowns.
const (
	DefaultScriptCooldown = time.Hour
	DefaultKnownCooldown  = 72 * time.Hour
)

// Policy holds the tunable parts of the mastery rules. The zero value is
// not useful; start from DefaultPolicy.
type Policy struct {
	// ScriptCooldown is how long a script rests after being practiced.
	ScriptCooldown time.Duration

	// KnownCooldown is how long a vocab or pattern item marked known
	// rests before it becomes due again.
	KnownCooldown time.Duration
}

// DefaultPolicy returns the policy used by the application.
func DefaultPolicy() Policy {
	return Policy{
		ScriptCooldown: DefaultScriptCooldown,
		KnownCooldown:  DefaultKnownCooldown,
	}
}

// IsDue reports whether item should be offered for practice at now.
// Items that were never practiced are always due.
func (p Policy) IsDue(item library.Item, now time.Time) bool {
	last := item.Stats.LastPracticedAt
	if last == nil {
		return true
	}
	elapsed := now.Sub(*last)

	if item.Kind == library.KindScript {
		return elapsed > p.ScriptCooldown
	}
	if !item.Stats.Known {
		return true
	}
	return elapsed > p.KnownCooldown
}

// ApplyOutcome returns item with outcome folded into its stats. Exactly
// one counter grows by one. LastPracticedAt never moves backwards, even if
// now is earlier than the stored value.
func (p Policy) ApplyOutcome(item library.Item, outcome library.Outcome, now time.Time) library.Item {
	switch outcome {
	case library.Success:
		item.Stats.SuccessCount++
		item.Stats.Known = true
	case library.Fail:
		item.Stats.FailCount++
		item.Stats.Known = false
	default:
		return item
	}

	stamp := now
	if prev := item.Stats.LastPracticedAt; prev != nil && prev.After(now) {
		stamp = *prev
	}
	item.Stats.LastPracticedAt = &stamp
	return item
}

// CountDue returns how many of items are due at now.
func (p Policy) CountDue(items []library.Item, now time.Time) int {
	n := 0
	for _, it := range items {
		if p.IsDue(it, now) {
			n++
		}
	}
	return n
}

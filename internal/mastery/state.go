package mastery

import "github.com/abhisek/opicdrill/internal/library"

// State is an item's position in the mastery lifecycle, derived from its
// stats for display.
type State string

const (
	StateNew      State = "new"
	StateLearning State = "learning"
	StateMastered State = "mastered"
)

// StateOf derives the display state of item. An item is mastered once it
// has more successes than failures.
func StateOf(item library.Item) State {
	switch {
	case !item.Stats.Practiced():
		return StateNew
	case IsMastered(item):
		return StateMastered
	default:
		return StateLearning
	}
}

// IsMastered reports whether successes outnumber failures.
func IsMastered(item library.Item) bool {
	return item.Stats.SuccessCount > item.Stats.FailCount
}

// Label returns a short human-readable label.
func (s State) Label() string {
	switch s {
	case StateNew:
		return "New"
	case StateLearning:
		return "Learning"
	case StateMastered:
		return "Mastered"
	}
	return string(s)
}

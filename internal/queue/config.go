// Package queue selects what to practice next and keeps the library topped
// up by refilling it in the background from a generation source.
package queue

import "github.com/abhisek/opicdrill/internal/library"

// KindConfig controls selection and refill for one kind.
type KindConfig struct {
	// Size is the maximum queue length.
	Size int

	// ReviewCap bounds how many already-practiced items are mixed into a
	// vocab or pattern queue. Unused for scripts.
	ReviewCap int

	// MinUnused triggers a refill when fewer never-practiced items remain.
	MinUnused int

	// MinQueue triggers a refill when the selected queue is shorter.
	MinQueue int

	// Shuffle randomizes queue order after selection.
	Shuffle bool
}

// DefaultConfigs returns the per-kind configuration used by the application.
func DefaultConfigs() map[library.Kind]KindConfig {
	return map[library.Kind]KindConfig{
		library.KindScript: {
			Size: 3,
		},
		library.KindVocab: {
			Size:      30,
			ReviewCap: 3,
			MinUnused: 27,
			Shuffle:   true,
		},
		library.KindPattern: {
			Size:      30,
			ReviewCap: 3,
			MinUnused: 5,
			MinQueue:  5,
			Shuffle:   true,
		},
	}
}

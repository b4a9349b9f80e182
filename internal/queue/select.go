package queue

import (
	"errors"
	"math/rand/v2"
	"time"

	"github.com/abhisek/opicdrill/internal/library"
	"github.com/abhisek/opicdrill/internal/mastery"
)

// ErrEmptyQueue is returned when nothing can be served yet. Callers show a
// "preparing" state; a refill has been requested if one is possible.
var ErrEmptyQueue = errors.New("queue is empty")

// Queue is an ordered selection of item copies for one session. Keys are
// unique within a queue.
type Queue struct {
	Kind  library.Kind
	Items []library.Item
}

// Len returns the number of items in the queue.
func (q Queue) Len() int { return len(q.Items) }

// Keys returns the item keys in queue order.
func (q Queue) Keys() []string {
	out := make([]string, len(q.Items))
	for i, it := range q.Items {
		out[i] = it.Key
	}
	return out
}

// Select builds a queue from items.
//
// Scripts are ordered by priority and truncated to Size. Vocab and pattern
// queues take up to ReviewCap practiced items that are due (by priority),
// fill the rest with never-practiced items in library order, and are then
// shuffled with rng when Shuffle is set. A nil rng disables shuffling.
func Select(items []library.Item, kind library.Kind, cfg KindConfig, policy mastery.Policy, now time.Time, rng *rand.Rand) Queue {
	q := Queue{Kind: kind}
	if cfg.Size <= 0 {
		return q
	}

	if kind == library.KindScript {
		sorted := append([]library.Item(nil), items...)
		mastery.SortByPriority(sorted)
		if len(sorted) > cfg.Size {
			sorted = sorted[:cfg.Size]
		}
		q.Items = sorted
		return q
	}

	var review, fresh []library.Item
	for _, it := range items {
		if !it.Stats.Practiced() {
			fresh = append(fresh, it)
			continue
		}
		if policy.IsDue(it, now) {
			review = append(review, it)
		}
	}
	mastery.SortByPriority(review)

	reviewCap := min(cfg.ReviewCap, cfg.Size)
	if len(review) > reviewCap {
		review = review[:reviewCap]
	}
	selected := review
	if room := cfg.Size - len(selected); len(fresh) > room {
		fresh = fresh[:room]
	}
	selected = append(selected, fresh...)

	if cfg.Shuffle && rng != nil {
		rng.Shuffle(len(selected), func(i, j int) {
			selected[i], selected[j] = selected[j], selected[i]
		})
	}
	q.Items = selected
	return q
}

// Unused counts items that were never practiced.
func Unused(items []library.Item) int {
	n := 0
	for _, it := range items {
		if !it.Stats.Practiced() {
			n++
		}
	}
	return n
}

// NeedsRefill reports whether more items of a kind should be generated,
// given the current library items and the length of the queue that was
// just selected. A config with no thresholds never asks for a refill.
func NeedsRefill(items []library.Item, cfg KindConfig, queueLen int) bool {
	if cfg.MinUnused > 0 && Unused(items) < cfg.MinUnused {
		return true
	}
	return cfg.MinQueue > 0 && queueLen < cfg.MinQueue
}

package mastery

import (
	"sort"
	"time"

	"github.com/abhisek/opicdrill/internal/library"
)

// PriorityScore is success minus fail. Lower scores are reviewed first.
func PriorityScore(item library.Item) int {
	return item.Stats.SuccessCount - item.Stats.FailCount
}

// Less orders a before b: lower score first, then the one practiced
// longer ago. Never-practiced items count as practiced at the zero time.
func Less(a, b library.Item) bool {
	sa, sb := PriorityScore(a), PriorityScore(b)
	if sa != sb {
		return sa < sb
	}
	return lastPracticed(a).Before(lastPracticed(b))
}

// SortByPriority sorts items in place. Items that compare equal keep their
// relative order.
func SortByPriority(items []library.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		return Less(items[i], items[j])
	})
}

func lastPracticed(it library.Item) time.Time {
	if it.Stats.LastPracticedAt == nil {
		return time.Time{}
	}
	return *it.Stats.LastPracticedAt
}

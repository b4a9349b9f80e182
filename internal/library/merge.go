package library

import "time"

// Applier folds a single outcome into an item. mastery.Policy implements it.
type Applier interface {
	ApplyOutcome(item Item, outcome Outcome, now time.Time) Item
}

// Merge upserts incoming items into existing by key and returns the merged
// collection together with the number of keys that were added.
//
// Existing items always win: a key already present keeps its content and
// stats untouched. New keys are appended in incoming order with zeroed
// stats. Duplicate keys inside incoming collapse to the first occurrence.
// Merging the same batch twice yields the same collection as merging once.
func Merge(existing, incoming []Item) ([]Item, int) {
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	merged := make([]Item, 0, len(existing)+len(incoming))
	for _, it := range existing {
		seen[it.Key] = struct{}{}
		merged = append(merged, it.clone())
	}

	added := 0
	for _, it := range incoming {
		if it.Key == "" {
			continue
		}
		if _, ok := seen[it.Key]; ok {
			continue
		}
		seen[it.Key] = struct{}{}
		fresh := it.clone()
		fresh.Stats = Stats{}
		merged = append(merged, fresh)
		added++
	}
	return merged, added
}

// ApplyResults applies each result, in order, to the item with the same key.
// Results whose key is not in items are skipped and returned as stale.
func ApplyResults(items []Item, results []Result, now time.Time, a Applier) ([]Item, []string) {
	index := make(map[string]int, len(items))
	out := make([]Item, len(items))
	for i, it := range items {
		out[i] = it.clone()
		index[it.Key] = i
	}

	var stale []string
	for _, r := range results {
		i, ok := index[r.Key]
		if !ok {
			stale = append(stale, r.Key)
			continue
		}
		out[i] = a.ApplyOutcome(out[i], r.Outcome, now)
	}
	return out, stale
}

// FilterNew drops incoming items whose key already exists, or that repeat
// an earlier incoming key. Matching is exact and case-sensitive.
func FilterNew(existing, incoming []Item) []Item {
	seen := make(map[string]struct{}, len(existing))
	for _, it := range existing {
		seen[it.Key] = struct{}{}
	}
	var out []Item
	for _, it := range incoming {
		if it.Key == "" {
			continue
		}
		if _, ok := seen[it.Key]; ok {
			continue
		}
		seen[it.Key] = struct{}{}
		out = append(out, it)
	}
	return out
}

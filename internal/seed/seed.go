// Package seed provides the built-in sentence-pattern set so the pattern
// drill has material before the first refill completes.
package seed

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/abhisek/opicdrill/internal/library"
)

//go:embed data/patterns.json
var patternData embed.FS

type patternFile struct {
	Version  int `json:"version"`
	Patterns []struct {
		Group    string            `json:"group"`
		Korean   string            `json:"korean"`
		English  string            `json:"english"`
		Examples []library.Example `json:"examples"`
	} `json:"patterns"`
}

// Merger merges items into a library shelf. library.Store implements it.
type Merger interface {
	Merge(ctx context.Context, kind library.Kind, incoming []library.Item) (int, error)
}

// Patterns returns the built-in pattern items in file order. The group
// name is stored as the item's explanation.
func Patterns(now time.Time) ([]library.Item, error) {
	data, err := patternData.ReadFile("data/patterns.json")
	if err != nil {
		return nil, fmt.Errorf("read built-in patterns: %w", err)
	}
	var f patternFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse built-in patterns: %w", err)
	}

	items := make([]library.Item, 0, len(f.Patterns))
	for _, p := range f.Patterns {
		items = append(items, library.New(library.KindPattern, p.English, library.Content{
			Prompt:      p.Korean,
			Answer:      p.English,
			Examples:    p.Examples,
			Explanation: p.Group,
		}, now))
	}
	return items, nil
}

// Install merges the built-in patterns into m. Existing items keep their
// stats, so calling it on every start is safe. It returns how many
// patterns were new.
func Install(ctx context.Context, m Merger, now time.Time) (int, error) {
	items, err := Patterns(now)
	if err != nil {
		return 0, err
	}
	return m.Merge(ctx, library.KindPattern, items)
}

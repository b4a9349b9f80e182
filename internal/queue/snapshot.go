package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/abhisek/opicdrill/internal/library"
)

// savedQueue is the persisted form of an in-progress queue. Only keys are
// stored; item contents and stats always come from the library.
type savedQueue struct {
	Keys    []string  `json:"keys"`
	SavedAt time.Time `json:"saved_at"`
}

func queueKey(kind library.Kind) string {
	return "queue/" + string(kind)
}

// SaveQueue stores the remaining keys of q so a later session can resume
// it. A no-op when the manager has no blob repo.
func (m *Manager) SaveQueue(ctx context.Context, q Queue) error {
	if m.blobs == nil {
		return nil
	}
	data, err := json.Marshal(savedQueue{Keys: q.Keys(), SavedAt: m.now()})
	if err != nil {
		return fmt.Errorf("marshal queue: %w", err)
	}
	if err := m.blobs.Save(ctx, queueKey(q.Kind), data); err != nil {
		return fmt.Errorf("save queue %s: %w", q.Kind, err)
	}
	return nil
}

// ClearQueue forgets any saved queue for kind.
func (m *Manager) ClearQueue(ctx context.Context, kind library.Kind) error {
	if m.blobs == nil {
		return nil
	}
	if err := m.blobs.Delete(ctx, queueKey(kind)); err != nil {
		return fmt.Errorf("clear queue %s: %w", kind, err)
	}
	return nil
}

// ResumeQueue rebuilds a saved queue from current library items. Keys that
// no longer exist are dropped. When nothing usable was saved it falls back
// to Next.
func (m *Manager) ResumeQueue(ctx context.Context, kind library.Kind, now time.Time) (Queue, error) {
	if q, ok := m.loadSaved(ctx, kind); ok {
		m.MaybeRefill(ctx, kind, q.Len())
		return q, nil
	}
	return m.Next(ctx, kind, now)
}

func (m *Manager) loadSaved(ctx context.Context, kind library.Kind) (Queue, bool) {
	if m.blobs == nil {
		return Queue{}, false
	}
	data, ok, err := m.blobs.Load(ctx, queueKey(kind))
	if err != nil {
		m.logger.Warn("load saved queue", "kind", kind, "err", err)
		return Queue{}, false
	}
	if !ok {
		return Queue{}, false
	}

	var saved savedQueue
	if err := json.Unmarshal(data, &saved); err != nil {
		m.logger.Warn("saved queue unreadable, ignoring", "kind", kind, "err", err)
		return Queue{}, false
	}

	q := Queue{Kind: kind}
	seen := make(map[string]struct{}, len(saved.Keys))
	for _, key := range saved.Keys {
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if it, ok := m.lib.Get(kind, key); ok {
			q.Items = append(q.Items, it)
		}
	}
	return q, q.Len() > 0
}

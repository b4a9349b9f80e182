package library

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/abhisek/opicdrill/internal/store"
	"github.com/charmbracelet/log"
)

// ErrUnknownKind rejects items for a shelf the snapshot format cannot hold.
var ErrUnknownKind = errors.New("unknown item kind")

// Store is the single owner of all items. Every mutation goes through
// Merge, ApplyResults or Remove and is written through to the blob repo
// before the lock is released, so concurrent callers never persist an
// older snapshot over a newer one.
type Store struct {
	mu      sync.RWMutex
	shelves map[Kind][]Item

	repo    store.BlobRepo
	applier Applier
	logger  *log.Logger
	now     func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used to stamp outcomes.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates an empty store. Call Load to populate it from repo.
// repo may be nil, in which case nothing is persisted.
func NewStore(repo store.BlobRepo, applier Applier, logger *log.Logger, opts ...Option) *Store {
	s := &Store{
		shelves: make(map[Kind][]Item),
		repo:    repo,
		applier: applier,
		logger:  logger,
		now:     time.Now,
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Load replaces the in-memory library with the persisted snapshot. A
// missing snapshot yields an empty library. A corrupt snapshot also yields
// an empty library; the problem is logged and not returned.
func (s *Store) Load(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}
	data, ok, err := s.repo.Load(ctx, SnapshotKey)
	if err != nil {
		return fmt.Errorf("load library: %w", err)
	}

	shelves := make(map[Kind][]Item)
	if ok {
		decoded, err := DecodeSnapshot(data)
		switch {
		case errors.Is(err, ErrCorruptSnapshot):
			s.logger.Warn("library snapshot unreadable, starting empty", "err", err)
		case err != nil:
			return fmt.Errorf("decode library: %w", err)
		default:
			shelves = decoded
		}
	}

	s.mu.Lock()
	s.shelves = shelves
	s.mu.Unlock()
	return nil
}

// Save persists the current library.
func (s *Store) Save(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.persistLocked(ctx)
}

func (s *Store) persistLocked(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}
	data, err := EncodeSnapshot(s.shelves)
	if err != nil {
		return err
	}
	if err := s.repo.Save(ctx, SnapshotKey, data); err != nil {
		return fmt.Errorf("save library: %w", err)
	}
	return nil
}

// Items returns copies of every item of kind in library order.
func (s *Store) Items(kind Kind) []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	shelf := s.shelves[kind]
	out := make([]Item, len(shelf))
	for i, it := range shelf {
		out[i] = it.clone()
	}
	return out
}

// Get returns a copy of the item with key.
func (s *Store) Get(kind Kind, key string) (Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, it := range s.shelves[kind] {
		if it.Key == key {
			return it.clone(), true
		}
	}
	return Item{}, false
}

// Keys returns the set of keys of kind.
func (s *Store) Keys(kind Kind) map[string]struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make(map[string]struct{}, len(s.shelves[kind]))
	for _, it := range s.shelves[kind] {
		keys[it.Key] = struct{}{}
	}
	return keys
}

// Counts returns the number of items per kind.
func (s *Store) Counts() map[Kind]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[Kind]int, len(Kinds))
	for _, k := range Kinds {
		out[k] = len(s.shelves[k])
	}
	return out
}

// Merge adds incoming items of kind whose keys are not yet present and
// persists the result. It returns how many items were added. Existing
// items are never modified.
func (s *Store) Merge(ctx context.Context, kind Kind, incoming []Item) (int, error) {
	if !knownKind(kind) {
		return 0, fmt.Errorf("merge: %w %q", ErrUnknownKind, kind)
	}
	batch := make([]Item, len(incoming))
	for i, it := range incoming {
		it.Kind = kind
		batch[i] = it
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	merged, added := Merge(s.shelves[kind], batch)
	if added == 0 {
		return 0, nil
	}
	s.shelves[kind] = merged
	return added, s.persistLocked(ctx)
}

// ApplyResults folds session results into the items of kind in order and
// persists the result. Results for keys that no longer exist are returned
// and logged; they do not fail the call.
func (s *Store) ApplyResults(ctx context.Context, kind Kind, results []Result) ([]string, error) {
	if len(results) == 0 {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	updated, stale := ApplyResults(s.shelves[kind], results, s.now(), s.applier)
	for _, key := range stale {
		s.logger.Warn("result for unknown item ignored", "kind", kind, "key", key)
	}
	if len(stale) == len(results) {
		return stale, nil
	}
	s.shelves[kind] = updated
	return stale, s.persistLocked(ctx)
}

// Remove deletes the item with key and persists the result. It reports
// whether the key existed.
func (s *Store) Remove(ctx context.Context, kind Kind, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	shelf := s.shelves[kind]
	for i, it := range shelf {
		if it.Key != key {
			continue
		}
		out := make([]Item, 0, len(shelf)-1)
		out = append(out, shelf[:i]...)
		out = append(out, shelf[i+1:]...)
		s.shelves[kind] = out
		return true, s.persistLocked(ctx)
	}
	return false, nil
}

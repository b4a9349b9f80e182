package queue

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/abhisek/opicdrill/internal/library"
	"github.com/abhisek/opicdrill/internal/mastery"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func mkItem(kind library.Kind, key string, success, fail int, last *time.Time) library.Item {
	it := library.New(kind, key, library.Content{Prompt: key, Answer: key}, t0)
	it.Stats.SuccessCount = success
	it.Stats.FailCount = fail
	it.Stats.LastPracticedAt = last
	return it
}

func ago(d time.Duration) *time.Time {
	t := t0.Add(-d)
	return &t
}

func freshItems(kind library.Kind, prefix string, n int) []library.Item {
	out := make([]library.Item, n)
	for i := range out {
		out[i] = mkItem(kind, fmt.Sprintf("%s%02d", prefix, i), 0, 0, nil)
	}
	return out
}

func sortedKeys(q Queue) []string {
	k := q.Keys()
	sort.Strings(k)
	return k
}

func TestSelect_ScriptsByPriority(t *testing.T) {
	items := []library.Item{
		mkItem(library.KindScript, "B", 5, 1, ago(3*time.Hour)),
		mkItem(library.KindScript, "A", 2, 5, ago(2*time.Hour)),
		mkItem(library.KindScript, "C", 0, 0, nil),
		mkItem(library.KindScript, "D", 9, 0, ago(time.Minute)),
	}
	cfg := DefaultConfigs()[library.KindScript]

	q := Select(items, library.KindScript, cfg, mastery.DefaultPolicy(), t0, nil)

	assert.Equal(t, []string{"A", "C", "B"}, q.Keys())
	assert.Equal(t, library.KindScript, q.Kind)
}

func TestSelect_VocabTwoReviewPlusFresh(t *testing.T) {
	items := []library.Item{
		mkItem(library.KindVocab, "due1", 0, 2, ago(time.Hour)),
		mkItem(library.KindVocab, "due2", 1, 2, ago(time.Hour)),
	}
	known := mkItem(library.KindVocab, "known", 3, 0, ago(time.Hour))
	known.Stats.Known = true
	items = append(items, known)
	items = append(items, freshItems(library.KindVocab, "new", 40)...)

	cfg := DefaultConfigs()[library.KindVocab]
	q := Select(items, library.KindVocab, cfg, mastery.DefaultPolicy(), t0, rand.New(rand.NewPCG(1, 2)))

	require.Equal(t, 30, q.Len())
	review, fresh := 0, 0
	for _, it := range q.Items {
		if it.Stats.Practiced() {
			review++
			assert.NotEqual(t, "known", it.Key)
		} else {
			fresh++
		}
	}
	assert.Equal(t, 2, review)
	assert.Equal(t, 28, fresh)

	// Fresh items are taken in library order.
	for i := 0; i < 28; i++ {
		assert.Contains(t, q.Keys(), fmt.Sprintf("new%02d", i))
	}
	assert.NotContains(t, q.Keys(), "new28")
}

func TestSelect_ReviewCapped(t *testing.T) {
	var items []library.Item
	for i := 0; i < 6; i++ {
		items = append(items, mkItem(library.KindPattern, fmt.Sprintf("r%d", i), 0, i+1, ago(time.Hour)))
	}
	items = append(items, freshItems(library.KindPattern, "f", 5)...)

	cfg := DefaultConfigs()[library.KindPattern]
	cfg.Shuffle = false
	q := Select(items, library.KindPattern, cfg, mastery.DefaultPolicy(), t0, nil)

	// Lowest scores first: r5 (-6), r4 (-5), r3 (-4).
	assert.Equal(t, []string{"r5", "r4", "r3", "f00", "f01", "f02", "f03", "f04"}, q.Keys())
}

func TestSelect_ShuffleOnlyReorders(t *testing.T) {
	items := freshItems(library.KindVocab, "w", 30)
	cfg := DefaultConfigs()[library.KindVocab]

	plainCfg := cfg
	plainCfg.Shuffle = false
	plain := Select(items, library.KindVocab, plainCfg, mastery.DefaultPolicy(), t0, nil)
	shuffled := Select(items, library.KindVocab, cfg, mastery.DefaultPolicy(), t0, rand.New(rand.NewPCG(7, 7)))

	assert.Equal(t, sortedKeys(plain), sortedKeys(shuffled))
	assert.NotEqual(t, plain.Keys(), shuffled.Keys())
}

func TestSelect_SameSeedSameOrder(t *testing.T) {
	items := freshItems(library.KindVocab, "w", 30)
	cfg := DefaultConfigs()[library.KindVocab]

	a := Select(items, library.KindVocab, cfg, mastery.DefaultPolicy(), t0, rand.New(rand.NewPCG(42, 0)))
	b := Select(items, library.KindVocab, cfg, mastery.DefaultPolicy(), t0, rand.New(rand.NewPCG(42, 0)))

	assert.Equal(t, a.Keys(), b.Keys())
}

func TestSelect_NoDuplicateKeys(t *testing.T) {
	items := append(freshItems(library.KindVocab, "w", 10),
		mkItem(library.KindVocab, "x", 0, 1, ago(time.Hour)))
	q := Select(items, library.KindVocab, DefaultConfigs()[library.KindVocab], mastery.DefaultPolicy(), t0, rand.New(rand.NewPCG(3, 3)))

	seen := map[string]bool{}
	for _, k := range q.Keys() {
		assert.False(t, seen[k], "duplicate %s", k)
		seen[k] = true
	}
	assert.Equal(t, 11, q.Len())
}

func TestNeedsRefill(t *testing.T) {
	cfgs := DefaultConfigs()
	practiced := mkItem(library.KindVocab, "p", 1, 0, ago(time.Hour))

	tests := []struct {
		name     string
		items    []library.Item
		cfg      KindConfig
		queueLen int
		want     bool
	}{
		{"vocab empty", nil, cfgs[library.KindVocab], 0, true},
		{"vocab 26 unused", freshItems(library.KindVocab, "v", 26), cfgs[library.KindVocab], 26, true},
		{"vocab 27 unused", freshItems(library.KindVocab, "v", 27), cfgs[library.KindVocab], 27, false},
		{"vocab practiced do not count", append(freshItems(library.KindVocab, "v", 26), practiced), cfgs[library.KindVocab], 27, true},
		{"pattern short queue", freshItems(library.KindPattern, "p", 10), cfgs[library.KindPattern], 4, true},
		{"pattern healthy", freshItems(library.KindPattern, "p", 10), cfgs[library.KindPattern], 10, false},
		{"pattern few unused", freshItems(library.KindPattern, "p", 4), cfgs[library.KindPattern], 30, true},
		{"scripts never", nil, cfgs[library.KindScript], 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NeedsRefill(tt.items, tt.cfg, tt.queueLen))
		})
	}
}

// blockingSource blocks every Batch call until release is closed.
type blockingSource struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}

	mu    sync.Mutex
	items []library.Item
	err   error
}

func newBlockingSource(items []library.Item, err error) *blockingSource {
	return &blockingSource{
		started: make(chan struct{}, 16),
		release: make(chan struct{}),
		items:   items,
		err:     err,
	}
}

func (s *blockingSource) Batch(ctx context.Context, kind library.Kind) ([]library.Item, error) {
	s.calls.Add(1)
	s.started <- struct{}{}
	<-s.release
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items, s.err
}

// instantSource returns immediately.
type instantSource struct {
	calls atomic.Int32
	items []library.Item
	err   error
}

func (s *instantSource) Batch(ctx context.Context, kind library.Kind) ([]library.Item, error) {
	s.calls.Add(1)
	return s.items, s.err
}

func newManager(t *testing.T, src Source) (*Manager, *library.Store) {
	t.Helper()
	lib := library.NewStore(nil, mastery.DefaultPolicy(), log.New(io.Discard))
	m := NewManager(Options{
		Library: lib,
		Source:  src,
		Policy:  mastery.DefaultPolicy(),
		Logger:  log.New(io.Discard),
		Seed:    1,
		Now:     func() time.Time { return t0 },
	})
	return m, lib
}

func TestManager_SingleFlight(t *testing.T) {
	src := newBlockingSource(freshItems(library.KindVocab, "gen", 30), nil)
	m, lib := newManager(t, src)
	ctx := context.Background()

	require.True(t, m.MaybeRefill(ctx, library.KindVocab, 0))
	<-src.started

	// Further triggers while the first is outstanding are skipped.
	for i := 0; i < 5; i++ {
		assert.False(t, m.MaybeRefill(ctx, library.KindVocab, 0))
	}
	_, err := m.Refill(ctx, library.KindVocab)
	assert.ErrorIs(t, err, ErrRefillInFlight)
	assert.True(t, m.Refilling(library.KindVocab))

	// Other kinds are independent.
	assert.True(t, m.MaybeRefill(ctx, library.KindPattern, 0))
	<-src.started

	close(src.release)
	m.Wait()

	assert.Equal(t, int32(2), src.calls.Load())
	assert.False(t, m.Refilling(library.KindVocab))
	assert.Len(t, lib.Items(library.KindVocab), 30)
}

func TestManager_NextServesWithoutWaiting(t *testing.T) {
	src := newBlockingSource(freshItems(library.KindVocab, "gen", 30), nil)
	m, lib := newManager(t, src)
	ctx := context.Background()

	_, err := lib.Merge(ctx, library.KindVocab, freshItems(library.KindVocab, "have", 5))
	require.NoError(t, err)

	q, err := m.Next(ctx, library.KindVocab, t0)
	require.NoError(t, err)
	assert.Equal(t, 5, q.Len())

	// Low stock started a refill in the background.
	<-src.started
	close(src.release)
	m.Wait()
	assert.Len(t, lib.Items(library.KindVocab), 35)
}

func TestManager_NextEmptyTriggersRefill(t *testing.T) {
	src := &instantSource{items: freshItems(library.KindPattern, "pat", 10)}
	m, lib := newManager(t, src)
	ctx := context.Background()

	_, err := m.Next(ctx, library.KindPattern, t0)
	require.ErrorIs(t, err, ErrEmptyQueue)

	m.Wait()
	assert.Len(t, lib.Items(library.KindPattern), 10)

	q, err := m.Next(ctx, library.KindPattern, t0)
	require.NoError(t, err)
	assert.Equal(t, 10, q.Len())
}

func TestManager_ScriptsNeverRefill(t *testing.T) {
	src := &instantSource{}
	m, _ := newManager(t, src)

	_, err := m.Next(context.Background(), library.KindScript, t0)
	require.ErrorIs(t, err, ErrEmptyQueue)
	m.Wait()
	assert.Zero(t, src.calls.Load())
}

func TestManager_RefillDedups(t *testing.T) {
	batch := []library.Item{
		mkItem(library.KindVocab, "old", 0, 0, nil),
		mkItem(library.KindVocab, "new", 0, 0, nil),
		mkItem(library.KindVocab, "new", 0, 0, nil),
	}
	src := &instantSource{items: batch}
	m, lib := newManager(t, src)
	ctx := context.Background()

	existing := mkItem(library.KindVocab, "old", 0, 0, nil)
	_, err := lib.Merge(ctx, library.KindVocab, []library.Item{existing})
	require.NoError(t, err)
	_, err = lib.ApplyResults(ctx, library.KindVocab, []library.Result{{Key: "old", Outcome: library.Success}})
	require.NoError(t, err)

	res, err := m.Refill(ctx, library.KindVocab)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Received)
	assert.Equal(t, 1, res.Added)

	old, _ := lib.Get(library.KindVocab, "old")
	assert.Equal(t, 1, old.Stats.SuccessCount)
	assert.Len(t, lib.Items(library.KindVocab), 2)
}

func TestManager_FailureIsRetried(t *testing.T) {
	src := &instantSource{err: errors.New("model overloaded")}
	m, lib := newManager(t, src)
	ctx := context.Background()

	var mu sync.Mutex
	var results []RefillResult
	m.SetListener(func(r RefillResult) {
		mu.Lock()
		results = append(results, r)
		mu.Unlock()
	})

	require.True(t, m.MaybeRefill(ctx, library.KindVocab, 0))
	m.Wait()
	assert.Empty(t, lib.Items(library.KindVocab))

	src.err = nil
	src.items = freshItems(library.KindVocab, "v", 30)
	require.True(t, m.MaybeRefill(ctx, library.KindVocab, 0))
	m.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, results, 2)
	assert.Error(t, results[0].Err)
	assert.NoError(t, results[1].Err)
	assert.Equal(t, 30, results[1].Added)
	assert.Len(t, lib.Items(library.KindVocab), 30)
}

func TestManager_NoRefillWhenStocked(t *testing.T) {
	src := &instantSource{}
	m, lib := newManager(t, src)
	ctx := context.Background()

	_, err := lib.Merge(ctx, library.KindVocab, freshItems(library.KindVocab, "v", 40))
	require.NoError(t, err)

	q, err := m.Next(ctx, library.KindVocab, t0)
	require.NoError(t, err)
	assert.Equal(t, 30, q.Len())
	m.Wait()
	assert.Zero(t, src.calls.Load())
}

// memBlobs is an in-memory store.BlobRepo.
type memBlobs struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (b *memBlobs) Load(_ context.Context, key string) ([]byte, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, ok := b.data[key]
	return d, ok, nil
}

func (b *memBlobs) Save(_ context.Context, key string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data[key] = data
	return nil
}

func (b *memBlobs) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.data, key)
	return nil
}

func TestManager_ResumeQueue(t *testing.T) {
	ctx := context.Background()
	blobs := &memBlobs{data: map[string][]byte{}}
	lib := library.NewStore(nil, mastery.DefaultPolicy(), nil)
	m := NewManager(Options{
		Library: lib,
		Blobs:   blobs,
		Policy:  mastery.DefaultPolicy(),
		Seed:    9,
	})

	scripts := []library.Item{
		mkItem(library.KindScript, "s1", 0, 0, nil),
		mkItem(library.KindScript, "s2", 0, 0, nil),
		mkItem(library.KindScript, "s3", 0, 0, nil),
	}
	_, err := lib.Merge(ctx, library.KindScript, scripts)
	require.NoError(t, err)

	require.NoError(t, m.SaveQueue(ctx, Queue{Kind: library.KindScript, Items: []library.Item{scripts[2], scripts[0]}}))
	_, err = lib.Remove(ctx, library.KindScript, "s1")
	require.NoError(t, err)

	q, err := m.ResumeQueue(ctx, library.KindScript, t0)
	require.NoError(t, err)
	assert.Equal(t, []string{"s3"}, q.Keys())

	require.NoError(t, m.ClearQueue(ctx, library.KindScript))
	q, err = m.ResumeQueue(ctx, library.KindScript, t0)
	require.NoError(t, err)
	assert.Equal(t, []string{"s2", "s3"}, q.Keys())
}

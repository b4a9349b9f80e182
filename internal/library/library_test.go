package library_test

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/abhisek/opicdrill/internal/library"
	"github.com/abhisek/opicdrill/internal/mastery"
	"github.com/abhisek/opicdrill/internal/store"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func vocab(key, meaning string) library.Item {
	return library.New(library.KindVocab, key, library.Content{Prompt: meaning, Answer: key}, t0)
}

func keysOf(items []library.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Key
	}
	return out
}

// memRepo is an in-memory store.BlobRepo.
type memRepo struct {
	data    map[string][]byte
	saves   int
	loadErr error
}

func newMemRepo() *memRepo { return &memRepo{data: make(map[string][]byte)} }

func (m *memRepo) Load(_ context.Context, key string) ([]byte, bool, error) {
	if m.loadErr != nil {
		return nil, false, m.loadErr
	}
	b, ok := m.data[key]
	return b, ok, nil
}

func (m *memRepo) Save(_ context.Context, key string, data []byte) error {
	m.saves++
	m.data[key] = append([]byte(nil), data...)
	return nil
}

func (m *memRepo) Delete(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func newTestStore(repo store.BlobRepo) *library.Store {
	return library.NewStore(repo, mastery.DefaultPolicy(), log.New(io.Discard),
		library.WithClock(func() time.Time { return t0.Add(time.Hour) }))
}

func TestMerge_PreservesExistingStats(t *testing.T) {
	existing := vocab("look forward to", "기대하다")
	existing.Stats = library.Stats{SuccessCount: 4, FailCount: 2, Known: true}
	last := t0
	existing.Stats.LastPracticedAt = &last

	incoming := vocab("look forward to", "고대하다")
	incoming.Stats = library.Stats{SuccessCount: 0, FailCount: 9}

	merged, added := library.Merge([]library.Item{existing}, []library.Item{incoming, vocab("run into", "우연히 만나다")})

	require.Len(t, merged, 2)
	assert.Equal(t, 1, added)
	assert.Equal(t, 4, merged[0].Stats.SuccessCount)
	assert.Equal(t, 2, merged[0].Stats.FailCount)
	assert.Equal(t, "기대하다", merged[0].Content.Prompt)
	assert.Equal(t, "run into", merged[1].Key)
}

func TestMerge_NewItemsStartZeroed(t *testing.T) {
	in := vocab("get along with", "잘 지내다")
	in.Stats.SuccessCount = 7
	last := t0
	in.Stats.LastPracticedAt = &last
	in.Stats.Known = true

	merged, added := library.Merge(nil, []library.Item{in})

	require.Equal(t, 1, added)
	assert.Equal(t, library.Stats{}, merged[0].Stats)
}

func TestMerge_Idempotent(t *testing.T) {
	base := []library.Item{vocab("a", "ㄱ")}
	batch := []library.Item{vocab("b", "ㄴ"), vocab("c", "ㄷ")}

	once, added1 := library.Merge(base, batch)
	twice, added2 := library.Merge(once, batch)

	assert.Equal(t, 2, added1)
	assert.Equal(t, 0, added2)
	assert.Equal(t, once, twice)
}

func TestMerge_CollapsesDuplicatesAndSkipsEmptyKeys(t *testing.T) {
	first := vocab("dup", "첫번째")
	second := vocab("dup", "두번째")

	merged, added := library.Merge(nil, []library.Item{first, vocab("", "빈"), second})

	assert.Equal(t, 1, added)
	require.Len(t, merged, 1)
	assert.Equal(t, "첫번째", merged[0].Content.Prompt)
}

func TestMerge_ExactCaseSensitiveKeys(t *testing.T) {
	merged, added := library.Merge([]library.Item{vocab("Make sense", "")}, []library.Item{vocab("make sense", "")})
	assert.Equal(t, 1, added)
	assert.Len(t, merged, 2)
}

func TestFilterNew(t *testing.T) {
	existing := []library.Item{vocab("a", ""), vocab("b", "")}
	incoming := []library.Item{vocab("b", ""), vocab("c", ""), vocab("c", ""), vocab("", ""), vocab("d", "")}

	got := library.FilterNew(existing, incoming)

	assert.Equal(t, []string{"c", "d"}, keysOf(got))
}

func TestApplyResults_StaleKeysReported(t *testing.T) {
	items := []library.Item{vocab("a", ""), vocab("b", "")}
	results := []library.Result{
		{Key: "a", Outcome: library.Success},
		{Key: "gone", Outcome: library.Fail},
		{Key: "a", Outcome: library.Fail},
	}

	out, stale := library.ApplyResults(items, results, t0, mastery.DefaultPolicy())

	assert.Equal(t, []string{"gone"}, stale)
	assert.Equal(t, 1, out[0].Stats.SuccessCount)
	assert.Equal(t, 1, out[0].Stats.FailCount)
	assert.False(t, out[0].Stats.Known)
	assert.False(t, out[1].Stats.Practiced())
	// Input untouched.
	assert.False(t, items[0].Stats.Practiced())
}

func TestDecodeSnapshot_Corrupt(t *testing.T) {
	tests := map[string]string{
		"not json":        `{{{`,
		"wrong version":   `{"version":7,"items":{}}`,
		"unknown kind":    `{"version":1,"items":{"poem":[{"key":"x"}]}}`,
		"empty key":       `{"version":1,"items":{"vocab":[{"key":""}]}}`,
		"duplicate key":   `{"version":1,"items":{"vocab":[{"key":"x"},{"key":"x"}]}}`,
		"negative counts": `{"version":1,"items":{"vocab":[{"key":"x","stats":{"success_count":-1}}]}}`,
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := library.DecodeSnapshot([]byte(raw))
			assert.True(t, errors.Is(err, library.ErrCorruptSnapshot), "got %v", err)
		})
	}
}

func TestSnapshotRoundTripKeepsOrderAndKind(t *testing.T) {
	shelves := map[library.Kind][]library.Item{
		library.KindVocab: {vocab("z", ""), vocab("a", "")},
	}
	b, err := library.EncodeSnapshot(shelves)
	require.NoError(t, err)

	got, err := library.DecodeSnapshot(b)
	require.NoError(t, err)
	assert.Equal(t, []string{"z", "a"}, keysOf(got[library.KindVocab]))
	assert.Equal(t, library.KindVocab, got[library.KindVocab][1].Kind)
}

func TestStore_LoadMissingIsEmpty(t *testing.T) {
	s := newTestStore(newMemRepo())
	require.NoError(t, s.Load(context.Background()))
	assert.Empty(t, s.Items(library.KindVocab))
}

func TestStore_LoadCorruptIsEmpty(t *testing.T) {
	repo := newMemRepo()
	repo.data[library.SnapshotKey] = []byte("garbage")

	s := newTestStore(repo)
	require.NoError(t, s.Load(context.Background()))

	for _, k := range library.Kinds {
		assert.Empty(t, s.Items(k))
	}
}

func TestStore_LoadRepoErrorReturned(t *testing.T) {
	repo := newMemRepo()
	repo.loadErr = errors.New("disk on fire")

	s := newTestStore(repo)
	assert.Error(t, s.Load(context.Background()))
}

func TestStore_MergeApplyPersist(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	s := newTestStore(repo)

	added, err := s.Merge(ctx, library.KindVocab, []library.Item{vocab("a", ""), vocab("b", "")})
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	stale, err := s.ApplyResults(ctx, library.KindVocab, []library.Result{
		{Key: "a", Outcome: library.Success},
		{Key: "b", Outcome: library.Fail},
	})
	require.NoError(t, err)
	assert.Empty(t, stale)

	// Re-merging must not reset stats.
	added, err = s.Merge(ctx, library.KindVocab, []library.Item{vocab("a", ""), vocab("c", "")})
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	a, ok := s.Get(library.KindVocab, "a")
	require.True(t, ok)
	assert.Equal(t, 1, a.Stats.SuccessCount)
	assert.True(t, a.Stats.Known)
	assert.True(t, a.Stats.LastPracticedAt.Equal(t0.Add(time.Hour)))

	// A fresh store sees the persisted state.
	reloaded := newTestStore(repo)
	require.NoError(t, reloaded.Load(ctx))
	assert.Equal(t, []string{"a", "b", "c"}, keysOf(reloaded.Items(library.KindVocab)))
	b, _ := reloaded.Get(library.KindVocab, "b")
	assert.Equal(t, 1, b.Stats.FailCount)
	assert.Equal(t, map[library.Kind]int{library.KindScript: 0, library.KindVocab: 3, library.KindPattern: 0}, reloaded.Counts())
}

func TestStore_MergeNothingNewSkipsSave(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	s := newTestStore(repo)

	_, err := s.Merge(ctx, library.KindVocab, []library.Item{vocab("a", "")})
	require.NoError(t, err)
	saves := repo.saves

	added, err := s.Merge(ctx, library.KindVocab, []library.Item{vocab("a", "")})
	require.NoError(t, err)
	assert.Zero(t, added)
	assert.Equal(t, saves, repo.saves)
}

func TestStore_MergeRejectsUnknownKind(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	s := newTestStore(repo)
	_, err := s.Merge(ctx, library.KindVocab, []library.Item{vocab("a", "ㄱ")})
	require.NoError(t, err)

	added, err := s.Merge(ctx, library.Kind("poem"), []library.Item{vocab("b", "ㄴ")})
	assert.ErrorIs(t, err, library.ErrUnknownKind)
	assert.Zero(t, added)

	// The saved snapshot still loads with its vocabulary intact.
	reloaded := newTestStore(repo)
	require.NoError(t, reloaded.Load(ctx))
	assert.Len(t, reloaded.Items(library.KindVocab), 1)
}

func TestStore_RemoveMakesResultsStale(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(newMemRepo())

	script := library.New(library.KindScript, "s-1", library.Content{Prompt: "Tell me about your house."}, t0)
	_, err := s.Merge(ctx, library.KindScript, []library.Item{script})
	require.NoError(t, err)

	removed, err := s.Remove(ctx, library.KindScript, "s-1")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = s.Remove(ctx, library.KindScript, "s-1")
	require.NoError(t, err)
	assert.False(t, removed)

	stale, err := s.ApplyResults(ctx, library.KindScript, []library.Result{{Key: "s-1", Outcome: library.Success}})
	require.NoError(t, err)
	assert.Equal(t, []string{"s-1"}, stale)
	assert.Empty(t, s.Items(library.KindScript))
}

func TestStore_ItemsAreCopies(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(nil)

	p := library.New(library.KindPattern, "I'm into ...", library.Content{
		Examples: []library.Example{{Native: "요즘 요가에 빠져 있어요.", Target: "I'm into yoga these days."}},
	}, t0)
	_, err := s.Merge(ctx, library.KindPattern, []library.Item{p})
	require.NoError(t, err)

	items := s.Items(library.KindPattern)
	items[0].Content.Examples[0].Target = "changed"
	items[0].Stats.SuccessCount = 99

	again, _ := s.Get(library.KindPattern, "I'm into ...")
	assert.Equal(t, "I'm into yoga these days.", again.Content.Examples[0].Target)
	assert.Zero(t, again.Stats.SuccessCount)
}

func TestStore_KeysAndKindAssigned(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(nil)

	in := vocab("x", "")
	in.Kind = ""
	_, err := s.Merge(ctx, library.KindVocab, []library.Item{in})
	require.NoError(t, err)

	got, _ := s.Get(library.KindVocab, "x")
	assert.Equal(t, library.KindVocab, got.Kind)
	assert.Contains(t, s.Keys(library.KindVocab), "x")
	assert.Empty(t, s.Keys(library.KindPattern))
}

func TestStore_PersistsThroughSQLite(t *testing.T) {
	ctx := context.Background()
	db, err := store.Open(store.DriverSQLite, filepath.Join(t.TempDir(), "lib.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s := newTestStore(db.BlobRepo())
	_, err = s.Merge(ctx, library.KindVocab, []library.Item{vocab("a", "ㄱ")})
	require.NoError(t, err)
	_, err = s.ApplyResults(ctx, library.KindVocab, []library.Result{{Key: "a", Outcome: library.Success}})
	require.NoError(t, err)

	reloaded := newTestStore(db.BlobRepo())
	require.NoError(t, reloaded.Load(ctx))
	got, ok := reloaded.Get(library.KindVocab, "a")
	require.True(t, ok)
	assert.Equal(t, 1, got.Stats.SuccessCount)
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]library.Kind{
		"script": library.KindScript, "scripts": library.KindScript,
		"vocab": library.KindVocab, "words": library.KindVocab,
		"pattern": library.KindPattern, "structures": library.KindPattern,
	} {
		got, err := library.ParseKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := library.ParseKind("poems")
	assert.Error(t, err)
}

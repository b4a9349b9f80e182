package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/abhisek/opicdrill/internal/generate"
	"github.com/abhisek/opicdrill/internal/library"
	"github.com/abhisek/opicdrill/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDemoRefillIsRecorded(t *testing.T) {
	c := testCommand(t)
	t.Setenv("OPICDRILL_LLM_PROVIDER", "mock")
	require.NoError(t, c.Flags().Set("db", filepath.Join(t.TempDir(), "drill.db")))

	e, err := setup(c, setupOptions{needLLM: true})
	require.NoError(t, err)
	defer e.Close()

	ctx := context.Background()
	res, err := e.queue.Refill(ctx, library.KindVocab)
	require.NoError(t, err)
	assert.Equal(t, 12, res.Added)

	repo := e.store.EventRepo()
	events, err := repo.QueryLLMEvents(ctx, store.QueryOpts{Purpose: generate.PurposeVocab})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "mock", events[0].Provider)
	assert.True(t, events[0].Success)

	var out bytes.Buffer
	printRequests(&out, events)
	assert.Contains(t, out.String(), "vocab-batch")
	assert.NotContains(t, out.String(), "failed")
}

func TestPrintRequests_Empty(t *testing.T) {
	var out bytes.Buffer
	printRequests(&out, nil)
	assert.Equal(t, "No requests recorded.\n", out.String())
}

func TestPrintRequest(t *testing.T) {
	var out bytes.Buffer
	printRequest(&out, &store.LLMRequestEvent{
		ID:        4,
		Timestamp: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		LLMRequestEventData: store.LLMRequestEventData{
			Provider: "gemini", Model: "gemini-3-flash-preview", Purpose: "question",
			InputTokens: 120, OutputTokens: 40, LatencyMs: 850,
			ErrorMessage: "gemini: rate limited", RequestBody: "[user]\nask me\n\n",
		},
	})
	s := out.String()
	assert.Contains(t, s, "gemini / gemini-3-flash-preview for question")
	assert.Contains(t, s, "failed: gemini: rate limited")
	assert.Contains(t, s, "PROMPT")
	assert.Contains(t, s, "[user]\nask me\n\nANSWER")
	assert.Contains(t, s, "(empty)")
}

func TestPrintUsage(t *testing.T) {
	var out bytes.Buffer
	printUsage(&out,
		[]store.LLMUsage{
			{Purpose: "vocab-batch", Calls: 2, InputTokens: 1000, OutputTokens: 4000, AvgLatencyMs: 900},
			{Purpose: "question", Calls: 1, InputTokens: 100, OutputTokens: 20, AvgLatencyMs: 300},
		},
		[]store.LLMUsage{
			{Model: "gpt-4o-mini-2024-07-18", Calls: 2, InputTokens: 1_000_000, OutputTokens: 1_000_000},
			{Model: "mock", Calls: 1},
		})
	s := out.String()
	assert.Contains(t, s, "Total                    3        1100        4020")
	assert.Contains(t, s, "$0.75")
	assert.Contains(t, s, "No price known for mock.")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "통근하…", truncate("통근하다요", 4))
}

package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPriceOf(t *testing.T) {
	tests := []struct {
		model string
		want  Price
		ok    bool
	}{
		{"gpt-4o-mini", Price{0.15, 0.6}, true},
		{"gpt-4o-mini-2024-07-18", Price{0.15, 0.6}, true},
		{"gpt-4o-2024-11-20", Price{2.5, 10}, true},
		{"claude-sonnet-4-20250514", Price{3, 15}, true},
		{"claude-sonnet-4-5-20250929", Price{3, 15}, true},
		{"claude-haiku-4-5-20251001", Price{1, 5}, true},
		{"google/gemini-3-flash-preview", Price{0.5, 3}, true},
		{"models/gemini-2.5-flash", Price{0.3, 2.5}, true},
		{"gemini-2.5-flash-lite-preview-09-2025", Price{0.1, 0.4}, true},
		{"meta-llama/llama-3.3-70b-instruct:free", Price{}, false},
		{"mock", Price{}, false},
		{"", Price{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			got, ok := PriceOf(tt.model)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPriceCost(t *testing.T) {
	p := Price{Input: 3, Output: 15}
	assert.InDelta(t, 0.018, p.Cost(1000, 1000), 1e-9)
	assert.Zero(t, p.Cost(0, 0))
}

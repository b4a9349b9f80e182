package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func anthropicServer(t *testing.T, status int, header http.Header, body any) (*AnthropicProvider, *[]map[string]any) {
	t.Helper()
	var seen []map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var req map[string]any
		_ = json.Unmarshal(raw, &req)
		seen = append(seen, req)
		for k, v := range header {
			w.Header()[k] = v
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return newAnthropicProvider("claude-haiku", option.WithAPIKey("test"), option.WithBaseURL(srv.URL)), &seen
}

func anthropicMessage(text, stop string) map[string]any {
	return map[string]any{
		"id":          "msg_1",
		"type":        "message",
		"role":        "assistant",
		"model":       "claude-haiku-4-5-20251001",
		"content":     []map[string]any{{"type": "text", "text": text}},
		"stop_reason": stop,
		"usage":       map[string]any{"input_tokens": 50, "output_tokens": 30},
	}
}

func anthropicFailure(kind, msg string) map[string]any {
	return map[string]any{"type": "error", "error": map[string]any{"type": kind, "message": msg}}
}

func TestAnthropic_StructuredAnswer(t *testing.T) {
	p, seen := anthropicServer(t, http.StatusOK, nil,
		anthropicMessage("```json\n{\"label\":\"Natural\",\"text\":\"I live near a park.\"}\n```", "end_turn"))
	assert.Equal(t, "claude-haiku-4-5-20251001", p.ModelID())

	resp, err := p.Generate(context.Background(), Request{
		Purpose:   "target-scripts",
		System:    "You are an OPIc coach.",
		Messages:  []Message{{Role: RoleUser, Content: "Translate my answer."}},
		Schema:    scriptSchema(),
		MaxTokens: 512,
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"label":"Natural","text":"I live near a park."}`, string(resp.Content))
	assert.Equal(t, Usage{InputTokens: 50, OutputTokens: 30, TotalTokens: 80}, resp.Usage)
	assert.Equal(t, StopEnd, resp.StopReason)

	require.Len(t, *seen, 1)
	req := (*seen)[0]
	assert.Equal(t, "claude-haiku-4-5-20251001", req["model"])
	assert.NotContains(t, req, "purpose")
	msgs := req["messages"].([]any)
	require.Len(t, msgs, 1)
	assert.Equal(t, "user", msgs[0].(map[string]any)["role"])
}

func TestAnthropic_TruncatedStructuredAnswer(t *testing.T) {
	p, _ := anthropicServer(t, http.StatusOK, nil, anthropicMessage(`{"label":"Natu`, "max_tokens"))

	_, err := p.Generate(context.Background(), Request{
		Messages:  []Message{{Role: RoleUser, Content: "x"}},
		Schema:    scriptSchema(),
		MaxTokens: 10,
	})
	reason, ok := ReasonOf(err)
	require.True(t, ok)
	assert.Equal(t, ReasonTruncated, reason)
}

func TestAnthropic_Errors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		header     http.Header
		body       any
		want       Reason
		retryAfter bool
	}{
		{"rate limit with hint", http.StatusTooManyRequests, http.Header{"Retry-After": {"7"}}, anthropicFailure("rate_limit_error", "slow down"), ReasonRateLimited, true},
		{"overloaded", http.StatusInternalServerError, nil, anthropicFailure("api_error", "boom"), ReasonUnavailable, false},
		{"bad key", http.StatusUnauthorized, nil, anthropicFailure("authentication_error", "invalid x-api-key"), ReasonRejected, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, seen := anthropicServer(t, tt.status, tt.header, tt.body)
			_, err := p.Generate(context.Background(), Request{
				Messages:  []Message{{Role: RoleUser, Content: "x"}},
				MaxTokens: 10,
			})
			var e *Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, tt.want, e.Reason)
			assert.Equal(t, "anthropic", e.Provider)
			if tt.retryAfter {
				assert.Equal(t, "7s", e.RetryAfter.String())
			}
			assert.Len(t, *seen, 1, "the SDK must not retry on its own")
		})
	}
}

func TestResolveModel(t *testing.T) {
	assert.Equal(t, "claude-sonnet-4-5-20250929", resolveModel("claude-sonnet", anthropicAliases))
	assert.Equal(t, "claude-opus-4-1", resolveModel("claude-opus-4-1", anthropicAliases))
	assert.Equal(t, "gemini-2.5-flash", resolveModel("gemini-flash", geminiAliases))
}

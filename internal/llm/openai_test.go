package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chatBody is the part of a chat request the tests look at.
type chatBody struct {
	Model    string `json:"model"`
	Messages []struct {
		Role string `json:"role"`
	} `json:"messages"`
	ResponseFormat *struct {
		JSONSchema struct {
			Name string `json:"name"`
		} `json:"json_schema"`
	} `json:"response_format"`
}

type capturedRequest struct {
	header http.Header
	body   chatBody
}

func chatServer(t *testing.T, status int, body any) (string, *[]capturedRequest) {
	t.Helper()
	var seen []capturedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatBody
		_ = json.NewDecoder(r.Body).Decode(&req)
		seen = append(seen, capturedRequest{header: r.Header.Clone(), body: req})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv.URL + "/v1", &seen
}

func chatCompletion(content string, finish openai.FinishReason) map[string]any {
	return map[string]any{
		"id":     "chatcmpl-1",
		"object": "chat.completion",
		"model":  "gpt-4o-mini-2024-07-18",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": finish,
		}},
		"usage": map[string]any{"prompt_tokens": 40, "completion_tokens": 25, "total_tokens": 65},
	}
}

func TestOpenAI_StructuredAnswer(t *testing.T) {
	url, seen := chatServer(t, http.StatusOK, chatCompletion(`{"label":"Simple","text":"I jog every morning."}`, openai.FinishReasonStop))
	p, err := NewOpenAIProvider(Backend{APIKey: "test", Model: "gpt-4o-mini", BaseURL: url})
	require.NoError(t, err)

	resp, err := p.Generate(context.Background(), Request{
		System:    "You are an OPIc coach.",
		Messages:  []Message{{Role: RoleUser, Content: "Translate."}},
		Schema:    scriptSchema(),
		MaxTokens: 256,
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"label":"Simple","text":"I jog every morning."}`, string(resp.Content))
	assert.Equal(t, "gpt-4o-mini-2024-07-18", resp.Model)
	assert.Equal(t, 65, resp.Usage.TotalTokens)

	require.Len(t, *seen, 1)
	body := (*seen)[0].body
	require.Len(t, body.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, body.Messages[0].Role)
	require.NotNil(t, body.ResponseFormat)
	assert.Equal(t, "test-script", body.ResponseFormat.JSONSchema.Name)
}

func TestOpenAI_PlainTextAnswer(t *testing.T) {
	url, _ := chatServer(t, http.StatusOK, chatCompletion("Tell me about your hometown.", openai.FinishReasonStop))
	p, err := NewOpenAIProvider(Backend{APIKey: "test", Model: "gpt-4o-mini", BaseURL: url})
	require.NoError(t, err)

	resp, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "q"}}})
	require.NoError(t, err)
	assert.Equal(t, `"Tell me about your hometown."`, string(resp.Content))
}

func TestOpenAI_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   any
		want   Reason
	}{
		{"rate limit", http.StatusTooManyRequests, map[string]any{"error": map[string]any{"message": "slow down", "code": "rate_limit_exceeded"}}, ReasonRateLimited},
		{"server", http.StatusBadGateway, map[string]any{"error": map[string]any{"message": "upstream"}}, ReasonUnavailable},
		{"unknown model", http.StatusNotFound, map[string]any{"error": map[string]any{"message": "model not found"}}, ReasonRejected},
		{"truncated", http.StatusOK, chatCompletion(`{"label":"Sim`, openai.FinishReasonLength), ReasonTruncated},
		{"schema mismatch", http.StatusOK, chatCompletion(`{"label":"Fancy","text":"x"}`, openai.FinishReasonStop), ReasonInvalidResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url, _ := chatServer(t, tt.status, tt.body)
			p, err := NewOpenAIProvider(Backend{APIKey: "test", Model: "gpt-4o-mini", BaseURL: url})
			require.NoError(t, err)

			_, err = p.Generate(context.Background(), Request{
				Messages: []Message{{Role: RoleUser, Content: "x"}},
				Schema:   scriptSchema(),
			})
			var e *Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, tt.want, e.Reason)
			assert.Equal(t, "openai", e.Provider)
		})
	}
}

func TestOpenRouter_SendsAttributionHeaders(t *testing.T) {
	url, seen := chatServer(t, http.StatusOK, chatCompletion(`{"label":"Simple","text":"x"}`, openai.FinishReasonStop))
	p, err := NewOpenRouterProvider(Backend{APIKey: "sk-or", Model: "google/gemini-3-flash-preview", BaseURL: url})
	require.NoError(t, err)
	assert.Equal(t, "google/gemini-3-flash-preview", p.ModelID())

	_, err = p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}, Schema: scriptSchema()})
	require.NoError(t, err)

	require.Len(t, *seen, 1)
	h := (*seen)[0].header
	assert.Equal(t, "opicdrill", h.Get("X-Title"))
	assert.NotEmpty(t, h.Get("HTTP-Referer"))
	assert.Equal(t, "Bearer sk-or", h.Get("Authorization"))
	assert.Equal(t, "google/gemini-3-flash-preview", (*seen)[0].body.Model)
}

func TestOpenRouter_RequiresKey(t *testing.T) {
	_, err := NewOpenRouterProvider(Backend{Model: "google/gemini-3-flash-preview"})
	assert.Error(t, err)
}

package llm

import (
	"errors"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

const openRouterURL = "https://openrouter.ai/api/v1"

// NewOpenRouterProvider targets OpenRouter's OpenAI-compatible endpoint.
// Model IDs keep their vendor prefix, e.g. "google/gemini-3-flash-preview".
func NewOpenRouterProvider(cfg Backend) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openrouter: API key is required")
	}
	cc := openai.DefaultConfig(cfg.APIKey)
	cc.BaseURL = openRouterURL
	if cfg.BaseURL != "" {
		cc.BaseURL = cfg.BaseURL
	}
	cc.HTTPClient = &http.Client{Transport: attribution{next: http.DefaultTransport}}
	return newOpenAIProvider("openrouter", cfg.Model, cc), nil
}

// attribution adds the app headers OpenRouter uses for its rankings.
type attribution struct {
	next http.RoundTripper
}

func (a attribution) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	r.Header.Set("HTTP-Referer", "https://github.com/abhisek/opicdrill")
	r.Header.Set("X-Title", "opicdrill")
	return a.next.RoundTrip(r)
}

package llm

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Backend names accepted in Config.Provider.
const (
	BackendAnthropic  = "anthropic"
	BackendOpenAI     = "openai"
	BackendGemini     = "gemini"
	BackendOpenRouter = "openrouter"
	BackendMock       = "mock"
)

// discoveryOrder is the order in which vendor API key variables are probed
// when nothing is configured explicitly.
var discoveryOrder = []string{BackendGemini, BackendOpenAI, BackendAnthropic, BackendOpenRouter}

// Config selects a backend and how calls to it are bounded.
type Config struct {
	Provider string

	Anthropic  Backend
	OpenAI     Backend
	Gemini     Backend
	OpenRouter Backend

	Retry RetryConfig

	// Timeout bounds one Generate call, retries included.
	Timeout time.Duration

	// Mock answers requests when Provider is "mock". It is set in code,
	// never from the environment.
	Mock Provider
}

// Backend is the connection detail shared by every hosted model API.
// Gemini ignores BaseURL.
type Backend struct {
	APIKey  string
	Model   string
	BaseURL string
}

type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

func DefaultConfig() Config {
	return Config{
		Provider:   BackendGemini,
		Anthropic:  Backend{Model: "claude-haiku"},
		OpenAI:     Backend{Model: "gpt-4o-mini"},
		Gemini:     Backend{Model: "gemini-3-flash"},
		OpenRouter: Backend{Model: "google/gemini-3-flash-preview"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2,
		},
		Timeout: time.Minute,
	}
}

// backend returns the settings for name, or nil for mock and unknown names.
func (c *Config) backend(name string) *Backend {
	switch name {
	case BackendAnthropic:
		return &c.Anthropic
	case BackendOpenAI:
		return &c.OpenAI
	case BackendGemini:
		return &c.Gemini
	case BackendOpenRouter:
		return &c.OpenRouter
	}
	return nil
}

// envKey is the OPICDRILL_ variable for one backend setting, e.g.
// envKey("openrouter", "MODEL") is OPICDRILL_OPENROUTER_MODEL.
func envKey(name, setting string) string {
	return "OPICDRILL_" + strings.ToUpper(name) + "_" + setting
}

// ConfigFromEnv overlays OPICDRILL_* variables on DefaultConfig.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	setFromEnv(&cfg.Provider, "OPICDRILL_LLM_PROVIDER")
	for _, name := range discoveryOrder {
		b := cfg.backend(name)
		setFromEnv(&b.APIKey, envKey(name, "API_KEY"))
		setFromEnv(&b.Model, envKey(name, "MODEL"))
		setFromEnv(&b.BaseURL, envKey(name, "BASE_URL"))
	}
	if d, err := time.ParseDuration(os.Getenv("OPICDRILL_LLM_TIMEOUT")); err == nil && d > 0 {
		cfg.Timeout = d
	}
	return cfg
}

func setFromEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// DiscoverConfig falls back to the vendors' own key variables, such as
// GEMINI_API_KEY, and picks the first backend that has one.
func DiscoverConfig() (Config, bool) {
	cfg := DefaultConfig()
	for _, name := range discoveryOrder {
		if k := os.Getenv(strings.ToUpper(name) + "_API_KEY"); k != "" {
			cfg.Provider = name
			cfg.backend(name).APIKey = k
			return cfg, true
		}
	}
	return Config{}, false
}

func (c Config) Configured() bool {
	return c.Validate() == nil
}

// Validate reports a missing API key or an unknown backend name.
func (c Config) Validate() error {
	if c.Provider == BackendMock {
		return nil
	}
	b := c.backend(c.Provider)
	if b == nil {
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if b.APIKey == "" {
		return fmt.Errorf("%s is required for the %s provider", envKey(c.Provider, "API_KEY"), c.Provider)
	}
	return nil
}

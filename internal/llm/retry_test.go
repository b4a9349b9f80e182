package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: 100 * time.Millisecond,
		MaxWait:     time.Second,
		Multiplier:  2,
	}
}

// newRetry wraps mock with a retry layer that records waits instead of sleeping.
func newRetry(mock *MockProvider, cfg RetryConfig) (Provider, *[]time.Duration) {
	var waits []time.Duration
	p := WithRetry(mock, cfg, nil).(*retryProvider)
	p.sleep = func(_ context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}
	return p, &waits
}

func unavailable() MockResponse {
	return MockResponse{Err: &Error{Reason: ReasonUnavailable, Err: errors.New("503")}}
}

func okResponse() MockResponse {
	return MockResponse{Content: json.RawMessage(`{"ok":true}`)}
}

func TestRetry_TransientThenSuccess(t *testing.T) {
	mock := NewMockProvider(unavailable(), unavailable(), okResponse())
	p, waits := newRetry(mock, testRetryConfig())

	resp, err := p.Generate(context.Background(), Request{Purpose: "vocab-batch"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(resp.Content))
	assert.Equal(t, 3, mock.CallCount())
	assert.Len(t, *waits, 2)
}

func TestRetry_GivesUpAfterMaxAttempts(t *testing.T) {
	mock := NewMockProvider(unavailable(), unavailable(), unavailable(), okResponse())
	p, waits := newRetry(mock, testRetryConfig())

	_, err := p.Generate(context.Background(), Request{})
	require.Error(t, err)
	reason, ok := ReasonOf(err)
	require.True(t, ok)
	assert.Equal(t, ReasonUnavailable, reason)
	assert.Equal(t, 3, mock.CallCount())
	assert.Len(t, *waits, 2, "no pause after the last attempt")
}

func TestRetry_NotRetried(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"rejected", &Error{Reason: ReasonRejected, Err: errors.New("401")}},
		{"truncated", &Error{Reason: ReasonTruncated}},
		{"canceled", context.Canceled},
		{"deadline inside provider error", &Error{Reason: ReasonUnavailable, Err: context.DeadlineExceeded}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockProvider(MockResponse{Err: tt.err}, okResponse())
			p, _ := newRetry(mock, testRetryConfig())

			_, err := p.Generate(context.Background(), Request{})
			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, 1, mock.CallCount())
		})
	}
}

func TestRetry_InvalidResponseRetriedOnce(t *testing.T) {
	invalid := MockResponse{Err: &Error{Reason: ReasonInvalidResponse, Err: errors.New("bad json")}}
	mock := NewMockProvider(invalid, invalid, okResponse())
	p, _ := newRetry(mock, RetryConfig{MaxAttempts: 5, InitialWait: time.Millisecond, MaxWait: time.Millisecond, Multiplier: 2})

	_, err := p.Generate(context.Background(), Request{})
	reason, _ := ReasonOf(err)
	assert.Equal(t, ReasonInvalidResponse, reason)
	assert.Equal(t, 2, mock.CallCount())
}

func TestRetry_UnclassifiedErrorIsTransient(t *testing.T) {
	mock := NewMockProvider(MockResponse{Err: errors.New("connection reset")}, okResponse())
	p, _ := newRetry(mock, testRetryConfig())

	_, err := p.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, 2, mock.CallCount())
}

func TestRetry_StopsWhenContextEndsDuringPause(t *testing.T) {
	mock := NewMockProvider(unavailable(), okResponse())
	p := WithRetry(mock, RetryConfig{MaxAttempts: 3, InitialWait: time.Hour, MaxWait: time.Hour, Multiplier: 1}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := p.Generate(ctx, Request{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, mock.CallCount())
}

func TestWithRetry_SingleAttemptIsPassThrough(t *testing.T) {
	mock := NewMockProvider()
	assert.Same(t, Provider(mock), WithRetry(mock, RetryConfig{MaxAttempts: 1}, nil))
}

func TestBackoff(t *testing.T) {
	cfg := testRetryConfig()
	within := func(t *testing.T, got, base time.Duration) {
		t.Helper()
		assert.GreaterOrEqual(t, got, base*4/5)
		assert.LessOrEqual(t, got, base*6/5)
	}

	within(t, cfg.Backoff(0, nil), 100*time.Millisecond)
	within(t, cfg.Backoff(1, nil), 200*time.Millisecond)
	within(t, cfg.Backoff(2, nil), 400*time.Millisecond)
	within(t, cfg.Backoff(10, nil), time.Second)

	rl := &Error{Reason: ReasonRateLimited, RetryAfter: 700 * time.Millisecond}
	assert.Equal(t, 700*time.Millisecond, cfg.Backoff(0, rl))

	rl.RetryAfter = time.Minute
	assert.Equal(t, time.Second, cfg.Backoff(0, rl), "server hint is capped by MaxWait")
}

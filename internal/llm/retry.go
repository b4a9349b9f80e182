package llm

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"
)

// Backoff returns the pause before retry number attempt (0-based). A
// server RetryAfter hint wins over the exponential schedule.
func (c RetryConfig) Backoff(attempt int, err error) time.Duration {
	var e *Error
	if errors.As(err, &e) && e.RetryAfter > 0 {
		return min(e.RetryAfter, c.MaxWait)
	}
	wait := c.InitialWait
	for range attempt {
		wait = time.Duration(float64(wait) * c.Multiplier)
		if wait >= c.MaxWait {
			wait = c.MaxWait
			break
		}
	}
	// Spread concurrent refills by up to a fifth either way.
	spread := float64(wait) / 5
	return max(0, wait+time.Duration((rand.Float64()*2-1)*spread))
}

type retryProvider struct {
	inner  Provider
	cfg    RetryConfig
	logger *log.Logger
	sleep  func(context.Context, time.Duration) error
}

// WithRetry retries transient failures of p. An answer that fails schema
// validation is retried once; rejected and truncated requests never are.
func WithRetry(p Provider, cfg RetryConfig, logger *log.Logger) Provider {
	if cfg.MaxAttempts <= 1 {
		return p
	}
	if logger == nil {
		logger = discardLogger
	}
	return &retryProvider{inner: p, cfg: cfg, logger: logger, sleep: sleepCtx}
}

func (r *retryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	invalidSeen := false
	var err error
	for attempt := 0; attempt < r.cfg.MaxAttempts; attempt++ {
		var resp *Response
		resp, err = r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		if !Retryable(err) {
			return nil, err
		}
		if reason, _ := ReasonOf(err); reason == ReasonInvalidResponse {
			if invalidSeen {
				return nil, err
			}
			invalidSeen = true
		}
		if attempt == r.cfg.MaxAttempts-1 {
			break
		}

		wait := r.cfg.Backoff(attempt, err)
		r.logger.Debug("retrying llm request", "purpose", req.Purpose, "attempt", attempt+2, "wait", wait, "err", err)
		if serr := r.sleep(ctx, wait); serr != nil {
			return nil, serr
		}
	}
	return nil, err
}

func (r *retryProvider) ModelID() string { return r.inner.ModelID() }

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

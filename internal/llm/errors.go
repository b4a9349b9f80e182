package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ErrNotConfigured is returned when a command needs a model but none is set up.
var ErrNotConfigured = errors.New("no LLM provider configured")

// Reason classifies a failed call.
type Reason int

const (
	// ReasonUnavailable covers network failures and 5xx answers.
	ReasonUnavailable Reason = iota
	ReasonRateLimited
	// ReasonInvalidResponse means the model answered but the content did
	// not parse or match the schema.
	ReasonInvalidResponse
	// ReasonTruncated means the answer hit MaxTokens.
	ReasonTruncated
	// ReasonRejected is a 4xx other than 429: bad key, bad model name,
	// malformed request. Retrying will not help.
	ReasonRejected
)

func (r Reason) String() string {
	switch r {
	case ReasonRateLimited:
		return "rate limited"
	case ReasonInvalidResponse:
		return "invalid response"
	case ReasonTruncated:
		return "truncated"
	case ReasonRejected:
		return "rejected"
	default:
		return "unavailable"
	}
}

// Error is the single error type returned by providers.
type Error struct {
	Reason   Reason
	Provider string

	// RetryAfter is the server's hint for rate limits, zero if none.
	RetryAfter time.Duration

	// Content holds the raw answer for invalid or truncated responses.
	Content json.RawMessage

	Err error
}

func (e *Error) Error() string {
	msg := e.Reason.String()
	if e.Provider != "" {
		msg = e.Provider + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// ReasonOf reports the Reason of the first *Error in err's chain.
func ReasonOf(err error) (Reason, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason, true
	}
	return 0, false
}

// Retryable reports whether repeating the same request could succeed.
// Unclassified errors are treated as transient network failures.
func Retryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	reason, ok := ReasonOf(err)
	if !ok {
		return true
	}
	return reason != ReasonRejected && reason != ReasonTruncated
}

// Friendly renders err for the learner. Errors from outside this package
// keep their own text.
func Friendly(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "The model took too long to answer."
	}
	if errors.Is(err, ErrNotConfigured) {
		return "No LLM provider is configured."
	}
	reason, ok := ReasonOf(err)
	if !ok {
		return err.Error()
	}
	switch reason {
	case ReasonRateLimited:
		return "The model is rate limited. Wait a moment and try again."
	case ReasonInvalidResponse:
		return "The model gave an answer that could not be read."
	case ReasonTruncated:
		return "The model's answer was cut off."
	case ReasonRejected:
		return "The provider rejected the request. Check the API key and model name."
	default:
		return "The model could not be reached."
	}
}

// statusError classifies an HTTP status from a backend SDK error.
func statusError(provider string, status int, retryAfter time.Duration, err error) *Error {
	e := &Error{Provider: provider, Err: err}
	switch {
	case status == http.StatusTooManyRequests:
		e.Reason = ReasonRateLimited
		e.RetryAfter = retryAfter
	case status >= 400 && status < 500:
		e.Reason = ReasonRejected
	default:
		e.Reason = ReasonUnavailable
	}
	return e
}

func invalidResponse(provider string, content json.RawMessage, format string, args ...any) *Error {
	return &Error{
		Reason:   ReasonInvalidResponse,
		Provider: provider,
		Content:  content,
		Err:      fmt.Errorf(format, args...),
	}
}

// retryAfter reads a Retry-After header given in seconds.
func retryAfter(h http.Header) time.Duration {
	if h == nil {
		return 0
	}
	secs, err := strconv.Atoi(strings.TrimSpace(h.Get("Retry-After")))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

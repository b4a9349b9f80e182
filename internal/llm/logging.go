package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/abhisek/opicdrill/internal/store"
	"github.com/charmbracelet/log"
)

var discardLogger = log.New(io.Discard)

// LoggingProvider records each call to the event log and the app logger.
type LoggingProvider struct {
	inner   Provider
	backend string
	events  store.EventRepo
	logger  *log.Logger
}

// WithLogging wraps p. events and logger may be nil.
func WithLogging(p Provider, backend string, events store.EventRepo, logger *log.Logger) Provider {
	if logger == nil {
		logger = discardLogger
	}
	return &LoggingProvider{inner: p, backend: backend, events: events, logger: logger}
}

func (l *LoggingProvider) ModelID() string { return l.inner.ModelID() }

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)
	ev := l.event(req, resp, err, time.Since(start))

	kv := []any{"purpose", ev.Purpose, "model", ev.Model, "latency_ms", ev.LatencyMs}
	if err != nil {
		l.logger.Warn("llm request failed", append(kv, "err", err)...)
	} else {
		l.logger.Debug("llm request", append(kv, "in", ev.InputTokens, "out", ev.OutputTokens)...)
	}

	// The answer is already in hand, so a cancelled caller still gets it
	// recorded, and a write failure is only logged.
	if l.events != nil {
		if werr := l.events.AppendLLMRequest(context.WithoutCancel(ctx), ev); werr != nil {
			l.logger.Warn("record llm request", "err", werr)
		}
	}
	return resp, err
}

func (l *LoggingProvider) event(req Request, resp *Response, err error, took time.Duration) store.LLMRequestEventData {
	ev := store.LLMRequestEventData{
		Provider:    l.backend,
		Model:       l.inner.ModelID(),
		Purpose:     req.Purpose,
		LatencyMs:   took.Milliseconds(),
		Success:     err == nil,
		RequestBody: transcript(req),
	}
	if resp != nil {
		if resp.Model != "" {
			ev.Model = resp.Model
		}
		ev.InputTokens = resp.Usage.InputTokens
		ev.OutputTokens = resp.Usage.OutputTokens
		ev.ResponseBody = string(resp.Content)
	}
	if err != nil {
		ev.ErrorMessage = err.Error()
	}
	return ev
}

// transcript renders req as labelled blocks for `opicdrill llm view`.
func transcript(req Request) string {
	var b strings.Builder
	block := func(label, body string) {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", label, body)
	}
	if req.System != "" {
		block("system", req.System)
	}
	for _, m := range req.Messages {
		block(string(m.Role), m.Content)
	}
	if req.Schema != nil {
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			block("schema: "+req.Schema.Name, string(def))
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}

package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int       // id > After
	Before int       // id < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To

	// Purpose and Kind narrow tables that carry those columns and are
	// ignored elsewhere.
	Purpose string
	Kind    string
}

// BlobRepo is a key/value store for opaque snapshots.
type BlobRepo interface {
	// Load returns the bytes stored under key. ok is false when the key
	// has never been saved.
	Load(ctx context.Context, key string) (data []byte, ok bool, err error)

	// Save replaces the bytes stored under key.
	Save(ctx context.Context, key string, data []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEvent is a stored LLM request event.
type LLMRequestEvent struct {
	ID        int
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsage aggregates token usage for one purpose or model.
type LLMUsage struct {
	Purpose      string
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// SessionEventData summarizes one finished or abandoned practice session.
type SessionEventData struct {
	SessionID    string
	Kind         string
	Served       int
	SuccessCount int
	FailCount    int
	Duration     time.Duration
	Abandoned    bool
}

// SessionEvent is a stored session event.
type SessionEvent struct {
	ID        int
	Timestamp time.Time
	SessionEventData
}

// RefillEventData records one background refill attempt.
type RefillEventData struct {
	Kind         string
	Received     int
	Added        int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
}

// RefillEvent is a stored refill event.
type RefillEvent struct {
	ID        int
	Timestamp time.Time
	RefillEventData
}

// EventRepo provides append and query access to domain events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns LLM events, newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error)

	// GetLLMEvent returns a single event, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEvent, error)

	// LLMUsageByPurpose aggregates LLM usage per purpose.
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)

	// LLMUsageByModel aggregates LLM usage per model.
	LLMUsageByModel(ctx context.Context) ([]LLMUsage, error)

	// AppendSession records a session summary.
	AppendSession(ctx context.Context, data SessionEventData) error

	// QuerySessions returns session events, newest first.
	QuerySessions(ctx context.Context, opts QueryOpts) ([]SessionEvent, error)

	// AppendRefill records a refill attempt.
	AppendRefill(ctx context.Context, data RefillEventData) error

	// QueryRefills returns refill events, newest first.
	QueryRefills(ctx context.Context, opts QueryOpts) ([]RefillEvent, error)
}

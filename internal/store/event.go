package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// eventRepo implements EventRepo. Every event table has an auto-increment
// id that gives append order and a millisecond timestamp.
type eventRepo struct {
	db      *sql.DB
	dialect string
}

func (r *eventRepo) insert(ctx context.Context, table string, columns []string, values []any) error {
	query, args := entsql.Dialect(r.dialect).
		Insert(table).
		Columns(append([]string{"timestamp_ms"}, columns...)...).
		Values(append([]any{time.Now().UnixMilli()}, values...)...).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}

// selectEvents builds a newest-first select over table filtered by opts.
func (r *eventRepo) selectEvents(table string, opts QueryOpts, columns ...string) *entsql.Selector {
	b := entsql.Dialect(r.dialect)
	sel := b.Select(append([]string{"id", "timestamp_ms"}, columns...)...).
		From(b.Table(table))

	var preds []*entsql.Predicate
	if opts.After > 0 {
		preds = append(preds, entsql.GT("id", opts.After))
	}
	if opts.Before > 0 {
		preds = append(preds, entsql.LT("id", opts.Before))
	}
	if !opts.From.IsZero() {
		preds = append(preds, entsql.GTE("timestamp_ms", opts.From.UnixMilli()))
	}
	if !opts.To.IsZero() {
		preds = append(preds, entsql.LTE("timestamp_ms", opts.To.UnixMilli()))
	}
	if opts.Purpose != "" && slices.Contains(columns, "purpose") {
		preds = append(preds, entsql.EQ("purpose", opts.Purpose))
	}
	if opts.Kind != "" && slices.Contains(columns, "kind") {
		preds = append(preds, entsql.EQ("kind", opts.Kind))
	}
	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	sel.OrderExprFunc(func(b *entsql.Builder) {
		b.Ident("id").WriteString(" DESC")
	})
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}
	return sel
}

var llmColumns = []string{
	"provider", "model", "purpose", "input_tokens", "output_tokens",
	"latency_ms", "success", "error_message", "request_body", "response_body",
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	err := r.insert(ctx, tableLLMRequests, llmColumns, []any{
		data.Provider,
		data.Model,
		data.Purpose,
		data.InputTokens,
		data.OutputTokens,
		data.LatencyMs,
		data.Success,
		data.ErrorMessage,
		data.RequestBody,
		data.ResponseBody,
	})
	if err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

func scanLLMEvent(sc interface{ Scan(...any) error }) (LLMRequestEvent, error) {
	var (
		e              LLMRequestEvent
		ts             int64
		errMsg         sql.NullString
		reqBody, rBody sql.NullString
	)
	err := sc.Scan(&e.ID, &ts, &e.Provider, &e.Model, &e.Purpose,
		&e.InputTokens, &e.OutputTokens, &e.LatencyMs, &e.Success,
		&errMsg, &reqBody, &rBody)
	if err != nil {
		return e, err
	}
	e.Timestamp = time.UnixMilli(ts)
	e.ErrorMessage = errMsg.String
	e.RequestBody = reqBody.String
	e.ResponseBody = rBody.String
	return e, nil
}

func (r *eventRepo) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error) {
	query, args := r.selectEvents(tableLLMRequests, opts, llmColumns...).Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query LLM events: %w", err)
	}
	defer rows.Close()

	var events []LLMRequestEvent
	for rows.Next() {
		e, err := scanLLMEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan LLM event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *eventRepo) GetLLMEvent(ctx context.Context, id int) (*LLMRequestEvent, error) {
	b := entsql.Dialect(r.dialect)
	query, args := b.Select(append([]string{"id", "timestamp_ms"}, llmColumns...)...).
		From(b.Table(tableLLMRequests)).
		Where(entsql.EQ("id", id)).
		Query()

	e, err := scanLLMEvent(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get LLM event %d: %w", id, err)
	}
	return &e, nil
}

func (r *eventRepo) LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error) {
	return r.llmUsage(ctx, "purpose")
}

func (r *eventRepo) LLMUsageByModel(ctx context.Context) ([]LLMUsage, error) {
	return r.llmUsage(ctx, "model")
}

func (r *eventRepo) llmUsage(ctx context.Context, groupBy string) ([]LLMUsage, error) {
	b := entsql.Dialect(r.dialect)
	query, args := b.Select(
		groupBy,
		entsql.Count("*"),
		"COALESCE(SUM(input_tokens), 0)",
		"COALESCE(SUM(output_tokens), 0)",
		"COALESCE(AVG(latency_ms), 0)",
	).
		From(b.Table(tableLLMRequests)).
		GroupBy(groupBy).
		OrderBy(groupBy).
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query LLM usage by %s: %w", groupBy, err)
	}
	defer rows.Close()

	var out []LLMUsage
	for rows.Next() {
		var (
			key         string
			calls       int64
			in, outToks int64
			avg         float64
		)
		if err := rows.Scan(&key, &calls, &in, &outToks, &avg); err != nil {
			return nil, fmt.Errorf("scan LLM usage: %w", err)
		}
		u := LLMUsage{
			Calls:        int(calls),
			InputTokens:  int(in),
			OutputTokens: int(outToks),
			AvgLatencyMs: int64(avg),
		}
		if groupBy == "model" {
			u.Model = key
		} else {
			u.Purpose = key
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

var sessionColumns = []string{
	"session_id", "kind", "served", "success_count", "fail_count",
	"duration_ms", "abandoned",
}

func (r *eventRepo) AppendSession(ctx context.Context, data SessionEventData) error {
	err := r.insert(ctx, tableSessions, sessionColumns, []any{
		data.SessionID,
		data.Kind,
		data.Served,
		data.SuccessCount,
		data.FailCount,
		data.Duration.Milliseconds(),
		data.Abandoned,
	})
	if err != nil {
		return fmt.Errorf("save session event: %w", err)
	}
	return nil
}

func (r *eventRepo) QuerySessions(ctx context.Context, opts QueryOpts) ([]SessionEvent, error) {
	query, args := r.selectEvents(tableSessions, opts, sessionColumns...).Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query session events: %w", err)
	}
	defer rows.Close()

	var events []SessionEvent
	for rows.Next() {
		var (
			e         SessionEvent
			ts, durMs int64
		)
		err := rows.Scan(&e.ID, &ts, &e.SessionID, &e.Kind, &e.Served,
			&e.SuccessCount, &e.FailCount, &durMs, &e.Abandoned)
		if err != nil {
			return nil, fmt.Errorf("scan session event: %w", err)
		}
		e.Timestamp = time.UnixMilli(ts)
		e.Duration = time.Duration(durMs) * time.Millisecond
		events = append(events, e)
	}
	return events, rows.Err()
}

var refillColumns = []string{
	"kind", "received", "added", "latency_ms", "success", "error_message",
}

func (r *eventRepo) AppendRefill(ctx context.Context, data RefillEventData) error {
	err := r.insert(ctx, tableRefills, refillColumns, []any{
		data.Kind,
		data.Received,
		data.Added,
		data.LatencyMs,
		data.Success,
		data.ErrorMessage,
	})
	if err != nil {
		return fmt.Errorf("save refill event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryRefills(ctx context.Context, opts QueryOpts) ([]RefillEvent, error) {
	query, args := r.selectEvents(tableRefills, opts, refillColumns...).Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query refill events: %w", err)
	}
	defer rows.Close()

	var events []RefillEvent
	for rows.Next() {
		var (
			e      RefillEvent
			ts     int64
			errMsg sql.NullString
		)
		err := rows.Scan(&e.ID, &ts, &e.Kind, &e.Received, &e.Added,
			&e.LatencyMs, &e.Success, &errMsg)
		if err != nil {
			return nil, fmt.Errorf("scan refill event: %w", err)
		}
		e.Timestamp = time.UnixMilli(ts)
		e.ErrorMessage = errMsg.String
		events = append(events, e)
	}
	return events, rows.Err()
}

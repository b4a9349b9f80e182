package session

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/abhisek/opicdrill/internal/library"
	"github.com/abhisek/opicdrill/internal/queue"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// Options configures a Tracker.
type Options struct {
	// ID identifies the session in events. Defaults to a new UUID.
	ID string

	// Recorder, when set, receives a session event after flush.
	Recorder Recorder

	Logger *log.Logger

	// Now overrides the clock. Defaults to time.Now.
	Now func() time.Time
}

// Tracker walks a queue item by item and accumulates one outcome per item.
// Results are handed to the sink once, in recorded order, either when the
// last item is answered or when the session is exited early.
type Tracker struct {
	id    string
	kind  library.Kind
	items []library.Item
	pos   int
	phase Phase

	results []library.Result
	flushed bool

	sink     Sink
	recorder Recorder
	logger   *log.Logger
	now      func() time.Time

	start time.Time
	end   time.Time
}

// New starts a session over q. Repeated keys keep their first position so
// each item gets at most one outcome. It returns ErrEmptyQueue when q has
// no items.
func New(q queue.Queue, sink Sink, opts Options) (*Tracker, error) {
	if q.Len() == 0 {
		return nil, ErrEmptyQueue
	}
	if opts.ID == "" {
		opts.ID = uuid.NewString()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return &Tracker{
		id:       opts.ID,
		kind:     q.Kind,
		items:    firstByKey(q.Items),
		phase:    PhaseReady,
		sink:     sink,
		recorder: opts.Recorder,
		logger:   opts.Logger,
		now:      opts.Now,
		start:    opts.Now(),
	}, nil
}

func firstByKey(items []library.Item) []library.Item {
	out := make([]library.Item, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if _, dup := seen[it.Key]; dup {
			continue
		}
		seen[it.Key] = struct{}{}
		out = append(out, it)
	}
	return out
}

// ID returns the session identifier.
func (t *Tracker) ID() string { return t.id }

// Kind returns the kind of items being practiced.
func (t *Tracker) Kind() library.Kind { return t.kind }

// Phase returns the current phase.
func (t *Tracker) Phase() Phase { return t.phase }

// Done reports whether the session has finished.
func (t *Tracker) Done() bool { return t.phase == PhaseFinished }

// Position returns the zero-based index of the current item and the total
// number of items.
func (t *Tracker) Position() (int, int) { return t.pos, len(t.items) }

// Current returns the item being practiced. ok is false once finished.
func (t *Tracker) Current() (library.Item, bool) {
	if t.phase == PhaseFinished || t.pos >= len(t.items) {
		return library.Item{}, false
	}
	return t.items[t.pos], true
}

// Remaining returns the items not yet answered, including the current one.
func (t *Tracker) Remaining() queue.Queue {
	q := queue.Queue{Kind: t.kind}
	if t.phase != PhaseFinished && t.pos < len(t.items) {
		q.Items = append(q.Items, t.items[t.pos:]...)
	}
	return q
}

// Results returns a copy of the outcomes recorded so far.
func (t *Tracker) Results() []library.Result {
	return append([]library.Result(nil), t.results...)
}

// Reveal shows more of the current item: the logic-flow steps first when
// the item has any, then the full answer. It returns the new phase.
func (t *Tracker) Reveal() Phase {
	switch t.phase {
	case PhaseReady:
		if it, ok := t.Current(); ok && len(it.Content.Steps) > 0 {
			t.phase = PhaseHint
		} else {
			t.phase = PhaseRevealed
		}
	case PhaseHint:
		t.phase = PhaseRevealed
	}
	return t.phase
}

// Record stores outcome for the current item and moves to the next one.
// Recording the last item finishes the session and flushes the results.
func (t *Tracker) Record(ctx context.Context, outcome library.Outcome) error {
	if t.phase == PhaseFinished {
		return ErrFinished
	}
	if outcome != library.Success && outcome != library.Fail {
		return fmt.Errorf("unknown outcome %q", outcome)
	}

	t.results = append(t.results, library.Result{Key: t.items[t.pos].Key, Outcome: outcome})
	t.phase = PhaseAnswered
	t.pos++

	if t.pos >= len(t.items) {
		return t.finish(ctx)
	}
	t.phase = PhaseReady
	return nil
}

// Exit ends the session early, flushing whatever was recorded. Calling it
// on a finished session does nothing.
func (t *Tracker) Exit(ctx context.Context) error {
	if t.phase == PhaseFinished {
		return nil
	}
	return t.finish(ctx)
}

func (t *Tracker) finish(ctx context.Context) error {
	t.phase = PhaseFinished
	t.end = t.now()
	if t.flushed {
		return nil
	}
	t.flushed = true

	var err error
	if len(t.results) > 0 && t.sink != nil {
		var stale []string
		stale, err = t.sink.ApplyResults(ctx, t.kind, t.Results())
		if len(stale) > 0 {
			t.logger.Warn("session results referenced removed items", "session", t.id, "keys", stale)
		}
		if err != nil {
			err = fmt.Errorf("flush session results: %w", err)
		}
	}

	t.record(ctx)
	return err
}

func (t *Tracker) record(ctx context.Context) {
	if t.recorder == nil {
		return
	}
	s := t.Summary()
	if s.Served == 0 {
		return
	}
	err := t.recorder.AppendSession(ctx, eventData(s))
	if err != nil {
		t.logger.Warn("record session event", "session", t.id, "err", err)
	}
}

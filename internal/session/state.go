// Package session tracks a single practice session over a queue and hands
// the recorded outcomes to the library when the session ends.
package session

import (
	"context"
	"errors"

	"github.com/abhisek/opicdrill/internal/library"
	"github.com/abhisek/opicdrill/internal/queue"
	"github.com/abhisek/opicdrill/internal/store"
)

// ErrEmptyQueue is returned by New when the queue has no items.
var ErrEmptyQueue = queue.ErrEmptyQueue

// ErrFinished is returned when recording into a finished session.
var ErrFinished = errors.New("session already finished")

// Phase represents the current phase of the session.
type Phase int

const (
	PhaseReady    Phase = iota // Prompt shown, nothing revealed
	PhaseHint                  // Logic-flow steps shown
	PhaseRevealed              // Full answer shown
	PhaseAnswered              // Outcome recorded for the current item
	PhaseFinished              // All items done or session exited; results flushed
)

func (p Phase) String() string {
	switch p {
	case PhaseReady:
		return "ready"
	case PhaseHint:
		return "hint"
	case PhaseRevealed:
		return "revealed"
	case PhaseAnswered:
		return "answered"
	case PhaseFinished:
		return "finished"
	}
	return "unknown"
}

// Sink receives the results of a session exactly once. library.Store
// implements it.
type Sink interface {
	ApplyResults(ctx context.Context, kind library.Kind, results []library.Result) ([]string, error)
}

// Recorder receives a summary event after the results were flushed.
// store.EventRepo implements it.
type Recorder interface {
	AppendSession(ctx context.Context, data store.SessionEventData) error
}

package session

import (
	"time"

	"github.com/abhisek/opicdrill/internal/library"
	"github.com/abhisek/opicdrill/internal/store"
)

// Summary holds the data displayed at the end of a session.
type Summary struct {
	ID        string
	Kind      library.Kind
	Total     int // items in the queue
	Served    int // items answered
	Success   int
	Fail      int
	Duration  time.Duration
	Abandoned bool
	Accuracy  float64
	Missed    []string // keys answered with Fail, in order
}

// Summary builds the session summary. It can be called at any time; the
// duration runs until the session finished.
func (t *Tracker) Summary() Summary {
	end := t.end
	if end.IsZero() {
		end = t.now()
	}

	s := Summary{
		ID:       t.id,
		Kind:     t.kind,
		Total:    len(t.items),
		Served:   len(t.results),
		Duration: end.Sub(t.start),
	}
	for _, r := range t.results {
		switch r.Outcome {
		case library.Success:
			s.Success++
		case library.Fail:
			s.Fail++
			s.Missed = append(s.Missed, r.Key)
		}
	}
	if s.Served > 0 {
		s.Accuracy = float64(s.Success) / float64(s.Served)
	}
	s.Abandoned = t.phase == PhaseFinished && s.Served < s.Total
	return s
}

func eventData(s Summary) store.SessionEventData {
	return store.SessionEventData{
		SessionID:    s.ID,
		Kind:         string(s.Kind),
		Served:       s.Served,
		SuccessCount: s.Success,
		FailCount:    s.Fail,
		Duration:     s.Duration,
		Abandoned:    s.Abandoned,
	}
}

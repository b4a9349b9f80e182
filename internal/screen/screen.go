package screen

import (
	"io"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/log"

	"github.com/abhisek/opicdrill/internal/compose"
	"github.com/abhisek/opicdrill/internal/generate"
	"github.com/abhisek/opicdrill/internal/library"
	"github.com/abhisek/opicdrill/internal/mastery"
	"github.com/abhisek/opicdrill/internal/queue"
	"github.com/abhisek/opicdrill/internal/store"
	"github.com/abhisek/opicdrill/internal/ui/layout"
)

// Screen defines the interface for all application screens.
type Screen interface {
	// Init returns an initial command when the screen is first created.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is an optional interface that screens can implement
// to provide custom footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// Closer is an optional interface for screens holding state that must be
// written back when they leave the stack. Close may be called more than
// once.
type Closer interface {
	Close()
}

// Broadcast marks messages the router hands to every screen on the stack
// rather than only the active one.
type Broadcast interface {
	broadcast()
}

// RefillDoneMsg is sent after every background refill attempt.
type RefillDoneMsg struct {
	Result queue.RefillResult
}

func (RefillDoneMsg) broadcast() {}

// Deps carries the long-lived services screens work with. Composer and
// Generator are nil when no LLM provider is configured.
type Deps struct {
	Library   *library.Store
	Queue     *queue.Manager
	Composer  *compose.Composer
	Generator *generate.Service
	Events    store.EventRepo
	Policy    mastery.Policy
	Logger    *log.Logger
	Now       func() time.Time
}

// Clock returns the current time from Now, or time.Now when unset.
func (d Deps) Clock() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// Log returns the configured logger or a discarding one.
func (d Deps) Log() *log.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return discard
}

var discard = log.New(io.Discard)

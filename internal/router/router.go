// Package router keeps the stack of screens the app navigates through.
package router

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/opicdrill/internal/screen"
)

// Navigation messages. Screens return them from commands instead of
// holding a reference to the router.
type (
	PushScreenMsg    struct{ Screen screen.Screen }
	ReplaceScreenMsg struct{ Screen screen.Screen }
	PopScreenMsg     struct{}
)

// Router owns the screen stack. The bottom screen is never popped.
type Router struct {
	stack []screen.Screen
}

func New(root screen.Screen) *Router {
	return &Router{stack: []screen.Screen{root}}
}

func (r *Router) Depth() int { return len(r.stack) }

// Active is the top of the stack, or nil for an empty router.
func (r *Router) Active() screen.Screen {
	if n := len(r.stack); n > 0 {
		return r.stack[n-1]
	}
	return nil
}

func (r *Router) Push(s screen.Screen) tea.Cmd {
	r.stack = append(r.stack, s)
	return s.Init()
}

// Pop closes and drops the top screen unless it is the root.
func (r *Router) Pop() tea.Cmd {
	n := len(r.stack)
	if n < 2 {
		return nil
	}
	closeScreen(r.stack[n-1])
	r.stack[n-1] = nil
	r.stack = r.stack[:n-1]
	return nil
}

// Replace closes the top screen and puts s in its slot.
func (r *Router) Replace(s screen.Screen) tea.Cmd {
	n := len(r.stack)
	if n == 0 {
		return r.Push(s)
	}
	closeScreen(r.stack[n-1])
	r.stack[n-1] = s
	return s.Init()
}

// CloseAll closes every screen, top first, and leaves the stack as is.
func (r *Router) CloseAll() {
	for i := len(r.stack) - 1; i >= 0; i-- {
		closeScreen(r.stack[i])
	}
}

// Update applies navigation messages and hands everything else to the
// active screen, or to all screens for a screen.Broadcast.
func (r *Router) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case PushScreenMsg:
		return r.Push(msg.Screen)
	case ReplaceScreenMsg:
		return r.Replace(msg.Screen)
	case PopScreenMsg:
		return r.Pop()
	case screen.Broadcast:
		cmds := make([]tea.Cmd, len(r.stack))
		for i := range r.stack {
			r.stack[i], cmds[i] = r.stack[i].Update(msg)
		}
		return tea.Batch(cmds...)
	}

	n := len(r.stack)
	if n == 0 {
		return nil
	}
	var cmd tea.Cmd
	r.stack[n-1], cmd = r.stack[n-1].Update(msg)
	return cmd
}

func (r *Router) View(width, height int) string {
	if s := r.Active(); s != nil {
		return s.View(width, height)
	}
	return ""
}

func closeScreen(s screen.Screen) {
	if c, ok := s.(screen.Closer); ok {
		c.Close()
	}
}

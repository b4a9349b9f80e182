package browse

import (
	"context"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/opicdrill/internal/library"
	"github.com/abhisek/opicdrill/internal/mastery"
	"github.com/abhisek/opicdrill/internal/router"
	"github.com/abhisek/opicdrill/internal/screen"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func testDeps(t *testing.T) screen.Deps {
	t.Helper()
	lib := library.NewStore(nil, mastery.DefaultPolicy(), nil)
	ctx := context.Background()

	_, err := lib.Merge(ctx, library.KindScript, []library.Item{
		library.New(library.KindScript, "park", library.Content{
			Prompt: "Tell me about a park you visit.",
			Native: "집 근처 공원에 자주 가요.",
			Answer: "I often go to the park near my house.",
			Steps:  []string{"place", "habit"},
		}, t0),
		library.New(library.KindScript, "home", library.Content{
			Prompt: "Describe your home.",
			Answer: "I live in a small apartment.",
		}, t0),
	})
	require.NoError(t, err)

	_, err = lib.Merge(ctx, library.KindVocab, []library.Item{
		library.New(library.KindVocab, "commute", library.Content{Prompt: "통근하다", Answer: "commute"}, t0),
	})
	require.NoError(t, err)

	return screen.Deps{Library: lib, Policy: mastery.DefaultPolicy()}
}

func TestBrowse_StartsOnFirstItem(t *testing.T) {
	s := New(testDeps(t))
	assert.Equal(t, "Library", s.Title())

	r, ok := s.current()
	require.True(t, ok)
	assert.Equal(t, library.KindScript, r.shelf)

	view := s.View(100, 30)
	assert.Contains(t, view, "SCRIPTS (2)")
	assert.Contains(t, view, "VOCABULARY (1)")
	assert.Contains(t, view, "commute")
}

func TestBrowse_CursorSkipsHeaders(t *testing.T) {
	s := New(testDeps(t))

	s.Update(specialKey(tea.KeyDown))
	s.Update(specialKey(tea.KeyDown))
	r, ok := s.current()
	require.True(t, ok)
	assert.Equal(t, "commute", r.item.Key)

	// Already at the last item.
	s.Update(specialKey(tea.KeyDown))
	r, _ = s.current()
	assert.Equal(t, "commute", r.item.Key)

	s.Update(keyPress('k'))
	r, _ = s.current()
	assert.Equal(t, library.KindScript, r.shelf)
}

func TestBrowse_TabJumpsShelves(t *testing.T) {
	s := New(testDeps(t))

	s.Update(specialKey(tea.KeyTab))
	r, _ := s.current()
	assert.Equal(t, library.KindVocab, r.shelf)

	// Patterns is empty, so tab wraps back to scripts.
	s.Update(specialKey(tea.KeyTab))
	r, _ = s.current()
	assert.Equal(t, library.KindScript, r.shelf)
}

func TestBrowse_EnterOpensDetail(t *testing.T) {
	s := New(testDeps(t))

	_, cmd := s.Update(specialKey(tea.KeyEnter))
	require.NotNil(t, cmd)
	msg, ok := cmd().(router.PushScreenMsg)
	require.True(t, ok)

	detail, ok := msg.Screen.(*ItemDetailScreen)
	require.True(t, ok)
	assert.Equal(t, "Scripts", detail.Title())
	view := detail.View(100, 40)
	assert.Contains(t, view, detail.item.Content.Answer)
	assert.Contains(t, view, "never practiced")
}

func TestBrowse_DeleteNeedsConfirmation(t *testing.T) {
	deps := testDeps(t)
	s := New(deps)
	first, _ := s.current()

	s.Update(keyPress('d'))
	assert.True(t, s.confirmDelete)
	assert.Equal(t, "Confirm delete", s.KeyHints()[0].Description)

	// Any other key cancels.
	s.Update(keyPress('x'))
	assert.False(t, s.confirmDelete)
	assert.Len(t, deps.Library.Items(library.KindScript), 2)

	s.Update(keyPress('d'))
	s.Update(keyPress('d'))
	scripts := deps.Library.Items(library.KindScript)
	require.Len(t, scripts, 1)
	assert.NotEqual(t, first.item.Key, scripts[0].Key)
	assert.Contains(t, s.View(100, 30), "Deleted.")

	r, ok := s.current()
	require.True(t, ok)
	assert.Equal(t, scripts[0].Key, r.item.Key)
}

func TestBrowse_OnlyScriptsDeletable(t *testing.T) {
	deps := testDeps(t)
	s := New(deps)
	s.Update(specialKey(tea.KeyTab))

	s.Update(keyPress('d'))
	assert.False(t, s.confirmDelete)
	assert.Len(t, deps.Library.Items(library.KindVocab), 1)
}

func TestBrowse_EmptyLibrary(t *testing.T) {
	deps := screen.Deps{Library: library.NewStore(nil, mastery.DefaultPolicy(), nil)}
	s := New(deps)

	_, ok := s.current()
	assert.False(t, ok)

	_, cmd := s.Update(specialKey(tea.KeyEnter))
	assert.Nil(t, cmd)
	assert.Contains(t, s.View(80, 20), "SCRIPTS (0)")
}

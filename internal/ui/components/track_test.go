package components

import (
	"testing"

	"charm.land/lipgloss/v2"
	"github.com/stretchr/testify/assert"
)

func TestTrack_FitsWidth(t *testing.T) {
	tr := Track{Outcomes: []bool{true, false}, Total: 5}
	assert.Equal(t, 20, lipgloss.Width(tr.View(20)))

	long := Track{Outcomes: make([]bool, 40), Total: 120}
	assert.Equal(t, 30, lipgloss.Width(long.View(30)))
}

func TestTrack_Empty(t *testing.T) {
	assert.Empty(t, Track{}.View(40))
	assert.Empty(t, Track{Total: 3}.View(0))
}

package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/wordle-helper/internal/tracker"
)

func craneBoard(t *testing.T) *tracker.Tracker {
	t.Helper()
	tr := tracker.New(tracker.CycleCorrectFirst)
	for _, r := range "crane" {
		_, err := tr.EnterLetter(string(r), false)
		require.NoError(t, err)
	}
	_, err := tr.Cycle(0, 0) // C correct
	require.NoError(t, err)
	for i := 0; i < 2; i++ { // R present
		_, err = tr.Cycle(0, 1)
		require.NoError(t, err)
	}
	for i := 0; i < 3; i++ { // E absent
		_, err = tr.Cycle(0, 4)
		require.NoError(t, err)
	}
	return tr
}

func TestBuild_GhostLetters(t *testing.T) {
	// Given: C pinned to column 0 and a fresh second row
	tr := craneBoard(t)
	require.NoError(t, tr.AddRow())

	// When: the board is rendered
	snap := Build(tr)

	// Then: the empty cell under C shows a ghost, the others do not
	require.Len(t, snap.Rows, 2)
	assert.Equal(t, "c", snap.Rows[1][0].Ghost)
	assert.Empty(t, snap.Rows[1][1].Ghost)
	assert.Empty(t, snap.Rows[0][0].Ghost, "filled cells never carry a ghost")
	assert.Equal(t, 1, snap.ActiveRow)
	assert.True(t, snap.CanAddRow)
}

func TestBuild_Hints(t *testing.T) {
	tr := craneBoard(t)
	require.NoError(t, tr.AddRow())
	for _, r := range "cre" {
		_, err := tr.EnterLetter(string(r), false)
		require.NoError(t, err)
	}
	_, err := tr.EnterLetter("z", false)
	require.NoError(t, err)

	snap := Build(tr)

	row := snap.Rows[1]
	assert.Equal(t, tracker.TagCorrect, row[0].Hint)
	assert.Equal(t, tracker.TagPresent, row[1].Hint)
	assert.Equal(t, tracker.TagAbsent, row[2].Hint)
	assert.Empty(t, row[3].Hint)
	assert.Empty(t, snap.Rows[0][0].Hint, "tagged cells need no hint")
}

func TestBuild_KeyboardAndPanel(t *testing.T) {
	snap := Build(craneBoard(t))

	states := map[string]tracker.LetterState{}
	for _, kr := range snap.Keyboard {
		for _, k := range kr {
			states[k.Key] = k.State
		}
	}
	assert.Equal(t, tracker.StateCorrect, states["c"])
	assert.Equal(t, tracker.StatePresent, states["r"])
	assert.Equal(t, tracker.StateAbsent, states["e"])
	assert.Empty(t, states["a"])
	assert.Contains(t, states, KeyEnter)
	assert.Contains(t, states, KeyBackspace)

	assert.Equal(t, []string{"r"}, snap.MustUse)
	assert.Equal(t, map[string]string{"0": "c"}, snap.Positions)
	assert.Equal(t, map[string][]int{"r": {1}}, snap.Exclusions)
}

func TestBuild_FullBoard(t *testing.T) {
	tr := tracker.New(tracker.CycleCorrectFirst)
	for i := 1; i < tracker.MaxRows; i++ {
		require.NoError(t, tr.AddRow())
	}

	assert.False(t, Build(tr).CanAddRow)
}

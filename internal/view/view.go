// internal/view/view.go
//
// Read-only projection of a tracker into what a UI draws.
// Responsibilities:
//   - Grid cells with their tag, ghost letter and auto-highlight hint.
//   - Keyboard keys (QWERTY layout) colored by letter state.
//   - Side panel data: must-use letters, known positions, exclusions.
//
// Ghost letters and hints live only here; the tracker never sees them.

package view

import (
	"strconv"

	"github.com/robalobadob/wordle-helper/internal/tracker"
)

// Special keys on the on-screen keyboard.
const (
	KeyEnter     = "enter"
	KeyBackspace = "backspace"
)

// KeyboardLayout is the on-screen keyboard, row by row.
var KeyboardLayout = [][]string{
	{"q", "w", "e", "r", "t", "y", "u", "i", "o", "p"},
	{"a", "s", "d", "f", "g", "h", "j", "k", "l"},
	{KeyEnter, "z", "x", "c", "v", "b", "n", "m", KeyBackspace},
}

// Cell is one drawn grid cell.
type Cell struct {
	Letter string      `json:"letter,omitempty"`
	Tag    tracker.Tag `json:"tag"`
	Ghost  string      `json:"ghost,omitempty"` // known-correct letter shown dimmed in an empty cell
	Hint   tracker.Tag `json:"hint,omitempty"`  // suggested tag for a filled, untagged cell
}

// Key is one keyboard key.
type Key struct {
	Key   string              `json:"key"`
	State tracker.LetterState `json:"state,omitempty"`
}

// Snapshot is everything a renderer needs for one board.
type Snapshot struct {
	Rows       [][]Cell                       `json:"rows"`
	ActiveRow  int                            `json:"activeRow"`
	CanAddRow  bool                           `json:"canAddRow"`
	Cycle      tracker.CycleOrder             `json:"cycle"`
	Keyboard   [][]Key                        `json:"keyboard"`
	Letters    map[string]tracker.LetterState `json:"letters"`
	Positions  map[string]string              `json:"positions"` // column (as string) → letter
	Exclusions map[string][]int               `json:"exclusions"`
	MustUse    []string                       `json:"mustUse"`
}

// Build renders t into a Snapshot.
func Build(t *tracker.Tracker) Snapshot {
	letters := t.LetterStates()
	positions := t.Positions()
	rows := t.Rows()

	snap := Snapshot{
		Rows:       make([][]Cell, len(rows)),
		ActiveRow:  t.ActiveRow(),
		CanAddRow:  len(rows) < tracker.MaxRows,
		Cycle:      t.Order(),
		Letters:    letters,
		Positions:  make(map[string]string, len(positions)),
		Exclusions: t.Exclusions(),
		MustUse:    t.MustUseLetters(),
	}
	for col, l := range positions {
		snap.Positions[strconv.Itoa(col)] = l
	}

	for i, row := range rows {
		cells := make([]Cell, tracker.WordLength)
		for col, c := range row {
			vc := Cell{Letter: c.Letter, Tag: c.Tag}
			switch {
			case !c.Filled():
				vc.Ghost = positions[col]
			case c.Tag == tracker.TagUnset:
				vc.Hint = hintFor(c.Letter, col, letters, positions)
			}
			cells[col] = vc
		}
		snap.Rows[i] = cells
	}

	snap.Keyboard = make([][]Key, len(KeyboardLayout))
	for i, kr := range KeyboardLayout {
		keys := make([]Key, len(kr))
		for j, k := range kr {
			keys[j] = Key{Key: k, State: letters[k]}
		}
		snap.Keyboard[i] = keys
	}
	return snap
}

// hintFor picks the auto-highlight for a typed letter: pinned here → correct,
// otherwise whatever the letter is known to be elsewhere.
func hintFor(letter string, col int, letters map[string]tracker.LetterState, positions map[int]string) tracker.Tag {
	if positions[col] == letter {
		return tracker.TagCorrect
	}
	switch letters[letter] {
	case tracker.StatePresent:
		return tracker.TagPresent
	case tracker.StateAbsent:
		return tracker.TagAbsent
	}
	return ""
}

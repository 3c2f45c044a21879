// internal/tracker/types.go
//
// Core type definitions for the constraint tracker.
// Defines:
//   - Tag: per-cell feedback (unset/correct/present/absent).
//   - LetterState: aggregate feedback for a letter across the board.
//   - CycleOrder: the order a filled cell walks through on repeated clicks.
//   - Cell / Row: one guess attempt on the board.

package tracker

import "strings"

const (
	// WordLength is the number of columns in every row.
	WordLength = 5
	// MaxRows caps the number of guess rows on a board.
	MaxRows = 6
)

// Tag is the feedback recorded on a single cell.
type Tag string

const (
	TagUnset   Tag = "unset"
	TagCorrect Tag = "correct" // green: right letter, right column
	TagPresent Tag = "present" // yellow: in the word, wrong column
	TagAbsent  Tag = "absent"  // gray: not in the word
)

// Valid reports whether t is one of the four known tags.
func (t Tag) Valid() bool {
	switch t {
	case TagUnset, TagCorrect, TagPresent, TagAbsent:
		return true
	}
	return false
}

// LetterState is the aggregate feedback for a letter.
// StateNone is never stored; a letter without feedback is simply missing from the map.
type LetterState string

const (
	StateNone    LetterState = "none"
	StateCorrect LetterState = "correct"
	StatePresent LetterState = "present"
	StateAbsent  LetterState = "absent"
)

// stateOf maps a cell tag onto the letter state it implies.
func stateOf(t Tag) LetterState {
	switch t {
	case TagCorrect:
		return StateCorrect
	case TagPresent:
		return StatePresent
	case TagAbsent:
		return StateAbsent
	}
	return StateNone
}

// rank orders letter states for aggregation: correct > present > absent > none.
func (s LetterState) rank() int {
	switch s {
	case StateCorrect:
		return 3
	case StatePresent:
		return 2
	case StateAbsent:
		return 1
	}
	return 0
}

// CycleOrder selects which click cycle a board uses.
type CycleOrder string

const (
	// CycleCorrectFirst: unset → correct → present → absent → unset.
	CycleCorrectFirst CycleOrder = "correct-first"
	// CycleAbsentFirst: unset → absent → correct → present → unset.
	CycleAbsentFirst CycleOrder = "absent-first"
)

var cycles = map[CycleOrder][]Tag{
	CycleCorrectFirst: {TagUnset, TagCorrect, TagPresent, TagAbsent},
	CycleAbsentFirst:  {TagUnset, TagAbsent, TagCorrect, TagPresent},
}

// ParseCycleOrder accepts the two order names; empty input means the default.
func ParseCycleOrder(s string) (CycleOrder, error) {
	switch o := CycleOrder(strings.ToLower(strings.TrimSpace(s))); o {
	case "":
		return CycleCorrectFirst, nil
	case CycleCorrectFirst, CycleAbsentFirst:
		return o, nil
	}
	return "", ErrInvalidCycle
}

// Cell is one entry in one guess row.
type Cell struct {
	Letter string `json:"letter,omitempty"` // lowercase a–z, empty when unfilled
	Tag    Tag    `json:"tag"`

	// FromPresent marks an absent cell that was present right before.
	// Only such cells keep excluding their column.
	FromPresent bool `json:"fromPresent,omitempty"`
}

// Filled reports whether the cell holds a letter.
func (c Cell) Filled() bool { return c.Letter != "" }

// Row is one guess attempt.
type Row [WordLength]Cell

func emptyRow() Row {
	var r Row
	for i := range r {
		r[i].Tag = TagUnset
	}
	return r
}

// Word returns the row's letters, with '.' for unfilled cells.
func (r Row) Word() string {
	var b strings.Builder
	for _, c := range r {
		if c.Filled() {
			b.WriteString(c.Letter)
		} else {
			b.WriteByte('.')
		}
	}
	return b.String()
}

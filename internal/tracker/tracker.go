// internal/tracker/tracker.go
//
// Constraint tracker for a single helper board.
// Responsibilities:
//   - Hold the guess rows (the single source of truth) and the cycle order.
//   - Apply user intents: letter entry, backspace, add row, cell cycle/clear/place, reset.
//   - Keep the derived maps (letter states, known positions, exclusions) in sync by
//     running reconcile after every mutation.
//   - Answer the two queries the UI needs: CanPlace and MustUseLetters.
//
// Notes:
//   - A Tracker is owned by one session; it does no locking of its own.
//   - Failed operations leave the board untouched.

package tracker

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Tracker owns one board and its derived constraints.
type Tracker struct {
	rows  []Row
	order CycleOrder

	letters    map[string]LetterState
	positions  map[int]string
	exclusions map[string]map[int]struct{}
}

// New returns a tracker with a single empty row.
// An unknown order falls back to CycleCorrectFirst.
func New(order CycleOrder) *Tracker {
	if _, ok := cycles[order]; !ok {
		order = CycleCorrectFirst
	}
	t := &Tracker{order: order}
	t.Reset()
	return t
}

// FromRows rebuilds a tracker from stored rows, validating every cell.
func FromRows(order CycleOrder, rows []Row) (*Tracker, error) {
	if len(rows) == 0 {
		rows = []Row{emptyRow()}
	}
	if len(rows) > MaxRows {
		return nil, fmt.Errorf("%w: %d rows", ErrRowCapacityExceeded, len(rows))
	}
	t := New(order)
	t.rows = make([]Row, len(rows))
	for i, r := range rows {
		for j, c := range r {
			if c.Tag == "" {
				c.Tag = TagUnset
			}
			if !c.Tag.Valid() {
				return nil, fmt.Errorf("%w: row %d col %d tag %q", ErrInvalidCell, i, j, c.Tag)
			}
			if c.Filled() {
				l, err := NormalizeLetter(c.Letter)
				if err != nil {
					return nil, fmt.Errorf("row %d col %d: %w", i, j, err)
				}
				c.Letter = l
			} else if c.Tag != TagUnset {
				return nil, fmt.Errorf("%w: row %d col %d is tagged but empty", ErrInvalidCell, i, j)
			}
			if c.Tag != TagAbsent {
				c.FromPresent = false
			}
			t.rows[i][j] = c
		}
	}
	t.reconcile()
	return t, nil
}

// Order reports the board's cycle order.
func (t *Tracker) Order() CycleOrder { return t.order }

// SetOrder switches the cycle order. Existing tags are kept.
func (t *Tracker) SetOrder(order CycleOrder) error {
	if _, ok := cycles[order]; !ok {
		return ErrInvalidCycle
	}
	t.order = order
	return nil
}

// NextTag returns the tag that follows current in the given cycle.
func NextTag(order CycleOrder, current Tag) Tag {
	seq, ok := cycles[order]
	if !ok {
		seq = cycles[CycleCorrectFirst]
	}
	for i, tag := range seq {
		if tag == current {
			return seq[(i+1)%len(seq)]
		}
	}
	return seq[1]
}

// Reset clears the board back to a single empty row.
func (t *Tracker) Reset() {
	t.rows = []Row{emptyRow()}
	t.reconcile()
}

// AddRow appends an empty row, up to MaxRows.
func (t *Tracker) AddRow() error {
	if len(t.rows) >= MaxRows {
		return ErrRowCapacityExceeded
	}
	t.rows = append(t.rows, emptyRow())
	t.reconcile()
	return nil
}

// ActiveRow is the index of the row receiving typed letters (always the last one).
func (t *Tracker) ActiveRow() int { return len(t.rows) - 1 }

// Rows returns a copy of the board.
func (t *Tracker) Rows() []Row {
	out := make([]Row, len(t.rows))
	copy(out, t.rows)
	return out
}

// Cell returns one cell of the board.
func (t *Tracker) Cell(row, col int) (Cell, error) {
	if err := t.checkCell(row, col); err != nil {
		return Cell{}, err
	}
	return t.rows[row][col], nil
}

// EnterLetter types letter into the first empty cell of the active row.
// With enforce set, the entry is refused when CanPlace reports a conflict.
// Returns the column written.
func (t *Tracker) EnterLetter(letter string, enforce bool) (int, error) {
	active := &t.rows[t.ActiveRow()]
	col := -1
	for i, c := range active {
		if !c.Filled() {
			col = i
			break
		}
	}
	if col < 0 {
		return -1, ErrRowFull
	}
	if enforce {
		if err := t.CanPlace(letter, col); err != nil {
			return -1, err
		}
	}
	active[col] = Cell{Letter: letter, Tag: TagUnset}
	t.reconcile()
	return col, nil
}

// Backspace clears the right-most filled cell of the active row.
// Returns false when the row is already empty.
func (t *Tracker) Backspace() bool {
	active := &t.rows[t.ActiveRow()]
	for i := WordLength - 1; i >= 0; i-- {
		if active[i].Filled() {
			active[i] = Cell{Tag: TagUnset}
			t.reconcile()
			return true
		}
	}
	return false
}

// PlaceLetter writes letter into an empty cell of any row (drag-and-drop target).
func (t *Tracker) PlaceLetter(letter string, row, col int, enforce bool) error {
	if err := t.checkCell(row, col); err != nil {
		return err
	}
	if t.rows[row][col].Filled() {
		return ErrCellOccupied
	}
	if enforce {
		if err := t.CanPlace(letter, col); err != nil {
			return err
		}
	}
	t.rows[row][col] = Cell{Letter: letter, Tag: TagUnset}
	t.reconcile()
	return nil
}

// ClearCell empties one cell, dropping whatever feedback it carried.
func (t *Tracker) ClearCell(row, col int) error {
	if err := t.checkCell(row, col); err != nil {
		return err
	}
	t.rows[row][col] = Cell{Tag: TagUnset}
	t.reconcile()
	return nil
}

// Cycle advances the feedback tag of a filled cell and returns the new tag.
// Clicking an empty cell is a no-op.
func (t *Tracker) Cycle(row, col int) (Tag, error) {
	if err := t.checkCell(row, col); err != nil {
		return "", err
	}
	c := &t.rows[row][col]
	if !c.Filled() {
		return c.Tag, nil
	}
	prev := c.Tag
	c.Tag = NextTag(t.order, prev)
	c.FromPresent = prev == TagPresent && c.Tag == TagAbsent
	t.reconcile()
	return c.Tag, nil
}

// SetTag forces a tag on a filled cell. Used when loading boards.
func (t *Tracker) SetTag(row, col int, tag Tag) error {
	if err := t.checkCell(row, col); err != nil {
		return err
	}
	if !tag.Valid() {
		return fmt.Errorf("%w: tag %q", ErrInvalidCell, tag)
	}
	c := &t.rows[row][col]
	if !c.Filled() && tag != TagUnset {
		return fmt.Errorf("%w: cannot tag an empty cell", ErrInvalidCell)
	}
	if tag != c.Tag {
		c.FromPresent = c.Tag == TagPresent && tag == TagAbsent
	}
	c.Tag = tag
	t.reconcile()
	return nil
}

// CanPlace reports whether letter may go into column pos given the known constraints.
// The result is advisory: callers decide whether to block or warn.
func (t *Tracker) CanPlace(letter string, pos int) error {
	if known, ok := t.positions[pos]; ok && known != letter {
		return &ConflictError{Kind: ErrPositionConflict, Letter: letter, Position: pos, Known: known}
	}
	if _, ok := t.exclusions[letter][pos]; ok {
		return &ConflictError{Kind: ErrExclusionConflict, Letter: letter, Position: pos}
	}
	return nil
}

// MustUseLetters lists letters known to be in the word but not pinned to a column,
// sorted alphabetically.
func (t *Tracker) MustUseLetters() []string {
	pinned := make(map[string]struct{}, len(t.positions))
	for _, l := range t.positions {
		pinned[l] = struct{}{}
	}
	out := []string{}
	for l, s := range t.letters {
		if s != StatePresent {
			continue
		}
		if _, ok := pinned[l]; ok {
			continue
		}
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// LetterStates returns a copy of the letter → state map.
func (t *Tracker) LetterStates() map[string]LetterState {
	out := make(map[string]LetterState, len(t.letters))
	for k, v := range t.letters {
		out[k] = v
	}
	return out
}

// Positions returns a copy of the column → known letter map.
func (t *Tracker) Positions() map[int]string {
	out := make(map[int]string, len(t.positions))
	for k, v := range t.positions {
		out[k] = v
	}
	return out
}

// Exclusions returns letter → sorted excluded columns.
func (t *Tracker) Exclusions() map[string][]int {
	out := make(map[string][]int, len(t.exclusions))
	for l, set := range t.exclusions {
		cols := make([]int, 0, len(set))
		for c := range set {
			cols = append(cols, c)
		}
		sort.Ints(cols)
		out[l] = cols
	}
	return out
}

func (t *Tracker) checkCell(row, col int) error {
	if row < 0 || row >= len(t.rows) || col < 0 || col >= WordLength {
		return fmt.Errorf("%w: row %d col %d", ErrInvalidCell, row, col)
	}
	return nil
}

type trackerJSON struct {
	Cycle CycleOrder `json:"cycle"`
	Rows  []Row      `json:"rows"`
}

// MarshalJSON persists the rows and cycle order; derived maps are rebuilt on load.
func (t *Tracker) MarshalJSON() ([]byte, error) {
	return json.Marshal(trackerJSON{Cycle: t.order, Rows: t.rows})
}

func (t *Tracker) UnmarshalJSON(b []byte) error {
	var raw trackerJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	loaded, err := FromRows(raw.Cycle, raw.Rows)
	if err != nil {
		return err
	}
	*t = *loaded
	return nil
}

package tracker

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrPositionConflict    = errors.New("position conflict")
	ErrExclusionConflict   = errors.New("exclusion conflict")
	ErrRowCapacityExceeded = errors.New("maximum number of rows reached")
	ErrRowFull             = errors.New("row is full")
	ErrCellOccupied        = errors.New("cell is already filled")
	ErrInvalidCell         = errors.New("invalid cell")
	ErrInvalidLetter       = errors.New("invalid letter")
	ErrInvalidCycle        = errors.New("invalid cycle order")
)

// ConflictError describes why a letter may not go into a column.
// It unwraps to ErrPositionConflict or ErrExclusionConflict.
type ConflictError struct {
	Kind     error
	Letter   string
	Position int    // zero-based column
	Known    string // letter pinned to Position, set for position conflicts
}

func (e *ConflictError) Error() string {
	if errors.Is(e.Kind, ErrPositionConflict) {
		return fmt.Sprintf("Position %d must contain '%s'", e.Position+1, strings.ToUpper(e.Known))
	}
	return fmt.Sprintf("'%s' can't be in position %d", strings.ToUpper(e.Letter), e.Position+1)
}

func (e *ConflictError) Unwrap() error { return e.Kind }

// NormalizeLetter lowercases s and checks it is a single a–z letter.
func NormalizeLetter(s string) (string, error) {
	l := strings.ToLower(strings.TrimSpace(s))
	if len(l) != 1 || l[0] < 'a' || l[0] > 'z' {
		return "", fmt.Errorf("%w: %q", ErrInvalidLetter, s)
	}
	return l, nil
}

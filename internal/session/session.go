// internal/session/session.go
//
// A Session is one helper board plus the settings a player picked for it.
// It is the dispatcher between UI intents (key presses, clicks, drops,
// buttons) and the tracker.
//
// Notes:
//   - A full row swallows extra letters silently (RowFull is not a notice).
//   - Conflicts, row capacity and occupied cells come back as *Notice errors the
//     UI shows to the player; the board is left unchanged.
//   - Sessions are serialized as JSON by every store backend.

package session

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle-helper/internal/tracker"
	"github.com/robalobadob/wordle-helper/internal/view"
)

// Session holds the state of a single helper board.
type Session struct {
	ID        string           `json:"id"`
	Enforce   bool             `json:"enforce"` // gate letter entry on known constraints
	Board     *tracker.Tracker `json:"board"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// Options configure a new session.
type Options struct {
	Enforce bool
	Cycle   tracker.CycleOrder
}

// New creates a session with a fresh board.
func New(opts Options) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        genID(),
		Enforce:   opts.Enforce,
		Board:     tracker.New(opts.Cycle),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Snapshot renders the board for a UI.
func (s *Session) Snapshot() view.Snapshot { return view.Build(s.Board) }

// Key handles one key press: a letter, "Backspace" or "Enter".
func (s *Session) Key(key string) error {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case view.KeyBackspace, "⌫":
		if s.Board.Backspace() {
			s.touch("backspace")
		}
		return nil
	case view.KeyEnter:
		return s.AddRow()
	}

	letter, err := tracker.NormalizeLetter(key)
	if err != nil {
		return err
	}
	col, err := s.Board.EnterLetter(letter, s.Enforce)
	if errors.Is(err, tracker.ErrRowFull) {
		log.Debug().Str("session", s.ID).Str("letter", letter).Msg("row full, letter ignored")
		return nil
	}
	if err != nil {
		return asNotice(err)
	}
	log.Debug().Str("session", s.ID).Str("letter", letter).Int("col", col).Msg("letter entered")
	s.touch("letter")
	return nil
}

// AddRow appends a new guess row.
func (s *Session) AddRow() error {
	if err := s.Board.AddRow(); err != nil {
		return asNotice(err)
	}
	s.touch("add row")
	return nil
}

// Click cycles the feedback tag of one cell.
func (s *Session) Click(row, col int) (tracker.Tag, error) {
	tag, err := s.Board.Cycle(row, col)
	if err != nil {
		return "", err
	}
	log.Debug().Str("session", s.ID).Int("row", row).Int("col", col).Str("tag", string(tag)).Msg("cell cycled")
	s.touch("")
	return tag, nil
}

// Clear empties one cell.
func (s *Session) Clear(row, col int) error {
	if err := s.Board.ClearCell(row, col); err != nil {
		return err
	}
	s.touch("clear")
	return nil
}

// Drop places a dragged letter into an empty cell.
func (s *Session) Drop(letter string, row, col int) error {
	l, err := tracker.NormalizeLetter(letter)
	if err != nil {
		return err
	}
	if err := s.Board.PlaceLetter(l, row, col, s.Enforce); err != nil {
		return asNotice(err)
	}
	s.touch("drop")
	return nil
}

// Reset clears the board back to one empty row. Settings are kept.
func (s *Session) Reset() {
	s.Board.Reset()
	s.touch("reset")
}

// Configure changes enforcement and, when non-empty, the cycle order.
func (s *Session) Configure(enforce bool, cycle string) error {
	if cycle != "" {
		order, err := tracker.ParseCycleOrder(cycle)
		if err != nil {
			return err
		}
		if err := s.Board.SetOrder(order); err != nil {
			return err
		}
	}
	s.Enforce = enforce
	s.touch("configure")
	return nil
}

// Check runs the placement check without changing anything.
func (s *Session) Check(letter string, col int) error {
	l, err := tracker.NormalizeLetter(letter)
	if err != nil {
		return err
	}
	if col < 0 || col >= tracker.WordLength {
		return tracker.ErrInvalidCell
	}
	if err := s.Board.CanPlace(l, col); err != nil {
		return asNotice(err)
	}
	return nil
}

func (s *Session) touch(what string) {
	s.UpdatedAt = time.Now().UTC()
	if what != "" {
		log.Debug().Str("session", s.ID).Str("action", what).Msg("board updated")
	}
}

// genID creates a 22-char URL-safe, crypto-random identifier (no padding).
func genID() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// Encode serializes a session for storage.
func Encode(s *Session) ([]byte, error) { return json.Marshal(s) }

// Decode restores a stored session, rebuilding its derived constraints.
func Decode(b []byte) (*Session, error) {
	var s Session
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if s.Board == nil {
		s.Board = tracker.New(tracker.CycleCorrectFirst)
	}
	return &s, nil
}

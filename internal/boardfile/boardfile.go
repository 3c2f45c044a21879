// internal/boardfile/boardfile.go
//
// Board descriptions on disk: a compact, hand-editable form of a helper board
// used for CLI fixtures and exports.
//
//	enforce: true
//	cycle: correct-first
//	rows:
//	  - word: crane
//	    tags: cp.a.
//
// Tag letters: c/g correct, p/y present, a/x absent, '.' unset.
// r is absent after having been marked present; only it keeps its column excluded.
// Word letters: a–z, or '.' for an empty cell. Short strings are padded.
//
// JSON files may carry comments and trailing commas (JSONC).

package boardfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/robalobadob/wordle-helper/internal/session"
	"github.com/robalobadob/wordle-helper/internal/tracker"
)

var (
	ErrUnknownFormat = errors.New("unknown board file format")
	ErrBadRow        = errors.New("bad board row")
)

// Format is the encoding of a board file.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFor picks the format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

// Board is the on-disk description of a helper board.
type Board struct {
	Enforce bool   `json:"enforce" yaml:"enforce"`
	Cycle   string `json:"cycle,omitempty" yaml:"cycle,omitempty"`
	Rows    []Row  `json:"rows" yaml:"rows"`
}

// Row is one guess row: its letters and their tags.
type Row struct {
	Word string `json:"word" yaml:"word"`
	Tags string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// Load reads and parses a board file, choosing the format by extension.
func Load(path string) (*Board, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read board file: %w", err)
	}
	b, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}

// Parse decodes a board description.
func Parse(data []byte, format Format) (*Board, error) {
	var b Board
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(jsonc.ToJSON(data), &b); err != nil {
			return nil, fmt.Errorf("failed to parse board JSON: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &b); err != nil {
			return nil, fmt.Errorf("failed to parse board YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return &b, nil
}

// Tracker builds the tracker the description stands for.
func (b *Board) Tracker() (*tracker.Tracker, error) {
	order, err := tracker.ParseCycleOrder(b.Cycle)
	if err != nil {
		return nil, err
	}
	rows := make([]tracker.Row, len(b.Rows))
	for i, r := range b.Rows {
		row, err := r.parse()
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		rows[i] = row
	}
	return tracker.FromRows(order, rows)
}

// Session wraps the described board in a fresh session.
func (b *Board) Session() (*session.Session, error) {
	t, err := b.Tracker()
	if err != nil {
		return nil, err
	}
	s := session.New(session.Options{Enforce: b.Enforce, Cycle: t.Order()})
	s.Board = t
	return s, nil
}

func (r Row) parse() (tracker.Row, error) {
	word := strings.ToLower(strings.TrimSpace(r.Word))
	if len(word) > tracker.WordLength {
		return tracker.Row{}, fmt.Errorf("%w: %q longer than %d", ErrBadRow, r.Word, tracker.WordLength)
	}
	tags, err := ParseTags(r.Tags)
	if err != nil {
		return tracker.Row{}, err
	}
	code := strings.ToLower(strings.TrimSpace(r.Tags))

	var row tracker.Row
	for col := range row {
		cell := tracker.Cell{Tag: tags[col]}
		cell.FromPresent = col < len(code) && code[col] == 'r'
		if col < len(word) && word[col] != '.' {
			l, err := tracker.NormalizeLetter(word[col : col+1])
			if err != nil {
				return tracker.Row{}, fmt.Errorf("%w: column %d: %w", ErrBadRow, col+1, err)
			}
			cell.Letter = l
		}
		row[col] = cell
	}
	return row, nil
}

// ParseTags reads a row of tag letters such as "cp.a."; missing trailing tags are unset.
func ParseTags(s string) ([tracker.WordLength]tracker.Tag, error) {
	var out [tracker.WordLength]tracker.Tag
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) > tracker.WordLength {
		return out, fmt.Errorf("%w: tags %q longer than %d", ErrBadRow, s, tracker.WordLength)
	}
	for col := range out {
		out[col] = tracker.TagUnset
		if col >= len(s) {
			continue
		}
		tag, ok := tagCodes[s[col]]
		if !ok {
			return out, fmt.Errorf("%w: column %d: unknown tag %q", ErrBadRow, col+1, s[col])
		}
		out[col] = tag
	}
	return out, nil
}

var tagCodes = map[byte]tracker.Tag{
	'.': tracker.TagUnset,
	'c': tracker.TagCorrect,
	'g': tracker.TagCorrect,
	'p': tracker.TagPresent,
	'y': tracker.TagPresent,
	'a': tracker.TagAbsent,
	'x': tracker.TagAbsent,
	'r': tracker.TagAbsent,
}

var tagLetters = map[tracker.Tag]byte{
	tracker.TagUnset:   '.',
	tracker.TagCorrect: 'c',
	tracker.TagPresent: 'p',
	tracker.TagAbsent:  'a',
}

// FromSession describes a session's board.
func FromSession(s *session.Session) *Board {
	b := &Board{Enforce: s.Enforce, Cycle: string(s.Board.Order())}
	for _, row := range s.Board.Rows() {
		var tags strings.Builder
		for _, c := range row {
			if c.Tag == tracker.TagAbsent && c.FromPresent {
				tags.WriteByte('r')
				continue
			}
			tags.WriteByte(tagLetters[c.Tag])
		}
		b.Rows = append(b.Rows, Row{Word: row.Word(), Tags: tags.String()})
	}
	return b
}

// WriteJSON encodes b as indented JSON.
func WriteJSON(w io.Writer, b *Board) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(b); err != nil {
		return fmt.Errorf("failed to encode board JSON: %w", err)
	}
	return nil
}

// WriteYAML encodes b as YAML.
func WriteYAML(w io.Writer, b *Board) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(b); err != nil {
		return fmt.Errorf("failed to encode board YAML: %w", err)
	}
	return enc.Close()
}

// Package termui draws a board snapshot for a terminal.
//
// Layout, top to bottom: the guess grid (tag colors, ghost letters dimmed,
// untagged letters hinted in their suggested color), the keyboard colored by
// letter state, then the constraint panel.
package termui

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/robalobadob/wordle-helper/internal/tracker"
	"github.com/robalobadob/wordle-helper/internal/view"
)

var (
	colorCorrect = lipgloss.Color("#6AAA64")
	colorPresent = lipgloss.Color("#C9B458")
	colorAbsent  = lipgloss.Color("#787C7E")
	colorEmpty   = lipgloss.Color("#3A3A3C")
	colorMuted   = lipgloss.Color("#8E8E93")
	colorText    = lipgloss.Color("#FFFFFF")
)

// Renderer holds the styles bound to one output.
type Renderer struct {
	cell    lipgloss.Style
	ghost   lipgloss.Style
	key     lipgloss.Style
	label   lipgloss.Style
	muted   lipgloss.Style
	active  lipgloss.Style
	notice  lipgloss.Style
	byTag   map[tracker.Tag]lipgloss.Style
	byState map[tracker.LetterState]lipgloss.Style
}

// New builds a Renderer whose color support matches w.
func New(w io.Writer) *Renderer {
	r := lipgloss.NewRenderer(w)

	cell := r.NewStyle().Bold(true).Padding(0, 1).Foreground(colorText).Background(colorEmpty)
	key := r.NewStyle().Padding(0, 1)

	return &Renderer{
		cell:   cell,
		ghost:  cell.Bold(false).Faint(true).Foreground(colorMuted),
		key:    key,
		label:  r.NewStyle().Bold(true),
		muted:  r.NewStyle().Foreground(colorMuted),
		active: r.NewStyle().Foreground(colorPresent),
		notice: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF453A")),
		byTag: map[tracker.Tag]lipgloss.Style{
			tracker.TagCorrect: cell.Background(colorCorrect),
			tracker.TagPresent: cell.Background(colorPresent),
			tracker.TagAbsent:  cell.Background(colorAbsent),
		},
		byState: map[tracker.LetterState]lipgloss.Style{
			tracker.StateCorrect: key.Background(colorCorrect).Foreground(colorText),
			tracker.StatePresent: key.Background(colorPresent).Foreground(colorText),
			tracker.StateAbsent:  key.Background(colorAbsent).Foreground(colorText),
		},
	}
}

// Render draws the whole snapshot.
func (r *Renderer) Render(snap view.Snapshot) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		r.Grid(snap),
		"",
		r.Keyboard(snap),
		"",
		r.Panel(snap),
	)
}

// Grid draws the guess rows, marking the active one.
func (r *Renderer) Grid(snap view.Snapshot) string {
	lines := make([]string, len(snap.Rows))
	for i, row := range snap.Rows {
		cells := make([]string, len(row))
		for j, c := range row {
			cells[j] = r.cellView(c)
		}
		marker := "  "
		if i == snap.ActiveRow {
			marker = r.active.Render("> ")
		}
		lines[i] = marker + strconv.Itoa(i+1) + " " + lipgloss.JoinHorizontal(lipgloss.Top, cells...)
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (r *Renderer) cellView(c view.Cell) string {
	switch {
	case c.Letter == "" && c.Ghost != "":
		return r.ghost.Render(c.Ghost)
	case c.Letter == "":
		return r.cell.Render(" ")
	}
	letter := strings.ToUpper(c.Letter)
	if s, ok := r.byTag[c.Tag]; ok {
		return s.Render(letter)
	}
	if s, ok := r.byTag[c.Hint]; ok {
		return s.Faint(true).Render(letter)
	}
	return r.cell.Render(letter)
}

// Keyboard draws the on-screen keyboard rows.
func (r *Renderer) Keyboard(snap view.Snapshot) string {
	lines := make([]string, len(snap.Keyboard))
	for i, row := range snap.Keyboard {
		keys := make([]string, len(row))
		for j, k := range row {
			label := strings.ToUpper(k.Key)
			switch k.Key {
			case view.KeyEnter:
				label = "ENTER"
			case view.KeyBackspace:
				label = "⌫"
			}
			style, ok := r.byState[k.State]
			if !ok {
				style = r.key
			}
			keys[j] = style.Render(label)
		}
		lines[i] = lipgloss.JoinHorizontal(lipgloss.Top, keys...)
	}
	return lipgloss.JoinVertical(lipgloss.Center, lines...)
}

// Panel lists must-use letters, known positions and exclusions.
func (r *Renderer) Panel(snap view.Snapshot) string {
	mustUse := r.muted.Render("none")
	if len(snap.MustUse) > 0 {
		mustUse = strings.ToUpper(strings.Join(snap.MustUse, " "))
	}

	cols := make([]string, 0, len(snap.Positions))
	for col := range snap.Positions {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	known := make([]string, 0, len(cols))
	for _, col := range cols {
		n, _ := strconv.Atoi(col)
		known = append(known, fmt.Sprintf("%d=%s", n+1, strings.ToUpper(snap.Positions[col])))
	}

	letters := make([]string, 0, len(snap.Exclusions))
	for l := range snap.Exclusions {
		letters = append(letters, l)
	}
	sort.Strings(letters)
	excluded := make([]string, 0, len(letters))
	for _, l := range letters {
		ps := make([]string, len(snap.Exclusions[l]))
		for i, p := range snap.Exclusions[l] {
			ps[i] = strconv.Itoa(p + 1)
		}
		excluded = append(excluded, fmt.Sprintf("%s not %s", strings.ToUpper(l), strings.Join(ps, ",")))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		r.label.Render("Must use: ")+mustUse,
		r.label.Render("Known:    ")+orNone(r, strings.Join(known, " ")),
		r.label.Render("Excluded: ")+orNone(r, strings.Join(excluded, "; ")),
	)
}

// Notice draws a refusal message.
func (r *Renderer) Notice(msg string) string { return r.notice.Render("! " + msg) }

func orNone(r *Renderer, s string) string {
	if s == "" {
		return r.muted.Render("none")
	}
	return s
}

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/wordle-helper/internal/boardfile"
	"github.com/robalobadob/wordle-helper/internal/session"
	"github.com/robalobadob/wordle-helper/internal/termui"
	"github.com/robalobadob/wordle-helper/internal/tracker"
)

const playHelp = `Commands (rows and columns count from 1):
  <letters>            type letters into the active row, e.g. crane
  type WORD            same, for words that are also commands (type enter)
  enter | add          start a new row
  back                 delete the last typed letter
  cycle R C            click a cell to advance its color
  mark R TAGS          set a whole row, TAGS like cp.a. (c correct, p present, a absent, . unset)
  clear R C            empty a cell
  drop L R C           put letter L into an empty cell
  check L C            can letter L go in column C?
  enforce on|off       block letters that contradict what you know
  order correct-first|absent-first
  reset                start over
  save FILE            write the board (.yaml, .json or .xlsx)
  show | help | quit`

var errQuit = errors.New("quit")

func newPlayCommand() *cobra.Command {
	var (
		boardPath string
		enforce   bool
		cycle     string
	)

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Track a game interactively in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := startSession(boardPath, enforce, cycle, cmd.Flags().Changed("enforce"))
			if err != nil {
				return err
			}
			p := &player{
				sess: sess,
				ui:   termui.New(cmd.OutOrStdout()),
				out:  cmd.OutOrStdout(),
			}
			return p.run(cmd.InOrStdin())
		},
	}

	cmd.Flags().StringVar(&boardPath, "board", "", "start from a board file (.yaml or .json)")
	cmd.Flags().BoolVar(&enforce, "enforce", false, "block letters that contradict known constraints")
	cmd.Flags().StringVar(&cycle, "cycle", "", "click order: correct-first (default) or absent-first")

	return cmd
}

func startSession(boardPath string, enforce bool, cycle string, enforceSet bool) (*session.Session, error) {
	if boardPath == "" {
		order, err := tracker.ParseCycleOrder(cycle)
		if err != nil {
			return nil, err
		}
		return session.New(session.Options{Enforce: enforce, Cycle: order}), nil
	}

	b, err := boardfile.Load(boardPath)
	if err != nil {
		return nil, err
	}
	sess, err := b.Session()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", boardPath, err)
	}
	if enforceSet || cycle != "" {
		e := sess.Enforce
		if enforceSet {
			e = enforce
		}
		if err := sess.Configure(e, cycle); err != nil {
			return nil, err
		}
	}
	return sess, nil
}

// player drives one session from line-oriented input.
type player struct {
	sess *session.Session
	ui   *termui.Renderer
	out  io.Writer
}

func (p *player) run(in io.Reader) error {
	p.show()
	fmt.Fprintln(p.out, "Type help for commands.")

	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(p.out, "> ")
		if !sc.Scan() {
			fmt.Fprintln(p.out)
			return sc.Err()
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		err := p.exec(strings.Fields(line))
		if errors.Is(err, errQuit) {
			return nil
		}
		var n *session.Notice
		switch {
		case errors.As(err, &n):
			fmt.Fprintln(p.out, p.ui.Notice(n.Message))
		case err != nil:
			fmt.Fprintln(p.out, p.ui.Notice(err.Error()))
		}
	}
}

func (p *player) show() {
	fmt.Fprintln(p.out, p.ui.Render(p.sess.Snapshot()))
}

// exec runs one command. Board-changing commands redraw the board.
func (p *player) exec(fields []string) error {
	cmd, args := strings.ToLower(fields[0]), fields[1:]
	log.Debug().Str("command", cmd).Strs("args", args).Msg("play")

	var err error
	switch cmd {
	case "quit", "exit", "q":
		return errQuit
	case "help", "?":
		fmt.Fprintln(p.out, playHelp)
		return nil
	case "show":
	case "enter", "add":
		err = p.sess.AddRow()
	case "back", "backspace":
		err = p.sess.Key("Backspace")
	case "cycle":
		var row, col int
		if row, col, err = cellArgs(args, 0); err == nil {
			_, err = p.sess.Click(row, col)
		}
	case "mark":
		err = p.mark(args)
	case "clear":
		var row, col int
		if row, col, err = cellArgs(args, 0); err == nil {
			err = p.sess.Clear(row, col)
		}
	case "drop":
		if len(args) != 3 {
			return errors.New("usage: drop L R C")
		}
		var row, col int
		if row, col, err = cellArgs(args, 1); err == nil {
			err = p.sess.Drop(args[0], row, col)
		}
	case "check":
		return p.check(args)
	case "enforce":
		if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
			return errors.New("usage: enforce on|off")
		}
		err = p.sess.Configure(args[0] == "on", "")
	case "order":
		if len(args) != 1 {
			return errors.New("usage: order correct-first|absent-first")
		}
		err = p.sess.Configure(p.sess.Enforce, args[0])
	case "reset":
		p.sess.Reset()
	case "save":
		return p.save(args)
	case "type":
		if len(args) != 1 {
			return errors.New("usage: type WORD")
		}
		err = p.typeLetters(args[0])
	default:
		if len(args) > 0 {
			return fmt.Errorf("unknown command %q (try help)", cmd)
		}
		err = p.typeLetters(cmd)
	}
	if err != nil {
		return err
	}
	p.show()
	return nil
}

// typeLetters presses each letter in turn, stopping at the first refusal.
func (p *player) typeLetters(word string) error {
	for _, r := range word {
		if err := p.sess.Key(string(r)); err != nil {
			if errors.Is(err, tracker.ErrInvalidLetter) {
				return fmt.Errorf("unknown command %q (try help)", word)
			}
			return err
		}
	}
	return nil
}

// mark sets every tag of a row by clicking each cell until it shows the wanted tag.
func (p *player) mark(args []string) error {
	if len(args) != 2 {
		return errors.New("usage: mark R TAGS")
	}
	row, err := oneBased(args[0])
	if err != nil {
		return err
	}
	want, err := boardfile.ParseTags(args[1])
	if err != nil {
		return err
	}

	for col, target := range want {
		cell, err := p.sess.Board.Cell(row, col)
		if err != nil {
			return err
		}
		if !cell.Filled() {
			if target != tracker.TagUnset {
				return fmt.Errorf("row %d column %d is empty", row+1, col+1)
			}
			continue
		}
		for i := 0; cell.Tag != target && i < 4; i++ {
			if cell.Tag, err = p.sess.Click(row, col); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *player) check(args []string) error {
	if len(args) != 2 {
		return errors.New("usage: check L C")
	}
	col, err := oneBased(args[1])
	if err != nil {
		return err
	}
	err = p.sess.Check(args[0], col)
	var n *session.Notice
	switch {
	case err == nil:
		fmt.Fprintf(p.out, "%s can go in column %d\n", strings.ToUpper(args[0]), col+1)
		return nil
	case errors.As(err, &n):
		fmt.Fprintln(p.out, n.Message)
		return nil
	}
	return err
}

func (p *player) save(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: save FILE")
	}
	if err := writeBoard(args[0], p.sess); err != nil {
		return err
	}
	fmt.Fprintf(p.out, "saved %s\n", args[0])
	return nil
}

// writeBoard writes sess to path, choosing the format by extension.
func writeBoard(path string, sess *session.Session) error {
	var write func(io.Writer) error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		write = func(w io.Writer) error { return boardfile.WriteXLSX(w, sess.Snapshot()) }
	case ".yaml", ".yml":
		write = func(w io.Writer) error { return boardfile.WriteYAML(w, boardfile.FromSession(sess)) }
	case ".json", ".jsonc":
		write = func(w io.Writer) error { return boardfile.WriteJSON(w, boardfile.FromSession(sess)) }
	default:
		return fmt.Errorf("%w: %s", boardfile.ErrUnknownFormat, path)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// cellArgs reads a 1-based row and column starting at args[from].
func cellArgs(args []string, from int) (int, int, error) {
	if len(args) != from+2 {
		return 0, 0, errors.New("expected a row and a column")
	}
	row, err := oneBased(args[from])
	if err != nil {
		return 0, 0, err
	}
	col, err := oneBased(args[from+1])
	if err != nil {
		return 0, 0, err
	}
	return row, col, nil
}

func oneBased(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %q", tracker.ErrInvalidCell, s)
	}
	return n - 1, nil
}

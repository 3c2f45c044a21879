// internal/boardfile/xlsx.go
//
// Spreadsheet export of a board snapshot.
//   - Sheet "Board": one cell per letter, filled with its tag color; ghost
//     letters are written lowercase in grey.
//   - Sheet "Constraints": known positions, exclusions and must-use letters.

package boardfile

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/robalobadob/wordle-helper/internal/tracker"
	"github.com/robalobadob/wordle-helper/internal/view"
)

const (
	boardSheet       = "Board"
	constraintsSheet = "Constraints"
)

var tagFills = map[tracker.Tag]string{
	tracker.TagCorrect: "6AAA64",
	tracker.TagPresent: "C9B458",
	tracker.TagAbsent:  "787C7E",
}

// WriteXLSX writes snap as an .xlsx workbook.
func WriteXLSX(w io.Writer, snap view.Snapshot) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", boardSheet); err != nil {
		return err
	}
	if err := writeBoardSheet(f, snap); err != nil {
		return fmt.Errorf("board sheet: %w", err)
	}
	if _, err := f.NewSheet(constraintsSheet); err != nil {
		return err
	}
	if err := writeConstraintsSheet(f, snap); err != nil {
		return fmt.Errorf("constraints sheet: %w", err)
	}
	return f.Write(w)
}

func writeBoardSheet(f *excelize.File, snap view.Snapshot) error {
	styles := make(map[tracker.Tag]int, len(tagFills)+1)
	for tag, color := range tagFills {
		id, err := f.NewStyle(&excelize.Style{
			Fill:      excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
			Font:      &excelize.Font{Bold: true, Color: "FFFFFF", Size: 14},
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		})
		if err != nil {
			return err
		}
		styles[tag] = id
	}
	plain, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}
	ghost, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Italic: true, Color: "BBBBBB", Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}

	if err := f.SetColWidth(boardSheet, "A", "E", 5); err != nil {
		return err
	}
	for r, row := range snap.Rows {
		for c, cell := range row {
			addr, _ := excelize.CoordinatesToCellName(c+1, r+1) // A1, B1, ...
			style := plain
			var value string
			switch {
			case cell.Letter != "":
				value = strings.ToUpper(cell.Letter)
				if id, ok := styles[cell.Tag]; ok {
					style = id
				}
			case cell.Ghost != "":
				value = cell.Ghost
				style = ghost
			}
			if err := f.SetCellValue(boardSheet, addr, value); err != nil {
				return err
			}
			if err := f.SetCellStyle(boardSheet, addr, addr, style); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeConstraintsSheet(f *excelize.File, snap view.Snapshot) error {
	sw, err := f.NewStreamWriter(constraintsSheet)
	if err != nil {
		return err
	}
	if err := sw.SetRow("A1", []interface{}{"kind", "letter", "positions"}); err != nil {
		return err
	}

	var rows [][]interface{}
	cols := make([]string, 0, len(snap.Positions))
	for col := range snap.Positions {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	for _, col := range cols {
		n, _ := strconv.Atoi(col)
		rows = append(rows, []interface{}{"position", strings.ToUpper(snap.Positions[col]), strconv.Itoa(n + 1)})
	}

	letters := make([]string, 0, len(snap.Exclusions))
	for l := range snap.Exclusions {
		letters = append(letters, l)
	}
	sort.Strings(letters)
	for _, l := range letters {
		ps := make([]string, len(snap.Exclusions[l]))
		for i, p := range snap.Exclusions[l] {
			ps[i] = strconv.Itoa(p + 1)
		}
		rows = append(rows, []interface{}{"excluded", strings.ToUpper(l), strings.Join(ps, ",")})
	}

	for _, l := range snap.MustUse {
		rows = append(rows, []interface{}{"must use", strings.ToUpper(l)})
	}

	for i, row := range rows {
		addr, _ := excelize.CoordinatesToCellName(1, i+2) // A2, A3, ...
		if err := sw.SetRow(addr, row); err != nil {
			return err
		}
	}
	return sw.Flush()
}

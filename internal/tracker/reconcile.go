package tracker

// reconcile rebuilds letter states, known positions and exclusions from the cells.
// Every mutating method calls it exactly once before returning.
//
// Rules:
//   - letter state: highest-priority tag over all cells showing the letter
//     (correct > present > absent).
//   - positions: column → letter of a correct cell; a later row wins on conflict.
//   - exclusions: columns where the letter is tagged present, plus columns where a
//     present mark was turned into absent while another cell still shows the letter
//     correct or present. An absent mark that never passed through present excludes
//     nothing. A letter with no correct/present cell anywhere has no exclusions, and a
//     column pinned to the letter is never excluded for it.
func (t *Tracker) reconcile() {
	letters := make(map[string]LetterState)
	positions := make(map[int]string)
	evidence := make(map[string]bool) // letter shown correct or present somewhere

	for _, row := range t.rows {
		for col, c := range row {
			if !c.Filled() || c.Tag == TagUnset {
				continue
			}
			s := stateOf(c.Tag)
			if s.rank() > letters[c.Letter].rank() {
				letters[c.Letter] = s
			}
			switch c.Tag {
			case TagCorrect:
				positions[col] = c.Letter
				evidence[c.Letter] = true
			case TagPresent:
				evidence[c.Letter] = true
			}
		}
	}

	exclusions := make(map[string]map[int]struct{})
	add := func(l string, col int) {
		if positions[col] == l {
			return
		}
		if exclusions[l] == nil {
			exclusions[l] = make(map[int]struct{})
		}
		exclusions[l][col] = struct{}{}
	}
	for _, row := range t.rows {
		for col, c := range row {
			switch {
			case c.Tag == TagPresent:
				add(c.Letter, col)
			case c.Tag == TagAbsent && c.FromPresent && evidence[c.Letter]:
				add(c.Letter, col)
			}
		}
	}

	t.letters = letters
	t.positions = positions
	t.exclusions = exclusions
}

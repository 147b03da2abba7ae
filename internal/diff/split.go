package diff

import (
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
)

// Cell is one side of a split-view row.
type Cell struct {
	Number int    `json:"number"` // 1-based line number on its side
	Text   string `json:"text"`   // line content including its terminator
	Kind   Kind   `json:"kind"`
}

// Row pairs an old-side cell with a new-side cell. A nil side is a blank placeholder.
type Row struct {
	Left  *Cell `json:"left"`
	Right *Cell `json:"right"`
}

// Split projects d into side-by-side rows. Unchanged lines fill both sides. A Removed hunk
// followed by an Added hunk is paired line by line, and the longer of the two continues against
// blank placeholders; a lone Removed or Added hunk is shown opposite placeholders.
//
// Reading the non-nil Left cells top to bottom gives the old text, and the Right cells the new
// text.
func (d *Diff) Split() []Row {
	var rows []Row
	oldLine, newLine := 0, 0

	left := func(line string, k Kind) *Cell {
		oldLine++
		return &Cell{Number: oldLine, Text: line, Kind: k}
	}
	right := func(line string, k Kind) *Cell {
		newLine++
		return &Cell{Number: newLine, Text: line, Kind: k}
	}

	for i := 0; i < len(d.Hunks); i++ {
		h := d.Hunks[i]
		switch h.Kind {
		case KindUnchanged:
			for _, line := range h.Lines {
				rows = append(rows, Row{Left: left(line, KindUnchanged), Right: right(line, KindUnchanged)})
			}
		case KindAdded:
			for _, line := range h.Lines {
				rows = append(rows, Row{Right: right(line, KindAdded)})
			}
		case KindRemoved:
			var added []string
			if i+1 < len(d.Hunks) && d.Hunks[i+1].Kind == KindAdded {
				added = d.Hunks[i+1].Lines
				i++
			}
			n := len(h.Lines)
			if len(added) > n {
				n = len(added)
			}
			for j := 0; j < n; j++ {
				var row Row
				if j < len(h.Lines) {
					row.Left = left(h.Lines[j], KindRemoved)
				}
				if j < len(added) {
					row.Right = right(added[j], KindAdded)
				}
				rows = append(rows, row)
			}
		}
	}
	return rows
}

const tabWidth = 4

// WriteSplit writes rows as two columns of width display cells separated by " | ". Longer lines
// are truncated with an ellipsis. When colored is true, removed cells are red and added cells
// green.
func WriteSplit(w io.Writer, rows []Row, width int, colored bool) error {
	if width < 4 {
		width = 4
	}
	added := newColor(colored, color.FgGreen)
	removed := newColor(colored, color.FgRed)

	for _, row := range rows {
		l := formatCell(row.Left, width)
		r := formatCell(row.Right, width)
		if row.Left != nil {
			l = kindColor(row.Left.Kind, added, removed).Sprint(l)
		}
		if row.Right != nil {
			r = strings.TrimRight(r, " ")
			r = kindColor(row.Right.Kind, added, removed).Sprint(r)
		} else {
			r = ""
		}
		if _, err := io.WriteString(w, strings.TrimRight(l+" | "+r, " ")+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// formatCell renders a cell as "<marker><text>" padded to exactly width+1 display cells.
func formatCell(c *Cell, width int) string {
	if c == nil {
		return strings.Repeat(" ", width+1)
	}
	text := strings.ReplaceAll(trimEOL(c.Text), "\t", strings.Repeat(" ", tabWidth))
	text = runewidth.Truncate(text, width, "…")
	return c.Kind.Prefix() + runewidth.FillRight(text, width)
}

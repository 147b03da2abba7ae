package diff

import (
	"fmt"
	"strings"
)

// Validate checks d against the texts it claims to describe and returns an error on the first
// violated invariant:
//   - every hunk has a known kind and at least one line
//   - no two adjacent hunks share a kind
//   - only the final line of a side may lack a "\n" terminator
//   - Unchanged+Removed lines rebuild before; Unchanged+Added lines rebuild after
func (d *Diff) Validate(before, after string) error {
	for i, h := range d.Hunks {
		switch h.Kind {
		case KindUnchanged, KindAdded, KindRemoved:
		default:
			return fmt.Errorf("hunk[%d]: unknown kind %d", i, int(h.Kind))
		}
		if len(h.Lines) == 0 {
			return fmt.Errorf("hunk[%d]: %s hunk has no lines", i, h.Kind)
		}
		if i > 0 && d.Hunks[i-1].Kind == h.Kind {
			return fmt.Errorf("hunk[%d]: same kind %s as previous hunk", i, h.Kind)
		}
		for j, line := range h.Lines {
			if line == "" {
				return fmt.Errorf("hunk[%d].line[%d]: empty line", i, j)
			}
			if idx := strings.IndexByte(line, '\n'); idx != -1 && idx != len(line)-1 {
				return fmt.Errorf("hunk[%d].line[%d]: embedded line terminator", i, j)
			}
		}
	}

	if err := checkSide(d, KindRemoved, before); err != nil {
		return fmt.Errorf("old side: %w", err)
	}
	if err := checkSide(d, KindAdded, after); err != nil {
		return fmt.Errorf("new side: %w", err)
	}
	return nil
}

func checkSide(d *Diff, side Kind, want string) error {
	var lines []string
	for _, h := range d.Hunks {
		if h.Kind == KindUnchanged || h.Kind == side {
			lines = append(lines, h.Lines...)
		}
	}
	for i, line := range lines {
		if i < len(lines)-1 && !strings.HasSuffix(line, "\n") {
			return fmt.Errorf("line %d is unterminated but not last", i+1)
		}
	}
	if got := strings.Join(lines, ""); got != want {
		return fmt.Errorf("hunks do not reconstruct the text")
	}
	return nil
}

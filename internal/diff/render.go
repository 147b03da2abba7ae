package diff

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// noNewline follows a unified-diff line whose source line had no terminator.
const noNewline = `\ No newline at end of file`

// Unified returns every line of d once, prefixed with "+", "-" or " " by kind. Each output row
// ends in "\n", including rows for unterminated source lines.
func (d *Diff) Unified() string {
	var sb strings.Builder
	for _, h := range d.Hunks {
		for _, line := range h.Lines {
			sb.WriteString(h.Kind.Prefix())
			sb.WriteString(trimEOL(line))
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// WriteUnified writes the unified view of d to w. When colored is true, added lines are green
// and removed lines are red regardless of whether w is a terminal.
func (d *Diff) WriteUnified(w io.Writer, colored bool) error {
	added := newColor(colored, color.FgGreen)
	removed := newColor(colored, color.FgRed)

	for _, h := range d.Hunks {
		c := kindColor(h.Kind, added, removed)
		for _, line := range h.Lines {
			if _, err := io.WriteString(w, c.Sprint(h.Kind.Prefix()+trimEOL(line))+"\n"); err != nil {
				return err
			}
		}
	}
	return nil
}

func newColor(enabled bool, attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if enabled {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

func kindColor(k Kind, added, removed *color.Color) *color.Color {
	switch k {
	case KindAdded:
		return added
	case KindRemoved:
		return removed
	default:
		return plain
	}
}

var plain = newColor(false)

// entry is one line of a Diff with its kind.
type entry struct {
	kind Kind
	text string
}

func (d *Diff) entries() []entry {
	var out []entry
	for _, h := range d.Hunks {
		for _, line := range h.Lines {
			out = append(out, entry{kind: h.Kind, text: line})
		}
	}
	return out
}

// UnifiedDiff renders d as a classic unified diff with "--- from" / "+++ to" headers and
// "@@ -a,b +c,d @@" sections carrying up to context unchanged lines around each change. Change
// groups separated by at most 2*context unchanged lines share one section. It returns "" when
// d has no changes.
func (d *Diff) UnifiedDiff(from, to string, context int) string {
	if !d.HasChanges() {
		return ""
	}
	if context < 0 {
		context = 0
	}

	entries := d.entries()

	var changes []int
	for i, e := range entries {
		if e.kind != KindUnchanged {
			changes = append(changes, i)
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "--- %s\n+++ %s\n", from, to)

	for i := 0; i < len(changes); {
		first := changes[i]
		last := first
		j := i + 1
		for j < len(changes) && changes[j]-last-1 <= 2*context {
			last = changes[j]
			j++
		}
		i = j

		start := first - context
		if start < 0 {
			start = 0
		}
		end := last + context + 1
		if end > len(entries) {
			end = len(entries)
		}
		writeSection(&sb, entries[start:end], entries[:start])
	}

	return sb.String()
}

// writeSection writes one "@@" section. before holds the entries preceding the section and is
// used to compute its starting line numbers.
func writeSection(sb *strings.Builder, section, before []entry) {
	oldStart, newStart := 0, 0
	for _, e := range before {
		if e.kind != KindAdded {
			oldStart++
		}
		if e.kind != KindRemoved {
			newStart++
		}
	}

	oldCount, newCount := 0, 0
	for _, e := range section {
		if e.kind != KindAdded {
			oldCount++
		}
		if e.kind != KindRemoved {
			newCount++
		}
	}

	fmt.Fprintf(sb, "@@ -%s +%s @@\n", formatRange(oldStart, oldCount), formatRange(newStart, newCount))
	for _, e := range section {
		sb.WriteString(e.kind.Prefix())
		sb.WriteString(trimEOL(e.text))
		sb.WriteString("\n")
		if !strings.HasSuffix(e.text, "\n") {
			sb.WriteString(noNewline)
			sb.WriteString("\n")
		}
	}
}

// formatRange formats a section range the way diff -u does: "start" for a single line,
// "start,count" otherwise, with start being the line before an empty range.
func formatRange(skipped, count int) string {
	start := skipped + 1
	switch count {
	case 0:
		return fmt.Sprintf("%d,0", start-1)
	case 1:
		return fmt.Sprintf("%d", start)
	default:
		return fmt.Sprintf("%d,%d", start, count)
	}
}

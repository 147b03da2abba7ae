package diff

import (
	"fmt"
	"strings"
)

// Kind classifies the lines of a hunk.
type Kind int

const (
	KindUnchanged Kind = iota
	KindAdded
	KindRemoved
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindUnchanged:
		return "unchanged"
	case KindAdded:
		return "added"
	case KindRemoved:
		return "removed"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Prefix returns the unified-view marker for the kind.
func (k Kind) Prefix() string {
	switch k {
	case KindAdded:
		return "+"
	case KindRemoved:
		return "-"
	default:
		return " "
	}
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	switch k {
	case KindUnchanged, KindAdded, KindRemoved:
		return []byte(k.String()), nil
	}
	return nil, fmt.Errorf("invalid hunk kind %d", int(k))
}

// UnmarshalText decodes a kind name produced by MarshalText.
func (k *Kind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "unchanged":
		*k = KindUnchanged
	case "added":
		*k = KindAdded
	case "removed":
		*k = KindRemoved
	default:
		return fmt.Errorf("invalid hunk kind %q", text)
	}
	return nil
}

// Hunk is a maximal run of consecutive lines sharing one kind. Lines keep their terminators.
type Hunk struct {
	Kind  Kind     `json:"kind"`
	Lines []string `json:"lines"`
}

// Diff is the ordered hunk sequence describing how the old text became the new text.
// A Diff is never modified after it is returned, so it may be shared between goroutines.
type Diff struct {
	Hunks []Hunk `json:"hunks"`
}

// ComputeDiff diffs before against after line by line. It never fails and always returns the
// same hunks for the same inputs.
func ComputeDiff(before, after string) *Diff {
	a := splitLines(before)
	b := splitLines(after)

	// A common prefix is exactly the first snake of the search, so it can be taken up front.
	// The suffix is left to the search: trimming it would align repeated lines late.
	prefix := 0
	for prefix < len(a) && prefix < len(b) && a[prefix] == b[prefix] {
		prefix++
	}

	ops := make([]op, 0, len(a)+len(b)-prefix)
	for i := 0; i < prefix; i++ {
		ops = append(ops, op{opKeep, a[i]})
	}
	ops = append(ops, editScript(a[prefix:], b[prefix:])...)

	return &Diff{Hunks: fold(ops)}
}

type opType int

const (
	opKeep opType = iota
	opDelete
	opInsert
)

type op struct {
	typ  opType
	line string
}

// editScript returns a shortest keep/delete/insert script turning a into b.
func editScript(a, b []string) []op {
	switch {
	case len(a) == 0 && len(b) == 0:
		return nil
	case len(a) == 0 || len(b) == 0 || !shareLine(a, b):
		ops := make([]op, 0, len(a)+len(b))
		for _, line := range a {
			ops = append(ops, op{opDelete, line})
		}
		for _, line := range b {
			ops = append(ops, op{opInsert, line})
		}
		return ops
	}
	return myers(a, b)
}

// shareLine reports whether a and b have at least one line in common. Without one the
// shortest script is a full delete followed by a full insert, and the search can be skipped.
func shareLine(a, b []string) bool {
	seen := make(map[string]struct{}, len(a))
	for _, line := range a {
		seen[line] = struct{}{}
	}
	for _, line := range b {
		if _, ok := seen[line]; ok {
			return true
		}
	}
	return false
}

// unreachable marks a diagonal with no valid furthest point for the current D.
const unreachable = -1

// myers implements the greedy O((N+M)D) Myers search. Points never leave the N×M edit grid:
// a move that would step past the end of a or b is not taken. The trace keeps every D step,
// so its size grows with D²; it is stored as int32 to halve that.
func myers(a, b []string) []op {
	n, m := len(a), len(b)
	max := n + m
	off := max + 1

	v := make([]int32, 2*max+3)
	for i := range v {
		v[i] = unreachable
	}

	// trace[d] holds the furthest points for diagonals -d-1..d+1 as they were before step d.
	var trace [][]int32

	for d := 0; d <= max; d++ {
		snap := make([]int32, 2*d+3)
		copy(snap, v[off-d-1:off+d+2])
		trace = append(trace, snap)

		for k := -d; k <= d; k += 2 {
			var x int
			if d > 0 {
				var ok bool
				x, _, ok = advance(v, off, k, d, n, m)
				if !ok {
					v[off+k] = unreachable
					continue
				}
			}
			y := x - k

			// Follow the diagonal as far as the lines match.
			for x < n && y < m && a[x] == b[y] {
				x++
				y++
			}

			v[off+k] = int32(x)

			if x == n && y == m {
				return backtrack(a, b, trace)
			}
		}
	}

	// Unreachable: d == n+m always reaches (n, m).
	panic("diff: myers search did not terminate")
}

// advance picks the move into diagonal k at step d from the furthest points of step d-1 held in
// v (indexed from off). It returns x after the move, whether the move was an insertion (down),
// and false when neither neighbour can move into k without leaving the grid.
func advance(v []int32, off, k, d, n, m int) (x int, down bool, ok bool) {
	fromDown, fromRight := unreachable, unreachable
	if k < d {
		if px := int(v[off+k+1]); px != unreachable && px-k <= m {
			fromDown = px
		}
	}
	if k > -d {
		if px := int(v[off+k-1]); px != unreachable && px+1 <= n {
			fromRight = px + 1
		}
	}

	switch {
	case fromDown == unreachable && fromRight == unreachable:
		return 0, false, false
	case fromRight == unreachable:
		return fromDown, true, true
	case fromDown == unreachable:
		return fromRight, false, true
	case fromRight <= fromDown:
		return fromDown, true, true
	default:
		return fromRight, false, true
	}
}

// backtrack walks trace from (len(a), len(b)) back to the origin and returns the script in
// forward order.
func backtrack(a, b []string, trace [][]int32) []op {
	x, y := len(a), len(b)
	n, m := len(a), len(b)
	rev := make([]op, 0, n+m)

	for d := len(trace) - 1; d > 0; d-- {
		v := trace[d]
		k := x - y

		startX, down, _ := advance(v, d+1, k, d, n, m)
		for x > startX {
			x--
			y--
			rev = append(rev, op{opKeep, a[x]})
		}

		if down {
			y--
			rev = append(rev, op{opInsert, b[y]})
		} else {
			x--
			rev = append(rev, op{opDelete, a[x]})
		}
	}

	for x > 0 && y > 0 {
		x--
		y--
		rev = append(rev, op{opKeep, a[x]})
	}

	ops := make([]op, len(rev))
	for i, o := range rev {
		ops[len(rev)-1-i] = o
	}
	return ops
}

// fold groups the script into hunks. Within each run of changes between kept lines, all deleted
// lines become one Removed hunk and all inserted lines become the Added hunk right after it.
func fold(ops []op) []Hunk {
	hunks := make([]Hunk, 0)
	var removed, added []string

	flush := func() {
		if len(removed) > 0 {
			hunks = append(hunks, Hunk{Kind: KindRemoved, Lines: removed})
			removed = nil
		}
		if len(added) > 0 {
			hunks = append(hunks, Hunk{Kind: KindAdded, Lines: added})
			added = nil
		}
	}

	for _, o := range ops {
		switch o.typ {
		case opDelete:
			removed = append(removed, o.line)
		case opInsert:
			added = append(added, o.line)
		case opKeep:
			flush()
			if n := len(hunks); n > 0 && hunks[n-1].Kind == KindUnchanged {
				hunks[n-1].Lines = append(hunks[n-1].Lines, o.line)
				continue
			}
			hunks = append(hunks, Hunk{Kind: KindUnchanged, Lines: []string{o.line}})
		}
	}
	flush()

	return hunks
}

// Before rebuilds the old text from the Unchanged and Removed hunks.
func (d *Diff) Before() string {
	return d.join(KindRemoved)
}

// After rebuilds the new text from the Unchanged and Added hunks.
func (d *Diff) After() string {
	return d.join(KindAdded)
}

func (d *Diff) join(side Kind) string {
	var sb strings.Builder
	for _, h := range d.Hunks {
		if h.Kind != KindUnchanged && h.Kind != side {
			continue
		}
		for _, line := range h.Lines {
			sb.WriteString(line)
		}
	}
	return sb.String()
}

// HasChanges reports whether any hunk is Added or Removed.
func (d *Diff) HasChanges() bool {
	for _, h := range d.Hunks {
		if h.Kind != KindUnchanged {
			return true
		}
	}
	return false
}

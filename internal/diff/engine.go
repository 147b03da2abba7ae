package diff

import (
	"errors"
	"fmt"
)

// DefaultMaxLines is the per-side line ceiling used by the server and CLI. The search keeps
// memory proportional to the square of the edit distance, which is at most the sum of both
// sides; at 2000 lines per side the worst case stays near 64MB.
const DefaultMaxLines = 2000

// ErrInputTooLarge is returned when a side exceeds the engine's line ceiling.
var ErrInputTooLarge = errors.New("diff input too large")

// Engine computes diffs with an optional input ceiling. The zero value has no ceiling.
type Engine struct {
	// MaxLines is the largest accepted line count for each side. Zero means unlimited.
	MaxLines int
}

// NewEngine returns an Engine with the given ceiling. A negative maxLines is treated as zero.
func NewEngine(maxLines int) Engine {
	if maxLines < 0 {
		maxLines = 0
	}
	return Engine{MaxLines: maxLines}
}

// Compute diffs before against after. If either side has more than MaxLines lines it returns an
// error wrapping ErrInputTooLarge and no diff; a ceiling never yields a partial result.
func (e Engine) Compute(before, after string) (*Diff, error) {
	if err := e.check(before, after); err != nil {
		return nil, err
	}
	return ComputeDiff(before, after), nil
}

func (e Engine) check(before, after string) error {
	if e.MaxLines <= 0 {
		return nil
	}
	if n := countLines(before); n > e.MaxLines {
		return fmt.Errorf("old text has %d lines, limit is %d: %w", n, e.MaxLines, ErrInputTooLarge)
	}
	if n := countLines(after); n > e.MaxLines {
		return fmt.Errorf("new text has %d lines, limit is %d: %w", n, e.MaxLines, ErrInputTooLarge)
	}
	return nil
}

// Package diff computes line-level differences between two versions of a text, typically
// successive revisions of an instruction prompt.
//
// A Diff is an ordered list of hunks. Each hunk has one of three kinds:
//   - KindUnchanged: lines present in both texts
//   - KindRemoved: lines present only in the old text
//   - KindAdded: lines present only in the new text
//
// Lines keep their terminator ("\n" or "\r\n"), so concatenating the Unchanged and Removed
// hunks rebuilds the old text byte for byte, and concatenating the Unchanged and Added hunks
// rebuilds the new text. Adjacent hunks never share a kind. A replaced line shows up as a
// Removed hunk followed by an Added hunk; there is no "modified" kind.
//
// Computing a diff:
//
//	d := diff.ComputeDiff(oldPrompt, newPrompt)
//	fmt.Print(d.Unified())
//
// Engine adds an input ceiling, Cache memoizes results per (old, new) pair, and ComputeBatch
// diffs several pairs in parallel. Split projects a Diff into side-by-side rows without
// recomputing anything.
package diff

package diff

import (
	"math/rand"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeDiff_EmptyInputs(t *testing.T) {
	d := ComputeDiff("", "")
	require.NotNil(t, d.Hunks)
	assert.Empty(t, d.Hunks)
	assert.False(t, d.HasChanges())
}

func TestComputeDiff_Identical(t *testing.T) {
	text := "You are a helpful assistant.\nAnswer briefly.\n"
	d := ComputeDiff(text, text)

	require.Len(t, d.Hunks, 1)
	assert.Equal(t, KindUnchanged, d.Hunks[0].Kind)
	assert.Equal(t, []string{"You are a helpful assistant.\n", "Answer briefly.\n"}, d.Hunks[0].Lines)
	assert.False(t, d.HasChanges())
}

func TestComputeDiff_AddWholeText(t *testing.T) {
	d := ComputeDiff("", "a\nb\n")
	assert.Equal(t, []Hunk{{Kind: KindAdded, Lines: []string{"a\n", "b\n"}}}, d.Hunks)
}

func TestComputeDiff_RemoveWholeText(t *testing.T) {
	d := ComputeDiff("a\nb\n", "")
	assert.Equal(t, []Hunk{{Kind: KindRemoved, Lines: []string{"a\n", "b\n"}}}, d.Hunks)
}

func TestComputeDiff_ReplaceMiddleLine(t *testing.T) {
	d := ComputeDiff("a\nb\nc\n", "a\nx\nc\n")
	assert.Equal(t, []Hunk{
		{Kind: KindUnchanged, Lines: []string{"a\n"}},
		{Kind: KindRemoved, Lines: []string{"b\n"}},
		{Kind: KindAdded, Lines: []string{"x\n"}},
		{Kind: KindUnchanged, Lines: []string{"c\n"}},
	}, d.Hunks)
}

func TestComputeDiff_Hunks(t *testing.T) {
	tests := []struct {
		name   string
		before string
		after  string
		want   []Hunk
	}{
		{
			name:   "no terminators equal",
			before: "hello",
			after:  "hello",
			want:   []Hunk{{KindUnchanged, []string{"hello"}}},
		},
		{
			name:   "no terminators changed",
			before: "hello",
			after:  "hello world",
			want:   []Hunk{{KindRemoved, []string{"hello"}}, {KindAdded, []string{"hello world"}}},
		},
		{
			name:   "terminator added to last line",
			before: "a\nb",
			after:  "a\nb\n",
			want: []Hunk{
				{KindUnchanged, []string{"a\n"}},
				{KindRemoved, []string{"b"}},
				{KindAdded, []string{"b\n"}},
			},
		},
		{
			name:   "append line",
			before: "a\nb\n",
			after:  "a\nb\nc\n",
			want:   []Hunk{{KindUnchanged, []string{"a\n", "b\n"}}, {KindAdded, []string{"c\n"}}},
		},
		{
			name:   "prepend line",
			before: "b\nc\n",
			after:  "a\nb\nc\n",
			want:   []Hunk{{KindAdded, []string{"a\n"}}, {KindUnchanged, []string{"b\n", "c\n"}}},
		},
		{
			name:   "delete and insert around kept lines",
			before: "x\na\nb\n",
			after:  "a\nb\ny\n",
			want: []Hunk{
				{KindRemoved, []string{"x\n"}},
				{KindUnchanged, []string{"a\n", "b\n"}},
				{KindAdded, []string{"y\n"}},
			},
		},
		{
			name:   "crlf and lf differ",
			before: "a\r\nb\r\n",
			after:  "a\r\nb\n",
			want: []Hunk{
				{KindUnchanged, []string{"a\r\n"}},
				{KindRemoved, []string{"b\r\n"}},
				{KindAdded, []string{"b\n"}},
			},
		},
		{
			name:   "lone carriage return is content",
			before: "a\rb\n",
			after:  "a\rb\n",
			want:   []Hunk{{KindUnchanged, []string{"a\rb\n"}}},
		},
		{
			name:   "only terminators",
			before: "\n\n",
			after:  "\n\n\n",
			want:   []Hunk{{KindUnchanged, []string{"\n", "\n"}}, {KindAdded, []string{"\n"}}},
		},
		{
			name:   "removed run then added run",
			before: "keep\nold 1\nold 2\nend\n",
			after:  "keep\nnew 1\nnew 2\nnew 3\nend\n",
			want: []Hunk{
				{KindUnchanged, []string{"keep\n"}},
				{KindRemoved, []string{"old 1\n", "old 2\n"}},
				{KindAdded, []string{"new 1\n", "new 2\n", "new 3\n"}},
				{KindUnchanged, []string{"end\n"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := ComputeDiff(tt.before, tt.after)
			assert.Equal(t, tt.want, d.Hunks)
			require.NoError(t, d.Validate(tt.before, tt.after))
		})
	}
}

// Golden hunk boundaries for inputs with repeated lines. Common lines are matched as early as
// possible.
func TestComputeDiff_RepeatedLines(t *testing.T) {
	tests := []struct {
		name   string
		before string
		after  string
		want   []Hunk
	}{
		{
			name:   "extra blank line removed after first blank",
			before: "a\n\n\nb\n",
			after:  "a\n\nb\n",
			want: []Hunk{
				{KindUnchanged, []string{"a\n", "\n"}},
				{KindRemoved, []string{"\n"}},
				{KindUnchanged, []string{"b\n"}},
			},
		},
		{
			name:   "blank lines inserted after existing blanks",
			before: "rules:\n\n\nend\n",
			after:  "rules:\n\n\n\n\nend\n",
			want: []Hunk{
				{KindUnchanged, []string{"rules:\n", "\n", "\n"}},
				{KindAdded, []string{"\n", "\n"}},
				{KindUnchanged, []string{"end\n"}},
			},
		},
		{
			name:   "duplicate matched at first occurrence",
			before: "a\nb\na\n",
			after:  "c\na\n",
			want: []Hunk{
				{KindAdded, []string{"c\n"}},
				{KindUnchanged, []string{"a\n"}},
				{KindRemoved, []string{"b\n", "a\n"}},
			},
		},
		{
			name:   "duplicate kept at front",
			before: "a\n",
			after:  "a\nb\na\n",
			want:   []Hunk{{KindUnchanged, []string{"a\n"}}, {KindAdded, []string{"b\n", "a\n"}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := ComputeDiff(tt.before, tt.after)
			assert.Equal(t, tt.want, d.Hunks)
			require.NoError(t, d.Validate(tt.before, tt.after))
		})
	}
}

func TestComputeDiff_Deterministic(t *testing.T) {
	before := "a\n\nb\n\nc\n\n"
	after := "\nb\n\n\nc\nd\n\n"

	first := ComputeDiff(before, after)
	for i := 0; i < 20; i++ {
		require.Equal(t, first, ComputeDiff(before, after))
	}
}

// randomText builds texts from a small line alphabet so that repeated lines are common.
func randomText(r *rand.Rand) string {
	alphabet := []string{"a\n", "b\n", "c\n", "\n", "d\r\n", "a"}
	n := r.Intn(12)
	var sb strings.Builder
	for i := 0; i < n; i++ {
		line := alphabet[r.Intn(len(alphabet))]
		if !strings.HasSuffix(line, "\n") && i != n-1 {
			line += "\n"
		}
		sb.WriteString(line)
	}
	return sb.String()
}

// lcsLength is a textbook dynamic-programming LCS over lines.
func lcsLength(a, b []string) int {
	dp := make([][]int, len(a)+1)
	for i := range dp {
		dp[i] = make([]int, len(b)+1)
	}
	for i := len(a) - 1; i >= 0; i-- {
		for j := len(b) - 1; j >= 0; j-- {
			if a[i] == b[j] {
				dp[i][j] = dp[i+1][j+1] + 1
			} else {
				dp[i][j] = max(dp[i+1][j], dp[i][j+1])
			}
		}
	}
	return dp[0][0]
}

func TestComputeDiff_Properties(t *testing.T) {
	r := rand.New(rand.NewSource(1))

	for i := 0; i < 2000; i++ {
		before := randomText(r)
		after := randomText(r)

		d := ComputeDiff(before, after)

		// Reconstruction, adjacency and terminator placement.
		require.NoError(t, d.Validate(before, after), "before=%q after=%q", before, after)
		require.Equal(t, before, d.Before())
		require.Equal(t, after, d.After())

		// Minimality.
		a, b := splitLines(before), splitLines(after)
		want := len(a) + len(b) - 2*lcsLength(a, b)
		require.Equal(t, want, d.Stats().Changes(), "before=%q after=%q", before, after)

		// Identity.
		same := ComputeDiff(before, before)
		if before == "" {
			require.Empty(t, same.Hunks)
		} else {
			require.Len(t, same.Hunks, 1)
			require.Equal(t, KindUnchanged, same.Hunks[0].Kind)
		}
	}
}

// diffmatchpatch in line mode is an independent line differ; ours must never need more edits.
func TestComputeDiff_NoWorseThanDiffMatchPatch(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	dmp := diffmatchpatch.New()

	for i := 0; i < 500; i++ {
		before := randomText(r)
		after := randomText(r)

		r1, r2, _ := dmp.DiffLinesToRunes(before, after)
		theirs := 0
		for _, d := range dmp.DiffMainRunes(r1, r2, false) {
			if d.Type != diffmatchpatch.DiffEqual {
				theirs += utf8.RuneCountInString(d.Text)
			}
		}

		ours := ComputeDiff(before, after).Stats().Changes()
		require.LessOrEqual(t, ours, theirs, "before=%q after=%q", before, after)
	}
}

func TestSplitLines(t *testing.T) {
	assert.Nil(t, splitLines(""))
	assert.Equal(t, []string{"a"}, splitLines("a"))
	assert.Equal(t, []string{"a\n"}, splitLines("a\n"))
	assert.Equal(t, []string{"a\r\n", "b"}, splitLines("a\r\nb"))
	assert.Equal(t, []string{"\n", "\n"}, splitLines("\n\n"))
	assert.Equal(t, []string{"a\rb\n"}, splitLines("a\rb\n"))
}

func TestKindText(t *testing.T) {
	for _, k := range []Kind{KindUnchanged, KindAdded, KindRemoved} {
		text, err := k.MarshalText()
		require.NoError(t, err)

		var got Kind
		require.NoError(t, got.UnmarshalText(text))
		assert.Equal(t, k, got)
	}

	_, err := Kind(9).MarshalText()
	assert.Error(t, err)

	var k Kind
	assert.Error(t, k.UnmarshalText([]byte("modified")))
}

func TestValidate_RejectsBrokenDiffs(t *testing.T) {
	tests := []struct {
		name string
		d    *Diff
	}{
		{"adjacent same kind", &Diff{Hunks: []Hunk{{KindAdded, []string{"a\n"}}, {KindAdded, []string{"b\n"}}}}},
		{"empty hunk", &Diff{Hunks: []Hunk{{KindAdded, nil}}}},
		{"wrong text", &Diff{Hunks: []Hunk{{KindAdded, []string{"a\n", "c\n"}}}}},
		{"unterminated inner line", &Diff{Hunks: []Hunk{{KindAdded, []string{"a", "b\n"}}}}},
		{"unknown kind", &Diff{Hunks: []Hunk{{Kind(7), []string{"a\n", "b\n"}}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.d.Validate("", "a\nb\n"))
		})
	}
}

func BenchmarkComputeDiff_Prompt(b *testing.B) {
	var before, after strings.Builder
	for i := 0; i < 300; i++ {
		line := "- rule " + string(rune('a'+i%26)) + "\n"
		before.WriteString(line)
		if i%25 == 7 {
			after.WriteString("- rewritten rule\n")
			continue
		}
		after.WriteString(line)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ComputeDiff(before.String(), after.String())
	}
}

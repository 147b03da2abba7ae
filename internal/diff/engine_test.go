package diff

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_Ceiling(t *testing.T) {
	e := NewEngine(3)
	small := "a\nb\nc\n"
	big := strings.Repeat("x\n", 4)

	d, err := e.Compute(small, small)
	require.NoError(t, err)
	assert.False(t, d.HasChanges())

	d, err = e.Compute(big, small)
	assert.Nil(t, d)
	require.True(t, errors.Is(err, ErrInputTooLarge), "got %v", err)
	assert.Contains(t, err.Error(), "old text has 4 lines")

	_, err = e.Compute(small, big)
	require.ErrorIs(t, err, ErrInputTooLarge)
	assert.Contains(t, err.Error(), "new text has 4 lines")

	// An unterminated last line counts as a line.
	_, err = e.Compute("a\nb\nc\nd", "")
	require.ErrorIs(t, err, ErrInputTooLarge)
}

func TestEngine_Unlimited(t *testing.T) {
	big := strings.Repeat("line\n", 20000)
	for _, e := range []Engine{{}, NewEngine(0), NewEngine(-5)} {
		d, err := e.Compute(big, big+"tail\n")
		require.NoError(t, err)
		assert.Equal(t, Stats{Added: 1, Unchanged: 20000}, d.Stats())
	}
}

func TestEngine_CeilingBoundsMemory(t *testing.T) {
	if testing.Short() {
		t.Skip("allocates tens of megabytes")
	}

	// One shared line at opposite ends forces the longest possible search.
	var before, after strings.Builder
	before.WriteString("shared\n")
	for i := 1; i < DefaultMaxLines; i++ {
		fmt.Fprintf(&before, "old %d\n", i)
		fmt.Fprintf(&after, "new %d\n", i)
	}
	after.WriteString("shared\n")

	var start, end runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&start)

	d, err := NewEngine(DefaultMaxLines).Compute(before.String(), after.String())

	runtime.ReadMemStats(&end)
	require.NoError(t, err)
	assert.Equal(t, Stats{Added: DefaultMaxLines - 1, Removed: DefaultMaxLines - 1, Unchanged: 1}, d.Stats())

	const budget = 80 << 20
	allocated := end.TotalAlloc - start.TotalAlloc
	assert.Less(t, allocated, uint64(budget), "allocated %d MB", allocated>>20)
}

package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/cuesheet/internal/director"
)

// sequencePicker returns the given indexes in order, wrapping around.
func sequencePicker(seq ...int) (Picker, *int) {
	calls := 0
	return func(n int) int {
		v := seq[calls%len(seq)] % n
		calls++
		return v
	}, &calls
}

func TestPaletteCycleDrawsOncePerWindow(t *testing.T) {
	pick, calls := sequencePicker(0, 1, 2)
	c := NewPaletteCycle(director.PaletteCycle{Interval: 15, Set: []string{"rose", "mint", "noir"}}, pick)

	var changes []float64
	for i := 0; i < 610; i++ {
		ts := float64(i) / 10
		if _, changed := c.Observe(ts); changed {
			changes = append(changes, ts)
		}
	}

	require.Len(t, changes, 5) // windows 0..4
	assert.Equal(t, 5, *calls)
	for i := 1; i < len(changes); i++ {
		assert.GreaterOrEqual(t, changes[i]-changes[i-1], 15.0-1e-6)
	}
}

func TestPaletteCycleKeepsPaletteWithinWindow(t *testing.T) {
	pick, _ := sequencePicker(2, 0)
	c := NewPaletteCycle(director.PaletteCycle{Interval: 15, Set: []string{"rose", "mint", "noir"}}, pick)

	p, changed := c.Observe(1)
	assert.True(t, changed)
	assert.Equal(t, "noir", p)

	p, changed = c.Observe(14)
	assert.False(t, changed)
	assert.Equal(t, "noir", p)

	p, changed = c.Observe(15)
	assert.True(t, changed)
	assert.Equal(t, "rose", p)
}

func TestPaletteCycleMayRepeat(t *testing.T) {
	pick, _ := sequencePicker(1)
	c := NewPaletteCycle(director.PaletteCycle{Interval: 10, Set: []string{"rose", "mint"}}, pick)

	first, _ := c.Observe(0)
	second, changed := c.Observe(10)
	assert.True(t, changed)
	assert.Equal(t, first, second)
}

func TestPaletteCycleIndexCheckIsPure(t *testing.T) {
	pick, calls := sequencePicker(0)
	c := NewPaletteCycle(director.PaletteCycle{Interval: 15, Set: []string{"rose"}}, pick)

	idx, moved := c.IndexChanged(31)
	assert.Equal(t, 2, idx)
	assert.True(t, moved)
	idx, moved = c.IndexChanged(31)
	assert.Equal(t, 2, idx)
	assert.True(t, moved)
	assert.Zero(t, *calls)
}

func TestRandomPickerInRange(t *testing.T) {
	c := NewPaletteCycle(director.PaletteCycle{Interval: 1, Set: director.DefaultPalettes}, nil)
	for ts := 0.0; ts < 200; ts++ {
		p, _ := c.Observe(ts)
		assert.Contains(t, director.DefaultPalettes, p)
	}
}

package schedule

import (
	"math/rand/v2"

	"github.com/ivlev/cuesheet/internal/director"
)

// Picker draws an index in [0, n).
type Picker func(n int) int

// RandomPicker draws uniformly from the process-wide generator.
func RandomPicker(n int) int {
	return rand.IntN(n)
}

// PaletteCycle tracks which palette window the presentation is in and
// re-rolls the palette when the window changes.
type PaletteCycle struct {
	interval  float64
	set       []string
	pick      Picker
	lastIndex int
	current   string
}

// NewPaletteCycle returns a cycle that has not observed any time yet. A nil
// pick uses RandomPicker.
func NewPaletteCycle(cfg director.PaletteCycle, pick Picker) *PaletteCycle {
	if pick == nil {
		pick = RandomPicker
	}
	return &PaletteCycle{
		interval:  cfg.Interval,
		set:       append([]string(nil), cfg.Set...),
		pick:      pick,
		lastIndex: -1,
	}
}

// IndexChanged is the deterministic half: it reports the cycle index for
// elapsed and whether it differs from the last one recorded by Observe.
func (c *PaletteCycle) IndexChanged(elapsed float64) (int, bool) {
	idx := CycleIndex(elapsed, c.interval)
	return idx, idx != c.lastIndex
}

// Draw is the non-deterministic half: a uniform choice over the palette set,
// independent of the previous palette.
func (c *PaletteCycle) Draw() string {
	if len(c.set) == 0 {
		return ""
	}
	return c.set[c.pick(len(c.set))]
}

// Observe records elapsed and returns the current palette. changed is true
// only when the cycle index moved and a new palette was drawn; the drawn
// palette may equal the previous one.
func (c *PaletteCycle) Observe(elapsed float64) (palette string, changed bool) {
	idx, moved := c.IndexChanged(elapsed)
	if !moved {
		return c.current, false
	}
	c.lastIndex = idx
	c.current = c.Draw()
	return c.current, true
}

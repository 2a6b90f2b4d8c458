// Package schedule maps elapsed playback time to discrete presentation
// outputs.
//
// Resolve, Visible and RevealTarget are pure functions of time and static
// configuration. Palette selection is not: PaletteCycle splits it into a pure
// cycle-index check and a separate random draw that only happens when the
// index changes, so replaying the same times can legitimately produce a
// different palette sequence.
package schedule

import (
	"math"
	"sort"
	"unicode/utf8"

	"github.com/ivlev/cuesheet/internal/director"
)

// Resolve returns the id of the last cue whose start is <= elapsed. ok is
// false when elapsed precedes the first cue or the schedule is empty.
func Resolve(elapsed float64, cues []director.Cue) (id string, ok bool) {
	for i := len(cues) - 1; i >= 0; i-- {
		if elapsed >= cues[i].Start {
			return cues[i].ID, true
		}
	}
	return "", false
}

// ResolveSearch is Resolve implemented as a binary search over the sorted
// cue starts. Both return identical results for valid schedules.
func ResolveSearch(elapsed float64, cues []director.Cue) (id string, ok bool) {
	// First cue starting strictly after elapsed.
	i := sort.Search(len(cues), func(i int) bool {
		return cues[i].Start > elapsed
	})
	if i == 0 {
		return "", false
	}
	return cues[i-1].ID, true
}

// Visible reports whether a block triggered at trigger is shown at elapsed.
func Visible(trigger, elapsed float64) bool {
	return elapsed >= trigger
}

// RevealTarget returns how many characters of a reveal block should be shown
// at elapsed. At the trigger one character is shown; the rest follow evenly
// over the block's duration and the count is clamped to the text length.
func RevealTarget(r director.Reveal, elapsed float64) int {
	n := utf8.RuneCountInString(r.Text)
	if n == 0 || elapsed < r.Trigger {
		return 0
	}
	if r.Duration <= 0 {
		return n
	}

	progress := (elapsed - r.Trigger) / r.Duration
	count := int(math.Floor(progress*float64(n))) + 1
	if count > n {
		count = n
	}
	if count < 0 {
		count = 0
	}
	return count
}

// CycleIndex is floor(elapsed / interval).
func CycleIndex(elapsed, interval float64) int {
	if interval <= 0 {
		return 0
	}
	return int(math.Floor(elapsed / interval))
}

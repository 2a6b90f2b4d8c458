// Package reveal smooths sampled reveal progress into a typewriter effect.
package reveal

import (
	"fmt"
	"strings"
)

// Mode selects how the displayed count follows its target.
type Mode string

const (
	// Stepped advances one character per Step toward the target.
	Stepped Mode = "stepped"
	// Direct shows the target immediately on every Retarget.
	Direct Mode = "direct"
)

// ParseMode validates a mode name; the empty string means Stepped.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", Stepped:
		return Stepped, nil
	case Direct:
		return Direct, nil
	default:
		return "", fmt.Errorf("unknown reveal mode %q", s)
	}
}

// Animator holds the displayed character count of one reveal block.
//
// Upward moves are taken one character per Step and never overshoot the
// target. Downward moves (a seek backwards) snap immediately.
type Animator struct {
	mode      Mode
	displayed int
	target    int
}

// NewAnimator returns an animator showing nothing.
func NewAnimator(mode Mode) *Animator {
	if mode == "" {
		mode = Stepped
	}
	return &Animator{mode: mode}
}

// Retarget records a new target count and reports whether the displayed
// count changed as a result.
func (a *Animator) Retarget(target int) bool {
	if target < 0 {
		target = 0
	}
	a.target = target

	if target < a.displayed || (a.mode == Direct && target != a.displayed) {
		a.displayed = target
		return true
	}
	return false
}

// Step advances the displayed count by one toward the target and reports
// whether it moved.
func (a *Animator) Step() bool {
	if a.displayed >= a.target {
		return false
	}
	a.displayed++
	return true
}

// Displayed returns the number of characters currently shown.
func (a *Animator) Displayed() int {
	return a.displayed
}

// Prefix returns the first n characters of text, counted in runes.
func Prefix(text string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range text {
		if i == n {
			return text[:pos]
		}
		i++
	}
	return text
}

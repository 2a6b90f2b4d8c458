// Package interaction implements the decline button that moves away from the
// pointer. Every dodge counts as one attempt in the shared state.
package interaction

import (
	"log/slog"
	"math"
	"math/rand/v2"
	"sync"

	"github.com/ivlev/cuesheet/internal/state"
)

const (
	Padding      = 20.0
	ButtonWidth  = 100.0
	ButtonHeight = 50.0
	SmallMove    = 150.0 // Hover and touch
	LargeMove    = 400.0 // Click
	KeepAway     = 250.0 // Minimum distance from the accept button centre
	AcceptGap    = 30.0  // Initial offset right of the accept button

	maxCandidates = 8
)

// Rect is an axis-aligned box in viewport pixels.
type Rect struct {
	X, Y, W, H float64
}

// Center returns the centre point of r.
func (r Rect) Center() state.Point {
	return state.Point{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// Viewport is the drawable area.
type Viewport struct {
	W, H float64
}

// Option configures a Dodger.
type Option func(*Dodger)

// WithRand makes movement deterministic.
func WithRand(r *rand.Rand) Option {
	return func(d *Dodger) { d.rng = r }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dodger) { d.log = l }
}

// Dodger moves the decline button on hover, touch and click.
type Dodger struct {
	mu       sync.Mutex
	store    *state.Store
	viewport Viewport
	accept   *Rect
	mobile   bool
	pos      state.Point
	rng      *rand.Rand
	log      *slog.Logger
}

// NewDodger places the button next to accept, or right of the viewport
// centre when accept is nil, and publishes the position.
func NewDodger(store *state.Store, vp Viewport, accept *Rect, opts ...Option) *Dodger {
	d := &Dodger{
		store:    store,
		viewport: vp,
		accept:   accept,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.rng == nil {
		d.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if d.log == nil {
		d.log = slog.Default()
	}
	d.log = d.log.With("component", "interaction")

	d.pos = d.initialPosition()
	d.store.SetButton(d.pos)
	return d
}

// Hover dodges a little. Ignored in mobile mode, where touches arrive as
// synthetic hovers too.
func (d *Dodger) Hover() (state.Point, int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.mobile {
		return d.pos, d.store.Attempts()
	}
	return d.dodge(SmallMove)
}

// Touch switches to mobile mode and dodges a little.
func (d *Dodger) Touch() (state.Point, int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.mobile {
		d.mobile = true
		d.log.Debug("touch input, mobile mode")
	}
	return d.dodge(SmallMove)
}

// Click dodges far. Clicks do nothing in mobile mode.
func (d *Dodger) Click() (state.Point, int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.mobile {
		return d.pos, d.store.Attempts()
	}
	return d.dodge(LargeMove)
}

// Resize adopts a new viewport and accept button and resets the position.
func (d *Dodger) Resize(vp Viewport, accept *Rect) state.Point {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.viewport = vp
	d.accept = accept
	d.pos = d.initialPosition()
	d.store.SetButton(d.pos)
	return d.pos
}

// Position returns the button's top-left corner.
func (d *Dodger) Position() state.Point {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pos
}

// Mobile reports whether touch input has been seen.
func (d *Dodger) Mobile() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mobile
}

// TooClose reports whether p is within KeepAway of the accept button centre.
func (d *Dodger) TooClose(p state.Point) bool {
	if d.accept == nil {
		return false
	}
	c := d.accept.Center()
	return math.Hypot(p.X-c.X, p.Y-c.Y) < KeepAway
}

// dodge moves up to radius in a random direction, clamped to the viewport.
// Candidates too close to the accept button are redrawn a few times; the last
// candidate is used if none is far enough. The caller holds mu.
func (d *Dodger) dodge(radius float64) (state.Point, int) {
	var next state.Point
	for i := 0; i < maxCandidates; i++ {
		angle := d.rng.Float64() * 2 * math.Pi
		dist := d.rng.Float64() * radius
		next = d.clamp(state.Point{
			X: d.pos.X + math.Cos(angle)*dist,
			Y: d.pos.Y + math.Sin(angle)*dist,
		})
		if !d.TooClose(next) {
			break
		}
	}

	d.pos = next
	d.store.SetButton(next)
	n := d.store.IncrementAttempts()
	d.log.Debug("dodged", "x", next.X, "y", next.Y, "attempts", n)
	return next, n
}

func (d *Dodger) clamp(p state.Point) state.Point {
	maxX := math.Max(Padding, d.viewport.W-ButtonWidth-Padding)
	maxY := math.Max(Padding, d.viewport.H-ButtonHeight-Padding)
	return state.Point{
		X: math.Max(Padding, math.Min(p.X, maxX)),
		Y: math.Max(Padding, math.Min(p.Y, maxY)),
	}
}

func (d *Dodger) initialPosition() state.Point {
	if d.accept != nil {
		return state.Point{
			X: d.accept.X + d.accept.W + AcceptGap,
			Y: d.accept.Y + d.accept.H/2 - ButtonHeight/2,
		}
	}
	return state.Point{X: d.viewport.W/2 + SmallMove, Y: d.viewport.H / 2}
}

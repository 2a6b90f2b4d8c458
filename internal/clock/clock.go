// Package clock wraps the playback clock the presentation follows.
//
// The clock is foreign: it belongs to whatever plays the audio, may appear
// late and may disappear at any time. Readers only ever see a number of
// seconds, 0 while nothing is attached.
package clock

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"time"
)

// Source reports elapsed playback time in seconds. Seconds never blocks and
// never fails.
type Source interface {
	Seconds() float64
}

// Positioner is anything that knows its current playback position.
type Positioner interface {
	Position() float64
}

// PositionFunc adapts a plain function to Positioner.
type PositionFunc func() float64

// Position implements Positioner.
func (f PositionFunc) Position() float64 { return f() }

type holder struct {
	p Positioner
}

// Attachable is a Source whose underlying clock may be attached and detached
// at any time from any goroutine.
type Attachable struct {
	cur atomic.Pointer[holder]
}

// NewAttachable returns a detached clock.
func NewAttachable() *Attachable {
	return &Attachable{}
}

// Attach makes p the clock read by Seconds. A nil p detaches.
func (a *Attachable) Attach(p Positioner) {
	if p == nil {
		a.cur.Store(nil)
		return
	}
	a.cur.Store(&holder{p: p})
}

// Detach drops the current clock; Seconds reads 0 afterwards.
func (a *Attachable) Detach() {
	a.cur.Store(nil)
}

// Attached reports whether a clock is currently attached.
func (a *Attachable) Attached() bool {
	return a.cur.Load() != nil
}

// Seconds implements Source.
func (a *Attachable) Seconds() float64 {
	h := a.cur.Load()
	if h == nil {
		return 0
	}
	return sanitize(h.p.Position())
}

// AttachWhenReady polls find every interval until it yields a clock, then
// attaches it. It returns ctx.Err() if the context ends first.
func AttachWhenReady(ctx context.Context, a *Attachable, find func() (Positioner, bool), interval time.Duration) error {
	if p, ok := find(); ok {
		a.Attach(p)
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if p, ok := find(); ok {
				a.Attach(p)
				return nil
			}
		}
	}
}

// Manual is a Source driven explicitly by its owner. It backs offline
// rendering and tests.
type Manual struct {
	mu  sync.Mutex
	now float64
}

// NewManual returns a manual clock at start seconds.
func NewManual(start float64) *Manual {
	return &Manual{now: sanitize(start)}
}

// Set jumps the clock, backwards included.
func (m *Manual) Set(seconds float64) {
	m.mu.Lock()
	m.now = sanitize(seconds)
	m.mu.Unlock()
}

// Advance moves the clock forward by d.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.now = sanitize(m.now + d.Seconds())
	m.mu.Unlock()
}

// Seconds implements Source.
func (m *Manual) Seconds() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Position lets a Manual clock be attached to an Attachable.
func (m *Manual) Position() float64 {
	return m.Seconds()
}

func sanitize(s float64) float64 {
	if math.IsNaN(s) || math.IsInf(s, 0) || s < 0 {
		return 0
	}
	return s
}

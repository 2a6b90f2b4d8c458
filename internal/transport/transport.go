// Package transport provides audio playback controls. A Transport's
// position is what the timeline clock reads.
package transport

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"
)

// ErrNoMedia is returned when a transport is created without a track.
var ErrNoMedia = errors.New("transport: no media")

// Transport is an audio player.
type Transport interface {
	Position() float64 // Seconds into the track
	Duration() float64 // Seconds, 0 when unknown
	Play() error
	Pause() error
	Paused() bool
	Seek(seconds float64) error
	SetVolume(v float64) error
	Volume() float64
	Ended() bool
	Close() error
}

// Toggle plays a paused transport and pauses a playing one.
func Toggle(t Transport) error {
	if t.Paused() {
		return t.Play()
	}
	return t.Pause()
}

// FormatTime renders seconds as m:ss. Non-finite or negative input renders
// as 0:00.
func FormatTime(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return "0:00"
	}
	total := int(seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// Simulated is a transport that plays nothing and advances with the wall
// clock. It starts paused at 0.
type Simulated struct {
	mu        sync.Mutex
	duration  float64
	volume    float64
	paused    bool
	base      float64 // Position when last resumed or seeked
	startedAt time.Time
	now       func() time.Time
}

// NewSimulated returns a paused transport for a track of the given length.
// A non-positive duration means the track never ends.
func NewSimulated(duration float64) *Simulated {
	return newSimulated(duration, time.Now)
}

func newSimulated(duration float64, now func() time.Time) *Simulated {
	if duration < 0 || math.IsNaN(duration) || math.IsInf(duration, 0) {
		duration = 0
	}
	return &Simulated{duration: duration, volume: 1, paused: true, now: now}
}

func (s *Simulated) position() float64 {
	pos := s.base
	if !s.paused {
		pos += s.now().Sub(s.startedAt).Seconds()
	}
	if s.duration > 0 && pos > s.duration {
		pos = s.duration
	}
	return pos
}

// Position returns the current playback position.
func (s *Simulated) Position() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.position()
}

// Duration returns the track length.
func (s *Simulated) Duration() float64 {
	return s.duration
}

// Play resumes from the current position.
func (s *Simulated) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.paused {
		s.paused = false
		s.startedAt = s.now()
	}
	return nil
}

// Pause freezes the position.
func (s *Simulated) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.paused {
		s.base = s.position()
		s.paused = true
	}
	return nil
}

// Paused reports whether playback is paused.
func (s *Simulated) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// Seek moves to seconds, clamped to the track.
func (s *Simulated) Seek(seconds float64) error {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return fmt.Errorf("transport: invalid seek position %v", seconds)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if seconds < 0 {
		seconds = 0
	}
	if s.duration > 0 && seconds > s.duration {
		seconds = s.duration
	}
	s.base = seconds
	s.startedAt = s.now()
	return nil
}

// SetVolume sets the volume, clamped to [0,1].
func (s *Simulated) SetVolume(v float64) error {
	if math.IsNaN(v) {
		return fmt.Errorf("transport: invalid volume %v", v)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.volume = math.Max(0, math.Min(1, v))
	return nil
}

// Volume returns the volume in [0,1].
func (s *Simulated) Volume() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volume
}

// Ended reports whether a track of known length has played to the end.
func (s *Simulated) Ended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.duration > 0 && s.position() >= s.duration
}

// Close pauses the transport.
func (s *Simulated) Close() error {
	return s.Pause()
}

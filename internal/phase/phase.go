// Package phase is the forward-only presentation phase machine that gates
// the timeline engine.
package phase

import (
	"errors"
	"fmt"
	"sync"
)

// Phase of the presentation.
//
//	        Begin()           Complete()
//	Idle ────────────► Active ────────────► Complete
//
// Transitions only move forward and each phase is entered once.
type Phase int

const (
	// Idle is before the audio-driven part starts.
	Idle Phase = iota
	// Active is while the track plays and the timeline is sampled.
	Active
	// Complete is after the track ended. The last state stays on screen.
	Complete
)

// String returns a human-readable representation of the phase.
func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Active:
		return "active"
	case Complete:
		return "complete"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// ErrInvalidTransition is returned for any transition that is not one step
// forward.
var ErrInvalidTransition = errors.New("invalid phase transition")

// Machine holds the current phase and runs enter hooks.
type Machine struct {
	mu      sync.Mutex
	current Phase
	hooks   map[Phase][]func()
}

// NewMachine returns a machine in Idle.
func NewMachine() *Machine {
	return &Machine{hooks: make(map[Phase][]func())}
}

// OnEnter registers fn to run when p is entered. Hooks run synchronously on
// the goroutine that made the transition, outside the machine's lock.
func (m *Machine) OnEnter(p Phase, fn func()) {
	m.mu.Lock()
	m.hooks[p] = append(m.hooks[p], fn)
	m.mu.Unlock()
}

// Current returns the current phase.
func (m *Machine) Current() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Begin moves Idle -> Active.
func (m *Machine) Begin() error {
	return m.advance(Idle, Active)
}

// Complete moves Active -> Complete.
func (m *Machine) Complete() error {
	return m.advance(Active, Complete)
}

func (m *Machine) advance(from, to Phase) error {
	m.mu.Lock()
	if m.current != from {
		cur := m.current
		m.mu.Unlock()
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, cur, to)
	}
	m.current = to
	hooks := append([]func(){}, m.hooks[to]...)
	m.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
	return nil
}

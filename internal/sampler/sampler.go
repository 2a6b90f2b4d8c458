// Package sampler polls the playback clock on a fixed period and republishes
// the value for everything that derives state from time.
//
// The clock is sampled rather than subscribed to because it lives outside
// the engine and does not emit updates at the rate a smooth letter-by-letter
// reveal needs.
package sampler

import (
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ivlev/cuesheet/internal/clock"
)

// DefaultPeriod keeps a one-character typewriter step visually smooth.
const DefaultPeriod = 50 * time.Millisecond

// Ticker delivers periodic ticks until stopped.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFactory creates a ticker for the given period.
type TickerFactory func(period time.Duration) Ticker

type realTicker struct {
	t *time.Ticker
}

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop() { r.t.Stop() }

// RealTicker is the TickerFactory backed by time.NewTicker.
func RealTicker(period time.Duration) Ticker {
	return realTicker{t: time.NewTicker(period)}
}

// Signal is the shared elapsed-time value. The sampler is its only writer.
type Signal struct {
	bits atomic.Uint64
	seq  atomic.Uint64
}

// Publish stores a new elapsed time.
func (s *Signal) Publish(seconds float64) {
	s.bits.Store(math.Float64bits(seconds))
	s.seq.Add(1)
}

// Load returns the last published elapsed time, 0 before the first publish.
func (s *Signal) Load() float64 {
	return math.Float64frombits(s.bits.Load())
}

// Seq counts publishes.
func (s *Signal) Seq() uint64 {
	return s.seq.Load()
}

// Handler receives the value published by one tick. It runs to completion
// before the next tick starts.
type Handler func(elapsed float64)

// Option configures a Sampler.
type Option func(*Sampler)

// WithTickerFactory replaces time.NewTicker, mainly for tests.
func WithTickerFactory(f TickerFactory) Option {
	return func(s *Sampler) { s.newTicker = f }
}

// WithSignal makes the sampler publish into an existing signal.
func WithSignal(sig *Signal) Option {
	return func(s *Sampler) { s.signal = sig }
}

// ErrInvalidPeriod is returned by Start for non-positive periods.
var ErrInvalidPeriod = errors.New("sampler: period must be positive")

// Sampler reads a clock.Source every period, publishes the reading into its
// Signal and then calls the handler with the same reading.
type Sampler struct {
	src       clock.Source
	handler   Handler
	signal    *Signal
	newTicker TickerFactory

	mu      sync.Mutex // lifecycle
	running bool
	stop    chan struct{}
	done    chan struct{}
	gen     atomic.Uint64

	tickMu sync.Mutex    // serialises ticks
	inTick atomic.Uint64 // generation whose handler is running, 0 otherwise
	ticks  atomic.Uint64
	stale  atomic.Uint64
}

// New creates a stopped sampler.
func New(src clock.Source, handler Handler, opts ...Option) *Sampler {
	s := &Sampler{
		src:       src,
		handler:   handler,
		newTicker: RealTicker,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.signal == nil {
		s.signal = &Signal{}
	}
	return s
}

// Signal returns the published elapsed time.
func (s *Sampler) Signal() *Signal {
	return s.signal
}

// Start begins sampling every period, taking the first sample immediately.
// Starting a running sampler is a no-op.
func (s *Sampler) Start(period time.Duration) error {
	if period <= 0 {
		return ErrInvalidPeriod
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}

	s.running = true
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	gen := s.gen.Add(1)

	ticker := s.newTicker(period)
	go s.loop(gen, ticker, s.stop, s.done)
	return nil
}

// Stop halts sampling and waits for the sampling goroutine to exit, so no
// handler call starts after Stop returns. Stopping a stopped sampler is a
// no-op.
//
// Stop may be called mid-tick, including from the handler. It then returns
// without waiting and the running handler is the last one.
func (s *Sampler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cur := s.gen.Add(1) - 1 // invalidate ticks already delivered
	close(s.stop)
	done := s.done
	s.mu.Unlock()

	if s.inTick.Load() == cur {
		return
	}
	<-done
}

// Running reports whether the sampler is started.
func (s *Sampler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// SampleOnce performs a single tick on the calling goroutine, regardless of
// whether the sampler is started.
func (s *Sampler) SampleOnce() float64 {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()
	return s.sample(s.gen.Load())
}

// Ticks counts handler invocations.
func (s *Sampler) Ticks() uint64 {
	return s.ticks.Load()
}

// StaleTicks counts ticks dropped because they fired after Stop.
func (s *Sampler) StaleTicks() uint64 {
	return s.stale.Load()
}

func (s *Sampler) loop(gen uint64, ticker Ticker, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	defer ticker.Stop()

	s.tick(gen)

	for {
		select {
		case <-stop:
			return
		case <-ticker.C():
			s.tick(gen)
		}
	}
}

func (s *Sampler) tick(gen uint64) {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()

	if s.gen.Load() != gen {
		s.stale.Add(1)
		return
	}
	s.sample(gen)
}

// sample reads the clock exactly once and fans the value out. The caller
// holds tickMu.
func (s *Sampler) sample(gen uint64) float64 {
	elapsed := s.src.Seconds()
	s.signal.Publish(elapsed)
	s.ticks.Add(1)
	if s.handler != nil {
		s.inTick.Store(gen)
		defer s.inTick.Store(0)
		s.handler(elapsed)
	}
	return elapsed
}

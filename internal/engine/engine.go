package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/ivlev/cuesheet/internal/clock"
	"github.com/ivlev/cuesheet/internal/director"
	"github.com/ivlev/cuesheet/internal/phase"
	"github.com/ivlev/cuesheet/internal/reveal"
	"github.com/ivlev/cuesheet/internal/sampler"
	"github.com/ivlev/cuesheet/internal/schedule"
	"github.com/ivlev/cuesheet/internal/state"
)

// Options tune an Engine. The zero value is usable.
type Options struct {
	Period        time.Duration         // Sampling period, sampler.DefaultPeriod if zero
	RevealMode    reveal.Mode           // Stepped if empty
	Picker        schedule.Picker       // Palette draw, uniform random if nil
	TrackDuration float64               // Seconds; enters Complete once reached. 0 means unknown
	Ended         func() bool           // Reports the transport played to the end; enters Complete when true
	Logger        *slog.Logger          // slog.Default() if nil
	TickerFactory sampler.TickerFactory // time.NewTicker if nil
	Manual        bool                  // Never start the sampler; the caller drives ticks with Step
}

// Engine turns elapsed playback time into presentation state.
//
// Every tick reads the clock once and recomputes the desired state from
// scratch; the store only records values that changed.
type Engine struct {
	scenario *director.Scenario
	src      clock.Source
	store    *state.Store
	phases   *phase.Machine
	sampler  *sampler.Sampler
	palettes *schedule.PaletteCycle
	blocks   []block
	period   time.Duration
	manual   bool
	duration float64
	ended    func() bool
	session  string
	log      *slog.Logger

	detached   rate.Sometimes
	lastVisual string
	closeOnce  sync.Once
}

type block struct {
	reveal   director.Reveal
	animator *reveal.Animator
}

// Stats summarises a run.
type Stats struct {
	Session    string
	Ticks      uint64
	StaleTicks uint64
	Writes     uint64
	Elapsed    float64
	Phase      phase.Phase
}

// New validates the scenario and builds an idle engine reading src.
func New(scenario *director.Scenario, src clock.Source, opts Options) (*Engine, error) {
	if err := scenario.Validate(); err != nil {
		return nil, err
	}

	if opts.Period == 0 {
		opts.Period = sampler.DefaultPeriod
	}
	if opts.Period < 0 {
		return nil, sampler.ErrInvalidPeriod
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	session := uuid.NewString()
	e := &Engine{
		scenario: scenario,
		src:      src,
		store:    state.NewStore(scenario.Reveals),
		phases:   phase.NewMachine(),
		palettes: schedule.NewPaletteCycle(scenario.Palettes, opts.Picker),
		period:   opts.Period,
		manual:   opts.Manual,
		duration: opts.TrackDuration,
		ended:    opts.Ended,
		session:  session,
		log:      opts.Logger.With("component", "engine", "session", session),
		detached: rate.Sometimes{Interval: 5 * time.Second},
	}

	for _, r := range scenario.Reveals {
		e.blocks = append(e.blocks, block{reveal: r, animator: reveal.NewAnimator(opts.RevealMode)})
	}

	samplerOpts := []sampler.Option{}
	if opts.TickerFactory != nil {
		samplerOpts = append(samplerOpts, sampler.WithTickerFactory(opts.TickerFactory))
	}
	e.sampler = sampler.New(src, e.Tick, samplerOpts...)

	e.phases.OnEnter(phase.Active, func() {
		e.log.Info("presentation active", "period", e.period, "manual", e.manual, "cues", len(scenario.Schedule), "reveals", len(scenario.Reveals))
		if e.manual {
			return
		}
		if err := e.sampler.Start(e.period); err != nil {
			e.log.Error("sampler start failed", "err", err)
		}
	})
	e.phases.OnEnter(phase.Complete, func() {
		e.log.Info("presentation complete", "elapsed", e.sampler.Signal().Load())
	})

	return e, nil
}

// Session identifies this run in logs.
func (e *Engine) Session() string {
	return e.session
}

// Store is the writer handle for components allowed to mutate state, such
// as interaction handlers.
func (e *Engine) Store() *state.Store {
	return e.store
}

// View is the read-only state for renderers.
func (e *Engine) View() state.View {
	return e.store.View()
}

// Phase returns the current presentation phase.
func (e *Engine) Phase() phase.Phase {
	return e.phases.Current()
}

// Elapsed returns the last sampled elapsed time.
func (e *Engine) Elapsed() float64 {
	return e.sampler.Signal().Load()
}

// Begin enters the active phase and starts sampling.
func (e *Engine) Begin() error {
	if e.store.Closed() {
		return fmt.Errorf("%w: engine closed", phase.ErrInvalidTransition)
	}
	return e.phases.Begin()
}

// Step runs one tick on the calling goroutine. It is how offline renderers
// drive the engine from a manual clock instead of starting the sampler.
func (e *Engine) Step() float64 {
	return e.sampler.SampleOnce()
}

// Tick resolves all time-dependent state for one elapsed value and advances
// the reveal animation by one step.
func (e *Engine) Tick(elapsed float64) {
	if e.store.Closed() {
		return
	}
	e.Resolve(elapsed)
	e.Animate()
	e.checkComplete(elapsed)
}

// Resolve writes the visual, palette, visibility and reveal targets for
// elapsed. Calling it again with the same value writes nothing.
func (e *Engine) Resolve(elapsed float64) {
	if elapsed == 0 {
		if a, ok := e.src.(interface{ Attached() bool }); ok && !a.Attached() {
			e.detached.Do(func() {
				e.log.Debug("clock not attached yet")
			})
		}
	}

	if id, ok := schedule.Resolve(elapsed, e.scenario.Schedule); ok && id != e.lastVisual {
		e.lastVisual = id
		if e.store.SetVisual(id) {
			e.log.Info("visual", "id", id, "elapsed", elapsed)
		}
	}

	if palette, changed := e.palettes.Observe(elapsed); changed {
		if e.store.SetPalette(palette) {
			e.log.Debug("palette", "name", palette, "elapsed", elapsed)
		}
	}

	for _, b := range e.blocks {
		name := b.reveal.Name
		e.store.SetVisible(name, schedule.Visible(b.reveal.Trigger, elapsed))
		if b.reveal.Image != nil {
			e.store.SetImageVisible(name, schedule.Visible(b.reveal.Image.Trigger, elapsed))
		}
		if b.animator.Retarget(schedule.RevealTarget(b.reveal, elapsed)) {
			e.store.SetRevealed(name, b.animator.Displayed())
		}
	}
}

// Animate moves every unsettled reveal one character toward its target.
func (e *Engine) Animate() {
	for _, b := range e.blocks {
		if b.animator.Step() {
			e.store.SetRevealed(b.reveal.Name, b.animator.Displayed())
		}
	}
}

func (e *Engine) checkComplete(elapsed float64) {
	if e.phases.Current() != phase.Active {
		return
	}
	reached := e.duration > 0 && elapsed >= e.duration
	if !reached && (e.ended == nil || !e.ended()) {
		return
	}
	if err := e.phases.Complete(); err != nil {
		e.log.Warn("complete", "err", err)
	}
}

// Run begins the presentation and blocks until ctx ends, then tears down.
func (e *Engine) Run(ctx context.Context) error {
	if err := e.Begin(); err != nil {
		return err
	}
	<-ctx.Done()
	e.Close()
	return nil
}

// Close stops sampling and makes the store inert. Nothing is written after
// Close returns. Safe to call more than once.
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		e.sampler.Stop()
		e.store.Close()
		e.log.Info("engine closed", "ticks", e.sampler.Ticks(), "writes", e.store.Revision())
	})
}

// Stats reports counters for the run so far.
func (e *Engine) Stats() Stats {
	return Stats{
		Session:    e.session,
		Ticks:      e.sampler.Ticks(),
		StaleTicks: e.sampler.StaleTicks(),
		Writes:     e.store.Revision(),
		Elapsed:    e.sampler.Signal().Load(),
		Phase:      e.phases.Current(),
	}
}

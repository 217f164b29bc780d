// pkg/engine/runner.go
package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/opd-ai/go-walker/pkg/physics"
)

// Stepper is advanced by the runner in fixed steps. *physics.Engine and
// *Simulation implement it.
type Stepper interface {
	Update(dt float64)
	Config() physics.Config
}

// Clock supplies frame ticks to Runner.Run.
type Clock interface {
	Now() time.Time
	Tick() <-chan time.Time
	Stop()
}

// TickerClock ticks at a fixed wall-clock interval.
type TickerClock struct {
	ticker *time.Ticker
}

// NewTickerClock creates a clock ticking every interval.
func NewTickerClock(interval time.Duration) *TickerClock {
	return &TickerClock{ticker: time.NewTicker(interval)}
}

func (c *TickerClock) Now() time.Time         { return time.Now() }
func (c *TickerClock) Tick() <-chan time.Time { return c.ticker.C }
func (c *TickerClock) Stop()                  { c.ticker.Stop() }

// ManualClock only ticks when advanced, for tests and offline runs.
type ManualClock struct {
	mu    sync.Mutex
	now   time.Time
	ticks chan time.Time
}

// NewManualClock creates a clock starting at start. Up to buffer ticks may
// be queued before Advance blocks.
func NewManualClock(start time.Time, buffer int) *ManualClock {
	return &ManualClock{now: start, ticks: make(chan time.Time, buffer)}
}

// Now returns the clock's current time.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ManualClock) Tick() <-chan time.Time { return c.ticks }
func (c *ManualClock) Stop()                  {}

// Advance moves the clock forward by d and emits a tick.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	now := c.now
	c.mu.Unlock()
	c.ticks <- now
}

// ErrAlreadyRunning is returned by Run while another Run is active.
var ErrAlreadyRunning = errors.New("runner already running")

const (
	runnerIdle int32 = iota
	runnerRunning
	runnerStopping
)

// Runner converts variable frame times into fixed engine steps. Time that
// does not fill a whole step carries over to the next frame.
type Runner struct {
	stepper     Stepper
	accumulator float64
	state       atomic.Int32
	fps         atomic.Int64

	beforeFrame []func()
	afterFrame  []func(steps int)
}

// NewRunner creates a runner driving stepper.
func NewRunner(stepper Stepper) *Runner {
	return &Runner{stepper: stepper}
}

// OnBeforeFrame registers fn to run before each frame's steps.
func (r *Runner) OnBeforeFrame(fn func()) {
	r.beforeFrame = append(r.beforeFrame, fn)
}

// OnAfterFrame registers fn to run after each frame with the number of
// steps taken.
func (r *Runner) OnAfterFrame(fn func(steps int)) {
	r.afterFrame = append(r.afterFrame, fn)
}

// Advance adds elapsed wall time and runs as many whole steps as it covers.
// The owed time is clamped to the engine's TimeClamp first, so a long
// stall cannot trigger an unbounded catch-up. It returns the steps run.
func (r *Runner) Advance(elapsed time.Duration) int {
	cfg := r.stepper.Config()
	if elapsed > 0 {
		r.accumulator += elapsed.Seconds()
	}
	if r.accumulator > cfg.TimeClamp {
		r.accumulator = cfg.TimeClamp
	}

	steps := 0
	for r.accumulator >= cfg.Timestep {
		r.stepper.Update(cfg.Timestep * cfg.TimeScale)
		r.accumulator -= cfg.Timestep
		steps++
	}
	return steps
}

// Pending returns the carried-over time in seconds.
func (r *Runner) Pending() float64 { return r.accumulator }

// FPS returns the frame rate measured over the last frame.
func (r *Runner) FPS() int { return int(r.fps.Load()) }

// Running reports whether Run is active.
func (r *Runner) Running() bool { return r.state.Load() == runnerRunning }

// Frame runs one frame: the before hooks, Advance, then the after hooks.
func (r *Runner) Frame(elapsed time.Duration) int {
	if elapsed > 0 {
		r.fps.Store(int64(time.Second / elapsed))
	}
	for _, fn := range r.beforeFrame {
		fn()
	}
	steps := r.Advance(elapsed)
	for _, fn := range r.afterFrame {
		fn(steps)
	}
	return steps
}

// Run drives frames from clock until ctx is done or Stop is called. Stop
// takes effect after the in-flight frame. A Stop issued while no Run is
// active is held for the next Run, which then returns at once.
func (r *Runner) Run(ctx context.Context, clock Clock) error {
	defer clock.Stop()
	if r.state.CompareAndSwap(runnerStopping, runnerIdle) {
		return nil
	}
	if !r.state.CompareAndSwap(runnerIdle, runnerRunning) {
		return ErrAlreadyRunning
	}
	defer r.state.Store(runnerIdle)

	last := clock.Now()
	for r.state.Load() == runnerRunning {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-clock.Tick():
			r.Frame(now.Sub(last))
			last = now
		}
	}
	return nil
}

// Stop asks Run to return. It is safe to call from any goroutine.
func (r *Runner) Stop() {
	if !r.state.CompareAndSwap(runnerRunning, runnerStopping) {
		r.state.CompareAndSwap(runnerIdle, runnerStopping)
	}
}

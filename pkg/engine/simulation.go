// pkg/engine/simulation.go
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sony/gobreaker"

	"github.com/opd-ai/go-walker/pkg/event"
	"github.com/opd-ai/go-walker/pkg/logging"
	"github.com/opd-ai/go-walker/pkg/physics"
)

// Status is the simulation lifecycle state.
type Status int32

const (
	StatusIdle Status = iota
	StatusRunning
	StatusStopped
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusRunning:
		return "running"
	case StatusStopped:
		return "stopped"
	default:
		return fmt.Sprintf("Status(%d)", int32(s))
	}
}

// FrameHook runs after every physics step with the world and the tick that
// just completed. Hooks run with the simulation lock held and must not call
// back into State.
type FrameHook func(w *physics.World, tick uint64) error

// BreakerSettings configures the circuit breaker wrapped around each hook.
type BreakerSettings struct {
	MaxRequests         uint32
	Interval            time.Duration
	Timeout             time.Duration
	MaxConsecutiveFails uint32
}

// DefaultBreakerSettings trips a hook after five consecutive failures and
// retries it after ten seconds.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MaxRequests:         1,
		Interval:            time.Minute,
		Timeout:             10 * time.Second,
		MaxConsecutiveFails: 5,
	}
}

type hook struct {
	name    string
	fn      FrameHook
	breaker *gobreaker.CircuitBreaker
}

// Simulation owns a physics engine, its world and event bus, and the runner
// that paces it. It serialises stepping against snapshot reads from other
// goroutines.
type Simulation struct {
	mu sync.RWMutex

	Engine   *physics.Engine
	World    *physics.World
	Runner   *Runner
	EventBus *event.Bus

	// StopAfter stops the runner once this many ticks have run; 0 runs
	// until stopped.
	StopAfter uint64

	status      atomic.Int32
	currentTick atomic.Uint64
	startTime   time.Time

	hooks    []*hook
	settings BreakerSettings
	logger   *logging.Logger
	ctx      context.Context
}

// NewSimulation creates an idle simulation with an empty world.
func NewSimulation(cfg physics.Config, settings BreakerSettings, logger *logging.Logger) (*Simulation, error) {
	if logger == nil {
		logger = logging.NewLogger()
	}
	bus := event.NewEventBus()
	world := physics.NewWorld(bus)
	eng, err := physics.NewEngine(cfg, world)
	if err != nil {
		return nil, logging.WrapError(err, "creating simulation")
	}

	s := &Simulation{
		Engine:   eng,
		World:    world,
		EventBus: bus,
		settings: settings,
		logger:   logger,
		ctx:      context.Background(),
	}
	s.Runner = NewRunner(s)
	eng.OnAfterUpdate(s.afterStep)
	bus.Subscribe(event.JointBroken, s.logJointBroken)
	return s, nil
}

// AddHook registers fn under name, guarded by its own circuit breaker so a
// failing controller is skipped rather than stalling every step.
func (s *Simulation) AddHook(name string, fn FrameHook) {
	st := s.settings
	settings := gobreaker.Settings{
		Name:        "hook:" + name,
		MaxRequests: st.MaxRequests,
		Interval:    st.Interval,
		Timeout:     st.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= st.MaxConsecutiveFails
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			s.logger.Warn(s.ctx, "frame hook breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, &hook{name: name, fn: fn, breaker: gobreaker.NewCircuitBreaker(settings)})
}

// HookState returns the breaker state of the named hook.
func (s *Simulation) HookState(name string) (gobreaker.State, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, h := range s.hooks {
		if h.name == name {
			return h.breaker.State(), true
		}
	}
	return gobreaker.StateClosed, false
}

// Config returns the engine settings.
func (s *Simulation) Config() physics.Config {
	return s.Engine.Config()
}

// Update performs one locked physics step. The runner calls it.
func (s *Simulation) Update(dt float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Engine.Update(dt)
}

// Step runs n fixed steps immediately, bypassing the clock.
func (s *Simulation) Step(n int) {
	cfg := s.Config()
	for i := 0; i < n; i++ {
		s.Update(cfg.Timestep * cfg.TimeScale)
	}
}

// WithLock runs fn with exclusive access to the world, for setup and
// scene changes while the runner is active.
func (s *Simulation) WithLock(fn func(w *physics.World)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.World)
}

func (s *Simulation) afterStep() {
	tick := s.currentTick.Add(1)
	for _, h := range s.hooks {
		_, err := h.breaker.Execute(func() (interface{}, error) {
			return nil, h.fn(s.World, tick)
		})
		switch {
		case err == nil:
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			// Skipped while the breaker is open.
		default:
			s.logger.Error(s.ctx, "frame hook failed", err, "hook", h.name, "tick", tick)
		}
	}
	if s.StopAfter > 0 && tick >= s.StopAfter {
		s.Runner.Stop()
	}
}

func (s *Simulation) logJointBroken(e event.Event) {
	if je, ok := e.(*event.JointEvent); ok {
		s.logger.Debug(s.ctx, "joint broken", "joint", je.JointID, "length", je.Length)
	}
}

// Start marks the simulation running and publishes SimulationStarted.
func (s *Simulation) Start(ctx context.Context) {
	s.ctx = ctx
	s.startTime = time.Now()
	s.status.Store(int32(StatusRunning))
	s.logger.Info(ctx, "simulation started",
		"bodies", s.World.BodyCount(),
		"joints", s.World.JointCount(),
	)
	s.EventBus.Publish(event.NewSimulationEvent(event.SimulationStarted, s, s.CurrentTick()))
}

// Stop halts the runner and publishes SimulationStopped. Calling Stop on a
// simulation that is not running does nothing.
func (s *Simulation) Stop() {
	if s.Status() != StatusRunning {
		return
	}
	s.Runner.Stop()
	s.finish()
}

func (s *Simulation) finish() {
	if !s.status.CompareAndSwap(int32(StatusRunning), int32(StatusStopped)) {
		return
	}
	s.logger.Info(s.ctx, "simulation stopped",
		"ticks", s.CurrentTick(),
		"elapsed", time.Since(s.startTime).String(),
	)
	s.EventBus.Publish(event.NewSimulationEvent(event.SimulationStopped, s, s.CurrentTick()))
}

// Run starts the simulation and drives it from clock until ctx is done,
// Stop is called, or StopAfter ticks have run.
func (s *Simulation) Run(ctx context.Context, clock Clock) error {
	s.Start(ctx)
	defer s.finish()
	err := s.Runner.Run(ctx, clock)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Status returns the lifecycle state.
func (s *Simulation) Status() Status { return Status(s.status.Load()) }

// CurrentTick returns the number of completed steps.
func (s *Simulation) CurrentTick() uint64 { return s.currentTick.Load() }

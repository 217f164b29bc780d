package engine

import (
	"context"
	"errors"
	"io"
	"math"
	"testing"
	"time"

	"github.com/sony/gobreaker"

	"github.com/opd-ai/go-walker/pkg/event"
	"github.com/opd-ai/go-walker/pkg/logging"
	"github.com/opd-ai/go-walker/pkg/physics"
)

func newTestSimulation(t *testing.T, settings BreakerSettings) *Simulation {
	t.Helper()
	sim, err := NewSimulation(sixteenthConfig(), settings, logging.NewLoggerTo(io.Discard))
	if err != nil {
		t.Fatalf("NewSimulation() error = %v", err)
	}
	return sim
}

func TestNewSimulation_InvalidConfig(t *testing.T) {
	cfg := physics.DefaultConfig()
	cfg.Timestep = 0
	if _, err := NewSimulation(cfg, DefaultBreakerSettings(), logging.NewLoggerTo(io.Discard)); err == nil {
		t.Fatal("NewSimulation() error = nil, want error for zero timestep")
	}
}

func TestSimulation_StepRunsHooksWithTick(t *testing.T) {
	sim := newTestSimulation(t, DefaultBreakerSettings())
	var ticks []uint64
	sim.AddHook("record", func(w *physics.World, tick uint64) error {
		if w != sim.World {
			t.Error("hook received a different world")
		}
		ticks = append(ticks, tick)
		return nil
	})

	sim.Step(3)

	if got := sim.CurrentTick(); got != 3 {
		t.Errorf("CurrentTick() = %d, want 3", got)
	}
	if len(ticks) != 3 || ticks[0] != 1 || ticks[2] != 3 {
		t.Errorf("hook ticks = %v, want [1 2 3]", ticks)
	}
}

func TestSimulation_FailingHookTripsBreaker(t *testing.T) {
	settings := DefaultBreakerSettings()
	settings.MaxConsecutiveFails = 2
	settings.Timeout = time.Hour
	sim := newTestSimulation(t, settings)

	calls := 0
	sim.AddHook("broken", func(*physics.World, uint64) error {
		calls++
		return errors.New("controller exploded")
	})
	healthy := 0
	sim.AddHook("healthy", func(*physics.World, uint64) error {
		healthy++
		return nil
	})

	sim.Step(5)

	if calls != 2 {
		t.Errorf("failing hook called %d times, want 2 before the breaker opened", calls)
	}
	if healthy != 5 {
		t.Errorf("healthy hook called %d times, want 5", healthy)
	}
	state, ok := sim.HookState("broken")
	if !ok || state != gobreaker.StateOpen {
		t.Errorf("HookState(broken) = %v, %v; want open, true", state, ok)
	}
	if _, ok := sim.HookState("missing"); ok {
		t.Error("HookState(missing) found a hook")
	}
}

func TestSimulation_RunStopsAfterTicks(t *testing.T) {
	sim := newTestSimulation(t, DefaultBreakerSettings())
	sim.StopAfter = 2

	var seen []event.Type
	for _, typ := range []event.Type{event.SimulationStarted, event.SimulationStopped} {
		sim.EventBus.Subscribe(typ, func(e event.Event) { seen = append(seen, e.GetType()) })
	}

	clock := NewManualClock(time.Unix(0, 0), 1)
	done := make(chan error, 1)
	go func() { done <- sim.Run(context.Background(), clock) }()

	waitRunning(t, sim.Runner)
	clock.Advance(125 * time.Millisecond)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not stop after StopAfter ticks")
	}

	if got := sim.CurrentTick(); got != 2 {
		t.Errorf("CurrentTick() = %d, want 2", got)
	}
	if got := sim.Status(); got != StatusStopped {
		t.Errorf("Status() = %v, want stopped", got)
	}
	if len(seen) != 2 || seen[0] != event.SimulationStarted || seen[1] != event.SimulationStopped {
		t.Errorf("events = %v, want started then stopped", seen)
	}
}

func TestSimulation_StopWhenIdle(t *testing.T) {
	sim := newTestSimulation(t, DefaultBreakerSettings())
	stopped := 0
	sim.EventBus.Subscribe(event.SimulationStopped, func(event.Event) { stopped++ })

	sim.Stop()

	if sim.Status() != StatusIdle {
		t.Errorf("Status() = %v, want idle", sim.Status())
	}
	if stopped != 0 {
		t.Errorf("published %d stop events, want 0", stopped)
	}
}

func TestSimulation_StopDuringStartup(t *testing.T) {
	sim := newTestSimulation(t, DefaultBreakerSettings())
	stopped := 0
	sim.EventBus.Subscribe(event.SimulationStarted, func(event.Event) { sim.Stop() })
	sim.EventBus.Subscribe(event.SimulationStopped, func(event.Event) { stopped++ })

	clock := NewManualClock(time.Unix(0, 0), 1)
	clock.Advance(125 * time.Millisecond)
	done := make(chan error, 1)
	go func() { done <- sim.Run(context.Background(), clock) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() ignored a Stop issued before the runner started")
	}
	if sim.CurrentTick() != 0 || stopped != 1 || sim.Status() != StatusStopped {
		t.Errorf("tick=%d stopped=%d status=%v", sim.CurrentTick(), stopped, sim.Status())
	}
}

func TestSimulation_State(t *testing.T) {
	sim := newTestSimulation(t, DefaultBreakerSettings())
	opts := physics.DefaultBodyOptions()
	opts.Label = "box"
	box, err := physics.NewRectangle(50, 50, 20, 10, opts)
	if err != nil {
		t.Fatalf("NewRectangle() error = %v", err)
	}
	anchor := physics.Vec(50, 0)
	jo := physics.DefaultJointOptions(physics.JointSpring)
	jo.BodyA = box
	jo.PointB = &anchor
	spring, err := physics.NewJoint(jo)
	if err != nil {
		t.Fatalf("NewJoint() error = %v", err)
	}
	sim.WithLock(func(w *physics.World) {
		if err := w.Add(box, spring); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
	})

	st := sim.State()

	if len(st.Bodies) != 1 || len(st.Joints) != 1 {
		t.Fatalf("State() has %d bodies and %d joints, want 1 and 1", len(st.Bodies), len(st.Joints))
	}
	b := st.Bodies[0]
	if b.Label != "box" || b.ID != box.ID() || len(b.Vertices) != 4 {
		t.Errorf("body state = %+v", b)
	}
	if st.Joints[0].Type != physics.JointSpring || st.Joints[0].PointB != anchor {
		t.Errorf("joint state = %+v", st.Joints[0])
	}

	// The snapshot must not alias the body's vertices.
	st.Bodies[0].Vertices[0] = physics.Vec(-1, -1)
	if box.Vertex(0) == physics.Vec(-1, -1) {
		t.Error("State() vertices alias the body")
	}

	bounds, ok := st.Bounds()
	if !ok || bounds != box.AABB() {
		t.Errorf("Bounds() = %v, %v; want %v", bounds, ok, box.AABB())
	}
}

func TestSimulation_CheckFinite(t *testing.T) {
	sim := newTestSimulation(t, DefaultBreakerSettings())
	box, err := physics.NewRectangle(0, 0, 10, 10, physics.DefaultBodyOptions())
	if err != nil {
		t.Fatalf("NewRectangle() error = %v", err)
	}
	if err := sim.World.Add(box); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	if err := sim.CheckFinite(); err != nil {
		t.Fatalf("CheckFinite() error = %v", err)
	}

	box.SetVelocity(physics.Vec(math.Inf(1), 0))
	sim.Step(1)

	if err := sim.CheckFinite(); !errors.Is(err, physics.ErrNonFinite) {
		t.Errorf("CheckFinite() error = %v, want ErrNonFinite", err)
	}
}

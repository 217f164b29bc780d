// Package physics is a 2D rigid-body engine for convex polygons. Bodies move
// by position-delta Verlet integration, collide through SAT, exchange
// impulses with restitution and Coulomb friction, and are held together by
// iteratively relaxed spring and pivot joints.
package physics

import (
	"fmt"

	"github.com/opd-ai/go-walker/pkg/event"
	"github.com/opd-ai/go-walker/pkg/validation"
)

// Config holds the per-engine step settings.
type Config struct {
	// Timestep is the fixed step length in seconds.
	Timestep float64
	// TimeScale scales every step; 1 is real time.
	TimeScale float64
	// TimeClamp caps the time a runner may owe the engine in one frame.
	TimeClamp float64
	// JointIterations is the number of joint passes, run twice per step.
	JointIterations int
	// Gravity is an acceleration in world units per second squared.
	Gravity Vector2D
}

// DefaultConfig returns the standard step settings.
func DefaultConfig() Config {
	return Config{
		Timestep:        1.0 / 30,
		TimeScale:       1,
		TimeClamp:       0.2,
		JointIterations: 2,
		Gravity:         Vector2D{X: 0, Y: 300},
	}
}

// Validate checks that the settings can drive a simulation.
func (c Config) Validate() error {
	if err := validation.Positive("timestep", c.Timestep); err != nil {
		return err
	}
	if err := validation.NonNegative("time_scale", c.TimeScale); err != nil {
		return err
	}
	if err := validation.Positive("time_clamp", c.TimeClamp); err != nil {
		return err
	}
	if err := validation.MinCount("joint_iterations", c.JointIterations, 0); err != nil {
		return err
	}
	return validation.Finite("gravity", c.Gravity.X, c.Gravity.Y)
}

// InputProxy is updated at the start of every step, before gravity, so
// pointer-driven joints see the latest input.
type InputProxy interface {
	Update(w *World)
}

// Stats counts engine activity.
type Stats struct {
	Steps    uint64
	Pairs    int
	Contacts int
}

// Engine advances a World by fixed steps.
type Engine struct {
	config Config
	world  *World
	input  InputProxy

	beforeUpdate []func()
	afterUpdate  []func()

	contacts []Contact
	stats    Stats
}

// NewEngine creates an engine stepping world with cfg.
func NewEngine(cfg Config, world *World) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("engine config: %w", err)
	}
	if world == nil {
		world = NewWorld(nil)
	}
	return &Engine{config: cfg, world: world}, nil
}

// Config returns the engine settings.
func (e *Engine) Config() Config { return e.config }

// World returns the simulated world.
func (e *Engine) World() *World { return e.world }

// SetTimeScale changes the step scale; negative values are treated as 0.
func (e *Engine) SetTimeScale(scale float64) {
	if scale < 0 {
		scale = 0
	}
	e.config.TimeScale = scale
}

// SetInput installs the input proxy; nil removes it.
func (e *Engine) SetInput(input InputProxy) { e.input = input }

// OnBeforeUpdate registers fn to run at the start of every step.
func (e *Engine) OnBeforeUpdate(fn func()) {
	e.beforeUpdate = append(e.beforeUpdate, fn)
}

// OnAfterUpdate registers fn to run at the end of every step.
func (e *Engine) OnAfterUpdate(fn func()) {
	e.afterUpdate = append(e.afterUpdate, fn)
}

// Contacts returns the contacts resolved in the last step.
func (e *Engine) Contacts() []Contact {
	out := make([]Contact, len(e.contacts))
	copy(out, e.contacts)
	return out
}

// Stats returns the activity counters.
func (e *Engine) Stats() Stats { return e.stats }

// Update advances the world by one step of dt seconds: input, gravity,
// integration, joints, collision detection, position correction, joints
// again, then velocity resolution.
func (e *Engine) Update(dt float64) {
	for _, fn := range e.beforeUpdate {
		fn()
	}

	w := e.world
	timeScale := e.config.TimeScale
	if e.input != nil {
		e.input.Update(w)
	}

	bodies := w.Bodies()
	applyGravity(bodies, e.config.Gravity)
	for _, b := range bodies {
		b.integrate(dt, timeScale)
	}

	for i := 0; i < e.config.JointIterations; i++ {
		w.solveJoints(dt, timeScale)
	}

	pairs := Broadphase(bodies)
	e.contacts = e.contacts[:0]
	for _, p := range pairs {
		if c, ok := Collide(p.A, p.B); ok {
			e.contacts = append(e.contacts, c)
		}
	}

	for _, c := range e.contacts {
		correctPosition(c)
	}

	for i := 0; i < e.config.JointIterations; i++ {
		w.solveJoints(dt, timeScale)
	}

	for _, c := range e.contacts {
		resolveVelocity(c)
	}

	for _, c := range e.contacts {
		w.Events.Publish(event.NewCollisionEvent(e, c.A.id, c.B.id, c.Overlap))
	}

	e.stats.Steps++
	e.stats.Pairs = len(pairs)
	e.stats.Contacts = len(e.contacts)

	for _, fn := range e.afterUpdate {
		fn()
	}
}

// pkg/render/engo/system.go
package engo

import (
	"time"

	"github.com/EngoEngine/ecs"

	"github.com/opd-ai/go-walker/pkg/engine"
	"github.com/opd-ai/go-walker/pkg/input"
	"github.com/opd-ai/go-walker/pkg/physics"
	"github.com/opd-ai/go-walker/pkg/render"
)

// FollowFunc picks the world position the camera should track.
type FollowFunc func(st engine.State) (physics.Vector2D, bool)

// PhysicsSystem advances the simulation by engo's frame time and redraws
// the world from a fresh snapshot.
type PhysicsSystem struct {
	sim      *engine.Simulation
	renderer *EngoRenderer
	camera   *CameraSystem
	hud      *HUDSystem
	pointer  *input.Pointer
	follow   FollowFunc

	paused   bool
	stepOnce bool
	fitted   bool

	// done is called once the simulation reaches its tick limit.
	done func()
}

// NewPhysicsSystem wires the simulation to the renderer, camera and HUD.
// pointer may be nil.
func NewPhysicsSystem(sim *engine.Simulation, renderer *EngoRenderer, camera *CameraSystem, hud *HUDSystem, pointer *input.Pointer) *PhysicsSystem {
	return &PhysicsSystem{
		sim:      sim,
		renderer: renderer,
		camera:   camera,
		hud:      hud,
		pointer:  pointer,
	}
}

// Remove satisfies the ecs.System interface
func (ps *PhysicsSystem) Remove(basic ecs.BasicEntity) {}

// Update runs one frame.
func (ps *PhysicsSystem) Update(dt float32) {
	elapsed := time.Duration(float64(dt) * float64(time.Second))
	switch {
	case ps.stepOnce:
		ps.sim.Step(1)
		ps.stepOnce = false
	case !ps.paused:
		ps.sim.Runner.Frame(elapsed)
	}

	st := ps.sim.State()
	ps.draw(st)

	if limit := ps.sim.StopAfter; limit > 0 && st.Tick >= limit && ps.done != nil {
		ps.done()
		ps.done = nil
	}
}

func (ps *PhysicsSystem) draw(st engine.State) {
	if !ps.fitted {
		if box, ok := st.Bounds(); ok {
			ps.camera.Fit(box)
			ps.fitted = true
		}
	}
	if ps.follow != nil {
		if target, ok := ps.follow(st); ok {
			ps.camera.SetTarget(target)
		}
	}

	var hovered, grabbed uint64
	if ps.pointer != nil {
		if b := ps.pointer.Hovered(); b != nil {
			hovered = b.ID()
		}
		if j := ps.pointer.Grabbed(); j != nil && j.BodyA() != nil {
			grabbed = j.BodyA().ID()
		}
	}
	ps.renderer.Highlight(hovered, grabbed)
	render.Draw(ps.renderer, st)

	if ps.hud != nil {
		ps.hud.SetState(st, ps.sim.Runner.FPS(), ps.paused)
	}
}

// TogglePause pauses or resumes stepping. Drawing continues while paused.
func (ps *PhysicsSystem) TogglePause() {
	ps.paused = !ps.paused
}

// Paused reports whether stepping is paused.
func (ps *PhysicsSystem) Paused() bool { return ps.paused }

// StepOnce runs exactly one step on the next frame.
func (ps *PhysicsSystem) StepOnce() {
	ps.stepOnce = true
}

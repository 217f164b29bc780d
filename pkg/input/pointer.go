// Package input turns pointer events from a window into a pivot joint
// that drags whichever body the pointer grabbed.
package input

import (
	"sync"

	"github.com/opd-ai/go-walker/pkg/physics"
)

// Pointer records pointer motion and buttons from any goroutine and applies
// them to the world when the engine calls Update at the start of a step.
type Pointer struct {
	mu       sync.Mutex
	position physics.Vector2D
	down     bool
	pressed  bool

	// Owned by the stepping goroutine.
	positionPrev physics.Vector2D
	velocity     physics.Vector2D
	moving       bool
	dragged      bool
	hovered      *physics.Body
	joint        *physics.Joint

	// Joint is the template for grab joints; bodies and points are filled
	// in on each grab.
	Joint physics.JointOptions
}

// NewPointer returns a pointer whose grab joint is a stiff, damped pivot
// that does not twist the grabbed body.
func NewPointer() *Pointer {
	jo := physics.DefaultJointOptions(physics.JointPivot)
	jo.Stiffness = 1
	jo.AngularStiffness = 1
	jo.Damping = 0.1
	jo.Label = "pointer"
	return &Pointer{Joint: jo}
}

// Move sets the pointer position in world coordinates.
func (p *Pointer) Move(pos physics.Vector2D) {
	p.mu.Lock()
	p.position = pos
	p.mu.Unlock()
}

// Press records a button press.
func (p *Pointer) Press() {
	p.mu.Lock()
	if !p.down {
		p.pressed = true
	}
	p.down = true
	p.mu.Unlock()
}

// Release records a button release.
func (p *Pointer) Release() {
	p.mu.Lock()
	p.down = false
	p.mu.Unlock()
}

// Update implements physics.InputProxy. It tracks pointer motion, moves
// the grab anchor, finds the body under the pointer, and creates or drops
// the grab joint.
func (p *Pointer) Update(w *physics.World) {
	p.mu.Lock()
	pos, down, pressed := p.position, p.down, p.pressed
	p.pressed = false
	p.mu.Unlock()

	p.velocity = pos.Sub(p.positionPrev)
	p.moving = pos != p.positionPrev
	p.dragged = p.moving && down
	p.positionPrev = pos

	if p.joint != nil && !p.joint.InWorld() {
		p.joint = nil
	}
	if p.joint != nil {
		p.joint.SetPointB(pos)
	}

	p.hovered = nil
	for _, b := range w.Bodies() {
		if b.Contains(pos) {
			p.hovered = b
		}
	}

	switch {
	case !down && p.joint != nil:
		w.Remove(p.joint)
		p.joint = nil
	case pressed && down && p.joint == nil && p.hovered != nil && !p.hovered.IsStatic():
		p.grab(w, p.hovered, pos)
	}
}

func (p *Pointer) grab(w *physics.World, body *physics.Body, at physics.Vector2D) {
	jo := p.Joint
	jo.Type = physics.JointPivot
	jo.BodyA, jo.BodyB = body, nil
	pa, pb := at, at
	jo.PointA, jo.PointB = &pa, &pb
	j, err := physics.NewJoint(jo)
	if err != nil {
		return
	}
	if err := w.Add(j); err != nil {
		return
	}
	p.joint = j
}

// Position returns the position seen at the last Update.
func (p *Pointer) Position() physics.Vector2D { return p.positionPrev }

// Velocity returns the pointer movement over the last Update.
func (p *Pointer) Velocity() physics.Vector2D { return p.velocity }

// Dragged reports whether the pointer moved with the button held.
func (p *Pointer) Dragged() bool { return p.dragged }

// Hovered returns the topmost body under the pointer, or nil.
func (p *Pointer) Hovered() *physics.Body { return p.hovered }

// Grabbed returns the joint holding the dragged body, or nil.
func (p *Pointer) Grabbed() *physics.Joint { return p.joint }

// pkg/physics/solver.go
package physics

import (
	"math"

	"github.com/opd-ai/go-walker/pkg/event"
)

// solveJoints runs one pass over a snapshot of the world's joints. Joints
// that break during the pass are removed without disturbing the others.
func (w *World) solveJoints(dt, timeScale float64) {
	for _, h := range append([]JointHandle(nil), w.jointOrder...) {
		j := w.Joint(h)
		if j == nil {
			continue
		}
		w.solveJoint(j, dt, timeScale)
	}
}

// updatePoints carries each anchor along with its body's motion since the
// last sync.
func (j *Joint) updatePoints(a, b *Body) {
	if a != nil {
		j.pointA = j.pointA.Add(a.position.Sub(j.posA)).RotateAbout(a.angle-j.angleA, a.position)
	}
	if b != nil {
		j.pointB = j.pointB.Add(b.position.Sub(j.posB)).RotateAbout(b.angle-j.angleB, b.position)
	}
	j.syncPose(a, b)
}

func (w *World) solveJoint(j *Joint, dt, timeScale float64) {
	a, b := w.Body(j.bodyA), w.Body(j.bodyB)
	if a == nil && b == nil {
		return
	}
	j.updatePoints(a, b)

	delta := j.pointA.Sub(j.pointB)
	current := math.Max(delta.Length(), minJointLength)

	if j.MaxLength > 0 && current > j.MaxLength {
		w.removeJoint(j, event.JointBroken)
		return
	}

	stiffness := j.Stiffness
	if stiffness < 1 {
		stiffness *= timeScale
	}
	force := delta.Scale((current - j.length) / current * stiffness)

	var invMass, invInertia float64
	for _, body := range []*Body{a, b} {
		if body != nil {
			invMass += body.invMass
			invInertia += body.invInertia
		}
	}
	if invMass < epsilon {
		return
	}
	resistance := invMass + invInertia

	var normal Vector2D
	var normalVelocity float64
	if j.Damping != 0 {
		normal = delta.Unit()
		var va, vb Vector2D
		if a != nil {
			va = a.Velocity()
		}
		if b != nil {
			vb = b.Velocity()
		}
		normalVelocity = normal.Dot(vb.Sub(va))
	}

	if a != nil && !a.static {
		share := a.invMass / invMass
		a.SetPosition(a.position.Sub(force.Scale(share*dt)), true)
		if j.Damping != 0 {
			a.positionPrev = a.positionPrev.Sub(normal.Scale(j.Damping * normalVelocity * share))
		}
		torque := j.pointA.Sub(a.position).Cross(force) / resistance * a.invInertia * (1 - j.AngularStiffness) * dt
		a.SetAngle(a.angle-torque, true)
	}

	if b != nil && !b.static {
		share := b.invMass / invMass
		b.SetPosition(b.position.Add(force.Scale(share*dt)), true)
		if j.Damping != 0 {
			b.positionPrev = b.positionPrev.Add(normal.Scale(j.Damping * normalVelocity * share))
		}
		torque := j.pointB.Sub(b.position).Cross(force) / resistance * b.invInertia * (1 - j.AngularStiffness) * dt
		b.SetAngle(b.angle+torque, true)
	}
}

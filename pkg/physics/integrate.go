// pkg/physics/integrate.go
package physics

// applyGravity adds the weight of every dynamic body to its force
// accumulator.
func applyGravity(bodies []*Body, gravity Vector2D) {
	for _, b := range bodies {
		if b.static {
			continue
		}
		b.force = b.force.Add(gravity.Scale(b.mass * b.GravityScale))
	}
}

// integrate advances a dynamic body by one Verlet step of length dt and
// clears its accumulators.
func (b *Body) integrate(dt, timeScale float64) {
	if b.static {
		return
	}
	dtSq := dt * dt
	decay := (1 - b.AirFriction) * timeScale

	velocity := b.position.Sub(b.positionPrev).Scale(decay).Add(b.force.Scale(dtSq * b.invMass))
	b.positionPrev = b.position
	b.position = b.position.Add(velocity)

	angularVelocity := (b.angle-b.anglePrev)*decay + b.torque*b.invInertia*dtSq
	b.anglePrev = b.angle
	b.angle += angularVelocity

	b.force = Vector2D{}
	b.torque = 0

	for i := range b.vertices {
		b.vertices[i] = b.vertices[i].Add(velocity).RotateAbout(angularVelocity, b.position)
	}
	b.aabb = boundsOf(b.vertices)
}

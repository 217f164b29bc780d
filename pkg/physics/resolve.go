// pkg/physics/resolve.go
package physics

import "math"

// correctPosition pushes the bodies apart along the contact normal by the
// overlap beyond the averaged slop, split by inverse mass. Velocities are
// left unchanged.
func correctPosition(c Contact) {
	a, b := c.A, c.B
	invSum := a.invMass + b.invMass
	if invSum < epsilon {
		return
	}
	slop := (a.Slop + b.Slop) / 2
	resolve := (a.PositionResolve + b.PositionResolve) / 2
	k := math.Max(c.Overlap-slop, 0) * resolve / invSum
	if k == 0 {
		return
	}
	push := c.Normal.Scale(k)
	if a.invMass > 0 {
		a.SetPosition(a.position.Sub(push.Scale(a.invMass)), false)
	}
	if b.invMass > 0 {
		b.SetPosition(b.position.Add(push.Scale(b.invMass)), false)
	}
}

// effectiveMass returns the inverse effective mass of the pair along dir at
// the contact offsets rA and rB.
func effectiveMass(a, b *Body, rA, rB, dir Vector2D) float64 {
	ca, cb := rA.Cross(dir), rB.Cross(dir)
	return a.invMass + b.invMass + ca*ca*a.invInertia + cb*cb*b.invInertia
}

// applyImpulse adds J to B and subtracts it from A at the contact offsets.
func applyImpulse(a, b *Body, rA, rB, impulse Vector2D) {
	if !a.static {
		a.SetVelocity(a.Velocity().Sub(impulse.Scale(a.invMass)))
		a.SetAngularVelocity(a.AngularVelocity() - rA.Cross(impulse)*a.invInertia)
	}
	if !b.static {
		b.SetVelocity(b.Velocity().Add(impulse.Scale(b.invMass)))
		b.SetAngularVelocity(b.AngularVelocity() + rB.Cross(impulse)*b.invInertia)
	}
}

// resolveVelocity applies a restitution impulse along the normal and a
// Coulomb-clamped friction impulse along the tangent. Separating contacts
// are left alone.
func resolveVelocity(c Contact) {
	a, b := c.A, c.B
	n := c.Normal
	rA := c.Point.Sub(a.position)
	rB := c.Point.Sub(b.position)

	rv := b.pointVelocity(c.Point).Sub(a.pointVelocity(c.Point))
	vn := n.Dot(rv)
	if vn >= 0 {
		return
	}

	denom := effectiveMass(a, b, rA, rB, n)
	if denom < epsilon {
		return
	}
	e := math.Min(a.Restitution, b.Restitution)
	j := -(1 + e) * vn / denom
	applyImpulse(a, b, rA, rB, n.Scale(j))

	rv = b.pointVelocity(c.Point).Sub(a.pointVelocity(c.Point))
	tangent := rv.Sub(n.Scale(rv.Dot(n)))
	if tangent.LengthSquared() < epsilon*epsilon {
		return
	}
	t := tangent.Unit()
	denom = effectiveMass(a, b, rA, rB, t)
	if denom < epsilon {
		return
	}
	jt := -rv.Dot(t) / denom

	mu := (a.Friction + b.Friction) / 2
	limit := mu * j
	jt = math.Max(-limit, math.Min(jt, limit))
	applyImpulse(a, b, rA, rB, t.Scale(jt))
}

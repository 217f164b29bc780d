// pkg/physics/sat.go
package physics

import "math"

// Contact describes one colliding pair for the current step.
type Contact struct {
	A *Body
	B *Body
	// Overlap is the penetration depth along Normal.
	Overlap float64
	// Normal is a unit vector pointing from A into B.
	Normal Vector2D
	Point  Vector2D
}

type projection struct {
	min   float64
	max   float64
	minAt Vector2D
}

// project returns the extent of vertices along axis. minAt is the first
// vertex reaching the minimum.
func project(vertices []Vector2D, axis Vector2D) projection {
	p := projection{min: math.Inf(1), max: math.Inf(-1)}
	for _, v := range vertices {
		d := axis.Dot(v)
		if d < p.min {
			p.min = d
			p.minAt = v
		}
		p.max = math.Max(p.max, d)
	}
	return p
}

// Collide runs the separating axis test on two convex bodies. It reports
// false as soon as a separating edge normal is found.
func Collide(a, b *Body) (Contact, bool) {
	minOverlap := math.Inf(1)
	var axis Vector2D
	var incident *Body

	for pass := 0; pass < 2; pass++ {
		ref, other := a, b
		if pass == 1 {
			ref, other = b, a
		}
		n := len(ref.vertices)
		for i := 0; i < n; i++ {
			edge := ref.vertices[(i+1)%n].Sub(ref.vertices[i])
			candidate := edge.Perp().Unit()

			p1 := project(ref.vertices, candidate)
			p2 := project(other.vertices, candidate)
			if !(p2.max >= p1.min && p1.max >= p2.min) {
				return Contact{}, false
			}

			overlap := math.Min(p1.max, p2.max) - math.Max(p1.min, p2.min)

			// One projection inside the other: push out through the nearer end.
			if (p1.min > p2.min && p1.max < p2.max) || (p1.min < p2.min && p1.max > p2.max) {
				mins := math.Abs(p1.min - p2.min)
				maxs := math.Abs(p1.max - p2.max)
				if mins < maxs {
					overlap += mins
				} else {
					overlap += maxs
					candidate = candidate.Neg()
				}
			}

			if overlap < minOverlap {
				if p1.max > p2.max {
					candidate = candidate.Neg()
				}
				minOverlap = overlap
				axis = candidate
				incident = other
			}
		}
	}

	point := project(incident.vertices, axis).minAt.Add(axis.Scale(minOverlap))

	// axis points from the reference body towards the incident one.
	normal := axis
	if incident == a {
		normal = axis.Neg()
	}

	return Contact{
		A:       a,
		B:       b,
		Overlap: minOverlap,
		Normal:  normal,
		Point:   point,
	}, true
}

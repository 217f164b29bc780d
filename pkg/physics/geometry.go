package physics

import (
	"math"
)

// rectangleVertices returns the corners of a width×height box centred on
// centre, clockwise in screen space (y down), starting top-left.
func rectangleVertices(centre Vector2D, width, height float64) []Vector2D {
	w, h := width/2, height/2
	return []Vector2D{
		{X: centre.X - w, Y: centre.Y - h},
		{X: centre.X + w, Y: centre.Y - h},
		{X: centre.X + w, Y: centre.Y + h},
		{X: centre.X - w, Y: centre.Y + h},
	}
}

// regularVertices places n vertices on a circle of radius r, starting at
// angle 0 and stepping by 2π/n.
func regularVertices(centre Vector2D, r float64, n int) []Vector2D {
	vertices := make([]Vector2D, n)
	step := 2 * math.Pi / float64(n)
	for i := range vertices {
		a := float64(i) * step
		vertices[i] = Vector2D{X: centre.X + r*math.Cos(a), Y: centre.Y + r*math.Sin(a)}
	}
	return vertices
}

// signedArea is positive for clockwise screen-space winding.
func signedArea(vertices []Vector2D) float64 {
	area := 0.0
	for i, v := range vertices {
		area += v.Cross(vertices[(i+1)%len(vertices)])
	}
	return area / 2
}

// polygonArea returns the unsigned area of a simple polygon.
func polygonArea(vertices []Vector2D) float64 {
	return math.Abs(signedArea(vertices))
}

// centroid returns the area centroid of a simple polygon. A degenerate
// (zero-area) polygon falls back to the vertex mean.
func centroid(vertices []Vector2D) Vector2D {
	area := signedArea(vertices)
	if math.Abs(area) < epsilon {
		var sum Vector2D
		for _, v := range vertices {
			sum = sum.Add(v)
		}
		return sum.Scale(1 / float64(len(vertices)))
	}

	var c Vector2D
	for i, v := range vertices {
		next := vertices[(i+1)%len(vertices)]
		c = c.Add(v.Add(next).Scale(v.Cross(next)))
	}
	return c.Scale(1 / (6 * area))
}

// polygonInertia returns the second moment of a uniform polygon of the given
// mass about centre.
func polygonInertia(vertices []Vector2D, centre Vector2D, mass float64) float64 {
	numerator, denominator := 0.0, 0.0
	for i := range vertices {
		vn := vertices[i].Sub(centre)
		vj := vertices[(i+1)%len(vertices)].Sub(centre)
		cross := math.Abs(vj.Cross(vn))
		numerator += cross * (vj.Dot(vj) + vj.Dot(vn) + vn.Dot(vn))
		denominator += cross
	}
	if denominator == 0 {
		return 0
	}
	return (mass / 6) * (numerator / denominator)
}

// isConvex reports whether every turn along the vertex loop has the same
// sign. Collinear runs are tolerated.
func isConvex(vertices []Vector2D) bool {
	sign := 0.0
	n := len(vertices)
	for i := 0; i < n; i++ {
		a, b, c := vertices[i], vertices[(i+1)%n], vertices[(i+2)%n]
		turn := b.Sub(a).Cross(c.Sub(b))
		if math.Abs(turn) < epsilon {
			continue
		}
		if sign == 0 {
			sign = turn
		} else if sign*turn < 0 {
			return false
		}
	}
	return sign != 0
}

// pointInPolygon reports whether p lies inside the convex polygon, using
// the same side test for every edge. Works for either winding.
func pointInPolygon(p Vector2D, vertices []Vector2D) bool {
	side := 0.0
	for i, v := range vertices {
		next := vertices[(i+1)%len(vertices)]
		d := next.Sub(v).Cross(p.Sub(v))
		if d == 0 {
			continue
		}
		if side == 0 {
			side = d
		} else if side*d < 0 {
			return false
		}
	}
	return true
}

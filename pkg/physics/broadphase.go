// pkg/physics/broadphase.go
package physics

// Pair is a candidate body pair from the broadphase, A before B in world
// insertion order.
type Pair struct {
	A *Body
	B *Body
}

// CanCollide applies the collision rules that do not depend on geometry:
// at least one dynamic body, a shared layer and no shared filter.
func CanCollide(a, b *Body) bool {
	if a.static && b.static {
		return false
	}
	if !sharesGroup(a.Layers, b.Layers) {
		return false
	}
	return !sharesGroup(a.Filters, b.Filters)
}

// Broadphase returns every unordered pair, in insertion order, whose AABBs
// overlap and which CanCollide.
func Broadphase(bodies []*Body) []Pair {
	var pairs []Pair
	for i, a := range bodies {
		for _, b := range bodies[i+1:] {
			if !a.aabb.Overlaps(b.aabb) || !CanCollide(a, b) {
				continue
			}
			pairs = append(pairs, Pair{A: a, B: b})
		}
	}
	return pairs
}

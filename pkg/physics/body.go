// pkg/physics/body.go
package physics

import (
	"fmt"

	"github.com/opd-ai/go-walker/pkg/validation"
)

// Group identifies a collision layer or filter. Bodies collide only when
// they share at least one layer and no filter.
type Group uint64

// BodyOptions configures a new body. Start from DefaultBodyOptions and
// override fields.
type BodyOptions struct {
	Angle           float64
	Density         float64
	Friction        float64
	Restitution     float64
	AirFriction     float64
	GravityScale    float64
	Slop            float64
	PositionResolve float64
	Static          bool
	Layers          []Group
	Filters         []Group
	// Edges is the vertex count used by NewCircle; 0 or less uses
	// DefaultCircleEdges.
	Edges int
	Label string
}

// DefaultCircleEdges is the vertex count of circles built without an
// explicit edge count.
const DefaultCircleEdges = 20

// DefaultBodyOptions returns the standard material and collision settings.
func DefaultBodyOptions() BodyOptions {
	return BodyOptions{
		Density:         0.0001,
		Friction:        0.2,
		Restitution:     0.3,
		GravityScale:    1,
		Slop:            1,
		PositionResolve: 0.1,
		Layers:          []Group{0},
		Edges:           DefaultCircleEdges,
	}
}

func (o BodyOptions) validate() error {
	if err := validation.Finite("angle", o.Angle); err != nil {
		return err
	}
	if err := validation.Positive("density", o.Density); err != nil {
		return err
	}
	checks := []struct {
		field string
		value float64
	}{
		{"friction", o.Friction},
		{"restitution", o.Restitution},
		{"slop", o.Slop},
		{"position_resolve", o.PositionResolve},
	}
	for _, c := range checks {
		if err := validation.NonNegative(c.field, c.value); err != nil {
			return err
		}
	}
	if err := validation.InRange("air_friction", o.AirFriction, 0, 1); err != nil {
		return err
	}
	return validation.Finite("gravity_scale", o.GravityScale)
}

// Body is a convex rigid polygon. Position is the centroid; velocity is
// implied by the difference between the current and previous pose, so all
// kinematic changes go through the setters.
type Body struct {
	id     uint64
	handle BodyHandle
	world  *World

	vertices     []Vector2D
	position     Vector2D
	positionPrev Vector2D
	angle        float64
	anglePrev    float64
	force        Vector2D
	torque       float64
	aabb         AABB

	area       float64
	density    float64
	mass       float64
	invMass    float64
	inertia    float64
	invInertia float64
	static     bool

	Friction        float64
	Restitution     float64
	AirFriction     float64
	GravityScale    float64
	Slop            float64
	PositionResolve float64
	Layers          []Group
	Filters         []Group
	Label           string
}

// NewRectangle creates a width×height box centred on (x, y).
func NewRectangle(x, y, width, height float64, opts BodyOptions) (*Body, error) {
	if err := validation.Finite("rectangle", x, y, width, height); err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("rectangle %vx%v: %w", width, height, ErrInvalidGeometry)
	}
	centre := Vec(x, y)
	return newBody(rectangleVertices(centre, width, height), centre, opts)
}

// NewCircle approximates a circle of radius r with opts.Edges vertices.
func NewCircle(x, y, r float64, opts BodyOptions) (*Body, error) {
	edges := opts.Edges
	if edges <= 0 {
		edges = DefaultCircleEdges
	}
	return NewPolygon(x, y, r, edges, opts)
}

// NewPolygon creates a regular polygon with the given number of sides.
func NewPolygon(x, y, r float64, sides int, opts BodyOptions) (*Body, error) {
	if err := validation.Finite("polygon", x, y, r); err != nil {
		return nil, err
	}
	if r <= 0 || sides < 3 {
		return nil, fmt.Errorf("polygon radius %v with %d sides: %w", r, sides, ErrInvalidGeometry)
	}
	centre := Vec(x, y)
	return newBody(regularVertices(centre, r, sides), centre, opts)
}

// NewFromVertices creates a body from a convex vertex loop given in world
// space. The position becomes the polygon's centroid.
func NewFromVertices(vertices []Vector2D, opts BodyOptions) (*Body, error) {
	if len(vertices) < 3 {
		return nil, fmt.Errorf("%d vertices: %w", len(vertices), ErrInvalidGeometry)
	}
	for i, v := range vertices {
		if !v.IsFinite() {
			return nil, fmt.Errorf("vertex %d: %w", i, ErrNonFinite)
		}
	}
	owned := make([]Vector2D, len(vertices))
	copy(owned, vertices)
	return newBody(owned, centroid(owned), opts)
}

func newBody(vertices []Vector2D, position Vector2D, opts BodyOptions) (*Body, error) {
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("body options: %w", err)
	}
	if len(vertices) < 3 {
		return nil, fmt.Errorf("%d vertices: %w", len(vertices), ErrInvalidGeometry)
	}
	area := polygonArea(vertices)
	if area < epsilon {
		return nil, fmt.Errorf("zero area: %w", ErrInvalidGeometry)
	}
	if !isConvex(vertices) {
		return nil, fmt.Errorf("concave outline: %w", ErrInvalidGeometry)
	}

	b := &Body{
		vertices:        vertices,
		position:        position,
		positionPrev:    position,
		area:            area,
		density:         opts.Density,
		mass:            area * opts.Density,
		Friction:        opts.Friction,
		Restitution:     opts.Restitution,
		AirFriction:     opts.AirFriction,
		GravityScale:    opts.GravityScale,
		Slop:            opts.Slop,
		PositionResolve: opts.PositionResolve,
		Layers:          append([]Group(nil), opts.Layers...),
		Filters:         append([]Group(nil), opts.Filters...),
		Label:           opts.Label,
	}
	b.inertia = polygonInertia(vertices, position, b.mass)
	b.setStatic(opts.Static)
	if opts.Angle != 0 {
		b.SetAngle(opts.Angle, false)
	}
	b.aabb = boundsOf(b.vertices)
	return b, nil
}

// ID returns the world-assigned identifier, or 0 before the body is added.
func (b *Body) ID() uint64 { return b.id }

// Handle returns the body's arena handle; the zero handle before Add.
func (b *Body) Handle() BodyHandle { return b.handle }

// InWorld reports whether the body is currently part of a world.
func (b *Body) InWorld() bool { return b.world != nil }

// Vertices returns a copy of the world-space outline.
func (b *Body) Vertices() []Vector2D {
	out := make([]Vector2D, len(b.vertices))
	copy(out, b.vertices)
	return out
}

// Vertex returns vertex i of the outline, wrapping around.
func (b *Body) Vertex(i int) Vector2D {
	n := len(b.vertices)
	return b.vertices[((i%n)+n)%n]
}

// NumVertices returns the outline length.
func (b *Body) NumVertices() int { return len(b.vertices) }

// Position returns the centroid in world space.
func (b *Body) Position() Vector2D { return b.position }

// Angle returns the accumulated rotation in radians.
func (b *Body) Angle() float64 { return b.angle }

// AABB returns the bounding box of the current outline.
func (b *Body) AABB() AABB { return b.aabb }

// Mass returns area × density, regardless of the static flag.
func (b *Body) Mass() float64 { return b.mass }

// InvMass returns 0 for static bodies.
func (b *Body) InvMass() float64 { return b.invMass }

// Inertia returns the moment of inertia about the centroid.
func (b *Body) Inertia() float64 { return b.inertia }

// InvInertia returns 0 for static bodies.
func (b *Body) InvInertia() float64 { return b.invInertia }

func (b *Body) Density() float64 { return b.density }

func (b *Body) Area() float64 { return b.area }

func (b *Body) IsStatic() bool { return b.static }

// Force returns the force accumulated since the last step.
func (b *Body) Force() Vector2D { return b.force }

// Torque returns the torque accumulated since the last step.
func (b *Body) Torque() float64 { return b.torque }

// Velocity returns the displacement over the last step.
func (b *Body) Velocity() Vector2D {
	return b.position.Sub(b.positionPrev)
}

// AngularVelocity returns the rotation over the last step.
func (b *Body) AngularVelocity() float64 {
	return b.angle - b.anglePrev
}

// SetVelocity rewrites the previous position so the next step moves the
// body by v.
func (b *Body) SetVelocity(v Vector2D) {
	b.positionPrev = b.position.Sub(v)
}

// SetAngularVelocity rewrites the previous angle so the next step rotates
// the body by av.
func (b *Body) SetAngularVelocity(av float64) {
	b.anglePrev = b.angle - av
}

// SetPosition moves the body and its vertices to p. With changeVelocity
// false the current velocity is preserved; otherwise the move itself
// becomes part of the velocity.
func (b *Body) SetPosition(p Vector2D, changeVelocity bool) {
	delta := p.Sub(b.position)
	for i := range b.vertices {
		b.vertices[i] = b.vertices[i].Add(delta)
	}
	b.position = p
	if !changeVelocity {
		b.positionPrev = b.positionPrev.Add(delta)
	}
	b.aabb = boundsOf(b.vertices)
}

// SetAngle rotates the body about its position to angle. changeVelocity
// has the same meaning as for SetPosition.
func (b *Body) SetAngle(angle float64, changeVelocity bool) {
	delta := angle - b.angle
	for i := range b.vertices {
		b.vertices[i] = b.vertices[i].RotateAbout(delta, b.position)
	}
	b.angle = angle
	if !changeVelocity {
		b.anglePrev += delta
	}
	b.aabb = boundsOf(b.vertices)
}

// SetStatic pins or releases the body. A pinned body loses its velocity.
func (b *Body) SetStatic(static bool) {
	b.setStatic(static)
	if static {
		b.positionPrev = b.position
		b.anglePrev = b.angle
	}
}

func (b *Body) setStatic(static bool) {
	b.static = static
	if static {
		b.invMass, b.invInertia = 0, 0
		return
	}
	b.invMass = 1 / b.mass
	b.invInertia = 0
	if b.inertia > 0 {
		b.invInertia = 1 / b.inertia
	}
}

// ApplyForce adds f at the centroid for the next step.
func (b *Body) ApplyForce(f Vector2D) {
	b.force = b.force.Add(f)
}

// ApplyForceAt adds f acting at the world point p, producing torque.
func (b *Body) ApplyForceAt(f, p Vector2D) {
	b.force = b.force.Add(f)
	b.torque += p.Sub(b.position).Cross(f)
}

// Contains reports whether the world point p lies inside the outline.
func (b *Body) Contains(p Vector2D) bool {
	return b.aabb.Contains(p) && pointInPolygon(p, b.vertices)
}

// pointVelocity is the implicit velocity of the world point p on the body.
func (b *Body) pointVelocity(p Vector2D) Vector2D {
	return b.Velocity().Add(CrossSV(b.AngularVelocity(), p.Sub(b.position)))
}

func sharesGroup(a, b []Group) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

func (b *Body) String() string {
	if b.Label != "" {
		return fmt.Sprintf("body(%d %s)", b.id, b.Label)
	}
	return fmt.Sprintf("body(%d)", b.id)
}

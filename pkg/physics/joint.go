// pkg/physics/joint.go
package physics

import (
	"fmt"

	"github.com/opd-ai/go-walker/pkg/validation"
)

// JointType selects the constraint behaviour.
type JointType int

const (
	// JointSpring holds its anchors at a rest length, softly by default.
	JointSpring JointType = iota
	// JointPivot pins its anchors together.
	JointPivot
)

func (t JointType) String() string {
	switch t {
	case JointSpring:
		return "spring"
	case JointPivot:
		return "pivot"
	default:
		return fmt.Sprintf("JointType(%d)", int(t))
	}
}

// JointOptions configures a new joint. A nil body makes that side a fixed
// world anchor, which then requires its point.
type JointOptions struct {
	Type  JointType
	BodyA *Body
	BodyB *Body
	// PointA and PointB are world-space anchors. nil means the body's
	// position.
	PointA *Vector2D
	PointB *Vector2D
	// Length is the rest length for springs; 0 uses the initial anchor
	// distance. Pivots always rest at 0.
	Length           float64
	Stiffness        float64
	Damping          float64
	AngularStiffness float64
	// MaxLength breaks the joint once exceeded; 0 never breaks.
	MaxLength float64
	Label     string
}

// DefaultJointOptions returns the settings for a joint of type t.
func DefaultJointOptions(t JointType) JointOptions {
	opts := JointOptions{Type: t, Stiffness: 0.3}
	if t == JointPivot {
		opts.Stiffness = 2
	}
	return opts
}

// Joint is a distance constraint between two anchors. Anchors on bodies
// follow their body's motion.
type Joint struct {
	id     uint64
	handle JointHandle
	world  *World

	kind JointType

	pendingA *Body
	pendingB *Body
	bodyA    BodyHandle
	bodyB    BodyHandle

	pointA Vector2D
	pointB Vector2D
	// Body poses the anchors were last synchronised with.
	posA   Vector2D
	posB   Vector2D
	angleA float64
	angleB float64

	length float64

	Stiffness        float64
	Damping          float64
	AngularStiffness float64
	MaxLength        float64
	Label            string
}

// NewJoint validates opts and creates a joint. It becomes active once added
// to the world holding its bodies.
func NewJoint(opts JointOptions) (*Joint, error) {
	if opts.BodyA == nil && opts.BodyB == nil {
		return nil, ErrUnattachedJoint
	}
	pointA, err := anchor("a", opts.BodyA, opts.PointA)
	if err != nil {
		return nil, err
	}
	pointB, err := anchor("b", opts.BodyB, opts.PointB)
	if err != nil {
		return nil, err
	}
	for _, c := range []struct {
		field string
		value float64
	}{
		{"length", opts.Length},
		{"stiffness", opts.Stiffness},
		{"damping", opts.Damping},
		{"angular_stiffness", opts.AngularStiffness},
		{"max_length", opts.MaxLength},
	} {
		if err := validation.NonNegative(c.field, c.value); err != nil {
			return nil, fmt.Errorf("joint options: %w", err)
		}
	}

	j := &Joint{
		kind:             opts.Type,
		pendingA:         opts.BodyA,
		pendingB:         opts.BodyB,
		pointA:           pointA,
		pointB:           pointB,
		Stiffness:        opts.Stiffness,
		Damping:          opts.Damping,
		AngularStiffness: opts.AngularStiffness,
		MaxLength:        opts.MaxLength,
		Label:            opts.Label,
	}
	switch {
	case opts.Type == JointPivot:
		j.length = 0
	case opts.Length > 0:
		j.length = opts.Length
	default:
		j.length = pointA.Distance(pointB)
	}
	return j, nil
}

func anchor(side string, body *Body, point *Vector2D) (Vector2D, error) {
	if point != nil {
		if !point.IsFinite() {
			return Vector2D{}, fmt.Errorf("point %s: %w", side, ErrNonFinite)
		}
		return *point, nil
	}
	if body == nil {
		return Vector2D{}, fmt.Errorf("side %s: %w", side, ErrMissingAnchor)
	}
	return body.position, nil
}

// ID returns the world-assigned identifier, or 0 before the joint is added.
func (j *Joint) ID() uint64 { return j.id }

// Handle returns the joint's arena handle.
func (j *Joint) Handle() JointHandle { return j.handle }

// Type returns the joint type.
func (j *Joint) Type() JointType { return j.kind }

// InWorld reports whether the joint is currently part of a world.
func (j *Joint) InWorld() bool { return j.world != nil }

// PointA returns the world-space anchor on side A.
func (j *Joint) PointA() Vector2D { return j.pointA }

// PointB returns the world-space anchor on side B.
func (j *Joint) PointB() Vector2D { return j.pointB }

// SetPointA moves the A anchor. On a body-less side this is how a fixed
// anchor is dragged around.
func (j *Joint) SetPointA(p Vector2D) { j.pointA = p }

// SetPointB moves the B anchor.
func (j *Joint) SetPointB(p Vector2D) { j.pointB = p }

// Length returns the rest length.
func (j *Joint) Length() float64 { return j.length }

// CurrentLength returns the present anchor distance.
func (j *Joint) CurrentLength() float64 { return j.pointA.Distance(j.pointB) }

// BodyA returns the body on side A, or nil for a world anchor or a joint
// that is not in a world.
func (j *Joint) BodyA() *Body {
	if j.world == nil {
		return j.pendingA
	}
	return j.world.Body(j.bodyA)
}

// BodyB returns the body on side B, or nil.
func (j *Joint) BodyB() *Body {
	if j.world == nil {
		return j.pendingB
	}
	return j.world.Body(j.bodyB)
}

// Angle returns body A's angle minus body B's. An absent side counts as 0.
func (j *Joint) Angle() float64 {
	var a, b float64
	if body := j.BodyA(); body != nil {
		a = body.Angle()
	}
	if body := j.BodyB(); body != nil {
		b = body.Angle()
	}
	return a - b
}

// AngularVelocity returns body A's angular velocity minus body B's.
func (j *Joint) AngularVelocity() float64 {
	var a, b float64
	if body := j.BodyA(); body != nil {
		a = body.AngularVelocity()
	}
	if body := j.BodyB(); body != nil {
		b = body.AngularVelocity()
	}
	return a - b
}

// references reports whether the joint is attached to the body at h.
func (j *Joint) references(h BodyHandle) bool {
	return (!j.bodyA.IsZero() && j.bodyA == h) || (!j.bodyB.IsZero() && j.bodyB == h)
}

// syncPose records the current body poses as the anchor reference.
func (j *Joint) syncPose(a, b *Body) {
	if a != nil {
		j.posA, j.angleA = a.position, a.angle
	}
	if b != nil {
		j.posB, j.angleB = b.position, b.angle
	}
}

func (j *Joint) String() string {
	if j.Label != "" {
		return fmt.Sprintf("%s joint(%d %s)", j.kind, j.id, j.Label)
	}
	return fmt.Sprintf("%s joint(%d)", j.kind, j.id)
}

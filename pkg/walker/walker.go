// Package walker builds articulated two-legged walkers out of physics
// bodies and drives them through hinge actuation, sensors and death checks.
package walker

import (
	"fmt"
	"math"

	"github.com/opd-ai/go-walker/pkg/physics"
)

// Part indices into Walker.Parts.
const (
	Torso = iota
	LeftThigh
	RightThigh
	LeftShin
	RightShin
	numParts
)

// Hinge indices into Walker.Hinges.
const (
	LeftHip = iota
	RightHip
	LeftKnee
	RightKnee
	numHinges
)

// NumSensors is the length of Sensors.Vector.
const NumSensors = 1 + 2*numHinges + numParts + 1

// limbFilters keeps every part of every walker from colliding with any
// other walker part, since all of them share filter 0.
var limbFilters = []physics.Group{0, 1}

// Hinge is a motorised joint: a small disc pinned to the limb at two rim
// points and to the holder at its centre. Spinning the disc swings the limb.
type Hinge struct {
	Name   string
	Disc   *physics.Body
	Holder *physics.Body
	Limb   *physics.Body
	Pins   [3]*physics.Joint
	// Min and Max bound the disc angle relative to the holder, in radians.
	Min float64
	Max float64
}

// Angle is the disc angle relative to its holder.
func (h *Hinge) Angle() float64 {
	return h.Disc.Angle() - h.Holder.Angle()
}

// AngularVelocity is the disc spin relative to its holder, per step.
func (h *Hinge) AngularVelocity() float64 {
	return h.Disc.AngularVelocity() - h.Holder.AngularVelocity()
}

// Constrain stops the disc and pulls it back inside [Min, Max].
func (h *Hinge) Constrain() {
	rel := h.Angle()
	if rel >= h.Min && rel <= h.Max {
		return
	}
	h.Disc.SetAngularVelocity(0)
	h.Disc.SetAngle(h.Holder.Angle()+math.Max(h.Min, math.Min(h.Max, rel)), false)
}

// Walker is one articulated body plan.
type Walker struct {
	Index  int
	Layer  physics.Group
	Start  physics.Vector2D
	Parts  [numParts]*physics.Body
	Head   *physics.Body
	Neck   [2]*physics.Joint
	Hinges [numHinges]*Hinge

	Dead      bool
	DeathDist float64
	Cause     string
}

// Options describes the body plan's placement and materials.
type Options struct {
	// Start is the reference point the torso hangs from.
	Start physics.Vector2D
	// Density applies to every part except the head.
	Density float64
	// HeadDensity is kept tiny so the head rides on the torso.
	HeadDensity float64
	HingeRadius float64
}

// DefaultOptions places the walker standing on a ground whose top is y=875.
func DefaultOptions() Options {
	return Options{
		Start:       physics.Vec(400, 725),
		Density:     0.0001,
		HeadDensity: 0.0001 * 1e-7,
		HingeRadius: 10,
	}
}

func degrees(d float64) float64 { return d / 180 * math.Pi }

// New builds a walker in world w. The walker gets a fresh collision layer
// that the caller should add to the ground so the two collide. The walker's
// bodies and joints are added to w.
func New(w *physics.World, index int, opts Options) (*Walker, error) {
	s := opts.Start
	layer := w.NewGroup()
	wk := &Walker{Index: index, Layer: layer, Start: s}

	part := func(x, y, width, height, density float64, label string) (*physics.Body, error) {
		o := physics.DefaultBodyOptions()
		o.Density = density
		o.Layers = []physics.Group{layer}
		o.Filters = limbFilters
		o.Label = fmt.Sprintf("walker%d.%s", index, label)
		return physics.NewRectangle(x, y, width, height, o)
	}

	specs := []struct {
		slot          int
		x, y          float64
		width, height float64
		label         string
	}{
		{Torso, s.X, s.Y + 10, 80, 80, "torso"},
		{LeftThigh, s.X - 30, s.Y + 65, 20, 70, "left_thigh"},
		{RightThigh, s.X + 30, s.Y + 65, 20, 70, "right_thigh"},
		{LeftShin, s.X - 30, s.Y + 115, 20, 70, "left_shin"},
		{RightShin, s.X + 30, s.Y + 115, 20, 70, "right_shin"},
	}
	for _, sp := range specs {
		b, err := part(sp.x, sp.y, sp.width, sp.height, opts.Density, sp.label)
		if err != nil {
			return nil, fmt.Errorf("walker %d %s: %w", index, sp.label, err)
		}
		wk.Parts[sp.slot] = b
	}

	head, err := part(s.X, s.Y-47.5, 35, 35, opts.HeadDensity, "head")
	if err != nil {
		return nil, fmt.Errorf("walker %d head: %w", index, err)
	}
	wk.Head = head
	for i, v := range []int{2, 3} {
		p := head.Vertex(v)
		jo := physics.DefaultJointOptions(physics.JointSpring)
		jo.BodyA, jo.BodyB = head, wk.Parts[Torso]
		jo.PointA, jo.PointB = &p, &p
		jo.Label = "neck"
		if wk.Neck[i], err = physics.NewJoint(jo); err != nil {
			return nil, fmt.Errorf("walker %d neck: %w", index, err)
		}
	}

	hinges := []struct {
		slot         int
		name         string
		holder, limb int
		at           physics.Vector2D
		min, max     float64
	}{
		{LeftHip, "left_hip", Torso, LeftThigh, physics.Vec(s.X-30, s.Y+40), -80, 120},
		{RightHip, "right_hip", Torso, RightThigh, physics.Vec(s.X+30, s.Y+40), -120, 80},
		{LeftKnee, "left_knee", LeftThigh, LeftShin, physics.Vec(s.X-30, s.Y+90), -120, 120},
		{RightKnee, "right_knee", RightThigh, RightShin, physics.Vec(s.X+30, s.Y+90), -120, 120},
	}
	for _, hs := range hinges {
		h, err := newHinge(w, index, hs.name, wk.Parts[hs.holder], wk.Parts[hs.limb], hs.at, opts)
		if err != nil {
			return nil, fmt.Errorf("walker %d %s: %w", index, hs.name, err)
		}
		h.Min, h.Max = degrees(hs.min), degrees(hs.max)
		wk.Hinges[hs.slot] = h
	}

	if err := w.Add(wk.Items()...); err != nil {
		return nil, fmt.Errorf("walker %d: %w", index, err)
	}
	return wk, nil
}

func newHinge(w *physics.World, index int, name string, holder, limb *physics.Body, at physics.Vector2D, opts Options) (*Hinge, error) {
	o := physics.DefaultBodyOptions()
	o.Density = opts.Density
	o.Layers = []physics.Group{w.NewGroup()}
	o.Label = fmt.Sprintf("walker%d.%s", index, name)
	disc, err := physics.NewCircle(at.X, at.Y, opts.HingeRadius, o)
	if err != nil {
		return nil, err
	}

	h := &Hinge{Name: name, Disc: disc, Holder: holder, Limb: limb}
	pins := []struct {
		body  *physics.Body
		point physics.Vector2D
	}{
		{limb, disc.Vertex(0)},
		{limb, disc.Vertex(disc.NumVertices() / 2)},
		{holder, disc.Position()},
	}
	for i, p := range pins {
		point := p.point
		jo := physics.DefaultJointOptions(physics.JointPivot)
		jo.BodyA, jo.BodyB = p.body, disc
		jo.PointA, jo.PointB = &point, &point
		jo.Label = name
		if h.Pins[i], err = physics.NewJoint(jo); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// Items lists every body and joint of the walker, bodies first.
func (wk *Walker) Items() []physics.Item {
	items := make([]physics.Item, 0, numParts+1+numHinges+2+3*numHinges)
	for _, p := range wk.Parts {
		items = append(items, p)
	}
	items = append(items, wk.Head)
	for _, h := range wk.Hinges {
		items = append(items, h.Disc)
	}
	items = append(items, wk.Neck[0], wk.Neck[1])
	for _, h := range wk.Hinges {
		for _, pin := range h.Pins {
			items = append(items, pin)
		}
	}
	return items
}

// Remove takes the walker out of w. Its joints go with its bodies.
func (wk *Walker) Remove(w *physics.World) {
	w.Remove(wk.Items()...)
}

// Distance is how far the torso has travelled along x since spawning.
func (wk *Walker) Distance() float64 {
	return wk.Parts[Torso].Position().X - wk.Start.X
}

// Fitness is the cube of the distance reached, frozen at death. Cubing
// keeps the sign and rewards the furthest walkers disproportionately.
func (wk *Walker) Fitness() float64 {
	d := wk.DeathDist
	if !wk.Dead {
		d = wk.Distance()
	}
	return d * d * d
}

// Actuate spins each hinge disc at the matching command, clamped to
// ±maxRotation radians per step. Missing commands leave a hinge alone.
func (wk *Walker) Actuate(commands []float64, maxRotation float64) {
	for i, h := range wk.Hinges {
		if i >= len(commands) {
			return
		}
		c := commands[i]
		if math.IsNaN(c) {
			continue
		}
		h.Disc.SetAngularVelocity(math.Max(-maxRotation, math.Min(maxRotation, c)))
	}
}

// ConstrainJoints applies every hinge's angle limits.
func (wk *Walker) ConstrainJoints() {
	for _, h := range wk.Hinges {
		h.Constrain()
	}
}

// CheckDeath marks the walker dead when its torso or head touches the
// ground or any limb touches the laser. It reports whether the walker
// died on this call.
func (wk *Walker) CheckDeath(ground, laser *physics.Body) bool {
	if wk.Dead {
		return false
	}
	cause := ""
	switch {
	case touching(wk.Parts[Torso], ground):
		cause = "torso_ground"
	case touching(wk.Head, ground):
		cause = "head_ground"
	default:
		for _, p := range wk.Parts {
			if touching(p, laser) {
				cause = "laser"
				break
			}
		}
	}
	if cause == "" {
		return false
	}
	wk.Dead = true
	wk.Cause = cause
	wk.DeathDist = wk.Distance()
	return true
}

func touching(a, b *physics.Body) bool {
	if a == nil || b == nil {
		return false
	}
	_, ok := physics.Collide(a, b)
	return ok
}

// Package composite assembles multi-body structures (cars, chains, cloth,
// enclosures) from the physics factories.
package composite

import (
	"fmt"

	"github.com/opd-ai/go-walker/pkg/physics"
)

// Composite is a set of bodies and the joints binding them.
type Composite struct {
	Bodies []*physics.Body
	Joints []*physics.Joint
}

// Items lists the bodies then the joints, ready for World.Add.
func (c *Composite) Items() []physics.Item {
	items := make([]physics.Item, 0, len(c.Bodies)+len(c.Joints))
	for _, b := range c.Bodies {
		items = append(items, b)
	}
	for _, j := range c.Joints {
		items = append(items, j)
	}
	return items
}

// AddTo adds the composite to w.
func (c *Composite) AddTo(w *physics.World) error {
	return w.Add(c.Items()...)
}

// CarType selects a car body.
type CarType int

const (
	// CarFlat is a plank on two wheels.
	CarFlat CarType = iota + 1
	// CarCoupe is a six-sided hull with a sloped bonnet.
	CarCoupe
)

// CarOptions configures Car.
type CarOptions struct {
	Type  CarType
	Scale float64
	// Filter keeps the hull and wheels from colliding with each other. It
	// must be a group unique to this car.
	Filter physics.Group
}

// Car builds a body on two wheels. The wheels hang on pivots at their
// centres, so they spin freely.
func Car(x, y float64, opts CarOptions) (*Composite, error) {
	scale := opts.Scale
	if scale == 0 {
		scale = 1
	}
	bodyOpts := physics.DefaultBodyOptions()
	bodyOpts.Filters = []physics.Group{opts.Filter}
	bodyOpts.Label = "car"
	wheelOpts := physics.DefaultBodyOptions()
	wheelOpts.Filters = []physics.Group{opts.Filter}
	wheelOpts.Friction = 1
	wheelOpts.Label = "wheel"

	var (
		hull           *physics.Body
		wheelA, wheelB physics.Vector2D
		err            error
	)
	switch opts.Type {
	case CarFlat, 0:
		width := 60 * scale
		if hull, err = physics.NewRectangle(x, y, width, 15*scale, bodyOpts); err != nil {
			return nil, fmt.Errorf("car hull: %w", err)
		}
		wheelA = physics.Vec(x+width/2, y)
		wheelB = physics.Vec(x-width/2, y)
	case CarCoupe:
		outline := []physics.Vector2D{
			physics.Vec(90*scale, 0),
			physics.Vec(0, 0),
			physics.Vec(0, -26*scale),
			physics.Vec(10*scale, -42*scale),
			physics.Vec(45*scale, -42*scale),
			physics.Vec(90*scale, -15*scale),
		}
		if hull, err = physics.NewFromVertices(outline, bodyOpts); err != nil {
			return nil, fmt.Errorf("car hull: %w", err)
		}
		hull.SetPosition(physics.Vec(x, y), false)
		rearBottom, frontBottom := hull.Vertex(0), hull.Vertex(1)
		wheelA = physics.Vec(rearBottom.X-15*scale, rearBottom.Y)
		wheelB = physics.Vec(frontBottom.X+15*scale, rearBottom.Y)
	default:
		return nil, fmt.Errorf("car type %d: %w", opts.Type, physics.ErrInvalidGeometry)
	}

	c := &Composite{Bodies: []*physics.Body{hull}}
	for _, at := range []physics.Vector2D{wheelA, wheelB} {
		wheel, err := physics.NewCircle(at.X, at.Y, 12*scale, wheelOpts)
		if err != nil {
			return nil, fmt.Errorf("car wheel: %w", err)
		}
		axle := wheel.Position()
		jo := physics.DefaultJointOptions(physics.JointPivot)
		jo.BodyA, jo.BodyB = hull, wheel
		jo.PointA = &axle
		jo.Label = "axle"
		j, err := physics.NewJoint(jo)
		if err != nil {
			return nil, fmt.Errorf("car axle: %w", err)
		}
		c.Bodies = append(c.Bodies, wheel)
		c.Joints = append(c.Joints, j)
	}
	return c, nil
}

// ChainOptions configures Chain.
type ChainOptions struct {
	// Segments is the number of links; fewer than two is raised to two.
	Segments int
	// From and To are the positions of the first and last link.
	From, To physics.Vector2D
	// Link creates one link centred at the given position.
	Link func(at physics.Vector2D) (*physics.Body, error)
	// AnchorsA and AnchorsB pair up joint anchors as offsets from the link
	// centre: AnchorsA[k] on link i joins AnchorsB[k] on link i+1.
	AnchorsA, AnchorsB []physics.Vector2D
	// Joint is the template for every link joint; its bodies and points
	// are filled in.
	Joint physics.JointOptions
}

// Chain spaces links evenly from From to To and joins each neighbouring
// pair at every anchor pair.
func Chain(opts ChainOptions) (*Composite, error) {
	if opts.Link == nil {
		return nil, fmt.Errorf("chain: nil link constructor")
	}
	if len(opts.AnchorsA) != len(opts.AnchorsB) {
		return nil, fmt.Errorf("chain: %d anchors a, %d anchors b: %w",
			len(opts.AnchorsA), len(opts.AnchorsB), physics.ErrMissingAnchor)
	}
	n := opts.Segments
	if n < 2 {
		n = 2
	}
	step := opts.To.Sub(opts.From).Scale(1 / float64(n-1))

	c := &Composite{}
	for i := 0; i < n; i++ {
		link, err := opts.Link(opts.From.Add(step.Scale(float64(i))))
		if err != nil {
			return nil, fmt.Errorf("chain link %d: %w", i, err)
		}
		c.Bodies = append(c.Bodies, link)
	}
	for i := 0; i+1 < n; i++ {
		a, b := c.Bodies[i], c.Bodies[i+1]
		for k := range opts.AnchorsA {
			pa := a.Position().Add(opts.AnchorsA[k])
			pb := b.Position().Add(opts.AnchorsB[k])
			jo := opts.Joint
			jo.BodyA, jo.BodyB = a, b
			jo.PointA, jo.PointB = &pa, &pb
			j, err := physics.NewJoint(jo)
			if err != nil {
				return nil, fmt.Errorf("chain joint %d.%d: %w", i, k, err)
			}
			c.Joints = append(c.Joints, j)
		}
	}
	return c, nil
}

// ClothOptions configures Cloth.
type ClothOptions struct {
	Columns, Rows int
	Spacing       float64
	Radius        float64
	// Hanging pins the top row in place.
	Hanging bool
	Body    physics.BodyOptions
	Joint   physics.JointOptions
}

// DefaultClothOptions returns a 20-unit grid of radius-5 particles joined
// by damped springs. Filter is applied so particles pass through each other.
func DefaultClothOptions(columns, rows int, filter physics.Group) ClothOptions {
	body := physics.DefaultBodyOptions()
	body.Filters = []physics.Group{filter}
	body.Edges = 8
	body.Label = "cloth"
	joint := physics.DefaultJointOptions(physics.JointSpring)
	joint.Stiffness = 0.3
	joint.Damping = 0.3
	return ClothOptions{
		Columns: columns,
		Rows:    rows,
		Spacing: 20,
		Radius:  5,
		Body:    body,
		Joint:   joint,
	}
}

// Cloth builds a grid of particles with a spring to the right and below
// each one. Bodies are row-major from the top-left particle at (x, y).
func Cloth(x, y float64, opts ClothOptions) (*Composite, error) {
	w, h := opts.Columns, opts.Rows
	if w < 1 || h < 1 {
		return nil, fmt.Errorf("cloth %dx%d: %w", w, h, physics.ErrInvalidGeometry)
	}
	c := &Composite{Bodies: make([]*physics.Body, 0, w*h)}
	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			bo := opts.Body
			bo.Static = opts.Hanging && row == 0
			b, err := physics.NewCircle(x+float64(col)*opts.Spacing, y+float64(row)*opts.Spacing, opts.Radius, bo)
			if err != nil {
				return nil, fmt.Errorf("cloth particle %d,%d: %w", col, row, err)
			}
			c.Bodies = append(c.Bodies, b)
		}
	}

	link := func(a, b *physics.Body) error {
		jo := opts.Joint
		jo.BodyA, jo.BodyB = a, b
		jo.PointA, jo.PointB = nil, nil
		j, err := physics.NewJoint(jo)
		if err != nil {
			return err
		}
		c.Joints = append(c.Joints, j)
		return nil
	}
	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			i := row*w + col
			if col+1 < w {
				if err := link(c.Bodies[i], c.Bodies[i+1]); err != nil {
					return nil, fmt.Errorf("cloth joint: %w", err)
				}
			}
			if row+1 < h {
				if err := link(c.Bodies[i], c.Bodies[i+w]); err != nil {
					return nil, fmt.Errorf("cloth joint: %w", err)
				}
			}
		}
	}
	return c, nil
}

// Enclose returns four static walls of the given thickness lining the
// inside of the rectangle from (0, 0) to (width, height).
func Enclose(width, height, thickness float64) (*Composite, error) {
	opts := physics.DefaultBodyOptions()
	opts.Static = true
	opts.Label = "wall"
	walls := []struct{ x, y, w, h float64 }{
		{width / 2, thickness / 2, width, thickness},
		{width / 2, height - thickness/2, width, thickness},
		{thickness / 2, height / 2, thickness, height},
		{width - thickness/2, height / 2, thickness, height},
	}
	c := &Composite{}
	for _, wl := range walls {
		b, err := physics.NewRectangle(wl.x, wl.y, wl.w, wl.h, opts)
		if err != nil {
			return nil, fmt.Errorf("wall: %w", err)
		}
		c.Bodies = append(c.Bodies, b)
	}
	return c, nil
}

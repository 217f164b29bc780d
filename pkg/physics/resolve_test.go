// pkg/physics/resolve_test.go
package physics

import (
	"testing"
)

func TestResolveVelocity_ElasticHeadOn(t *testing.T) {
	opts := DefaultBodyOptions()
	opts.Restitution = 1
	opts.Friction = 0

	a, err := NewCircle(0, 0, 10, opts)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewCircle(19, 0, 10, opts)
	if err != nil {
		t.Fatal(err)
	}
	a.SetVelocity(Vec(2, 0))
	b.SetVelocity(Vec(-2, 0))

	c, ok := Collide(a, b)
	if !ok {
		t.Fatal("expected contact")
	}
	normalVelocity := func() float64 {
		return c.Normal.Dot(b.pointVelocity(c.Point).Sub(a.pointVelocity(c.Point)))
	}

	before := normalVelocity()
	if before >= 0 {
		t.Fatalf("bodies should approach, vn = %v", before)
	}
	resolveVelocity(c)
	after := normalVelocity()

	if !approxEqual(after, -before, 1e-9) {
		t.Errorf("vn after = %v, expected %v", after, -before)
	}
}

func TestResolveVelocity_SeparatingUntouched(t *testing.T) {
	a := mustRect(t, 0, 0, 10, 10, DefaultBodyOptions())
	b := mustRect(t, 9, 0, 10, 10, DefaultBodyOptions())
	a.SetVelocity(Vec(-1, 0))
	b.SetVelocity(Vec(1, 0))

	c, ok := Collide(a, b)
	if !ok {
		t.Fatal("expected contact")
	}
	resolveVelocity(c)

	if a.Velocity() != Vec(-1, 0) || b.Velocity() != Vec(1, 0) {
		t.Errorf("separating bodies changed velocity: %v, %v", a.Velocity(), b.Velocity())
	}
}

func TestResolveVelocity_FrictionClamped(t *testing.T) {
	groundOpts := DefaultBodyOptions()
	groundOpts.Static = true
	groundOpts.Friction = 0.5
	ground := mustRect(t, 0, 20, 200, 20, groundOpts)

	boxOpts := DefaultBodyOptions()
	boxOpts.Friction = 0.5
	boxOpts.Restitution = 0
	box := mustRect(t, 0, 0.5, 20, 20, boxOpts)
	box.SetVelocity(Vec(10, 1))

	c, ok := Collide(ground, box)
	if !ok {
		t.Fatal("expected contact")
	}
	if !vecApprox(c.Normal, Vec(0, -1), 1e-9) {
		t.Fatalf("Normal = %v, expected (0, -1)", c.Normal)
	}
	resolveVelocity(c)

	v := box.Velocity()
	if v.X >= 10 {
		t.Errorf("friction should slow the slide, vx = %v", v.X)
	}
	if v.X <= 0 {
		t.Errorf("friction must not reverse the slide, vx = %v", v.X)
	}
	if ground.Velocity() != (Vector2D{}) {
		t.Error("static body moved")
	}
}

func TestCorrectPosition(t *testing.T) {
	staticOpts := DefaultBodyOptions()
	staticOpts.Static = true

	tests := []struct {
		name    string
		overlap float64
		bStatic bool
		wantA   float64
		wantB   float64
	}{
		{"within_slop", 0.5, false, 0, 10},
		{"at_slop", 1, false, 0, 10},
		{"equal_masses_split", 5, false, -0.2, 10.2},
		{"static_partner", 5, true, -0.4, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := mustRect(t, 0, 0, 10, 10, DefaultBodyOptions())
			bOpts := DefaultBodyOptions()
			if tt.bStatic {
				bOpts = staticOpts
			}
			b := mustRect(t, 10, 0, 10, 10, bOpts)
			a.SetVelocity(Vec(0.5, 0))

			correctPosition(Contact{A: a, B: b, Overlap: tt.overlap, Normal: Vec(1, 0)})

			if !approxEqual(a.Position().X, tt.wantA, 1e-9) {
				t.Errorf("A.x = %v, expected %v", a.Position().X, tt.wantA)
			}
			if !approxEqual(b.Position().X, tt.wantB, 1e-9) {
				t.Errorf("B.x = %v, expected %v", b.Position().X, tt.wantB)
			}
			if !vecApprox(a.Velocity(), Vec(0.5, 0), 1e-12) {
				t.Errorf("position correction changed velocity to %v", a.Velocity())
			}
		})
	}
}

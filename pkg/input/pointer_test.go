package input

import (
	"testing"

	"github.com/opd-ai/go-walker/pkg/physics"
)

var _ physics.InputProxy = (*Pointer)(nil)

func pointerWorld(t *testing.T) (*physics.World, *physics.Body, *physics.Body) {
	t.Helper()
	w := physics.NewWorld(nil)
	box, err := physics.NewRectangle(100, 100, 40, 40, physics.DefaultBodyOptions())
	if err != nil {
		t.Fatalf("NewRectangle() error = %v", err)
	}
	opts := physics.DefaultBodyOptions()
	opts.Static = true
	floor, err := physics.NewRectangle(100, 300, 200, 20, opts)
	if err != nil {
		t.Fatalf("NewRectangle() error = %v", err)
	}
	if err := w.Add(box, floor); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	return w, box, floor
}

func TestPointer_GrabAndRelease(t *testing.T) {
	w, box, _ := pointerWorld(t)
	p := NewPointer()

	p.Move(physics.Vec(105, 95))
	p.Press()
	p.Update(w)

	j := p.Grabbed()
	if j == nil {
		t.Fatal("Grabbed() = nil after pressing on a body")
	}
	if j.BodyA() != box || j.BodyB() != nil {
		t.Errorf("grab joint bodies = %v, %v; want box, nil", j.BodyA(), j.BodyB())
	}
	if j.Type() != physics.JointPivot || j.AngularStiffness != 1 || j.Stiffness != 1 {
		t.Errorf("grab joint = %+v", j)
	}
	if w.JointCount() != 1 {
		t.Errorf("JointCount() = %d, want 1", w.JointCount())
	}

	p.Move(physics.Vec(150, 95))
	p.Update(w)
	if got := j.PointB(); got != physics.Vec(150, 95) {
		t.Errorf("anchor = %v, want it to follow the pointer", got)
	}
	if !p.Dragged() {
		t.Error("Dragged() = false while moving with the button down")
	}
	if got := p.Velocity(); got != physics.Vec(45, 0) {
		t.Errorf("Velocity() = %v, want (45, 0)", got)
	}

	p.Release()
	p.Update(w)
	if p.Grabbed() != nil || j.InWorld() || w.JointCount() != 0 {
		t.Error("grab joint survived release")
	}
}

func TestPointer_Hover(t *testing.T) {
	tests := []struct {
		name string
		at   physics.Vector2D
		want string
	}{
		{"on_box", physics.Vec(100, 100), "box"},
		{"on_floor", physics.Vec(50, 300), "floor"},
		{"empty_space", physics.Vec(500, 500), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, box, floor := pointerWorld(t)
			names := map[*physics.Body]string{box: "box", floor: "floor"}
			p := NewPointer()
			p.Move(tt.at)
			p.Update(w)
			if got := names[p.Hovered()]; got != tt.want {
				t.Errorf("Hovered() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPointer_IgnoresStaticAndEmpty(t *testing.T) {
	tests := []struct {
		name string
		at   physics.Vector2D
	}{
		{"static_body", physics.Vec(100, 300)},
		{"nothing", physics.Vec(500, 500)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _, _ := pointerWorld(t)
			p := NewPointer()
			p.Move(tt.at)
			p.Press()
			p.Update(w)
			if p.Grabbed() != nil {
				t.Error("grabbed a joint")
			}
		})
	}
}

func TestPointer_HoldingDoesNotRegrab(t *testing.T) {
	w, _, _ := pointerWorld(t)
	p := NewPointer()
	p.Move(physics.Vec(500, 500))
	p.Press()
	p.Update(w)

	// Sliding onto a body with the button already held does not grab it.
	p.Move(physics.Vec(100, 100))
	p.Update(w)
	if p.Grabbed() != nil {
		t.Error("grabbed without a fresh press")
	}
}

func TestPointer_DropsRemovedJoint(t *testing.T) {
	w, box, _ := pointerWorld(t)
	p := NewPointer()
	p.Move(physics.Vec(100, 100))
	p.Press()
	p.Update(w)

	w.Remove(box)
	p.Update(w)

	if p.Grabbed() != nil {
		t.Error("Grabbed() kept a joint removed with its body")
	}
}

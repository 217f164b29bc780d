// pkg/physics/world_test.go
package physics

import (
	"errors"
	"testing"

	"github.com/opd-ai/go-walker/pkg/event"
)

func recordEvents(bus *event.Bus, types ...event.Type) *[]event.Type {
	var seen []event.Type
	for _, typ := range types {
		bus.Subscribe(typ, func(e event.Event) { seen = append(seen, e.GetType()) })
	}
	return &seen
}

func TestWorld_AddAssignsIDsInOrder(t *testing.T) {
	w := NewWorld(nil)
	a := mustRect(t, 0, 0, 10, 10, DefaultBodyOptions())
	b := mustRect(t, 20, 0, 10, 10, DefaultBodyOptions())

	if err := w.Add(a, b); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if a.ID() == 0 || b.ID() <= a.ID() {
		t.Errorf("IDs not monotonic: %d, %d", a.ID(), b.ID())
	}
	bodies := w.Bodies()
	if len(bodies) != 2 || bodies[0] != a || bodies[1] != b {
		t.Errorf("Bodies() = %v, expected insertion order", bodies)
	}
	if w.Body(a.Handle()) != a {
		t.Error("Body() did not resolve handle")
	}

	// Re-adding is a no-op.
	id := a.ID()
	if err := w.Add(a); err != nil || a.ID() != id || w.BodyCount() != 2 {
		t.Errorf("re-add changed state: err=%v id=%d count=%d", err, a.ID(), w.BodyCount())
	}
}

func TestWorld_NewGroup(t *testing.T) {
	w := NewWorld(nil)
	g1, g2 := w.NewGroup(), w.NewGroup()
	if g1 == 0 || g1 == g2 {
		t.Errorf("NewGroup() returned %d and %d", g1, g2)
	}
}

func TestWorld_JointErrors(t *testing.T) {
	w := NewWorld(nil)
	a := mustRect(t, 0, 0, 10, 10, DefaultBodyOptions())
	outside := mustRect(t, 50, 0, 10, 10, DefaultBodyOptions())
	if err := w.Add(a); err != nil {
		t.Fatal(err)
	}

	t.Run("unattached", func(t *testing.T) {
		p := Vec(1, 1)
		opts := DefaultJointOptions(JointSpring)
		opts.PointA, opts.PointB = &p, &p
		if _, err := NewJoint(opts); !errors.Is(err, ErrUnattachedJoint) {
			t.Errorf("NewJoint() error = %v, expected ErrUnattachedJoint", err)
		}
	})

	t.Run("missing_anchor", func(t *testing.T) {
		opts := DefaultJointOptions(JointSpring)
		opts.BodyA = a
		if _, err := NewJoint(opts); !errors.Is(err, ErrMissingAnchor) {
			t.Errorf("NewJoint() error = %v, expected ErrMissingAnchor", err)
		}
	})

	t.Run("body_not_in_world", func(t *testing.T) {
		opts := DefaultJointOptions(JointSpring)
		opts.BodyA, opts.BodyB = a, outside
		j, err := NewJoint(opts)
		if err != nil {
			t.Fatalf("NewJoint() error = %v", err)
		}
		if err := w.Add(j); !errors.Is(err, ErrBodyNotInWorld) {
			t.Errorf("Add() error = %v, expected ErrBodyNotInWorld", err)
		}
		if w.JointCount() != 0 {
			t.Error("failed joint should not be added")
		}
	})

	t.Run("zero_joint", func(t *testing.T) {
		if err := w.Add(&Joint{}); !errors.Is(err, ErrUnattachedJoint) {
			t.Errorf("Add() error = %v, expected ErrUnattachedJoint", err)
		}
	})

	t.Run("foreign_body", func(t *testing.T) {
		other := NewWorld(nil)
		if err := other.Add(a); !errors.Is(err, ErrForeignItem) {
			t.Errorf("Add() error = %v, expected ErrForeignItem", err)
		}
	})
}

func TestNewJoint_Defaults(t *testing.T) {
	a := mustRect(t, 0, 0, 10, 10, DefaultBodyOptions())
	b := mustRect(t, 30, 40, 10, 10, DefaultBodyOptions())

	tests := []struct {
		name          string
		kind          JointType
		length        float64
		wantLength    float64
		wantStiffness float64
	}{
		{"spring_derives_length", JointSpring, 0, 50, 0.3},
		{"spring_explicit_length", JointSpring, 20, 20, 0.3},
		{"pivot_rests_at_zero", JointPivot, 20, 0, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultJointOptions(tt.kind)
			opts.BodyA, opts.BodyB, opts.Length = a, b, tt.length
			j, err := NewJoint(opts)
			if err != nil {
				t.Fatalf("NewJoint() error = %v", err)
			}
			if j.Length() != tt.wantLength {
				t.Errorf("Length() = %v, expected %v", j.Length(), tt.wantLength)
			}
			if j.Stiffness != tt.wantStiffness {
				t.Errorf("Stiffness = %v, expected %v", j.Stiffness, tt.wantStiffness)
			}
			if j.PointA() != a.Position() || j.PointB() != b.Position() {
				t.Errorf("anchors default to body positions, got %v %v", j.PointA(), j.PointB())
			}
			if j.BodyA() != a || j.BodyB() != b {
				t.Error("BodyA/BodyB should return pending bodies before Add")
			}
		})
	}
}

func TestWorld_RemoveCascadesToJoints(t *testing.T) {
	bus := event.NewEventBus()
	seen := recordEvents(bus, event.BodyRemoved, event.JointRemoved)
	w := NewWorld(bus)

	a := mustRect(t, 0, 0, 10, 10, DefaultBodyOptions())
	b := mustRect(t, 20, 0, 10, 10, DefaultBodyOptions())
	c := mustRect(t, 40, 0, 10, 10, DefaultBodyOptions())
	if err := w.Add(a, b, c); err != nil {
		t.Fatal(err)
	}
	jab := mustJoint(t, JointSpring, a, b)
	jbc := mustJoint(t, JointSpring, b, c)
	if err := w.Add(jab, jbc); err != nil {
		t.Fatal(err)
	}
	if jab.BodyA() != a || jbc.BodyB() != c {
		t.Error("joint bodies not resolved through the world")
	}

	handle := a.Handle()
	w.Remove(a)

	if w.BodyCount() != 2 || w.JointCount() != 1 {
		t.Errorf("counts after remove = %d bodies, %d joints", w.BodyCount(), w.JointCount())
	}
	if jab.InWorld() || !jbc.InWorld() {
		t.Error("only the joint attached to the removed body should go")
	}
	if w.Body(handle) != nil {
		t.Error("stale handle should resolve to nil")
	}
	if len(*seen) != 2 || (*seen)[0] != event.JointRemoved || (*seen)[1] != event.BodyRemoved {
		t.Errorf("events = %v, expected joint removal before body removal", *seen)
	}

	// Removing again is a no-op.
	w.Remove(a, jab)
	if len(*seen) != 2 {
		t.Errorf("second removal published %v", *seen)
	}
}

func TestWorld_ReAddRemovedJoint(t *testing.T) {
	tests := []struct {
		name        string
		detach      func(t *testing.T, w *World, j *Joint, a *Body)
		expectedErr error
	}{
		{
			name:   "after_remove",
			detach: func(t *testing.T, w *World, j *Joint, a *Body) { w.Remove(j) },
		},
		{
			name: "after_break",
			detach: func(t *testing.T, w *World, j *Joint, a *Body) {
				w.removeJoint(j, event.JointBroken)
			},
		},
		{
			name:        "after_body_removed",
			detach:      func(t *testing.T, w *World, j *Joint, a *Body) { w.Remove(a) },
			expectedErr: ErrBodyNotInWorld,
		},
		{
			name: "after_body_re_added",
			detach: func(t *testing.T, w *World, j *Joint, a *Body) {
				w.Remove(a)
				if err := w.Add(a); err != nil {
					t.Fatalf("Add() error = %v", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := event.NewEventBus()
			added := recordEvents(bus, event.JointAdded)
			w := NewWorld(bus)
			a := mustRect(t, 0, 0, 10, 10, DefaultBodyOptions())
			b := mustRect(t, 20, 0, 10, 10, DefaultBodyOptions())
			j := mustJoint(t, JointSpring, a, b)
			if err := w.Add(a, b, j); err != nil {
				t.Fatal(err)
			}

			tt.detach(t, w, j, a)
			if j.InWorld() {
				t.Fatal("joint still in world after detach")
			}
			if j.BodyA() != a || j.BodyB() != b {
				t.Errorf("detached joint bodies = %v, %v; want a, b", j.BodyA(), j.BodyB())
			}

			err := w.Add(j)
			if tt.expectedErr != nil {
				if !errors.Is(err, tt.expectedErr) {
					t.Errorf("Add() error = %v, expected %v", err, tt.expectedErr)
				}
				if j.InWorld() || w.JointCount() != 0 || len(*added) != 1 {
					t.Errorf("rejected joint was added: inWorld=%v joints=%d added=%d",
						j.InWorld(), w.JointCount(), len(*added))
				}
				return
			}
			if err != nil {
				t.Fatalf("Add() error = %v", err)
			}
			if !j.InWorld() || w.JointCount() != 1 || len(*added) != 2 {
				t.Errorf("re-add: inWorld=%v joints=%d added=%d", j.InWorld(), w.JointCount(), len(*added))
			}
			if j.BodyA() != a || j.BodyB() != b {
				t.Errorf("re-added joint bodies = %v, %v; want a, b", j.BodyA(), j.BodyB())
			}
		})
	}
}

func TestWorld_SlotReuseInvalidatesHandles(t *testing.T) {
	w := NewWorld(nil)
	a := mustRect(t, 0, 0, 10, 10, DefaultBodyOptions())
	if err := w.Add(a); err != nil {
		t.Fatal(err)
	}
	old := a.Handle()
	w.Remove(a)

	b := mustRect(t, 0, 0, 10, 10, DefaultBodyOptions())
	if err := w.Add(b); err != nil {
		t.Fatal(err)
	}
	if w.Body(old) != nil {
		t.Error("old handle resolved after slot reuse")
	}
	if w.Body(b.Handle()) != b {
		t.Error("new handle did not resolve")
	}
	if b.ID() == a.ID() {
		t.Error("IDs must not be reused")
	}
}

func TestWorld_Clear(t *testing.T) {
	w := NewWorld(nil)
	a := mustRect(t, 0, 0, 10, 10, DefaultBodyOptions())
	b := mustRect(t, 20, 0, 10, 10, DefaultBodyOptions())
	if err := w.Add(a, b, mustJoint(t, JointPivot, a, b)); err != nil {
		t.Fatal(err)
	}
	w.Clear()
	if w.BodyCount() != 0 || w.JointCount() != 0 || a.InWorld() {
		t.Errorf("Clear() left %d bodies and %d joints", w.BodyCount(), w.JointCount())
	}
}

func mustJoint(t *testing.T, kind JointType, a, b *Body) *Joint {
	t.Helper()
	opts := DefaultJointOptions(kind)
	opts.BodyA, opts.BodyB = a, b
	j, err := NewJoint(opts)
	if err != nil {
		t.Fatalf("NewJoint() error = %v", err)
	}
	return j
}

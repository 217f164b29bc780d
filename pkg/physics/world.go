// pkg/physics/world.go
package physics

import (
	"fmt"

	"github.com/opd-ai/go-walker/pkg/event"
)

// Item is anything a World holds: *Body or *Joint.
type Item interface {
	isItem()
}

func (*Body) isItem()  {}
func (*Joint) isItem() {}

// BodyHandle addresses a body slot. A handle goes stale when its body is
// removed, even if the slot is reused.
type BodyHandle struct {
	index      uint32
	generation uint32
}

// IsZero reports whether h was never assigned.
func (h BodyHandle) IsZero() bool { return h.generation == 0 }

// JointHandle addresses a joint slot.
type JointHandle struct {
	index      uint32
	generation uint32
}

// IsZero reports whether h was never assigned.
func (h JointHandle) IsZero() bool { return h.generation == 0 }

type bodySlot struct {
	body       *Body
	generation uint32
}

type jointSlot struct {
	joint      *Joint
	generation uint32
}

// World owns bodies and joints. Iteration follows insertion order.
// A World is not safe for concurrent use.
type World struct {
	bodySlots  []bodySlot
	freeBodies []uint32
	bodyOrder  []BodyHandle

	jointSlots []jointSlot
	freeJoints []uint32
	jointOrder []JointHandle

	lastID uint64

	// Events receives membership changes; nil disables publishing.
	Events *event.Bus
}

// NewWorld creates an empty world publishing to bus, which may be nil.
func NewWorld(bus *event.Bus) *World {
	return &World{Events: bus}
}

func (w *World) nextID() uint64 {
	w.lastID++
	return w.lastID
}

// NewGroup returns a collision group unused by any earlier call. Group 0
// is the shared default layer and is never returned.
func (w *World) NewGroup() Group {
	return Group(w.nextID())
}

// Add inserts bodies and joints. A joint's bodies must already be in this
// world. Adding an item that is already present is a no-op. Items before
// the first failing one stay added.
func (w *World) Add(items ...Item) error {
	for _, item := range items {
		var err error
		switch it := item.(type) {
		case *Body:
			err = w.addBody(it)
		case *Joint:
			err = w.addJoint(it)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (w *World) addBody(b *Body) error {
	if b.world == w {
		return nil
	}
	if b.world != nil {
		return fmt.Errorf("adding %v: %w", b, ErrForeignItem)
	}

	var index uint32
	if n := len(w.freeBodies); n > 0 {
		index = w.freeBodies[n-1]
		w.freeBodies = w.freeBodies[:n-1]
	} else {
		index = uint32(len(w.bodySlots))
		w.bodySlots = append(w.bodySlots, bodySlot{})
	}
	slot := &w.bodySlots[index]
	slot.generation++
	slot.body = b

	b.handle = BodyHandle{index: index, generation: slot.generation}
	b.world = w
	b.id = w.nextID()
	w.bodyOrder = append(w.bodyOrder, b.handle)

	w.Events.Publish(event.NewBodyEvent(event.BodyAdded, w, b.id))
	return nil
}

func (w *World) addJoint(j *Joint) error {
	if j.world == w {
		return nil
	}
	if j.world != nil {
		return fmt.Errorf("adding %v: %w", j, ErrForeignItem)
	}
	if j.pendingA == nil && j.pendingB == nil {
		return fmt.Errorf("adding %v: %w", j, ErrUnattachedJoint)
	}
	for _, b := range []*Body{j.pendingA, j.pendingB} {
		if b != nil && b.world != w {
			return fmt.Errorf("adding %v with %v: %w", j, b, ErrBodyNotInWorld)
		}
	}

	var index uint32
	if n := len(w.freeJoints); n > 0 {
		index = w.freeJoints[n-1]
		w.freeJoints = w.freeJoints[:n-1]
	} else {
		index = uint32(len(w.jointSlots))
		w.jointSlots = append(w.jointSlots, jointSlot{})
	}
	slot := &w.jointSlots[index]
	slot.generation++
	slot.joint = j

	a, b := j.pendingA, j.pendingB
	if a != nil {
		j.bodyA = a.handle
	}
	if b != nil {
		j.bodyB = b.handle
	}
	j.pendingA, j.pendingB = nil, nil
	j.syncPose(a, b)
	j.handle = JointHandle{index: index, generation: slot.generation}
	j.world = w
	j.id = w.nextID()
	w.jointOrder = append(w.jointOrder, j.handle)

	w.Events.Publish(w.jointEvent(event.JointAdded, j))
	return nil
}

// Remove deletes items from the world. Removing a body first removes every
// joint attached to it. Items not in this world are ignored.
func (w *World) Remove(items ...Item) {
	for _, item := range items {
		switch it := item.(type) {
		case *Body:
			w.removeBody(it)
		case *Joint:
			w.removeJoint(it, event.JointRemoved)
		}
	}
}

func (w *World) removeBody(b *Body) {
	if b.world != w || w.Body(b.handle) != b {
		return
	}
	for _, h := range append([]JointHandle(nil), w.jointOrder...) {
		if j := w.Joint(h); j != nil && j.references(b.handle) {
			w.removeJoint(j, event.JointRemoved)
		}
	}

	h := b.handle
	w.bodySlots[h.index].body = nil
	w.freeBodies = append(w.freeBodies, h.index)
	for i, oh := range w.bodyOrder {
		if oh == h {
			w.bodyOrder = append(w.bodyOrder[:i], w.bodyOrder[i+1:]...)
			break
		}
	}
	w.Events.Publish(event.NewBodyEvent(event.BodyRemoved, w, b.id))

	b.world = nil
	b.handle = BodyHandle{}
}

// removeJoint detaches j, publishing kind (JointRemoved or JointBroken).
// Anchors on removed joints keep their last world positions, and the joint
// keeps its bodies so that adding it again re-checks their membership.
func (w *World) removeJoint(j *Joint, kind event.Type) {
	if j.world != w || w.Joint(j.handle) != j {
		return
	}
	ev := w.jointEvent(kind, j)

	h := j.handle
	w.jointSlots[h.index].joint = nil
	w.freeJoints = append(w.freeJoints, h.index)
	for i, oh := range w.jointOrder {
		if oh == h {
			w.jointOrder = append(w.jointOrder[:i], w.jointOrder[i+1:]...)
			break
		}
	}
	j.pendingA, j.pendingB = w.Body(j.bodyA), w.Body(j.bodyB)
	j.world = nil
	j.handle = JointHandle{}
	j.bodyA, j.bodyB = BodyHandle{}, BodyHandle{}

	w.Events.Publish(ev)
}

func (w *World) jointEvent(kind event.Type, j *Joint) *event.JointEvent {
	var a, b uint64
	if body := w.Body(j.bodyA); body != nil {
		a = body.id
	}
	if body := w.Body(j.bodyB); body != nil {
		b = body.id
	}
	return event.NewJointEvent(kind, w, j.id, a, b, j.CurrentLength())
}

// Body resolves h, returning nil for zero or stale handles.
func (w *World) Body(h BodyHandle) *Body {
	if h.IsZero() || int(h.index) >= len(w.bodySlots) {
		return nil
	}
	slot := w.bodySlots[h.index]
	if slot.generation != h.generation {
		return nil
	}
	return slot.body
}

// Joint resolves h, returning nil for zero or stale handles.
func (w *World) Joint(h JointHandle) *Joint {
	if h.IsZero() || int(h.index) >= len(w.jointSlots) {
		return nil
	}
	slot := w.jointSlots[h.index]
	if slot.generation != h.generation {
		return nil
	}
	return slot.joint
}

// Bodies returns the bodies in insertion order.
func (w *World) Bodies() []*Body {
	out := make([]*Body, 0, len(w.bodyOrder))
	for _, h := range w.bodyOrder {
		out = append(out, w.bodySlots[h.index].body)
	}
	return out
}

// Joints returns the joints in insertion order.
func (w *World) Joints() []*Joint {
	out := make([]*Joint, 0, len(w.jointOrder))
	for _, h := range w.jointOrder {
		out = append(out, w.jointSlots[h.index].joint)
	}
	return out
}

// BodyCount returns the number of bodies in the world.
func (w *World) BodyCount() int { return len(w.bodyOrder) }

// JointCount returns the number of joints in the world.
func (w *World) JointCount() int { return len(w.jointOrder) }

// Clear removes every joint and body.
func (w *World) Clear() {
	for _, j := range w.Joints() {
		w.removeJoint(j, event.JointRemoved)
	}
	for _, b := range w.Bodies() {
		w.removeBody(b)
	}
}

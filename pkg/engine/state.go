package engine

import (
	"fmt"
	"math"

	"github.com/opd-ai/go-walker/pkg/physics"
)

// BodyState is a read-only copy of one body's pose.
type BodyState struct {
	ID       uint64
	Label    string
	Vertices []physics.Vector2D
	Position physics.Vector2D
	Angle    float64
	Static   bool
	AABB     physics.AABB
}

// JointState is a read-only copy of one joint's anchors.
type JointState struct {
	ID     uint64
	Type   physics.JointType
	PointA physics.Vector2D
	PointB physics.Vector2D
}

// State is a consistent snapshot of the world taken between steps.
// Renderers draw from it without holding the simulation lock.
type State struct {
	Tick     uint64
	Status   Status
	Bodies   []BodyState
	Joints   []JointState
	Contacts []physics.Contact
	Stats    physics.Stats
}

// State copies the current world under the read lock.
func (s *Simulation) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bodies := s.World.Bodies()
	joints := s.World.Joints()
	st := State{
		Tick:     s.CurrentTick(),
		Status:   s.Status(),
		Bodies:   make([]BodyState, 0, len(bodies)),
		Joints:   make([]JointState, 0, len(joints)),
		Contacts: s.Engine.Contacts(),
		Stats:    s.Engine.Stats(),
	}
	for _, b := range bodies {
		st.Bodies = append(st.Bodies, BodyState{
			ID:       b.ID(),
			Label:    b.Label,
			Vertices: b.Vertices(),
			Position: b.Position(),
			Angle:    b.Angle(),
			Static:   b.IsStatic(),
			AABB:     b.AABB(),
		})
	}
	for _, j := range joints {
		st.Joints = append(st.Joints, JointState{
			ID:     j.ID(),
			Type:   j.Type(),
			PointA: j.PointA(),
			PointB: j.PointB(),
		})
	}
	return st
}

// Bounds returns the box enclosing every body in the snapshot. ok is false
// for an empty world.
func (st State) Bounds() (box physics.AABB, ok bool) {
	for i, b := range st.Bodies {
		if i == 0 {
			box = b.AABB
			continue
		}
		box.Min.X = math.Min(box.Min.X, b.AABB.Min.X)
		box.Min.Y = math.Min(box.Min.Y, b.AABB.Min.Y)
		box.Max.X = math.Max(box.Max.X, b.AABB.Max.X)
		box.Max.Y = math.Max(box.Max.Y, b.AABB.Max.Y)
	}
	return box, len(st.Bodies) > 0
}

// CheckFinite returns an error naming the first body whose pose is no
// longer finite.
func (s *Simulation) CheckFinite() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.World.Bodies() {
		a := b.Angle()
		if !b.Position().IsFinite() || math.IsNaN(a) || math.IsInf(a, 0) {
			return fmt.Errorf("%v: %w", b, physics.ErrNonFinite)
		}
	}
	return nil
}

// pkg/physics/errors.go
package physics

import (
	"errors"

	"github.com/opd-ai/go-walker/pkg/validation"
)

var (
	// ErrInvalidGeometry is returned for fewer than three vertices, zero
	// area, non-convex outlines, or non-positive dimensions.
	ErrInvalidGeometry = errors.New("invalid geometry")

	// ErrUnattachedJoint is returned when a joint has neither body.
	ErrUnattachedJoint = errors.New("joint has no bodies")

	// ErrMissingAnchor is returned when a body-less side of a joint has no
	// world anchor point.
	ErrMissingAnchor = errors.New("joint side has neither body nor anchor")

	// ErrBodyNotInWorld is returned when a joint is added before one of its
	// bodies.
	ErrBodyNotInWorld = errors.New("body not in world")

	// ErrForeignItem is returned when an item already belongs to another
	// world.
	ErrForeignItem = errors.New("item belongs to another world")

	// ErrNonFinite is returned for NaN or infinite inputs.
	ErrNonFinite = validation.ErrNonFinite
)

// epsilon guards divisions by near-zero quantities during a step.
const epsilon = 1e-9

// minJointLength keeps the joint correction away from division by zero.
const minJointLength = 1e-6

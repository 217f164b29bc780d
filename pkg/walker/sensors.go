package walker

import (
	"math"

	"github.com/opd-ai/go-walker/pkg/physics"
)

// Sensors is what a controller sees of its walker each step.
type Sensors struct {
	// Orientation is the mean part angle wrapped to [0, 2π) and scaled to [0, 1).
	Orientation float64
	// JointAngles are the hinge angles wrapped and scaled like Orientation.
	JointAngles [numHinges]float64
	// JointVelocities are hinge spins divided by the actuation limit, so
	// ±1 is full speed.
	JointVelocities [numHinges]float64
	// Contacts marks the parts whose lowest point is within contact range
	// of the ground's top edge.
	Contacts [numParts]bool
	// Height is the lowest part's distance to the ground scaled by the
	// reference height.
	Height float64
}

// SensorOptions scales raw readings.
type SensorOptions struct {
	GroundTop      float64
	MinContactDist float64
	MaxHeight      float64
	MaxRotation    float64
}

func wrapUnit(angle float64) float64 {
	a := math.Mod(angle, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a / (2 * math.Pi)
}

// Sense reads the walker's current state.
func (wk *Walker) Sense(opts SensorOptions) Sensors {
	var s Sensors

	sum := 0.0
	for _, p := range wk.Parts {
		a := p.Angle()
		if a < 0 {
			a += 2 * math.Pi
		}
		sum += a
	}
	s.Orientation = wrapUnit(sum / numParts)

	for i, h := range wk.Hinges {
		s.JointAngles[i] = wrapUnit(h.Angle())
		if opts.MaxRotation > 0 {
			s.JointVelocities[i] = h.AngularVelocity() / opts.MaxRotation
		}
	}

	lowest := math.Inf(1)
	for i, p := range wk.Parts {
		d := groundDistance(p, opts.GroundTop)
		lowest = math.Min(lowest, d)
		s.Contacts[i] = d <= opts.MinContactDist
	}
	if opts.MaxHeight > 0 {
		s.Height = lowest / opts.MaxHeight
	}
	return s
}

func groundDistance(b *physics.Body, groundTop float64) float64 {
	return math.Abs(b.AABB().Max.Y - groundTop)
}

// Vector flattens s into the order orientation, then angle and velocity
// per hinge, then contacts as 0 or 1, then height.
func (s Sensors) Vector() []float64 {
	v := make([]float64, 0, NumSensors)
	v = append(v, s.Orientation)
	for i := range s.JointAngles {
		v = append(v, s.JointAngles[i], s.JointVelocities[i])
	}
	for _, c := range s.Contacts {
		if c {
			v = append(v, 1)
		} else {
			v = append(v, 0)
		}
	}
	return append(v, s.Height)
}

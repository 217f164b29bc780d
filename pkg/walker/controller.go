package walker

import "math"

// Controller turns sensor readings into one hinge command per hinge, in
// radians per step. Commands beyond the actuation limit are clamped.
type Controller interface {
	Actuate(tick uint64, s Sensors) []float64
}

// ControllerFunc adapts a function to Controller.
type ControllerFunc func(tick uint64, s Sensors) []float64

// Actuate calls f.
func (f ControllerFunc) Actuate(tick uint64, s Sensors) []float64 { return f(tick, s) }

// Gait is an open-loop oscillator: every hinge swings sinusoidally with its
// own phase. It ignores the sensors.
type Gait struct {
	Amplitude float64
	// Period is the cycle length in steps.
	Period float64
	Phases [numHinges]float64
}

// NewGait returns a gait with the hips in antiphase and each knee a
// quarter cycle behind its hip.
func NewGait(amplitude, period float64) Gait {
	return Gait{
		Amplitude: amplitude,
		Period:    period,
		Phases:    [numHinges]float64{0, math.Pi, -math.Pi / 2, math.Pi / 2},
	}
}

// Actuate returns the oscillator value of each hinge at tick.
func (g Gait) Actuate(tick uint64, _ Sensors) []float64 {
	out := make([]float64, numHinges)
	if g.Period <= 0 {
		return out
	}
	w := 2 * math.Pi / g.Period
	for i := range out {
		out[i] = g.Amplitude * math.Sin(w*float64(tick)+g.Phases[i])
	}
	return out
}

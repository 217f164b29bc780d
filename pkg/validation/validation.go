// Package validation checks numeric inputs before they reach the physics
// core. Geometry factories and configuration loading call it; once a value
// has passed, the simulation assumes it stays finite.
package validation

import (
	"errors"
	"fmt"
	"math"
)

// ErrNonFinite is returned for NaN or infinite inputs.
var ErrNonFinite = errors.New("value is not finite")

// ErrOutOfRange is returned when a value falls outside its allowed interval.
var ErrOutOfRange = errors.New("value out of range")

// Finite reports an error naming field if any of values is NaN or ±Inf.
func Finite(field string, values ...float64) error {
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			if len(values) == 1 {
				return fmt.Errorf("%s = %v: %w", field, v, ErrNonFinite)
			}
			return fmt.Errorf("%s[%d] = %v: %w", field, i, v, ErrNonFinite)
		}
	}
	return nil
}

// Positive requires a finite value strictly greater than zero.
func Positive(field string, v float64) error {
	if err := Finite(field, v); err != nil {
		return err
	}
	if v <= 0 {
		return fmt.Errorf("%s = %v must be positive: %w", field, v, ErrOutOfRange)
	}
	return nil
}

// NonNegative requires a finite value greater than or equal to zero.
func NonNegative(field string, v float64) error {
	if err := Finite(field, v); err != nil {
		return err
	}
	if v < 0 {
		return fmt.Errorf("%s = %v cannot be negative: %w", field, v, ErrOutOfRange)
	}
	return nil
}

// InRange requires min <= v <= max.
func InRange(field string, v, min, max float64) error {
	if err := Finite(field, v); err != nil {
		return err
	}
	if v < min || v > max {
		return fmt.Errorf("%s = %v (must be within [%v, %v]): %w", field, v, min, max, ErrOutOfRange)
	}
	return nil
}

// MinCount requires n >= min, for vertex counts, iteration counts and the like.
func MinCount(field string, n, min int) error {
	if n < min {
		return fmt.Errorf("%s = %d (minimum %d): %w", field, n, min, ErrOutOfRange)
	}
	return nil
}

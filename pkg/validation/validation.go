// Package validation checks externally supplied simulation inputs before
// they reach the physics layer.
package validation

import (
	"errors"
	"fmt"
	"math"

	"github.com/opd-ai/go-quadsim/pkg/physics"
)

// Sentinel errors returned (wrapped) by the validators.
var (
	ErrNonFinite      = errors.New("value is not finite")
	ErrOutsideWorld   = errors.New("position outside world")
	ErrInvalidRadius  = errors.New("radius must be positive")
	ErrRadiusTooLarge = errors.New("radius does not fit the world")
	ErrInvalidMargin  = errors.New("margin factor must be positive")
)

// ValidateSpawn validates the parameters of a new body against the world.
// The position is checked against the closed world rectangle; the wall
// clamp in Body.Advance pulls the disc fully inside on the next step.
func ValidateSpawn(world physics.Bounds, position, velocity physics.Vector2D, radius float64) error {
	if !position.IsFinite() {
		return fmt.Errorf("position %v: %w", position, ErrNonFinite)
	}
	if !velocity.IsFinite() {
		return fmt.Errorf("velocity %v: %w", velocity, ErrNonFinite)
	}
	if math.IsNaN(radius) || math.IsInf(radius, 0) {
		return fmt.Errorf("radius %v: %w", radius, ErrNonFinite)
	}
	if radius <= 0 {
		return fmt.Errorf("radius %v: %w", radius, ErrInvalidRadius)
	}
	if 2*radius > math.Min(world.Width, world.Height) {
		return fmt.Errorf("radius %v in %vx%v world: %w", radius, world.Width, world.Height, ErrRadiusTooLarge)
	}
	if !world.Contains(position) {
		return fmt.Errorf("position (%.2f, %.2f): %w", position.X, position.Y, ErrOutsideWorld)
	}
	return nil
}

// ValidateMarginFactor validates the indexed query window scale.
func ValidateMarginFactor(factor float64) error {
	if math.IsNaN(factor) || math.IsInf(factor, 0) {
		return fmt.Errorf("margin factor %v: %w", factor, ErrNonFinite)
	}
	if factor <= 0 {
		return fmt.Errorf("margin factor %v: %w", factor, ErrInvalidMargin)
	}
	return nil
}

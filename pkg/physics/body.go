// pkg/physics/body.go
package physics

import (
	"errors"
	"fmt"
	"image/color"
	"math"
)

// ErrInvalidRadius is returned when a body is built with a radius that is
// not a positive finite number.
var ErrInvalidRadius = errors.New("radius must be positive and finite")

// BodyID identifies a body for the lifetime of a simulation. IDs are never
// reused, so ordering by ID gives a stable pair ordering.
type BodyID uint64

// Body is a circular point mass moving freely inside a rectangular world.
type Body struct {
	ID       BodyID
	Position Vector2D
	Velocity Vector2D
	Color    color.RGBA

	radius float64
}

// NewBody creates a body. The radius cannot change afterwards.
func NewBody(id BodyID, position, velocity Vector2D, radius float64, c color.RGBA) (*Body, error) {
	if radius <= 0 || math.IsNaN(radius) || math.IsInf(radius, 0) {
		return nil, fmt.Errorf("body %d: %w (got %v)", id, ErrInvalidRadius, radius)
	}
	return &Body{
		ID:       id,
		Position: position,
		Velocity: velocity,
		Color:    c,
		radius:   radius,
	}, nil
}

// Radius returns the body's radius.
func (b *Body) Radius() float64 {
	return b.radius
}

// Mass returns radius cubed, the mass of a uniform-density sphere up to a
// constant factor.
func (b *Body) Mass() float64 {
	return b.radius * b.radius * b.radius
}

// Circle returns the body's collision shape at its current position.
func (b *Body) Circle() Circle {
	return Circle{Center: b.Position, Radius: b.radius}
}

// Advance integrates the position over dt and reflects the body off the
// walls of a worldWidth×worldHeight world anchored at the origin. Each axis
// is corrected on its own, so a corner hit flips both components.
func (b *Body) Advance(dt, worldWidth, worldHeight float64) {
	b.Position = b.Position.Add(b.Velocity.Scale(dt))

	b.Position.X, b.Velocity.X = reflectAxis(b.Position.X, b.Velocity.X, b.radius, worldWidth)
	b.Position.Y, b.Velocity.Y = reflectAxis(b.Position.Y, b.Velocity.Y, b.radius, worldHeight)
}

// reflectAxis clamps pos so [pos-r, pos+r] stays inside [0, limit] and
// negates vel when a wall was crossed. Restitution is 1.
func reflectAxis(pos, vel, r, limit float64) (float64, float64) {
	if pos-r < 0 {
		pos = r
		vel = -vel
	}
	if pos+r > limit {
		pos = limit - r
		vel = -vel
	}
	return pos, vel
}

// pkg/physics/collision.go
package physics

// Circle represents a circular collision shape
type Circle struct {
	Center Vector2D
	Radius float64
}

// Collides checks if two circles overlap. Circles that only touch do not.
func (c Circle) Collides(other Circle) bool {
	return c.Center.Distance(other.Center) < c.Radius+other.Radius
}

// Overlaps reports whether two bodies interpenetrate.
func Overlaps(a, b *Body) bool {
	return a.Circle().Collides(b.Circle())
}

// Resolution describes what Resolve did with a pair.
type Resolution int

const (
	// ResolutionApplied means the impulse and the overlap correction ran.
	ResolutionApplied Resolution = iota
	// ResolutionSeparating means the bodies were already moving apart.
	ResolutionSeparating
	// ResolutionDegenerate means the centers coincide and no normal exists.
	ResolutionDegenerate
)

func (r Resolution) String() string {
	switch r {
	case ResolutionApplied:
		return "applied"
	case ResolutionSeparating:
		return "separating"
	case ResolutionDegenerate:
		return "degenerate"
	default:
		return "unknown"
	}
}

// Resolve applies an elastic, mass-weighted impulse along the line of
// centers and pushes overlapping bodies apart by half the overlap each.
//
// Coincident centers are left untouched. Pairs whose normal relative
// velocity is positive are separating and are also left untouched,
// including their positions.
func Resolve(a, b *Body) Resolution {
	delta := b.Position.Sub(a.Position)
	distance := delta.Length()
	if distance == 0 {
		return ResolutionDegenerate
	}

	normal := delta.Scale(1 / distance)

	vn := b.Velocity.Sub(a.Velocity).Dot(normal)
	if vn > 0 {
		return ResolutionSeparating
	}

	m1, m2 := a.Mass(), b.Mass()
	impulse := 2 * vn / (m1 + m2)

	a.Velocity = a.Velocity.Add(normal.Scale(impulse * m2))
	b.Velocity = b.Velocity.Sub(normal.Scale(impulse * m1))

	if overlap := a.radius + b.radius - distance; overlap > 0 {
		separation := normal.Scale(overlap * 0.5)
		a.Position = a.Position.Sub(separation)
		b.Position = b.Position.Add(separation)
	}

	return ResolutionApplied
}

// pkg/physics/bounds.go
package physics

// Bounds is an axis-aligned rectangle anchored at its top-left corner.
// It serves both as a quadtree node region and as a query window.
type Bounds struct {
	Origin Vector2D
	Width  float64
	Height float64
}

// NewBounds creates a rectangle with origin (x, y) and size w×h.
func NewBounds(x, y, w, h float64) Bounds {
	return Bounds{Origin: Vector2D{X: x, Y: y}, Width: w, Height: h}
}

// CenteredBounds creates a window around center extending halfWidth and
// halfHeight in each direction.
func CenteredBounds(center Vector2D, halfWidth, halfHeight float64) Bounds {
	return Bounds{
		Origin: Vector2D{X: center.X - halfWidth, Y: center.Y - halfHeight},
		Width:  halfWidth * 2,
		Height: halfHeight * 2,
	}
}

// Max returns the corner opposite Origin.
func (b Bounds) Max() Vector2D {
	return Vector2D{X: b.Origin.X + b.Width, Y: b.Origin.Y + b.Height}
}

// Contains reports whether p lies in the closed rectangle. Points on an
// edge are inside, so a point on a line shared by two adjacent rectangles
// is contained by both.
func (b Bounds) Contains(p Vector2D) bool {
	return p.X >= b.Origin.X && p.X <= b.Origin.X+b.Width &&
		p.Y >= b.Origin.Y && p.Y <= b.Origin.Y+b.Height
}

// Intersects reports whether the rectangles share any point. Only a strict
// separation along one axis counts as disjoint; touching edges intersect.
func (b Bounds) Intersects(other Bounds) bool {
	return !(other.Origin.X > b.Origin.X+b.Width ||
		other.Origin.X+other.Width < b.Origin.X ||
		other.Origin.Y > b.Origin.Y+b.Height ||
		other.Origin.Y+other.Height < b.Origin.Y)
}

// Quadrants splits b into four equal quarters ordered NW, NE, SW, SE.
func (b Bounds) Quadrants() [4]Bounds {
	x, y := b.Origin.X, b.Origin.Y
	w, h := b.Width/2, b.Height/2

	return [4]Bounds{
		NewBounds(x, y, w, h),
		NewBounds(x+w, y, w, h),
		NewBounds(x, y+h, w, h),
		NewBounds(x+w, y+h, w, h),
	}
}

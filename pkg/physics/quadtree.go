// pkg/physics/quadtree.go
package physics

const (
	// DefaultCapacity is the number of bodies a node holds before it splits.
	DefaultCapacity = 4
	// DefaultMaxDepth bounds subdivision when many bodies share a point.
	DefaultMaxDepth = 12
)

// QuadTree for spatial partitioning of bodies.
//
// A tree is rebuilt each frame, either new or after Clear, and holds
// borrowed pointers into the caller's body slice; it must not be used after
// those bodies are mutated by the next frame's kinematic update.
type QuadTree struct {
	Boundary  Bounds
	Capacity  int
	MaxDepth  int
	Bodies    []*Body
	Divided   bool
	NorthWest *QuadTree
	NorthEast *QuadTree
	SouthWest *QuadTree
	SouthEast *QuadTree

	depth int
}

// NewQuadTree creates an empty root covering boundary. Non-positive
// capacity or maxDepth fall back to the package defaults.
func NewQuadTree(boundary Bounds, capacity, maxDepth int) *QuadTree {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return newNode(boundary, capacity, maxDepth, 0)
}

func newNode(boundary Bounds, capacity, maxDepth, depth int) *QuadTree {
	return &QuadTree{
		Boundary: boundary,
		Capacity: capacity,
		MaxDepth: maxDepth,
		Bodies:   make([]*Body, 0, capacity),
		depth:    depth,
	}
}

// Depth returns the node's distance from the root.
func (qt *QuadTree) Depth() int {
	return qt.depth
}

// Insert places body in the first node along the containment path with
// spare capacity, trying children in NW, NE, SW, SE order. It returns false
// if the body's position is outside the boundary, or if no child accepts it
// after subdivision.
//
// A node at MaxDepth, or one whose region can no longer be halved, keeps
// bodies beyond Capacity instead of splitting.
func (qt *QuadTree) Insert(body *Body) bool {
	if !qt.Boundary.Contains(body.Position) {
		return false
	}

	if len(qt.Bodies) < qt.Capacity {
		qt.Bodies = append(qt.Bodies, body)
		return true
	}

	if !qt.Divided && !qt.canSubdivide() {
		qt.Bodies = append(qt.Bodies, body)
		return true
	}

	qt.Subdivide()

	return qt.NorthWest.Insert(body) ||
		qt.NorthEast.Insert(body) ||
		qt.SouthWest.Insert(body) ||
		qt.SouthEast.Insert(body)
}

func (qt *QuadTree) canSubdivide() bool {
	return qt.depth < qt.MaxDepth &&
		qt.Boundary.Width/2 > 0 &&
		qt.Boundary.Height/2 > 0
}

// Subdivide splits the node into four quadrants. Calling it again is a no-op.
func (qt *QuadTree) Subdivide() {
	if qt.Divided {
		return
	}

	q := qt.Boundary.Quadrants()
	depth := qt.depth + 1

	qt.NorthWest = newNode(q[0], qt.Capacity, qt.MaxDepth, depth)
	qt.NorthEast = newNode(q[1], qt.Capacity, qt.MaxDepth, depth)
	qt.SouthWest = newNode(q[2], qt.Capacity, qt.MaxDepth, depth)
	qt.SouthEast = newNode(q[3], qt.Capacity, qt.MaxDepth, depth)
	qt.Divided = true
}

// Query appends to found every body whose position lies in window and
// returns the extended slice. Each body is stored in exactly one node, so
// the result holds no duplicates.
func (qt *QuadTree) Query(window Bounds, found []*Body) []*Body {
	if !qt.Boundary.Intersects(window) {
		return found
	}

	for _, body := range qt.Bodies {
		if window.Contains(body.Position) {
			found = append(found, body)
		}
	}

	if !qt.Divided {
		return found
	}

	found = qt.NorthWest.Query(window, found)
	found = qt.NorthEast.Query(window, found)
	found = qt.SouthWest.Query(window, found)
	found = qt.SouthEast.Query(window, found)

	return found
}

// Len returns the number of bodies stored in the subtree.
func (qt *QuadTree) Len() int {
	n := len(qt.Bodies)
	if qt.Divided {
		n += qt.NorthWest.Len() + qt.NorthEast.Len() + qt.SouthWest.Len() + qt.SouthEast.Len()
	}
	return n
}

// Walk visits every node region in pre-order.
func (qt *QuadTree) Walk(fn func(region Bounds, depth int)) {
	fn(qt.Boundary, qt.depth)
	if !qt.Divided {
		return
	}
	qt.NorthWest.Walk(fn)
	qt.NorthEast.Walk(fn)
	qt.SouthWest.Walk(fn)
	qt.SouthEast.Walk(fn)
}

// Clear drops all bodies and children, leaving an empty leaf ready for the
// next Build.
func (qt *QuadTree) Clear() {
	qt.Bodies = qt.Bodies[:0]
	qt.Divided = false
	qt.NorthWest = nil
	qt.NorthEast = nil
	qt.SouthWest = nil
	qt.SouthEast = nil
}

// BuildReport summarizes a bulk insert.
type BuildReport struct {
	Inserted int
	// OutOfBounds holds bodies whose position was outside the root boundary.
	OutOfBounds []BodyID
	// Unresolved holds bodies inside the root that no leaf accepted, which
	// only happens when halved boundaries lose precision.
	Unresolved []BodyID
}

// Dropped returns how many bodies were left out of the tree.
func (r BuildReport) Dropped() int {
	return len(r.OutOfBounds) + len(r.Unresolved)
}

// Build inserts all bodies, classifying the ones that could not be placed.
func (qt *QuadTree) Build(bodies []*Body) BuildReport {
	var report BuildReport
	for _, body := range bodies {
		switch {
		case qt.Insert(body):
			report.Inserted++
		case !qt.Boundary.Contains(body.Position):
			report.OutOfBounds = append(report.OutOfBounds, body.ID)
		default:
			report.Unresolved = append(report.Unresolved, body.ID)
		}
	}
	return report
}

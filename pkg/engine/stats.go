// pkg/engine/stats.go
package engine

// FrameStats describes the work done by one frame.
type FrameStats struct {
	Frame               uint64
	Strategy            Strategy
	ChecksPerformed     int
	CollisionsThisFrame int
	// DegenerateSkipped counts overlapping pairs with coincident centers,
	// which have no contact normal and are left untouched.
	DegenerateSkipped int
	IndexedBodies     int
	DroppedBodies     int
}

// Totals accumulates collisions since the last reset.
type Totals struct {
	Indexed    int
	BruteForce int
	All        int
}

// Add folds a frame's collisions into the running totals.
func (t *Totals) Add(stats FrameStats) {
	switch stats.Strategy {
	case Indexed:
		t.Indexed += stats.CollisionsThisFrame
	case BruteForce:
		t.BruteForce += stats.CollisionsThisFrame
	}
	t.All += stats.CollisionsThisFrame
}

// For returns the total recorded under a strategy.
func (t Totals) For(s Strategy) int {
	if s == Indexed {
		return t.Indexed
	}
	return t.BruteForce
}

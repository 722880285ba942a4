// pkg/engine/detector.go
package engine

import (
	"github.com/opd-ai/go-quadsim/pkg/physics"
)

// DefaultMarginFactor scales a body's radius into the half-width of the
// window used to query the index.
const DefaultMarginFactor = 3.0

// CollisionFunc is called once for every overlapping pair after it was
// resolved. It may be nil.
type CollisionFunc func(a, b *physics.Body, resolution physics.Resolution)

// Detector finds and resolves overlapping pairs for one frame.
type Detector interface {
	Strategy() Strategy
	Detect(bodies []*physics.Body, index *physics.QuadTree, onCollision CollisionFunc) FrameStats
}

// NewDetector returns the detector for a strategy. A non-positive margin
// falls back to DefaultMarginFactor.
func NewDetector(strategy Strategy, marginFactor float64) Detector {
	if strategy == Indexed {
		return NewIndexedDetector(marginFactor)
	}
	return &BruteForceDetector{}
}

// BruteForceDetector tests every unordered pair once. It ignores the index.
type BruteForceDetector struct{}

// Strategy returns BruteForce.
func (d *BruteForceDetector) Strategy() Strategy {
	return BruteForce
}

// Detect checks n(n-1)/2 pairs.
func (d *BruteForceDetector) Detect(bodies []*physics.Body, _ *physics.QuadTree, onCollision CollisionFunc) FrameStats {
	stats := FrameStats{Strategy: BruteForce}
	for i := 0; i < len(bodies); i++ {
		for j := i + 1; j < len(bodies); j++ {
			checkPair(bodies[i], bodies[j], &stats, onCollision)
		}
	}
	return stats
}

// IndexedDetector queries the index with a square window around each
// body. Bodies far larger than MarginFactor times the querying body's
// radius, or moving fast enough to tunnel, can be missed.
type IndexedDetector struct {
	MarginFactor float64

	candidates []*physics.Body
}

// NewIndexedDetector creates an indexed detector.
func NewIndexedDetector(marginFactor float64) *IndexedDetector {
	if marginFactor <= 0 {
		marginFactor = DefaultMarginFactor
	}
	return &IndexedDetector{MarginFactor: marginFactor}
}

// Strategy returns Indexed.
func (d *IndexedDetector) Strategy() Strategy {
	return Indexed
}

// Detect processes each candidate pair once, from the body with the lower
// ID. A nil index yields no checks.
func (d *IndexedDetector) Detect(bodies []*physics.Body, index *physics.QuadTree, onCollision CollisionFunc) FrameStats {
	stats := FrameStats{Strategy: Indexed}
	if index == nil {
		return stats
	}

	for _, body := range bodies {
		half := d.MarginFactor * body.Radius()
		window := physics.CenteredBounds(body.Position, half, half)

		d.candidates = index.Query(window, d.candidates[:0])
		for _, other := range d.candidates {
			if other.ID <= body.ID {
				continue
			}
			checkPair(body, other, &stats, onCollision)
		}
	}

	clear(d.candidates)
	d.candidates = d.candidates[:0]
	return stats
}

// checkPair counts a check and resolves the pair if it overlaps.
func checkPair(a, b *physics.Body, stats *FrameStats, onCollision CollisionFunc) {
	stats.ChecksPerformed++
	if !physics.Overlaps(a, b) {
		return
	}

	stats.CollisionsThisFrame++
	resolution := physics.Resolve(a, b)
	if resolution == physics.ResolutionDegenerate {
		stats.DegenerateSkipped++
	}
	if onCollision != nil {
		onCollision(a, b, resolution)
	}
}

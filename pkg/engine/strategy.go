// pkg/engine/strategy.go
package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/opd-ai/go-quadsim/pkg/config"
)

// ErrUnknownStrategy is returned by ParseStrategy for unrecognised names.
var ErrUnknownStrategy = errors.New("unknown detection strategy")

// Strategy selects how candidate pairs are found each frame.
type Strategy int

const (
	// BruteForce tests every unordered pair.
	BruteForce Strategy = iota
	// Indexed queries the quadtree around each body.
	Indexed
)

// String returns the configuration name of the strategy.
func (s Strategy) String() string {
	switch s {
	case BruteForce:
		return config.StrategyBruteForce
	case Indexed:
		return config.StrategyQuadtree
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// Toggle returns the other strategy.
func (s Strategy) Toggle() Strategy {
	if s == Indexed {
		return BruteForce
	}
	return Indexed
}

// ParseStrategy converts a strategy name into a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case config.StrategyQuadtree, "indexed":
		return Indexed, nil
	case config.StrategyBruteForce, "bruteforce", "brute":
		return BruteForce, nil
	default:
		return BruteForce, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}

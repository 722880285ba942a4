// pkg/config/config.go
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Detection strategy names accepted in configuration.
const (
	StrategyQuadtree   = "quadtree"
	StrategyBruteForce = "brute-force"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// SimConfig contains configuration for a simulation run
type SimConfig struct {
	World     WorldConfig     `json:"world" yaml:"world"`
	Index     IndexConfig     `json:"index" yaml:"index"`
	Detection DetectionConfig `json:"detection" yaml:"detection"`
	Spawn     SpawnConfig     `json:"spawn" yaml:"spawn"`
	Seed      SeedConfig      `json:"seed" yaml:"seed"`
	Frame     FrameConfig     `json:"frame" yaml:"frame"`
}

// WorldConfig is the size of the walled world; its origin is (0, 0).
type WorldConfig struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// IndexConfig tunes the quadtree.
type IndexConfig struct {
	Capacity int `json:"capacity" yaml:"capacity"`
	MaxDepth int `json:"maxDepth" yaml:"maxDepth"`
}

// DetectionConfig selects the collision strategy. MarginFactor scales a
// body's radius into the half-width of its indexed query window.
type DetectionConfig struct {
	Strategy     string  `json:"strategy" yaml:"strategy"`
	MarginFactor float64 `json:"marginFactor" yaml:"marginFactor"`
}

// SpawnConfig describes bodies created by SpawnRandom. X and Y both zero
// means top-center of the world.
type SpawnConfig struct {
	X         float64 `json:"x" yaml:"x"`
	Y         float64 `json:"y" yaml:"y"`
	MinRadius float64 `json:"minRadius" yaml:"minRadius"`
	MaxRadius float64 `json:"maxRadius" yaml:"maxRadius"`
	MinSpeed  float64 `json:"minSpeed" yaml:"minSpeed"`
	MaxSpeed  float64 `json:"maxSpeed" yaml:"maxSpeed"`
}

// SeedConfig controls initial bodies and the random source. RandomSeed 0
// seeds from the clock.
type SeedConfig struct {
	Count      int    `json:"count" yaml:"count"`
	RandomSeed uint64 `json:"randomSeed" yaml:"randomSeed"`
}

// FrameConfig bounds the frame step.
type FrameConfig struct {
	MaxDeltaTime float64 `json:"maxDeltaTime" yaml:"maxDeltaTime"`
	TargetFPS    int     `json:"targetFPS" yaml:"targetFPS"`
}

// DefaultConfig returns the default simulation configuration
func DefaultConfig() *SimConfig {
	return &SimConfig{
		World: WorldConfig{
			Width:  1200,
			Height: 800,
		},
		Index: IndexConfig{
			Capacity: 4,
			MaxDepth: 12,
		},
		Detection: DetectionConfig{
			Strategy:     StrategyQuadtree,
			MarginFactor: 3,
		},
		Spawn: SpawnConfig{
			MinRadius: 10,
			MaxRadius: 40,
			MinSpeed:  200,
			MaxSpeed:  500,
		},
		Frame: FrameConfig{
			MaxDeltaTime: 0.1,
			TargetFPS:    60,
		},
	}
}

// SpawnPoint returns where SpawnRandom places new bodies.
func (c *SimConfig) SpawnPoint() (float64, float64) {
	if c.Spawn.X == 0 && c.Spawn.Y == 0 {
		return c.World.Width / 2, math.Min(50, c.World.Height/2)
	}
	return c.Spawn.X, c.Spawn.Y
}

// LoadConfig reads a configuration file on top of DefaultConfig. Files
// ending in .yaml or .yml are parsed as YAML, anything else as JSON.
func LoadConfig(path string) (*SimConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if isYAML(path) {
		err = yaml.Unmarshal(data, config)
	} else {
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return config, nil
}

// SaveConfig saves a configuration to a file, choosing the format by extension.
func SaveConfig(config *SimConfig, path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(config)
	} else {
		data, err = json.MarshalIndent(config, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// Validate checks every field and returns the first problem found.
func (c *SimConfig) Validate() error {
	switch {
	case !positive(c.World.Width) || !positive(c.World.Height):
		return invalid("world size must be positive, got %vx%v", c.World.Width, c.World.Height)
	case c.Index.Capacity < 1:
		return invalid("index capacity must be at least 1, got %d", c.Index.Capacity)
	case c.Index.MaxDepth < 1:
		return invalid("index max depth must be at least 1, got %d", c.Index.MaxDepth)
	case c.Detection.Strategy != StrategyQuadtree && c.Detection.Strategy != StrategyBruteForce:
		return invalid("unknown strategy %q", c.Detection.Strategy)
	case !positive(c.Detection.MarginFactor):
		return invalid("margin factor must be positive, got %v", c.Detection.MarginFactor)
	case !finite(c.Spawn.X) || !finite(c.Spawn.Y):
		return invalid("spawn point (%v, %v) is not finite", c.Spawn.X, c.Spawn.Y)
	case !positive(c.Spawn.MinRadius) || !positive(c.Spawn.MaxRadius) || c.Spawn.MaxRadius < c.Spawn.MinRadius:
		return invalid("spawn radius range [%v, %v) is invalid", c.Spawn.MinRadius, c.Spawn.MaxRadius)
	case c.Spawn.MaxRadius > math.Min(c.World.Width, c.World.Height)/2:
		return invalid("spawn max radius %v does not fit the world", c.Spawn.MaxRadius)
	case !finite(c.Spawn.MinSpeed) || !finite(c.Spawn.MaxSpeed) ||
		c.Spawn.MinSpeed < 0 || c.Spawn.MaxSpeed < c.Spawn.MinSpeed:
		return invalid("spawn speed range [%v, %v) is invalid", c.Spawn.MinSpeed, c.Spawn.MaxSpeed)
	case c.Seed.Count < 0:
		return invalid("seed count must not be negative, got %d", c.Seed.Count)
	case !positive(c.Frame.MaxDeltaTime):
		return invalid("max delta time must be positive, got %v", c.Frame.MaxDeltaTime)
	case c.Frame.TargetFPS < 1:
		return invalid("target FPS must be at least 1, got %d", c.Frame.TargetFPS)
	}
	return nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// pkg/render/hud.go
package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/opd-ai/go-quadsim/pkg/engine"
)

// HUD is the information panel shown over the simulation.
type HUD struct {
	Strategy  engine.Strategy
	Bodies    int
	FPS       int
	Stats     engine.FrameStats
	Totals    engine.Totals
	ShowIndex bool
}

// Simulation state the HUD is built from.
type hudSource interface {
	Strategy() engine.Strategy
	BodyCount() int
	LastStats() engine.FrameStats
	Totals() engine.Totals
}

// NewHUD captures the current state of sim.
func NewHUD(sim hudSource, fps int, showIndex bool) HUD {
	return HUD{
		Strategy:  sim.Strategy(),
		Bodies:    sim.BodyCount(),
		FPS:       fps,
		Stats:     sim.LastStats(),
		Totals:    sim.Totals(),
		ShowIndex: showIndex,
	}
}

// FPSFromDelta converts a frame time in seconds to whole frames per second.
func FPSFromDelta(dt float64) int {
	if dt <= 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return 0
	}
	return int(1 / dt)
}

func algorithmLabel(s engine.Strategy) string {
	if s == engine.Indexed {
		return "QUADTREE"
	}
	return "BRUTE FORCE"
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// Lines returns the full panel, one entry per line.
func (h HUD) Lines() []string {
	return []string{
		"=== PARTICLE SIMULATION ===",
		"",
		"Algorithm: " + algorithmLabel(h.Strategy),
		fmt.Sprintf("Particles: %d", h.Bodies),
		fmt.Sprintf("FPS: %d", h.FPS),
		"",
		"--- Per Frame ---",
		fmt.Sprintf("Checks: %d", h.Stats.ChecksPerformed),
		fmt.Sprintf("Collisions: %d", h.Stats.CollisionsThisFrame),
		"",
		"--- Total Collisions ---",
		fmt.Sprintf("Quadtree: %d", h.Totals.Indexed),
		fmt.Sprintf("Brute Force: %d", h.Totals.BruteForce),
		fmt.Sprintf("Total: %d", h.Totals.All),
		"",
		"[SPACE] Add Particle",
		"[Q] Toggle Algorithm",
		"[V] Quadtree Overlay (" + onOff(h.ShowIndex) + ")",
		"[R] Reset (Remove All)",
	}
}

// String joins Lines with newlines.
func (h HUD) String() string {
	return strings.Join(h.Lines(), "\n")
}

// Compact returns a three line summary for small displays.
func (h HUD) Compact() []string {
	return []string{
		fmt.Sprintf("Algorithm: %s | Particles: %d | FPS: %d", algorithmLabel(h.Strategy), h.Bodies, h.FPS),
		fmt.Sprintf("Frame checks: %d collisions: %d | Totals quadtree: %d brute force: %d total: %d",
			h.Stats.ChecksPerformed, h.Stats.CollisionsThisFrame, h.Totals.Indexed, h.Totals.BruteForce, h.Totals.All),
		"[SPACE] add  [Q] algorithm  [V] overlay (" + onOff(h.ShowIndex) + ")  [R] reset  [ESC] quit",
	}
}

package render

import (
	"math"
	"strings"
	"testing"

	"github.com/opd-ai/go-quadsim/pkg/engine"
)

func TestHUD_Lines(t *testing.T) {
	hud := HUD{
		Strategy: engine.BruteForce,
		Bodies:   12,
		FPS:      59,
		Stats:    engine.FrameStats{ChecksPerformed: 66, CollisionsThisFrame: 2},
		Totals:   engine.Totals{Indexed: 10, BruteForce: 3, All: 13},
	}

	text := hud.String()
	for _, want := range []string{
		"Algorithm: BRUTE FORCE",
		"Particles: 12",
		"FPS: 59",
		"Checks: 66",
		"Collisions: 2",
		"Quadtree: 10",
		"Brute Force: 3",
		"Total: 13",
		"[V] Quadtree Overlay (off)",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("HUD missing %q:\n%s", want, text)
		}
	}

	hud.Strategy = engine.Indexed
	hud.ShowIndex = true
	lines := hud.Lines()
	if lines[2] != "Algorithm: QUADTREE" {
		t.Errorf("lines[2] = %q", lines[2])
	}
	if !strings.Contains(hud.String(), "Overlay (on)") {
		t.Error("overlay state not shown")
	}
}

func TestHUD_Compact(t *testing.T) {
	hud := HUD{Strategy: engine.Indexed, Bodies: 3, Totals: engine.Totals{All: 7}}
	lines := hud.Compact()
	if len(lines) != hudRows {
		t.Fatalf("expected %d lines, got %d", hudRows, len(lines))
	}
	if !strings.HasPrefix(lines[0], "Algorithm: QUADTREE | Particles: 3") {
		t.Errorf("lines[0] = %q", lines[0])
	}
	if !strings.Contains(lines[1], "total: 7") {
		t.Errorf("lines[1] = %q", lines[1])
	}
}

func TestFPSFromDelta(t *testing.T) {
	tests := []struct {
		dt   float64
		want int
	}{
		{1.0 / 60.0, 60},
		{0.5, 2},
		{0, 0},
		{-1, 0},
		{math.NaN(), 0},
	}
	for _, tt := range tests {
		if got := FPSFromDelta(tt.dt); got != tt.want {
			t.Errorf("FPSFromDelta(%v) = %d, want %d", tt.dt, got, tt.want)
		}
	}
}

// pkg/render/renderer.go
package render

import (
	"context"

	"github.com/opd-ai/go-quadsim/pkg/engine"
	"github.com/opd-ai/go-quadsim/pkg/logging"
	"github.com/opd-ai/go-quadsim/pkg/physics"
)

// Renderer draws one frame of the simulation.
type Renderer interface {
	Clear()
	DrawBody(body engine.BodyView)
	DrawRegion(region physics.Bounds, depth int)
	DrawHUD(hud HUD)
	Present()
}

// FrameSource is the read-only view of a simulation needed to draw it.
type FrameSource interface {
	Bodies() []engine.BodyView
	WalkRegions(fn func(region physics.Bounds, depth int))
}

// DrawFrame draws the index overlay (when hud.ShowIndex is set), every
// body and the HUD, then presents the frame.
func DrawFrame(r Renderer, src FrameSource, hud HUD) {
	r.Clear()
	if hud.ShowIndex {
		src.WalkRegions(r.DrawRegion)
	}
	for _, body := range src.Bodies() {
		r.DrawBody(body)
	}
	r.DrawHUD(hud)
	r.Present()
}

// NullRenderer draws nothing and logs every call at debug level. It backs
// headless runs.
type NullRenderer struct {
	logger *logging.Logger
	frames int
}

// NewNullRenderer creates a new NullRenderer with structured logging. A nil
// logger writes JSON to stdout.
func NewNullRenderer(logger *logging.Logger) *NullRenderer {
	if logger == nil {
		logger = logging.NewLogger()
	}
	return &NullRenderer{logger: logger}
}

// Frames returns how many frames were presented.
func (d *NullRenderer) Frames() int {
	return d.frames
}

// Clear implements Renderer.
func (d *NullRenderer) Clear() {
	ctx := context.Background()
	d.logger.Debug(ctx, "Clear called")
}

// DrawBody implements Renderer.
func (d *NullRenderer) DrawBody(body engine.BodyView) {
	ctx := context.Background()
	if !d.logger.DebugEnabled(ctx) {
		return
	}
	d.logger.Debug(ctx, "DrawBody called",
		"body_id", body.ID,
		"x", body.Position.X,
		"y", body.Position.Y,
		"radius", body.Radius,
	)
}

// DrawRegion implements Renderer.
func (d *NullRenderer) DrawRegion(region physics.Bounds, depth int) {
	ctx := context.Background()
	if !d.logger.DebugEnabled(ctx) {
		return
	}
	d.logger.Debug(ctx, "DrawRegion called",
		"x", region.Origin.X,
		"y", region.Origin.Y,
		"width", region.Width,
		"height", region.Height,
		"depth", depth,
	)
}

// DrawHUD implements Renderer.
func (d *NullRenderer) DrawHUD(hud HUD) {
	ctx := context.Background()
	d.logger.Debug(ctx, "DrawHUD called",
		"strategy", hud.Strategy.String(),
		"bodies", hud.Bodies,
		"checks", hud.Stats.ChecksPerformed,
		"collisions", hud.Stats.CollisionsThisFrame,
	)
}

// Present implements Renderer.
func (d *NullRenderer) Present() {
	d.frames++
	ctx := context.Background()
	d.logger.Debug(ctx, "Present called", "frame", d.frames)
}

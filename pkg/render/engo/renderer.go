// pkg/render/engo/renderer.go
package engo

import (
	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-quadsim/pkg/engine"
	"github.com/opd-ai/go-quadsim/pkg/physics"
	"github.com/opd-ai/go-quadsim/pkg/render"
)

// Draw order, back to front.
const (
	zRegion float32 = 1
	zBody   float32 = 2
	zHUD    float32 = 10
)

// spriteSystem is the part of common.RenderSystem the renderer needs.
type spriteSystem interface {
	Add(basic *ecs.BasicEntity, render *common.RenderComponent, space *common.SpaceComponent)
	Remove(basic ecs.BasicEntity)
}

// sprite is an entity drawn by the render system.
type sprite struct {
	ecs.BasicEntity
	common.RenderComponent
	common.SpaceComponent
}

func newSprite(drawable common.Drawable, z float32) *sprite {
	s := &sprite{
		BasicEntity:     ecs.NewBasic(),
		RenderComponent: common.RenderComponent{Drawable: drawable, Color: defaultBodyColor},
	}
	s.SetZIndex(z)
	return s
}

// EngoRenderer implements render.Renderer on an engo render system. It keeps
// one entity per body, reuses overlay rectangles between frames and
// removes entities of bodies that were not drawn.
type EngoRenderer struct {
	system spriteSystem
	scaleX float32
	scaleY float32

	bodies      map[physics.BodyID]*sprite
	drawn       map[physics.BodyID]bool
	regions     []*sprite
	regionsUsed int
	hud         *hudOverlay
}

// NewEngoRenderer creates a renderer that maps world onto a screen of
// screenWidth×screenHeight. font may be nil, in which case no HUD is drawn.
func NewEngoRenderer(system spriteSystem, world physics.Bounds, screenWidth, screenHeight float32, font *common.Font) *EngoRenderer {
	r := &EngoRenderer{
		system: system,
		scaleX: 1,
		scaleY: 1,
		bodies: make(map[physics.BodyID]*sprite),
		drawn:  make(map[physics.BodyID]bool),
	}
	if world.Width > 0 && world.Height > 0 && screenWidth > 0 && screenHeight > 0 {
		r.scaleX = screenWidth / float32(world.Width)
		r.scaleY = screenHeight / float32(world.Height)
	}
	if font != nil {
		r.hud = newHUDOverlay(system, font)
	}
	return r
}

// worldToScreen converts world coordinates to screen coordinates
func (r *EngoRenderer) worldToScreen(pos physics.Vector2D) engo.Point {
	return engo.Point{X: float32(pos.X) * r.scaleX, Y: float32(pos.Y) * r.scaleY}
}

// Clear implements render.Renderer.
func (r *EngoRenderer) Clear() {
	clear(r.drawn)
	r.regionsUsed = 0
}

// DrawBody implements render.Renderer.
func (r *EngoRenderer) DrawBody(body engine.BodyView) {
	s, ok := r.bodies[body.ID]
	if !ok {
		s = newSprite(common.Circle{}, zBody)
		r.bodies[body.ID] = s
		r.system.Add(&s.BasicEntity, &s.RenderComponent, &s.SpaceComponent)
	}

	corner := body.Position.Sub(physics.Vector2D{X: body.Radius, Y: body.Radius})
	s.Position = r.worldToScreen(corner)
	s.Width = 2 * float32(body.Radius) * r.scaleX
	s.Height = 2 * float32(body.Radius) * r.scaleY
	s.Color = body.Color
	if body.Color.A == 0 {
		s.Color = defaultBodyColor
	}
	s.Hidden = false
	r.drawn[body.ID] = true
}

// DrawRegion implements render.Renderer.
func (r *EngoRenderer) DrawRegion(region physics.Bounds, _ int) {
	if r.regionsUsed == len(r.regions) {
		s := newSprite(common.Rectangle{BorderWidth: 1, BorderColor: regionColor}, zRegion)
		s.Color = backgroundColor
		r.regions = append(r.regions, s)
		r.system.Add(&s.BasicEntity, &s.RenderComponent, &s.SpaceComponent)
	}

	s := r.regions[r.regionsUsed]
	r.regionsUsed++
	s.Position = r.worldToScreen(region.Origin)
	s.Width = float32(region.Width) * r.scaleX
	s.Height = float32(region.Height) * r.scaleY
	s.Hidden = false
}

// DrawHUD implements render.Renderer.
func (r *EngoRenderer) DrawHUD(hud render.HUD) {
	if r.hud != nil {
		r.hud.update(hud)
	}
}

// Present implements render.Renderer. The render system draws on its own
// schedule; this only retires stale entities.
func (r *EngoRenderer) Present() {
	for id, s := range r.bodies {
		if !r.drawn[id] {
			r.system.Remove(s.BasicEntity)
			delete(r.bodies, id)
		}
	}
	for _, s := range r.regions[r.regionsUsed:] {
		s.Hidden = true
	}
}

// BodyEntities returns the number of body entities alive.
func (r *EngoRenderer) BodyEntities() int {
	return len(r.bodies)
}

// pkg/render/engo/hud.go
package engo

import (
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-quadsim/pkg/render"
)

// hudOffset is the top-left corner of the info panel.
var hudOffset = engo.Point{X: 15, Y: 15}

// hudOverlay is the single text entity showing the info panel.
type hudOverlay struct {
	font  *common.Font
	text  *sprite
	shown string
}

func newHUDOverlay(system spriteSystem, font *common.Font) *hudOverlay {
	text := newSprite(common.Text{Font: font, LineSpacing: 0.25}, zHUD)
	text.Color = hudColor
	text.Position = hudOffset
	system.Add(&text.BasicEntity, &text.RenderComponent, &text.SpaceComponent)
	return &hudOverlay{font: font, text: text}
}

// update replaces the panel text when it changed.
func (h *hudOverlay) update(hud render.HUD) {
	content := hud.String()
	if content == h.shown {
		return
	}
	h.shown = content
	h.text.Drawable = common.Text{Font: h.font, Text: content, LineSpacing: 0.25}
}

// pkg/render/engo/assets.go
package engo

import (
	"bytes"
	"fmt"
	"image/color"

	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"
	"golang.org/x/image/font/gofont/goregular"
)

// hudFontURL is the virtual path the embedded font is registered under.
const hudFontURL = "quadsim/goregular.ttf"

// Palette used by the GUI.
var (
	backgroundColor  = color.RGBA{20, 20, 30, 255}
	regionColor      = color.RGBA{70, 90, 140, 255}
	hudColor         = color.RGBA{255, 255, 255, 255}
	defaultBodyColor = color.RGBA{200, 200, 200, 255}
)

// AssetManager loads the assets the GUI needs. There are no image files:
// bodies and regions are engo primitives, and the HUD font is embedded.
type AssetManager struct {
	fontSize float64
	font     *common.Font
}

// NewAssetManager creates a new asset manager
func NewAssetManager(fontSize float64) *AssetManager {
	if fontSize <= 0 {
		fontSize = 16
	}
	return &AssetManager{fontSize: fontSize}
}

// Preload registers the embedded Go font with engo's file loader. It must
// run during Scene.Preload.
func (am *AssetManager) Preload() error {
	if err := engo.Files.LoadReaderData(hudFontURL, bytes.NewReader(goregular.TTF)); err != nil {
		return fmt.Errorf("failed to load HUD font: %w", err)
	}
	return nil
}

// LoadAssets builds the HUD font from the preloaded data.
func (am *AssetManager) LoadAssets() error {
	font := &common.Font{
		URL:  hudFontURL,
		FG:   hudColor,
		BG:   color.Transparent,
		Size: am.fontSize,
	}
	if err := font.CreatePreloaded(); err != nil {
		return fmt.Errorf("failed to create HUD font: %w", err)
	}
	am.font = font
	return nil
}

// HUDFont returns the HUD font, or nil before LoadAssets succeeded.
func (am *AssetManager) HUDFont() *common.Font {
	return am.font
}

// pkg/render/engo/assets.go
package engo

import (
	"bytes"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/opd-ai/go-walker/pkg/engine"
)

const hudFontURL = "goregular.ttf"

// AssetManager holds the colours and the HUD font used by the viewer.
type AssetManager struct {
	Background color.Color
	Static     color.Color
	Dynamic    color.Color
	Hovered    color.Color
	Grabbed    color.Color
	Joint      color.Color
	Text       color.Color

	// Walkers are coloured by index, cycling through this list.
	walkerColors []color.Color
}

// NewAssetManager returns the default palette.
func NewAssetManager() *AssetManager {
	return &AssetManager{
		Background: color.RGBA{24, 24, 32, 255},
		Static:     color.RGBA{110, 110, 120, 255},
		Dynamic:    color.RGBA{200, 200, 210, 255},
		Hovered:    color.RGBA{255, 255, 255, 255},
		Grabbed:    color.RGBA{255, 200, 0, 255},
		Joint:      color.RGBA{255, 80, 80, 255},
		Text:       color.RGBA{230, 230, 230, 255},
		walkerColors: []color.Color{
			color.RGBA{230, 90, 90, 255},
			color.RGBA{90, 200, 110, 255},
			color.RGBA{90, 140, 240, 255},
			color.RGBA{240, 210, 80, 255},
			color.RGBA{200, 110, 230, 255},
			color.RGBA{80, 210, 210, 255},
		},
	}
}

// PreloadFont registers the embedded Go Regular font with engo's file
// loader. It must run in Scene.Preload.
func (am *AssetManager) PreloadFont() error {
	if err := engo.Files.LoadReaderData(hudFontURL, bytes.NewReader(goregular.TTF)); err != nil {
		return fmt.Errorf("failed to load HUD font: %w", err)
	}
	return nil
}

// HUDFont builds the HUD font from the preloaded data.
func (am *AssetManager) HUDFont(size float64) (*common.Font, error) {
	font := &common.Font{
		URL:  hudFontURL,
		FG:   am.Text,
		Size: size,
	}
	if err := font.CreatePreloaded(); err != nil {
		return nil, fmt.Errorf("failed to create HUD font: %w", err)
	}
	return font, nil
}

// BodyColor picks the fill colour for a body. Grabbed beats hovered, which
// beats the body's own colour.
func (am *AssetManager) BodyColor(body engine.BodyState, hovered, grabbed uint64) color.Color {
	switch {
	case body.ID == grabbed:
		return am.Grabbed
	case body.ID == hovered:
		return am.Hovered
	case body.Static:
		return am.Static
	}
	if index, ok := walkerIndex(body.Label); ok {
		return am.walkerColors[index%len(am.walkerColors)]
	}
	return am.Dynamic
}

// walkerIndex parses the index out of walker part labels such as
// "walker3.torso".
func walkerIndex(label string) (int, bool) {
	rest, ok := strings.CutPrefix(label, "walker")
	if !ok {
		return 0, false
	}
	digits, _, ok := strings.Cut(rest, ".")
	if !ok {
		return 0, false
	}
	index, err := strconv.Atoi(digits)
	if err != nil || index < 0 {
		return 0, false
	}
	return index, true
}

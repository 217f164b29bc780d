// pkg/render/engo/hud.go
package engo

import (
	"fmt"
	"strings"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-walker/pkg/engine"
)

// HUDSystem draws a text overlay with the simulation counters.
type HUDSystem struct {
	basic  ecs.BasicEntity
	render common.RenderComponent
	space  common.SpaceComponent
	added  bool

	sink entitySink
	font *common.Font
	text string

	// Status adds scene-specific lines, such as the walker generation.
	Status func() string
}

// NewHUDSystem creates a HUD drawing with font. A nil font disables
// drawing; the text is still kept up to date.
func NewHUDSystem(sink entitySink, font *common.Font) *HUDSystem {
	return &HUDSystem{
		basic: ecs.NewBasic(),
		space: common.SpaceComponent{Position: engo.Point{X: 10, Y: 10}},
		sink:  sink,
		font:  font,
	}
}

// Remove satisfies the ecs.System interface
func (hud *HUDSystem) Remove(basic ecs.BasicEntity) {}

// Update pushes the current text to the render system.
func (hud *HUDSystem) Update(dt float32) {
	if hud.font == nil || hud.sink == nil {
		return
	}
	hud.render.Drawable = common.Text{Font: hud.font, Text: hud.text}
	if !hud.added {
		hud.render.SetShader(common.HUDShader)
		hud.render.SetZIndex(10)
		hud.sink.Add(&hud.basic, &hud.render, &hud.space)
		hud.added = true
	}
}

// SetState formats the overlay for st.
func (hud *HUDSystem) SetState(st engine.State, fps int, paused bool) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "tick %d  bodies %d  joints %d  contacts %d  fps %d",
		st.Tick, len(st.Bodies), len(st.Joints), len(st.Contacts), fps)
	if paused {
		sb.WriteString("  [paused]")
	}
	if hud.Status != nil {
		if extra := hud.Status(); extra != "" {
			sb.WriteByte('\n')
			sb.WriteString(extra)
		}
	}
	hud.text = sb.String()
}

// Text returns the current overlay text.
func (hud *HUDSystem) Text() string {
	return hud.text
}

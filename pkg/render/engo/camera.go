// pkg/render/engo/camera.go
package engo

import (
	"math"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"

	"github.com/opd-ai/go-walker/pkg/physics"
)

// CameraSystem maps world coordinates onto the window and optionally
// follows a target such as the leading walker.
type CameraSystem struct {
	// Viewport size in screen units
	width, height float32

	// Target to follow
	target    physics.Vector2D
	targetSet bool

	// Camera properties
	zoom    float32
	minZoom float32
	maxZoom float32

	// Smooth following
	followSpeed float32
	smoothing   bool

	currentPos physics.Vector2D
}

// NewCameraSystem creates a camera for a viewport of width×height.
func NewCameraSystem(width, height float32) *CameraSystem {
	return &CameraSystem{
		width:       width,
		height:      height,
		zoom:        1.0,
		minZoom:     0.05,
		maxZoom:     4.0,
		followSpeed: 2.0,
		smoothing:   true,
	}
}

// Remove satisfies the ecs.System interface
func (cs *CameraSystem) Remove(basic ecs.BasicEntity) {}

// Update handles zoom keys and moves toward the target.
func (cs *CameraSystem) Update(dt float32) {
	cs.handleZoomInput()
	if cs.targetSet {
		cs.updateCameraPosition(dt)
	}
}

func (cs *CameraSystem) handleZoomInput() {
	if scrollY := engo.Input.Mouse.ScrollY; scrollY != 0 {
		cs.SetZoom(cs.zoom * (1 + scrollY*0.1))
	}
	if engo.Input.Button("zoomIn").Down() {
		cs.SetZoom(cs.zoom * 1.02)
	}
	if engo.Input.Button("zoomOut").Down() {
		cs.SetZoom(cs.zoom * 0.98)
	}
	if engo.Input.Button("resetZoom").JustPressed() {
		cs.SetZoom(1.0)
	}
}

// updateCameraPosition moves the camera toward the target, or jumps to it
// when smoothing is off.
func (cs *CameraSystem) updateCameraPosition(dt float32) {
	if !cs.smoothing {
		cs.currentPos = cs.target
		return
	}
	// Never overshoot on a long frame.
	k := math.Min(float64(cs.followSpeed*dt), 1)
	cs.currentPos = cs.currentPos.Add(cs.target.Sub(cs.currentPos).Scale(k))
}

// SetTarget sets the position to follow.
func (cs *CameraSystem) SetTarget(target physics.Vector2D) {
	first := !cs.targetSet
	cs.target = target
	cs.targetSet = true
	if first || !cs.smoothing {
		cs.currentPos = target
	}
}

// ClearTarget stops following.
func (cs *CameraSystem) ClearTarget() {
	cs.targetSet = false
}

// Fit centres the camera on box and zooms so all of it is visible.
func (cs *CameraSystem) Fit(box physics.AABB) {
	cs.currentPos = box.Min.Add(box.Max).Scale(0.5)
	w, h := box.Max.X-box.Min.X, box.Max.Y-box.Min.Y
	if w <= 0 || h <= 0 || cs.width <= 0 || cs.height <= 0 {
		return
	}
	cs.SetZoom(float32(math.Min(float64(cs.width)/w, float64(cs.height)/h)))
}

// SetZoom sets the zoom level, clamped to the zoom limits.
func (cs *CameraSystem) SetZoom(zoom float32) {
	cs.zoom = cs.clampZoom(zoom)
}

// GetZoom returns the current zoom level
func (cs *CameraSystem) GetZoom() float32 {
	return cs.zoom
}

func (cs *CameraSystem) clampZoom(zoom float32) float32 {
	if zoom < cs.minZoom {
		return cs.minZoom
	}
	if zoom > cs.maxZoom {
		return cs.maxZoom
	}
	return zoom
}

// SetFollowSpeed sets the fraction of the remaining distance covered per
// second when smoothing.
func (cs *CameraSystem) SetFollowSpeed(speed float32) {
	cs.followSpeed = speed
}

// EnableSmoothing enables or disables camera smoothing
func (cs *CameraSystem) EnableSmoothing(enabled bool) {
	cs.smoothing = enabled
}

// GetCurrentPosition returns the world position at the viewport centre.
func (cs *CameraSystem) GetCurrentPosition() physics.Vector2D {
	return cs.currentPos
}

// WorldToScreen converts world coordinates to screen coordinates
func (cs *CameraSystem) WorldToScreen(worldPos physics.Vector2D) physics.Vector2D {
	rel := worldPos.Sub(cs.currentPos).Scale(float64(cs.zoom))
	return physics.Vector2D{
		X: rel.X + float64(cs.width/2),
		Y: rel.Y + float64(cs.height/2),
	}
}

// ScreenToWorld converts screen coordinates to world coordinates
func (cs *CameraSystem) ScreenToWorld(screenPos physics.Vector2D) physics.Vector2D {
	rel := physics.Vector2D{
		X: screenPos.X - float64(cs.width/2),
		Y: screenPos.Y - float64(cs.height/2),
	}
	return rel.Scale(1 / float64(cs.zoom)).Add(cs.currentPos)
}

// SetZoomLimits sets the minimum and maximum zoom levels
func (cs *CameraSystem) SetZoomLimits(min, max float32) {
	cs.minZoom = min
	cs.maxZoom = max
	cs.zoom = cs.clampZoom(cs.zoom)
}

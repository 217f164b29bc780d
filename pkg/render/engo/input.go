// pkg/render/engo/input.go
package engo

import (
	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"

	"github.com/opd-ai/go-walker/pkg/input"
	"github.com/opd-ai/go-walker/pkg/physics"
)

// InputSystem feeds mouse events to the pointer proxy and handles the
// viewer's keys.
type InputSystem struct {
	pointer *input.Pointer
	camera  *CameraSystem
	physics *PhysicsSystem
}

// NewInputSystem creates a new input system
func NewInputSystem(pointer *input.Pointer, camera *CameraSystem, ps *PhysicsSystem) *InputSystem {
	return &InputSystem{
		pointer: pointer,
		camera:  camera,
		physics: ps,
	}
}

// Remove satisfies the ecs.System interface
func (is *InputSystem) Remove(basic ecs.BasicEntity) {}

// Update polls engo's input state.
func (is *InputSystem) Update(dt float32) {
	mouse := engo.Input.Mouse
	is.handleMouse(mouse.X, mouse.Y, mouse.Action)

	if engo.Input.Button("pause").JustPressed() {
		is.physics.TogglePause()
	}
	if engo.Input.Button("step").JustPressed() {
		is.physics.StepOnce()
	}
}

// handleMouse moves the pointer to the world position under (x, y) and
// forwards button changes.
func (is *InputSystem) handleMouse(x, y float32, action engo.Action) {
	if is.pointer == nil {
		return
	}
	is.pointer.Move(is.camera.ScreenToWorld(physics.Vector2D{X: float64(x), Y: float64(y)}))
	switch action {
	case engo.Press:
		is.pointer.Press()
	case engo.Release:
		is.pointer.Release()
	}
}

// SetupInputBindings registers the viewer's keys.
func SetupInputBindings() {
	engo.Input.RegisterButton("pause", engo.KeySpace)
	engo.Input.RegisterButton("step", engo.KeyN)
	engo.Input.RegisterButton("zoomIn", engo.KeyArrowUp)
	engo.Input.RegisterButton("zoomOut", engo.KeyArrowDown)
	engo.Input.RegisterButton("resetZoom", engo.KeyR)
}

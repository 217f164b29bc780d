// pkg/render/engo/scene.go
package engo

import (
	"context"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-walker/pkg/engine"
	"github.com/opd-ai/go-walker/pkg/input"
	"github.com/opd-ai/go-walker/pkg/logging"
)

// hudFontSize is the HUD text size in points.
const hudFontSize = 16

// Scene shows a running simulation in an engo window.
type Scene struct {
	ctx     context.Context
	sim     *engine.Simulation
	pointer *input.Pointer
	logger  *logging.Logger
	assets  *AssetManager

	// Follow, when set, keeps the camera on a moving target.
	Follow FollowFunc
	// Status adds lines to the HUD.
	Status func() string

	renderer *EngoRenderer
	camera   *CameraSystem
	input    *InputSystem
	hud      *HUDSystem
	physics  *PhysicsSystem
}

// NewScene creates a scene driving sim. The pointer should already be the
// engine's input proxy; it may be nil for a view-only window.
func NewScene(ctx context.Context, sim *engine.Simulation, pointer *input.Pointer, logger *logging.Logger) *Scene {
	if logger == nil {
		logger = logging.NewLogger()
	}
	return &Scene{
		ctx:     ctx,
		sim:     sim,
		pointer: pointer,
		logger:  logger,
		assets:  NewAssetManager(),
	}
}

// Type returns the scene type (required by Engo)
func (scene *Scene) Type() string {
	return "WalkerScene"
}

// Preload is called before the scene starts (required by Engo)
func (scene *Scene) Preload() {
	if err := scene.assets.PreloadFont(); err != nil {
		scene.logger.Error(scene.ctx, "HUD disabled", err)
	}
}

// Setup is called when the scene starts (required by Engo)
func (scene *Scene) Setup(u engo.Updater) {
	world, _ := u.(*ecs.World)
	common.SetBackground(scene.assets.Background)
	SetupInputBindings()

	renderSystem := &common.RenderSystem{}
	world.AddSystem(renderSystem)

	font, err := scene.assets.HUDFont(hudFontSize)
	if err != nil {
		scene.logger.Error(scene.ctx, "HUD disabled", err)
		font = nil
	}

	scene.camera = NewCameraSystem(engo.GameWidth(), engo.GameHeight())
	scene.renderer = NewEngoRenderer(renderSystem, scene.camera, scene.assets)
	scene.hud = NewHUDSystem(renderSystem, font)
	scene.hud.Status = scene.Status
	scene.physics = NewPhysicsSystem(scene.sim, scene.renderer, scene.camera, scene.hud, scene.pointer)
	scene.physics.follow = scene.Follow
	scene.physics.done = engo.Exit
	scene.input = NewInputSystem(scene.pointer, scene.camera, scene.physics)

	world.AddSystem(scene.input)
	world.AddSystem(scene.camera)
	world.AddSystem(scene.physics)
	world.AddSystem(scene.hud)

	scene.sim.Start(scene.ctx)
	go func() {
		<-scene.ctx.Done()
		engo.Exit()
	}()
}

// Exit is called when the window closes.
func (scene *Scene) Exit() {
	scene.sim.Stop()
	scene.logger.Info(scene.ctx, "Viewer closed", "tick", scene.sim.CurrentTick())
}

// Run opens a window and blocks until it closes. It must be called from
// the main goroutine.
func Run(scene *Scene, title string, width, height, fps int) {
	engo.Run(engo.RunOptions{
		Title:          title,
		Width:          width,
		Height:         height,
		FPSLimit:       fps,
		StandardInputs: true,
	}, scene)
}

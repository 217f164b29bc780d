// cmd/walker/app.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/opd-ai/go-walker/pkg/composite"
	"github.com/opd-ai/go-walker/pkg/config"
	"github.com/opd-ai/go-walker/pkg/engine"
	"github.com/opd-ai/go-walker/pkg/health"
	"github.com/opd-ai/go-walker/pkg/input"
	"github.com/opd-ai/go-walker/pkg/logging"
	"github.com/opd-ai/go-walker/pkg/physics"
	"github.com/opd-ai/go-walker/pkg/render"
	engorender "github.com/opd-ai/go-walker/pkg/render/engo"
	"github.com/opd-ai/go-walker/pkg/resource"
	"github.com/opd-ai/go-walker/pkg/walker"
)

// app is one configured simulation with its scene.
type app struct {
	cfg    *config.SimulationConfig
	sim    *engine.Simulation
	pop    *walker.Population
	logger *logging.Logger
}

// newApp builds the simulation and populates the configured scene.
func newApp(cfg *config.SimulationConfig, logger *logging.Logger) (*app, error) {
	sim, err := engine.NewSimulation(cfg.ToPhysics(), cfg.ToBreaker(), logger)
	if err != nil {
		return nil, err
	}
	sim.StopAfter = cfg.Runner.MaxTicks

	a := &app{cfg: cfg, sim: sim, logger: logger}
	if cfg.Scene.Name != config.WalkerScene {
		if err := composite.BuildScene(cfg.Scene.Name, sim.World, cfg.Scene.Width, cfg.Scene.Height); err != nil {
			return nil, logging.WrapError(err, "failed to build scene", "scene", cfg.Scene.Name)
		}
		return a, nil
	}

	gait := walker.NewGait(cfg.Walkers.GaitSwing, cfg.Walkers.GaitPeriod)
	factory := func(index, generation int) walker.Controller { return gait }
	a.pop, err = walker.NewPopulation(sim.World, cfg.ToWalker(), factory, logger)
	if err != nil {
		return nil, logging.WrapError(err, "failed to create population")
	}
	sim.AddHook("walkers", a.pop.Step)
	return a, nil
}

// status describes the walker population, or nothing for demo scenes.
// It must run on the stepping goroutine or under the simulation lock.
func (a *app) status() string {
	if a.pop == nil {
		return ""
	}
	best := 0.0
	if leader := a.pop.Leader(); leader != nil {
		best = leader.Fitness()
	}
	return fmt.Sprintf("generation %d  step %d  alive %d/%d  best %.0f",
		a.pop.Generation(), a.pop.Counter(), a.pop.Alive(), len(a.pop.Walkers()), best)
}

// follow tracks the leading walker's torso.
func (a *app) follow() (physics.Vector2D, bool) {
	if a.pop == nil {
		return physics.Vector2D{}, false
	}
	leader := a.pop.Leader()
	if leader == nil {
		return physics.Vector2D{}, false
	}
	return leader.Parts[walker.Torso].Position(), true
}

// stats is served on /stats.
func (a *app) stats() interface{} {
	st := a.sim.State()
	out := map[string]interface{}{
		"tick":     st.Tick,
		"status":   st.Status.String(),
		"bodies":   len(st.Bodies),
		"joints":   len(st.Joints),
		"contacts": len(st.Contacts),
		"pairs":    st.Stats.Pairs,
	}
	if a.pop != nil {
		a.sim.WithLock(func(*physics.World) {
			out["generation"] = a.pop.Generation()
			out["alive"] = a.pop.Alive()
			out["history"] = a.pop.History()
		})
	}
	return out
}

// startHealthServer serves health checks on a goroutine tracked by rm
// until ctx is done or rm shuts down.
func (a *app) startHealthServer(ctx context.Context, rm *resource.ResourceManager) error {
	hc := health.NewHealthChecker()
	hc.AddCheck(health.NewSimulationHealthCheck(func() bool {
		return a.sim.Status() == engine.StatusRunning
	}))
	hc.AddCheck(health.NewWorldHealthCheck(a.sim.CheckFinite))
	hc.AddCheck(health.NewMemoryHealthCheck(a.cfg.Health.MaxMemoryMB, nil))
	hc.AddCheck(resource.NewTaskHealthCheck(rm))

	server := &http.Server{
		Addr:         ":" + strconv.Itoa(a.cfg.Health.Port),
		Handler:      health.NewServeMux(hc, a.stats),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	return rm.Go(ctx, "health-server", func(ctx context.Context) error {
		a.logger.Info(ctx, "Starting health check server",
			"port", a.cfg.Health.Port,
		)
		errc := make(chan error, 1)
		go func() { errc <- server.ListenAndServe() }()

		select {
		case err := <-errc:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		}
	})
}

// attachRenderer draws every Render.Every runner frames.
func (a *app) attachRenderer(r render.Renderer) {
	every := a.cfg.Render.Every
	frame := 0
	a.sim.Runner.OnAfterFrame(func(int) {
		frame++
		if frame%every == 0 {
			render.Draw(r, a.sim.State())
		}
	})
}

// newTerminalRenderer sizes the view to the scene. For walkers it keeps
// the leader in the middle of the screen.
func (a *app) newTerminalRenderer() *render.TerminalRenderer {
	r := render.NewTerminalRenderer(os.Stdout, a.cfg.Render.Columns, a.cfg.Render.Rows, 1)
	r.Fit(physics.AABB{Max: physics.Vec(a.cfg.Scene.Width, a.cfg.Scene.Height)})
	a.sim.Runner.OnBeforeFrame(func() {
		if pos, ok := a.follow(); ok {
			r.SetCenter(physics.Vec(pos.X, a.cfg.Scene.Height/2))
		}
		r.SetStatus(fmt.Sprintf("tick %d  %s", a.sim.CurrentTick(), a.status()))
	})
	return r
}

// run drives the simulation with the configured renderer until ctx is done
// or the tick limit is reached.
func run(ctx context.Context, cfg *config.SimulationConfig, logger *logging.Logger) (err error) {
	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}

	limits := resource.DefaultLimits()
	limits.MaxMemoryMB = cfg.Health.MaxMemoryMB
	rm := resource.NewResourceManager(limits, logger)
	if err := rm.Start(); err != nil {
		return err
	}
	defer func() {
		if shutdownErr := rm.Shutdown(context.Background()); shutdownErr != nil && err == nil {
			err = shutdownErr
		}
	}()

	if cfg.Health.Enabled {
		if err := a.startHealthServer(ctx, rm); err != nil {
			return err
		}
	}

	logger.Info(ctx, "Starting simulation",
		"scene", cfg.Scene.Name,
		"renderer", cfg.Render.Mode,
		"bodies", a.sim.World.BodyCount(),
		"joints", a.sim.World.JointCount(),
		"max_ticks", cfg.Runner.MaxTicks,
	)

	switch cfg.Render.Mode {
	case "engo":
		pointer := input.NewPointer()
		a.sim.Engine.SetInput(pointer)
		scene := engorender.NewScene(ctx, a.sim, pointer, logger)
		scene.Status = a.status
		if a.pop != nil {
			scene.Follow = func(engine.State) (physics.Vector2D, bool) { return a.follow() }
		}
		engorender.Run(scene, "go-walker: "+cfg.Scene.Name,
			int(cfg.Scene.Width), int(cfg.Scene.Height), cfg.Runner.FrameRate)
	case "terminal":
		a.attachRenderer(a.newTerminalRenderer())
		err = a.sim.Run(ctx, engine.NewTickerClock(cfg.FrameInterval()))
	default:
		a.attachRenderer(render.NewNullRenderer(logger))
		err = a.sim.Run(ctx, engine.NewTickerClock(cfg.FrameInterval()))
	}
	if err != nil {
		return err
	}

	logger.Info(ctx, "Simulation finished",
		"ticks", a.sim.CurrentTick(),
	)
	return nil
}

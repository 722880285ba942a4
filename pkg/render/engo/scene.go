// pkg/render/engo/scene.go
package engo

import (
	"context"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-quadsim/pkg/engine"
	"github.com/opd-ai/go-quadsim/pkg/logging"
	"github.com/opd-ai/go-quadsim/pkg/render"
)

// SimulationScene runs a simulation inside an engo window.
type SimulationScene struct {
	sim        *engine.Simulation
	controller *render.Controller
	logger     *logging.Logger
	ctx        context.Context

	assets   *AssetManager
	renderer *EngoRenderer
}

// NewSimulationScene creates a scene that drives sim.
func NewSimulationScene(ctx context.Context, sim *engine.Simulation, logger *logging.Logger) *SimulationScene {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &SimulationScene{
		sim:        sim,
		controller: render.NewController(sim, logger),
		logger:     logger,
		ctx:        ctx,
		assets:     NewAssetManager(16),
	}
}

// RunOptions returns window options sized to the simulation world.
func (scene *SimulationScene) RunOptions() engo.RunOptions {
	world := scene.sim.World()
	return engo.RunOptions{
		Title:        "Quadtree Collision Simulation",
		Width:        int(world.Width),
		Height:       int(world.Height),
		FPSLimit:     scene.sim.Config.Frame.TargetFPS,
		NotResizable: true,
	}
}

// Type returns the scene type (required by Engo)
func (scene *SimulationScene) Type() string {
	return "SimulationScene"
}

// Preload is called before the scene starts (required by Engo)
func (scene *SimulationScene) Preload() {
	if err := scene.assets.Preload(); err != nil {
		scene.logger.Error(scene.ctx, "Asset preload failed", err)
	}
}

// Setup is called when the scene starts (required by Engo)
func (scene *SimulationScene) Setup(u engo.Updater) {
	world, _ := u.(*ecs.World)
	common.SetBackground(backgroundColor)

	renderSystem := &common.RenderSystem{}
	world.AddSystem(renderSystem)

	if err := scene.assets.LoadAssets(); err != nil {
		scene.logger.Error(scene.ctx, "HUD disabled", err)
	}
	scene.renderer = NewEngoRenderer(renderSystem, scene.sim.World(),
		engo.GameWidth(), engo.GameHeight(), scene.assets.HUDFont())

	SetupInputBindings()
	world.AddSystem(&SimulationSystem{
		sim:        scene.sim,
		controller: scene.controller,
		renderer:   scene.renderer,
		buttons:    engoButtons{},
		logger:     scene.logger,
		ctx:        scene.ctx,
		quit:       engo.Exit,
	})

	scene.logger.Info(scene.ctx, "Scene ready", "bodies", scene.sim.BodyCount())
}

// Exit is called when the scene is exiting (required by Engo)
func (scene *SimulationScene) Exit() {
	totals := scene.sim.Totals()
	scene.logger.Info(scene.ctx, "Scene exiting",
		"frames", scene.sim.Frame(),
		"collisions_quadtree", totals.Indexed,
		"collisions_brute_force", totals.BruteForce,
	)
}

// SimulationSystem applies input, steps the simulation with engo's frame
// time and redraws it. It holds no entities.
type SimulationSystem struct {
	sim        *engine.Simulation
	controller *render.Controller
	renderer   render.Renderer
	buttons    buttonSource
	logger     *logging.Logger
	ctx        context.Context
	quit       func()
}

// Remove satisfies the ecs.System interface
func (s *SimulationSystem) Remove(ecs.BasicEntity) {}

// Update advances one frame.
func (s *SimulationSystem) Update(dt float32) {
	for _, cmd := range pollCommands(s.buttons) {
		quit, err := s.controller.Apply(s.ctx, cmd)
		if err != nil {
			s.logger.Warn(s.ctx, "Command failed", "command", cmd.String(), "error", err)
		}
		if quit {
			s.quit()
			return
		}
	}

	s.sim.StepFrame(float64(dt))
	hud := render.NewHUD(s.sim, render.FPSFromDelta(float64(dt)), s.controller.ShowIndex)
	render.DrawFrame(s.renderer, s.sim, hud)
}

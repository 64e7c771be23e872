// Package world ties the terrain grid to the walking camera and the
// lighting environment. It has no GL dependency and runs headless.
package world

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/sandisle/internal/config"
	"github.com/Faultbox/sandisle/internal/engine/camera"
	"github.com/Faultbox/sandisle/internal/engine/lighting"
	"github.com/Faultbox/sandisle/internal/terrain"
	gmath "github.com/Faultbox/sandisle/pkg/math"
)

// maxStep bounds the simulated time of one frame so a stall does not
// launch the camera through the ground.
const maxStep = 0.1

// FogStep is the fog density change of one key press.
const FogStep = 0.005

// Controls is the player input for one frame.
type Controls struct {
	Move           camera.Movement
	LookDX, LookDY float32

	CycleTimeOfDay  bool
	ToggleWireframe bool
	FogDelta        float32
}

// World is the explorable island.
type World struct {
	log *zap.Logger

	grid       *terrain.Grid
	camera     *camera.FirstPerson
	projection camera.Projection
	env        *lighting.Environment

	clock float64
}

// New builds the world from cfg. alloc turns chunk meshes into renderable
// geometry; use terrain.CPUAllocator{} when nothing is drawn.
func New(cfg *config.Config, alloc terrain.GeometryAllocator, log *zap.Logger) (*World, error) {
	if log == nil {
		log = zap.NewNop()
	}

	tod, err := lighting.ParseTimeOfDay(cfg.Lighting.TimeOfDay)
	if err != nil {
		return nil, err
	}

	opts := cfg.Terrain.GridOptions()
	opts.Allocator = alloc
	opts.Logger = log
	grid, err := terrain.NewGrid(opts)
	if err != nil {
		return nil, fmt.Errorf("creating terrain: %w", err)
	}

	w := &World{
		log:  log.Named("world"),
		grid: grid,
		projection: camera.Projection{
			FOV:  cfg.Graphics.FOV,
			Near: cfg.Graphics.Near,
			Far:  cfg.Graphics.Far,
		},
		env: lighting.NewEnvironment(tod, cfg.Lighting.FogDensity, cfg.Lighting.Wireframe),
	}
	w.env.Sync(grid)

	// Stream the spawn area first so the camera lands on real ground when
	// chunks are built inline.
	c := cfg.Camera
	grid.UpdateStreaming(gmath.Vec3{X: c.StartX, Z: c.StartZ})
	w.camera = camera.NewFirstPerson(camera.Settings{
		EyeHeight:        c.EyeHeight,
		MoveSpeed:        c.MoveSpeed,
		Gravity:          c.Gravity,
		JumpSpeed:        c.JumpSpeed,
		MouseSensitivity: c.MouseSensitivity,
	}, c.StartX, c.StartZ, grid)

	w.log.Info("world ready",
		zap.Stringer("time_of_day", tod),
		zap.Int("chunks", grid.Len()),
		zap.Float32("spawn_height", w.camera.Position.Y),
	)
	return w, nil
}

// Update advances the world by dt seconds.
func (w *World) Update(dt float32, c Controls, aspect float32) terrain.TickStats {
	dt = min(max(dt, 0), maxStep)

	if c.CycleTimeOfDay {
		w.env.CycleTimeOfDay()
		w.log.Info("time of day", zap.Stringer("preset", w.env.TimeOfDay()))
	}
	if c.ToggleWireframe {
		w.env.ToggleWireframe()
	}
	if c.FogDelta != 0 {
		w.env.AdjustFog(c.FogDelta)
		w.log.Debug("fog density", zap.Float32("density", w.env.FogDensity()))
	}
	w.env.Sync(w.grid)

	w.camera.Look(c.LookDX, c.LookDY)
	w.camera.Update(dt, c.Move, w.grid)

	w.clock += float64(dt)
	return w.grid.Tick(dt, w.clock, w.View(aspect))
}

// View returns the camera state the grid and the renderer consume.
func (w *World) View(aspect float32) terrain.View {
	return terrain.View{
		Position: w.camera.Position,
		ViewProj: w.projection.Matrix(aspect).Mul(w.camera.ViewMatrix()),
	}
}

func (w *World) Grid() *terrain.Grid                { return w.grid }
func (w *World) Camera() *camera.FirstPerson        { return w.camera }
func (w *World) Projection() camera.Projection      { return w.projection }
func (w *World) Environment() *lighting.Environment { return w.env }

// Clock returns the simulated time in seconds.
func (w *World) Clock() float64 { return w.clock }

// Close releases the terrain.
func (w *World) Close() {
	w.grid.Dispose()
}

// Package game implements the main loop of the island viewer.
package game

import (
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/sandisle/internal/config"
	"github.com/Faultbox/sandisle/internal/engine/camera"
	"github.com/Faultbox/sandisle/internal/engine/input"
	"github.com/Faultbox/sandisle/internal/engine/renderer"
	"github.com/Faultbox/sandisle/internal/engine/window"
	"github.com/Faultbox/sandisle/internal/game/world"
	"github.com/Faultbox/sandisle/internal/logger"
	"github.com/Faultbox/sandisle/internal/terrain"
)

const title = "Sand Isle"

// Game is the main game instance.
type Game struct {
	config   *config.Config
	running  bool
	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	world    *world.World

	mouseGrabbed bool
}

// New creates a new game instance.
func New(cfg *config.Config) (*Game, error) {
	logger.Info("initializing game",
		zap.Int("width", cfg.Graphics.Width),
		zap.Int("height", cfg.Graphics.Height),
		zap.Uint32("seed", cfg.Terrain.Height.Seed),
	)

	g := &Game{
		config: cfg,
	}

	// Create window (this also creates OpenGL context)
	var err error
	g.window, err = window.New(window.Config{
		Title:      title,
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// Create renderer (AFTER window, since OpenGL context must exist)
	width, height := g.window.GetSize()
	g.renderer, err = renderer.New(renderer.Config{
		Width:  width,
		Height: height,
	})
	if err != nil {
		g.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	g.world, err = world.New(cfg, g.renderer.Allocator(), logger.Log)
	if err != nil {
		g.renderer.Close()
		g.window.Close()
		return nil, fmt.Errorf("failed to create world: %w", err)
	}

	// Create input handler
	g.input = input.New()
	g.setMouseGrab(true)

	logger.Info("game initialized successfully")
	return g, nil
}

// Run starts the main game loop.
func (g *Game) Run() error {
	g.running = true

	// Timing
	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	var frameBudget time.Duration
	if g.config.Graphics.FPSLimit > 0 {
		frameBudget = time.Second / time.Duration(g.config.Graphics.FPSLimit)
	}

	logger.Info("starting game loop")

	for g.running {
		frameStart := time.Now()
		dt := float32(frameStart.Sub(lastTime).Seconds())
		lastTime = frameStart

		// 1. Process input
		if g.input.Update() {
			g.running = false
			break
		}
		controls := g.handleEvents()

		// 2. Update world
		stats := g.world.Update(dt, controls, g.renderer.Aspect())

		// 3. Render
		g.render()

		// 4. Present (swap buffers)
		g.window.SwapBuffers()

		// FPS counter
		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			s := g.world.Grid().Stats()
			logger.Debug("frame stats",
				zap.Int("fps", frameCount),
				zap.Int("loaded", s.Loaded),
				zap.Int("visible", stats.Visible),
				zap.Int("drawn", g.renderer.Terrain().Drawn()),
				zap.Int("pending", s.Pending),
				zap.Uint64("evicted", s.Evicted),
			)
			if g.config.Graphics.ShowFPS {
				g.window.SetTitle(fmt.Sprintf("%s - %d FPS", title, frameCount))
			}
			frameCount = 0
			fpsTimer = time.Now()
		}

		if frameBudget > 0 {
			if rest := frameBudget - time.Since(frameStart); rest > 0 {
				time.Sleep(rest)
			}
		}
	}

	return nil
}

// Close cleans up game resources.
func (g *Game) Close() {
	logger.Info("closing game")

	// Chunk geometry lives in the GL context, release it first.
	if g.world != nil {
		g.world.Close()
	}
	if g.renderer != nil {
		g.renderer.Close()
	}
	if g.window != nil {
		g.window.Close()
	}
}

// handleEvents processes discrete events and samples held keys into the
// frame's controls.
func (g *Game) handleEvents() world.Controls {
	var c world.Controls

	for _, event := range g.input.Events() {
		switch event.Type {
		case input.EventWindowResize:
			g.renderer.Resize(event.Width, event.Height)
		case input.EventMouseDown:
			if !g.mouseGrabbed {
				g.setMouseGrab(true)
			}
		case input.EventKeyDown:
			switch event.Key {
			case sdl.SCANCODE_ESCAPE:
				if g.mouseGrabbed {
					g.setMouseGrab(false)
				} else {
					g.running = false
				}
			case sdl.SCANCODE_T:
				c.CycleTimeOfDay = true
			case sdl.SCANCODE_F:
				c.ToggleWireframe = true
			case sdl.SCANCODE_EQUALS:
				c.FogDelta += world.FogStep
			case sdl.SCANCODE_MINUS:
				c.FogDelta -= world.FogStep
			}
		}
	}

	if g.mouseGrabbed {
		c.LookDX, c.LookDY = g.input.MouseDelta()
		c.Move = camera.Movement{
			Forward: g.input.Axis(sdl.SCANCODE_S, sdl.SCANCODE_W),
			Right:   g.input.Axis(sdl.SCANCODE_A, sdl.SCANCODE_D),
			Jump:    g.input.IsKeyHeld(sdl.SCANCODE_SPACE),
		}
	}
	return c
}

func (g *Game) setMouseGrab(grab bool) {
	g.mouseGrabbed = grab
	g.window.GrabMouse(grab)
}

// render draws the current frame.
func (g *Game) render() {
	env := g.world.Environment()
	g.renderer.Begin(env.ClearColor())

	aspect := g.renderer.Aspect()
	cam := g.world.Camera()
	opts := g.world.Grid().Options()
	g.renderer.Terrain().Draw(renderer.Frame{
		View:       cam.ViewMatrix(),
		Projection: g.world.Projection().Matrix(aspect),
		Camera:     cam.Position,
		Height:     opts.Height,
		Displace:   !opts.BakeHeights,
	}, g.world.Grid().Visible())

	g.renderer.End()
}

// Ensure the renderer's allocator satisfies the terrain contract.
var _ terrain.GeometryAllocator = (*renderer.Allocator)(nil)

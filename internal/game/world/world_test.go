package world

import (
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/Faultbox/sandisle/internal/config"
	"github.com/Faultbox/sandisle/internal/engine/camera"
	"github.com/Faultbox/sandisle/internal/engine/lighting"
	"github.com/Faultbox/sandisle/internal/terrain"
)

func newTestWorld(t *testing.T) *World {
	t.Helper()
	cfg := config.Default()
	cfg.Terrain.Workers = 0
	cfg.Terrain.LODs = terrain.LODTable{{Resolution: 8, MinDistance: 0}, {Resolution: 4, MinDistance: 24}}

	w, err := New(cfg, terrain.CPUAllocator{}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	t.Cleanup(w.Close)
	return w
}

func TestNewSpawnsOnGround(t *testing.T) {
	w := newTestWorld(t)

	if w.Grid().Len() < 49 {
		t.Errorf("expected the spawn area streamed, got %d chunks", w.Grid().Len())
	}
	cam := w.Camera()
	want := w.Grid().HeightAt(0, 0) + cam.EyeHeight
	if cam.Position.Y != want {
		t.Errorf("expected eye at %v, got %v", want, cam.Position.Y)
	}
}

func TestUpdateWalksAndStaysGrounded(t *testing.T) {
	w := newTestWorld(t)

	for range 120 {
		w.Update(1.0/60, Controls{Move: camera.Movement{Forward: 1}}, 16.0/9)
	}

	cam := w.Camera()
	if cam.Position.Z > -9 {
		t.Errorf("expected to walk about 10 units down -Z, at %v", cam.Position)
	}
	floor := w.Grid().HeightAt(cam.Position.X, cam.Position.Z) + cam.EyeHeight
	if cam.Position.Y < floor {
		t.Errorf("expected eye at or above %v, got %v", floor, cam.Position.Y)
	}
	if len(w.Grid().Visible()) == 0 {
		t.Error("expected visible chunks")
	}
	if w.Clock() < 1.99 || w.Clock() > 2.01 {
		t.Errorf("expected clock near 2s, got %v", w.Clock())
	}
}

func TestUpdateClampsStep(t *testing.T) {
	w := newTestWorld(t)

	w.Update(5, Controls{}, 1)
	if want := float64(float32(maxStep)); w.Clock() != want {
		t.Errorf("expected a stalled frame to advance %v, got %v", want, w.Clock())
	}
}

func TestControlsDriveEnvironment(t *testing.T) {
	w := newTestWorld(t)

	w.Update(0.016, Controls{CycleTimeOfDay: true, ToggleWireframe: true, FogDelta: FogStep}, 1)

	env := w.Environment()
	if env.TimeOfDay() != lighting.Dusk {
		t.Errorf("expected dusk, got %s", env.TimeOfDay())
	}
	if !env.Wireframe() {
		t.Error("expected wireframe on")
	}
	if d := env.FogDensity(); d < 0.0149 || d > 0.0151 {
		t.Errorf("expected fog density 0.015, got %v", d)
	}

	for coord := range 3 {
		ch, ok := w.Grid().Chunk(terrain.Coord{X: coord})
		if !ok {
			t.Fatalf("chunk (%d,0) not loaded", coord)
		}
		if ch.RenderParameters() != env.Visuals() {
			t.Errorf("chunk (%d,0) visuals %+v, want %+v", coord, ch.RenderParameters(), env.Visuals())
		}
	}
}

func TestViewMatchesCamera(t *testing.T) {
	w := newTestWorld(t)
	v := w.View(1)

	if v.Position != w.Camera().Position {
		t.Errorf("expected view at camera position %v, got %v", w.Camera().Position, v.Position)
	}
	ahead := w.Camera().Position.Add(w.Camera().Direction().Scale(10))
	p := v.ViewProj.TransformVec3(ahead)
	if p.X < -1e-3 || p.X > 1e-3 || p.Y < -1e-3 || p.Y > 1e-3 {
		t.Errorf("expected point ahead at screen center, got %v", p)
	}
}

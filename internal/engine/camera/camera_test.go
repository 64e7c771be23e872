package camera

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/sandisle/pkg/math"
)

type flatGround float32

func (g flatGround) HeightAt(x, z float32) float32 { return float32(g) }

// stepGround is 0 for x < 0 and height elsewhere.
type stepGround struct{ height float32 }

func (g stepGround) HeightAt(x, z float32) float32 {
	if x < 0 {
		return 0
	}
	return g.height
}

func approx(a, b float32) bool {
	return gomath.Abs(float64(a-b)) < 1e-4
}

func TestNewFirstPersonStandsOnGround(t *testing.T) {
	s := DefaultSettings()
	c := NewFirstPerson(s, 3, -4, flatGround(2))

	if want := (math.Vec3{X: 3, Y: 2 + s.EyeHeight, Z: -4}); c.Position != want {
		t.Errorf("expected eye at %v, got %v", want, c.Position)
	}
	if !c.Grounded() {
		t.Error("expected camera to start grounded")
	}
}

func TestLookClampsPitch(t *testing.T) {
	c := NewFirstPerson(DefaultSettings(), 0, 0, flatGround(0))

	c.Look(0, -1e6)
	if c.Pitch > gomath.Pi/2 || c.Pitch < 1.5 {
		t.Errorf("expected pitch clamped near +pi/2, got %v", c.Pitch)
	}
	c.Look(0, 2e6)
	if c.Pitch < -gomath.Pi/2 || c.Pitch > -1.5 {
		t.Errorf("expected pitch clamped near -pi/2, got %v", c.Pitch)
	}

	c.Pitch = 0
	c.Look(100, 0)
	if !approx(c.Yaw, -0.2) {
		t.Errorf("expected yaw -0.2 after 100px, got %v", c.Yaw)
	}
}

func TestDirections(t *testing.T) {
	c := NewFirstPerson(DefaultSettings(), 0, 0, flatGround(0))

	tests := []struct {
		yaw            float32
		forward, right math.Vec3
	}{
		{0, math.Vec3{Z: -1}, math.Vec3{X: 1}},
		{gomath.Pi / 2, math.Vec3{X: -1}, math.Vec3{Z: -1}},
		{gomath.Pi, math.Vec3{Z: 1}, math.Vec3{X: -1}},
	}
	for _, tt := range tests {
		c.Yaw = tt.yaw
		f, r := c.Forward(), c.Right()
		if !approx(f.X, tt.forward.X) || !approx(f.Z, tt.forward.Z) {
			t.Errorf("yaw %v: expected forward %v, got %v", tt.yaw, tt.forward, f)
		}
		if !approx(r.X, tt.right.X) || !approx(r.Z, tt.right.Z) {
			t.Errorf("yaw %v: expected right %v, got %v", tt.yaw, tt.right, r)
		}
	}
}

func TestUpdateWalks(t *testing.T) {
	c := NewFirstPerson(DefaultSettings(), 0, 0, flatGround(0))

	for range 10 {
		c.Update(0.1, Movement{Forward: 1}, flatGround(0))
	}
	if !approx(c.Position.Z, -5) || !approx(c.Position.X, 0) {
		t.Errorf("expected to walk 5 units down -Z, got %v", c.Position)
	}
	if c.Position.Y != 1.7 {
		t.Errorf("expected eye height 1.7, got %v", c.Position.Y)
	}

	// Diagonal input is not faster.
	c.Position = math.Vec3{Y: 1.7}
	c.Update(1, Movement{Forward: 1, Right: 1}, flatGround(0))
	if d := c.Position.XZ().Length(); !approx(d, 5) {
		t.Errorf("expected diagonal step of 5, got %v", d)
	}
}

func TestJumpAndLand(t *testing.T) {
	c := NewFirstPerson(DefaultSettings(), 0, 0, flatGround(0))

	c.Update(0.01, Movement{Jump: true}, flatGround(0))
	if c.Grounded() || c.Position.Y <= 1.7 {
		t.Fatalf("expected to leave the ground, at %v", c.Position.Y)
	}

	// A second jump in the air does nothing.
	before := c.verticalVelocity
	c.Update(0.01, Movement{Jump: true}, flatGround(0))
	if c.verticalVelocity >= before {
		t.Error("expected no double jump")
	}

	peak := c.Position.Y
	for range 200 {
		c.Update(0.01, Movement{}, flatGround(0))
		peak = max(peak, c.Position.Y)
	}
	if !c.Grounded() || c.Position.Y != 1.7 {
		t.Errorf("expected to land at 1.7, got %v grounded=%v", c.Position.Y, c.Grounded())
	}
	// v²/2g = 100/60.
	if peak < 1.7+1.5 || peak > 1.7+1.8 {
		t.Errorf("unexpected jump apex %v", peak)
	}
}

func TestFollowsTerrain(t *testing.T) {
	ground := stepGround{height: 4}
	c := NewFirstPerson(DefaultSettings(), -1, 0, ground)
	c.Yaw = -gomath.Pi / 2 // face +X

	c.Update(0.5, Movement{Forward: 1}, ground)
	if c.Position.X <= 0 {
		t.Fatalf("expected to cross the step, at %v", c.Position)
	}
	if want := ground.height + c.EyeHeight; c.Position.Y != want {
		t.Errorf("expected to be lifted onto the step at %v, got %v", want, c.Position.Y)
	}
}

func TestViewMatrixLooksAlongDirection(t *testing.T) {
	c := NewFirstPerson(DefaultSettings(), 10, 10, flatGround(0))
	c.Yaw = 0.7
	c.Pitch = -0.3

	ahead := c.Position.Add(c.Direction().Scale(5))
	p := c.ViewMatrix().TransformVec3(ahead)
	if !approx(p.X, 0) || !approx(p.Y, 0) || !approx(p.Z, -5) {
		t.Errorf("expected point 5 ahead at (0,0,-5) in view space, got %v", p)
	}
}

func TestProjection(t *testing.T) {
	p := Projection{FOV: 90, Near: 0.1, Far: 1000}
	m := p.Matrix(1)
	if !approx(m[0], 1) || !approx(m[5], 1) {
		t.Errorf("expected unit focal length for 90 degrees, got %v %v", m[0], m[5])
	}
}

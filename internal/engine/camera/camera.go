// Package camera provides the first-person camera used to walk the island.
package camera

import (
	gomath "math"

	"github.com/Faultbox/sandisle/pkg/math"
)

// maxPitch stops just short of straight up or down, where the view basis
// degenerates.
const maxPitch = gomath.Pi/2 - 1e-3

// HeightSampler answers ground elevation queries. terrain.Grid implements it.
type HeightSampler interface {
	HeightAt(x, z float32) float32
}

// Settings holds movement tuning.
type Settings struct {
	EyeHeight        float32 // above the ground
	MoveSpeed        float32 // units per second
	Gravity          float32 // units per second squared
	JumpSpeed        float32 // initial upward velocity
	MouseSensitivity float32 // radians per pixel
}

// DefaultSettings returns the walking defaults.
func DefaultSettings() Settings {
	return Settings{
		EyeHeight:        1.7,
		MoveSpeed:        5,
		Gravity:          30,
		JumpSpeed:        10,
		MouseSensitivity: 0.002,
	}
}

// Movement is the player's intent for one frame.
type Movement struct {
	Forward float32 // -1 back, +1 forward
	Right   float32 // -1 left, +1 right
	Jump    bool
}

// FirstPerson is a walking camera that stays on the terrain surface.
type FirstPerson struct {
	Settings

	Position math.Vec3 // eye position
	Yaw      float32   // radians, 0 looks down -Z
	Pitch    float32   // radians, positive looks up

	verticalVelocity float32
	grounded         bool
}

// NewFirstPerson places the camera on the ground at (x, z).
func NewFirstPerson(s Settings, x, z float32, ground HeightSampler) *FirstPerson {
	c := &FirstPerson{Settings: s}
	c.Position = math.Vec3{X: x, Y: ground.HeightAt(x, z) + s.EyeHeight, Z: z}
	c.grounded = true
	return c
}

// Grounded reports whether the camera stands on the terrain.
func (c *FirstPerson) Grounded() bool { return c.grounded }

// Look rotates the camera by a mouse delta in pixels.
func (c *FirstPerson) Look(dx, dy float32) {
	c.Yaw -= dx * c.MouseSensitivity
	c.Pitch -= dy * c.MouseSensitivity
	c.Pitch = min(max(c.Pitch, -maxPitch), maxPitch)
}

// Direction returns the unit view direction.
func (c *FirstPerson) Direction() math.Vec3 {
	sy, cy := gomath.Sincos(float64(c.Yaw))
	sp, cp := gomath.Sincos(float64(c.Pitch))
	return math.Vec3{
		X: float32(-sy * cp),
		Y: float32(sp),
		Z: float32(-cy * cp),
	}
}

// Forward returns the horizontal walking direction.
func (c *FirstPerson) Forward() math.Vec3 {
	sy, cy := gomath.Sincos(float64(c.Yaw))
	return math.Vec3{X: float32(-sy), Z: float32(-cy)}
}

// Right returns the horizontal strafing direction.
func (c *FirstPerson) Right() math.Vec3 {
	sy, cy := gomath.Sincos(float64(c.Yaw))
	return math.Vec3{X: float32(cy), Z: float32(-sy)}
}

// Update moves the camera for one frame and keeps it at least EyeHeight
// above the ground.
func (c *FirstPerson) Update(dt float32, m Movement, ground HeightSampler) {
	dir := c.Forward().Scale(m.Forward).Add(c.Right().Scale(m.Right))
	if dir.Length() > 0 {
		c.Position = c.Position.Add(dir.Normalize().Scale(c.MoveSpeed * dt))
	}

	if m.Jump && c.grounded {
		c.verticalVelocity = c.JumpSpeed
		c.grounded = false
	}
	c.verticalVelocity -= c.Gravity * dt
	c.Position.Y += c.verticalVelocity * dt

	floor := ground.HeightAt(c.Position.X, c.Position.Z) + c.EyeHeight
	if c.Position.Y <= floor {
		c.Position.Y = floor
		c.verticalVelocity = 0
		c.grounded = true
	}
}

// ViewMatrix returns the view matrix for this camera.
func (c *FirstPerson) ViewMatrix() math.Mat4 {
	up := math.Vec3{X: 0, Y: 1, Z: 0}
	return math.LookAt(c.Position, c.Position.Add(c.Direction()), up)
}

// Projection describes a perspective projection.
type Projection struct {
	FOV  float32 // vertical, degrees
	Near float32
	Far  float32
}

// Matrix returns the projection matrix for the given aspect ratio.
func (p Projection) Matrix(aspect float32) math.Mat4 {
	return math.Perspective(p.FOV*gomath.Pi/180, aspect, p.Near, p.Far)
}

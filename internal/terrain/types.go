// Package terrain implements the procedural island terrain: a pure height
// function, LOD chunk geometry, and the grid that streams, culls and
// schedules chunks around the camera.
package terrain

import (
	"errors"
	"fmt"
	"math"

	gmath "github.com/Faultbox/sandisle/pkg/math"
)

var (
	// ErrInvalidOptions is wrapped by every configuration validation error.
	ErrInvalidOptions = errors.New("invalid terrain options")
	// ErrAllocation is wrapped when chunk geometry could not be allocated.
	ErrAllocation = errors.New("chunk geometry allocation failed")
)

// Coord identifies a chunk cell. The chunk origin is (X*size, Z*size).
type Coord struct {
	X, Z int
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Z)
}

// CoordAt returns the coordinate of the chunk containing world (x, z).
func CoordAt(x, z, size float32) Coord {
	return Coord{
		X: int(math.Floor(float64(x) / float64(size))),
		Z: int(math.Floor(float64(z) / float64(size))),
	}
}

// Origin returns the world-space corner of the chunk.
func (c Coord) Origin(size float32) gmath.Vec2 {
	return gmath.Vec2{X: float32(c.X) * size, Y: float32(c.Z) * size}
}

// Vertex is a chunk mesh vertex in chunk-local space.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	TexCoord [2]float32
}

// Mesh holds one chunk resolution ready for upload.
type Mesh struct {
	Vertices   []Vertex
	Indices    []uint32
	Resolution int
	Bounds     gmath.AABB
}

// VisualParams are the shader-facing inputs pushed down from the lighting
// and fog state. Chunks never own them.
type VisualParams struct {
	LightDirection gmath.Vec3
	FogColor       [3]float32
	FogDensity     float32
	Wireframe      bool
}

// DefaultVisualParams matches the daytime environment.
func DefaultVisualParams() VisualParams {
	return VisualParams{
		LightDirection: gmath.Vec3{X: 1, Y: 1, Z: 1},
		FogColor:       [3]float32{0x87 / 255.0, 0xce / 255.0, 0xeb / 255.0},
		FogDensity:     0.01,
	}
}

// WireframeSetter is implemented by every renderable that can switch to
// wireframe drawing.
type WireframeSetter interface {
	SetWireframe(enabled bool)
}

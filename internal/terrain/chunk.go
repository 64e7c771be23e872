package terrain

import (
	"fmt"

	gmath "github.com/Faultbox/sandisle/pkg/math"
)

// Chunk is one square tile of terrain. It owns a geometry per LOD level,
// all allocated at construction, and a local clock that drives time-varying
// shader inputs. Chunks are owned by a Grid.
type Chunk struct {
	coord  Coord
	origin gmath.Vec2
	size   float32
	lods   LODTable

	geometries []Geometry
	currentLOD int

	localTime      float32
	lastUpdateTime float64
	updateInterval float64
	intervalMin    float64
	intervalScale  float64

	params   VisualParams
	released bool
}

// newChunk allocates geometry for every mesh. On failure the geometry
// allocated so far is released and no chunk is returned.
func newChunk(coord Coord, opts *Options, meshes []*Mesh, visuals VisualParams) (*Chunk, error) {
	if len(meshes) != len(opts.LODs) {
		return nil, fmt.Errorf("chunk %s: %d meshes for %d LOD levels", coord, len(meshes), len(opts.LODs))
	}

	geometries := make([]Geometry, 0, len(meshes))
	for i, mesh := range meshes {
		g, err := opts.Allocator.Allocate(mesh)
		if err != nil {
			for _, allocated := range geometries {
				allocated.Release()
			}
			return nil, fmt.Errorf("chunk %s LOD %d: %w: %w", coord, i, ErrAllocation, err)
		}
		geometries = append(geometries, g)
	}

	return &Chunk{
		coord:         coord,
		origin:        coord.Origin(opts.ChunkSize),
		size:          opts.ChunkSize,
		lods:          opts.LODs,
		geometries:    geometries,
		intervalMin:   opts.UpdateIntervalMin.Seconds(),
		intervalScale: opts.UpdateIntervalPerUnit.Seconds(),
		params:        visuals,
	}, nil
}

// Coord returns the chunk's grid coordinate.
func (c *Chunk) Coord() Coord { return c.coord }

// Origin returns the world-space corner (x, z).
func (c *Chunk) Origin() gmath.Vec2 { return c.origin }

// Size returns the edge length in world units.
func (c *Chunk) Size() float32 { return c.size }

// Center returns the world-space center (x, z).
func (c *Chunk) Center() gmath.Vec2 {
	half := c.size / 2
	return gmath.Vec2{X: c.origin.X + half, Y: c.origin.Y + half}
}

// CurrentLOD returns the index of the bound LOD level.
func (c *Chunk) CurrentLOD() int { return c.currentLOD }

// Geometry returns the geometry of the bound LOD level.
func (c *Chunk) Geometry() Geometry { return c.geometries[c.currentLOD] }

// LocalTime returns the accumulated shader time in seconds.
func (c *Chunk) LocalTime() float32 { return c.localTime }

// UpdateInterval returns the current advance interval in seconds.
func (c *Chunk) UpdateInterval() float64 { return c.updateInterval }

// RenderParameters returns the visual inputs last pushed to the chunk.
func (c *Chunk) RenderParameters() VisualParams { return c.params }

// Wireframe reports whether the chunk draws as wireframe.
func (c *Chunk) Wireframe() bool { return c.params.Wireframe }

// Bounds returns the chunk's world-space box: its footprint and the full
// elevation range of the height function.
func (c *Chunk) Bounds(params HeightParams) gmath.AABB {
	lo, hi := params.Bounds()
	return gmath.AABB{
		Min: gmath.Vec3{X: c.origin.X, Y: lo, Z: c.origin.Y},
		Max: gmath.Vec3{X: c.origin.X + c.size, Y: hi, Z: c.origin.Y + c.size},
	}
}

// DistanceTo returns the planar distance from p to the chunk center.
func (c *Chunk) DistanceTo(p gmath.Vec3) float32 {
	return c.Center().Distance(p.XZ())
}

// SelectLOD binds the LOD level for the camera's planar distance to the
// chunk center and derives the advance interval from the same distance.
// It reports whether the bound level changed.
func (c *Chunk) SelectLOD(camera gmath.Vec3) bool {
	mustFinite("Chunk.SelectLOD", camera)

	distance := c.DistanceTo(camera)
	c.updateInterval = max(c.intervalMin, float64(distance)*c.intervalScale)

	lod := c.lods.Select(distance)
	if lod == c.currentLOD {
		return false
	}
	c.currentLOD = lod
	return true
}

// ShouldAdvance reports whether the update interval has elapsed since the
// last advance.
func (c *Chunk) ShouldAdvance(now float64) bool {
	return now-c.lastUpdateTime >= c.updateInterval
}

// Advance accumulates delta into the local clock when the interval has
// elapsed and reports whether it did.
func (c *Chunk) Advance(delta float32, now float64) bool {
	if !c.ShouldAdvance(now) {
		return false
	}
	c.localTime += delta
	c.lastUpdateTime = now
	return true
}

// UpdateRenderParameters overwrites the chunk's light and fog inputs.
func (c *Chunk) UpdateRenderParameters(lightDirection gmath.Vec3, fogColor [3]float32, fogDensity float32) {
	c.params.LightDirection = lightDirection
	c.params.FogColor = fogColor
	c.params.FogDensity = fogDensity
}

// SetWireframe switches wireframe drawing.
func (c *Chunk) SetWireframe(enabled bool) {
	c.params.Wireframe = enabled
}

// Release frees every LOD geometry. Releasing a chunk twice is a bug in the
// caller and panics.
func (c *Chunk) Release() {
	if c.released {
		panic(fmt.Sprintf("terrain: chunk %s released twice", c.coord))
	}
	c.released = true
	for _, g := range c.geometries {
		g.Release()
	}
}

// Released reports whether Release has been called.
func (c *Chunk) Released() bool { return c.released }

func mustFinite(op string, p gmath.Vec3) {
	if !p.IsFinite() {
		panic(fmt.Sprintf("terrain: %s: non-finite camera position %v", op, p))
	}
}

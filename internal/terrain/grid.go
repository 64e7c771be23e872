package terrain

import (
	"context"
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	gmath "github.com/Faultbox/sandisle/pkg/math"
)

// View is the camera state read once per Tick.
type View struct {
	Position gmath.Vec3
	ViewProj gmath.Mat4
}

// TickStats describes the work done by one Tick.
type TickStats struct {
	Streamed   bool // the throttled streaming and visibility pass ran
	Visible    int
	LODChanges int
	Advanced   int // chunks whose local clock moved
}

// Stats are cumulative grid counters.
type Stats struct {
	Loaded    int
	Visible   int
	Pending   int
	Created   uint64
	Evicted   uint64
	Failed    uint64
	Discarded uint64
}

// Grid owns the live chunks around the camera. All methods must be called
// from one goroutine, normally the render loop. Height queries that need no
// streaming state can use HeightParams.Height from anywhere.
type Grid struct {
	opts Options
	log  *zap.Logger

	chunks    map[Coord]*Chunk
	visible   []*Chunk
	templates []*Mesh
	builder   *builder

	streamCamera gmath.Vec3
	lastStream   float64
	streamed     bool
	visuals      VisualParams

	stats Stats
}

// NewGrid validates opts and creates an empty grid.
func NewGrid(opts Options) (*Grid, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if opts.Allocator == nil {
		opts.Allocator = CPUAllocator{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	g := &Grid{
		opts:      opts,
		log:       opts.Logger.Named("terrain"),
		chunks:    make(map[Coord]*Chunk),
		templates: BuildLODMeshes(opts.ChunkSize, opts.LODs),
		visuals:   DefaultVisualParams(),
	}
	if opts.Workers > 0 {
		g.builder = newBuilder(opts.Workers, g.buildMeshes)
	}

	g.log.Info("terrain grid created",
		zap.Float32("chunk_size", opts.ChunkSize),
		zap.Float32("view_distance", opts.ViewDistance),
		zap.Int("lod_levels", len(opts.LODs)),
		zap.Int("workers", opts.Workers),
		zap.Bool("bake_heights", opts.BakeHeights),
	)
	return g, nil
}

// Options returns the grid configuration.
func (g *Grid) Options() Options { return g.opts }

// Len returns the number of loaded chunks.
func (g *Grid) Len() int { return len(g.chunks) }

// Chunk returns the loaded chunk at coord.
func (g *Grid) Chunk(coord Coord) (*Chunk, bool) {
	ch, ok := g.chunks[coord]
	return ch, ok
}

// Visible returns the chunks that passed the last visibility pass, nearest
// first. The slice is reused by the next pass.
func (g *Grid) Visible() []*Chunk { return g.visible }

// Stats returns the grid counters.
func (g *Grid) Stats() Stats {
	s := g.stats
	s.Loaded = len(g.chunks)
	s.Visible = len(g.visible)
	if g.builder != nil {
		s.Pending = len(g.builder.pending)
	}
	return s
}

// UpdateStreaming loads every chunk whose cell touches the square of half
// width ViewDistance around the camera and evicts chunks whose center is
// beyond ViewDistance*EvictionMultiplier. Evicted chunks also leave the
// visible list.
func (g *Grid) UpdateStreaming(camera gmath.Vec3) {
	mustFinite("Grid.UpdateStreaming", camera)
	g.streamCamera = camera
	evictAt := g.opts.evictDistance()

	if g.builder != nil {
		stale := g.builder.collect(func(r buildResult) {
			if r.err != nil {
				g.stats.Failed++
				g.log.Warn("chunk build failed", zap.Stringer("coord", r.coord), zap.Error(r.err))
				return
			}
			if _, ok := g.chunks[r.coord]; ok {
				return
			}
			if centerDistance(r.coord, g.opts.ChunkSize, camera) > evictAt {
				g.stats.Discarded++
				return
			}
			g.install(r.coord, r.meshes)
		})
		g.stats.Discarded += uint64(stale)
	}

	x0, x1 := bandRange(camera.X, g.opts.ViewDistance, g.opts.ChunkSize)
	z0, z1 := bandRange(camera.Z, g.opts.ViewDistance, g.opts.ChunkSize)
	for cx := x0; cx <= x1; cx++ {
		for cz := z0; cz <= z1; cz++ {
			coord := Coord{X: cx, Z: cz}
			if _, ok := g.chunks[coord]; !ok {
				g.load(coord)
			}
		}
	}

	evicted := 0
	for coord, ch := range g.chunks {
		if ch.DistanceTo(camera) <= evictAt {
			continue
		}
		ch.Release()
		delete(g.chunks, coord)
		evicted++
		g.log.Debug("chunk evicted", zap.Stringer("coord", coord))
	}
	g.stats.Evicted += uint64(evicted)
	if evicted > 0 {
		g.dropReleased()
	}

	if g.builder != nil {
		for coord := range g.builder.pending {
			if centerDistance(coord, g.opts.ChunkSize, camera) > evictAt {
				g.builder.forget(coord)
			}
		}
	}
}

// dropReleased removes evicted chunks from the visible list, keeping order.
func (g *Grid) dropReleased() {
	kept := g.visible[:0]
	for _, ch := range g.visible {
		if !ch.Released() {
			kept = append(kept, ch)
		}
	}
	clear(g.visible[len(kept):])
	g.visible = kept
}

// UpdateVisibility rebuilds the visible list from the frustum, ordered by
// distance to the camera of the last streaming pass. Culled chunks stay
// loaded.
func (g *Grid) UpdateVisibility(frustum gmath.Frustum) {
	g.visible = g.visible[:0]
	for _, ch := range g.chunks {
		if frustum.IntersectsAABB(ch.Bounds(g.opts.Height)) {
			g.visible = append(g.visible, ch)
		}
	}

	camera := g.streamCamera
	sort.Slice(g.visible, func(i, j int) bool {
		a, b := g.visible[i], g.visible[j]
		da, db := a.DistanceTo(camera), b.DistanceTo(camera)
		if da != db {
			return da < db
		}
		if a.coord.X != b.coord.X {
			return a.coord.X < b.coord.X
		}
		return a.coord.Z < b.coord.Z
	})
}

// Tick is the per-frame entry point. Streaming and visibility run at most
// once per StreamInterval (and always on the first call); LOD selection runs
// for every visible chunk, then up to MaxUpdatesPerFrame of the nearest
// visible chunks advance their clocks.
//
// now must not decrease between calls. A clock that steps backwards holds
// off streaming until it passes the last streaming time again.
func (g *Grid) Tick(delta float32, now float64, view View) TickStats {
	mustFinite("Grid.Tick", view.Position)

	var ts TickStats
	if !g.streamed || now-g.lastStream >= g.opts.StreamInterval.Seconds() {
		g.UpdateStreaming(view.Position)
		g.UpdateVisibility(gmath.FrustumFromMatrix(view.ViewProj))
		g.lastStream = now
		g.streamed = true
		ts.Streamed = true
	}

	for _, ch := range g.visible {
		if ch.SelectLOD(view.Position) {
			ts.LODChanges++
		}
	}

	n := min(len(g.visible), g.opts.MaxUpdatesPerFrame)
	for _, ch := range g.visible[:n] {
		if ch.Advance(delta, now) {
			ts.Advanced++
		}
	}

	ts.Visible = len(g.visible)
	return ts
}

// HeightAt returns the terrain elevation at (x, z) if the containing chunk
// is loaded, and 0 otherwise. It never fails.
func (g *Grid) HeightAt(x, z float32) float32 {
	if !isFinite(x) || !isFinite(z) {
		return 0
	}
	if _, ok := g.chunks[CoordAt(x, z, g.opts.ChunkSize)]; !ok {
		return 0
	}
	return g.opts.Height.Height(x, z)
}

// UpdateRenderParameters pushes light and fog inputs to every chunk.
// Chunks loaded later start with the same values.
func (g *Grid) UpdateRenderParameters(lightDirection gmath.Vec3, fogColor [3]float32, fogDensity float32) {
	g.visuals.LightDirection = lightDirection
	g.visuals.FogColor = fogColor
	g.visuals.FogDensity = fogDensity
	for _, ch := range g.chunks {
		ch.UpdateRenderParameters(lightDirection, fogColor, fogDensity)
	}
}

// SetWireframe switches wireframe drawing on every chunk.
func (g *Grid) SetWireframe(enabled bool) {
	g.visuals.Wireframe = enabled
	for _, ch := range g.chunks {
		var s WireframeSetter = ch
		s.SetWireframe(enabled)
	}
}

// ApplyVisuals pushes a complete set of visual parameters.
func (g *Grid) ApplyVisuals(v VisualParams) {
	g.UpdateRenderParameters(v.LightDirection, v.FogColor, v.FogDensity)
	g.SetWireframe(v.Wireframe)
}

// Dispose releases every chunk and stops the worker pool.
func (g *Grid) Dispose() {
	if g.builder != nil {
		g.builder.close()
		g.builder = nil
	}
	for coord, ch := range g.chunks {
		ch.Release()
		delete(g.chunks, coord)
	}
	g.visible = nil
	g.log.Info("terrain grid disposed",
		zap.Uint64("created", g.stats.Created),
		zap.Uint64("evicted", g.stats.Evicted),
	)
}

func (g *Grid) load(coord Coord) {
	if g.builder != nil {
		g.builder.request(coord)
		return
	}
	meshes, err := g.buildMeshes(context.Background(), coord)
	if err != nil {
		g.stats.Failed++
		g.log.Warn("chunk build failed", zap.Stringer("coord", coord), zap.Error(err))
		return
	}
	g.install(coord, meshes)
}

// install allocates geometry and inserts the chunk. A failed chunk is not
// inserted, so the next streaming pass tries again.
func (g *Grid) install(coord Coord, meshes []*Mesh) {
	ch, err := newChunk(coord, &g.opts, meshes, g.visuals)
	if err != nil {
		g.stats.Failed++
		g.log.Warn("chunk construction failed", zap.Stringer("coord", coord), zap.Error(err))
		return
	}
	g.chunks[coord] = ch
	g.stats.Created++
	g.log.Debug("chunk loaded", zap.Stringer("coord", coord))
}

// buildMeshes returns the meshes for every LOD level of coord. Flat meshes
// are shared templates; baked meshes are built per chunk.
func (g *Grid) buildMeshes(ctx context.Context, coord Coord) ([]*Mesh, error) {
	if !g.opts.BakeHeights {
		return g.templates, nil
	}
	origin := coord.Origin(g.opts.ChunkSize)
	meshes := make([]*Mesh, len(g.templates))
	for i, tmpl := range g.templates {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("chunk %s: %w", coord, err)
		}
		meshes[i] = BakeHeights(tmpl, origin, g.opts.Height)
	}
	return meshes, nil
}

// bandRange returns the inclusive chunk index range whose cells touch
// [p-viewDistance, p+viewDistance] on one axis. The centers of those cells
// lie within viewDistance+size/2 of p.
func bandRange(p, viewDistance, size float32) (lo, hi int) {
	lo = int(math.Floor(float64(p-viewDistance) / float64(size)))
	hi = int(math.Floor(float64(p+viewDistance) / float64(size)))
	return lo, hi
}

func centerDistance(coord Coord, size float32, p gmath.Vec3) float32 {
	o := coord.Origin(size)
	half := size / 2
	return gmath.Vec2{X: o.X + half, Y: o.Y + half}.Distance(p.XZ())
}

func isFinite(f float32) bool {
	return !math.IsNaN(float64(f)) && !math.IsInf(float64(f), 0)
}

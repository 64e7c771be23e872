package terrain

// Geometry is one uploaded chunk resolution. Implementations belong to the
// render pipeline; the terrain only binds and releases them.
type Geometry interface {
	Resolution() int
	IndexCount() int32
	// Handle is the renderer's identifier for the bound geometry (a VAO
	// for the OpenGL renderer, zero for CPU geometry).
	Handle() uint32
	Release()
}

// GeometryAllocator turns a mesh into renderable geometry. It is called on
// the goroutine that owns the grid.
type GeometryAllocator interface {
	Allocate(mesh *Mesh) (Geometry, error)
}

// CPUAllocator keeps meshes in memory. It backs headless tools and tests.
type CPUAllocator struct{}

// Allocate wraps the mesh without copying it.
func (CPUAllocator) Allocate(mesh *Mesh) (Geometry, error) {
	return &CPUGeometry{Mesh: mesh}, nil
}

// CPUGeometry is geometry that lives only in process memory.
type CPUGeometry struct {
	Mesh     *Mesh
	released bool
}

func (g *CPUGeometry) Resolution() int   { return g.Mesh.Resolution }
func (g *CPUGeometry) IndexCount() int32 { return int32(len(g.Mesh.Indices)) }
func (g *CPUGeometry) Handle() uint32    { return 0 }

// Release drops the mesh reference.
func (g *CPUGeometry) Release() {
	g.released = true
	g.Mesh = &Mesh{Resolution: g.Mesh.Resolution}
}

// Released reports whether Release was called.
func (g *CPUGeometry) Released() bool {
	return g.released
}

package renderer

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/sandisle/internal/logger"
	"github.com/Faultbox/sandisle/internal/terrain"
)

const vertexStride = int32(unsafe.Sizeof(terrain.Vertex{}))

// buffers is one uploaded mesh. Flat template meshes are shared by every
// chunk, so uploads are reference counted per mesh.
type buffers struct {
	vao, vbo, ebo uint32
	indexCount    int32
	refs          int
}

// Allocator uploads chunk meshes to the GPU. It implements
// terrain.GeometryAllocator and must be used on the GL thread.
type Allocator struct {
	uploads map[*terrain.Mesh]*buffers
}

// NewAllocator creates an empty allocator.
func NewAllocator() *Allocator {
	return &Allocator{uploads: make(map[*terrain.Mesh]*buffers)}
}

// Allocate uploads mesh, or shares an existing upload of the same mesh.
func (a *Allocator) Allocate(mesh *terrain.Mesh) (terrain.Geometry, error) {
	b, ok := a.uploads[mesh]
	if !ok {
		var err error
		if b, err = upload(mesh); err != nil {
			return nil, err
		}
		a.uploads[mesh] = b
	}
	b.refs++
	return &geometry{alloc: a, mesh: mesh, buf: b, resolution: mesh.Resolution}, nil
}

// Live returns the number of meshes currently on the GPU.
func (a *Allocator) Live() int { return len(a.uploads) }

func (a *Allocator) release(mesh *terrain.Mesh, b *buffers) {
	b.refs--
	if b.refs > 0 {
		return
	}
	delete(a.uploads, mesh)
	gl.DeleteVertexArrays(1, &b.vao)
	gl.DeleteBuffers(1, &b.vbo)
	gl.DeleteBuffers(1, &b.ebo)
}

type geometry struct {
	alloc      *Allocator
	mesh       *terrain.Mesh
	buf        *buffers
	resolution int
}

func (g *geometry) Resolution() int   { return g.resolution }
func (g *geometry) IndexCount() int32 { return g.buf.indexCount }
func (g *geometry) Handle() uint32    { return g.buf.vao }

func (g *geometry) Release() {
	if g.buf == nil {
		return
	}
	g.alloc.release(g.mesh, g.buf)
	g.buf = &buffers{}
	g.mesh = nil
}

func upload(mesh *terrain.Mesh) (*buffers, error) {
	if len(mesh.Vertices) == 0 || len(mesh.Indices) == 0 {
		return nil, fmt.Errorf("empty mesh (resolution %d)", mesh.Resolution)
	}

	b := &buffers{indexCount: int32(len(mesh.Indices))}

	gl.GenVertexArrays(1, &b.vao)
	gl.BindVertexArray(b.vao)

	gl.GenBuffers(1, &b.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(mesh.Vertices)*int(vertexStride), unsafe.Pointer(&mesh.Vertices[0]), gl.STATIC_DRAW)

	gl.GenBuffers(1, &b.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, b.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(mesh.Indices)*4, unsafe.Pointer(&mesh.Indices[0]), gl.STATIC_DRAW)

	// Position (location = 0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, vertexStride, unsafe.Offsetof(terrain.Vertex{}.Position))
	gl.EnableVertexAttribArray(0)

	// Normal (location = 1)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, vertexStride, unsafe.Offsetof(terrain.Vertex{}.Normal))
	gl.EnableVertexAttribArray(1)

	// TexCoord (location = 2)
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, vertexStride, unsafe.Offsetof(terrain.Vertex{}.TexCoord))
	gl.EnableVertexAttribArray(2)

	gl.BindVertexArray(0)

	if errCode := gl.GetError(); errCode != gl.NO_ERROR {
		gl.DeleteVertexArrays(1, &b.vao)
		gl.DeleteBuffers(1, &b.vbo)
		gl.DeleteBuffers(1, &b.ebo)
		return nil, fmt.Errorf("uploading mesh: GL error 0x%x", errCode)
	}

	logger.Debug("mesh uploaded",
		zap.Uint32("vao", b.vao),
		zap.Int("vertices", len(mesh.Vertices)),
		zap.Int32("indices", b.indexCount),
	)
	return b, nil
}

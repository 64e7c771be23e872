package terrain

import (
	gmath "github.com/Faultbox/sandisle/pkg/math"
)

// texRepeat is the sand texture repeat per world unit.
const texRepeat = 1.1

// BuildPlane creates a flat chunk grid of resolution x resolution cells
// covering [0,size] on X and Z in chunk-local space. Displacement happens in
// the vertex stage, or on the CPU through BakeHeights.
func BuildPlane(size float32, resolution int) *Mesh {
	if resolution < 1 {
		resolution = 1
	}
	row := resolution + 1
	step := size / float32(resolution)

	vertices := make([]Vertex, 0, row*row)
	for iz := range row {
		for ix := range row {
			x := float32(ix) * step
			z := float32(iz) * step
			vertices = append(vertices, Vertex{
				Position: [3]float32{x, 0, z},
				Normal:   [3]float32{0, 1, 0},
				TexCoord: [2]float32{x * texRepeat, z * texRepeat},
			})
		}
	}

	indices := make([]uint32, 0, resolution*resolution*6)
	for iz := range resolution {
		for ix := range resolution {
			i0 := uint32(iz*row + ix)
			i1 := i0 + 1
			i2 := i0 + uint32(row)
			i3 := i2 + 1
			// Counter-clockwise seen from +Y.
			indices = append(indices,
				i0, i2, i1,
				i1, i2, i3,
			)
		}
	}

	return &Mesh{
		Vertices:   vertices,
		Indices:    indices,
		Resolution: resolution,
		Bounds: gmath.AABB{
			Min: gmath.Vec3{},
			Max: gmath.Vec3{X: size, Z: size},
		},
	}
}

// BakeHeights returns a copy of mesh displaced by the height function for a
// chunk whose corner sits at origin. Texture coordinates become world-based
// so adjacent chunks tile seamlessly.
func BakeHeights(mesh *Mesh, origin gmath.Vec2, params HeightParams) *Mesh {
	out := &Mesh{
		Vertices:   make([]Vertex, len(mesh.Vertices)),
		Indices:    mesh.Indices,
		Resolution: mesh.Resolution,
	}
	lo, hi := params.Bounds()
	out.Bounds = gmath.AABB{
		Min: gmath.Vec3{X: mesh.Bounds.Min.X, Y: hi, Z: mesh.Bounds.Min.Z},
		Max: gmath.Vec3{X: mesh.Bounds.Max.X, Y: lo, Z: mesh.Bounds.Max.Z},
	}

	for i, v := range mesh.Vertices {
		wx := origin.X + v.Position[0]
		wz := origin.Y + v.Position[2]
		y := params.Height(wx, wz)
		n := params.Normal(wx, wz)

		v.Position[1] = y
		v.Normal = [3]float32{n.X, n.Y, n.Z}
		v.TexCoord = [2]float32{wx * texRepeat, wz * texRepeat}
		out.Vertices[i] = v
		out.Bounds.Extend(gmath.Vec3{X: v.Position[0], Y: y, Z: v.Position[2]})
	}
	return out
}

// BuildLODMeshes builds the flat mesh for every level of the table.
func BuildLODMeshes(size float32, lods LODTable) []*Mesh {
	meshes := make([]*Mesh, len(lods))
	for i, level := range lods {
		meshes[i] = BuildPlane(size, level.Resolution)
	}
	return meshes
}

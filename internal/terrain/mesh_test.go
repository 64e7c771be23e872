package terrain

import (
	"testing"

	gmath "github.com/Faultbox/sandisle/pkg/math"
)

func TestBuildPlane(t *testing.T) {
	m := BuildPlane(32, 4)

	if len(m.Vertices) != 25 {
		t.Errorf("expected 25 vertices, got %d", len(m.Vertices))
	}
	if len(m.Indices) != 4*4*6 {
		t.Errorf("expected 96 indices, got %d", len(m.Indices))
	}
	if m.Resolution != 4 {
		t.Errorf("expected resolution 4, got %d", m.Resolution)
	}

	first := m.Vertices[0].Position
	last := m.Vertices[len(m.Vertices)-1].Position
	if first != [3]float32{0, 0, 0} {
		t.Errorf("first vertex = %v, want origin", first)
	}
	if last != [3]float32{32, 0, 32} {
		t.Errorf("last vertex = %v, want (32,0,32)", last)
	}

	for i, idx := range m.Indices {
		if int(idx) >= len(m.Vertices) {
			t.Fatalf("index %d = %d out of range", i, idx)
		}
	}
}

func TestBuildPlaneWindingFacesUp(t *testing.T) {
	m := BuildPlane(8, 2)

	for i := 0; i < len(m.Indices); i += 3 {
		a := toVec(m.Vertices[m.Indices[i]].Position)
		b := toVec(m.Vertices[m.Indices[i+1]].Position)
		c := toVec(m.Vertices[m.Indices[i+2]].Position)
		n := b.Sub(a).Cross(c.Sub(a))
		if n.Y <= 0 {
			t.Fatalf("triangle %d faces down: normal %v", i/3, n)
		}
	}
}

func TestBakeHeights(t *testing.T) {
	p := DefaultHeightParams()
	flat := BuildPlane(32, 8)
	origin := gmath.Vec2{X: -32, Y: 0}

	baked := BakeHeights(flat, origin, p)
	for i, v := range baked.Vertices {
		wx := origin.X + v.Position[0]
		wz := origin.Y + v.Position[2]
		if want := p.Height(wx, wz); v.Position[1] != want {
			t.Fatalf("vertex %d height = %v, want %v", i, v.Position[1], want)
		}
	}
	if flat.Vertices[10].Position[1] != 0 {
		t.Error("BakeHeights must not modify the source mesh")
	}
	if baked.Bounds.Min.Y > baked.Bounds.Max.Y {
		t.Errorf("baked bounds inverted: %v", baked.Bounds)
	}
}

func TestSeamContinuityAcrossChunks(t *testing.T) {
	p := DefaultHeightParams()
	const size = 32
	flat := BuildPlane(size, 16)
	row := flat.Resolution + 1

	pairs := [][2]Coord{
		{{X: -1, Z: 0}, {X: 0, Z: 0}},
		{{X: 0, Z: 0}, {X: 1, Z: 0}},
		{{X: 0, Z: -1}, {X: 0, Z: 0}},
		{{X: 1, Z: 1}, {X: 1, Z: 2}},
	}
	for _, pair := range pairs {
		a := BakeHeights(flat, pair[0].Origin(size), p)
		b := BakeHeights(flat, pair[1].Origin(size), p)
		alongX := pair[1].X != pair[0].X

		for i := range row {
			var ia, ib int
			if alongX {
				ia = i*row + (row - 1) // east edge of a
				ib = i * row           // west edge of b
			} else {
				ia = (row-1)*row + i // north edge of a
				ib = i               // south edge of b
			}
			if a.Vertices[ia].Position[1] != b.Vertices[ib].Position[1] {
				t.Fatalf("seam between %s and %s cracks at sample %d: %v vs %v",
					pair[0], pair[1], i, a.Vertices[ia].Position[1], b.Vertices[ib].Position[1])
			}
		}
	}
}

func toVec(p [3]float32) gmath.Vec3 {
	return gmath.Vec3{X: p[0], Y: p[1], Z: p[2]}
}

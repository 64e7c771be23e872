package math

import "math"

// Plane is a*x + b*y + c*z + d; points with a non-negative value are inside.
type Plane [4]float32

// Distance returns the signed distance of p to the plane.
func (pl Plane) Distance(p Vec3) float32 {
	return pl[0]*p.X + pl[1]*p.Y + pl[2]*p.Z + pl[3]
}

// Frustum holds the six clip planes of a camera, normals pointing inwards.
// Order: left, right, bottom, top, near, far.
type Frustum struct {
	Planes [6]Plane
}

// FrustumFromMatrix extracts the clip planes of a view-projection matrix
// (Gribb/Hartmann). Planes are normalized so Distance is in world units.
func FrustumFromMatrix(viewProj Mat4) Frustum {
	r0, r1, r2, r3 := viewProj.Row(0), viewProj.Row(1), viewProj.Row(2), viewProj.Row(3)

	var f Frustum
	for i := range 4 {
		f.Planes[0][i] = r3[i] + r0[i]
		f.Planes[1][i] = r3[i] - r0[i]
		f.Planes[2][i] = r3[i] + r1[i]
		f.Planes[3][i] = r3[i] - r1[i]
		f.Planes[4][i] = r3[i] + r2[i]
		f.Planes[5][i] = r3[i] - r2[i]
	}
	for i := range f.Planes {
		p := &f.Planes[i]
		l := float32(math.Sqrt(float64(p[0]*p[0] + p[1]*p[1] + p[2]*p[2])))
		if l == 0 {
			continue
		}
		p[0] /= l
		p[1] /= l
		p[2] /= l
		p[3] /= l
	}
	return f
}

// ContainsPoint reports whether p is inside all six planes.
func (f Frustum) ContainsPoint(p Vec3) bool {
	for _, pl := range f.Planes {
		if pl.Distance(p) < 0 {
			return false
		}
	}
	return true
}

// IntersectsAABB reports whether the box is at least partially inside the
// frustum. For each plane the corner furthest along the plane normal is
// tested; this can report false positives near frustum corners but never
// culls a visible box.
func (f Frustum) IntersectsAABB(b AABB) bool {
	for _, pl := range f.Planes {
		p := Vec3{b.Min.X, b.Min.Y, b.Min.Z}
		if pl[0] >= 0 {
			p.X = b.Max.X
		}
		if pl[1] >= 0 {
			p.Y = b.Max.Y
		}
		if pl[2] >= 0 {
			p.Z = b.Max.Z
		}
		if pl.Distance(p) < 0 {
			return false
		}
	}
	return true
}

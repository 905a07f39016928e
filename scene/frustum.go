package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"clustered-deferred/core"
)

// Plane represents a half-space: ax + by + cz + d = 0
// Normal (a, b, c) points into the "inside" of the frustum.
type Plane struct {
	Normal mgl32.Vec3
	D      float32
}

// DistanceTo returns the signed distance from a point to the plane.
// Positive means on the "inside" (same side as Normal).
func (p Plane) DistanceTo(pt mgl32.Vec3) float32 {
	return p.Normal.Dot(pt) + p.D
}

// Frustum holds the six clip planes of a view frustum.
type Frustum struct {
	Planes [6]Plane // Left, Right, Bottom, Top, Near, Far
}

// FrustumFromVP extracts the six frustum planes from a column-major
// view-projection matrix (Gribb/Hartmann). The planes are normalized so
// DistanceTo returns a true distance in world units.
func FrustumFromVP(vp mgl32.Mat4) Frustum {
	r0, r1, r2, r3 := vp.Row(0), vp.Row(1), vp.Row(2), vp.Row(3)

	var f Frustum
	f.Planes[0] = normalizePlane(r3.Add(r0)) // left
	f.Planes[1] = normalizePlane(r3.Sub(r0)) // right
	f.Planes[2] = normalizePlane(r3.Add(r1)) // bottom
	f.Planes[3] = normalizePlane(r3.Sub(r1)) // top
	f.Planes[4] = normalizePlane(r3.Add(r2)) // near
	f.Planes[5] = normalizePlane(r3.Sub(r2)) // far
	return f
}

func normalizePlane(v mgl32.Vec4) Plane {
	n := v.Vec3()
	l := n.Len()
	if l == 0 {
		return Plane{}
	}
	return Plane{Normal: n.Mul(1 / l), D: v[3] / l}
}

// IntersectsAABB returns false if the box is completely outside the frustum.
// Uses the "n-vertex" test: for each plane, check if the "positive vertex"
// (the corner most aligned with the plane normal) is on the outside.
func (f *Frustum) IntersectsAABB(box core.AABB) bool {
	for i := 0; i < 6; i++ {
		p := f.Planes[i]
		var pv mgl32.Vec3
		for a := 0; a < 3; a++ {
			if p.Normal[a] < 0 {
				pv[a] = box.Min[a]
			} else {
				pv[a] = box.Max[a]
			}
		}
		if p.DistanceTo(pv) < 0 {
			return false // outside this plane
		}
	}
	return true
}

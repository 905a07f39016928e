package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

// ComputeTangents generates per-vertex tangents for tangent-space normal
// mapping. W holds the bitangent handedness (+1 or -1). Triangles with a
// degenerate UV area are skipped.
//
// Call before the primitive is uploaded to the GPU.
func ComputeTangents(p *Primitive) {
	tan := make([]mgl32.Vec3, len(p.Vertices))
	bitan := make([]mgl32.Vec3, len(p.Vertices))

	// accum adds the tangent/bitangent contribution of one triangle to its vertices.
	accum := func(i0, i1, i2 uint32) {
		if int(i0) >= len(p.Vertices) || int(i1) >= len(p.Vertices) || int(i2) >= len(p.Vertices) {
			return
		}
		v0 := p.Vertices[i0]
		v1 := p.Vertices[i1]
		v2 := p.Vertices[i2]

		e1 := v1.Position.Sub(v0.Position)
		e2 := v2.Position.Sub(v0.Position)

		du1 := v1.UV[0] - v0.UV[0]
		dv1 := v1.UV[1] - v0.UV[1]
		du2 := v2.UV[0] - v0.UV[0]
		dv2 := v2.UV[1] - v0.UV[1]

		denom := du1*dv2 - du2*dv1
		if denom == 0 {
			return // degenerate UV triangle
		}
		r := 1.0 / denom

		t := e1.Mul(dv2 * r).Sub(e2.Mul(dv1 * r))
		b := e2.Mul(du1 * r).Sub(e1.Mul(du2 * r))

		for _, i := range [3]uint32{i0, i1, i2} {
			tan[i] = tan[i].Add(t)
			bitan[i] = bitan[i].Add(b)
		}
	}

	for i := 0; i+2 < len(p.Indices); i += 3 {
		accum(p.Indices[i], p.Indices[i+1], p.Indices[i+2])
	}

	// Gram-Schmidt orthogonalize against the normal.
	for i := range p.Vertices {
		n := p.Vertices[i].Normal
		t := tan[i].Sub(n.Mul(n.Dot(tan[i])))
		if t.LenSqr() < 1e-8 {
			// Degenerate: choose an arbitrary tangent perpendicular to N.
			if abs32(n[0]) < 0.9 {
				t = mgl32.Vec3{1, 0, 0}.Sub(n.Mul(n[0]))
			} else {
				t = mgl32.Vec3{0, 1, 0}.Sub(n.Mul(n[1]))
			}
		}
		t = t.Normalize()

		w := float32(1)
		if n.Cross(t).Dot(bitan[i]) < 0 {
			w = -1
		}
		p.Vertices[i].Tangent = t.Vec4(w)
	}
}

func abs32(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}

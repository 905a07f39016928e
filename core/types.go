package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

type Color struct {
	R, G, B, A float32
}

var (
	ColorWhite = Color{1, 1, 1, 1}
	ColorBlack = Color{0, 0, 0, 1}
)

// Vec3 drops the alpha channel.
func (c Color) Vec3() mgl32.Vec3 {
	return mgl32.Vec3{c.R, c.G, c.B}
}

// Vertex matches the interleaved layout the geometry pass expects:
// position (3), normal (3), uv (2), tangent xyz + handedness w (4).
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	UV       mgl32.Vec2
	Tangent  mgl32.Vec4
}

// AABB is an axis-aligned box. The zero value is a degenerate box at the
// origin; use EmptyAABB to start an accumulation.
type AABB struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// EmptyAABB returns an inverted box that any Extend call will replace.
func EmptyAABB() AABB {
	inf := float32(math.Inf(1))
	return AABB{
		Min: mgl32.Vec3{inf, inf, inf},
		Max: mgl32.Vec3{-inf, -inf, -inf},
	}
}

func (b AABB) IsEmpty() bool {
	return b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1] || b.Min[2] > b.Max[2]
}

// Extend grows the box to contain p.
func (b AABB) Extend(p mgl32.Vec3) AABB {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
	return b
}

// Union returns the smallest box containing both b and o.
func (b AABB) Union(o AABB) AABB {
	if o.IsEmpty() {
		return b
	}
	return b.Extend(o.Min).Extend(o.Max)
}

// Transform returns the box enclosing all eight corners of b after m.
func (b AABB) Transform(m mgl32.Mat4) AABB {
	out := EmptyAABB()
	for i := 0; i < 8; i++ {
		c := mgl32.Vec3{b.Min[0], b.Min[1], b.Min[2]}
		if i&1 != 0 {
			c[0] = b.Max[0]
		}
		if i&2 != 0 {
			c[1] = b.Max[1]
		}
		if i&4 != 0 {
			c[2] = b.Max[2]
		}
		out = out.Extend(mgl32.TransformCoordinate(c, m))
	}
	return out
}

func (b AABB) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

func (b AABB) Size() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

// Contains reports whether p lies inside or on the box.
func (b AABB) Contains(p mgl32.Vec3) bool {
	return p[0] >= b.Min[0] && p[0] <= b.Max[0] &&
		p[1] >= b.Min[1] && p[1] <= b.Max[1] &&
		p[2] >= b.Min[2] && p[2] <= b.Max[2]
}

// DistanceSq is the squared distance from p to the closest point of the box,
// zero when p is inside.
func (b AABB) DistanceSq(p mgl32.Vec3) float32 {
	var d float32
	for i := 0; i < 3; i++ {
		v := p[i]
		if v < b.Min[i] {
			d += (b.Min[i] - v) * (b.Min[i] - v)
		} else if v > b.Max[i] {
			d += (v - b.Max[i]) * (v - b.Max[i])
		}
	}
	return d
}

// IntersectsSphere is the squared-distance sphere test: the sphere overlaps
// the box when the nearest box point lies within radius of the center.
func (b AABB) IntersectsSphere(center mgl32.Vec3, radius float32) bool {
	return b.DistanceSq(center) <= radius*radius
}

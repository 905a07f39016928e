package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"

	"clustered-deferred/core"
)

func quad(flipV bool) *Primitive {
	uv := func(u, v float32) mgl32.Vec2 {
		if flipV {
			v = 1 - v
		}
		return mgl32.Vec2{u, v}
	}
	n := mgl32.Vec3{0, 0, 1}
	verts := []core.Vertex{
		{Position: mgl32.Vec3{0, 0, 0}, Normal: n, UV: uv(0, 0)},
		{Position: mgl32.Vec3{1, 0, 0}, Normal: n, UV: uv(1, 0)},
		{Position: mgl32.Vec3{1, 1, 0}, Normal: n, UV: uv(1, 1)},
		{Position: mgl32.Vec3{0, 1, 0}, Normal: n, UV: uv(0, 1)},
	}
	return NewPrimitive("quad", verts, []uint32{0, 1, 2, 2, 3, 0}, mgl32.Ident4())
}

func TestComputeTangents(t *testing.T) {
	p := quad(false)
	ComputeTangents(p)
	for i, v := range p.Vertices {
		assert.InDelta(t, 1, v.Tangent[0], 1e-5, "vertex %d", i)
		assert.InDelta(t, 0, v.Tangent[1], 1e-5, "vertex %d", i)
		assert.InDelta(t, 0, v.Tangent[2], 1e-5, "vertex %d", i)
		assert.Equal(t, float32(1), v.Tangent[3])
	}
}

func TestComputeTangents_MirroredUV(t *testing.T) {
	p := quad(true)
	ComputeTangents(p)
	for _, v := range p.Vertices {
		assert.InDelta(t, 1, v.Tangent[0], 1e-5)
		assert.Equal(t, float32(-1), v.Tangent[3])
	}
}

func TestComputeTangents_DegenerateUV(t *testing.T) {
	p := quad(false)
	for i := range p.Vertices {
		p.Vertices[i].UV = mgl32.Vec2{}
	}
	ComputeTangents(p)
	for _, v := range p.Vertices {
		tan := v.Tangent.Vec3()
		assert.InDelta(t, 1, tan.Len(), 1e-5)
		assert.InDelta(t, 0, tan.Dot(v.Normal), 1e-5)
	}
}

package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"clustered-deferred/core"
)

// CreateCube generates an axis-aligned cube centred on the origin with one
// quad per face so every face gets its own normal.
func CreateCube(size float32, model mgl32.Mat4) *Primitive {
	s := size / 2
	faces := []struct {
		normal mgl32.Vec3
		u, v   mgl32.Vec3
	}{
		{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}},
		{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}},
		{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0}},
	}

	vertices := make([]core.Vertex, 0, 24)
	indices := make([]uint32, 0, 36)
	corners := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
	for _, f := range faces {
		base := uint32(len(vertices))
		for _, c := range corners {
			pos := f.normal.Mul(s).Add(f.u.Mul(c[0] * s)).Add(f.v.Mul(c[1] * s))
			vertices = append(vertices, core.Vertex{
				Position: pos,
				Normal:   f.normal,
				UV:       mgl32.Vec2{(c[0] + 1) / 2, (c[1] + 1) / 2},
				Tangent:  f.u.Vec4(1),
			})
		}
		indices = append(indices, base, base+1, base+2, base+2, base+3, base)
	}

	return NewPrimitive("Cube", vertices, indices, model)
}

// CreatePlane generates a subdivided XZ plane facing +Y.
func CreatePlane(width, depth float32, subdivisions int, model mgl32.Mat4) *Primitive {
	if subdivisions < 1 {
		subdivisions = 1
	}

	var vertices []core.Vertex
	var indices []uint32

	halfW := width / 2.0
	halfD := depth / 2.0

	for z := 0; z <= subdivisions; z++ {
		for x := 0; x <= subdivisions; x++ {
			u := float32(x) / float32(subdivisions)
			v := float32(z) / float32(subdivisions)

			vertices = append(vertices, core.Vertex{
				Position: mgl32.Vec3{-halfW + u*width, 0, -halfD + v*depth},
				Normal:   mgl32.Vec3{0, 1, 0},
				UV:       mgl32.Vec2{u, v},
				Tangent:  mgl32.Vec4{1, 0, 0, 1},
			})
		}
	}

	for z := 0; z < subdivisions; z++ {
		for x := 0; x < subdivisions; x++ {
			topLeft := uint32(z*(subdivisions+1) + x)
			topRight := topLeft + 1
			bottomLeft := topLeft + uint32(subdivisions+1)
			bottomRight := bottomLeft + 1

			indices = append(indices, topLeft, bottomLeft, topRight)
			indices = append(indices, topRight, bottomLeft, bottomRight)
		}
	}

	return NewPrimitive("Plane", vertices, indices, model)
}

// CreateDemoModel builds a ground plane with a grid of cubes, used when no
// model file is given. It is authored Z-up like imported content so the
// scene normalization stands it upright.
func CreateDemoModel(rows, cols int) *Model {
	zUp := mgl32.HomogRotate3DX(mgl32.DegToRad(-90))
	m := &Model{Name: "demo"}
	m.Primitives = append(m.Primitives, CreatePlane(20, 20, 8, zUp))
	spacing := float32(2.5)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			x := (float32(c) - float32(cols-1)/2) * spacing
			z := (float32(r) - float32(rows-1)/2) * spacing
			h := 0.5 + float32((r+c)%3)*0.5
			model := mgl32.Translate3D(x, h/2, z).Mul4(mgl32.Scale3D(1, h, 1))
			m.Primitives = append(m.Primitives, CreateCube(1, zUp.Mul4(model)))
		}
	}
	m.computeBounds()
	return m
}

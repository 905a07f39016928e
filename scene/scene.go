package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"clustered-deferred/core"
)

// NormalizedExtent is the size of the largest side of a model after
// normalization.
const NormalizedExtent float32 = 10

// Model is the importer's output: flattened primitives with baked
// transforms and the bounds of all of them.
type Model struct {
	Name       string
	Primitives []*Primitive
	Bounds     core.AABB
	// Textures lists every distinct texture referenced by Primitives, in
	// first-use order, for GPU upload.
	Textures []*Texture
}

func (m *Model) computeBounds() {
	m.Bounds = core.EmptyAABB()
	for _, p := range m.Primitives {
		m.Bounds = m.Bounds.Union(p.WorldAABB())
	}
}

// Scene pairs a model with the transform that fits it in view and the
// lights that shade it.
type Scene struct {
	Model         *Model
	Normalization mgl32.Mat4
	Lights        *LightField
	Background    core.Color
}

func NewScene(model *Model) *Scene {
	return &Scene{
		Model:         model,
		Normalization: NormalizationTransform(model.Bounds),
		Lights:        NewLightField(),
		Background:    core.Color{R: 0.1, G: 0.1, B: 0.1, A: 1.0},
	}
}

// NormalizationTransform centres bounds on the origin, scales its largest
// side to NormalizedExtent and rotates +90 degrees about X so Z-up content
// stands upright. Empty or flat-to-a-point bounds only get the rotation and
// translation.
func NormalizationTransform(bounds core.AABB) mgl32.Mat4 {
	if bounds.IsEmpty() {
		return mgl32.HomogRotate3DX(mgl32.DegToRad(90))
	}
	center := bounds.Center()
	size := bounds.Size()
	maxExtent := max(size[0], size[1], size[2])
	scale := float32(1)
	if maxExtent > 0 {
		scale = NormalizedExtent / maxExtent
	}

	rotate := mgl32.HomogRotate3DX(mgl32.DegToRad(90))
	return rotate.
		Mul4(mgl32.Scale3D(scale, scale, scale)).
		Mul4(mgl32.Translate3D(-center[0], -center[1], -center[2]))
}

// Primitives returns the drawable list for this frame.
func (s *Scene) Primitives() []*Primitive {
	if s.Model == nil {
		return nil
	}
	return s.Model.Primitives
}

// Bounds is the model's bounding box after normalization.
func (s *Scene) Bounds() core.AABB {
	if s.Model == nil || s.Model.Bounds.IsEmpty() {
		return core.AABB{}
	}
	return s.Model.Bounds.Transform(s.Normalization)
}

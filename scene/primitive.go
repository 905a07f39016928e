package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"clustered-deferred/core"
)

// TextureSlot indexes Primitive.Textures. The order matches the texture
// units the geometry pass binds.
type TextureSlot int

const (
	SlotDiffuse TextureSlot = iota
	SlotSpecularGlossiness
	SlotNormal
	SlotOcclusion
	SlotEmissive

	TextureSlotCount
)

func (s TextureSlot) String() string {
	switch s {
	case SlotDiffuse:
		return "diffuse"
	case SlotSpecularGlossiness:
		return "specularGlossiness"
	case SlotNormal:
		return "normal"
	case SlotOcclusion:
		return "occlusion"
	case SlotEmissive:
		return "emissive"
	}
	return "unknown"
}

// Primitive is one drawable unit: indexed triangles, the node transform
// baked in at import time, and up to five textures.
// GPU upload is managed by the renderer backend.
type Primitive struct {
	Name       string
	Vertices   []core.Vertex
	Indices    []uint32
	IndexCount uint32
	Model      mgl32.Mat4
	Textures   [TextureSlotCount]*Texture

	// LocalAABB bounds Vertices before Model is applied.
	LocalAABB core.AABB

	// GPUData is set by the renderer backend (e.g. *opengl.GPUPrimitive).
	// Do not access directly; use the renderer's API.
	GPUData any
}

// NewPrimitive builds a Primitive and pre-computes its local-space AABB.
// A nil index list is replaced by sequential indices.
func NewPrimitive(name string, vertices []core.Vertex, indices []uint32, model mgl32.Mat4) *Primitive {
	if indices == nil {
		indices = make([]uint32, len(vertices))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	p := &Primitive{
		Name:       name,
		Vertices:   vertices,
		Indices:    indices,
		IndexCount: uint32(len(indices)),
		Model:      model,
		LocalAABB:  core.EmptyAABB(),
	}
	for _, v := range vertices {
		p.LocalAABB = p.LocalAABB.Extend(v.Position)
	}
	return p
}

// WorldAABB is LocalAABB transformed by Model.
func (p *Primitive) WorldAABB() core.AABB {
	if p.LocalAABB.IsEmpty() {
		return p.LocalAABB
	}
	return p.LocalAABB.Transform(p.Model)
}

func (p *Primitive) Texture(slot TextureSlot) *Texture {
	return p.Textures[slot]
}

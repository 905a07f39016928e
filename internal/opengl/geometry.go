package opengl

import (
	"fmt"
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"clustered-deferred/core"
	"clustered-deferred/scene"
)

// GPUPrimitive holds the OpenGL objects for one uploaded scene.Primitive.
type GPUPrimitive struct {
	VAO        uint32
	VBO        uint32
	EBO        uint32
	IndexCount int32
}

// geometryProgram writes scene primitives into the G-buffer.
type geometryProgram struct {
	prog uint32

	modelLoc        int32
	viewLoc         int32
	projectionLoc   int32
	normalMatrixLoc int32
	hasTexLoc       [scene.TextureSlotCount]int32
}

var textureSamplerNames = [scene.TextureSlotCount]string{
	"diffuseTexture",
	"specularGlossinessTexture",
	"normalTexture",
	"occlusionTexture",
	"emissiveTexture",
}

var textureFlagNames = [scene.TextureSlotCount]string{
	"hasDiffuse",
	"hasSpecGloss",
	"hasNormal",
	"hasOcclusion",
	"hasEmissive",
}

func newGeometryProgram() (*geometryProgram, error) {
	prog, err := newProgram(geomVertSrc, geomFragSrc)
	if err != nil {
		return nil, fmt.Errorf("geometry shader: %w", err)
	}
	g := &geometryProgram{
		prog:            prog,
		modelLoc:        uniformLoc(prog, "model"),
		viewLoc:         uniformLoc(prog, "view"),
		projectionLoc:   uniformLoc(prog, "projection"),
		normalMatrixLoc: uniformLoc(prog, "normalMatrix"),
	}
	gl.UseProgram(prog)
	for slot := range scene.TextureSlotCount {
		gl.Uniform1i(uniformLoc(prog, textureSamplerNames[slot]), int32(slot))
		g.hasTexLoc[slot] = uniformLoc(prog, textureFlagNames[slot])
	}
	gl.UseProgram(0)
	return g, nil
}

func (g *geometryProgram) begin(view, proj mgl32.Mat4) {
	gl.UseProgram(g.prog)
	gl.UniformMatrix4fv(g.viewLoc, 1, false, &view[0])
	gl.UniformMatrix4fv(g.projectionLoc, 1, false, &proj[0])
}

func (g *geometryProgram) draw(gpu *GPUPrimitive, p *scene.Primitive, model mgl32.Mat4) {
	normal := model.Mat3().Inv().Transpose()
	gl.UniformMatrix4fv(g.modelLoc, 1, false, &model[0])
	gl.UniformMatrix3fv(g.normalMatrixLoc, 1, false, &normal[0])

	for slot, tex := range p.Textures {
		gl.ActiveTexture(gl.TEXTURE0 + uint32(slot))
		if tex != nil && tex.GLID != 0 {
			gl.BindTexture(gl.TEXTURE_2D, tex.GLID)
			gl.Uniform1i(g.hasTexLoc[slot], 1)
		} else {
			gl.BindTexture(gl.TEXTURE_2D, 0)
			gl.Uniform1i(g.hasTexLoc[slot], 0)
		}
	}

	gl.BindVertexArray(gpu.VAO)
	gl.DrawElements(gl.TRIANGLES, gpu.IndexCount, gl.UNSIGNED_INT, nil)
}

func (g *geometryProgram) destroy() {
	if g.prog != 0 {
		gl.DeleteProgram(g.prog)
		g.prog = 0
	}
}

// uploadPrimitive creates the VAO for p with the Vertex layout bound to
// attribute locations 0..3.
func uploadPrimitive(p *scene.Primitive) *GPUPrimitive {
	if len(p.Vertices) == 0 || len(p.Indices) == 0 {
		return nil
	}

	stride := int32(unsafe.Sizeof(core.Vertex{}))
	gpu := &GPUPrimitive{IndexCount: int32(len(p.Indices))}

	gl.GenVertexArrays(1, &gpu.VAO)
	gl.GenBuffers(1, &gpu.VBO)
	gl.BindVertexArray(gpu.VAO)

	gl.BindBuffer(gl.ARRAY_BUFFER, gpu.VBO)
	gl.BufferData(gl.ARRAY_BUFFER,
		len(p.Vertices)*int(stride),
		gl.Ptr(p.Vertices),
		gl.STATIC_DRAW)

	var v core.Vertex
	attribs := []struct {
		size int32
		off  uintptr
	}{
		{3, unsafe.Offsetof(v.Position)},
		{3, unsafe.Offsetof(v.Normal)},
		{2, unsafe.Offsetof(v.UV)},
		{4, unsafe.Offsetof(v.Tangent)},
	}
	for i, a := range attribs {
		gl.EnableVertexAttribArray(uint32(i))
		gl.VertexAttribPointer(uint32(i), a.size, gl.FLOAT, false, stride, gl.PtrOffset(int(a.off)))
	}

	gl.GenBuffers(1, &gpu.EBO)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, gpu.EBO)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER,
		len(p.Indices)*4,
		gl.Ptr(p.Indices),
		gl.STATIC_DRAW)

	gl.BindVertexArray(0)
	p.GPUData = gpu
	return gpu
}

func releasePrimitive(p *scene.Primitive) {
	gpu, ok := p.GPUData.(*GPUPrimitive)
	if !ok || gpu == nil {
		return
	}
	gl.DeleteVertexArrays(1, &gpu.VAO)
	gl.DeleteBuffers(1, &gpu.VBO)
	gl.DeleteBuffers(1, &gpu.EBO)
	p.GPUData = nil
}

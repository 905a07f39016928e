package opengl

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"clustered-deferred/core"
)

// GBuffer is the geometry pass's render target: world-space position and
// normal in RGB16F, albedo plus specular intensity in RGBA8, and a 24-bit
// depth renderbuffer. Every attachment is destroyed and recreated on
// resize.
type GBuffer struct {
	FBO        uint32
	Position   uint32 // RGB16F, attachment 0
	Normal     uint32 // RGB16F, attachment 1
	AlbedoSpec uint32 // RGBA8, attachment 2
	DepthRBO   uint32

	width    int
	height   int
	complete bool
}

// NewGBuffer allocates a G-buffer of the given size. A zero dimension
// leaves it unallocated until the first valid Resize.
func NewGBuffer(width, height int) *GBuffer {
	g := &GBuffer{}
	if width > 0 && height > 0 {
		g.alloc(width, height)
	}
	return g
}

// Size returns the current attachment size in pixels.
func (g *GBuffer) Size() (int, int) { return g.width, g.height }

// Complete reports whether the driver accepted the last allocation.
func (g *GBuffer) Complete() bool { return g.complete }

// Resize rebuilds every attachment at the new size. Zero or negative
// dimensions are ignored and it returns false without touching the GPU.
func (g *GBuffer) Resize(width, height int) bool {
	if width <= 0 || height <= 0 {
		return false
	}
	g.free()
	g.alloc(width, height)
	return true
}

func (g *GBuffer) alloc(width, height int) {
	g.width = width
	g.height = height
	w, h := int32(width), int32(height)

	g.Position = newTargetTexture(gl.RGB16F, gl.RGB, gl.FLOAT, w, h)
	g.Normal = newTargetTexture(gl.RGB16F, gl.RGB, gl.FLOAT, w, h)
	g.AlbedoSpec = newTargetTexture(gl.RGBA8, gl.RGBA, gl.UNSIGNED_BYTE, w, h)

	gl.GenRenderbuffers(1, &g.DepthRBO)
	gl.BindRenderbuffer(gl.RENDERBUFFER, g.DepthRBO)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, w, h)
	gl.BindRenderbuffer(gl.RENDERBUFFER, 0)

	gl.GenFramebuffers(1, &g.FBO)
	gl.BindFramebuffer(gl.FRAMEBUFFER, g.FBO)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, g.Position, 0)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT1, gl.TEXTURE_2D, g.Normal, 0)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT2, gl.TEXTURE_2D, g.AlbedoSpec, 0)
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, g.DepthRBO)

	attachments := [3]uint32{gl.COLOR_ATTACHMENT0, gl.COLOR_ATTACHMENT1, gl.COLOR_ATTACHMENT2}
	gl.DrawBuffers(int32(len(attachments)), &attachments[0])

	g.complete = true
	if s := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); s != gl.FRAMEBUFFER_COMPLETE {
		g.complete = false
		core.Logger().Warn("[GBuffer] framebuffer incomplete",
			"status", fmt.Sprintf("0x%X", s), "width", width, "height", height)
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

func (g *GBuffer) free() {
	if g.FBO != 0 {
		gl.DeleteFramebuffers(1, &g.FBO)
		g.FBO = 0
	}
	for _, tex := range []*uint32{&g.Position, &g.Normal, &g.AlbedoSpec} {
		if *tex != 0 {
			gl.DeleteTextures(1, tex)
			*tex = 0
		}
	}
	if g.DepthRBO != 0 {
		gl.DeleteRenderbuffers(1, &g.DepthRBO)
		g.DepthRBO = 0
	}
	g.complete = false
}

// BindTextures binds position, normal and albedo+spec to three consecutive
// texture units starting at firstUnit.
func (g *GBuffer) BindTextures(firstUnit uint32) {
	for i, tex := range [3]uint32{g.Position, g.Normal, g.AlbedoSpec} {
		gl.ActiveTexture(gl.TEXTURE0 + firstUnit + uint32(i))
		gl.BindTexture(gl.TEXTURE_2D, tex)
	}
}

// Destroy frees all GPU resources.
func (g *GBuffer) Destroy() {
	g.free()
	g.width, g.height = 0, 0
}

func newTargetTexture(internalFormat int32, format, xtype uint32, w, h int32) uint32 {
	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, internalFormat, w, h, 0, format, xtype, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return tex
}

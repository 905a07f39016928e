package opengl

import (
	gl "github.com/go-gl/gl/v4.1-core/gl"

	"clustered-deferred/scene"
)

// textureBuffer is an R32I buffer texture, read in GLSL through an
// isamplerBuffer with texelFetch.
type textureBuffer struct {
	buf  uint32
	tex  uint32
	size int // bytes currently allocated
}

func newTextureBuffer() *textureBuffer {
	t := &textureBuffer{}
	gl.GenBuffers(1, &t.buf)
	gl.GenTextures(1, &t.tex)
	gl.BindTexture(gl.TEXTURE_BUFFER, t.tex)
	gl.BindBuffer(gl.TEXTURE_BUFFER, t.buf)
	gl.TexBuffer(gl.TEXTURE_BUFFER, gl.R32I, t.buf)
	gl.BindBuffer(gl.TEXTURE_BUFFER, 0)
	gl.BindTexture(gl.TEXTURE_BUFFER, 0)
	return t
}

// upload replaces the buffer contents, reallocating only when the size
// changes.
func (t *textureBuffer) upload(data []int32) {
	if len(data) == 0 {
		return
	}
	n := len(data) * 4
	gl.BindBuffer(gl.TEXTURE_BUFFER, t.buf)
	if n != t.size {
		gl.BufferData(gl.TEXTURE_BUFFER, n, gl.Ptr(data), gl.STREAM_DRAW)
		t.size = n
	} else {
		gl.BufferSubData(gl.TEXTURE_BUFFER, 0, n, gl.Ptr(data))
	}
	gl.BindBuffer(gl.TEXTURE_BUFFER, 0)
}

func (t *textureBuffer) bind(unit uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(gl.TEXTURE_BUFFER, t.tex)
}

func (t *textureBuffer) destroy() {
	if t.tex != 0 {
		gl.DeleteTextures(1, &t.tex)
		t.tex = 0
	}
	if t.buf != 0 {
		gl.DeleteBuffers(1, &t.buf)
		t.buf = 0
	}
}

// lightBlockBinding is the uniform buffer binding point of LightBlock.
const lightBlockBinding = 0

// lightBuffer backs the LightBlock uniform block: MaxLights vec4
// position+radius entries followed by MaxLights vec4 colour+intensity
// entries, std140 layout.
type lightBuffer struct {
	ubo       uint32
	maxLights int
	data      []float32
}

func newLightBuffer(maxLights int) *lightBuffer {
	b := &lightBuffer{
		maxLights: maxLights,
		data:      make([]float32, LightBlockFloats(maxLights)),
	}
	gl.GenBuffers(1, &b.ubo)
	gl.BindBuffer(gl.UNIFORM_BUFFER, b.ubo)
	gl.BufferData(gl.UNIFORM_BUFFER, len(b.data)*4, nil, gl.DYNAMIC_DRAW)
	gl.BindBuffer(gl.UNIFORM_BUFFER, 0)
	return b
}

// upload packs at most maxLights lights and returns how many were written.
func (b *lightBuffer) upload(lights []scene.Light) int {
	n := PackLights(b.data, lights, b.maxLights)
	gl.BindBuffer(gl.UNIFORM_BUFFER, b.ubo)
	// Only the used prefix of each array changes.
	if n > 0 {
		gl.BufferSubData(gl.UNIFORM_BUFFER, 0, n*16, gl.Ptr(b.data))
		gl.BufferSubData(gl.UNIFORM_BUFFER, b.maxLights*16, n*16, gl.Ptr(b.data[b.maxLights*4:]))
	}
	gl.BindBuffer(gl.UNIFORM_BUFFER, 0)
	return n
}

func (b *lightBuffer) bind() {
	gl.BindBufferBase(gl.UNIFORM_BUFFER, lightBlockBinding, b.ubo)
}

func (b *lightBuffer) destroy() {
	if b.ubo != 0 {
		gl.DeleteBuffers(1, &b.ubo)
		b.ubo = 0
	}
}

// LightBlockFloats is the float count of a LightBlock holding maxLights.
func LightBlockFloats(maxLights int) int {
	return maxLights * 8
}

// PackLights writes lights into dst in LightBlock layout and returns the
// number packed, at most maxLights. dst must hold LightBlockFloats(maxLights)
// floats.
func PackLights(dst []float32, lights []scene.Light, maxLights int) int {
	n := min(len(lights), maxLights)
	colorBase := maxLights * 4
	for i := 0; i < n; i++ {
		l := lights[i]
		p := dst[i*4 : i*4+4]
		p[0], p[1], p[2], p[3] = l.Position[0], l.Position[1], l.Position[2], l.Radius
		c := dst[colorBase+i*4 : colorBase+i*4+4]
		c[0], c[1], c[2], c[3] = l.Color[0], l.Color[1], l.Color[2], l.Intensity
	}
	return n
}

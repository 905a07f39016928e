package opengl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDevice struct {
	cur     RenderState
	applied []RenderState
}

func (d *fakeDevice) Capture() RenderState { return d.cur }

func (d *fakeDevice) Apply(s RenderState) {
	d.cur = s
	d.applied = append(d.applied, s)
}

const (
	glOne  = 1
	glZero = 0
)

func TestPassContext_RestoresPreviousState(t *testing.T) {
	start := RenderState{DepthTest: true, DepthWrite: true, BlendSrc: glOne, BlendDst: glZero}
	dev := &fakeDevice{cur: start}

	lighting := RenderState{Blend: true, BlendSrc: glOne, BlendDst: glOne}
	pc := BeginPass(dev, lighting)
	assert.Equal(t, lighting, dev.cur)
	assert.Equal(t, start, pc.Previous())

	pc.End()
	assert.Equal(t, start, dev.cur)

	// A second End does nothing.
	pc.End()
	assert.Len(t, dev.applied, 2)
}

func TestPassContext_Nested(t *testing.T) {
	start := RenderState{DepthTest: true, DepthWrite: true}
	dev := &fakeDevice{cur: start}

	geometry := RenderState{DepthTest: true, DepthWrite: true, Framebuffer: 7}
	outer := BeginPass(dev, geometry)
	inner := BeginPass(dev, RenderState{Blend: true})
	inner.End()
	assert.Equal(t, geometry, dev.cur)
	outer.End()
	assert.Equal(t, start, dev.cur)
}

func TestGBuffer_ResizeIgnoresZero(t *testing.T) {
	// No GL calls happen on the rejected path, so a bare struct is enough.
	g := &GBuffer{width: 800, height: 600, FBO: 3}

	tests := [][2]int{{0, 600}, {800, 0}, {0, 0}, {-1, 600}}
	for _, sz := range tests {
		require.False(t, g.Resize(sz[0], sz[1]), "Resize(%d, %d)", sz[0], sz[1])
		w, h := g.Size()
		assert.Equal(t, 800, w)
		assert.Equal(t, 600, h)
		assert.Equal(t, uint32(3), g.FBO)
	}
}

func TestNewGBuffer_ZeroSizeDefersAllocation(t *testing.T) {
	g := NewGBuffer(0, 720)
	w, h := g.Size()
	assert.Zero(t, w)
	assert.Zero(t, h)
	assert.Zero(t, g.FBO)
	assert.False(t, g.Complete())
}

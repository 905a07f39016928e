package opengl

import (
	gl "github.com/go-gl/gl/v4.1-core/gl"
)

// RenderState is the slice of fixed-function state the passes toggle.
type RenderState struct {
	DepthTest   bool
	DepthWrite  bool
	Blend       bool
	BlendSrc    uint32
	BlendDst    uint32
	Framebuffer uint32
}

// DefaultRenderState is what every pass leaves behind: depth test and
// writes on, blending off, the window's framebuffer bound.
func DefaultRenderState() RenderState {
	return RenderState{
		DepthTest:   true,
		DepthWrite:  true,
		Blend:       false,
		BlendSrc:    gl.ONE,
		BlendDst:    gl.ZERO,
		Framebuffer: 0,
	}
}

// StateDevice reads and writes RenderState on a context.
type StateDevice interface {
	Capture() RenderState
	Apply(RenderState)
}

// PassContext applies a pass's state on creation and puts the previous
// state back on End, so passes compose in any order.
type PassContext struct {
	dev   StateDevice
	prev  RenderState
	ended bool
}

// BeginPass captures the current state of dev and applies want.
func BeginPass(dev StateDevice, want RenderState) *PassContext {
	pc := &PassContext{dev: dev, prev: dev.Capture()}
	dev.Apply(want)
	return pc
}

// Previous is the state that End will restore.
func (pc *PassContext) Previous() RenderState { return pc.prev }

// End restores the captured state. Calling it more than once is a no-op.
func (pc *PassContext) End() {
	if pc.ended {
		return
	}
	pc.ended = true
	pc.dev.Apply(pc.prev)
}

// glStateDevice keeps a shadow copy of the GL state it last applied so
// Capture never round-trips to the driver.
type glStateDevice struct {
	cur RenderState
}

// newGLStateDevice queries the live context once and starts tracking from
// there.
func newGLStateDevice() *glStateDevice {
	var s RenderState
	s.DepthTest = gl.IsEnabled(gl.DEPTH_TEST)
	gl.GetBooleanv(gl.DEPTH_WRITEMASK, &s.DepthWrite)
	s.Blend = gl.IsEnabled(gl.BLEND)
	var v int32
	gl.GetIntegerv(gl.BLEND_SRC_RGB, &v)
	s.BlendSrc = uint32(v)
	gl.GetIntegerv(gl.BLEND_DST_RGB, &v)
	s.BlendDst = uint32(v)
	gl.GetIntegerv(gl.DRAW_FRAMEBUFFER_BINDING, &v)
	s.Framebuffer = uint32(v)
	return &glStateDevice{cur: s}
}

func (d *glStateDevice) Capture() RenderState { return d.cur }

func (d *glStateDevice) Apply(s RenderState) {
	setCap(gl.DEPTH_TEST, s.DepthTest)
	gl.DepthMask(s.DepthWrite)
	setCap(gl.BLEND, s.Blend)
	gl.BlendFunc(s.BlendSrc, s.BlendDst)
	gl.BindFramebuffer(gl.FRAMEBUFFER, s.Framebuffer)
	d.cur = s
}

func setCap(cap uint32, on bool) {
	if on {
		gl.Enable(cap)
	} else {
		gl.Disable(cap)
	}
}

package opengl

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"clustered-deferred/core"
	"clustered-deferred/scene"
)

// Renderer is the OpenGL 4.1 backend of the clustered deferred pipeline. It
// owns the G-buffer, both pass programs and every uploaded primitive.
type Renderer struct {
	gbuffer  *GBuffer
	geometry *geometryProgram
	lighting *lightingProgram
	state    *glStateDevice

	width  int
	height int
}

// NewRenderer loads the GL function pointers, compiles both passes and
// allocates a width x height G-buffer. maxLights sizes the light uniform
// block. The GL context must be current on the calling thread.
func NewRenderer(width, height, maxLights int) (*Renderer, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	core.Logger().Info("[OpenGL] context ready",
		"version", gl.GoStr(gl.GetString(gl.VERSION)),
		"renderer", gl.GoStr(gl.GetString(gl.RENDERER)))

	geom, err := newGeometryProgram()
	if err != nil {
		return nil, err
	}
	light, err := newLightingProgram(maxLights)
	if err != nil {
		geom.destroy()
		return nil, err
	}

	gl.DepthFunc(gl.LESS)
	state := newGLStateDevice()
	state.Apply(DefaultRenderState())

	r := &Renderer{
		geometry: geom,
		lighting: light,
		state:    state,
		gbuffer:  NewGBuffer(width, height),
	}
	r.SetViewport(width, height)
	return r, nil
}

func (r *Renderer) SetViewport(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.width = width
	r.height = height
	gl.Viewport(0, 0, int32(width), int32(height))
}

// Resize rebuilds the G-buffer and viewport. Zero dimensions are ignored.
func (r *Renderer) Resize(width, height int) bool {
	if !r.gbuffer.Resize(width, height) {
		return false
	}
	r.SetViewport(width, height)
	return true
}

func (r *Renderer) GBufferSize() (int, int) { return r.gbuffer.Size() }

func (r *Renderer) GBuffer() *GBuffer { return r.gbuffer }

// UploadModel sends every texture and primitive of m to the GPU. Texture
// failures are logged and leave that slot unbound.
func (r *Renderer) UploadModel(m *scene.Model) error {
	for _, tex := range m.Textures {
		if err := UploadTexture(tex); err != nil {
			core.Logger().Warn("[OpenGL] texture upload failed", "texture", tex.Name, "err", err)
		}
	}
	for _, p := range m.Primitives {
		if _, ok := p.GPUData.(*GPUPrimitive); ok {
			continue
		}
		if uploadPrimitive(p) == nil {
			return fmt.Errorf("primitive %q has no geometry", p.Name)
		}
	}
	return nil
}

// ReleaseModel frees the GPU side of m.
func (r *Renderer) ReleaseModel(m *scene.Model) {
	for _, p := range m.Primitives {
		releasePrimitive(p)
	}
	for _, tex := range m.Textures {
		DeleteTexture(tex)
	}
}

// GeometryPass renders prims into the G-buffer with depth testing on and
// blending off. Every model matrix is pre-multiplied by base. It returns the
// number of primitives drawn.
func (r *Renderer) GeometryPass(prims []*scene.Primitive, base, view, proj mgl32.Mat4) int {
	pc := BeginPass(r.state, RenderState{
		DepthTest:   true,
		DepthWrite:  true,
		Blend:       false,
		BlendSrc:    gl.ONE,
		BlendDst:    gl.ZERO,
		Framebuffer: r.gbuffer.FBO,
	})
	defer pc.End()

	gl.ClearColor(0, 0, 0, 0)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	r.geometry.begin(view, proj)
	drawn := 0
	for _, p := range prims {
		gpu, ok := p.GPUData.(*GPUPrimitive)
		if !ok || gpu == nil {
			continue
		}
		r.geometry.draw(gpu, p, base.Mul4(p.Model))
		drawn++
	}
	gl.BindVertexArray(0)
	return drawn
}

// lightingPassState is the render state of the resolve pass: window
// framebuffer, no depth test, additive blending.
func lightingPassState() RenderState {
	return RenderState{
		DepthTest:   false,
		DepthWrite:  false,
		Blend:       true,
		BlendSrc:    gl.ONE,
		BlendDst:    gl.ONE,
		Framebuffer: 0,
	}
}

// lightingClearColor is what the window is cleared to before the additive
// resolve. It must be zero so nothing is added under lit pixels; the
// background is written by the shader where the G-buffer is empty.
var lightingClearColor = core.Color{}

// LightingPass resolves the G-buffer onto the window framebuffer with
// additive blending and no depth test. It returns the number of lights
// uploaded.
func (r *Renderer) LightingPass(in LightingInput) int {
	pc := BeginPass(r.state, lightingPassState())
	defer pc.End()

	c := lightingClearColor
	gl.ClearColor(c.R, c.G, c.B, c.A)
	gl.Clear(gl.COLOR_BUFFER_BIT)

	if in.Width == 0 || in.Height == 0 {
		in.Width, in.Height = r.width, r.height
	}
	return r.lighting.draw(r.gbuffer, in)
}

// Destroy frees all GPU resources owned by the renderer. Uploaded models
// must be released separately.
func (r *Renderer) Destroy() {
	r.lighting.destroy()
	r.geometry.destroy()
	r.gbuffer.Destroy()
}

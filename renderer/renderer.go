// Package renderer drives the clustered deferred pipeline: a geometry pass
// into the G-buffer followed by a clustered lighting pass onto the screen.
package renderer

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"clustered-deferred/cluster"
	"clustered-deferred/core"
	"clustered-deferred/internal/opengl"
	"clustered-deferred/scene"
)

// ErrPassOrder is returned when a pass is called out of sequence.
var ErrPassOrder = errors.New("render pass out of order")

// PassState is the pass the engine expects next.
type PassState int

const (
	StateGeometry PassState = iota
	StateLighting
)

func (s PassState) String() string {
	switch s {
	case StateGeometry:
		return "geometry"
	case StateLighting:
		return "lighting"
	}
	return "unknown"
}

// backend is the GPU side of the pipeline. *opengl.Renderer implements it.
type backend interface {
	Resize(width, height int) bool
	GBufferSize() (int, int)
	UploadModel(m *scene.Model) error
	ReleaseModel(m *scene.Model)
	GeometryPass(prims []*scene.Primitive, base, view, proj mgl32.Mat4) int
	LightingPass(in opengl.LightingInput) int
	Destroy()
}

// Options configures an Engine at construction. None of it can change
// afterwards.
type Options struct {
	Cluster        cluster.Config
	Width          int
	Height         int
	FrustumCulling bool
	Ambient        mgl32.Vec3
	AnimateLights  bool
}

// FrameStats describes the last completed frame.
type FrameStats struct {
	Primitives int     // submitted to the geometry pass
	Drawn      int     // survived culling and were drawn
	Lights     int     // took part in cluster assignment
	Overflowed int     // (cluster, light) pairs dropped by the per-cluster cap
	Assignment float64 // milliseconds spent in light assignment
}

// RenderEngine sequences the two passes and owns the cluster grid, the
// light table and the G-buffer for their whole lifetime.
type RenderEngine struct {
	gl       backend
	grid     *cluster.Grid
	assigner *cluster.Assigner
	profiler *Profiler

	state  PassState
	width  int
	height int

	resizePending bool
	pendingW      int
	pendingH      int

	animateLights  bool
	FrustumCulling bool
	Ambient        mgl32.Vec3
	background     core.Color

	cullBuf []*scene.Primitive
	stats   FrameStats
	frame   uint64
}

// NewRenderEngine creates the OpenGL backend on the current context.
func NewRenderEngine(opts Options) (*RenderEngine, error) {
	if err := opts.Cluster.Validate(); err != nil {
		return nil, err
	}
	glRenderer, err := opengl.NewRenderer(opts.Width, opts.Height, opts.Cluster.MaxLights)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenGL renderer: %w", err)
	}
	re := newRenderEngine(glRenderer, opts)
	core.Logger().Info("[Renderer] clustered deferred engine initialized",
		"grid", fmt.Sprintf("%dx%dx%d", opts.Cluster.GridX, opts.Cluster.GridY, opts.Cluster.GridZ),
		"maxLightsPerCluster", opts.Cluster.MaxLightsPerCluster,
		"maxLights", opts.Cluster.MaxLights)
	return re, nil
}

func newRenderEngine(b backend, opts Options) *RenderEngine {
	grid := cluster.NewGrid(opts.Cluster)
	return &RenderEngine{
		gl:             b,
		grid:           grid,
		assigner:       cluster.NewAssigner(grid),
		profiler:       NewProfiler(),
		state:          StateGeometry,
		width:          opts.Width,
		height:         opts.Height,
		animateLights:  opts.AnimateLights,
		FrustumCulling: opts.FrustumCulling,
		Ambient:        opts.Ambient,
	}
}

// UploadModel sends a model's geometry and textures to the GPU.
func (re *RenderEngine) UploadModel(m *scene.Model) error {
	return re.gl.UploadModel(m)
}

func (re *RenderEngine) ReleaseModel(m *scene.Model) {
	re.gl.ReleaseModel(m)
}

// Frame renders one full frame: pending resize, cluster bounds refresh,
// geometry pass, light assignment and lighting pass.
func (re *RenderEngine) Frame(sc *scene.Scene, cam *scene.Camera) error {
	re.BeginFrame()
	if err := re.GeometryPass(sc, cam); err != nil {
		return err
	}
	var lights []scene.Light
	if sc.Lights != nil {
		lights = sc.Lights.Lights
	}
	return re.LightingPass(lights, cam)
}

// GeometryPass draws the scene's primitives into the G-buffer.
func (re *RenderEngine) GeometryPass(sc *scene.Scene, cam *scene.Camera) error {
	if re.state != StateGeometry {
		return fmt.Errorf("%w: geometry pass while expecting %s", ErrPassOrder, re.state)
	}
	if re.width > 0 && re.height > 0 {
		cam.UpdateAspectRatio(float32(re.width), float32(re.height))
	}
	re.profiler.BeginScope("geometry")

	view := cam.GetViewMatrix()
	proj := cam.GetProjectionMatrix()
	prims := sc.Primitives()
	re.background = sc.Background
	visible := re.cull(prims, sc.Normalization, proj.Mul4(view))
	drawn := re.gl.GeometryPass(visible, sc.Normalization, view, proj)

	re.profiler.EndScope("geometry")
	re.stats.Primitives = len(prims)
	re.stats.Drawn = drawn
	re.state = StateLighting
	return nil
}

// LightingPass assigns lights to clusters and shades the screen from the
// G-buffer. Only the first MaxLights lights take part.
func (re *RenderEngine) LightingPass(lights []scene.Light, cam *scene.Camera) error {
	if re.state != StateLighting {
		return fmt.Errorf("%w: lighting pass while expecting %s", ErrPassOrder, re.state)
	}
	re.updateClusters(cam.FOV())

	re.profiler.BeginScope("assignment")
	view := cam.GetViewMatrix()
	n := re.assigner.Assign(lights, view)
	re.stats.Assignment = float64(re.profiler.EndScope("assignment").Microseconds()) / 1000

	re.profiler.BeginScope("lighting")
	cfg := re.grid.Config()
	re.gl.LightingPass(opengl.LightingInput{
		Lights:     lights[:n],
		Table:      re.assigner.Table(),
		Cluster:    cfg,
		View:       view,
		ViewPos:    cam.Position,
		Ambient:    re.Ambient,
		Background: re.background,
		Width:      re.width,
		Height:     re.height,
	})
	re.profiler.EndScope("lighting")

	re.stats.Lights = n
	re.stats.Overflowed = re.assigner.Table().Overflowed()
	re.profiler.SetCount("lights", n)
	re.profiler.SetCount("drawn", re.stats.Drawn)
	re.profiler.SetCount("overflowed", re.stats.Overflowed)

	re.state = StateGeometry
	re.frame++
	return nil
}

// updateClusters repartitions the grid when the field of view or the
// viewport aspect ratio changed.
func (re *RenderEngine) updateClusters(fovY float32) {
	if re.width <= 0 || re.height <= 0 {
		return
	}
	aspect := float32(re.width) / float32(re.height)
	if re.grid.Update(fovY, aspect) {
		core.Logger().Debug("[Renderer] cluster bounds recomputed",
			"fov", mgl32.RadToDeg(fovY), "aspect", aspect)
	}
}

// cull keeps primitives whose world bounds touch the view frustum. Culling
// off returns prims unchanged.
func (re *RenderEngine) cull(prims []*scene.Primitive, base, viewProj mgl32.Mat4) []*scene.Primitive {
	if !re.FrustumCulling {
		return prims
	}
	f := scene.FrustumFromVP(viewProj)
	out := re.cullBuf[:0]
	for _, p := range prims {
		if p.LocalAABB.IsEmpty() || f.IntersectsAABB(p.LocalAABB.Transform(base.Mul4(p.Model))) {
			out = append(out, p)
		}
	}
	re.cullBuf = out
	return out
}

// Resize rebuilds the G-buffer for a new viewport and invalidates the
// cluster bounds so the next assignment uses the new aspect ratio. A zero
// dimension (e.g. a minimised window) is ignored.
func (re *RenderEngine) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	if !re.gl.Resize(width, height) {
		return
	}
	re.width = width
	re.height = height
	if fov, _, ok := re.grid.Projection(); ok {
		re.grid.Partition(fov, float32(width)/float32(height))
	}
	core.Logger().Debug("[Renderer] resized", "width", width, "height", height)
}

// RequestResize defers a resize to the start of the next Frame, which is
// what window callbacks should use.
func (re *RenderEngine) RequestResize(width, height int) {
	re.resizePending = true
	re.pendingW = width
	re.pendingH = height
}

// BeginFrame applies a pending resize and rewinds the pass sequence, so a
// frame abandoned after its geometry pass does not wedge the engine.
func (re *RenderEngine) BeginFrame() {
	if re.resizePending {
		re.resizePending = false
		re.Resize(re.pendingW, re.pendingH)
	}
	re.state = StateGeometry
}

// ViewportSize returns the size the engine currently renders at.
func (re *RenderEngine) ViewportSize() (int, int) { return re.width, re.height }

// LightCount is the number of lights that took part in the last frame.
func (re *RenderEngine) LightCount() int { return re.stats.Lights }

func (re *RenderEngine) SetAnimateLights(on bool) { re.animateLights = on }

func (re *RenderEngine) AnimateLightsEnabled() bool { return re.animateLights }

func (re *RenderEngine) State() PassState { return re.state }

func (re *RenderEngine) Stats() FrameStats { return re.stats }

func (re *RenderEngine) Profiler() *Profiler { return re.profiler }

// Grid exposes the cluster grid for inspection.
func (re *RenderEngine) Grid() *cluster.Grid { return re.grid }

// Table exposes the light table built by the last lighting pass.
func (re *RenderEngine) Table() *cluster.Table { return re.assigner.Table() }

func (re *RenderEngine) FrameCount() uint64 { return re.frame }

// Destroy frees every GPU resource owned by the engine.
func (re *RenderEngine) Destroy() {
	re.gl.Destroy()
}

package renderer

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clustered-deferred/cluster"
	"clustered-deferred/core"
	"clustered-deferred/internal/opengl"
	"clustered-deferred/scene"
)

type fakeBackend struct {
	width, height int

	resizes    [][2]int
	geometry   int
	lighting   int
	drawn      []*scene.Primitive
	lastLights int
	lastInput  opengl.LightingInput
	uploaded   []*scene.Model
	destroyed  bool
}

func (f *fakeBackend) Resize(w, h int) bool {
	if w <= 0 || h <= 0 {
		return false
	}
	f.resizes = append(f.resizes, [2]int{w, h})
	f.width, f.height = w, h
	return true
}

func (f *fakeBackend) GBufferSize() (int, int) { return f.width, f.height }

func (f *fakeBackend) UploadModel(m *scene.Model) error {
	f.uploaded = append(f.uploaded, m)
	return nil
}

func (f *fakeBackend) ReleaseModel(*scene.Model) {}

func (f *fakeBackend) GeometryPass(prims []*scene.Primitive, _, _, _ mgl32.Mat4) int {
	f.geometry++
	f.drawn = append(f.drawn[:0], prims...)
	return len(prims)
}

func (f *fakeBackend) LightingPass(in opengl.LightingInput) int {
	f.lighting++
	f.lastLights = len(in.Lights)
	f.lastInput = in
	return len(in.Lights)
}

func (f *fakeBackend) Destroy() { f.destroyed = true }

func newTestEngine(t *testing.T) (*RenderEngine, *fakeBackend) {
	t.Helper()
	b := &fakeBackend{width: 1280, height: 720}
	re := newRenderEngine(b, Options{
		Cluster:        cluster.DefaultConfig(),
		Width:          1280,
		Height:         720,
		FrustumCulling: true,
		AnimateLights:  true,
	})
	return re, b
}

// testScene has one cube in front of the default camera and one behind it.
func testScene() *scene.Scene {
	m := &scene.Model{Name: "test"}
	m.Primitives = append(m.Primitives,
		scene.CreateCube(1, mgl32.Ident4()),
		scene.CreateCube(1, mgl32.Translate3D(0, 0, 40)),
	)
	return &scene.Scene{
		Model:         m,
		Normalization: mgl32.Ident4(),
		Lights:        scene.NewLightField(),
		Background:    core.Color{R: 0.2, G: 0.1, B: 0.3, A: 1},
	}
}

func testCamera() *scene.Camera {
	return scene.NewCamera(mgl32.Vec3{0, 0, 15}, 1, 0.1, 100)
}

func TestRenderEngine_PassOrder(t *testing.T) {
	re, b := newTestEngine(t)
	sc, cam := testScene(), testCamera()

	err := re.LightingPass(nil, cam)
	require.ErrorIs(t, err, ErrPassOrder)
	assert.Zero(t, b.lighting)

	require.NoError(t, re.GeometryPass(sc, cam))
	assert.Equal(t, StateLighting, re.State())

	err = re.GeometryPass(sc, cam)
	require.ErrorIs(t, err, ErrPassOrder)
	assert.Equal(t, 1, b.geometry)

	require.NoError(t, re.LightingPass(sc.Lights.Lights, cam))
	assert.Equal(t, StateGeometry, re.State())
	assert.Equal(t, 1, b.lighting)
	assert.EqualValues(t, 1, re.FrameCount())
}

func TestRenderEngine_BeginFrameRewinds(t *testing.T) {
	re, _ := newTestEngine(t)
	sc, cam := testScene(), testCamera()

	require.NoError(t, re.GeometryPass(sc, cam))
	re.BeginFrame()
	assert.Equal(t, StateGeometry, re.State())
	require.NoError(t, re.Frame(sc, cam))
	require.NoError(t, re.Frame(sc, cam))
}

func TestRenderEngine_FrameCullsAndAssigns(t *testing.T) {
	re, b := newTestEngine(t)
	sc, cam := testScene(), testCamera()
	sc.Lights.Append(scene.Light{Position: mgl32.Vec3{0, 0, 0}, Radius: 2, Intensity: 1, Color: mgl32.Vec3{1, 1, 1}})

	require.NoError(t, re.Frame(sc, cam))

	st := re.Stats()
	assert.Equal(t, 2, st.Primitives)
	assert.Equal(t, 1, st.Drawn)
	require.Len(t, b.drawn, 1)
	assert.Same(t, sc.Model.Primitives[0], b.drawn[0])

	assert.Equal(t, 1, re.LightCount())
	assert.Equal(t, 1, b.lastLights)
	assert.Same(t, re.Table(), b.lastInput.Table)
	assert.Equal(t, 1280, b.lastInput.Width)
	assert.Equal(t, sc.Background, b.lastInput.Background)

	// The light sits 15 units ahead; its cluster must list it.
	c, ok := re.Grid().ClusterAt(mgl32.Vec3{0, 0, -15})
	require.True(t, ok)
	assert.Equal(t, []int32{0}, re.Table().Lights(c))

	// Camera aspect follows the viewport.
	assert.InDelta(t, 1280.0/720.0, cam.AspectRatio, 1e-6)

	re.FrustumCulling = false
	require.NoError(t, re.Frame(sc, cam))
	assert.Equal(t, 2, re.Stats().Drawn)
}

func TestRenderEngine_LightCap(t *testing.T) {
	re, b := newTestEngine(t)
	sc, cam := testScene(), testCamera()
	for i := 0; i < 300; i++ {
		sc.Lights.Append(scene.Light{Position: mgl32.Vec3{0, 0, 0}, Radius: 1, Intensity: 1})
	}

	require.NoError(t, re.Frame(sc, cam))
	assert.Equal(t, 256, re.LightCount())
	assert.Equal(t, 256, b.lastLights)
	// 256 lights into 64-slot clusters overflow.
	assert.Positive(t, re.Stats().Overflowed)
}

func TestRenderEngine_ResizeIgnoresZero(t *testing.T) {
	re, b := newTestEngine(t)
	sc, cam := testScene(), testCamera()
	require.NoError(t, re.Frame(sc, cam))

	re.Resize(0, 600)
	re.Resize(800, 0)
	assert.Empty(t, b.resizes)
	w, h := re.ViewportSize()
	assert.Equal(t, [2]int{1280, 720}, [2]int{w, h})

	re.Resize(800, 800)
	assert.Equal(t, [][2]int{{800, 800}}, b.resizes)
	w, h = re.ViewportSize()
	assert.Equal(t, [2]int{800, 800}, [2]int{w, h})

	_, aspect, ok := re.Grid().Projection()
	require.True(t, ok)
	assert.Equal(t, float32(1), aspect)
}

func TestRenderEngine_RequestResizeAppliesNextFrame(t *testing.T) {
	re, b := newTestEngine(t)
	sc, cam := testScene(), testCamera()

	re.RequestResize(640, 480)
	assert.Empty(t, b.resizes)
	w, _ := re.ViewportSize()
	assert.Equal(t, 1280, w)

	require.NoError(t, re.Frame(sc, cam))
	assert.Equal(t, [][2]int{{640, 480}}, b.resizes)
	assert.InDelta(t, 640.0/480.0, cam.AspectRatio, 1e-6)

	// A minimised window reports 0x0; the frame still renders at the old size.
	re.RequestResize(0, 0)
	require.NoError(t, re.Frame(sc, cam))
	assert.Len(t, b.resizes, 1)
	w, h := re.ViewportSize()
	assert.Equal(t, [2]int{640, 480}, [2]int{w, h})
}

func TestRenderEngine_FovChangeRepartitions(t *testing.T) {
	re, _ := newTestEngine(t)
	sc, cam := testScene(), testCamera()
	require.NoError(t, re.Frame(sc, cam))

	cam.SetZoom(30)
	require.NoError(t, re.Frame(sc, cam))
	fov, _, _ := re.Grid().Projection()
	assert.Equal(t, cam.FOV(), fov)
}

func TestRenderEngine_Toggles(t *testing.T) {
	re, b := newTestEngine(t)
	assert.True(t, re.AnimateLightsEnabled())
	re.SetAnimateLights(false)
	assert.False(t, re.AnimateLightsEnabled())

	m := scene.CreateDemoModel(1, 1)
	require.NoError(t, re.UploadModel(m))
	assert.Equal(t, []*scene.Model{m}, b.uploaded)

	re.Destroy()
	assert.True(t, b.destroyed)
	assert.Equal(t, "lighting", StateLighting.String())
}

func TestRenderEngine_ZeroSizeStartAssignsNoLights(t *testing.T) {
	b := &fakeBackend{}
	re := newRenderEngine(b, Options{Cluster: cluster.DefaultConfig()})
	sc, cam := testScene(), testCamera()
	sc.Lights.Append(scene.Light{Position: mgl32.Vec3{0, 0, 14.5}, Radius: 1, Color: mgl32.Vec3{1, 1, 1}, Intensity: 1})

	require.NoError(t, re.Frame(sc, cam))
	assert.Zero(t, re.Stats().Lights)
	assert.Zero(t, b.lastLights)
	for c := 0; c < re.Table().ClusterCount(); c++ {
		assert.Empty(t, re.Table().Lights(c))
	}

	re.Resize(640, 480)
	require.NoError(t, re.Frame(sc, cam))
	assert.Equal(t, 1, re.Stats().Lights)
}

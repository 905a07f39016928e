package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"clustered-deferred/config"
	"clustered-deferred/core"
	"clustered-deferred/platform"
	"clustered-deferred/renderer"
	"clustered-deferred/scene"
	"clustered-deferred/sceneio"
)

const defaultRigPath = "lights.rig.json"

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	modelPath := flag.String("model", "", "glTF/GLB model to render (overrides scene.model)")
	rigPath := flag.String("rig", "", "light rig file to load and save (overrides scene.rig)")
	flag.Parse()

	if err := run(*configPath, *modelPath, *rigPath); err != nil {
		core.Logger().Error("[Demo] fatal", "err", err)
		os.Exit(1)
	}
}

func run(configPath, modelPath, rigPath string) error {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if modelPath != "" {
		cfg.Scene.Model = modelPath
	}
	if rigPath != "" {
		cfg.Scene.Rig = rigPath
	}

	level, _ := cfg.Log.SlogLevel()
	core.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	log := core.Logger()

	windowConfig := platform.DefaultWindowConfig()
	windowConfig.Title = cfg.Window.Title
	windowConfig.Width = cfg.Window.Width
	windowConfig.Height = cfg.Window.Height
	windowConfig.VSync = cfg.Window.VSync

	window, err := platform.NewWindow(windowConfig)
	if err != nil {
		return fmt.Errorf("failed to create window: %w", err)
	}
	defer window.Destroy()

	fbW, fbH := window.GetFramebufferSize()
	engine, err := renderer.NewRenderEngine(renderer.Options{
		Cluster:        cfg.ClusterConfig(),
		Width:          fbW,
		Height:         fbH,
		FrustumCulling: true,
		Ambient:        mgl32.Vec3{0.03, 0.03, 0.035},
		AnimateLights:  cfg.Scene.AnimateLights,
	})
	if err != nil {
		return fmt.Errorf("failed to create render engine: %w", err)
	}
	defer engine.Destroy()
	window.SetFramebufferSizeCallback(engine.RequestResize)

	// ── Scene setup ───────────────────────────────────────────────────────────
	model, err := loadModel(cfg)
	if err != nil {
		return err
	}
	if err := engine.UploadModel(model); err != nil {
		return fmt.Errorf("failed to upload model: %w", err)
	}
	defer engine.ReleaseModel(model)

	s := scene.NewScene(model)

	// Near/far must match the cluster grid's depth range.
	camera := scene.NewCamera(mgl32.Vec3{0, 3, 15},
		float32(fbW)/float32(max(fbH, 1)), cfg.Cluster.Near, cfg.Cluster.Far)

	if rig := loadRig(cfg.Scene.Rig); rig != nil {
		s.Lights = rig.LightField()
		rig.ApplyCamera(camera)
	} else {
		lightBounds := s.Bounds()
		lightBounds.Min = lightBounds.Min.Sub(mgl32.Vec3{1, 0, 1})
		lightBounds.Max = lightBounds.Max.Add(mgl32.Vec3{1, 1, 1})
		rng := rand.New(rand.NewSource(cfg.Scene.Seed))
		s.Lights.Generate(cfg.Scene.Lights, lightBounds, cfg.Scene.LightRadius[0], cfg.Scene.LightRadius[1], rng)
	}
	log.Info("[Demo] scene ready",
		"model", model.Name,
		"primitives", len(model.Primitives),
		"lights", s.Lights.Len())
	controller := scene.NewCameraController(camera)
	controller.MovementSpeed = 5

	cursorCaptured := true
	window.CaptureCursor(true)
	window.SetCursorPosCallback(func(x, y float64) {
		if cursorCaptured {
			controller.MouseMoved(x, y)
		}
	})
	window.SetScrollCallback(func(_, yoff float64) {
		controller.Scrolled(yoff)
	})

	var (
		animKeyWasDown   bool
		cursorKeyWasDown bool
		statsKeyWasDown  bool
		saveKeyWasDown   bool
		lastTime         = window.Time()
		titleTimer       float32
		frames           int
	)

	for !window.ShouldClose() {
		window.PollEvents()

		now := window.Time()
		deltaTime := float32(now - lastTime)
		lastTime = now

		if window.IsKeyPressed(platform.KeyEscape) {
			window.SetShouldClose(true)
			break
		}

		// L key: toggle light animation
		lDown := window.IsKeyPressed(platform.KeyL)
		if lDown && !animKeyWasDown {
			engine.SetAnimateLights(!engine.AnimateLightsEnabled())
			log.Info("[Demo] light animation", "enabled", engine.AnimateLightsEnabled())
		}
		animKeyWasDown = lDown

		// C key: release / capture the cursor
		cDown := window.IsKeyPressed(platform.KeyC)
		if cDown && !cursorKeyWasDown {
			cursorCaptured = !cursorCaptured
			window.CaptureCursor(cursorCaptured)
			controller.ResetMouse()
		}
		cursorKeyWasDown = cDown

		// F1: dump per-scope timings
		f1Down := window.IsKeyPressed(platform.KeyF1)
		if f1Down && !statsKeyWasDown {
			log.Info("[Demo] profiler", "stats", engine.Profiler().StatsString())
		}
		statsKeyWasDown = f1Down

		// F5: save the light rig
		f5Down := window.IsKeyPressed(platform.KeyF5)
		if f5Down && !saveKeyWasDown {
			saveRig(cfg.Scene.Rig, model.Name, cfg.Scene.Model, camera, s.Lights)
		}
		saveKeyWasDown = f5Down

		moveCamera(window, controller, deltaTime)

		if engine.AnimateLightsEnabled() {
			s.Lights.Animate(deltaTime)
		}

		if err := engine.Frame(s, camera); err != nil {
			return fmt.Errorf("frame %d: %w", engine.FrameCount(), err)
		}
		window.SwapBuffers()

		frames++
		titleTimer += deltaTime
		if titleTimer >= 0.5 {
			st := engine.Stats()
			w, h := engine.ViewportSize()
			window.SetTitle(fmt.Sprintf("%s | %.0f fps | %dx%d | lights %d | drawn %d/%d | assign %.2fms | dropped %d",
				cfg.Window.Title, float32(frames)/titleTimer, w, h,
				engine.LightCount(), st.Drawn, st.Primitives, st.Assignment, st.Overflowed))
			frames = 0
			titleTimer = 0
		}
	}
	return nil
}

func loadModel(cfg config.Config) (*scene.Model, error) {
	if cfg.Scene.Model == "" {
		return scene.CreateDemoModel(6, 6), nil
	}
	importer := scene.NewImporter(scene.ImporterOptions{
		Workers:        cfg.Importer.Workers,
		MaxTextureSize: cfg.Importer.MaxTextureSize,
	})
	start := time.Now()
	model, err := importer.Load(cfg.Scene.Model)
	if err != nil {
		return nil, fmt.Errorf("failed to load model: %w", err)
	}
	core.Logger().Info("[Demo] model imported", "path", cfg.Scene.Model, "took", time.Since(start))
	return model, nil
}

// loadRig returns nil when path is empty or unreadable; the demo then
// generates lights from the seed.
func loadRig(path string) *sceneio.RigFile {
	if path == "" {
		return nil
	}
	rig, err := sceneio.Load(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			core.Logger().Warn("[Rig] ignoring rig file", "path", path, "err", err)
		}
		return nil
	}
	core.Logger().Info("[Rig] loaded", "path", path, "lights", len(rig.Lights))
	return rig
}

func saveRig(path, name, modelPath string, cam *scene.Camera, lights *scene.LightField) {
	if path == "" {
		path = defaultRigPath
	}
	rig := sceneio.Capture(name, cam, lights)
	rig.Model = modelPath
	if err := sceneio.Save(path, rig); err != nil {
		core.Logger().Error("[Rig] save failed", "path", path, "err", err)
		return
	}
	core.Logger().Info("[Rig] saved", "path", path, "lights", len(rig.Lights))
}

func moveCamera(window *platform.Window, cc *scene.CameraController, dt float32) {
	if window.IsKeyPressed(platform.KeyW) {
		cc.Move(scene.MoveForward, dt)
	}
	if window.IsKeyPressed(platform.KeyS) {
		cc.Move(scene.MoveBackward, dt)
	}
	if window.IsKeyPressed(platform.KeyA) {
		cc.Move(scene.MoveLeft, dt)
	}
	if window.IsKeyPressed(platform.KeyD) {
		cc.Move(scene.MoveRight, dt)
	}
	if window.IsKeyPressed(platform.KeySpace) {
		cc.Move(scene.MoveUp, dt)
	}
	if window.IsKeyPressed(platform.KeyLeftShift) {
		cc.Move(scene.MoveDown, dt)
	}
}

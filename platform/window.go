// Package platform owns the glfw window, its GL context and keyboard input.
package platform

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
)

func init() {
	// GL contexts are bound to the thread that made them current.
	runtime.LockOSThread()
}

type Window struct {
	Handle *glfw.Window
	Width  int
	Height int
	Title  string

	onFramebufferSize func(width, height int)
}

type WindowConfig struct {
	Width      int
	Height     int
	Title      string
	Resizable  bool
	VSync      bool
	Fullscreen bool
}

func DefaultWindowConfig() WindowConfig {
	return WindowConfig{
		Width:      1280,
		Height:     720,
		Title:      "Clustered Deferred Renderer",
		Resizable:  true,
		VSync:      true,
		Fullscreen: false,
	}
}

// NewWindow creates a window with a current OpenGL 4.1 core context.
func NewWindow(config WindowConfig) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, boolToInt(config.Resizable))

	monitor := (*glfw.Monitor)(nil)
	if config.Fullscreen {
		monitor = glfw.GetPrimaryMonitor()
	}

	handle, err := glfw.CreateWindow(config.Width, config.Height, config.Title, monitor, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	handle.MakeContextCurrent()
	if config.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	window := &Window{
		Handle: handle,
		Width:  config.Width,
		Height: config.Height,
		Title:  config.Title,
	}

	handle.SetSizeCallback(func(w *glfw.Window, width, height int) {
		window.Width = width
		window.Height = height
	})
	handle.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		if window.onFramebufferSize != nil {
			window.onFramebufferSize(width, height)
		}
	})

	return window, nil
}

func (w *Window) ShouldClose() bool {
	return w.Handle.ShouldClose()
}

func (w *Window) SetShouldClose(v bool) {
	w.Handle.SetShouldClose(v)
}

func (w *Window) PollEvents() {
	glfw.PollEvents()
}

func (w *Window) SwapBuffers() {
	w.Handle.SwapBuffers()
}

func (w *Window) GetFramebufferSize() (int, int) {
	return w.Handle.GetFramebufferSize()
}

// Time returns seconds since glfw was initialised.
func (w *Window) Time() float64 {
	return glfw.GetTime()
}

func (w *Window) Destroy() {
	w.Handle.Destroy()
	glfw.Terminate()
}

func (w *Window) IsKeyPressed(key int) bool {
	return w.Handle.GetKey(glfw.Key(key)) == glfw.Press
}

func (w *Window) SetTitle(title string) {
	w.Handle.SetTitle(title)
	w.Title = title
}

// CaptureCursor hides the cursor and switches to unbounded mouse motion.
func (w *Window) CaptureCursor(capture bool) {
	if capture {
		w.Handle.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
	} else {
		w.Handle.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
	}
}

// FramebufferSizeCallback receives the new framebuffer size in pixels.
type FramebufferSizeCallback func(width, height int)

func (w *Window) SetFramebufferSizeCallback(cb FramebufferSizeCallback) {
	w.onFramebufferSize = cb
}

// CursorPosCallback is the type for cursor movement handlers
type CursorPosCallback func(x, y float64)

func (w *Window) SetCursorPosCallback(cb CursorPosCallback) {
	w.Handle.SetCursorPosCallback(func(win *glfw.Window, x, y float64) {
		cb(x, y)
	})
}

// ScrollCallback is the type for scroll event handlers
type ScrollCallback func(xoff, yoff float64)

func (w *Window) SetScrollCallback(cb ScrollCallback) {
	w.Handle.SetScrollCallback(func(win *glfw.Window, xoff, yoff float64) {
		cb(xoff, yoff)
	})
}

func boolToInt(b bool) int {
	if b {
		return glfw.True
	}
	return glfw.False
}

const (
	KeySpace     = int(glfw.KeySpace)
	KeyA         = int(glfw.KeyA)
	KeyC         = int(glfw.KeyC)
	KeyD         = int(glfw.KeyD)
	KeyL         = int(glfw.KeyL)
	KeyS         = int(glfw.KeyS)
	KeyW         = int(glfw.KeyW)
	KeyEscape    = int(glfw.KeyEscape)
	KeyF1        = int(glfw.KeyF1)
	KeyF5        = int(glfw.KeyF5)
	KeyLeftShift = int(glfw.KeyLeftShift)
)

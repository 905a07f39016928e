package scene

import "github.com/go-gl/mathgl/mgl32"

// Movement directions for CameraController.Move.
type Movement int

const (
	MoveForward Movement = iota
	MoveBackward
	MoveLeft
	MoveRight
	MoveUp
	MoveDown
)

// CameraController turns keyboard, mouse and scroll input into camera
// motion. It holds no window state so input can come from anywhere.
type CameraController struct {
	Camera           *Camera
	MovementSpeed    float32
	MouseSensitivity float32

	lastX, lastY float64
	firstMouse   bool
}

func NewCameraController(cam *Camera) *CameraController {
	return &CameraController{
		Camera:           cam,
		MovementSpeed:    2.5,
		MouseSensitivity: 0.1,
		firstMouse:       true,
	}
}

// Move translates the camera along its own basis for dt seconds.
func (cc *CameraController) Move(dir Movement, dt float32) {
	c := cc.Camera
	v := cc.MovementSpeed * dt
	var delta mgl32.Vec3
	switch dir {
	case MoveForward:
		delta = c.GetForward().Mul(v)
	case MoveBackward:
		delta = c.GetForward().Mul(-v)
	case MoveLeft:
		delta = c.GetRight().Mul(-v)
	case MoveRight:
		delta = c.GetRight().Mul(v)
	case MoveUp:
		delta = c.WorldUp.Mul(v)
	case MoveDown:
		delta = c.WorldUp.Mul(-v)
	}
	c.Translate(delta)
}

// MouseMoved handles an absolute cursor position. The first sample after
// construction or ResetMouse only records the position.
func (cc *CameraController) MouseMoved(x, y float64) {
	if cc.firstMouse {
		cc.lastX, cc.lastY = x, y
		cc.firstMouse = false
		return
	}
	dx := float32(x-cc.lastX) * cc.MouseSensitivity
	dy := float32(cc.lastY-y) * cc.MouseSensitivity
	cc.lastX, cc.lastY = x, y

	c := cc.Camera
	c.SetOrientation(c.Yaw+dx, c.Pitch+dy)
}

// Scrolled narrows or widens the field of view.
func (cc *CameraController) Scrolled(yoff float64) {
	c := cc.Camera
	c.SetZoom(c.Zoom - float32(yoff))
}

// ResetMouse makes the next MouseMoved call re-anchor instead of rotating,
// e.g. after the cursor is captured again.
func (cc *CameraController) ResetMouse() {
	cc.firstMouse = true
}

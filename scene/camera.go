package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	DefaultYaw   float32 = -90
	DefaultPitch float32 = 0
	DefaultZoom  float32 = 45

	MinZoom float32 = 1
	MaxZoom float32 = 45
)

// Camera is a free-flying perspective camera driven by yaw and pitch in
// degrees. Zoom is the vertical field of view in degrees.
type Camera struct {
	Position    mgl32.Vec3
	WorldUp     mgl32.Vec3
	Yaw         float32
	Pitch       float32
	Zoom        float32
	AspectRatio float32
	NearPlane   float32
	FarPlane    float32

	// Cached basis and matrices
	front            mgl32.Vec3
	right            mgl32.Vec3
	up               mgl32.Vec3
	viewMatrix       mgl32.Mat4
	projectionMatrix mgl32.Mat4
	dirty            bool
}

func NewCamera(position mgl32.Vec3, aspectRatio, nearPlane, farPlane float32) *Camera {
	return &Camera{
		Position:    position,
		WorldUp:     mgl32.Vec3{0, 1, 0},
		Yaw:         DefaultYaw,
		Pitch:       DefaultPitch,
		Zoom:        DefaultZoom,
		AspectRatio: aspectRatio,
		NearPlane:   nearPlane,
		FarPlane:    farPlane,
		dirty:       true,
	}
}

// UpdateAspectRatio ignores a zero height so a minimised window never
// produces a NaN projection.
func (c *Camera) UpdateAspectRatio(width, height float32) {
	if width > 0 && height > 0 {
		c.AspectRatio = width / height
		c.dirty = true
	}
}

func (c *Camera) SetPosition(pos mgl32.Vec3) {
	c.Position = pos
	c.dirty = true
}

func (c *Camera) Translate(delta mgl32.Vec3) {
	c.Position = c.Position.Add(delta)
	c.dirty = true
}

// SetOrientation sets yaw and pitch in degrees; pitch is clamped to ±89.
func (c *Camera) SetOrientation(yaw, pitch float32) {
	c.Yaw = yaw
	c.Pitch = mgl32.Clamp(pitch, -89, 89)
	c.dirty = true
}

// SetZoom sets the vertical field of view in degrees, clamped to
// [MinZoom, MaxZoom].
func (c *Camera) SetZoom(zoom float32) {
	c.Zoom = mgl32.Clamp(zoom, MinZoom, MaxZoom)
	c.dirty = true
}

// FOV returns the vertical field of view in radians.
func (c *Camera) FOV() float32 {
	return mgl32.DegToRad(c.Zoom)
}

func (c *Camera) GetViewMatrix() mgl32.Mat4 {
	if c.dirty {
		c.updateMatrices()
	}
	return c.viewMatrix
}

func (c *Camera) GetProjectionMatrix() mgl32.Mat4 {
	if c.dirty {
		c.updateMatrices()
	}
	return c.projectionMatrix
}

func (c *Camera) GetForward() mgl32.Vec3 {
	if c.dirty {
		c.updateMatrices()
	}
	return c.front
}

func (c *Camera) GetRight() mgl32.Vec3 {
	if c.dirty {
		c.updateMatrices()
	}
	return c.right
}

func (c *Camera) GetUp() mgl32.Vec3 {
	if c.dirty {
		c.updateMatrices()
	}
	return c.up
}

func (c *Camera) updateMatrices() {
	yaw := float64(mgl32.DegToRad(c.Yaw))
	pitch := float64(mgl32.DegToRad(c.Pitch))
	c.front = mgl32.Vec3{
		float32(math.Cos(yaw) * math.Cos(pitch)),
		float32(math.Sin(pitch)),
		float32(math.Sin(yaw) * math.Cos(pitch)),
	}.Normalize()
	c.right = c.front.Cross(c.WorldUp).Normalize()
	c.up = c.right.Cross(c.front).Normalize()

	c.viewMatrix = mgl32.LookAtV(c.Position, c.Position.Add(c.front), c.up)
	c.projectionMatrix = mgl32.Perspective(c.FOV(), c.AspectRatio, c.NearPlane, c.FarPlane)

	c.dirty = false
}

// Package sceneio saves and restores a light rig: the light list and the
// camera pose it was tuned from, as a JSON document.
package sceneio

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"

	"clustered-deferred/scene"
)

// FormatVersion is written into every file; Load rejects other versions.
const FormatVersion = "1.0"

// ErrVersion is returned for files written by an incompatible version.
var ErrVersion = errors.New("unsupported rig file version")

// RigFile is the top-level structure of a .rig.json file.
type RigFile struct {
	Version string      `json:"version"`
	Name    string      `json:"name"`
	Model   string      `json:"model,omitempty"`
	Camera  CameraData  `json:"camera"`
	Lights  []LightData `json:"lights"`
}

// CameraData stores camera state. Angles are in degrees.
type CameraData struct {
	Position [3]float32 `json:"position"`
	Yaw      float32    `json:"yaw"`
	Pitch    float32    `json:"pitch"`
	Zoom     float32    `json:"zoom"`
}

// LightData stores one point light in normalized scene space.
type LightData struct {
	Position  [3]float32 `json:"position"`
	Radius    float32    `json:"radius"`
	Color     [3]float32 `json:"color"`
	Intensity float32    `json:"intensity"`
}

// Capture snapshots the camera and every light of field. Positions are the
// animation anchors, so a bobbing light is saved at its rest height.
func Capture(name string, cam *scene.Camera, field *scene.LightField) *RigFile {
	f := &RigFile{
		Version: FormatVersion,
		Name:    name,
		Camera: CameraData{
			Position: cam.Position,
			Yaw:      cam.Yaw,
			Pitch:    cam.Pitch,
			Zoom:     cam.Zoom,
		},
		Lights: make([]LightData, 0, field.Len()),
	}
	for i, l := range field.Lights {
		f.Lights = append(f.Lights, LightData{
			Position:  field.Anchor(i),
			Radius:    l.Radius,
			Color:     l.Color,
			Intensity: l.Intensity,
		})
	}
	return f
}

// ApplyCamera moves cam to the saved pose. Pitch and zoom go through the
// camera's clamps.
func (f *RigFile) ApplyCamera(cam *scene.Camera) {
	cam.SetPosition(mgl32.Vec3(f.Camera.Position))
	cam.SetOrientation(f.Camera.Yaw, f.Camera.Pitch)
	if f.Camera.Zoom > 0 {
		cam.SetZoom(f.Camera.Zoom)
	}
}

// LightField builds a fresh field whose animation anchors are the saved
// positions.
func (f *RigFile) LightField() *scene.LightField {
	field := scene.NewLightField()
	for _, l := range f.Lights {
		field.Append(scene.Light{
			Position:  mgl32.Vec3(l.Position),
			Radius:    l.Radius,
			Color:     mgl32.Vec3(l.Color),
			Intensity: l.Intensity,
		})
	}
	return field
}

// Save serializes the rig to an indented JSON file.
func Save(path string, rig *RigFile) error {
	data, err := json.MarshalIndent(rig, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal rig: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Load reads a rig file written by Save.
func Load(path string) (*RigFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rig file: %w", err)
	}

	rig := &RigFile{}
	if err := json.Unmarshal(data, rig); err != nil {
		return nil, fmt.Errorf("failed to parse rig file: %w", err)
	}
	if rig.Version != FormatVersion {
		return nil, fmt.Errorf("%w: %q", ErrVersion, rig.Version)
	}
	for i, l := range rig.Lights {
		if err := l.validate(); err != nil {
			return nil, fmt.Errorf("light %d: %w", i, err)
		}
	}
	return rig, nil
}

// validate rejects NaN as well as out-of-range values.
func (l LightData) validate() error {
	if !(l.Radius > 0) {
		return fmt.Errorf("radius must be positive, got %g", l.Radius)
	}
	if !(l.Intensity >= 0) {
		return fmt.Errorf("intensity must not be negative, got %g", l.Intensity)
	}
	return nil
}

package sceneio

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clustered-deferred/scene"
)

func TestSaveLoad(t *testing.T) {
	cam := scene.NewCamera(mgl32.Vec3{1, 2, 3}, 1, 0.1, 100)
	cam.SetOrientation(-45, 10)
	cam.SetZoom(30)

	field := scene.NewLightField()
	field.Append(scene.Light{Position: mgl32.Vec3{0, 1, 0}, Radius: 2, Color: mgl32.Vec3{1, 0.5, 0}, Intensity: 3})
	field.Append(scene.Light{Position: mgl32.Vec3{4, 1, -2}, Radius: 1.5, Color: mgl32.Vec3{0, 0, 1}, Intensity: 1})
	field.Animate(0.7)

	path := filepath.Join(t.TempDir(), "demo.rig.json")
	require.NoError(t, Save(path, Capture("demo", cam, field)))

	rig, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "demo", rig.Name)
	require.Len(t, rig.Lights, 2)
	// Anchors are saved, not the animated positions.
	assert.Equal(t, [3]float32{0, 1, 0}, rig.Lights[0].Position)

	restored := rig.LightField()
	require.Equal(t, 2, restored.Len())
	assert.Equal(t, field.Anchor(1), restored.Lights[1].Position)
	assert.Equal(t, float32(1.5), restored.Lights[1].Radius)
	assert.Equal(t, mgl32.Vec3{0, 0, 1}, restored.Lights[1].Color)

	other := scene.NewCamera(mgl32.Vec3{}, 1, 0.1, 100)
	rig.ApplyCamera(other)
	assert.Equal(t, cam.Position, other.Position)
	assert.Equal(t, cam.Yaw, other.Yaw)
	assert.Equal(t, cam.Pitch, other.Pitch)
	assert.Equal(t, cam.Zoom, other.Zoom)
}

func TestLoad_Rejects(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
		return p
	}

	_, err := Load(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	_, err = Load(write("bad.json", "{"))
	assert.Error(t, err)

	_, err = Load(write("old.json", `{"version": "0.1", "lights": []}`))
	assert.ErrorIs(t, err, ErrVersion)

	_, err = Load(write("radius.json", `{"version": "1.0", "lights": [{"radius": 0}]}`))
	assert.Error(t, err)

	_, err = Load(write("intensity.json", `{"version": "1.0", "lights": [{"radius": 1, "intensity": -2}]}`))
	assert.ErrorContains(t, err, "intensity")
}

func TestLightData_Validate(t *testing.T) {
	nan := float32(math.NaN())
	tests := []struct {
		name  string
		light LightData
		ok    bool
	}{
		{"valid", LightData{Radius: 1, Intensity: 2}, true},
		{"zero intensity", LightData{Radius: 1}, true},
		{"zero radius", LightData{Intensity: 1}, false},
		{"negative radius", LightData{Radius: -1, Intensity: 1}, false},
		{"nan radius", LightData{Radius: nan, Intensity: 1}, false},
		{"negative intensity", LightData{Radius: 1, Intensity: -0.5}, false},
		{"nan intensity", LightData{Radius: 1, Intensity: nan}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.light.validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

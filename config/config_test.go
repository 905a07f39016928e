package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clustered-deferred/cluster"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, cluster.DefaultConfig(), cfg.ClusterConfig())
	assert.Equal(t, 1280, cfg.Window.Width)
	assert.Equal(t, 128, cfg.Scene.Lights)
	assert.True(t, cfg.Scene.AnimateLights)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
window:
  width: 1920
cluster:
  grid_z: 32
  max_lights_per_cluster: 128
scene:
  model: assets/sponza.glb
  animate_lights: false
  light_radius: [2, 6]
log:
  level: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 1920, cfg.Window.Width)
	assert.Equal(t, 720, cfg.Window.Height)
	assert.Equal(t, 32, cfg.Cluster.GridZ)
	assert.Equal(t, 16, cfg.Cluster.GridX)
	assert.Equal(t, 128, cfg.ClusterConfig().MaxLightsPerCluster)
	assert.Equal(t, float32(0.1), cfg.Cluster.Near)
	assert.Equal(t, "assets/sponza.glb", cfg.Scene.Model)
	assert.False(t, cfg.Scene.AnimateLights)
	assert.Equal(t, [2]float32{2, 6}, cfg.Scene.LightRadius)
	assert.Equal(t, 4, cfg.Importer.Workers)

	level, err := cfg.Log.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "window: [not, a, map]"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalid)

	_, err = Load(writeConfig(t, "cluster:\n  near: 5\n  far: 1\n"))
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero width", func(c *Config) { c.Window.Width = 0 }},
		{"zero grid", func(c *Config) { c.Cluster.GridY = 0 }},
		{"no light budget", func(c *Config) { c.Cluster.MaxLights = 0 }},
		{"light budget too large", func(c *Config) { c.Cluster.MaxLights = 513 }},
		{"negative near", func(c *Config) { c.Cluster.Near = -1 }},
		{"negative lights", func(c *Config) { c.Scene.Lights = -5 }},
		{"inverted radius", func(c *Config) { c.Scene.LightRadius = [2]float32{4, 1} }},
		{"no workers", func(c *Config) { c.Importer.Workers = 0 }},
		{"no texture size", func(c *Config) { c.Importer.MaxTextureSize = 0 }},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}

func TestSlogLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"":      slog.LevelInfo,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := LogConfig{Level: in}.SlogLevel()
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

// Package config loads the demo's construction-time settings from YAML.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"clustered-deferred/cluster"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

type Config struct {
	Window   WindowConfig   `yaml:"window"`
	Cluster  ClusterConfig  `yaml:"cluster"`
	Scene    SceneConfig    `yaml:"scene"`
	Importer ImporterConfig `yaml:"importer"`
	Log      LogConfig      `yaml:"log"`
}

type WindowConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
	VSync  bool   `yaml:"vsync"`
}

type ClusterConfig struct {
	GridX               int     `yaml:"grid_x"`
	GridY               int     `yaml:"grid_y"`
	GridZ               int     `yaml:"grid_z"`
	MaxLightsPerCluster int     `yaml:"max_lights_per_cluster"`
	MaxLights           int     `yaml:"max_lights"`
	Near                float32 `yaml:"near"`
	Far                 float32 `yaml:"far"`
}

type SceneConfig struct {
	// Model is a .gltf/.glb path. Empty renders the built-in demo model.
	Model string `yaml:"model"`
	// Rig is a light rig file. When it exists its lights and camera pose
	// replace the generated ones; F5 in the demo writes to it.
	Rig           string     `yaml:"rig"`
	Lights        int        `yaml:"lights"`
	Seed          int64      `yaml:"seed"`
	AnimateLights bool       `yaml:"animate_lights"`
	LightRadius   [2]float32 `yaml:"light_radius"`
}

type ImporterConfig struct {
	Workers        int `yaml:"workers"`
	MaxTextureSize int `yaml:"max_texture_size"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

func Default() Config {
	cc := cluster.DefaultConfig()
	return Config{
		Window: WindowConfig{
			Width:  1280,
			Height: 720,
			Title:  "Clustered Deferred Renderer",
			VSync:  true,
		},
		Cluster: ClusterConfig{
			GridX:               cc.GridX,
			GridY:               cc.GridY,
			GridZ:               cc.GridZ,
			MaxLightsPerCluster: cc.MaxLightsPerCluster,
			MaxLights:           cc.MaxLights,
			Near:                cc.Near,
			Far:                 cc.Far,
		},
		Scene: SceneConfig{
			Lights:        128,
			Seed:          1,
			AnimateLights: true,
			LightRadius:   [2]float32{1.5, 4},
		},
		Importer: ImporterConfig{
			Workers:        4,
			MaxTextureSize: 4096,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads path on top of Default. Fields absent from the file keep their
// default value. The result is validated.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	}
	if err := c.ClusterConfig().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if c.Scene.Lights < 0 {
		return fmt.Errorf("%w: negative light count %d", ErrInvalid, c.Scene.Lights)
	}
	if r := c.Scene.LightRadius; r[0] <= 0 || r[1] < r[0] {
		return fmt.Errorf("%w: light radius range [%g, %g]", ErrInvalid, r[0], r[1])
	}
	if c.Importer.Workers < 1 {
		return fmt.Errorf("%w: importer needs at least one worker", ErrInvalid)
	}
	if c.Importer.MaxTextureSize < 1 {
		return fmt.Errorf("%w: max texture size %d", ErrInvalid, c.Importer.MaxTextureSize)
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// ClusterConfig converts the cluster section for cluster.NewGrid.
func (c Config) ClusterConfig() cluster.Config {
	return cluster.Config{
		GridX:               c.Cluster.GridX,
		GridY:               c.Cluster.GridY,
		GridZ:               c.Cluster.GridZ,
		MaxLightsPerCluster: c.Cluster.MaxLightsPerCluster,
		MaxLights:           c.Cluster.MaxLights,
		Near:                c.Cluster.Near,
		Far:                 c.Cluster.Far,
	}
}

// SlogLevel maps debug, info, warn and error (case-insensitive) to slog levels.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", l.Level)
}

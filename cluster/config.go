// Package cluster partitions the view frustum into a 3D grid of clusters and
// assigns point lights to the clusters their influence spheres overlap.
package cluster

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("invalid cluster config")

// MaxLightsLimit is the largest MaxLights whose light uniform block
// (32 bytes per light) fits in the 16 KiB GL_MAX_UNIFORM_BLOCK_SIZE every
// GL 4.1 implementation guarantees.
const MaxLightsLimit = 512

// Config fixes the grid shape and light budgets for the lifetime of a Grid.
type Config struct {
	GridX int
	GridY int
	GridZ int

	// MaxLightsPerCluster is the slab size of every cluster in the table.
	// Lights beyond it are dropped for that cluster.
	MaxLightsPerCluster int
	// MaxLights caps how many lights of the submitted list take part in
	// assignment each frame.
	MaxLights int

	Near float32
	Far  float32
}

func DefaultConfig() Config {
	return Config{
		GridX:               16,
		GridY:               9,
		GridZ:               24,
		MaxLightsPerCluster: 64,
		MaxLights:           256,
		Near:                0.1,
		Far:                 100,
	}
}

// ClusterCount is GridX * GridY * GridZ.
func (c Config) ClusterCount() int {
	return c.GridX * c.GridY * c.GridZ
}

func (c Config) Validate() error {
	if c.GridX <= 0 || c.GridY <= 0 || c.GridZ <= 0 {
		return fmt.Errorf("%w: grid %dx%dx%d", ErrInvalidConfig, c.GridX, c.GridY, c.GridZ)
	}
	if c.MaxLightsPerCluster <= 0 {
		return fmt.Errorf("%w: max lights per cluster %d", ErrInvalidConfig, c.MaxLightsPerCluster)
	}
	if c.MaxLights <= 0 || c.MaxLights > MaxLightsLimit {
		return fmt.Errorf("%w: max lights %d", ErrInvalidConfig, c.MaxLights)
	}
	if c.Near <= 0 || c.Far <= c.Near {
		return fmt.Errorf("%w: near %g far %g", ErrInvalidConfig, c.Near, c.Far)
	}
	return nil
}

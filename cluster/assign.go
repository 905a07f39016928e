package cluster

import (
	"github.com/go-gl/mathgl/mgl32"

	"clustered-deferred/scene"
)

// Assigner rebuilds the light table of a grid every frame.
type Assigner struct {
	grid      *Grid
	table     *Table
	maxLights int

	viewPos []mgl32.Vec3
}

func NewAssigner(grid *Grid) *Assigner {
	cfg := grid.Config()
	return &Assigner{
		grid:      grid,
		table:     NewTable(cfg.ClusterCount(), cfg.MaxLightsPerCluster),
		maxLights: cfg.MaxLights,
		viewPos:   make([]mgl32.Vec3, 0, cfg.MaxLights),
	}
}

func (a *Assigner) Table() *Table { return a.table }

func (a *Assigner) Grid() *Grid { return a.grid }

// Assign clears the table and tests every light against every cluster box.
// Only the first MaxLights entries of lights take part; the rest are ignored
// for this frame. It returns the number of lights that took part.
//
// Lights are visited in submission order, so when a cluster fills up the
// lights it keeps are always the lowest-indexed ones. A grid that has never
// been partitioned has no bounds yet and gets an empty table.
func (a *Assigner) Assign(lights []scene.Light, view mgl32.Mat4) int {
	a.table.Reset()
	if _, _, ok := a.grid.Projection(); !ok {
		return 0
	}
	if len(lights) > a.maxLights {
		lights = lights[:a.maxLights]
	}

	a.viewPos = a.viewPos[:0]
	for _, l := range lights {
		a.viewPos = append(a.viewPos, mgl32.TransformCoordinate(l.Position, view))
	}

	bounds := a.grid.Bounds
	for i, l := range lights {
		center := a.viewPos[i]
		for c := range bounds {
			if bounds[c].IntersectsSphere(center, l.Radius) {
				a.table.Add(c, int32(i))
			}
		}
	}
	return len(lights)
}

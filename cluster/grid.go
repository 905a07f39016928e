package cluster

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"clustered-deferred/core"
)

// Grid holds the view-space bounds of every cluster for one projection.
//
// Clusters are addressed by x + GridX*(y + GridY*z), the same order the
// lighting shader uses to fetch from the cluster table. Tile x=0 is the left
// edge of the screen, y=0 the bottom, z=0 the slice nearest the camera.
// View space looks down -Z, so every box has Max.Z <= -Near.
type Grid struct {
	cfg    Config
	Bounds []core.AABB

	fovY        float32
	aspect      float32
	partitioned bool
}

func NewGrid(cfg Config) *Grid {
	return &Grid{
		cfg:    cfg,
		Bounds: make([]core.AABB, cfg.ClusterCount()),
	}
}

func (g *Grid) Config() Config { return g.cfg }

func (g *Grid) ClusterCount() int { return len(g.Bounds) }

// Index linearizes cluster coordinates.
func (g *Grid) Index(x, y, z int) int {
	return x + g.cfg.GridX*(y+g.cfg.GridY*z)
}

// Coords is the inverse of Index.
func (g *Grid) Coords(i int) (x, y, z int) {
	x = i % g.cfg.GridX
	y = (i / g.cfg.GridX) % g.cfg.GridY
	z = i / (g.cfg.GridX * g.cfg.GridY)
	return x, y, z
}

// SliceDepth returns the positive view distance of depth slice boundary s,
// for s in [0, GridZ]. Slices grow exponentially with distance.
func (g *Grid) SliceDepth(s int) float64 {
	near, far := float64(g.cfg.Near), float64(g.cfg.Far)
	return near * math.Pow(far/near, float64(s)/float64(g.cfg.GridZ))
}

// Partition recomputes every cluster box for the given vertical field of
// view (radians) and aspect ratio.
//
// For each slice the frustum cross-section at the slice's near and far depth
// is split evenly into GridX by GridY tiles, and each box is the envelope of
// its tile's corners at both depths. The result is conservative: a box
// contains its frustum cell but may also cover space outside it.
func (g *Grid) Partition(fovY, aspect float32) {
	nx, ny, nz := g.cfg.GridX, g.cfg.GridY, g.cfg.GridZ
	if len(g.Bounds) != nx*ny*nz {
		g.Bounds = make([]core.AABB, nx*ny*nz)
	}
	tanHalf := math.Tan(float64(fovY) / 2)

	for z := 0; z < nz; z++ {
		depths := [2]float64{g.SliceDepth(z), g.SliceDepth(z + 1)}
		for y := 0; y < ny; y++ {
			for x := 0; x < nx; x++ {
				box := core.EmptyAABB()
				for _, d := range depths {
					halfH := d * tanHalf
					halfW := halfH * float64(aspect)
					x0 := -halfW + 2*halfW*float64(x)/float64(nx)
					x1 := -halfW + 2*halfW*float64(x+1)/float64(nx)
					y0 := -halfH + 2*halfH*float64(y)/float64(ny)
					y1 := -halfH + 2*halfH*float64(y+1)/float64(ny)
					box = box.Extend(mgl32.Vec3{float32(x0), float32(y0), float32(-d)})
					box = box.Extend(mgl32.Vec3{float32(x1), float32(y1), float32(-d)})
				}
				g.Bounds[g.Index(x, y, z)] = box
			}
		}
	}

	g.fovY = fovY
	g.aspect = aspect
	g.partitioned = true
}

// Update partitions only when the projection changed since the last call.
// It reports whether the bounds were recomputed.
func (g *Grid) Update(fovY, aspect float32) bool {
	if g.partitioned && g.fovY == fovY && g.aspect == aspect {
		return false
	}
	g.Partition(fovY, aspect)
	return true
}

// Projection returns the field of view and aspect ratio of the last partition.
func (g *Grid) Projection() (fovY, aspect float32, ok bool) {
	return g.fovY, g.aspect, g.partitioned
}

// ClusterAt returns the cluster whose screen tile and depth slice contain
// the view-space point p, the way the lighting shader addresses the table.
// ok is false when p lies outside the frustum between Near and Far.
func (g *Grid) ClusterAt(p mgl32.Vec3) (index int, ok bool) {
	if !g.partitioned {
		return 0, false
	}
	depth := -float64(p[2])
	near, far := float64(g.cfg.Near), float64(g.cfg.Far)
	if depth < near || depth > far {
		return 0, false
	}
	tanHalf := math.Tan(float64(g.fovY) / 2)
	ndcX := float64(p[0]) / (depth * tanHalf * float64(g.aspect))
	ndcY := float64(p[1]) / (depth * tanHalf)
	if ndcX < -1 || ndcX > 1 || ndcY < -1 || ndcY > 1 {
		return 0, false
	}

	x := clampInt(int((ndcX+1)*0.5*float64(g.cfg.GridX)), g.cfg.GridX-1)
	y := clampInt(int((ndcY+1)*0.5*float64(g.cfg.GridY)), g.cfg.GridY-1)
	z := clampInt(int(math.Floor(math.Log(depth/near)/math.Log(far/near)*float64(g.cfg.GridZ))), g.cfg.GridZ-1)
	return g.Index(x, y, z), true
}

func clampInt(v, hi int) int {
	if v < 0 {
		return 0
	}
	if v > hi {
		return hi
	}
	return v
}

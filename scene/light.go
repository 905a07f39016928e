package scene

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"

	"clustered-deferred/core"
)

// Light is a point light. Radius bounds its influence: nothing beyond it
// receives light, which is what lets the clusterer skip it.
type Light struct {
	Position  mgl32.Vec3
	Radius    float32
	Color     mgl32.Vec3
	Intensity float32
}

// LightField owns the scene's light list and its animation. Renderers read
// Lights by index for one frame at a time; mutate only between frames.
type LightField struct {
	Lights []Light

	base  []mgl32.Vec3
	phase []float32
	time  float32

	// BobHeight and BobSpeed shape the vertical animation.
	BobHeight float32
	BobSpeed  float32
}

func NewLightField() *LightField {
	return &LightField{
		BobHeight: 1.0,
		BobSpeed:  1.5,
	}
}

// Append adds a light whose current position is its animation anchor.
func (f *LightField) Append(l Light) {
	f.Lights = append(f.Lights, l)
	f.base = append(f.base, l.Position)
	f.phase = append(f.phase, 0)
}

func (f *LightField) Len() int { return len(f.Lights) }

// Anchor is the rest position light i bobs around.
func (f *LightField) Anchor(i int) mgl32.Vec3 { return f.base[i] }

// Generate appends n lights scattered through bounds with radii in
// [minRadius, maxRadius]. The same rng seed yields the same field.
func (f *LightField) Generate(n int, bounds core.AABB, minRadius, maxRadius float32, rng *rand.Rand) {
	size := bounds.Size()
	for i := 0; i < n; i++ {
		pos := mgl32.Vec3{
			bounds.Min[0] + rng.Float32()*size[0],
			bounds.Min[1] + rng.Float32()*size[1],
			bounds.Min[2] + rng.Float32()*size[2],
		}
		f.Append(Light{
			Position:  pos,
			Radius:    minRadius + rng.Float32()*(maxRadius-minRadius),
			Color:     hueColor(rng.Float32()),
			Intensity: 0.5 + rng.Float32(),
		})
		f.phase[len(f.phase)-1] = rng.Float32() * 2 * math.Pi
	}
}

// Animate advances the field by dt seconds, bobbing every light vertically
// around its anchor.
func (f *LightField) Animate(dt float32) {
	f.time += dt
	for i := range f.Lights {
		offset := f.BobHeight * float32(math.Sin(float64(f.time*f.BobSpeed+f.phase[i])))
		f.Lights[i].Position = f.base[i].Add(mgl32.Vec3{0, offset, 0})
	}
}

// hueColor maps h in [0,1) to a fully saturated colour.
func hueColor(h float32) mgl32.Vec3 {
	h6 := float64(h) * 6
	x := float32(1 - math.Abs(math.Mod(h6, 2)-1))
	switch int(h6) % 6 {
	case 0:
		return mgl32.Vec3{1, x, 0}
	case 1:
		return mgl32.Vec3{x, 1, 0}
	case 2:
		return mgl32.Vec3{0, 1, x}
	case 3:
		return mgl32.Vec3{0, x, 1}
	case 4:
		return mgl32.Vec3{x, 0, 1}
	default:
		return mgl32.Vec3{1, 0, x}
	}
}

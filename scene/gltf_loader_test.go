package scene

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const triangleGLTF = `{
  "asset": {"version": "2.0"},
  "scene": 0,
  "scenes": [{"nodes": [0]}],
  "nodes": [
    {"name": "root", "translation": [0, 0, 5], "children": [1]},
    {"name": "tri", "mesh": 0, "scale": [2, 2, 2]}
  ],
  "meshes": [{"name": "tri", "primitives": [{
    "attributes": {"POSITION": 0, "TEXCOORD_0": 1},
    "indices": 2,
    "material": 0
  }]}],
  "materials": [{
    "pbrMetallicRoughness": {"baseColorTexture": {"index": 0}},
    "emissiveTexture": {"index": 1}
  }],
  "textures": [{"source": 0}, {"source": 0}],
  "images": [{"uri": "data:image/png;base64,%s"}],
  "buffers": [{"byteLength": %d, "uri": "data:application/octet-stream;base64,%s"}],
  "bufferViews": [
    {"buffer": 0, "byteOffset": 0, "byteLength": 36},
    {"buffer": 0, "byteOffset": 36, "byteLength": 24},
    {"buffer": 0, "byteOffset": 60, "byteLength": 6}
  ],
  "accessors": [
    {"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3", "min": [0, 0, 0], "max": [1, 1, 0]},
    {"bufferView": 1, "componentType": 5126, "count": 3, "type": "VEC2"},
    {"bufferView": 2, "componentType": 5123, "count": 3, "type": "SCALAR"}
  ]
}`

func writeTriangleGLTF(t *testing.T, dir string) string {
	t.Helper()
	var buf bytes.Buffer
	floats := []float32{
		0, 0, 0, 1, 0, 0, 0, 1, 0, // positions
		0, 0, 1, 0, 0, 1, // uvs
	}
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, floats))
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, []uint16{0, 1, 2}))

	img := encodePNG(t, 2, 2, color.RGBA{B: 255, A: 255})
	doc := fmt.Sprintf(triangleGLTF,
		base64.StdEncoding.EncodeToString(img),
		buf.Len(),
		base64.StdEncoding.EncodeToString(buf.Bytes()))

	path := filepath.Join(dir, "triangle.gltf")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}

func TestImporter_Load(t *testing.T) {
	path := writeTriangleGLTF(t, t.TempDir())
	im := NewImporter(DefaultImporterOptions())

	model, err := im.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "triangle.gltf", model.Name)
	require.Len(t, model.Primitives, 1)

	p := model.Primitives[0]
	assert.Equal(t, "tri_p0", p.Name)
	assert.Equal(t, []uint32{0, 1, 2}, p.Indices)
	require.Len(t, p.Vertices, 3)
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, p.Vertices[1].Position)
	assert.Equal(t, mgl32.Vec2{1, 0}, p.Vertices[1].UV)

	// Tangents are generated when the file has UVs but no TANGENT.
	assert.InDelta(t, 1, p.Vertices[0].Tangent.Vec3().Len(), 1e-5)

	// Node transforms are baked: parent translation times child scale.
	want := mgl32.Translate3D(0, 0, 5).Mul4(mgl32.Scale3D(2, 2, 2))
	assert.True(t, want.ApproxEqual(p.Model), "got %v", p.Model)
	assert.True(t, model.Bounds.Contains(mgl32.Vec3{2, 0, 5}))
	assert.True(t, model.Bounds.Contains(mgl32.Vec3{0, 2, 5}))

	// Both texture slots point at the one embedded image.
	diffuse := p.Texture(SlotDiffuse)
	require.NotNil(t, diffuse)
	assert.Same(t, diffuse, p.Texture(SlotEmissive))
	assert.Nil(t, p.Texture(SlotNormal))
	assert.Equal(t, 2, diffuse.Width)
	assert.Len(t, model.Textures, 1)
	assert.Equal(t, 1, im.Cache().Len())
}

func TestImporter_CachePerImporter(t *testing.T) {
	path := writeTriangleGLTF(t, t.TempDir())

	im := NewImporter(ImporterOptions{Workers: 2})
	first, err := im.Load(path)
	require.NoError(t, err)
	again, err := im.Load(path)
	require.NoError(t, err)
	assert.Same(t, first.Textures[0], again.Textures[0])
	// Two texture slots share the image, so the reload hits twice.
	hits, _ := im.Cache().Stats()
	assert.Equal(t, 2, hits)

	other := NewImporter(ImporterOptions{Workers: 1})
	fresh, err := other.Load(path)
	require.NoError(t, err)
	assert.NotSame(t, first.Textures[0], fresh.Textures[0])
	assert.Equal(t, 1, other.Cache().Len())
}

func TestImporter_MissingFile(t *testing.T) {
	_, err := NewImporter(DefaultImporterOptions()).Load(filepath.Join(t.TempDir(), "nope.glb"))
	assert.Error(t, err)
}

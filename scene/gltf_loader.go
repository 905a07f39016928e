package scene

import (
	"fmt"
	"maps"
	"net/url"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/ext/specular"
	"github.com/qmuntal/gltf/modeler"

	"clustered-deferred/core"
)

// ImporterOptions configures an Importer.
type ImporterOptions struct {
	// Workers bounds how many images are decoded in parallel.
	Workers int
	// MaxTextureSize caps the larger side of decoded textures. 0 = no cap.
	MaxTextureSize int
}

func DefaultImporterOptions() ImporterOptions {
	return ImporterOptions{Workers: 4, MaxTextureSize: 4096}
}

// Importer loads glTF 2.0 files (.gltf or .glb) into flattened Models.
// Textures are cached per importer; loading the same file twice reuses
// every decoded image.
type Importer struct {
	opts  ImporterOptions
	cache *TextureCache
	pool  worker.DynamicWorkerPool
}

func NewImporter(opts ImporterOptions) *Importer {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Importer{
		opts:  opts,
		cache: NewTextureCache(),
		pool:  worker.NewDynamicWorkerPool(opts.Workers, 256, 1*time.Second),
	}
}

func (im *Importer) Cache() *TextureCache { return im.cache }

// materialTextures holds one material's five texture slots as glTF texture
// indices, -1 for unused.
type materialTextures [TextureSlotCount]int

// Load opens a .glb or .gltf file and flattens its default scene (or every
// root node when there is none) into primitives with baked node transforms.
// Only triangle-list primitives are imported; others are skipped with a
// warning. Texture decode failures leave the slot empty.
func (im *Importer) Load(path string) (*Model, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gltf open %q: %w", path, err)
	}
	log := core.Logger()

	// ── 1. Materials → texture indices ───────────────────────────────────────
	mats := make([]materialTextures, len(doc.Materials))
	for i, gm := range doc.Materials {
		mats[i] = materialSlots(gm)
	}

	// ── 2. Textures (decoded in parallel, cached by resolved key) ───────────
	textures := im.loadTextures(doc, path, mats)

	// ── 3. Nodes → primitives ───────────────────────────────────────────────
	model := &Model{Name: filepath.Base(path)}
	seen := make(map[*Texture]bool)
	var visit func(idx int, parent mgl32.Mat4, depth int)
	visit = func(idx int, parent mgl32.Mat4, depth int) {
		if idx < 0 || idx >= len(doc.Nodes) || depth > len(doc.Nodes) {
			return
		}
		gn := doc.Nodes[idx]
		world := parent.Mul4(nodeTransform(gn))

		if gn.Mesh != nil && *gn.Mesh < len(doc.Meshes) {
			gm := doc.Meshes[*gn.Mesh]
			for pi, prim := range gm.Primitives {
				p, err := loadGLTFPrimitive(doc, gm.Name, pi, prim, world)
				if err != nil {
					log.Warn("[Importer] skipping primitive", "mesh", gm.Name, "primitive", pi, "err", err)
					continue
				}
				if prim.Material != nil && *prim.Material < len(mats) {
					for slot, ti := range mats[*prim.Material] {
						if ti >= 0 && ti < len(textures) && textures[ti] != nil {
							tex := textures[ti]
							p.Textures[slot] = tex
							if !seen[tex] {
								seen[tex] = true
								model.Textures = append(model.Textures, tex)
							}
						}
					}
				}
				model.Primitives = append(model.Primitives, p)
			}
		}
		for _, c := range gn.Children {
			visit(c, world, depth+1)
		}
	}
	for _, root := range rootNodes(doc) {
		visit(root, mgl32.Ident4(), 0)
	}

	model.computeBounds()
	log.Info("[Importer] loaded model",
		"path", path,
		"primitives", len(model.Primitives),
		"textures", len(model.Textures))
	return model, nil
}

// materialSlots maps a glTF material onto the five texture slots. The
// specular-glossiness extension wins over metallic-roughness for the
// diffuse slot when both are present.
func materialSlots(gm *gltf.Material) materialTextures {
	var m materialTextures
	for i := range m {
		m[i] = -1
	}
	if gm == nil {
		return m
	}

	if sg := specularGlossiness(gm); sg != nil {
		if sg.DiffuseTexture != nil {
			m[SlotDiffuse] = sg.DiffuseTexture.Index
		}
		if sg.SpecularGlossinessTexture != nil {
			m[SlotSpecularGlossiness] = sg.SpecularGlossinessTexture.Index
		}
	} else if pbr := gm.PBRMetallicRoughness; pbr != nil && pbr.BaseColorTexture != nil {
		m[SlotDiffuse] = pbr.BaseColorTexture.Index
	}
	if gm.NormalTexture != nil && gm.NormalTexture.Index != nil {
		m[SlotNormal] = *gm.NormalTexture.Index
	}
	if gm.OcclusionTexture != nil && gm.OcclusionTexture.Index != nil {
		m[SlotOcclusion] = *gm.OcclusionTexture.Index
	}
	if gm.EmissiveTexture != nil {
		m[SlotEmissive] = gm.EmissiveTexture.Index
	}
	return m
}

func specularGlossiness(gm *gltf.Material) *specular.PBRSpecularGlossiness {
	ext, ok := gm.Extensions[specular.ExtensionName]
	if !ok {
		return nil
	}
	switch v := ext.(type) {
	case *specular.PBRSpecularGlossiness:
		return v
	case specular.PBRSpecularGlossiness:
		return &v
	}
	return nil
}

type decodeJob struct {
	texIndex int
	key      string
	image    *gltf.Image
	imageIdx int
}

// loadTextures returns one *Texture per glTF texture index (nil when unused
// or undecodable). Images missing from the cache are decoded on the pool.
func (im *Importer) loadTextures(doc *gltf.Document, path string, mats []materialTextures) []*Texture {
	out := make([]*Texture, len(doc.Textures))
	used := make(map[int]bool)
	for _, m := range mats {
		for _, ti := range m {
			if ti >= 0 && ti < len(doc.Textures) {
				used[ti] = true
			}
		}
	}

	dir := filepath.Dir(path)
	pending := make(map[string][]int)
	var jobs []decodeJob
	for _, ti := range slices.Sorted(maps.Keys(used)) {
		gt := doc.Textures[ti]
		if gt.Source == nil || *gt.Source >= len(doc.Images) {
			continue
		}
		img := doc.Images[*gt.Source]
		key := imageKey(path, dir, *gt.Source, img)
		if tex, ok := im.cache.Get(key); ok {
			out[ti] = tex
			continue
		}
		if _, queued := pending[key]; !queued {
			jobs = append(jobs, decodeJob{texIndex: ti, key: key, image: img, imageIdx: *gt.Source})
		}
		pending[key] = append(pending[key], ti)
	}

	results := make([]*Texture, len(jobs))
	errs := make([]error, len(jobs))
	var wg sync.WaitGroup
	for i, job := range jobs {
		wg.Add(1)
		im.pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				results[i], errs[i] = im.decodeImage(doc, dir, job)
				return nil, errs[i]
			},
		})
	}
	wg.Wait()

	log := core.Logger()
	for i, job := range jobs {
		if errs[i] != nil {
			log.Warn("[Importer] texture decode failed", "image", job.imageIdx, "key", job.key, "err", errs[i])
			continue
		}
		tex := im.cache.Put(job.key, results[i])
		for _, ti := range pending[job.key] {
			out[ti] = tex
		}
	}
	return out
}

func (im *Importer) decodeImage(doc *gltf.Document, dir string, job decodeJob) (*Texture, error) {
	img := job.image
	name := img.Name
	if name == "" {
		name = fmt.Sprintf("gltf_img_%d", job.imageIdx)
	}
	switch {
	case img.BufferView != nil:
		if *img.BufferView >= len(doc.BufferViews) {
			return nil, fmt.Errorf("buffer view %d out of range", *img.BufferView)
		}
		raw, err := modeler.ReadBufferView(doc, doc.BufferViews[*img.BufferView])
		if err != nil {
			return nil, fmt.Errorf("buffer view: %w", err)
		}
		return DecodeTextureBytes(name, raw, im.opts.MaxTextureSize)
	case img.IsEmbeddedResource():
		raw, err := img.MarshalData()
		if err != nil {
			return nil, fmt.Errorf("data uri: %w", err)
		}
		return DecodeTextureBytes(name, raw, im.opts.MaxTextureSize)
	case img.URI != "":
		return LoadTexture(job.key, im.opts.MaxTextureSize)
	}
	return nil, fmt.Errorf("image has no source")
}

// imageKey resolves an image to its cache key. External files are keyed by
// their cleaned path so two models sharing a texture file share the entry.
func imageKey(modelPath, dir string, idx int, img *gltf.Image) string {
	if img.BufferView == nil && img.URI != "" && !img.IsEmbeddedResource() {
		uri := img.URI
		if u, err := url.PathUnescape(uri); err == nil {
			uri = u
		}
		return filepath.Clean(filepath.Join(dir, uri))
	}
	return fmt.Sprintf("%s#image%d", modelPath, idx)
}

// rootNodes returns the default scene's roots, or every parentless node
// when the document has no default scene.
func rootNodes(doc *gltf.Document) []int {
	if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
		return doc.Scenes[*doc.Scene].Nodes
	}
	hasParent := make([]bool, len(doc.Nodes))
	for _, gn := range doc.Nodes {
		for _, c := range gn.Children {
			if c < len(hasParent) {
				hasParent[c] = true
			}
		}
	}
	var roots []int
	for i := range doc.Nodes {
		if !hasParent[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

// nodeTransform returns the node's local matrix, from Matrix when set and
// from translation/rotation/scale otherwise.
func nodeTransform(gn *gltf.Node) mgl32.Mat4 {
	if m := gn.MatrixOrDefault(); m != gltf.DefaultMatrix {
		var out mgl32.Mat4
		for i := range m {
			out[i] = float32(m[i])
		}
		return out
	}
	t := gn.TranslationOrDefault()
	r := gn.RotationOrDefault() // [x, y, z, w]
	s := gn.ScaleOrDefault()
	rot := mgl32.Quat{
		W: float32(r[3]),
		V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])},
	}
	return mgl32.Translate3D(float32(t[0]), float32(t[1]), float32(t[2])).
		Mul4(rot.Normalize().Mat4()).
		Mul4(mgl32.Scale3D(float32(s[0]), float32(s[1]), float32(s[2])))
}

// loadGLTFPrimitive converts one glTF mesh primitive into a Primitive with
// the given baked transform.
func loadGLTFPrimitive(doc *gltf.Document, meshName string, primIdx int, prim *gltf.Primitive, model mgl32.Mat4) (*Primitive, error) {
	name := fmt.Sprintf("%s_p%d", meshName, primIdx)
	if meshName == "" {
		name = fmt.Sprintf("prim_%d", primIdx)
	}
	if prim.Mode != gltf.PrimitiveTriangles {
		return nil, fmt.Errorf("unsupported mode %v", prim.Mode)
	}

	// Positions are required
	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, fmt.Errorf("no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}

	var normals [][3]float32
	var uvs [][2]float32
	var tangents [][4]float32

	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		normals, _ = modeler.ReadNormal(doc, doc.Accessors[idx], nil)
	}
	if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		uvs, _ = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil)
	}
	if idx, ok := prim.Attributes[gltf.TANGENT]; ok {
		tangents, _ = modeler.ReadTangent(doc, doc.Accessors[idx], nil)
	}

	verts := make([]core.Vertex, len(positions))
	for i, p := range positions {
		v := core.Vertex{
			Position: mgl32.Vec3{p[0], p[1], p[2]},
			Normal:   mgl32.Vec3{0, 1, 0},
		}
		if i < len(normals) {
			v.Normal = mgl32.Vec3(normals[i])
		}
		if i < len(uvs) {
			v.UV = mgl32.Vec2(uvs[i])
		}
		if i < len(tangents) {
			v.Tangent = mgl32.Vec4(tangents[i])
		}
		verts[i] = v
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
	}

	p := NewPrimitive(name, verts, indices, model)
	if len(tangents) < len(positions) && len(uvs) >= len(positions) {
		ComputeTangents(p)
	}
	return p, nil
}

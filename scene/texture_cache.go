package scene

import "sync"

// TextureCache maps a resolved image key (file path, or model path plus
// image index for embedded images) to its decoded texture. Each Importer
// owns one, so models loaded by different importers never share entries.
type TextureCache struct {
	mu      sync.Mutex
	entries map[string]*Texture
	order   []string

	hits   int
	misses int
}

func NewTextureCache() *TextureCache {
	return &TextureCache{entries: make(map[string]*Texture)}
}

// Get returns the cached texture for key and records a hit or miss.
func (c *TextureCache) Get(key string) (*Texture, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	tex, ok := c.entries[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return tex, ok
}

// Put stores tex under key. An existing entry is kept and returned instead,
// so concurrent loaders converge on one texture per key.
func (c *TextureCache) Put(key string, tex *Texture) *Texture {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.entries[key]; ok {
		return existing
	}
	c.entries[key] = tex
	c.order = append(c.order, key)
	return tex
}

func (c *TextureCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Textures returns every cached texture in insertion order.
func (c *TextureCache) Textures() []*Texture {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Texture, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, c.entries[k])
	}
	return out
}

// Stats returns the hit and miss counts since creation.
func (c *TextureCache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// Clear drops every entry. GPU handles are not released here.
func (c *TextureCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*Texture)
	c.order = nil
}

package scene

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestFitWithin(t *testing.T) {
	tests := []struct {
		w, h, max    int
		wantW, wantH int
	}{
		{512, 256, 0, 512, 256},
		{512, 256, 1024, 512, 256},
		{4096, 2048, 1024, 1024, 512},
		{1000, 3000, 300, 100, 300},
		{5000, 1, 100, 100, 1},
	}
	for _, tt := range tests {
		w, h := fitWithin(tt.w, tt.h, tt.max)
		assert.Equal(t, [2]int{tt.wantW, tt.wantH}, [2]int{w, h}, "fitWithin(%d, %d, %d)", tt.w, tt.h, tt.max)
	}
}

func TestDecodeTextureBytes(t *testing.T) {
	red := color.RGBA{R: 255, A: 255}
	tex, err := DecodeTextureBytes("red", encodePNG(t, 4, 2, red), 0)
	require.NoError(t, err)
	assert.Equal(t, "red", tex.Name)
	assert.Equal(t, 4, tex.Width)
	assert.Equal(t, 2, tex.Height)
	require.Len(t, tex.Pixels, 4*2*4)
	assert.Equal(t, []byte{255, 0, 0, 255}, tex.Pixels[:4])
	assert.Zero(t, tex.GLID)
}

func TestDecodeTextureBytes_Downscales(t *testing.T) {
	tex, err := DecodeTextureBytes("big", encodePNG(t, 64, 32, color.RGBA{G: 255, A: 255}), 16)
	require.NoError(t, err)
	assert.Equal(t, 16, tex.Width)
	assert.Equal(t, 8, tex.Height)
	assert.Len(t, tex.Pixels, 16*8*4)
	assert.Equal(t, byte(255), tex.Pixels[1])
}

func TestDecodeTextureBytes_Invalid(t *testing.T) {
	_, err := DecodeTextureBytes("junk", []byte("not an image"), 0)
	assert.Error(t, err)

	_, err = LoadTexture("does/not/exist.png", 0)
	assert.Error(t, err)
}

func TestTextureCache(t *testing.T) {
	c := NewTextureCache()
	_, ok := c.Get("a.png")
	assert.False(t, ok)

	a := NewSolidTexture("a", 1, 2, 3, 4)
	assert.Same(t, a, c.Put("a.png", a))
	// Second Put keeps the first texture.
	assert.Same(t, a, c.Put("a.png", NewSolidTexture("a2", 0, 0, 0, 0)))
	c.Put("b.png", NewSolidTexture("b", 0, 0, 0, 0))

	got, ok := c.Get("a.png")
	require.True(t, ok)
	assert.Same(t, a, got)
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, "a", c.Textures()[0].Name)
	assert.Equal(t, "b", c.Textures()[1].Name)

	hits, misses := c.Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)

	c.Clear()
	assert.Zero(t, c.Len())
	assert.Empty(t, c.Textures())
}

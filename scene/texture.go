package scene

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Texture holds CPU-side pixel data for a 2D texture.
// GLID is set by the OpenGL backend after upload; do not access directly.
type Texture struct {
	Name   string
	Width  int
	Height int
	// Pixels in RGBA8 format (4 bytes per pixel, row-major, top-to-bottom).
	Pixels []byte
	// GLID is the OpenGL texture object ID, set by opengl.UploadTexture.
	GLID uint32
}

// LoadTexture reads a PNG, JPEG or WebP file from disk and returns a
// CPU-side Texture. maxSize > 0 caps the larger side; bigger images are
// downscaled preserving aspect ratio.
func LoadTexture(path string, maxSize int) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open texture %q: %w", path, err)
	}
	defer f.Close()

	tex, err := DecodeTexture(path, f, maxSize)
	if err != nil {
		return nil, fmt.Errorf("decode texture %q: %w", path, err)
	}
	return tex, nil
}

// DecodeTextureBytes decodes an in-memory image, e.g. a GLB buffer view.
func DecodeTextureBytes(name string, data []byte, maxSize int) (*Texture, error) {
	return DecodeTexture(name, bytes.NewReader(data), maxSize)
}

// DecodeTexture decodes any registered image format into RGBA8.
func DecodeTexture(name string, r io.Reader, maxSize int) (*Texture, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, err
	}
	rgba := toRGBA(img, maxSize)
	return &Texture{
		Name:   name,
		Width:  rgba.Bounds().Dx(),
		Height: rgba.Bounds().Dy(),
		Pixels: rgba.Pix,
	}, nil
}

func toRGBA(img image.Image, maxSize int) *image.RGBA {
	b := img.Bounds()
	w, h := fitWithin(b.Dx(), b.Dy(), maxSize)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
		return dst
	}
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// fitWithin scales (w, h) down so neither side exceeds maxSize. maxSize <= 0
// means no limit.
func fitWithin(w, h, maxSize int) (int, int) {
	if maxSize <= 0 || (w <= maxSize && h <= maxSize) {
		return w, h
	}
	if w >= h {
		return maxSize, max(1, h*maxSize/w)
	}
	return max(1, w*maxSize/h), maxSize
}

// NewSolidTexture creates a 1x1 texture with the given RGBA color values (0–255).
func NewSolidTexture(name string, r, g, b, a uint8) *Texture {
	return &Texture{
		Name:   name,
		Width:  1,
		Height: 1,
		Pixels: []byte{r, g, b, a},
	}
}

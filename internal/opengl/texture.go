package opengl

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"clustered-deferred/scene"
)

// UploadTexture uploads a scene.Texture to the GPU with mipmaps and sets its
// GLID field. Already uploaded textures are left alone.
// Call this from the render thread (OpenGL context must be current).
func UploadTexture(tex *scene.Texture) error {
	if tex == nil {
		return fmt.Errorf("nil texture")
	}
	if tex.GLID != 0 {
		return nil
	}
	if len(tex.Pixels) < tex.Width*tex.Height*4 || tex.Width == 0 || tex.Height == 0 {
		return fmt.Errorf("texture %q has no pixel data", tex.Name)
	}

	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)

	// Rows of odd-width RGBA8 images are still 4-byte aligned, but be explicit.
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 4)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8,
		int32(tex.Width), int32(tex.Height), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(tex.Pixels))
	gl.GenerateMipmap(gl.TEXTURE_2D)

	gl.BindTexture(gl.TEXTURE_2D, 0)

	tex.GLID = id
	return nil
}

// DeleteTexture frees a previously uploaded GPU texture and zeroes its GLID.
func DeleteTexture(tex *scene.Texture) {
	if tex == nil || tex.GLID == 0 {
		return
	}
	gl.DeleteTextures(1, &tex.GLID)
	tex.GLID = 0
}

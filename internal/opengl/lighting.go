package opengl

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"clustered-deferred/cluster"
	"clustered-deferred/core"
	"clustered-deferred/scene"
)

// Texture units used by the lighting pass.
const (
	unitGPosition     = 0
	unitGNormal       = 1
	unitGAlbedoSpec   = 2
	unitClusterLights = 3
	unitClusterCounts = 4
)

// LightingInput is everything the resolve pass reads for one frame.
type LightingInput struct {
	Lights  []scene.Light
	Table   *cluster.Table
	Cluster cluster.Config
	View    mgl32.Mat4
	ViewPos mgl32.Vec3
	Ambient mgl32.Vec3
	// Background fills pixels no primitive covered.
	Background core.Color
	Width      int
	Height     int
}

// lightingProgram shades a fullscreen triangle from the G-buffer, looping
// only over the lights listed for each pixel's cluster.
type lightingProgram struct {
	prog    uint32
	quadVAO uint32 // empty VAO for the fullscreen triangle

	viewLoc       int32
	viewPosLoc    int32
	gridSizeLoc   int32
	zNearLoc      int32
	zFarLoc       int32
	screenSizeLoc int32
	maxPerLoc     int32
	ambientLoc    int32
	backgroundLoc int32
	shininessLoc  int32

	clusterLights *textureBuffer
	clusterCounts *textureBuffer
	lights        *lightBuffer

	Shininess float32
}

func newLightingProgram(maxLights int) (*lightingProgram, error) {
	prog, err := newProgram(lightVertSrc, lightFragSrc(maxLights))
	if err != nil {
		return nil, fmt.Errorf("lighting shader: %w", err)
	}

	lp := &lightingProgram{
		prog:          prog,
		viewLoc:       uniformLoc(prog, "view"),
		viewPosLoc:    uniformLoc(prog, "viewPos"),
		gridSizeLoc:   uniformLoc(prog, "gridSize"),
		zNearLoc:      uniformLoc(prog, "zNear"),
		zFarLoc:       uniformLoc(prog, "zFar"),
		screenSizeLoc: uniformLoc(prog, "screenSize"),
		maxPerLoc:     uniformLoc(prog, "maxLightsPerCluster"),
		ambientLoc:    uniformLoc(prog, "ambient"),
		backgroundLoc: uniformLoc(prog, "background"),
		shininessLoc:  uniformLoc(prog, "shininess"),
		clusterLights: newTextureBuffer(),
		clusterCounts: newTextureBuffer(),
		lights:        newLightBuffer(maxLights),
		Shininess:     32,
	}

	gl.UseProgram(prog)
	gl.Uniform1i(uniformLoc(prog, "gPosition"), unitGPosition)
	gl.Uniform1i(uniformLoc(prog, "gNormal"), unitGNormal)
	gl.Uniform1i(uniformLoc(prog, "gAlbedoSpec"), unitGAlbedoSpec)
	gl.Uniform1i(uniformLoc(prog, "clusterLights"), unitClusterLights)
	gl.Uniform1i(uniformLoc(prog, "clusterCounts"), unitClusterCounts)
	block := gl.GetUniformBlockIndex(prog, gl.Str("LightBlock\x00"))
	if block != gl.INVALID_INDEX {
		gl.UniformBlockBinding(prog, block, lightBlockBinding)
	}
	gl.UseProgram(0)

	gl.GenVertexArrays(1, &lp.quadVAO)
	return lp, nil
}

// draw uploads the cluster table and lights, binds every input and issues
// the fullscreen draw. It returns the number of lights uploaded.
func (lp *lightingProgram) draw(gb *GBuffer, in LightingInput) int {
	lp.clusterLights.upload(in.Table.Indices)
	lp.clusterCounts.upload(in.Table.Counts)
	uploaded := lp.lights.upload(in.Lights)

	gl.UseProgram(lp.prog)
	gl.UniformMatrix4fv(lp.viewLoc, 1, false, &in.View[0])
	gl.Uniform3f(lp.viewPosLoc, in.ViewPos[0], in.ViewPos[1], in.ViewPos[2])
	gl.Uniform3i(lp.gridSizeLoc, int32(in.Cluster.GridX), int32(in.Cluster.GridY), int32(in.Cluster.GridZ))
	gl.Uniform1f(lp.zNearLoc, in.Cluster.Near)
	gl.Uniform1f(lp.zFarLoc, in.Cluster.Far)
	gl.Uniform2f(lp.screenSizeLoc, float32(in.Width), float32(in.Height))
	gl.Uniform1i(lp.maxPerLoc, int32(in.Table.Capacity()))
	gl.Uniform3f(lp.ambientLoc, in.Ambient[0], in.Ambient[1], in.Ambient[2])
	gl.Uniform3f(lp.backgroundLoc, in.Background.R, in.Background.G, in.Background.B)
	gl.Uniform1f(lp.shininessLoc, lp.Shininess)

	gb.BindTextures(unitGPosition)
	lp.clusterLights.bind(unitClusterLights)
	lp.clusterCounts.bind(unitClusterCounts)
	lp.lights.bind()

	gl.BindVertexArray(lp.quadVAO)
	gl.DrawArrays(gl.TRIANGLES, 0, 3)
	gl.BindVertexArray(0)
	return uploaded
}

func (lp *lightingProgram) destroy() {
	lp.clusterLights.destroy()
	lp.clusterCounts.destroy()
	lp.lights.destroy()
	if lp.quadVAO != 0 {
		gl.DeleteVertexArrays(1, &lp.quadVAO)
		lp.quadVAO = 0
	}
	if lp.prog != 0 {
		gl.DeleteProgram(lp.prog)
		lp.prog = 0
	}
}

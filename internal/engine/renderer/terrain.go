package renderer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/sandisle/internal/terrain"
	"github.com/Faultbox/sandisle/pkg/math"
)

// Frame holds the per-frame inputs of the terrain pass.
type Frame struct {
	View       math.Mat4
	Projection math.Mat4
	Camera     math.Vec3
	Height     terrain.HeightParams
	// Displace is false when chunk meshes already carry baked heights.
	Displace bool
}

// TerrainPass draws terrain chunks with GPU displacement.
type TerrainPass struct {
	program uint32

	locModel, locView, locProjection int32
	locDisplace, locSeed, locOctaves int32
	locNoiseScale, locNoiseAmplitude int32
	locRippleAmplitude, locRippleFrequency int32
	locMaxDist, locSeaFloor int32
	locCamera, locLight, locFogColor, locFogDensity int32
	locTime, locWireframe int32

	drawn int
}

func newTerrainPass() (*TerrainPass, error) {
	program, err := compileProgram(terrainVertexShader, terrainFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("terrain shader: %w", err)
	}

	p := &TerrainPass{program: program}
	p.locModel = uniform(program, "uModel")
	p.locView = uniform(program, "uView")
	p.locProjection = uniform(program, "uProjection")
	p.locDisplace = uniform(program, "uDisplace")
	p.locSeed = uniform(program, "uSeed")
	p.locOctaves = uniform(program, "uOctaves")
	p.locNoiseScale = uniform(program, "uNoiseScale")
	p.locNoiseAmplitude = uniform(program, "uNoiseAmplitude")
	p.locRippleAmplitude = uniform(program, "uRippleAmplitude")
	p.locRippleFrequency = uniform(program, "uRippleFrequency")
	p.locMaxDist = uniform(program, "uMaxDist")
	p.locSeaFloor = uniform(program, "uSeaFloor")
	p.locCamera = uniform(program, "uCameraPos")
	p.locLight = uniform(program, "uLightDirection")
	p.locFogColor = uniform(program, "uFogColor")
	p.locFogDensity = uniform(program, "uFogDensity")
	p.locTime = uniform(program, "uTime")
	p.locWireframe = uniform(program, "uWireframe")
	return p, nil
}

// Draw renders chunks in order. Each chunk's own visual parameters and
// local time are bound before its draw call.
func (p *TerrainPass) Draw(f Frame, chunks []*terrain.Chunk) {
	gl.UseProgram(p.program)

	gl.UniformMatrix4fv(p.locView, 1, false, f.View.Ptr())
	gl.UniformMatrix4fv(p.locProjection, 1, false, f.Projection.Ptr())
	gl.Uniform3f(p.locCamera, f.Camera.X, f.Camera.Y, f.Camera.Z)

	h := f.Height
	gl.Uniform1i(p.locDisplace, boolToInt(f.Displace))
	gl.Uniform1ui(p.locSeed, h.Seed)
	gl.Uniform1i(p.locOctaves, int32(h.Octaves))
	gl.Uniform1f(p.locNoiseScale, h.NoiseScale)
	gl.Uniform1f(p.locNoiseAmplitude, h.HeightScale*h.NoiseStrength)
	gl.Uniform1f(p.locRippleAmplitude, h.RippleAmplitude)
	gl.Uniform1f(p.locRippleFrequency, h.RippleFrequency)
	gl.Uniform1f(p.locMaxDist, h.MaxDist)
	gl.Uniform1f(p.locSeaFloor, h.SeaFloor)

	p.drawn = 0
	for _, ch := range chunks {
		g := ch.Geometry()
		if g.Handle() == 0 {
			continue
		}

		origin := ch.Origin()
		model := math.Translate(origin.X, 0, origin.Y)
		gl.UniformMatrix4fv(p.locModel, 1, false, model.Ptr())

		v := ch.RenderParameters()
		gl.Uniform3f(p.locLight, v.LightDirection.X, v.LightDirection.Y, v.LightDirection.Z)
		gl.Uniform3f(p.locFogColor, v.FogColor[0], v.FogColor[1], v.FogColor[2])
		gl.Uniform1f(p.locFogDensity, v.FogDensity)
		gl.Uniform1f(p.locTime, ch.LocalTime())
		gl.Uniform1i(p.locWireframe, boolToInt(v.Wireframe))

		if v.Wireframe {
			gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
		}
		gl.BindVertexArray(g.Handle())
		gl.DrawElements(gl.TRIANGLES, g.IndexCount(), gl.UNSIGNED_INT, nil)
		if v.Wireframe {
			gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
		}
		p.drawn++
	}
	gl.BindVertexArray(0)
}

// Drawn returns the number of chunks drawn by the last Draw.
func (p *TerrainPass) Drawn() int { return p.drawn }

func (p *TerrainPass) close() {
	if p.program != 0 {
		gl.DeleteProgram(p.program)
		p.program = 0
	}
}

func boolToInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

// Package renderer draws the planet's visible patches and debug lines with
// OpenGL 4.1 core.
package renderer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/cubesphere/internal/engine/lighting"
	"github.com/Faultbox/cubesphere/internal/engine/shader"
	"github.com/Faultbox/cubesphere/internal/logger"
	"github.com/Faultbox/cubesphere/internal/planet/lod"
)

// Config holds renderer configuration.
type Config struct {
	Width     int
	Height    int
	Wireframe bool
}

// FrameStats describes the last drawn frame.
type FrameStats struct {
	Patches   int
	Triangles int
	Uploads   int
	Evictions int
	Cached    int
}

// Renderer owns the GL state of the viewer.
type Renderer struct {
	config Config
	log    *zap.Logger

	patches *PatchRenderer
	lines   *LineRenderer
}

// New initializes OpenGL and the shader programs. The GL context must be
// current.
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		config: cfg,
		log:    logger.Named("renderer"),
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	r.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.FrontFace(gl.CCW)
	gl.Enable(gl.MULTISAMPLE)
	gl.ClearColor(0.02, 0.02, 0.05, 1.0)
	gl.Viewport(0, 0, int32(cfg.Width), int32(cfg.Height))

	var err error
	r.patches, err = NewPatchRenderer()
	if err != nil {
		return nil, fmt.Errorf("patch renderer: %w", err)
	}
	r.lines, err = NewLineRenderer()
	if err != nil {
		r.patches.Destroy()
		return nil, fmt.Errorf("line renderer: %w", err)
	}

	return r, nil
}

// Close frees every GL resource.
func (r *Renderer) Close() {
	r.patches.Destroy()
	r.lines.Destroy()
	r.log.Info("renderer closed")
}

// Resize sets the viewport.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	r.log.Debug("renderer resized", zap.Int("width", width), zap.Int("height", height))
}

// SetWireframe toggles line rasterization of the terrain.
func (r *Renderer) SetWireframe(on bool) {
	r.config.Wireframe = on
}

// Wireframe reports whether the terrain is drawn as lines.
func (r *Renderer) Wireframe() bool { return r.config.Wireframe }

// Begin clears the frame.
func (r *Renderer) Begin() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// DrawPlanet uploads meshes of newly visible patches, evicts the rest and
// draws the visible set.
func (r *Renderer) DrawPlanet(visible []*lod.Patch, viewProj mgl32.Mat4, sun lighting.Sun) FrameStats {
	stats := r.patches.Sync(visible)

	if r.config.Wireframe {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	}
	stats.Triangles = r.patches.Draw(visible, viewProj, sun)
	if r.config.Wireframe {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}

	stats.Patches = len(visible)
	return stats
}

// DrawLines draws x, y, z line vertices in a flat colour.
func (r *Renderer) DrawLines(vertices []float32, viewProj mgl32.Mat4, color mgl32.Vec3) {
	r.lines.Draw(vertices, viewProj, color)
}

// Forget drops every cached patch buffer, used after the planet is rebuilt.
func (r *Renderer) Forget() {
	r.patches.Clear()
}

func newProgram(vertexSrc, fragmentSrc string) (*shader.Program, error) {
	p, err := shader.New(vertexSrc, fragmentSrc)
	if err != nil {
		return nil, fmt.Errorf("compiling shaders: %w", err)
	}
	return p, nil
}

// ReadPixels returns the current framebuffer as bottom-up RGBA rows.
func (r *Renderer) ReadPixels() ([]byte, int, int) {
	w, h := r.config.Width, r.config.Height
	pixels := make([]byte, w*h*4)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels, w, h
}

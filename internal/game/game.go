// Package game runs the planet viewer: it owns the window, the LOD manager
// and the session, and drives them from one main loop.
package game

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/cubesphere/internal/config"
	"github.com/Faultbox/cubesphere/internal/engine/camera"
	"github.com/Faultbox/cubesphere/internal/engine/debug"
	"github.com/Faultbox/cubesphere/internal/engine/input"
	"github.com/Faultbox/cubesphere/internal/engine/lighting"
	"github.com/Faultbox/cubesphere/internal/engine/renderer"
	"github.com/Faultbox/cubesphere/internal/engine/window"
	"github.com/Faultbox/cubesphere/internal/logger"
	"github.com/Faultbox/cubesphere/internal/planet"
	"github.com/Faultbox/cubesphere/internal/planet/lod"
)

// Game is the viewer instance.
type Game struct {
	cfg     *config.Config
	running bool
	log     *zap.Logger

	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input

	planet   *lod.Manager
	material *lod.Material
	session  planet.Session
	rng      *rand.Rand

	camera *camera.OrbitCamera
	sun    lighting.Sun
	shots  *debug.Screenshots
	bounds bool

	frame renderer.FrameStats
}

// New opens the window and builds the planet for the configured seed.
func New(cfg *config.Config) (*Game, error) {
	g := &Game{
		cfg:      cfg,
		log:      logger.Named("game"),
		material: lod.DefaultMaterial(),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		sun:      lighting.DefaultSun(),
		shots:    debug.NewScreenshots("screenshots"),
	}

	var err error
	g.window, err = window.New(window.Config{
		Title:      "Cubesphere",
		Width:      cfg.Viewer.Width,
		Height:     cfg.Viewer.Height,
		Fullscreen: cfg.Viewer.Fullscreen,
		VSync:      cfg.Viewer.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// The renderer needs the GL context the window just created.
	width, height := g.window.DrawableSize()
	g.renderer, err = renderer.New(renderer.Config{
		Width:     width,
		Height:    height,
		Wireframe: cfg.Viewer.Wireframe,
	})
	if err != nil {
		g.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	g.input = input.New()

	g.planet = lod.NewManager(cfg.Planet.LOD())
	g.camera = camera.NewOrbitCamera(g.planet.Radius())
	if cfg.Viewer.FOV > 0 {
		g.camera.FOV = cfg.Viewer.FOV
	}
	g.startSession(cfg.Session.Seed)

	return g, nil
}

// startSession builds the planet for seed and frames the settlement.
func (g *Game) startSession(seed int64) {
	g.renderer.Forget()
	g.session = planet.NewGame(g.planet, seed, g.material, rand.New(rand.NewSource(seed)))
	g.camera.SetRadius(g.planet.Radius())
	g.camera.LookAt(g.session.Settlement, g.planet.Radius()*0.5)
	g.planet.Refresh(g.camera.Position())
}

// Run drives the main loop until the window closes or Esc is pressed.
func (g *Game) Run() error {
	g.running = true

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	g.log.Info("starting main loop")

	for g.running {
		now := time.Now()
		dt := now.Sub(lastTime).Seconds()
		lastTime = now

		if g.input.Update() {
			g.running = false
			break
		}
		g.handleEvents()

		g.update(dt)
		g.render()
		g.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			stats := g.planet.Stats()
			if g.cfg.Viewer.ShowFPS {
				g.window.SetTitle(fmt.Sprintf("Cubesphere | seed %d | %d fps | %d patches | depth %d",
					g.session.Seed, frameCount, stats.Visible, stats.MaxVisibleDepth))
			}
			g.log.Debug("frame",
				zap.Int("fps", frameCount),
				zap.Int("visible", stats.Visible),
				zap.Int("triangles", g.frame.Triangles),
				zap.Int("cached_meshes", g.frame.Cached),
				zap.Float64("altitude", g.camera.Altitude()),
			)
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

func (g *Game) handleEvents() {
	for _, event := range g.input.Events() {
		switch event.Type {
		case input.EventWindowResize:
			w, h := g.window.DrawableSize()
			g.renderer.Resize(w, h)

		case input.EventKeyDown:
			g.handleKey(event.Key)

		case input.EventMouseMove:
			if g.input.IsButtonHeld(sdl.BUTTON_LEFT) {
				g.camera.HandleDrag(float64(event.DeltaX), float64(event.DeltaY))
			}

		case input.EventMouseWheel:
			g.camera.HandleZoom(float64(event.DeltaY))

		case input.EventMouseDown:
			if event.Button == sdl.BUTTON_RIGHT {
				g.pick(event.MouseX, event.MouseY)
			}
		}
	}
}

func (g *Game) handleKey(key sdl.Scancode) {
	switch key {
	case sdl.SCANCODE_ESCAPE:
		g.running = false
	case sdl.SCANCODE_R:
		g.startSession(g.rng.Int63())
	case sdl.SCANCODE_W:
		g.renderer.SetWireframe(!g.renderer.Wireframe())
	case sdl.SCANCODE_B:
		g.bounds = !g.bounds
	case sdl.SCANCODE_F5:
		g.cfg.Session.Seed = g.session.Seed
		if err := g.cfg.Save(); err != nil {
			g.log.Error("failed to save config", zap.Error(err))
			return
		}
		g.log.Info("config saved", zap.Int64("seed", g.session.Seed))
	case sdl.SCANCODE_F12:
		pixels, w, h := g.renderer.ReadPixels()
		path, err := g.shots.Save(pixels, w, h, g.session.Seed)
		if err != nil {
			g.log.Error("screenshot failed", zap.Error(err))
			return
		}
		g.log.Info("screenshot saved", zap.String("path", path))
	}
}

func (g *Game) update(dt float64) {
	g.sun.Advance(dt)
	g.planet.Tick(g.camera.Position(), dt)
}

func (g *Game) render() {
	viewProj := g.camera.ProjectionMatrix(g.window.Aspect()).Mul4(g.camera.ViewMatrix())

	g.renderer.Begin()
	visible := g.planet.VisiblePatches()
	g.frame = g.renderer.DrawPlanet(visible, viewProj, g.sun)

	if g.bounds {
		var lines []float32
		for _, p := range visible {
			if p.Mesh != nil {
				lines = append(lines, debug.BoundsLines(p.Mesh.Bounds.Min, p.Mesh.Bounds.Max)...)
			}
		}
		g.renderer.DrawLines(lines, viewProj, boundsColor)
	}

	marker := markerFor(g.session.Settlement, g.planet.Radius())
	g.renderer.DrawLines(marker, viewProj, settlementColor)
}

// Close frees the renderer and the window.
func (g *Game) Close() {
	g.log.Info("closing viewer")
	if g.renderer != nil {
		g.renderer.Close()
	}
	if g.window != nil {
		g.window.Close()
	}
}

// Session returns the current session.
func (g *Game) Session() planet.Session { return g.session }

// CameraPosition returns the camera position relative to the planet centre.
func (g *Game) CameraPosition() mgl64.Vec3 { return g.camera.Position() }

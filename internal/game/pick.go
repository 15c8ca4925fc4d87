package game

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/Faultbox/cubesphere/internal/engine/debug"
	"github.com/Faultbox/cubesphere/internal/engine/picking"
	"github.com/Faultbox/cubesphere/internal/planet/cube"
)

var (
	settlementColor = mgl32.Vec3{1, 0.3, 0.1}
	boundsColor     = mgl32.Vec3{0.2, 0.9, 0.9}
)

// markerFor returns the settlement marker scaled to the planet.
func markerFor(point mgl64.Vec3, radius float64) []float32 {
	return debug.MarkerLines(point, cube.SafeNormalize(point), radius*0.01)
}

func (g *Game) pick(x, y int) {
	w, h := g.window.Size()
	viewProj := g.camera.ProjectionMatrix(g.window.Aspect()).Mul4(g.camera.ViewMatrix())
	ray := picking.ScreenToRay(float32(x), float32(y), float32(w), float32(h), viewProj.Inv())

	hit, ok := picking.PickSurface(g.planet, ray)
	if !ok {
		g.log.Debug("pick missed the planet", zap.Int("x", x), zap.Int("y", y))
		return
	}

	fields := []zap.Field{
		zap.Float64s("point", hit.Point[:]),
		zap.Bool("land", hit.IsLand),
		zap.Stringer("face", hit.Face),
		zap.Float64("altitude", hit.Point.Len()-g.planet.Radius()),
	}
	if hit.Patch != nil {
		fields = append(fields, zap.Int("depth", hit.Patch.Depth), zap.Uint64("serial", hit.Patch.Serial))
	}
	g.log.Info("picked surface", fields...)
}

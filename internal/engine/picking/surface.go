package picking

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/cubesphere/internal/planet/cube"
	"github.com/Faultbox/cubesphere/internal/planet/lod"
)

// SurfaceHit is what lies under a pick ray.
type SurfaceHit struct {
	Point  mgl64.Vec3
	IsLand bool
	Face   cube.Face
	UV     mgl64.Vec2
	Patch  *lod.Patch // visible patch covering the hit, if any
}

// PickSurface intersects ray with the sea-level sphere and projects the hit
// direction onto the terrain.
func PickSurface(m *lod.Manager, ray Ray) (SurfaceHit, bool) {
	t, ok := ray.IntersectSphere(m.SeaLevel())
	if !ok {
		return SurfaceHit{}, false
	}
	dir := cube.SafeNormalize(ray.At(t))
	face, uv := cube.FromDirection(dir)

	hit := SurfaceHit{
		Point:  m.EvaluateSurfacePoint(dir),
		IsLand: m.Classify(dir).IsLand,
		Face:   face,
		UV:     uv,
	}
	for _, p := range m.VisiblePatches() {
		if p.Contains(face, uv) {
			hit.Patch = p
			break
		}
	}
	return hit, true
}

package picking

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/cubesphere/internal/planet/cube"
	"github.com/Faultbox/cubesphere/internal/planet/lod"
)

func TestPickSurface(t *testing.T) {
	m := lod.NewManager(lod.DefaultConfig())
	m.BuildPlanet(1337, nil)
	m.Refresh(mgl64.Vec3{0, 0, 50000})

	ray := Ray{Origin: mgl64.Vec3{0, 0, 10000}, Direction: mgl64.Vec3{0, 0, -1}}
	hit, ok := PickSurface(m, ray)
	if !ok {
		t.Fatal("expected a hit")
	}
	if hit.Face != cube.PosZ {
		t.Errorf("expected +Z face, got %s", hit.Face)
	}
	if !hit.Point.ApproxEqual(m.EvaluateSurfacePoint(mgl64.Vec3{0, 0, 1})) {
		t.Errorf("picked point %v not on the surface", hit.Point)
	}
	if hit.Patch == nil || hit.Patch.Face != cube.PosZ {
		t.Errorf("expected the +Z root patch, got %+v", hit.Patch)
	}
}

func TestPickSurfaceMiss(t *testing.T) {
	m := lod.NewManager(lod.DefaultConfig())
	m.BuildPlanet(1337, nil)

	ray := Ray{Origin: mgl64.Vec3{0, 0, 10000}, Direction: mgl64.Vec3{0, 0, 1}}
	if _, ok := PickSurface(m, ray); ok {
		t.Error("expected a miss")
	}
}

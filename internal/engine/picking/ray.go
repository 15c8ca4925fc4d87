// Package picking casts rays from the screen into the planet.
package picking

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// Ray is a half-line with a unit direction.
type Ray struct {
	Origin    mgl64.Vec3
	Direction mgl64.Vec3
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min [3]float32
	Max [3]float32
}

// ScreenToRay converts pixel coordinates into a world-space ray.
// invViewProj is the inverse of projection × view.
func ScreenToRay(screenX, screenY, viewportW, viewportH float32, invViewProj mgl32.Mat4) Ray {
	ndcX := 2*screenX/viewportW - 1
	ndcY := 1 - 2*screenY/viewportH

	near := invViewProj.Mul4x1(mgl32.Vec4{ndcX, ndcY, -1, 1})
	far := invViewProj.Mul4x1(mgl32.Vec4{ndcX, ndcY, 1, 1})

	n := unproject(near)
	f := unproject(far)

	dir := f.Sub(n)
	if l := dir.Len(); l > 0 {
		dir = dir.Mul(1 / l)
	}
	return Ray{Origin: n, Direction: dir}
}

func unproject(v mgl32.Vec4) mgl64.Vec3 {
	w := float64(v[3])
	if w == 0 {
		w = 1
	}
	return mgl64.Vec3{float64(v[0]) / w, float64(v[1]) / w, float64(v[2]) / w}
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float64) mgl64.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// IntersectSphere returns the nearest non-negative distance at which the
// ray meets a sphere centred on the origin. A ray starting inside the
// sphere returns the exit distance.
func (r Ray) IntersectSphere(radius float64) (t float64, hit bool) {
	b := r.Origin.Dot(r.Direction)
	c := r.Origin.Dot(r.Origin) - radius*radius
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	sq := math.Sqrt(disc)
	t0, t1 := -b-sq, -b+sq
	if t1 < 0 {
		return 0, false
	}
	if t0 < 0 {
		return t1, true
	}
	return t0, true
}

// IntersectAABB tests the ray against box with the slab method. A ray
// starting inside the box returns the exit distance.
func (r Ray) IntersectAABB(box AABB) (t float64, hit bool) {
	tmin := -math.MaxFloat64
	tmax := math.MaxFloat64

	for i := 0; i < 3; i++ {
		lo, hi := float64(box.Min[i]), float64(box.Max[i])
		if r.Direction[i] == 0 {
			if r.Origin[i] < lo || r.Origin[i] > hi {
				return 0, false
			}
			continue
		}
		t1 := (lo - r.Origin[i]) / r.Direction[i]
		t2 := (hi - r.Origin[i]) / r.Direction[i]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
	}

	if tmax < tmin || tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}

// Package cube maps between the six faces of the unit cube and the unit sphere.
//
// A face point is addressed by the face and a 2D coordinate in [0,1]². The
// cube point is pushed onto the sphere by normalization, so the inverse is
// exact: the dominant axis of a direction picks the face and dividing by
// that component recovers the cube point.
package cube

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Face identifies one of the six cube faces by its outward axis.
type Face int

const (
	PosX Face = iota
	NegX
	PosY
	NegY
	PosZ
	NegZ
)

// FaceCount is the number of cube faces.
const FaceCount = 6

// Faces lists every face in canonical order.
var Faces = [FaceCount]Face{PosX, NegX, PosY, NegY, PosZ, NegZ}

// Up is the canonical direction used whenever a direction degenerates.
var Up = mgl64.Vec3{0, 1, 0}

// degenerateLen is the length below which a vector has no usable direction.
const degenerateLen = 1e-12

var faceNames = [FaceCount]string{"+X", "-X", "+Y", "-Y", "+Z", "-Z"}

var faceNormals = [FaceCount]mgl64.Vec3{
	{1, 0, 0},
	{-1, 0, 0},
	{0, 1, 0},
	{0, -1, 0},
	{0, 0, 1},
	{0, 0, -1},
}

// String returns the face name, e.g. "+X".
func (f Face) String() string {
	if !f.Valid() {
		return fmt.Sprintf("Face(%d)", int(f))
	}
	return faceNames[f]
}

// Valid reports whether f is one of the six faces.
func (f Face) Valid() bool {
	return f >= PosX && f <= NegZ
}

// Normal returns the outward unit normal of the face.
func (f Face) Normal() mgl64.Vec3 {
	return faceNormals[f]
}

// Opposite returns the face on the other side of the cube.
func (f Face) Opposite() Face {
	return f ^ 1
}

// Axes returns the two unit tangent axes spanning the face. axisA is the
// normal with its components rotated and axisB = normal × axisA, so
// axisA × axisB equals the normal.
func (f Face) Axes() (axisA, axisB mgl64.Vec3) {
	n := f.Normal()
	axisA = mgl64.Vec3{n[1], n[2], n[0]}
	axisB = n.Cross(axisA)
	return axisA, axisB
}

// ToCube maps a face coordinate in [0,1]² to the matching point on the
// surface of the cube [-1,1]³.
func ToCube(f Face, uv mgl64.Vec2) mgl64.Vec3 {
	axisA, axisB := f.Axes()
	return f.Normal().
		Add(axisA.Mul(2*uv[0] - 1)).
		Add(axisB.Mul(2*uv[1] - 1))
}

// ToSphere maps a face coordinate in [0,1]² to a unit-sphere direction.
func ToSphere(f Face, uv mgl64.Vec2) mgl64.Vec3 {
	return SafeNormalize(ToCube(f, uv))
}

// FromDirection returns the face a direction passes through and its face
// coordinate. Ties between axes resolve in X, Y, Z order. A degenerate
// direction is treated as Up.
func FromDirection(dir mgl64.Vec3) (Face, mgl64.Vec2) {
	dir = SafeNormalize(dir)

	ax, ay, az := math.Abs(dir[0]), math.Abs(dir[1]), math.Abs(dir[2])
	var f Face
	switch {
	case ax >= ay && ax >= az:
		f = PosX
		if dir[0] < 0 {
			f = NegX
		}
	case ay >= az:
		f = PosY
		if dir[1] < 0 {
			f = NegY
		}
	default:
		f = PosZ
		if dir[2] < 0 {
			f = NegZ
		}
	}

	// Scale onto the face plane (p·n = 1), then read off the tangent coords.
	p := dir.Mul(1 / dir.Dot(f.Normal()))
	axisA, axisB := f.Axes()
	u := mgl64.Clamp((p.Dot(axisA)+1)/2, 0, 1)
	v := mgl64.Clamp((p.Dot(axisB)+1)/2, 0, 1)
	return f, mgl64.Vec2{u, v}
}

// SafeNormalize returns v scaled to unit length, or Up when v is too short
// (or not finite) to carry a direction.
func SafeNormalize(v mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l < degenerateLen || math.IsNaN(l) || math.IsInf(l, 0) {
		return Up
	}
	return v.Mul(1 / l)
}

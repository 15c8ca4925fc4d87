// Package camera provides the orbit camera used to fly around a planet.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// MinAltitudeFactor keeps the camera at least this multiple of the radius
// from the planet centre.
const MinAltitudeFactor = 1.02

// OrbitCamera orbits the planet centre. Yaw and pitch place the camera on a
// sphere of radius Distance; the camera always looks at the centre.
type OrbitCamera struct {
	Radius   float64 // planet radius
	Distance float64 // from the planet centre
	Pitch    float64 // radians, latitude of the camera
	Yaw      float64 // radians, longitude of the camera

	MinDistance float64
	MaxDistance float64
	MaxPitch    float64

	FOV  float32 // vertical, degrees
	Near float32 // lower bound for the near plane

	DragSensitivity float64
	ZoomSensitivity float64
}

// NewOrbitCamera creates a camera looking at a planet of the given radius
// from four radii away.
func NewOrbitCamera(radius float64) *OrbitCamera {
	return &OrbitCamera{
		Radius:          radius,
		Distance:        4 * radius,
		Pitch:           0.4,
		Yaw:             0,
		MinDistance:     MinAltitudeFactor * radius,
		MaxDistance:     20 * radius,
		MaxPitch:        1.55,
		FOV:             60,
		Near:            0.5,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
	}
}

// Altitude returns the height above the undisplaced sphere.
func (c *OrbitCamera) Altitude() float64 {
	return c.Distance - c.Radius
}

// Position returns the camera position relative to the planet centre.
func (c *OrbitCamera) Position() mgl64.Vec3 {
	cp := math.Cos(c.Pitch)
	return mgl64.Vec3{
		c.Distance * cp * math.Sin(c.Yaw),
		c.Distance * math.Sin(c.Pitch),
		c.Distance * cp * math.Cos(c.Yaw),
	}
}

// ViewMatrix returns the view matrix looking at the planet centre.
func (c *OrbitCamera) ViewMatrix() mgl32.Mat4 {
	p := c.Position()
	eye := mgl32.Vec3{float32(p[0]), float32(p[1]), float32(p[2])}
	return mgl32.LookAtV(eye, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
}

// ProjectionMatrix returns a perspective projection whose clip planes
// follow the altitude so depth precision stays usable near the ground.
func (c *OrbitCamera) ProjectionMatrix(aspect float32) mgl32.Mat4 {
	near := float32(c.Altitude() * 0.05)
	if near < c.Near {
		near = c.Near
	}
	far := float32(c.Distance + 2*c.Radius)
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), aspect, near, far)
}

// HandleDrag rotates around the planet. Rotation slows down near the
// surface so a drag covers a similar ground distance at any altitude.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY float64) {
	scale := c.DragSensitivity * mgl64.Clamp(c.Altitude()/c.Radius, 0.002, 1)
	c.Yaw -= deltaX * scale
	c.Pitch += deltaY * scale
	c.Pitch = mgl64.Clamp(c.Pitch, -c.MaxPitch, c.MaxPitch)
}

// HandleZoom moves toward or away from the surface. Each wheel tick changes
// the altitude by ZoomSensitivity of itself.
func (c *OrbitCamera) HandleZoom(delta float64) {
	alt := c.Altitude() * (1 - delta*c.ZoomSensitivity)
	c.Distance = mgl64.Clamp(c.Radius+alt, c.MinDistance, c.MaxDistance)
}

// LookAt places the camera above a direction at the given altitude.
func (c *OrbitCamera) LookAt(dir mgl64.Vec3, altitude float64) {
	dir = dir.Normalize()
	c.Pitch = mgl64.Clamp(math.Asin(mgl64.Clamp(dir[1], -1, 1)), -c.MaxPitch, c.MaxPitch)
	c.Yaw = math.Atan2(dir[0], dir[2])
	c.Distance = mgl64.Clamp(c.Radius+altitude, c.MinDistance, c.MaxDistance)
}

// SetRadius adapts the distance limits to a new planet, keeping the
// relative altitude.
func (c *OrbitCamera) SetRadius(radius float64) {
	if c.Radius > 0 {
		c.Distance *= radius / c.Radius
	}
	c.Radius = radius
	c.MinDistance = MinAltitudeFactor * radius
	c.MaxDistance = 20 * radius
	c.Distance = mgl64.Clamp(c.Distance, c.MinDistance, c.MaxDistance)
}

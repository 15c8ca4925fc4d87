// Package lighting holds the directional sun that lights the planet.
package lighting

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// SunDirection converts longitude (degrees around Y) and latitude (degrees
// above the equator) into a unit vector pointing toward the sun.
func SunDirection(longitude, latitude float64) mgl32.Vec3 {
	lon := longitude * math.Pi / 180
	lat := latitude * math.Pi / 180
	return mgl32.Vec3{
		float32(math.Cos(lat) * math.Sin(lon)),
		float32(math.Sin(lat)),
		float32(math.Cos(lat) * math.Cos(lon)),
	}
}

// Sun is a directional light orbiting the planet.
type Sun struct {
	Longitude float64 // degrees
	Latitude  float64 // degrees
	Speed     float64 // degrees of longitude per second
	Color     mgl32.Vec3
	Ambient   float32
}

// DefaultSun returns a warm white sun slightly above the equator.
func DefaultSun() Sun {
	return Sun{
		Longitude: 45,
		Latitude:  25,
		Speed:     2,
		Color:     mgl32.Vec3{1, 0.97, 0.9},
		Ambient:   0.15,
	}
}

// Direction returns the unit vector toward the sun.
func (s Sun) Direction() mgl32.Vec3 {
	return SunDirection(s.Longitude, s.Latitude)
}

// Advance moves the sun along its orbit by dt seconds.
func (s *Sun) Advance(dt float64) {
	s.Longitude = math.Mod(s.Longitude+s.Speed*dt, 360)
	if s.Longitude < 0 {
		s.Longitude += 360
	}
}

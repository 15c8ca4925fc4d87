package lighting

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestSunDirection(t *testing.T) {
	tests := []struct {
		lon, lat float64
		want     mgl32.Vec3
	}{
		{0, 0, mgl32.Vec3{0, 0, 1}},
		{90, 0, mgl32.Vec3{1, 0, 0}},
		{0, 90, mgl32.Vec3{0, 1, 0}},
		{180, 0, mgl32.Vec3{0, 0, -1}},
	}
	for _, tt := range tests {
		got := SunDirection(tt.lon, tt.lat)
		if !got.ApproxEqualThreshold(tt.want, 1e-6) {
			t.Errorf("SunDirection(%v, %v) = %v, want %v", tt.lon, tt.lat, got, tt.want)
		}
		if math.Abs(float64(got.Len())-1) > 1e-6 {
			t.Errorf("direction not unit length: %v", got)
		}
	}
}

func TestSunAdvanceWraps(t *testing.T) {
	s := DefaultSun()
	s.Longitude = 359
	s.Speed = 2
	s.Advance(1)
	if math.Abs(s.Longitude-1) > 1e-9 {
		t.Errorf("longitude %f, want 1", s.Longitude)
	}

	s.Speed = -4
	s.Advance(1)
	if math.Abs(s.Longitude-357) > 1e-9 {
		t.Errorf("longitude %f, want 357", s.Longitude)
	}
}

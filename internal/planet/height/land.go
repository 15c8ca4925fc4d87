package height

import (
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/cubesphere/internal/planet/cube"
)

// LandPoint returns the surface point along dir and whether it is dry land:
// classified as land and not below seaLevel.
func (f *Field) LandPoint(dir mgl64.Vec3, seaLevel float64) (mgl64.Vec3, bool) {
	d := cube.SafeNormalize(dir)
	e, s := f.evaluate(d)
	return d.Mul(e), s.IsLand && e >= seaLevel
}

// FindLand samples up to attempts random directions from rng and returns the
// first dry land point with its direction. tries is the number of samples
// drawn.
func (f *Field) FindLand(attempts int, seaLevel float64, rng *rand.Rand) (pos, dir mgl64.Vec3, tries int, ok bool) {
	for tries < attempts {
		tries++
		d := cube.SafeNormalize(mgl64.Vec3{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()})
		if p, land := f.LandPoint(d, seaLevel); land {
			return p, d, tries, true
		}
	}
	return mgl64.Vec3{}, mgl64.Vec3{}, tries, false
}

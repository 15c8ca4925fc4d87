package height

import (
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
)

// Each derived coefficient draws from its own source seeded with seed^salt,
// so changing how one coefficient is derived never shifts another.
const (
	saltContinentScale  int64 = 0x1b873593
	saltDetailScale     int64 = 0x2c1b3c6d
	saltRidgeScale      int64 = 0x297a2d39
	saltRidgeWeight     int64 = 0x68e31da4
	saltContinentOffset int64 = 0x5bd1e995
	saltDetailOffset    int64 = 0x27d4eb2f
	saltRidgeOffset     int64 = 0x165667b1
	saltContinentNoise  int64 = 0x61c88647
	saltDetailNoise     int64 = 0x7feb352d
	saltRidgeNoise      int64 = 0x846ca68b
)

// offsetRange bounds the per-layer noise lookup offsets.
const offsetRange = 1000.0

// Params holds the per-seed coefficients of the height field.
type Params struct {
	Seed int64

	ContinentScale float64
	DetailScale    float64
	RidgeScale     float64
	RidgeWeight    float64

	ContinentOffset mgl64.Vec3
	DetailOffset    mgl64.Vec3
	RidgeOffset     mgl64.Vec3
}

// DeriveParams computes the coefficients for a seed. The result depends on
// nothing but the seed.
func DeriveParams(seed int64) Params {
	return Params{
		Seed:            seed,
		ContinentScale:  uniform(seed, saltContinentScale, 0.8, 1.6),
		DetailScale:     uniform(seed, saltDetailScale, 3.0, 6.0),
		RidgeScale:      uniform(seed, saltRidgeScale, 1.5, 3.0),
		RidgeWeight:     uniform(seed, saltRidgeWeight, 0.5, 1.0),
		ContinentOffset: offset(seed, saltContinentOffset),
		DetailOffset:    offset(seed, saltDetailOffset),
		RidgeOffset:     offset(seed, saltRidgeOffset),
	}
}

func uniform(seed, salt int64, lo, hi float64) float64 {
	r := rand.New(rand.NewSource(seed ^ salt))
	// The conversion keeps the product rounded so no architecture fuses it
	// into the add.
	return lo + float64(r.Float64()*(hi-lo))
}

func offset(seed, salt int64) mgl64.Vec3 {
	r := rand.New(rand.NewSource(seed ^ salt))
	return mgl64.Vec3{
		(r.Float64()*2 - 1) * offsetRange,
		(r.Float64()*2 - 1) * offsetRange,
		(r.Float64()*2 - 1) * offsetRange,
	}
}

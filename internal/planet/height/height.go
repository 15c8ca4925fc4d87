// Package height implements the procedural planet height field.
//
// Elevation is a pure function of (seed, radius, direction). Three
// opensimplex fractal layers are sampled directly in 3D on the unit sphere:
// a low-frequency continent layer that decides land and water, a signed
// detail layer and a ridged mountain layer, both masked to land.
package height

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/ojrac/opensimplex-go"

	"github.com/Faultbox/cubesphere/internal/planet/cube"
)

// Settings are the seed-independent shape constants of the height field.
// Heights are fractions of the planet radius.
type Settings struct {
	OceanLevel   float64 // continent value separating water from land
	CoastBand    float64 // width of the land-mask ramp above OceanLevel
	OceanFalloff float64 // continent distance below OceanLevel to reach full depth

	ContinentOctaves int
	DetailOctaves    int
	RidgeOctaves     int
	Persistence      float64
	Lacunarity       float64

	LandHeight   float64
	DetailHeight float64
	RidgeHeight  float64
	OceanDepth   float64
}

// DefaultSettings returns the standard terrain shape.
func DefaultSettings() Settings {
	return Settings{
		OceanLevel:       0.5,
		CoastBand:        0.04,
		OceanFalloff:     0.2,
		ContinentOctaves: 5,
		DetailOctaves:    6,
		RidgeOctaves:     5,
		Persistence:      0.5,
		Lacunarity:       2.0,
		LandHeight:       0.02,
		DetailHeight:     0.004,
		RidgeHeight:      0.02,
		OceanDepth:       0.015,
	}
}

// Sample is the coarse classification of a surface point.
type Sample struct {
	IsLand bool
	// NormalizedHeight is in [-1,1]: positive over land (1 at the highest
	// possible peak), negative over water (-1 at full ocean depth).
	NormalizedHeight float64
}

// Field evaluates the height field for one seed and radius. It is
// read-only after construction and safe for concurrent use.
type Field struct {
	radius   float64
	settings Settings
	params   Params

	continent opensimplex.Noise
	detail    opensimplex.Noise
	ridge     opensimplex.Noise
}

// New builds the field for a seed.
func New(seed int64, radius float64, settings Settings) *Field {
	return &Field{
		radius:    radius,
		settings:  settings,
		params:    DeriveParams(seed),
		continent: opensimplex.NewNormalized(seed ^ saltContinentNoise),
		detail:    opensimplex.New(seed ^ saltDetailNoise),
		ridge:     opensimplex.NewNormalized(seed ^ saltRidgeNoise),
	}
}

// Elevation is a convenience wrapper that builds a field with default
// settings for a single lookup. Reuse a Field for bulk sampling.
func Elevation(seed int64, radius float64, dir mgl64.Vec3) float64 {
	return New(seed, radius, DefaultSettings()).Elevation(dir)
}

// Classify is the single-lookup counterpart of Field.Classify.
func Classify(seed int64, radius float64, dir mgl64.Vec3) Sample {
	return New(seed, radius, DefaultSettings()).Classify(dir)
}

// Radius returns the planet radius the field was built for.
func (f *Field) Radius() float64 { return f.radius }

// Seed returns the seed the field was built for.
func (f *Field) Seed() int64 { return f.params.Seed }

// Params returns the per-seed coefficients.
func (f *Field) Params() Params { return f.params }

// Settings returns the shape constants.
func (f *Field) Settings() Settings { return f.settings }

// Elevation returns the distance from the planet centre to the surface
// along dir.
func (f *Field) Elevation(dir mgl64.Vec3) float64 {
	e, _ := f.evaluate(dir)
	return e
}

// Classify returns the land/water classification along dir.
func (f *Field) Classify(dir mgl64.Vec3) Sample {
	_, s := f.evaluate(dir)
	return s
}

// Evaluate returns both the elevation and the classification along dir.
func (f *Field) Evaluate(dir mgl64.Vec3) (float64, Sample) {
	return f.evaluate(dir)
}

// MaxLandHeight is the largest possible height above the radius.
func (f *Field) MaxLandHeight() float64 {
	s := f.settings
	return (s.LandHeight + s.DetailHeight + s.RidgeHeight*f.params.RidgeWeight) * f.radius
}

func (f *Field) evaluate(dir mgl64.Vec3) (float64, Sample) {
	dir = cube.SafeNormalize(dir)
	s := f.settings
	p := f.params

	c := fbm(f.continent, dir.Mul(p.ContinentScale).Add(p.ContinentOffset),
		s.ContinentOctaves, s.Persistence, s.Lacunarity)

	if c < s.OceanLevel {
		t := 1.0
		if s.OceanFalloff > 0 {
			t = mgl64.Clamp((s.OceanLevel-c)/s.OceanFalloff, 0, 1)
		}
		depth := s.OceanDepth * f.radius * smoothstep(t)
		return f.radius - depth, Sample{
			IsLand:           false,
			NormalizedHeight: -smoothstep(t),
		}
	}

	mask := 1.0
	if s.CoastBand > 0 {
		mask = mgl64.Clamp((c-s.OceanLevel)/s.CoastBand, 0, 1)
	}

	baseline := s.LandHeight * f.radius * (c - s.OceanLevel) / (1 - s.OceanLevel)

	d := fbm(f.detail, dir.Mul(p.DetailScale).Add(p.DetailOffset),
		s.DetailOctaves, s.Persistence, s.Lacunarity)
	detail := d * s.DetailHeight * f.radius * mask

	r := fbm(f.ridge, dir.Mul(p.RidgeScale).Add(p.RidgeOffset),
		s.RidgeOctaves, s.Persistence, s.Lacunarity)
	ridged := 1 - math.Abs(2*r-1)
	ridge := ridged * ridged * p.RidgeWeight * s.RidgeHeight * f.radius * mask

	h := baseline + detail + ridge
	norm := 0.0
	if maxH := f.MaxLandHeight(); maxH > 0 {
		norm = mgl64.Clamp(h/maxH, -1, 1)
	}
	return f.radius + h, Sample{IsLand: true, NormalizedHeight: norm}
}

// fbm sums octaves of noise, each octave scaling amplitude by persistence
// and frequency by lacunarity, normalized by the amplitude sum so the result
// keeps the range of the underlying noise.
func fbm(n opensimplex.Noise, pt mgl64.Vec3, octaves int, persistence, lacunarity float64) float64 {
	var sum, norm float64
	amp, freq := 1.0, 1.0
	for i := 0; i < octaves; i++ {
		sum += amp * n.Eval3(pt[0]*freq, pt[1]*freq, pt[2]*freq)
		norm += amp
		amp *= persistence
		freq *= lacunarity
	}
	if norm == 0 {
		return 0
	}
	return sum / norm
}

func smoothstep(t float64) float64 {
	return t * t * (3 - 2*t)
}

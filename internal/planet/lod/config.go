package lod

import (
	"math"
	"time"

	"go.uber.org/zap"
)

const (
	// MinResolution is the smallest vertex count per patch side.
	MinResolution = 8
	// MaxDepthLimit bounds the explicit depth cap.
	MaxDepthLimit = 20
	// MinSplitDistanceFraction is the smallest split distance as a fraction
	// of the radius.
	MinSplitDistanceFraction = 0.1
	// MinSplitFalloff keeps the falloff strictly above 1.
	MinSplitFalloff = 1.01
	// MergeHysteresis scales the split threshold into the merge threshold.
	MergeHysteresis = 1.6
	// SeaLevelOffset is how far below the radius sea level sits.
	SeaLevelOffset = 1.0

	minTriangleArea = 1e-9
)

// Config is the planet LOD configuration.
type Config struct {
	Radius             float64       `yaml:"radius"`
	BaseResolution     int           `yaml:"base_resolution"`
	MaxDepth           int           `yaml:"max_depth"`
	TargetTriangleArea float64       `yaml:"target_triangle_area"`
	MaxPatchResolution int           `yaml:"max_patch_resolution"`
	SplitDistance      float64       `yaml:"split_distance"`
	SplitFalloff       float64       `yaml:"split_falloff"`
	UpdateInterval     time.Duration `yaml:"update_interval"`
}

// DefaultConfig returns the standard configuration for a 3000-unit planet.
func DefaultConfig() Config {
	return Config{
		Radius:             3000,
		BaseResolution:     16,
		MaxDepth:           8,
		TargetTriangleArea: 40,
		MaxPatchResolution: 64,
		SplitDistance:      12000,
		SplitFalloff:       2,
		UpdateInterval:     250 * time.Millisecond,
	}
}

// Clamped returns c with every field forced into its valid range. Each
// adjustment is logged with the original value.
func (c Config) Clamped(log *zap.Logger) Config {
	if log == nil {
		log = zap.NewNop()
	}
	warn := func(field string, from, to float64) {
		log.Warn("config value clamped",
			zap.String("field", field),
			zap.Float64("from", from),
			zap.Float64("to", to),
		)
	}

	if !(c.Radius >= 1) {
		warn("radius", c.Radius, 1)
		c.Radius = 1
	}
	if c.BaseResolution < MinResolution {
		warn("base_resolution", float64(c.BaseResolution), MinResolution)
		c.BaseResolution = MinResolution
	}
	if c.MaxPatchResolution < c.BaseResolution {
		warn("max_patch_resolution", float64(c.MaxPatchResolution), float64(c.BaseResolution))
		c.MaxPatchResolution = c.BaseResolution
	}
	if c.MaxDepth < 0 {
		warn("max_depth", float64(c.MaxDepth), 0)
		c.MaxDepth = 0
	}
	if c.MaxDepth > MaxDepthLimit {
		warn("max_depth", float64(c.MaxDepth), MaxDepthLimit)
		c.MaxDepth = MaxDepthLimit
	}
	if minSplit := c.Radius * MinSplitDistanceFraction; !(c.SplitDistance >= minSplit) {
		warn("split_distance", c.SplitDistance, minSplit)
		c.SplitDistance = minSplit
	}
	if !(c.SplitFalloff >= MinSplitFalloff) {
		warn("split_falloff", c.SplitFalloff, MinSplitFalloff)
		c.SplitFalloff = MinSplitFalloff
	}
	if !(c.TargetTriangleArea > 0) {
		warn("target_triangle_area", c.TargetTriangleArea, minTriangleArea)
		c.TargetTriangleArea = minTriangleArea
	}
	if c.UpdateInterval < 0 {
		warn("update_interval", c.UpdateInterval.Seconds(), 0)
		c.UpdateInterval = 0
	}
	return c
}

// Resolution returns the vertex count per side of a patch at depth.
func (c Config) Resolution(depth int) int {
	res := c.BaseResolution
	for i := 0; i < depth && res < c.MaxPatchResolution; i++ {
		res *= 2
	}
	if res > c.MaxPatchResolution {
		res = c.MaxPatchResolution
	}
	if res < MinResolution {
		res = MinResolution
	}
	return res
}

// SplitThreshold is the camera distance below which a patch at depth splits.
func (c Config) SplitThreshold(depth int) float64 {
	return c.SplitDistance / math.Pow(c.SplitFalloff, float64(depth+1))
}

// MergeThreshold is the camera distance above which a patch at depth
// collapses its children. It is always larger than SplitThreshold.
func (c Config) MergeThreshold(depth int) float64 {
	return c.SplitThreshold(depth) * MergeHysteresis
}

// TriangleArea estimates the average triangle area of a patch at depth.
func (c Config) TriangleArea(depth int) float64 {
	faceArea := 4 * math.Pi * c.Radius * c.Radius / 6
	patchArea := faceArea / math.Pow(4, float64(depth))
	res := c.Resolution(depth)
	triangles := 2 * (res - 1) * (res - 1)
	return patchArea / float64(triangles)
}

// EffectiveMaxDepth is the shallowest depth whose average triangle area is
// at or below the target, capped by MaxDepth.
func (c Config) EffectiveMaxDepth() int {
	for d := 0; d < c.MaxDepth; d++ {
		if c.TriangleArea(d) <= c.TargetTriangleArea {
			return d
		}
	}
	return c.MaxDepth
}

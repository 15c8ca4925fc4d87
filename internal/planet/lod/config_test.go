package lod

import (
	"math"
	"testing"
	"time"
)

func TestDefaultEffectiveMaxDepth(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.EffectiveMaxDepth(); got != 3 {
		t.Errorf("expected effective max depth 3, got %d", got)
	}
}

func TestResolution(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		depth int
		want  int
	}{
		{0, 16},
		{1, 32},
		{2, 64},
		{3, 64},
		{10, 64},
	}
	for _, tt := range tests {
		if got := cfg.Resolution(tt.depth); got != tt.want {
			t.Errorf("Resolution(%d) = %d, want %d", tt.depth, got, tt.want)
		}
	}
}

func TestThresholds(t *testing.T) {
	cfg := DefaultConfig()
	want := []float64{6000, 3000, 1500, 750}
	for depth, w := range want {
		if got := cfg.SplitThreshold(depth); math.Abs(got-w) > 1e-9 {
			t.Errorf("SplitThreshold(%d) = %f, want %f", depth, got, w)
		}
		if cfg.MergeThreshold(depth) <= cfg.SplitThreshold(depth) {
			t.Errorf("merge threshold at depth %d not above split threshold", depth)
		}
	}
}

func TestEffectiveMaxDepthDecreasesWithArea(t *testing.T) {
	cfg := DefaultConfig()
	areas := []float64{10, 40, 200, 3000, 50000}
	wants := []int{4, 3, 2, 1, 0}

	prev := math.MaxInt
	for i, area := range areas {
		cfg.TargetTriangleArea = area
		got := cfg.EffectiveMaxDepth()
		if got != wants[i] {
			t.Errorf("area %.0f: expected depth %d, got %d", area, wants[i], got)
		}
		if got >= prev {
			t.Errorf("area %.0f: depth %d did not decrease from %d", area, got, prev)
		}
		prev = got
	}
}

func TestEffectiveMaxDepthCappedByMaxDepth(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TargetTriangleArea = 1e-6
	cfg.MaxDepth = 5
	if got := cfg.EffectiveMaxDepth(); got != 5 {
		t.Errorf("expected cap 5, got %d", got)
	}
}

func TestClamped(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*Config)
		check func(Config) bool
	}{
		{"radius", func(c *Config) { c.Radius = 0 }, func(c Config) bool { return c.Radius == 1 }},
		{"nan radius", func(c *Config) { c.Radius = math.NaN() }, func(c Config) bool { return c.Radius == 1 }},
		{"base resolution", func(c *Config) { c.BaseResolution = 2 }, func(c Config) bool { return c.BaseResolution == MinResolution }},
		{"max patch below base", func(c *Config) { c.MaxPatchResolution = 4 }, func(c Config) bool { return c.MaxPatchResolution == c.BaseResolution }},
		{"negative depth", func(c *Config) { c.MaxDepth = -3 }, func(c Config) bool { return c.MaxDepth == 0 }},
		{"huge depth", func(c *Config) { c.MaxDepth = 99 }, func(c Config) bool { return c.MaxDepth == MaxDepthLimit }},
		{"split distance", func(c *Config) { c.SplitDistance = 1 }, func(c Config) bool { return c.SplitDistance == 300 }},
		{"falloff", func(c *Config) { c.SplitFalloff = 1 }, func(c Config) bool { return c.SplitFalloff == MinSplitFalloff }},
		{"target area", func(c *Config) { c.TargetTriangleArea = -5 }, func(c Config) bool { return c.TargetTriangleArea > 0 }},
		{"interval", func(c *Config) { c.UpdateInterval = -time.Second }, func(c Config) bool { return c.UpdateInterval == 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.edit(&cfg)
			got := cfg.Clamped(nil)
			if !tt.check(got) {
				t.Errorf("clamp failed: %+v", got)
			}
		})
	}
}

func TestClampedKeepsValidConfig(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.Clamped(nil); got != cfg {
		t.Errorf("valid config changed: %+v -> %+v", cfg, got)
	}
}

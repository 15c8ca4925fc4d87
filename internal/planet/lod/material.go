package lod

import (
	"fmt"

	"github.com/mazznoer/colorgrad"
)

// Material is the terrain appearance shared read-only by every patch of a
// planet. It maps a normalized height in [-1,1] to a vertex colour.
type Material struct {
	Name     string
	gradient colorgrad.Gradient
}

// ColorStop places a colour at a normalized height.
type ColorStop struct {
	Height float64
	Color  string // any CSS colour, e.g. "#1b3f8b"
}

var defaultStops = []ColorStop{
	{-1.0, "#0b1d4a"},
	{-0.3, "#1b3f8b"},
	{-0.02, "#3f7fbf"},
	{0.0, "#d8cc8c"},
	{0.1, "#4f8a3a"},
	{0.35, "#2f5a24"},
	{0.6, "#7a6a55"},
	{0.85, "#9e9a94"},
	{1.0, "#f4f4f8"},
}

// NewMaterial builds a material from colour stops ordered by height.
func NewMaterial(name string, stops []ColorStop) (*Material, error) {
	if len(stops) < 2 {
		return nil, fmt.Errorf("material %s: need at least 2 colour stops, got %d", name, len(stops))
	}

	colors := make([]string, len(stops))
	domain := make([]float64, len(stops))
	for i, s := range stops {
		if i > 0 && s.Height <= stops[i-1].Height {
			return nil, fmt.Errorf("material %s: stop %d height %v not above %v", name, i, s.Height, stops[i-1].Height)
		}
		colors[i] = s.Color
		domain[i] = s.Height
	}

	grad, err := colorgrad.NewGradient().
		HtmlColors(colors...).
		Domain(domain...).
		Build()
	if err != nil {
		return nil, fmt.Errorf("material %s: %w", name, err)
	}

	return &Material{Name: name, gradient: grad}, nil
}

// DefaultMaterial returns the standard ocean-to-snow terrain ramp. It panics
// only if the built-in stops are invalid.
func DefaultMaterial() *Material {
	m, err := NewMaterial("terrain", defaultStops)
	if err != nil {
		panic(err)
	}
	return m
}

// Color returns the RGBA vertex colour for a normalized height. A nil
// material renders white.
func (m *Material) Color(normalizedHeight float64) [4]float32 {
	if m == nil {
		return [4]float32{1, 1, 1, 1}
	}
	c := m.gradient.At(normalizedHeight).Clamped()
	return [4]float32{float32(c.R), float32(c.G), float32(c.B), 1}
}

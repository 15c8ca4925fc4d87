// Package debug builds line geometry for debug overlays.
package debug

import (
	"github.com/go-gl/mathgl/mgl64"
)

// MarkerVertexCount is the number of line vertices MarkerLines returns.
const MarkerVertexCount = 6

// MarkerLines returns a three-axis marker at a surface point: a spike along
// the normal and a cross in the tangent plane. Format is x, y, z per vertex,
// two vertices per line.
func MarkerLines(point, normal mgl64.Vec3, size float64) []float32 {
	n := normal.Normalize()
	if n.Len() == 0 {
		n = mgl64.Vec3{0, 1, 0}
	}

	// Any vector not parallel to n seeds the tangent frame.
	ref := mgl64.Vec3{0, 1, 0}
	if abs(n[1]) > 0.9 {
		ref = mgl64.Vec3{1, 0, 0}
	}
	t1 := n.Cross(ref).Normalize()
	t2 := n.Cross(t1)

	half := size / 2
	tip := point.Add(n.Mul(size * 2))

	lines := []mgl64.Vec3{
		point, tip,
		point.Sub(t1.Mul(half)), point.Add(t1.Mul(half)),
		point.Sub(t2.Mul(half)), point.Add(t2.Mul(half)),
	}
	out := make([]float32, 0, len(lines)*3)
	for _, v := range lines {
		out = append(out, float32(v[0]), float32(v[1]), float32(v[2]))
	}
	return out
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

package debug

// BoundsVertexCount is the number of vertices BoundsLines returns
// (12 edges × 2).
const BoundsVertexCount = 24

// BoundsLines returns the 12 edges of an axis-aligned box as line vertices,
// x, y, z per vertex.
func BoundsLines(min, max [3]float32) []float32 {
	minX, minY, minZ := min[0], min[1], min[2]
	maxX, maxY, maxZ := max[0], max[1], max[2]
	return []float32{
		// Bottom
		minX, minY, minZ, maxX, minY, minZ,
		maxX, minY, minZ, maxX, minY, maxZ,
		maxX, minY, maxZ, minX, minY, maxZ,
		minX, minY, maxZ, minX, minY, minZ,
		// Top
		minX, maxY, minZ, maxX, maxY, minZ,
		maxX, maxY, minZ, maxX, maxY, maxZ,
		maxX, maxY, maxZ, minX, maxY, maxZ,
		minX, maxY, maxZ, minX, maxY, minZ,
		// Vertical
		minX, minY, minZ, minX, maxY, minZ,
		maxX, minY, minZ, maxX, maxY, minZ,
		maxX, minY, maxZ, maxX, maxY, maxZ,
		minX, minY, maxZ, minX, maxY, maxZ,
	}
}

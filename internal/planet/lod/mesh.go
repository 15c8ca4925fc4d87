package lod

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/cubesphere/internal/planet/cube"
	"github.com/Faultbox/cubesphere/internal/planet/height"
)

// Vertex is one GPU-ready patch vertex.
type Vertex struct {
	Position [3]float32 // relative to the planet centre
	Normal   [3]float32
	UV       [2]float32 // face coordinate in [0,1]²
	Color    [4]float32
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// Mesh holds a patch's triangle grid.
type Mesh struct {
	Resolution int
	Vertices   []Vertex
	Indices    []uint32
	Bounds     Bounds
}

// TriangleCount returns the number of triangles in the mesh.
func (m *Mesh) TriangleCount() int {
	if m == nil {
		return 0
	}
	return len(m.Indices) / 3
}

// Regenerate builds the patch mesh: a res×res grid over the patch rectangle,
// each vertex projected onto the sphere and displaced to the surface.
// Normals are the sphere direction, not the displaced-surface normal.
func Regenerate(p *Patch, field *height.Field, res int, mat *Material) {
	if res < 2 {
		res = 2
	}

	mesh := &Mesh{
		Resolution: res,
		Vertices:   make([]Vertex, 0, res*res),
		Indices:    make([]uint32, 0, 6*(res-1)*(res-1)),
		Bounds: Bounds{
			Min: [3]float32{1e30, 1e30, 1e30},
			Max: [3]float32{-1e30, -1e30, -1e30},
		},
	}

	span := p.UVMax.Sub(p.UVMin)
	step := 1 / float64(res-1)

	for y := 0; y < res; y++ {
		for x := 0; x < res; x++ {
			uv := mgl64.Vec2{
				p.UVMin[0] + span[0]*float64(x)*step,
				p.UVMin[1] + span[1]*float64(y)*step,
			}
			dir := cube.ToSphere(p.Face, uv)
			elev, sample := field.Evaluate(dir)
			pos := dir.Mul(elev)

			v := Vertex{
				Position: [3]float32{float32(pos[0]), float32(pos[1]), float32(pos[2])},
				Normal:   [3]float32{float32(dir[0]), float32(dir[1]), float32(dir[2])},
				UV:       [2]float32{float32(uv[0]), float32(uv[1])},
				Color:    mat.Color(sample.NormalizedHeight),
			}
			mesh.Bounds.extend(v.Position)
			mesh.Vertices = append(mesh.Vertices, v)
		}
	}

	// Counter-clockwise seen from outside: axisA × axisB is the face normal.
	for y := 0; y < res-1; y++ {
		for x := 0; x < res-1; x++ {
			i := uint32(y*res + x)
			r := uint32(res)
			mesh.Indices = append(mesh.Indices,
				i, i+1, i+r,
				i+1, i+r+1, i+r,
			)
		}
	}

	p.Mesh = mesh
}

func (b *Bounds) extend(p [3]float32) {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
}

package lod

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/cubesphere/internal/planet/cube"
)

// PatchID indexes a patch in the manager's arena. IDs of destroyed patches
// are reused, so an ID is only meaningful until the next refresh pass.
type PatchID int32

// NoPatch marks an absent parent or child.
const NoPatch PatchID = -1

// Patch is one quadtree node: a rectangle of a cube face with its own mesh.
// A leaf renders its mesh; an expanded patch keeps its mesh hidden while its
// four children cover the same rectangle.
type Patch struct {
	ID     PatchID
	Serial uint64 // unique per created patch, never reused
	Face   cube.Face
	UVMin  mgl64.Vec2
	UVMax  mgl64.Vec2
	Depth  int

	Parent   PatchID
	Children [4]PatchID

	Visible bool
	Mesh    *Mesh

	expanded  bool
	center    mgl64.Vec3
	hasCenter bool
	live      bool
}

// IsLeaf reports whether the patch has no children.
func (p *Patch) IsLeaf() bool { return !p.expanded }

// CenterUV returns the UV-centre coordinate of the patch.
func (p *Patch) CenterUV() mgl64.Vec2 {
	return p.UVMin.Add(p.UVMax).Mul(0.5)
}

// Contains reports whether a face coordinate lies inside the patch,
// treating the min edges as inclusive and the max edges as exclusive except
// at the face border.
func (p *Patch) Contains(face cube.Face, uv mgl64.Vec2) bool {
	if face != p.Face {
		return false
	}
	for i := 0; i < 2; i++ {
		if uv[i] < p.UVMin[i] {
			return false
		}
		if uv[i] > p.UVMax[i] || (uv[i] == p.UVMax[i] && p.UVMax[i] < 1) {
			return false
		}
	}
	return true
}

// quadrants splits the patch rectangle into four children in the order
// (min,min), (max,min), (min,max), (max,max).
func (p *Patch) quadrants() [4][2]mgl64.Vec2 {
	mid := p.CenterUV()
	return [4][2]mgl64.Vec2{
		{p.UVMin, mid},
		{{mid[0], p.UVMin[1]}, {p.UVMax[0], mid[1]}},
		{{p.UVMin[0], mid[1]}, {mid[0], p.UVMax[1]}},
		{mid, p.UVMax},
	}
}

// arena stores every live patch of a planet. Freed slots are recycled and
// their meshes dropped immediately.
type arena struct {
	patches    []Patch
	free       []PatchID
	live       int
	nextSerial uint64
}

func (a *arena) alloc(p Patch) PatchID {
	a.nextSerial++
	p.Serial = a.nextSerial
	p.live = true
	p.Children = [4]PatchID{NoPatch, NoPatch, NoPatch, NoPatch}
	a.live++

	if n := len(a.free); n > 0 {
		id := a.free[n-1]
		a.free = a.free[:n-1]
		p.ID = id
		a.patches[id] = p
		return id
	}

	id := PatchID(len(a.patches))
	p.ID = id
	a.patches = append(a.patches, p)
	return id
}

// release frees one slot. The caller frees descendants first.
func (a *arena) release(id PatchID) {
	a.patches[id] = Patch{ID: id, Parent: NoPatch}
	a.free = append(a.free, id)
	a.live--
}

func (a *arena) get(id PatchID) *Patch {
	if id < 0 || int(id) >= len(a.patches) || !a.patches[id].live {
		return nil
	}
	return &a.patches[id]
}

func (a *arena) reset() {
	a.patches = nil
	a.free = nil
	a.live = 0
}

package lod

import (
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/cubesphere/internal/planet/cube"
)

const testSeed = 1337

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m := NewManager(DefaultConfig())
	m.BuildPlanet(testSeed, nil)
	return m
}

// cameraAbove returns a point altitude units above the surface at the centre
// of face.
func cameraAbove(m *Manager, face cube.Face, altitude float64) mgl64.Vec3 {
	n := face.Normal()
	return m.EvaluateSurfacePoint(n).Add(n.Mul(altitude))
}

func TestUnbuiltManagerIsSafe(t *testing.T) {
	m := NewManager(DefaultConfig())

	if m.Built() {
		t.Fatal("new manager reports built")
	}
	if m.Tick(mgl64.Vec3{0, 0, 100}, 10) {
		t.Error("Tick ran on unbuilt manager")
	}
	m.Refresh(mgl64.Vec3{})
	if got := m.VisiblePatches(); len(got) != 0 {
		t.Errorf("expected no visible patches, got %d", len(got))
	}
	if m.Root(cube.PosX) != NoPatch {
		t.Error("expected no root before build")
	}
	if _, _, ok := m.TryFindLandPoint(128, rand.New(rand.NewSource(1))); ok {
		t.Error("land search succeeded without a planet")
	}
}

func TestBuildPlanetCreatesSixRoots(t *testing.T) {
	m := newTestManager(t)

	if got := len(m.VisiblePatches()); got != cube.FaceCount {
		t.Fatalf("expected %d visible roots, got %d", cube.FaceCount, got)
	}
	for _, face := range cube.Faces {
		p := m.Patch(m.Root(face))
		if p == nil {
			t.Fatalf("missing root for %s", face)
		}
		if p.Face != face || p.Depth != 0 || !p.IsLeaf() {
			t.Errorf("unexpected root %+v", p)
		}
		if p.Mesh == nil || len(p.Mesh.Vertices) != 16*16 {
			t.Errorf("root %s mesh not built at base resolution", face)
		}
	}
	if s := m.Stats(); s.MeshesBuilt != cube.FaceCount || s.Patches != cube.FaceCount {
		t.Errorf("unexpected stats after build: %+v", s)
	}
}

func TestFarCameraKeepsRootsAtDepthZero(t *testing.T) {
	m := newTestManager(t)
	m.Refresh(mgl64.Vec3{0, 0, 50000})

	visible := m.VisiblePatches()
	if len(visible) != cube.FaceCount {
		t.Fatalf("expected 6 visible patches, got %d", len(visible))
	}
	for _, p := range visible {
		if p.Depth != 0 {
			t.Errorf("patch on %s at depth %d", p.Face, p.Depth)
		}
	}
	if s := m.Stats(); s.Splits != 0 {
		t.Errorf("expected no splits, got %d", s.Splits)
	}
}

func TestNearCameraSubdividesToEffectiveDepth(t *testing.T) {
	m := newTestManager(t)
	m.Refresh(cameraAbove(m, cube.PosY, 100))

	effMax := m.EffectiveMaxDepth()
	if effMax != 3 {
		t.Fatalf("expected effective depth 3, got %d", effMax)
	}

	deepest := -1
	for _, p := range m.VisiblePatches() {
		if p.Face == cube.PosY && p.Depth > deepest {
			deepest = p.Depth
		}
	}
	if deepest != effMax {
		t.Errorf("expected +Y to reach depth %d, got %d", effMax, deepest)
	}

	opposite := m.Patch(m.Root(cube.PosY.Opposite()))
	if !opposite.IsLeaf() || !opposite.Visible {
		t.Errorf("opposite root should stay a visible leaf, got expanded=%v visible=%v", !opposite.IsLeaf(), opposite.Visible)
	}
}

func TestDepthNeverExceedsEffectiveMax(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TargetTriangleArea = 150
	m := NewManager(cfg)
	m.BuildPlanet(testSeed, nil)

	for _, face := range cube.Faces {
		m.Refresh(cameraAbove(m, face, 10))
	}

	var walk func(id PatchID)
	walk = func(id PatchID) {
		p := m.Patch(id)
		if p.Depth > m.EffectiveMaxDepth() {
			t.Errorf("patch depth %d exceeds %d", p.Depth, m.EffectiveMaxDepth())
		}
		for _, child := range m.Children(id) {
			walk(child)
		}
	}
	for _, face := range cube.Faces {
		walk(m.Root(face))
	}
}

func TestVisiblePatchesPartitionSphere(t *testing.T) {
	m := newTestManager(t)
	cameras := []mgl64.Vec3{
		cameraAbove(m, cube.PosY, 100),
		cameraAbove(m, cube.NegZ, 800),
		mgl64.Vec3{2500, 2500, 100},
		mgl64.Vec3{0, 0, 50000},
		cameraAbove(m, cube.PosX, 50),
	}

	rng := rand.New(rand.NewSource(3))
	for step, cam := range cameras {
		m.Refresh(cam)
		visible := m.VisiblePatches()

		area := make(map[cube.Face]float64)
		for _, p := range visible {
			size := p.UVMax.Sub(p.UVMin)
			area[p.Face] += size[0] * size[1]
		}
		for _, face := range cube.Faces {
			if math.Abs(area[face]-1) > 1e-9 {
				t.Errorf("step %d: face %s covered area %f, want 1", step, face, area[face])
			}
		}

		for i := 0; i < 500; i++ {
			face := cube.Faces[rng.Intn(cube.FaceCount)]
			uv := mgl64.Vec2{rng.Float64(), rng.Float64()}
			covering := 0
			for _, p := range visible {
				if p.Contains(face, uv) {
					covering++
				}
			}
			if covering != 1 {
				t.Fatalf("step %d: %s %v covered by %d patches", step, face, uv, covering)
			}
		}
	}
}

func TestStationaryCameraIsStable(t *testing.T) {
	m := newTestManager(t)
	cam := cameraAbove(m, cube.PosZ, 400)

	m.Refresh(cam)
	first := visibleSerials(m)
	before := m.Stats()

	for i := 0; i < 5; i++ {
		m.Refresh(cam)
	}
	after := m.Stats()

	if after.Splits != before.Splits || after.Merges != before.Merges {
		t.Errorf("tree changed under a stationary camera: %+v -> %+v", before, after)
	}
	if got := visibleSerials(m); !equalSerials(first, got) {
		t.Error("visible set changed under a stationary camera")
	}
}

func TestHysteresisBand(t *testing.T) {
	m := newTestManager(t)
	root := m.Root(cube.PosY)
	dir := cube.PosY.Normal()
	center := m.center(root)
	split := m.Config().SplitThreshold(0)

	// Just inside the split threshold of the root.
	m.Refresh(center.Add(dir.Mul(split - 1)))
	if m.Patch(root).IsLeaf() {
		t.Fatal("root did not split inside the threshold")
	}
	children := m.Children(root)
	if len(children) != 4 {
		t.Fatalf("expected 4 children, got %d", len(children))
	}

	child := children[0]
	childCenter := m.center(child)
	up := cube.SafeNormalize(childCenter)
	cfg := m.Config()

	m.Refresh(childCenter.Add(up.Mul(cfg.SplitThreshold(1) - 1)))
	if m.Patch(child).IsLeaf() {
		t.Fatal("child did not split inside its threshold")
	}

	// Past the split threshold but inside the merge threshold.
	band := (cfg.SplitThreshold(1) + cfg.MergeThreshold(1)) / 2
	for i := 0; i < 3; i++ {
		m.Refresh(childCenter.Add(up.Mul(band)))
		if m.Patch(child).IsLeaf() {
			t.Fatalf("refresh %d: child merged inside the hysteresis band", i)
		}
	}

	m.Refresh(childCenter.Add(up.Mul(cfg.MergeThreshold(1) + 100)))
	if !m.Patch(child).IsLeaf() {
		t.Error("child did not merge past the merge threshold")
	}
}

func TestFarCameraMergesAndRecyclesPatches(t *testing.T) {
	m := newTestManager(t)
	rootSerial := m.Patch(m.Root(cube.PosY)).Serial

	m.Refresh(cameraAbove(m, cube.PosY, 100))
	expanded := m.Stats()
	if expanded.Patches <= cube.FaceCount {
		t.Fatalf("expected expansion, got %d patches", expanded.Patches)
	}

	m.Refresh(mgl64.Vec3{0, 50000, 0})
	collapsed := m.Stats()
	if collapsed.Merges == 0 {
		t.Error("expected merges")
	}

	// Roots never merge, so depth 1 children stay until their root would.
	for _, p := range m.VisiblePatches() {
		if p.Depth > 1 {
			t.Errorf("patch at depth %d survived a far camera", p.Depth)
		}
	}
	if got := m.Patch(m.Root(cube.PosY)).Serial; got != rootSerial {
		t.Errorf("root serial changed: %d -> %d", rootSerial, got)
	}

	// Freed slots are reused by the next split.
	slots := len(m.patches.patches)
	m.Refresh(cameraAbove(m, cube.PosY, 100))
	if got := len(m.patches.patches); got != slots {
		t.Errorf("arena grew from %d to %d despite free slots", slots, got)
	}
}

func TestRootsNeverMerge(t *testing.T) {
	m := newTestManager(t)
	root := m.Root(cube.PosY)

	m.Refresh(cameraAbove(m, cube.PosY, 100))
	if m.Patch(root).IsLeaf() {
		t.Fatal("root did not split under a near camera")
	}

	for i := 0; i < 3; i++ {
		m.Refresh(mgl64.Vec3{0, 1e6, 0})
	}
	if m.Patch(root).IsLeaf() {
		t.Error("root collapsed its children")
	}
	if m.Patch(root).Visible {
		t.Error("expanded root should not be visible")
	}
	for _, id := range m.Children(root) {
		if p := m.Patch(id); !p.IsLeaf() || !p.Visible {
			t.Errorf("child %d: leaf=%v visible=%v, want visible leaf", id, p.IsLeaf(), p.Visible)
		}
	}
}

func TestSerialsAreUnique(t *testing.T) {
	m := newTestManager(t)
	seen := make(map[uint64]bool)
	for _, cam := range []mgl64.Vec3{
		cameraAbove(m, cube.PosY, 100),
		{0, 50000, 0},
		cameraAbove(m, cube.PosY, 100),
	} {
		m.Refresh(cam)
		for _, p := range m.VisiblePatches() {
			seen[p.Serial] = true
		}
	}
	if len(seen) < 2*cube.FaceCount {
		t.Errorf("expected many distinct serials, got %d", len(seen))
	}
}

func TestTickThrottles(t *testing.T) {
	m := newTestManager(t)
	cam := mgl64.Vec3{0, 0, 50000}

	// Default interval is 250ms.
	steps := []struct {
		dt   float64
		want bool
	}{
		{0.1, false},
		{0.1, false},
		{0.1, true},
		{0.1, false},
		{0.2, true},
		{1.0, true},
	}
	for i, s := range steps {
		if got := m.Tick(cam, s.dt); got != s.want {
			t.Errorf("step %d: Tick = %v, want %v", i, got, s.want)
		}
	}
	if got := m.Stats().Refreshes; got != 3 {
		t.Errorf("expected 3 refreshes, got %d", got)
	}
}

func TestTickWithZeroInterval(t *testing.T) {
	cfg := DefaultConfig()
	cfg.UpdateInterval = 0
	m := NewManager(cfg)
	m.BuildPlanet(testSeed, nil)

	if !m.Tick(mgl64.Vec3{0, 0, 50000}, 0) {
		t.Error("expected every tick to refresh with a zero interval")
	}
}

func TestEvaluateSurfacePointIgnoresTree(t *testing.T) {
	m := newTestManager(t)
	dir := mgl64.Vec3{0.3, 0.8, -0.2}

	before := m.EvaluateSurfacePoint(dir)
	m.Refresh(cameraAbove(m, cube.PosY, 100))
	after := m.EvaluateSurfacePoint(dir)
	again := m.EvaluateSurfacePoint(dir.Mul(17))

	if !before.ApproxEqual(after) || !before.ApproxEqual(again) {
		t.Errorf("surface point changed: %v %v %v", before, after, again)
	}
	if r := before.Len(); math.Abs(r-m.Radius()) > 0.1*m.Radius() {
		t.Errorf("surface point radius %f far from %f", r, m.Radius())
	}
}

func TestEvaluateSurfacePointDegenerate(t *testing.T) {
	m := newTestManager(t)
	got := m.EvaluateSurfacePoint(mgl64.Vec3{})
	want := m.EvaluateSurfacePoint(cube.Up)
	if !got.ApproxEqual(want) {
		t.Errorf("zero direction = %v, want %v", got, want)
	}
}

func TestTryFindLandPoint(t *testing.T) {
	m := newTestManager(t)

	pos, normal, ok := m.TryFindLandPoint(128, rand.New(rand.NewSource(7)))
	if !ok {
		t.Fatal("expected land within 128 attempts")
	}
	if pos.Len() < m.SeaLevel() {
		t.Errorf("land point below sea level: %f < %f", pos.Len(), m.SeaLevel())
	}
	if math.Abs(normal.Len()-1) > 1e-9 {
		t.Errorf("normal not unit length: %f", normal.Len())
	}
	if !cube.SafeNormalize(pos).ApproxEqualThreshold(normal, 1e-9) {
		t.Errorf("normal %v does not match position %v", normal, pos)
	}

	if _, _, ok := m.TryFindLandPoint(0, rand.New(rand.NewSource(7))); ok {
		t.Error("expected failure with zero attempts")
	}
}

func TestTryFindLandPointSkipsShallowWater(t *testing.T) {
	m := newTestManager(t)
	for seed := int64(0); seed < 200; seed++ {
		pos, normal, ok := m.TryFindLandPoint(16, rand.New(rand.NewSource(seed)))
		if !ok {
			continue
		}
		if !m.Classify(normal).IsLand {
			t.Errorf("rng %d: accepted water at %v (radius %f)", seed, normal, pos.Len())
		}
	}
}

func TestSeaLevel(t *testing.T) {
	m := newTestManager(t)
	if got := m.SeaLevel(); got != m.Radius()-SeaLevelOffset {
		t.Errorf("SeaLevel = %f, want %f", got, m.Radius()-SeaLevelOffset)
	}
	if m.Seed() != testSeed {
		t.Errorf("Seed = %d, want %d", m.Seed(), testSeed)
	}
}

func TestApplyConfigurationIsNotRetroactive(t *testing.T) {
	m := newTestManager(t)
	before := len(m.Patch(m.Root(cube.PosX)).Mesh.Vertices)

	cfg := m.Config()
	cfg.BaseResolution = 32
	cfg.MaxPatchResolution = 32
	m.ApplyConfiguration(cfg)

	if got := len(m.Patch(m.Root(cube.PosX)).Mesh.Vertices); got != before {
		t.Errorf("existing mesh changed: %d -> %d", before, got)
	}

	m.BuildPlanet(testSeed, nil)
	if got := len(m.Patch(m.Root(cube.PosX)).Mesh.Vertices); got != 32*32 {
		t.Errorf("rebuilt mesh has %d vertices, want %d", got, 32*32)
	}
}

func TestMeshTrianglesFaceOutward(t *testing.T) {
	m := newTestManager(t)
	for _, face := range cube.Faces {
		mesh := m.Patch(m.Root(face)).Mesh
		res := mesh.Resolution

		if len(mesh.Indices) != 6*(res-1)*(res-1) {
			t.Fatalf("face %s: %d indices", face, len(mesh.Indices))
		}
		for i := 0; i < len(mesh.Indices); i += 3 {
			a := vec(mesh.Vertices[mesh.Indices[i]].Position)
			b := vec(mesh.Vertices[mesh.Indices[i+1]].Position)
			c := vec(mesh.Vertices[mesh.Indices[i+2]].Position)
			n := b.Sub(a).Cross(c.Sub(a))
			if n.Dot(a.Add(b).Add(c)) <= 0 {
				t.Fatalf("face %s: triangle %d faces inward", face, i/3)
			}
		}
	}
}

func TestMeshBounds(t *testing.T) {
	m := newTestManager(t)
	mesh := m.Patch(m.Root(cube.NegX)).Mesh
	for _, v := range mesh.Vertices {
		for i := 0; i < 3; i++ {
			if v.Position[i] < mesh.Bounds.Min[i] || v.Position[i] > mesh.Bounds.Max[i] {
				t.Fatalf("vertex %v outside bounds %+v", v.Position, mesh.Bounds)
			}
		}
		n := vec(v.Normal)
		if math.Abs(n.Len()-1) > 1e-5 {
			t.Fatalf("normal not unit length: %v", v.Normal)
		}
	}
}

func TestPatchContainsAndQuadrants(t *testing.T) {
	p := Patch{Face: cube.PosZ, UVMin: mgl64.Vec2{0.5, 0}, UVMax: mgl64.Vec2{1, 0.5}}

	tests := []struct {
		face cube.Face
		uv   mgl64.Vec2
		want bool
	}{
		{cube.PosZ, mgl64.Vec2{0.75, 0.25}, true},
		{cube.PosZ, mgl64.Vec2{0.5, 0}, true},
		{cube.PosZ, mgl64.Vec2{1, 0.25}, true},
		{cube.PosZ, mgl64.Vec2{0.75, 0.5}, false},
		{cube.PosZ, mgl64.Vec2{0.25, 0.25}, false},
		{cube.NegZ, mgl64.Vec2{0.75, 0.25}, false},
	}
	for _, tt := range tests {
		if got := p.Contains(tt.face, tt.uv); got != tt.want {
			t.Errorf("Contains(%s, %v) = %v, want %v", tt.face, tt.uv, got, tt.want)
		}
	}

	total := 0.0
	for _, q := range p.quadrants() {
		size := q[1].Sub(q[0])
		total += size[0] * size[1]
	}
	if math.Abs(total-0.25) > 1e-12 {
		t.Errorf("quadrants cover %f, want 0.25", total)
	}
}

func vec(v [3]float32) mgl64.Vec3 {
	return mgl64.Vec3{float64(v[0]), float64(v[1]), float64(v[2])}
}

func visibleSerials(m *Manager) []uint64 {
	var out []uint64
	for _, p := range m.VisiblePatches() {
		out = append(out, p.Serial)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func equalSerials(a, b []uint64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

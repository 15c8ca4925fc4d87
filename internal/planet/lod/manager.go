package lod

import (
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/Faultbox/cubesphere/internal/logger"
	"github.com/Faultbox/cubesphere/internal/planet/cube"
	"github.com/Faultbox/cubesphere/internal/planet/height"
)

// Stats is a snapshot of the manager's tree and counters.
type Stats struct {
	Patches          int    `json:"patches"`
	Visible          int    `json:"visible"`
	VisibleTriangles int    `json:"visible_triangles"`
	MaxVisibleDepth  int    `json:"max_visible_depth"`
	Splits           uint64 `json:"splits"`
	Merges           uint64 `json:"merges"`
	MeshesBuilt      uint64 `json:"meshes_built"`
	Refreshes        uint64 `json:"refreshes"`
}

// Manager owns one planet: its height field, its six face quadtrees and the
// LOD configuration. A Manager is not safe for concurrent use.
type Manager struct {
	cfg      Config
	effMax   int
	field    *height.Field
	material *Material
	log      *zap.Logger

	patches arena
	roots   [cube.FaceCount]PatchID
	built   bool

	accumulator float64

	splits      uint64
	merges      uint64
	meshesBuilt uint64
	refreshes   uint64
}

// NewManager creates an unbuilt manager with cfg clamped into range.
func NewManager(cfg Config) *Manager {
	m := &Manager{log: logger.Named("lod")}
	for i := range m.roots {
		m.roots[i] = NoPatch
	}
	m.ApplyConfiguration(cfg)
	return m
}

// ApplyConfiguration replaces the configuration and recomputes the effective
// depth. An already built tree keeps its meshes until BuildPlanet runs again.
func (m *Manager) ApplyConfiguration(cfg Config) {
	m.cfg = cfg.Clamped(m.log)
	m.effMax = m.cfg.EffectiveMaxDepth()
	m.log.Debug("configuration applied",
		zap.Float64("radius", m.cfg.Radius),
		zap.Int("max_depth", m.cfg.MaxDepth),
		zap.Int("effective_max_depth", m.effMax),
	)
}

// BuildPlanet discards any existing tree and builds the six root patches for
// seed. A nil material uses DefaultMaterial.
func (m *Manager) BuildPlanet(seed int64, material *Material) {
	if material == nil {
		material = DefaultMaterial()
	}

	m.patches.reset()
	m.material = material
	m.field = height.New(seed, m.cfg.Radius, height.DefaultSettings())
	m.effMax = m.cfg.EffectiveMaxDepth()
	m.accumulator = 0
	m.splits, m.merges, m.meshesBuilt, m.refreshes = 0, 0, 0, 0

	for _, face := range cube.Faces {
		m.roots[face] = m.newPatch(face, mgl64.Vec2{0, 0}, mgl64.Vec2{1, 1}, 0, NoPatch)
		m.patches.get(m.roots[face]).Visible = true
	}
	m.built = true

	m.log.Info("planet built",
		zap.Int64("seed", seed),
		zap.Float64("radius", m.cfg.Radius),
		zap.Int("effective_max_depth", m.effMax),
		zap.String("material", material.Name),
	)
}

// Tick accumulates dt seconds and runs a refresh pass once the update
// interval has elapsed. It reports whether a pass ran.
func (m *Manager) Tick(camera mgl64.Vec3, dt float64) bool {
	if !m.built {
		return false
	}
	if dt > 0 {
		m.accumulator += dt
	}
	if m.accumulator < m.cfg.UpdateInterval.Seconds() {
		return false
	}
	m.accumulator = 0
	m.Refresh(camera)
	return true
}

// Refresh runs one split/merge pass over all six roots.
func (m *Manager) Refresh(camera mgl64.Vec3) {
	if !m.built {
		return
	}
	splits, merges := m.splits, m.merges
	for _, face := range cube.Faces {
		m.refresh(m.roots[face], camera)
	}
	m.refreshes++

	if m.splits != splits || m.merges != merges {
		m.log.Debug("lod refreshed",
			zap.Uint64("splits", m.splits-splits),
			zap.Uint64("merges", m.merges-merges),
			zap.Int("patches", m.patches.live),
		)
	}
}

func (m *Manager) refresh(id PatchID, camera mgl64.Vec3) {
	p := m.patches.get(id)
	if p == nil {
		return
	}
	depth := p.Depth
	dist := m.center(id).Sub(camera).Len()

	if p.expanded {
		children := p.Children
		for _, child := range children {
			m.refresh(child, camera)
		}
		// Children may have reallocated the arena.
		p = m.patches.get(id)
		if depth > 0 && dist > m.cfg.MergeThreshold(depth) {
			m.merge(id)
			return
		}
		p.Visible = false
		return
	}

	if depth < m.effMax && dist < m.cfg.SplitThreshold(depth) {
		m.split(id)
		p = m.patches.get(id)
		children := p.Children
		for _, child := range children {
			m.refresh(child, camera)
		}
		return
	}
	p.Visible = true
}

// split builds all four children before marking the patch expanded.
func (m *Manager) split(id PatchID) {
	p := m.patches.get(id)
	face, depth := p.Face, p.Depth
	quads := p.quadrants()

	var children [4]PatchID
	for i, q := range quads {
		children[i] = m.newPatch(face, q[0], q[1], depth+1, id)
	}

	p = m.patches.get(id)
	p.Children = children
	p.expanded = true
	p.Visible = false
	m.splits++
}

// merge frees the whole subtree below id and makes id a visible leaf again.
func (m *Manager) merge(id PatchID) {
	p := m.patches.get(id)
	for _, child := range p.Children {
		m.free(child)
	}
	p.Children = [4]PatchID{NoPatch, NoPatch, NoPatch, NoPatch}
	p.expanded = false
	p.Visible = true
	m.merges++
}

func (m *Manager) free(id PatchID) {
	p := m.patches.get(id)
	if p == nil {
		return
	}
	if p.expanded {
		for _, child := range p.Children {
			m.free(child)
		}
	}
	m.patches.release(id)
}

func (m *Manager) newPatch(face cube.Face, uvMin, uvMax mgl64.Vec2, depth int, parent PatchID) PatchID {
	id := m.patches.alloc(Patch{
		Face:   face,
		UVMin:  uvMin,
		UVMax:  uvMax,
		Depth:  depth,
		Parent: parent,
	})
	p := m.patches.get(id)
	Regenerate(p, m.field, m.cfg.Resolution(depth), m.material)
	m.meshesBuilt++
	return id
}

// center returns the displaced surface point under the patch's UV centre,
// computed on first use.
func (m *Manager) center(id PatchID) mgl64.Vec3 {
	p := m.patches.get(id)
	if !p.hasCenter {
		p.center = m.EvaluateSurfacePoint(cube.ToSphere(p.Face, p.CenterUV()))
		p.hasCenter = true
	}
	return p.center
}

// EvaluateSurfacePoint projects dir onto the terrain surface. The result does
// not depend on the current tree.
func (m *Manager) EvaluateSurfacePoint(dir mgl64.Vec3) mgl64.Vec3 {
	if m.field == nil {
		return cube.SafeNormalize(dir).Mul(m.cfg.Radius)
	}
	d := cube.SafeNormalize(dir)
	return d.Mul(m.field.Elevation(d))
}

// Classify returns the land/water classification under dir.
func (m *Manager) Classify(dir mgl64.Vec3) height.Sample {
	if m.field == nil {
		return height.Sample{}
	}
	return m.field.Classify(dir)
}

// TryFindLandPoint samples up to maxAttempts random directions and returns
// the first point that is classified as land and sits at or above sea level,
// with its direction as the normal.
func (m *Manager) TryFindLandPoint(maxAttempts int, rng *rand.Rand) (pos, normal mgl64.Vec3, ok bool) {
	if m.field == nil || maxAttempts <= 0 {
		return mgl64.Vec3{}, mgl64.Vec3{}, false
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(m.Seed()))
	}

	pos, normal, tries, ok := m.field.FindLand(maxAttempts, m.SeaLevel(), rng)
	if !ok {
		m.log.Debug("land search exhausted", zap.Int("attempts", maxAttempts))
		return mgl64.Vec3{}, mgl64.Vec3{}, false
	}
	m.log.Debug("land point found", zap.Int("attempt", tries))
	return pos, normal, true
}

// Radius returns the planet radius.
func (m *Manager) Radius() float64 { return m.cfg.Radius }

// SeaLevel returns the radial distance below which a point counts as water.
func (m *Manager) SeaLevel() float64 { return m.cfg.Radius - SeaLevelOffset }

// Seed returns the seed of the current planet, or zero when unbuilt.
func (m *Manager) Seed() int64 {
	if m.field == nil {
		return 0
	}
	return m.field.Seed()
}

// Config returns the clamped configuration.
func (m *Manager) Config() Config { return m.cfg }

// EffectiveMaxDepth returns the depth cap used by the split pass.
func (m *Manager) EffectiveMaxDepth() int { return m.effMax }

// Built reports whether BuildPlanet has run.
func (m *Manager) Built() bool { return m.built }

// Field returns the height field of the current planet.
func (m *Manager) Field() *height.Field { return m.field }

// Root returns the root patch of face.
func (m *Manager) Root(face cube.Face) PatchID {
	if !m.built || !face.Valid() {
		return NoPatch
	}
	return m.roots[face]
}

// Patch returns the patch for id, or nil when id is not live.
func (m *Manager) Patch(id PatchID) *Patch { return m.patches.get(id) }

// Children returns the children of an expanded patch.
func (m *Manager) Children(id PatchID) []PatchID {
	p := m.patches.get(id)
	if p == nil || !p.expanded {
		return nil
	}
	out := p.Children
	return out[:]
}

// VisiblePatches returns every visible leaf in depth-first face order.
func (m *Manager) VisiblePatches() []*Patch {
	if !m.built {
		return nil
	}
	var out []*Patch
	var walk func(id PatchID)
	walk = func(id PatchID) {
		p := m.patches.get(id)
		if p == nil {
			return
		}
		if p.expanded {
			for _, child := range p.Children {
				walk(child)
			}
			return
		}
		if p.Visible {
			out = append(out, p)
		}
	}
	for _, face := range cube.Faces {
		walk(m.roots[face])
	}
	return out
}

// MaxVisibleDepth returns the deepest visible leaf, or -1 when none is.
func (m *Manager) MaxVisibleDepth() int {
	depth := -1
	for _, p := range m.VisiblePatches() {
		if p.Depth > depth {
			depth = p.Depth
		}
	}
	return depth
}

// Stats returns the current counters.
func (m *Manager) Stats() Stats {
	s := Stats{
		Patches:         m.patches.live,
		MaxVisibleDepth: -1,
		Splits:          m.splits,
		Merges:          m.merges,
		MeshesBuilt:     m.meshesBuilt,
		Refreshes:       m.refreshes,
	}
	for _, p := range m.VisiblePatches() {
		s.Visible++
		s.VisibleTriangles += p.Mesh.TriangleCount()
		if p.Depth > s.MaxVisibleDepth {
			s.MaxVisibleDepth = p.Depth
		}
	}
	return s
}

// Package planet ties the LOD core to a game session: it builds the planet
// for a seed and places the starting settlement on its surface.
package planet

import (
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/Faultbox/cubesphere/internal/logger"
	"github.com/Faultbox/cubesphere/internal/planet/cube"
	"github.com/Faultbox/cubesphere/internal/planet/lod"
)

// SettlementAttempts is how many random directions NewGame tries before
// falling back to the pole.
const SettlementAttempts = 128

// SurfaceQuery answers "where is the ground" independently of the LOD tree.
type SurfaceQuery interface {
	EvaluateSurfacePoint(dir mgl64.Vec3) mgl64.Vec3
	TryFindLandPoint(maxAttempts int, rng *rand.Rand) (pos, normal mgl64.Vec3, ok bool)
	Radius() float64
	SeaLevel() float64
}

// Builder is a SurfaceQuery that can (re)build its planet.
type Builder interface {
	SurfaceQuery
	BuildPlanet(seed int64, material *lod.Material)
}

// Session is the state needed to recreate a game. The seed alone regenerates
// the terrain.
type Session struct {
	Seed             int64      `json:"seed" yaml:"seed"`
	Settlement       mgl64.Vec3 `json:"settlement" yaml:"settlement"`
	SettlementOnPole bool       `json:"settlement_on_pole" yaml:"settlement_on_pole"`
}

// NewGame builds the planet for seed and places the starting settlement on
// land. When no land is found the settlement goes to the pole.
func NewGame(b Builder, seed int64, material *lod.Material, rng *rand.Rand) Session {
	log := logger.Named("planet")
	if rng == nil {
		rng = rand.New(rand.NewSource(seed))
	}

	b.BuildPlanet(seed, material)

	session := Session{Seed: seed}
	pos, _, ok := b.TryFindLandPoint(SettlementAttempts, rng)
	if !ok {
		pos = b.EvaluateSurfacePoint(cube.Up)
		session.SettlementOnPole = true
		log.Warn("no land found, settlement placed on pole",
			zap.Int64("seed", seed),
			zap.Int("attempts", SettlementAttempts),
		)
	}
	session.Settlement = pos

	log.Info("new game",
		zap.Int64("seed", seed),
		zap.Float64s("settlement", pos[:]),
		zap.Bool("on_pole", session.SettlementOnPole),
	)
	return session
}

// LoadGame rebuilds the planet from a saved session and re-projects the
// settlement onto the regenerated surface.
func LoadGame(b Builder, s Session, material *lod.Material) Session {
	b.BuildPlanet(s.Seed, material)

	dir := cube.SafeNormalize(s.Settlement)
	if s.SettlementOnPole {
		dir = cube.Up
	}
	s.Settlement = b.EvaluateSurfacePoint(dir)

	logger.Named("planet").Info("game loaded",
		zap.Int64("seed", s.Seed),
		zap.Float64s("settlement", s.Settlement[:]),
	)
	return s
}

// IsLand reports whether a surface point lies at or above sea level.
func IsLand(q SurfaceQuery, point mgl64.Vec3) bool {
	return point.Len() >= q.SeaLevel()
}

// Altitude returns the height of point above the sphere of the given radius.
func Altitude(q SurfaceQuery, point mgl64.Vec3) float64 {
	return point.Len() - q.Radius()
}

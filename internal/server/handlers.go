package server

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"strconv"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/Faultbox/cubesphere/internal/planet"
	"github.com/Faultbox/cubesphere/internal/planet/cube"
	"github.com/Faultbox/cubesphere/internal/planet/height"
	"github.com/Faultbox/cubesphere/internal/planet/lod"
)

// HealthResponse is returned by /api/health.
type HealthResponse struct {
	Status string  `json:"status"`
	Seed   int64   `json:"seed"`
	Radius float64 `json:"radius"`
}

// SurfaceResponse is returned by /api/surface.
type SurfaceResponse struct {
	Point            [3]float64 `json:"point"`
	Normal           [3]float64 `json:"normal"`
	Elevation        float64    `json:"elevation"`
	IsLand           bool       `json:"is_land"`
	NormalizedHeight float64    `json:"normalized_height"`
}

// LandResponse is returned by /api/land. When Found is false Position is the
// pole fallback.
type LandResponse struct {
	Found    bool       `json:"found"`
	Seed     int64      `json:"seed"`
	Attempts int        `json:"attempts"`
	Position [3]float64 `json:"position"`
	Normal   [3]float64 `json:"normal"`
}

// ConfigResponse is returned by /api/config.
type ConfigResponse struct {
	Config            lod.Config `json:"config"`
	UpdateIntervalMS  int64      `json:"update_interval_ms"`
	EffectiveMaxDepth int        `json:"effective_max_depth"`
	SeaLevel          float64    `json:"sea_level"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status: "healthy",
		Seed:   s.seed,
		Radius: s.lodCfg.Radius,
	})
}

func (s *Server) handleSurface(w http.ResponseWriter, r *http.Request) {
	dir, err := parseDirection(r)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	s.mu.Lock()
	point := s.query.EvaluateSurfacePoint(dir)
	sample := s.query.Classify(dir)
	s.mu.Unlock()

	normal := cube.SafeNormalize(dir)
	s.writeJSON(w, http.StatusOK, SurfaceResponse{
		Point:            point,
		Normal:           normal,
		Elevation:        point.Len(),
		IsLand:           sample.IsLand,
		NormalizedHeight: sample.NormalizedHeight,
	})
}

func (s *Server) handleLand(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	attempts := planet.SettlementAttempts
	if v := q.Get("attempts"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid attempts %q", v)})
			return
		}
		attempts = n
	}
	if s.cfg.MaxLandSearch > 0 && attempts > s.cfg.MaxLandSearch {
		attempts = s.cfg.MaxLandSearch
	}

	seed := s.seed
	if v := q.Get("seed"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid seed %q", v)})
			return
		}
		seed = n
	}

	rng := rand.New(rand.NewSource(seed))
	var resp LandResponse
	if seed == s.seed {
		s.mu.Lock()
		resp = findLand(s.query, attempts, rng)
		s.mu.Unlock()
	} else {
		field := height.New(seed, s.lodCfg.Radius, height.DefaultSettings())
		resp = findFieldLand(field, s.lodCfg.Radius-lod.SeaLevelOffset, attempts, rng)
	}
	resp.Seed = seed
	resp.Attempts = attempts

	s.log.Debug("land search",
		zap.Int64("seed", seed),
		zap.Int("attempts", attempts),
		zap.Bool("found", resp.Found),
	)
	s.writeJSON(w, http.StatusOK, resp)
}

func findLand(q planet.SurfaceQuery, attempts int, rng *rand.Rand) LandResponse {
	pos, normal, ok := q.TryFindLandPoint(attempts, rng)
	if !ok {
		pos = q.EvaluateSurfacePoint(cube.Up)
		normal = cube.Up
	}
	return LandResponse{Found: ok, Position: pos, Normal: normal}
}

// findFieldLand searches a bare height field, for seeds other than the
// server's own planet.
func findFieldLand(f *height.Field, seaLevel float64, attempts int, rng *rand.Rand) LandResponse {
	pos, dir, _, ok := f.FindLand(attempts, seaLevel, rng)
	if !ok {
		dir = cube.Up
		pos = dir.Mul(f.Elevation(dir))
	}
	return LandResponse{Found: ok, Position: pos, Normal: dir}
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	resp := ConfigResponse{
		Config:            s.query.Config(),
		UpdateIntervalMS:  s.query.Config().UpdateInterval.Milliseconds(),
		EffectiveMaxDepth: s.query.EffectiveMaxDepth(),
		SeaLevel:          s.query.SeaLevel(),
	}
	s.mu.Unlock()
	s.writeJSON(w, http.StatusOK, resp)
}

func parseDirection(r *http.Request) (mgl64.Vec3, error) {
	q := r.URL.Query()
	var dir mgl64.Vec3
	for i, key := range []string{"x", "y", "z"} {
		v := q.Get(key)
		if v == "" {
			return dir, fmt.Errorf("missing %s", key)
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return dir, fmt.Errorf("invalid %s %q", key, v)
		}
		dir[i] = f
	}
	return dir, nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("failed to encode response", zap.Error(err))
	}
}

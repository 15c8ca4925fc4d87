package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Faultbox/cubesphere/internal/planet/lod"
)

// TickRequest is one client frame: the camera position and the seconds
// elapsed since the previous frame. A non-nil Seed rebuilds the planet.
type TickRequest struct {
	Camera [3]float64 `json:"camera"`
	DT     float64    `json:"dt"`
	Seed   *int64     `json:"seed,omitempty"`
}

// PatchInfo describes one visible patch.
type PatchInfo struct {
	Face   string     `json:"face"`
	Depth  int        `json:"depth"`
	UVMin  [2]float64 `json:"uv_min"`
	UVMax  [2]float64 `json:"uv_max"`
	Serial uint64     `json:"serial"`
}

// TickResponse answers every TickRequest.
type TickResponse struct {
	Ran     bool        `json:"ran"`
	Seed    int64       `json:"seed"`
	Patches []PatchInfo `json:"patches"`
	Stats   lod.Stats   `json:"stats"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 16 * 1024,
	// Origins are enforced by the CORS layer.
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	log := s.log.With(zap.String("client", clientIP(r)))
	log.Info("websocket connected")
	defer log.Info("websocket closed")

	if s.cfg.MaxFrameBytes > 0 {
		conn.SetReadLimit(s.cfg.MaxFrameBytes)
	}
	frames := frameLimiter(s.cfg.FrameRate, s.cfg.FrameBurst)

	m := lod.NewManager(s.lodCfg)
	m.BuildPlanet(s.seed, s.material)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			switch {
			case errors.Is(err, websocket.ErrReadLimit):
				log.Warn("websocket frame too large", zap.Int64("limit", s.cfg.MaxFrameBytes))
			case websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure):
				log.Warn("websocket read failed", zap.Error(err))
			}
			return
		}

		var reply any
		if !frames.Allow() {
			reply = errorResponse{Error: "frame rate exceeded"}
		} else if req, err := decodeTick(data); err != nil {
			reply = errorResponse{Error: err.Error()}
		} else {
			reply = tick(m, req, s.material)
		}

		if s.cfg.WriteTimeout > 0 {
			if err := conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout)); err != nil {
				log.Warn("websocket deadline failed", zap.Error(err))
				return
			}
		}
		if err := conn.WriteJSON(reply); err != nil {
			log.Warn("websocket write failed", zap.Error(err))
			return
		}
	}
}

// frameLimiter bounds tick frames on one connection. Frames carrying a new
// seed rebuild the planet, so they count against the same bucket. A
// non-positive rps allows everything.
func frameLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

func decodeTick(data []byte) (TickRequest, error) {
	var req TickRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return req, fmt.Errorf("malformed frame: %w", err)
	}
	if req.DT < 0 {
		return req, fmt.Errorf("negative dt %v", req.DT)
	}
	return req, nil
}

// tick advances one connection's manager and reports its visible patches.
func tick(m *lod.Manager, req TickRequest, material *lod.Material) TickResponse {
	if req.Seed != nil && *req.Seed != m.Seed() {
		m.BuildPlanet(*req.Seed, material)
	}

	ran := m.Tick(mgl64.Vec3(req.Camera), req.DT)
	resp := TickResponse{
		Ran:   ran,
		Seed:  m.Seed(),
		Stats: m.Stats(),
	}
	for _, p := range m.VisiblePatches() {
		resp.Patches = append(resp.Patches, PatchInfo{
			Face:   p.Face.String(),
			Depth:  p.Depth,
			UVMin:  p.UVMin,
			UVMax:  p.UVMax,
			Serial: p.Serial,
		})
	}
	return resp
}

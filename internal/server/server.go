// Package server exposes planet surface queries and LOD streaming over HTTP
// and websocket.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/cubesphere/internal/config"
	"github.com/Faultbox/cubesphere/internal/logger"
	"github.com/Faultbox/cubesphere/internal/planet/lod"
)

// Server serves one planet. Stateless queries share a single manager;
// every websocket connection gets its own.
type Server struct {
	cfg      config.ServerConfig
	lodCfg   lod.Config
	seed     int64
	material *lod.Material
	debug    bool

	mu    sync.Mutex // guards query
	query *lod.Manager

	limiter *RateLimiter
	log     *zap.Logger
}

// New builds the shared planet for cfg.Session.Seed.
func New(cfg *config.Config) *Server {
	log := logger.Named("server")

	s := &Server{
		cfg:      cfg.Server,
		lodCfg:   cfg.Planet.LOD(),
		seed:     cfg.Session.Seed,
		material: lod.DefaultMaterial(),
		debug:    cfg.Logging.Level == "debug",
		log:      log,
	}
	s.query = lod.NewManager(s.lodCfg)
	s.query.BuildPlanet(s.seed, s.material)
	s.lodCfg = s.query.Config()
	s.limiter = NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateBurst, log)
	return s
}

// Handler returns the routed handler wrapped in CORS, rate limiting and
// request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/surface", s.handleSurface)
	mux.HandleFunc("GET /api/land", s.handleLand)
	mux.HandleFunc("GET /api/config", s.handleConfig)
	mux.HandleFunc("GET /ws", s.handleWebSocket)

	var h http.Handler = mux
	h = requestLogger(s.log, h)
	h = s.limiter.Middleware(h)
	h = newCORS(s.cfg.AllowedOrigins, s.debug).Handler(h)
	return h
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening",
			zap.String("addr", s.cfg.Addr),
			zap.Int64("seed", s.seed),
			zap.Float64("radius", s.lodCfg.Radius),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving %s: %w", s.cfg.Addr, err)
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.Close()
	if err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

// Close releases background resources.
func (s *Server) Close() {
	s.limiter.Close()
}

// Seed returns the seed of the shared planet.
func (s *Server) Seed() int64 { return s.seed }

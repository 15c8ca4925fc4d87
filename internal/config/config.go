// Package config handles planet, viewer and server configuration.
package config

import (
	"time"

	"github.com/Faultbox/cubesphere/internal/planet/lod"
)

// Config holds all settings.
type Config struct {
	Planet  PlanetConfig  `yaml:"planet"`
	Session SessionConfig `yaml:"session"`
	Viewer  ViewerConfig  `yaml:"viewer"`
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
}

// PlanetConfig holds the LOD tuning of the planet.
type PlanetConfig struct {
	Radius             float64       `yaml:"radius"`
	BaseResolution     int           `yaml:"base_resolution"`
	MaxDepth           int           `yaml:"max_depth"`
	TargetTriangleArea float64       `yaml:"target_triangle_area"`
	MaxPatchResolution int           `yaml:"max_patch_resolution"`
	SplitDistance      float64       `yaml:"split_distance"`
	SplitFalloff       float64       `yaml:"split_falloff"`
	UpdateInterval     time.Duration `yaml:"update_interval"`
}

// SessionConfig holds the seed of the current game.
type SessionConfig struct {
	Seed int64 `yaml:"seed"`
}

// ViewerConfig holds display settings of the planet viewer.
type ViewerConfig struct {
	Width            int     `yaml:"width"`
	Height           int     `yaml:"height"`
	Fullscreen       bool    `yaml:"fullscreen"`
	VSync            bool    `yaml:"vsync"`
	ShowFPS          bool    `yaml:"show_fps"`
	Wireframe        bool    `yaml:"wireframe"`
	FOV              float32 `yaml:"fov"`
	MouseSensitivity float32 `yaml:"mouse_sensitivity"`
}

// ServerConfig holds planetd settings.
type ServerConfig struct {
	Addr           string        `yaml:"addr"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	RateLimit      float64       `yaml:"rate_limit"` // requests per second per client
	RateBurst      int           `yaml:"rate_burst"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	MaxLandSearch  int           `yaml:"max_land_search"`

	// Websocket limits, applied per connection.
	FrameRate     float64 `yaml:"frame_rate"` // tick frames per second, 0 disables
	FrameBurst    int     `yaml:"frame_burst"`
	MaxFrameBytes int64   `yaml:"max_frame_bytes"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	lodCfg := lod.DefaultConfig()
	return &Config{
		Planet: PlanetConfig{
			Radius:             lodCfg.Radius,
			BaseResolution:     lodCfg.BaseResolution,
			MaxDepth:           lodCfg.MaxDepth,
			TargetTriangleArea: lodCfg.TargetTriangleArea,
			MaxPatchResolution: lodCfg.MaxPatchResolution,
			SplitDistance:      lodCfg.SplitDistance,
			SplitFalloff:       lodCfg.SplitFalloff,
			UpdateInterval:     lodCfg.UpdateInterval,
		},
		Session: SessionConfig{
			Seed: 1337,
		},
		Viewer: ViewerConfig{
			Width:            1280,
			Height:           720,
			Fullscreen:       false,
			VSync:            true,
			FOV:              60,
			MouseSensitivity: 0.3,
		},
		Server: ServerConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"*"},
			RateLimit:      20,
			RateBurst:      40,
			WriteTimeout:   5 * time.Second,
			MaxLandSearch:  4096,
			FrameRate:      120,
			FrameBurst:     240,
			MaxFrameBytes:  4096,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// LOD converts the planet section into the LOD manager configuration.
func (p PlanetConfig) LOD() lod.Config {
	return lod.Config{
		Radius:             p.Radius,
		BaseResolution:     p.BaseResolution,
		MaxDepth:           p.MaxDepth,
		TargetTriangleArea: p.TargetTriangleArea,
		MaxPatchResolution: p.MaxPatchResolution,
		SplitDistance:      p.SplitDistance,
		SplitFalloff:       p.SplitFalloff,
		UpdateInterval:     p.UpdateInterval,
	}
}

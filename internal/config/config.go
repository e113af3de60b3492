package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/inamate/memecanvas/backend-go/internal/document"
)

type Config struct {
	Port           int    `envconfig:"PORT" default:"8080"`
	TokenSecret    string `envconfig:"TOKEN_SECRET" default:"dev-secret-change-in-production"`
	AssetDir       string `envconfig:"ASSET_DIR" default:"./data/assets"`
	FontDir        string `envconfig:"FONT_DIR"`
	AllowedOrigins string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`

	CanvasWidth  int `envconfig:"CANVAS_WIDTH" default:"500"`
	CanvasHeight int `envconfig:"CANVAS_HEIGHT" default:"500"`
	// CanvasMaxSize bounds either side of a canvas a client may request.
	CanvasMaxSize int `envconfig:"CANVAS_MAX_SIZE" default:"4096"`

	SessionIdleTimeout   time.Duration `envconfig:"SESSION_IDLE_TIMEOUT" default:"30m"`
	SessionSweepSchedule string        `envconfig:"SESSION_SWEEP_SCHEDULE" default:"@every 1m"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.CanvasMaxSize <= 0 || cfg.CanvasMaxSize > document.MaxDimension {
		return nil, fmt.Errorf("canvas max size must be in 1..%d, got %d", document.MaxDimension, cfg.CanvasMaxSize)
	}
	if cfg.CanvasWidth <= 0 || cfg.CanvasHeight <= 0 {
		return nil, fmt.Errorf("canvas size must be positive, got %dx%d", cfg.CanvasWidth, cfg.CanvasHeight)
	}
	if cfg.CanvasWidth > cfg.CanvasMaxSize || cfg.CanvasHeight > cfg.CanvasMaxSize {
		return nil, fmt.Errorf("canvas size %dx%d exceeds max %d", cfg.CanvasWidth, cfg.CanvasHeight, cfg.CanvasMaxSize)
	}
	return &cfg, nil
}

// Origins splits AllowedOrigins into a list.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Level parses LogLevel, defaulting to info.
func (c *Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// OriginHosts returns the allowed origins as host[:port] patterns, the form
// WebSocket origin checks expect.
func (c *Config) OriginHosts() []string {
	var out []string
	for _, o := range c.Origins() {
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			out = append(out, u.Host)
			continue
		}
		out = append(out, o)
	}
	return out
}

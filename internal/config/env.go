package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

const (
	DefaultServerHost = "127.0.0.1"
	DefaultServerPort = 3000
	DefaultBodyLimit  = 20 * 1024 * 1024 // 20MB
)

// ServerEnvConfig configures the web form server.
type ServerEnvConfig struct {
	Host      string `env:"SERVER_HOST, default=127.0.0.1"`
	Port      int    `env:"SERVER_PORT, default=3000"`
	BodyLimit int    `env:"SERVER_BODY_LIMIT, default=20971520"`
}

// LoadServerEnv reads the server settings independently of LoadConfig so the
// serve command can be tuned without touching the backend settings.
func LoadServerEnv(ctx context.Context) (*ServerEnvConfig, error) {
	var cfg ServerEnvConfig
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("process server env: %w", err)
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT out of range: %d", cfg.Port)
	}
	if cfg.BodyLimit <= 0 {
		cfg.BodyLimit = DefaultBodyLimit
	}
	return &cfg, nil
}

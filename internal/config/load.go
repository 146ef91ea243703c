// Package config defines environment configuration structs and loaders.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// ErrMissingBackendURL is returned when no generation backend address is configured.
var ErrMissingBackendURL = errors.New("BACKEND_URL is not defined in environment variables")

type AppConfig struct {
	BackendEnvConfig
	ClientEnvConfig
	Environment string `env:"ENVIRONMENT" envDefault:"prod"`
}

// LoadConfig parses the process environment once. A missing backend address
// is a fatal configuration error.
func LoadConfig() (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := env.Parse(cfg); err != nil {
		var aggErr env.AggregateError
		if errors.As(err, &aggErr) {
			for _, e := range aggErr.Errors {
				var notSet env.VarIsNotSetError
				var empty env.EmptyVarError
				if errors.As(e, &notSet) || errors.As(e, &empty) {
					return nil, fmt.Errorf("%w: %w", ErrMissingBackendURL, err)
				}
			}
		}
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate enforces values env tags cannot express.
func (c *AppConfig) Validate() error {
	if strings.TrimSpace(c.BackendURL) == "" {
		return ErrMissingBackendURL
	}
	if c.ClientTimeout < 0 {
		return fmt.Errorf("CLIENT_TIMEOUT cannot be negative: %s", c.ClientTimeout)
	}
	return nil
}

// BackendEnvConfig holds the generation backend address.
type BackendEnvConfig struct {
	BackendURL string `env:"BACKEND_URL,required,notEmpty"`
}

// ClientEnvConfig configures the transport client. Zero leaves the timeout
// to the underlying transport.
type ClientEnvConfig struct {
	ClientTimeout time.Duration `env:"CLIENT_TIMEOUT" envDefault:"0s"`
}

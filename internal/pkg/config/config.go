package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// ErrMissingSecret is returned when JWT_SECRET is unset or empty. The
// process must refuse to start rather than mint unverifiable tokens.
var ErrMissingSecret = errors.New("config: JWT_SECRET must be set and non-empty")

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL, default=1h"`

	SweepInterval time.Duration `env:"SWEEP_INTERVAL, default=10m"`

	Mongo MongoConfig
	Redis RedisConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=kodbank"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig
// and validates the parts the process cannot run without.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if cfg.JWTSecret == "" {
		return nil, ErrMissingSecret
	}
	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("config: TOKEN_TTL must be positive, got %s", cfg.TokenTTL)
	}

	return &cfg, nil
}

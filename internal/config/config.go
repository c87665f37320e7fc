package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort string `env:"SERVER_PORT" envDefault:"8080"`

	DBDriver    string `env:"DB_DRIVER" envDefault:"mysql"`
	DatabaseDSN string `env:"DATABASE_DSN" envDefault:"user:password@tcp(localhost:3306)/todos?charset=utf8mb4&parseTime=True&loc=Local"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"true"`
	ResetDB     bool   `env:"RESET_DB" envDefault:"false"`

	// RedisAddr left empty disables the lookup cache.
	RedisAddr string `env:"REDIS_ADDR"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`
	RedisPass string `env:"REDIS_PASSWORD"`

	JWTSecret      string        `env:"JWT_SECRET" envDefault:"change-me"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"120m"`

	HashMemoryKiB   uint32 `env:"HASH_MEMORY_KIB" envDefault:"65536"`
	HashIterations  uint32 `env:"HASH_ITERATIONS" envDefault:"3"`
	HashParallelism uint8  `env:"HASH_PARALLELISM" envDefault:"4"`

	SwaggerHost string `env:"SWAGGER_HOST"`
}

// Load builds Config from environment with sensible defaults.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.AccessTokenTTL <= 0 {
		return nil, fmt.Errorf("ACCESS_TOKEN_TTL must be positive, got %s", cfg.AccessTokenTTL)
	}
	switch cfg.DBDriver {
	case "mysql", "postgres", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	return &cfg, nil
}

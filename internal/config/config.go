package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/wellquest/questmap/internal/wellquest"
)

type Config struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":8080"`
	DBPath   string     `env:"DB_PATH" envDefault:"data/wellquest.db"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	RedisURL string     `env:"REDIS_URL"`

	ProximityMeters    float64 `env:"PROXIMITY_METERS" envDefault:"50"`
	SearchRadiusMeters float64 `env:"SEARCH_RADIUS_METERS" envDefault:"25000"`

	FallbackEnabled bool    `env:"FALLBACK_ENABLED" envDefault:"false"`
	FallbackLat     float64 `env:"FALLBACK_LAT" envDefault:"40.7829"`
	FallbackLon     float64 `env:"FALLBACK_LON" envDefault:"-73.9654"`

	PositionTimeout time.Duration `env:"POSITION_TIMEOUT" envDefault:"15s"`
	QuestSeed       uint64        `env:"QUEST_SEED" envDefault:"0"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if cfg.ProximityMeters <= 0 {
		return nil, fmt.Errorf("PROXIMITY_METERS must be positive, got %v", cfg.ProximityMeters)
	}
	if cfg.SearchRadiusMeters < 0 {
		return nil, fmt.Errorf("SEARCH_RADIUS_METERS must not be negative, got %v", cfg.SearchRadiusMeters)
	}
	return &cfg, nil
}

// Fallback returns the demo position, or nil when the fallback is disabled.
func (c *Config) Fallback() *wellquest.Position {
	if !c.FallbackEnabled {
		return nil
	}
	return &wellquest.Position{Latitude: c.FallbackLat, Longitude: c.FallbackLon}
}

// Package bootstrap initializes the process-wide runtime shared by the API
// server and the admin CLI.
package bootstrap

import (
	"context"
	"fmt"
	"log"

	"pinmap/internal/cache"
	"pinmap/internal/config"
	"pinmap/internal/database"
	"pinmap/internal/observability"
	"pinmap/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedDemo fills an empty database with demo data.
	SeedDemo    bool
	SeedOptions seed.Options
}

// InitRuntime connects to DB and Redis and optionally seeds demo data.
// The Redis client is nil when Redis is unreachable.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if opts.SeedDemo {
		if err := seedIfEmpty(ctx, db, opts.SeedOptions); err != nil {
			return nil, nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	return db, r, nil
}

func seedIfEmpty(ctx context.Context, db *gorm.DB, opts seed.Options) error {
	var count int64
	if err := db.WithContext(ctx).Table("profiles").Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Printf("demo seed skipped: %d profiles already present", count)
		return nil
	}
	if opts.Users == 0 {
		opts = seed.DefaultOptions()
	}
	_, err := seed.Seed(ctx, db, opts)
	return err
}

// InitTracing configures OpenTelemetry from cfg and returns its shutdown func.
func InitTracing(ctx context.Context, cfg *config.Config) (func(context.Context) error, error) {
	return observability.InitTracing(ctx, observability.TracingConfig{
		ServiceName:    cfg.ServiceName,
		ServiceVersion: "1.0.0",
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.TracingEndpoint,
		SamplerRatio:   cfg.TracingSampleRatio,
	})
}

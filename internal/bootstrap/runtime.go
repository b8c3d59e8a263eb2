// Package bootstrap connects the runtime dependencies shared by the commands.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"sensive/internal/cache"
	"sensive/internal/config"
	"sensive/internal/database"
	"sensive/internal/middleware"
	"sensive/internal/models"
	"sensive/internal/repository"
	"sensive/internal/seed"

	"github.com/redis/go-redis/v9"
)

// Options control runtime initialization behavior.
type Options struct {
	// ApplySchema runs migrations and/or AutoMigrate per DB_SCHEMA_MODE.
	ApplySchema bool
	// SeedDemo fills an empty database with demo data.
	SeedDemo    bool
	SeedOptions seed.Options
}

// InitRuntime connects to the database (and replica) and Redis, applies the
// schema and optionally seeds demo data. The Redis client is nil when Redis is
// not configured or unreachable.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*database.Handles, *redis.Client, error) {
	handles, err := database.ConnectWithReplica(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	if opts.ApplySchema {
		if err := database.ApplySchema(ctx, handles.Write, cfg); err != nil {
			_ = handles.Close()
			return nil, nil, fmt.Errorf("apply schema: %w", err)
		}
	}

	r := cache.InitRedis(cfg.RedisURL)

	if opts.SeedDemo {
		if cfg.IsProduction() {
			middleware.Logger.Warn("SEED_DEMO ignored in production")
		} else if err := seedIfEmpty(ctx, handles, r, opts.SeedOptions); err != nil {
			_ = handles.Close()
			if r != nil {
				_ = r.Close()
			}
			return nil, nil, fmt.Errorf("seed demo data: %w", err)
		}
	}

	return handles, r, nil
}

func seedIfEmpty(ctx context.Context, handles *database.Handles, r *redis.Client, opts seed.Options) error {
	var posts int64
	if err := handles.Write.WithContext(ctx).Model(&models.Post{}).Count(&posts).Error; err != nil {
		return err
	}
	if posts > 0 {
		middleware.Logger.Info("Database already has posts, skipping demo seed", slog.Int64("posts", posts))
		return nil
	}

	if opts == (seed.Options{}) {
		opts = seed.DefaultOptions()
	}
	_, err := seed.NewSeeder(handles.Write, RepositoryOptions(r)...).Seed(ctx, opts)
	return err
}

// RepositoryOptions returns the repository options for writers running
// outside the server, so their writes still invalidate cached pages.
func RepositoryOptions(r *redis.Client) []repository.Option {
	return []repository.Option{repository.WithCache(cache.NewStore(r))}
}

// Package bootstrap wires the process-wide runtime shared by the commands.
package bootstrap

import (
	"fmt"
	"log/slog"

	"quill/internal/cache"
	"quill/internal/config"
	"quill/internal/database"
	"quill/internal/middleware"
	"quill/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedCategories ensures the built-in categories exist.
	SeedCategories bool
}

// InitRuntime connects to DB and Redis and optionally seeds the built-in
// categories. The Redis client is nil when Redis is unreachable.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if opts.SeedCategories {
		if err := EnsureCategories(db); err != nil {
			return nil, nil, err
		}
	}
	return db, r, nil
}

// EnsureCategories creates any missing built-in category.
func EnsureCategories(db *gorm.DB) error {
	categories, err := seed.Categories(db, seed.DefaultCategories())
	if err != nil {
		return fmt.Errorf("failed to seed built-in categories: %w", err)
	}
	middleware.Logger.Info("Built-in categories ensured", slog.Int("count", len(categories)))
	return nil
}

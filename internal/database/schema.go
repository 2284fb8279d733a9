package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"quill/internal/config"
	"quill/internal/middleware"

	"gorm.io/gorm"
)

const (
	// SchemaModeSQL applies the embedded SQL migrations.
	SchemaModeSQL = "sql"
	// SchemaModeAuto runs GORM AutoMigrate over PersistentModels.
	SchemaModeAuto = "auto"
)

func isProdLikeEnv(env string) bool {
	e := strings.ToLower(strings.TrimSpace(env))
	return e == "production" || e == "prod" || e == "staging"
}

// SchemaMode resolves DB_SCHEMA_MODE, defaulting to SQL migrations in
// production-like environments and AutoMigrate elsewhere.
func SchemaMode(cfg *config.Config) (string, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.DBSchemaMode))
	switch mode {
	case "":
		if isProdLikeEnv(cfg.Env) {
			return SchemaModeSQL, nil
		}
		return SchemaModeAuto, nil
	case SchemaModeSQL, SchemaModeAuto:
		return mode, nil
	default:
		return "", fmt.Errorf("unsupported DB_SCHEMA_MODE %q", mode)
	}
}

// AutoMigrate creates or updates every table from the model definitions.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(PersistentModels()...)
}

// ApplySchema brings the database schema up to date.
func ApplySchema(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	mode, err := SchemaMode(cfg)
	if err != nil {
		return err
	}

	middleware.Logger.Info("Applying database schema", slog.String("mode", mode), slog.String("env", cfg.Env))
	switch mode {
	case SchemaModeSQL:
		if err := RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("run sql migrations: %w", err)
		}
	default:
		if err := AutoMigrate(db.WithContext(ctx)); err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
	}
	return nil
}

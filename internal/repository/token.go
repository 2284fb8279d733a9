package repository

import (
	"context"
	"log/slog"
	"time"

	"quill/internal/cache"
	"quill/internal/middleware"
	"quill/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TokenRepository records revoked refresh tokens. Redis mirrors the table so
// refresh checks usually avoid the database.
type TokenRepository interface {
	Blacklist(ctx context.Context, token *models.BlacklistedToken) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

type tokenRepository struct {
	db    *gorm.DB
	cache *cache.Store
}

// NewTokenRepository returns a TokenRepository. store may be nil.
func NewTokenRepository(db *gorm.DB, store *cache.Store) TokenRepository {
	return &tokenRepository{db: db, cache: store}
}

// Blacklist is idempotent: revoking an already revoked jti succeeds.
func (r *tokenRepository) Blacklist(ctx context.Context, token *models.BlacklistedToken) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "jti"}}, DoNothing: true}).
		Omit(clause.Associations).
		Create(token).Error
	if err != nil {
		return models.NewInternalError(err)
	}

	if ttl := time.Until(token.ExpiresAt); ttl > 0 {
		if err := r.cache.SetFlag(ctx, cache.BlacklistKey(token.JTI), ttl); err != nil {
			middleware.Logger.WarnContext(ctx, "failed to mirror blacklisted token",
				slog.String("error", err.Error()))
		}
	}
	return nil
}

func (r *tokenRepository) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	if hit, err := r.cache.Exists(ctx, cache.BlacklistKey(jti)); err == nil && hit {
		return true, nil
	}
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.BlacklistedToken{}).Where("jti = ?", jti).Count(&n).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return n > 0, nil
}

// PurgeExpired deletes rows for tokens that expired before now.
func (r *tokenRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at < ?", now).Delete(&models.BlacklistedToken{})
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	return res.RowsAffected, nil
}

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"quill/internal/middleware"
	"quill/internal/observability"

	"github.com/redis/go-redis/v9"
)

// Store wraps a Redis client for JSON values. A Store with a nil client is a
// no-op so the application keeps working without Redis.
type Store struct {
	rdb *redis.Client
}

// New returns a Store over rdb, which may be nil.
func New(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

// Enabled reports whether a client is attached.
func (s *Store) Enabled() bool {
	return s != nil && s.rdb != nil
}

// GetJSON loads key into dest. It reports false on a miss.
func (s *Store) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if !s.Enabled() {
		return false, nil
	}
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON stores v under key for ttl.
func (s *Store) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if !s.Enabled() {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key, b, ttl).Err()
}

// SetFlag stores a marker value under key for ttl.
func (s *Store) SetFlag(ctx context.Context, key string, ttl time.Duration) error {
	if !s.Enabled() {
		return nil
	}
	return s.rdb.Set(ctx, key, "1", ttl).Err()
}

// Exists reports whether key is present.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	if !s.Enabled() {
		return false, nil
	}
	n, err := s.rdb.Exists(ctx, key).Result()
	return n > 0, err
}

// Invalidate deletes keys, logging rather than returning failures.
func (s *Store) Invalidate(ctx context.Context, keys ...string) {
	if !s.Enabled() || len(keys) == 0 {
		return
	}
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "cache invalidation failed",
			slog.Any("keys", keys), slog.String("error", err.Error()))
	}
}

// Aside returns the cached value for key, or calls fetch and caches its
// result for ttl. Cache errors fall through to fetch.
func Aside[T any](ctx context.Context, s *Store, name, key string, ttl time.Duration, fetch func() (T, error)) (T, error) {
	var cached T
	found, err := s.GetJSON(ctx, key, &cached)
	switch {
	case err != nil:
		observability.CacheLookups.WithLabelValues(name, "error").Inc()
	case found:
		observability.CacheLookups.WithLabelValues(name, "hit").Inc()
		return cached, nil
	case s.Enabled():
		observability.CacheLookups.WithLabelValues(name, "miss").Inc()
	}

	value, err := fetch()
	if err != nil {
		return value, err
	}
	if err := s.SetJSON(ctx, key, value, ttl); err != nil {
		middleware.Logger.WarnContext(ctx, "cache write failed",
			slog.String("key", key), slog.String("error", err.Error()))
	}
	return value, nil
}

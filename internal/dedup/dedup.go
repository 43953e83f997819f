// Package dedup tracks processed threads in a short-TTL key/value store so a
// thread is triaged at most once per retention window.
package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "mailtriage:thread:"

// Tracker is the processed-thread bookkeeping collaborator.
type Tracker interface {
	Seen(ctx context.Context, threadID string) (bool, error)
	MarkProcessed(ctx context.Context, threadID string) error
}

// RedisTracker implements Tracker on Redis with per-key TTL.
type RedisTracker struct {
	rdb *redis.Client
	ttl time.Duration
}

// Config holds Redis connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

const defaultTTL = 7 * 24 * time.Hour

func NewRedisTracker(cfg Config) *RedisTracker {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}

	return &RedisTracker{
		rdb: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		ttl: ttl,
	}
}

func (t *RedisTracker) Seen(ctx context.Context, threadID string) (bool, error) {
	n, err := t.rdb.Exists(ctx, keyPrefix+threadID).Result()
	if err != nil {
		return false, fmt.Errorf("check processed thread: %w", err)
	}
	return n > 0, nil
}

func (t *RedisTracker) MarkProcessed(ctx context.Context, threadID string) error {
	err := t.rdb.Set(ctx, keyPrefix+threadID, time.Now().UTC().Format(time.RFC3339), t.ttl).Err()
	if err != nil {
		return fmt.Errorf("mark thread processed: %w", err)
	}
	return nil
}

func (t *RedisTracker) Close() error {
	return t.rdb.Close()
}

var _ Tracker = (*RedisTracker)(nil)

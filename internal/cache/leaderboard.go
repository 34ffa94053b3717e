// Package cache keeps short-lived leaderboard snapshots in Redis.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "shoutout:"

// Snapshots is a TTL cache of JSON documents. Keys are built by the caller
// from the full query, so two requests only share an entry when every
// parameter matches. A zero TTL disables the cache entirely.
type Snapshots struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewSnapshots(client *redis.Client, ttl time.Duration, logger *zap.Logger) *Snapshots {
	return &Snapshots{client: client, ttl: ttl, logger: logger}
}

// NewClient parses a redis:// URL and pings the server.
func NewClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func (s *Snapshots) enabled() bool {
	return s != nil && s.client != nil && s.ttl > 0
}

// Get decodes the entry at key into dst. found is false on a miss.
func (s *Snapshots) Get(ctx context.Context, key string, dst any) (bool, error) {
	if !s.enabled() {
		return false, nil
	}
	raw, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get snapshot: %w", err)
	}
	if err := sonic.Unmarshal(raw, dst); err != nil {
		// A snapshot written by an older build; drop it and recompute.
		s.logger.Warn("discarding undecodable snapshot", zap.String("key", key), zap.Error(err))
		s.client.Del(ctx, keyPrefix+key)
		return false, nil
	}
	return true, nil
}

func (s *Snapshots) Set(ctx context.Context, key string, v any) error {
	if !s.enabled() {
		return nil
	}
	raw, err := sonic.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+key, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("set snapshot: %w", err)
	}
	return nil
}

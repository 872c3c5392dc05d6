// Package cache provides the Redis-backed leaderboard cache.
package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/complaint-service/internal/domain"
)

const leaderboardKeyPrefix = "leaderboard:"

// LeaderboardCache stores computed leaderboards keyed by entry limit.
// Implementations are best-effort: a miss or error just means the caller
// recomputes from the store.
type LeaderboardCache interface {
	Get(ctx context.Context, limit int) ([]domain.LeaderboardEntry, bool)
	Set(ctx context.Context, limit int, entries []domain.LeaderboardEntry, ttl time.Duration)
	Invalidate(ctx context.Context)
}

// RedisLeaderboardCache implements LeaderboardCache on go-redis.
type RedisLeaderboardCache struct {
	client *redis.Client
}

// NewRedisLeaderboardCache wraps an existing client.
func NewRedisLeaderboardCache(client *redis.Client) *RedisLeaderboardCache {
	return &RedisLeaderboardCache{client: client}
}

func (c *RedisLeaderboardCache) Get(ctx context.Context, limit int) ([]domain.LeaderboardEntry, bool) {
	raw, err := c.client.Get(ctx, key(limit)).Bytes()
	if err != nil {
		return nil, false
	}
	var entries []domain.LeaderboardEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, false
	}
	return entries, true
}

func (c *RedisLeaderboardCache) Set(ctx context.Context, limit int, entries []domain.LeaderboardEntry, ttl time.Duration) {
	raw, err := json.Marshal(entries)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, key(limit), raw, ttl).Err()
}

func (c *RedisLeaderboardCache) Invalidate(ctx context.Context) {
	iter := c.client.Scan(ctx, 0, leaderboardKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		_ = c.client.Del(ctx, iter.Val()).Err()
	}
}

func key(limit int) string {
	return leaderboardKeyPrefix + strconv.Itoa(limit)
}

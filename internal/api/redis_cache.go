package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/districtscope/districtscope/pkg/pipeline"
)

// DefaultRedisTTL is how long a cached run document lives in Redis.
const DefaultRedisTTL = 24 * time.Hour

const redisKeyPrefix = "districtscope:run:"

// redisClient is the subset of *redis.Client used by RedisCache.
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// RedisCache shares run documents across API replicas.
// Cache failures are logged and treated as misses.
type RedisCache struct {
	client redisClient
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisCache connects to the Redis server at addr.
func NewRedisCache(addr string, ttl time.Duration, logger *slog.Logger) *RedisCache {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	return newRedisCache(rdb, ttl, logger)
}

func newRedisCache(client redisClient, ttl time.Duration, logger *slog.Logger) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultRedisTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisCache{client: client, ttl: ttl, logger: logger}
}

func (r *RedisCache) Get(ctx context.Context, runID string) (*pipeline.Document, bool) {
	val, err := r.client.Get(ctx, redisKeyPrefix+runID).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.logger.Warn("redis get failed", "run_id", runID, "error", err)
		}
		return nil, false
	}

	var doc pipeline.Document
	if err := json.Unmarshal(val, &doc); err != nil {
		r.logger.Warn("corrupt cached run", "run_id", runID, "error", err)
		return nil, false
	}
	return &doc, true
}

func (r *RedisCache) Put(ctx context.Context, runID string, doc *pipeline.Document) {
	if doc == nil {
		return
	}
	data, err := json.Marshal(doc)
	if err != nil {
		r.logger.Warn("encode run for cache", "run_id", runID, "error", err)
		return
	}
	if err := r.client.Set(ctx, redisKeyPrefix+runID, data, r.ttl).Err(); err != nil {
		r.logger.Warn("redis set failed", "run_id", runID, "error", err)
	}
}

package ratelimit

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tarkovlens/backend/internal/domain"
)

const redisWindow = time.Minute

// RedisStore is a rate limit store shared between server instances. It counts
// requests per key in fixed one-minute windows.
//
// Key schema:
//
//	ratelimit:{key}:{window} - request counter, expires with the window
type RedisStore struct {
	rdb       *redis.Client
	perMinute int64
	now       func() time.Time
}

// NewRedisStore connects to the Redis instance at redisURL, pings it to verify
// connectivity, and returns the store.
func NewRedisStore(ctx context.Context, redisURL string, perMinute int) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}

	log.Printf("[RATELIMIT] Connected to Redis at %s", opts.Addr)
	return newRedisStore(rdb, perMinute), nil
}

func newRedisStore(rdb *redis.Client, perMinute int) *RedisStore {
	if perMinute <= 0 {
		perMinute = 60
	}
	return &RedisStore{rdb: rdb, perMinute: int64(perMinute), now: time.Now}
}

func (s *RedisStore) windowKey(key string) string {
	window := s.now().Unix() / int64(redisWindow/time.Second)
	return "ratelimit:" + key + ":" + strconv.FormatInt(window, 10)
}

// Allow counts the request and reports whether the key is still within its
// per-minute limit.
func (s *RedisStore) Allow(ctx context.Context, key string) (bool, error) {
	windowKey := s.windowKey(key)

	pipe := s.rdb.TxPipeline()
	incr := pipe.Incr(ctx, windowKey)
	pipe.Expire(ctx, windowKey, redisWindow)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("redis: rate limit allow %s: %w", key, err)
	}

	return incr.Val() <= s.perMinute, nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

// Compile-time interface check.
var _ domain.RateLimitStore = (*RedisStore)(nil)

package redis

import (
	"context"
	"fmt"
	"time"

	"personal-ledger/internal/core/ports"

	goredis "github.com/redis/go-redis/v9"
)

// RateLimitStore implements ports.RateLimiter with fixed-window counters in Redis.
type RateLimitStore struct {
	client goredis.UniversalClient
	prefix string
	clock  func() time.Time
}

// NewRateLimitStore creates a Redis-backed rate limiter. Counter keys are
// namespaced as <prefix>ratelimit:<key>:<window>.
func NewRateLimitStore(client goredis.UniversalClient, prefix string) *RateLimitStore {
	return &RateLimitStore{
		client: client,
		prefix: prefix + "ratelimit:",
		clock:  time.Now,
	}
}

// Allow counts a hit for key in the current window. The first hit of a
// window sets the expiry, one second past the window's end.
func (s *RateLimitStore) Allow(ctx context.Context, key string, limit int64, window time.Duration) (*ports.RateLimitResult, error) {
	seconds := int64(window / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	windowID := s.clock().Unix() / seconds
	redisKey := fmt.Sprintf("%s%s:%d", s.prefix, key, windowID)

	count, err := s.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return nil, fmt.Errorf("redis rate limit incr: %w", err)
	}
	if count == 1 {
		if err := s.client.Expire(ctx, redisKey, time.Duration(seconds+1)*time.Second).Err(); err != nil {
			return nil, fmt.Errorf("redis rate limit expire: %w", err)
		}
	}

	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}
	return &ports.RateLimitResult{
		Allowed:   count <= limit,
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   (windowID + 1) * seconds,
	}, nil
}

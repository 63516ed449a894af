package memory

import (
	"context"
	"sync"
	"time"

	"personal-ledger/internal/core/ports"
)

type counter struct {
	windowID int64
	count    int64
}

// RateLimitStore implements ports.RateLimiter with fixed-window counters held
// in process memory. A key's counter resets when a new window starts.
type RateLimitStore struct {
	mu       sync.Mutex
	counters map[string]*counter
	clock    func() time.Time
}

// NewRateLimitStore creates an in-memory rate limiter.
func NewRateLimitStore() *RateLimitStore {
	return &RateLimitStore{
		counters: make(map[string]*counter),
		clock:    time.Now,
	}
}

func (s *RateLimitStore) Allow(_ context.Context, key string, limit int64, window time.Duration) (*ports.RateLimitResult, error) {
	seconds := int64(window / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	windowID := s.clock().Unix() / seconds

	s.mu.Lock()
	c, ok := s.counters[key]
	if !ok || c.windowID != windowID {
		c = &counter{windowID: windowID}
		s.counters[key] = c
	}
	c.count++
	count := c.count
	s.mu.Unlock()

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

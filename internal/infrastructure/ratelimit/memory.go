package ratelimit

import (
	"context"
	"log"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/tarkovlens/backend/internal/domain"
)

// visitor tracks the token bucket of a single client
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// MemoryStore is a thread-safe in-process rate limit store with one token
// bucket per key. Buckets idle for longer than idleTTL are evicted.
type MemoryStore struct {
	visitors map[string]*visitor
	mutex    sync.Mutex
	limit    rate.Limit
	burst    int
	idleTTL  time.Duration
	done     chan struct{}
	once     sync.Once
}

// NewMemoryStore creates a store allowing perMinute requests per key with a
// burst of the same size.
func NewMemoryStore(perMinute int) *MemoryStore {
	if perMinute <= 0 {
		perMinute = 60
	}

	store := &MemoryStore{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(float64(perMinute) / 60.0),
		burst:    perMinute,
		idleTTL:  10 * time.Minute,
		done:     make(chan struct{}),
	}

	// Start cleanup goroutine to evict idle visitors every minute
	go store.cleanupIdle(time.Minute)

	return store
}

// Allow reports whether the client identified by key may make a request now
func (s *MemoryStore) Allow(ctx context.Context, key string) (bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	v, exists := s.visitors[key]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.visitors[key] = v
	}
	v.lastSeen = time.Now()

	return v.limiter.Allow(), nil
}

// cleanupIdle removes visitors that have not been seen for idleTTL
func (s *MemoryStore) cleanupIdle(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			if evicted := s.evictIdle(time.Now()); evicted > 0 {
				log.Printf("[RATELIMIT] Evicted %d idle clients, %d still tracked", evicted, s.Size())
			}
		}
	}
}

// evictIdle drops visitors idle for longer than idleTTL and returns how many were dropped
func (s *MemoryStore) evictIdle(now time.Time) int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	evicted := 0
	for key, v := range s.visitors {
		if now.Sub(v.lastSeen) > s.idleTTL {
			delete(s.visitors, key)
			evicted++
		}
	}
	return evicted
}

// Size returns the current number of tracked clients
func (s *MemoryStore) Size() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.visitors)
}

// Close stops the cleanup goroutine
func (s *MemoryStore) Close() error {
	s.once.Do(func() { close(s.done) })
	return nil
}

// Compile-time interface check.
var _ domain.RateLimitStore = (*MemoryStore)(nil)

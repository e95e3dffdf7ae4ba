package ratelimit

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/alphabot-ai/campusboard/internal/clock"
)

// Limiter caps how often an actor may perform an action within a window.
type Limiter interface {
	// Allow records an attempt for key and reports whether it is within limit.
	Allow(key string, limit int, window time.Duration) bool

	// Remaining returns the number of attempts left for key in the current window.
	Remaining(key string, limit int, window time.Duration) int

	// RetryAfter returns the time until the window for key resets.
	RetryAfter(key string, window time.Duration) time.Duration
}

// Key joins an action name with the parts that identify the actor, e.g.
// Key("login", ipHash, "alice").
func Key(action string, parts ...string) string {
	return action + ":" + strings.Join(parts, ":")
}

// MemoryLimiter is a fixed-window limiter kept in process memory.
type MemoryLimiter struct {
	mu      sync.RWMutex
	buckets map[string]*bucket
	clock   clock.Clock
}

type bucket struct {
	count     int
	resetTime time.Time
}

func NewMemoryLimiter(clk clock.Clock) *MemoryLimiter {
	if clk == nil {
		clk = clock.NewReal()
	}
	return &MemoryLimiter{
		buckets: make(map[string]*bucket),
		clock:   clk,
	}
}

func (l *MemoryLimiter) Allow(key string, limit int, window time.Duration) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	b, ok := l.buckets[key]

	if !ok || now.After(b.resetTime) {
		if limit <= 0 {
			return false
		}
		l.buckets[key] = &bucket{
			count:     1,
			resetTime: now.Add(window),
		}
		return true
	}

	if b.count >= limit {
		return false
	}

	b.count++
	return true
}

func (l *MemoryLimiter) Remaining(key string, limit int, window time.Duration) int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	b, ok := l.buckets[key]
	if !ok || l.clock.Now().After(b.resetTime) {
		return limit
	}

	return max(limit-b.count, 0)
}

func (l *MemoryLimiter) RetryAfter(key string, window time.Duration) time.Duration {
	l.mu.RLock()
	defer l.mu.RUnlock()

	now := l.clock.Now()
	b, ok := l.buckets[key]
	if !ok || now.After(b.resetTime) {
		return 0
	}

	return b.resetTime.Sub(now)
}

// Cleanup removes expired buckets.
func (l *MemoryLimiter) Cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	for key, b := range l.buckets {
		if now.After(b.resetTime) {
			delete(l.buckets, key)
		}
	}
}

func (l *MemoryLimiter) size() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.buckets)
}

// RunCleanup removes expired buckets every interval until ctx is done.
func (l *MemoryLimiter) RunCleanup(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			l.Cleanup()
		}
	}
}

var _ Limiter = (*MemoryLimiter)(nil)

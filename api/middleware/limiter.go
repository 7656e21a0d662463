package middleware

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter decides whether one more hit for key fits within limit per window.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type counterStore interface {
	IncrWithTTL(context.Context, string, time.Duration) (int64, error)
}

// CounterLimiter is a fixed-window limiter over a shared counter store such
// as redis, so every API instance sees the same counts.
type CounterLimiter struct {
	store counterStore
}

func NewCounterLimiter(store counterStore) *CounterLimiter {
	return &CounterLimiter{store: store}
}

func (l *CounterLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	count, err := l.store.IncrWithTTL(ctx, key, window)
	if err != nil {
		return false, err
	}
	return count <= int64(limit), nil
}

// LocalLimiter keeps one token bucket per key in process memory. Buckets
// refill at limit/window with a burst of limit.
type LocalLimiter struct {
	mu      sync.Mutex
	buckets map[string]*localBucket
	idleTTL time.Duration
	now     func() time.Time
}

type localBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewLocalLimiter() *LocalLimiter {
	return &LocalLimiter{
		buckets: make(map[string]*localBucket),
		idleTTL: time.Hour,
		now:     time.Now,
	}
}

func (l *LocalLimiter) Allow(_ context.Context, key string, limit int, window time.Duration) (bool, error) {
	if limit <= 0 || window <= 0 {
		return true, nil
	}
	now := l.now()

	l.mu.Lock()
	bucket, ok := l.buckets[key]
	if !ok {
		bucket = &localBucket{limiter: rate.NewLimiter(rate.Every(window/time.Duration(limit)), limit)}
		l.buckets[key] = bucket
	}
	bucket.lastSeen = now
	l.mu.Unlock()

	return bucket.limiter.AllowN(now, 1), nil
}

// Sweep drops buckets idle for longer than the idle TTL.
func (l *LocalLimiter) Sweep() {
	cutoff := l.now().Add(-l.idleTTL)
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, bucket := range l.buckets {
		if bucket.lastSeen.Before(cutoff) {
			delete(l.buckets, key)
		}
	}
}

// StartSweeper runs Sweep every interval until ctx is done.
func (l *LocalLimiter) StartSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.Sweep()
			}
		}
	}()
}

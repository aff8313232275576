package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter keeps a timestamp log per key in process memory. State is
// lost on restart and not shared between replicas.
type MemoryLimiter struct {
	mu     sync.Mutex
	hits   map[string][]time.Time
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewMemory(limit int, window time.Duration, clock func() time.Time) *MemoryLimiter {
	if clock == nil {
		clock = time.Now
	}
	return &MemoryLimiter{
		hits:   make(map[string][]time.Time),
		limit:  limit,
		window: window,
		now:    clock,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	log := prune(l.hits[key], now.Add(-l.window))
	if len(log) >= l.limit {
		l.hits[key] = log
		return Decision{
			Allowed:    false,
			RetryAfter: log[0].Add(l.window).Sub(now),
		}, nil
	}

	log = append(log, now)
	l.hits[key] = log
	return Decision{Allowed: true, Remaining: l.limit - len(log)}, nil
}

// Sweep drops keys with no hits inside the window.
func (l *MemoryLimiter) Sweep() {
	cutoff := l.now().Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()
	for key, log := range l.hits {
		if log = prune(log, cutoff); len(log) == 0 {
			delete(l.hits, key)
		} else {
			l.hits[key] = log
		}
	}
}

// Run sweeps every interval until ctx is done.
func (l *MemoryLimiter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Sweep()
		}
	}
}

// prune drops timestamps at or before cutoff. log is sorted ascending.
func prune(log []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(log) && !log[i].After(cutoff) {
		i++
	}
	if i == 0 {
		return log
	}
	return append(log[:0:0], log[i:]...)
}

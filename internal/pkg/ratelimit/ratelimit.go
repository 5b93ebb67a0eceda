package ratelimit

import (
	"sync"
	"time"
)

// RateLimiter is a sliding-window limiter keyed by an arbitrary
// string (client IP or user ID).
type RateLimiter struct {
	mu      sync.RWMutex
	hits    map[string][]time.Time
	limit   int
	window  time.Duration
	cleanCh chan struct{}
}

func New(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		hits:   make(map[string][]time.Time),
		limit:  limit,
		window: window,
	}
}

// Allow records a hit for key and reports whether it fits the window.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	live := rl.prune(key, now)
	if len(live) >= rl.limit {
		rl.hits[key] = live
		return false
	}

	rl.hits[key] = append(live, now)
	return true
}

// GetRemaining returns how many hits are left for key in the current window.
func (rl *RateLimiter) GetRemaining(key string) int {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	remaining := rl.limit - rl.countLive(key, time.Now())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// GetResetTime returns when the oldest hit for key falls out of the window.
func (rl *RateLimiter) GetResetTime(key string) time.Time {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	now := time.Now()
	cutoff := now.Add(-rl.window)

	var oldest time.Time
	for _, t := range rl.hits[key] {
		if t.After(cutoff) && (oldest.IsZero() || t.Before(oldest)) {
			oldest = t
		}
	}
	if oldest.IsZero() {
		return now
	}
	return oldest.Add(rl.window)
}

// StartCleanup evicts expired entries on the given interval until Stop
// is called, so long-lived limiters do not keep dead keys around.
func (rl *RateLimiter) StartCleanup(interval time.Duration) {
	rl.mu.Lock()
	if rl.cleanCh != nil {
		rl.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	rl.cleanCh = stop
	rl.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				rl.cleanup()
			case <-stop:
				return
			}
		}
	}()
}

// Stop ends the background cleanup routine, if running.
func (rl *RateLimiter) Stop() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if rl.cleanCh != nil {
		close(rl.cleanCh)
		rl.cleanCh = nil
	}
}

func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	for key := range rl.hits {
		live := rl.prune(key, now)
		if len(live) == 0 {
			delete(rl.hits, key)
		} else {
			rl.hits[key] = live
		}
	}
}

// prune returns the hits for key still inside the window. Caller holds
// the write lock.
func (rl *RateLimiter) prune(key string, now time.Time) []time.Time {
	cutoff := now.Add(-rl.window)
	var live []time.Time
	for _, t := range rl.hits[key] {
		if t.After(cutoff) {
			live = append(live, t)
		}
	}
	return live
}

func (rl *RateLimiter) countLive(key string, now time.Time) int {
	cutoff := now.Add(-rl.window)
	var n int
	for _, t := range rl.hits[key] {
		if t.After(cutoff) {
			n++
		}
	}
	return n
}

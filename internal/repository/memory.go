package repository

import (
	"context"
	"sync"
	"time"
)

type attemptWindow struct {
	count     int
	expiresAt time.Time
}

// MemoryAttemptLimiter is the in-process counterpart of RedisAttemptLimiter.
type MemoryAttemptLimiter struct {
	mu      sync.Mutex
	windows map[int64]*attemptWindow
	now     func() time.Time
}

func NewMemoryAttemptLimiter() *MemoryAttemptLimiter {
	return &MemoryAttemptLimiter{
		windows: make(map[int64]*attemptWindow),
		now:     time.Now,
	}
}

func (r *MemoryAttemptLimiter) CheckRateLimit(_ context.Context, userID int64, limit int, window time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	entry, ok := r.windows[userID]
	if !ok || !now.Before(entry.expiresAt) {
		entry = &attemptWindow{expiresAt: now.Add(window)}
		r.windows[userID] = entry
	}
	entry.count++

	return entry.count <= limit, nil
}

func (r *MemoryAttemptLimiter) Reset(_ context.Context, userID int64) error {
	r.mu.Lock()
	delete(r.windows, userID)
	r.mu.Unlock()
	return nil
}

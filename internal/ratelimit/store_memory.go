package ratelimit

import (
	"context"
	"sync"
	"time"
)

type memoryWindow struct {
	count       int
	windowStart time.Time
}

type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]*memoryWindow
	now     func() time.Time
}

func NewMemoryStore(now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{
		windows: make(map[string]*memoryWindow),
		now:     now,
	}
}

func (s *MemoryStore) TryConsume(_ context.Context, userID, action string, limit int, window time.Duration) (bool, error) {
	if limit <= 0 || window <= 0 {
		return true, nil
	}
	now := s.now().UTC()
	key := userID + "|" + action

	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[key]
	if !ok || now.Sub(w.windowStart) >= window {
		s.windows[key] = &memoryWindow{count: 1, windowStart: now}
		return true, nil
	}
	if w.count >= limit {
		return false, nil
	}
	w.count++
	return true, nil
}

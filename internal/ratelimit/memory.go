package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a process-local fixed-window counter map. Not shared across
// instances — use RedisStore when running more than one replica.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*windowEntry
	now     func() time.Time
}

type windowEntry struct {
	count   int64
	resetAt time.Time
}

// NewMemoryStore returns an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*windowEntry),
		now:     time.Now,
	}
}

// Incr bumps the counter for key, starting a fresh window when the previous
// one has elapsed.
func (m *MemoryStore) Incr(_ context.Context, key string, window time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	e, ok := m.entries[key]
	if !ok || now.After(e.resetAt) {
		e = &windowEntry{resetAt: now.Add(window)}
		m.entries[key] = e
	}
	e.count++
	return e.count, nil
}

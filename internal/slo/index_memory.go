package slo

import (
	"context"
	"sync"
	"time"

	"portalgate/pkg/platform/sentinel"
)

// MemoryIndex is the in-process fallback used when no shared store is
// configured. Correct only for a single gateway instance.
type MemoryIndex struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	clock   func() time.Time
}

type memoryEntry struct {
	sessionID string
	expiresAt time.Time
}

// MemoryIndexOption configures a MemoryIndex.
type MemoryIndexOption func(*MemoryIndex)

// WithIndexClock sets the clock function for testability.
func WithIndexClock(clock func() time.Time) MemoryIndexOption {
	return func(i *MemoryIndex) {
		if clock != nil {
			i.clock = clock
		}
	}
}

// NewMemoryIndex constructs an in-process logout-token index.
func NewMemoryIndex(opts ...MemoryIndexOption) *MemoryIndex {
	idx := &MemoryIndex{
		entries: make(map[string]memoryEntry),
		clock:   time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(idx)
		}
	}
	return idx
}

func (i *MemoryIndex) Put(_ context.Context, key, sessionID string, ttl time.Duration) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.entries[key] = memoryEntry{sessionID: sessionID, expiresAt: i.clock().Add(ttl)}
	return nil
}

func (i *MemoryIndex) Lookup(_ context.Context, key string) (string, error) {
	i.mu.RLock()
	entry, ok := i.entries[key]
	i.mu.RUnlock()

	if !ok {
		return "", sentinel.ErrNotFound
	}
	if !entry.expiresAt.After(i.clock()) {
		// expired entries are pruned lazily
		i.mu.Lock()
		delete(i.entries, key)
		i.mu.Unlock()
		return "", sentinel.ErrNotFound
	}
	return entry.sessionID, nil
}

func (i *MemoryIndex) Delete(_ context.Context, key string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.entries, key)
	return nil
}

package session

import (
	"context"
	"sync"
	"time"

	"portalgate/pkg/platform/sentinel"
)

// MemoryStore is the in-process fallback session store. Correct only for a
// single gateway instance; a restart drops every session.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]memoryRecord
	clock    func() time.Time
}

type memoryRecord struct {
	sess      Session
	expiresAt time.Time
}

// MemoryStoreOption configures a MemoryStore.
type MemoryStoreOption func(*MemoryStore)

// WithClock sets the clock function for testability.
func WithClock(clock func() time.Time) MemoryStoreOption {
	return func(s *MemoryStore) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewMemoryStore constructs an in-process session store.
func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	s := &MemoryStore{
		sessions: make(map[string]memoryRecord),
		clock:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	s.mu.RLock()
	record, ok := s.sessions[Key(id)]
	s.mu.RUnlock()

	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if !record.expiresAt.After(s.clock()) {
		s.mu.Lock()
		delete(s.sessions, Key(id))
		s.mu.Unlock()
		return nil, sentinel.ErrNotFound
	}

	sess := record.sess
	sess.ID = id
	sess.ExpiresAt = record.expiresAt
	return &sess, nil
}

func (s *MemoryStore) Set(_ context.Context, sess *Session, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[Key(sess.ID)] = memoryRecord{sess: *sess, expiresAt: s.clock().Add(ttl)}
	return nil
}

func (s *MemoryStore) Destroy(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, Key(id))
	return nil
}

func (s *MemoryStore) Touch(_ context.Context, id string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.sessions[Key(id)]
	if !ok || !record.expiresAt.After(s.clock()) {
		return sentinel.ErrNotFound
	}
	record.expiresAt = s.clock().Add(ttl)
	s.sessions[Key(id)] = record
	return nil
}

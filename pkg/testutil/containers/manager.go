//go:build integration

// Package containers manages shared test containers for integration tests.
// Containers are started once per test binary and shared across suites;
// suites isolate themselves by flushing state between tests.
package containers

import (
	"sync"
	"testing"
)

// Manager hands out shared containers. Ryuk reaps them when the test binary
// exits, so no explicit teardown is registered.
type Manager struct {
	mu    sync.Mutex
	redis *RedisContainer
}

var manager = &Manager{}

// GetManager returns the process-wide container manager.
func GetManager() *Manager {
	return manager
}

// GetRedis returns the shared Redis container, starting it on first use.
func (m *Manager) GetRedis(t *testing.T) *RedisContainer {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.redis == nil {
		m.redis = NewRedisContainer(t)
	}
	return m.redis
}

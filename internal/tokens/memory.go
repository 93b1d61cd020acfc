package tokens

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryStore is a process-local Store for single-instance deployments and tests.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func memoryKey(sessionID, name string) string {
	return sessionID + "\x00" + name
}

func (m *MemoryStore) Get(_ context.Context, sessionID, name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := memoryKey(sessionID, name)
	e, ok := m.entries[key]
	if !ok {
		return "", ErrNotFound
	}
	if !m.now().Before(e.expiresAt) {
		delete(m.entries, key)
		return "", ErrNotFound
	}
	return e.value, nil
}

func (m *MemoryStore) Set(_ context.Context, sessionID, name, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[memoryKey(sessionID, name)] = memoryEntry{value: value, expiresAt: m.now().Add(ttl)}
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, sessionID string, names ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, name := range names {
		delete(m.entries, memoryKey(sessionID, name))
	}
	return nil
}

// Sweep drops expired entries.
func (m *MemoryStore) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	n := 0
	for k, e := range m.entries {
		if !now.Before(e.expiresAt) {
			delete(m.entries, k)
			n++
		}
	}
	return n
}

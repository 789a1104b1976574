// Package intent remembers which job an anonymous user tried to apply to,
// across the round-trip through sign-in. An intent is read at most once.
package intent

import (
	"context"
	"sync"
	"time"
)

// Store keeps one pending apply intent per browser session key.
type Store interface {
	// Save records jobID for key, replacing any earlier intent.
	Save(ctx context.Context, key, jobID string) error
	// Consume returns the intent for key and clears it. ok is false when
	// nothing was pending or the intent expired.
	Consume(ctx context.Context, key string) (jobID string, ok bool, err error)
}

type memoryEntry struct {
	jobID     string
	expiresAt time.Time
}

// MemoryStore is a process-local Store for a single-instance deployment and
// for tests.
type MemoryStore struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]memoryEntry
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		now:     time.Now,
		entries: map[string]memoryEntry{},
	}
}

func (m *MemoryStore) Save(_ context.Context, key, jobID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = memoryEntry{jobID: jobID, expiresAt: m.now().Add(m.ttl)}
	return nil
}

func (m *MemoryStore) Consume(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return "", false, nil
	}
	delete(m.entries, key)

	if m.ttl > 0 && m.now().After(e.expiresAt) {
		return "", false, nil
	}
	return e.jobID, true, nil
}

package state

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	record  []byte
	expires time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expires.IsZero() && !now.Before(e.expires)
}

// MemoryBackend keeps records in process memory. Expired entries read as missing
// and are dropped by Sweep.
type MemoryBackend struct {
	mu      sync.RWMutex
	entries map[int64]memoryEntry
	now     func() time.Time
}

// NewMemoryBackend constructs an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		entries: make(map[int64]memoryEntry),
		now:     time.Now,
	}
}

// Load returns a copy of the user's record.
func (m *MemoryBackend) Load(_ context.Context, userID int64) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[userID]
	if !ok || e.expired(m.now()) {
		return nil, ErrNotFound
	}
	return append([]byte(nil), e.record...), nil
}

// Save stores a copy of record for the user.
func (m *MemoryBackend) Save(_ context.Context, userID int64, record []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := memoryEntry{record: append([]byte(nil), record...)}
	if ttl > 0 {
		e.expires = m.now().Add(ttl)
	}
	m.entries[userID] = e
	return nil
}

// Delete removes the user's record. Missing records are not an error.
func (m *MemoryBackend) Delete(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, userID)
	return nil
}

// Sweep drops expired entries and reports how many were removed.
func (m *MemoryBackend) Sweep(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for id, e := range m.entries {
		if e.expired(now) {
			delete(m.entries, id)
			removed++
		}
	}
	return removed, nil
}

// Len reports the number of held entries, expired ones included.
func (m *MemoryBackend) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

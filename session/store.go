package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-uuid"
)

// Store holds sessions keyed by id. Implementations must be safe for
// concurrent use.
type Store interface {
	// Get retrieves a session by id, returning false if none exists.
	Get(id string) (*Session, bool)

	// Create makes a new session with a freshly generated id.
	Create() (*Session, error)

	// Delete removes a session by id. Deleting an unknown id is a no-op.
	Delete(id string)
}

// DefaultTTL is the idle lifetime of a session in a MemoryStore when no TTL
// is given.
const DefaultTTL = 30 * time.Minute

// MemoryStore is an in-memory Store with TTL cleanup of idle sessions. A
// session that is neither read nor written within the TTL is removed by a
// background worker, taking any pending authentication state with it.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewMemoryStore creates a MemoryStore and starts its cleanup worker. A
// ttl of zero selects DefaultTTL. Call Stop to release the worker.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	m := &MemoryStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		stopCh:   make(chan struct{}),
	}
	go m.cleanupRoutine()
	return m
}

func (m *MemoryStore) cleanupRoutine() {
	ticker := time.NewTicker(m.ttl / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.CleanupExpired()
		case <-m.stopCh:
			return
		}
	}
}

// Get retrieves a session by id and refreshes its last-access time.
func (m *MemoryStore) Get(id string) (*Session, bool) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	s.touch()
	return s, true
}

// Create makes a new session with a generated id and adds it to the store.
func (m *MemoryStore) Create() (*Session, error) {
	const op = "session.MemoryStore.Create"
	id, err := uuid.GenerateUUID()
	if err != nil {
		return nil, fmt.Errorf("%s: unable to generate session id: %w", op, err)
	}
	s := newSession(id)
	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()
	return s, nil
}

// Delete removes a session by id.
func (m *MemoryStore) Delete(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// CleanupExpired removes sessions that have been idle longer than the TTL.
func (m *MemoryStore) CleanupExpired() {
	cutoff := time.Now().Add(-m.ttl)
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		if s.UpdatedAt().Before(cutoff) {
			delete(m.sessions, id)
		}
	}
}

// Stop stops the cleanup worker. It is safe to call more than once.
func (m *MemoryStore) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopCh)
	})
}

// Package session provides the server-side session container used by the
// oidcauth authenticator: an attribute bag per browser session, a pluggable
// store with TTL expiry, and a cookie-based manager which correlates inbound
// requests with their session.
package session

import (
	"sync"
	"time"
)

// Session is a mutable attribute bag shared by all requests belonging to the
// same browser session. Individual Get/Set/Remove calls are atomic; compound
// read-modify-write sequences must run inside Update so that concurrent
// requests for the same session serialize on them. Sessions for different
// ids never contend.
type Session struct {
	id        string
	createdAt time.Time

	mu        sync.Mutex
	attrs     map[string]any
	updatedAt time.Time
}

func newSession(id string) *Session {
	now := time.Now()
	return &Session{
		id:        id,
		createdAt: now,
		updatedAt: now,
		attrs:     map[string]any{},
	}
}

// ID returns the session's unique id.
func (s *Session) ID() string { return s.id }

// CreatedAt returns the session's creation time.
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// UpdatedAt returns the time of the session's last access.
func (s *Session) UpdatedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}

// Get returns the attribute stored under key, or nil.
func (s *Session) Get(key string) any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attrs[key]
}

// Set stores an attribute under key, replacing any previous value.
func (s *Session) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attrs[key] = value
	s.updatedAt = time.Now()
}

// Remove deletes the attribute stored under key.
func (s *Session) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.attrs, key)
	s.updatedAt = time.Now()
}

// Update runs fn as a critical section over the session's attributes. The
// attrs map passed to fn is the live attribute map; fn must not retain it
// after returning.
func (s *Session) Update(fn func(attrs map[string]any)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.attrs)
	s.updatedAt = time.Now()
}

// touch updates the session's last-access time.
func (s *Session) touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updatedAt = time.Now()
}

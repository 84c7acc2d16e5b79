package session

import (
	"fmt"
	"net/http"
)

// DefaultCookieName is the session cookie name used when the Manager is not
// configured with one.
const DefaultCookieName = "SESSIONID"

// Manager correlates inbound requests with their Session via a cookie. A
// session id presented only as a URL query parameter is reported as such and
// never honored for authentication: provider callbacks carry no referer to
// the original URL, so cookie transport is the only correlation that works.
type Manager struct {
	store      Store
	cookieName string
}

// NewManager creates a Manager over the given store. An empty cookieName
// selects DefaultCookieName.
func NewManager(store Store, cookieName string) (*Manager, error) {
	const op = "session.NewManager"
	if store == nil {
		return nil, fmt.Errorf("%s: store is nil", op)
	}
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	return &Manager{store: store, cookieName: cookieName}, nil
}

// CookieName returns the name of the session cookie.
func (m *Manager) CookieName() string { return m.cookieName }

// Load finds the request's session. It returns the session (or nil if the
// request carries no known session id) and whether the id arrived via the
// URL instead of a cookie. The URL transport is reported even when the id
// no longer names a live session; the transport itself is what callers
// reject.
func (m *Manager) Load(r *http.Request) (s *Session, fromURL bool) {
	if c, err := r.Cookie(m.cookieName); err == nil && c.Value != "" {
		if s, ok := m.store.Get(c.Value); ok {
			return s, false
		}
	}
	if id := r.URL.Query().Get(m.cookieName); id != "" {
		s, _ := m.store.Get(id)
		return s, true
	}
	return nil, false
}

// Ensure returns the request's session, creating one and setting its cookie
// when the request has none.
func (m *Manager) Ensure(w http.ResponseWriter, r *http.Request) (*Session, error) {
	const op = "session.Manager.Ensure"
	if s, _ := m.Load(r); s != nil {
		return s, nil
	}
	s, err := m.store.Create()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    s.ID(),
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	// let the rest of this request see its new session
	r.AddCookie(&http.Cookie{Name: m.cookieName, Value: s.ID()})
	return s, nil
}

// Destroy removes the request's session and expires its cookie.
func (m *Manager) Destroy(w http.ResponseWriter, r *http.Request) {
	s, _ := m.Load(r)
	if s == nil {
		return
	}
	m.store.Delete(s.ID())
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

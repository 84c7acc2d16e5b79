package oidcauth

import (
	"github.com/oidcauth/oidcauth/session"
)

// storeAuthentication writes a completed authentication to the session,
// overwriting any prior value. The verified claims and the raw provider
// response are recorded under their own keys for downstream application
// use.
func storeAuthentication(s *session.Session, result *AuthenticationResult) {
	s.Update(func(attrs map[string]any) {
		attrs[SessionKeyAuthenticated] = result
		attrs[SessionKeyClaims] = result.Claims
		attrs[SessionKeyResponse] = result.TokenResponse
	})
}

// cachedAuthentication returns the session's completed authentication, or
// nil.
func cachedAuthentication(s *session.Session) *AuthenticationResult {
	result, _ := s.Get(SessionKeyAuthenticated).(*AuthenticationResult)
	return result
}

// invalidateAuthentication removes the cached authentication along with the
// recorded claims and provider response. The saved request and the
// anti-forgery token are deliberately left alone: they belong to a separate,
// possibly still pending, challenge cycle.
func invalidateAuthentication(s *session.Session) {
	s.Update(func(attrs map[string]any) {
		delete(attrs, SessionKeyAuthenticated)
		delete(attrs, SessionKeyClaims)
		delete(attrs, SessionKeyResponse)
	})
}

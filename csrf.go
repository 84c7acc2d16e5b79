package oidcauth

import (
	"encoding/base32"
	"fmt"
	"strings"

	"github.com/hashicorp/go-uuid"

	"github.com/oidcauth/oidcauth/session"
)

// csrfTokenBytes is the entropy of a freshly generated anti-forgery token:
// 160 bits, above the 130-bit floor for state tokens.
const csrfTokenBytes = 20

var csrfEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// ensureCSRFToken returns the session's anti-forgery token, generating and
// storing one if the session has none. Issuance is idempotent: repeated
// challenges within the same pending login cycle reuse the same token, so
// concurrent requests that both miss the authentication cache share one
// outstanding challenge.
func ensureCSRFToken(s *session.Session) (string, error) {
	const op = "oidcauth.ensureCSRFToken"
	var token string
	var genErr error
	s.Update(func(attrs map[string]any) {
		if existing, ok := attrs[SessionKeyCSRFToken].(string); ok && existing != "" {
			token = existing
			return
		}
		b, err := uuid.GenerateRandomBytes(csrfTokenBytes)
		if err != nil {
			genErr = fmt.Errorf("%s: %w: %v", op, ErrTokenGeneration, err)
			return
		}
		token = strings.ToLower(csrfEncoding.EncodeToString(b))
		attrs[SessionKeyCSRFToken] = token
	})
	return token, genErr
}

// validateState reports whether the provider-supplied state parameter equals
// the session's stored anti-forgery token, compared as an exact string
// match. A failed validation leaves the token in place: the outstanding
// challenge stays valid so a duplicate or late callback carrying the same
// pending state can still complete.
func validateState(s *session.Session, state string) bool {
	token, ok := s.Get(SessionKeyCSRFToken).(string)
	return ok && token != "" && token == state
}

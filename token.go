package oidcauth

import (
	"encoding/json"
	"time"
)

const tokenExpirySkew = 10 * time.Second

// Token is the raw provider response from a successful code exchange. It is
// recorded on the session for downstream application use.
type Token struct {
	AccessToken  string
	RefreshToken string
	IDToken      string
	Expiry       time.Time
}

// RedactedToken is the redacted string or json for a Token.
const RedactedToken = "[REDACTED: token response]"

// String will redact the token response
func (t *Token) String() string {
	return RedactedToken
}

// MarshalJSON will redact the token response
func (t *Token) MarshalJSON() ([]byte, error) {
	return json.Marshal(RedactedToken)
}

// Expired reports whether the access token is past (or within a small skew
// of) its expiry. A zero expiry never expires.
func (t *Token) Expired() bool {
	if t.Expiry.IsZero() {
		return false
	}
	return t.Expiry.Round(0).Before(time.Now().Add(tokenExpirySkew))
}

// Valid reports whether the token carries an unexpired access token.
func (t *Token) Valid() bool {
	if t == nil {
		return false
	}
	if t.AccessToken == "" {
		return false
	}
	return !t.Expired()
}

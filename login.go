package oidcauth

import (
	"context"
)

// Identity is the opaque application-level identity produced by a
// LoginService from verified credentials.
type Identity interface {
	// Subject is the primary identifier for the authenticated entity,
	// corresponding to the id_token's "sub" claim.
	Subject() string
}

// Credentials carry an authorization code through verification. The code and
// the redirect URI it was issued against are set before Login; a successful
// Login fills in the verified claims and the raw token response.
type Credentials struct {
	// Code is the provider's authorization code from the callback.
	Code string

	// RedirectURI is the callback URL the code was issued against. It must
	// be byte-identical to the redirect_uri sent with the challenge, or the
	// provider will reject the exchange.
	RedirectURI string

	// Claims holds the verified id_token claims after a successful Login.
	Claims map[string]any

	// Response holds the raw provider token response after a successful
	// Login.
	Response *Token
}

// LoginService turns verified credentials into an application identity and
// can report that a previously issued identity has been revoked. Login may
// perform network I/O (the code exchange and id_token verification);
// implementations must honor ctx. Implementations must be safe for
// concurrent use.
type LoginService interface {
	// Login exchanges and verifies the credentials, returning the
	// application identity. Any failure (malformed or expired code,
	// signature, issuer or audience mismatch, network error) is returned as
	// an error; callers treat all of them alike.
	Login(ctx context.Context, creds *Credentials) (Identity, error)

	// Validate reports whether a previously issued identity is still
	// valid. Returning false revokes it.
	Validate(ctx context.Context, identity Identity) bool
}

package oidcauth

// AuthState is the outcome category of one authentication decision.
type AuthState int

const (
	// StateDeferred means authentication was not attempted: it was not
	// mandatory for the request, or the request targets the error page. The
	// caller may proceed unauthenticated and can re-check later in
	// mandatory mode.
	StateDeferred AuthState = iota

	// StateUnauthenticated means authentication is pending but no challenge
	// could be issued in the current response state.
	StateUnauthenticated

	// StateChallenged means a challenge redirect to the provider has been
	// written; the response is complete.
	StateChallenged

	// StateAuthenticated means the request carries a valid authentication;
	// Result is set. For a callback request the redirect response has
	// already been written.
	StateAuthenticated

	// StateFailed means authentication failed and the failure response
	// (403 or error-page redirect) has been written; Reason is set.
	StateFailed
)

// String implements fmt.Stringer for AuthState.
func (s AuthState) String() string {
	switch s {
	case StateDeferred:
		return "deferred"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateChallenged:
		return "challenged"
	case StateAuthenticated:
		return "authenticated"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Authentication is the tagged outcome of Authenticator.ValidateRequest.
// Exactly one of Result (StateAuthenticated) and Reason (StateFailed) is
// set; all other states carry neither.
type Authentication struct {
	State  AuthState
	Result *AuthenticationResult
	Reason error

	// ResponseSent is true when the decision already wrote the response:
	// every StateChallenged and StateFailed outcome, and a
	// StateAuthenticated outcome for a just-processed callback (which
	// redirects to the original request).
	ResponseSent bool
}

// AuthenticationResult is a completed authentication. It is created when a
// callback is processed successfully, stored on the session, and read back
// on every subsequent request. It is immutable once stored.
type AuthenticationResult struct {
	// Identity is the handle returned by the login service.
	Identity Identity

	// Credentials is the verified credential object: the authorization
	// code along with the resolved claims and raw token response.
	Credentials *Credentials

	// Claims is the mapping of claim name to value from the verified
	// id_token.
	Claims map[string]any

	// TokenResponse is the raw provider response, kept for downstream use.
	TokenResponse *Token
}

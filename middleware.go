package oidcauth

import (
	"context"
	"net/http"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey int

const resultKey contextKey = iota

// newContext returns a new context with the authentication result attached.
func newContext(ctx context.Context, result *AuthenticationResult) context.Context {
	return context.WithValue(ctx, resultKey, result)
}

// ResultFromContext retrieves the request's authentication result, or nil
// when the request is unauthenticated.
func ResultFromContext(ctx context.Context) *AuthenticationResult {
	result, _ := ctx.Value(resultKey).(*AuthenticationResult)
	return result
}

// IdentityFromContext retrieves the authenticated identity from the
// context, or nil when the request is unauthenticated.
func IdentityFromContext(ctx context.Context) Identity {
	if result := ResultFromContext(ctx); result != nil {
		return result.Identity
	}
	return nil
}

// RequireAuth wraps next with mandatory authentication. Unauthenticated
// requests are redirected to the provider; callback requests are processed;
// authenticated requests run next with the identity attached to the request
// context and, for a replayed original request, with its method and form
// parameters restored. The configured error page renders without
// authentication.
func (a *Authenticator) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.PrepareRequest(r)
		auth, err := a.ValidateRequest(w, r, true)
		if err != nil {
			a.logger.Error("authentication error", "error", err)
			return
		}
		if auth.ResponseSent {
			return
		}
		switch auth.State {
		case StateAuthenticated:
			next.ServeHTTP(w, r.WithContext(newContext(r.Context(), auth.Result)))
		default:
			// deferred for the error page; render it unauthenticated
			next.ServeHTTP(w, r)
		}
	})
}

// OptionalAuth wraps next with advisory authentication: the request always
// proceeds, carrying the identity in its context when the session already
// holds a valid authentication. No challenge is ever issued.
func (a *Authenticator) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.PrepareRequest(r)
		auth, err := a.ValidateRequest(w, r, false)
		if err != nil {
			a.logger.Error("authentication error", "error", err)
			return
		}
		if auth.ResponseSent {
			// a callback response was written even in optional mode
			return
		}
		if auth.State != StateAuthenticated {
			auth, _ = a.Authenticate(r)
		}
		if auth.State == StateAuthenticated {
			r = r.WithContext(newContext(r.Context(), auth.Result))
		}
		next.ServeHTTP(w, r)
	})
}

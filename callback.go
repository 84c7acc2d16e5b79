package oidcauth

import (
	"net/http"
	"strings"

	"github.com/oidcauth/oidcauth/session"
)

// isCallback reports whether the request URI targets the callback path.
// Only the path is matched; a query string merely mentioning the callback
// path never routes a request into callback handling. Within the path the
// callback is matched as a constant suffix segment, tolerating a trailing
// ';', '#' or '/' so that path parameters, fragments or sub-paths appended
// by intermediaries still match.
func (a *Authenticator) isCallback(uri string) bool {
	if q := strings.IndexByte(uri, '?'); q >= 0 {
		uri = uri[:q]
	}
	i := strings.Index(uri, a.callbackPath)
	if i < 0 {
		return false
	}
	end := i + len(a.callbackPath)
	if end == len(uri) {
		return true
	}
	switch uri[end] {
	case ';', '#', '/':
		return true
	}
	return false
}

// handleCallback processes the provider's redirect back to the callback
// path: it validates the state parameter against the session's anti-forgery
// token, exchanges the code through the login service, establishes the
// session's authentication and redirects to the post-login target.
func (a *Authenticator) handleCallback(w http.ResponseWriter, r *http.Request, s *session.Session) (Authentication, error) {
	code := r.URL.Query().Get("code")
	if code != "" {
		state := r.URL.Query().Get("state")
		if !validateState(s, state) {
			// Hard failure: a forged or misdirected callback is never
			// retried and never reaches the error page.
			a.logger.Warn("authentication failed 403: invalid state parameter")
			http.Error(w, "Forbidden", http.StatusForbidden)
			return Authentication{State: StateFailed, Reason: ErrInvalidState, ResponseSent: true}, nil
		}

		creds := &Credentials{Code: code, RedirectURI: a.callbackURL(r)}
		result, err := a.Login(r.Context(), creds, s)
		if err == nil {
			target := redirectTarget(s, a.contextPath)
			a.logger.Debug("authenticated", "subject", result.Identity.Subject(), "redirect", target)
			w.Header().Set("Content-Length", "0")
			auth := Authentication{State: StateAuthenticated, Result: result, ResponseSent: true}
			if err := a.sendRedirect(w, r, target); err != nil {
				return auth, err
			}
			return auth, nil
		}
		a.logger.Debug("authentication failed", "error", err)
		return a.sendFailure(w, r, err)
	}

	// No code: a failed or abandoned flow.
	a.logger.Debug("authentication failed: no authorization code")
	return a.sendFailure(w, r, ErrMissingAuthCode)
}

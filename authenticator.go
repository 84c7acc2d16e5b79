package oidcauth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/oidcauth/oidcauth/session"
)

const (
	// DefaultCallbackPath is the fixed path suffix within the context that
	// the provider redirects back to with the authorization code.
	DefaultCallbackPath = "/j_security_check"

	// AuthMethod identifies this authenticator's method.
	AuthMethod = "OPENID"
)

// Authenticator is the per-request authentication state machine. For every
// inbound request it decides whether the caller is already authenticated,
// whether a provider callback must be processed or whether the caller must
// be redirected to the provider to begin the authorization code flow. It is
// safe for concurrent use.
type Authenticator struct {
	cfg      *Config
	login    LoginService
	sessions *session.Manager
	logger   hclog.Logger

	authEndpoint string
	callbackPath string
	contextPath  string

	// errorPage is the redirect target for failures (may carry a query
	// string); errorPath is its path, used for request matching. Both are
	// empty when no error page is configured and failures answer 403.
	errorPage string
	errorPath string
}

// endpointResolver is implemented by login services that learn the
// provider's endpoints via discovery, letting the authenticator reuse the
// discovered authorization endpoint when the config carries none.
type endpointResolver interface {
	AuthEndpoint() string
}

// NewAuthenticator creates an Authenticator over a validated config, a
// login service and a session manager.
// Supported options: WithLogger
func NewAuthenticator(cfg *Config, login LoginService, sessions *session.Manager, opt ...Option) (*Authenticator, error) {
	const op = "oidcauth.NewAuthenticator"
	if cfg == nil {
		return nil, fmt.Errorf("%s: config is nil: %w", op, ErrNilParameter)
	}
	if login == nil {
		return nil, fmt.Errorf("%s: login service is nil: %w", op, ErrNilParameter)
	}
	if sessions == nil {
		return nil, fmt.Errorf("%s: session manager is nil: %w", op, ErrNilParameter)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	opts := getAuthenticatorOpts(opt...)

	a := &Authenticator{
		cfg:          cfg,
		login:        login,
		sessions:     sessions,
		logger:       opts.withLogger,
		callbackPath: cfg.CallbackPath,
		contextPath:  cfg.ContextPath,
		authEndpoint: cfg.AuthEndpoint,
	}
	if a.callbackPath == "" {
		a.callbackPath = DefaultCallbackPath
	}
	if a.authEndpoint == "" {
		if resolver, ok := login.(endpointResolver); ok {
			a.authEndpoint = resolver.AuthEndpoint()
		}
	}
	if a.authEndpoint == "" {
		return nil, fmt.Errorf("%s: no authorization endpoint configured or discovered: %w", op, ErrInvalidParameter)
	}
	a.setErrorPage(cfg.ErrorPage)
	return a, nil
}

// setErrorPage normalizes the configured error page: blank disables it, a
// missing leading slash is prefixed, and the comparison path drops any
// query string.
func (a *Authenticator) setErrorPage(path string) {
	if strings.TrimSpace(path) == "" {
		a.errorPage = ""
		a.errorPath = ""
		return
	}
	if !strings.HasPrefix(path, "/") {
		a.logger.Warn("error page must start with /", "path", path)
		path = "/" + path
	}
	a.errorPage = path
	a.errorPath = path
	if i := strings.Index(a.errorPath, "?"); i > 0 {
		a.errorPath = a.errorPath[:i]
	}
}

// isErrorPage reports whether the given request path (query already
// stripped) is the configured error page.
func (a *Authenticator) isErrorPage(pathInContext string) bool {
	return a.errorPath != "" && pathInContext == a.errorPath
}

// redirectCode picks the redirect status for the request's protocol
// version: HTTP/1.0 clients get 302, everything newer gets 303 so that a
// redirected POST is replayed as GET.
func redirectCode(r *http.Request) int {
	if r.ProtoMajor < 1 || (r.ProtoMajor == 1 && r.ProtoMinor == 0) {
		return http.StatusFound
	}
	return http.StatusSeeOther
}

// sendRedirect writes an authentication-flow redirect. A write failure is
// wrapped and propagated, never swallowed.
func (a *Authenticator) sendRedirect(w http.ResponseWriter, r *http.Request, target string) error {
	const op = "oidcauth.Authenticator.sendRedirect"
	if target == "" {
		return fmt.Errorf("%s: empty redirect target: %w", op, ErrInvalidParameter)
	}
	w.Header().Set("Location", target)
	w.WriteHeader(redirectCode(r))
	if _, err := w.Write(nil); err != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrResponseWrite, err)
	}
	return nil
}

// sendFailure answers a failed authentication: a 403 when no error page is
// configured, otherwise a redirect to the error page under the context
// root.
func (a *Authenticator) sendFailure(w http.ResponseWriter, r *http.Request, reason error) (Authentication, error) {
	failed := Authentication{State: StateFailed, Reason: reason, ResponseSent: true}
	if a.errorPage == "" {
		a.logger.Debug("authentication failed 403")
		http.Error(w, "Forbidden", http.StatusForbidden)
		return failed, nil
	}
	a.logger.Debug("authentication failed", "error_page", a.errorPage)
	if err := a.sendRedirect(w, r, addPaths(a.contextPath, a.errorPage)); err != nil {
		return failed, err
	}
	return failed, nil
}

// addPaths joins two URI path segments without doubling the separator.
func addPaths(p1, p2 string) string {
	switch {
	case p1 == "":
		return p2
	case p2 == "":
		return p1
	case strings.HasSuffix(p1, "/") && strings.HasPrefix(p2, "/"):
		return p1 + p2[1:]
	case !strings.HasSuffix(p1, "/") && !strings.HasPrefix(p2, "/"):
		return p1 + "/" + p2
	default:
		return p1 + p2
	}
}

// Login delegates the credentials to the login service and, on success,
// wraps the result for session-scoped reuse and records the claims and raw
// provider response on the session.
func (a *Authenticator) Login(ctx context.Context, creds *Credentials, s *session.Session) (*AuthenticationResult, error) {
	const op = "oidcauth.Authenticator.Login"
	if creds == nil {
		return nil, fmt.Errorf("%s: credentials are nil: %w", op, ErrNilParameter)
	}
	identity, err := a.login.Login(ctx, creds)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrLoginFailed, err)
	}
	result := &AuthenticationResult{
		Identity:      identity,
		Credentials:   creds,
		Claims:        creds.Claims,
		TokenResponse: creds.Response,
	}
	storeAuthentication(s, result)
	return result, nil
}

// Logout clears the session's cached authentication along with the
// recorded claims and provider response. Any saved request or anti-forgery
// token is left in place; it belongs to a separate, possibly still pending,
// challenge cycle.
func (a *Authenticator) Logout(s *session.Session) {
	if s == nil {
		return
	}
	invalidateAuthentication(s)
}

// PrepareRequest is the pre-dispatch hook compensating for clients
// replaying a redirected POST as GET: when the session already holds a
// completed authentication and a saved original request whose URL exactly
// matches the current one, the request's effective method is overridden to
// the saved method. The saved entry itself is not cleared here; that
// happens during the replay restore in ValidateRequest.
func (a *Authenticator) PrepareRequest(r *http.Request) {
	s, _ := a.sessions.Load(r)
	if s == nil {
		return
	}
	s.Update(func(attrs map[string]any) {
		if attrs[SessionKeyAuthenticated] == nil {
			return
		}
		savedURI, _ := attrs[SessionKeySavedURI].(string)
		if savedURI == "" {
			return
		}
		method, _ := attrs[SessionKeySavedMethod].(string)
		if method == "" {
			return
		}
		if savedURI != requestURL(r) {
			return
		}
		a.logger.Debug("restoring original method", "method", method, "uri", savedURI, "was", r.Method)
		r.Method = method
	})
}

// ValidateRequest runs one authentication decision for the request. When
// mandatory is false the decision is deferred unless the request targets
// the callback path. States that write a response (StateChallenged,
// StateFailed, and StateAuthenticated on a callback) leave the response
// complete; the returned error is non-nil only for I/O failures while
// writing it.
func (a *Authenticator) ValidateRequest(w http.ResponseWriter, r *http.Request, mandatory bool) (Authentication, error) {
	const op = "oidcauth.Authenticator.ValidateRequest"

	uri := r.URL.RequestURI()
	if uri == "" {
		uri = "/"
	}

	mandatory = mandatory || a.isCallback(uri)
	if !mandatory {
		return Authentication{State: StateDeferred}, nil
	}

	// The error page itself must render unauthenticated, or failures would
	// loop back into a challenge forever.
	if a.isErrorPage(strings.TrimPrefix(r.URL.Path, a.contextPath)) && !isDeferred(w) {
		return Authentication{State: StateDeferred}, nil
	}

	s, fromURL := a.sessions.Load(r)
	if fromURL {
		// Cookie transport is required for provider correlation; a URL
		// carried session id is an environment error, fatal for this
		// request.
		a.logger.Warn("session id must arrive via cookie for authentication to work")
		return a.sendFailure(w, r, ErrSessionFromURL)
	}

	if a.isCallback(uri) {
		var err error
		s, err = a.sessions.Ensure(w, r)
		if err != nil {
			return Authentication{}, fmt.Errorf("%s: %w", op, err)
		}
		return a.handleCallback(w, r, s)
	}

	// Look for a cached authentication.
	if s != nil {
		if result := cachedAuthentication(s); result != nil {
			if !a.login.Validate(r.Context(), result.Identity) {
				// Revoked: drop the entry and proceed as unauthenticated,
				// so the identity loses access on this very request.
				a.logger.Debug("cached authentication revoked", "subject", result.Identity.Subject())
				invalidateAuthentication(s)
			} else {
				if saved, ok := tryRestore(s, r); ok && saved.FormParams != nil {
					a.logger.Debug("restoring form parameters", "uri", saved.URL)
					r.PostForm = saved.FormParams
				}
				return Authentication{State: StateAuthenticated, Result: result}, nil
			}
		}
	}

	// An advisory check cannot write a challenge.
	if isDeferred(w) {
		a.logger.Debug("authentication deferred")
		return Authentication{State: StateUnauthenticated}, nil
	}

	// Remember the original request, then challenge.
	if s == nil {
		var err error
		s, err = a.sessions.Ensure(w, r)
		if err != nil {
			return Authentication{}, fmt.Errorf("%s: %w", op, err)
		}
	}
	if err := saveRequest(s, r, a.cfg.AlwaysSaveURI); err != nil {
		return Authentication{}, fmt.Errorf("%s: %w", op, err)
	}
	challenge, err := a.challengeURL(r, s)
	if err != nil {
		return Authentication{}, fmt.Errorf("%s: %w", op, err)
	}
	a.logger.Debug("challenge", "session", s.ID(), "url", challenge)
	challenged := Authentication{State: StateChallenged, ResponseSent: true}
	if err := a.sendRedirect(w, r, challenge); err != nil {
		return challenged, err
	}
	return challenged, nil
}

// Authenticate runs an advisory authentication check for the request: it
// reports a cached authentication when one exists but never writes a
// challenge or failure to the real response.
func (a *Authenticator) Authenticate(r *http.Request) (Authentication, error) {
	return a.ValidateRequest(newDeferredResponse(), r, true)
}

// deferredResponse is a response writer that cannot be committed. The
// dispatcher recognizes it and degrades challenges to a plain
// "unauthenticated" outcome.
type deferredResponse struct {
	header http.Header
}

func newDeferredResponse() *deferredResponse {
	return &deferredResponse{header: make(http.Header)}
}

func (d *deferredResponse) Header() http.Header         { return d.header }
func (d *deferredResponse) Write(b []byte) (int, error) { return len(b), nil }
func (d *deferredResponse) WriteHeader(int)             {}

func isDeferred(w http.ResponseWriter) bool {
	_, ok := w.(*deferredResponse)
	return ok
}

// authenticatorOptions is the set of available options for NewAuthenticator
type authenticatorOptions struct {
	withLogger hclog.Logger
}

func authenticatorDefaults() authenticatorOptions {
	return authenticatorOptions{
		withLogger: hclog.NewNullLogger(),
	}
}

func getAuthenticatorOpts(opt ...Option) authenticatorOptions {
	opts := authenticatorDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

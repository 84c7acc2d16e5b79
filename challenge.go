package oidcauth

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/oidcauth/oidcauth/session"
)

// callbackURL computes the fixed callback URL for a request:
// scheme://host + context path + callback path. No dynamic request
// parameters influence it, so the value sent as redirect_uri with the
// challenge is byte-identical to the one presented during code exchange;
// the provider rejects the flow otherwise.
func (a *Authenticator) callbackURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + a.contextPath + a.callbackPath
}

// challengeURL builds the provider authorization-endpoint redirect for a
// request, ensuring the session carries an anti-forgery token first. The
// query string is assembled in a fixed order with each value
// percent-encoded, and the scope list always leads with "openid".
func (a *Authenticator) challengeURL(r *http.Request, s *session.Session) (string, error) {
	const op = "oidcauth.Authenticator.challengeURL"
	token, err := ensureCSRFToken(s)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	var scopes strings.Builder
	for _, scope := range a.cfg.Scopes {
		scopes.WriteString(" ")
		scopes.WriteString(scope)
	}

	return a.authEndpoint +
		"?client_id=" + url.QueryEscape(a.cfg.ClientID) +
		"&redirect_uri=" + url.QueryEscape(a.callbackURL(r)) +
		"&scope=openid" + url.QueryEscape(scopes.String()) +
		"&state=" + token +
		"&response_type=code", nil
}

package oidcauth

// Session attribute keys. Everything the authenticator stores on a session
// lives under one of these namespaced keys; components that render claims or
// the raw provider response to the application read the same keys.
const (
	// SessionKeyAuthenticated holds the *AuthenticationResult of a
	// completed login.
	SessionKeyAuthenticated = "oidcauth.authenticated"

	// SessionKeyClaims holds the map[string]any of verified id_token claims.
	SessionKeyClaims = "oidcauth.claims"

	// SessionKeyResponse holds the raw provider *Token response.
	SessionKeyResponse = "oidcauth.response"

	// SessionKeySavedURI, SessionKeySavedMethod and SessionKeySavedForm
	// hold the original request preserved across the login detour; the form
	// parameters are present only for form-encoded POSTs.
	SessionKeySavedURI    = "oidcauth.uri"
	SessionKeySavedMethod = "oidcauth.method"
	SessionKeySavedForm   = "oidcauth.post"

	// SessionKeyRedirect holds the post-login redirect destination. It is
	// written alongside the saved request and consumed when the destination
	// is resolved, independent of the method/body replay keys above.
	SessionKeyRedirect = "oidcauth.redirect"

	// SessionKeyCSRFToken holds the per-session anti-forgery token round
	// tripped through the provider as the "state" parameter.
	SessionKeyCSRFToken = "oidcauth.csrf_token"
)

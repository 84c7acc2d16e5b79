// oidcauth implements session-based OpenID Connect authentication (the
// OAuth 2.0 authorization code flow) for Go HTTP servers.
//
// The Authenticator drives the flow for each request: unauthenticated
// requests are saved and redirected to the provider's authorization
// endpoint with a per-session state token, the provider's callback is
// exchanged for tokens through a LoginService, and the resulting
// identity is cached on the session so later requests pass without a
// round trip. ProviderLoginService is the standard LoginService: it
// discovers the provider's endpoints from its issuer URL and verifies
// id_tokens against the provider's published keys.
//
// Sessions live in the session package. The claims from the id_token
// and the raw token response are kept on the session under
// SessionKeyClaims and SessionKeyResponse for application use, and
// RequireAuth / OptionalAuth expose the authenticated identity through
// the request context.
package oidcauth

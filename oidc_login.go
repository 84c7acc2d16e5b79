package oidcauth

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/http"
	"sync"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/oauth2"

	"github.com/oidcauth/oidcauth/internal/strutils"
)

// ProviderLoginService is a LoginService backed by an OIDC provider: it
// exchanges authorization codes at the provider's token endpoint and
// verifies the returned id_token against the provider's signing keys. The
// provider's endpoints and keys are resolved via discovery from the
// config's issuer, which makes an http request to the issuer at
// construction time.
//
// See Done(), which must be called to release the service's background
// resources.
type ProviderLoginService struct {
	cfg      *Config
	client   *http.Client
	endpoint oauth2.Endpoint
	verifier *oidc.IDTokenVerifier
	logger   hclog.Logger

	validateFn func(ctx context.Context, identity Identity) bool

	mu sync.Mutex

	// backgroundCtx is the context used for background activities like
	// refreshing the provider's JWKs key set.
	backgroundCtx       context.Context
	backgroundCtxCancel context.CancelFunc
}

var _ LoginService = (*ProviderLoginService)(nil)

// NewProviderLoginService creates and initializes a ProviderLoginService
// for the given config, which must carry an issuer.
// Supported options: WithLogger, WithValidateFunc
func NewProviderLoginService(cfg *Config, opt ...Option) (*ProviderLoginService, error) {
	const op = "oidcauth.NewProviderLoginService"
	if cfg == nil {
		return nil, fmt.Errorf("%s: config is nil: %w", op, ErrNilParameter)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: config is invalid: %w", op, err)
	}
	if cfg.Issuer == "" {
		return nil, fmt.Errorf("%s: an issuer is required for provider discovery: %w", op, ErrInvalidParameter)
	}
	opts := getLoginServiceOpts(opt...)

	client, err := newProviderClient(cfg.ProviderCA)
	if err != nil {
		return nil, fmt.Errorf("%s: unable to create http client: %w", op, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	l := &ProviderLoginService{
		cfg:                 cfg,
		client:              client,
		logger:              opts.withLogger,
		validateFn:          opts.withValidateFunc,
		backgroundCtx:       ctx,
		backgroundCtxCancel: cancel,
	}

	// makes an http request to the issuer for discovery
	provider, err := oidc.NewProvider(oidc.ClientContext(l.backgroundCtx, client), cfg.Issuer)
	if err != nil {
		l.Done()
		return nil, fmt.Errorf("%s: unable to create provider: %w", op, err)
	}
	l.endpoint = provider.Endpoint()

	algs := make([]string, 0, len(cfg.SupportedSigningAlgs))
	for _, a := range cfg.SupportedSigningAlgs {
		algs = append(algs, string(a))
	}
	verifierCfg := &oidc.Config{
		ClientID:             cfg.ClientID,
		SupportedSigningAlgs: algs,
	}
	if len(cfg.Audiences) > 0 {
		// the "aud" claim is checked manually against the accepted list
		verifierCfg.SkipClientIDCheck = true
	}
	l.verifier = provider.Verifier(verifierCfg)

	return l, nil
}

// Done releases the service's background resources and must be called for
// every ProviderLoginService created.
func (l *ProviderLoginService) Done() {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.backgroundCtxCancel != nil {
		l.backgroundCtxCancel()
		l.backgroundCtxCancel = nil
	}
}

// AuthEndpoint returns the provider's discovered authorization endpoint,
// letting an Authenticator built without explicit endpoints reuse it for
// challenges.
func (l *ProviderLoginService) AuthEndpoint() string {
	return l.endpoint.AuthURL
}

// Login exchanges the authorization code at the provider's token endpoint
// using the credential's redirect URI, verifies the returned id_token and
// extracts its claims. On success the credentials are filled in with the
// verified claims and raw token response, and the id_token's subject
// becomes the identity.
func (l *ProviderLoginService) Login(ctx context.Context, creds *Credentials) (Identity, error) {
	const op = "oidcauth.ProviderLoginService.Login"
	if creds == nil {
		return nil, fmt.Errorf("%s: credentials are nil: %w", op, ErrNilParameter)
	}
	if creds.Code == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrMissingAuthCode)
	}

	scopes := append([]string{oidc.ScopeOpenID}, l.cfg.Scopes...)
	oauthCfg := oauth2.Config{
		ClientID:     l.cfg.ClientID,
		ClientSecret: string(l.cfg.ClientSecret),
		RedirectURL:  creds.RedirectURI,
		Endpoint:     l.endpoint,
		Scopes:       scopes,
	}

	oidcCtx := oidc.ClientContext(ctx, l.client)
	oauthToken, err := oauthCfg.Exchange(oidcCtx, creds.Code)
	if err != nil {
		return nil, fmt.Errorf("%s: unable to exchange auth code with provider: %w", op, err)
	}

	rawIDToken, ok := oauthToken.Extra("id_token").(string)
	if !ok {
		return nil, fmt.Errorf("%s: id_token is missing from auth code exchange: %w", op, ErrMissingIDToken)
	}
	idToken, err := l.verifier.Verify(oidcCtx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrIDTokenVerification, err)
	}
	if len(l.cfg.Audiences) > 0 {
		accepted := append([]string{l.cfg.ClientID}, l.cfg.Audiences...)
		found := false
		for _, aud := range idToken.Audience {
			if strutils.StrListContains(accepted, aud) {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidAudience)
		}
	}

	var claims map[string]any
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("%s: unable to extract id_token claims: %w", op, err)
	}

	creds.Claims = claims
	creds.Response = &Token{
		AccessToken:  oauthToken.AccessToken,
		RefreshToken: oauthToken.RefreshToken,
		IDToken:      rawIDToken,
		Expiry:       oauthToken.Expiry,
	}
	l.logger.Debug("login succeeded", "subject", idToken.Subject)
	return &providerIdentity{subject: idToken.Subject}, nil
}

// Validate consults the configured revocation predicate; without one every
// issued identity stays valid until the session ends.
func (l *ProviderLoginService) Validate(ctx context.Context, identity Identity) bool {
	if l.validateFn == nil {
		return true
	}
	return l.validateFn(ctx, identity)
}

// providerIdentity is the opaque identity issued by a
// ProviderLoginService.
type providerIdentity struct {
	subject string
}

func (i *providerIdentity) Subject() string { return i.subject }

// newProviderClient creates the http client used for requests to the
// provider, trusting the optional CA certificate PEM if provided and the
// system CA chain otherwise.
func newProviderClient(caPEM string) (*http.Client, error) {
	const op = "oidcauth.newProviderClient"
	tr := cleanhttp.DefaultPooledTransport()
	if caPEM != "" {
		certPool := x509.NewCertPool()
		if ok := certPool.AppendCertsFromPEM([]byte(caPEM)); !ok {
			return nil, fmt.Errorf("%s: could not parse CA PEM value: %w", op, ErrInvalidCACert)
		}
		tr.TLSClientConfig = &tls.Config{
			RootCAs: certPool,
		}
	}
	return &http.Client{
		Transport: tr,
	}, nil
}

// loginServiceOptions is the set of available options for
// NewProviderLoginService
type loginServiceOptions struct {
	withLogger       hclog.Logger
	withValidateFunc func(ctx context.Context, identity Identity) bool
}

func loginServiceDefaults() loginServiceOptions {
	return loginServiceOptions{
		withLogger: hclog.NewNullLogger(),
	}
}

func getLoginServiceOpts(opt ...Option) loginServiceOptions {
	opts := loginServiceDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

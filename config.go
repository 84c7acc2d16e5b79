package oidcauth

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/oidcauth/oidcauth/internal/strutils"
)

// ClientSecret is a relying party secret. Its string and json
// representations are redacted so it never lands in logs.
type ClientSecret string

// RedactedClientSecret is the redacted string or json for a client secret
const RedactedClientSecret = "[REDACTED: client secret]"

// String will redact the client secret
func (t ClientSecret) String() string {
	return RedactedClientSecret
}

// MarshalJSON will redact the client secret
func (t ClientSecret) MarshalJSON() ([]byte, error) {
	return json.Marshal(RedactedClientSecret)
}

// Alg represents asymmetric signing algorithms
type Alg string

const (
	RS256 Alg = "RS256"
	RS384 Alg = "RS384"
	RS512 Alg = "RS512"
	ES256 Alg = "ES256"
	ES384 Alg = "ES384"
	ES512 Alg = "ES512"
	PS256 Alg = "PS256"
	PS384 Alg = "PS384"
	PS512 Alg = "PS512"
)

var supportedAlgorithms = map[Alg]bool{
	RS256: true,
	RS384: true,
	RS512: true,
	ES256: true,
	ES384: true,
	ES512: true,
	PS256: true,
	PS384: true,
	PS512: true,
}

// Config holds the relying party configuration for the authenticator and
// the provider login service.
type Config struct {
	// ClientID is the relying party id
	ClientID string

	// ClientSecret is the relying party secret
	ClientSecret ClientSecret

	// Issuer is the provider's issuer URL. When set, the provider's
	// endpoints are resolved via OIDC discovery.
	Issuer string

	// AuthEndpoint and TokenEndpoint configure the provider's endpoints
	// explicitly when discovery is not used. Both must be set together.
	AuthEndpoint  string
	TokenEndpoint string

	// Scopes is a list of additional oidc scopes to request of the
	// provider. The required "openid" scope is always requested and should
	// not be part of this list.
	Scopes []string

	// Audiences is an optional list of case-sensitive strings accepted when
	// verifying an id_token's "aud" claim, in addition to the ClientID.
	Audiences []string

	// SupportedSigningAlgs is a list of id_token signing algorithms
	// accepted during verification. Defaults to RS256.
	SupportedSigningAlgs []Alg

	// CallbackPath is the fixed path suffix within the context that the
	// provider redirects back to. Defaults to DefaultCallbackPath.
	CallbackPath string

	// ContextPath is the prefix the application is mounted under, or empty
	// when it is mounted at the server root.
	ContextPath string

	// ErrorPage is an application path (starting with "/", optionally
	// carrying a query string) that authentication failures redirect to.
	// Empty means failures answer with a plain 403.
	ErrorPage string

	// AlwaysSaveURI re-saves the original request on every challenge
	// redirect instead of only the first within a pending login cycle.
	AlwaysSaveURI bool

	// ProviderCA is an optional CA cert PEM to use when sending requests
	// to the provider.
	ProviderCA string
}

// NewConfig composes a new relying party config.
// Supported options: WithIssuer, WithEndpoints, WithScopes, WithAudiences,
// WithSigningAlgs, WithCallbackPath, WithContextPath, WithErrorPage,
// WithAlwaysSaveURI, WithProviderCA
func NewConfig(clientID string, clientSecret ClientSecret, opt ...Option) (*Config, error) {
	const op = "oidcauth.NewConfig"
	opts := getConfigOpts(opt...)
	c := &Config{
		ClientID:             clientID,
		ClientSecret:         clientSecret,
		Issuer:               opts.withIssuer,
		AuthEndpoint:         opts.withAuthEndpoint,
		TokenEndpoint:        opts.withTokenEndpoint,
		Scopes:               strutils.RemoveDuplicatesStable(opts.withScopes, false),
		Audiences:            opts.withAudiences,
		SupportedSigningAlgs: opts.withSigningAlgs,
		CallbackPath:         opts.withCallbackPath,
		ContextPath:          opts.withContextPath,
		ErrorPage:            opts.withErrorPage,
		AlwaysSaveURI:        opts.withAlwaysSaveURI,
		ProviderCA:           opts.withProviderCA,
	}
	if len(c.SupportedSigningAlgs) == 0 {
		c.SupportedSigningAlgs = []Alg{RS256}
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: invalid configuration: %w", op, err)
	}
	return c, nil
}

// Validate the config. All problems found are reported, not just the first.
func (c *Config) Validate() error {
	const op = "oidcauth.Config.Validate"
	if c == nil {
		return fmt.Errorf("%s: config is nil: %w", op, ErrNilParameter)
	}
	var result *multierror.Error
	if c.ClientID == "" {
		result = multierror.Append(result, fmt.Errorf("%s: client id is empty: %w", op, ErrInvalidParameter))
	}
	if c.ClientSecret == "" {
		result = multierror.Append(result, fmt.Errorf("%s: client secret is empty: %w", op, ErrInvalidParameter))
	}
	switch {
	case c.Issuer != "":
		u, err := url.Parse(c.Issuer)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: issuer %q is invalid: %w", op, c.Issuer, err))
		} else if !strutils.StrListContains([]string{"https", "http"}, u.Scheme) {
			result = multierror.Append(result, fmt.Errorf("%s: issuer %q scheme is not http or https: %w", op, c.Issuer, ErrInvalidParameter))
		}
	case c.AuthEndpoint == "" || c.TokenEndpoint == "":
		result = multierror.Append(result, fmt.Errorf("%s: either an issuer or both provider endpoints are required: %w", op, ErrInvalidParameter))
	}
	if c.CallbackPath != "" && !strings.HasPrefix(c.CallbackPath, "/") {
		result = multierror.Append(result, fmt.Errorf("%s: callback path %q must start with /: %w", op, c.CallbackPath, ErrInvalidParameter))
	}
	for _, a := range c.SupportedSigningAlgs {
		if !supportedAlgorithms[a] {
			result = multierror.Append(result, fmt.Errorf("%s: unsupported algorithm %q: %w", op, a, ErrInvalidParameter))
		}
	}
	return result.ErrorOrNil()
}

// configOptions is the set of available options for Config
type configOptions struct {
	withIssuer        string
	withAuthEndpoint  string
	withTokenEndpoint string
	withScopes        []string
	withAudiences     []string
	withSigningAlgs   []Alg
	withCallbackPath  string
	withContextPath   string
	withErrorPage     string
	withAlwaysSaveURI bool
	withProviderCA    string
}

// getConfigOpts gets the config defaults and applies the opt overrides
// passed in
func getConfigOpts(opt ...Option) configOptions {
	opts := configOptions{}
	ApplyOpts(&opts, opt...)
	return opts
}

// WithIssuer provides the provider's issuer URL for endpoint discovery.
func WithIssuer(issuer string) Option {
	return func(o interface{}) {
		if v, ok := o.(*configOptions); ok {
			v.withIssuer = issuer
		}
	}
}

// WithEndpoints provides the provider's authorization and token endpoints
// explicitly, instead of resolving them via discovery.
func WithEndpoints(authEndpoint, tokenEndpoint string) Option {
	return func(o interface{}) {
		if v, ok := o.(*configOptions); ok {
			v.withAuthEndpoint = authEndpoint
			v.withTokenEndpoint = tokenEndpoint
		}
	}
}

// WithScopes provides an optional list of scopes to request beyond the
// always-requested "openid".
func WithScopes(scopes ...string) Option {
	return func(o interface{}) {
		if v, ok := o.(*configOptions); ok {
			v.withScopes = scopes
		}
	}
}

// WithAudiences provides an optional list of audiences accepted when
// verifying an id_token's "aud" claim.
func WithAudiences(audiences ...string) Option {
	return func(o interface{}) {
		if v, ok := o.(*configOptions); ok {
			v.withAudiences = audiences
		}
	}
}

// WithSigningAlgs provides the id_token signing algorithms accepted during
// verification.
func WithSigningAlgs(algs ...Alg) Option {
	return func(o interface{}) {
		if v, ok := o.(*configOptions); ok {
			v.withSigningAlgs = algs
		}
	}
}

// WithCallbackPath overrides DefaultCallbackPath.
func WithCallbackPath(path string) Option {
	return func(o interface{}) {
		if v, ok := o.(*configOptions); ok {
			v.withCallbackPath = path
		}
	}
}

// WithContextPath provides the path prefix the application is mounted
// under.
func WithContextPath(path string) Option {
	return func(o interface{}) {
		if v, ok := o.(*configOptions); ok {
			v.withContextPath = path
		}
	}
}

// WithErrorPage provides the application path authentication failures
// redirect to.
func WithErrorPage(path string) Option {
	return func(o interface{}) {
		if v, ok := o.(*configOptions); ok {
			v.withErrorPage = path
		}
	}
}

// WithAlwaysSaveURI makes every challenge redirect re-save the original
// request, not just the first within a pending login cycle.
func WithAlwaysSaveURI() Option {
	return func(o interface{}) {
		if v, ok := o.(*configOptions); ok {
			v.withAlwaysSaveURI = true
		}
	}
}

// WithProviderCA provides an optional CA cert PEM for requests to the
// provider.
func WithProviderCA(cert string) Option {
	return func(o interface{}) {
		if v, ok := o.(*configOptions); ok {
			v.withProviderCA = cert
		}
	}
}

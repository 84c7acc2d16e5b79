package oidcauth

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// DefaultEnvPrefix is the environment variable prefix used by
// NewConfigFromEnv when none is given.
const DefaultEnvPrefix = "OIDCAUTH"

// envConfig is the flat environment surface for Config. With the default
// prefix the variables are OIDCAUTH_CLIENT_ID, OIDCAUTH_CLIENT_SECRET,
// OIDCAUTH_ISSUER, etc.
type envConfig struct {
	ClientID      string   `envconfig:"CLIENT_ID" required:"true"`
	ClientSecret  string   `envconfig:"CLIENT_SECRET" required:"true"`
	Issuer        string   `envconfig:"ISSUER"`
	AuthEndpoint  string   `envconfig:"AUTH_ENDPOINT"`
	TokenEndpoint string   `envconfig:"TOKEN_ENDPOINT"`
	Scopes        []string `envconfig:"SCOPES"`
	Audiences     []string `envconfig:"AUDIENCES"`
	SigningAlgs   []string `envconfig:"SIGNING_ALGS"`
	CallbackPath  string   `envconfig:"CALLBACK_PATH"`
	ContextPath   string   `envconfig:"CONTEXT_PATH"`
	ErrorPage     string   `envconfig:"ERROR_PAGE"`
	AlwaysSaveURI bool     `envconfig:"ALWAYS_SAVE_URI"`
	ProviderCA    string   `envconfig:"PROVIDER_CA"`
}

// NewConfigFromEnv builds a Config from environment variables carrying the
// given prefix (DefaultEnvPrefix when empty). The result is validated the
// same way NewConfig validates.
func NewConfigFromEnv(prefix string) (*Config, error) {
	const op = "oidcauth.NewConfigFromEnv"
	if prefix == "" {
		prefix = DefaultEnvPrefix
	}
	var ec envConfig
	if err := envconfig.Process(prefix, &ec); err != nil {
		return nil, fmt.Errorf("%s: unable to process environment: %w", op, err)
	}
	algs := make([]Alg, 0, len(ec.SigningAlgs))
	for _, a := range ec.SigningAlgs {
		algs = append(algs, Alg(a))
	}
	opts := []Option{
		WithIssuer(ec.Issuer),
		WithEndpoints(ec.AuthEndpoint, ec.TokenEndpoint),
		WithScopes(ec.Scopes...),
		WithAudiences(ec.Audiences...),
		WithSigningAlgs(algs...),
		WithCallbackPath(ec.CallbackPath),
		WithContextPath(ec.ContextPath),
		WithErrorPage(ec.ErrorPage),
		WithProviderCA(ec.ProviderCA),
	}
	if ec.AlwaysSaveURI {
		opts = append(opts, WithAlwaysSaveURI())
	}
	return NewConfig(ec.ClientID, ClientSecret(ec.ClientSecret), opts...)
}

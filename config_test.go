package oidcauth

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name         string
		clientID     string
		clientSecret ClientSecret
		opts         []Option
		want         func(*testing.T, *Config)
		wantIsErr    error
	}{
		{
			name:         "valid-with-issuer",
			clientID:     "test-client-id",
			clientSecret: "test-client-secret",
			opts:         []Option{WithIssuer("https://provider.example.com")},
			want: func(t *testing.T, c *Config) {
				assert.Equal(t, "https://provider.example.com", c.Issuer)
				assert.Equal(t, []Alg{RS256}, c.SupportedSigningAlgs)
			},
		},
		{
			name:         "valid-with-endpoints",
			clientID:     "test-client-id",
			clientSecret: "test-client-secret",
			opts:         []Option{WithEndpoints(testAuthEndpoint, testTokenEndpoint)},
			want: func(t *testing.T, c *Config) {
				assert.Equal(t, testAuthEndpoint, c.AuthEndpoint)
				assert.Equal(t, testTokenEndpoint, c.TokenEndpoint)
			},
		},
		{
			name:         "scopes-deduped",
			clientID:     "test-client-id",
			clientSecret: "test-client-secret",
			opts: []Option{
				WithIssuer("https://provider.example.com"),
				WithScopes("profile", "email", "profile"),
			},
			want: func(t *testing.T, c *Config) {
				assert.Equal(t, []string{"profile", "email"}, c.Scopes)
			},
		},
		{
			name:         "missing-client-id",
			clientSecret: "test-client-secret",
			opts:         []Option{WithIssuer("https://provider.example.com")},
			wantIsErr:    ErrInvalidParameter,
		},
		{
			name:      "missing-client-secret",
			clientID:  "test-client-id",
			opts:      []Option{WithIssuer("https://provider.example.com")},
			wantIsErr: ErrInvalidParameter,
		},
		{
			name:         "no-issuer-no-endpoints",
			clientID:     "test-client-id",
			clientSecret: "test-client-secret",
			wantIsErr:    ErrInvalidParameter,
		},
		{
			name:         "only-one-endpoint",
			clientID:     "test-client-id",
			clientSecret: "test-client-secret",
			opts:         []Option{WithEndpoints(testAuthEndpoint, "")},
			wantIsErr:    ErrInvalidParameter,
		},
		{
			name:         "bad-issuer-scheme",
			clientID:     "test-client-id",
			clientSecret: "test-client-secret",
			opts:         []Option{WithIssuer("ldap://provider.example.com")},
			wantIsErr:    ErrInvalidParameter,
		},
		{
			name:         "callback-path-must-be-rooted",
			clientID:     "test-client-id",
			clientSecret: "test-client-secret",
			opts: []Option{
				WithIssuer("https://provider.example.com"),
				WithCallbackPath("callback"),
			},
			wantIsErr: ErrInvalidParameter,
		},
		{
			name:         "unsupported-alg",
			clientID:     "test-client-id",
			clientSecret: "test-client-secret",
			opts: []Option{
				WithIssuer("https://provider.example.com"),
				WithSigningAlgs("HS256"),
			},
			wantIsErr: ErrInvalidParameter,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)
			got, err := NewConfig(tt.clientID, tt.clientSecret, tt.opts...)
			if tt.wantIsErr != nil {
				require.Error(err)
				assert.Truef(errors.Is(err, tt.wantIsErr), "wanted %q but got %q", tt.wantIsErr, err)
				return
			}
			require.NoError(err)
			require.NotNil(got)
			if tt.want != nil {
				tt.want(t, got)
			}
		})
	}
	t.Run("validate-reports-every-problem", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		c := &Config{}
		err := c.Validate()
		require.Error(err)
		assert.Contains(err.Error(), "client id is empty")
		assert.Contains(err.Error(), "client secret is empty")
		assert.Contains(err.Error(), "either an issuer or both provider endpoints are required")
	})
	t.Run("nil-config", func(t *testing.T) {
		assert := assert.New(t)
		var c *Config
		assert.True(errors.Is(c.Validate(), ErrNilParameter))
	})
}

func TestClientSecret_Redaction(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)
	secret := ClientSecret("super-secret")

	assert.Equal(RedactedClientSecret, secret.String())

	b, err := json.Marshal(secret)
	require.NoError(err)
	assert.Equal(`"`+RedactedClientSecret+`"`, string(b))
	assert.NotContains(string(b), "super-secret")
}

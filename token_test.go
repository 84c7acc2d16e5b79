package oidcauth

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToken_Expired(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		expiry time.Time
		want   bool
	}{
		{name: "zero-never-expires", want: false},
		{name: "future", expiry: time.Now().Add(1 * time.Hour), want: false},
		{name: "past", expiry: time.Now().Add(-1 * time.Hour), want: true},
		{name: "within-skew", expiry: time.Now().Add(5 * time.Second), want: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			tk := &Token{AccessToken: "at", Expiry: tt.expiry}
			assert.Equal(t, tt.want, tk.Expired())
		})
	}
}

func TestToken_Valid(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	var nilToken *Token
	assert.False(nilToken.Valid())
	assert.False((&Token{}).Valid())
	assert.False((&Token{AccessToken: "at", Expiry: time.Now().Add(-time.Minute)}).Valid())
	assert.True((&Token{AccessToken: "at"}).Valid())
	assert.True((&Token{AccessToken: "at", Expiry: time.Now().Add(time.Hour)}).Valid())
}

func TestToken_Redaction(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)
	tk := &Token{
		AccessToken:  "secret-access-token",
		RefreshToken: "secret-refresh-token",
		IDToken:      "secret-id-token",
	}

	assert.Equal(RedactedToken, tk.String())

	b, err := json.Marshal(tk)
	require.NoError(err)
	assert.Equal(`"`+RedactedToken+`"`, string(b))
	assert.NotContains(string(b), "secret-access-token")
}

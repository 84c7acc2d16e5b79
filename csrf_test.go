package oidcauth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oidcauth/oidcauth/session"
)

func testSession(t *testing.T) *session.Session {
	t.Helper()
	store := session.NewMemoryStore(0)
	t.Cleanup(store.Stop)
	s, err := store.Create()
	require.NoError(t, err)
	return s
}

func TestEnsureCSRFToken(t *testing.T) {
	t.Parallel()
	t.Run("generates-and-stores", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		s := testSession(t)
		token, err := ensureCSRFToken(s)
		require.NoError(err)
		assert.NotEmpty(token)
		assert.Equal(token, s.Get(SessionKeyCSRFToken))
	})
	t.Run("idempotent-within-cycle", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		s := testSession(t)
		first, err := ensureCSRFToken(s)
		require.NoError(err)
		second, err := ensureCSRFToken(s)
		require.NoError(err)
		assert.Equal(first, second)
	})
	t.Run("unique-across-sessions", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		t1, err := ensureCSRFToken(testSession(t))
		require.NoError(err)
		t2, err := ensureCSRFToken(testSession(t))
		require.NoError(err)
		assert.NotEqual(t1, t2)
	})
}

func TestValidateState(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		state func(token string) string
		want  bool
	}{
		{
			name:  "exact-match",
			state: func(token string) string { return token },
			want:  true,
		},
		{
			name:  "mismatch",
			state: func(string) string { return "forged" },
			want:  false,
		},
		{
			name:  "empty-state",
			state: func(string) string { return "" },
			want:  false,
		},
		{
			name:  "prefix-is-not-a-match",
			state: func(token string) string { return token[:len(token)-1] },
			want:  false,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)
			s := testSession(t)
			token, err := ensureCSRFToken(s)
			require.NoError(err)
			assert.Equal(tt.want, validateState(s, tt.state(token)))
		})
	}
	t.Run("no-token-on-session", func(t *testing.T) {
		assert := assert.New(t)
		s := testSession(t)
		assert.False(validateState(s, ""))
		assert.False(validateState(s, "anything"))
	})
	t.Run("token-survives-failed-validation", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		s := testSession(t)
		token, err := ensureCSRFToken(s)
		require.NoError(err)
		require.False(validateState(s, "forged"))
		// the outstanding challenge stays valid
		assert.True(validateState(s, token))
	})
}

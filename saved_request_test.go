package oidcauth

import (
	"io"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveRequest(t *testing.T) {
	t.Parallel()
	t.Run("get-request", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		s := testSession(t)
		r := httptest.NewRequest("GET", "http://app.example.com/ctx/secret?p=1", nil)
		require.NoError(saveRequest(s, r, false))
		assert.Equal("http://app.example.com/ctx/secret?p=1", s.Get(SessionKeySavedURI))
		assert.Equal("GET", s.Get(SessionKeySavedMethod))
		assert.Equal("http://app.example.com/ctx/secret?p=1", s.Get(SessionKeyRedirect))
		assert.Nil(s.Get(SessionKeySavedForm))
	})
	t.Run("form-post-captures-params", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		s := testSession(t)
		r := httptest.NewRequest("POST", "http://app.example.com/ctx/action", strings.NewReader("a=1&b=2"))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		require.NoError(saveRequest(s, r, false))
		form, ok := s.Get(SessionKeySavedForm).(url.Values)
		require.True(ok)
		assert.Equal("1", form.Get("a"))
		assert.Equal("2", form.Get("b"))
		// body stays replayable for downstream handlers
		body, err := io.ReadAll(r.Body)
		require.NoError(err)
		assert.Equal("a=1&b=2", string(body))
	})
	t.Run("non-form-post-skips-params", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		s := testSession(t)
		r := httptest.NewRequest("POST", "http://app.example.com/ctx/action", strings.NewReader(`{"a":1}`))
		r.Header.Set("Content-Type", "application/json")
		require.NoError(saveRequest(s, r, false))
		assert.Equal("POST", s.Get(SessionKeySavedMethod))
		assert.Nil(s.Get(SessionKeySavedForm))
	})
	t.Run("existing-entry-kept", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		s := testSession(t)
		first := httptest.NewRequest("GET", "http://app.example.com/one", nil)
		require.NoError(saveRequest(s, first, false))
		second := httptest.NewRequest("GET", "http://app.example.com/two", nil)
		require.NoError(saveRequest(s, second, false))
		assert.Equal("http://app.example.com/one", s.Get(SessionKeySavedURI))
	})
	t.Run("always-save-overwrites", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		s := testSession(t)
		first := httptest.NewRequest("GET", "http://app.example.com/one", nil)
		require.NoError(saveRequest(s, first, true))
		second := httptest.NewRequest("GET", "http://app.example.com/two", nil)
		require.NoError(saveRequest(s, second, true))
		assert.Equal("http://app.example.com/two", s.Get(SessionKeySavedURI))
	})
}

func TestTryRestore(t *testing.T) {
	t.Parallel()
	t.Run("exact-match-is-one-shot", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		s := testSession(t)
		r := httptest.NewRequest("POST", "http://app.example.com/ctx/action", strings.NewReader("a=1"))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		require.NoError(saveRequest(s, r, false))

		replay := httptest.NewRequest("GET", "http://app.example.com/ctx/action", nil)
		saved, ok := tryRestore(s, replay)
		require.True(ok)
		assert.Equal("POST", saved.Method)
		assert.Equal("1", saved.FormParams.Get("a"))

		// the entry is consumed; a second identical request finds nothing
		_, ok = tryRestore(s, replay)
		assert.False(ok)
	})
	t.Run("query-difference-is-a-mismatch", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		s := testSession(t)
		r := httptest.NewRequest("GET", "http://app.example.com/doc?v=1", nil)
		require.NoError(saveRequest(s, r, false))

		other := httptest.NewRequest("GET", "http://app.example.com/doc?v=2", nil)
		_, ok := tryRestore(s, other)
		assert.False(ok)
		// a mismatch never consumes another request's pending replay
		assert.Equal("http://app.example.com/doc?v=1", s.Get(SessionKeySavedURI))
	})
	t.Run("nothing-saved", func(t *testing.T) {
		assert := assert.New(t)
		s := testSession(t)
		_, ok := tryRestore(s, httptest.NewRequest("GET", "http://app.example.com/", nil))
		assert.False(ok)
	})
}

func TestRedirectTarget(t *testing.T) {
	t.Parallel()
	t.Run("consumes-recorded-target", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		s := testSession(t)
		r := httptest.NewRequest("GET", "http://app.example.com/ctx/secret", nil)
		require.NoError(saveRequest(s, r, false))

		assert.Equal("http://app.example.com/ctx/secret", redirectTarget(s, "/ctx"))
		assert.Nil(s.Get(SessionKeyRedirect))
		// the replay entries stay for the redirected request itself
		assert.Equal("http://app.example.com/ctx/secret", s.Get(SessionKeySavedURI))
	})
	t.Run("falls-back-to-context-path", func(t *testing.T) {
		assert := assert.New(t)
		assert.Equal("/ctx", redirectTarget(testSession(t), "/ctx"))
	})
	t.Run("falls-back-to-root", func(t *testing.T) {
		assert := assert.New(t)
		assert.Equal("/", redirectTarget(testSession(t), ""))
	})
}

func TestRequestURL(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	r := httptest.NewRequest("GET", "http://app.example.com/a/b?x=1&y=2", nil)
	assert.Equal("http://app.example.com/a/b?x=1&y=2", requestURL(r))

	tlsReq := httptest.NewRequest("GET", "https://app.example.com/a", nil)
	assert.Equal("https://app.example.com/a", requestURL(tlsReq))
}

package oidcauth

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"

	"github.com/oidcauth/oidcauth/session"
)

// SavedRequest is the original request preserved across the redirect-based
// login detour. FormParams is non-nil only when Method is POST and the
// original content type was form-encoded.
type SavedRequest struct {
	URL        string
	Method     string
	FormParams url.Values
}

// requestURL reconstructs the full URL of an inbound request, including any
// query string. The same reconstruction is used when saving a request and
// when comparing against a saved one, so the comparison is byte-exact.
func requestURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}

func isFormEncoded(contentType string) bool {
	if contentType == "" {
		return false
	}
	mt, _, err := mime.ParseMediaType(contentType)
	return err == nil && mt == "application/x-www-form-urlencoded"
}

// saveRequest captures the request's URL, method and (for form-encoded
// POSTs) decoded body parameters on the session, so the request can be
// replayed once the login detour completes. An existing saved request is
// kept unless alwaysSave is set. The redirect destination is recorded under
// its own key and consumed independently by redirectTarget.
func saveRequest(s *session.Session, r *http.Request, alwaysSave bool) error {
	const op = "oidcauth.saveRequest"

	var form url.Values
	if r.Method == http.MethodPost && isFormEncoded(r.Header.Get("Content-Type")) && r.Body != nil {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return fmt.Errorf("%s: unable to read form body: %w", op, err)
		}
		// leave the body replayable for downstream handlers
		r.Body = io.NopCloser(bytes.NewReader(body))
		form, err = url.ParseQuery(string(body))
		if err != nil {
			return fmt.Errorf("%s: unable to decode form body: %w", op, err)
		}
	}

	s.Update(func(attrs map[string]any) {
		if existing, ok := attrs[SessionKeySavedURI].(string); ok && existing != "" && !alwaysSave {
			return
		}
		u := requestURL(r)
		attrs[SessionKeySavedURI] = u
		attrs[SessionKeySavedMethod] = r.Method
		attrs[SessionKeyRedirect] = u
		if form != nil {
			attrs[SessionKeySavedForm] = form
		} else {
			delete(attrs, SessionKeySavedForm)
		}
	})
	return nil
}

// tryRestore compares the stored URL against the current request's
// reconstructed URL. On an exact match it returns the saved request and
// deletes the stored entry (one-shot). On a mismatch or absence the stored
// entry is left untouched: a request for a different resource never
// consumes another request's pending replay. Any difference, including the
// query string, is a mismatch.
func tryRestore(s *session.Session, r *http.Request) (*SavedRequest, bool) {
	var saved *SavedRequest
	s.Update(func(attrs map[string]any) {
		u, ok := attrs[SessionKeySavedURI].(string)
		if !ok || u == "" {
			return
		}
		if u != requestURL(r) {
			return
		}
		saved = &SavedRequest{URL: u}
		saved.Method, _ = attrs[SessionKeySavedMethod].(string)
		saved.FormParams, _ = attrs[SessionKeySavedForm].(url.Values)
		delete(attrs, SessionKeySavedURI)
		delete(attrs, SessionKeySavedMethod)
		delete(attrs, SessionKeySavedForm)
	})
	return saved, saved != nil
}

// redirectTarget resolves the post-login redirect destination: the URL
// recorded at challenge time, or the context root when none was recorded.
// The destination entry is always consumed, independent of the method/body
// replay entries, which are cleared later by tryRestore on the replayed
// request itself.
func redirectTarget(s *session.Session, contextPath string) string {
	var target string
	s.Update(func(attrs map[string]any) {
		target, _ = attrs[SessionKeyRedirect].(string)
		delete(attrs, SessionKeyRedirect)
	})
	if target == "" {
		target = contextPath
		if target == "" {
			target = "/"
		}
	}
	return target
}

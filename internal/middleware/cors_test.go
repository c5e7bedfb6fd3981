package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func corsRequest(t *testing.T, origins []string, method, origin string) (*httptest.ResponseRecorder, bool) {
	t.Helper()

	reached := false
	h := CORS(origins)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(method, "/api/chat", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w, reached
}

func TestOptionsShortCircuits(t *testing.T) {
	t.Parallel()

	w, reached := corsRequest(t, []string{"*"}, http.MethodOptions, "https://app.example.com")
	if reached {
		t.Error("OPTIONS request reached the next handler")
	}
	if w.Code != http.StatusOK {
		t.Errorf("OPTIONS status = %d, want 200", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Errorf("Allow-Origin = %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Methods"); got == "" {
		t.Error("Allow-Methods header missing")
	}
}

func TestWildcardWithoutOrigin(t *testing.T) {
	t.Parallel()

	w, reached := corsRequest(t, []string{"*"}, http.MethodGet, "")
	if !reached {
		t.Error("GET request did not reach the next handler")
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Allow-Origin = %q, want *", got)
	}
}

func TestExplicitOriginAllowsCredentials(t *testing.T) {
	t.Parallel()

	w, _ := corsRequest(t, []string{"https://app.example.com"}, http.MethodGet, "https://app.example.com")
	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("Allow-Credentials = %q, want true", got)
	}
}

func TestUnlistedOriginGetsNoHeaders(t *testing.T) {
	t.Parallel()

	w, reached := corsRequest(t, []string{"https://app.example.com"}, http.MethodGet, "https://evil.example.com")
	if !reached {
		t.Error("request should still be served without CORS headers")
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Allow-Origin = %q, want empty for unlisted origin", got)
	}
}

func TestWildcardNeverAllowsCredentials(t *testing.T) {
	t.Parallel()

	w, _ := corsRequest(t, []string{"*"}, http.MethodGet, "https://anywhere.example.com")
	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "" {
		t.Errorf("Allow-Credentials = %q, want unset for wildcard match", got)
	}
}

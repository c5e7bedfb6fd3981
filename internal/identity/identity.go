// Package identity resolves the per-request user identity.
package identity

import (
	"context"
	"net"
	"net/http"
	"regexp"
	"strings"

	"github.com/spboyer/social-media-post-ge/internal/domain"
)

const (
	// UserHeaderName carries the user ID when it is not passed as a query
	// parameter.
	UserHeaderName = "X-User-ID"
	// UserQueryParam is checked before the header.
	UserQueryParam = "userId"
)

type contextKey int

const userIDKey contextKey = iota

var userIDPattern = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,128}$`)

// UserIDFromContext extracts the user ID from the request context. Outside
// the middleware it falls back to the single-user sentinel.
func UserIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(userIDKey).(string); ok {
		return v
	}
	return domain.DefaultUserID
}

// WithUserID returns a context carrying the given user ID. Used by tests and
// the CLI client.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func userIDFromRequest(r *http.Request) string {
	id := r.URL.Query().Get(UserQueryParam)
	if id == "" {
		id = r.Header.Get(UserHeaderName)
	}
	id = strings.TrimSpace(id)
	if id == "" || !userIDPattern.MatchString(id) {
		return domain.DefaultUserID
	}
	return id
}

// Middleware resolves the request's user ID from the userId query parameter
// or the X-User-ID header, falling back to the single-user sentinel, and
// stores it in the request context.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), userIDKey, userIDFromRequest(r))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IPFromRequest returns a normalized remote IP for optional request tracing.
func IPFromRequest(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

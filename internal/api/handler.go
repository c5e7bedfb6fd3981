// Package api provides the HTTP handlers for the post generator API.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/spboyer/social-media-post-ge/internal/config"
	"github.com/spboyer/social-media-post-ge/internal/store"
)

// maxRequestBodySize is the maximum allowed request body size (1MB).
const maxRequestBodySize = 1 << 20

// Handler provides common handler dependencies.
type Handler struct {
	store store.Store
	cfg   *config.Config
}

// NewHandler creates a new Handler with common dependencies.
func NewHandler(st store.Store, cfg *config.Config) *Handler {
	return &Handler{store: st, cfg: cfg}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Success writes a success envelope, merging the payload fields beside
// "success": true.
func Success(w http.ResponseWriter, status int, payload map[string]interface{}) {
	body := map[string]interface{}{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	JSON(w, status, body)
}

// Error writes a JSON error envelope.
func Error(w http.ResponseWriter, status int, errCode string) {
	JSON(w, status, map[string]string{"error": errCode})
}

// ErrorWithMessage writes a JSON error envelope with a human-readable detail.
func ErrorWithMessage(w http.ResponseWriter, status int, errCode, message string) {
	JSON(w, status, map[string]string{"error": errCode, "message": message})
}

// NotFound is the router's fallback for unknown paths.
func NotFound(w http.ResponseWriter, r *http.Request) {
	Error(w, http.StatusNotFound, "not_found")
}

// MethodNotAllowed is the router's fallback for known paths with an
// unsupported method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	Error(w, http.StatusMethodNotAllowed, "method_not_allowed")
}

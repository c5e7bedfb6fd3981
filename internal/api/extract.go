package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/spboyer/social-media-post-ge/internal/extract"
)

// ExtractHandler handles URL content extraction requests.
type ExtractHandler struct {
	*Handler
	extractor *extract.Extractor
}

// NewExtractHandler creates an extract handler.
func NewExtractHandler(base *Handler, extractor *extract.Extractor) *ExtractHandler {
	return &ExtractHandler{Handler: base, extractor: extractor}
}

// RegisterRoutes registers the extract route.
func (h *ExtractHandler) RegisterRoutes(r chi.Router) {
	r.Post("/api/extract-url", h.Extract)
}

type extractRequest struct {
	URL string `json:"url"`
}

// Extract fetches a URL and returns its text content for generation. Fetch
// failures degrade to a placeholder block; only malformed input is an error.
func (h *ExtractHandler) Extract(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	var req extractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ErrorWithMessage(w, http.StatusBadRequest, "validation_error", "invalid request body")
		return
	}
	if req.URL == "" {
		ErrorWithMessage(w, http.StatusBadRequest, "validation_error", "url is required")
		return
	}
	if err := extract.ValidateURL(req.URL); err != nil {
		ErrorWithMessage(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	res := h.extractor.Extract(r.Context(), req.URL)
	if res.Fallback {
		slog.Warn("url extraction degraded to fallback", "url", req.URL)
	}

	Success(w, http.StatusOK, map[string]interface{}{
		"extractedContent": res.Content,
		"metadata": map[string]interface{}{
			"url":       req.URL,
			"title":     res.Title,
			"fallback":  res.Fallback,
			"length":    len(res.Content),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	})
}

package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/spboyer/social-media-post-ge/internal/domain"
	"github.com/spboyer/social-media-post-ge/internal/identity"
)

// DataHandler handles named-value storage requests.
type DataHandler struct {
	*Handler
}

// NewDataHandler creates a data handler.
func NewDataHandler(base *Handler) *DataHandler {
	return &DataHandler{Handler: base}
}

// RegisterRoutes registers the data routes.
func (h *DataHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/data", h.List)
	r.Get("/api/data/{key}", h.Get)
	r.Post("/api/data/{key}", h.Put)
	r.Delete("/api/data/{key}", h.Delete)
}

func keyFromRequest(w http.ResponseWriter, r *http.Request) (string, bool) {
	key := chi.URLParam(r, "key")
	if err := domain.ValidateKey(key); err != nil {
		ErrorWithMessage(w, http.StatusBadRequest, "validation_error", err.Error())
		return "", false
	}
	return key, true
}

// List returns the keys stored for the requesting user with their update
// times. Values are omitted; clients fetch them per key.
func (h *DataHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())

	values, err := h.store.List(r.Context(), userID)
	if err != nil {
		slog.Error("data list failed", "user_id", userID, "error", err)
		Error(w, http.StatusInternalServerError, "storage_error")
		return
	}

	keys := make([]map[string]interface{}, 0, len(values))
	for _, nv := range values {
		keys = append(keys, map[string]interface{}{
			"key":       nv.Key,
			"updatedAt": nv.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}
	Success(w, http.StatusOK, map[string]interface{}{
		"keys":  keys,
		"count": len(keys),
	})
}

// Get returns the current value for a key, or null when none is stored.
func (h *DataHandler) Get(w http.ResponseWriter, r *http.Request) {
	key, ok := keyFromRequest(w, r)
	if !ok {
		return
	}
	userID := identity.UserIDFromContext(r.Context())

	nv, err := h.store.Get(r.Context(), userID, key)
	if err != nil {
		slog.Error("data get failed", "key", key, "user_id", userID, "error", err)
		Error(w, http.StatusInternalServerError, "storage_error")
		return
	}

	var value interface{}
	if nv != nil {
		value = nv.Value
	}
	Success(w, http.StatusOK, map[string]interface{}{
		"key":   key,
		"value": value,
	})
}

type putRequest struct {
	// RawMessage distinguishes an absent field (nil) from an explicit JSON
	// null ("null"); only the former is a validation error.
	Value json.RawMessage `json:"value"`
}

// Put upserts the value for a key.
func (h *DataHandler) Put(w http.ResponseWriter, r *http.Request) {
	key, ok := keyFromRequest(w, r)
	if !ok {
		return
	}
	userID := identity.UserIDFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	var req putRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ErrorWithMessage(w, http.StatusBadRequest, "validation_error", "invalid request body")
		return
	}
	if req.Value == nil {
		ErrorWithMessage(w, http.StatusBadRequest, "validation_error", "value field is required")
		return
	}

	nv := &domain.NamedValue{
		Key:       key,
		UserID:    userID,
		Value:     req.Value,
		UpdatedAt: time.Now().UTC(),
	}
	if err := h.store.Put(r.Context(), nv); err != nil {
		slog.Error("data put failed", "key", key, "user_id", userID, "error", err)
		Error(w, http.StatusInternalServerError, "storage_error")
		return
	}

	Success(w, http.StatusOK, map[string]interface{}{
		"key":   key,
		"value": req.Value,
	})
}

// Delete removes the value for a key and reports whether one existed.
func (h *DataHandler) Delete(w http.ResponseWriter, r *http.Request) {
	key, ok := keyFromRequest(w, r)
	if !ok {
		return
	}
	userID := identity.UserIDFromContext(r.Context())

	deleted, err := h.store.Delete(r.Context(), userID, key)
	if err != nil {
		slog.Error("data delete failed", "key", key, "user_id", userID, "error", err)
		Error(w, http.StatusInternalServerError, "storage_error")
		return
	}

	Success(w, http.StatusOK, map[string]interface{}{
		"key":     key,
		"deleted": deleted,
	})
}

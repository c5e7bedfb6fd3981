package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestJSON(t *testing.T) {
	w := httptest.NewRecorder()
	data := map[string]string{"foo": "bar"}

	JSON(w, http.StatusOK, data)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected Content-Type application/json, got %q", ct)
	}

	var got map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if got["foo"] != "bar" {
		t.Errorf("Expected foo=bar, got %v", got["foo"])
	}
}

func TestSuccessEnvelope(t *testing.T) {
	w := httptest.NewRecorder()

	Success(w, http.StatusOK, map[string]interface{}{"posts": map[string]string{"twitter": "hi"}})

	var got map[string]interface{}
	if err := json.NewDecoder(w.Result().Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if got["success"] != true {
		t.Errorf("Expected success=true, got %v", got["success"])
	}
	if _, ok := got["posts"]; !ok {
		t.Error("Expected posts key in envelope")
	}
}

func TestErrorEnvelope(t *testing.T) {
	w := httptest.NewRecorder()

	Error(w, http.StatusInternalServerError, "storage_error")

	resp := w.Result()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", resp.StatusCode)
	}

	var got map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if got["error"] != "storage_error" {
		t.Errorf("Expected error=storage_error, got %q", got["error"])
	}
	if _, ok := got["message"]; ok {
		t.Error("Expected no message key when none was provided")
	}
}

func TestErrorWithMessageEnvelope(t *testing.T) {
	w := httptest.NewRecorder()

	ErrorWithMessage(w, http.StatusBadRequest, "validation_error", "content is required")

	resp := w.Result()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", resp.StatusCode)
	}

	var got map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if got["error"] != "validation_error" {
		t.Errorf("Expected error=validation_error, got %q", got["error"])
	}
	if got["message"] != "content is required" {
		t.Errorf("Expected message to carry the detail, got %q", got["message"])
	}
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	w := httptest.NewRecorder()
	NotFound(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	MethodNotAllowed(w, httptest.NewRequest(http.MethodPut, "/api/chat", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected status 405, got %d", w.Code)
	}

	var got map[string]string
	if err := json.NewDecoder(w.Result().Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if got["error"] != "method_not_allowed" {
		t.Errorf("Expected error=method_not_allowed, got %q", got["error"])
	}
}

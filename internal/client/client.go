// Package client provides a typed HTTP client for the post generator API,
// used by the CLI and by the data-sync layer.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/spboyer/social-media-post-ge/internal/identity"
)

// Client talks to the post generator HTTP/JSON API.
type Client struct {
	baseURL    string
	userID     string
	httpClient *http.Client
}

// New creates a client targeting the given base URL
// (e.g. "http://localhost:8080"). When userID is non-empty it is sent as the
// X-User-ID header on every request.
func New(baseURL, userID string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userID:     userID,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// UserID returns the identity the client sends with each request.
func (c *Client) UserID() string { return c.userID }

// --- Named values ---

// GetValue fetches the value stored under key. A missing value decodes as the
// JSON literal null.
func (c *Client) GetValue(ctx context.Context, key string) (json.RawMessage, error) {
	var resp struct {
		Value json.RawMessage `json:"value"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/data/"+url.PathEscape(key), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Value, nil
}

// SetValue stores value under key, replacing any previous value.
func (c *Client) SetValue(ctx context.Context, key string, value json.RawMessage) error {
	if value == nil {
		value = json.RawMessage("null")
	}
	body := map[string]json.RawMessage{"value": value}
	return c.doJSON(ctx, http.MethodPost, "/api/data/"+url.PathEscape(key), body, nil)
}

// DeleteValue removes the value under key and reports whether one existed.
func (c *Client) DeleteValue(ctx context.Context, key string) (bool, error) {
	var resp struct {
		Deleted bool `json:"deleted"`
	}
	if err := c.doJSON(ctx, http.MethodDelete, "/api/data/"+url.PathEscape(key), nil, &resp); err != nil {
		return false, err
	}
	return resp.Deleted, nil
}

// KeySummary describes one stored key without its value.
type KeySummary struct {
	Key       string `json:"key"`
	UpdatedAt string `json:"updatedAt"`
}

// ListValues returns the keys stored for the client's user, ordered by key.
func (c *Client) ListValues(ctx context.Context) ([]KeySummary, error) {
	var resp struct {
		Keys []KeySummary `json:"keys"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/data", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Keys, nil
}

// --- Generation ---

// ChatRequest asks the server to generate posts for the named platforms.
type ChatRequest struct {
	Content   string   `json:"content"`
	Platforms []string `json:"platforms"`
	IsURL     bool     `json:"isUrl"`
}

// ChatMetadata describes a generation run.
type ChatMetadata struct {
	Timestamp string `json:"timestamp"`
	Count     int    `json:"count"`
	IsURL     bool   `json:"isUrl"`
}

// ChatResponse carries one generated post per requested platform.
type ChatResponse struct {
	Posts    map[string]string `json:"posts"`
	Metadata ChatMetadata      `json:"metadata"`
}

// GeneratePosts generates platform-tailored posts for the request content.
func (c *Client) GeneratePosts(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	var resp ChatResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/chat", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// --- URL extraction ---

// ExtractMetadata describes an extraction result.
type ExtractMetadata struct {
	URL      string `json:"url"`
	Title    string `json:"title"`
	Fallback bool   `json:"fallback"`
	Length   int    `json:"length"`
}

// ExtractResponse carries the text block extracted from a web page.
type ExtractResponse struct {
	ExtractedContent string          `json:"extractedContent"`
	Metadata         ExtractMetadata `json:"metadata"`
}

// ExtractURL asks the server to fetch rawURL and extract readable content.
func (c *Client) ExtractURL(ctx context.Context, rawURL string) (*ExtractResponse, error) {
	body := map[string]string{"url": rawURL}
	var resp ExtractResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/extract-url", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// --- Health ---

// HealthStatus reports server readiness per dependency.
type HealthStatus struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services"`
}

// Health returns the server's health report. A degraded server answers 503
// with a valid body, so status codes are not treated as errors here.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/health", nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	c.setIdentity(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	var status HealthStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return &status, nil
}

// --- internal helpers ---

// APIError represents an error envelope returned by the server.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Code)
}

func (c *Client) setIdentity(req *http.Request) {
	if c.userID != "" {
		req.Header.Set(identity.UserHeaderName, c.userID)
	}
}

// doJSON performs an HTTP request with optional JSON body and decodes the JSON
// response. If result is nil, the response body is discarded.
func (c *Client) doJSON(ctx context.Context, method, path string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.setIdentity(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			return &APIError{StatusCode: resp.StatusCode, Code: errResp.Error, Message: errResp.Message}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}

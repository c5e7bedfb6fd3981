// Package auth supplies bearer tokens for outbound service calls.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// refreshSkew is how long before expiry a cached token is treated as stale.
const refreshSkew = 2 * time.Minute

// TokenProvider supplies a bearer token for outbound requests. Implementations
// are safe for concurrent use.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// Static is a TokenProvider that always returns the same token. It backs
// API-key style credentials and tests.
type Static string

func (s Static) Token(ctx context.Context) (string, error) {
	return string(s), nil
}

// ClientCredentials fetches tokens from an OAuth2 client-credentials endpoint
// and caches them until shortly before expiry.
type ClientCredentials struct {
	tokenURL     string
	clientID     string
	clientSecret string
	scope        string
	client       *http.Client

	mu     sync.Mutex
	token  string
	expiry time.Time
}

// NewClientCredentials creates a caching client-credentials token provider.
func NewClientCredentials(tokenURL, clientID, clientSecret, scope string) *ClientCredentials {
	return &ClientCredentials{
		tokenURL:     tokenURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		scope:        scope,
		client:       &http.Client{Timeout: 15 * time.Second},
	}
}

// Token returns the cached token, fetching a fresh one when the cache is
// empty or within the refresh skew of expiring. Concurrent callers share a
// single fetch.
func (p *ClientCredentials) Token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.token != "" && time.Now().Before(p.expiry.Add(-refreshSkew)) {
		return p.token, nil
	}

	token, expiry, err := p.fetch(ctx)
	if err != nil {
		return "", err
	}

	p.token = token
	p.expiry = expiry
	return token, nil
}

func (p *ClientCredentials) fetch(ctx context.Context) (string, time.Time, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", p.clientID)
	form.Set("client_secret", p.clientSecret)
	if p.scope != "" {
		form.Set("scope", p.scope)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("request token: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", time.Time{}, fmt.Errorf("token endpoint returned %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var tr struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", time.Time{}, fmt.Errorf("decode token response: %w", err)
	}
	if tr.AccessToken == "" {
		return "", time.Time{}, fmt.Errorf("token endpoint returned empty access_token")
	}

	expiresIn := tr.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = 3600
	}

	return tr.AccessToken, time.Now().Add(time.Duration(expiresIn) * time.Second), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

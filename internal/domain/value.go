// Package domain contains core domain types for the post generator.
package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"
)

// DefaultUserID is the sentinel user scope used when no multi-user identity
// is in play (single-user installs, the CLI without --user).
const DefaultUserID = "default-user"

// Well-known named-value keys shared by the API and the client.
const (
	KeySelectedPlatforms = "selected-platforms"
	KeySavedGenerations  = "saved-generations"
)

// ErrInvalidKey is returned when a named-value key fails validation.
var ErrInvalidKey = errors.New("invalid key")

// keyPattern constrains keys to URL-path-safe slugs.
var keyPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]{0,127}$`)

// NamedValue is one persisted key/value record scoped to a user. For a given
// (UserID, Key) pair at most one current value exists; writes replace it
// wholesale (last-write-wins, no versioning).
type NamedValue struct {
	Key       string          `json:"key"`
	UserID    string          `json:"user_id"`
	Value     json.RawMessage `json:"value"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ValidateKey reports whether key is acceptable as a named-value key.
func ValidateKey(key string) error {
	if !keyPattern.MatchString(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

// NormalizeUserID substitutes the sentinel for an empty user ID.
func NormalizeUserID(userID string) string {
	if userID == "" {
		return DefaultUserID
	}
	return userID
}

// DecodeSelectedPlatforms decodes the selected-platforms payload. A nil or
// JSON-null payload decodes to an empty selection.
func DecodeSelectedPlatforms(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode selected platforms: %w", err)
	}
	return out, nil
}

// EncodeSelectedPlatforms encodes a platform selection payload.
func EncodeSelectedPlatforms(platforms []string) (json.RawMessage, error) {
	if platforms == nil {
		platforms = []string{}
	}
	raw, err := json.Marshal(platforms)
	if err != nil {
		return nil, fmt.Errorf("encode selected platforms: %w", err)
	}
	return raw, nil
}

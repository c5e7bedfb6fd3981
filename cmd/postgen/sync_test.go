package main

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/spboyer/social-media-post-ge/internal/domain"
)

func TestDescribeSelection(t *testing.T) {
	if got := describeSelection(json.RawMessage(defaultSelection)); got != "2 platform(s)" {
		t.Errorf("default selection: got %q", got)
	}
	if got := describeSelection(json.RawMessage("null")); got != "0 platform(s)" {
		t.Errorf("null selection: got %q", got)
	}
	if got := describeSelection(json.RawMessage(`{"not":"a list"}`)); got != "unreadable" {
		t.Errorf("malformed selection: got %q", got)
	}
}

func TestDescribeHistory(t *testing.T) {
	if got := describeHistory(json.RawMessage("null")); got != "0 generation(s)" {
		t.Errorf("empty history: got %q", got)
	}
	if got := describeHistory(json.RawMessage(`[{"id":"gen-1"},{"id":"gen-2"}]`)); got != "2 generation(s)" {
		t.Errorf("two entries: got %q", got)
	}
}

func TestStatusForOffline(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	apiClient = nil

	rep, err := statusFor(context.Background(), domain.KeySelectedPlatforms, defaultSelection, describeSelection)
	if err != nil {
		t.Fatalf("statusFor: %v", err)
	}
	if rep.Key != domain.KeySelectedPlatforms {
		t.Errorf("key = %q", rep.Key)
	}
	if rep.Local != "2 platform(s)" {
		t.Errorf("local = %q, want seeded default", rep.Local)
	}
	if rep.Freshness != "unavailable" {
		t.Errorf("freshness = %q, want unavailable without a server", rep.Freshness)
	}
}

package platform

import (
	"reflect"
	"testing"
)

func TestGetKnownPlatforms(t *testing.T) {
	t.Parallel()

	for _, id := range []string{LinkedIn, Instagram, Twitter, Facebook} {
		cfg, ok := Get(id)
		if !ok {
			t.Fatalf("Get(%q) reported unknown platform", id)
		}
		if cfg.ID != id {
			t.Errorf("Get(%q).ID = %q", id, cfg.ID)
		}
		if cfg.Name == "" || cfg.Tone == "" {
			t.Errorf("Get(%q) has empty presentation fields: %+v", id, cfg)
		}
		if cfg.MaxLength <= 0 {
			t.Errorf("Get(%q).MaxLength = %d, want > 0", id, cfg.MaxLength)
		}
		if cfg.MinHashtags <= 0 || cfg.MaxHashtags < cfg.MinHashtags {
			t.Errorf("Get(%q) hashtag range invalid: %d-%d", id, cfg.MinHashtags, cfg.MaxHashtags)
		}
	}
}

func TestGetUnknownPlatform(t *testing.T) {
	t.Parallel()

	if _, ok := Get("myspace"); ok {
		t.Error("Get(\"myspace\") should report unknown")
	}
	if Valid("") {
		t.Error("Valid(\"\") should be false")
	}
}

func TestTwitterLimit(t *testing.T) {
	t.Parallel()

	cfg, _ := Get(Twitter)
	if cfg.MaxLength != 280 {
		t.Errorf("Twitter MaxLength = %d, want 280", cfg.MaxLength)
	}
}

func TestIDsStableOrder(t *testing.T) {
	t.Parallel()

	want := []string{"linkedin", "instagram", "twitter", "facebook"}
	if got := IDs(); !reflect.DeepEqual(got, want) {
		t.Errorf("IDs() = %v, want %v", got, want)
	}

	// All must follow the same order as IDs.
	all := All()
	if len(all) != len(want) {
		t.Fatalf("All() returned %d configs, want %d", len(all), len(want))
	}
	for i, cfg := range all {
		if cfg.ID != want[i] {
			t.Errorf("All()[%d].ID = %q, want %q", i, cfg.ID, want[i])
		}
	}
}

func TestIDsReturnsCopy(t *testing.T) {
	t.Parallel()

	got := IDs()
	got[0] = "mutated"
	if IDs()[0] == "mutated" {
		t.Error("IDs() shares its backing array with callers")
	}
}

func TestInvalid(t *testing.T) {
	t.Parallel()

	got := Invalid([]string{"twitter", "tiktok", "linkedin", "orkut"})
	want := []string{"tiktok", "orkut"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Invalid() = %v, want %v", got, want)
	}

	if bad := Invalid([]string{"facebook"}); bad != nil {
		t.Errorf("Invalid(valid) = %v, want nil", bad)
	}
}

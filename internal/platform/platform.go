// Package platform defines the supported social networks and their posting
// constraints. It is the single source of truth for both the API handlers and
// the CLI client; per-platform limits must never be duplicated elsewhere.
package platform

// Config describes one social network's posting constraints and presentation
// metadata.
type Config struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	MaxLength   int    `json:"max_length"`
	Tone        string `json:"tone"`
	MinHashtags int    `json:"min_hashtags"`
	MaxHashtags int    `json:"max_hashtags"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
}

// Supported platform identifiers.
const (
	LinkedIn  = "linkedin"
	Instagram = "instagram"
	Twitter   = "twitter"
	Facebook  = "facebook"
)

// ids fixes the presentation order; configs is keyed by platform ID.
var (
	ids = []string{LinkedIn, Instagram, Twitter, Facebook}

	configs = map[string]Config{
		LinkedIn: {
			ID:          LinkedIn,
			Name:        "LinkedIn",
			MaxLength:   3000,
			Tone:        "professional and insightful, suited to an industry audience",
			MinHashtags: 3,
			MaxHashtags: 5,
			Icon:        "in",
			Color:       "#0A66C2",
		},
		Instagram: {
			ID:          Instagram,
			Name:        "Instagram",
			MaxLength:   2200,
			Tone:        "casual and visual-first, emoji-friendly",
			MinHashtags: 8,
			MaxHashtags: 15,
			Icon:        "ig",
			Color:       "#E4405F",
		},
		Twitter: {
			ID:          Twitter,
			Name:        "Twitter",
			MaxLength:   280,
			Tone:        "punchy and conversational",
			MinHashtags: 1,
			MaxHashtags: 2,
			Icon:        "tw",
			Color:       "#1DA1F2",
		},
		Facebook: {
			ID:          Facebook,
			Name:        "Facebook",
			MaxLength:   63206,
			Tone:        "friendly and community-oriented",
			MinHashtags: 2,
			MaxHashtags: 4,
			Icon:        "fb",
			Color:       "#1877F2",
		},
	}
)

// Get returns the configuration for a platform ID.
func Get(id string) (Config, bool) {
	cfg, ok := configs[id]
	return cfg, ok
}

// Valid reports whether id names a supported platform.
func Valid(id string) bool {
	_, ok := configs[id]
	return ok
}

// IDs returns the supported platform identifiers in presentation order.
// The returned slice is a copy and safe to modify.
func IDs() []string {
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

// All returns the configurations for every supported platform in
// presentation order.
func All() []Config {
	out := make([]Config, 0, len(ids))
	for _, id := range ids {
		out = append(out, configs[id])
	}
	return out
}

// Invalid returns the subset of the given IDs that do not name a supported
// platform, preserving order.
func Invalid(requested []string) []string {
	var bad []string
	for _, id := range requested {
		if !Valid(id) {
			bad = append(bad, id)
		}
	}
	return bad
}

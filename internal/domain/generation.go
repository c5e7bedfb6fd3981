package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Generation records one post-generation event: the content it was produced
// from and the per-platform output. Generations are immutable once created;
// history mutations are limited to prepend and delete.
type Generation struct {
	ID            string            `json:"id"`
	Timestamp     time.Time         `json:"timestamp"`
	SourceContent string            `json:"source_content"`
	IsURLDerived  bool              `json:"is_url_derived"`
	Platforms     []string          `json:"platforms"`
	Posts         map[string]string `json:"posts"`
}

// Summary returns a short single-line description for list views.
func (g Generation) Summary(maxLen int) string {
	s := g.SourceContent
	if maxLen > 3 && len(s) > maxLen {
		s = s[:maxLen-3] + "..."
	}
	return s
}

// DecodeGenerations decodes the saved-generations payload. A nil or JSON-null
// payload decodes to an empty history.
func DecodeGenerations(raw json.RawMessage) ([]Generation, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var out []Generation
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode generations: %w", err)
	}
	return out, nil
}

// EncodeGenerations encodes a generation history payload.
func EncodeGenerations(gens []Generation) (json.RawMessage, error) {
	if gens == nil {
		gens = []Generation{}
	}
	raw, err := json.Marshal(gens)
	if err != nil {
		return nil, fmt.Errorf("encode generations: %w", err)
	}
	return raw, nil
}

// PrependGeneration returns the history payload with g added at the front,
// decoding prev (which may be nil) first. Used as a sync-store updater so the
// append composes with the current in-memory value.
func PrependGeneration(prev json.RawMessage, g Generation) (json.RawMessage, error) {
	gens, err := DecodeGenerations(prev)
	if err != nil {
		// Corrupt history is discarded, not returned as an error.
		gens = nil
	}
	return EncodeGenerations(append([]Generation{g}, gens...))
}

// RemoveGeneration returns the history payload with the generation whose ID
// matches removed, and reports whether it was present.
func RemoveGeneration(prev json.RawMessage, id string) (json.RawMessage, bool, error) {
	gens, err := DecodeGenerations(prev)
	if err != nil {
		return nil, false, err
	}
	kept := gens[:0]
	found := false
	for _, g := range gens {
		if g.ID == id {
			found = true
			continue
		}
		kept = append(kept, g)
	}
	raw, err := EncodeGenerations(kept)
	return raw, found, err
}

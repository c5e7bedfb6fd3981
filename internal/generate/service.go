package generate

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/spboyer/social-media-post-ge/internal/platform"
)

// Service fans a generation request out across platforms and assembles the
// per-platform results.
type Service struct {
	gen Generator
}

// NewService creates a Service backed by the given generator.
func NewService(gen Generator) *Service {
	return &Service{gen: gen}
}

// GeneratePosts produces one post per requested platform identifier. The
// identifiers must already be validated against the platform registry.
// Platforms run concurrently; a failure on one platform does not fail the
// request, its entry becomes an inline error string instead. The second
// return value lists the identifiers whose generation failed, in request
// order.
func (s *Service) GeneratePosts(ctx context.Context, content string, platformIDs []string, isURL bool) (map[string]string, []string) {
	posts := make(map[string]string, len(platformIDs))
	errored := make(map[string]bool)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, id := range platformIDs {
		cfg, ok := platform.Get(id)
		if !ok {
			continue
		}

		wg.Add(1)
		go func(id string, cfg platform.Config) {
			defer wg.Done()

			text, err := s.gen.GeneratePost(ctx, Request{Platform: cfg, Content: content, IsURL: isURL})
			if err != nil {
				slog.Error("post generation failed", "platform", id, "error", err)
				text = fmt.Sprintf("Failed to generate %s content. Please try again.", cfg.Name)
			} else if runes := []rune(text); len(runes) > cfg.MaxLength {
				text = string(runes[:cfg.MaxLength])
			}

			mu.Lock()
			posts[id] = text
			if err != nil {
				errored[id] = true
			}
			mu.Unlock()
		}(id, cfg)
	}

	wg.Wait()

	var failed []string
	for _, id := range platformIDs {
		if errored[id] {
			failed = append(failed, id)
		}
	}
	return posts, failed
}

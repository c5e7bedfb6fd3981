// Package generate produces platform-tailored social media posts.
package generate

import (
	"context"

	"github.com/spboyer/social-media-post-ge/internal/platform"
)

// Request describes one post to generate for one platform.
type Request struct {
	Platform platform.Config
	Content  string
	IsURL    bool
}

// Generator produces the text of a single post. Implementations are safe for
// concurrent use; the service fans requests out across platforms.
type Generator interface {
	GeneratePost(ctx context.Context, req Request) (string, error)
}

package generate

import (
	"fmt"
	"strings"
)

const systemPrompt = "You are a social media content expert. You write posts that fit each " +
	"platform's culture and constraints exactly. Respond with the post text only, " +
	"no preamble and no surrounding quotes."

// userPrompt renders the platform-specific instruction block for a request.
// Tone, hashtag counts and the length ceiling come from the platform config.
func userPrompt(req Request) string {
	cfg := req.Platform

	var b strings.Builder
	fmt.Fprintf(&b, "Write a %s post for %s.\n\n", cfg.Tone, cfg.Name)
	fmt.Fprintf(&b, "Constraints:\n")
	fmt.Fprintf(&b, "- Maximum %d characters.\n", cfg.MaxLength)
	fmt.Fprintf(&b, "- Include %d-%d relevant hashtags.\n", cfg.MinHashtags, cfg.MaxHashtags)
	fmt.Fprintf(&b, "- Tone: %s.\n\n", cfg.Tone)

	if req.IsURL {
		fmt.Fprintf(&b, "The post should summarize and promote this extracted article content:\n\n%s", req.Content)
	} else {
		fmt.Fprintf(&b, "The post is about:\n\n%s", req.Content)
	}

	return b.String()
}

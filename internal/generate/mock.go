package generate

import (
	"context"
	"strings"
	"unicode"
)

// Mock implements Generator without any upstream service. Output is
// deterministic for a given request, which keeps development and tests
// reproducible.
type Mock struct{}

var toneOpeners = map[string]string{
	"professional": "Sharing some thoughts:",
	"casual":       "You have to see this ✨",
	"punchy":       "Hot take:",
	"friendly":     "Hey everyone!",
}

var fillHashtags = []string{"#SocialMedia", "#ContentCreation", "#DigitalMarketing", "#Community", "#Growth"}

func (Mock) GeneratePost(ctx context.Context, req Request) (string, error) {
	cfg := req.Platform

	// Tones are free-form phrases; match on their leading word.
	opener := "Sharing this:"
	for prefix, o := range toneOpeners {
		if strings.HasPrefix(cfg.Tone, prefix) {
			opener = o
			break
		}
	}

	topic := topicLine(req.Content)
	body := opener + " " + topic
	if req.IsURL {
		body += " Full story at the link."
	}

	// Append hashtags while they fit under the platform ceiling.
	tags := hashtags(req.Content, cfg.MinHashtags)
	post := body
	for _, tag := range tags {
		candidate := post + " " + tag
		if len([]rune(candidate)) > cfg.MaxLength {
			break
		}
		post = candidate
	}

	if runes := []rune(post); len(runes) > cfg.MaxLength {
		post = string(runes[:cfg.MaxLength])
	}

	return post, nil
}

// topicLine condenses the source content into a single short sentence.
func topicLine(content string) string {
	line := strings.TrimSpace(content)
	if i := strings.IndexAny(line, "\r\n"); i >= 0 {
		line = strings.TrimSpace(line[:i])
	}
	runes := []rune(line)
	if len(runes) > 120 {
		line = strings.TrimSpace(string(runes[:120])) + "..."
	}
	if line == "" {
		line = "Something new is on the way."
	}
	return line
}

// hashtags derives count tags from the content's significant words, padding
// from a fixed list when the content is too short.
func hashtags(content string, count int) []string {
	seen := make(map[string]bool)
	var tags []string

	for _, word := range strings.FieldsFunc(content, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if len(tags) >= count {
			break
		}
		if len(word) < 4 {
			continue
		}
		tag := "#" + titleWord(word)
		if seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}

	for _, tag := range fillHashtags {
		if len(tags) >= count {
			break
		}
		if seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}

	return tags
}

func titleWord(word string) string {
	runes := []rune(strings.ToLower(word))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

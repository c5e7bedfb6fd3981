// Package extract fetches a web page and reduces it to a plain-text block
// suitable for feeding into post generation.
package extract

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/spboyer/social-media-post-ge/internal/config"
)

const userAgent = "Mozilla/5.0 (compatible; PostGenBot/1.0; +https://github.com/spboyer/social-media-post-ge)"

// maxFetchBytes bounds how much of a page is read before extraction.
const maxFetchBytes = 2 << 20

var (
	scriptRe   = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script>`)
	styleRe    = regexp.MustCompile(`(?is)<style\b[^>]*>.*?</style>`)
	tagRe      = regexp.MustCompile(`(?s)<[^>]*>`)
	titleRe    = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	metaDescRe = []*regexp.Regexp{
		regexp.MustCompile(`(?is)<meta[^>]*name=["']description["'][^>]*content=["']([^"']*)["']`),
		regexp.MustCompile(`(?is)<meta[^>]*content=["']([^"']*)["'][^>]*name=["']description["']`),
	}
	spaceRe = regexp.MustCompile(`\s+`)
)

// ValidateURL checks that raw parses as an absolute http or https URL.
// Validation failures are the caller's 400; nothing is fetched here.
func ValidateURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("malformed URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https")
	}
	if u.Host == "" {
		return fmt.Errorf("URL has no host")
	}
	return nil
}

// Result is the outcome of one extraction. Fallback marks results where the
// fetch or extraction failed and Content holds the placeholder block instead
// of page text.
type Result struct {
	Content  string
	Title    string
	Fallback bool
}

// Extractor fetches pages with a bounded timeout and strips them to text.
type Extractor struct {
	client   *http.Client
	maxChars int
}

// New creates an Extractor from configuration.
func New(cfg config.ExtractConfig) *Extractor {
	return &Extractor{
		client:   &http.Client{Timeout: cfg.Timeout},
		maxChars: cfg.MaxChars,
	}
}

// Extract fetches rawURL and composes a Title/Description/Content text block.
// Fetch errors, timeouts, bad statuses and empty pages all degrade to a
// fallback placeholder rather than an error; the URL must already be
// validated.
func (e *Extractor) Extract(ctx context.Context, rawURL string) Result {
	page, err := e.fetch(ctx, rawURL)
	if err != nil {
		return fallback(rawURL)
	}

	title := matchFirst(titleRe, page)
	description := ""
	for _, re := range metaDescRe {
		if description = matchFirst(re, page); description != "" {
			break
		}
	}
	body := pageText(page)

	if title == "" && description == "" && body == "" {
		return fallback(rawURL)
	}

	if runes := []rune(body); len(runes) > e.maxChars {
		body = string(runes[:e.maxChars]) + "..."
	}

	var b strings.Builder
	if title != "" {
		fmt.Fprintf(&b, "Title: %s\n", title)
	}
	if description != "" {
		fmt.Fprintf(&b, "Description: %s\n", description)
	}
	if body != "" {
		fmt.Fprintf(&b, "\nContent: %s", body)
	}

	return Result{Content: strings.TrimSpace(b.String()), Title: title}
}

func (e *Extractor) fetch(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("create fetch request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("fetch returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return "", fmt.Errorf("read page body: %w", err)
	}

	return string(body), nil
}

// pageText strips script and style blocks, then all remaining markup, and
// collapses whitespace.
func pageText(page string) string {
	text := scriptRe.ReplaceAllString(page, " ")
	text = styleRe.ReplaceAllString(text, " ")
	text = tagRe.ReplaceAllString(text, " ")
	text = html.UnescapeString(text)
	return strings.TrimSpace(spaceRe.ReplaceAllString(text, " "))
}

func matchFirst(re *regexp.Regexp, page string) string {
	m := re.FindStringSubmatch(page)
	if len(m) < 2 {
		return ""
	}
	text := html.UnescapeString(m[1])
	return strings.TrimSpace(spaceRe.ReplaceAllString(text, " "))
}

func fallback(rawURL string) Result {
	content := fmt.Sprintf("Content from %s\n\nUnable to extract content from this URL. The generated posts will reference the link directly.", rawURL)
	return Result{Content: content, Fallback: true}
}

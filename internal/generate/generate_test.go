package generate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/spboyer/social-media-post-ge/internal/config"
	"github.com/spboyer/social-media-post-ge/internal/platform"
)

func mustPlatform(t *testing.T, id string) platform.Config {
	t.Helper()
	cfg, ok := platform.Get(id)
	if !ok {
		t.Fatalf("unknown platform %q", id)
	}
	return cfg
}

func TestMockIsDeterministic(t *testing.T) {
	t.Parallel()

	req := Request{
		Platform: mustPlatform(t, platform.LinkedIn),
		Content:  "Launching our new developer platform next week",
	}

	first, err := Mock{}.GeneratePost(context.Background(), req)
	if err != nil {
		t.Fatalf("GeneratePost: %v", err)
	}
	second, _ := Mock{}.GeneratePost(context.Background(), req)
	if first != second {
		t.Errorf("mock output changed between calls:\n%q\n%q", first, second)
	}
	if !strings.Contains(first, "Launching our new developer platform") {
		t.Errorf("mock output does not mention the content: %q", first)
	}
	if !strings.Contains(first, "#") {
		t.Errorf("mock output has no hashtags: %q", first)
	}
}

func TestMockRespectsPlatformLimit(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("television ", 80)
	for _, id := range platform.IDs() {
		cfg := mustPlatform(t, id)
		post, err := Mock{}.GeneratePost(context.Background(), Request{Platform: cfg, Content: long})
		if err != nil {
			t.Fatalf("%s: GeneratePost: %v", id, err)
		}
		if n := len([]rune(post)); n > cfg.MaxLength {
			t.Errorf("%s: post length %d exceeds limit %d", id, n, cfg.MaxLength)
		}
	}
}

func TestMockEmptyContent(t *testing.T) {
	t.Parallel()

	post, err := Mock{}.GeneratePost(context.Background(), Request{
		Platform: mustPlatform(t, platform.Twitter),
		Content:  "   ",
	})
	if err != nil {
		t.Fatalf("GeneratePost: %v", err)
	}
	if strings.TrimSpace(post) == "" {
		t.Error("mock produced an empty post for blank content")
	}
}

// flakyGenerator fails for the platforms in fail and echoes otherwise.
type flakyGenerator struct {
	mu    sync.Mutex
	fail  map[string]bool
	calls []string
}

func (f *flakyGenerator) GeneratePost(ctx context.Context, req Request) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req.Platform.ID)
	f.mu.Unlock()
	if f.fail[req.Platform.ID] {
		return "", errors.New("upstream exploded")
	}
	return "post for " + req.Platform.ID, nil
}

func TestServiceOneEntryPerPlatform(t *testing.T) {
	t.Parallel()

	gen := &flakyGenerator{}
	svc := NewService(gen)

	ids := []string{platform.LinkedIn, platform.Twitter, platform.Facebook}
	posts, failed := svc.GeneratePosts(context.Background(), "content", ids, false)

	if len(posts) != len(ids) {
		t.Fatalf("posts has %d entries, want %d: %v", len(posts), len(ids), posts)
	}
	for _, id := range ids {
		if posts[id] != "post for "+id {
			t.Errorf("posts[%s] = %q", id, posts[id])
		}
	}
	if len(failed) != 0 {
		t.Errorf("failed = %v, want none", failed)
	}
}

func TestServiceInlineErrorEntry(t *testing.T) {
	t.Parallel()

	gen := &flakyGenerator{fail: map[string]bool{platform.Twitter: true}}
	svc := NewService(gen)

	posts, failed := svc.GeneratePosts(context.Background(), "content", []string{platform.Twitter, platform.LinkedIn}, false)

	if len(posts) != 2 {
		t.Fatalf("posts = %v", posts)
	}
	if posts[platform.LinkedIn] != "post for linkedin" {
		t.Errorf("healthy platform affected by sibling failure: %q", posts[platform.LinkedIn])
	}
	if !strings.Contains(posts[platform.Twitter], "Failed to generate") {
		t.Errorf("failed platform entry = %q, want inline error text", posts[platform.Twitter])
	}
	if len(failed) != 1 || failed[0] != platform.Twitter {
		t.Errorf("failed = %v, want [%s]", failed, platform.Twitter)
	}
}

type oversizeGenerator struct{}

func (oversizeGenerator) GeneratePost(ctx context.Context, req Request) (string, error) {
	return strings.Repeat("x", req.Platform.MaxLength+50), nil
}

func TestServiceTruncatesOversizeOutput(t *testing.T) {
	t.Parallel()

	svc := NewService(oversizeGenerator{})
	posts, _ := svc.GeneratePosts(context.Background(), "c", []string{platform.Twitter}, false)

	cfg := mustPlatform(t, platform.Twitter)
	if n := len([]rune(posts[platform.Twitter])); n != cfg.MaxLength {
		t.Errorf("truncated length = %d, want %d", n, cfg.MaxLength)
	}
}

func openAITestConfig(endpoint string) config.GeneratorConfig {
	return config.GeneratorConfig{
		Mode:      config.GeneratorOpenAI,
		MaxTokens: 256,
		OpenAI: config.OpenAIConfig{
			Endpoint:   endpoint,
			Deployment: "gpt-4o",
			APIVersion: "2024-02-15-preview",
			APIKey:     "sk-test",
		},
	}
}

func TestOpenAIGeneratePost(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wantPath := "/openai/deployments/gpt-4o/chat/completions"
		if r.URL.Path != wantPath {
			t.Errorf("path = %q, want %q", r.URL.Path, wantPath)
		}
		if got := r.URL.Query().Get("api-version"); got != "2024-02-15-preview" {
			t.Errorf("api-version = %q", got)
		}
		if got := r.Header.Get("api-key"); got != "sk-test" {
			t.Errorf("api-key header = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"choices":[{"message":{"content":"  a generated post  "}}]}`)
	}))
	t.Cleanup(srv.Close)

	gen := NewOpenAI(openAITestConfig(srv.URL), nil)
	got, err := gen.GeneratePost(context.Background(), Request{
		Platform: mustPlatform(t, platform.LinkedIn),
		Content:  "topic",
	})
	if err != nil {
		t.Fatalf("GeneratePost: %v", err)
	}
	if got != "a generated post" {
		t.Errorf("GeneratePost = %q", got)
	}
}

func TestOpenAIBearerAuth(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-123" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("api-key"); got != "" {
			t.Errorf("api-key header set alongside bearer auth: %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"choices":[{"message":{"content":"ok"}}]}`)
	}))
	t.Cleanup(srv.Close)

	gen := NewOpenAI(openAITestConfig(srv.URL), staticTokens("tok-123"))
	if _, err := gen.GeneratePost(context.Background(), Request{Platform: mustPlatform(t, platform.Twitter), Content: "c"}); err != nil {
		t.Fatalf("GeneratePost: %v", err)
	}
}

type staticTokens string

func (s staticTokens) Token(ctx context.Context) (string, error) { return string(s), nil }

func TestOpenAIUpstreamError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"message":"rate limited"}}`)
	}))
	t.Cleanup(srv.Close)

	gen := NewOpenAI(openAITestConfig(srv.URL), nil)
	_, err := gen.GeneratePost(context.Background(), Request{Platform: mustPlatform(t, platform.Twitter), Content: "c"})
	if err == nil || !strings.Contains(err.Error(), "rate limited") {
		t.Fatalf("GeneratePost error = %v, want upstream message", err)
	}
}

func TestOpenAIEmptyChoices(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"choices":[]}`)
	}))
	t.Cleanup(srv.Close)

	gen := NewOpenAI(openAITestConfig(srv.URL), nil)
	if _, err := gen.GeneratePost(context.Background(), Request{Platform: mustPlatform(t, platform.Twitter), Content: "c"}); err == nil {
		t.Fatal("GeneratePost = nil error, want no-choices failure")
	}
}

func TestPromptCarriesPlatformConstraints(t *testing.T) {
	t.Parallel()

	cfg := mustPlatform(t, platform.Instagram)
	got := userPrompt(Request{Platform: cfg, Content: "beach day"})

	for _, want := range []string{"Instagram", "2200", "8-15", "casual", "beach day"} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q:\n%s", want, got)
		}
	}
}

func TestPromptMarksURLContent(t *testing.T) {
	t.Parallel()

	got := userPrompt(Request{Platform: mustPlatform(t, platform.Twitter), Content: "Title: x", IsURL: true})
	if !strings.Contains(got, "extracted article content") {
		t.Errorf("URL-derived prompt missing article framing:\n%s", got)
	}
}

package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spboyer/social-media-post-ge/internal/auth"
	"github.com/spboyer/social-media-post-ge/internal/config"
)

// OpenAI implements Generator against an Azure OpenAI chat-completions
// deployment.
type OpenAI struct {
	endpoint   string
	deployment string
	apiVersion string
	apiKey     string
	tokens     auth.TokenProvider
	maxTokens  int
	client     *http.Client
}

// NewOpenAI creates a chat-completions backed generator. When tokens is
// non-nil it authenticates with bearer tokens; otherwise the configured API
// key is sent in the api-key header.
func NewOpenAI(cfg config.GeneratorConfig, tokens auth.TokenProvider) *OpenAI {
	return &OpenAI{
		endpoint:   strings.TrimRight(cfg.OpenAI.Endpoint, "/"),
		deployment: cfg.OpenAI.Deployment,
		apiVersion: cfg.OpenAI.APIVersion,
		apiKey:     cfg.OpenAI.APIKey,
		tokens:     tokens,
		maxTokens:  cfg.MaxTokens,
		client:     &http.Client{Timeout: 60 * time.Second},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// GeneratePost renders the prompt for the request and asks the deployment for
// a completion.
func (o *OpenAI) GeneratePost(ctx context.Context, req Request) (string, error) {
	body, err := json.Marshal(chatRequest{
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt(req)},
		},
		MaxTokens:   o.maxTokens,
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("encode completion request: %w", err)
	}

	url := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		o.endpoint, o.deployment, o.apiVersion)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create completion request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	if o.tokens != nil {
		token, err := o.tokens.Token(ctx)
		if err != nil {
			return "", fmt.Errorf("acquire token: %w", err)
		}
		httpReq.Header.Set("Authorization", "Bearer "+token)
	} else {
		httpReq.Header.Set("api-key", o.apiKey)
	}

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("completion request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("read completion response: %w", err)
	}

	var cr chatResponse
	if err := json.Unmarshal(respBody, &cr); err != nil {
		return "", fmt.Errorf("decode completion response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK {
		if cr.Error != nil && cr.Error.Message != "" {
			return "", fmt.Errorf("completion endpoint returned %d: %s", resp.StatusCode, cr.Error.Message)
		}
		return "", fmt.Errorf("completion endpoint returned %d", resp.StatusCode)
	}

	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("completion response contained no choices")
	}

	text := strings.TrimSpace(cr.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("completion response contained empty content")
	}

	return text, nil
}

package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/spboyer/social-media-post-ge/internal/audit"
	"github.com/spboyer/social-media-post-ge/internal/generate"
	"github.com/spboyer/social-media-post-ge/internal/identity"
	"github.com/spboyer/social-media-post-ge/internal/platform"
)

// RateLimiter implements a sliding-window per-user rate limiter.
type RateLimiter struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	limit    int
	window   time.Duration
}

// NewRateLimiter creates a rate limiter and starts its background eviction
// goroutine.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
	}
	rl.startEviction()
	return rl
}

// Allow checks if a request is allowed for the given key.
func (r *RateLimiter) Allow(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-r.window)

	var recent []time.Time
	for _, t := range r.requests[key] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}

	if len(recent) >= r.limit {
		r.requests[key] = recent
		return false
	}

	r.requests[key] = append(recent, now)
	return true
}

// startEviction periodically removes expired keys from the requests map,
// preventing unbounded memory growth.
func (r *RateLimiter) startEviction() {
	go func() {
		ticker := time.NewTicker(r.window)
		defer ticker.Stop()
		for range ticker.C {
			r.mu.Lock()
			cutoff := time.Now().Add(-r.window)
			for key, times := range r.requests {
				var fresh []time.Time
				for _, t := range times {
					if t.After(cutoff) {
						fresh = append(fresh, t)
					}
				}
				if len(fresh) == 0 {
					delete(r.requests, key)
				} else {
					r.requests[key] = fresh
				}
			}
			r.mu.Unlock()
		}
	}()
}

// ChatHandler handles post generation requests.
type ChatHandler struct {
	*Handler
	svc     *generate.Service
	limiter *RateLimiter
	log     *audit.Logger
}

// NewChatHandler creates a chat handler. The rate limiter is nil when
// limiting is disabled in configuration; a nil audit logger disables
// generation auditing.
func NewChatHandler(base *Handler, svc *generate.Service, log *audit.Logger) *ChatHandler {
	h := &ChatHandler{Handler: base, svc: svc, log: log}
	if base.cfg.RateLimit.Enabled {
		h.limiter = NewRateLimiter(base.cfg.RateLimit.PerMinute, time.Minute)
	}
	return h
}

// RegisterRoutes registers the chat route.
func (h *ChatHandler) RegisterRoutes(r chi.Router) {
	r.Post("/api/chat", h.Chat)
}

type chatRequest struct {
	Content   string   `json:"content"`
	Platforms []string `json:"platforms"`
	IsURL     bool     `json:"isUrl"`
}

// Chat generates one post per requested platform.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())

	if h.limiter != nil && !h.limiter.Allow(userID) {
		Error(w, http.StatusTooManyRequests, "rate_limit_exceeded")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ErrorWithMessage(w, http.StatusBadRequest, "validation_error", "invalid request body")
		return
	}

	if strings.TrimSpace(req.Content) == "" {
		ErrorWithMessage(w, http.StatusBadRequest, "validation_error", "content is required")
		return
	}
	if len(req.Platforms) == 0 {
		ErrorWithMessage(w, http.StatusBadRequest, "validation_error", "platforms must be a non-empty array")
		return
	}
	if unknown := platform.Invalid(req.Platforms); len(unknown) > 0 {
		ErrorWithMessage(w, http.StatusBadRequest, "validation_error",
			"unknown platforms: "+strings.Join(unknown, ", "))
		return
	}

	platforms := dedupe(req.Platforms)

	slog.Info("generating posts",
		"user_id", userID,
		"platforms", platforms,
		"is_url", req.IsURL,
		"content_length", len(req.Content),
	)

	start := time.Now()
	posts, failed := h.svc.GeneratePosts(r.Context(), req.Content, platforms, req.IsURL)

	h.log.Record(audit.Event{
		Timestamp:     start.UTC().Format(time.RFC3339Nano),
		UserID:        userID,
		RequestID:     chiMiddleware.GetReqID(r.Context()),
		Platforms:     platforms,
		Failed:        failed,
		IsURL:         req.IsURL,
		ContentLength: len(req.Content),
		DurationMS:    time.Since(start).Milliseconds(),
	})

	Success(w, http.StatusOK, map[string]interface{}{
		"posts": posts,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"count":     len(posts),
			"isUrl":     req.IsURL,
		},
	})
}

// dedupe keeps the first occurrence of each identifier, preserving request
// order.
func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

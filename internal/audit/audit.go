// Package audit records post generation outcomes as NDJSON files.
package audit

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/spboyer/social-media-post-ge/internal/config"
)

// Event is one generation audit record. Platforms lists the requested
// identifiers after deduplication; Failed is the subset whose generation
// returned an error and was replaced with inline failure text.
type Event struct {
	Timestamp     string   `json:"timestamp"`
	UserID        string   `json:"user_id"`
	RequestID     string   `json:"request_id,omitempty"`
	Platforms     []string `json:"platforms"`
	Failed        []string `json:"failed,omitempty"`
	IsURL         bool     `json:"is_url"`
	ContentLength int      `json:"content_length"`
	DurationMS    int64    `json:"duration_ms"`
}

// Logger appends events to a per-day NDJSON file from a background goroutine.
// A nil *Logger is a no-op, which is how audit logging is disabled. Record
// must not be called after Close.
type Logger struct {
	dir     string
	queue   chan Event
	done    chan struct{}
	log     *slog.Logger
	dropped atomic.Int64

	// Owned by the run goroutine.
	file *os.File
	day  string
}

// NewLogger creates the audit logger and starts its writer goroutine.
// Returns (nil, nil) when audit logging is disabled.
func NewLogger(cfg config.AuditLogConfig, log *slog.Logger) (*Logger, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return nil, fmt.Errorf("create audit log directory: %w", err)
	}

	l := &Logger{
		dir:   cfg.Dir,
		queue: make(chan Event, cfg.QueueSize),
		done:  make(chan struct{}),
		log:   log,
	}
	go l.run()
	return l, nil
}

// Record enqueues an event without blocking. When the queue is full the event
// is dropped and counted.
func (l *Logger) Record(e Event) {
	if l == nil {
		return
	}
	select {
	case l.queue <- e:
	default:
		l.dropped.Add(1)
	}
}

// Close drains the queue, closes the current file and reports drop counts.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	close(l.queue)
	<-l.done
	if n := l.dropped.Load(); n > 0 {
		l.log.Warn("audit events dropped", "count", n)
	}
	return nil
}

func (l *Logger) run() {
	defer close(l.done)
	for e := range l.queue {
		if err := l.write(e); err != nil {
			l.log.Warn("audit write failed", "error", err)
		}
	}
	if l.file != nil {
		if err := l.file.Close(); err != nil {
			l.log.Warn("failed to close audit file", "error", err)
		}
	}
}

func (l *Logger) write(e Event) error {
	day := time.Now().UTC().Format("2006-01-02")
	if l.file == nil || day != l.day {
		if l.file != nil {
			if err := l.file.Close(); err != nil {
				l.log.Warn("failed to close audit file", "error", err)
			}
		}
		path := filepath.Join(l.dir, "generations-"+day+".ndjson")
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("open audit file: %w", err)
		}
		l.file = f
		l.day = day
	}

	line, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode audit event: %w", err)
	}
	line = append(line, '\n')
	if _, err := l.file.Write(line); err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

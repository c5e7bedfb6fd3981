// Package sync keeps a named user value durable across sessions. Reads and
// writes land on a local JSON cache first, so callers stay responsive when the
// remote store is slow or unreachable; the remote copy catches up in the
// background.
package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Freshness reports the sync health of a Store's value.
type Freshness int

const (
	// Unavailable means no remote confirmation exists yet: either no remote
	// is configured, or no remote operation has completed.
	Unavailable Freshness = iota
	// Fresh means the most recent remote operation succeeded.
	Fresh
	// Stale means the most recent remote operation failed and the local
	// value is being served in its place.
	Stale
)

func (f Freshness) String() string {
	switch f {
	case Fresh:
		return "fresh"
	case Stale:
		return "stale"
	default:
		return "unavailable"
	}
}

// Remote is the subset of the API client the store syncs against.
type Remote interface {
	GetValue(ctx context.Context, key string) (json.RawMessage, error)
	SetValue(ctx context.Context, key string, value json.RawMessage) error
	DeleteValue(ctx context.Context, key string) (bool, error)
}

// Store holds one named value for one user. The in-memory value and the local
// cache file are updated synchronously on every write; the remote write runs
// in the background and its failure never rolls the local state back.
type Store struct {
	key       string
	def       json.RawMessage
	cachePath string
	remote    Remote

	mu         sync.Mutex
	value      json.RawMessage
	reconciled bool
	fresh      Freshness

	writes sync.WaitGroup
}

// New seeds a store for key from the local cache under
// cacheDir/userID/key.json, falling back to def when no cache exists. The
// seed never touches the network. A nil remote keeps the store fully local.
func New(cacheDir, userID, key string, def json.RawMessage, remote Remote) (*Store, error) {
	if key == "" {
		return nil, fmt.Errorf("sync: key must not be empty")
	}
	if userID == "" {
		userID = "anonymous"
	}

	s := &Store{
		key:       key,
		def:       append(json.RawMessage(nil), def...),
		cachePath: filepath.Join(cacheDir, userID, key+".json"),
		remote:    remote,
		value:     append(json.RawMessage(nil), def...),
	}

	data, err := os.ReadFile(s.cachePath)
	switch {
	case err == nil:
		if json.Valid(data) {
			s.value = data
		} else {
			slog.Warn("ignoring corrupt cache file", "path", s.cachePath)
		}
	case os.IsNotExist(err):
		// First use for this key.
	default:
		return nil, fmt.Errorf("reading cache %s: %w", s.cachePath, err)
	}

	return s, nil
}

// Value returns the current in-memory value.
func (s *Store) Value() json.RawMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append(json.RawMessage(nil), s.value...)
}

// Status reports the store's sync health.
func (s *Store) Status() Freshness {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fresh
}

// Reconcile runs the one-time remote read. It only fetches when the seeded
// value still equals the default, meaning no meaningful local cache exists; a
// remote value then replaces both the in-memory value and the cache file.
// Repeat calls are no-ops regardless of the first call's outcome, so a failed
// read is never retried by this path.
func (s *Store) Reconcile(ctx context.Context) {
	s.mu.Lock()
	if s.reconciled {
		s.mu.Unlock()
		return
	}
	s.reconciled = true
	needsRead := s.remote != nil && bytes.Equal(normalize(s.value), normalize(s.def))
	s.mu.Unlock()

	if !needsRead {
		return
	}

	remoteVal, err := s.remote.GetValue(ctx, s.key)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		slog.Warn("remote read failed, keeping local value", "key", s.key, "error", err)
		s.fresh = Stale
		return
	}
	s.fresh = Fresh
	if len(remoteVal) == 0 || bytes.Equal(normalize(remoteVal), []byte("null")) {
		return
	}
	s.value = append(json.RawMessage(nil), remoteVal...)
	s.writeCache(s.value)
}

// Set stores value locally and queues a background remote write.
func (s *Store) Set(ctx context.Context, value json.RawMessage) {
	s.Update(ctx, func(json.RawMessage) json.RawMessage { return value })
}

// Update resolves fn against the current value, stores the result locally and
// queues a background remote write. The resolved value is returned. A remote
// failure is logged and marks the store stale but the local value stands.
func (s *Store) Update(ctx context.Context, fn func(prev json.RawMessage) json.RawMessage) json.RawMessage {
	s.mu.Lock()
	resolved := fn(append(json.RawMessage(nil), s.value...))
	if resolved == nil {
		resolved = json.RawMessage("null")
	}
	s.value = append(json.RawMessage(nil), resolved...)
	s.writeCache(s.value)
	s.mu.Unlock()

	if s.remote != nil {
		s.writes.Add(1)
		go func() {
			defer s.writes.Done()
			err := s.remote.SetValue(ctx, s.key, resolved)

			s.mu.Lock()
			defer s.mu.Unlock()
			if err != nil {
				slog.Warn("remote write failed, local value stands", "key", s.key, "error", err)
				s.fresh = Stale
				return
			}
			s.fresh = Fresh
		}()
	}

	return append(json.RawMessage(nil), resolved...)
}

// Clear resets the value to the default, removes the cache file and queues a
// background remote delete.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.value = append(json.RawMessage(nil), s.def...)
	if err := os.Remove(s.cachePath); err != nil && !os.IsNotExist(err) {
		slog.Warn("removing cache file failed", "path", s.cachePath, "error", err)
	}
	s.mu.Unlock()

	if s.remote != nil {
		s.writes.Add(1)
		go func() {
			defer s.writes.Done()
			if _, err := s.remote.DeleteValue(ctx, s.key); err != nil {
				s.mu.Lock()
				slog.Warn("remote delete failed", "key", s.key, "error", err)
				s.fresh = Stale
				s.mu.Unlock()
				return
			}
			s.mu.Lock()
			s.fresh = Fresh
			s.mu.Unlock()
		}()
	}
}

// Flush blocks until all queued remote writes have completed. Call before
// process exit so optimistic writes reach the server.
func (s *Store) Flush() {
	s.writes.Wait()
}

// writeCache persists value to the cache file. Callers hold s.mu. Failures
// are logged; the in-memory value is already updated and stands either way.
func (s *Store) writeCache(value json.RawMessage) {
	if err := os.MkdirAll(filepath.Dir(s.cachePath), 0755); err != nil {
		slog.Warn("creating cache dir failed", "path", s.cachePath, "error", err)
		return
	}
	if err := os.WriteFile(s.cachePath, value, 0644); err != nil {
		slog.Warn("writing cache file failed", "path", s.cachePath, "error", err)
	}
}

// normalize compacts raw JSON so formatting differences do not defeat
// equality checks. Invalid input is returned as-is.
func normalize(raw json.RawMessage) []byte {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return raw
	}
	return buf.Bytes()
}

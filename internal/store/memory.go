package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/spboyer/social-media-post-ge/internal/domain"
)

// MemoryStore implements Store with an in-process map. It backs the memory
// driver used in development and tests; values do not survive a restart.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]map[string]*domain.NamedValue // userID -> key -> value
}

// NewMemory creates an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{values: make(map[string]map[string]*domain.NamedValue)}
}

func (s *MemoryStore) Get(ctx context.Context, userID, key string) (*domain.NamedValue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	nv, ok := s.values[userID][key]
	if !ok {
		return nil, nil
	}
	cp := *nv
	return &cp, nil
}

func (s *MemoryStore) Put(ctx context.Context, value *domain.NamedValue) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *value
	if cp.UpdatedAt.IsZero() {
		cp.UpdatedAt = time.Now()
	}
	byKey, ok := s.values[cp.UserID]
	if !ok {
		byKey = make(map[string]*domain.NamedValue)
		s.values[cp.UserID] = byKey
	}
	byKey[cp.Key] = &cp
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, userID, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byKey, ok := s.values[userID]
	if !ok {
		return false, nil
	}
	if _, ok := byKey[key]; !ok {
		return false, nil
	}
	delete(byKey, key)
	return true, nil
}

func (s *MemoryStore) List(ctx context.Context, userID string) ([]*domain.NamedValue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byKey := s.values[userID]
	out := make([]*domain.NamedValue, 0, len(byKey))
	for _, nv := range byKey {
		cp := *nv
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (s *MemoryStore) Ping(ctx context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

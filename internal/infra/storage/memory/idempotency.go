package memory

import (
	"context"
	"sync"

	ginserver "innkeep/internal/infra/http/gin"
)

// IdempotencyStore keeps replayable responses in memory.
type IdempotencyStore struct {
	mu    sync.RWMutex
	items map[string]ginserver.IdempotencyRecord
}

func NewIdempotencyStore() *IdempotencyStore {
	return &IdempotencyStore{items: make(map[string]ginserver.IdempotencyRecord)}
}

func (s *IdempotencyStore) Get(ctx context.Context, key string) (ginserver.IdempotencyRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.items[key]
	return rec, ok, nil
}

func (s *IdempotencyStore) Save(ctx context.Context, rec ginserver.IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[rec.Key] = rec
	return nil
}

var _ ginserver.IdempotencyStore = (*IdempotencyStore)(nil)

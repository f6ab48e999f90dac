package content

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"zkl/internal/apperr"
	"zkl/internal/domain"
)

// MemoryStore keeps content in a map keyed by content id.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
	pins  map[string]bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte), pins: make(map[string]bool)}
}

func (s *MemoryStore) Add(ctx context.Context, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id, err := ComputeCID(data)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[id]; !ok {
		s.blobs[id] = bytes.Clone(data)
	}
	return id, nil
}

func (s *MemoryStore) Pin(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[id]; !ok {
		return apperr.With(apperr.ErrNotFound, fmt.Errorf("content %s", id))
	}
	s.pins[id] = true
	return nil
}

func (s *MemoryStore) Cat(ctx context.Context, id string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.blobs[id]
	if !ok {
		return nil, apperr.With(apperr.ErrNotFound, fmt.Errorf("content %s", id))
	}
	return bytes.Clone(b), nil
}

// Pinned reports whether id has been pinned.
func (s *MemoryStore) Pinned(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pins[id]
}

// Len returns the number of stored blobs.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}

var _ domain.ContentStore = (*MemoryStore)(nil)

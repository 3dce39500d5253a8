package shelter

import (
	"context"
	"sync"

	"vcregistry/internal/registry/models"
	"vcregistry/pkg/platform/sentinel"
)

// MemoryStore is an in-memory shelter store for tests and local development.
type MemoryStore struct {
	mu       sync.RWMutex
	nextID   int64
	byAuthID map[int64]*models.Shelter
}

func NewMemory() *MemoryStore {
	return &MemoryStore{byAuthID: make(map[int64]*models.Shelter)}
}

func (s *MemoryStore) FindByAuthID(ctx context.Context, authID int64) (*models.Shelter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sh, ok := s.byAuthID[authID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := *sh
	return &out, nil
}

func (s *MemoryStore) Insert(ctx context.Context, sh *models.Shelter) (*models.Shelter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	stored := *sh
	stored.ID = s.nextID
	s.byAuthID[sh.AuthID] = &stored
	out := stored
	return &out, nil
}

func (s *MemoryStore) Update(ctx context.Context, sh *models.Shelter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.byAuthID[sh.AuthID]
	if !ok || stored.ID != sh.ID {
		return sentinel.ErrNotFound
	}
	out := *sh
	s.byAuthID[sh.AuthID] = &out
	return nil
}

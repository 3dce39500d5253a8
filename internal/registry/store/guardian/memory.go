package guardian

import (
	"context"
	"sync"

	"vcregistry/internal/registry/models"
	"vcregistry/pkg/platform/sentinel"
)

// MemoryStore is an in-memory guardian store for tests and local development.
type MemoryStore struct {
	mu       sync.RWMutex
	nextID   int64
	byAuthID map[int64]*models.Guardian

	// FailInsert, when set, makes the next Insert return the error.
	// Lets service tests exercise mid-transaction faults.
	FailInsert error
}

func NewMemory() *MemoryStore {
	return &MemoryStore{byAuthID: make(map[int64]*models.Guardian)}
}

func (s *MemoryStore) FindByAuthID(ctx context.Context, authID int64) (*models.Guardian, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.byAuthID[authID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := *g
	return &out, nil
}

func (s *MemoryStore) Insert(ctx context.Context, g *models.Guardian) (*models.Guardian, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailInsert != nil {
		err := s.FailInsert
		s.FailInsert = nil
		return nil, err
	}
	s.nextID++
	stored := *g
	stored.ID = s.nextID
	s.byAuthID[g.AuthID] = &stored
	out := stored
	return &out, nil
}

func (s *MemoryStore) Update(ctx context.Context, g *models.Guardian) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.byAuthID[g.AuthID]
	if !ok || stored.ID != g.ID {
		return sentinel.ErrNotFound
	}
	out := *g
	s.byAuthID[g.AuthID] = &out
	return nil
}

package identity

import (
	"context"
	"sync"
	"time"

	"vcregistry/internal/registry/models"
	"vcregistry/pkg/platform/sentinel"
)

// MemoryStore is an in-memory identity store for tests and local development.
type MemoryStore struct {
	mu       sync.RWMutex
	nextID   int64
	byWallet map[string]*models.Identity

	// FailFind, when set, makes the next FindByWallet return the error.
	FailFind error
}

func NewMemory() *MemoryStore {
	return &MemoryStore{byWallet: make(map[string]*models.Identity)}
}

func (s *MemoryStore) Create(ctx context.Context, walletAddress string) (*models.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byWallet[walletAddress]; ok {
		return nil, sentinel.ErrConflict
	}
	s.nextID++
	identity := &models.Identity{
		ID:            s.nextID,
		WalletAddress: walletAddress,
		CreatedAt:     time.Now(),
	}
	s.byWallet[walletAddress] = identity
	out := *identity
	return &out, nil
}

func (s *MemoryStore) FindByWallet(ctx context.Context, walletAddress string) (*models.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailFind != nil {
		err := s.FailFind
		s.FailFind = nil
		return nil, err
	}
	identity, ok := s.byWallet[walletAddress]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := *identity
	return &out, nil
}

// Count reports how many identities exist; test helper for duplicate checks.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byWallet)
}

package credential

import (
	"context"
	"sort"
	"sync"
	"time"

	"vcregistry/internal/registry/models"
	"vcregistry/pkg/platform/sentinel"
)

// MemoryStore is an in-memory credential store for tests and local
// development. Like the postgres schema it allows duplicate
// (authID, subjectDID) rows.
type MemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	rows   []models.Credential

	// FailInsert, when set, makes the next Insert return the error.
	FailInsert error

	// ReportNoneDeleted, when set, makes the next DeleteByAuthAndSubject
	// report zero affected rows without touching any.
	ReportNoneDeleted bool
}

func NewMemory() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Insert(ctx context.Context, c *models.Credential) (*models.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailInsert != nil {
		err := s.FailInsert
		s.FailInsert = nil
		return nil, err
	}
	s.nextID++
	stored := *c
	stored.ID = s.nextID
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	s.rows = append(s.rows, stored)
	out := stored
	return &out, nil
}

func (s *MemoryStore) FindByAuthAndSubject(ctx context.Context, authID int64, subjectDID string) (*models.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matches := s.match(authID, subjectDID)
	if len(matches) == 0 {
		return nil, sentinel.ErrNotFound
	}
	// Newest wins, same rule as the postgres store.
	sort.Slice(matches, func(i, j int) bool {
		if !matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].CreatedAt.After(matches[j].CreatedAt)
		}
		return matches[i].ID > matches[j].ID
	})
	out := matches[0]
	return &out, nil
}

func (s *MemoryStore) ListByAuthID(ctx context.Context, authID int64) ([]models.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	credentials := []models.Credential{}
	for _, c := range s.rows {
		if c.AuthID == authID {
			credentials = append(credentials, c)
		}
	}
	sort.Slice(credentials, func(i, j int) bool {
		if !credentials[i].CreatedAt.Equal(credentials[j].CreatedAt) {
			return credentials[i].CreatedAt.After(credentials[j].CreatedAt)
		}
		return credentials[i].ID > credentials[j].ID
	})
	return credentials, nil
}

func (s *MemoryStore) DeleteByAuthAndSubject(ctx context.Context, authID int64, subjectDID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ReportNoneDeleted {
		s.ReportNoneDeleted = false
		return 0, nil
	}
	kept := s.rows[:0]
	var deleted int64
	for _, c := range s.rows {
		if c.AuthID == authID && c.SubjectDID == subjectDID {
			deleted++
			continue
		}
		kept = append(kept, c)
	}
	s.rows = kept
	return deleted, nil
}

func (s *MemoryStore) match(authID int64, subjectDID string) []models.Credential {
	var matches []models.Credential
	for _, c := range s.rows {
		if c.AuthID == authID && c.SubjectDID == subjectDID {
			matches = append(matches, c)
		}
	}
	return matches
}

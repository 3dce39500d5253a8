package credential

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"vcregistry/internal/registry/models"
	"vcregistry/pkg/platform/sentinel"
)

func TestFindByAuthAndSubjectPicksNewest(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	_, err := s.Insert(ctx, &models.Credential{AuthID: 1, SubjectDID: "did:pet:1", Token: "old", CreatedAt: base})
	require.NoError(t, err)
	_, err = s.Insert(ctx, &models.Credential{AuthID: 1, SubjectDID: "did:pet:1", Token: "new", CreatedAt: base.Add(time.Minute)})
	require.NoError(t, err)

	c, err := s.FindByAuthAndSubject(ctx, 1, "did:pet:1")
	require.NoError(t, err)
	require.Equal(t, "new", c.Token)
}

func TestFindByAuthAndSubjectTieBreaksOnID(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	at := time.Now()

	_, err := s.Insert(ctx, &models.Credential{AuthID: 1, SubjectDID: "did:pet:1", Token: "first", CreatedAt: at})
	require.NoError(t, err)
	_, err = s.Insert(ctx, &models.Credential{AuthID: 1, SubjectDID: "did:pet:1", Token: "second", CreatedAt: at})
	require.NoError(t, err)

	c, err := s.FindByAuthAndSubject(ctx, 1, "did:pet:1")
	require.NoError(t, err)
	require.Equal(t, "second", c.Token)
}

func TestDeleteByAuthAndSubjectRemovesAllMatches(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	_, err := s.Insert(ctx, &models.Credential{AuthID: 1, SubjectDID: "did:pet:1", Token: "a"})
	require.NoError(t, err)
	_, err = s.Insert(ctx, &models.Credential{AuthID: 1, SubjectDID: "did:pet:1", Token: "b"})
	require.NoError(t, err)
	_, err = s.Insert(ctx, &models.Credential{AuthID: 1, SubjectDID: "did:pet:2", Token: "keep"})
	require.NoError(t, err)

	deleted, err := s.DeleteByAuthAndSubject(ctx, 1, "did:pet:1")
	require.NoError(t, err)
	require.EqualValues(t, 2, deleted)

	_, err = s.FindByAuthAndSubject(ctx, 1, "did:pet:1")
	require.ErrorIs(t, err, sentinel.ErrNotFound)

	remaining, err := s.ListByAuthID(ctx, 1)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	require.Equal(t, "keep", remaining[0].Token)
}

func TestListByAuthIDEmpty(t *testing.T) {
	s := NewMemory()

	credentials, err := s.ListByAuthID(context.Background(), 42)
	require.NoError(t, err)
	require.NotNil(t, credentials)
	require.Empty(t, credentials)
}

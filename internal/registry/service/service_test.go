package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"vcregistry/internal/audit"
	"vcregistry/internal/registry/models"
	credentialstore "vcregistry/internal/registry/store/credential"
	guardianstore "vcregistry/internal/registry/store/guardian"
	identitystore "vcregistry/internal/registry/store/identity"
	shelterstore "vcregistry/internal/registry/store/shelter"
	"vcregistry/pkg/vcerrors"
)

type fixture struct {
	svc         *Service
	identities  *identitystore.MemoryStore
	guardians   *guardianstore.MemoryStore
	shelters    *shelterstore.MemoryStore
	credentials *credentialstore.MemoryStore
	auditStore  *audit.MemoryStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		identities:  identitystore.NewMemory(),
		guardians:   guardianstore.NewMemory(),
		shelters:    shelterstore.NewMemory(),
		credentials: credentialstore.NewMemory(),
		auditStore:  audit.NewMemory(),
	}
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	f.svc = New(f.identities, f.guardians, f.shelters, f.credentials,
		audit.NewPublisher(f.auditStore), logger)
	return f
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }
func intPtr(n int) *int       { return &n }

func TestRegisterThenDuplicateFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	authID, err := f.svc.Register(ctx, "0xabc")
	require.NoError(t, err)
	require.NotZero(t, authID)

	_, err = f.svc.Register(ctx, "0xabc")
	require.Error(t, err)
	require.True(t, vcerrors.HasCode(err, vcerrors.CodeWalletAlreadyExists))
	require.False(t, vcerrors.CodeOf(err).Retryable())
	require.Equal(t, 1, f.identities.Count())
}

func TestResolveUnknownWallet(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Resolve(context.Background(), "0xmissing")
	require.True(t, vcerrors.HasCode(err, vcerrors.CodeWalletNotFound))
}

func TestCheckReturnsHandle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	authID, err := f.svc.Register(ctx, "0xabc")
	require.NoError(t, err)

	checked, err := f.svc.Check(ctx, "0xabc")
	require.NoError(t, err)
	require.Equal(t, authID, checked)
}

func TestUpsertGuardianCreatesThenPartiallyUpdates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, "0xabc")
	require.NoError(t, err)

	guardianID, err := f.svc.UpsertGuardian(ctx, "0xabc", models.GuardianPatch{
		Email:           strPtr("a@example.com"),
		Phone:           strPtr("010-1111"),
		Name:            strPtr("Ana"),
		IsEmailVerified: boolPtr(true),
	})
	require.NoError(t, err)
	require.NotZero(t, guardianID)

	// Only email supplied: everything else must keep its stored value.
	updatedID, err := f.svc.UpsertGuardian(ctx, "0xabc", models.GuardianPatch{
		Email: strPtr("b@example.com"),
	})
	require.NoError(t, err)
	require.Equal(t, guardianID, updatedID)

	g, err := f.svc.GetGuardian(ctx, "0xabc")
	require.NoError(t, err)
	require.Equal(t, "b@example.com", g.Email)
	require.Equal(t, "010-1111", g.Phone)
	require.Equal(t, "Ana", g.Name)
	require.True(t, g.IsEmailVerified)
}

func TestUpsertGuardianExplicitFalseOverrides(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, "0xabc")
	require.NoError(t, err)

	_, err = f.svc.UpsertGuardian(ctx, "0xabc", models.GuardianPatch{IsEmailVerified: boolPtr(true)})
	require.NoError(t, err)

	_, err = f.svc.UpsertGuardian(ctx, "0xabc", models.GuardianPatch{IsEmailVerified: boolPtr(false)})
	require.NoError(t, err)

	g, err := f.svc.GetGuardian(ctx, "0xabc")
	require.NoError(t, err)
	require.False(t, g.IsEmailVerified)
}

func TestGetGuardianWithoutProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, "0xabc")
	require.NoError(t, err)

	_, err = f.svc.GetGuardian(ctx, "0xabc")
	require.True(t, vcerrors.HasCode(err, vcerrors.CodeGuardianNotFound))
}

func TestUpsertShelterRequiresIdentity(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.UpsertShelter(context.Background(), "0xnobody", models.ShelterPatch{
		Name: strPtr("Haven"),
	})
	require.True(t, vcerrors.HasCode(err, vcerrors.CodeWalletNotFound))

	// Nothing may have been written.
	_, storeErr := f.shelters.FindByAuthID(context.Background(), 1)
	require.Error(t, storeErr)
}

func TestUpsertShelterDefaultsAndStatusImmutability(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, "0xabc")
	require.NoError(t, err)

	shelterID, err := f.svc.UpsertShelter(ctx, "0xabc", models.ShelterPatch{
		Name:     strPtr("Haven"),
		Capacity: intPtr(25),
	})
	require.NoError(t, err)

	sh, err := f.shelters.FindByAuthID(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, shelterID, sh.ID)
	require.Equal(t, models.ShelterStatusPending, sh.Status)

	// Explicit zero capacity overwrites; status survives the upsert.
	sh.Status = models.ShelterStatusApproved
	require.NoError(t, f.shelters.Update(ctx, sh))

	_, err = f.svc.UpsertShelter(ctx, "0xabc", models.ShelterPatch{Capacity: intPtr(0)})
	require.NoError(t, err)

	sh, err = f.shelters.FindByAuthID(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 0, sh.Capacity)
	require.Equal(t, "Haven", sh.Name)
	require.Equal(t, models.ShelterStatusApproved, sh.Status)
}

func TestIssueThenFetchRoundtrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, "0xabc")
	require.NoError(t, err)

	credentialID, err := f.svc.Issue(ctx, "0xabc", "did:pet:123", "jwt-payload", "chip=77")
	require.NoError(t, err)
	require.NotZero(t, credentialID)

	c, err := f.svc.Fetch(ctx, "0xabc", "did:pet:123")
	require.NoError(t, err)
	require.Equal(t, "jwt-payload", c.Token)
	require.Equal(t, "chip=77", c.Metadata)
	require.Equal(t, models.CredentialTypeGuardianIssuedPet, c.CredentialType)
	require.False(t, c.CreatedAt.After(time.Now()))
}

func TestIssueUnknownWallet(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Issue(context.Background(), "0xnobody", "did:pet:1", "tok", "")
	require.True(t, vcerrors.HasCode(err, vcerrors.CodeWalletNotFound))
}

func TestIssueStoreFaultIsRetryableTransactionFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, "0xabc")
	require.NoError(t, err)

	f.credentials.FailInsert = errors.New("disk full")
	_, err = f.svc.Issue(ctx, "0xabc", "did:pet:1", "tok", "")
	require.True(t, vcerrors.HasCode(err, vcerrors.CodeTransactionFailed))
	require.True(t, vcerrors.CodeOf(err).Retryable())
}

func TestStoreTimeoutIsServiceUnavailable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.identities.FailFind = context.DeadlineExceeded
	_, err := f.svc.Resolve(ctx, "0xabc")
	require.True(t, vcerrors.HasCode(err, vcerrors.CodeServiceUnavailable))
	require.True(t, vcerrors.CodeOf(err).Retryable())
}

func TestStoreFaultIsDatabaseError(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.identities.FailFind = errors.New("connection reset")
	_, err := f.svc.Resolve(ctx, "0xabc")
	require.True(t, vcerrors.HasCode(err, vcerrors.CodeDatabaseError))
	require.True(t, vcerrors.CodeOf(err).Retryable())
}

func TestFetchPrefersNewestDuplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, "0xabc")
	require.NoError(t, err)

	_, err = f.svc.Issue(ctx, "0xabc", "did:pet:1", "old-token", "")
	require.NoError(t, err)
	_, err = f.svc.Issue(ctx, "0xabc", "did:pet:1", "new-token", "")
	require.NoError(t, err)

	c, err := f.svc.Fetch(ctx, "0xabc", "did:pet:1")
	require.NoError(t, err)
	require.Equal(t, "new-token", c.Token)
}

func TestListCredentialsEmptyIsSuccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, "0xabc")
	require.NoError(t, err)

	credentials, err := f.svc.ListByWallet(ctx, "0xabc")
	require.NoError(t, err)
	require.NotNil(t, credentials)
	require.Empty(t, credentials)
}

func TestInvalidateMissingCredential(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, "0xabc")
	require.NoError(t, err)

	err = f.svc.Invalidate(ctx, "0xabc", "did:pet:1", "stolen")
	require.True(t, vcerrors.HasCode(err, vcerrors.CodeVCNotFound))
}

func TestInvalidateZeroRowsAfterExistenceCheck(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, "0xabc")
	require.NoError(t, err)
	_, err = f.svc.Issue(ctx, "0xabc", "did:pet:1", "tok", "")
	require.NoError(t, err)

	// Existence check sees the row but the delete affects nothing: an
	// internal consistency fault, not a not-found.
	f.credentials.ReportNoneDeleted = true
	err = f.svc.Invalidate(ctx, "0xabc", "did:pet:1", "stolen")
	require.True(t, vcerrors.HasCode(err, vcerrors.CodeDatabaseError))
	require.True(t, vcerrors.CodeOf(err).Retryable())

	// The credential survives and no invalidation event was recorded.
	_, err = f.svc.Fetch(ctx, "0xabc", "did:pet:1")
	require.NoError(t, err)
	for _, e := range f.auditStore.Events() {
		require.NotEqual(t, audit.ActionCredentialInvalidated, e.Action)
	}
}

func TestInvalidateRemovesAndRecordsReason(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, "0xabc")
	require.NoError(t, err)
	_, err = f.svc.Issue(ctx, "0xabc", "did:pet:1", "tok", "")
	require.NoError(t, err)

	require.NoError(t, f.svc.Invalidate(ctx, "0xabc", "did:pet:1", "pet deceased"))

	_, err = f.svc.Fetch(ctx, "0xabc", "did:pet:1")
	require.True(t, vcerrors.HasCode(err, vcerrors.CodeVCNotFound))

	var invalidation *audit.Event
	for _, e := range f.auditStore.Events() {
		if e.Action == audit.ActionCredentialInvalidated {
			invalidation = &e
			break
		}
	}
	require.NotNil(t, invalidation)
	require.Equal(t, "pet deceased", invalidation.Reason)
	require.Equal(t, "did:pet:1", invalidation.SubjectDID)
}

func TestInvalidateRemovesAllDuplicates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, "0xabc")
	require.NoError(t, err)
	_, err = f.svc.Issue(ctx, "0xabc", "did:pet:1", "tok-1", "")
	require.NoError(t, err)
	_, err = f.svc.Issue(ctx, "0xabc", "did:pet:1", "tok-2", "")
	require.NoError(t, err)

	require.NoError(t, f.svc.Invalidate(ctx, "0xabc", "did:pet:1", "duplicate cleanup"))

	_, err = f.svc.Fetch(ctx, "0xabc", "did:pet:1")
	require.True(t, vcerrors.HasCode(err, vcerrors.CodeVCNotFound))
}

func TestInvalidateFailsWhenReasonCannotBeRecorded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, "0xabc")
	require.NoError(t, err)
	_, err = f.svc.Issue(ctx, "0xabc", "did:pet:1", "tok", "")
	require.NoError(t, err)

	f.auditStore.FailAppend = errors.New("audit table unavailable")
	err = f.svc.Invalidate(ctx, "0xabc", "did:pet:1", "stolen")
	require.True(t, vcerrors.HasCode(err, vcerrors.CodeTransactionFailed))
}

type staticCache struct {
	identity *models.Identity
	puts     int
}

func (c *staticCache) Get(ctx context.Context, wallet string) (*models.Identity, bool) {
	if c.identity != nil && c.identity.WalletAddress == wallet {
		return c.identity, true
	}
	return nil, false
}

func (c *staticCache) Put(ctx context.Context, identity *models.Identity) {
	c.puts++
	c.identity = identity
}

func TestResolveUsesCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cache := &staticCache{}
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	svc := New(f.identities, f.guardians, f.shelters, f.credentials,
		audit.NewPublisher(f.auditStore), logger, WithIdentityCache(cache))

	_, err := svc.Register(ctx, "0xabc")
	require.NoError(t, err)
	require.Equal(t, 1, cache.puts)

	// Cached entry answers without touching the store.
	identity, err := svc.Resolve(ctx, "0xabc")
	require.NoError(t, err)
	require.Equal(t, "0xabc", identity.WalletAddress)
	require.Equal(t, 1, cache.puts)
}

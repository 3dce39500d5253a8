// Package service implements the registry operations: identity registration
// and lookup, guardian/shelter profile upserts, and the credential lifecycle.
// Every outcome is classified with a vcerrors code before it leaves this
// package; no raw store fault crosses the transport boundary.
package service

import (
	"context"
	"errors"
	"log/slog"

	"vcregistry/internal/audit"
	"vcregistry/internal/platform/metrics"
	"vcregistry/internal/registry/models"
	"vcregistry/pkg/platform/sentinel"
	"vcregistry/pkg/vcerrors"
)

// IdentityStore persists the root auth records.
type IdentityStore interface {
	Create(ctx context.Context, walletAddress string) (*models.Identity, error)
	FindByWallet(ctx context.Context, walletAddress string) (*models.Identity, error)
}

// GuardianStore persists guardian profiles.
type GuardianStore interface {
	FindByAuthID(ctx context.Context, authID int64) (*models.Guardian, error)
	Insert(ctx context.Context, g *models.Guardian) (*models.Guardian, error)
	Update(ctx context.Context, g *models.Guardian) error
}

// ShelterStore persists shelter profiles.
type ShelterStore interface {
	FindByAuthID(ctx context.Context, authID int64) (*models.Shelter, error)
	Insert(ctx context.Context, sh *models.Shelter) (*models.Shelter, error)
	Update(ctx context.Context, sh *models.Shelter) error
}

// CredentialStore persists credential records.
type CredentialStore interface {
	Insert(ctx context.Context, c *models.Credential) (*models.Credential, error)
	FindByAuthAndSubject(ctx context.Context, authID int64, subjectDID string) (*models.Credential, error)
	ListByAuthID(ctx context.Context, authID int64) ([]models.Credential, error)
	DeleteByAuthAndSubject(ctx context.Context, authID int64, subjectDID string) (int64, error)
}

// IdentityCache is an advisory read-through cache for wallet resolution.
// Identities are immutable, so positive entries never go stale.
type IdentityCache interface {
	Get(ctx context.Context, walletAddress string) (*models.Identity, bool)
	Put(ctx context.Context, identity *models.Identity)
}

// Service coordinates the registry stores behind classified operations.
type Service struct {
	identities  IdentityStore
	guardians   GuardianStore
	shelters    ShelterStore
	credentials CredentialStore
	auditor     *audit.Publisher
	tx          StoreTx
	cache       IdentityCache
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

// Option configures optional service collaborators.
type Option func(*Service)

// WithTx replaces the transaction coordinator (postgres in production,
// pass-through in unit tests).
func WithTx(tx StoreTx) Option {
	return func(s *Service) {
		s.tx = tx
	}
}

// WithIdentityCache attaches a resolve cache for read paths.
func WithIdentityCache(cache IdentityCache) Option {
	return func(s *Service) {
		s.cache = cache
	}
}

// WithMetrics attaches prometheus counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New builds the registry service. The audit publisher is mandatory:
// invalidation is not allowed to succeed without a durable reason record.
func New(
	identities IdentityStore,
	guardians GuardianStore,
	shelters ShelterStore,
	credentials CredentialStore,
	auditor *audit.Publisher,
	logger *slog.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		identities:  identities,
		guardians:   guardians,
		shelters:    shelters,
		credentials: credentials,
		auditor:     auditor,
		tx:          passthroughTx{},
		logger:      logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// classifyStoreErr maps an unclassified store fault to a retryable server
// code. Store timeouts surface as SERVICE_UNAVAILABLE so callers back off;
// everything else is a database error.
func classifyStoreErr(err error) vcerrors.Code {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, sentinel.ErrUnavailable):
		return vcerrors.CodeServiceUnavailable
	default:
		return vcerrors.CodeDatabaseError
	}
}

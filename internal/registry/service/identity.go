package service

import (
	"context"
	"errors"
	"fmt"

	"vcregistry/internal/audit"
	"vcregistry/internal/registry/models"
	"vcregistry/pkg/platform/sentinel"
	"vcregistry/pkg/vcerrors"
)

// Register creates the root identity record for a wallet address and returns
// the generated handle. The store's unique constraint, not the prior read, is
// the guard against concurrent duplicate registration.
func (s *Service) Register(ctx context.Context, walletAddress string) (int64, error) {
	existing, err := s.identities.FindByWallet(ctx, walletAddress)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return 0, vcerrors.Wrap(err, classifyStoreErr(err), "")
	}
	if existing != nil {
		return 0, vcerrors.New(vcerrors.CodeWalletAlreadyExists,
			fmt.Sprintf("wallet %s is already registered", walletAddress))
	}

	identity, err := s.identities.Create(ctx, walletAddress)
	if err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			// Lost the race to a concurrent registration.
			return 0, vcerrors.New(vcerrors.CodeWalletAlreadyExists,
				fmt.Sprintf("wallet %s is already registered", walletAddress))
		}
		return 0, vcerrors.Wrap(err, classifyStoreErr(err), "")
	}

	if err := s.auditor.Emit(ctx, audit.Event{
		Action:        audit.ActionIdentityRegistered,
		WalletAddress: walletAddress,
	}); err != nil {
		s.logger.ErrorContext(ctx, "audit append failed for registration",
			"wallet", walletAddress, "error", err.Error())
	}
	s.cachePut(ctx, identity)
	if s.metrics != nil {
		s.metrics.IdentitiesRegistered.Inc()
	}
	return identity.ID, nil
}

// Resolve looks up the identity for a wallet address. Read-only.
func (s *Service) Resolve(ctx context.Context, walletAddress string) (*models.Identity, error) {
	if s.cache != nil {
		if identity, ok := s.cache.Get(ctx, walletAddress); ok {
			return identity, nil
		}
	}
	identity, err := s.identities.FindByWallet(ctx, walletAddress)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, vcerrors.New(vcerrors.CodeWalletNotFound,
				fmt.Sprintf("wallet %s is not registered", walletAddress))
		}
		return nil, vcerrors.Wrap(err, classifyStoreErr(err), "")
	}
	s.cachePut(ctx, identity)
	return identity, nil
}

// Check probes for an identity and returns only its handle.
func (s *Service) Check(ctx context.Context, walletAddress string) (int64, error) {
	identity, err := s.Resolve(ctx, walletAddress)
	if err != nil {
		return 0, err
	}
	return identity.ID, nil
}

// resolveInTx looks the identity up against the store directly, bypassing the
// cache, so mutating operations read through their transaction scope.
func (s *Service) resolveInTx(ctx context.Context, walletAddress string, notFoundMessage string) (*models.Identity, error) {
	identity, err := s.identities.FindByWallet(ctx, walletAddress)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, vcerrors.New(vcerrors.CodeWalletNotFound, notFoundMessage)
		}
		return nil, vcerrors.Wrap(err, classifyStoreErr(err), "")
	}
	return identity, nil
}

func (s *Service) cachePut(ctx context.Context, identity *models.Identity) {
	if s.cache != nil {
		s.cache.Put(ctx, identity)
	}
}

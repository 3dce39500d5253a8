package service

import (
	"context"
	"errors"
	"fmt"

	"vcregistry/internal/registry/models"
	"vcregistry/pkg/platform/sentinel"
	"vcregistry/pkg/vcerrors"
)

// UpsertGuardian creates or partially updates the guardian profile for a
// wallet's identity, inside one transaction scope. Only fields present on the
// patch overwrite stored values; an explicit false still overwrites.
func (s *Service) UpsertGuardian(ctx context.Context, walletAddress string, patch models.GuardianPatch) (int64, error) {
	var guardianID int64
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		identity, err := s.resolveInTx(txCtx, walletAddress, registrationPrecondition(walletAddress))
		if err != nil {
			return err
		}

		existing, err := s.guardians.FindByAuthID(txCtx, identity.ID)
		if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			return vcerrors.Wrap(err, classifyStoreErr(err), "")
		}

		if existing != nil {
			applyGuardianPatch(existing, patch)
			if err := s.guardians.Update(txCtx, existing); err != nil {
				return vcerrors.Wrap(err, vcerrors.CodeTransactionFailed, "guardian profile update failed")
			}
			guardianID = existing.ID
			return nil
		}

		created := &models.Guardian{AuthID: identity.ID}
		applyGuardianPatch(created, patch)
		created, err = s.guardians.Insert(txCtx, created)
		if err != nil {
			return vcerrors.Wrap(err, vcerrors.CodeTransactionFailed, "guardian profile insert failed")
		}
		guardianID = created.ID
		return nil
	})
	if err != nil {
		return 0, err
	}
	if s.metrics != nil {
		s.metrics.ProfileUpserts.WithLabelValues("guardian").Inc()
	}
	return guardianID, nil
}

// GetGuardian returns the full guardian profile for a wallet.
func (s *Service) GetGuardian(ctx context.Context, walletAddress string) (*models.Guardian, error) {
	identity, err := s.Resolve(ctx, walletAddress)
	if err != nil {
		return nil, err
	}
	guardian, err := s.guardians.FindByAuthID(ctx, identity.ID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, vcerrors.New(vcerrors.CodeGuardianNotFound, "")
		}
		return nil, vcerrors.Wrap(err, classifyStoreErr(err), "")
	}
	return guardian, nil
}

// UpsertShelter creates or partially updates the shelter profile for a
// wallet's identity. A new profile starts in PENDING status; the upsert path
// never touches status afterwards.
func (s *Service) UpsertShelter(ctx context.Context, walletAddress string, patch models.ShelterPatch) (int64, error) {
	var shelterID int64
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		identity, err := s.resolveInTx(txCtx, walletAddress, registrationPrecondition(walletAddress))
		if err != nil {
			return err
		}

		existing, err := s.shelters.FindByAuthID(txCtx, identity.ID)
		if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			return vcerrors.Wrap(err, classifyStoreErr(err), "")
		}

		if existing != nil {
			applyShelterPatch(existing, patch)
			if err := s.shelters.Update(txCtx, existing); err != nil {
				return vcerrors.Wrap(err, vcerrors.CodeTransactionFailed, "shelter profile update failed")
			}
			shelterID = existing.ID
			return nil
		}

		created := &models.Shelter{AuthID: identity.ID, Status: models.ShelterStatusPending}
		applyShelterPatch(created, patch)
		created, err = s.shelters.Insert(txCtx, created)
		if err != nil {
			return vcerrors.Wrap(err, vcerrors.CodeTransactionFailed, "shelter profile insert failed")
		}
		shelterID = created.ID
		return nil
	})
	if err != nil {
		return 0, err
	}
	if s.metrics != nil {
		s.metrics.ProfileUpserts.WithLabelValues("shelter").Inc()
	}
	return shelterID, nil
}

func applyGuardianPatch(g *models.Guardian, patch models.GuardianPatch) {
	if patch.Email != nil {
		g.Email = *patch.Email
	}
	if patch.Phone != nil {
		g.Phone = *patch.Phone
	}
	if patch.Name != nil {
		g.Name = *patch.Name
	}
	if patch.IsEmailVerified != nil {
		g.IsEmailVerified = *patch.IsEmailVerified
	}
	if patch.IsOnChainRegistered != nil {
		g.IsOnChainRegistered = *patch.IsOnChainRegistered
	}
}

func applyShelterPatch(sh *models.Shelter, patch models.ShelterPatch) {
	if patch.Name != nil {
		sh.Name = *patch.Name
	}
	if patch.Location != nil {
		sh.Location = *patch.Location
	}
	if patch.LicenseNumber != nil {
		sh.LicenseNumber = *patch.LicenseNumber
	}
	if patch.Capacity != nil {
		sh.Capacity = *patch.Capacity
	}
}

func registrationPrecondition(walletAddress string) string {
	return fmt.Sprintf("wallet %s is not registered; register the identity first", walletAddress)
}

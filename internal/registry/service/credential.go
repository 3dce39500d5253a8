package service

import (
	"context"
	"errors"

	"vcregistry/internal/audit"
	"vcregistry/internal/registry/models"
	"vcregistry/pkg/platform/sentinel"
	"vcregistry/pkg/vcerrors"
)

// Issue stores a new credential for the wallet's identity and returns the
// generated id. The whole insert runs inside one transaction scope; storage
// faults inside it classify as TRANSACTION_FAILED so gateways retry.
func (s *Service) Issue(ctx context.Context, walletAddress, subjectDID, token, metadata string) (int64, error) {
	var credentialID int64
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		identity, err := s.resolveInTx(txCtx, walletAddress, "")
		if err != nil {
			return err
		}

		credential := &models.Credential{
			AuthID:         identity.ID,
			SubjectDID:     subjectDID,
			Token:          token,
			CredentialType: models.CredentialTypeGuardianIssuedPet,
			Metadata:       metadata,
		}
		credential, err = s.credentials.Insert(txCtx, credential)
		if err != nil {
			return vcerrors.Wrap(err, vcerrors.CodeTransactionFailed, "credential insert failed")
		}

		if err := s.auditor.Emit(txCtx, audit.Event{
			Action:        audit.ActionCredentialIssued,
			WalletAddress: walletAddress,
			SubjectDID:    subjectDID,
		}); err != nil {
			return vcerrors.Wrap(err, vcerrors.CodeTransactionFailed, "credential audit append failed")
		}

		credentialID = credential.ID
		return nil
	})
	if err != nil {
		return 0, err
	}
	if s.metrics != nil {
		s.metrics.CredentialsIssued.Inc()
	}
	return credentialID, nil
}

// Fetch returns the credential addressed by (wallet, subjectDID). When
// duplicate rows exist the store returns the newest one.
func (s *Service) Fetch(ctx context.Context, walletAddress, subjectDID string) (*models.Credential, error) {
	identity, err := s.Resolve(ctx, walletAddress)
	if err != nil {
		return nil, err
	}
	credential, err := s.credentials.FindByAuthAndSubject(ctx, identity.ID, subjectDID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, vcerrors.New(vcerrors.CodeVCNotFound, "")
		}
		return nil, vcerrors.Wrap(err, classifyStoreErr(err), "")
	}
	return credential, nil
}

// ListByWallet returns every credential held by the wallet's identity. An
// identity with no credentials yields an empty list, not a failure.
func (s *Service) ListByWallet(ctx context.Context, walletAddress string) ([]models.Credential, error) {
	identity, err := s.Resolve(ctx, walletAddress)
	if err != nil {
		return nil, err
	}
	credentials, err := s.credentials.ListByAuthID(ctx, identity.ID)
	if err != nil {
		return nil, vcerrors.Wrap(err, classifyStoreErr(err), "")
	}
	return credentials, nil
}

// Invalidate hard-deletes the credential(s) addressed by (wallet, subjectDID)
// and durably records the caller's reason before reporting success. The
// existence check gives callers a precise VC_NOT_FOUND instead of a silent
// no-op; zero rows deleted after a positive check is an internal consistency
// fault.
func (s *Service) Invalidate(ctx context.Context, walletAddress, subjectDID, reason string) error {
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		identity, err := s.resolveInTx(txCtx, walletAddress, "")
		if err != nil {
			return err
		}

		if _, err := s.credentials.FindByAuthAndSubject(txCtx, identity.ID, subjectDID); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return vcerrors.New(vcerrors.CodeVCNotFound, "")
			}
			return vcerrors.Wrap(err, classifyStoreErr(err), "")
		}

		deleted, err := s.credentials.DeleteByAuthAndSubject(txCtx, identity.ID, subjectDID)
		if err != nil {
			return vcerrors.Wrap(err, classifyStoreErr(err), "")
		}
		if deleted == 0 {
			return vcerrors.New(vcerrors.CodeDatabaseError, "credential vanished between existence check and delete")
		}

		if err := s.auditor.Emit(txCtx, audit.Event{
			Action:        audit.ActionCredentialInvalidated,
			WalletAddress: walletAddress,
			SubjectDID:    subjectDID,
			Reason:        reason,
		}); err != nil {
			return vcerrors.Wrap(err, vcerrors.CodeTransactionFailed, "invalidation reason append failed")
		}

		s.logger.InfoContext(txCtx, "credential invalidated",
			"wallet", walletAddress,
			"subject_did", subjectDID,
			"reason", reason,
			"rows_deleted", deleted,
		)
		return nil
	})
	if err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.CredentialsInvalidated.Inc()
	}
	return nil
}

package handler

import (
	"strings"

	"vcregistry/internal/registry/models"
	"vcregistry/pkg/vcerrors"
)

// Request records are explicit per operation: required fields are validated
// before any store is touched, and optional profile fields are pointers so an
// explicitly supplied false/empty/zero still overwrites the stored value.

type registerIdentityRequest struct {
	WalletAddress string `json:"walletAddress"`
}

func (r *registerIdentityRequest) Validate() error {
	if strings.TrimSpace(r.WalletAddress) == "" {
		return vcerrors.New(vcerrors.CodeInvalidRequest, "walletAddress is required")
	}
	return nil
}

type upsertGuardianRequest struct {
	Email               *string `json:"email"`
	Phone               *string `json:"phone"`
	Name                *string `json:"name"`
	IsEmailVerified     *bool   `json:"isEmailVerified"`
	IsOnChainRegistered *bool   `json:"isOnChainRegistered"`
}

func (r *upsertGuardianRequest) patch() models.GuardianPatch {
	return models.GuardianPatch{
		Email:               r.Email,
		Phone:               r.Phone,
		Name:                r.Name,
		IsEmailVerified:     r.IsEmailVerified,
		IsOnChainRegistered: r.IsOnChainRegistered,
	}
}

type upsertShelterRequest struct {
	Name          *string `json:"name"`
	Location      *string `json:"location"`
	LicenseNumber *string `json:"licenseNumber"`
	Capacity      *int    `json:"capacity"`
}

func (r *upsertShelterRequest) Validate() error {
	if r.Capacity != nil && *r.Capacity < 0 {
		return vcerrors.New(vcerrors.CodeInvalidRequest, "capacity must not be negative")
	}
	return nil
}

func (r *upsertShelterRequest) patch() models.ShelterPatch {
	return models.ShelterPatch{
		Name:          r.Name,
		Location:      r.Location,
		LicenseNumber: r.LicenseNumber,
		Capacity:      r.Capacity,
	}
}

type issueCredentialRequest struct {
	SubjectDID string `json:"subjectDID"`
	Token      string `json:"token"`
	Metadata   string `json:"metadata"`
}

func (r *issueCredentialRequest) Validate() error {
	if strings.TrimSpace(r.SubjectDID) == "" {
		return vcerrors.New(vcerrors.CodeInvalidRequest, "subjectDID is required")
	}
	if r.Token == "" {
		return vcerrors.New(vcerrors.CodeInvalidRequest, "token is required")
	}
	return nil
}

type invalidateCredentialRequest struct {
	Reason string `json:"reason"`
}

func (r *invalidateCredentialRequest) Validate() error {
	if strings.TrimSpace(r.Reason) == "" {
		return vcerrors.New(vcerrors.CodeInvalidRequest, "reason is required")
	}
	return nil
}

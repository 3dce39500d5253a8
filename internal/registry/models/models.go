// Package models holds the plain records persisted by the registry stores.
// Records are data only; lifecycle rules live in the service layer.
package models

import "time"

// Identity is the root record for one registered wallet. The wallet address is
// globally unique and immutable after creation; identities are never updated
// or deleted.
type Identity struct {
	ID            int64
	WalletAddress string
	CreatedAt     time.Time
}

// Guardian is the person-role profile, attached at most once per identity.
type Guardian struct {
	ID                  int64
	AuthID              int64
	Email               string
	Phone               string
	Name                string
	IsEmailVerified     bool
	IsOnChainRegistered bool
}

// GuardianPatch carries the fields supplied by one upsert call. Nil pointers
// mean "field omitted, keep the stored value"; a non-nil pointer always
// overwrites, including explicit false or empty string.
type GuardianPatch struct {
	Email               *string
	Phone               *string
	Name                *string
	IsEmailVerified     *bool
	IsOnChainRegistered *bool
}

// ShelterStatus is the approval state of a shelter profile. The upsert path
// never mutates it; transitions belong to a separate approval workflow.
type ShelterStatus string

const (
	ShelterStatusPending  ShelterStatus = "PENDING"
	ShelterStatusApproved ShelterStatus = "APPROVED"
	ShelterStatusRejected ShelterStatus = "REJECTED"
)

// Shelter is the organization-role profile, attached at most once per identity.
type Shelter struct {
	ID            int64
	AuthID        int64
	Name          string
	Location      string
	LicenseNumber string
	Capacity      int
	Status        ShelterStatus
}

// ShelterPatch carries the fields supplied by one upsert call, with the same
// presence semantics as GuardianPatch (an explicit 0 capacity overwrites).
type ShelterPatch struct {
	Name          *string
	Location      *string
	LicenseNumber *string
	Capacity      *int
}

// CredentialTypeGuardianIssuedPet is the single issuance kind the registry
// currently stores.
const CredentialTypeGuardianIssuedPet = "GuardianIssuedPetVC"

// Credential binds a subject DID to an issuing identity. The token is an
// opaque signed payload stored verbatim; the registry never parses it.
// (auth_id, subject_did) is the addressing key for fetch and invalidate but is
// not unique at the store level, so duplicates are possible.
type Credential struct {
	ID             int64
	AuthID         int64
	SubjectDID     string
	Token          string
	CredentialType string
	Metadata       string
	CreatedAt      time.Time
}

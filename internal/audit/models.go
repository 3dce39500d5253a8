// Package audit records registry lifecycle facts on a durable side-channel.
// Credential invalidation relies on it: the caller-supplied reason must
// survive even though the credential row itself is deleted.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Action names one auditable registry event.
type Action string

const (
	ActionIdentityRegistered    Action = "identity.registered"
	ActionCredentialIssued      Action = "credential.issued"
	ActionCredentialInvalidated Action = "credential.invalidated"
)

// Event is one audit record. SubjectDID and Reason are empty for actions they
// do not apply to.
type Event struct {
	ID            uuid.UUID
	Action        Action
	WalletAddress string
	SubjectDID    string
	Reason        string
	Timestamp     time.Time
}

// Store is an append-only sink for audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}

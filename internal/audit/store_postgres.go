package audit

import (
	"context"
	"database/sql"
	"fmt"

	txcontext "vcregistry/pkg/platform/tx"
)

// PostgresStore appends audit events to the audit_events table. It joins the
// ambient transaction when one rides in the context, so an invalidation
// reason commits or rolls back together with the credential delete.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed audit store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *PostgresStore) q(ctx context.Context) execer {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	_, err := s.q(ctx).ExecContext(ctx, `
		INSERT INTO audit_events (id, action, wallet_address, subject_did, reason, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, event.ID, string(event.Action), event.WalletAddress, event.SubjectDID, event.Reason, event.Timestamp)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

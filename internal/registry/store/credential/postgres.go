// Package credential persists the verifiable-credential token records,
// many per identity, addressed by (auth_id, subject_did).
package credential

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"vcregistry/internal/registry/models"
	"vcregistry/pkg/platform/sentinel"
	txcontext "vcregistry/pkg/platform/tx"
)

// PostgresStore persists credentials in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed credential store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) q(ctx context.Context) querier {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// Insert stores a new credential row and returns it with the generated id.
func (s *PostgresStore) Insert(ctx context.Context, c *models.Credential) (*models.Credential, error) {
	err := s.q(ctx).QueryRowContext(ctx, `
		INSERT INTO vc (auth_id, subject_did, token, credential_type, metadata)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, c.AuthID, c.SubjectDID, c.Token, c.CredentialType, c.Metadata).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert credential: %w", err)
	}
	return c, nil
}

// FindByAuthAndSubject returns the credential for (authID, subjectDID).
// (auth_id, subject_did) is not unique; when duplicates exist the newest row
// wins, by created_at and then id as the tie-break.
func (s *PostgresStore) FindByAuthAndSubject(ctx context.Context, authID int64, subjectDID string) (*models.Credential, error) {
	c := &models.Credential{}
	err := s.q(ctx).QueryRowContext(ctx, `
		SELECT id, auth_id, subject_did, token, credential_type, metadata, created_at
		FROM vc
		WHERE auth_id = $1 AND subject_did = $2
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, authID, subjectDID).Scan(&c.ID, &c.AuthID, &c.SubjectDID, &c.Token, &c.CredentialType, &c.Metadata, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find credential: %w", err)
	}
	return c, nil
}

// ListByAuthID returns all credentials for an identity, newest first. The
// slice is empty, not nil-with-error, when the identity has none.
func (s *PostgresStore) ListByAuthID(ctx context.Context, authID int64) ([]models.Credential, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `
		SELECT id, auth_id, subject_did, token, credential_type, metadata, created_at
		FROM vc
		WHERE auth_id = $1
		ORDER BY created_at DESC, id DESC
	`, authID)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	defer rows.Close()

	credentials := []models.Credential{}
	for rows.Next() {
		var c models.Credential
		if err := rows.Scan(&c.ID, &c.AuthID, &c.SubjectDID, &c.Token, &c.CredentialType, &c.Metadata, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan credential: %w", err)
		}
		credentials = append(credentials, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	return credentials, nil
}

// DeleteByAuthAndSubject hard-deletes every credential row matching the
// addressing key and reports how many rows went away.
func (s *PostgresStore) DeleteByAuthAndSubject(ctx context.Context, authID int64, subjectDID string) (int64, error) {
	res, err := s.q(ctx).ExecContext(ctx, `
		DELETE FROM vc
		WHERE auth_id = $1 AND subject_did = $2
	`, authID, subjectDID)
	if err != nil {
		return 0, fmt.Errorf("delete credential: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete credential rows affected: %w", err)
	}
	return affected, nil
}

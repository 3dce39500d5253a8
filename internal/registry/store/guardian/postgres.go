// Package guardian persists the person-role profiles, one per identity.
package guardian

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"vcregistry/internal/registry/models"
	"vcregistry/pkg/platform/sentinel"
	txcontext "vcregistry/pkg/platform/tx"
)

// PostgresStore persists guardian profiles in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed guardian store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) q(ctx context.Context) querier {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// FindByAuthID returns the guardian profile linked to an identity.
func (s *PostgresStore) FindByAuthID(ctx context.Context, authID int64) (*models.Guardian, error) {
	g := &models.Guardian{}
	err := s.q(ctx).QueryRowContext(ctx, `
		SELECT id, auth_id, email, phone, name, is_email_verified, is_on_chain_registered
		FROM guardian
		WHERE auth_id = $1
	`, authID).Scan(&g.ID, &g.AuthID, &g.Email, &g.Phone, &g.Name, &g.IsEmailVerified, &g.IsOnChainRegistered)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find guardian by auth id: %w", err)
	}
	return g, nil
}

// Insert creates a guardian profile and returns it with the generated id.
func (s *PostgresStore) Insert(ctx context.Context, g *models.Guardian) (*models.Guardian, error) {
	err := s.q(ctx).QueryRowContext(ctx, `
		INSERT INTO guardian (auth_id, email, phone, name, is_email_verified, is_on_chain_registered)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, g.AuthID, g.Email, g.Phone, g.Name, g.IsEmailVerified, g.IsOnChainRegistered).Scan(&g.ID)
	if err != nil {
		return nil, fmt.Errorf("insert guardian: %w", err)
	}
	return g, nil
}

// Update persists the full merged profile.
func (s *PostgresStore) Update(ctx context.Context, g *models.Guardian) error {
	res, err := s.q(ctx).ExecContext(ctx, `
		UPDATE guardian
		SET email = $2, phone = $3, name = $4, is_email_verified = $5, is_on_chain_registered = $6
		WHERE id = $1
	`, g.ID, g.Email, g.Phone, g.Name, g.IsEmailVerified, g.IsOnChainRegistered)
	if err != nil {
		return fmt.Errorf("update guardian: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update guardian rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

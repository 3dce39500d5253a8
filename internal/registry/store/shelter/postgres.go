// Package shelter persists the organization-role profiles, one per identity.
package shelter

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"vcregistry/internal/registry/models"
	"vcregistry/pkg/platform/sentinel"
	txcontext "vcregistry/pkg/platform/tx"
)

// PostgresStore persists shelter profiles in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed shelter store.
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

// FindByAuthID returns the shelter profile linked to an identity.
func (s *PostgresStore) FindByAuthID(ctx context.Context, authID int64) (*models.Shelter, error) {
	sh := &models.Shelter{}
	err := s.q(ctx).QueryRowContext(ctx, `
		SELECT id, auth_id, name, location, license_number, capacity, status
		FROM shelter
		WHERE auth_id = $1
	`, authID).Scan(&sh.ID, &sh.AuthID, &sh.Name, &sh.Location, &sh.LicenseNumber, &sh.Capacity, &sh.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find shelter by auth id: %w", err)
	}
	return sh, nil
}

// Insert creates a shelter profile and returns it with the generated id.
func (s *PostgresStore) Insert(ctx context.Context, sh *models.Shelter) (*models.Shelter, error) {
	err := s.q(ctx).QueryRowContext(ctx, `
		INSERT INTO shelter (auth_id, name, location, license_number, capacity, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, sh.AuthID, sh.Name, sh.Location, sh.LicenseNumber, sh.Capacity, sh.Status).Scan(&sh.ID)
	if err != nil {
		return nil, fmt.Errorf("insert shelter: %w", err)
	}
	return sh, nil
}

// Update persists the merged profile. Status is deliberately not part of the
// update set; only the approval workflow may change it.
func (s *PostgresStore) Update(ctx context.Context, sh *models.Shelter) error {
	res, err := s.q(ctx).ExecContext(ctx, `
		UPDATE shelter
		SET name = $2, location = $3, license_number = $4, capacity = $5
		WHERE id = $1
	`, sh.ID, sh.Name, sh.Location, sh.LicenseNumber, sh.Capacity)
	if err != nil {
		return fmt.Errorf("update shelter: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update shelter rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

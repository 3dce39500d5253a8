// Package identity persists the root auth records keyed by wallet address.
package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"vcregistry/internal/registry/models"
	"vcregistry/pkg/platform/sentinel"
	txcontext "vcregistry/pkg/platform/tx"
)

const uniqueViolation = "23505"

// PostgresStore persists identities in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed identity store.
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

// Create inserts a new identity. The unique index on wallet_address is the
// sole duplicate guard; concurrent registrations race to the constraint, and
// the loser surfaces as sentinel.ErrConflict.
func (s *PostgresStore) Create(ctx context.Context, walletAddress string) (*models.Identity, error) {
	identity := &models.Identity{WalletAddress: walletAddress}
	err := s.q(ctx).QueryRowContext(ctx, `
		INSERT INTO auth (wallet_address)
		VALUES ($1)
		RETURNING id, created_at
	`, walletAddress).Scan(&identity.ID, &identity.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, sentinel.ErrConflict
		}
		return nil, fmt.Errorf("create identity: %w", err)
	}
	return identity, nil
}

// FindByWallet looks up an identity by wallet address.
func (s *PostgresStore) FindByWallet(ctx context.Context, walletAddress string) (*models.Identity, error) {
	identity := &models.Identity{}
	err := s.q(ctx).QueryRowContext(ctx, `
		SELECT id, wallet_address, created_at FROM auth
		WHERE wallet_address = $1
	`, walletAddress).Scan(&identity.ID, &identity.WalletAddress, &identity.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find identity by wallet: %w", err)
	}
	return identity, nil
}

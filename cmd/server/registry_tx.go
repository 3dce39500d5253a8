package main

import (
	"context"
	"database/sql"
	"time"

	txcontext "vcregistry/pkg/platform/tx"
	"vcregistry/pkg/vcerrors"
)

const defaultRegistryTxTimeout = 5 * time.Second

// registryPostgresTx is the production StoreTx: one SQL transaction per unit
// of work, carried through the context so every store inside the scope reads
// and writes through it.
type registryPostgresTx struct {
	db      *sql.DB
	timeout time.Duration
}

func newRegistryPostgresTx(db *sql.DB) *registryPostgresTx {
	return &registryPostgresTx{db: db}
}

// RunInTx begins a transaction, runs fn with the transactional context, and
// commits only when fn succeeds. The deferred Rollback is the unconditional
// cleanup path: it undoes the scope on any error or panic and is a no-op
// after a successful commit, so a rollback fault can never mask fn's error.
func (t *registryPostgresTx) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return vcerrors.Wrap(err, vcerrors.CodeServiceUnavailable, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultRegistryTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return vcerrors.Wrap(err, vcerrors.CodeTransactionFailed, "begin transaction")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(txcontext.With(ctx, tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return vcerrors.Wrap(err, vcerrors.CodeTransactionFailed, "commit transaction")
	}
	return nil
}

package service

import "context"

// StoreTx scopes a unit of work. The implementation guarantees that when fn
// returns an error or panics, no write inside the scope remains visible, and
// that cleanup runs on every exit path. Profile upserts, credential issuance
// and credential invalidation each run inside one scope.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error
}

// passthroughTx runs the unit of work without transactional guarantees.
// Default for unit tests over memory stores; production wires the postgres
// coordinator instead.
type passthroughTx struct{}

func (passthroughTx) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

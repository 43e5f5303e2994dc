package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TransactionManager defines methods for transaction management
type TransactionManager interface {
	// Begin starts a new database transaction
	Begin(ctx context.Context) (pgx.Tx, error)

	// Commit commits a transaction
	Commit(ctx context.Context, tx pgx.Tx) error

	// Rollback rolls back a transaction
	Rollback(ctx context.Context, tx pgx.Tx) error
}

// UnitOfWork runs repository calls as one atomic database transaction.
// Repositories called with the ctx handed to fn join that transaction.
type UnitOfWork interface {
	// Atomic commits when fn returns nil and rolls back otherwise.
	Atomic(ctx context.Context, fn func(ctx context.Context) error) error
}

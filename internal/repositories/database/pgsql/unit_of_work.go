package pgsql

import (
	"context"

	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxUnitOfWork runs service-level units of work as one Postgres transaction.
type PgxUnitOfWork struct {
	BaseRepository
}

func newPgxUnitOfWork(pool *pgxpool.Pool) *PgxUnitOfWork {
	return &PgxUnitOfWork{BaseRepository: BaseRepository{Pool: pool}}
}

var (
	_ portsrepo.UnitOfWork         = (*PgxUnitOfWork)(nil)
	_ portsrepo.TransactionManager = (*PgxUnitOfWork)(nil)
)

// Atomic commits when fn returns nil and rolls back otherwise. Nested calls
// join the outer transaction.
func (u *PgxUnitOfWork) Atomic(ctx context.Context, fn func(ctx context.Context) error) error {
	return u.inTx(ctx, fn)
}

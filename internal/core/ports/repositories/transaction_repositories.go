package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/utils/pagination"
)

// TransactionListFilter narrows a transaction listing.
// A zero Limit returns every transaction.
type TransactionListFilter struct {
	Limit int
	After *pagination.Cursor
}

// TransactionReader defines read operations for transactions and their journal entries
type TransactionReader interface {
	// FindTransactionByID retrieves a transaction with its entries and their account summaries.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// FindTransactionByIDForUpdate retrieves a transaction header and locks its row
	// until the surrounding unit of work ends.
	FindTransactionByIDForUpdate(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// ListTransactions retrieves transactions ordered by date descending, with their entries.
	ListTransactions(ctx context.Context, filter TransactionListFilter) ([]domain.Transaction, error)
}

// TransactionWriter defines write operations for transactions
type TransactionWriter interface {
	// SaveTransaction inserts a transaction header and all of its entries.
	// A taken reference yields apperrors.ErrDuplicate.
	SaveTransaction(ctx context.Context, txn domain.Transaction) error

	// UpdateTransactionStatus sets the status of a transaction.
	UpdateTransactionStatus(ctx context.Context, transactionID string, status domain.TransactionStatus, updatedAt time.Time) error
}

// TransactionRepositoryFacade combines all transaction-related repository interfaces
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
}

package repositories

import (
	"context"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

// ReportingRepository defines read-side aggregations over posted journal entries
type ReportingRepository interface {
	// SumPostedEntries returns the posted debit and credit totals of one account.
	SumPostedEntries(ctx context.Context, accountID string) (domain.EntryTotals, error)

	// SumPostedEntriesByAccount returns posted totals for every account that has any, keyed by account ID.
	SumPostedEntriesByAccount(ctx context.Context) (map[string]domain.EntryTotals, error)

	// CountPendingEntries returns how many entries of PENDING transactions touch the account.
	CountPendingEntries(ctx context.Context, accountID string) (int, error)

	// ListGeneralLedger returns entries in creation order, optionally restricted to an account code.
	ListGeneralLedger(ctx context.Context, accountCode string) ([]domain.GeneralLedgerRow, error)
}

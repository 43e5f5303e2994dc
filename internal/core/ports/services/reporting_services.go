package services

import (
	"context"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

// ReportingService defines operations for generating ledger reports
type ReportingService interface {
	// TrialBalance generates a trial balance over all active accounts.
	TrialBalance(ctx context.Context) (*domain.TrialBalance, error)

	// GeneralLedger lists journal entries oldest first, optionally for one account code.
	GeneralLedger(ctx context.Context, accountCode string) ([]domain.GeneralLedgerRow, error)
}

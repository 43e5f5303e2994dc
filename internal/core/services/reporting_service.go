package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// reportingService implements the ReportingService interface
type reportingService struct {
	BaseService
	accountRepo   portsrepo.AccountReader
	reportingRepo portsrepo.ReportingRepository
}

// NewReportingService creates a new reporting service with the provided options
func NewReportingService(accountRepo portsrepo.AccountReader, repo portsrepo.ReportingRepository, options ...ServiceOption) portssvc.ReportingService {
	svc := &reportingService{
		BaseService:   newBaseService(),
		accountRepo:   accountRepo,
		reportingRepo: repo,
	}
	applyOptions(&svc.BaseService, options)
	return svc
}

// Ensure reportingService implements the ReportingService interface
var _ portssvc.ReportingService = (*reportingService)(nil)

// TrialBalance lists every active account with its posted balance placed in the
// debit or credit column. Accounts without posted entries show zero in both.
func (s *reportingService) TrialBalance(ctx context.Context) (*domain.TrialBalance, error) {
	accounts, err := s.accountRepo.ListActiveAccounts(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts for trial balance")
		return nil, fmt.Errorf("failed to retrieve trial balance accounts: %w", err)
	}

	totals, err := s.reportingRepo.SumPostedEntriesByAccount(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to retrieve trial balance data")
		return nil, fmt.Errorf("failed to retrieve trial balance data: %w", err)
	}

	report := &domain.TrialBalance{
		Rows:        make([]domain.TrialBalanceRow, 0, len(accounts)),
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}
	for _, acc := range accounts {
		t, ok := totals[acc.AccountID]
		if !ok {
			t = domain.EntryTotals{AccountID: acc.AccountID, TotalDebits: decimal.Zero, TotalCredits: decimal.Zero}
		}

		balance, err := accounting.NormalBalance(acc.AccountType, t.TotalDebits, t.TotalCredits)
		if err != nil {
			return nil, fmt.Errorf("failed to compute balance for account %s: %w", acc.Code, err)
		}
		debit, credit := accounting.TrialBalanceColumns(acc.AccountType, balance)

		report.Rows = append(report.Rows, domain.TrialBalanceRow{
			Account: acc.Summary(),
			Debit:   debit,
			Credit:  credit,
			Balance: balance,
		})
		report.TotalDebit = report.TotalDebit.Add(debit)
		report.TotalCredit = report.TotalCredit.Add(credit)
	}

	if !report.IsBalanced() {
		// Accounts are only deactivated once settled, so a gap means entries changed outside the ledger.
		s.GetLogger(ctx).Warn("Trial balance totals differ",
			slog.String("total_debit", report.TotalDebit.String()),
			slog.String("total_credit", report.TotalCredit.String()))
	}

	s.LogInfo(ctx, "Trial balance report generated successfully",
		slog.Int("row_count", len(report.Rows)),
		slog.String("total_debit", report.TotalDebit.String()))
	return report, nil
}

// GeneralLedger lists journal entries in creation order. An empty code lists every entry;
// a code that matches no account yields an empty list.
func (s *reportingService) GeneralLedger(ctx context.Context, accountCode string) ([]domain.GeneralLedgerRow, error) {
	accountCode = strings.TrimSpace(accountCode)
	rows, err := s.reportingRepo.ListGeneralLedger(ctx, accountCode)
	if err != nil {
		s.LogError(ctx, err, "Failed to retrieve general ledger", slog.String("account_code", accountCode))
		return nil, fmt.Errorf("failed to retrieve general ledger: %w", err)
	}
	if rows == nil {
		rows = []domain.GeneralLedgerRow{}
	}

	s.LogDebug(ctx, "General ledger retrieved",
		slog.String("account_code", accountCode),
		slog.Int("row_count", len(rows)))
	return rows, nil
}

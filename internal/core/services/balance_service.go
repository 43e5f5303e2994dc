package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/utils/accounting"
)

// balanceService derives account balances from posted journal entries.
type balanceService struct {
	BaseService
	accountRepo   portsrepo.AccountReader
	reportingRepo portsrepo.ReportingRepository
}

// NewBalanceService creates the account balance calculator.
func NewBalanceService(accountRepo portsrepo.AccountReader, reportingRepo portsrepo.ReportingRepository, options ...ServiceOption) portssvc.AccountCalculatorSvc {
	svc := &balanceService{
		BaseService:   newBaseService(),
		accountRepo:   accountRepo,
		reportingRepo: reportingRepo,
	}
	applyOptions(&svc.BaseService, options)
	return svc
}

var _ portssvc.AccountCalculatorSvc = (*balanceService)(nil)

// GetAccountBalance sums the POSTED entries of the account and applies its normal-side sign.
func (s *balanceService) GetAccountBalance(ctx context.Context, code string) (*domain.AccountBalance, error) {
	account, err := s.accountRepo.FindAccountByCode(ctx, code)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account for balance", slog.String("code", code))
		}
		return nil, err
	}

	totals, err := s.reportingRepo.SumPostedEntries(ctx, account.AccountID)
	if err != nil {
		s.LogError(ctx, err, "Failed to sum posted entries", slog.String("account_id", account.AccountID))
		return nil, fmt.Errorf("failed to calculate balance for account %s: %w", code, err)
	}

	balance, err := accounting.NormalBalance(account.AccountType, totals.TotalDebits, totals.TotalCredits)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate balance for account %s: %w", code, err)
	}

	s.LogDebug(ctx, "Account balance calculated",
		slog.String("code", code),
		slog.String("balance", balance.String()))
	return &domain.AccountBalance{
		Account:      account.Summary(),
		TotalDebits:  totals.TotalDebits,
		TotalCredits: totals.TotalCredits,
		Balance:      balance,
	}, nil
}

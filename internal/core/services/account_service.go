package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/google/uuid"
)

// accountService implements the AccountSvcFacade interface
type accountService struct {
	BaseService
	accountRepo   portsrepo.AccountRepositoryFacade
	reportingRepo portsrepo.ReportingRepository
}

// NewAccountService creates a new account service with the provided options.
// reportingRepo guards deactivation of accounts that still carry entries.
func NewAccountService(repo portsrepo.AccountRepositoryFacade, reportingRepo portsrepo.ReportingRepository, options ...ServiceOption) portssvc.AccountSvcFacade {
	svc := &accountService{
		BaseService:   newBaseService(),
		accountRepo:   repo,
		reportingRepo: reportingRepo,
	}
	applyOptions(&svc.BaseService, options)
	return svc
}

// Ensure accountService implements the AccountSvcFacade interface
var _ portssvc.AccountSvcFacade = (*accountService)(nil)

func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest) (*domain.Account, error) {
	code := strings.TrimSpace(req.Code)
	name := strings.TrimSpace(req.Name)
	if code == "" || name == "" {
		return nil, fmt.Errorf("%w: account code and name are required", apperrors.ErrValidation)
	}
	if !req.AccountType.IsValid() {
		return nil, fmt.Errorf("%w: unknown account type %q, expected one of %v", apperrors.ErrValidation, req.AccountType, domain.AccountTypes)
	}

	now := s.Now()
	account := domain.Account{
		AccountID:   uuid.NewString(),
		Code:        code,
		Name:        name,
		AccountType: req.AccountType,
		Description: req.Description,
		IsActive:    true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			LastUpdatedAt: now,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			s.LogDebug(ctx, "Account code already taken", slog.String("code", code))
			return nil, err
		}
		s.LogError(ctx, err, "Failed to save account", slog.String("code", code))
		return nil, fmt.Errorf("failed to create account %s: %w", code, err)
	}

	s.LogInfo(ctx, "Account created successfully",
		slog.String("account_id", account.AccountID),
		slog.String("code", account.Code))
	return &account, nil
}

func (s *accountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account by ID", slog.String("account_id", accountID))
		}
		return nil, err // Propagate error (including NotFound)
	}
	return account, nil
}

func (s *accountService) GetAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByCode(ctx, code)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account by code", slog.String("code", code))
		}
		return nil, err
	}
	return account, nil
}

func (s *accountService) ListActiveAccounts(ctx context.Context) ([]domain.Account, error) {
	accounts, err := s.accountRepo.ListActiveAccounts(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts")
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	if accounts == nil {
		return []domain.Account{}, nil // Return empty slice if repo returns nil
	}

	s.LogDebug(ctx, "Accounts listed successfully", slog.Int("count", len(accounts)))
	return accounts, nil
}

func (s *accountService) UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest) (*domain.Account, error) {
	account, err := s.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	updated := false
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: account name cannot be empty", apperrors.ErrValidation)
		}
		account.Name = name
		updated = true
	}
	if req.Description != nil {
		account.Description = *req.Description
		updated = true
	}
	if req.IsActive != nil {
		if account.IsActive && !*req.IsActive {
			if err := s.ensureSettled(ctx, account); err != nil {
				return nil, err
			}
		}
		account.IsActive = *req.IsActive
		updated = true
	}
	if !updated {
		s.LogDebug(ctx, "No fields provided for account update", slog.String("account_id", accountID))
		return account, nil
	}

	account.LastUpdatedAt = s.Now()

	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		s.LogError(ctx, err, "Failed to update account", slog.String("account_id", accountID))
		return nil, err
	}

	s.LogInfo(ctx, "Account updated successfully",
		slog.String("account_id", account.AccountID),
		slog.Bool("is_active", account.IsActive))
	return account, nil
}

// ensureSettled rejects deactivating an account that has a non-zero posted balance or
// entries in pending transactions. Inactive accounts are left out of the trial balance,
// so either would make its totals differ.
func (s *accountService) ensureSettled(ctx context.Context, account *domain.Account) error {
	totals, err := s.reportingRepo.SumPostedEntries(ctx, account.AccountID)
	if err != nil {
		s.LogError(ctx, err, "Failed to sum posted entries", slog.String("account_id", account.AccountID))
		return fmt.Errorf("failed to check balance of account %s: %w", account.Code, err)
	}
	if !totals.TotalDebits.Equal(totals.TotalCredits) {
		return fmt.Errorf("%w: account %s has a posted balance of %s and cannot be deactivated",
			apperrors.ErrInvalidTransition, account.Code, totals.TotalDebits.Sub(totals.TotalCredits).Abs().String())
	}

	pending, err := s.reportingRepo.CountPendingEntries(ctx, account.AccountID)
	if err != nil {
		s.LogError(ctx, err, "Failed to count pending entries", slog.String("account_id", account.AccountID))
		return fmt.Errorf("failed to check pending entries of account %s: %w", account.Code, err)
	}
	if pending > 0 {
		return fmt.Errorf("%w: account %s has %d entries in pending transactions and cannot be deactivated",
			apperrors.ErrInvalidTransition, account.Code, pending)
	}
	return nil
}

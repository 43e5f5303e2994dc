package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/SscSPs/ledger_engine/internal/utils/accounting"
	"github.com/SscSPs/ledger_engine/internal/utils/pagination"
)

// transactionService records transactions and drives their lifecycle.
type transactionService struct {
	BaseService
	uow             portsrepo.UnitOfWork
	accountRepo     portsrepo.AccountReader
	transactionRepo portsrepo.TransactionRepositoryFacade
	eventRepo       portsrepo.EventWriter
}

// NewTransactionService creates a new TransactionService.
func NewTransactionService(
	uow portsrepo.UnitOfWork,
	accountRepo portsrepo.AccountReader,
	transactionRepo portsrepo.TransactionRepositoryFacade,
	eventRepo portsrepo.EventWriter,
	options ...ServiceOption,
) portssvc.TransactionSvcFacade {
	svc := &transactionService{
		BaseService:     newBaseService(),
		uow:             uow,
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		eventRepo:       eventRepo,
	}
	applyOptions(&svc.BaseService, options)
	return svc
}

// Ensure transactionService implements the portssvc.TransactionSvcFacade interface
var _ portssvc.TransactionSvcFacade = (*transactionService)(nil)

// validateEntryShape checks one requested entry without touching storage.
func validateEntryShape(i int, e dto.EntryRequest) error {
	debit := strings.TrimSpace(e.DebitAccountCode)
	credit := strings.TrimSpace(e.CreditAccountCode)
	switch {
	case debit == "" && credit == "":
		return fmt.Errorf("%w: entry %d must name a debit or a credit account", apperrors.ErrValidation, i)
	case debit != "" && credit != "":
		return fmt.Errorf("%w: entry %d cannot name both a debit and a credit account", apperrors.ErrValidation, i)
	case !e.Amount.IsPositive():
		return fmt.Errorf("%w: entry %d amount must be positive", apperrors.ErrValidation, i)
	case !domain.HasMoneyPrecision(e.Amount):
		return fmt.Errorf("%w: entry %d amount %s has more than %d decimal places", apperrors.ErrValidation, i, e.Amount.String(), domain.MoneyScale)
	case !domain.InMoneyRange(e.Amount):
		return fmt.Errorf("%w: entry %d amount %s has more than %d integer digits", apperrors.ErrValidation, i, e.Amount.String(), domain.MoneyIntegerDigits)
	}
	return nil
}

// CreateTransaction validates the request and records it as PENDING.
// Malformed input is rejected first, then unknown or inactive account codes, then unbalanced entries.
func (s *transactionService) CreateTransaction(ctx context.Context, req dto.CreateTransactionRequest) (*domain.Transaction, error) {
	reference := strings.TrimSpace(req.Reference)
	description := strings.TrimSpace(req.Description)
	if reference == "" || description == "" {
		return nil, fmt.Errorf("%w: reference and description are required", apperrors.ErrValidation)
	}
	date, err := req.ParseDate()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}
	if len(req.Entries) == 0 {
		return nil, fmt.Errorf("%w: a transaction needs at least one entry", apperrors.ErrValidation)
	}

	codes := make([]string, 0, len(req.Entries))
	seen := make(map[string]struct{}, len(req.Entries))
	for i, e := range req.Entries {
		if err := validateEntryShape(i, e); err != nil {
			return nil, err
		}
		code := strings.TrimSpace(e.DebitAccountCode + e.CreditAccountCode)
		if _, ok := seen[code]; !ok {
			seen[code] = struct{}{}
			codes = append(codes, code)
		}
	}

	now := s.Now()
	txn := domain.Transaction{
		TransactionID: uuid.NewString(),
		Reference:     reference,
		Description:   description,
		Date:          date,
		Status:        domain.Pending,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			LastUpdatedAt: now,
		},
	}

	err = s.uow.Atomic(ctx, func(ctx context.Context) error {
		accounts, err := s.accountRepo.FindAccountsByCodes(ctx, codes)
		if err != nil {
			return fmt.Errorf("failed to look up accounts: %w", err)
		}
		for _, code := range codes {
			acc, ok := accounts[code]
			if !ok {
				return fmt.Errorf("%w: %s", apperrors.ErrUnknownAccount, code)
			}
			if !acc.IsActive {
				return fmt.Errorf("%w: account %s is inactive", apperrors.ErrValidation, code)
			}
		}

		txn.Entries = make([]domain.JournalEntry, len(req.Entries))
		for i, e := range req.Entries {
			entry := domain.JournalEntry{
				EntryID:       uuid.NewString(),
				TransactionID: txn.TransactionID,
				Amount:        e.Amount,
				Description:   strings.TrimSpace(e.Description),
				CreatedAt:     now,
			}
			if code := strings.TrimSpace(e.DebitAccountCode); code != "" {
				acc := accounts[code]
				summary := acc.Summary()
				entry.DebitAccountID = acc.AccountID
				entry.DebitAccount = &summary
			} else {
				acc := accounts[strings.TrimSpace(e.CreditAccountCode)]
				summary := acc.Summary()
				entry.CreditAccountID = acc.AccountID
				entry.CreditAccount = &summary
			}
			txn.Entries[i] = entry
		}

		debits, credits, balanced := accounting.ValidateEntriesBalance(txn.Entries)
		if !balanced {
			return fmt.Errorf("%w: %w: debits %s, credits %s",
				apperrors.ErrValidation, apperrors.ErrUnbalanced, debits.String(), credits.String())
		}
		if !domain.InMoneyRange(debits) {
			return fmt.Errorf("%w: transaction total %s has more than %d integer digits",
				apperrors.ErrValidation, debits.String(), domain.MoneyIntegerDigits)
		}
		txn.Amount = debits

		if err := s.transactionRepo.SaveTransaction(ctx, txn); err != nil {
			return err
		}
		return s.saveEvent(ctx, txn, domain.EventTransactionCreated)
	})
	if err != nil {
		s.logWriteFailure(ctx, err, "Failed to create transaction", slog.String("reference", reference))
		return nil, err
	}

	s.Metrics.TransactionRecorded(string(domain.Pending))
	s.LogInfo(ctx, "Transaction created successfully",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("reference", txn.Reference),
		slog.String("amount", txn.Amount.String()),
		slog.Int("entry_count", len(txn.Entries)))
	return &txn, nil
}

// GetTransaction retrieves a transaction with its entries.
func (s *transactionService) GetTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	txn, err := s.transactionRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find transaction by ID", slog.String("transaction_id", transactionID))
		}
		return nil, err
	}
	return txn, nil
}

// ListTransactions retrieves transactions newest first. With a limit, the response
// carries a token for the next page when more rows exist.
func (s *transactionService) ListTransactions(ctx context.Context, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	filter := portsrepo.TransactionListFilter{}
	if params.NextToken != nil && *params.NextToken != "" {
		cursor, err := pagination.DecodeCursor(*params.NextToken)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
		filter.After = &cursor
	}
	if params.Limit > 0 {
		// One extra row tells us whether another page exists.
		filter.Limit = params.Limit + 1
	}

	txns, err := s.transactionRepo.ListTransactions(ctx, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list transactions")
		return nil, fmt.Errorf("failed to retrieve transactions: %w", err)
	}

	var nextToken *string
	if params.Limit > 0 && len(txns) > params.Limit {
		txns = txns[:params.Limit]
		last := txns[len(txns)-1]
		token := pagination.EncodeCursor(pagination.Cursor{Date: last.Date, CreatedAt: last.CreatedAt, ID: last.TransactionID})
		nextToken = &token
	}

	s.LogDebug(ctx, "Transactions listed successfully", slog.Int("count", len(txns)))
	return &dto.ListTransactionsResponse{
		Transactions: dto.ToTransactionResponses(txns),
		NextToken:    nextToken,
	}, nil
}

// PostTransaction moves a pending transaction to POSTED, making it count in balances.
func (s *transactionService) PostTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	return s.transition(ctx, transactionID, domain.Posted, domain.EventTransactionPosted)
}

// CancelTransaction moves a pending transaction to CANCELLED.
func (s *transactionService) CancelTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	return s.transition(ctx, transactionID, domain.Cancelled, domain.EventTransactionCancelled)
}

// transition locks the transaction row, checks the lifecycle and records the change with its event.
func (s *transactionService) transition(ctx context.Context, transactionID string, next domain.TransactionStatus, eventType domain.LedgerEventType) (*domain.Transaction, error) {
	var result *domain.Transaction
	err := s.uow.Atomic(ctx, func(ctx context.Context) error {
		current, err := s.transactionRepo.FindTransactionByIDForUpdate(ctx, transactionID)
		if err != nil {
			return err
		}
		if !current.Status.CanTransitionTo(next) {
			return fmt.Errorf("%w: transaction %s is %s and cannot become %s",
				apperrors.ErrInvalidTransition, transactionID, current.Status, next)
		}

		if err := s.transactionRepo.UpdateTransactionStatus(ctx, transactionID, next, s.Now()); err != nil {
			return err
		}

		result, err = s.transactionRepo.FindTransactionByID(ctx, transactionID)
		if err != nil {
			return fmt.Errorf("failed to reload transaction %s: %w", transactionID, err)
		}
		return s.saveEvent(ctx, *result, eventType)
	})
	if err != nil {
		s.logWriteFailure(ctx, err, "Failed to change transaction status",
			slog.String("transaction_id", transactionID),
			slog.String("target_status", string(next)))
		return nil, err
	}

	s.Metrics.TransactionRecorded(string(next))
	s.LogInfo(ctx, "Transaction status changed",
		slog.String("transaction_id", transactionID),
		slog.String("status", string(next)))
	return result, nil
}

func (s *transactionService) saveEvent(ctx context.Context, txn domain.Transaction, eventType domain.LedgerEventType) error {
	event, err := domain.NewTransactionEvent(txn, eventType, s.Now())
	if err != nil {
		return err
	}
	if err := s.eventRepo.SaveEvent(ctx, event); err != nil {
		return fmt.Errorf("failed to record %s event: %w", eventType, err)
	}
	return nil
}

// logWriteFailure logs client errors at debug level and everything else as errors.
func (s *transactionService) logWriteFailure(ctx context.Context, err error, msg string, keyvals ...any) {
	switch {
	case errors.Is(err, apperrors.ErrValidation),
		errors.Is(err, apperrors.ErrUnknownAccount),
		errors.Is(err, apperrors.ErrNotFound),
		errors.Is(err, apperrors.ErrDuplicate),
		errors.Is(err, apperrors.ErrInvalidTransition):
		s.LogDebug(ctx, msg, append([]any{slog.String("reason", err.Error())}, keyvals...)...)
	default:
		s.LogError(ctx, err, msg, keyvals...)
	}
}

package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PgxReportingRepository implements the ReportingRepository interface
type PgxReportingRepository struct {
	BaseRepository
}

// newReportingRepository creates a new reporting repository
func newReportingRepository(pool *pgxpool.Pool) *PgxReportingRepository {
	return &PgxReportingRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxReportingRepository implements the ReportingRepository interface
var _ portsrepo.ReportingRepository = (*PgxReportingRepository)(nil)

// SumPostedEntries returns the posted debit and credit totals of one account.
func (r *PgxReportingRepository) SumPostedEntries(ctx context.Context, accountID string) (domain.EntryTotals, error) {
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN je.debit_account_id = $1 THEN je.amount ELSE 0 END), 0) AS total_debits,
			COALESCE(SUM(CASE WHEN je.credit_account_id = $1 THEN je.amount ELSE 0 END), 0) AS total_credits
		FROM journal_entries je
		JOIN transactions t ON t.transaction_id = je.transaction_id
		WHERE t.status = 'POSTED'
			AND (je.debit_account_id = $1 OR je.credit_account_id = $1);
	`
	totals := domain.EntryTotals{AccountID: accountID}
	if err := r.db(ctx).QueryRow(ctx, query, accountID).Scan(&totals.TotalDebits, &totals.TotalCredits); err != nil {
		return domain.EntryTotals{}, fmt.Errorf("failed to sum posted entries for account %s: %w", accountID, err)
	}
	return totals, nil
}

// CountPendingEntries returns how many entries of PENDING transactions touch the account.
func (r *PgxReportingRepository) CountPendingEntries(ctx context.Context, accountID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM journal_entries je
		JOIN transactions t ON t.transaction_id = je.transaction_id
		WHERE t.status = 'PENDING'
			AND (je.debit_account_id = $1 OR je.credit_account_id = $1);
	`
	var count int
	if err := r.db(ctx).QueryRow(ctx, query, accountID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count pending entries for account %s: %w", accountID, err)
	}
	return count, nil
}

// SumPostedEntriesByAccount returns posted totals for every account with posted entries.
func (r *PgxReportingRepository) SumPostedEntriesByAccount(ctx context.Context) (map[string]domain.EntryTotals, error) {
	query := `
		SELECT
			COALESCE(je.debit_account_id, je.credit_account_id) AS account_id,
			SUM(CASE WHEN je.debit_account_id IS NOT NULL THEN je.amount ELSE 0 END) AS total_debits,
			SUM(CASE WHEN je.credit_account_id IS NOT NULL THEN je.amount ELSE 0 END) AS total_credits
		FROM journal_entries je
		JOIN transactions t ON t.transaction_id = je.transaction_id
		WHERE t.status = 'POSTED'
		GROUP BY 1;
	`
	rows, err := r.db(ctx).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query posted totals: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]domain.EntryTotals)
	for rows.Next() {
		var t domain.EntryTotals
		if err := rows.Scan(&t.AccountID, &t.TotalDebits, &t.TotalCredits); err != nil {
			return nil, fmt.Errorf("failed to scan posted totals row: %w", err)
		}
		totals[t.AccountID] = t
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating posted totals rows: %w", err)
	}
	return totals, nil
}

// ListGeneralLedger returns entries oldest first, optionally for one account code.
func (r *PgxReportingRepository) ListGeneralLedger(ctx context.Context, accountCode string) ([]domain.GeneralLedgerRow, error) {
	query, args, err := buildGeneralLedgerQuery(accountCode)
	if err != nil {
		return nil, fmt.Errorf("failed to build general ledger query: %w", err)
	}

	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query general ledger: %w", err)
	}
	defer rows.Close()

	ledger := []domain.GeneralLedgerRow{}
	for rows.Next() {
		var (
			row                                          domain.GeneralLedgerRow
			status                                       string
			amount                                       decimal.Decimal
			debitID, debitCode, debitName, debitType     *string
			creditID, creditCode, creditName, creditType *string
		)
		if err := rows.Scan(
			&row.EntryID,
			&row.TransactionID,
			&row.Reference,
			&row.Date,
			&row.Description,
			&row.TransactionDescription,
			&status,
			&debitID, &debitCode, &debitName, &debitType,
			&creditID, &creditCode, &creditName, &creditType,
			&amount,
			&row.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan general ledger row: %w", err)
		}
		row.Status = domain.TransactionStatus(status)
		row.Amount = amount
		row.DebitAccount = accountSummary(debitID, debitCode, debitName, debitType)
		row.CreditAccount = accountSummary(creditID, creditCode, creditName, creditType)
		ledger = append(ledger, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating general ledger rows: %w", err)
	}
	return ledger, nil
}

package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_engine/internal/models"
	"github.com/SscSPs/ledger_engine/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxTransactionRepository struct {
	BaseRepository
}

// newPgxTransactionRepository creates a new repository for transactions and their entries.
func newPgxTransactionRepository(pool *pgxpool.Pool) *PgxTransactionRepository {
	return &PgxTransactionRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.TransactionRepositoryFacade = (*PgxTransactionRepository)(nil)

const selectTransactionByID = `
	SELECT transaction_id, reference, description, transaction_date, amount, status, created_at, updated_at
	FROM transactions
	WHERE transaction_id = $1`

func scanTransaction(row pgx.Row) (models.Transaction, error) {
	var m models.Transaction
	err := row.Scan(
		&m.TransactionID,
		&m.Reference,
		&m.Description,
		&m.Date,
		&m.Amount,
		&m.Status,
		&m.CreatedAt,
		&m.LastUpdatedAt,
	)
	return m, err
}

// SaveTransaction inserts the transaction header and its entries atomically.
func (r *PgxTransactionRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	modelTxn := mapping.ToModelTransaction(txn)

	return r.inTx(ctx, func(ctx context.Context) error {
		db := r.db(ctx)

		headerQuery := `
			INSERT INTO transactions (transaction_id, reference, description, transaction_date, amount, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
		`
		_, err := db.Exec(ctx, headerQuery,
			modelTxn.TransactionID,
			modelTxn.Reference,
			modelTxn.Description,
			modelTxn.Date,
			modelTxn.Amount,
			modelTxn.Status,
			modelTxn.CreatedAt,
			modelTxn.LastUpdatedAt,
		)
		if err != nil {
			if _, ok := isUniqueViolation(err); ok {
				return fmt.Errorf("%w: transaction with reference %s already exists", apperrors.ErrDuplicate, modelTxn.Reference)
			}
			return fmt.Errorf("failed to insert transaction %s: %w", modelTxn.TransactionID, err)
		}

		batch := &pgx.Batch{}
		entryQuery := `
			INSERT INTO journal_entries (entry_id, transaction_id, line_number, debit_account_id, credit_account_id, amount, description, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
		`
		for i, entry := range txn.Entries {
			m := mapping.ToModelJournalEntry(entry)
			batch.Queue(entryQuery,
				m.EntryID,
				modelTxn.TransactionID,
				i+1,
				m.DebitAccountID,
				m.CreditAccountID,
				m.Amount,
				m.Description,
				m.CreatedAt,
			)
		}

		// Closing the batch surfaces the first failed insert.
		if err := db.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to insert journal entries for transaction %s: %w", modelTxn.TransactionID, err)
		}
		return nil
	})
}

// FindTransactionByID retrieves a transaction with its entries.
func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	txn, err := r.findHeader(ctx, selectTransactionByID+";", transactionID)
	if err != nil {
		return nil, err
	}

	entries, err := r.loadEntries(ctx, []string{txn.TransactionID})
	if err != nil {
		return nil, err
	}
	txn.Entries = entries[txn.TransactionID]
	return txn, nil
}

// FindTransactionByIDForUpdate retrieves the transaction header and locks its row.
func (r *PgxTransactionRepository) FindTransactionByIDForUpdate(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	return r.findHeader(ctx, selectTransactionByID+" FOR UPDATE;", transactionID)
}

func (r *PgxTransactionRepository) findHeader(ctx context.Context, query, transactionID string) (*domain.Transaction, error) {
	modelTxn, err := scanTransaction(r.db(ctx).QueryRow(ctx, query, transactionID))
	if err != nil {
		if isMissingRow(err) {
			return nil, fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, transactionID)
		}
		return nil, fmt.Errorf("failed to find transaction %s: %w", transactionID, err)
	}
	txn := mapping.ToDomainTransaction(modelTxn)
	return &txn, nil
}

// ListTransactions retrieves transactions newest first with their entries.
func (r *PgxTransactionRepository) ListTransactions(ctx context.Context, filter portsrepo.TransactionListFilter) ([]domain.Transaction, error) {
	query, args, err := buildListTransactionsQuery(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to build transaction list query: %w", err)
	}

	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	txns := []domain.Transaction{}
	ids := []string{}
	for rows.Next() {
		modelTxn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		txns = append(txns, mapping.ToDomainTransaction(modelTxn))
		ids = append(ids, modelTxn.TransactionID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}
	rows.Close()

	if len(ids) == 0 {
		return txns, nil
	}

	entries, err := r.loadEntries(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range txns {
		txns[i].Entries = entries[txns[i].TransactionID]
	}
	return txns, nil
}

// loadEntries fetches the entries of the given transactions keyed by transaction ID.
func (r *PgxTransactionRepository) loadEntries(ctx context.Context, transactionIDs []string) (map[string][]domain.JournalEntry, error) {
	query, args, err := buildEntriesQuery(transactionIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build entries query: %w", err)
	}

	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal entries: %w", err)
	}
	defer rows.Close()

	entries := make(map[string][]domain.JournalEntry, len(transactionIDs))
	for rows.Next() {
		var (
			m                                  models.JournalEntry
			debitCode, debitName, debitType    *string
			creditCode, creditName, creditType *string
		)
		if err := rows.Scan(
			&m.EntryID,
			&m.TransactionID,
			&m.DebitAccountID,
			&m.CreditAccountID,
			&m.Amount,
			&m.Description,
			&m.CreatedAt,
			&debitCode, &debitName, &debitType,
			&creditCode, &creditName, &creditType,
		); err != nil {
			return nil, fmt.Errorf("failed to scan journal entry row: %w", err)
		}

		entry := mapping.ToDomainJournalEntry(m)
		entry.DebitAccount = accountSummary(m.DebitAccountID, debitCode, debitName, debitType)
		entry.CreditAccount = accountSummary(m.CreditAccountID, creditCode, creditName, creditType)
		entries[m.TransactionID] = append(entries[m.TransactionID], entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating journal entry rows: %w", err)
	}
	return entries, nil
}

// accountSummary builds the summary of a left-joined account; nil when the side is empty.
func accountSummary(id, code, name, accountType *string) *domain.AccountSummary {
	if id == nil || code == nil {
		return nil
	}
	s := &domain.AccountSummary{AccountID: *id, Code: *code}
	if name != nil {
		s.Name = *name
	}
	if accountType != nil {
		s.AccountType = domain.AccountType(*accountType)
	}
	return s
}

// UpdateTransactionStatus sets the status of a transaction.
func (r *PgxTransactionRepository) UpdateTransactionStatus(ctx context.Context, transactionID string, status domain.TransactionStatus, updatedAt time.Time) error {
	query := `
		UPDATE transactions
		SET status = $1, updated_at = $2
		WHERE transaction_id = $3;
	`
	cmdTag, err := r.db(ctx).Exec(ctx, query, string(status), updatedAt, transactionID)
	if err != nil {
		if isMissingRow(err) {
			return fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, transactionID)
		}
		return fmt.Errorf("failed to update status of transaction %s: %w", transactionID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: transaction %s", apperrors.ErrNotFound, transactionID)
	}
	return nil
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus mirrors the status column of the transactions table.
// The CHECK constraint on that column holds the allowed values.
type TransactionStatus string

// Transaction is a row of the transactions table.
type Transaction struct {
	TransactionID string            `db:"transaction_id"`
	Reference     string            `db:"reference"`
	Description   string            `db:"description"`
	Date          time.Time         `db:"transaction_date"`
	Amount        decimal.Decimal   `db:"amount"`
	Status        TransactionStatus `db:"status"`
	AuditFields
}

// JournalEntry is a row of the journal_entries table.
// Exactly one of DebitAccountID and CreditAccountID is non-nil.
type JournalEntry struct {
	EntryID         string          `db:"entry_id"`
	TransactionID   string          `db:"transaction_id"`
	DebitAccountID  *string         `db:"debit_account_id"`
	CreditAccountID *string         `db:"credit_account_id"`
	Amount          decimal.Decimal `db:"amount"`
	Description     *string         `db:"description"`
	CreatedAt       time.Time       `db:"created_at"`
}

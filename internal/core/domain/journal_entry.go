package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntrySide indicates whether a journal entry is a debit or a credit.
type EntrySide string

const (
	Debit  EntrySide = "DEBIT"
	Credit EntrySide = "CREDIT"
)

// JournalEntry is one side of one account inside a transaction.
// Exactly one of DebitAccountID and CreditAccountID is set.
type JournalEntry struct {
	EntryID         string          `json:"id"`
	TransactionID   string          `json:"transactionId"`
	DebitAccountID  string          `json:"debitAccountId,omitempty"`
	CreditAccountID string          `json:"creditAccountId,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`

	DebitAccount  *AccountSummary `json:"debitAccount,omitempty"`
	CreditAccount *AccountSummary `json:"creditAccount,omitempty"`
}

// IsDebit reports whether the entry debits its account.
func (e JournalEntry) IsDebit() bool {
	return e.DebitAccountID != ""
}

// IsCredit reports whether the entry credits its account.
func (e JournalEntry) IsCredit() bool {
	return e.CreditAccountID != ""
}

// Side returns the side of the entry.
func (e JournalEntry) Side() EntrySide {
	if e.IsDebit() {
		return Debit
	}
	return Credit
}

// AccountID returns the account touched by the entry.
func (e JournalEntry) AccountID() string {
	if e.IsDebit() {
		return e.DebitAccountID
	}
	return e.CreditAccountID
}

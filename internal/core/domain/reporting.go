package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryTotals holds the posted debit and credit sums of one account.
type EntryTotals struct {
	AccountID    string
	TotalDebits  decimal.Decimal
	TotalCredits decimal.Decimal
}

// AccountBalance is the normal-side balance of an account.
type AccountBalance struct {
	Account      AccountSummary  `json:"account"`
	TotalDebits  decimal.Decimal `json:"totalDebits"`
	TotalCredits decimal.Decimal `json:"totalCredits"`
	Balance      decimal.Decimal `json:"balance"`
}

// TrialBalanceRow represents a single row in a trial balance report.
// Balance is signed on the account's normal side.
type TrialBalanceRow struct {
	Account AccountSummary  `json:"account"`
	Debit   decimal.Decimal `json:"debit"`
	Credit  decimal.Decimal `json:"credit"`
	Balance decimal.Decimal `json:"balance"`
}

// TrialBalance is the full report with column totals.
type TrialBalance struct {
	Rows        []TrialBalanceRow `json:"rows"`
	TotalDebit  decimal.Decimal   `json:"totalDebit"`
	TotalCredit decimal.Decimal   `json:"totalCredit"`
}

// IsBalanced reports whether the debit and credit columns agree.
func (tb TrialBalance) IsBalanced() bool {
	return tb.TotalDebit.Equal(tb.TotalCredit)
}

// GeneralLedgerRow is a journal entry joined with its transaction and accounts.
type GeneralLedgerRow struct {
	EntryID                string            `json:"id"`
	TransactionID          string            `json:"transactionId"`
	Reference              string            `json:"reference"`
	Date                   time.Time         `json:"date"`
	Description            string            `json:"description"`
	TransactionDescription string            `json:"transactionDescription"`
	Status                 TransactionStatus `json:"status"`
	DebitAccount           *AccountSummary   `json:"debitAccount,omitempty"`
	CreditAccount          *AccountSummary   `json:"creditAccount,omitempty"`
	Amount                 decimal.Decimal   `json:"amount"`
	CreatedAt              time.Time         `json:"createdAt"`
}

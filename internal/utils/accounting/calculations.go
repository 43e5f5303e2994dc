package accounting

import (
	"fmt"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// NormalBalance applies the normal-side convention of accountType to posted totals.
// Debit-normal accounts (ASSET, EXPENSE) return debits - credits;
// credit-normal accounts (LIABILITY, EQUITY, REVENUE) return credits - debits.
func NormalBalance(accountType domain.AccountType, totalDebits, totalCredits decimal.Decimal) (decimal.Decimal, error) {
	switch accountType {
	case domain.Asset, domain.Expense:
		return totalDebits.Sub(totalCredits), nil
	case domain.Liability, domain.Equity, domain.Revenue:
		return totalCredits.Sub(totalDebits), nil
	default:
		return decimal.Zero, fmt.Errorf("unknown account type '%s'", accountType)
	}
}

// TrialBalanceColumns places a normal-side balance into debit and credit columns.
// A positive balance lands on the normal side; a negative (contra) balance lands on
// the opposite side as its absolute value, which keeps the report's totals equal.
func TrialBalanceColumns(accountType domain.AccountType, balance decimal.Decimal) (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	if balance.IsZero() {
		return debit, credit
	}

	onNormalSide := balance.IsPositive()
	if accountType.IsDebitNormal() == onNormalSide {
		debit = balance.Abs()
	} else {
		credit = balance.Abs()
	}
	return debit, credit
}

// ValidateEntriesBalance checks that the debit and credit sides of a transaction agree exactly.
// It returns both totals so callers can reuse the debit total as the transaction amount.
func ValidateEntriesBalance(entries []domain.JournalEntry) (debits, credits decimal.Decimal, balanced bool) {
	txn := domain.Transaction{Entries: entries}
	debits, credits = txn.DebitTotal(), txn.CreditTotal()
	return debits, credits, debits.Equal(credits)
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus is the lifecycle state of a transaction.
type TransactionStatus string

const (
	Pending   TransactionStatus = "PENDING"
	Posted    TransactionStatus = "POSTED"
	Cancelled TransactionStatus = "CANCELLED"
)

// CanTransitionTo reports whether the lifecycle allows moving from s to next.
// PENDING may become POSTED or CANCELLED; both are terminal.
func (s TransactionStatus) CanTransitionTo(next TransactionStatus) bool {
	return s == Pending && (next == Posted || next == Cancelled)
}

// Transaction is a balanced set of journal entries recorded as one financial event.
// Amount equals the debit total of its entries.
type Transaction struct {
	TransactionID string            `json:"id"`
	Reference     string            `json:"reference"`
	Description   string            `json:"description"`
	Date          time.Time         `json:"date"`
	Amount        decimal.Decimal   `json:"amount"`
	Status        TransactionStatus `json:"status"`
	AuditFields
	Entries []JournalEntry `json:"entries,omitempty"`
}

// DebitTotal sums the debit-side entries.
func (t Transaction) DebitTotal() decimal.Decimal {
	return t.sumEntries(JournalEntry.IsDebit)
}

// CreditTotal sums the credit-side entries.
func (t Transaction) CreditTotal() decimal.Decimal {
	return t.sumEntries(JournalEntry.IsCredit)
}

func (t Transaction) sumEntries(side func(JournalEntry) bool) decimal.Decimal {
	amounts := make([]decimal.Decimal, 0, len(t.Entries))
	for _, e := range t.Entries {
		if side(e) {
			amounts = append(amounts, e.Amount)
		}
	}
	return SumMoney(amounts...)
}

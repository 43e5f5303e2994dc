package dto

import (
	"fmt"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DateLayout is the date-only form accepted for transaction dates.
const DateLayout = "2006-01-02"

// EntryRequest is one line of a new transaction.
// Exactly one of DebitAccountCode and CreditAccountCode must be given.
type EntryRequest struct {
	DebitAccountCode  string          `json:"debitAccountCode,omitempty" binding:"required_without=CreditAccountCode,excluded_with=CreditAccountCode"`
	CreditAccountCode string          `json:"creditAccountCode,omitempty" binding:"required_without=DebitAccountCode,excluded_with=DebitAccountCode"`
	Amount            decimal.Decimal `json:"amount" binding:"decimal_gt0" swaggertype:"string" example:"1000.00"`
	Description       string          `json:"description,omitempty"`
}

// CreateTransactionRequest defines the data needed to record a new transaction.
type CreateTransactionRequest struct {
	Reference   string         `json:"reference" binding:"required,max=64"`
	Description string         `json:"description" binding:"required"`
	Date        string         `json:"date" binding:"required" example:"2024-01-15"`
	Entries     []EntryRequest `json:"entries" binding:"required,min=1,dive"`
}

// ParseDate accepts an RFC 3339 timestamp or a YYYY-MM-DD date.
func (r CreateTransactionRequest) ParseDate() (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, r.Date); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(DateLayout, r.Date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: use RFC 3339 or %s", r.Date, DateLayout)
	}
	return t, nil
}

// AccountSummaryResponse is the account shown next to a journal entry.
type AccountSummaryResponse struct {
	AccountID   string             `json:"id"`
	Code        string             `json:"code"`
	Name        string             `json:"name"`
	AccountType domain.AccountType `json:"type"`
}

// JournalEntryResponse defines the data returned for a journal entry.
type JournalEntryResponse struct {
	EntryID       string                  `json:"id"`
	DebitAccount  *AccountSummaryResponse `json:"debitAccount,omitempty"`
	CreditAccount *AccountSummaryResponse `json:"creditAccount,omitempty"`
	Amount        decimal.Decimal         `json:"amount"`
	Description   string                  `json:"description,omitempty"`
	CreatedAt     time.Time               `json:"createdAt"`
}

// TransactionResponse defines the data returned for a transaction.
type TransactionResponse struct {
	TransactionID string                   `json:"id"`
	Reference     string                   `json:"reference"`
	Description   string                   `json:"description"`
	Date          time.Time                `json:"date"`
	Amount        decimal.Decimal          `json:"amount"`
	Status        domain.TransactionStatus `json:"status"`
	CreatedAt     time.Time                `json:"createdAt"`
	UpdatedAt     time.Time                `json:"updatedAt"`
	Entries       []JournalEntryResponse   `json:"entries"`
}

// ListTransactionsParams defines query parameters for listing transactions.
// Without a limit every transaction is returned.
type ListTransactionsParams struct {
	Limit     int     `form:"limit" binding:"omitempty,min=1,max=500"`
	NextToken *string `form:"nextToken"`
}

// ListTransactionsResponse wraps a page of transactions.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    *string               `json:"nextToken,omitempty"`
}

// ToAccountSummaryResponse converts a domain.AccountSummary; nil stays nil.
func ToAccountSummaryResponse(s *domain.AccountSummary) *AccountSummaryResponse {
	if s == nil {
		return nil
	}
	return &AccountSummaryResponse{
		AccountID:   s.AccountID,
		Code:        s.Code,
		Name:        s.Name,
		AccountType: s.AccountType,
	}
}

// ToJournalEntryResponse converts a domain.JournalEntry to its DTO.
func ToJournalEntryResponse(e *domain.JournalEntry) JournalEntryResponse {
	return JournalEntryResponse{
		EntryID:       e.EntryID,
		DebitAccount:  ToAccountSummaryResponse(e.DebitAccount),
		CreditAccount: ToAccountSummaryResponse(e.CreditAccount),
		Amount:        e.Amount,
		Description:   e.Description,
		CreatedAt:     e.CreatedAt,
	}
}

// ToTransactionResponse converts a domain.Transaction to TransactionResponse DTO.
func ToTransactionResponse(t *domain.Transaction) TransactionResponse {
	entries := make([]JournalEntryResponse, len(t.Entries))
	for i := range t.Entries {
		entries[i] = ToJournalEntryResponse(&t.Entries[i])
	}
	return TransactionResponse{
		TransactionID: t.TransactionID,
		Reference:     t.Reference,
		Description:   t.Description,
		Date:          t.Date,
		Amount:        t.Amount,
		Status:        t.Status,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.LastUpdatedAt,
		Entries:       entries,
	}
}

// ToTransactionResponses converts a slice of domain.Transaction.
func ToTransactionResponses(txns []domain.Transaction) []TransactionResponse {
	responses := make([]TransactionResponse, len(txns))
	for i := range txns {
		responses[i] = ToTransactionResponse(&txns[i])
	}
	return responses
}

package dto

import (
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TrialBalanceRowResponse represents a row in the trial balance report response
type TrialBalanceRowResponse struct {
	AccountCode string          `json:"accountCode"`
	AccountName string          `json:"accountName"`
	AccountType string          `json:"accountType"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Balance     decimal.Decimal `json:"balance"`
}

// TrialBalanceResponse represents the trial balance report response
type TrialBalanceResponse struct {
	Rows   []TrialBalanceRowResponse `json:"rows"`
	Totals struct {
		Debit  decimal.Decimal `json:"debit"`
		Credit decimal.Decimal `json:"credit"`
	} `json:"totals"`
	Balanced bool `json:"balanced"`
}

// GeneralLedgerRowResponse represents one journal entry in the general ledger
type GeneralLedgerRowResponse struct {
	EntryID       string                   `json:"id"`
	TransactionID string                   `json:"transactionId"`
	Date          time.Time                `json:"date"`
	Reference     string                   `json:"reference"`
	Description   string                   `json:"description"`
	Status        domain.TransactionStatus `json:"status"`
	DebitAccount  *AccountSummaryResponse  `json:"debitAccount,omitempty"`
	CreditAccount *AccountSummaryResponse  `json:"creditAccount,omitempty"`
	Amount        decimal.Decimal          `json:"amount"`
}

// GeneralLedgerResponse wraps the general ledger rows
type GeneralLedgerResponse struct {
	AccountCode string                     `json:"accountCode,omitempty"`
	Entries     []GeneralLedgerRowResponse `json:"entries"`
}

// ToTrialBalanceResponse converts a domain trial balance to a DTO response
func ToTrialBalanceResponse(tb *domain.TrialBalance) TrialBalanceResponse {
	response := TrialBalanceResponse{
		Rows: make([]TrialBalanceRowResponse, len(tb.Rows)),
	}

	for i, row := range tb.Rows {
		response.Rows[i] = TrialBalanceRowResponse{
			AccountCode: row.Account.Code,
			AccountName: row.Account.Name,
			AccountType: string(row.Account.AccountType),
			Debit:       row.Debit,
			Credit:      row.Credit,
			Balance:     row.Balance,
		}
	}

	response.Totals.Debit = tb.TotalDebit
	response.Totals.Credit = tb.TotalCredit
	response.Balanced = tb.IsBalanced()
	return response
}

// ToGeneralLedgerResponse converts general ledger rows to a DTO response.
// The entry description falls back to the transaction description.
func ToGeneralLedgerResponse(accountCode string, rows []domain.GeneralLedgerRow) GeneralLedgerResponse {
	entries := make([]GeneralLedgerRowResponse, len(rows))
	for i, row := range rows {
		description := row.Description
		if description == "" {
			description = row.TransactionDescription
		}
		entries[i] = GeneralLedgerRowResponse{
			EntryID:       row.EntryID,
			TransactionID: row.TransactionID,
			Date:          row.Date,
			Reference:     row.Reference,
			Description:   description,
			Status:        row.Status,
			DebitAccount:  ToAccountSummaryResponse(row.DebitAccount),
			CreditAccount: ToAccountSummaryResponse(row.CreditAccount),
			Amount:        row.Amount,
		}
	}
	return GeneralLedgerResponse{AccountCode: accountCode, Entries: entries}
}

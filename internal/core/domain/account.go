package domain

import "slices"

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// AccountTypes lists every supported account type in chart order.
var AccountTypes = []AccountType{Asset, Liability, Equity, Revenue, Expense}

// IsValid reports whether t is one of the supported account types.
func (t AccountType) IsValid() bool {
	return slices.Contains(AccountTypes, t)
}

// IsDebitNormal reports whether debits increase accounts of this type.
// ASSET and EXPENSE are debit-normal; LIABILITY, EQUITY and REVENUE are credit-normal.
func (t AccountType) IsDebitNormal() bool {
	return t == Asset || t == Expense
}

// Account represents an entry in the chart of accounts.
// Code and AccountType are immutable once the account exists.
type Account struct {
	AccountID   string      `json:"id"`
	Code        string      `json:"code"`
	Name        string      `json:"name"`
	AccountType AccountType `json:"type"`
	Description string      `json:"description"`
	IsActive    bool        `json:"isActive"`
	AuditFields
}

// AccountSummary is the display subset of an account used by reports and entries.
type AccountSummary struct {
	AccountID   string      `json:"id"`
	Code        string      `json:"code"`
	Name        string      `json:"name"`
	AccountType AccountType `json:"type"`
}

// Summary returns the display subset of the account.
func (a Account) Summary() AccountSummary {
	return AccountSummary{
		AccountID:   a.AccountID,
		Code:        a.Code,
		Name:        a.Name,
		AccountType: a.AccountType,
	}
}

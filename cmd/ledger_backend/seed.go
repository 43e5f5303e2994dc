package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hashicorp/go-multierror"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/core/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/SscSPs/ledger_engine/internal/repositories/database/pgsql"
	"github.com/SscSPs/ledger_engine/pkg/database"
)

// accountCreator is the part of the account service the seeder needs.
type accountCreator interface {
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest) (*domain.Account, error)
}

// transactionRecorder is the part of the transaction service the seeder needs.
type transactionRecorder interface {
	CreateTransaction(ctx context.Context, req dto.CreateTransactionRequest) (*domain.Transaction, error)
	PostTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error)
}

var defaultChart = []dto.CreateAccountRequest{
	{Code: "1000", Name: "Cash", AccountType: domain.Asset, Description: "Cash and cash equivalents"},
	{Code: "1100", Name: "Accounts Receivable", AccountType: domain.Asset, Description: "Money owed by customers"},
	{Code: "1200", Name: "Inventory", AccountType: domain.Asset, Description: "Goods held for sale"},
	{Code: "1500", Name: "Equipment", AccountType: domain.Asset, Description: "Office and business equipment"},
	{Code: "2000", Name: "Accounts Payable", AccountType: domain.Liability, Description: "Money owed to suppliers"},
	{Code: "2100", Name: "Short-term Loans", AccountType: domain.Liability, Description: "Loans payable within one year"},
	{Code: "2500", Name: "Long-term Debt", AccountType: domain.Liability, Description: "Long-term loans and mortgages"},
	{Code: "3000", Name: "Owner's Equity", AccountType: domain.Equity, Description: "Owner's investment in the business"},
	{Code: "3100", Name: "Retained Earnings", AccountType: domain.Equity, Description: "Accumulated profits retained in business"},
	{Code: "4000", Name: "Sales Revenue", AccountType: domain.Revenue, Description: "Revenue from sales of goods and services"},
	{Code: "4100", Name: "Interest Income", AccountType: domain.Revenue, Description: "Income from investments"},
	{Code: "5000", Name: "Cost of Goods Sold", AccountType: domain.Expense, Description: "Direct costs of producing goods sold"},
	{Code: "5100", Name: "Salaries Expense", AccountType: domain.Expense, Description: "Employee salaries and wages"},
	{Code: "5200", Name: "Rent Expense", AccountType: domain.Expense, Description: "Office and facility rent"},
	{Code: "5300", Name: "Utilities Expense", AccountType: domain.Expense, Description: "Electricity, water and internet costs"},
	{Code: "5400", Name: "Marketing Expense", AccountType: domain.Expense, Description: "Advertising and promotional costs"},
}

// demoTransfer is a two-line demo transaction that debits one account and credits another.
type demoTransfer struct {
	reference, description, date string
	debit, credit                string
	amount                       int64
	debitNote, creditNote        string
}

var demoTransfers = []demoTransfer{
	{"CAPITAL-001", "Initial capital investment by owner", "2025-01-01", "1000", "3000", 50000, "Initial capital investment", "Owner capital contribution"},
	{"EQUIP-001", "Purchase of office equipment", "2025-01-05", "1500", "1000", 5000, "Office equipment purchased", "Cash paid for equipment"},
	{"INV-001", "Purchase inventory on credit from supplier", "2025-01-10", "1200", "2000", 8000, "Inventory purchased", "Amount owed to supplier"},
	{"SALE-001", "Cash sale to customer", "2025-01-15", "1000", "4000", 3000, "Cash received from sale", "Revenue from cash sale"},
	{"COGS-001", "Cost of goods sold for SALE-001", "2025-01-15", "5000", "1200", 1800, "Cost of inventory sold", "Inventory removed from stock"},
	{"SALE-002", "Credit sale to customer ABC Corp", "2025-01-20", "1100", "4000", 4500, "Amount receivable from customer", "Revenue from credit sale"},
	{"COGS-002", "Cost of goods sold for SALE-002", "2025-01-20", "5000", "1200", 2700, "Cost of inventory sold", "Inventory removed from stock"},
	{"SAL-001", "Monthly salary payment to employees", "2025-01-31", "5100", "1000", 6000, "Monthly salaries", "Cash paid for salaries"},
	{"RENT-001", "Monthly office rent payment", "2025-01-31", "5200", "1000", 2000, "Monthly office rent", "Cash paid for rent"},
	{"PAY-001", "Partial payment to supplier", "2025-02-01", "2000", "1000", 3000, "Payment to supplier", "Cash paid to supplier"},
	{"COL-001", "Collection from customer ABC Corp", "2025-02-05", "1000", "1100", 2000, "Cash collected from customer", "Receivable collected"},
	{"UTIL-001", "Monthly utilities bill", "2025-02-10", "5300", "1000", 500, "Monthly utilities", "Cash paid for utilities"},
}

func (d demoTransfer) request() dto.CreateTransactionRequest {
	amount := decimal.NewFromInt(d.amount)
	return dto.CreateTransactionRequest{
		Reference:   d.reference,
		Description: d.description,
		Date:        d.date,
		Entries: []dto.EntryRequest{
			{DebitAccountCode: d.debit, Amount: amount, Description: d.debitNote},
			{CreditAccountCode: d.credit, Amount: amount, Description: d.creditNote},
		},
	}
}

func newSeedCmd(a *app) *cobra.Command {
	var demo bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the default chart of accounts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			dbPool, err := a.openPool(ctx)
			if err != nil {
				return err
			}
			defer database.ClosePgxPool(dbPool)

			repos := pgsql.NewRepositoryProvider(dbPool)
			accounts := services.NewAccountService(repos.AccountRepo, repos.ReportingRepo)
			created, err := seedChart(ctx, accounts, a.logger)
			if err != nil {
				return err
			}
			a.logger.Info("Chart of accounts seeded", slog.Int("created", created), slog.Int("total", len(defaultChart)))

			if !demo {
				return nil
			}
			transactions := services.NewTransactionService(repos.UnitOfWork, repos.AccountRepo, repos.TransactionRepo, repos.EventRepo)
			posted, err := seedDemo(ctx, transactions, a.logger)
			if err != nil {
				return err
			}
			a.logger.Info("Demo transactions posted", slog.Int("posted", posted))
			return nil
		},
	}
	cmd.Flags().BoolVar(&demo, "demo", false, "also record and post demo transactions")
	return cmd
}

// seedChart creates every account of the default chart. Codes that already exist are
// skipped; every other failure is collected and returned together.
func seedChart(ctx context.Context, accounts accountCreator, logger *slog.Logger) (int, error) {
	var result *multierror.Error
	created := 0
	for _, req := range defaultChart {
		_, err := accounts.CreateAccount(ctx, req)
		switch {
		case err == nil:
			created++
		case errors.Is(err, apperrors.ErrDuplicate):
			logger.Debug("Account already exists, skipping", slog.String("code", req.Code))
		default:
			result = multierror.Append(result, fmt.Errorf("account %s: %w", req.Code, err))
		}
	}
	return created, result.ErrorOrNil()
}

// seedDemo records and posts the demo transactions. References that already exist are skipped.
func seedDemo(ctx context.Context, transactions transactionRecorder, logger *slog.Logger) (int, error) {
	var result *multierror.Error
	posted := 0
	for _, d := range demoTransfers {
		txn, err := transactions.CreateTransaction(ctx, d.request())
		if errors.Is(err, apperrors.ErrDuplicate) {
			logger.Debug("Demo transaction already recorded, skipping", slog.String("reference", d.reference))
			continue
		}
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("transaction %s: %w", d.reference, err))
			continue
		}
		if _, err := transactions.PostTransaction(ctx, txn.TransactionID); err != nil {
			result = multierror.Append(result, fmt.Errorf("posting %s: %w", d.reference, err))
			continue
		}
		posted++
	}
	return posted, result.ErrorOrNil()
}

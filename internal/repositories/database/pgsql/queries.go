package pgsql

import (
	sq "github.com/Masterminds/squirrel"

	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var accountColumns = []string{
	"account_id", "code", "name", "account_type", "description", "is_active", "created_at", "updated_at",
}

var transactionColumns = []string{
	"transaction_id", "reference", "description", "transaction_date", "amount", "status", "created_at", "updated_at",
}

var entryColumns = []string{
	"je.entry_id", "je.transaction_id", "je.debit_account_id", "je.credit_account_id", "je.amount", "je.description", "je.created_at",
	"da.code", "da.name", "da.account_type",
	"ca.code", "ca.name", "ca.account_type",
}

var eventColumns = []string{
	"event_id", "aggregate_id", "event_type", "payload", "status", "attempts", "last_error", "created_at", "processed_at",
}

// buildAccountsQuery selects accounts whose column matches any of values.
func buildAccountsQuery(column string, values []string) (string, []any, error) {
	return psql.Select(accountColumns...).
		From("accounts").
		Where(sq.Eq{column: values}).
		OrderBy("code").
		ToSql()
}

// buildListTransactionsQuery pages transactions newest first with a keyset cursor.
func buildListTransactionsQuery(filter portsrepo.TransactionListFilter) (string, []any, error) {
	q := psql.Select(transactionColumns...).
		From("transactions").
		OrderBy("transaction_date DESC", "created_at DESC", "transaction_id DESC")

	if filter.After != nil {
		q = q.Where(sq.Expr("(transaction_date, created_at, transaction_id) < (?, ?, ?)",
			filter.After.Date, filter.After.CreatedAt, filter.After.ID))
	}
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	return q.ToSql()
}

// buildEntriesQuery selects the entries of the given transactions in line order,
// with the code, name and type of the account on each side.
func buildEntriesQuery(transactionIDs []string) (string, []any, error) {
	return psql.Select(entryColumns...).
		From("journal_entries je").
		LeftJoin("accounts da ON da.account_id = je.debit_account_id").
		LeftJoin("accounts ca ON ca.account_id = je.credit_account_id").
		Where(sq.Eq{"je.transaction_id": transactionIDs}).
		OrderBy("je.transaction_id", "je.line_number").
		ToSql()
}

// buildGeneralLedgerQuery lists entries oldest first. A non-empty account code keeps
// only entries that debit or credit that account.
func buildGeneralLedgerQuery(accountCode string) (string, []any, error) {
	q := psql.Select(
		"je.entry_id", "je.transaction_id", "t.reference", "t.transaction_date",
		"COALESCE(je.description, '')", "t.description", "t.status",
		"da.account_id", "da.code", "da.name", "da.account_type",
		"ca.account_id", "ca.code", "ca.name", "ca.account_type",
		"je.amount", "je.created_at",
	).
		From("journal_entries je").
		Join("transactions t ON t.transaction_id = je.transaction_id").
		LeftJoin("accounts da ON da.account_id = je.debit_account_id").
		LeftJoin("accounts ca ON ca.account_id = je.credit_account_id")

	if accountCode != "" {
		q = q.Where(sq.Or{sq.Eq{"da.code": accountCode}, sq.Eq{"ca.code": accountCode}})
	}
	return q.OrderBy("je.created_at ASC", "je.transaction_id ASC", "je.line_number ASC").ToSql()
}

// buildClaimEventsQuery locks the oldest pending events, skipping rows held by other relays.
func buildClaimEventsQuery(limit int) (string, []any, error) {
	return psql.Select(eventColumns...).
		From("ledger_events").
		Where(sq.Eq{"status": "PENDING"}).
		OrderBy("created_at ASC").
		Limit(uint64(limit)).
		Suffix("FOR UPDATE SKIP LOCKED").
		ToSql()
}

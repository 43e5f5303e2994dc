package pgsql

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_engine/internal/utils/pagination"
)

func TestBuildGeneralLedgerQuery(t *testing.T) {
	t.Run("all entries", func(t *testing.T) {
		query, args, err := buildGeneralLedgerQuery("")
		require.NoError(t, err)

		assert.NotContains(t, query, "WHERE")
		assert.Contains(t, query, "JOIN transactions t ON t.transaction_id = je.transaction_id")
		assert.Contains(t, query, "ORDER BY je.created_at ASC, je.transaction_id ASC, je.line_number ASC")
		assert.Empty(t, args)
	})

	t.Run("filtered by account code", func(t *testing.T) {
		query, args, err := buildGeneralLedgerQuery("1000")
		require.NoError(t, err)

		assert.Contains(t, query, "WHERE (da.code = $1 OR ca.code = $2)")
		if diff := cmp.Diff([]any{"1000", "1000"}, args); diff != "" {
			t.Errorf("args mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestBuildListTransactionsQuery(t *testing.T) {
	t.Run("unbounded", func(t *testing.T) {
		query, args, err := buildListTransactionsQuery(portsrepo.TransactionListFilter{})
		require.NoError(t, err)

		assert.NotContains(t, query, "LIMIT")
		assert.Contains(t, query, "ORDER BY transaction_date DESC, created_at DESC, transaction_id DESC")
		assert.Empty(t, args)
	})

	t.Run("after cursor with limit", func(t *testing.T) {
		date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
		created := time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)
		filter := portsrepo.TransactionListFilter{
			Limit: 21,
			After: &pagination.Cursor{Date: date, CreatedAt: created, ID: "b0c1"},
		}

		query, args, err := buildListTransactionsQuery(filter)
		require.NoError(t, err)

		assert.Contains(t, query, "WHERE (transaction_date, created_at, transaction_id) < ($1, $2, $3)")
		assert.Contains(t, query, "LIMIT 21")
		if diff := cmp.Diff([]any{date, created, "b0c1"}, args); diff != "" {
			t.Errorf("args mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestBuildAccountsQuery(t *testing.T) {
	query, args, err := buildAccountsQuery("code", []string{"1000", "4000"})
	require.NoError(t, err)

	assert.Contains(t, query, "FROM accounts WHERE code IN ($1,$2)")
	if diff := cmp.Diff([]any{"1000", "4000"}, args); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildEntriesQuery(t *testing.T) {
	query, args, err := buildEntriesQuery([]string{"t1"})
	require.NoError(t, err)

	assert.Contains(t, query, "LEFT JOIN accounts da ON da.account_id = je.debit_account_id")
	assert.Contains(t, query, "LEFT JOIN accounts ca ON ca.account_id = je.credit_account_id")
	assert.Contains(t, query, "WHERE je.transaction_id IN ($1)")
	assert.Contains(t, query, "ORDER BY je.transaction_id, je.line_number")
	assert.Equal(t, []any{"t1"}, args)
}

func TestBuildClaimEventsQuery(t *testing.T) {
	query, args, err := buildClaimEventsQuery(50)
	require.NoError(t, err)

	assert.Contains(t, query, "WHERE status = $1")
	assert.Contains(t, query, "ORDER BY created_at ASC LIMIT 50 FOR UPDATE SKIP LOCKED")
	assert.Equal(t, []any{"PENDING"}, args)
}

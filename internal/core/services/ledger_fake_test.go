package services_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

// memLedger is an in-memory store implementing every repository port plus the unit of work.
// Atomic snapshots the state and restores it when fn fails.
type memLedger struct {
	mu       sync.Mutex
	accounts []domain.Account
	txns     map[string]domain.Transaction
	entries  []domain.JournalEntry
	events   []domain.LedgerEvent

	// failEventWrites makes SaveEvent fail, to exercise rollback.
	failEventWrites bool
	atomicDepth     int
}

var (
	_ portsrepo.UnitOfWork                  = (*memLedger)(nil)
	_ portsrepo.AccountRepositoryFacade     = (*memLedger)(nil)
	_ portsrepo.TransactionRepositoryFacade = (*memLedger)(nil)
	_ portsrepo.ReportingRepository         = (*memLedger)(nil)
	_ portsrepo.EventRepositoryFacade       = (*memLedger)(nil)
)

func newMemLedger() *memLedger {
	return &memLedger{txns: map[string]domain.Transaction{}}
}

// stepClock returns a clock that advances one millisecond per reading.
func stepClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Millisecond)
		return t
	}
}

type ledgerSnapshot struct {
	accounts []domain.Account
	txns     map[string]domain.Transaction
	entries  []domain.JournalEntry
	events   []domain.LedgerEvent
}

func (l *memLedger) snapshot() ledgerSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := ledgerSnapshot{
		accounts: append([]domain.Account(nil), l.accounts...),
		txns:     make(map[string]domain.Transaction, len(l.txns)),
		entries:  append([]domain.JournalEntry(nil), l.entries...),
		events:   append([]domain.LedgerEvent(nil), l.events...),
	}
	for k, v := range l.txns {
		s.txns[k] = v
	}
	return s
}

func (l *memLedger) restore(s ledgerSnapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.accounts, l.txns, l.entries, l.events = s.accounts, s.txns, s.entries, s.events
}

func (l *memLedger) Atomic(ctx context.Context, fn func(ctx context.Context) error) error {
	snap := l.snapshot()
	l.atomicDepth++
	err := fn(ctx)
	l.atomicDepth--
	if err != nil {
		l.restore(snap)
	}
	return err
}

// --- accounts ---

func (l *memLedger) SaveAccount(_ context.Context, account domain.Account) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, a := range l.accounts {
		if a.Code == account.Code {
			return fmt.Errorf("%w: account code %s", apperrors.ErrDuplicate, account.Code)
		}
	}
	l.accounts = append(l.accounts, account)
	return nil
}

func (l *memLedger) UpdateAccount(_ context.Context, account domain.Account) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, a := range l.accounts {
		if a.AccountID == account.AccountID {
			l.accounts[i].Name = account.Name
			l.accounts[i].Description = account.Description
			l.accounts[i].IsActive = account.IsActive
			l.accounts[i].LastUpdatedAt = account.LastUpdatedAt
			return nil
		}
	}
	return apperrors.ErrNotFound
}

func (l *memLedger) FindAccountByID(_ context.Context, accountID string) (*domain.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, a := range l.accounts {
		if a.AccountID == accountID {
			acc := a
			return &acc, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (l *memLedger) FindAccountByCode(_ context.Context, code string) (*domain.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, a := range l.accounts {
		if a.Code == code {
			acc := a
			return &acc, nil
		}
	}
	return nil, fmt.Errorf("account code %s: %w", code, apperrors.ErrNotFound)
}

func (l *memLedger) FindAccountsByCodes(_ context.Context, codes []string) (map[string]domain.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := map[string]domain.Account{}
	for _, code := range codes {
		for _, a := range l.accounts {
			if a.Code == code {
				out[code] = a
			}
		}
	}
	return out, nil
}

func (l *memLedger) ListActiveAccounts(_ context.Context) ([]domain.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []domain.Account
	for _, a := range l.accounts {
		if a.IsActive {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// --- transactions ---

func (l *memLedger) accountSummary(id string) *domain.AccountSummary {
	if id == "" {
		return nil
	}
	for _, a := range l.accounts {
		if a.AccountID == id {
			s := a.Summary()
			return &s
		}
	}
	return nil
}

func (l *memLedger) withEntries(t domain.Transaction) domain.Transaction {
	t.Entries = nil
	for _, e := range l.entries {
		if e.TransactionID == t.TransactionID {
			e.DebitAccount = l.accountSummary(e.DebitAccountID)
			e.CreditAccount = l.accountSummary(e.CreditAccountID)
			t.Entries = append(t.Entries, e)
		}
	}
	return t
}

func (l *memLedger) SaveTransaction(_ context.Context, txn domain.Transaction) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, t := range l.txns {
		if t.Reference == txn.Reference {
			return fmt.Errorf("%w: transaction reference %s", apperrors.ErrDuplicate, txn.Reference)
		}
	}
	entries := txn.Entries
	txn.Entries = nil
	l.txns[txn.TransactionID] = txn
	for _, e := range entries {
		e.DebitAccount, e.CreditAccount = nil, nil
		l.entries = append(l.entries, e)
	}
	return nil
}

func (l *memLedger) UpdateTransactionStatus(_ context.Context, id string, status domain.TransactionStatus, at time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	t, ok := l.txns[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	t.Status = status
	t.LastUpdatedAt = at
	l.txns[id] = t
	return nil
}

func (l *memLedger) FindTransactionByID(_ context.Context, id string) (*domain.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	t, ok := l.txns[id]
	if !ok {
		return nil, fmt.Errorf("transaction %s: %w", id, apperrors.ErrNotFound)
	}
	full := l.withEntries(t)
	return &full, nil
}

func (l *memLedger) FindTransactionByIDForUpdate(ctx context.Context, id string) (*domain.Transaction, error) {
	if l.atomicDepth == 0 {
		return nil, fmt.Errorf("row lock requested outside a unit of work")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	t, ok := l.txns[id]
	if !ok {
		return nil, fmt.Errorf("transaction %s: %w", id, apperrors.ErrNotFound)
	}
	return &t, nil
}

func (l *memLedger) ListTransactions(_ context.Context, filter portsrepo.TransactionListFilter) ([]domain.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	all := make([]domain.Transaction, 0, len(l.txns))
	for _, t := range l.txns {
		all = append(all, t)
	}
	after := func(a, b domain.Transaction) bool {
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.TransactionID > b.TransactionID
	}
	sort.Slice(all, func(i, j int) bool { return after(all[i], all[j]) })

	var out []domain.Transaction
	for _, t := range all {
		if c := filter.After; c != nil {
			cursor := domain.Transaction{TransactionID: c.ID, Date: c.Date, AuditFields: domain.AuditFields{CreatedAt: c.CreatedAt}}
			if !after(cursor, t) {
				continue
			}
		}
		out = append(out, l.withEntries(t))
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

// --- reporting ---

func (l *memLedger) postedTotals() map[string]domain.EntryTotals {
	totals := map[string]domain.EntryTotals{}
	add := func(accountID string, debit, credit decimal.Decimal) {
		t, ok := totals[accountID]
		if !ok {
			t = domain.EntryTotals{AccountID: accountID, TotalDebits: decimal.Zero, TotalCredits: decimal.Zero}
		}
		t.TotalDebits = t.TotalDebits.Add(debit)
		t.TotalCredits = t.TotalCredits.Add(credit)
		totals[accountID] = t
	}
	for _, e := range l.entries {
		if l.txns[e.TransactionID].Status != domain.Posted {
			continue
		}
		if e.IsDebit() {
			add(e.DebitAccountID, e.Amount, decimal.Zero)
		} else {
			add(e.CreditAccountID, decimal.Zero, e.Amount)
		}
	}
	return totals
}

func (l *memLedger) SumPostedEntries(_ context.Context, accountID string) (domain.EntryTotals, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if t, ok := l.postedTotals()[accountID]; ok {
		return t, nil
	}
	return domain.EntryTotals{AccountID: accountID, TotalDebits: decimal.Zero, TotalCredits: decimal.Zero}, nil
}

func (l *memLedger) SumPostedEntriesByAccount(_ context.Context) (map[string]domain.EntryTotals, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.postedTotals(), nil
}

func (l *memLedger) CountPendingEntries(_ context.Context, accountID string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	count := 0
	for _, e := range l.entries {
		if l.txns[e.TransactionID].Status == domain.Pending &&
			(e.DebitAccountID == accountID || e.CreditAccountID == accountID) {
			count++
		}
	}
	return count, nil
}

func (l *memLedger) ListGeneralLedger(_ context.Context, accountCode string) ([]domain.GeneralLedgerRow, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var rows []domain.GeneralLedgerRow
	for _, e := range l.entries {
		debit, credit := l.accountSummary(e.DebitAccountID), l.accountSummary(e.CreditAccountID)
		if accountCode != "" &&
			(debit == nil || debit.Code != accountCode) &&
			(credit == nil || credit.Code != accountCode) {
			continue
		}
		t := l.txns[e.TransactionID]
		rows = append(rows, domain.GeneralLedgerRow{
			EntryID:                e.EntryID,
			TransactionID:          t.TransactionID,
			Reference:              t.Reference,
			Date:                   t.Date,
			Description:            e.Description,
			TransactionDescription: t.Description,
			Status:                 t.Status,
			DebitAccount:           debit,
			CreditAccount:          credit,
			Amount:                 e.Amount,
			CreatedAt:              e.CreatedAt,
		})
	}
	return rows, nil
}

// --- outbox ---

func (l *memLedger) SaveEvent(_ context.Context, event domain.LedgerEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failEventWrites {
		return fmt.Errorf("outbox unavailable")
	}
	l.events = append(l.events, event)
	return nil
}

func (l *memLedger) ClaimPendingEvents(_ context.Context, limit int) ([]domain.LedgerEvent, error) {
	if l.atomicDepth == 0 {
		return nil, fmt.Errorf("claim requested outside a unit of work")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []domain.LedgerEvent
	for _, e := range l.events {
		if e.Status == domain.EventPending {
			out = append(out, e)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (l *memLedger) MarkEventSent(_ context.Context, eventID string, at time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.events {
		if l.events[i].EventID == eventID {
			l.events[i].Status = domain.EventSent
			l.events[i].ProcessedAt = &at
			return nil
		}
	}
	return apperrors.ErrNotFound
}

func (l *memLedger) MarkEventAttemptFailed(_ context.Context, eventID, reason string, final bool, at time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.events {
		if l.events[i].EventID == eventID {
			l.events[i].Attempts++
			l.events[i].LastError = reason
			if final {
				l.events[i].Status = domain.EventFailed
				l.events[i].ProcessedAt = &at
			}
			return nil
		}
	}
	return apperrors.ErrNotFound
}

// counts reports how many transactions, entries and events are stored.
func (l *memLedger) counts() (txns, entries, events int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.txns), len(l.entries), len(l.events)
}

func (l *memLedger) eventsOf(aggregateID string) []domain.LedgerEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []domain.LedgerEvent
	for _, e := range l.events {
		if e.AggregateID == aggregateID {
			out = append(out, e)
		}
	}
	return out
}

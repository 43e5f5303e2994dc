package mapping

import (
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/models"
)

// ToModelTransaction converts a domain Transaction header to a model Transaction
func ToModelTransaction(d domain.Transaction) models.Transaction {
	return models.Transaction{
		TransactionID: d.TransactionID,
		Reference:     d.Reference,
		Description:   d.Description,
		Date:          d.Date,
		Amount:        d.Amount,
		Status:        models.TransactionStatus(d.Status),
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainTransaction converts a model Transaction to a domain Transaction without entries
func ToDomainTransaction(m models.Transaction) domain.Transaction {
	return domain.Transaction{
		TransactionID: m.TransactionID,
		Reference:     m.Reference,
		Description:   m.Description,
		Date:          m.Date,
		Amount:        m.Amount,
		Status:        domain.TransactionStatus(m.Status),
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelJournalEntry converts a domain JournalEntry to a model JournalEntry
func ToModelJournalEntry(d domain.JournalEntry) models.JournalEntry {
	return models.JournalEntry{
		EntryID:         d.EntryID,
		TransactionID:   d.TransactionID,
		DebitAccountID:  stringPtr(d.DebitAccountID),
		CreditAccountID: stringPtr(d.CreditAccountID),
		Amount:          d.Amount,
		Description:     stringPtr(d.Description),
		CreatedAt:       d.CreatedAt,
	}
}

// ToDomainJournalEntry converts a model JournalEntry to a domain JournalEntry
func ToDomainJournalEntry(m models.JournalEntry) domain.JournalEntry {
	return domain.JournalEntry{
		EntryID:         m.EntryID,
		TransactionID:   m.TransactionID,
		DebitAccountID:  stringValue(m.DebitAccountID),
		CreditAccountID: stringValue(m.CreditAccountID),
		Amount:          m.Amount,
		Description:     stringValue(m.Description),
		CreatedAt:       m.CreatedAt,
	}
}

// ToModelLedgerEvent converts a domain LedgerEvent to a model LedgerEvent
func ToModelLedgerEvent(d domain.LedgerEvent) models.LedgerEvent {
	return models.LedgerEvent{
		EventID:     d.EventID,
		AggregateID: d.AggregateID,
		EventType:   string(d.EventType),
		Payload:     d.Payload,
		Status:      string(d.Status),
		Attempts:    d.Attempts,
		LastError:   stringPtr(d.LastError),
		CreatedAt:   d.CreatedAt,
		ProcessedAt: d.ProcessedAt,
	}
}

// ToDomainLedgerEvent converts a model LedgerEvent to a domain LedgerEvent
func ToDomainLedgerEvent(m models.LedgerEvent) domain.LedgerEvent {
	return domain.LedgerEvent{
		EventID:     m.EventID,
		AggregateID: m.AggregateID,
		EventType:   domain.LedgerEventType(m.EventType),
		Payload:     m.Payload,
		Status:      domain.EventStatus(m.Status),
		Attempts:    m.Attempts,
		LastError:   stringValue(m.LastError),
		CreatedAt:   m.CreatedAt,
		ProcessedAt: m.ProcessedAt,
	}
}

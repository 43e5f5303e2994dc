package services

import (
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, publisher portssvc.EventPublisher, options ...ServiceOption) *portssvc.ServiceContainer {
	return &portssvc.ServiceContainer{
		Account:     NewAccountService(repos.AccountRepo, repos.ReportingRepo, options...),
		Balance:     NewBalanceService(repos.AccountRepo, repos.ReportingRepo, options...),
		Transaction: NewTransactionService(repos.UnitOfWork, repos.AccountRepo, repos.TransactionRepo, repos.EventRepo, options...),
		Reporting:   NewReportingService(repos.AccountRepo, repos.ReportingRepo, options...),
		EventRelay: NewEventRelay(repos.UnitOfWork, repos.EventRepo, publisher, RelayConfig{
			BatchSize:    cfg.OutboxBatchSize,
			MaxRetries:   cfg.OutboxMaxRetries,
			PollInterval: cfg.OutboxPollInterval,
		}, options...),
	}
}

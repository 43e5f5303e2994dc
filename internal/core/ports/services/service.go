package services

// ServiceContainer holds instances of all the application services.
// It is the main entry point for the handlers and the CLI commands.
type ServiceContainer struct {
	Account     AccountSvcFacade
	Balance     AccountCalculatorSvc
	Transaction TransactionSvcFacade
	Reporting   ReportingService
	EventRelay  EventRelaySvc
}

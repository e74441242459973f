package services

// ServiceContainer holds instances of all the application services.
// It is the entry point used by the handlers.
type ServiceContainer struct {
	Journal   JournalSvcFacade
	Ledger    LedgerSvc
	Period    PeriodSvcFacade
	Reporting ReportingService
}

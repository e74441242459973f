package services

import (
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
)

// NewServiceContainer wires the ledger engine services. The services keep no tenant
// state; every call receives the tenant store it operates on.
func NewServiceContainer(opts ...Option) *portssvc.ServiceContainer {
	ledger := NewLedgerService(opts...)
	journals := NewJournalService(opts...)

	return &portssvc.ServiceContainer{
		Journal:   journals,
		Ledger:    ledger,
		Period:    NewPeriodService(journals, ledger, opts...),
		Reporting: NewReportService(ledger, opts...),
	}
}

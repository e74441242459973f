package services

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
)

// PeriodCloserSvc closes accounting periods.
type PeriodCloserSvc interface {
	// ClosePeriod books the closing journal of the period, if any, and marks it closed.
	ClosePeriod(ctx context.Context, tenant portsrepo.TenantStore, periodID string, actor domain.Actor) (*domain.CloseResult, error)
}

// PeriodManagerSvc maintains the period calendar.
type PeriodManagerSvc interface {
	CreatePeriod(ctx context.Context, tenant portsrepo.TenantStore, name string, start, end time.Time, actor domain.Actor) (*domain.AccountingPeriod, error)
	ListPeriods(ctx context.Context, tenant portsrepo.TenantStore, filter domain.PeriodFilter) ([]domain.PeriodSummary, error)
	GetPeriod(ctx context.Context, tenant portsrepo.TenantStore, periodID string) (*domain.AccountingPeriod, error)
	CurrentPeriod(ctx context.Context, tenant portsrepo.TenantStore, date time.Time) (*domain.AccountingPeriod, error)

	// DeletePeriod refuses with apperrors.ErrPeriodInUse while journals reference the period.
	DeletePeriod(ctx context.Context, tenant portsrepo.TenantStore, periodID string, actor domain.Actor) error
}

// PeriodSvcFacade combines all period-related service interfaces
type PeriodSvcFacade interface {
	PeriodCloserSvc
	PeriodManagerSvc
}

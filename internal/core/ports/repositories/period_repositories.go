package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

// PeriodReader defines read operations for accounting periods.
type PeriodReader interface {
	// FindPeriodByID returns apperrors.ErrPeriodNotFound when the period does not exist.
	FindPeriodByID(ctx context.Context, periodID string) (*domain.AccountingPeriod, error)

	// FindPeriodByDate returns the period whose range contains date, or apperrors.ErrNoPeriod.
	FindPeriodByDate(ctx context.Context, date time.Time) (*domain.AccountingPeriod, error)

	// ListPeriods returns all periods ordered by start date.
	ListPeriods(ctx context.Context) ([]domain.AccountingPeriod, error)
}

// PeriodWriter defines write operations for accounting periods.
type PeriodWriter interface {
	// FindPeriodByIDForUpdate reads the period and holds it until the transaction ends.
	FindPeriodByIDForUpdate(ctx context.Context, periodID string) (*domain.AccountingPeriod, error)

	SavePeriod(ctx context.Context, period domain.AccountingPeriod) error

	UpdatePeriodStatus(ctx context.Context, periodID string, status domain.PeriodStatus, closedBy *string, closedAt *time.Time) error

	// DeletePeriod removes the period. It returns apperrors.ErrPeriodNotFound when there is nothing to delete.
	DeletePeriod(ctx context.Context, periodID string) error
}

package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
)

// PeriodService maintains the period calendar and closes periods.
type PeriodService struct {
	BaseService
	journals *JournalService
	ledger   *LedgerService
}

// NewPeriodService creates a new PeriodService. Closing entries are posted through journals
// and nominal balances are computed with ledger.
func NewPeriodService(journals *JournalService, ledger *LedgerService, opts ...Option) *PeriodService {
	s := &PeriodService{
		BaseService: newBaseService(),
		journals:    journals,
		ledger:      ledger,
	}
	s.apply(opts)
	return s
}

var _ portssvc.PeriodSvcFacade = (*PeriodService)(nil)

// CreatePeriod opens a new period. Its range must not overlap any existing period.
func (s *PeriodService) CreatePeriod(ctx context.Context, tenant portsrepo.TenantStore, name string, start, end time.Time, actor domain.Actor) (*domain.AccountingPeriod, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: period name is required", apperrors.ErrValidation)
	}
	start, end = domain.DateOnly(start), domain.DateOnly(end)
	if end.Before(start) {
		return nil, fmt.Errorf("%w: period end %s is before start %s", apperrors.ErrValidation,
			end.Format(time.DateOnly), start.Format(time.DateOnly))
	}

	var created domain.AccountingPeriod
	err := tenant.WithTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		user, err := resolveActor(ctx, tx, actor)
		if err != nil {
			return err
		}

		now := s.now()
		created = domain.AccountingPeriod{
			PeriodID:  uuid.NewString(),
			Name:      name,
			StartDate: start,
			EndDate:   end,
			Status:    domain.PeriodOpen,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     user.UserID,
				LastUpdatedAt: now,
				LastUpdatedBy: user.UserID,
			},
		}

		existing, err := tx.ListPeriods(ctx)
		if err != nil {
			return fmt.Errorf("failed to list periods: %w", err)
		}
		for _, p := range existing {
			if p.Overlaps(created) {
				return fmt.Errorf("%w: %s", apperrors.ErrPeriodOverlap, p.Name)
			}
		}

		return tx.SavePeriod(ctx, created)
	})
	if err != nil {
		s.LogWarn(ctx, err, "Period not created", slog.String("name", name))
		return nil, err
	}

	s.LogInfo(ctx, "Accounting period created", slog.String("period_id", created.PeriodID), slog.String("name", name))
	return &created, nil
}

// ListPeriods returns the periods passing filter ordered by start date, each with its journal count.
func (s *PeriodService) ListPeriods(ctx context.Context, tenant portsrepo.TenantStore, filter domain.PeriodFilter) ([]domain.PeriodSummary, error) {
	periods, err := tenant.ListPeriods(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list periods: %w", err)
	}
	counts, err := tenant.CountJournalsByPeriod(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count journals per period: %w", err)
	}

	summaries := make([]domain.PeriodSummary, 0, len(periods))
	for _, p := range periods {
		if filter.Matches(p) {
			summaries = append(summaries, domain.PeriodSummary{AccountingPeriod: p, JournalCount: counts[p.PeriodID]})
		}
	}
	return summaries, nil
}

// DeletePeriod removes a period that no journal was posted into.
func (s *PeriodService) DeletePeriod(ctx context.Context, tenant portsrepo.TenantStore, periodID string, actor domain.Actor) error {
	logger := s.GetLogger(ctx).With(
		slog.String("company_id", tenant.CompanyID()),
		slog.String("period_id", periodID),
	)

	var name string
	err := tenant.WithTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		period, err := tx.FindPeriodByIDForUpdate(ctx, periodID)
		if err != nil {
			return err
		}
		name = period.Name

		if _, err := resolveActor(ctx, tx, actor); err != nil {
			return err
		}

		counts, err := tx.CountJournalsByPeriod(ctx)
		if err != nil {
			return fmt.Errorf("failed to count journals: %w", err)
		}
		if n := counts[period.PeriodID]; n > 0 {
			return fmt.Errorf("%w: %s holds %d journal(s)", apperrors.ErrPeriodInUse, period.Name, n)
		}
		return tx.DeletePeriod(ctx, period.PeriodID)
	})
	if err != nil {
		if isRejection(err) {
			logger.Warn("Period not deleted", slog.String("reason", err.Error()))
		} else {
			logger.Error("Failed to delete period", slog.String("error", err.Error()))
		}
		return err
	}

	logger.Info("Accounting period deleted", slog.String("name", name))
	return nil
}

// GetPeriod returns a period by id.
func (s *PeriodService) GetPeriod(ctx context.Context, tenant portsrepo.TenantStore, periodID string) (*domain.AccountingPeriod, error) {
	return tenant.FindPeriodByID(ctx, periodID)
}

// CurrentPeriod returns the period containing date.
func (s *PeriodService) CurrentPeriod(ctx context.Context, tenant portsrepo.TenantStore, date time.Time) (*domain.AccountingPeriod, error) {
	return tenant.FindPeriodByDate(ctx, date)
}

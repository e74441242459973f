package services

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
)

// ReportingService defines operations for generating financial reports
type ReportingService interface {
	// TrialBalance is built as of the period end when periodID is set, else as of asOf, else now.
	TrialBalance(ctx context.Context, tenant portsrepo.TenantStore, periodID *string, asOf *time.Time) (*domain.TrialBalance, error)

	// ProfitAndLoss reports the nominal movement within a period.
	ProfitAndLoss(ctx context.Context, tenant portsrepo.TenantStore, periodID string) (*domain.ProfitAndLoss, error)

	// BalanceSheet reports the accounting equation as of the period end.
	BalanceSheet(ctx context.Context, tenant portsrepo.TenantStore, periodID string) (*domain.BalanceSheet, error)

	// FinancialSummary condenses the period's statements into headline figures.
	FinancialSummary(ctx context.Context, tenant portsrepo.TenantStore, periodID string) (*domain.FinancialSummary, error)

	// Analytics returns the income series of the last limit periods, oldest first.
	Analytics(ctx context.Context, tenant portsrepo.TenantStore, limit int) ([]domain.PeriodAnalytics, error)
}

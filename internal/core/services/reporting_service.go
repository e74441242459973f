package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
)

var hundred = decimal.NewFromInt(100)

// Analytics series length when the caller gives none, and the most it may ask for.
const (
	DefaultAnalyticsPeriods = 6
	maxAnalyticsPeriods     = 36
)

// cashNameMarkers identify asset accounts counted as cash in the financial summary.
var cashNameMarkers = []string{"cash", "bank", "kas"}

// ReportService builds financial statements from ledger balances. It never writes.
// Identical requests for the same tenant that run concurrently share one computation.
type ReportService struct {
	BaseService
	ledger *LedgerService
	group  singleflight.Group
}

// NewReportService creates a new ReportService.
func NewReportService(ledger *LedgerService, opts ...Option) *ReportService {
	s := &ReportService{BaseService: newBaseService(), ledger: ledger}
	s.apply(opts)
	return s
}

// Ensure ReportService implements the ReportingService interface
var _ portssvc.ReportingService = (*ReportService)(nil)

// TrialBalance implements portssvc.ReportingService.
func (s *ReportService) TrialBalance(ctx context.Context, tenant portsrepo.TenantStore, periodID *string, asOf *time.Time) (*domain.TrialBalance, error) {
	key := fmt.Sprintf("%s|trial-balance|%s|%s", tenant.CompanyID(), deref(periodID), formatDate(asOf))
	return shared(ctx, s, key, func(ctx context.Context) (*domain.TrialBalance, error) {
		return s.trialBalance(ctx, tenant, periodID, asOf)
	})
}

func (s *ReportService) trialBalance(ctx context.Context, tenant portsrepo.TenantStore, periodID *string, asOf *time.Time) (*domain.TrialBalance, error) {
	cutoff := s.now()
	switch {
	case periodID != nil:
		period, err := tenant.FindPeriodByID(ctx, *periodID)
		if err != nil {
			return nil, err
		}
		cutoff = period.EndDate
	case asOf != nil:
		cutoff = *asOf
	}
	cutoff = domain.DateOnly(cutoff)

	balances, err := s.ledger.balancesAsOf(ctx, tenant, &cutoff)
	if err != nil {
		s.LogError(ctx, err, "Failed to compute balances for trial balance")
		return nil, err
	}

	report := &domain.TrialBalance{
		AsOf:        cutoff,
		PeriodID:    periodID,
		Sections:    make([]domain.TrialBalanceSection, 0, len(domain.Categories)),
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}
	for _, category := range domain.Categories {
		section := domain.TrialBalanceSection{
			Category:    category,
			Rows:        []domain.TrialBalanceRow{},
			TotalDebit:  decimal.Zero,
			TotalCredit: decimal.Zero,
		}
		for _, b := range balances {
			if b.Category != category {
				continue
			}
			row := domain.TrialBalanceRow{
				AccountID: b.AccountID,
				Code:      b.Code,
				Name:      b.Name,
				Debit:     decimal.Zero,
				Credit:    decimal.Zero,
			}
			if b.Side == domain.Debit {
				row.Debit = b.Balance
			} else {
				row.Credit = b.Balance
			}
			section.Rows = append(section.Rows, row)
			section.TotalDebit = section.TotalDebit.Add(row.Debit)
			section.TotalCredit = section.TotalCredit.Add(row.Credit)
		}
		report.Sections = append(report.Sections, section)
		report.TotalDebit = report.TotalDebit.Add(section.TotalDebit)
		report.TotalCredit = report.TotalCredit.Add(section.TotalCredit)
	}
	report.IsBalanced = s.withinTolerance(report.TotalDebit, report.TotalCredit)

	s.LogInfo(ctx, "Trial balance generated",
		slog.String("as_of", cutoff.Format(time.DateOnly)),
		slog.Bool("is_balanced", report.IsBalanced))
	return report, nil
}

// ProfitAndLoss implements portssvc.ReportingService.
// The period's own closing journal is excluded, so a closed period still reports its result.
func (s *ReportService) ProfitAndLoss(ctx context.Context, tenant portsrepo.TenantStore, periodID string) (*domain.ProfitAndLoss, error) {
	key := fmt.Sprintf("%s|profit-and-loss|%s", tenant.CompanyID(), periodID)
	return shared(ctx, s, key, func(ctx context.Context) (*domain.ProfitAndLoss, error) {
		period, err := tenant.FindPeriodByID(ctx, periodID)
		if err != nil {
			return nil, err
		}
		return s.profitAndLoss(ctx, tenant, *period)
	})
}

func (s *ReportService) profitAndLoss(ctx context.Context, tenant portsrepo.TenantStore, period domain.AccountingPeriod) (*domain.ProfitAndLoss, error) {
	start, end := period.StartDate, period.EndDate
	balances, err := s.ledger.balancesWhere(ctx, tenant, domain.LineFilter{From: &start, To: &end},
		func(l domain.PostedLine) bool { return !l.Closing })
	if err != nil {
		s.LogError(ctx, err, "Failed to compute balances for profit and loss", slog.String("period_id", period.PeriodID))
		return nil, err
	}

	report := &domain.ProfitAndLoss{
		Period:        period,
		Revenue:       []domain.AccountAmount{},
		Expenses:      []domain.AccountAmount{},
		TotalRevenue:  decimal.Zero,
		TotalExpenses: decimal.Zero,
	}
	for _, b := range balances {
		switch b.Category {
		case domain.Revenue:
			report.Revenue = append(report.Revenue, toAccountAmount(b))
			report.TotalRevenue = report.TotalRevenue.Add(b.Net())
		case domain.Expense:
			report.Expenses = append(report.Expenses, toAccountAmount(b))
			report.TotalExpenses = report.TotalExpenses.Add(b.Net())
		}
	}
	report.NetIncome = report.TotalRevenue.Sub(report.TotalExpenses)
	report.Result = domain.Profit
	if report.NetIncome.IsNegative() {
		report.Result = domain.Loss
	}
	return report, nil
}

// BalanceSheet implements portssvc.ReportingService.
// Nominal balances not yet closed to retained earnings are shown as current earnings within equity.
func (s *ReportService) BalanceSheet(ctx context.Context, tenant portsrepo.TenantStore, periodID string) (*domain.BalanceSheet, error) {
	key := fmt.Sprintf("%s|balance-sheet|%s", tenant.CompanyID(), periodID)
	return shared(ctx, s, key, func(ctx context.Context) (*domain.BalanceSheet, error) {
		period, err := tenant.FindPeriodByID(ctx, periodID)
		if err != nil {
			return nil, err
		}
		return s.balanceSheet(ctx, tenant, *period)
	})
}

func (s *ReportService) balanceSheet(ctx context.Context, tenant portsrepo.TenantStore, period domain.AccountingPeriod) (*domain.BalanceSheet, error) {
	pnl, err := s.profitAndLoss(ctx, tenant, period)
	if err != nil {
		return nil, err
	}

	end := domain.DateOnly(period.EndDate)
	balances, err := s.ledger.balancesAsOf(ctx, tenant, &end)
	if err != nil {
		s.LogError(ctx, err, "Failed to compute balances for balance sheet", slog.String("period_id", period.PeriodID))
		return nil, err
	}

	report := &domain.BalanceSheet{
		Period:           period,
		AsOf:             end,
		Assets:           []domain.AccountAmount{},
		Liabilities:      []domain.AccountAmount{},
		Equity:           []domain.AccountAmount{},
		CurrentEarnings:  decimal.Zero,
		NetIncome:        pnl.NetIncome,
		TotalAssets:      decimal.Zero,
		TotalLiabilities: decimal.Zero,
		TotalEquity:      decimal.Zero,
	}
	for _, b := range balances {
		switch b.Category {
		case domain.Asset:
			report.Assets = append(report.Assets, toAccountAmount(b))
			report.TotalAssets = report.TotalAssets.Add(b.Net())
		case domain.Liability:
			report.Liabilities = append(report.Liabilities, toAccountAmount(b))
			report.TotalLiabilities = report.TotalLiabilities.Add(b.Net())
		case domain.Equity:
			report.Equity = append(report.Equity, toAccountAmount(b))
			report.TotalEquity = report.TotalEquity.Add(b.Net())
		case domain.Revenue:
			report.CurrentEarnings = report.CurrentEarnings.Add(b.Net())
		case domain.Expense:
			report.CurrentEarnings = report.CurrentEarnings.Sub(b.Net())
		}
	}
	report.TotalEquity = report.TotalEquity.Add(report.CurrentEarnings)
	report.IsBalanced = s.withinTolerance(report.TotalAssets, report.TotalLiabilities.Add(report.TotalEquity))

	if !report.IsBalanced {
		s.GetLogger(ctx).Warn("Balance sheet does not balance",
			slog.String("period_id", period.PeriodID),
			slog.String("assets", report.TotalAssets.String()),
			slog.String("liabilities_and_equity", report.TotalLiabilities.Add(report.TotalEquity).String()))
	}
	return report, nil
}

// FinancialSummary implements portssvc.ReportingService.
func (s *ReportService) FinancialSummary(ctx context.Context, tenant portsrepo.TenantStore, periodID string) (*domain.FinancialSummary, error) {
	key := fmt.Sprintf("%s|summary|%s", tenant.CompanyID(), periodID)
	return shared(ctx, s, key, func(ctx context.Context) (*domain.FinancialSummary, error) {
		period, err := tenant.FindPeriodByID(ctx, periodID)
		if err != nil {
			return nil, err
		}
		bs, err := s.balanceSheet(ctx, tenant, *period)
		if err != nil {
			return nil, err
		}
		pnl, err := s.profitAndLoss(ctx, tenant, *period)
		if err != nil {
			return nil, err
		}

		summary := &domain.FinancialSummary{
			Period:           *period,
			TotalRevenue:     pnl.TotalRevenue,
			TotalExpenses:    pnl.TotalExpenses,
			NetIncome:        pnl.NetIncome,
			TotalAssets:      bs.TotalAssets,
			TotalLiabilities: bs.TotalLiabilities,
			TotalEquity:      bs.TotalEquity,
			CashBalance:      cashBalance(bs.Assets),
			ProfitMargin:     decimal.Zero,
			DebtToEquity:     decimal.Zero,
		}
		if pnl.TotalRevenue.IsPositive() {
			summary.ProfitMargin = pnl.NetIncome.Div(pnl.TotalRevenue).Mul(hundred).Round(2)
		}
		if bs.TotalEquity.IsPositive() {
			summary.DebtToEquity = bs.TotalLiabilities.Div(bs.TotalEquity).Round(2)
		}
		return summary, nil
	})
}

// Analytics implements portssvc.ReportingService. Each point is the profit and loss of
// one period; limit below one means DefaultAnalyticsPeriods.
func (s *ReportService) Analytics(ctx context.Context, tenant portsrepo.TenantStore, limit int) ([]domain.PeriodAnalytics, error) {
	if limit < 1 {
		limit = DefaultAnalyticsPeriods
	}
	limit = min(limit, maxAnalyticsPeriods)

	key := fmt.Sprintf("%s|analytics|%d", tenant.CompanyID(), limit)
	series, err := shared(ctx, s, key, func(ctx context.Context) (*[]domain.PeriodAnalytics, error) {
		periods, err := tenant.ListPeriods(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list periods: %w", err)
		}
		if len(periods) > limit {
			periods = periods[len(periods)-limit:]
		}

		points := make([]domain.PeriodAnalytics, 0, len(periods))
		for _, period := range periods {
			pnl, err := s.profitAndLoss(ctx, tenant, period)
			if err != nil {
				return nil, err
			}
			points = append(points, domain.PeriodAnalytics{
				PeriodID:  period.PeriodID,
				Period:    period.Name,
				Month:     period.EndDate.Format("Jan"),
				Revenue:   pnl.TotalRevenue,
				Expense:   pnl.TotalExpenses,
				NetIncome: pnl.NetIncome,
			})
		}
		return &points, nil
	})
	if err != nil {
		return nil, err
	}
	return *series, nil
}

func cashBalance(assets []domain.AccountAmount) decimal.Decimal {
	total := decimal.Zero
	for _, a := range assets {
		name := strings.ToLower(a.Name)
		for _, marker := range cashNameMarkers {
			if strings.Contains(name, marker) {
				total = total.Add(a.Amount)
				break
			}
		}
	}
	return total
}

func toAccountAmount(b domain.AccountBalance) domain.AccountAmount {
	return domain.AccountAmount{AccountID: b.AccountID, Code: b.Code, Name: b.Name, Amount: b.Net()}
}

// shared runs fn once for all concurrent callers using the same key.
// fn gets a context detached from the caller's cancellation, since other callers may be
// waiting on its result; each caller stops waiting when its own ctx is done.
func shared[T any](ctx context.Context, s *ReportService, key string, fn func(ctx context.Context) (*T, error)) (*T, error) {
	detached := context.WithoutCancel(ctx)
	ch := s.group.DoChan(key, func() (any, error) {
		return fn(detached)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*T), nil
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.DateOnly)
}

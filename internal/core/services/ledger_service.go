package services

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
)

// LedgerService computes balances from the posted lines of a tenant.
// It re-reads accounts and lines on every call.
type LedgerService struct {
	BaseService
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(opts ...Option) *LedgerService {
	s := &LedgerService{BaseService: newBaseService()}
	s.apply(opts)
	return s
}

var _ portssvc.LedgerSvc = (*LedgerService)(nil)

// AccountBalance implements portssvc.LedgerSvc.
func (s *LedgerService) AccountBalance(ctx context.Context, tenant portsrepo.TenantStore, accountID string, asOf *time.Time) (*domain.AccountBalance, error) {
	account, err := tenant.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	lines, err := tenant.ListPostedLines(ctx, domain.LineFilter{AccountID: &accountID, To: asOf})
	if err != nil {
		s.LogError(ctx, err, "Failed to read account lines", slog.String("account_id", accountID))
		return nil, fmt.Errorf("failed to read account lines: %w", err)
	}

	balance := ComputeBalance(*account, lines)
	return &balance, nil
}

// AccountTransactions implements portssvc.LedgerSvc.
// History before from is read so the first yielded entry carries the true opening balance.
func (s *LedgerService) AccountTransactions(ctx context.Context, tenant portsrepo.TenantStore, accountID string, from, to *time.Time) (iter.Seq[domain.LedgerEntry], error) {
	account, err := tenant.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	lines, err := tenant.ListPostedLines(ctx, domain.LineFilter{AccountID: &accountID, To: to})
	if err != nil {
		s.LogError(ctx, err, "Failed to read account lines", slog.String("account_id", accountID))
		return nil, fmt.Errorf("failed to read account lines: %w", err)
	}

	return RunningBalance(account.Category, lines, from, to), nil
}

// AllAccountBalances implements portssvc.LedgerSvc.
func (s *LedgerService) AllAccountBalances(ctx context.Context, tenant portsrepo.TenantStore, asOf *time.Time) (*domain.LedgerBalances, error) {
	balances, err := s.balancesAsOf(ctx, tenant, asOf)
	if err != nil {
		return nil, err
	}

	debit, credit := sumBySide(balances)
	return &domain.LedgerBalances{
		AsOf:        asOf,
		Balances:    balances,
		TotalDebit:  debit,
		TotalCredit: credit,
		IsBalanced:  s.withinTolerance(debit, credit),
	}, nil
}

// AccountActivity implements portssvc.LedgerSvc.
func (s *LedgerService) AccountActivity(ctx context.Context, tenant portsrepo.TenantStore, accountID, periodID string) (*domain.AccountActivity, error) {
	account, err := tenant.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	period, err := tenant.FindPeriodByID(ctx, periodID)
	if err != nil {
		return nil, err
	}

	end := period.EndDate
	lines, err := tenant.ListPostedLines(ctx, domain.LineFilter{AccountID: &accountID, To: &end})
	if err != nil {
		return nil, fmt.Errorf("failed to read account lines: %w", err)
	}

	var opening, within []domain.PostedLine
	for _, l := range lines {
		if period.Contains(l.JournalDate) {
			within = append(within, l)
		} else {
			opening = append(opening, l)
		}
	}

	activity := ComputeBalance(*account, within)
	return &domain.AccountActivity{
		Account:        *account,
		Period:         *period,
		OpeningBalance: ComputeBalance(*account, opening),
		PeriodDebit:    activity.DebitTotal,
		PeriodCredit:   activity.CreditTotal,
		ClosingBalance: ComputeBalance(*account, lines),
	}, nil
}

// balancesAsOf computes the balance of every account with activity up to asOf.
func (s *LedgerService) balancesAsOf(ctx context.Context, reader portsrepo.LedgerReader, asOf *time.Time) ([]domain.AccountBalance, error) {
	return s.balancesWhere(ctx, reader, domain.LineFilter{To: asOf}, nil)
}

// balancesWhere computes balances over the lines matching filter and keep (nil keeps all).
func (s *LedgerService) balancesWhere(ctx context.Context, reader portsrepo.LedgerReader, filter domain.LineFilter, keep func(domain.PostedLine) bool) ([]domain.AccountBalance, error) {
	accounts, err := reader.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	lines, err := reader.ListPostedLines(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger lines: %w", err)
	}
	if keep != nil {
		kept := lines[:0:0]
		for _, l := range lines {
			if keep(l) {
				kept = append(kept, l)
			}
		}
		lines = kept
	}
	return ComputeBalances(accounts, lines), nil
}

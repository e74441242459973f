package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_engine/internal/platform/metrics"
)

const (
	closingReference         = "CLOSING"
	closingDescriptionPrefix = "Closing Entries - "
	retainedEarningsCode     = "3100"
)

var retainedEarningsNames = []string{"Retained Earnings", "Laba Ditahan"}

// ClosePeriod zeros the period's nominal accounts into retained earnings with one journal
// dated at the period end, then marks the period closed. Both happen in one transaction.
func (s *PeriodService) ClosePeriod(ctx context.Context, tenant portsrepo.TenantStore, periodID string, actor domain.Actor) (_ *domain.CloseResult, err error) {
	timer := metrics.StartTimer(metrics.OpClose)
	defer func() { metrics.Observe(metrics.OpClose, timer, err) }()

	logger := s.GetLogger(ctx).With(
		slog.String("company_id", tenant.CompanyID()),
		slog.String("period_id", periodID),
	)

	var result *domain.CloseResult
	err = tenant.WithTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		period, err := tx.FindPeriodByIDForUpdate(ctx, periodID)
		if err != nil {
			return err
		}
		if period.IsClosed() {
			return fmt.Errorf("%w: %s", apperrors.ErrAlreadyClosed, period.Name)
		}

		user, err := resolveActor(ctx, tx, actor)
		if err != nil {
			return err
		}

		end := period.EndDate
		balances, err := s.ledger.balancesWhere(ctx, tx, domain.LineFilter{To: &end}, nil)
		if err != nil {
			return err
		}

		lines, netIncome := closingLines(balances)
		result = &domain.CloseResult{NetIncome: netIncome}

		if len(lines) > 0 {
			target, err := s.retainedEarningsAccount(ctx, tx)
			if err != nil {
				return err
			}
			switch {
			case netIncome.IsPositive():
				lines = append(lines, domain.LineCandidate{AccountID: target.AccountID, Debit: decimal.Zero, Credit: netIncome, Memo: "Net income"})
			case netIncome.IsNegative():
				lines = append(lines, domain.LineCandidate{AccountID: target.AccountID, Debit: netIncome.Abs(), Credit: decimal.Zero, Memo: "Net loss"})
			}

			reference := closingReference
			journal, err := s.journals.postInTx(ctx, tx, postRequest{
				candidate: domain.JournalCandidate{
					Date:        period.EndDate,
					Description: closingDescriptionPrefix + period.Name,
					Reference:   &reference,
					Lines:       lines,
				},
				user:    user,
				closing: true,
			})
			if err != nil {
				return err
			}
			result.Journal = journal
			result.RetainedEarningsAccountID = target.AccountID
		}

		closedAt := s.now()
		if err := tx.UpdatePeriodStatus(ctx, period.PeriodID, domain.PeriodClosed, &user.UserID, &closedAt); err != nil {
			return fmt.Errorf("failed to close period %s: %w", period.Name, err)
		}
		period.Status = domain.PeriodClosed
		period.ClosedAt = &closedAt
		period.ClosedBy = &user.UserID
		result.Period = *period
		return nil
	})
	if err != nil {
		if isRejection(err) {
			logger.Warn("Period close rejected", slog.String("reason", err.Error()))
		} else {
			logger.Error("Failed to close period", slog.String("error", err.Error()))
		}
		return nil, err
	}
	recordPosted(result.Journal)

	attrs := []any{slog.String("net_income", result.NetIncome.String())}
	if result.Journal != nil {
		attrs = append(attrs, slog.String("closing_journal", result.Journal.Number))
	}
	logger.Info("Accounting period closed", attrs...)
	return result, nil
}

// closingLines returns one line per nominal account with a non-zero balance, moving the
// balance to the opposite side, revenue first. Net income is revenue net minus expense net.
func closingLines(balances []domain.AccountBalance) ([]domain.LineCandidate, decimal.Decimal) {
	var revenue, expense []domain.LineCandidate
	revenueNet, expenseNet := decimal.Zero, decimal.Zero

	for _, b := range balances {
		if !b.Category.IsNominal() || b.Balance.IsZero() {
			continue
		}
		line := domain.LineCandidate{AccountID: b.AccountID, Debit: decimal.Zero, Credit: decimal.Zero}
		if b.Side == domain.Credit {
			line.Debit = b.Balance
		} else {
			line.Credit = b.Balance
		}

		if b.Category == domain.Revenue {
			revenue = append(revenue, line)
			revenueNet = revenueNet.Add(b.Net())
		} else {
			expense = append(expense, line)
			expenseNet = expenseNet.Add(b.Net())
		}
	}

	return append(revenue, expense...), revenueNet.Sub(expenseNet)
}

// retainedEarningsAccount picks the equity account that receives net income.
// A configured account on the company wins; otherwise a postable equity account named
// or coded as retained earnings, otherwise the first postable equity account by code.
func (s *PeriodService) retainedEarningsAccount(ctx context.Context, tx portsrepo.LedgerTx) (*domain.Account, error) {
	company, err := tx.GetCompany(ctx)
	if err != nil {
		return nil, err
	}
	accounts, err := tx.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	if id := company.RetainedEarningsAccountID; id != nil && *id != "" {
		for i := range accounts {
			if accounts[i].AccountID != *id {
				continue
			}
			if accounts[i].Category != domain.Equity {
				return nil, fmt.Errorf("%w: configured account %s is %s", apperrors.ErrNoEquityAccount, accounts[i].Code, accounts[i].Category)
			}
			return &accounts[i], nil
		}
		return nil, fmt.Errorf("%w: configured account %s does not exist", apperrors.ErrNoEquityAccount, *id)
	}

	var first *domain.Account
	for i := range accounts {
		acc := &accounts[i]
		if acc.Category != domain.Equity || !acc.Postable {
			continue
		}
		if isRetainedEarnings(*acc) {
			return acc, nil
		}
		if first == nil {
			first = acc
		}
	}
	if first == nil {
		return nil, apperrors.ErrNoEquityAccount
	}
	s.LogDebug(ctx, "No retained earnings account matched, using first equity account", slog.String("account_code", first.Code))
	return first, nil
}

func isRetainedEarnings(acc domain.Account) bool {
	if acc.Code == retainedEarningsCode {
		return true
	}
	name := strings.TrimSpace(acc.Name)
	for _, candidate := range retainedEarningsNames {
		if strings.EqualFold(name, candidate) {
			return true
		}
	}
	return false
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_engine/internal/platform/metrics"
	"github.com/SscSPs/ledger_engine/internal/utils/accounting"
)

// postRequest is a candidate plus the engine-owned attributes of the journal it becomes.
// When user is nil, actor is resolved once the company is known to exist.
type postRequest struct {
	candidate  domain.JournalCandidate
	actor      domain.Actor
	user       *domain.User
	closing    bool
	reversalOf *string
}

// PostJournal validates the candidate and commits it as the tenant's next journal.
// Any failure leaves the ledger untouched and consumes no journal number.
func (s *JournalService) PostJournal(ctx context.Context, tenant portsrepo.TenantStore, candidate domain.JournalCandidate, actor domain.Actor) (_ *domain.Journal, err error) {
	timer := metrics.StartTimer(metrics.OpPost)
	defer func() { metrics.Observe(metrics.OpPost, timer, err) }()

	logger := s.GetLogger(ctx).With(slog.String("company_id", tenant.CompanyID()))

	var posted *domain.Journal
	err = tenant.WithTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		var err error
		posted, err = s.postInTx(ctx, tx, postRequest{candidate: candidate, actor: actor})
		return err
	})
	if err != nil {
		if isRejection(err) {
			logger.Warn("Journal rejected", slog.String("reason", err.Error()))
		} else {
			logger.Error("Failed to post journal", slog.String("error", err.Error()))
		}
		return nil, err
	}
	recordPosted(posted)

	logger.Info("Journal posted",
		slog.String("journal_id", posted.JournalID),
		slog.String("number", posted.Number),
		slog.Int("lines", len(posted.Lines)))
	return posted, nil
}

// postInTx runs every posting rule in order inside an open transaction.
func (s *JournalService) postInTx(ctx context.Context, tx portsrepo.LedgerTx, req postRequest) (*domain.Journal, error) {
	candidate := req.candidate

	if _, err := tx.GetCompany(ctx); err != nil {
		return nil, err
	}
	user := req.user
	if user == nil {
		var err error
		if user, err = resolveActor(ctx, tx, req.actor); err != nil {
			return nil, err
		}
	}

	period, err := tx.FindPeriodByDate(ctx, candidate.Date)
	if err != nil {
		if errors.Is(err, apperrors.ErrNoPeriod) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrNoPeriod, candidate.Date.Format("2006-01-02"))
		}
		return nil, fmt.Errorf("failed to find accounting period: %w", err)
	}
	if period.IsClosed() {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrPeriodClosed, period.Name)
	}

	if err := s.validateAccounts(ctx, tx, candidate.Lines); err != nil {
		return nil, err
	}
	if err := accounting.ValidateJournalBalance(candidate.Lines); err != nil {
		return nil, err
	}

	number, err := s.nextJournalNumber(ctx, tx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	journalID := uuid.NewString()
	journal := domain.Journal{
		JournalID:    journalID,
		Number:       number,
		Date:         domain.DateOnly(candidate.Date),
		Description:  strings.TrimSpace(candidate.Description),
		Reference:    candidate.Reference,
		PeriodID:     period.PeriodID,
		ReversalOfID: req.reversalOf,
		Closing:      req.closing,
		Lines:        make([]domain.JournalLine, len(candidate.Lines)),
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     user.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: user.UserID,
		},
	}
	for i, l := range candidate.Lines {
		journal.Lines[i] = domain.JournalLine{
			LineID:    uuid.NewString(),
			JournalID: journalID,
			AccountID: l.AccountID,
			Debit:     l.Debit,
			Credit:    l.Credit,
			Memo:      l.Memo,
			Seq:       i + 1,
		}
	}

	if err := tx.SaveJournal(ctx, journal); err != nil {
		return nil, fmt.Errorf("failed to save journal: %w", err)
	}
	return &journal, nil
}

// recordPosted counts the lines of a committed journal.
func recordPosted(j *domain.Journal) {
	if j != nil {
		metrics.JournalLinesPosted.Add(float64(len(j.Lines)))
	}
}

// validateAccounts checks that every referenced account exists and accepts postings.
// Accounts are read inside the transaction so lock changes are never missed.
func (s *JournalService) validateAccounts(ctx context.Context, tx portsrepo.LedgerTx, lines []domain.LineCandidate) error {
	ids := make([]string, 0, len(lines))
	seen := make(map[string]struct{}, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.AccountID]; ok {
			continue
		}
		seen[l.AccountID] = struct{}{}
		ids = append(ids, l.AccountID)
	}

	accounts, err := tx.FindAccountsByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to fetch accounts: %w", err)
	}

	for i, l := range lines {
		acc, ok := accounts[l.AccountID]
		if !ok {
			return fmt.Errorf("%w: %w: line %d references account %s", apperrors.ErrValidation, apperrors.ErrAccountNotFound, i+1, l.AccountID)
		}
		if acc.Locked {
			return fmt.Errorf("%w: line %d, account %s (%s)", apperrors.ErrAccountLocked, i+1, acc.Code, acc.Name)
		}
		if !acc.Postable {
			return fmt.Errorf("%w: line %d, account %s (%s)", apperrors.ErrAccountNotPostable, i+1, acc.Code, acc.Name)
		}
	}
	return nil
}

// nextJournalNumber takes the tenant's numbering lock and returns the number after the last one issued.
// The lock is held until the surrounding transaction ends, so no two posts can read the same last number.
func (s *JournalService) nextJournalNumber(ctx context.Context, tx portsrepo.LedgerTx) (string, error) {
	if err := tx.LockJournalNumbering(ctx); err != nil {
		return "", fmt.Errorf("failed to lock journal numbering: %w", err)
	}

	last, found, err := tx.LastJournalNumber(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read last journal number: %w", err)
	}
	if !found {
		return domain.FormatJournalNumber(1), nil
	}

	seq, err := domain.ParseJournalNumber(last)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrInternal, err)
	}
	return domain.FormatJournalNumber(seq + 1), nil
}

// isRejection reports whether err is a business-rule rejection rather than a fault.
func isRejection(err error) bool {
	return errors.Is(err, apperrors.ErrValidation) ||
		errors.Is(err, apperrors.ErrNotFound) ||
		errors.Is(err, apperrors.ErrConflict) ||
		errors.Is(err, apperrors.ErrForbidden)
}

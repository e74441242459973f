package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_engine/internal/platform/metrics"
)

const reversalPrefix = "Reversal of Journal: "

// ReverseJournal posts the mirror image of a journal, dated now, and links the original to it.
// The reversing journal passes the full posting rules for its own date.
func (s *JournalService) ReverseJournal(ctx context.Context, tenant portsrepo.TenantStore, journalID string, actor domain.Actor) (_ *domain.Journal, err error) {
	timer := metrics.StartTimer(metrics.OpReverse)
	defer func() { metrics.Observe(metrics.OpReverse, timer, err) }()

	logger := s.GetLogger(ctx).With(
		slog.String("company_id", tenant.CompanyID()),
		slog.String("journal_id", journalID),
	)

	var reversing *domain.Journal
	err = tenant.WithTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		original, err := tx.FindJournalByIDForUpdate(ctx, journalID)
		if err != nil {
			return err
		}
		if original.Reversed {
			return fmt.Errorf("%w: %s", apperrors.ErrAlreadyReversed, original.Number)
		}

		period, err := tx.FindPeriodByID(ctx, original.PeriodID)
		if err != nil {
			return fmt.Errorf("failed to find period of journal %s: %w", original.Number, err)
		}
		if period.IsClosed() {
			return fmt.Errorf("%w: %s holds journal %s", apperrors.ErrPeriodClosed, period.Name, original.Number)
		}

		user, err := resolveActor(ctx, tx, actor)
		if err != nil {
			return err
		}

		now := s.now()
		reversing, err = s.postInTx(ctx, tx, postRequest{
			candidate:  reversalOf(*original, now),
			user:       user,
			reversalOf: &original.JournalID,
		})
		if err != nil {
			return err
		}

		if err := tx.MarkJournalReversed(ctx, original.JournalID, reversing.JournalID, user.UserID, now); err != nil {
			return fmt.Errorf("failed to mark journal %s reversed: %w", original.Number, err)
		}
		return nil
	})
	if err != nil {
		if isRejection(err) {
			logger.Warn("Journal reversal rejected", slog.String("reason", err.Error()))
		} else {
			logger.Error("Failed to reverse journal", slog.String("error", err.Error()))
		}
		return nil, err
	}
	recordPosted(reversing)

	logger.Info("Journal reversed",
		slog.String("reversing_journal_id", reversing.JournalID),
		slog.String("reversing_number", reversing.Number))
	return reversing, nil
}

// reversalOf builds the candidate that cancels j: same accounts and amounts with sides swapped.
func reversalOf(j domain.Journal, date time.Time) domain.JournalCandidate {
	lines := make([]domain.LineCandidate, len(j.Lines))
	for i, l := range j.Lines {
		lines[i] = domain.LineCandidate{
			AccountID: l.AccountID,
			Debit:     l.Credit,
			Credit:    l.Debit,
			Memo:      l.Memo,
		}
	}
	return domain.JournalCandidate{
		Date:        date,
		Description: fmt.Sprintf("%s%s - %s", reversalPrefix, j.Number, j.Description),
		Reference:   j.Reference,
		Lines:       lines,
	}
}

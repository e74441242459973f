package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

// JournalReader defines read operations for journal data
type JournalReader interface {
	// FindJournalByID retrieves a journal with its lines, or apperrors.ErrJournalNotFound.
	FindJournalByID(ctx context.Context, journalID string) (*domain.Journal, error)

	// ListJournals returns at most filter.Limit journals (with lines) ordered by date then number.
	ListJournals(ctx context.Context, filter domain.JournalFilter) ([]domain.Journal, error)

	// ListPostedLines returns lines joined with their journal header, ordered by
	// journal date, journal number and line sequence.
	ListPostedLines(ctx context.Context, filter domain.LineFilter) ([]domain.PostedLine, error)

	// CountJournalsByPeriod returns the number of journals per period id. Periods without journals are absent.
	CountJournalsByPeriod(ctx context.Context) (map[string]int, error)
}

// JournalWriter defines write operations for journal data
type JournalWriter interface {
	// LockJournalNumbering serializes numbering for the tenant until the transaction ends.
	LockJournalNumbering(ctx context.Context) error

	// LastJournalNumber returns the highest number issued so far; found is false for an empty ledger.
	LastJournalNumber(ctx context.Context) (number string, found bool, err error)

	// SaveJournal persists the header and all lines as one unit.
	SaveJournal(ctx context.Context, journal domain.Journal) error

	// FindJournalByIDForUpdate reads the journal and holds it until the transaction ends.
	FindJournalByIDForUpdate(ctx context.Context, journalID string) (*domain.Journal, error)

	// MarkJournalReversed sets the reversed flag and reversal link of a journal that is not yet reversed.
	MarkJournalReversed(ctx context.Context, journalID, reversedByID, updatedBy string, updatedAt time.Time) error
}

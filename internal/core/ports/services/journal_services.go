package services

import (
	"context"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
)

// JournalPosterSvc validates and commits new journals.
type JournalPosterSvc interface {
	// PostJournal validates the candidate against period, account and balance rules,
	// assigns the next journal number and persists it atomically.
	PostJournal(ctx context.Context, tenant portsrepo.TenantStore, candidate domain.JournalCandidate, actor domain.Actor) (*domain.Journal, error)
}

// JournalReverserSvc creates mirror-image journals.
type JournalReverserSvc interface {
	// ReverseJournal posts the reversal of a journal and links the two.
	ReverseJournal(ctx context.Context, tenant portsrepo.TenantStore, journalID string, actor domain.Actor) (*domain.Journal, error)
}

// JournalReaderSvc defines read operations for journal data
type JournalReaderSvc interface {
	GetJournal(ctx context.Context, tenant portsrepo.TenantStore, journalID string) (*domain.Journal, error)

	// ListJournals returns one page of journals matching filter.
	ListJournals(ctx context.Context, tenant portsrepo.TenantStore, filter domain.JournalFilter) ([]domain.Journal, error)
}

// JournalSvcFacade combines all journal-related service interfaces
type JournalSvcFacade interface {
	JournalPosterSvc
	JournalReverserSvc
	JournalReaderSvc
}

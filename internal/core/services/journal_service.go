package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
)

const (
	defaultJournalPageSize = 20
	maxJournalPageSize     = 200
)

// JournalService posts, reverses and reads journals.
type JournalService struct {
	BaseService
}

// NewJournalService creates a new JournalService.
func NewJournalService(opts ...Option) *JournalService {
	s := &JournalService{BaseService: newBaseService()}
	s.apply(opts)
	return s
}

// Ensure JournalService implements the portssvc.JournalSvcFacade interface
var _ portssvc.JournalSvcFacade = (*JournalService)(nil)

// GetJournal retrieves a journal with its lines.
func (s *JournalService) GetJournal(ctx context.Context, tenant portsrepo.TenantStore, journalID string) (*domain.Journal, error) {
	journal, err := tenant.FindJournalByID(ctx, journalID)
	if err != nil {
		s.LogDebug(ctx, "Journal lookup failed", slog.String("journal_id", journalID), slog.String("error", err.Error()))
		return nil, err
	}
	return journal, nil
}

// ListJournals returns one page of journals ordered by date then number.
func (s *JournalService) ListJournals(ctx context.Context, tenant portsrepo.TenantStore, filter domain.JournalFilter) ([]domain.Journal, error) {
	switch {
	case filter.Limit <= 0:
		filter.Limit = defaultJournalPageSize
	case filter.Limit > maxJournalPageSize:
		filter.Limit = maxJournalPageSize
	}

	journals, err := tenant.ListJournals(ctx, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list journals", slog.String("company_id", tenant.CompanyID()))
		return nil, fmt.Errorf("failed to list journals: %w", err)
	}
	return journals, nil
}

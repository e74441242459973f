package memory

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
)

// dataset holds the rows of one company. A committed dataset is never mutated;
// transactions and seeding work on a clone.
type dataset struct {
	company  domain.Company
	users    map[string]domain.User
	accounts map[string]domain.Account
	periods  map[string]domain.AccountingPeriod
	journals map[string]domain.Journal

	fault func(op string) error
}

var _ portsrepo.LedgerTx = (*dataset)(nil)

func newDataset(company domain.Company) *dataset {
	return &dataset{
		company:  company,
		users:    make(map[string]domain.User),
		accounts: make(map[string]domain.Account),
		periods:  make(map[string]domain.AccountingPeriod),
		journals: make(map[string]domain.Journal),
	}
}

// clone copies the maps. Journal lines are shared since stored slices are never written in place.
func (d *dataset) clone() *dataset {
	return &dataset{
		company:  d.company,
		users:    maps.Clone(d.users),
		accounts: maps.Clone(d.accounts),
		periods:  maps.Clone(d.periods),
		journals: maps.Clone(d.journals),
	}
}

func (d *dataset) check(op string) error {
	if d.fault == nil {
		return nil
	}
	return d.fault(op)
}

func copyJournal(j domain.Journal) *domain.Journal {
	j.Lines = slices.Clone(j.Lines)
	return &j
}

func (d *dataset) GetCompany(_ context.Context) (*domain.Company, error) {
	if d.company.CompanyID == "" {
		return nil, apperrors.ErrCompanyNotFound
	}
	c := d.company
	return &c, nil
}

func (d *dataset) FindUserByID(_ context.Context, userID string) (*domain.User, error) {
	if u, ok := d.users[userID]; ok {
		return &u, nil
	}
	return nil, apperrors.ErrUserNotFound
}

func (d *dataset) FindUserByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range d.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (d *dataset) FindAccountByID(_ context.Context, accountID string) (*domain.Account, error) {
	if a, ok := d.accounts[accountID]; ok {
		return &a, nil
	}
	return nil, fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, accountID)
}

func (d *dataset) FindAccountsByIDs(_ context.Context, accountIDs []string) (map[string]domain.Account, error) {
	found := make(map[string]domain.Account, len(accountIDs))
	for _, id := range accountIDs {
		if a, ok := d.accounts[id]; ok {
			found[id] = a
		}
	}
	return found, nil
}

func (d *dataset) ListAccounts(_ context.Context) ([]domain.Account, error) {
	accounts := slices.Collect(maps.Values(d.accounts))
	slices.SortFunc(accounts, func(a, b domain.Account) int { return strings.Compare(a.Code, b.Code) })
	return accounts, nil
}

func (d *dataset) FindPeriodByID(_ context.Context, periodID string) (*domain.AccountingPeriod, error) {
	if p, ok := d.periods[periodID]; ok {
		return &p, nil
	}
	return nil, fmt.Errorf("%w: %s", apperrors.ErrPeriodNotFound, periodID)
}

func (d *dataset) FindPeriodByIDForUpdate(ctx context.Context, periodID string) (*domain.AccountingPeriod, error) {
	return d.FindPeriodByID(ctx, periodID)
}

func (d *dataset) FindPeriodByDate(ctx context.Context, date time.Time) (*domain.AccountingPeriod, error) {
	periods, _ := d.ListPeriods(ctx)
	for _, p := range periods {
		if p.Contains(date) {
			return &p, nil
		}
	}
	return nil, apperrors.ErrNoPeriod
}

func (d *dataset) ListPeriods(_ context.Context) ([]domain.AccountingPeriod, error) {
	periods := slices.Collect(maps.Values(d.periods))
	slices.SortFunc(periods, func(a, b domain.AccountingPeriod) int { return a.StartDate.Compare(b.StartDate) })
	return periods, nil
}

func (d *dataset) SavePeriod(_ context.Context, period domain.AccountingPeriod) error {
	if err := d.check("SavePeriod"); err != nil {
		return err
	}
	if _, exists := d.periods[period.PeriodID]; exists {
		return fmt.Errorf("%w: period %s exists", apperrors.ErrConflict, period.PeriodID)
	}
	d.periods[period.PeriodID] = period
	return nil
}

func (d *dataset) UpdatePeriodStatus(_ context.Context, periodID string, status domain.PeriodStatus, closedBy *string, closedAt *time.Time) error {
	if err := d.check("UpdatePeriodStatus"); err != nil {
		return err
	}
	p, ok := d.periods[periodID]
	if !ok {
		return fmt.Errorf("%w: %s", apperrors.ErrPeriodNotFound, periodID)
	}
	p.Status = status
	p.ClosedBy = closedBy
	p.ClosedAt = closedAt
	if closedAt != nil {
		p.LastUpdatedAt = *closedAt
	}
	if closedBy != nil {
		p.LastUpdatedBy = *closedBy
	}
	d.periods[periodID] = p
	return nil
}

// DeletePeriod refuses a period that journals still reference, as the foreign key does in PostgreSQL.
func (d *dataset) DeletePeriod(_ context.Context, periodID string) error {
	if err := d.check("DeletePeriod"); err != nil {
		return err
	}
	if _, ok := d.periods[periodID]; !ok {
		return fmt.Errorf("%w: %s", apperrors.ErrPeriodNotFound, periodID)
	}
	for _, j := range d.journals {
		if j.PeriodID == periodID {
			return fmt.Errorf("%w: period %s is referenced by journal %s", apperrors.ErrValidation, periodID, j.Number)
		}
	}
	delete(d.periods, periodID)
	return nil
}

func (d *dataset) CountJournalsByPeriod(_ context.Context) (map[string]int, error) {
	counts := make(map[string]int)
	for _, j := range d.journals {
		counts[j.PeriodID]++
	}
	return counts, nil
}

func (d *dataset) FindJournalByID(_ context.Context, journalID string) (*domain.Journal, error) {
	if j, ok := d.journals[journalID]; ok {
		return copyJournal(j), nil
	}
	return nil, fmt.Errorf("%w: %s", apperrors.ErrJournalNotFound, journalID)
}

func (d *dataset) FindJournalByIDForUpdate(ctx context.Context, journalID string) (*domain.Journal, error) {
	return d.FindJournalByID(ctx, journalID)
}

// orderedJournals returns every journal by date then number.
func (d *dataset) orderedJournals() []domain.Journal {
	journals := slices.Collect(maps.Values(d.journals))
	slices.SortFunc(journals, func(a, b domain.Journal) int {
		if c := domain.DateOnly(a.Date).Compare(domain.DateOnly(b.Date)); c != 0 {
			return c
		}
		return domain.CompareJournalNumbers(a.Number, b.Number)
	})
	return journals
}

func (d *dataset) ListJournals(_ context.Context, f domain.JournalFilter) ([]domain.Journal, error) {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	result := make([]domain.Journal, 0)
	for _, j := range d.orderedJournals() {
		if f.Limit > 0 && len(result) == f.Limit {
			break
		}
		day := domain.DateOnly(j.Date)
		switch {
		case f.After != nil && !f.After.After(j):
			continue
		case f.From != nil && day.Before(domain.DateOnly(*f.From)):
			continue
		case f.To != nil && day.After(domain.DateOnly(*f.To)):
			continue
		case f.PeriodID != nil && j.PeriodID != *f.PeriodID:
			continue
		case f.Reversed != nil && j.Reversed != *f.Reversed:
			continue
		case f.AccountID != nil && !touches(j, *f.AccountID):
			continue
		case search != "" && !matches(j, search):
			continue
		}
		result = append(result, *copyJournal(j))
	}
	return result, nil
}

func touches(j domain.Journal, accountID string) bool {
	return slices.ContainsFunc(j.Lines, func(l domain.JournalLine) bool { return l.AccountID == accountID })
}

func matches(j domain.Journal, search string) bool {
	if strings.Contains(strings.ToLower(j.Description), search) || strings.Contains(strings.ToLower(j.Number), search) {
		return true
	}
	return j.Reference != nil && strings.Contains(strings.ToLower(*j.Reference), search)
}

func (d *dataset) ListPostedLines(_ context.Context, f domain.LineFilter) ([]domain.PostedLine, error) {
	lines := make([]domain.PostedLine, 0)
	for _, j := range d.orderedJournals() {
		day := domain.DateOnly(j.Date)
		if f.From != nil && day.Before(domain.DateOnly(*f.From)) {
			continue
		}
		if f.To != nil && day.After(domain.DateOnly(*f.To)) {
			continue
		}
		for _, l := range j.Lines {
			if f.AccountID != nil && l.AccountID != *f.AccountID {
				continue
			}
			lines = append(lines, domain.PostedLine{
				JournalLine:   l,
				JournalNumber: j.Number,
				JournalDate:   j.Date,
				Description:   j.Description,
				Reference:     j.Reference,
				Closing:       j.Closing,
			})
		}
	}
	return lines, nil
}

// LockJournalNumbering is a no-op: transactions already run one at a time.
func (d *dataset) LockJournalNumbering(_ context.Context) error {
	return nil
}

func (d *dataset) LastJournalNumber(_ context.Context) (string, bool, error) {
	var (
		last  string
		found bool
	)
	for _, j := range d.journals {
		if !found || domain.CompareJournalNumbers(j.Number, last) > 0 {
			last, found = j.Number, true
		}
	}
	return last, found, nil
}

func (d *dataset) SaveJournal(_ context.Context, journal domain.Journal) error {
	if err := d.check("SaveJournal"); err != nil {
		return err
	}
	if _, exists := d.journals[journal.JournalID]; exists {
		return fmt.Errorf("%w: journal %s exists", apperrors.ErrConflict, journal.JournalID)
	}
	for _, j := range d.journals {
		if j.Number == journal.Number {
			return fmt.Errorf("%w: journal number %s is taken", apperrors.ErrConflict, journal.Number)
		}
	}
	d.journals[journal.JournalID] = *copyJournal(journal)
	return nil
}

func (d *dataset) MarkJournalReversed(_ context.Context, journalID, reversedByID, updatedBy string, updatedAt time.Time) error {
	if err := d.check("MarkJournalReversed"); err != nil {
		return err
	}
	j, ok := d.journals[journalID]
	if !ok {
		return fmt.Errorf("%w: %s", apperrors.ErrJournalNotFound, journalID)
	}
	if j.Reversed {
		return fmt.Errorf("%w: %s", apperrors.ErrAlreadyReversed, j.Number)
	}
	j.Reversed = true
	j.ReversedByID = &reversedByID
	j.LastUpdatedBy = updatedBy
	j.LastUpdatedAt = updatedAt
	d.journals[journalID] = j
	return nil
}

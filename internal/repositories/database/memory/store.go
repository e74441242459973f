// Package memory is an in-process tenant store. Each company owns a separate dataset;
// transactions run one at a time against a private copy that replaces the dataset on commit.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
)

// Store is the dataset of one company.
type Store struct {
	mu   sync.RWMutex // guards data
	txMu sync.Mutex   // serializes transactions
	data *dataset

	// fault, when set, is consulted before every write inside a transaction.
	fault func(op string) error
}

var _ portsrepo.TenantStore = (*Store)(nil)

// New creates an empty dataset for company.
func New(company domain.Company) *Store {
	return &Store{data: newDataset(company)}
}

// CompanyID implements portsrepo.TenantStore.
func (s *Store) CompanyID() string {
	return s.snapshot().company.CompanyID
}

// WithTx implements portsrepo.TransactionManager. fn works on a copy of the dataset;
// the copy becomes visible only if fn returns nil.
func (s *Store) WithTx(ctx context.Context, fn portsrepo.TxFunc) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	work := s.snapshot().clone()
	work.fault = s.fault
	if err := fn(ctx, work); err != nil {
		return err
	}
	work.fault = nil

	s.mu.Lock()
	s.data = work
	s.mu.Unlock()
	return nil
}

// SetFault installs a hook that can fail writes by operation name
// ("SaveJournal", "MarkJournalReversed", "SavePeriod", "UpdatePeriodStatus", "DeletePeriod"). nil removes it.
func (s *Store) SetFault(fault func(op string) error) {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.fault = fault
}

func (s *Store) snapshot() *dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data
}

// seed applies fn to the live dataset outside of any transaction.
func (s *Store) seed(fn func(d *dataset)) {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	work := s.snapshot().clone()
	fn(work)
	s.mu.Lock()
	s.data = work
	s.mu.Unlock()
}

// SetCompany replaces the company record.
func (s *Store) SetCompany(company domain.Company) {
	s.seed(func(d *dataset) { d.company = company })
}

// AddUser adds or replaces a user.
func (s *Store) AddUser(user domain.User) {
	s.seed(func(d *dataset) { d.users[user.UserID] = user })
}

// AddAccount adds or replaces an account of the chart.
func (s *Store) AddAccount(account domain.Account) {
	s.seed(func(d *dataset) { d.accounts[account.AccountID] = account })
}

// AddPeriod adds or replaces a period without the overlap check.
func (s *Store) AddPeriod(period domain.AccountingPeriod) {
	s.seed(func(d *dataset) { d.periods[period.PeriodID] = period })
}

// Read facade. Every call works on the committed dataset at the time of the call.

func (s *Store) GetCompany(ctx context.Context) (*domain.Company, error) {
	return s.snapshot().GetCompany(ctx)
}

func (s *Store) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	return s.snapshot().FindUserByID(ctx, userID)
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.snapshot().FindUserByEmail(ctx, email)
}

func (s *Store) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	return s.snapshot().FindAccountByID(ctx, accountID)
}

func (s *Store) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	return s.snapshot().FindAccountsByIDs(ctx, accountIDs)
}

func (s *Store) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	return s.snapshot().ListAccounts(ctx)
}

func (s *Store) FindPeriodByID(ctx context.Context, periodID string) (*domain.AccountingPeriod, error) {
	return s.snapshot().FindPeriodByID(ctx, periodID)
}

func (s *Store) FindPeriodByDate(ctx context.Context, date time.Time) (*domain.AccountingPeriod, error) {
	return s.snapshot().FindPeriodByDate(ctx, date)
}

func (s *Store) ListPeriods(ctx context.Context) ([]domain.AccountingPeriod, error) {
	return s.snapshot().ListPeriods(ctx)
}

func (s *Store) FindJournalByID(ctx context.Context, journalID string) (*domain.Journal, error) {
	return s.snapshot().FindJournalByID(ctx, journalID)
}

func (s *Store) ListJournals(ctx context.Context, filter domain.JournalFilter) ([]domain.Journal, error) {
	return s.snapshot().ListJournals(ctx, filter)
}

func (s *Store) ListPostedLines(ctx context.Context, filter domain.LineFilter) ([]domain.PostedLine, error) {
	return s.snapshot().ListPostedLines(ctx, filter)
}

func (s *Store) CountJournalsByPeriod(ctx context.Context) (map[string]int, error) {
	return s.snapshot().CountJournalsByPeriod(ctx)
}

// Provider resolves the in-memory store of each registered company.
type Provider struct {
	mu     sync.RWMutex
	stores map[string]*Store
}

var _ portsrepo.TenantProvider = (*Provider)(nil)

// NewProvider creates a provider serving stores.
func NewProvider(stores ...*Store) *Provider {
	p := &Provider{stores: make(map[string]*Store, len(stores))}
	for _, s := range stores {
		p.Register(s)
	}
	return p
}

// Register adds or replaces the store of its company.
func (p *Provider) Register(s *Store) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stores[s.CompanyID()] = s
}

// ForCompany implements portsrepo.TenantProvider.
func (p *Provider) ForCompany(_ context.Context, companyID string) (portsrepo.TenantStore, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s, ok := p.stores[companyID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrCompanyNotFound, companyID)
	}
	return s, nil
}

package services_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
)

// --- Mock TenantStore ---
// WithTx hands the mock itself to the callback, so expectations cover reads and writes alike.
type MockTenantStore struct {
	mock.Mock
}

var (
	_ portsrepo.TenantStore = (*MockTenantStore)(nil)
	_ portsrepo.LedgerTx    = (*MockTenantStore)(nil)
)

func (m *MockTenantStore) CompanyID() string {
	return "company-under-test"
}

func (m *MockTenantStore) WithTx(ctx context.Context, fn portsrepo.TxFunc) error {
	return fn(ctx, m)
}

func (m *MockTenantStore) GetCompany(ctx context.Context) (*domain.Company, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Company), args.Error(1)
}

func (m *MockTenantStore) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockTenantStore) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockTenantStore) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockTenantStore) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockTenantStore) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockTenantStore) FindPeriodByID(ctx context.Context, periodID string) (*domain.AccountingPeriod, error) {
	args := m.Called(ctx, periodID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountingPeriod), args.Error(1)
}

func (m *MockTenantStore) FindPeriodByIDForUpdate(ctx context.Context, periodID string) (*domain.AccountingPeriod, error) {
	args := m.Called(ctx, periodID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountingPeriod), args.Error(1)
}

func (m *MockTenantStore) FindPeriodByDate(ctx context.Context, date time.Time) (*domain.AccountingPeriod, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountingPeriod), args.Error(1)
}

func (m *MockTenantStore) ListPeriods(ctx context.Context) ([]domain.AccountingPeriod, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AccountingPeriod), args.Error(1)
}

func (m *MockTenantStore) SavePeriod(ctx context.Context, period domain.AccountingPeriod) error {
	return m.Called(ctx, period).Error(0)
}

func (m *MockTenantStore) UpdatePeriodStatus(ctx context.Context, periodID string, status domain.PeriodStatus, closedBy *string, closedAt *time.Time) error {
	return m.Called(ctx, periodID, status, closedBy, closedAt).Error(0)
}

func (m *MockTenantStore) DeletePeriod(ctx context.Context, periodID string) error {
	return m.Called(ctx, periodID).Error(0)
}

func (m *MockTenantStore) FindJournalByID(ctx context.Context, journalID string) (*domain.Journal, error) {
	args := m.Called(ctx, journalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Journal), args.Error(1)
}

func (m *MockTenantStore) FindJournalByIDForUpdate(ctx context.Context, journalID string) (*domain.Journal, error) {
	args := m.Called(ctx, journalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Journal), args.Error(1)
}

func (m *MockTenantStore) ListJournals(ctx context.Context, filter domain.JournalFilter) ([]domain.Journal, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Journal), args.Error(1)
}

func (m *MockTenantStore) ListPostedLines(ctx context.Context, filter domain.LineFilter) ([]domain.PostedLine, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PostedLine), args.Error(1)
}

func (m *MockTenantStore) CountJournalsByPeriod(ctx context.Context) (map[string]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

func (m *MockTenantStore) LockJournalNumbering(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockTenantStore) LastJournalNumber(ctx context.Context) (string, bool, error) {
	args := m.Called(ctx)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockTenantStore) SaveJournal(ctx context.Context, journal domain.Journal) error {
	return m.Called(ctx, journal).Error(0)
}

func (m *MockTenantStore) MarkJournalReversed(ctx context.Context, journalID, reversedByID, updatedBy string, updatedAt time.Time) error {
	return m.Called(ctx, journalID, reversedByID, updatedBy, updatedAt).Error(0)
}

package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/core/services"
	"github.com/SscSPs/ledger_engine/internal/platform/metrics"
)

// JournalPostingMockSuite drives the poster against a mocked store to cover storage failures.
type JournalPostingMockSuite struct {
	suite.Suite
	store   *MockTenantStore
	service *services.JournalService
	ctx     context.Context

	user    domain.User
	period  domain.AccountingPeriod
	cash    domain.Account
	revenue domain.Account
	valid   domain.JournalCandidate
}

func TestJournalPostingMockSuite(t *testing.T) {
	suite.Run(t, new(JournalPostingMockSuite))
}

func (s *JournalPostingMockSuite) SetupTest() {
	s.store = new(MockTenantStore)
	s.service = services.NewJournalService(services.WithClock(func() time.Time { return day(2024, time.March, 3) }))
	s.ctx = context.Background()

	s.user = domain.User{UserID: "user-1", Email: "user@test"}
	s.period = domain.AccountingPeriod{PeriodID: "p-1", Name: "March", StartDate: day(2024, time.March, 1), EndDate: day(2024, time.March, 31), Status: domain.PeriodOpen}
	s.cash = domain.Account{AccountID: "acc-cash", Code: "1100", Category: domain.Asset, Postable: true}
	s.revenue = domain.Account{AccountID: "acc-rev", Code: "4000", Category: domain.Revenue, Postable: true}
	s.valid = candidate(day(2024, time.March, 3), "Sale", debit(s.cash.AccountID, "10"), credit(s.revenue.AccountID, "10"))
}

// expectValidated sets up every read the poster performs before numbering.
func (s *JournalPostingMockSuite) expectValidated() {
	s.store.On("FindUserByID", mock.Anything, s.user.UserID).Return(&s.user, nil).Once()
	s.store.On("GetCompany", mock.Anything).Return(&domain.Company{CompanyID: "company-under-test"}, nil).Once()
	s.store.On("FindPeriodByDate", mock.Anything, s.valid.Date).Return(&s.period, nil).Once()
	s.store.On("FindAccountsByIDs", mock.Anything, []string{s.cash.AccountID, s.revenue.AccountID}).
		Return(map[string]domain.Account{s.cash.AccountID: s.cash, s.revenue.AccountID: s.revenue}, nil).Once()
}

func (s *JournalPostingMockSuite) post() (*domain.Journal, error) {
	return s.service.PostJournal(s.ctx, s.store, s.valid, domain.Actor{UserID: s.user.UserID})
}

func (s *JournalPostingMockSuite) TestNextNumberFollowsLast() {
	s.expectValidated()
	s.store.On("LockJournalNumbering", mock.Anything).Return(nil).Once()
	s.store.On("LastJournalNumber", mock.Anything).Return("JV000041", true, nil).Once()
	s.store.On("SaveJournal", mock.Anything, mock.MatchedBy(func(j domain.Journal) bool {
		return j.Number == "JV000042" && j.PeriodID == s.period.PeriodID && len(j.Lines) == 2
	})).Return(nil).Once()

	j, err := s.post()

	s.Require().NoError(err)
	s.Equal("JV000042", j.Number)
	s.store.AssertExpectations(s.T())
}

func (s *JournalPostingMockSuite) TestNumberingPastSixDigits() {
	s.expectValidated()
	s.store.On("LockJournalNumbering", mock.Anything).Return(nil).Once()
	s.store.On("LastJournalNumber", mock.Anything).Return("JV999999", true, nil).Once()
	s.store.On("SaveJournal", mock.Anything, mock.Anything).Return(nil).Once()

	j, err := s.post()

	s.Require().NoError(err)
	s.Equal("JV1000000", j.Number)
}

func (s *JournalPostingMockSuite) TestCorruptLastNumber() {
	s.expectValidated()
	s.store.On("LockJournalNumbering", mock.Anything).Return(nil).Once()
	s.store.On("LastJournalNumber", mock.Anything).Return("IMPORTED-7", true, nil).Once()

	_, err := s.post()

	s.ErrorIs(err, apperrors.ErrInternal)
	s.store.AssertNotCalled(s.T(), "SaveJournal", mock.Anything, mock.Anything)
}

func (s *JournalPostingMockSuite) TestLockFailure() {
	s.expectValidated()
	s.store.On("LockJournalNumbering", mock.Anything).Return(assert.AnError).Once()

	_, err := s.post()

	s.Require().Error(err)
	s.ErrorIs(err, assert.AnError)
	s.store.AssertNotCalled(s.T(), "LastJournalNumber", mock.Anything)
	s.store.AssertNotCalled(s.T(), "SaveJournal", mock.Anything, mock.Anything)
}

func (s *JournalPostingMockSuite) TestSaveConflictIsReported() {
	s.expectValidated()
	s.store.On("LockJournalNumbering", mock.Anything).Return(nil).Once()
	s.store.On("LastJournalNumber", mock.Anything).Return("", false, nil).Once()
	s.store.On("SaveJournal", mock.Anything, mock.Anything).Return(apperrors.ErrConflict).Once()

	_, err := s.post()

	s.ErrorIs(err, apperrors.ErrConflict)
}

func (s *JournalPostingMockSuite) TestAccountLookupFailure() {
	s.store.On("FindUserByID", mock.Anything, s.user.UserID).Return(&s.user, nil).Once()
	s.store.On("GetCompany", mock.Anything).Return(&domain.Company{}, nil).Once()
	s.store.On("FindPeriodByDate", mock.Anything, mock.Anything).Return(&s.period, nil).Once()
	s.store.On("FindAccountsByIDs", mock.Anything, mock.Anything).Return(nil, assert.AnError).Once()

	_, err := s.post()

	s.Require().Error(err)
	s.Contains(err.Error(), assert.AnError.Error())
	s.store.AssertNotCalled(s.T(), "LockJournalNumbering", mock.Anything)
}

func (s *JournalPostingMockSuite) TestUnknownCompany() {
	s.store.On("GetCompany", mock.Anything).Return(nil, apperrors.ErrCompanyNotFound).Once()

	_, err := s.post()

	s.ErrorIs(err, apperrors.ErrCompanyNotFound)
	s.store.AssertNotCalled(s.T(), "FindUserByID", mock.Anything, mock.Anything)
	s.store.AssertNotCalled(s.T(), "FindUserByEmail", mock.Anything, mock.Anything)
	s.store.AssertNotCalled(s.T(), "FindPeriodByDate", mock.Anything, mock.Anything)
}

func (s *JournalPostingMockSuite) TestUnknownActorAfterCompany() {
	s.store.On("GetCompany", mock.Anything).Return(&domain.Company{CompanyID: "company-under-test"}, nil).Once()
	s.store.On("FindUserByID", mock.Anything, s.user.UserID).Return(nil, apperrors.ErrUserNotFound).Once()

	_, err := s.post()

	s.ErrorIs(err, apperrors.ErrUserNotFound)
	s.store.AssertNotCalled(s.T(), "FindPeriodByDate", mock.Anything, mock.Anything)
}

func (s *JournalPostingMockSuite) TestFailedSaveCountsNoLines() {
	before := testutil.ToFloat64(metrics.JournalLinesPosted)
	s.expectValidated()
	s.store.On("LockJournalNumbering", mock.Anything).Return(nil).Once()
	s.store.On("LastJournalNumber", mock.Anything).Return("", false, nil).Once()
	s.store.On("SaveJournal", mock.Anything, mock.Anything).Return(assert.AnError).Once()

	_, err := s.post()

	s.Require().Error(err)
	s.Equal(before, testutil.ToFloat64(metrics.JournalLinesPosted))
}

func (s *JournalPostingMockSuite) TestCommittedPostCountsLines() {
	before := testutil.ToFloat64(metrics.JournalLinesPosted)
	s.expectValidated()
	s.store.On("LockJournalNumbering", mock.Anything).Return(nil).Once()
	s.store.On("LastJournalNumber", mock.Anything).Return("", false, nil).Once()
	s.store.On("SaveJournal", mock.Anything, mock.Anything).Return(nil).Once()

	_, err := s.post()

	s.Require().NoError(err)
	s.Equal(before+2, testutil.ToFloat64(metrics.JournalLinesPosted))
}

func (s *JournalPostingMockSuite) TestReportReadFailurePropagates() {
	s.store.On("FindPeriodByID", mock.Anything, s.period.PeriodID).Return(&s.period, nil).Once()
	s.store.On("ListAccounts", mock.Anything).Return([]domain.Account{s.cash, s.revenue}, nil).Once()
	s.store.On("ListPostedLines", mock.Anything, mock.Anything).Return(nil, assert.AnError).Once()

	reports := services.NewReportService(services.NewLedgerService())
	_, err := reports.ProfitAndLoss(s.ctx, s.store, s.period.PeriodID)

	s.ErrorIs(err, assert.AnError)
}

func (s *JournalPostingMockSuite) TestSharedReportOutlivesCancelledCaller() {
	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)

	s.store.On("FindPeriodByID", mock.Anything, s.period.PeriodID).Run(func(mock.Arguments) {
		close(started)
		<-release
	}).Return(&s.period, nil).Once()
	s.store.On("ListAccounts", mock.Anything).Return([]domain.Account{s.cash, s.revenue}, nil).Once()
	s.store.On("ListPostedLines", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		done <- args.Get(0).(context.Context).Err()
	}).Return([]domain.PostedLine{}, nil).Once()

	reports := services.NewReportService(services.NewLedgerService())
	ctx, cancel := context.WithCancel(s.ctx)
	errs := make(chan error, 1)
	go func() {
		_, err := reports.ProfitAndLoss(ctx, s.store, s.period.PeriodID)
		errs <- err
	}()

	<-started
	cancel()
	s.ErrorIs(<-errs, context.Canceled)

	close(release)
	s.NoError(<-done, "queries issued after the caller left must not see its cancellation")
}

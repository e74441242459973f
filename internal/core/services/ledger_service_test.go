package services_test

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/core/services"
)

type LedgerServiceTestSuite struct {
	suite.Suite
	f        *ledgerFixture
	journals *services.JournalService
	service  *services.LedgerService
	ctx      context.Context
}

func (s *LedgerServiceTestSuite) SetupTest() {
	s.f = newLedgerFixture()
	s.journals = services.NewJournalService(services.WithClock(s.f.clock))
	s.service = services.NewLedgerService(services.WithClock(s.f.clock))
	s.ctx = context.Background()
	s.f.seedJanuary(s.T(), s.journals)
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}

func (s *LedgerServiceTestSuite) TestAccountBalance_NormalSides() {
	tests := []struct {
		account domain.Account
		balance string
		side    domain.Side
	}{
		{s.f.bank, "47000000", domain.Debit},
		{s.f.cash, "4000000", domain.Debit},
		{s.f.payable, "2500000", domain.Credit},
		{s.f.capital, "50000000", domain.Credit},
		{s.f.sales, "10000000", domain.Credit},
		{s.f.rent, "3000000", domain.Debit},
	}
	for _, tt := range tests {
		s.Run(tt.account.Name, func() {
			b, err := s.service.AccountBalance(s.ctx, s.f.store, tt.account.AccountID, nil)
			s.Require().NoError(err)
			s.True(b.Balance.Equal(dec(tt.balance)), "got %s", b.Balance)
			s.Equal(tt.side, b.Side)
			s.Equal(tt.account.Category, b.Category)
			s.True(b.Net().IsPositive())
		})
	}
}

func (s *LedgerServiceTestSuite) TestAccountBalance_AsOfCutoff() {
	asOf := day(2024, time.January, 11)
	b, err := s.service.AccountBalance(s.ctx, s.f.store, s.f.sales.AccountID, &asOf)

	s.Require().NoError(err)
	s.True(b.Balance.Equal(dec("6000000")))
	s.Equal(1, b.LineCount)
}

func (s *LedgerServiceTestSuite) TestAccountBalance_OverdrawnFlipsSide() {
	_, err := s.journals.PostJournal(s.ctx, s.f.store, candidate(day(2024, time.February, 2), "Overdraw cash",
		debit(s.f.rent.AccountID, "4500000"), credit(s.f.cash.AccountID, "4500000")), s.f.actor)
	s.Require().NoError(err)

	b, err := s.service.AccountBalance(s.ctx, s.f.store, s.f.cash.AccountID, nil)

	s.Require().NoError(err)
	s.True(b.Balance.Equal(dec("500000")))
	s.Equal(domain.Credit, b.Side)
	s.True(b.Net().Equal(dec("-500000")))
}

func (s *LedgerServiceTestSuite) TestAccountBalance_NoActivity() {
	b, err := s.service.AccountBalance(s.ctx, s.f.store, s.f.serviceIncome.AccountID, nil)

	s.Require().NoError(err)
	s.True(b.Balance.IsZero())
	s.Equal(domain.Credit, b.Side)
	s.Zero(b.LineCount)
}

func (s *LedgerServiceTestSuite) TestAccountBalance_UnknownAccount() {
	_, err := s.service.AccountBalance(s.ctx, s.f.store, uuid.NewString(), nil)
	s.ErrorIs(err, apperrors.ErrAccountNotFound)
}

func (s *LedgerServiceTestSuite) TestAccountTransactions_RunningBalance() {
	entries, err := s.service.AccountTransactions(s.ctx, s.f.store, s.f.bank.AccountID, nil, nil)
	s.Require().NoError(err)

	got := slices.Collect(entries)
	s.Require().Len(got, 2)
	s.Equal("JV000001", got[0].JournalNumber)
	s.True(got[0].RunningBalance.Equal(dec("50000000")))
	s.Equal("JV000004", got[1].JournalNumber)
	s.True(got[1].RunningBalance.Equal(dec("47000000")))
	s.Equal(domain.Debit, got[1].RunningSide)
}

func (s *LedgerServiceTestSuite) TestAccountTransactions_WindowKeepsOpeningBalance() {
	from := day(2024, time.January, 3)
	entries, err := s.service.AccountTransactions(s.ctx, s.f.store, s.f.bank.AccountID, &from, nil)
	s.Require().NoError(err)

	got := slices.Collect(entries)
	s.Require().Len(got, 1)
	s.Equal("January rent", got[0].Description)
	s.True(got[0].RunningBalance.Equal(dec("47000000")), "running balance folds history before the window")

	// The sequence can be ranged more than once.
	s.Len(slices.Collect(entries), 1)
}

func (s *LedgerServiceTestSuite) TestAccountTransactions_EarlyStop() {
	entries, err := s.service.AccountTransactions(s.ctx, s.f.store, s.f.sales.AccountID, nil, nil)
	s.Require().NoError(err)

	count := 0
	for range entries {
		count++
		break
	}
	s.Equal(1, count)
}

func (s *LedgerServiceTestSuite) TestAllAccountBalances_Balanced() {
	all, err := s.service.AllAccountBalances(s.ctx, s.f.store, nil)

	s.Require().NoError(err)
	s.True(all.IsBalanced)
	s.True(all.TotalDebit.Equal(all.TotalCredit))
	s.True(all.TotalDebit.Equal(dec("62500000")))
	s.Len(all.Balances, 8, "only accounts with lines")
	codes := make([]string, 0, len(all.Balances))
	for _, b := range all.Balances {
		codes = append(codes, b.Code)
	}
	s.True(slices.IsSorted(codes))
}

func (s *LedgerServiceTestSuite) TestAccountActivity() {
	_, err := s.journals.PostJournal(s.ctx, s.f.store, candidate(day(2024, time.February, 5), "Deposit cash",
		debit(s.f.bank.AccountID, "1000000"), credit(s.f.cash.AccountID, "1000000")), s.f.actor)
	s.Require().NoError(err)

	activity, err := s.service.AccountActivity(s.ctx, s.f.store, s.f.bank.AccountID, s.f.february.PeriodID)

	s.Require().NoError(err)
	s.True(activity.OpeningBalance.Balance.Equal(dec("47000000")))
	s.True(activity.PeriodDebit.Equal(dec("1000000")))
	s.True(activity.PeriodCredit.IsZero())
	s.True(activity.ClosingBalance.Balance.Equal(dec("48000000")))
	s.Equal(s.f.february.PeriodID, activity.Period.PeriodID)
}

func TestComputeBalance_OrderIndependent(t *testing.T) {
	account := domain.Account{AccountID: "a", Code: "1100", Name: "Cash", Category: domain.Asset}
	lines := []domain.PostedLine{
		{JournalLine: domain.JournalLine{AccountID: "a", Debit: dec("100.10"), Credit: dec("0")}, JournalNumber: "JV000001", JournalDate: day(2024, 1, 1)},
		{JournalLine: domain.JournalLine{AccountID: "a", Debit: dec("0"), Credit: dec("40.05")}, JournalNumber: "JV000002", JournalDate: day(2024, 1, 2)},
		{JournalLine: domain.JournalLine{AccountID: "a", Debit: dec("0.01"), Credit: dec("0")}, JournalNumber: "JV000003", JournalDate: day(2024, 1, 3)},
	}
	forward := services.ComputeBalance(account, lines)
	reversed := slices.Clone(lines)
	slices.Reverse(reversed)
	backward := services.ComputeBalance(account, reversed)

	require.True(t, forward.Balance.Equal(dec("60.06")))
	assert.True(t, forward.Balance.Equal(backward.Balance))
	assert.Equal(t, forward.Side, backward.Side)
	assert.Equal(t, 3, forward.LineCount)
}

func TestRunningBalance_SortsChronologically(t *testing.T) {
	lines := []domain.PostedLine{
		{JournalLine: domain.JournalLine{Debit: dec("5"), Credit: dec("0"), Seq: 1}, JournalNumber: "JV000010", JournalDate: day(2024, 1, 2)},
		{JournalLine: domain.JournalLine{Debit: dec("0"), Credit: dec("2"), Seq: 1}, JournalNumber: "JV000002", JournalDate: day(2024, 1, 2)},
		{JournalLine: domain.JournalLine{Debit: dec("1"), Credit: dec("0"), Seq: 1}, JournalNumber: "JV000011", JournalDate: day(2024, 1, 1)},
	}
	to := day(2024, 1, 2)

	var numbers, running []string
	for e := range services.RunningBalance(domain.Asset, lines, nil, &to) {
		numbers = append(numbers, e.JournalNumber)
		running = append(running, e.RunningBalance.String())
	}

	assert.Equal(t, []string{"JV000011", "JV000002", "JV000010"}, numbers)
	assert.Equal(t, []string{"1", "1", "4"}, running)
}

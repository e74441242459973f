package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/core/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/SscSPs/ledger_engine/internal/handlers"
	"github.com/SscSPs/ledger_engine/internal/platform/config"
	"github.com/SscSPs/ledger_engine/internal/repositories/database/memory"
	"github.com/SscSPs/ledger_engine/internal/utils"
)

const testJWTSecret = "test-secret-for-handlers"

type HandlersTestSuite struct {
	suite.Suite
	router *gin.Engine
	store  *memory.Store
	other  *memory.Store
	user   domain.User

	january, february          domain.AccountingPeriod
	bank, capital, sales, rent domain.Account
	retained                   domain.Account
}

func (s *HandlersTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	s.Require().NoError(handlers.RegisterValidators())
}

func (s *HandlersTestSuite) SetupTest() {
	now := time.Date(2024, time.February, 15, 9, 0, 0, 0, time.UTC)

	s.store = memory.New(domain.Company{CompanyID: uuid.NewString(), Name: "Acme Trading"})
	s.other = memory.New(domain.Company{CompanyID: uuid.NewString(), Name: "Other Co"})

	s.user = domain.User{UserID: uuid.NewString(), Email: "owner@acme.test", Name: "Owner"}
	s.store.AddUser(s.user)
	// Same person, known to the other tenant under its own id.
	s.other.AddUser(domain.User{UserID: uuid.NewString(), Email: s.user.Email, Name: "Owner"})

	account := func(code, name string, category domain.AccountCategory) domain.Account {
		a := domain.Account{AccountID: uuid.NewString(), Code: code, Name: name, Category: category, Postable: true}
		s.store.AddAccount(a)
		return a
	}
	s.bank = account("1200", "Bank", domain.Asset)
	s.capital = account("3000", "Owner Capital", domain.Equity)
	s.retained = account("3100", "Retained Earnings", domain.Equity)
	s.sales = account("4000", "Sales", domain.Revenue)
	s.rent = account("5000", "Rent Expense", domain.Expense)

	period := func(name string, start, end time.Time) domain.AccountingPeriod {
		p := domain.AccountingPeriod{PeriodID: uuid.NewString(), Name: name, StartDate: start, EndDate: end, Status: domain.PeriodOpen}
		s.store.AddPeriod(p)
		return p
	}
	s.january = period("January 2024", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC))
	s.february = period("February 2024", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC))
	s.other.AddPeriod(domain.AccountingPeriod{PeriodID: uuid.NewString(), Name: "2024", StartDate: s.january.StartDate,
		EndDate: time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), Status: domain.PeriodOpen})

	container := services.NewServiceContainer(services.WithClock(func() time.Time { return now }))
	cfg := &config.Config{JWTSecret: testJWTSecret}

	s.router = gin.New()
	handlers.RegisterRoutes(s.router, cfg, container, memory.NewProvider(s.store, s.other), nil)
}

func TestHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}

// generateTestToken signs a token for userID, optionally restricted to companies.
func generateTestToken(userID string, companies ...string) string {
	actor := domain.Actor{UserID: userID, Email: "owner@acme.test"}
	token, err := utils.GenerateActorToken(actor, companies, testJWTSecret, time.Hour, "ledger-tests")
	if err != nil {
		panic(err)
	}
	return token
}

func (s *HandlersTestSuite) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, path, reader)
	s.Require().NoError(err)
	req.RequestURI = path
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *HandlersTestSuite) url(format string, args ...any) string {
	return fmt.Sprintf("/api/v1/companies/%s", s.store.CompanyID()) + fmt.Sprintf(format, args...)
}

func (s *HandlersTestSuite) journalRequest(date, description, debitAccount, creditAccount, amount string) dto.CreateJournalRequest {
	return dto.CreateJournalRequest{
		Date:        date,
		Description: description,
		Lines: []dto.CreateJournalLineRequest{
			{AccountID: debitAccount, Debit: decimal.RequireFromString(amount)},
			{AccountID: creditAccount, Credit: decimal.RequireFromString(amount)},
		},
	}
}

func (s *HandlersTestSuite) post(date, description, debitAccount, creditAccount, amount string) domain.Journal {
	w := s.do(http.MethodPost, s.url("/journals"), s.journalRequest(date, description, debitAccount, creditAccount, amount), generateTestToken(s.user.UserID))
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var journal domain.Journal
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &journal))
	return journal
}

func (s *HandlersTestSuite) TestHealth() {
	w := s.do(http.MethodGet, "/health", nil, "")
	s.Equal(http.StatusOK, w.Code)
	s.Equal("OK", w.Body.String())
}

func (s *HandlersTestSuite) TestPostJournal_Success() {
	journal := s.post("2024-01-05", "Capital injection", s.bank.AccountID, s.capital.AccountID, "50000000")

	s.Equal("JV000001", journal.Number)
	s.Equal(s.january.PeriodID, journal.PeriodID)
	s.Len(journal.Lines, 2)
	s.Equal(s.user.UserID, journal.CreatedBy)
}

func (s *HandlersTestSuite) TestPostJournal_Unbalanced() {
	req := s.journalRequest("2024-01-05", "Typo", s.bank.AccountID, s.capital.AccountID, "100")
	req.Lines[1].Credit = decimal.RequireFromString("90")

	w := s.do(http.MethodPost, s.url("/journals"), req, generateTestToken(s.user.UserID))

	s.Equal(http.StatusUnprocessableEntity, w.Code)
	s.Contains(w.Body.String(), "do not balance")
}

func (s *HandlersTestSuite) TestPostJournal_BadRequests() {
	token := generateTestToken(s.user.UserID)
	negative := s.journalRequest("2024-01-05", "Negative", s.bank.AccountID, s.capital.AccountID, "100")
	negative.Lines[0].Debit = decimal.RequireFromString("-100")
	badDate := s.journalRequest("05/01/2024", "Bad date", s.bank.AccountID, s.capital.AccountID, "100")
	noLines := dto.CreateJournalRequest{Date: "2024-01-05", Description: "Empty"}

	for name, body := range map[string]any{"negative amount": negative, "bad date": badDate, "no lines": noLines} {
		s.Run(name, func() {
			w := s.do(http.MethodPost, s.url("/journals"), body, token)
			s.Equal(http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func (s *HandlersTestSuite) TestPostJournal_NoPeriod() {
	w := s.do(http.MethodPost, s.url("/journals"),
		s.journalRequest("2023-12-31", "Last year", s.bank.AccountID, s.capital.AccountID, "100"),
		generateTestToken(s.user.UserID))

	s.Equal(http.StatusUnprocessableEntity, w.Code)
}

func (s *HandlersTestSuite) TestAuthAndTenancy() {
	body := s.journalRequest("2024-01-05", "Capital", s.bank.AccountID, s.capital.AccountID, "100")

	s.Run("missing token", func() {
		w := s.do(http.MethodPost, s.url("/journals"), body, "")
		s.Equal(http.StatusUnauthorized, w.Code)
	})
	s.Run("bad signature", func() {
		w := s.do(http.MethodPost, s.url("/journals"), body, generateTestToken(s.user.UserID)+"x")
		s.Equal(http.StatusUnauthorized, w.Code)
	})
	s.Run("token for another company", func() {
		w := s.do(http.MethodPost, s.url("/journals"), body, generateTestToken(s.user.UserID, s.other.CompanyID()))
		s.Equal(http.StatusForbidden, w.Code)
	})
	s.Run("unknown company", func() {
		w := s.do(http.MethodGet, "/api/v1/companies/"+uuid.NewString()+"/periods", nil, generateTestToken(s.user.UserID))
		s.Equal(http.StatusNotFound, w.Code)
	})
	s.Run("accounts of another tenant", func() {
		path := fmt.Sprintf("/api/v1/companies/%s/journals", s.other.CompanyID())
		w := s.do(http.MethodPost, path, body, generateTestToken(s.user.UserID))
		s.Equal(http.StatusUnprocessableEntity, w.Code, w.Body.String())
	})
}

func (s *HandlersTestSuite) TestGetJournal() {
	journal := s.post("2024-01-05", "Capital", s.bank.AccountID, s.capital.AccountID, "100")
	token := generateTestToken(s.user.UserID)

	w := s.do(http.MethodGet, s.url("/journals/%s", journal.JournalID), nil, token)
	s.Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodGet, s.url("/journals/%s", uuid.NewString()), nil, token)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *HandlersTestSuite) TestListJournals_Pagination() {
	for i := 1; i <= 5; i++ {
		s.post(fmt.Sprintf("2024-01-%02d", i), fmt.Sprintf("Sale %d", i), s.bank.AccountID, s.sales.AccountID, "1000")
	}
	token := generateTestToken(s.user.UserID)

	var numbers []string
	next := ""
	for pages := 0; pages < 5; pages++ {
		path := s.url("/journals?limit=2")
		if next != "" {
			path += "&nextToken=" + next
		}
		w := s.do(http.MethodGet, path, nil, token)
		s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

		var page dto.ListJournalsResponse
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &page))
		for _, j := range page.Journals {
			numbers = append(numbers, j.Number)
		}
		if page.NextToken == nil {
			break
		}
		next = *page.NextToken
	}

	s.Equal([]string{"JV000001", "JV000002", "JV000003", "JV000004", "JV000005"}, numbers)

	w := s.do(http.MethodGet, s.url("/journals?nextToken=garbage"), nil, token)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlersTestSuite) TestReverseJournal() {
	journal := s.post("2024-02-05", "Invoice", s.bank.AccountID, s.sales.AccountID, "2500")
	token := generateTestToken(s.user.UserID)

	w := s.do(http.MethodPost, s.url("/journals/%s/reverse", journal.JournalID), nil, token)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var reversal domain.Journal
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &reversal))
	s.Equal("JV000002", reversal.Number)
	s.Require().NotNil(reversal.ReversalOfID)
	s.Equal(journal.JournalID, *reversal.ReversalOfID)

	w = s.do(http.MethodPost, s.url("/journals/%s/reverse", journal.JournalID), nil, token)
	s.Equal(http.StatusConflict, w.Code)

	w = s.do(http.MethodGet, s.url("/accounts/%s/balance", s.bank.AccountID), nil, token)
	s.Require().Equal(http.StatusOK, w.Code)
	var balance domain.AccountBalance
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &balance))
	s.True(balance.Balance.IsZero())
}

func (s *HandlersTestSuite) TestLedgerEndpoints() {
	s.post("2024-01-02", "Capital", s.bank.AccountID, s.capital.AccountID, "10000")
	s.post("2024-01-20", "Rent", s.rent.AccountID, s.bank.AccountID, "3000")
	s.post("2024-02-03", "Sale", s.bank.AccountID, s.sales.AccountID, "500")
	token := generateTestToken(s.user.UserID)

	s.Run("balance as of", func() {
		w := s.do(http.MethodGet, s.url("/accounts/%s/balance?asOf=2024-01-31", s.bank.AccountID), nil, token)
		s.Require().Equal(http.StatusOK, w.Code)
		var balance domain.AccountBalance
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &balance))
		s.Equal("7000", balance.Balance.String())
		s.Equal(domain.Debit, balance.Side)
	})
	s.Run("transactions window", func() {
		w := s.do(http.MethodGet, s.url("/accounts/%s/transactions?from=2024-01-15", s.bank.AccountID), nil, token)
		s.Require().Equal(http.StatusOK, w.Code)
		var resp dto.AccountTransactionsResponse
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
		s.Require().Len(resp.Entries, 2)
		s.Equal("7000", resp.Entries[0].RunningBalance.String())
		s.Equal("7500", resp.Entries[1].RunningBalance.String())
	})
	s.Run("activity requires period", func() {
		w := s.do(http.MethodGet, s.url("/accounts/%s/activity", s.bank.AccountID), nil, token)
		s.Equal(http.StatusBadRequest, w.Code)

		w = s.do(http.MethodGet, s.url("/accounts/%s/activity?periodId=%s", s.bank.AccountID, s.february.PeriodID), nil, token)
		s.Require().Equal(http.StatusOK, w.Code)
		var activity domain.AccountActivity
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &activity))
		s.Equal("7000", activity.OpeningBalance.Balance.String())
		s.Equal("7500", activity.ClosingBalance.Balance.String())
	})
	s.Run("all balances", func() {
		w := s.do(http.MethodGet, s.url("/balances"), nil, token)
		s.Require().Equal(http.StatusOK, w.Code)
		var balances domain.LedgerBalances
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &balances))
		s.True(balances.IsBalanced)
		s.Len(balances.Balances, 4)
	})
	s.Run("unknown account", func() {
		w := s.do(http.MethodGet, s.url("/accounts/%s/balance", uuid.NewString()), nil, token)
		s.Equal(http.StatusNotFound, w.Code)
	})
}

func (s *HandlersTestSuite) TestPeriods() {
	token := generateTestToken(s.user.UserID)

	w := s.do(http.MethodPost, s.url("/periods"), dto.CreatePeriodRequest{Name: "March 2024", StartDate: "2024-03-01", EndDate: "2024-03-31"}, token)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodPost, s.url("/periods"), dto.CreatePeriodRequest{Name: "Overlap", StartDate: "2024-03-15", EndDate: "2024-04-15"}, token)
	s.Equal(http.StatusConflict, w.Code)

	w = s.do(http.MethodGet, s.url("/periods"), nil, token)
	s.Require().Equal(http.StatusOK, w.Code)
	var periods []domain.PeriodSummary
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &periods))
	s.Len(periods, 3)

	w = s.do(http.MethodGet, s.url("/periods/current?date=2024-02-10"), nil, token)
	s.Require().Equal(http.StatusOK, w.Code)
	var current domain.AccountingPeriod
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &current))
	s.Equal(s.february.PeriodID, current.PeriodID)

	w = s.do(http.MethodGet, s.url("/periods/current?date=2025-06-01"), nil, token)
	s.Equal(http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, s.url("/periods/%s", s.january.PeriodID), nil, token)
	s.Equal(http.StatusOK, w.Code)
}

func (s *HandlersTestSuite) TestClosePeriodAndReports() {
	s.post("2024-01-02", "Capital", s.bank.AccountID, s.capital.AccountID, "10000")
	s.post("2024-01-10", "Sale", s.bank.AccountID, s.sales.AccountID, "4000")
	s.post("2024-01-20", "Rent", s.rent.AccountID, s.bank.AccountID, "1500")
	token := generateTestToken(s.user.UserID)

	w := s.do(http.MethodGet, s.url("/reports/profit-and-loss?periodId=%s", s.january.PeriodID), nil, token)
	s.Require().Equal(http.StatusOK, w.Code)
	var pnl domain.ProfitAndLoss
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &pnl))
	s.Equal("2500", pnl.NetIncome.String())
	s.Equal(domain.Profit, pnl.Result)

	w = s.do(http.MethodPost, s.url("/periods/%s/close", s.january.PeriodID), nil, token)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var result domain.CloseResult
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &result))
	s.Equal(domain.PeriodClosed, result.Period.Status)
	s.Equal(s.retained.AccountID, result.RetainedEarningsAccountID)
	s.Require().NotNil(result.Journal)
	s.True(result.Journal.Closing)

	w = s.do(http.MethodPost, s.url("/periods/%s/close", s.january.PeriodID), nil, token)
	s.Equal(http.StatusConflict, w.Code)

	w = s.do(http.MethodPost, s.url("/journals"),
		s.journalRequest("2024-01-25", "Late entry", s.rent.AccountID, s.bank.AccountID, "10"), token)
	s.Equal(http.StatusUnprocessableEntity, w.Code)

	w = s.do(http.MethodGet, s.url("/reports/trial-balance?periodId=%s", s.january.PeriodID), nil, token)
	s.Require().Equal(http.StatusOK, w.Code)
	var tb domain.TrialBalance
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &tb))
	s.True(tb.IsBalanced)

	w = s.do(http.MethodGet, s.url("/reports/balance-sheet?periodId=%s", s.january.PeriodID), nil, token)
	s.Require().Equal(http.StatusOK, w.Code)
	var bs domain.BalanceSheet
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &bs))
	s.True(bs.IsBalanced)
	s.Equal("12500", bs.TotalAssets.String())

	w = s.do(http.MethodGet, s.url("/reports/summary?periodId=%s", s.january.PeriodID), nil, token)
	s.Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodGet, s.url("/reports/summary"), nil, token)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlersTestSuite) TestListPeriods_YearFilterAndCounts() {
	s.post("2024-01-02", "Capital", s.bank.AccountID, s.capital.AccountID, "10000")
	s.post("2024-01-10", "Sale", s.bank.AccountID, s.sales.AccountID, "4000")
	s.store.AddPeriod(domain.AccountingPeriod{PeriodID: uuid.NewString(), Name: "December 2023", Status: domain.PeriodOpen,
		StartDate: time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC), EndDate: time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)})
	token := generateTestToken(s.user.UserID)

	w := s.do(http.MethodGet, s.url("/periods?year=2024"), nil, token)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var periods []domain.PeriodSummary
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &periods))
	s.Require().Len(periods, 2)
	s.Equal(s.january.PeriodID, periods[0].PeriodID)
	s.Equal(2, periods[0].JournalCount)
	s.Equal(0, periods[1].JournalCount)

	w = s.do(http.MethodGet, s.url("/periods?year=abc"), nil, token)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlersTestSuite) TestDeletePeriod() {
	s.post("2024-01-02", "Capital", s.bank.AccountID, s.capital.AccountID, "10000")
	token := generateTestToken(s.user.UserID)

	w := s.do(http.MethodDelete, s.url("/periods/%s", s.january.PeriodID), nil, token)
	s.Equal(http.StatusForbidden, w.Code, w.Body.String())
	s.Contains(w.Body.String(), "close it instead")

	w = s.do(http.MethodDelete, s.url("/periods/%s", s.february.PeriodID), nil, token)
	s.Equal(http.StatusNoContent, w.Code, w.Body.String())

	w = s.do(http.MethodGet, s.url("/periods/%s", s.february.PeriodID), nil, token)
	s.Equal(http.StatusNotFound, w.Code)
	w = s.do(http.MethodDelete, s.url("/periods/%s", s.february.PeriodID), nil, token)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *HandlersTestSuite) TestAnalytics() {
	s.post("2024-01-10", "Sale", s.bank.AccountID, s.sales.AccountID, "4000")
	s.post("2024-02-05", "Rent", s.rent.AccountID, s.bank.AccountID, "1500")
	token := generateTestToken(s.user.UserID)

	w := s.do(http.MethodGet, s.url("/reports/analytics"), nil, token)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var series []domain.PeriodAnalytics
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &series))
	s.Require().Len(series, 2)
	s.Equal("Jan", series[0].Month)
	s.Equal("4000", series[0].NetIncome.String())
	s.Equal("Feb", series[1].Month)
	s.Equal("1500", series[1].Expense.String())
	s.Equal("-1500", series[1].NetIncome.String())

	w = s.do(http.MethodGet, s.url("/reports/analytics?limit=1"), nil, token)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &series))
	s.Require().Len(series, 1)
	s.Equal(s.february.PeriodID, series[0].PeriodID)

	w = s.do(http.MethodGet, s.url("/reports/analytics?limit=0"), nil, token)
	s.Require().Equal(http.StatusOK, w.Code, "zero falls back to the default")
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &series))
	s.Len(series, 2)

	w = s.do(http.MethodGet, s.url("/reports/analytics?limit=-1"), nil, token)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlersTestSuite) TestSwaggerOutsideProduction() {
	w := s.do(http.MethodGet, "/swagger/doc.json", nil, "")
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "/companies/{company_id}/journals")
	s.Contains(w.Body.String(), `"basePath": "/api/v1"`)

	prod := gin.New()
	cfg := &config.Config{JWTSecret: testJWTSecret, IsProduction: true}
	handlers.RegisterRoutes(prod, cfg, services.NewServiceContainer(), memory.NewProvider(s.store), nil)
	req := httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil)
	rec := httptest.NewRecorder()
	prod.ServeHTTP(rec, req)
	s.Equal(http.StatusNotFound, rec.Code)
}

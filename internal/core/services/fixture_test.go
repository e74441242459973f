package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/core/services"
	"github.com/SscSPs/ledger_engine/internal/repositories/database/memory"
)

// ledgerFixture is a company with a small chart of accounts and two open periods (January and
// February 2024). The clock is fixed in February.
type ledgerFixture struct {
	store *memory.Store
	actor domain.Actor
	user  domain.User
	now   time.Time

	january  domain.AccountingPeriod
	february domain.AccountingPeriod

	cash, bank, receivable, header, locked domain.Account
	payable                                domain.Account
	capital, retained                      domain.Account
	sales, serviceIncome                   domain.Account
	rent, salaries                         domain.Account
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func debit(accountID, amount string) domain.LineCandidate {
	return domain.LineCandidate{AccountID: accountID, Debit: dec(amount), Credit: decimal.Zero}
}

func credit(accountID, amount string) domain.LineCandidate {
	return domain.LineCandidate{AccountID: accountID, Debit: decimal.Zero, Credit: dec(amount)}
}

func candidate(date time.Time, description string, lines ...domain.LineCandidate) domain.JournalCandidate {
	return domain.JournalCandidate{Date: date, Description: description, Lines: lines}
}

func newLedgerFixture() *ledgerFixture {
	f := &ledgerFixture{now: time.Date(2024, time.February, 15, 10, 30, 0, 0, time.UTC)}
	audit := domain.AuditFields{CreatedAt: f.now, CreatedBy: "seed", LastUpdatedAt: f.now, LastUpdatedBy: "seed"}

	company := domain.Company{CompanyID: uuid.NewString(), Name: "Acme Trading", AuditFields: audit}
	f.store = memory.New(company)

	f.user = domain.User{UserID: uuid.NewString(), Email: "owner@acme.test", Name: "Owner", AuditFields: audit}
	f.store.AddUser(f.user)
	f.actor = domain.Actor{UserID: f.user.UserID, Email: f.user.Email}

	account := func(code, name string, category domain.AccountCategory) domain.Account {
		return domain.Account{AccountID: uuid.NewString(), Code: code, Name: name, Category: category, Postable: true, AuditFields: audit}
	}
	f.header = account("1000", "Current Assets", domain.Asset)
	f.header.Postable = false
	f.cash = account("1100", "Cash on Hand", domain.Asset)
	f.bank = account("1200", "Bank BCA", domain.Asset)
	f.receivable = account("1300", "Accounts Receivable", domain.Asset)
	f.locked = account("1900", "Suspense", domain.Asset)
	f.locked.Locked = true
	f.payable = account("2100", "Accounts Payable", domain.Liability)
	f.capital = account("3000", "Owner Capital", domain.Equity)
	f.retained = account("3100", "Retained Earnings", domain.Equity)
	f.sales = account("4000", "Sales", domain.Revenue)
	f.serviceIncome = account("4100", "Service Income", domain.Revenue)
	f.rent = account("5000", "Rent Expense", domain.Expense)
	f.salaries = account("5100", "Salaries", domain.Expense)
	for _, a := range []domain.Account{
		f.header, f.cash, f.bank, f.receivable, f.locked, f.payable,
		f.capital, f.retained, f.sales, f.serviceIncome, f.rent, f.salaries,
	} {
		f.store.AddAccount(a)
	}

	f.january = f.addPeriod("January 2024", day(2024, time.January, 1), day(2024, time.January, 31))
	f.february = f.addPeriod("February 2024", day(2024, time.February, 1), day(2024, time.February, 29))
	return f
}

func (f *ledgerFixture) addPeriod(name string, start, end time.Time) domain.AccountingPeriod {
	p := domain.AccountingPeriod{
		PeriodID:  uuid.NewString(),
		Name:      name,
		StartDate: start,
		EndDate:   end,
		Status:    domain.PeriodOpen,
	}
	f.store.AddPeriod(p)
	return p
}

func (f *ledgerFixture) clock() time.Time {
	return f.now
}

// seedJanuary posts a typical month: capital injection, a sale on credit, a cash sale,
// rent and salaries. January net income is 10,000,000 - 3,000,000 - 2,500,000 = 4,500,000.
func (f *ledgerFixture) seedJanuary(t *testing.T, journals *services.JournalService) []*domain.Journal {
	t.Helper()
	ctx := context.Background()
	candidates := []domain.JournalCandidate{
		candidate(day(2024, time.January, 2), "Capital injection",
			debit(f.bank.AccountID, "50000000"), credit(f.capital.AccountID, "50000000")),
		candidate(day(2024, time.January, 10), "Invoice INV-001",
			debit(f.receivable.AccountID, "6000000"), credit(f.sales.AccountID, "6000000")),
		candidate(day(2024, time.January, 12), "Cash sale",
			debit(f.cash.AccountID, "4000000"), credit(f.sales.AccountID, "4000000")),
		candidate(day(2024, time.January, 15), "January rent",
			debit(f.rent.AccountID, "3000000"), credit(f.bank.AccountID, "3000000")),
		candidate(day(2024, time.January, 31), "January salaries",
			debit(f.salaries.AccountID, "2500000"), credit(f.payable.AccountID, "2500000")),
	}
	posted := make([]*domain.Journal, 0, len(candidates))
	for _, c := range candidates {
		j, err := journals.PostJournal(ctx, f.store, c, f.actor)
		require.NoError(t, err)
		posted = append(posted, j)
	}
	return posted
}

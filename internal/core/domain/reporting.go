package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TrialBalanceRow represents a single row in a trial balance report
type TrialBalanceRow struct {
	AccountID string          `json:"accountID"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
}

// TrialBalanceSection groups the rows of one account category.
type TrialBalanceSection struct {
	Category    AccountCategory   `json:"category"`
	Rows        []TrialBalanceRow `json:"rows"`
	TotalDebit  decimal.Decimal   `json:"totalDebit"`
	TotalCredit decimal.Decimal   `json:"totalCredit"`
}

// TrialBalance lists every account balance as of a date.
type TrialBalance struct {
	AsOf        time.Time             `json:"asOf"`
	PeriodID    *string               `json:"periodID,omitempty"`
	Sections    []TrialBalanceSection `json:"sections"`
	TotalDebit  decimal.Decimal       `json:"totalDebit"`
	TotalCredit decimal.Decimal       `json:"totalCredit"`
	IsBalanced  bool                  `json:"isBalanced"`
}

// AccountAmount represents an account with its net amount for financial reports
type AccountAmount struct {
	AccountID string          `json:"accountID"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
}

// IncomeResult labels the sign of net income.
type IncomeResult string

const (
	Profit IncomeResult = "PROFIT"
	Loss   IncomeResult = "LOSS"
)

// ProfitAndLoss represents a profit and loss report for one period.
type ProfitAndLoss struct {
	Period        AccountingPeriod `json:"period"`
	Revenue       []AccountAmount  `json:"revenue"`
	Expenses      []AccountAmount  `json:"expenses"`
	TotalRevenue  decimal.Decimal  `json:"totalRevenue"`
	TotalExpenses decimal.Decimal  `json:"totalExpenses"`
	NetIncome     decimal.Decimal  `json:"netIncome"`
	Result        IncomeResult     `json:"result"`
}

// BalanceSheet represents the accounting equation as of a period end.
type BalanceSheet struct {
	Period           AccountingPeriod `json:"period"`
	AsOf             time.Time        `json:"asOf"`
	Assets           []AccountAmount  `json:"assets"`
	Liabilities      []AccountAmount  `json:"liabilities"`
	Equity           []AccountAmount  `json:"equity"`
	CurrentEarnings  decimal.Decimal  `json:"currentEarnings"` // Not yet closed to retained earnings
	NetIncome        decimal.Decimal  `json:"netIncome"`       // From the period's P&L
	TotalAssets      decimal.Decimal  `json:"totalAssets"`
	TotalLiabilities decimal.Decimal  `json:"totalLiabilities"`
	TotalEquity      decimal.Decimal  `json:"totalEquity"` // Includes CurrentEarnings
	IsBalanced       bool             `json:"isBalanced"`
}

// FinancialSummary condenses the statements of a period into headline figures.
type FinancialSummary struct {
	Period           AccountingPeriod `json:"period"`
	TotalRevenue     decimal.Decimal  `json:"totalRevenue"`
	TotalExpenses    decimal.Decimal  `json:"totalExpenses"`
	NetIncome        decimal.Decimal  `json:"netIncome"`
	TotalAssets      decimal.Decimal  `json:"totalAssets"`
	TotalLiabilities decimal.Decimal  `json:"totalLiabilities"`
	TotalEquity      decimal.Decimal  `json:"totalEquity"`
	CashBalance      decimal.Decimal  `json:"cashBalance"`
	ProfitMargin     decimal.Decimal  `json:"profitMargin"` // Percent of revenue
	DebtToEquity     decimal.Decimal  `json:"debtToEquity"`
}

// PeriodAnalytics is one point of the income series over recent periods.
// NetIncome is signed: negative for a loss.
type PeriodAnalytics struct {
	PeriodID  string          `json:"periodID"`
	Period    string          `json:"period"`
	Month     string          `json:"month"`
	Revenue   decimal.Decimal `json:"revenue"`
	Expense   decimal.Decimal `json:"expense"`
	NetIncome decimal.Decimal `json:"netIncome"`
}

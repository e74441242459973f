package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountBalance is the position of one account as of a cutoff.
// Balance is always non-negative; Side says where it sits.
type AccountBalance struct {
	AccountID   string          `json:"accountID"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Category    AccountCategory `json:"category"`
	DebitTotal  decimal.Decimal `json:"debitTotal"`
	CreditTotal decimal.Decimal `json:"creditTotal"`
	Balance     decimal.Decimal `json:"balance"`
	Side        Side            `json:"side"`
	LineCount   int             `json:"lineCount"`
}

// Net returns the balance signed by the category's normal side:
// positive when the account sits on its natural side.
func (b AccountBalance) Net() decimal.Decimal {
	if b.Side == b.Category.NormalSide() {
		return b.Balance
	}
	return b.Balance.Neg()
}

// LedgerEntry is one line of an account's history with the running balance after it.
type LedgerEntry struct {
	JournalID      string          `json:"journalID"`
	JournalNumber  string          `json:"journalNumber"`
	LineID         string          `json:"lineID"`
	Date           time.Time       `json:"date"`
	Description    string          `json:"description"`
	Reference      *string         `json:"reference,omitempty"`
	Memo           string          `json:"memo,omitempty"`
	Debit          decimal.Decimal `json:"debit"`
	Credit         decimal.Decimal `json:"credit"`
	RunningBalance decimal.Decimal `json:"runningBalance"`
	RunningSide    Side            `json:"runningSide"`
}

// LedgerBalances holds the balances of every account with activity.
type LedgerBalances struct {
	AsOf        *time.Time       `json:"asOf,omitempty"`
	Balances    []AccountBalance `json:"balances"`
	TotalDebit  decimal.Decimal  `json:"totalDebit"`
	TotalCredit decimal.Decimal  `json:"totalCredit"`
	IsBalanced  bool             `json:"isBalanced"`
}

// AccountActivity summarizes one account's movement within a period.
type AccountActivity struct {
	Account        Account          `json:"account"`
	Period         AccountingPeriod `json:"period"`
	OpeningBalance AccountBalance   `json:"openingBalance"`
	PeriodDebit    decimal.Decimal  `json:"periodDebit"`
	PeriodCredit   decimal.Decimal  `json:"periodCredit"`
	ClosingBalance AccountBalance   `json:"closingBalance"`
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PeriodStatus is the posting state of an accounting period.
type PeriodStatus string

const (
	PeriodOpen   PeriodStatus = "OPEN"
	PeriodClosed PeriodStatus = "CLOSED"
)

// AccountingPeriod is a date range that receives the journals dated inside it.
// Periods of one tenant never overlap.
type AccountingPeriod struct {
	PeriodID  string       `json:"periodID"`
	Name      string       `json:"name"`
	StartDate time.Time    `json:"startDate"`
	EndDate   time.Time    `json:"endDate"`
	Status    PeriodStatus `json:"status"`
	ClosedAt  *time.Time   `json:"closedAt,omitempty"`
	ClosedBy  *string      `json:"closedBy,omitempty"`
	AuditFields
}

// Contains reports whether date falls inside [StartDate, EndDate], both ends inclusive.
func (p AccountingPeriod) Contains(date time.Time) bool {
	d := DateOnly(date)
	return !d.Before(DateOnly(p.StartDate)) && !d.After(DateOnly(p.EndDate))
}

// Overlaps reports whether the two periods share at least one day.
func (p AccountingPeriod) Overlaps(other AccountingPeriod) bool {
	return !DateOnly(p.StartDate).After(DateOnly(other.EndDate)) &&
		!DateOnly(other.StartDate).After(DateOnly(p.EndDate))
}

// IsClosed reports whether the period rejects postings.
func (p AccountingPeriod) IsClosed() bool {
	return p.Status == PeriodClosed
}

// CloseResult describes the outcome of closing a period.
type CloseResult struct {
	Period                    AccountingPeriod `json:"period"`
	Journal                   *Journal         `json:"journal,omitempty"` // nil when nothing needed closing
	NetIncome                 decimal.Decimal  `json:"netIncome"`
	RetainedEarningsAccountID string           `json:"retainedEarningsAccountID,omitempty"`
}

// PeriodSummary is a period together with the number of journals posted into it.
type PeriodSummary struct {
	AccountingPeriod
	JournalCount int `json:"journalCount"`
}

// PeriodFilter narrows a period listing. Year keeps the periods starting in that year.
type PeriodFilter struct {
	Year *int
}

// Matches reports whether p passes the filter.
func (f PeriodFilter) Matches(p AccountingPeriod) bool {
	return f.Year == nil || p.StartDate.Year() == *f.Year
}

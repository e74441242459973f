package dto

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

// DateFormat is the wire format of calendar dates.
const DateFormat = "2006-01-02"

// CreateJournalLineRequest is one line of a journal submitted for posting.
type CreateJournalLineRequest struct {
	AccountID string          `json:"accountID" binding:"required"`
	Debit     decimal.Decimal `json:"debit" binding:"decimal_nonneg"`
	Credit    decimal.Decimal `json:"credit" binding:"decimal_nonneg"`
	Memo      string          `json:"memo,omitempty" binding:"max=255"`
}

// CreateJournalRequest is the body of POST /journals.
type CreateJournalRequest struct {
	Date        string                     `json:"date" binding:"required,datetime=2006-01-02"`
	Description string                     `json:"description" binding:"required,max=500"`
	Reference   *string                    `json:"reference,omitempty" binding:"omitempty,max=100"`
	Lines       []CreateJournalLineRequest `json:"lines" binding:"required,dive"`
}

// ToCandidate converts the request into a journal candidate.
func (r CreateJournalRequest) ToCandidate() (domain.JournalCandidate, error) {
	date, err := time.Parse(DateFormat, r.Date)
	if err != nil {
		return domain.JournalCandidate{}, fmt.Errorf("invalid date %q: %w", r.Date, err)
	}
	lines := make([]domain.LineCandidate, len(r.Lines))
	for i, l := range r.Lines {
		lines[i] = domain.LineCandidate{AccountID: l.AccountID, Debit: l.Debit, Credit: l.Credit, Memo: l.Memo}
	}
	return domain.JournalCandidate{
		Date:        date,
		Description: r.Description,
		Reference:   r.Reference,
		Lines:       lines,
	}, nil
}

// ListJournalsParams defines query parameters for listing journals.
type ListJournalsParams struct {
	Limit     int     `form:"limit,default=20" binding:"min=1,max=100"`
	NextToken *string `form:"nextToken"`
	From      *string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To        *string `form:"to" binding:"omitempty,datetime=2006-01-02"`
	PeriodID  *string `form:"periodId"`
	AccountID *string `form:"accountId"`
	Reversed  *bool   `form:"reversed"`
	Search    string  `form:"search" binding:"max=100"`
}

// ListJournalsResponse is one page of journals.
type ListJournalsResponse struct {
	Journals  []domain.Journal `json:"journals"`
	NextToken *string          `json:"nextToken,omitempty"`
}

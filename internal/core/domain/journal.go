package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Side indicates whether an amount sits on the debit or the credit side.
type Side string

const (
	Debit  Side = "DEBIT"
	Credit Side = "CREDIT"
)

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == Debit {
		return Credit
	}
	return Debit
}

// JournalNumberPrefix prefixes every human-readable journal number.
const JournalNumberPrefix = "JV"

// FormatJournalNumber renders seq as JV followed by at least six zero-padded digits.
func FormatJournalNumber(seq int64) string {
	return fmt.Sprintf("%s%06d", JournalNumberPrefix, seq)
}

// ParseJournalNumber extracts the numeric suffix of a journal number.
func ParseJournalNumber(number string) (int64, error) {
	if !strings.HasPrefix(number, JournalNumberPrefix) {
		return 0, fmt.Errorf("journal number %q has no %s prefix", number, JournalNumberPrefix)
	}
	seq, err := strconv.ParseInt(strings.TrimPrefix(number, JournalNumberPrefix), 10, 64)
	if err != nil || seq < 0 {
		return 0, fmt.Errorf("journal number %q has no numeric suffix", number)
	}
	return seq, nil
}

// Journal is the atomic record of one balanced financial event.
// It is immutable once posted except for the Reversed/ReversedByID pair.
type Journal struct {
	JournalID    string        `json:"journalID"` // Primary Key (e.g., UUID)
	Number       string        `json:"number"`    // JV000001, monotonic per tenant
	Date         time.Time     `json:"date"`
	Description  string        `json:"description"`
	Reference    *string       `json:"reference,omitempty"`
	PeriodID     string        `json:"periodID"`
	Reversed     bool          `json:"reversed"`
	ReversedByID *string       `json:"reversedByID,omitempty"`
	ReversalOfID *string       `json:"reversalOfID,omitempty"` // Set on the reversing journal
	Closing      bool          `json:"closing"`                // Period-closing entry
	Lines        []JournalLine `json:"lines"`
	AuditFields
}

// Totals sums the debit and credit sides of all lines.
func (j Journal) Totals() (debit, credit decimal.Decimal) {
	return SumLines(j.Lines)
}

// JournalLine is a single line of a journal, affecting one account.
// Exactly one of Debit and Credit is positive.
type JournalLine struct {
	LineID    string          `json:"lineID"`
	JournalID string          `json:"journalID"`
	AccountID string          `json:"accountID"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
	Memo      string          `json:"memo,omitempty"`
	Seq       int             `json:"seq"`
}

// Side returns the side carrying the positive amount.
func (l JournalLine) Side() Side {
	if l.Debit.IsPositive() {
		return Debit
	}
	return Credit
}

// Amount returns the positive amount of the line.
func (l JournalLine) Amount() decimal.Decimal {
	if l.Debit.IsPositive() {
		return l.Debit
	}
	return l.Credit
}

// SumLines returns the debit and credit totals of lines.
func SumLines(lines []JournalLine) (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, l := range lines {
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}
	return debit, credit
}

// JournalCandidate is a proposed journal submitted for posting.
type JournalCandidate struct {
	Date        time.Time
	Description string
	Reference   *string
	Lines       []LineCandidate
}

// LineCandidate is a proposed journal line.
type LineCandidate struct {
	AccountID string
	Debit     decimal.Decimal
	Credit    decimal.Decimal
	Memo      string
}

// PostedLine is a journal line joined with the header fields of its journal.
type PostedLine struct {
	JournalLine
	JournalNumber string
	JournalDate   time.Time
	Description   string
	Reference     *string
	Closing       bool
}

// JournalFilter narrows a journal listing. Results are ordered by date then number;
// After, when set, resumes the listing strictly after that position.
type JournalFilter struct {
	From      *time.Time
	To        *time.Time
	PeriodID  *string
	AccountID *string
	Reversed  *bool
	Search    string
	After     *JournalCursor
	Limit     int
}

// JournalCursor is a position in the date/number ordering of journals.
type JournalCursor struct {
	Date   time.Time
	Number string
}

// After reports whether j sorts strictly after the cursor position.
func (c JournalCursor) After(j Journal) bool {
	jd, cd := DateOnly(j.Date), DateOnly(c.Date)
	if !jd.Equal(cd) {
		return jd.After(cd)
	}
	return CompareJournalNumbers(j.Number, c.Number) > 0
}

// CompareJournalNumbers orders journal numbers by their numeric suffix.
// Unparseable numbers sort first.
func CompareJournalNumbers(a, b string) int {
	sa, errA := ParseJournalNumber(a)
	sb, errB := ParseJournalNumber(b)
	switch {
	case errA != nil && errB != nil:
		return strings.Compare(a, b)
	case errA != nil:
		return -1
	case errB != nil:
		return 1
	case sa < sb:
		return -1
	case sa > sb:
		return 1
	}
	return 0
}

// LineFilter narrows the posted lines read for balance computation.
// From and To are inclusive journal dates.
type LineFilter struct {
	AccountID *string
	From      *time.Time
	To        *time.Time
}

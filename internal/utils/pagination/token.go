package pagination

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

const dateFormat = "2006-01-02"

// EncodeToken creates a base64 encoded token from the position of the last journal of a page.
func EncodeToken(journalDate time.Time, journalNumber string) string {
	tokenStr := fmt.Sprintf("%s|%s", journalDate.Format(dateFormat), journalNumber)
	return base64.URLEncoding.EncodeToString([]byte(tokenStr))
}

// DecodeToken parses the base64 encoded token back into a journal cursor.
func DecodeToken(token string) (*domain.JournalCursor, error) {
	decodedBytes, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("invalid pagination token format (base64 decode): %w", err)
	}
	parts := strings.SplitN(string(decodedBytes), "|", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid pagination token format (split)")
	}

	journalDate, err := time.Parse(dateFormat, parts[0])
	if err != nil {
		return nil, fmt.Errorf("invalid pagination token format (journal date parse): %w", err)
	}
	if _, err := domain.ParseJournalNumber(parts[1]); err != nil {
		return nil, fmt.Errorf("invalid pagination token format (journal number): %w", err)
	}

	return &domain.JournalCursor{Date: journalDate, Number: parts[1]}, nil
}

// NextToken returns the token for the page after journals, or nil when the page was the last one.
func NextToken(journals []domain.Journal, limit int) *string {
	if limit <= 0 || len(journals) < limit {
		return nil
	}
	last := journals[len(journals)-1]
	token := EncodeToken(last.Date, last.Number)
	return &token
}

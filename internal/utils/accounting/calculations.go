package accounting

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

// SignedAmount returns debit minus credit expressed on the normal side of category.
// A positive result sits on the normal side, a negative one on the opposite side.
// This is used by the balance calculator and the reports to keep one sign convention.
func SignedAmount(category domain.AccountCategory, debit, credit decimal.Decimal) decimal.Decimal {
	// DEBIT to ASSET/EXPENSE -> Positive (+)
	// CREDIT to LIABILITY/EQUITY/REVENUE -> Positive (+)
	if category.NormalSide() == domain.Debit {
		return debit.Sub(credit)
	}
	return credit.Sub(debit)
}

// ValidateJournalBalance checks the debit/credit shape of every line and that the lines
// balance exactly.
func ValidateJournalBalance(lines []domain.LineCandidate) error {
	if len(lines) < 2 {
		return fmt.Errorf("%w: got %d", apperrors.ErrTooFewLines, len(lines))
	}

	debitsSum, creditsSum := decimal.Zero, decimal.Zero
	for i, l := range lines {
		if l.Debit.IsNegative() || l.Credit.IsNegative() {
			return fmt.Errorf("%w: line %d has a negative amount", apperrors.ErrInvalidLine, i+1)
		}
		// Exactly one side positive.
		if l.Debit.IsPositive() == l.Credit.IsPositive() {
			return fmt.Errorf("%w: line %d has debit %s and credit %s", apperrors.ErrInvalidLine, i+1, l.Debit, l.Credit)
		}
		debitsSum = debitsSum.Add(l.Debit)
		creditsSum = creditsSum.Add(l.Credit)
	}

	if !debitsSum.Equal(creditsSum) {
		return fmt.Errorf("%w: debits sum is %s and credits sum is %s",
			apperrors.ErrUnbalanced, debitsSum.String(), creditsSum.String())
	}
	return nil
}

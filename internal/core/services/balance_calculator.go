package services

import (
	"cmp"
	"iter"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/utils/accounting"
)

// ComputeBalance folds the lines of one account into its position.
// The result does not depend on the order of lines.
func ComputeBalance(account domain.Account, lines []domain.PostedLine) domain.AccountBalance {
	debit, credit := decimal.Zero, decimal.Zero
	for _, l := range lines {
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}
	b := balanceFromTotals(account.Category, debit, credit)
	b.AccountID = account.AccountID
	b.Code = account.Code
	b.Name = account.Name
	b.LineCount = len(lines)
	return b
}

// balanceFromTotals applies the normal-balance convention of category.
func balanceFromTotals(category domain.AccountCategory, debit, credit decimal.Decimal) domain.AccountBalance {
	side := category.NormalSide()
	net := accounting.SignedAmount(category, debit, credit)
	if net.IsNegative() {
		side = side.Opposite()
	}
	return domain.AccountBalance{
		Category:    category,
		DebitTotal:  debit,
		CreditTotal: credit,
		Balance:     net.Abs(),
		Side:        side,
	}
}

// ComputeBalances groups lines by account and computes the balance of every account
// with at least one line. Results follow the order of accounts.
func ComputeBalances(accounts []domain.Account, lines []domain.PostedLine) []domain.AccountBalance {
	byAccount := make(map[string][]domain.PostedLine)
	for _, l := range lines {
		byAccount[l.AccountID] = append(byAccount[l.AccountID], l)
	}

	balances := make([]domain.AccountBalance, 0, len(byAccount))
	for _, acc := range accounts {
		accLines, ok := byAccount[acc.AccountID]
		if !ok {
			continue
		}
		balances = append(balances, ComputeBalance(acc, accLines))
	}
	return balances
}

// SortPostedLines orders lines chronologically: journal date, journal number, line sequence.
func SortPostedLines(lines []domain.PostedLine) {
	slices.SortStableFunc(lines, func(a, b domain.PostedLine) int {
		if c := domain.DateOnly(a.JournalDate).Compare(domain.DateOnly(b.JournalDate)); c != 0 {
			return c
		}
		if c := domain.CompareJournalNumbers(a.JournalNumber, b.JournalNumber); c != 0 {
			return c
		}
		return cmp.Compare(a.Seq, b.Seq)
	})
}

// RunningBalance yields the account's lines in chronological order, each annotated with
// the balance accumulated from the first line ever posted. from and to (inclusive, either
// may be nil) only restrict which entries are yielded.
// The sequence may be ranged over any number of times; each pass folds from the start.
func RunningBalance(category domain.AccountCategory, lines []domain.PostedLine, from, to *time.Time) iter.Seq[domain.LedgerEntry] {
	ordered := slices.Clone(lines)
	SortPostedLines(ordered)

	var fromDay, toDay time.Time
	if from != nil {
		fromDay = domain.DateOnly(*from)
	}
	if to != nil {
		toDay = domain.DateOnly(*to)
	}

	return func(yield func(domain.LedgerEntry) bool) {
		debit, credit := decimal.Zero, decimal.Zero
		for _, l := range ordered {
			debit = debit.Add(l.Debit)
			credit = credit.Add(l.Credit)

			day := domain.DateOnly(l.JournalDate)
			if to != nil && day.After(toDay) {
				return
			}
			if from != nil && day.Before(fromDay) {
				continue
			}

			running := balanceFromTotals(category, debit, credit)
			entry := domain.LedgerEntry{
				JournalID:      l.JournalID,
				JournalNumber:  l.JournalNumber,
				LineID:         l.LineID,
				Date:           l.JournalDate,
				Description:    l.Description,
				Reference:      l.Reference,
				Memo:           l.Memo,
				Debit:          l.Debit,
				Credit:         l.Credit,
				RunningBalance: running.Balance,
				RunningSide:    running.Side,
			}
			if !yield(entry) {
				return
			}
		}
	}
}

// sumBySide totals balances by the side they sit on, the way a trial balance presents them.
func sumBySide(balances []domain.AccountBalance) (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, b := range balances {
		if b.Side == domain.Debit {
			debit = debit.Add(b.Balance)
		} else {
			credit = credit.Add(b.Balance)
		}
	}
	return debit, credit
}

package services

import (
	"context"
	"iter"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
)

// LedgerSvc computes account balances from posted journal lines.
type LedgerSvc interface {
	// AccountBalance sums every line of the account dated on or before asOf (all time when nil).
	AccountBalance(ctx context.Context, tenant portsrepo.TenantStore, accountID string, asOf *time.Time) (*domain.AccountBalance, error)

	// AccountTransactions returns the account's lines between from and to, each carrying
	// the running balance accumulated from the start of history.
	AccountTransactions(ctx context.Context, tenant portsrepo.TenantStore, accountID string, from, to *time.Time) (iter.Seq[domain.LedgerEntry], error)

	// AllAccountBalances returns the balance of every account with at least one line.
	AllAccountBalances(ctx context.Context, tenant portsrepo.TenantStore, asOf *time.Time) (*domain.LedgerBalances, error)

	// AccountActivity summarizes the account's opening, movement and closing within a period.
	AccountActivity(ctx context.Context, tenant portsrepo.TenantStore, accountID, periodID string) (*domain.AccountActivity, error)
}

package repositories

import (
	"context"
)

// TxFunc is a unit of work executed inside one atomic transaction.
type TxFunc func(ctx context.Context, tx LedgerTx) error

// TransactionManager runs units of work atomically.
// If fn returns an error nothing it wrote is visible afterwards.
type TransactionManager interface {
	WithTx(ctx context.Context, fn TxFunc) error
}

// LedgerReader combines every read facade of a tenant dataset.
type LedgerReader interface {
	CompanyReader
	UserReader
	AccountReader
	PeriodReader
	JournalReader
}

// LedgerTx is the handle available inside a transaction.
type LedgerTx interface {
	LedgerReader
	PeriodWriter
	JournalWriter
}

// TenantStore is the capability object scoped to one company's isolated dataset.
// The engine receives it per call and never keeps it between calls.
type TenantStore interface {
	LedgerReader
	TransactionManager
	// CompanyID identifies the tenant the store is scoped to.
	CompanyID() string
}

// TenantProvider resolves the store of a tenant at runtime.
type TenantProvider interface {
	ForCompany(ctx context.Context, companyID string) (TenantStore, error)
}

package pgsql

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
)

// TenantStore is the PostgreSQL dataset of one company. Outside a transaction it reads
// from the pool; the copy handed to WithTx callbacks runs every statement on the transaction.
type TenantStore struct {
	base      *BaseRepository
	companyID string
	q         querier
}

var (
	_ portsrepo.TenantStore = (*TenantStore)(nil)
	_ portsrepo.LedgerTx    = (*TenantStore)(nil)
)

// CompanyID implements portsrepo.TenantStore.
func (s *TenantStore) CompanyID() string {
	return s.companyID
}

// WithTx implements portsrepo.TransactionManager.
func (s *TenantStore) WithTx(ctx context.Context, fn portsrepo.TxFunc) error {
	return s.base.WithTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return fn(ctx, &TenantStore{base: s.base, companyID: s.companyID, q: tx})
	})
}

func parseUUID(id string) (uuid.UUID, error) {
	return uuid.Parse(id)
}

// validIDs drops ids that cannot be UUIDs, since comparing them to uuid columns would fail the query.
func validIDs(ids []string) []string {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, err := parseUUID(id); err == nil {
			valid = append(valid, id)
		}
	}
	return valid
}

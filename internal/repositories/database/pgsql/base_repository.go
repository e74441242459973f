package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
)

// PostgreSQL error codes mapped onto the application taxonomy.
const (
	pgUniqueViolation      = "23505"
	pgForeignKeyViolation  = "23503"
	pgCheckViolation       = "23514"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	Pool *pgxpool.Pool
}

// ledgerTxOptions runs ledger transactions at READ COMMITTED. Each statement takes a
// fresh snapshot, so reads made after pg_advisory_xact_lock or a row lock returns see
// every row committed by the previous holder.
var ledgerTxOptions = pgx.TxOptions{IsoLevel: pgx.ReadCommitted}

// maxTxAttempts bounds how often WithTx reruns a transaction that failed with a
// serialization failure or deadlock.
const maxTxAttempts = 3

// errTxRetryable marks errors after which the whole transaction may be rerun.
var errTxRetryable = errors.New("transaction aborted by a concurrent update")

// WithTx runs fn inside a transaction, committing only when fn succeeds. A transaction
// aborted by a serialization failure or deadlock is rolled back and rerun, up to
// maxTxAttempts in total.
func (r *BaseRepository) WithTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	return retryTx(ctx, maxTxAttempts, func() error {
		return r.runTx(ctx, fn)
	})
}

func (r *BaseRepository) runTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	tx, err := r.Pool.BeginTx(ctx, ledgerTxOptions)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", mapPgError(err))
	}
	return nil
}

// retryTx calls run until it succeeds, fails with a non-retryable error, the context
// ends, or attempts are used up. The last error is returned.
func retryTx(ctx context.Context, attempts int, run func() error) error {
	var err error
	for range attempts {
		err = run()
		if err == nil || !isRetryable(err) || ctx.Err() != nil {
			return err
		}
	}
	return err
}

func isRetryable(err error) bool {
	if errors.Is(err, errTxRetryable) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgSerializationFailure || pgErr.Code == pgDeadlockDetected
	}
	return false
}

// mapPgError translates constraint and concurrency failures into application errors.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		return fmt.Errorf("%w: %s", apperrors.ErrConflict, pgErr.ConstraintName)
	case pgSerializationFailure, pgDeadlockDetected:
		return fmt.Errorf("%w: %w (%s)", apperrors.ErrConflict, errTxRetryable, pgErr.Code)
	case pgForeignKeyViolation, pgCheckViolation:
		return fmt.Errorf("%w: %s", apperrors.ErrValidation, pgErr.ConstraintName)
	}
	return err
}

// Provider resolves tenant stores over one shared pool. Tenant rows are
// isolated by company_id on every query.
type Provider struct {
	BaseRepository
}

// NewProvider creates a tenant provider on pool.
func NewProvider(pool *pgxpool.Pool) *Provider {
	return &Provider{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.TenantProvider = (*Provider)(nil)

// ForCompany returns the store scoped to companyID.
func (p *Provider) ForCompany(ctx context.Context, companyID string) (portsrepo.TenantStore, error) {
	if _, err := parseUUID(companyID); err != nil {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrCompanyNotFound, companyID)
	}

	var exists bool
	err := p.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM companies WHERE company_id = $1)`, companyID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve company %s: %w", companyID, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrCompanyNotFound, companyID)
	}
	return &TenantStore{base: &p.BaseRepository, companyID: companyID, q: p.Pool}, nil
}

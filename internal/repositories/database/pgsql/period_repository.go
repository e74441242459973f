package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

const periodColumns = `period_id, name, start_date, end_date, status, closed_at, closed_by,
		       created_at, created_by, last_updated_at, last_updated_by`

func scanPeriod(row pgx.Row) (domain.AccountingPeriod, error) {
	var p domain.AccountingPeriod
	err := row.Scan(
		&p.PeriodID, &p.Name, &p.StartDate, &p.EndDate, &p.Status, &p.ClosedAt, &p.ClosedBy,
		&p.CreatedAt, &p.CreatedBy, &p.LastUpdatedAt, &p.LastUpdatedBy,
	)
	return p, err
}

// FindPeriodByID implements portsrepo.PeriodReader.
func (s *TenantStore) FindPeriodByID(ctx context.Context, periodID string) (*domain.AccountingPeriod, error) {
	return s.findPeriodByID(ctx, periodID, "")
}

// FindPeriodByIDForUpdate implements portsrepo.PeriodWriter.
func (s *TenantStore) FindPeriodByIDForUpdate(ctx context.Context, periodID string) (*domain.AccountingPeriod, error) {
	return s.findPeriodByID(ctx, periodID, " FOR UPDATE")
}

func (s *TenantStore) findPeriodByID(ctx context.Context, periodID, lock string) (*domain.AccountingPeriod, error) {
	if _, err := parseUUID(periodID); err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrPeriodNotFound, periodID)
	}
	query := `SELECT ` + periodColumns + ` FROM accounting_periods WHERE company_id = $1 AND period_id = $2` + lock + `;`
	p, err := scanPeriod(s.q.QueryRow(ctx, query, s.companyID, periodID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrPeriodNotFound, periodID)
		}
		return nil, fmt.Errorf("failed to find period %s: %w", periodID, mapPgError(err))
	}
	return &p, nil
}

// FindPeriodByDate implements portsrepo.PeriodReader. The row is share-locked so a
// concurrent close of the same period waits for the posting transaction.
func (s *TenantStore) FindPeriodByDate(ctx context.Context, date time.Time) (*domain.AccountingPeriod, error) {
	query := `SELECT ` + periodColumns + ` FROM accounting_periods
		WHERE company_id = $1 AND start_date <= $2::date AND end_date >= $2::date
		ORDER BY start_date
		LIMIT 1
		FOR SHARE;`
	p, err := scanPeriod(s.q.QueryRow(ctx, query, s.companyID, domain.DateOnly(date)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNoPeriod
		}
		return nil, fmt.Errorf("failed to find period for date: %w", mapPgError(err))
	}
	return &p, nil
}

// ListPeriods implements portsrepo.PeriodReader.
func (s *TenantStore) ListPeriods(ctx context.Context) ([]domain.AccountingPeriod, error) {
	query := `SELECT ` + periodColumns + ` FROM accounting_periods WHERE company_id = $1 ORDER BY start_date;`
	rows, err := s.q.Query(ctx, query, s.companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query periods: %w", err)
	}
	defer rows.Close()

	periods := make([]domain.AccountingPeriod, 0)
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan period: %w", err)
		}
		periods = append(periods, p)
	}
	return periods, rows.Err()
}

// SavePeriod implements portsrepo.PeriodWriter.
func (s *TenantStore) SavePeriod(ctx context.Context, p domain.AccountingPeriod) error {
	query := `
		INSERT INTO accounting_periods (
			period_id, company_id, name, start_date, end_date, status,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := s.q.Exec(ctx, query,
		p.PeriodID, s.companyID, p.Name, p.StartDate, p.EndDate, p.Status,
		p.CreatedAt, p.CreatedBy, p.LastUpdatedAt, p.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert period %s: %w", p.Name, mapPgError(err))
	}
	return nil
}

// UpdatePeriodStatus implements portsrepo.PeriodWriter.
func (s *TenantStore) UpdatePeriodStatus(ctx context.Context, periodID string, status domain.PeriodStatus, closedBy *string, closedAt *time.Time) error {
	query := `
		UPDATE accounting_periods
		SET status = $3, closed_by = $4, closed_at = $5, last_updated_at = COALESCE($5, now()), last_updated_by = COALESCE($4, last_updated_by)
		WHERE company_id = $1 AND period_id = $2;
	`
	tag, err := s.q.Exec(ctx, query, s.companyID, periodID, status, closedBy, closedAt)
	if err != nil {
		return fmt.Errorf("failed to update period status: %w", mapPgError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrPeriodNotFound, periodID)
	}
	return nil
}

// DeletePeriod implements portsrepo.PeriodWriter. A period still referenced by journals
// fails on the foreign key and maps to apperrors.ErrValidation.
func (s *TenantStore) DeletePeriod(ctx context.Context, periodID string) error {
	if _, err := parseUUID(periodID); err != nil {
		return fmt.Errorf("%w: %s", apperrors.ErrPeriodNotFound, periodID)
	}
	tag, err := s.q.Exec(ctx, `DELETE FROM accounting_periods WHERE company_id = $1 AND period_id = $2;`, s.companyID, periodID)
	if err != nil {
		return fmt.Errorf("failed to delete period %s: %w", periodID, mapPgError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrPeriodNotFound, periodID)
	}
	return nil
}

package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

// GetCompany implements portsrepo.CompanyReader.
func (s *TenantStore) GetCompany(ctx context.Context) (*domain.Company, error) {
	query := `
		SELECT company_id, name, retained_earnings_account_id,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM companies
		WHERE company_id = $1;
	`
	var c domain.Company
	err := s.q.QueryRow(ctx, query, s.companyID).Scan(
		&c.CompanyID, &c.Name, &c.RetainedEarningsAccountID,
		&c.CreatedAt, &c.CreatedBy, &c.LastUpdatedAt, &c.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCompanyNotFound
		}
		return nil, fmt.Errorf("failed to find company %s: %w", s.companyID, err)
	}
	return &c, nil
}

// FindUserByID implements portsrepo.UserReader.
func (s *TenantStore) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	if _, err := parseUUID(userID); err != nil {
		return nil, apperrors.ErrUserNotFound
	}
	return s.findUser(ctx, "user_id = $2", userID)
}

// FindUserByEmail implements portsrepo.UserReader. Emails compare case-insensitively.
func (s *TenantStore) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.findUser(ctx, "lower(email) = lower($2)", email)
}

func (s *TenantStore) findUser(ctx context.Context, predicate string, arg string) (*domain.User, error) {
	query := `
		SELECT user_id, email, name, created_at, created_by, last_updated_at, last_updated_by
		FROM users
		WHERE company_id = $1 AND ` + predicate + `
		LIMIT 1;
	`
	var u domain.User
	err := s.q.QueryRow(ctx, query, s.companyID, arg).Scan(
		&u.UserID, &u.Email, &u.Name,
		&u.CreatedAt, &u.CreatedBy, &u.LastUpdatedAt, &u.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &u, nil
}

package repositories

import (
	"context"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

// CompanyReader reads the tenant's single company record.
type CompanyReader interface {
	// GetCompany returns apperrors.ErrCompanyNotFound when the dataset has no company.
	GetCompany(ctx context.Context) (*domain.Company, error)
}

// UserReader reads the tenant's local user table.
type UserReader interface {
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
}

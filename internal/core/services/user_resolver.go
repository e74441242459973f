package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
)

// resolveActor maps the identity layer's user onto the tenant's local user table.
// The identity layer and the tenant datasets keep separate user ids, so a miss by id
// falls back to the email address.
func resolveActor(ctx context.Context, users portsrepo.UserReader, actor domain.Actor) (*domain.User, error) {
	if actor.UserID != "" {
		user, err := users.FindUserByID(ctx, actor.UserID)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("failed to find user by id: %w", err)
		}
	}

	if email := strings.TrimSpace(actor.Email); email != "" {
		user, err := users.FindUserByEmail(ctx, email)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("failed to find user by email: %w", err)
		}
	}

	return nil, fmt.Errorf("%w: id %q, email %q", apperrors.ErrUserNotFound, actor.UserID, actor.Email)
}

package pgsql

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

func TestLedgerTxOptions_ReadCommitted(t *testing.T) {
	// Numbering reads happen after the advisory lock wait and must see the previous holder's commit.
	assert.Equal(t, pgx.ReadCommitted, ledgerTxOptions.IsoLevel)
	assert.Equal(t, 3, maxTxAttempts)
}

func TestMapPgError(t *testing.T) {
	tests := []struct {
		name      string
		code      string
		want      error
		retryable bool
	}{
		{name: "unique violation", code: pgUniqueViolation, want: apperrors.ErrConflict},
		{name: "serialization failure", code: pgSerializationFailure, want: apperrors.ErrConflict, retryable: true},
		{name: "deadlock", code: pgDeadlockDetected, want: apperrors.ErrConflict, retryable: true},
		{name: "foreign key", code: pgForeignKeyViolation, want: apperrors.ErrValidation},
		{name: "check", code: pgCheckViolation, want: apperrors.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mapPgError(&pgconn.PgError{Code: tt.code})
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.retryable, isRetryable(err))
		})
	}

	plain := errors.New("boom")
	assert.Same(t, plain, mapPgError(plain))
	assert.False(t, isRetryable(plain))
}

func TestIsRetryable_UnmappedPgError(t *testing.T) {
	err := fmt.Errorf("failed to query journals: %w", &pgconn.PgError{Code: pgSerializationFailure})
	assert.True(t, isRetryable(err))
}

func TestRetryTx(t *testing.T) {
	ctx := context.Background()
	serialization := mapPgError(&pgconn.PgError{Code: pgSerializationFailure})

	t.Run("reruns until success", func(t *testing.T) {
		calls := 0
		err := retryTx(ctx, maxTxAttempts, func() error {
			calls++
			if calls < 2 {
				return serialization
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 2, calls)
	})

	t.Run("gives up after the attempt limit", func(t *testing.T) {
		calls := 0
		err := retryTx(ctx, maxTxAttempts, func() error {
			calls++
			return serialization
		})
		assert.ErrorIs(t, err, apperrors.ErrConflict)
		assert.Equal(t, maxTxAttempts, calls)
	})

	t.Run("does not rerun a unique violation", func(t *testing.T) {
		calls := 0
		err := retryTx(ctx, maxTxAttempts, func() error {
			calls++
			return mapPgError(&pgconn.PgError{Code: pgUniqueViolation})
		})
		assert.ErrorIs(t, err, apperrors.ErrConflict)
		assert.Equal(t, 1, calls)
	})

	t.Run("stops when the context is done", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		calls := 0
		err := retryTx(cancelled, maxTxAttempts, func() error {
			calls++
			return serialization
		})
		assert.Error(t, err)
		assert.Equal(t, 1, calls)
	})
}

func TestListJournals_NonUUIDFilterMatchesNothing(t *testing.T) {
	// q is nil: the guard must answer before any statement is sent.
	store := &TenantStore{companyID: "8a4e5c1e-2f7d-4a57-9a0c-0f5bdf0c9d11"}
	bad := "not-a-uuid"

	journals, err := store.ListJournals(context.Background(), domain.JournalFilter{PeriodID: &bad, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, journals)

	journals, err = store.ListJournals(context.Background(), domain.JournalFilter{AccountID: &bad, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, journals)
}

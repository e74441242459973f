package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrConflict indicates that the resource already is in the requested state,
// or that a concurrent writer got there first.
var ErrConflict = errors.New("conflict")

// ErrForbidden indicates that the acting user may not perform the operation.
var ErrForbidden = errors.New("forbidden")

// ErrInternal indicates an infrastructure failure that the caller may retry as a whole.
var ErrInternal = errors.New("internal error")

// Ledger errors. Each wraps one of the base errors above so callers may
// match either the specific rule or its family with errors.Is.
var (
	ErrCompanyNotFound = fmt.Errorf("company not found: %w", ErrNotFound)
	ErrAccountNotFound = fmt.Errorf("account not found: %w", ErrNotFound)
	ErrPeriodNotFound  = fmt.Errorf("accounting period not found: %w", ErrNotFound)
	ErrJournalNotFound = fmt.Errorf("journal not found: %w", ErrNotFound)
	ErrUserNotFound    = fmt.Errorf("user not found: %w", ErrNotFound)

	ErrAlreadyClosed   = fmt.Errorf("accounting period already closed: %w", ErrConflict)
	ErrAlreadyReversed = fmt.Errorf("journal already reversed: %w", ErrConflict)
	ErrPeriodOverlap   = fmt.Errorf("accounting period overlaps an existing period: %w", ErrConflict)

	ErrPeriodInUse = fmt.Errorf("accounting period has journals, close it instead: %w", ErrForbidden)

	ErrUnbalanced         = fmt.Errorf("journal debits and credits do not balance: %w", ErrValidation)
	ErrInvalidLine        = fmt.Errorf("journal line must carry exactly one positive side: %w", ErrValidation)
	ErrTooFewLines        = fmt.Errorf("journal requires at least two lines: %w", ErrInvalidLine)
	ErrAccountLocked      = fmt.Errorf("account is locked: %w", ErrValidation)
	ErrAccountNotPostable = fmt.Errorf("account does not accept postings: %w", ErrValidation)
	ErrPeriodClosed       = fmt.Errorf("accounting period is closed: %w", ErrValidation)
	ErrNoPeriod           = fmt.Errorf("no accounting period covers the date: %w", ErrValidation)
	ErrNoEquityAccount    = fmt.Errorf("no equity account available for retained earnings: %w", ErrValidation)
)

package dto

import (
	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

// AsOfParams selects a cutoff date.
type AsOfParams struct {
	AsOf *string `form:"asOf" binding:"omitempty,datetime=2006-01-02"`
}

// DateRangeParams selects an inclusive date window.
type DateRangeParams struct {
	From *string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To   *string `form:"to" binding:"omitempty,datetime=2006-01-02"`
}

// AccountTransactionsResponse lists an account's lines with running balances.
type AccountTransactionsResponse struct {
	AccountID string               `json:"accountID"`
	Entries   []domain.LedgerEntry `json:"entries"`
}

// TrialBalanceParams selects the cutoff of a trial balance.
// PeriodID wins over AsOf when both are given.
type TrialBalanceParams struct {
	PeriodID *string `form:"periodId"`
	AsOf     *string `form:"asOf" binding:"omitempty,datetime=2006-01-02"`
}

// AnalyticsParams sizes the income series. Zero means the service default.
type AnalyticsParams struct {
	Limit int `form:"limit" binding:"omitempty,min=1"`
}

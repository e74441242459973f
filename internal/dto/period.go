package dto

import (
	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

// CreatePeriodRequest is the body of POST /periods.
type CreatePeriodRequest struct {
	Name      string `json:"name" binding:"required,max=100"`
	StartDate string `json:"startDate" binding:"required,datetime=2006-01-02"`
	EndDate   string `json:"endDate" binding:"required,datetime=2006-01-02"`
}

// ListPeriodsParams filters GET /periods. Year keeps the periods starting in that year.
type ListPeriodsParams struct {
	Year *int `form:"year" binding:"omitempty,min=1900,max=9999"`
}

// ToFilter converts the query into the service filter.
func (p ListPeriodsParams) ToFilter() domain.PeriodFilter {
	return domain.PeriodFilter{Year: p.Year}
}
